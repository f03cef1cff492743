package interpreter

import (
	"paw/interpreter-go/pkg/ast"
	"paw/interpreter-go/pkg/typechecker"
)

// Run type-checks a program and evaluates it only if checking succeeds,
// so a failing program has zero observable side effects.
func Run(stmts []ast.Statement, opts Options) error {
	checker := typechecker.New()
	checker.SetFile(opts.File)
	if err := checker.CheckProgram(stmts); err != nil {
		return err
	}
	return New(opts).EvaluateProgram(stmts)
}
