// Package interpreter drives evaluation of checked Paw programs.
package interpreter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"paw/interpreter-go/pkg/ast"
	"paw/interpreter-go/pkg/diag"
	"paw/interpreter-go/pkg/runtime"
	"paw/interpreter-go/pkg/typechecker"
)

// DefaultMaxCallDepth bounds recursion when the host does not configure
// a limit of its own.
const DefaultMaxCallDepth = 4096

// ModuleLoader resolves an import's dotted path to a parsed module. It is
// the boundary to the file system and the front end; failures it reports
// are internal errors, distinct from type and runtime errors.
type ModuleLoader interface {
	LoadModule(segments []string, fromDir string) ([]ast.Statement, string, error)
}

// Options is the explicit configuration for one program execution. There
// is no ambient global state inside the core.
type Options struct {
	// Stdout receives say output. Defaults to os.Stdout.
	Stdout io.Writer
	// ReadLine prints a prompt and blocks for one line of console input.
	// Defaults to a buffered reader over os.Stdin.
	ReadLine func(prompt string) (string, error)
	// Loader resolves imports. A nil loader makes every import fail with
	// an internal error.
	Loader ModuleLoader
	// MaxCallDepth bounds nested calls; zero means DefaultMaxCallDepth.
	MaxCallDepth int
	// File names the entry script in diagnostics.
	File string
	// BaseDir is the directory module-relative imports resolve against.
	BaseDir string
}

// Interpreter walks the (checked) AST, executing statements for effect
// and expressions for value.
type Interpreter struct {
	global    *runtime.Environment
	opts      Options
	callDepth int
}

// New returns an interpreter with an empty global environment.
func New(opts Options) *Interpreter {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.ReadLine == nil {
		reader := bufio.NewReader(os.Stdin)
		opts.ReadLine = func(prompt string) (string, error) {
			fmt.Fprint(os.Stdout, prompt)
			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				return "", err
			}
			return strings.TrimRight(line, "\r\n"), nil
		}
	}
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	return &Interpreter{
		global: runtime.NewEnvironment(nil),
		opts:   opts,
	}
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// EvaluateProgram executes a top-level program. Uncaught barks and engine
// conditions surface as structured runtime errors.
func (i *Interpreter) EvaluateProgram(stmts []ast.Statement) error {
	err := i.evalStatements(stmts, i.global)
	if err == nil {
		return nil
	}
	switch sig := err.(type) {
	case returnSignal:
		return diag.Runtimef(0, 0, "return outside of a function")
	case breakSignal:
		return diag.Runtimef(0, 0, "break outside of a loop")
	case continueSignal:
		return diag.Runtimef(0, 0, "continue outside of a loop")
	case raiseSignal:
		rErr := diag.Runtimef(sig.pos.Line, sig.pos.Column, "%s", sig.message)
		rErr.File = i.opts.File
		return rErr
	default:
		return err
	}
}

// evalStatements executes statements in order. A nil result means the
// sequence fell through; a returnSignal carries a propagating return.
func (i *Interpreter) evalStatements(stmts []ast.Statement, env *runtime.Environment) error {
	for _, stmt := range stmts {
		if err := i.evalStatement(stmt, env); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) evalStatement(stmt ast.Statement, env *runtime.Environment) error {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		val, err := i.evalExpression(s.Value, env)
		if err != nil {
			return err
		}
		env.Define(s.Name, val)
		return nil
	case *ast.AssignStatement:
		val, err := i.evalExpression(s.Value, env)
		if err != nil {
			return err
		}
		if err := env.Assign(s.Name, val); err != nil {
			return i.raise(s, "%s", err.Error())
		}
		return nil
	case *ast.SayStatement:
		val, err := i.evalExpression(s.Value, env)
		if err != nil {
			return err
		}
		fmt.Fprintln(i.opts.Stdout, Render(val))
		return nil
	case *ast.AskStatement:
		line, err := i.opts.ReadLine(s.Prompt)
		if err != nil {
			return diag.Internalf("ask: read console line: %v", err)
		}
		// The declared type is a compile-time contract only; input binds
		// as String.
		env.Define(s.Name, runtime.StringValue{Val: line})
		return nil
	case *ast.ReturnStatement:
		var val runtime.Value = runtime.NullValue{}
		if s.Value != nil {
			v, err := i.evalExpression(s.Value, env)
			if err != nil {
				return err
			}
			val = v
		}
		return returnSignal{value: val}
	case *ast.BreakStatement:
		return breakSignal{}
	case *ast.ContinueStatement:
		return continueSignal{}
	case *ast.ExprStatement:
		_, err := i.evalExpression(s.Value, env)
		return err
	case *ast.IfStatement:
		return i.evalIf(s, env)
	case *ast.LoopForeverStatement:
		for {
			if done, err := i.runLoopIteration(s.Body, env.Extend()); done || err != nil {
				return err
			}
		}
	case *ast.LoopWhileStatement:
		return i.evalLoopWhile(s, env)
	case *ast.LoopRangeStatement:
		return i.evalLoopRange(s, env)
	case *ast.LoopIterableStatement:
		return i.evalLoopIterable(s, env)
	case *ast.FunDeclStatement:
		env.Define(s.Name, &runtime.FunctionValue{
			Name:       s.Name,
			Params:     s.Params,
			Body:       s.Body,
			Closure:    env,
			Suspending: s.Suspending,
		})
		return nil
	case *ast.BlockStatement:
		return i.evalStatements(s.Body, env.Extend())
	case *ast.ImportStatement:
		return i.evalImport(s, env)
	case *ast.ThrowStatement:
		val, err := i.evalExpression(s.Value, env)
		if err != nil {
			return err
		}
		return raiseSignal{message: Render(val), pos: s.Position()}
	case *ast.TryStatement:
		return i.evalTry(s, env)
	case *ast.RecordDeclStatement:
		// Record shape lives in the checker; declarations are inert at
		// runtime.
		return nil
	default:
		return diag.Internalf("unsupported statement %T", stmt)
	}
}

func (i *Interpreter) evalIf(s *ast.IfStatement, env *runtime.Environment) error {
	cond, err := i.evalExpression(s.Condition, env)
	if err != nil {
		return err
	}
	flag, ok := cond.(runtime.BoolValue)
	if !ok {
		return i.raise(s, "if condition must be Bool, got %s", cond.Kind())
	}
	if flag.Val {
		return i.evalStatements(s.Then, env.Extend())
	}
	if s.Else != nil {
		return i.evalStatements(s.Else, env.Extend())
	}
	return nil
}

// runLoopIteration executes one iteration body. It reports whether the
// loop should terminate normally (break) and converts continue into a
// plain fall-through.
func (i *Interpreter) runLoopIteration(body []ast.Statement, iterEnv *runtime.Environment) (bool, error) {
	err := i.evalStatements(body, iterEnv)
	switch err.(type) {
	case nil:
		return false, nil
	case breakSignal:
		return true, nil
	case continueSignal:
		return false, nil
	default:
		return false, err
	}
}

func (i *Interpreter) evalLoopWhile(s *ast.LoopWhileStatement, env *runtime.Environment) error {
	for {
		cond, err := i.evalExpression(s.Condition, env)
		if err != nil {
			return err
		}
		flag, ok := cond.(runtime.BoolValue)
		if !ok {
			return i.raise(s, "loop condition must be Bool, got %s", cond.Kind())
		}
		if !flag.Val {
			return nil
		}
		if done, err := i.runLoopIteration(s.Body, env.Extend()); done || err != nil {
			return err
		}
	}
}

// Range loops are ascending and inclusive of both bounds.
func (i *Interpreter) evalLoopRange(s *ast.LoopRangeStatement, env *runtime.Environment) error {
	fromVal, err := i.evalExpression(s.From, env)
	if err != nil {
		return err
	}
	toVal, err := i.evalExpression(s.To, env)
	if err != nil {
		return err
	}
	from, fromOK := integerOf(fromVal)
	to, toOK := integerOf(toVal)
	if !fromOK || !toOK {
		return i.raise(s, "range bounds must be integers, got %s and %s", fromVal.Kind(), toVal.Kind())
	}
	long := fromVal.Kind() == runtime.KindLong || toVal.Kind() == runtime.KindLong
	for n := from; n <= to; n++ {
		iterEnv := env.Extend()
		if long {
			iterEnv.Define(s.Var, runtime.LongValue{Val: n})
		} else {
			iterEnv.Define(s.Var, runtime.IntValue{Val: int32(n)})
		}
		if done, err := i.runLoopIteration(s.Body, iterEnv); done || err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) evalLoopIterable(s *ast.LoopIterableStatement, env *runtime.Environment) error {
	iterable, err := i.evalExpression(s.Iterable, env)
	if err != nil {
		return err
	}
	arr, ok := iterable.(*runtime.ArrayValue)
	if !ok {
		return i.raise(s, "cannot iterate over %s", iterable.Kind())
	}
	for _, element := range arr.Elements {
		iterEnv := env.Extend()
		iterEnv.Define(s.Var, element)
		if done, err := i.runLoopIteration(s.Body, iterEnv); done || err != nil {
			return err
		}
	}
	return nil
}

// evalTry implements sniff/snatch/lastly. The lastly body runs on every
// path: success, handled bark, and propagating return or error alike.
func (i *Interpreter) evalTry(s *ast.TryStatement, env *runtime.Environment) error {
	pending := i.evalStatements(s.Body, env.Extend())
	hasHandler := s.Catch != nil || s.CatchVar != ""
	if message, catchable := catchableMessage(pending); catchable && hasHandler {
		catchEnv := env.Extend()
		if s.CatchVar != "" {
			catchEnv.Define(s.CatchVar, runtime.StringValue{Val: message})
		}
		pending = i.evalStatements(s.Catch, catchEnv)
	}
	if s.Finally != nil {
		if err := i.evalStatements(s.Finally, env.Extend()); err != nil {
			// The lastly body's own signal wins over the held one.
			return err
		}
	}
	return pending
}

// catchableMessage reports whether a sniff block may intercept err, and
// with which message. Internal errors and control-flow signals pass
// through untouched.
func catchableMessage(err error) (string, bool) {
	switch e := err.(type) {
	case nil:
		return "", false
	case raiseSignal:
		return e.message, true
	case *diag.Error:
		if e.Catchable() {
			return e.Message, true
		}
		return "", false
	default:
		return "", false
	}
}

func (i *Interpreter) evalImport(s *ast.ImportStatement, env *runtime.Environment) error {
	if i.opts.Loader == nil {
		return diag.Internalf("import %s: no module loader configured", strings.Join(s.Segments, "."))
	}
	stmts, path, err := i.opts.Loader.LoadModule(s.Segments, i.opts.BaseDir)
	if err != nil {
		if dErr, ok := err.(*diag.Error); ok {
			return dErr
		}
		return diag.Internalf("import %s: %v", strings.Join(s.Segments, "."), err)
	}
	checker := typechecker.New()
	checker.SetFile(path)
	if err := checker.CheckProgram(stmts); err != nil {
		return err
	}
	moduleEnv := env.Extend()
	sub := &Interpreter{global: i.global, opts: i.opts, callDepth: i.callDepth}
	sub.opts.File = path
	sub.opts.BaseDir = parentDir(path)
	if err := sub.evalStatements(stmts, moduleEnv); err != nil {
		if _, ok := err.(returnSignal); ok {
			return diag.Internalf("module %s: return outside of a function", path)
		}
		return err
	}
	exports := moduleEnv.Snapshot()
	order := make([]string, 0, len(exports))
	for name := range exports {
		order = append(order, name)
	}
	sort.Strings(order)
	env.Define(s.Alias, &runtime.ModuleValue{Path: path, Order: order, Exports: exports})
	return nil
}

func parentDir(path string) string {
	if idx := strings.LastIndexByte(path, os.PathSeparator); idx >= 0 {
		return path[:idx]
	}
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[:idx]
	}
	return "."
}

// raise builds the catchable runtime signal used for barks and
// engine-raised conditions alike.
func (i *Interpreter) raise(node ast.Node, format string, args ...any) error {
	return raiseSignal{message: fmt.Sprintf(format, args...), pos: node.Position()}
}

//-----------------------------------------------------------------------------
// Control-flow signals
//-----------------------------------------------------------------------------

type returnSignal struct {
	value runtime.Value
}

func (returnSignal) Error() string { return "return" }

type breakSignal struct{}

func (breakSignal) Error() string { return "break" }

type continueSignal struct{}

func (continueSignal) Error() string { return "continue" }

type raiseSignal struct {
	message string
	pos     ast.Pos
}

func (r raiseSignal) Error() string { return r.message }

func integerOf(val runtime.Value) (int64, bool) {
	switch v := val.(type) {
	case runtime.IntValue:
		return int64(v.Val), true
	case runtime.LongValue:
		return v.Val, true
	default:
		return 0, false
	}
}
