// Package typechecker validates a Paw program before any of it runs. A
// program that fails checking never executes a single statement.
package typechecker

import (
	"sort"

	"paw/interpreter-go/pkg/ast"
	"paw/interpreter-go/pkg/diag"
)

// Checker walks the AST once and aborts on the first error.
type Checker struct {
	global        *Scope
	returnStack   []Type
	funcNameStack []string
	loopDepth     int
	throwing      map[string]struct{}
	predeclared   map[ast.Statement]struct{}
	file          string
}

// New returns a checker instance.
func New() *Checker {
	return &Checker{
		global:      NewScope(nil),
		throwing:    make(map[string]struct{}),
		predeclared: make(map[ast.Statement]struct{}),
	}
}

// SetFile attaches a file name to every diagnostic this checker produces.
func (c *Checker) SetFile(file string) { c.file = file }

// GlobalScope exposes the outermost static scope, mainly for hosts that
// pre-seed bindings before checking.
func (c *Checker) GlobalScope() *Scope { return c.global }

// ThrowingFunctions lists the declared functions that contain a reachable
// bark, sorted for determinism. This feeds whole-program diagnostics; it
// is not a checked-exception system.
func (c *Checker) ThrowingFunctions() []string {
	names := make([]string, 0, len(c.throwing))
	for name := range c.throwing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckProgram validates a whole program. Pass 1 pre-registers top-level
// record and function declarations so bodies can refer to them regardless
// of order; pass 2 checks every statement.
func (c *Checker) CheckProgram(stmts []ast.Statement) error {
	scope := c.global.Extend()
	if err := c.preregister(scope, stmts); err != nil {
		return err
	}
	for _, stmt := range stmts {
		if err := c.checkStatement(scope, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) preregister(scope *Scope, stmts []ast.Statement) error {
	// Records first: function signatures may name them.
	for _, stmt := range stmts {
		rec, ok := stmt.(*ast.RecordDeclStatement)
		if !ok {
			continue
		}
		fields := make([]RecordFieldType, 0, len(rec.Fields))
		for _, f := range rec.Fields {
			fields = append(fields, RecordFieldType{FieldName: f.Name, FieldType: ParseType(f.TypeName, scope)})
		}
		if !scope.Define(rec.Name, RecordType{RecordName: rec.Name, Fields: fields}) {
			return c.at(rec, diag.Duplicatef(0, 0, "record '%s' is already defined", rec.Name))
		}
		c.predeclared[stmt] = struct{}{}
	}
	for _, stmt := range stmts {
		fn, ok := stmt.(*ast.FunDeclStatement)
		if !ok {
			continue
		}
		if !scope.Define(fn.Name, c.functionType(scope, fn)) {
			return c.at(fn, diag.Duplicatef(0, 0, "function '%s' is already defined", fn.Name))
		}
		c.predeclared[stmt] = struct{}{}
	}
	return nil
}

func (c *Checker) functionType(scope *Scope, fn *ast.FunDeclStatement) FunctionType {
	params := make([]Type, 0, len(fn.Params))
	for _, p := range fn.Params {
		params = append(params, ParseType(p.TypeName, scope))
	}
	return FunctionType{Params: params, Return: ParseType(fn.ReturnTypeName, scope), Suspending: fn.Suspending}
}

func (c *Checker) checkStatement(scope *Scope, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		return c.checkLet(scope, s)
	case *ast.AssignStatement:
		return c.checkAssign(scope, s)
	case *ast.SayStatement:
		_, err := c.checkExpression(scope, s.Value)
		return err
	case *ast.AskStatement:
		declared := Type(stringType)
		if s.TypeName != "" {
			declared = ParseType(s.TypeName, scope)
		}
		if !scope.Define(s.Name, declared) {
			return c.at(s, diag.Duplicatef(0, 0, "variable '%s' is already defined in this scope", s.Name))
		}
		return nil
	case *ast.ReturnStatement:
		return c.checkReturn(scope, s)
	case *ast.BreakStatement:
		if c.loopDepth == 0 {
			return c.at(s, diag.Typef(0, 0, "break outside of a loop"))
		}
		return nil
	case *ast.ContinueStatement:
		if c.loopDepth == 0 {
			return c.at(s, diag.Typef(0, 0, "continue outside of a loop"))
		}
		return nil
	case *ast.ExprStatement:
		_, err := c.checkExpression(scope, s.Value)
		return err
	case *ast.IfStatement:
		return c.checkIf(scope, s)
	case *ast.LoopForeverStatement:
		return c.checkLoopBody(scope.Extend(), s.Body)
	case *ast.LoopWhileStatement:
		condType, err := c.checkExpression(scope, s.Condition)
		if err != nil {
			return err
		}
		if !isBool(condType) && !isAny(condType) {
			return c.at(s, diag.Typef(0, 0, "loop condition must be Bool, got %s", condType.Name()))
		}
		return c.checkLoopBody(scope.Extend(), s.Body)
	case *ast.LoopRangeStatement:
		return c.checkLoopRange(scope, s)
	case *ast.LoopIterableStatement:
		return c.checkLoopIterable(scope, s)
	case *ast.FunDeclStatement:
		return c.checkFunDecl(scope, s)
	case *ast.BlockStatement:
		return c.checkStatements(scope.Extend(), s.Body)
	case *ast.ImportStatement:
		if !scope.Define(s.Alias, ModuleType{}) {
			return c.at(s, diag.Duplicatef(0, 0, "import alias '%s' is already defined", s.Alias))
		}
		return nil
	case *ast.ThrowStatement:
		valType, err := c.checkExpression(scope, s.Value)
		if err != nil {
			return err
		}
		if !isString(valType) && !isAny(valType) {
			return c.at(s, diag.Typef(0, 0, "bark requires a String, got %s", valType.Name()))
		}
		if len(c.funcNameStack) > 0 {
			c.throwing[c.funcNameStack[len(c.funcNameStack)-1]] = struct{}{}
		}
		return nil
	case *ast.TryStatement:
		return c.checkTry(scope, s)
	case *ast.RecordDeclStatement:
		if _, done := c.predeclared[stmt]; done {
			return nil
		}
		fields := make([]RecordFieldType, 0, len(s.Fields))
		for _, f := range s.Fields {
			fields = append(fields, RecordFieldType{FieldName: f.Name, FieldType: ParseType(f.TypeName, scope)})
		}
		if !scope.Define(s.Name, RecordType{RecordName: s.Name, Fields: fields}) {
			return c.at(s, diag.Duplicatef(0, 0, "record '%s' is already defined", s.Name))
		}
		return nil
	default:
		return c.at(stmt, diag.Typef(0, 0, "unsupported statement %T", stmt))
	}
}

func (c *Checker) checkStatements(scope *Scope, stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := c.checkStatement(scope, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkLoopBody(scope *Scope, body []ast.Statement) error {
	c.loopDepth++
	defer func() { c.loopDepth-- }()
	return c.checkStatements(scope, body)
}

func (c *Checker) checkLet(scope *Scope, s *ast.LetStatement) error {
	inferred, err := c.checkExpression(scope, s.Value)
	if err != nil {
		return err
	}
	if s.TypeName == "" {
		// Inferred declaration. nopaw alone carries no type to infer from.
		if isNull(inferred) {
			return c.at(s, diag.Typef(0, 0, "cannot infer a type for '%s' from nopaw", s.Name))
		}
		if !scope.Define(s.Name, inferred) {
			return c.at(s, diag.Duplicatef(0, 0, "variable '%s' is already defined in this scope", s.Name))
		}
		return nil
	}
	declared := ParseType(s.TypeName, scope)
	if _, unknown := declared.(UnknownType); unknown {
		return c.at(s, diag.Typef(0, 0, "unknown type '%s'", s.TypeName))
	}
	// The nopaw initializer takes the declared type, but only an Optional
	// declaration may hold it.
	if isNull(inferred) {
		if _, ok := declared.(OptionalType); !ok {
			return c.at(s, diag.Typef(0, 0, "cannot assign nopaw to '%s' of non-optional type %s", s.Name, declared.Name()).
				WithHint("declare the variable with a trailing '?' to allow nopaw"))
		}
	} else if !assignable(inferred, declared) {
		return c.at(s, diag.Typef(0, 0, "cannot assign %s to '%s' of type %s", inferred.Name(), s.Name, declared.Name()))
	}
	if !scope.Define(s.Name, declared) {
		return c.at(s, diag.Duplicatef(0, 0, "variable '%s' is already defined in this scope", s.Name))
	}
	return nil
}

func (c *Checker) checkAssign(scope *Scope, s *ast.AssignStatement) error {
	declared, ok := scope.Lookup(s.Name)
	if !ok {
		return c.at(s, diag.Undefinedf(0, 0, "cannot assign to undeclared variable '%s'", s.Name).
			WithHint("declare it first with 'let'"))
	}
	inferred, err := c.checkExpression(scope, s.Value)
	if err != nil {
		return err
	}
	if isNull(inferred) {
		if _, optional := declared.(OptionalType); !optional {
			return c.at(s, diag.Typef(0, 0, "cannot assign nopaw to '%s' of non-optional type %s", s.Name, declared.Name()))
		}
		return nil
	}
	if !assignable(inferred, declared) {
		return c.at(s, diag.Typef(0, 0, "cannot assign %s to '%s' of type %s", inferred.Name(), s.Name, declared.Name()))
	}
	return nil
}

func (c *Checker) checkReturn(scope *Scope, s *ast.ReturnStatement) error {
	if len(c.returnStack) == 0 {
		return c.at(s, diag.Typef(0, 0, "return outside of a function"))
	}
	declared := c.returnStack[len(c.returnStack)-1]
	fnName := c.funcNameStack[len(c.funcNameStack)-1]
	if s.Value == nil {
		if typeEquals(declared, voidType) {
			return nil
		}
		if _, ok := declared.(OptionalType); ok {
			return nil
		}
		return c.returnMismatch(s, fnName, voidType, declared)
	}
	valType, err := c.checkExpression(scope, s.Value)
	if err != nil {
		return err
	}
	if isNull(valType) {
		if _, ok := declared.(OptionalType); ok {
			return nil
		}
		return c.returnMismatch(s, fnName, valType, declared)
	}
	if assignable(valType, declared) {
		return nil
	}
	if _, optional := declared.(OptionalType); !optional {
		if assignable(valType, OptionalType{Inner: declared}) {
			return nil
		}
	}
	return c.returnMismatch(s, fnName, valType, declared)
}

func (c *Checker) returnMismatch(node ast.Node, fnName string, got, declared Type) error {
	err := diag.Typef(0, 0, "function '%s' declares return type %s but returns %s", fnName, declared.Name(), got.Name())
	err.Code = diag.CodeReturn
	return c.at(node, err)
}

func (c *Checker) checkIf(scope *Scope, s *ast.IfStatement) error {
	condType, err := c.checkExpression(scope, s.Condition)
	if err != nil {
		return err
	}
	if !isBool(condType) && !isAny(condType) {
		return c.at(s, diag.Typef(0, 0, "if condition must be Bool, got %s", condType.Name()))
	}
	if err := c.checkStatements(scope.Extend(), s.Then); err != nil {
		return err
	}
	if s.Else != nil {
		return c.checkStatements(scope.Extend(), s.Else)
	}
	return nil
}

func (c *Checker) checkLoopRange(scope *Scope, s *ast.LoopRangeStatement) error {
	fromType, err := c.checkExpression(scope, s.From)
	if err != nil {
		return err
	}
	toType, err := c.checkExpression(scope, s.To)
	if err != nil {
		return err
	}
	if !typeEquals(fromType, toType) {
		err := diag.Typef(0, 0, "range bounds must share a type, got %s and %s", fromType.Name(), toType.Name())
		err.Code = diag.CodeRangeBounds
		return c.at(s, err)
	}
	body := scope.Extend()
	body.Define(s.Var, fromType)
	return c.checkLoopBody(body, s.Body)
}

func (c *Checker) checkLoopIterable(scope *Scope, s *ast.LoopIterableStatement) error {
	iterType, err := c.checkExpression(scope, s.Iterable)
	if err != nil {
		return err
	}
	var element Type
	switch it := iterType.(type) {
	case ArrayType:
		element = it.Element
	case PrimitiveType:
		if it.Kind != PrimitiveAny {
			return c.at(s, diag.Typef(0, 0, "cannot iterate over %s", iterType.Name()))
		}
		element = anyType
	default:
		return c.at(s, diag.Typef(0, 0, "cannot iterate over %s", iterType.Name()))
	}
	body := scope.Extend()
	body.Define(s.Var, element)
	return c.checkLoopBody(body, s.Body)
}

func (c *Checker) checkFunDecl(scope *Scope, s *ast.FunDeclStatement) error {
	fnType := c.functionType(scope, s)
	if _, done := c.predeclared[s]; !done {
		if !scope.Define(s.Name, fnType) {
			return c.at(s, diag.Duplicatef(0, 0, "function '%s' is already defined", s.Name))
		}
	}
	body := scope.Extend()
	for idx, p := range s.Params {
		if !body.Define(p.Name, fnType.Params[idx]) {
			return c.at(s, diag.Duplicatef(0, 0, "duplicate parameter '%s' in function '%s'", p.Name, s.Name))
		}
	}
	c.returnStack = append(c.returnStack, fnType.Return)
	c.funcNameStack = append(c.funcNameStack, s.Name)
	// A function body is never "inside" the enclosing loop.
	savedLoopDepth := c.loopDepth
	c.loopDepth = 0
	err := c.checkStatements(body, s.Body)
	c.loopDepth = savedLoopDepth
	c.returnStack = c.returnStack[:len(c.returnStack)-1]
	c.funcNameStack = c.funcNameStack[:len(c.funcNameStack)-1]
	return err
}

func (c *Checker) checkTry(scope *Scope, s *ast.TryStatement) error {
	if err := c.checkStatements(scope.Extend(), s.Body); err != nil {
		return err
	}
	catchScope := scope.Extend()
	if s.CatchVar != "" {
		catchScope.Define(s.CatchVar, stringType)
	}
	if err := c.checkStatements(catchScope, s.Catch); err != nil {
		return err
	}
	if s.Finally != nil {
		return c.checkStatements(scope.Extend(), s.Finally)
	}
	return nil
}

// at stamps the node's position and the checker's file onto a diagnostic.
func (c *Checker) at(node ast.Node, err *diag.Error) *diag.Error {
	pos := node.Position()
	err.Line = pos.Line
	err.Column = pos.Column
	if err.File == "" {
		err.File = c.file
	}
	return err
}
