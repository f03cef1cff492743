package ast

// Builder helpers used by tests and by hosts that assemble trees directly.

// Literal and identifier helpers.

func ID(name string) *VarExpression {
	return &VarExpression{Name: name}
}

func Int(value int32) *IntLiteral {
	return &IntLiteral{Value: value}
}

func Lng(value int64) *LongLiteral {
	return &LongLiteral{Value: value}
}

func Flt(value float32) *FloatLiteral {
	return &FloatLiteral{Value: value}
}

func Dbl(value float64) *DoubleLiteral {
	return &DoubleLiteral{Value: value}
}

func Str(value string) *StringLiteral {
	return &StringLiteral{Value: value}
}

func Bool(value bool) *BoolLiteral {
	return &BoolLiteral{Value: value}
}

func Chr(value rune) *CharLiteral {
	return &CharLiteral{Value: value}
}

func Nopaw() *NullLiteral {
	return &NullLiteral{}
}

// Expression helpers.

func Un(op string, operand Expression) *UnaryExpression {
	return &UnaryExpression{Operator: op, Operand: operand}
}

func Bin(op string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{Operator: op, Left: left, Right: right}
}

func Call(callee Expression, args ...Expression) *CallExpression {
	return &CallExpression{Callee: callee, Args: args}
}

func Cast(value Expression, typeName string) *CastExpression {
	return &CastExpression{Value: value, TypeName: typeName}
}

func Arr(elements ...Expression) *ArrayLiteral {
	return &ArrayLiteral{Elements: elements}
}

func Index(target, index Expression) *IndexExpression {
	return &IndexExpression{Target: target, Index: index}
}

func Field(target Expression, field string) *FieldAccessExpression {
	return &FieldAccessExpression{Target: target, Field: field}
}

func Method(target Expression, method string, args ...Expression) *MethodCallExpression {
	return &MethodCallExpression{Target: target, Method: method, Args: args}
}

func RecInit(name string, fields ...FieldInit) *RecordInitExpression {
	return &RecordInitExpression{Name: name, Fields: fields}
}

func FieldV(name string, value Expression) FieldInit {
	return FieldInit{Name: name, Value: value}
}

func Await(value Expression) *AwaitExpression {
	return &AwaitExpression{Value: value}
}

// Statement helpers.

func Let(name, typeName string, value Expression) *LetStatement {
	return &LetStatement{Name: name, TypeName: typeName, Value: value}
}

func Assign(name string, value Expression) *AssignStatement {
	return &AssignStatement{Name: name, Value: value}
}

func Say(value Expression) *SayStatement {
	return &SayStatement{Value: value}
}

func Ask(prompt, name, typeName string) *AskStatement {
	return &AskStatement{Prompt: prompt, Name: name, TypeName: typeName}
}

func Ret(value Expression) *ReturnStatement {
	return &ReturnStatement{Value: value}
}

func Brk() *BreakStatement {
	return &BreakStatement{}
}

func Cont() *ContinueStatement {
	return &ContinueStatement{}
}

func Expr(value Expression) *ExprStatement {
	return &ExprStatement{Value: value}
}

func If(cond Expression, then ...Statement) *IfStatement {
	return &IfStatement{Condition: cond, Then: then}
}

func IfElse(cond Expression, then, els []Statement) *IfStatement {
	return &IfStatement{Condition: cond, Then: then, Else: els}
}

func LoopForever(body ...Statement) *LoopForeverStatement {
	return &LoopForeverStatement{Body: body}
}

func LoopWhile(cond Expression, body ...Statement) *LoopWhileStatement {
	return &LoopWhileStatement{Condition: cond, Body: body}
}

func LoopRange(varName string, from, to Expression, body ...Statement) *LoopRangeStatement {
	return &LoopRangeStatement{Var: varName, From: from, To: to, Body: body}
}

func LoopEach(varName string, iterable Expression, body ...Statement) *LoopIterableStatement {
	return &LoopIterableStatement{Var: varName, Iterable: iterable, Body: body}
}

func Fun(name string, params []Param, returnType string, body ...Statement) *FunDeclStatement {
	return &FunDeclStatement{Name: name, Params: params, ReturnTypeName: returnType, Body: body}
}

func SuspFun(name string, params []Param, returnType string, body ...Statement) *FunDeclStatement {
	return &FunDeclStatement{Name: name, Params: params, ReturnTypeName: returnType, Suspending: true, Body: body}
}

func Par(name, typeName string) Param {
	return Param{Name: name, TypeName: typeName}
}

func Block(body ...Statement) *BlockStatement {
	return &BlockStatement{Body: body}
}

func Import(alias string, segments ...string) *ImportStatement {
	return &ImportStatement{Segments: segments, Alias: alias}
}

func Bark(value Expression) *ThrowStatement {
	return &ThrowStatement{Value: value}
}

func Sniff(body []Statement, catchVar string, catch []Statement, finally []Statement) *TryStatement {
	return &TryStatement{Body: body, CatchVar: catchVar, Catch: catch, Finally: finally}
}

func RecordDecl(name string, fields ...RecordField) *RecordDeclStatement {
	return &RecordDeclStatement{Name: name, Fields: fields}
}

func Fld(name, typeName string) RecordField {
	return RecordField{Name: name, TypeName: typeName}
}

// At sets the source position on any node built by the helpers above.
func At[N Node](n N, line, column int) N {
	switch v := any(n).(type) {
	case interface{ setPos(Pos) }:
		v.setPos(Pos{Line: line, Column: column})
	}
	return n
}

func (n *node) setPos(p Pos) { n.Pos = p }
