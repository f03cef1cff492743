// Package ast defines the syntax tree the Paw front end hands to the
// semantic core. Every node carries the source position used for
// diagnostics; the core never re-reads source text.
package ast

// Pos is a 1-based source location. The zero value means "unknown".
type Pos struct {
	Line   int
	Column int
}

type Node interface {
	Position() Pos
}

// Statement nodes execute for effect.
type Statement interface {
	Node
	statementNode()
}

// Expression nodes evaluate to a value.
type Expression interface {
	Node
	expressionNode()
}

type node struct {
	Pos Pos
}

func (n node) Position() Pos { return n.Pos }

type statementMarker struct{}

func (statementMarker) statementNode() {}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

// LetStatement declares a variable. TypeName is the declared-type string
// as written ("Int", "Int?", "Array<String>", a record name, ...); empty
// means the declared type is inferred from the initializer.
type LetStatement struct {
	node
	statementMarker
	Name     string
	TypeName string
	Value    Expression
}

// AssignStatement mutates an existing binding.
type AssignStatement struct {
	node
	statementMarker
	Name  string
	Value Expression
}

// SayStatement prints a textual rendering of its operand.
type SayStatement struct {
	node
	statementMarker
	Value Expression
}

// AskStatement prints a prompt, reads one console line, and binds it.
type AskStatement struct {
	node
	statementMarker
	Prompt   string
	Name     string
	TypeName string
}

type ReturnStatement struct {
	node
	statementMarker
	Value Expression // nil for a bare return
}

type BreakStatement struct {
	node
	statementMarker
}

type ContinueStatement struct {
	node
	statementMarker
}

// ExprStatement evaluates an expression and discards the value.
type ExprStatement struct {
	node
	statementMarker
	Value Expression
}

type IfStatement struct {
	node
	statementMarker
	Condition Expression
	Then      []Statement
	Else      []Statement // nil when there is no else branch
}

type LoopForeverStatement struct {
	node
	statementMarker
	Body []Statement
}

type LoopWhileStatement struct {
	node
	statementMarker
	Condition Expression
	Body      []Statement
}

// LoopRangeStatement binds Var to each value of From..To in turn.
type LoopRangeStatement struct {
	node
	statementMarker
	Var  string
	From Expression
	To   Expression
	Body []Statement
}

// LoopIterableStatement binds Var to each element of an array.
type LoopIterableStatement struct {
	node
	statementMarker
	Var      string
	Iterable Expression
	Body     []Statement
}

// Param is a function parameter with its declared type.
type Param struct {
	Name     string
	TypeName string
}

// FunDeclStatement declares a (possibly suspending) function. An empty
// ReturnTypeName means Void.
type FunDeclStatement struct {
	node
	statementMarker
	Name           string
	Params         []Param
	ReturnTypeName string
	Suspending     bool
	Body           []Statement
}

type BlockStatement struct {
	node
	statementMarker
	Body []Statement
}

// ImportStatement resolves a dotted module path and binds the resulting
// module value under Alias.
type ImportStatement struct {
	node
	statementMarker
	Segments []string
	Alias    string
}

// ThrowStatement is Paw's `bark`: raises a catchable runtime error
// carrying the stringified operand.
type ThrowStatement struct {
	node
	statementMarker
	Value Expression
}

// TryStatement is Paw's sniff/snatch/lastly construct. Catch runs with the
// raised message bound to CatchVar; Finally always runs.
type TryStatement struct {
	node
	statementMarker
	Body     []Statement
	CatchVar string
	Catch    []Statement
	Finally  []Statement
}

// RecordField is a named, typed record field.
type RecordField struct {
	Name     string
	TypeName string
}

// RecordDeclStatement declares a nominal record type.
type RecordDeclStatement struct {
	node
	statementMarker
	Name   string
	Fields []RecordField
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

type IntLiteral struct {
	node
	expressionMarker
	Value int32
}

type LongLiteral struct {
	node
	expressionMarker
	Value int64
}

type FloatLiteral struct {
	node
	expressionMarker
	Value float32
}

type DoubleLiteral struct {
	node
	expressionMarker
	Value float64
}

type StringLiteral struct {
	node
	expressionMarker
	Value string
}

type BoolLiteral struct {
	node
	expressionMarker
	Value bool
}

type CharLiteral struct {
	node
	expressionMarker
	Value rune
}

// NullLiteral is Paw's `nopaw`.
type NullLiteral struct {
	node
	expressionMarker
}

type VarExpression struct {
	node
	expressionMarker
	Name string
}

type UnaryExpression struct {
	node
	expressionMarker
	Operator string // "-" or "!"
	Operand  Expression
}

type BinaryExpression struct {
	node
	expressionMarker
	Operator string // "+", "-", "*", "/", "%", "<", "<=", ">", ">=", "==", "!=", "&&", "||"
	Left     Expression
	Right    Expression
}

type CallExpression struct {
	node
	expressionMarker
	Callee Expression
	Args   []Expression
}

type CastExpression struct {
	node
	expressionMarker
	Value    Expression
	TypeName string
}

type ArrayLiteral struct {
	node
	expressionMarker
	Elements []Expression
}

type IndexExpression struct {
	node
	expressionMarker
	Target Expression
	Index  Expression
}

type FieldAccessExpression struct {
	node
	expressionMarker
	Target Expression
	Field  string
}

type MethodCallExpression struct {
	node
	expressionMarker
	Target Expression
	Method string
	Args   []Expression
}

// FieldInit supplies one field of a record literal.
type FieldInit struct {
	Name  string
	Value Expression
}

type RecordInitExpression struct {
	node
	expressionMarker
	Name   string
	Fields []FieldInit
}

type AwaitExpression struct {
	node
	expressionMarker
	Value Expression
}
