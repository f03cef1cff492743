package ast

import (
	"testing"
)

func TestDecodeProgramStatements(t *testing.T) {
	src := `{
		"type": "Program",
		"body": [
			{"type": "Let", "name": "x", "typeName": "Int",
			 "value": {"type": "LiteralInt", "value": 5, "line": 1, "column": 14},
			 "line": 1, "column": 1},
			{"type": "Say",
			 "value": {"type": "BinaryOp", "op": "+",
			           "left": {"type": "Var", "name": "x"},
			           "right": {"type": "LiteralInt", "value": 1}},
			 "line": 2, "column": 1}
		]
	}`
	stmts, err := DecodeProgram([]byte(src))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}

	let, ok := stmts[0].(*LetStatement)
	if !ok {
		t.Fatalf("expected Let, got %T", stmts[0])
	}
	if let.Name != "x" || let.TypeName != "Int" {
		t.Fatalf("unexpected let %+v", let)
	}
	if pos := let.Position(); pos.Line != 1 || pos.Column != 1 {
		t.Fatalf("position not decoded: %+v", pos)
	}
	lit, ok := let.Value.(*IntLiteral)
	if !ok || lit.Value != 5 {
		t.Fatalf("unexpected initializer %#v", let.Value)
	}

	say, ok := stmts[1].(*SayStatement)
	if !ok {
		t.Fatalf("expected Say, got %T", stmts[1])
	}
	bin, ok := say.Value.(*BinaryExpression)
	if !ok || bin.Operator != "+" {
		t.Fatalf("unexpected say value %#v", say.Value)
	}
	if v, ok := bin.Left.(*VarExpression); !ok || v.Name != "x" {
		t.Fatalf("unexpected left operand %#v", bin.Left)
	}
}

func TestDecodeFunctionAndControlFlow(t *testing.T) {
	src := `{
		"type": "Program",
		"body": [
			{"type": "FunDecl", "name": "greet", "returnType": "Void", "suspending": true,
			 "params": [{"name": "who", "typeName": "String"}],
			 "body": [
				{"type": "Say", "value": {"type": "Var", "name": "who"}},
				{"type": "Return"}
			 ]},
			{"type": "TryCatchFinally",
			 "body": [{"type": "Throw", "value": {"type": "LiteralString", "value": "boom"}}],
			 "catchVar": "e",
			 "catch": [{"type": "Say", "value": {"type": "Var", "name": "e"}}],
			 "finally": [{"type": "Break"}]}
		]
	}`
	stmts, err := DecodeProgram([]byte(src))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	fn, ok := stmts[0].(*FunDeclStatement)
	if !ok {
		t.Fatalf("expected FunDecl, got %T", stmts[0])
	}
	if !fn.Suspending || fn.ReturnTypeName != "Void" {
		t.Fatalf("unexpected function %+v", fn)
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "who" || fn.Params[0].TypeName != "String" {
		t.Fatalf("unexpected params %+v", fn.Params)
	}
	if ret, ok := fn.Body[1].(*ReturnStatement); !ok || ret.Value != nil {
		t.Fatalf("expected a bare return, got %#v", fn.Body[1])
	}

	try, ok := stmts[1].(*TryStatement)
	if !ok {
		t.Fatalf("expected TryCatchFinally, got %T", stmts[1])
	}
	if try.CatchVar != "e" || len(try.Catch) != 1 || len(try.Finally) != 1 {
		t.Fatalf("unexpected try %+v", try)
	}
}

func TestDecodeRejectsUnknownNodes(t *testing.T) {
	if _, err := DecodeProgram([]byte(`{"type": "Script", "body": []}`)); err == nil {
		t.Fatalf("expected a non-Program root to fail")
	}
	src := `{"type": "Program", "body": [{"type": "Mystery"}]}`
	if _, err := DecodeProgram([]byte(src)); err == nil {
		t.Fatalf("expected an unknown statement type to fail")
	}
	if _, err := DecodeProgram([]byte(`not json`)); err == nil {
		t.Fatalf("expected malformed input to fail")
	}
}
