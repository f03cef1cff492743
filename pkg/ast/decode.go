package ast

import (
	"encoding/json"
	"fmt"
)

// DecodeProgram decodes the JSON tree emitted by the Paw front end into
// statements. The wire format is one object per node with a "type"
// discriminator and optional "line"/"column" fields.
func DecodeProgram(data []byte) ([]Statement, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("ast: decode program: %w", err)
	}
	if typ, _ := root["type"].(string); typ != "Program" {
		return nil, fmt.Errorf("ast: expected Program root, got %q", root["type"])
	}
	body, _ := root["body"].([]any)
	return decodeStatements(body)
}

func decodeStatements(raw []any) ([]Statement, error) {
	stmts := make([]Statement, 0, len(raw))
	for _, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("ast: invalid statement entry %T", entry)
		}
		stmt, err := decodeStatement(obj)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func decodeStatement(obj map[string]any) (Statement, error) {
	typ, _ := obj["type"].(string)
	pos := decodePos(obj)
	switch typ {
	case "Let":
		value, err := decodeOptionalExpression(obj["value"])
		if err != nil {
			return nil, err
		}
		s := &LetStatement{Name: str(obj, "name"), TypeName: str(obj, "typeName"), Value: value}
		s.Pos = pos
		return s, nil
	case "Assign":
		value, err := decodeExpression(obj["value"])
		if err != nil {
			return nil, err
		}
		s := &AssignStatement{Name: str(obj, "name"), Value: value}
		s.Pos = pos
		return s, nil
	case "Say":
		value, err := decodeExpression(obj["value"])
		if err != nil {
			return nil, err
		}
		s := &SayStatement{Value: value}
		s.Pos = pos
		return s, nil
	case "Ask":
		s := &AskStatement{Prompt: str(obj, "prompt"), Name: str(obj, "name"), TypeName: str(obj, "typeName")}
		s.Pos = pos
		return s, nil
	case "Return":
		value, err := decodeOptionalExpression(obj["value"])
		if err != nil {
			return nil, err
		}
		s := &ReturnStatement{Value: value}
		s.Pos = pos
		return s, nil
	case "Break":
		s := &BreakStatement{}
		s.Pos = pos
		return s, nil
	case "Continue":
		s := &ContinueStatement{}
		s.Pos = pos
		return s, nil
	case "Expr":
		value, err := decodeExpression(obj["value"])
		if err != nil {
			return nil, err
		}
		s := &ExprStatement{Value: value}
		s.Pos = pos
		return s, nil
	case "If":
		cond, err := decodeExpression(obj["condition"])
		if err != nil {
			return nil, err
		}
		then, err := decodeBody(obj, "then")
		if err != nil {
			return nil, err
		}
		var els []Statement
		if _, ok := obj["else"]; ok {
			els, err = decodeBody(obj, "else")
			if err != nil {
				return nil, err
			}
		}
		s := &IfStatement{Condition: cond, Then: then, Else: els}
		s.Pos = pos
		return s, nil
	case "LoopForever":
		body, err := decodeBody(obj, "body")
		if err != nil {
			return nil, err
		}
		s := &LoopForeverStatement{Body: body}
		s.Pos = pos
		return s, nil
	case "LoopWhile":
		cond, err := decodeExpression(obj["condition"])
		if err != nil {
			return nil, err
		}
		body, err := decodeBody(obj, "body")
		if err != nil {
			return nil, err
		}
		s := &LoopWhileStatement{Condition: cond, Body: body}
		s.Pos = pos
		return s, nil
	case "LoopRange":
		from, err := decodeExpression(obj["from"])
		if err != nil {
			return nil, err
		}
		to, err := decodeExpression(obj["to"])
		if err != nil {
			return nil, err
		}
		body, err := decodeBody(obj, "body")
		if err != nil {
			return nil, err
		}
		s := &LoopRangeStatement{Var: str(obj, "var"), From: from, To: to, Body: body}
		s.Pos = pos
		return s, nil
	case "LoopIterable":
		iterable, err := decodeExpression(obj["iterable"])
		if err != nil {
			return nil, err
		}
		body, err := decodeBody(obj, "body")
		if err != nil {
			return nil, err
		}
		s := &LoopIterableStatement{Var: str(obj, "var"), Iterable: iterable, Body: body}
		s.Pos = pos
		return s, nil
	case "FunDecl":
		body, err := decodeBody(obj, "body")
		if err != nil {
			return nil, err
		}
		paramsRaw, _ := obj["params"].([]any)
		params := make([]Param, 0, len(paramsRaw))
		for _, p := range paramsRaw {
			pobj, ok := p.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("ast: invalid parameter entry %T", p)
			}
			params = append(params, Param{Name: str(pobj, "name"), TypeName: str(pobj, "typeName")})
		}
		suspending, _ := obj["suspending"].(bool)
		s := &FunDeclStatement{
			Name:           str(obj, "name"),
			Params:         params,
			ReturnTypeName: str(obj, "returnType"),
			Suspending:     suspending,
			Body:           body,
		}
		s.Pos = pos
		return s, nil
	case "Block":
		body, err := decodeBody(obj, "body")
		if err != nil {
			return nil, err
		}
		s := &BlockStatement{Body: body}
		s.Pos = pos
		return s, nil
	case "Import":
		segsRaw, _ := obj["segments"].([]any)
		segments := make([]string, 0, len(segsRaw))
		for _, seg := range segsRaw {
			segStr, ok := seg.(string)
			if !ok {
				return nil, fmt.Errorf("ast: invalid import segment %T", seg)
			}
			segments = append(segments, segStr)
		}
		s := &ImportStatement{Segments: segments, Alias: str(obj, "alias")}
		s.Pos = pos
		return s, nil
	case "Throw":
		value, err := decodeExpression(obj["value"])
		if err != nil {
			return nil, err
		}
		s := &ThrowStatement{Value: value}
		s.Pos = pos
		return s, nil
	case "TryCatchFinally":
		body, err := decodeBody(obj, "body")
		if err != nil {
			return nil, err
		}
		catch, err := decodeBody(obj, "catch")
		if err != nil {
			return nil, err
		}
		var finally []Statement
		if _, ok := obj["finally"]; ok {
			finally, err = decodeBody(obj, "finally")
			if err != nil {
				return nil, err
			}
		}
		s := &TryStatement{Body: body, CatchVar: str(obj, "catchVar"), Catch: catch, Finally: finally}
		s.Pos = pos
		return s, nil
	case "RecordDecl":
		fieldsRaw, _ := obj["fields"].([]any)
		fields := make([]RecordField, 0, len(fieldsRaw))
		for _, f := range fieldsRaw {
			fobj, ok := f.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("ast: invalid record field entry %T", f)
			}
			fields = append(fields, RecordField{Name: str(fobj, "name"), TypeName: str(fobj, "typeName")})
		}
		s := &RecordDeclStatement{Name: str(obj, "name"), Fields: fields}
		s.Pos = pos
		return s, nil
	default:
		return nil, fmt.Errorf("ast: unknown statement type %q", typ)
	}
}

func decodeExpression(raw any) (Expression, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("ast: invalid expression entry %T", raw)
	}
	typ, _ := obj["type"].(string)
	pos := decodePos(obj)
	switch typ {
	case "LiteralInt":
		e := &IntLiteral{Value: int32(num(obj, "value"))}
		e.Pos = pos
		return e, nil
	case "LiteralLong":
		e := &LongLiteral{Value: int64(num(obj, "value"))}
		e.Pos = pos
		return e, nil
	case "LiteralFloat":
		e := &FloatLiteral{Value: float32(num(obj, "value"))}
		e.Pos = pos
		return e, nil
	case "LiteralDouble":
		e := &DoubleLiteral{Value: num(obj, "value")}
		e.Pos = pos
		return e, nil
	case "LiteralString":
		e := &StringLiteral{Value: str(obj, "value")}
		e.Pos = pos
		return e, nil
	case "LiteralBool":
		val, _ := obj["value"].(bool)
		e := &BoolLiteral{Value: val}
		e.Pos = pos
		return e, nil
	case "LiteralChar":
		runes := []rune(str(obj, "value"))
		if len(runes) == 0 {
			return nil, fmt.Errorf("ast: empty char literal")
		}
		e := &CharLiteral{Value: runes[0]}
		e.Pos = pos
		return e, nil
	case "LiteralNull":
		e := &NullLiteral{}
		e.Pos = pos
		return e, nil
	case "Var":
		e := &VarExpression{Name: str(obj, "name")}
		e.Pos = pos
		return e, nil
	case "UnaryOp":
		operand, err := decodeExpression(obj["operand"])
		if err != nil {
			return nil, err
		}
		e := &UnaryExpression{Operator: str(obj, "op"), Operand: operand}
		e.Pos = pos
		return e, nil
	case "BinaryOp":
		left, err := decodeExpression(obj["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(obj["right"])
		if err != nil {
			return nil, err
		}
		e := &BinaryExpression{Operator: str(obj, "op"), Left: left, Right: right}
		e.Pos = pos
		return e, nil
	case "Call":
		callee, err := decodeExpression(obj["callee"])
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressions(obj["args"])
		if err != nil {
			return nil, err
		}
		e := &CallExpression{Callee: callee, Args: args}
		e.Pos = pos
		return e, nil
	case "Cast":
		value, err := decodeExpression(obj["value"])
		if err != nil {
			return nil, err
		}
		e := &CastExpression{Value: value, TypeName: str(obj, "typeName")}
		e.Pos = pos
		return e, nil
	case "ArrayLiteral":
		elements, err := decodeExpressions(obj["elements"])
		if err != nil {
			return nil, err
		}
		e := &ArrayLiteral{Elements: elements}
		e.Pos = pos
		return e, nil
	case "Index":
		target, err := decodeExpression(obj["target"])
		if err != nil {
			return nil, err
		}
		index, err := decodeExpression(obj["index"])
		if err != nil {
			return nil, err
		}
		e := &IndexExpression{Target: target, Index: index}
		e.Pos = pos
		return e, nil
	case "FieldAccess":
		target, err := decodeExpression(obj["target"])
		if err != nil {
			return nil, err
		}
		e := &FieldAccessExpression{Target: target, Field: str(obj, "field")}
		e.Pos = pos
		return e, nil
	case "MethodCall":
		target, err := decodeExpression(obj["target"])
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressions(obj["args"])
		if err != nil {
			return nil, err
		}
		e := &MethodCallExpression{Target: target, Method: str(obj, "method"), Args: args}
		e.Pos = pos
		return e, nil
	case "RecordInit":
		fieldsRaw, _ := obj["fields"].([]any)
		fields := make([]FieldInit, 0, len(fieldsRaw))
		for _, f := range fieldsRaw {
			fobj, ok := f.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("ast: invalid record init field %T", f)
			}
			value, err := decodeExpression(fobj["value"])
			if err != nil {
				return nil, err
			}
			fields = append(fields, FieldInit{Name: str(fobj, "name"), Value: value})
		}
		e := &RecordInitExpression{Name: str(obj, "name"), Fields: fields}
		e.Pos = pos
		return e, nil
	case "Await":
		value, err := decodeExpression(obj["value"])
		if err != nil {
			return nil, err
		}
		e := &AwaitExpression{Value: value}
		e.Pos = pos
		return e, nil
	default:
		return nil, fmt.Errorf("ast: unknown expression type %q", typ)
	}
}

func decodeExpressions(raw any) ([]Expression, error) {
	list, _ := raw.([]any)
	exprs := make([]Expression, 0, len(list))
	for _, entry := range list {
		expr, err := decodeExpression(entry)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func decodeOptionalExpression(raw any) (Expression, error) {
	if raw == nil {
		return nil, nil
	}
	return decodeExpression(raw)
}

func decodeBody(obj map[string]any, key string) ([]Statement, error) {
	raw, _ := obj[key].([]any)
	return decodeStatements(raw)
}

func decodePos(obj map[string]any) Pos {
	line, _ := obj["line"].(float64)
	col, _ := obj["column"].(float64)
	return Pos{Line: int(line), Column: int(col)}
}

func str(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func num(obj map[string]any, key string) float64 {
	f, _ := obj[key].(float64)
	return f
}
