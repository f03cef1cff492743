package typechecker

import (
	"paw/interpreter-go/pkg/ast"
	"paw/interpreter-go/pkg/diag"
)

func (c *Checker) checkExpression(scope *Scope, expr ast.Expression) (Type, error) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return intType, nil
	case *ast.LongLiteral:
		return longType, nil
	case *ast.FloatLiteral:
		return floatType, nil
	case *ast.DoubleLiteral:
		return doubleType, nil
	case *ast.StringLiteral:
		return stringType, nil
	case *ast.BoolLiteral:
		return boolType, nil
	case *ast.CharLiteral:
		return charType, nil
	case *ast.NullLiteral:
		return NullType{}, nil
	case *ast.VarExpression:
		typ, ok := scope.Lookup(e.Name)
		if !ok {
			return nil, c.at(e, diag.Undefinedf(0, 0, "undefined variable '%s'", e.Name))
		}
		return typ, nil
	case *ast.UnaryExpression:
		return c.checkUnary(scope, e)
	case *ast.BinaryExpression:
		return c.checkBinary(scope, e)
	case *ast.CallExpression:
		return c.checkCall(scope, e)
	case *ast.CastExpression:
		return c.checkCast(scope, e)
	case *ast.ArrayLiteral:
		return c.checkArrayLiteral(scope, e)
	case *ast.IndexExpression:
		return c.checkIndex(scope, e)
	case *ast.FieldAccessExpression:
		return c.checkFieldAccess(scope, e)
	case *ast.MethodCallExpression:
		return c.checkMethodCall(scope, e)
	case *ast.RecordInitExpression:
		return c.checkRecordInit(scope, e)
	case *ast.AwaitExpression:
		// Awaiting a non-future value is a no-op, so the static type of
		// await is the operand's type either way.
		return c.checkExpression(scope, e.Value)
	default:
		return nil, c.at(expr, diag.Typef(0, 0, "unsupported expression %T", expr))
	}
}

func (c *Checker) checkUnary(scope *Scope, e *ast.UnaryExpression) (Type, error) {
	operand, err := c.checkExpression(scope, e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case "-":
		if !isNumeric(operand) && !isAny(operand) {
			return nil, c.at(e, diag.Typef(0, 0, "unary '-' requires a numeric operand, got %s", operand.Name()))
		}
		return operand, nil
	case "!":
		if !isBool(operand) && !isAny(operand) {
			return nil, c.at(e, diag.Typef(0, 0, "unary '!' requires a Bool operand, got %s", operand.Name()))
		}
		return boolType, nil
	default:
		return nil, c.at(e, diag.Typef(0, 0, "unsupported unary operator '%s'", e.Operator))
	}
}

func (c *Checker) checkBinary(scope *Scope, e *ast.BinaryExpression) (Type, error) {
	lhs, err := c.checkExpression(scope, e.Left)
	if err != nil {
		return nil, err
	}
	rhs, err := c.checkExpression(scope, e.Right)
	if err != nil {
		return nil, err
	}
	if isAny(lhs) || isAny(rhs) {
		return anyType, nil
	}
	result, resErr := binaryResult(e.Operator, lhs, rhs)
	if resErr != nil {
		return nil, c.at(e, diag.Typef(0, 0, "%s", resErr.Error()))
	}
	return result, nil
}

func (c *Checker) checkCall(scope *Scope, e *ast.CallExpression) (Type, error) {
	calleeType, err := c.checkExpression(scope, e.Callee)
	if err != nil {
		return nil, err
	}
	argTypes := make([]Type, 0, len(e.Args))
	for _, arg := range e.Args {
		argType, err := c.checkExpression(scope, arg)
		if err != nil {
			return nil, err
		}
		argTypes = append(argTypes, argType)
	}
	switch fn := calleeType.(type) {
	case FunctionType:
		if len(argTypes) != len(fn.Params) {
			err := diag.Typef(0, 0, "call expects %d arguments, got %d", len(fn.Params), len(argTypes))
			err.Code = diag.CodeArity
			return nil, c.at(e, err)
		}
		for idx, argType := range argTypes {
			if isNull(argType) {
				if _, optional := fn.Params[idx].(OptionalType); optional {
					continue
				}
				return nil, c.at(e, diag.Typef(0, 0, "argument %d cannot be nopaw, expected %s", idx+1, fn.Params[idx].Name()))
			}
			if !assignable(argType, fn.Params[idx]) {
				return nil, c.at(e, diag.Typef(0, 0, "argument %d has type %s, expected %s", idx+1, argType.Name(), fn.Params[idx].Name()))
			}
		}
		return fn.Return, nil
	case PrimitiveType:
		// Values reached through a module member type as Any and stay
		// callable with an Any result.
		if fn.Kind == PrimitiveAny {
			return anyType, nil
		}
	}
	err2 := diag.Typef(0, 0, "value of type %s is not callable", calleeType.Name())
	err2.Code = diag.CodeNotCallable
	return nil, c.at(e, err2)
}

func (c *Checker) checkCast(scope *Scope, e *ast.CastExpression) (Type, error) {
	valueType, err := c.checkExpression(scope, e.Value)
	if err != nil {
		return nil, err
	}
	target := ParseType(e.TypeName, scope)
	if _, unknown := target.(UnknownType); unknown {
		return nil, c.at(e, diag.Typef(0, 0, "unknown type '%s' in cast", e.TypeName))
	}
	switch {
	case isAny(valueType) || isAny(target):
		return target, nil
	case typeEquals(valueType, target):
		return target, nil
	case isNumeric(valueType) && isNumeric(target):
		return target, nil
	case isString(target):
		return target, nil
	default:
		return nil, c.at(e, diag.Typef(0, 0, "cannot cast %s to %s", valueType.Name(), target.Name()))
	}
}

// checkArrayLiteral unifies element types left to right. The first
// non-nopaw element fixes the base type; an element typed exactly
// Optional(base) promotes the whole array to Optional(base); a nopaw
// element forces the final element type to be Optional even when every
// concrete element agreed on the unwrapped base.
func (c *Checker) checkArrayLiteral(scope *Scope, e *ast.ArrayLiteral) (Type, error) {
	var base Type
	sawNull := false
	for _, el := range e.Elements {
		elType, err := c.checkExpression(scope, el)
		if err != nil {
			return nil, err
		}
		if isNull(elType) {
			sawNull = true
			continue
		}
		if base == nil {
			base = elType
			continue
		}
		if typeEquals(elType, base) {
			continue
		}
		if typeEquals(elType, OptionalType{Inner: base}) {
			base = elType
			continue
		}
		return nil, c.at(e, diag.Typef(0, 0, "array element type %s does not match %s", elType.Name(), base.Name()))
	}
	if base == nil {
		base = anyType
	}
	if sawNull {
		if _, alreadyOptional := base.(OptionalType); !alreadyOptional {
			base = OptionalType{Inner: base}
		}
	}
	return ArrayType{Element: base}, nil
}

func (c *Checker) checkIndex(scope *Scope, e *ast.IndexExpression) (Type, error) {
	targetType, err := c.checkExpression(scope, e.Target)
	if err != nil {
		return nil, err
	}
	indexType, err := c.checkExpression(scope, e.Index)
	if err != nil {
		return nil, err
	}
	if !typeEquals(indexType, intType) && !isAny(indexType) {
		return nil, c.at(e, diag.Typef(0, 0, "array index must be Int, got %s", indexType.Name()))
	}
	switch t := targetType.(type) {
	case ArrayType:
		return t.Element, nil
	case PrimitiveType:
		if t.Kind == PrimitiveAny {
			return anyType, nil
		}
	}
	return nil, c.at(e, diag.Typef(0, 0, "cannot index into %s", targetType.Name()))
}

func (c *Checker) checkFieldAccess(scope *Scope, e *ast.FieldAccessExpression) (Type, error) {
	targetType, err := c.checkExpression(scope, e.Target)
	if err != nil {
		return nil, err
	}
	switch t := targetType.(type) {
	case RecordType:
		fieldType, ok := t.Field(e.Field)
		if !ok {
			return nil, c.at(e, diag.Typef(0, 0, "record %s has no field '%s'", t.RecordName, e.Field))
		}
		return fieldType, nil
	case ModuleType:
		return anyType, nil
	case PrimitiveType:
		if t.Kind == PrimitiveAny {
			return anyType, nil
		}
	}
	return nil, c.at(e, diag.Typef(0, 0, "type %s has no fields", targetType.Name()))
}

// Method dispatch is a closed table per receiver type.
func (c *Checker) checkMethodCall(scope *Scope, e *ast.MethodCallExpression) (Type, error) {
	targetType, err := c.checkExpression(scope, e.Target)
	if err != nil {
		return nil, err
	}
	argTypes := make([]Type, 0, len(e.Args))
	for _, arg := range e.Args {
		argType, err := c.checkExpression(scope, arg)
		if err != nil {
			return nil, err
		}
		argTypes = append(argTypes, argType)
	}
	switch t := targetType.(type) {
	case PrimitiveType:
		if t.Kind == PrimitiveAny {
			return anyType, nil
		}
		if t.Kind == PrimitiveString {
			return c.checkStringMethod(e, argTypes)
		}
	case ArrayType:
		return c.checkArrayMethod(e, t, argTypes)
	case ModuleType:
		// Modules are not statically typed; any method goes.
		return anyType, nil
	}
	return nil, c.noSuchMethod(e, targetType)
}

func (c *Checker) checkStringMethod(e *ast.MethodCallExpression, argTypes []Type) (Type, error) {
	switch e.Method {
	case "trim", "to_uppercase", "to_lowercase":
		if len(argTypes) != 0 {
			return nil, c.methodArity(e, 0, len(argTypes))
		}
		return stringType, nil
	case "length":
		if len(argTypes) != 0 {
			return nil, c.methodArity(e, 0, len(argTypes))
		}
		return intType, nil
	case "starts_with", "ends_with", "contains":
		if len(argTypes) != 1 {
			return nil, c.methodArity(e, 1, len(argTypes))
		}
		if !isString(argTypes[0]) && !isAny(argTypes[0]) {
			return nil, c.at(e, diag.Typef(0, 0, "String.%s expects a String argument, got %s", e.Method, argTypes[0].Name()))
		}
		return boolType, nil
	default:
		return nil, c.noSuchMethod(e, stringType)
	}
}

func (c *Checker) checkArrayMethod(e *ast.MethodCallExpression, t ArrayType, argTypes []Type) (Type, error) {
	switch e.Method {
	case "length":
		if len(argTypes) != 0 {
			return nil, c.methodArity(e, 0, len(argTypes))
		}
		return intType, nil
	case "pop":
		if len(argTypes) != 0 {
			return nil, c.methodArity(e, 0, len(argTypes))
		}
		return t.Element, nil
	case "push":
		if len(argTypes) != 1 {
			return nil, c.methodArity(e, 1, len(argTypes))
		}
		if isNull(argTypes[0]) {
			if _, optional := t.Element.(OptionalType); !optional {
				return nil, c.at(e, diag.Typef(0, 0, "cannot push nopaw into %s", t.Name()))
			}
		} else if !typeEquals(argTypes[0], t.Element) && !isAny(argTypes[0]) && !isAny(t.Element) {
			return nil, c.at(e, diag.Typef(0, 0, "cannot push %s into %s", argTypes[0].Name(), t.Name()))
		}
		return voidType, nil
	default:
		return nil, c.noSuchMethod(e, t)
	}
}

func (c *Checker) checkRecordInit(scope *Scope, e *ast.RecordInitExpression) (Type, error) {
	declared, ok := scope.Lookup(e.Name)
	if !ok {
		return nil, c.at(e, diag.Typef(0, 0, "unknown record '%s'", e.Name))
	}
	rec, isRecord := declared.(RecordType)
	if !isRecord {
		return nil, c.at(e, diag.Typef(0, 0, "'%s' is not a record", e.Name))
	}
	supplied := make(map[string]struct{}, len(e.Fields))
	for _, field := range e.Fields {
		fieldType, known := rec.Field(field.Name)
		if !known {
			return nil, c.at(e, diag.Typef(0, 0, "record %s has no field '%s'", rec.RecordName, field.Name))
		}
		if _, dup := supplied[field.Name]; dup {
			return nil, c.at(e, diag.Typef(0, 0, "field '%s' supplied twice in %s literal", field.Name, rec.RecordName))
		}
		supplied[field.Name] = struct{}{}
		valueType, err := c.checkExpression(scope, field.Value)
		if err != nil {
			return nil, err
		}
		if isNull(valueType) {
			if _, optional := fieldType.(OptionalType); !optional {
				return nil, c.at(e, diag.Typef(0, 0, "field '%s' of %s is not optional", field.Name, rec.RecordName))
			}
			continue
		}
		if !assignable(valueType, fieldType) {
			return nil, c.at(e, diag.Typef(0, 0, "field '%s' of %s expects %s, got %s", field.Name, rec.RecordName, fieldType.Name(), valueType.Name()))
		}
	}
	for _, f := range rec.Fields {
		if _, ok := supplied[f.FieldName]; !ok {
			return nil, c.at(e, diag.Typef(0, 0, "missing field '%s' in %s literal", f.FieldName, rec.RecordName))
		}
	}
	return rec, nil
}

func (c *Checker) noSuchMethod(node ast.Node, receiver Type) *diag.Error {
	var method string
	if call, ok := node.(*ast.MethodCallExpression); ok {
		method = call.Method
	}
	err := diag.Typef(0, 0, "no method '%s' on %s", method, receiver.Name())
	err.Code = diag.CodeNoMethod
	return c.at(node, err)
}

func (c *Checker) methodArity(e *ast.MethodCallExpression, want, got int) *diag.Error {
	err := diag.Typef(0, 0, "method '%s' expects %d arguments, got %d", e.Method, want, got)
	err.Code = diag.CodeArity
	return c.at(e, err)
}
