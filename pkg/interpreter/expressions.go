package interpreter

import (
	"math"
	"strings"

	"paw/interpreter-go/pkg/ast"
	"paw/interpreter-go/pkg/runtime"
)

func (i *Interpreter) evalExpression(expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch e := expr.(type) {
	case nil:
		return runtime.NullValue{}, nil
	case *ast.IntLiteral:
		return runtime.IntValue{Val: e.Value}, nil
	case *ast.LongLiteral:
		return runtime.LongValue{Val: e.Value}, nil
	case *ast.FloatLiteral:
		return runtime.FloatValue{Val: e.Value}, nil
	case *ast.DoubleLiteral:
		return runtime.DoubleValue{Val: e.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: e.Value}, nil
	case *ast.BoolLiteral:
		return runtime.BoolValue{Val: e.Value}, nil
	case *ast.CharLiteral:
		return runtime.CharValue{Val: e.Value}, nil
	case *ast.NullLiteral:
		return runtime.NullValue{}, nil
	case *ast.VarExpression:
		val, ok := env.Get(e.Name)
		if !ok {
			return nil, i.raise(e, "undefined variable '%s'", e.Name)
		}
		return val, nil
	case *ast.UnaryExpression:
		return i.evalUnary(e, env)
	case *ast.BinaryExpression:
		return i.evalBinary(e, env)
	case *ast.CallExpression:
		return i.evalCall(e, env)
	case *ast.CastExpression:
		return i.evalCast(e, env)
	case *ast.ArrayLiteral:
		elements := make([]runtime.Value, 0, len(e.Elements))
		for _, el := range e.Elements {
			val, err := i.evalExpression(el, env)
			if err != nil {
				return nil, err
			}
			elements = append(elements, val)
		}
		return &runtime.ArrayValue{Elements: elements}, nil
	case *ast.IndexExpression:
		return i.evalIndex(e, env)
	case *ast.FieldAccessExpression:
		return i.evalFieldAccess(e, env)
	case *ast.MethodCallExpression:
		return i.evalMethodCall(e, env)
	case *ast.RecordInitExpression:
		return i.evalRecordInit(e, env)
	case *ast.AwaitExpression:
		val, err := i.evalExpression(e.Value, env)
		if err != nil {
			return nil, err
		}
		future, ok := val.(*runtime.FutureValue)
		if !ok {
			// Awaiting a non-future is a no-op.
			return val, nil
		}
		return future.Await()
	default:
		return nil, i.raise(expr, "unsupported expression %T", expr)
	}
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evalExpression(e.Operand, env)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case "-":
		switch v := operand.(type) {
		case runtime.IntValue:
			return runtime.IntValue{Val: -v.Val}, nil
		case runtime.LongValue:
			return runtime.LongValue{Val: -v.Val}, nil
		case runtime.FloatValue:
			return runtime.FloatValue{Val: -v.Val}, nil
		case runtime.DoubleValue:
			return runtime.DoubleValue{Val: -v.Val}, nil
		default:
			return nil, i.raise(e, "unary '-' requires a number, got %s", operand.Kind())
		}
	case "!":
		if b, ok := operand.(runtime.BoolValue); ok {
			return runtime.BoolValue{Val: !b.Val}, nil
		}
		return nil, i.raise(e, "unary '!' requires Bool, got %s", operand.Kind())
	default:
		return nil, i.raise(e, "unsupported unary operator '%s'", e.Operator)
	}
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	// && and || short-circuit; everything else evaluates both sides.
	if e.Operator == "&&" || e.Operator == "||" {
		return i.evalLogical(e, env)
	}
	left, err := i.evalExpression(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpression(e.Right, env)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case "+":
		if left.Kind() == runtime.KindString || right.Kind() == runtime.KindString {
			return runtime.StringValue{Val: Render(left) + Render(right)}, nil
		}
		return i.evalArithmetic(e, "+", left, right)
	case "-", "*", "/", "%":
		return i.evalArithmetic(e, e.Operator, left, right)
	case "<", "<=", ">", ">=":
		return i.evalComparison(e, e.Operator, left, right)
	case "==":
		return runtime.BoolValue{Val: valuesEqual(left, right)}, nil
	case "!=":
		return runtime.BoolValue{Val: !valuesEqual(left, right)}, nil
	default:
		return nil, i.raise(e, "unsupported binary operator '%s'", e.Operator)
	}
}

func (i *Interpreter) evalLogical(e *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.evalExpression(e.Left, env)
	if err != nil {
		return nil, err
	}
	lb, ok := left.(runtime.BoolValue)
	if !ok {
		return nil, i.raise(e, "operator '%s' requires Bool operands, got %s", e.Operator, left.Kind())
	}
	if e.Operator == "&&" && !lb.Val {
		return runtime.BoolValue{Val: false}, nil
	}
	if e.Operator == "||" && lb.Val {
		return runtime.BoolValue{Val: true}, nil
	}
	right, err := i.evalExpression(e.Right, env)
	if err != nil {
		return nil, err
	}
	rb, ok := right.(runtime.BoolValue)
	if !ok {
		return nil, i.raise(e, "operator '%s' requires Bool operands, got %s", e.Operator, right.Kind())
	}
	return rb, nil
}

// valuesEqual widens mixed numeric operands to the larger class before
// comparing, matching the checker's cross-numeric equality rule.
// Everything else is structural equality.
func valuesEqual(left, right runtime.Value) bool {
	lc, lok := classify(left)
	rc, rok := classify(right)
	if lok && rok && left.Kind() != right.Kind() {
		if lc <= classLong && rc <= classLong {
			return asLong(left) == asLong(right)
		}
		return asDouble(left) == asDouble(right)
	}
	return runtime.Equal(left, right)
}

// numericClass mirrors the checker's widening order.
type numericClass int

const (
	classInt numericClass = iota
	classLong
	classFloat
	classDouble
)

func classify(val runtime.Value) (numericClass, bool) {
	switch val.Kind() {
	case runtime.KindInt:
		return classInt, true
	case runtime.KindLong:
		return classLong, true
	case runtime.KindFloat:
		return classFloat, true
	case runtime.KindDouble:
		return classDouble, true
	default:
		return 0, false
	}
}

func asLong(val runtime.Value) int64 {
	switch v := val.(type) {
	case runtime.IntValue:
		return int64(v.Val)
	case runtime.LongValue:
		return v.Val
	default:
		return 0
	}
}

func asDouble(val runtime.Value) float64 {
	switch v := val.(type) {
	case runtime.IntValue:
		return float64(v.Val)
	case runtime.LongValue:
		return float64(v.Val)
	case runtime.FloatValue:
		return float64(v.Val)
	case runtime.DoubleValue:
		return v.Val
	default:
		return 0
	}
}

// evalArithmetic widens to the largest numeric class present, matching
// the checker's result rule.
func (i *Interpreter) evalArithmetic(node ast.Node, op string, left, right runtime.Value) (runtime.Value, error) {
	lc, lok := classify(left)
	rc, rok := classify(right)
	if !lok || !rok {
		return nil, i.raise(node, "operator '%s' cannot be applied to %s and %s", op, left.Kind(), right.Kind())
	}
	class := lc
	if rc > class {
		class = rc
	}
	if class == classInt || class == classLong {
		a, b := asLong(left), asLong(right)
		var result int64
		switch op {
		case "+":
			result = a + b
		case "-":
			result = a - b
		case "*":
			result = a * b
		case "/":
			if b == 0 {
				return nil, i.raise(node, "division by zero")
			}
			result = a / b
		case "%":
			if b == 0 {
				return nil, i.raise(node, "division by zero")
			}
			result = a % b
		}
		if class == classInt {
			return runtime.IntValue{Val: int32(result)}, nil
		}
		return runtime.LongValue{Val: result}, nil
	}
	a, b := asDouble(left), asDouble(right)
	var result float64
	switch op {
	case "+":
		result = a + b
	case "-":
		result = a - b
	case "*":
		result = a * b
	case "/":
		result = a / b
	case "%":
		result = math.Mod(a, b)
	}
	if class == classFloat {
		return runtime.FloatValue{Val: float32(result)}, nil
	}
	return runtime.DoubleValue{Val: result}, nil
}

func (i *Interpreter) evalComparison(node ast.Node, op string, left, right runtime.Value) (runtime.Value, error) {
	lc, lok := classify(left)
	rc, rok := classify(right)
	if !lok || !rok {
		return nil, i.raise(node, "operator '%s' cannot be applied to %s and %s", op, left.Kind(), right.Kind())
	}
	var result bool
	if lc <= classLong && rc <= classLong {
		// Integer operands stay exact; float64 loses Long precision
		// above 2^53.
		a, b := asLong(left), asLong(right)
		switch op {
		case "<":
			result = a < b
		case "<=":
			result = a <= b
		case ">":
			result = a > b
		case ">=":
			result = a >= b
		}
	} else {
		a, b := asDouble(left), asDouble(right)
		switch op {
		case "<":
			result = a < b
		case "<=":
			result = a <= b
		case ">":
			result = a > b
		case ">=":
			result = a >= b
		}
	}
	return runtime.BoolValue{Val: result}, nil
}

func (i *Interpreter) evalCall(e *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	callee, err := i.evalExpression(e.Callee, env)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(*runtime.FunctionValue)
	if !ok {
		return nil, i.raise(e, "value of kind %s is not callable", callee.Kind())
	}
	args := make([]runtime.Value, 0, len(e.Args))
	for _, argExpr := range e.Args {
		val, err := i.evalExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return i.invokeFunction(e, fn, args)
}

// invokeFunction binds arguments positionally in a child of the captured
// environment. A suspending function returns a future that evaluates the
// body on first await; arguments are copied out into the call scope
// before the future exists, so no binding is held across the suspension
// point.
func (i *Interpreter) invokeFunction(node ast.Node, fn *runtime.FunctionValue, args []runtime.Value) (runtime.Value, error) {
	if len(args) != len(fn.Params) {
		return nil, i.raise(node, "function '%s' expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	localEnv := fn.Closure.Extend()
	for idx, param := range fn.Params {
		localEnv.Define(param.Name, args[idx])
	}
	if fn.Suspending {
		return runtime.NewFutureValue(func() (runtime.Value, error) {
			return i.runBody(fn, localEnv)
		}), nil
	}
	return i.runBody(fn, localEnv)
}

func (i *Interpreter) runBody(fn *runtime.FunctionValue, localEnv *runtime.Environment) (runtime.Value, error) {
	if i.callDepth >= i.opts.MaxCallDepth {
		return nil, raiseSignal{message: "call depth limit exceeded in function '" + fn.Name + "'"}
	}
	i.callDepth++
	err := i.evalStatements(fn.Body, localEnv)
	i.callDepth--
	if err != nil {
		if ret, ok := err.(returnSignal); ok {
			return ret.value, nil
		}
		return nil, err
	}
	return runtime.NullValue{}, nil
}

func (i *Interpreter) evalCast(e *ast.CastExpression, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.evalExpression(e.Value, env)
	if err != nil {
		return nil, err
	}
	target := strings.TrimSuffix(strings.TrimSpace(e.TypeName), "?")
	switch target {
	case "Int":
		if cls, ok := classify(val); ok {
			if cls <= classLong {
				return runtime.IntValue{Val: int32(asLong(val))}, nil
			}
			return runtime.IntValue{Val: int32(asDouble(val))}, nil
		}
	case "Long":
		if cls, ok := classify(val); ok {
			if cls <= classLong {
				return runtime.LongValue{Val: asLong(val)}, nil
			}
			return runtime.LongValue{Val: int64(asDouble(val))}, nil
		}
	case "Float":
		if _, ok := classify(val); ok {
			return runtime.FloatValue{Val: float32(asDouble(val))}, nil
		}
	case "Double":
		if _, ok := classify(val); ok {
			return runtime.DoubleValue{Val: asDouble(val)}, nil
		}
	case "String":
		return runtime.StringValue{Val: Render(val)}, nil
	default:
		// Identity casts (records, Any) pass the value through.
		return val, nil
	}
	return nil, i.raise(e, "cannot cast %s to %s", val.Kind(), target)
}

// Out-of-range indexing yields nopaw rather than failing.
func (i *Interpreter) evalIndex(e *ast.IndexExpression, env *runtime.Environment) (runtime.Value, error) {
	target, err := i.evalExpression(e.Target, env)
	if err != nil {
		return nil, err
	}
	index, err := i.evalExpression(e.Index, env)
	if err != nil {
		return nil, err
	}
	arr, ok := target.(*runtime.ArrayValue)
	if !ok {
		return nil, i.raise(e, "cannot index into %s", target.Kind())
	}
	idx, ok := index.(runtime.IntValue)
	if !ok {
		return nil, i.raise(e, "array index must be Int, got %s", index.Kind())
	}
	n := int(idx.Val)
	if n < 0 || n >= len(arr.Elements) {
		return runtime.NullValue{}, nil
	}
	return arr.Elements[n], nil
}

func (i *Interpreter) evalFieldAccess(e *ast.FieldAccessExpression, env *runtime.Environment) (runtime.Value, error) {
	target, err := i.evalExpression(e.Target, env)
	if err != nil {
		return nil, err
	}
	switch t := target.(type) {
	case *runtime.RecordValue:
		val, ok := t.Fields[e.Field]
		if !ok {
			return nil, i.raise(e, "record %s has no field '%s'", t.TypeName, e.Field)
		}
		return val, nil
	case *runtime.ModuleValue:
		val, ok := t.Exports[e.Field]
		if !ok {
			return nil, i.raise(e, "module has no member '%s'", e.Field)
		}
		return val, nil
	default:
		return nil, i.raise(e, "value of kind %s has no fields", target.Kind())
	}
}

func (i *Interpreter) evalRecordInit(e *ast.RecordInitExpression, env *runtime.Environment) (runtime.Value, error) {
	order := make([]string, 0, len(e.Fields))
	fields := make(map[string]runtime.Value, len(e.Fields))
	for _, field := range e.Fields {
		val, err := i.evalExpression(field.Value, env)
		if err != nil {
			return nil, err
		}
		order = append(order, field.Name)
		fields[field.Name] = val
	}
	return &runtime.RecordValue{TypeName: e.Name, Order: order, Fields: fields}, nil
}
