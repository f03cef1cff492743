package interpreter

import (
	"strings"

	"paw/interpreter-go/pkg/ast"
	"paw/interpreter-go/pkg/runtime"
)

// evalMethodCall dispatches on the receiver's runtime tag. The method set
// is closed and small, so this is an exhaustive match per receiver kind
// rather than open-ended dispatch.
func (i *Interpreter) evalMethodCall(e *ast.MethodCallExpression, env *runtime.Environment) (runtime.Value, error) {
	target, err := i.evalExpression(e.Target, env)
	if err != nil {
		return nil, err
	}
	args := make([]runtime.Value, 0, len(e.Args))
	for _, argExpr := range e.Args {
		val, err := i.evalExpression(argExpr, env)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	switch t := target.(type) {
	case runtime.StringValue:
		return i.stringMethod(e, t, args)
	case *runtime.ArrayValue:
		return i.arrayMethod(e, t, args)
	case *runtime.ModuleValue:
		return i.moduleMethod(e, t, args)
	default:
		return nil, i.raise(e, "no method '%s' on %s", e.Method, target.Kind())
	}
}

func (i *Interpreter) stringMethod(e *ast.MethodCallExpression, recv runtime.StringValue, args []runtime.Value) (runtime.Value, error) {
	needs := func(n int) error {
		if len(args) != n {
			return i.raise(e, "String.%s expects %d arguments, got %d", e.Method, n, len(args))
		}
		return nil
	}
	stringArg := func() (string, error) {
		if err := needs(1); err != nil {
			return "", err
		}
		s, ok := args[0].(runtime.StringValue)
		if !ok {
			return "", i.raise(e, "String.%s expects a String argument, got %s", e.Method, args[0].Kind())
		}
		return s.Val, nil
	}
	switch e.Method {
	case "trim":
		if err := needs(0); err != nil {
			return nil, err
		}
		return runtime.StringValue{Val: strings.TrimSpace(recv.Val)}, nil
	case "to_uppercase":
		if err := needs(0); err != nil {
			return nil, err
		}
		return runtime.StringValue{Val: strings.ToUpper(recv.Val)}, nil
	case "to_lowercase":
		if err := needs(0); err != nil {
			return nil, err
		}
		return runtime.StringValue{Val: strings.ToLower(recv.Val)}, nil
	case "length":
		if err := needs(0); err != nil {
			return nil, err
		}
		return runtime.IntValue{Val: int32(len([]rune(recv.Val)))}, nil
	case "starts_with":
		arg, err := stringArg()
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: strings.HasPrefix(recv.Val, arg)}, nil
	case "ends_with":
		arg, err := stringArg()
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: strings.HasSuffix(recv.Val, arg)}, nil
	case "contains":
		arg, err := stringArg()
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: strings.Contains(recv.Val, arg)}, nil
	default:
		return nil, i.raise(e, "no method '%s' on %s", e.Method, recv.Kind())
	}
}

// Arrays are immutable snapshots: push evaluates to a fresh extended
// array and pop to the last element, leaving the receiver untouched.
func (i *Interpreter) arrayMethod(e *ast.MethodCallExpression, recv *runtime.ArrayValue, args []runtime.Value) (runtime.Value, error) {
	switch e.Method {
	case "length":
		if len(args) != 0 {
			return nil, i.raise(e, "Array.length expects 0 arguments, got %d", len(args))
		}
		return runtime.IntValue{Val: int32(len(recv.Elements))}, nil
	case "push":
		if len(args) != 1 {
			return nil, i.raise(e, "Array.push expects 1 argument, got %d", len(args))
		}
		elements := make([]runtime.Value, 0, len(recv.Elements)+1)
		elements = append(elements, recv.Elements...)
		elements = append(elements, args[0])
		return &runtime.ArrayValue{Elements: elements}, nil
	case "pop":
		if len(args) != 0 {
			return nil, i.raise(e, "Array.pop expects 0 arguments, got %d", len(args))
		}
		if len(recv.Elements) == 0 {
			return nil, i.raise(e, "pop from an empty array")
		}
		return recv.Elements[len(recv.Elements)-1], nil
	default:
		return nil, i.raise(e, "no method '%s' on %s", e.Method, recv.Kind())
	}
}

func (i *Interpreter) moduleMethod(e *ast.MethodCallExpression, recv *runtime.ModuleValue, args []runtime.Value) (runtime.Value, error) {
	member, ok := recv.Exports[e.Method]
	if !ok {
		return nil, i.raise(e, "module has no member '%s'", e.Method)
	}
	fn, ok := member.(*runtime.FunctionValue)
	if !ok {
		return nil, i.raise(e, "module member '%s' of kind %s is not callable", e.Method, member.Kind())
	}
	return i.invokeFunction(e, fn, args)
}
