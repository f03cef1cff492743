package interpreter

import (
	"strconv"
	"strings"

	"paw/interpreter-go/pkg/runtime"
)

// Render produces the textual form say prints and string concatenation
// uses. Records render as `{f: v, ...}`, arrays as `[v, v, ...]`;
// functions and futures are opaque placeholders.
func Render(val runtime.Value) string {
	switch v := val.(type) {
	case runtime.NullValue:
		return "nopaw"
	case runtime.IntValue:
		return strconv.FormatInt(int64(v.Val), 10)
	case runtime.LongValue:
		return strconv.FormatInt(v.Val, 10)
	case runtime.FloatValue:
		return strconv.FormatFloat(float64(v.Val), 'g', -1, 32)
	case runtime.DoubleValue:
		return strconv.FormatFloat(v.Val, 'g', -1, 64)
	case runtime.BoolValue:
		if v.Val {
			return "true"
		}
		return "false"
	case runtime.CharValue:
		return string(v.Val)
	case runtime.StringValue:
		return v.Val
	case *runtime.ArrayValue:
		parts := make([]string, 0, len(v.Elements))
		for _, el := range v.Elements {
			parts = append(parts, Render(el))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *runtime.RecordValue:
		parts := make([]string, 0, len(v.Order))
		for _, name := range v.Order {
			parts = append(parts, name+": "+Render(v.Fields[name]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *runtime.ModuleValue:
		return "<module " + v.Path + ">"
	case *runtime.FunctionValue:
		if v.Name != "" {
			return "<fun " + v.Name + ">"
		}
		return "<fun>"
	case *runtime.FutureValue:
		return "<future>"
	default:
		return "<" + val.Kind().String() + ">"
	}
}
