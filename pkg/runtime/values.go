// Package runtime holds Paw's runtime values and the shared mutable
// environment chain the evaluator threads through a program.
package runtime

import (
	"fmt"
	"sync"

	"paw/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBool
	KindChar
	KindString
	KindArray
	KindRecord
	KindModule
	KindFunction
	KindFuture
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "nopaw"
	case KindInt:
		return "Int"
	case KindLong:
		return "Long"
	case KindFloat:
		return "Float"
	case KindDouble:
		return "Double"
	case KindBool:
		return "Bool"
	case KindChar:
		return "Char"
	case KindString:
		return "String"
	case KindArray:
		return "Array"
	case KindRecord:
		return "Record"
	case KindModule:
		return "Module"
	case KindFunction:
		return "Function"
	case KindFuture:
		return "Future"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

// NullValue is the nopaw literal at runtime.
type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type IntValue struct {
	Val int32
}

func (IntValue) Kind() Kind { return KindInt }

type LongValue struct {
	Val int64
}

func (LongValue) Kind() Kind { return KindLong }

type FloatValue struct {
	Val float32
}

func (FloatValue) Kind() Kind { return KindFloat }

type DoubleValue struct {
	Val float64
}

func (DoubleValue) Kind() Kind { return KindDouble }

type BoolValue struct {
	Val bool
}

func (BoolValue) Kind() Kind { return KindBool }

type CharValue struct {
	Val rune
}

func (CharValue) Kind() Kind { return KindChar }

type StringValue struct {
	Val string
}

func (StringValue) Kind() Kind { return KindString }

//-----------------------------------------------------------------------------
// Collections, records, modules
//-----------------------------------------------------------------------------

// ArrayValue is an immutable snapshot; push/pop build fresh values.
type ArrayValue struct {
	Elements []Value
}

func (*ArrayValue) Kind() Kind { return KindArray }

// RecordValue keeps its field order so rendering is deterministic.
type RecordValue struct {
	TypeName string
	Order    []string
	Fields   map[string]Value
}

func (*RecordValue) Kind() Kind { return KindRecord }

// ModuleValue is the namespace produced by executing an imported file.
type ModuleValue struct {
	Path    string
	Order   []string
	Exports map[string]Value
}

func (*ModuleValue) Kind() Kind { return KindModule }

//-----------------------------------------------------------------------------
// Functions and futures
//-----------------------------------------------------------------------------

// FunctionValue captures the environment active at the point of
// declaration, by reference. Two function values are never equal.
type FunctionValue struct {
	Name       string
	Params     []ast.Param
	Body       []ast.Statement
	Closure    *Environment
	Suspending bool
}

func (*FunctionValue) Kind() Kind { return KindFunction }

// FutureValue memoizes a suspended computation that only makes progress
// when awaited. The runner is invoked at most once.
type FutureValue struct {
	once   sync.Once
	done   chan struct{}
	value  Value
	err    error
	runner func() (Value, error)
}

func NewFutureValue(runner func() (Value, error)) *FutureValue {
	return &FutureValue{
		done:   make(chan struct{}),
		runner: runner,
	}
}

func (*FutureValue) Kind() Kind { return KindFuture }

// Await forces the computation on first call and returns the memoized
// result afterwards.
func (v *FutureValue) Await() (Value, error) {
	v.once.Do(func() {
		if v.runner == nil {
			v.value = NullValue{}
			close(v.done)
			return
		}
		v.value, v.err = v.runner()
		close(v.done)
	})
	<-v.done
	return v.value, v.err
}

//-----------------------------------------------------------------------------
// Equality
//-----------------------------------------------------------------------------

// Equal implements Paw's structural equality. Scalars, arrays, records,
// and modules compare by content; functions and futures are never equal
// to anything, themselves included.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case NullValue:
		_, ok := b.(NullValue)
		return ok
	case IntValue:
		bv, ok := b.(IntValue)
		return ok && av.Val == bv.Val
	case LongValue:
		bv, ok := b.(LongValue)
		return ok && av.Val == bv.Val
	case FloatValue:
		bv, ok := b.(FloatValue)
		return ok && av.Val == bv.Val
	case DoubleValue:
		bv, ok := b.(DoubleValue)
		return ok && av.Val == bv.Val
	case BoolValue:
		bv, ok := b.(BoolValue)
		return ok && av.Val == bv.Val
	case CharValue:
		bv, ok := b.(CharValue)
		return ok && av.Val == bv.Val
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	case *ArrayValue:
		bv, ok := b.(*ArrayValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for idx := range av.Elements {
			if !Equal(av.Elements[idx], bv.Elements[idx]) {
				return false
			}
		}
		return true
	case *RecordValue:
		bv, ok := b.(*RecordValue)
		if !ok || av.TypeName != bv.TypeName || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for name, val := range av.Fields {
			other, present := bv.Fields[name]
			if !present || !Equal(val, other) {
				return false
			}
		}
		return true
	case *ModuleValue:
		bv, ok := b.(*ModuleValue)
		if !ok || len(av.Exports) != len(bv.Exports) {
			return false
		}
		for name, val := range av.Exports {
			other, present := bv.Exports[name]
			if !present || !Equal(val, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
