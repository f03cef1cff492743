package typechecker

import (
	"fmt"
	"strings"
)

// Type represents a Paw type understood by the checker.
type Type interface {
	Name() string
}

type PrimitiveKind string

const (
	PrimitiveInt    PrimitiveKind = "Int"
	PrimitiveLong   PrimitiveKind = "Long"
	PrimitiveFloat  PrimitiveKind = "Float"
	PrimitiveDouble PrimitiveKind = "Double"
	PrimitiveBool   PrimitiveKind = "Bool"
	PrimitiveChar   PrimitiveKind = "Char"
	PrimitiveString PrimitiveKind = "String"
	PrimitiveVoid   PrimitiveKind = "Void"
	PrimitiveAny    PrimitiveKind = "Any"
)

type PrimitiveType struct {
	Kind PrimitiveKind
}

func (p PrimitiveType) Name() string { return string(p.Kind) }

// OptionalType wraps a type that may also be nopaw. Optionality is applied
// at most once: Optional(Optional(T)) never arises.
type OptionalType struct {
	Inner Type
}

func (o OptionalType) Name() string { return o.Inner.Name() + "?" }

type ArrayType struct {
	Element Type
}

func (a ArrayType) Name() string {
	if a.Element == nil {
		return "Array<unknown>"
	}
	return "Array<" + a.Element.Name() + ">"
}

// RecordFieldType is one named field of a record, in declaration order.
type RecordFieldType struct {
	FieldName string
	FieldType Type
}

type RecordType struct {
	RecordName string
	Fields     []RecordFieldType
}

func (r RecordType) Name() string { return r.RecordName }

// Field returns the declared type of a field, if present.
func (r RecordType) Field(name string) (Type, bool) {
	for _, f := range r.Fields {
		if f.FieldName == name {
			return f.FieldType, true
		}
	}
	return nil, false
}

// ModuleType is the type of an imported module alias. Module members are
// not statically typed; access through them yields Any.
type ModuleType struct{}

func (ModuleType) Name() string { return "Module" }

// FunctionType is the checker-internal type of a declared function.
type FunctionType struct {
	Params     []Type
	Return     Type
	Suspending bool
}

func (FunctionType) Name() string { return "Function" }

// NullType is the checker-internal type of the nopaw literal. It never
// escapes into a binding; Let and record init special-case it.
type NullType struct{}

func (NullType) Name() string { return "nopaw" }

// UnknownType marks a declared-type name that did not resolve.
type UnknownType struct{}

func (UnknownType) Name() string { return "Unknown" }

var (
	intType    = PrimitiveType{Kind: PrimitiveInt}
	longType   = PrimitiveType{Kind: PrimitiveLong}
	floatType  = PrimitiveType{Kind: PrimitiveFloat}
	doubleType = PrimitiveType{Kind: PrimitiveDouble}
	boolType   = PrimitiveType{Kind: PrimitiveBool}
	charType   = PrimitiveType{Kind: PrimitiveChar}
	stringType = PrimitiveType{Kind: PrimitiveString}
	voidType   = PrimitiveType{Kind: PrimitiveVoid}
	anyType    = PrimitiveType{Kind: PrimitiveAny}
)

// ParseType resolves a declared-type string against a scope. A trailing
// '?' wraps the inner type in Optional; `Array<T>` and `T[]` denote
// arrays; known keywords map to scalars; anything else is looked up as a
// user-defined record (or module) name, falling back to Unknown.
func ParseType(name string, scope *Scope) Type {
	name = strings.TrimSpace(name)
	if name == "" {
		return voidType
	}
	if strings.HasSuffix(name, "?") {
		inner := ParseType(strings.TrimSuffix(name, "?"), scope)
		if _, ok := inner.(OptionalType); ok {
			return inner
		}
		return OptionalType{Inner: inner}
	}
	if strings.HasPrefix(name, "Array<") && strings.HasSuffix(name, ">") {
		inner := ParseType(name[len("Array<"):len(name)-1], scope)
		return ArrayType{Element: inner}
	}
	if strings.HasSuffix(name, "[]") {
		inner := ParseType(strings.TrimSuffix(name, "[]"), scope)
		return ArrayType{Element: inner}
	}
	switch name {
	case "Int":
		return intType
	case "Long":
		return longType
	case "Float":
		return floatType
	case "Double":
		return doubleType
	case "Bool":
		return boolType
	case "Char":
		return charType
	case "String":
		return stringType
	case "Void":
		return voidType
	case "Any":
		return anyType
	case "Module":
		return ModuleType{}
	}
	if scope != nil {
		if typ, ok := scope.Lookup(name); ok {
			if rec, isRecord := typ.(RecordType); isRecord {
				return rec
			}
			if _, isModule := typ.(ModuleType); isModule {
				return ModuleType{}
			}
		}
	}
	return UnknownType{}
}

// numericRank orders the numeric class for widening: Int < Long < Float < Double.
func numericRank(t Type) (int, bool) {
	p, ok := t.(PrimitiveType)
	if !ok {
		return 0, false
	}
	switch p.Kind {
	case PrimitiveInt:
		return 0, true
	case PrimitiveLong:
		return 1, true
	case PrimitiveFloat:
		return 2, true
	case PrimitiveDouble:
		return 3, true
	}
	return 0, false
}

func isNumeric(t Type) bool {
	_, ok := numericRank(t)
	return ok
}

func widen(a, b Type) Type {
	ra, _ := numericRank(a)
	rb, _ := numericRank(b)
	if ra >= rb {
		return a
	}
	return b
}

func typeEquals(a, b Type) bool {
	switch at := a.(type) {
	case PrimitiveType:
		bt, ok := b.(PrimitiveType)
		return ok && at.Kind == bt.Kind
	case OptionalType:
		bt, ok := b.(OptionalType)
		return ok && typeEquals(at.Inner, bt.Inner)
	case ArrayType:
		bt, ok := b.(ArrayType)
		return ok && typeEquals(at.Element, bt.Element)
	case RecordType:
		bt, ok := b.(RecordType)
		return ok && at.RecordName == bt.RecordName
	case ModuleType:
		_, ok := b.(ModuleType)
		return ok
	case FunctionType:
		_, ok := b.(FunctionType)
		return ok
	case NullType:
		_, ok := b.(NullType)
		return ok
	case UnknownType:
		_, ok := b.(UnknownType)
		return ok
	default:
		return false
	}
}

func isAny(t Type) bool {
	p, ok := t.(PrimitiveType)
	return ok && p.Kind == PrimitiveAny
}

func isString(t Type) bool {
	p, ok := t.(PrimitiveType)
	return ok && p.Kind == PrimitiveString
}

func isBool(t Type) bool {
	p, ok := t.(PrimitiveType)
	return ok && p.Kind == PrimitiveBool
}

func isNull(t Type) bool {
	_, ok := t.(NullType)
	return ok
}

// assignable implements the declaration-compatibility rule shared by let,
// assignment, calls, returns, and record fields: exact match, T into
// Optional(T), nopaw into Optional, cross-numeric, or an Any on either side.
func assignable(value, declared Type) bool {
	if isAny(declared) || isAny(value) {
		return true
	}
	if typeEquals(value, declared) {
		return true
	}
	if opt, ok := declared.(OptionalType); ok {
		if isNull(value) {
			return true
		}
		if typeEquals(value, opt.Inner) {
			return true
		}
		if isNumeric(value) && isNumeric(opt.Inner) {
			return true
		}
	}
	if isNumeric(value) && isNumeric(declared) {
		return true
	}
	if va, ok := value.(ArrayType); ok {
		if da, ok := declared.(ArrayType); ok {
			// An empty literal infers Array<Any>; element widening also
			// covers Array<T> into Array<T?>.
			if isAny(va.Element) || isAny(da.Element) {
				return true
			}
			if opt, ok := da.Element.(OptionalType); ok && typeEquals(va.Element, opt.Inner) {
				return true
			}
		}
	}
	return false
}

// isNullComparable reports whether an equality test of typ against a
// nopaw operand is meaningful: typ must be Optional (or nopaw itself).
func isNullComparable(typ, other Type) bool {
	if !isNull(other) {
		return false
	}
	if _, ok := typ.(OptionalType); ok {
		return true
	}
	return isNull(typ)
}

// Comparison and equality operators always yield Bool; arithmetic widens.
func binaryResult(op string, lhs, rhs Type) (Type, error) {
	switch op {
	case "+":
		if isString(lhs) || isString(rhs) {
			return stringType, nil
		}
	case "&&", "||":
		if isBool(lhs) && isBool(rhs) {
			return boolType, nil
		}
		return nil, fmt.Errorf("operator '%s' requires Bool operands, got %s and %s", op, lhs.Name(), rhs.Name())
	case "==", "!=":
		if typeEquals(lhs, rhs) || (isNumeric(lhs) && isNumeric(rhs)) {
			return boolType, nil
		}
		// Comparing an optional against nopaw is the null test.
		if isNullComparable(lhs, rhs) || isNullComparable(rhs, lhs) {
			return boolType, nil
		}
		return nil, fmt.Errorf("operator '%s' requires identical operand types, got %s and %s", op, lhs.Name(), rhs.Name())
	}
	if isNumeric(lhs) && isNumeric(rhs) {
		switch op {
		case "+", "-", "*", "/", "%":
			return widen(lhs, rhs), nil
		case "<", "<=", ">", ">=":
			return boolType, nil
		}
	}
	return nil, fmt.Errorf("operator '%s' cannot be applied to %s and %s", op, lhs.Name(), rhs.Name())
}
