package typechecker

// Scope is a compile-time lexical scope holding name-to-type bindings.
// A name is unique within one scope; lookup walks outward.
type Scope struct {
	parent  *Scope
	symbols map[string]Type
}

// NewScope creates a scope, optionally nested under a parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:  parent,
		symbols: make(map[string]Type),
	}
}

// Define binds a name in the current scope. Redefinition within the same
// scope is rejected; shadowing an outer binding is fine.
func (s *Scope) Define(name string, typ Type) bool {
	if _, exists := s.symbols[name]; exists {
		return false
	}
	s.symbols[name] = typ
	return true
}

// Lookup searches the scope chain outward.
func (s *Scope) Lookup(name string) (Type, bool) {
	if typ, ok := s.symbols[name]; ok {
		return typ, true
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return nil, false
}

// Extend returns a fresh child scope.
func (s *Scope) Extend() *Scope {
	return NewScope(s)
}
