package types

import "sort"

// Mapping is a substitution table from type-parameter names to types, built
// up while unifying argument types with overload parameter types.
type Mapping struct {
	entries map[string]Type

	// demoted records that some binding had to widen to dyn. Overloads that
	// unify only through such a widening rank below overloads that do not.
	demoted bool
}

func NewMapping() *Mapping {
	return &Mapping{entries: make(map[string]Type)}
}

func (m *Mapping) Add(name string, t Type) {
	m.entries[name] = t
}

func (m *Mapping) Find(name string) (Type, bool) {
	t, ok := m.entries[name]
	return t, ok
}

// Copy produces an independent mapping so a failed unification attempt does
// not pollute the candidate ranking.
func (m *Mapping) Copy() *Mapping {
	c := NewMapping()
	for k, v := range m.entries {
		c.entries[k] = v
	}
	c.demoted = m.demoted
	return c
}

// Demoted reports whether any binding widened to dyn during unification.
func (m *Mapping) Demoted() bool { return m.demoted }

// Names returns the bound parameter names in sorted order.
func (m *Mapping) Names() []string {
	names := make([]string, 0, len(m.entries))
	for k := range m.entries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Substitute replaces bound type parameters in t. When typeParamToDyn is
// true, unbound parameters are replaced with dyn; the checker uses this for
// the final annotated node types.
func Substitute(m *Mapping, t Type, typeParamToDyn bool) Type {
	switch tt := t.(type) {
	case *ParamType:
		if bound, ok := m.Find(tt.Name); ok {
			return Substitute(m, bound, typeParamToDyn)
		}
		if typeParamToDyn {
			return DynType
		}
		return tt
	case *ListType:
		return NewListType(Substitute(m, tt.Elem, typeParamToDyn))
	case *MapType:
		return NewMapType(
			Substitute(m, tt.Key, typeParamToDyn),
			Substitute(m, tt.Value, typeParamToDyn))
	case *OptionalType:
		return NewOptionalType(Substitute(m, tt.Elem, typeParamToDyn))
	case *WrapperType:
		return NewWrapperType(Substitute(m, tt.Elem, typeParamToDyn))
	case *OpaqueType:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = Substitute(m, p, typeParamToDyn)
		}
		return NewOpaqueType(tt.Name, params...)
	case *FunctionType:
		params := make([]Type, len(tt.Params))
		for i, p := range tt.Params {
			params[i] = Substitute(m, p, typeParamToDyn)
		}
		return NewFunctionType(Substitute(m, tt.Result, typeParamToDyn), params...)
	case *TypeType:
		if tt.Of == nil {
			return tt
		}
		return NewTypeType(Substitute(m, tt.Of, typeParamToDyn))
	default:
		return t
	}
}

// IsAssignable reports whether a value of type `from` may be used where
// `to` is expected, binding type parameters in the mapping along the way.
// On failure the mapping is left unchanged.
func IsAssignable(m *Mapping, to, from Type) bool {
	attempt := m.Copy()
	if internalIsAssignable(attempt, to, from) {
		*m = *attempt
		return true
	}
	return false
}

// IsAssignableList unifies parameter and argument lists pairwise.
func IsAssignableList(m *Mapping, to, from []Type) bool {
	if len(to) != len(from) {
		return false
	}
	attempt := m.Copy()
	for i, t := range to {
		if !internalIsAssignable(attempt, t, from[i]) {
			return false
		}
	}
	*m = *attempt
	return true
}

func internalIsAssignable(m *Mapping, to, from Type) bool {
	// Resolve existing bindings before comparing shapes.
	if p, ok := to.(*ParamType); ok {
		if bound, found := m.Find(p.Name); found {
			return refineBinding(m, p.Name, bound, from)
		}
		if notReferencedIn(m, p.Name, from) {
			m.Add(p.Name, from)
			return true
		}
		return false
	}
	if p, ok := from.(*ParamType); ok {
		if bound, found := m.Find(p.Name); found {
			return internalIsAssignable(m, to, bound)
		}
		if notReferencedIn(m, p.Name, to) {
			m.Add(p.Name, to)
			return true
		}
		return false
	}

	// dyn and error are assignable from and to everything.
	if IsDynOrError(to) || IsDynOrError(from) {
		return true
	}

	// null is assignable to wrappers, optionals, structs and itself.
	if from.Kind() == NullKind {
		switch to.Kind() {
		case NullKind, WrapperKind, OptionalKind, StructKind:
			return true
		}
		return false
	}

	// Enum and int are interchangeable.
	if to.Kind() == EnumKind && from.Kind() == IntKind {
		return true
	}
	if to.Kind() == IntKind && from.Kind() == EnumKind {
		return true
	}

	// A wrapper accepts its scalar.
	if w, ok := to.(*WrapperType); ok {
		if from.Kind() == WrapperKind {
			return internalIsAssignable(m, w.Elem, from.(*WrapperType).Elem)
		}
		return internalIsAssignable(m, w.Elem, from)
	}
	if w, ok := from.(*WrapperType); ok {
		return internalIsAssignable(m, to, w.Elem)
	}

	if to.Kind() != from.Kind() {
		return false
	}
	switch t := to.(type) {
	case *ListType:
		return internalIsAssignable(m, t.Elem, from.(*ListType).Elem)
	case *MapType:
		f := from.(*MapType)
		return internalIsAssignable(m, t.Key, f.Key) &&
			internalIsAssignable(m, t.Value, f.Value)
	case *OptionalType:
		return internalIsAssignable(m, t.Elem, from.(*OptionalType).Elem)
	case *OpaqueType:
		f := from.(*OpaqueType)
		if t.Name != f.Name || len(t.Params) != len(f.Params) {
			return false
		}
		for i, p := range t.Params {
			if !internalIsAssignable(m, p, f.Params[i]) {
				return false
			}
		}
		return true
	case *FunctionType:
		f := from.(*FunctionType)
		if len(t.Params) != len(f.Params) {
			return false
		}
		if !internalIsAssignable(m, t.Result, f.Result) {
			return false
		}
		for i, p := range t.Params {
			if !internalIsAssignable(m, p, f.Params[i]) {
				return false
			}
		}
		return true
	case *TypeType:
		f := from.(*TypeType)
		if t.Of == nil || f.Of == nil {
			return true
		}
		return internalIsAssignable(m, t.Of, f.Of)
	default:
		return to.Equal(from)
	}
}

// refineBinding widens an existing binding to the least upper bound of the
// old and new types. Widening all the way to dyn keeps the overload valid
// but demotes it in candidate ranking.
func refineBinding(m *Mapping, name string, bound, observed Type) bool {
	if internalIsAssignable(m, bound, observed) {
		return true
	}
	if internalIsAssignable(m, observed, bound) {
		m.Add(name, observed)
		return true
	}
	lub := Join(bound, observed)
	if IsDyn(lub) {
		m.demoted = true
	}
	m.Add(name, lub)
	return true
}

// notReferencedIn guards against recursive bindings such as T -> list(T).
func notReferencedIn(m *Mapping, name string, t Type) bool {
	switch tt := t.(type) {
	case *ParamType:
		if tt.Name == name {
			return false
		}
		if bound, ok := m.Find(tt.Name); ok {
			return notReferencedIn(m, name, bound)
		}
		return true
	case *ListType:
		return notReferencedIn(m, name, tt.Elem)
	case *MapType:
		return notReferencedIn(m, name, tt.Key) && notReferencedIn(m, name, tt.Value)
	case *OptionalType:
		return notReferencedIn(m, name, tt.Elem)
	case *WrapperType:
		return notReferencedIn(m, name, tt.Elem)
	case *OpaqueType:
		for _, p := range tt.Params {
			if !notReferencedIn(m, name, p) {
				return false
			}
		}
		return true
	case *FunctionType:
		if !notReferencedIn(m, name, tt.Result) {
			return false
		}
		for _, p := range tt.Params {
			if !notReferencedIn(m, name, p) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Join computes the least upper bound of two types: the type itself when
// equal, dyn otherwise. Enum joins with int to int.
func Join(t1, t2 Type) Type {
	if t1 == nil {
		return t2
	}
	if t2 == nil {
		return t1
	}
	if t1.Equal(t2) {
		return t1
	}
	if (t1.Kind() == EnumKind && t2.Kind() == IntKind) ||
		(t1.Kind() == IntKind && t2.Kind() == EnumKind) {
		return IntType
	}
	return DynType
}
