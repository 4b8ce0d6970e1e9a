package types

import "testing"

func TestTypeEquality(t *testing.T) {
	tests := []struct {
		a, b  Type
		equal bool
	}{
		{IntType, IntType, true},
		{IntType, UintType, false},
		{NewListType(IntType), NewListType(IntType), true},
		{NewListType(IntType), NewListType(DynType), false},
		{NewMapType(StringType, IntType), NewMapType(StringType, IntType), true},
		{NewMapType(StringType, IntType), NewMapType(IntType, StringType), false},
		{NewOpaqueType("vector", IntType), NewOpaqueType("vector", IntType), true},
		{NewOpaqueType("vector", IntType), NewOpaqueType("vector", DoubleType), false},
		{NewStructType("acme.Msg"), NewStructType("acme.Msg"), true},
		{NewStructType("acme.Msg"), NewStructType("acme.Other"), false},
		{NewTypeType(IntType), NewTypeType(IntType), true},
		{NewTypeType(nil), NewTypeType(nil), true},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.equal {
			t.Errorf("%s == %s: got %v, want %v", tt.a, tt.b, got, tt.equal)
		}
	}
}

func TestIsAssignable(t *testing.T) {
	tests := []struct {
		name string
		to   Type
		from Type
		ok   bool
	}{
		{"identity", IntType, IntType, true},
		{"int to uint", UintType, IntType, false},
		{"dyn from anything", DynType, NewListType(StringType), true},
		{"anything from dyn", NewListType(StringType), DynType, true},
		{"null to wrapper", NewWrapperType(IntType), NullType, true},
		{"null to struct", NewStructType("acme.Msg"), NullType, true},
		{"null to int", IntType, NullType, false},
		{"enum to int", IntType, NewEnumType("acme.Color"), true},
		{"int to enum", NewEnumType("acme.Color"), IntType, true},
		{"wrapper from scalar", NewWrapperType(IntType), IntType, true},
		{"scalar from wrapper", IntType, NewWrapperType(IntType), true},
		{"list covariant elem", NewListType(DynType), NewListType(IntType), true},
		{"list wrong elem", NewListType(StringType), NewListType(IntType), false},
		{"optional elem", NewOptionalType(IntType), NewOptionalType(IntType), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMapping()
			if got := IsAssignable(m, tt.to, tt.from); got != tt.ok {
				t.Errorf("IsAssignable(%s, %s) = %v, want %v", tt.to, tt.from, got, tt.ok)
			}
		})
	}
}

func TestTypeParamBinding(t *testing.T) {
	m := NewMapping()
	a := NewTypeParamType("A")
	if !IsAssignable(m, a, IntType) {
		t.Fatal("param should bind to int")
	}
	bound, ok := m.Find("A")
	if !ok || !bound.Equal(IntType) {
		t.Fatalf("binding = %v", bound)
	}
	// Second use with the same type holds.
	if !IsAssignable(m, a, IntType) {
		t.Fatal("bound param should accept the same type")
	}
	// A conflicting concrete type widens the binding to dyn and demotes.
	if !IsAssignable(m, a, StringType) {
		t.Fatal("bound param should widen rather than fail")
	}
	bound, _ = m.Find("A")
	if !IsDyn(bound) {
		t.Fatalf("binding after widening = %v, want dyn", bound)
	}
	if !m.Demoted() {
		t.Fatal("widening to dyn must demote the mapping")
	}
}

func TestTypeParamOccursCheck(t *testing.T) {
	m := NewMapping()
	a := NewTypeParamType("A")
	if IsAssignable(m, a, NewListType(a)) {
		t.Fatal("A must not bind to list(A)")
	}
}

func TestSubstitute(t *testing.T) {
	m := NewMapping()
	m.Add("A", IntType)
	got := Substitute(m, NewListType(NewTypeParamType("A")), false)
	if !got.Equal(NewListType(IntType)) {
		t.Fatalf("substitute = %s", got)
	}
	// Unbound parameters erase to dyn only on request.
	free := NewListType(NewTypeParamType("B"))
	if !Substitute(m, free, false).Equal(free) {
		t.Fatal("unbound param must stay put without erasure")
	}
	if !Substitute(m, free, true).Equal(NewListType(DynType)) {
		t.Fatal("unbound param must erase to dyn with erasure")
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		a, b, want Type
	}{
		{IntType, IntType, IntType},
		{IntType, DoubleType, DynType},
		{IntType, NewEnumType("acme.Color"), IntType},
		{nil, StringType, StringType},
	}
	for _, tt := range tests {
		if got := Join(tt.a, tt.b); !got.Equal(tt.want) {
			t.Errorf("Join(%v, %v) = %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestWellKnownTypes(t *testing.T) {
	wrapper, ok := WellKnownType("google.protobuf.Int64Value")
	if !ok || wrapper.Kind() != WrapperKind {
		t.Fatalf("Int64Value = %v", wrapper)
	}
	ts, ok := WellKnownType("google.protobuf.Timestamp")
	if !ok || ts.Kind() != TimestampKind {
		t.Fatalf("Timestamp = %v", ts)
	}
	anyT, ok := WellKnownType("google.protobuf.Any")
	if !ok || !IsDyn(anyT) {
		t.Fatalf("Any = %v", anyT)
	}
	st, ok := WellKnownType("google.protobuf.Struct")
	if !ok || st.Kind() != MapKind {
		t.Fatalf("Struct = %v", st)
	}
}
