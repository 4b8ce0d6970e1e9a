package decls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/polex/internal/types"
)

func TestResolveCandidateNames(t *testing.T) {
	c, err := NewContainer(ContainerName("a.b.c"))
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"a.b.c.x", "a.b.x", "a.x", "x"},
		c.ResolveCandidateNames("x"))
	assert.Equal(t, []string{"x"}, c.ResolveCandidateNames(".x"))

	empty, err := NewContainer()
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, empty.ResolveCandidateNames("x"))
}

func TestContainerAliases(t *testing.T) {
	c, err := NewContainer(
		ContainerName("a.b"),
		Alias("req", "acme.http.Request"),
		Abbrevs("google.protobuf.Duration"))
	require.NoError(t, err)

	assert.Equal(t, []string{"acme.http.Request"}, c.ResolveCandidateNames("req"))
	assert.Equal(t, []string{"acme.http.Request.path"}, c.ResolveCandidateNames("req.path"))
	assert.Equal(t, []string{"google.protobuf.Duration"}, c.ResolveCandidateNames("Duration"))

	_, err = NewContainer(Alias("a.b", "acme.Thing"))
	assert.Error(t, err, "dotted alias must fail")
	_, err = NewContainer(Alias("x", "unqualified"))
	assert.Error(t, err, "unqualified target must fail")
}

func TestVariableConflicts(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.AddVariable(NewVariable("x", types.IntType)))
	require.NoError(t, r.AddVariable(NewVariable("x", types.IntType)), "identical redeclaration merges")
	assert.Error(t, r.AddVariable(NewVariable("x", types.StringType)), "conflicting type must fail")
}

func TestOverloadCollisions(t *testing.T) {
	args := []types.Type{types.IntType}
	_, err := NewFunction("f",
		NewOverload("f_int", args, types.IntType),
		NewOverload("f_int_other", args, types.IntType))
	assert.Error(t, err, "same signature under two ids must fail")

	fn, err := NewFunction("f", NewOverload("f_int", args, types.IntType))
	require.NoError(t, err)
	assert.NoError(t, fn.AddOverload(NewOverload("f_int", args, types.IntType)),
		"structurally identical redeclaration merges")
	assert.Error(t, fn.AddOverload(NewOverload("f_int", args, types.StringType)),
		"same id with different result must fail")
}

func TestRegistryScopes(t *testing.T) {
	outer := NewRegistry()
	require.NoError(t, outer.AddVariable(NewVariable("x", types.IntType)))
	inner := outer.Child()
	inner.ShadowVariable(NewVariable("x", types.StringType))

	v, ok := inner.FindVariable("x")
	require.True(t, ok)
	assert.True(t, v.Type.Equal(types.StringType))

	v, ok = outer.FindVariable("x")
	require.True(t, ok)
	assert.True(t, v.Type.Equal(types.IntType))
}

func TestLibrarySubsetValidation(t *testing.T) {
	bad := &LibrarySubset{
		IncludeMacros: []string{"all"},
		ExcludeMacros: []string{"map"},
	}
	assert.Error(t, bad.Validate())

	bad = &LibrarySubset{
		IncludeFunctions: []*FunctionSelector{{Name: "size"}},
		ExcludeFunctions: []*FunctionSelector{{Name: "matches"}},
	}
	assert.Error(t, bad.Validate())

	var nilSubset *LibrarySubset
	assert.NoError(t, nilSubset.Validate())
}

func TestLibrarySubsetFiltering(t *testing.T) {
	fns := StandardFunctions(false)
	var addFn *FunctionDecl
	for _, fn := range fns {
		if fn.Name == Add {
			addFn = fn
		}
	}
	require.NotNil(t, addFn)

	exclude := &LibrarySubset{ExcludeFunctions: []*FunctionSelector{{Name: Add}}}
	_, keep := exclude.FilterFunction(addFn)
	assert.False(t, keep, "excluding a whole function removes it")

	narrow := &LibrarySubset{ExcludeFunctions: []*FunctionSelector{{
		Name: Add, OverloadIDs: []string{OverloadAddInt},
	}}}
	filtered, keep := narrow.FilterFunction(addFn)
	require.True(t, keep)
	for _, o := range filtered.Overloads {
		assert.NotEqual(t, OverloadAddInt, o.ID)
	}

	disabled := &LibrarySubset{Disabled: true}
	_, keep = disabled.FilterFunction(addFn)
	assert.False(t, keep)
	assert.Empty(t, disabled.FilterMacros(StandardMacros))

	includeMacros := &LibrarySubset{IncludeMacros: []string{"has", "all"}}
	kept := includeMacros.FilterMacros(StandardMacros)
	assert.Len(t, kept, 2)
}

func TestStandardFunctionsShape(t *testing.T) {
	byName := map[string]*FunctionDecl{}
	for _, fn := range StandardFunctions(true) {
		byName[fn.Name] = fn
	}
	for _, required := range []string{
		Add, Subtract, Multiply, Divide, Modulo,
		Less, LessEquals, Greater, GreaterEqual,
		Equals, NotEquals, Index, In,
		"size", "matches", "int", "uint", "double", "string", "type", "dyn",
	} {
		if _, ok := byName[required]; !ok {
			t.Errorf("standard library is missing %q", required)
		}
	}
	// Heterogeneous mode adds the cross-numeric comparison overloads.
	hetero := byName[Less]
	plain := map[string]*FunctionDecl{}
	for _, fn := range StandardFunctions(false) {
		plain[fn.Name] = fn
	}
	assert.Greater(t, len(hetero.Overloads), len(plain[Less].Overloads))
}
