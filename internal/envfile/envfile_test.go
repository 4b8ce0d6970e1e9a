package envfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/polex/internal/types"
)

const sampleEnv = `
name: checkout-policies
description: Policies evaluated at checkout time.
container:
  name: acme.checkout
  aliases:
    - alias: Req
      qualified_name: acme.http.Request
  abbreviations:
    - google.protobuf.Duration
variables:
  - name: request
    type: acme.http.Request
  - name: limits
    type:
      type_name: map
      params:
        - string
        - int
  - name: tags
    type:
      type_name: list
      params:
        - type_name: string
functions:
  - name: risk_score
    overloads:
      - id: risk_score_string
        args: [string]
        return: double
      - id: string_risk
        target: string
        args: []
        return: double
extensions:
  - name: math
    version: 1
  - name: strings
    version: latest
stdlib:
  exclude_functions:
    - name: matches
`

func TestParseEnvironmentFile(t *testing.T) {
	f, err := Parse([]byte(sampleEnv))
	require.NoError(t, err)

	assert.Equal(t, "checkout-policies", f.Name)
	assert.Equal(t, "acme.checkout", f.Container.Name)
	require.Len(t, f.Container.Aliases, 1)
	assert.Equal(t, "Req", f.Container.Aliases[0].Alias)

	vars, err := f.VariableDecls()
	require.NoError(t, err)
	require.Len(t, vars, 3)
	assert.True(t, vars[0].Type.Equal(types.NewStructType("acme.http.Request")))
	assert.True(t, vars[1].Type.Equal(types.NewMapType(types.StringType, types.IntType)))
	assert.True(t, vars[2].Type.Equal(types.NewListType(types.StringType)))

	fns, err := f.FunctionDecls()
	require.NoError(t, err)
	require.Len(t, fns, 1)
	require.Len(t, fns[0].Overloads, 2)
	assert.False(t, fns[0].Overloads[0].IsInstance)
	assert.True(t, fns[0].Overloads[1].IsInstance)

	require.Len(t, f.Extensions, 2)
	v, err := f.Extensions[0].ResolveVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	v, err = f.Extensions[1].ResolveVersion()
	require.NoError(t, err)
	assert.Equal(t, -1, v)

	subset := f.SubsetDecl()
	require.NotNil(t, subset)
	require.Len(t, subset.ExcludeFunctions, 1)
	assert.Equal(t, "matches", subset.ExcludeFunctions[0].Name)
}

func TestContainerShorthand(t *testing.T) {
	f, err := Parse([]byte("container: a.b.c\n"))
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", f.Container.Name)
}

func TestSubsetConflictFatal(t *testing.T) {
	_, err := Parse([]byte(`
stdlib:
  include_macros: [all]
  exclude_macros: [map]
`))
	assert.Error(t, err)

	_, err = Parse([]byte(`
stdlib:
  include_functions:
    - name: size
  exclude_functions:
    - name: matches
`))
	assert.Error(t, err)
}

func TestInvalidExtensionVersionFatal(t *testing.T) {
	_, err := Parse([]byte(`
extensions:
  - name: math
    version: soon
`))
	assert.Error(t, err)
}

func TestTypeSpecResolution(t *testing.T) {
	tests := []struct {
		spec TypeSpec
		want types.Type
	}{
		{TypeSpec{TypeName: "int"}, types.IntType},
		{TypeSpec{TypeName: "dyn"}, types.DynType},
		{TypeSpec{TypeName: "google.protobuf.Int64Value"}, types.NewWrapperType(types.IntType)},
		{TypeSpec{TypeName: "T", IsTypeParam: true}, types.NewTypeParamType("T")},
		{
			TypeSpec{TypeName: "optional", Params: []TypeSpec{{TypeName: "string"}}},
			types.NewOptionalType(types.StringType),
		},
		{
			TypeSpec{TypeName: "vector", Params: []TypeSpec{{TypeName: "double"}}},
			types.NewOpaqueType("vector", types.DoubleType),
		},
	}
	for _, tt := range tests {
		got, err := tt.spec.Resolve()
		require.NoError(t, err)
		assert.True(t, got.Equal(tt.want), "resolve(%+v) = %s, want %s", tt.spec, got, tt.want)
	}

	_, err := (&TypeSpec{TypeName: "list"}).Resolve()
	assert.NoError(t, err, "bare list resolves as list(dyn) via predeclared names")
}

func TestBadMapArity(t *testing.T) {
	_, err := (&TypeSpec{TypeName: "map", Params: []TypeSpec{{TypeName: "string"}}}).Resolve()
	assert.Error(t, err)
}
