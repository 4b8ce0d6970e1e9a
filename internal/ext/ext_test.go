package ext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadVersions(t *testing.T) {
	v1, err := Load("math", 1)
	require.NoError(t, err)
	names := map[string]bool{}
	for _, b := range v1 {
		names[b.Decl.Name] = true
	}
	assert.True(t, names["math.abs"])
	assert.False(t, names["math.sqrt"], "sqrt arrives in v2")

	v2, err := Load("math", 2)
	require.NoError(t, err)
	names = map[string]bool{}
	for _, b := range v2 {
		names[b.Decl.Name] = true
	}
	assert.True(t, names["math.abs"], "v2 includes v1 functions")
	assert.True(t, names["math.sqrt"])

	latest, err := Load("math", VersionLatest)
	require.NoError(t, err)
	assert.Equal(t, len(v2), len(latest))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("math", 99)
	assert.Error(t, err)
	_, err = Load("unknown-extension", 1)
	assert.Error(t, err)
}

func TestBundlesCarryImpls(t *testing.T) {
	bundles, err := Load("strings", VersionLatest)
	require.NoError(t, err)
	for _, b := range bundles {
		assert.NotEmpty(t, b.Impls, "%s has no implementations", b.Decl.Name)
		for _, o := range b.Decl.Overloads {
			found := false
			for _, impl := range b.Impls {
				if impl.ID == o.ID {
					found = true
				}
			}
			assert.True(t, found, "declared overload %s has no impl", o.ID)
		}
	}
}
