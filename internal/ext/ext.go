// Package ext implements versioned extension libraries. An extension is
// resolved by (name, version); it contributes declarations to the checker
// and implementations to the evaluator for its version and every lower one.
package ext

import (
	"fmt"

	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/evaluator"
)

// VersionLatest selects the highest registered version of an extension.
const VersionLatest = -1

// FunctionBundle pairs a function declaration with its runtime overloads.
type FunctionBundle struct {
	Decl  *decls.FunctionDecl
	Impls []*evaluator.Overload
}

type extension struct {
	name     string
	versions map[int]func() []*FunctionBundle
	latest   int
}

var registry = map[string]*extension{}

func register(name string, version int, provider func() []*FunctionBundle) {
	e, ok := registry[name]
	if !ok {
		e = &extension{name: name, versions: map[int]func() []*FunctionBundle{}}
		registry[name] = e
	}
	e.versions[version] = provider
	if version > e.latest {
		e.latest = version
	}
}

// Load resolves an extension by name and version. Unknown names and
// versions are configuration errors surfaced at environment build.
func Load(name string, version int) ([]*FunctionBundle, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown extension: %s", name)
	}
	if version == VersionLatest {
		version = e.latest
	}
	if _, ok := e.versions[version]; !ok {
		return nil, fmt.Errorf("unknown version %d of extension %s", version, name)
	}
	var bundles []*FunctionBundle
	for v := 1; v <= version; v++ {
		if provider, found := e.versions[v]; found {
			bundles = append(bundles, provider()...)
		}
	}
	return bundles, nil
}

// Names lists the registered extension names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}
