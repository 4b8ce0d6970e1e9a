// Package envfile loads the YAML environment-file format: container,
// variable and function declarations, extensions and the standard-library
// subset. Validation violations are fatal configuration errors surfaced at
// load time, never at evaluation.
package envfile

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/types"
)

// File is the parsed environment document.
type File struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Container   ContainerSpec  `yaml:"container"`
	Variables   []VariableSpec `yaml:"variables"`
	Functions   []FunctionSpec `yaml:"functions"`
	Extensions  []Extension    `yaml:"extensions"`
	Stdlib      *SubsetSpec    `yaml:"stdlib"`
}

// ContainerSpec accepts either a bare namespace string or an object with
// aliases and abbreviations.
type ContainerSpec struct {
	Name          string      `yaml:"name"`
	Aliases       []AliasSpec `yaml:"aliases"`
	Abbreviations []string    `yaml:"abbreviations"`
}

type AliasSpec struct {
	Alias         string `yaml:"alias"`
	QualifiedName string `yaml:"qualified_name"`
}

func (c *ContainerSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		c.Name = node.Value
		return nil
	}
	type plain ContainerSpec
	return node.Decode((*plain)(c))
}

// TypeSpec accepts either an inlined type-name string or the structured
// {type_name, params, is_type_param} form.
type TypeSpec struct {
	TypeName    string     `yaml:"type_name"`
	Params      []TypeSpec `yaml:"params"`
	IsTypeParam bool       `yaml:"is_type_param"`
}

func (t *TypeSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		t.TypeName = node.Value
		return nil
	}
	type plain TypeSpec
	return node.Decode((*plain)(t))
}

// Resolve converts a type spec into a model type. Names that are neither
// predeclared nor well-known resolve as nominal struct references.
func (t *TypeSpec) Resolve() (types.Type, error) {
	if t.IsTypeParam {
		return types.NewTypeParamType(t.TypeName), nil
	}
	params := make([]types.Type, len(t.Params))
	for i, p := range t.Params {
		rp, err := p.Resolve()
		if err != nil {
			return nil, err
		}
		params[i] = rp
	}
	switch t.TypeName {
	case "list":
		if len(params) > 0 {
			if len(params) != 1 {
				return nil, fmt.Errorf("list takes one parameter, got %d", len(params))
			}
			return types.NewListType(params[0]), nil
		}
	case "map":
		if len(params) > 0 {
			if len(params) != 2 {
				return nil, fmt.Errorf("map takes two parameters, got %d", len(params))
			}
			return types.NewMapType(params[0], params[1]), nil
		}
	case "optional", "optional_type":
		if len(params) != 1 {
			return nil, fmt.Errorf("optional takes one parameter, got %d", len(params))
		}
		return types.NewOptionalType(params[0]), nil
	}
	if len(params) > 0 {
		return types.NewOpaqueType(t.TypeName, params...), nil
	}
	if st, ok := types.SimpleTypeByName(t.TypeName); ok {
		return st, nil
	}
	if wkt, ok := types.WellKnownType(t.TypeName); ok {
		return wkt, nil
	}
	return types.NewStructType(t.TypeName), nil
}

type VariableSpec struct {
	Name string   `yaml:"name"`
	Type TypeSpec `yaml:"type"`
}

type FunctionSpec struct {
	Name      string         `yaml:"name"`
	Overloads []OverloadSpec `yaml:"overloads"`
}

type OverloadSpec struct {
	ID     string     `yaml:"id"`
	Target *TypeSpec  `yaml:"target"`
	Args   []TypeSpec `yaml:"args"`
	Return TypeSpec   `yaml:"return"`
}

// Extension selects a named extension at an integer version or "latest".
type Extension struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

func (e *Extension) UnmarshalYAML(node *yaml.Node) error {
	// The version field accepts both an integer and the string "latest".
	var raw struct {
		Name    string    `yaml:"name"`
		Version yaml.Node `yaml:"version"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	e.Name = raw.Name
	e.Version = raw.Version.Value
	return nil
}

// ResolveVersion parses the version field; the zero value means latest.
func (e *Extension) ResolveVersion() (int, error) {
	if e.Version == "" || e.Version == "latest" {
		return -1, nil
	}
	v, err := strconv.Atoi(e.Version)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid extension version for %s: %q", e.Name, e.Version)
	}
	return v, nil
}

type SubsetSpec struct {
	Disabled         bool           `yaml:"disabled"`
	DisableMacros    bool           `yaml:"disable_macros"`
	IncludeMacros    []string       `yaml:"include_macros"`
	ExcludeMacros    []string       `yaml:"exclude_macros"`
	IncludeFunctions []FunctionSel  `yaml:"include_functions"`
	ExcludeFunctions []FunctionSel  `yaml:"exclude_functions"`
}

type FunctionSel struct {
	Name      string        `yaml:"name"`
	Overloads []OverloadSel `yaml:"overloads"`
}

type OverloadSel struct {
	ID string `yaml:"id"`
}

// Load reads and parses an environment file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading environment file: %w", err)
	}
	return Parse(data)
}

// Parse decodes an environment document and validates it.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing environment file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate enforces the structural rules of the format.
func (f *File) Validate() error {
	if subset := f.SubsetDecl(); subset != nil {
		if err := subset.Validate(); err != nil {
			return err
		}
	}
	for _, ext := range f.Extensions {
		if _, err := ext.ResolveVersion(); err != nil {
			return err
		}
	}
	for _, a := range f.Container.Aliases {
		if a.Alias == "" || a.QualifiedName == "" {
			return fmt.Errorf("container alias entries need both alias and qualified_name")
		}
	}
	return nil
}

// ContainerOptions converts the container section into container options.
func (f *File) ContainerOptions() []decls.ContainerOption {
	var opts []decls.ContainerOption
	if f.Container.Name != "" {
		opts = append(opts, decls.ContainerName(f.Container.Name))
	}
	for _, a := range f.Container.Aliases {
		opts = append(opts, decls.Alias(a.Alias, a.QualifiedName))
	}
	if len(f.Container.Abbreviations) > 0 {
		opts = append(opts, decls.Abbrevs(f.Container.Abbreviations...))
	}
	return opts
}

// VariableDecls resolves the variable declarations.
func (f *File) VariableDecls() ([]*decls.VariableDecl, error) {
	out := make([]*decls.VariableDecl, 0, len(f.Variables))
	for _, v := range f.Variables {
		t, err := v.Type.Resolve()
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", v.Name, err)
		}
		out = append(out, decls.NewVariable(v.Name, t))
	}
	return out, nil
}

// FunctionDecls resolves the function declarations. Structurally identical
// duplicates merge; conflicting redeclarations fail.
func (f *File) FunctionDecls() ([]*decls.FunctionDecl, error) {
	out := make([]*decls.FunctionDecl, 0, len(f.Functions))
	for _, fn := range f.Functions {
		overloads := make([]*decls.OverloadDecl, 0, len(fn.Overloads))
		for _, o := range fn.Overloads {
			args := make([]types.Type, 0, len(o.Args)+1)
			isInstance := o.Target != nil
			if isInstance {
				t, err := o.Target.Resolve()
				if err != nil {
					return nil, fmt.Errorf("function %s overload %s: %w", fn.Name, o.ID, err)
				}
				args = append(args, t)
			}
			for _, a := range o.Args {
				t, err := a.Resolve()
				if err != nil {
					return nil, fmt.Errorf("function %s overload %s: %w", fn.Name, o.ID, err)
				}
				args = append(args, t)
			}
			ret, err := o.Return.Resolve()
			if err != nil {
				return nil, fmt.Errorf("function %s overload %s: %w", fn.Name, o.ID, err)
			}
			decl := decls.NewOverload(o.ID, args, ret)
			decl.IsInstance = isInstance
			overloads = append(overloads, decl)
		}
		fnDecl, err := decls.NewFunction(fn.Name, overloads...)
		if err != nil {
			return nil, err
		}
		out = append(out, fnDecl)
	}
	return out, nil
}

// SubsetDecl converts the stdlib section into a library subset.
func (f *File) SubsetDecl() *decls.LibrarySubset {
	if f.Stdlib == nil {
		return nil
	}
	s := &decls.LibrarySubset{
		Disabled:      f.Stdlib.Disabled,
		DisableMacros: f.Stdlib.DisableMacros,
		IncludeMacros: f.Stdlib.IncludeMacros,
		ExcludeMacros: f.Stdlib.ExcludeMacros,
	}
	convert := func(sels []FunctionSel) []*decls.FunctionSelector {
		out := make([]*decls.FunctionSelector, 0, len(sels))
		for _, sel := range sels {
			fs := &decls.FunctionSelector{Name: sel.Name}
			for _, o := range sel.Overloads {
				fs.OverloadIDs = append(fs.OverloadIDs, o.ID)
			}
			out = append(out, fs)
		}
		return out
	}
	if len(f.Stdlib.IncludeFunctions) > 0 {
		s.IncludeFunctions = convert(f.Stdlib.IncludeFunctions)
	}
	if len(f.Stdlib.ExcludeFunctions) > 0 {
		s.ExcludeFunctions = convert(f.Stdlib.ExcludeFunctions)
	}
	return s
}
