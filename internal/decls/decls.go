// Package decls holds the declaration registry consumed by the checker:
// variables, function overloads, macros, the standard library and the
// library-subset filter, plus the container used for name resolution.
package decls

import (
	"fmt"
	"strings"

	"github.com/funvibe/polex/internal/types"
)

// VariableDecl declares a named variable and its type.
type VariableDecl struct {
	Name string
	Type types.Type
}

func NewVariable(name string, t types.Type) *VariableDecl {
	return &VariableDecl{Name: name, Type: t}
}

// OverloadDecl is one typed signature of a function.
type OverloadDecl struct {
	ID         string
	IsInstance bool
	TypeParams []string
	Args       []types.Type
	Result     types.Type

	// NonStrict overloads receive error and unknown arguments instead of
	// having them merged away before dispatch.
	NonStrict bool
}

func NewOverload(id string, args []types.Type, result types.Type) *OverloadDecl {
	o := &OverloadDecl{ID: id, Args: args, Result: result}
	o.TypeParams = collectTypeParams(o)
	return o
}

func NewInstanceOverload(id string, args []types.Type, result types.Type) *OverloadDecl {
	o := NewOverload(id, args, result)
	o.IsInstance = true
	return o
}

func collectTypeParams(o *OverloadDecl) []string {
	seen := make(map[string]bool)
	var params []string
	var walk func(t types.Type)
	walk = func(t types.Type) {
		switch tt := t.(type) {
		case *types.ParamType:
			if !seen[tt.Name] {
				seen[tt.Name] = true
				params = append(params, tt.Name)
			}
		case *types.ListType:
			walk(tt.Elem)
		case *types.MapType:
			walk(tt.Key)
			walk(tt.Value)
		case *types.OptionalType:
			walk(tt.Elem)
		case *types.WrapperType:
			walk(tt.Elem)
		case *types.OpaqueType:
			for _, p := range tt.Params {
				walk(p)
			}
		case *types.FunctionType:
			walk(tt.Result)
			for _, p := range tt.Params {
				walk(p)
			}
		case *types.TypeType:
			if tt.Of != nil {
				walk(tt.Of)
			}
		}
	}
	for _, a := range o.Args {
		walk(a)
	}
	walk(o.Result)
	return params
}

// SignatureKey identifies an overload's call shape: receiver style, arity
// and concrete parameter kinds. Two overloads of one function must not share
// a key.
func (o *OverloadDecl) SignatureKey() string {
	var sb strings.Builder
	if o.IsInstance {
		sb.WriteString("instance|")
	} else {
		sb.WriteString("global|")
	}
	for i, a := range o.Args {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(a.String())
	}
	return sb.String()
}

// FunctionDecl is a named function with its overload set.
type FunctionDecl struct {
	Name      string
	Overloads []*OverloadDecl
}

func NewFunction(name string, overloads ...*OverloadDecl) (*FunctionDecl, error) {
	f := &FunctionDecl{Name: name}
	for _, o := range overloads {
		if err := f.AddOverload(o); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// AddOverload appends an overload, rejecting duplicate ids and colliding
// signature keys. A structurally identical redeclaration merges silently.
func (f *FunctionDecl) AddOverload(o *OverloadDecl) error {
	for _, existing := range f.Overloads {
		if existing.ID == o.ID {
			if existing.SignatureKey() == o.SignatureKey() &&
				existing.Result.Equal(o.Result) {
				return nil
			}
			return fmt.Errorf("function %s: overload id redeclared with different signature: %s", f.Name, o.ID)
		}
		if existing.SignatureKey() == o.SignatureKey() {
			return fmt.Errorf("function %s: overloads %s and %s share a signature", f.Name, existing.ID, o.ID)
		}
	}
	f.Overloads = append(f.Overloads, o)
	return nil
}

// Copy returns a deep-enough copy for subset filtering.
func (f *FunctionDecl) Copy() *FunctionDecl {
	c := &FunctionDecl{Name: f.Name}
	c.Overloads = append(c.Overloads, f.Overloads...)
	return c
}

// Registry is a scoped declaration table. Child scopes are pushed while
// checking comprehension bodies.
type Registry struct {
	parent *Registry
	vars   map[string]*VariableDecl
	funcs  map[string]*FunctionDecl
}

func NewRegistry() *Registry {
	return &Registry{
		vars:  make(map[string]*VariableDecl),
		funcs: make(map[string]*FunctionDecl),
	}
}

// Child opens a nested scope over the registry.
func (r *Registry) Child() *Registry {
	c := NewRegistry()
	c.parent = r
	return c
}

// AddVariable declares a variable. Two declarations with the same name and
// different types conflict; identical redeclaration merges.
func (r *Registry) AddVariable(v *VariableDecl) error {
	if existing, ok := r.vars[v.Name]; ok {
		if existing.Type.Equal(v.Type) {
			return nil
		}
		return fmt.Errorf("overlapping variable declaration: %s (%s vs %s)", v.Name, existing.Type, v.Type)
	}
	r.vars[v.Name] = v
	return nil
}

// ShadowVariable declares a variable in this scope unconditionally,
// shadowing any outer declaration. Used for comprehension iteration and
// accumulation variables.
func (r *Registry) ShadowVariable(v *VariableDecl) {
	r.vars[v.Name] = v
}

// AddFunction declares a function or merges overloads into an existing one.
func (r *Registry) AddFunction(f *FunctionDecl) error {
	existing, ok := r.funcs[f.Name]
	if !ok {
		r.funcs[f.Name] = f.Copy()
		return nil
	}
	for _, o := range f.Overloads {
		if err := existing.AddOverload(o); err != nil {
			return err
		}
	}
	return nil
}

// FindVariable resolves a variable through the scope chain.
func (r *Registry) FindVariable(name string) (*VariableDecl, bool) {
	for s := r; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// FindFunction resolves a function through the scope chain.
func (r *Registry) FindFunction(name string) (*FunctionDecl, bool) {
	for s := r; s != nil; s = s.parent {
		if f, ok := s.funcs[name]; ok {
			return f, true
		}
	}
	return nil, false
}

// Functions lists the function names declared in this scope chain.
func (r *Registry) Functions() []string {
	seen := make(map[string]bool)
	var names []string
	for s := r; s != nil; s = s.parent {
		for n := range s.funcs {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}
