package polex

import (
	"github.com/jhump/protoreflect/desc"

	"github.com/funvibe/polex/internal/ast"
	"github.com/funvibe/polex/internal/checker"
	"github.com/funvibe/polex/internal/config"
	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/envfile"
	"github.com/funvibe/polex/internal/evaluator"
	"github.com/funvibe/polex/internal/ext"
	"github.com/funvibe/polex/internal/parser"
	"github.com/funvibe/polex/internal/types"
)

// Env is an immutable compilation environment: the declaration registry,
// the container, the type provider and the macro set. Envs are safe to
// share; Extend derives a child environment.
type Env struct {
	container *decls.Container
	registry  *decls.Registry
	provider  *types.Provider
	macros    []*decls.Macro

	dispatcher *evaluator.Dispatcher

	expectedResultType       Type
	heterogeneousComparisons bool
	regexProgramSize         int

	// deferred configuration applied during build
	subset     *decls.LibrarySubset
	setupErrs  []error
	containerOpts []decls.ContainerOption
	variables  []*decls.VariableDecl
	functions  []*decls.FunctionDecl
	extensions []extensionRef
	messages   []*desc.MessageDescriptor
	structs    map[string]map[string]*types.FieldType
	enums      map[string]map[string]int64
}

type extensionRef struct {
	name    string
	version int
}

// EnvOption configures an Env under construction.
type EnvOption func(*Env)

// Container sets the namespace expressions resolve in.
func Container(name string) EnvOption {
	return func(e *Env) {
		e.containerOpts = append(e.containerOpts, decls.ContainerName(name))
	}
}

// Alias maps a short name to a fully-qualified one.
func Alias(alias, qualifiedName string) EnvOption {
	return func(e *Env) {
		e.containerOpts = append(e.containerOpts, decls.Alias(alias, qualifiedName))
	}
}

// Abbrevs registers qualified names under their last segment.
func Abbrevs(qualifiedNames ...string) EnvOption {
	return func(e *Env) {
		e.containerOpts = append(e.containerOpts, decls.Abbrevs(qualifiedNames...))
	}
}

// Variable declares a typed variable.
func Variable(name string, t Type) EnvOption {
	return func(e *Env) {
		e.variables = append(e.variables, decls.NewVariable(name, t))
	}
}

// OverloadOpt builds one overload of a Function declaration.
type OverloadOpt struct {
	decl *decls.OverloadDecl
	impl *evaluator.Overload
}

// Overload declares a global overload signature.
func Overload(id string, argTypes []Type, resultType Type) *OverloadOpt {
	return &OverloadOpt{decl: decls.NewOverload(id, argTypes, resultType)}
}

// MemberOverload declares a receiver-style overload; the first argument
// type is the receiver.
func MemberOverload(id string, argTypes []Type, resultType Type) *OverloadOpt {
	return &OverloadOpt{decl: decls.NewInstanceOverload(id, argTypes, resultType)}
}

// WithImpl attaches a runtime implementation to the overload.
func (o *OverloadOpt) WithImpl(fn func(args []Value) Value) *OverloadOpt {
	o.impl = &evaluator.Overload{
		ID:       o.decl.ID,
		Arity:    len(o.decl.Args),
		Function: func(args []evaluator.Object) evaluator.Object { return fn(args) },
	}
	return o
}

// Function declares a function with its overloads and any attached
// implementations.
func Function(name string, overloads ...*OverloadOpt) EnvOption {
	return func(e *Env) {
		declList := make([]*decls.OverloadDecl, 0, len(overloads))
		for _, o := range overloads {
			declList = append(declList, o.decl)
			if o.impl != nil {
				e.dispatcher.Add(name, o.impl)
			}
		}
		fn, err := decls.NewFunction(name, declList...)
		if err != nil {
			e.setupErrs = append(e.setupErrs, err)
			return
		}
		e.functions = append(e.functions, fn)
	}
}

// ExtensionLatest selects the newest version of an extension.
const ExtensionLatest = ext.VersionLatest

// Extension enables a versioned extension library.
func Extension(name string, version int) EnvOption {
	return func(e *Env) {
		e.extensions = append(e.extensions, extensionRef{name: name, version: version})
	}
}

// StdlibSubset restricts the standard library.
func StdlibSubset(subset *decls.LibrarySubset) EnvOption {
	return func(e *Env) { e.subset = subset }
}

// LibrarySubset re-exports the subset configuration shape.
type LibrarySubset = decls.LibrarySubset

// FunctionSelector re-exports the subset function selector shape.
type FunctionSelector = decls.FunctionSelector

// ExpectedResultType constrains the root type of compiled expressions.
func ExpectedResultType(t Type) EnvOption {
	return func(e *Env) { e.expectedResultType = t }
}

// HeterogeneousComparisons enables exact-math ordering across int, uint and
// double operands.
func HeterogeneousComparisons(enabled bool) EnvOption {
	return func(e *Env) { e.heterogeneousComparisons = enabled }
}

// RegexProgramSize caps the compiled RE2 program size accepted by
// matches(); zero disables the cap.
func RegexProgramSize(limit int) EnvOption {
	return func(e *Env) { e.regexProgramSize = limit }
}

// Types registers protobuf message descriptors as nominal struct types.
func Types(messages ...*desc.MessageDescriptor) EnvOption {
	return func(e *Env) { e.messages = append(e.messages, messages...) }
}

// StructType declares a nominal struct from a plain field table.
func StructType(name string, fields map[string]Type) EnvOption {
	return func(e *Env) {
		if e.structs == nil {
			e.structs = make(map[string]map[string]*types.FieldType)
		}
		converted := make(map[string]*types.FieldType, len(fields))
		for fname, ftype := range fields {
			converted[fname] = &types.FieldType{Type: ftype}
		}
		e.structs[name] = converted
	}
}

// EnumType declares a named symbol set assignable to int.
func EnumType(name string, entries map[string]int64) EnvOption {
	return func(e *Env) {
		if e.enums == nil {
			e.enums = make(map[string]map[string]int64)
		}
		e.enums[name] = entries
	}
}

// FromFile applies an environment file's declarations.
func FromFile(path string) EnvOption {
	return func(e *Env) {
		f, err := envfile.Load(path)
		if err != nil {
			e.setupErrs = append(e.setupErrs, err)
			return
		}
		FromEnvFile(f)(e)
	}
}

// FromEnvFile applies a parsed environment document.
func FromEnvFile(f *envfile.File) EnvOption {
	return func(e *Env) {
		e.containerOpts = append(e.containerOpts, f.ContainerOptions()...)
		vars, err := f.VariableDecls()
		if err != nil {
			e.setupErrs = append(e.setupErrs, err)
			return
		}
		e.variables = append(e.variables, vars...)
		fns, err := f.FunctionDecls()
		if err != nil {
			e.setupErrs = append(e.setupErrs, err)
			return
		}
		e.functions = append(e.functions, fns...)
		for _, extSpec := range f.Extensions {
			version, err := extSpec.ResolveVersion()
			if err != nil {
				e.setupErrs = append(e.setupErrs, err)
				return
			}
			e.extensions = append(e.extensions, extensionRef{name: extSpec.Name, version: version})
		}
		if subset := f.SubsetDecl(); subset != nil {
			e.subset = subset
		}
	}
}

// NewEnv builds an environment. Configuration violations (invalid subsets,
// unknown extensions, conflicting declarations) fail here, never at
// evaluation.
func NewEnv(opts ...EnvOption) (*Env, error) {
	e := &Env{
		provider:   types.NewProvider(),
		dispatcher: evaluator.NewDispatcher(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.setupErrs) > 0 {
		return nil, e.setupErrs[0]
	}
	if err := e.build(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Env) build() error {
	if err := e.subset.Validate(); err != nil {
		return err
	}

	container, err := decls.NewContainer(e.containerOpts...)
	if err != nil {
		return err
	}
	e.container = container

	e.registry = decls.NewRegistry()
	for _, fn := range decls.StandardFunctions(e.heterogeneousComparisons) {
		filtered, keep := e.subset.FilterFunction(fn)
		if !keep {
			continue
		}
		if err := e.registry.AddFunction(filtered); err != nil {
			return err
		}
	}
	e.macros = e.subset.FilterMacros(decls.StandardMacros)
	evaluator.InstallStandardOverloads(e.dispatcher, e.heterogeneousComparisons, e.regexProgramSize)

	for _, ref := range e.extensions {
		bundles, err := ext.Load(ref.name, ref.version)
		if err != nil {
			return err
		}
		for _, b := range bundles {
			if err := e.registry.AddFunction(b.Decl); err != nil {
				return err
			}
			e.dispatcher.Add(b.Decl.Name, b.Impls...)
		}
	}

	for _, v := range e.variables {
		if err := e.registry.AddVariable(v); err != nil {
			return err
		}
	}
	for _, fn := range e.functions {
		if err := e.registry.AddFunction(fn); err != nil {
			return err
		}
	}
	for _, md := range e.messages {
		if err := e.provider.RegisterMessage(md); err != nil {
			return err
		}
	}
	for name, fields := range e.structs {
		if err := e.provider.RegisterStruct(name, fields); err != nil {
			return err
		}
	}
	for name, entries := range e.enums {
		if err := e.provider.RegisterEnum(name, entries); err != nil {
			return err
		}
	}
	return nil
}

// Extend derives a child environment with additional options. The parent
// stays untouched.
func (e *Env) Extend(opts ...EnvOption) (*Env, error) {
	child := &Env{
		provider:                 types.NewProvider(),
		dispatcher:               e.dispatcher.Copy(),
		expectedResultType:       e.expectedResultType,
		heterogeneousComparisons: e.heterogeneousComparisons,
		regexProgramSize:         e.regexProgramSize,
		subset:                   e.subset,
	}
	child.containerOpts = append(child.containerOpts, e.containerOpts...)
	child.variables = append(child.variables, e.variables...)
	child.functions = append(child.functions, e.functions...)
	child.extensions = append(child.extensions, e.extensions...)
	child.messages = append(child.messages, e.messages...)
	for name, fields := range e.structs {
		if child.structs == nil {
			child.structs = make(map[string]map[string]*types.FieldType)
		}
		child.structs[name] = fields
	}
	for name, entries := range e.enums {
		if child.enums == nil {
			child.enums = make(map[string]map[string]int64)
		}
		child.enums[name] = entries
	}
	for _, opt := range opts {
		opt(child)
	}
	if len(child.setupErrs) > 0 {
		return nil, child.setupErrs[0]
	}
	if err := child.build(); err != nil {
		return nil, err
	}
	return child, nil
}

// Ast is a compiled expression, typed when produced by Compile.
type Ast struct {
	parsed  *ast.AST
	checked *ast.CheckedAST
	source  string
}

// IsChecked reports whether type annotations are present.
func (a *Ast) IsChecked() bool { return a.checked != nil }

// ResultType returns the annotated root type, or dyn for parse-only ASTs.
func (a *Ast) ResultType() Type {
	if a.checked == nil {
		return types.DynType
	}
	return a.checked.RootType()
}

// Source returns the original expression text.
func (a *Ast) Source() string { return a.source }

// Parse produces an untyped AST.
func (e *Env) Parse(source string) (*Ast, *Issues) {
	parsed, issues := parser.Parse(source, parser.Macros(e.macros))
	if !issues.Empty() {
		return nil, newIssues(issues, source)
	}
	return &Ast{parsed: parsed, source: source}, nil
}

// Compile parses and type-checks an expression.
func (e *Env) Compile(source string) (*Ast, *Issues) {
	parsed, issues := e.Parse(source)
	if issues != nil {
		return nil, issues
	}
	return e.Check(parsed)
}

// Check type-checks a parsed AST against the environment.
func (e *Env) Check(a *Ast) (*Ast, *Issues) {
	checkerEnv := &checker.Env{
		Container:          e.container,
		Decls:              e.registry,
		Provider:           e.provider,
		ExpectedResultType: e.expectedResultType,
	}
	checked, issues := checker.Check(a.parsed, checkerEnv)
	if !issues.Empty() {
		return nil, newIssues(issues, a.source)
	}
	return &Ast{parsed: a.parsed, checked: checked, source: a.source}, nil
}

// Version reports the runtime version.
func Version() string { return config.Version }
