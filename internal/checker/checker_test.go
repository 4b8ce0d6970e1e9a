package checker

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/funvibe/polex/internal/ast"
	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/parser"
	"github.com/funvibe/polex/internal/types"
)

func testEnv(t *testing.T, opts ...func(*Env)) *Env {
	t.Helper()
	registry := decls.NewRegistry()
	for _, fn := range decls.StandardFunctions(true) {
		if err := registry.AddFunction(fn); err != nil {
			t.Fatal(err)
		}
	}
	container, err := decls.NewContainer()
	if err != nil {
		t.Fatal(err)
	}
	env := &Env{
		Container: container,
		Decls:     registry,
		Provider:  types.NewProvider(),
	}
	for _, opt := range opts {
		opt(env)
	}
	return env
}

func withVar(name string, t types.Type) func(*Env) {
	return func(e *Env) {
		if err := e.Decls.AddVariable(decls.NewVariable(name, t)); err != nil {
			panic(err)
		}
	}
}

func compile(t *testing.T, env *Env, source string) (*ast.CheckedAST, string) {
	t.Helper()
	parsed, issues := parser.Parse(source)
	if !issues.Empty() {
		t.Fatalf("parse(%q): %s", source, issues)
	}
	checked, issues := Check(parsed, env)
	if !issues.Empty() {
		return nil, issues.String()
	}
	return checked, ""
}

func TestCheckTypes(t *testing.T) {
	env := testEnv(t,
		withVar("name", types.StringType),
		withVar("count", types.IntType),
		withVar("tags", types.NewListType(types.StringType)),
		withVar("attrs", types.NewMapType(types.StringType, types.DynType)),
	)

	tests := []struct {
		source string
		want   string
	}{
		{"1", "int"},
		{"1u", "uint"},
		{"1.5", "double"},
		{"'s'", "string"},
		{"b'x'", "bytes"},
		{"true", "bool"},
		{"null", "null_type"},
		{"1 + 2", "int"},
		{"1.0 + 2.0", "double"},
		{"'a' + 'b'", "string"},
		{"1 < 2", "bool"},
		{"1 < 2.0", "bool"},
		{"1 == 1", "bool"},
		{"name", "string"},
		{"count - 1", "int"},
		{"tags[0]", "string"},
		{"attrs.anything", "dyn"},
		{"[1, 2, 3]", "list(int)"},
		{"[1, 'a']", "list(dyn)"},
		{"{'k': 1}", "map(string, int)"},
		{"tags.all(x, x != '')", "bool"},
		{"[1, 2].map(x, x + 1)", "list(int)"},
		{"[1, 2].exists_one(x, x > 1)", "bool"},
		{"size(tags)", "int"},
		{"tags.size()", "int"},
		{"true ? 1 : 2", "int"},
		{"int('42')", "int"},
		{"type(1)", "type(int)"},
		{"dyn(1)", "dyn"},
		{"has(attrs.key)", "bool"},
		{"name.matches('^a')", "bool"},
		{"1 in [1, 2]", "bool"},
		{"'k' in attrs", "bool"},
		{"optional.of(1)", "optional(int)"},
		{"optional.of(1).orValue(2)", "int"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			checked, errs := compile(t, env, tt.source)
			if errs != "" {
				t.Fatalf("check failed: %s", errs)
			}
			if got := checked.RootType().String(); got != tt.want {
				t.Errorf("type = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCheckErrors(t *testing.T) {
	env := testEnv(t, withVar("name", types.StringType))

	tests := []struct {
		source  string
		wantSub string
	}{
		{"missing", "undeclared reference to 'missing'"},
		{"missing(1)", "undeclared reference to function 'missing'"},
		{"1 + 'a'", "found no matching overload for '_+_'"},
		{"name.undeclared(1)", "undeclared reference to function 'undeclared'"},
		{"1.all(x, x)", "expected a list or a map"},
		{"[1].all(x, x + 1)", "found no matching overload for '_&&_'"},
		{"name.field", "does not support field selection"},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, errs := compile(t, env, tt.source)
			if errs == "" {
				t.Fatalf("expected check failure")
			}
			if !strings.Contains(errs, tt.wantSub) {
				t.Errorf("errors = %q, want substring %q", errs, tt.wantSub)
			}
		})
	}
}

func TestErrorAccumulation(t *testing.T) {
	env := testEnv(t)
	_, errs := compile(t, env, "missing_a + missing_b + missing_c")
	if errs == "" {
		t.Fatal("expected check failure")
	}
	for _, name := range []string{"missing_a", "missing_b", "missing_c"} {
		if !strings.Contains(errs, name) {
			t.Errorf("errors should mention %s: %s", name, errs)
		}
	}
}

func TestIssueRendering(t *testing.T) {
	env := testEnv(t)
	_, errs := compile(t, env, "undeclared_one && (1 + 'mixed')")
	snaps.MatchSnapshot(t, errs)
}

func TestExpectedResultType(t *testing.T) {
	env := testEnv(t)
	env.ExpectedResultType = types.BoolType
	if _, errs := compile(t, env, "1 + 2"); errs == "" {
		t.Fatal("int root must fail a bool result-type contract")
	}
	if _, errs := compile(t, env, "1 < 2"); errs != "" {
		t.Fatalf("bool root must pass: %s", errs)
	}
}

func TestContainerResolution(t *testing.T) {
	env := testEnv(t, withVar("a.b.x", types.IntType), withVar("x", types.StringType))
	container, err := decls.NewContainer(decls.ContainerName("a.b"))
	if err != nil {
		t.Fatal(err)
	}
	env.Container = container

	checked, errs := compile(t, env, "x")
	if errs != "" {
		t.Fatalf("check failed: %s", errs)
	}
	// The most-qualified candidate wins.
	if got := checked.RootType().String(); got != "int" {
		t.Errorf("type = %s, want int (a.b.x)", got)
	}

	ref := checked.RefMap[checked.Root.ExprID()]
	if ref == nil || ref.Name != "a.b.x" {
		t.Errorf("ref = %+v, want a.b.x", ref)
	}
}

func TestEnumResolution(t *testing.T) {
	env := testEnv(t)
	if err := env.Provider.RegisterEnum("acme.Color", map[string]int64{"RED": 0, "GREEN": 1}); err != nil {
		t.Fatal(err)
	}
	checked, errs := compile(t, env, "acme.Color.GREEN == 1")
	if errs != "" {
		t.Fatalf("check failed: %s", errs)
	}
	if got := checked.RootType().String(); got != "bool" {
		t.Errorf("type = %s", got)
	}
}

func TestStructFieldCheck(t *testing.T) {
	env := testEnv(t, withVar("req", types.NewStructType("acme.Request")))
	mustRegister := func(err error) {
		if err != nil {
			t.Fatal(err)
		}
	}
	mustRegister(env.Provider.RegisterStruct("acme.Request", map[string]*types.FieldType{
		"path":   {Type: types.StringType},
		"port":   {Type: types.IntType},
		"secret": {Type: types.StringType, Hidden: true},
	}))

	checked, errs := compile(t, env, "req.path")
	if errs != "" {
		t.Fatalf("check failed: %s", errs)
	}
	if got := checked.RootType().String(); got != "string" {
		t.Errorf("type = %s", got)
	}

	if _, errs := compile(t, env, "req.nope"); !strings.Contains(errs, "undefined field") {
		t.Errorf("missing field: %s", errs)
	}
	if _, errs := compile(t, env, "req.secret"); !strings.Contains(errs, "not accessible") {
		t.Errorf("hidden field: %s", errs)
	}

	checked, errs = compile(t, env, "acme.Request{path: '/x', port: 80}")
	if errs != "" {
		t.Fatalf("construction failed: %s", errs)
	}
	if got := checked.RootType().String(); got != "acme.Request" {
		t.Errorf("type = %s", got)
	}
	if _, errs := compile(t, env, "acme.Request{port: 'not-an-int'}"); !strings.Contains(errs, "expected type of field") {
		t.Errorf("field type mismatch: %s", errs)
	}
}

func TestOverloadDeterminism(t *testing.T) {
	env := testEnv(t, withVar("xs", types.NewListType(types.IntType)))
	var first []string
	for i := 0; i < 5; i++ {
		checked, errs := compile(t, env, "size(xs)")
		if errs != "" {
			t.Fatalf("check failed: %s", errs)
		}
		ref := checked.RefMap[checked.Root.ExprID()]
		if ref == nil {
			t.Fatal("call has no reference info")
		}
		if first == nil {
			first = ref.OverloadIDs
			continue
		}
		if len(first) != len(ref.OverloadIDs) {
			t.Fatalf("overload ids changed across runs")
		}
		for j := range first {
			if first[j] != ref.OverloadIDs[j] {
				t.Fatalf("overload ids changed across runs: %v vs %v", first, ref.OverloadIDs)
			}
		}
	}
	if first[0] != decls.OverloadSizeList {
		t.Errorf("resolved %v, want %s first", first, decls.OverloadSizeList)
	}
}
