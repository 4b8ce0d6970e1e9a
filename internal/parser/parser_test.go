package parser

import (
	"testing"

	"github.com/funvibe/polex/internal/ast"
	"github.com/funvibe/polex/internal/decls"
)

func mustParse(t *testing.T, source string) *ast.AST {
	t.Helper()
	parsed, issues := Parse(source)
	if !issues.Empty() {
		t.Fatalf("parse(%q) failed: %s", source, issues)
	}
	return parsed
}

func TestParseOperators(t *testing.T) {
	tests := []struct {
		source   string
		function string
		args     int
	}{
		{"1 + 2", decls.Add, 2},
		{"1 - 2", decls.Subtract, 2},
		{"1 * 2", decls.Multiply, 2},
		{"1 / 2", decls.Divide, 2},
		{"1 % 2", decls.Modulo, 2},
		{"1 < 2", decls.Less, 2},
		{"1 <= 2", decls.LessEquals, 2},
		{"1 > 2", decls.Greater, 2},
		{"1 >= 2", decls.GreaterEqual, 2},
		{"1 == 2", decls.Equals, 2},
		{"1 != 2", decls.NotEquals, 2},
		{"true && false", decls.LogicalAnd, 2},
		{"true || false", decls.LogicalOr, 2},
		{"!true", decls.LogicalNot, 1},
		{"-x", decls.Negate, 1},
		{"x[0]", decls.Index, 2},
		{"1 in [1]", decls.In, 2},
		{"true ? 1 : 2", decls.Conditional, 3},
	}
	for _, tt := range tests {
		parsed := mustParse(t, tt.source)
		call, ok := parsed.Root.(*ast.Call)
		if !ok {
			t.Errorf("%q: root is %T, want Call", tt.source, parsed.Root)
			continue
		}
		if call.Function != tt.function {
			t.Errorf("%q: function %q, want %q", tt.source, call.Function, tt.function)
		}
		if len(call.Args) != tt.args {
			t.Errorf("%q: %d args, want %d", tt.source, len(call.Args), tt.args)
		}
	}
}

func TestPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3)
	parsed := mustParse(t, "1 + 2 * 3")
	add := parsed.Root.(*ast.Call)
	if add.Function != decls.Add {
		t.Fatalf("root function %q, want %q", add.Function, decls.Add)
	}
	mul, ok := add.Args[1].(*ast.Call)
	if !ok || mul.Function != decls.Multiply {
		t.Fatalf("right operand is not the multiplication")
	}

	// a || b && c must parse as a || (b && c)
	parsed = mustParse(t, "a || b && c")
	or := parsed.Root.(*ast.Call)
	if or.Function != decls.LogicalOr {
		t.Fatalf("root function %q, want %q", or.Function, decls.LogicalOr)
	}
	and, ok := or.Args[1].(*ast.Call)
	if !ok || and.Function != decls.LogicalAnd {
		t.Fatalf("right operand is not the conjunction")
	}
}

func TestNegativeLiteralFolding(t *testing.T) {
	parsed := mustParse(t, "-9223372036854775808")
	lit, ok := parsed.Root.(*ast.Literal)
	if !ok {
		t.Fatalf("root is %T, want folded Literal", parsed.Root)
	}
	if lit.Value.Kind != ast.IntConst || lit.Value.Int != -9223372036854775808 {
		t.Fatalf("folded literal is %+v", lit.Value)
	}
}

func TestMacroExpansion(t *testing.T) {
	tests := []string{
		"[1, 2].all(x, x > 0)",
		"[1, 2].exists(x, x > 1)",
		"[1, 2].exists_one(x, x > 1)",
		"[1, 2].map(x, x + 1)",
		"[1, 2].map(x, x > 0, x + 1)",
		"[1, 2].filter(x, x > 0)",
	}
	for _, source := range tests {
		parsed := mustParse(t, source)
		if _, ok := parsed.Root.(*ast.Comprehension); !ok {
			t.Errorf("%q: root is %T, want Comprehension", source, parsed.Root)
		}
	}

	parsed := mustParse(t, "has(a.b)")
	sel, ok := parsed.Root.(*ast.Select)
	if !ok || !sel.TestOnly {
		t.Fatalf("has() did not expand to a test-only select: %T", parsed.Root)
	}
}

func TestUniqueIDs(t *testing.T) {
	parsed := mustParse(t, "[0, 1, 2].map(x, x > 0, x + 1) == [2, 3]")
	seen := map[int64]bool{}
	var walk func(e ast.Expr)
	walk = func(e ast.Expr) {
		if e == nil {
			return
		}
		if seen[e.ExprID()] {
			t.Fatalf("duplicate node id %d", e.ExprID())
		}
		seen[e.ExprID()] = true
		switch n := e.(type) {
		case *ast.Select:
			walk(n.Operand)
		case *ast.Call:
			walk(n.Target)
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.List:
			for _, el := range n.Elements {
				walk(el)
			}
		case *ast.Struct:
			for _, entry := range n.Entries {
				walk(entry.MapKey)
				walk(entry.Value)
			}
		case *ast.Comprehension:
			walk(n.IterRange)
			walk(n.AccuInit)
			walk(n.LoopCond)
			walk(n.LoopStep)
			walk(n.Result)
		}
	}
	walk(parsed.Root)
	if len(seen) == 0 {
		t.Fatal("no nodes walked")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		"",
		"1 +",
		"(1",
		"[1, 2",
		"{1: 2",
		"a.",
		"1 ? 2",
		"9223372036854775808",
		"f(a,",
		"a b",
	}
	for _, source := range tests {
		_, issues := Parse(source)
		if issues.Empty() {
			t.Errorf("%q: expected a parse error", source)
		}
	}
}

func TestStructConstruction(t *testing.T) {
	parsed := mustParse(t, "acme.Request{path: '/x', ?port: optional.of(8080)}")
	st, ok := parsed.Root.(*ast.Struct)
	if !ok {
		t.Fatalf("root is %T, want Struct", parsed.Root)
	}
	if st.TypeName != "acme.Request" {
		t.Fatalf("type name %q", st.TypeName)
	}
	if len(st.Entries) != 2 {
		t.Fatalf("%d entries", len(st.Entries))
	}
	if st.Entries[0].FieldName != "path" || st.Entries[0].Optional {
		t.Fatalf("entry 0: %+v", st.Entries[0])
	}
	if st.Entries[1].FieldName != "port" || !st.Entries[1].Optional {
		t.Fatalf("entry 1: %+v", st.Entries[1])
	}
}

func TestMapAndListLiterals(t *testing.T) {
	parsed := mustParse(t, "{'a': 1, 'b': 2}")
	st, ok := parsed.Root.(*ast.Struct)
	if !ok || !st.IsMap() {
		t.Fatalf("root is not a map literal: %T", parsed.Root)
	}

	parsed = mustParse(t, "[1, ?optional.none(), 3]")
	list, ok := parsed.Root.(*ast.List)
	if !ok {
		t.Fatalf("root is %T, want List", parsed.Root)
	}
	if len(list.Elements) != 3 || len(list.OptionalIndices) != 1 || list.OptionalIndices[0] != 1 {
		t.Fatalf("list shape: %d elements, optionals %v", len(list.Elements), list.OptionalIndices)
	}
}

func TestRecursionLimit(t *testing.T) {
	deep := ""
	for i := 0; i < 400; i++ {
		deep += "("
	}
	deep += "1"
	_, issues := Parse(deep)
	if issues.Empty() {
		t.Fatal("expected a recursion depth error")
	}
}

func FuzzParse(f *testing.F) {
	seeds := []string{
		"1 + 2",
		"a.b.c[0] == 'x'",
		"[1,2,3].exists(i, i > 2) ? 'y' : 'n'",
		"{?'k': optional.of(1)}",
		`has(a.b) && a.matches("[0-9]+")`,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, source string) {
		// The parser must never panic; it reports issues instead.
		parsed, issues := Parse(source)
		if parsed == nil && issues.Empty() {
			t.Fatalf("nil ast without issues for %q", source)
		}
	})
}
