package evaluator

import "testing"

func TestAttributeRendering(t *testing.T) {
	attr := NewAttribute("a",
		StringQualifier("b"),
		IntQualifier(2),
		StringQualifier("c"))
	if got := attr.String(); got != "a.b[2].c" {
		t.Errorf("attr = %q", got)
	}
}

func TestPrefixMatches(t *testing.T) {
	tests := []struct {
		pattern *AttributePattern
		attr    *Attribute
		want    bool
	}{
		{NewAttributePattern("a"), NewAttribute("a"), true},
		{NewAttributePattern("a"), NewAttribute("b"), false},
		{NewAttributePattern("a"), NewAttribute("a", StringQualifier("b")), true},
		{NewAttributePattern("a").QualString("b"), NewAttribute("a"), false},
		{NewAttributePattern("a").QualString("b"), NewAttribute("a", StringQualifier("b")), true},
		{NewAttributePattern("a").Wildcard(), NewAttribute("a", IntQualifier(3)), true},
		{NewAttributePattern("a").QualInt(2), NewAttribute("a", UintQualifier(2)), true},
		{NewAttributePattern("a").QualInt(2), NewAttribute("a", IntQualifier(3)), false},
		{NewAttributePattern("a").QualBool(true), NewAttribute("a", BoolQualifier(true)), true},
	}
	for _, tt := range tests {
		if got := tt.pattern.PrefixMatches(tt.attr); got != tt.want {
			t.Errorf("%s vs %s: got %v, want %v", tt.pattern, tt.attr, got, tt.want)
		}
	}
}

func TestPotentialMatch(t *testing.T) {
	longer := NewAttributePattern("req").QualString("auth").Wildcard()
	if !longer.PotentialMatch(NewAttribute("req", StringQualifier("auth"))) {
		t.Error("shorter attribute on the pattern's path must potentially match")
	}
	if longer.PotentialMatch(NewAttribute("req", StringQualifier("path"))) {
		t.Error("diverging attribute must not potentially match")
	}
	if longer.PotentialMatch(NewAttribute("req", StringQualifier("auth"), StringQualifier("claims"))) {
		t.Error("equal-or-longer attributes are not potential matches")
	}
}

func TestParseAttributePattern(t *testing.T) {
	p, err := ParseAttributePattern("req.auth.*")
	if err != nil {
		t.Fatal(err)
	}
	if p.Variable != "req" || len(p.Qualifiers) != 2 {
		t.Fatalf("pattern = %+v", p)
	}
	if p.Qualifiers[1].Kind != WildcardQual {
		t.Fatalf("second qualifier is not a wildcard")
	}

	p, err = ParseAttributePattern("xs.0")
	if err != nil {
		t.Fatal(err)
	}
	if p.Qualifiers[0].Kind != IntQual || p.Qualifiers[0].Int != 0 {
		t.Fatalf("numeric segment should parse as an int qualifier: %+v", p.Qualifiers[0])
	}

	if _, err := ParseAttributePattern("*.x"); err == nil {
		t.Error("pattern must start with a variable")
	}
}

func TestMergeUnknowns(t *testing.T) {
	u1 := NewUnknown(1, NewAttribute("a"))
	u2 := NewUnknown(2, NewAttribute("b"))
	merged := MergeUnknowns(u1, u2)
	if len(merged.Attrs) != 2 || len(merged.ExprIDs) != 2 {
		t.Fatalf("merged = %s", merged.Inspect())
	}
	// Merging is idempotent on duplicates.
	again := MergeUnknowns(merged, u1)
	if len(again.Attrs) != 2 {
		t.Fatalf("duplicate attrs must dedupe: %s", again.Inspect())
	}
}

func TestObjectEquality(t *testing.T) {
	tests := []struct {
		a, b Object
		want bool
	}{
		{&Integer{Value: 1}, &Integer{Value: 1}, true},
		{&Integer{Value: 1}, &UInt{Value: 1}, true},
		{&Integer{Value: 1}, &Double{Value: 1.0}, true},
		{&Integer{Value: -1}, &UInt{Value: 18446744073709551615}, false},
		{&Double{Value: 1.5}, &Integer{Value: 1}, false},
		{&String{Value: "a"}, &String{Value: "a"}, true},
		{&Bytes{Value: []byte{1, 2}}, &Bytes{Value: []byte{1, 2}}, true},
		{&Bytes{Value: []byte{1}}, &Bytes{Value: []byte{1, 2}}, false},
		{NULL, NULL, true},
		{TRUE, FALSE, false},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%s == %s: got %v, want %v", tt.a.Inspect(), tt.b.Inspect(), got, tt.want)
		}
	}

	l1 := &List{Elements: []Object{&Integer{Value: 1}, &Integer{Value: 2}}}
	l2 := &List{Elements: []Object{&UInt{Value: 1}, &Double{Value: 2.0}}}
	if !l1.Equal(l2) {
		t.Error("lists compare element-wise with numeric equality")
	}

	m1 := NewMap()
	m2 := NewMap()
	if err := m1.Set(&String{Value: "a"}, &Integer{Value: 1}); err != nil {
		t.Fatal(err)
	}
	if err := m2.Set(&String{Value: "a"}, &Integer{Value: 1}); err != nil {
		t.Fatal(err)
	}
	if !m1.Equal(m2) {
		t.Error("maps compare structurally")
	}
}

func TestMapKeyCanonicalization(t *testing.T) {
	m := NewMap()
	if err := m.Set(&Integer{Value: 1}, &String{Value: "int"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(&UInt{Value: 1}, &String{Value: "uint"}); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 1 {
		t.Fatalf("numerically equal keys must collide, len = %d", m.Len())
	}
	v, found := m.Get(&Integer{Value: 1})
	if !found || v.(*String).Value != "uint" {
		t.Fatalf("last write must win: %v", v)
	}

	if _, err := mapKeyOf(&Double{Value: 1.0}); err == nil {
		t.Error("double keys are unsupported")
	}
}

func TestNativeConversions(t *testing.T) {
	obj, err := NativeToObject(map[string]interface{}{
		"n":  int64(1),
		"xs": []interface{}{true, "s"},
	})
	if err != nil {
		t.Fatal(err)
	}
	m, ok := obj.(*Map)
	if !ok || m.Len() != 2 {
		t.Fatalf("converted = %v", obj)
	}

	back, err := ObjectToNative(m)
	if err != nil {
		t.Fatal(err)
	}
	native, ok := back.(map[interface{}]interface{})
	if !ok || len(native) != 2 {
		t.Fatalf("roundtrip = %v", back)
	}
}
