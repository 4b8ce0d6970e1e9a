package jsonvalue

import (
	"testing"

	"github.com/funvibe/polex/internal/evaluator"
)

func TestDecodeDocument(t *testing.T) {
	doc := []byte(`{
		"name": "alice",
		"age": 30,
		"score": 9.5,
		"admin": true,
		"tags": ["a", "b"],
		"attrs": {"k": null}
	}`)
	bindings, err := DecodeDocument(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(bindings) != 6 {
		t.Fatalf("got %d bindings", len(bindings))
	}

	if s, ok := bindings["name"].(*evaluator.String); !ok || s.Value != "alice" {
		t.Errorf("name = %v", bindings["name"])
	}
	if i, ok := bindings["age"].(*evaluator.Integer); !ok || i.Value != 30 {
		t.Errorf("integral numbers decode as int: %v", bindings["age"])
	}
	if d, ok := bindings["score"].(*evaluator.Double); !ok || d.Value != 9.5 {
		t.Errorf("fractional numbers decode as double: %v", bindings["score"])
	}
	if b, ok := bindings["admin"].(*evaluator.Boolean); !ok || !b.Value {
		t.Errorf("admin = %v", bindings["admin"])
	}
	list, ok := bindings["tags"].(*evaluator.List)
	if !ok || len(list.Elements) != 2 {
		t.Fatalf("tags = %v", bindings["tags"])
	}
	attrs, ok := bindings["attrs"].(*evaluator.Map)
	if !ok || attrs.Len() != 1 {
		t.Fatalf("attrs = %v", bindings["attrs"])
	}
	v, found := attrs.Get(&evaluator.String{Value: "k"})
	if !found || v != evaluator.NULL {
		t.Errorf("attrs.k = %v", v)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := DecodeDocument([]byte(`{bad json`)); err == nil {
		t.Error("invalid JSON must fail")
	}
	if _, err := DecodeDocument([]byte(`[1, 2]`)); err == nil {
		t.Error("non-object top level must fail")
	}
}

func TestDecodeValue(t *testing.T) {
	obj, err := Decode([]byte(`[1, "x", false]`))
	if err != nil {
		t.Fatal(err)
	}
	list, ok := obj.(*evaluator.List)
	if !ok || len(list.Elements) != 3 {
		t.Fatalf("decode = %v", obj)
	}
}
