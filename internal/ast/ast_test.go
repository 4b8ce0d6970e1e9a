package ast

import "testing"

func TestSourceInfoLocation(t *testing.T) {
	src := "line one\nline two\nline three"
	si := NewSourceInfo("test", src)
	si.SetOffset(1, 0)  // 'l' of line one
	si.SetOffset(2, 9)  // 'l' of line two
	si.SetOffset(3, 14) // 't' of two
	si.SetOffset(4, 18) // 'l' of line three

	tests := []struct {
		id   int64
		line int
		col  int
	}{
		{1, 1, 1},
		{2, 2, 1},
		{3, 2, 6},
		{4, 3, 1},
	}
	for _, tt := range tests {
		line, col := si.Location(tt.id)
		if line != tt.line || col != tt.col {
			t.Errorf("id %d: got %d:%d, want %d:%d", tt.id, line, col, tt.line, tt.col)
		}
	}

	if line, col := si.Location(99); line != 0 || col != 0 {
		t.Errorf("missing offset should report 0:0, got %d:%d", line, col)
	}
}

func TestListOptionalIndices(t *testing.T) {
	l := &List{OptionalIndices: []int32{1, 3}}
	if l.IsOptionalIndex(0) || !l.IsOptionalIndex(1) || l.IsOptionalIndex(2) || !l.IsOptionalIndex(3) {
		t.Error("optional index lookup is wrong")
	}
}

func TestStructIsMap(t *testing.T) {
	if !(&Struct{}).IsMap() {
		t.Error("empty type name means map literal")
	}
	if (&Struct{TypeName: "acme.Msg"}).IsMap() {
		t.Error("named struct is not a map literal")
	}
}
