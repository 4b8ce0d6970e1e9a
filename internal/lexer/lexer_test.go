package lexer

import (
	"testing"

	"github.com/funvibe/polex/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `a.b[2] == 3u && !x ? 1.5 : "str" // comment
b"\x00" + r"raw\n" in [true, null]`

	tests := []struct {
		expectedType   token.Type
		expectedLexeme string
	}{
		{token.IDENT, "a"},
		{token.DOT, "."},
		{token.IDENT, "b"},
		{token.LBRACKET, "["},
		{token.INT, "2"},
		{token.RBRACKET, "]"},
		{token.EQ, "=="},
		{token.UINT, "3"},
		{token.AND, "&&"},
		{token.BANG, "!"},
		{token.IDENT, "x"},
		{token.QUESTION, "?"},
		{token.FLOAT, "1.5"},
		{token.COLON, ":"},
		{token.STRING, "str"},
		{token.BYTES, "\x00"},
		{token.PLUS, "+"},
		{token.STRING, `raw\n`},
		{token.IN, "in"},
		{token.LBRACKET, "["},
		{token.TRUE, "true"},
		{token.COMMA, ","},
		{token.NULL, "null"},
		{token.RBRACKET, "]"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong type. expected=%q, got=%q (%q)",
				i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - wrong lexeme. expected=%q, got=%q",
				i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"a\nb"`, "a\nb"},
		{`"a\tb"`, "a\tb"},
		{`"q\"q"`, `q"q`},
		{`'sgl'`, "sgl"},
		{`"\x41"`, "A"},
		{`"é"`, "é"},
		{`"\U0001F600"`, "😀"},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != token.STRING {
			t.Errorf("%q: expected STRING, got %s (%q)", tt.input, tok.Type, tok.Lexeme)
			continue
		}
		if tok.Lexeme != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, tok.Lexeme)
		}
	}
}

func TestIllegalInput(t *testing.T) {
	tests := []string{
		`"unterminated`,
		`"bad \q escape"`,
		`a = b`,
		`a & b`,
		`let`,
	}
	for _, input := range tests {
		l := New(input)
		sawIllegal := false
		for i := 0; i < 10; i++ {
			tok := l.NextToken()
			if tok.Type == token.ILLEGAL {
				sawIllegal = true
				break
			}
			if tok.Type == token.EOF {
				break
			}
		}
		if !sawIllegal {
			t.Errorf("%q: expected an ILLEGAL token", input)
		}
	}
}

func TestNumberForms(t *testing.T) {
	tests := []struct {
		input        string
		expectedType token.Type
	}{
		{"0", token.INT},
		{"42", token.INT},
		{"0x1f", token.INT},
		{"42u", token.UINT},
		{"0x1fU", token.UINT},
		{"4.2", token.FLOAT},
		{"1e3", token.FLOAT},
		{"2.5e-2", token.FLOAT},
	}
	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Errorf("%q: expected %s, got %s", tt.input, tt.expectedType, tok.Type)
		}
	}
}
