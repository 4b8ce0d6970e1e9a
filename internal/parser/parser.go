// Package parser turns expression source text into the untyped AST. It is a
// Pratt parser; operators lower into the reserved call forms and macros
// expand in place, so the tree the checker sees contains no macro calls.
package parser

import (
	"github.com/funvibe/polex/internal/ast"
	"github.com/funvibe/polex/internal/config"
	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/diagnostics"
	"github.com/funvibe/polex/internal/lexer"
	"github.com/funvibe/polex/internal/token"
)

// Operator precedence levels, lowest binds loosest.
const (
	_ int = iota
	LOWEST
	TERNARY     // ? :
	LOGICAL_OR  // ||
	LOGICAL_AND // &&
	RELATION    // == != < <= > >= in
	SUM         // + -
	PRODUCT     // * / %
	UNARY       // ! -
	MEMBER      // . () [] {}
)

var precedences = map[token.Type]int{
	token.QUESTION: TERNARY,
	token.OR:       LOGICAL_OR,
	token.AND:      LOGICAL_AND,
	token.EQ:       RELATION,
	token.NE:       RELATION,
	token.LT:       RELATION,
	token.LE:       RELATION,
	token.GT:       RELATION,
	token.GE:       RELATION,
	token.IN:       RELATION,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.DOT:      MEMBER,
	token.LPAREN:   MEMBER,
	token.LBRACKET: MEMBER,
	token.LBRACE:   MEMBER,
}

var relationOperators = map[token.Type]string{
	token.EQ: decls.Equals,
	token.NE: decls.NotEquals,
	token.LT: decls.Less,
	token.LE: decls.LessEquals,
	token.GT: decls.Greater,
	token.GE: decls.GreaterEqual,
	token.IN: decls.In,
}

var arithmeticOperators = map[token.Type]string{
	token.PLUS:     decls.Add,
	token.MINUS:    decls.Subtract,
	token.ASTERISK: decls.Multiply,
	token.SLASH:    decls.Divide,
	token.PERCENT:  decls.Modulo,
}

type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors     []*diagnostics.DiagnosticError
	sourceInfo *ast.SourceInfo
	macros     map[string]*decls.Macro

	nextID   int64
	depth    int
	maxDepth int
}

// Option configures a Parser.
type Option func(*Parser)

// Macros replaces the default macro set.
func Macros(macros []*decls.Macro) Option {
	return func(p *Parser) {
		p.macros = make(map[string]*decls.Macro, len(macros))
		for _, m := range macros {
			p.macros[m.Key()] = m
		}
	}
}

// MaxRecursionDepth overrides the nesting limit.
func MaxRecursionDepth(depth int) Option {
	return func(p *Parser) { p.maxDepth = depth }
}

// Parse scans and parses one expression, returning the AST and any syntax
// issues. The returned AST is nil when issues contain errors.
func Parse(source string, opts ...Option) (*ast.AST, *diagnostics.Issues) {
	return ParseWithDescription(source, "<input>", opts...)
}

// ParseWithDescription parses source labeled with a description used in
// diagnostics rendering.
func ParseWithDescription(source, description string, opts ...Option) (*ast.AST, *diagnostics.Issues) {
	issues := diagnostics.NewIssues()
	if len(source) > config.MaxExpressionSize {
		issues.Append(diagnostics.NewError(diagnostics.SyntaxError, 1, 1,
			"expression exceeds maximum size of %d bytes", config.MaxExpressionSize))
		return nil, issues
	}
	p := &Parser{
		l:          lexer.New(source),
		sourceInfo: ast.NewSourceInfo(description, source),
		maxDepth:   config.MaxRecursionDepth,
	}
	Macros(decls.StandardMacros)(p)
	for _, opt := range opts {
		opt(p)
	}
	p.advance()
	p.advance()

	root := p.parseExpression(LOWEST)
	if !p.curTokenIs(token.EOF) && len(p.errors) == 0 {
		p.errorf("unexpected token %q following expression", p.curToken.Lexeme)
	}
	issues = diagnostics.NewIssues(p.errors...)
	if !issues.Empty() {
		return nil, issues
	}
	return &ast.AST{Root: root, Source: p.sourceInfo, MaxID: p.nextID}, issues
}

func (p *Parser) advance() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	if p.peekToken.Type == token.ILLEGAL {
		p.errors = append(p.errors, diagnostics.NewError(diagnostics.SyntaxError,
			p.peekToken.Line, p.peekToken.Column, "%s", p.peekToken.Lexeme))
		// Swallow the illegal token so the parser sees EOF and stops.
		p.peekToken = token.Token{Type: token.EOF, Line: p.peekToken.Line, Column: p.peekToken.Column}
	}
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

// expect consumes the current token when it matches, or reports an error.
func (p *Parser) expect(t token.Type) bool {
	if p.curTokenIs(t) {
		p.advance()
		return true
	}
	p.errorf("expected %q, found %q", string(t), p.curToken.Lexeme)
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.NewError(diagnostics.SyntaxError,
		p.curToken.Line, p.curToken.Column, format, args...))
}

func (p *Parser) id(offset int) int64 {
	p.nextID++
	p.sourceInfo.SetOffset(p.nextID, int32(offset))
	return p.nextID
}
