package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/funvibe/polex/internal/ast"
	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/diagnostics"
	"github.com/funvibe/polex/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expr {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxDepth {
		p.errorf("expression too complex: recursion depth limit exceeded")
		return nil
	}

	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for precedence < p.curPrecedence() {
		next := p.parseInfix(left)
		if next == nil {
			return left
		}
		left = next
	}
	return left
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) parsePrefix() ast.Expr {
	switch p.curToken.Type {
	case token.INT:
		return p.parseIntLiteral(false)
	case token.UINT:
		return p.parseUintLiteral()
	case token.FLOAT:
		return p.parseDoubleLiteral(false)
	case token.STRING:
		tok := p.curToken
		p.advance()
		return &ast.Literal{ID: p.id(tok.Offset), Value: ast.Constant{Kind: ast.StringConst, Str: tok.Lexeme}}
	case token.BYTES:
		tok := p.curToken
		p.advance()
		return &ast.Literal{ID: p.id(tok.Offset), Value: ast.Constant{Kind: ast.BytesConst, Bytes: []byte(tok.Lexeme)}}
	case token.TRUE, token.FALSE:
		tok := p.curToken
		p.advance()
		return &ast.Literal{ID: p.id(tok.Offset), Value: ast.Constant{Kind: ast.BoolConst, Bool: tok.Type == token.TRUE}}
	case token.NULL:
		tok := p.curToken
		p.advance()
		return &ast.Literal{ID: p.id(tok.Offset), Value: ast.Constant{Kind: ast.NullConst}}
	case token.IDENT:
		return p.parseIdentOrCall("")
	case token.DOT:
		// Leading dot pins the name to the root namespace.
		p.advance()
		if !p.curTokenIs(token.IDENT) {
			p.errorf("expected identifier after leading '.'")
			return nil
		}
		return p.parseIdentOrCall(".")
	case token.BANG:
		tok := p.curToken
		p.advance()
		operand := p.parseExpression(UNARY)
		if operand == nil {
			return nil
		}
		return &ast.Call{ID: p.id(tok.Offset), Function: decls.LogicalNot, Args: []ast.Expr{operand}}
	case token.MINUS:
		return p.parseNegation()
	case token.LPAREN:
		p.advance()
		e := p.parseExpression(LOWEST)
		if e == nil {
			return nil
		}
		p.expect(token.RPAREN)
		return e
	case token.LBRACKET:
		return p.parseListLiteral()
	case token.LBRACE:
		return p.parseMapLiteral()
	case token.EOF:
		p.errorf("unexpected end of expression")
		return nil
	default:
		p.errorf("unexpected token %q", p.curToken.Lexeme)
		return nil
	}
}

func (p *Parser) parseInfix(left ast.Expr) ast.Expr {
	switch p.curToken.Type {
	case token.AND:
		return p.parseBinary(left, decls.LogicalAnd, LOGICAL_AND)
	case token.OR:
		return p.parseBinary(left, decls.LogicalOr, LOGICAL_OR)
	case token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE, token.IN:
		return p.parseBinary(left, relationOperators[p.curToken.Type], RELATION)
	case token.PLUS, token.MINUS:
		return p.parseBinary(left, arithmeticOperators[p.curToken.Type], SUM)
	case token.ASTERISK, token.SLASH, token.PERCENT:
		return p.parseBinary(left, arithmeticOperators[p.curToken.Type], PRODUCT)
	case token.QUESTION:
		return p.parseTernary(left)
	case token.DOT:
		return p.parseMember(left)
	case token.LBRACKET:
		return p.parseIndex(left)
	case token.LBRACE:
		return p.parseStructCtor(left)
	default:
		return nil
	}
}

func (p *Parser) parseBinary(left ast.Expr, function string, precedence int) ast.Expr {
	tok := p.curToken
	p.advance()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &ast.Call{ID: p.id(tok.Offset), Function: function, Args: []ast.Expr{left, right}}
}

func (p *Parser) parseTernary(cond ast.Expr) ast.Expr {
	tok := p.curToken
	p.advance()
	truthy := p.parseExpression(LOWEST)
	if truthy == nil {
		return nil
	}
	if !p.expect(token.COLON) {
		return nil
	}
	// Right-associative: the false branch swallows any trailing ternary.
	falsy := p.parseExpression(TERNARY - 1)
	if falsy == nil {
		return nil
	}
	return &ast.Call{ID: p.id(tok.Offset), Function: decls.Conditional, Args: []ast.Expr{cond, truthy, falsy}}
}

func (p *Parser) parseNegation() ast.Expr {
	tok := p.curToken
	p.advance()
	// Fold negative numeric literals so int64 minimum parses directly.
	if p.curTokenIs(token.INT) {
		return p.parseIntLiteral(true)
	}
	if p.curTokenIs(token.FLOAT) {
		return p.parseDoubleLiteral(true)
	}
	operand := p.parseExpression(UNARY)
	if operand == nil {
		return nil
	}
	return &ast.Call{ID: p.id(tok.Offset), Function: decls.Negate, Args: []ast.Expr{operand}}
}

func (p *Parser) parseIntLiteral(negated bool) ast.Expr {
	tok := p.curToken
	p.advance()
	text := tok.Lexeme
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		text = text[2:]
		if negated {
			text = "-" + text
		}
		v, err := strconv.ParseInt(text, 16, 64)
		if err != nil {
			p.errors = append(p.errors, diagnostics.NewError(diagnostics.SyntaxError,
				tok.Line, tok.Column, "invalid int literal: %s", tok.Lexeme))
			return nil
		}
		return &ast.Literal{ID: p.id(tok.Offset), Value: ast.Constant{Kind: ast.IntConst, Int: v}}
	}
	if negated {
		text = "-" + text
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		p.errors = append(p.errors, diagnostics.NewError(diagnostics.SyntaxError,
			tok.Line, tok.Column, "invalid int literal: %s", text))
		return nil
	}
	return &ast.Literal{ID: p.id(tok.Offset), Value: ast.Constant{Kind: ast.IntConst, Int: v}}
}

func (p *Parser) parseUintLiteral() ast.Expr {
	tok := p.curToken
	p.advance()
	base := 10
	text := tok.Lexeme
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		base = 16
		text = text[2:]
	}
	v, err := strconv.ParseUint(text, base, 64)
	if err != nil {
		p.errors = append(p.errors, diagnostics.NewError(diagnostics.SyntaxError,
			tok.Line, tok.Column, "invalid uint literal: %s", tok.Lexeme))
		return nil
	}
	return &ast.Literal{ID: p.id(tok.Offset), Value: ast.Constant{Kind: ast.UintConst, Uint: v}}
}

func (p *Parser) parseDoubleLiteral(negated bool) ast.Expr {
	tok := p.curToken
	p.advance()
	v, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil || math.IsInf(v, 0) {
		p.errors = append(p.errors, diagnostics.NewError(diagnostics.SyntaxError,
			tok.Line, tok.Column, "invalid double literal: %s", tok.Lexeme))
		return nil
	}
	if negated {
		v = -v
	}
	return &ast.Literal{ID: p.id(tok.Offset), Value: ast.Constant{Kind: ast.DoubleConst, Double: v}}
}

// parseIdentOrCall handles a (possibly rooted) identifier and the global
// call form `f(args)`. Qualified names and struct construction are handled
// by the member and struct-ctor infix forms.
func (p *Parser) parseIdentOrCall(prefix string) ast.Expr {
	tok := p.curToken
	name := prefix + tok.Lexeme
	p.advance()
	if !p.curTokenIs(token.LPAREN) {
		return &ast.Ident{ID: p.id(tok.Offset), Name: name}
	}
	args, ok := p.parseCallArgs()
	if !ok {
		return nil
	}
	if m, found := p.macros[decls.MacroKey(tok.Lexeme, len(args), false)]; found && prefix == "" {
		return p.expandMacro(m, nil, args)
	}
	return &ast.Call{ID: p.id(tok.Offset), Function: name, Args: args}
}

func (p *Parser) parseCallArgs() ([]ast.Expr, bool) {
	p.advance() // consume '('
	var args []ast.Expr
	for !p.curTokenIs(token.RPAREN) {
		if p.curTokenIs(token.EOF) {
			p.errorf("unterminated call argument list")
			return nil, false
		}
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil, false
		}
		args = append(args, arg)
		if p.curTokenIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if !p.expect(token.RPAREN) {
		return nil, false
	}
	return args, true
}

// parseMember handles `e.f`, the receiver call `e.f(args)` and qualified
// names used as struct constructors or enum references.
func (p *Parser) parseMember(left ast.Expr) ast.Expr {
	tok := p.curToken
	p.advance() // consume '.'
	if !p.curTokenIs(token.IDENT) {
		p.errorf("expected field or method name after '.'")
		return nil
	}
	field := p.curToken.Lexeme
	fieldTok := p.curToken
	p.advance()

	if p.curTokenIs(token.LPAREN) {
		args, ok := p.parseCallArgs()
		if !ok {
			return nil
		}
		if m, found := p.macros[decls.MacroKey(field, len(args), true)]; found {
			return p.expandMacro(m, left, args)
		}
		// A call on a dotted name chain may still be a namespaced global
		// function, e.g. math.abs(x). That rewrite needs the declaration
		// registry, so the checker decides; the parser always keeps the
		// receiver form.
		return &ast.Call{ID: p.id(fieldTok.Offset), Target: left, Function: field, Args: args}
	}

	return &ast.Select{ID: p.id(tok.Offset), Operand: left, Field: field}
}

// memberName flattens an ident/select chain into a dotted name.
func memberName(e ast.Expr) (string, bool) {
	switch n := e.(type) {
	case *ast.Ident:
		return n.Name, true
	case *ast.Select:
		if n.TestOnly {
			return "", false
		}
		prefix, ok := memberName(n.Operand)
		if !ok {
			return "", false
		}
		return prefix + "." + n.Field, true
	default:
		return "", false
	}
}

func (p *Parser) parseIndex(left ast.Expr) ast.Expr {
	tok := p.curToken
	p.advance() // consume '['
	index := p.parseExpression(LOWEST)
	if index == nil {
		return nil
	}
	if !p.expect(token.RBRACKET) {
		return nil
	}
	return &ast.Call{ID: p.id(tok.Offset), Function: decls.Index, Args: []ast.Expr{left, index}}
}

func (p *Parser) parseListLiteral() ast.Expr {
	tok := p.curToken
	p.advance() // consume '['
	var elements []ast.Expr
	var optionals []int32
	for !p.curTokenIs(token.RBRACKET) {
		if p.curTokenIs(token.EOF) {
			p.errorf("unterminated list literal")
			return nil
		}
		if p.curTokenIs(token.QUESTION) {
			optionals = append(optionals, int32(len(elements)))
			p.advance()
		}
		elem := p.parseExpression(LOWEST)
		if elem == nil {
			return nil
		}
		elements = append(elements, elem)
		if p.curTokenIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if !p.expect(token.RBRACKET) {
		return nil
	}
	return &ast.List{ID: p.id(tok.Offset), Elements: elements, OptionalIndices: optionals}
}

func (p *Parser) parseMapLiteral() ast.Expr {
	tok := p.curToken
	p.advance() // consume '{'
	entries, ok := p.parseMapEntries()
	if !ok {
		return nil
	}
	return &ast.Struct{ID: p.id(tok.Offset), Entries: entries}
}

func (p *Parser) parseMapEntries() ([]*ast.StructEntry, bool) {
	var entries []*ast.StructEntry
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorf("unterminated map literal")
			return nil, false
		}
		optional := false
		if p.curTokenIs(token.QUESTION) {
			optional = true
			p.advance()
		}
		keyTok := p.curToken
		key := p.parseExpression(LOWEST)
		if key == nil {
			return nil, false
		}
		if !p.expect(token.COLON) {
			return nil, false
		}
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil, false
		}
		entries = append(entries, &ast.StructEntry{
			ID:       p.id(keyTok.Offset),
			MapKey:   key,
			Value:    value,
			Optional: optional,
		})
		if p.curTokenIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if !p.expect(token.RBRACE) {
		return nil, false
	}
	return entries, true
}

// parseStructCtor handles `Name{f: v}` where the left operand is a dotted
// name chain.
func (p *Parser) parseStructCtor(left ast.Expr) ast.Expr {
	typeName, ok := memberName(left)
	if !ok {
		// `{` after a non-name operand terminates the expression; the outer
		// context will report any stray tokens.
		return nil
	}
	tok := p.curToken
	p.advance() // consume '{'
	var entries []*ast.StructEntry
	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorf("unterminated message construction")
			return nil
		}
		optional := false
		if p.curTokenIs(token.QUESTION) {
			optional = true
			p.advance()
		}
		if !p.curTokenIs(token.IDENT) {
			p.errorf("expected field name, found %q", p.curToken.Lexeme)
			return nil
		}
		fieldTok := p.curToken
		p.advance()
		if !p.expect(token.COLON) {
			return nil
		}
		value := p.parseExpression(LOWEST)
		if value == nil {
			return nil
		}
		entries = append(entries, &ast.StructEntry{
			ID:        p.id(fieldTok.Offset),
			FieldName: fieldTok.Lexeme,
			Value:     value,
			Optional:  optional,
		})
		if p.curTokenIs(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if !p.expect(token.RBRACE) {
		return nil
	}
	return &ast.Struct{ID: p.id(tok.Offset), TypeName: typeName, Entries: entries}
}

func (p *Parser) expandMacro(m *decls.Macro, target ast.Expr, args []ast.Expr) ast.Expr {
	expanded, err := m.Expander(p, target, args)
	if err != nil {
		p.errors = append(p.errors, err)
		return nil
	}
	return expanded
}
