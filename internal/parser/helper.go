package parser

import (
	"github.com/funvibe/polex/internal/ast"
	"github.com/funvibe/polex/internal/diagnostics"
)

// The parser is the ExprHelper handed to macro expanders: expansion nodes
// draw IDs from the same monotonic space as parsed nodes.

func (p *Parser) NewLiteral(c ast.Constant) ast.Expr {
	return &ast.Literal{ID: p.helperID(), Value: c}
}

func (p *Parser) NewIdent(name string) ast.Expr {
	return &ast.Ident{ID: p.helperID(), Name: name}
}

func (p *Parser) NewSelect(operand ast.Expr, field string) ast.Expr {
	return &ast.Select{ID: p.helperID(), Operand: operand, Field: field}
}

func (p *Parser) NewPresenceTest(operand ast.Expr, field string) ast.Expr {
	return &ast.Select{ID: p.helperID(), Operand: operand, Field: field, TestOnly: true}
}

func (p *Parser) NewCall(function string, args ...ast.Expr) ast.Expr {
	return &ast.Call{ID: p.helperID(), Function: function, Args: args}
}

func (p *Parser) NewMemberCall(function string, target ast.Expr, args ...ast.Expr) ast.Expr {
	return &ast.Call{ID: p.helperID(), Target: target, Function: function, Args: args}
}

func (p *Parser) NewList(elements ...ast.Expr) ast.Expr {
	return &ast.List{ID: p.helperID(), Elements: elements}
}

func (p *Parser) NewComprehension(iterVar string, iterRange ast.Expr, accuVar string,
	accuInit, loopCond, loopStep, result ast.Expr) ast.Expr {
	return &ast.Comprehension{
		ID:        p.helperID(),
		IterVar:   iterVar,
		IterRange: iterRange,
		AccuVar:   accuVar,
		AccuInit:  accuInit,
		LoopCond:  loopCond,
		LoopStep:  loopStep,
		Result:    result,
	}
}

func (p *Parser) NewError(node ast.Expr, format string, args ...interface{}) *diagnostics.DiagnosticError {
	line, column := 0, 0
	if node != nil {
		line, column = p.sourceInfo.Location(node.ExprID())
	}
	if line == 0 {
		line, column = p.curToken.Line, p.curToken.Column
	}
	err := diagnostics.NewError(diagnostics.SyntaxError, line, column, format, args...)
	if node != nil {
		err.ExprID = node.ExprID()
	}
	return err
}

// helperID allocates a node ID anchored at the current token, which during
// macro expansion is the token following the call's closing parenthesis.
func (p *Parser) helperID() int64 {
	return p.id(p.curToken.Offset)
}
