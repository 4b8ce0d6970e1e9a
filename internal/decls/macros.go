package decls

import (
	"fmt"

	"github.com/funvibe/polex/internal/ast"
	"github.com/funvibe/polex/internal/config"
	"github.com/funvibe/polex/internal/diagnostics"
)

// ExprHelper is the node factory handed to macro expanders. It allocates
// node IDs from the same monotonic space as the parser.
type ExprHelper interface {
	NewLiteral(c ast.Constant) ast.Expr
	NewIdent(name string) ast.Expr
	NewSelect(operand ast.Expr, field string) ast.Expr
	NewPresenceTest(operand ast.Expr, field string) ast.Expr
	NewCall(function string, args ...ast.Expr) ast.Expr
	NewMemberCall(function string, target ast.Expr, args ...ast.Expr) ast.Expr
	NewList(elements ...ast.Expr) ast.Expr
	NewComprehension(iterVar string, iterRange ast.Expr, accuVar string,
		accuInit, loopCond, loopStep, result ast.Expr) ast.Expr
	NewError(node ast.Expr, format string, args ...interface{}) *diagnostics.DiagnosticError
}

// MacroExpander rewrites a call form into its expansion, or reports why it
// cannot.
type MacroExpander func(h ExprHelper, target ast.Expr, args []ast.Expr) (ast.Expr, *diagnostics.DiagnosticError)

// Macro declares a parse-time expansion. Macros never appear as calls in the
// parsed AST.
type Macro struct {
	Name          string
	ReceiverStyle bool
	ArgCount      int
	VarArg        bool
	Expander      MacroExpander
}

// Key returns the lookup key for a call shape.
func (m *Macro) Key() string {
	if m.VarArg {
		return MacroKey(m.Name, -1, m.ReceiverStyle)
	}
	return MacroKey(m.Name, m.ArgCount, m.ReceiverStyle)
}

// MacroKey builds the call-shape key: name, arity (-1 for variadic) and call
// style.
func MacroKey(name string, args int, receiverStyle bool) string {
	style := "global"
	if receiverStyle {
		style = "receiver"
	}
	return fmt.Sprintf("%s:%d:%s", name, args, style)
}

// StandardMacros is the source-level macro set: has, all, exists,
// exists_one, map (two forms) and filter.
var StandardMacros = []*Macro{
	{Name: "has", ArgCount: 1, Expander: expandHas},
	{Name: "all", ReceiverStyle: true, ArgCount: 2, Expander: expandAll},
	{Name: "exists", ReceiverStyle: true, ArgCount: 2, Expander: expandExists},
	{Name: "exists_one", ReceiverStyle: true, ArgCount: 2, Expander: expandExistsOne},
	{Name: "map", ReceiverStyle: true, ArgCount: 2, Expander: expandMap},
	{Name: "map", ReceiverStyle: true, ArgCount: 3, Expander: expandMap},
	{Name: "filter", ReceiverStyle: true, ArgCount: 2, Expander: expandFilter},
}

func expandHas(h ExprHelper, _ ast.Expr, args []ast.Expr) (ast.Expr, *diagnostics.DiagnosticError) {
	sel, ok := args[0].(*ast.Select)
	if !ok {
		return nil, h.NewError(args[0], "invalid argument to has() macro")
	}
	return h.NewPresenceTest(sel.Operand, sel.Field), nil
}

func extractIterVar(h ExprHelper, arg ast.Expr) (string, *diagnostics.DiagnosticError) {
	ident, ok := arg.(*ast.Ident)
	if !ok {
		return "", h.NewError(arg, "argument must be a simple name")
	}
	if ident.Name == config.AccumulatorName {
		return "", h.NewError(arg, "iteration variable overwrites accumulator variable")
	}
	return ident.Name, nil
}

func expandAll(h ExprHelper, target ast.Expr, args []ast.Expr) (ast.Expr, *diagnostics.DiagnosticError) {
	v, err := extractIterVar(h, args[0])
	if err != nil {
		return nil, err
	}
	accu := config.AccumulatorName
	return h.NewComprehension(
		v, target, accu,
		h.NewLiteral(ast.Constant{Kind: ast.BoolConst, Bool: true}),
		h.NewIdent(accu),
		h.NewCall(LogicalAnd, h.NewIdent(accu), args[1]),
		h.NewIdent(accu),
	), nil
}

func expandExists(h ExprHelper, target ast.Expr, args []ast.Expr) (ast.Expr, *diagnostics.DiagnosticError) {
	v, err := extractIterVar(h, args[0])
	if err != nil {
		return nil, err
	}
	accu := config.AccumulatorName
	return h.NewComprehension(
		v, target, accu,
		h.NewLiteral(ast.Constant{Kind: ast.BoolConst, Bool: false}),
		h.NewCall(LogicalNot, h.NewIdent(accu)),
		h.NewCall(LogicalOr, h.NewIdent(accu), args[1]),
		h.NewIdent(accu),
	), nil
}

func expandExistsOne(h ExprHelper, target ast.Expr, args []ast.Expr) (ast.Expr, *diagnostics.DiagnosticError) {
	v, err := extractIterVar(h, args[0])
	if err != nil {
		return nil, err
	}
	accu := config.AccumulatorName
	zero := h.NewLiteral(ast.Constant{Kind: ast.IntConst, Int: 0})
	one := h.NewLiteral(ast.Constant{Kind: ast.IntConst, Int: 1})
	return h.NewComprehension(
		v, target, accu,
		zero,
		h.NewLiteral(ast.Constant{Kind: ast.BoolConst, Bool: true}),
		h.NewCall(Conditional, args[1],
			h.NewCall(Add, h.NewIdent(accu), one),
			h.NewIdent(accu)),
		h.NewCall(Equals, h.NewIdent(accu),
			h.NewLiteral(ast.Constant{Kind: ast.IntConst, Int: 1})),
	), nil
}

func expandMap(h ExprHelper, target ast.Expr, args []ast.Expr) (ast.Expr, *diagnostics.DiagnosticError) {
	v, err := extractIterVar(h, args[0])
	if err != nil {
		return nil, err
	}
	accu := config.AccumulatorName
	var filter, transform ast.Expr
	if len(args) == 3 {
		filter = args[1]
		transform = args[2]
	} else {
		transform = args[1]
	}
	step := ast.Expr(h.NewCall(Add, h.NewIdent(accu), h.NewList(transform)))
	if filter != nil {
		step = h.NewCall(Conditional, filter, step, h.NewIdent(accu))
	}
	return h.NewComprehension(
		v, target, accu,
		h.NewList(),
		h.NewLiteral(ast.Constant{Kind: ast.BoolConst, Bool: true}),
		step,
		h.NewIdent(accu),
	), nil
}

func expandFilter(h ExprHelper, target ast.Expr, args []ast.Expr) (ast.Expr, *diagnostics.DiagnosticError) {
	v, err := extractIterVar(h, args[0])
	if err != nil {
		return nil, err
	}
	accu := config.AccumulatorName
	step := h.NewCall(Conditional, args[1],
		h.NewCall(Add, h.NewIdent(accu), h.NewList(args[0])),
		h.NewIdent(accu))
	return h.NewComprehension(
		v, target, accu,
		h.NewList(),
		h.NewLiteral(ast.Constant{Kind: ast.BoolConst, Bool: true}),
		step,
		h.NewIdent(accu),
	), nil
}
