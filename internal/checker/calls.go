package checker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/funvibe/polex/internal/ast"
	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/diagnostics"
	"github.com/funvibe/polex/internal/types"
)

func (c *checker) checkCall(n *ast.Call) types.Type {
	// A receiver call on a name chain may spell a namespaced global
	// function, e.g. math.abs(x). The qualified name wins when declared.
	if n.Target != nil {
		if qualified, ok := memberName(n.Target); ok {
			fullName := qualified + "." + n.Function
			for _, candidate := range c.env.Container.ResolveCandidateNames(fullName) {
				if fn, found := c.scope.FindFunction(candidate); found {
					argTypes := c.checkArgs(n.Args)
					return c.resolveOverload(n, fn, candidate, nil, argTypes)
				}
			}
		}
		targetType := c.check(n.Target)
		argTypes := c.checkArgs(n.Args)
		fn, found := c.scope.FindFunction(n.Function)
		if !found {
			c.errorf(n, diagnostics.UndeclaredReference,
				"undeclared reference to function '%s'", n.Function)
			return types.ErrorType
		}
		return c.resolveOverload(n, fn, n.Function, targetType, argTypes)
	}

	var fn *decls.FunctionDecl
	var resolvedName string
	for _, candidate := range c.env.Container.ResolveCandidateNames(n.Function) {
		if f, found := c.scope.FindFunction(candidate); found {
			fn = f
			resolvedName = candidate
			break
		}
	}
	argTypes := c.checkArgs(n.Args)
	if fn == nil {
		c.errorf(n, diagnostics.UndeclaredReference,
			"undeclared reference to function '%s' (in container '%s')",
			n.Function, c.env.Container.Name)
		return types.ErrorType
	}
	return c.resolveOverload(n, fn, resolvedName, nil, argTypes)
}

func (c *checker) checkArgs(args []ast.Expr) []types.Type {
	argTypes := make([]types.Type, len(args))
	for i, arg := range args {
		argTypes[i] = c.check(arg)
	}
	return argTypes
}

type candidate struct {
	overload *decls.OverloadDecl
	index    int
	mapping  *types.Mapping
	result   types.Type

	// Ranking flags: candidates unifying without dyn involvement beat
	// demoted ones, concrete results beat parametric ones. Remaining ties
	// break on declaration order.
	demoted    bool
	parametric bool
}

// resolveOverload unifies the call's argument types against each declared
// overload and annotates the winner. targetType is non-nil for receiver
// calls that did not resolve to a namespaced global function.
func (c *checker) resolveOverload(n *ast.Call, fn *decls.FunctionDecl, fnName string,
	targetType types.Type, argTypes []types.Type) types.Type {

	isInstance := targetType != nil
	if isInstance {
		argTypes = append([]types.Type{targetType}, argTypes...)
	}

	var candidates []*candidate
	for i, o := range fn.Overloads {
		if o.IsInstance != isInstance || len(o.Args) != len(argTypes) {
			continue
		}
		formals, rawResult := c.instantiate(o)
		attempt := c.mapping.Copy()
		demotedBefore := attempt.Demoted()
		if !types.IsAssignableList(attempt, formals, argTypes) {
			continue
		}
		result := types.Substitute(attempt, rawResult, false)
		candidates = append(candidates, &candidate{
			overload:   o,
			index:      i,
			mapping:    attempt,
			result:     result,
			demoted:    attempt.Demoted() && !demotedBefore,
			parametric: types.HasTypeParams(result),
		})
	}

	if len(candidates) == 0 {
		c.errorf(n, diagnostics.NoMatchingOverload,
			"found no matching overload for '%s' applied to (%s)",
			fnName, typeList(argTypes))
		return types.ErrorType
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		ca, cb := candidates[a], candidates[b]
		if ca.demoted != cb.demoted {
			return !ca.demoted
		}
		if ca.parametric != cb.parametric {
			return !ca.parametric
		}
		return ca.index < cb.index
	})

	winner := candidates[0]
	c.mapping = winner.mapping
	ids := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		ids = append(ids, cand.overload.ID)
	}
	c.refMap[n.ID] = &ast.ReferenceInfo{Name: fnName, OverloadIDs: ids}
	return winner.result
}

// instantiate renames an overload's type parameters to checker-unique names
// so bindings from unrelated call sites never collide, and returns the
// renamed formal parameter and result types.
func (c *checker) instantiate(o *decls.OverloadDecl) ([]types.Type, types.Type) {
	sub := types.NewMapping()
	for _, p := range o.TypeParams {
		c.freeTypeVar++
		sub.Add(p, types.NewTypeParamType(fmt.Sprintf("_var%d", c.freeTypeVar)))
	}
	formals := make([]types.Type, len(o.Args))
	for i, a := range o.Args {
		formals[i] = types.Substitute(sub, a, false)
	}
	return formals, types.Substitute(sub, o.Result, false)
}

func typeList(ts []types.Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
