package evaluator

import (
	"github.com/funvibe/polex/internal/ast"
	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/diagnostics"
)

func (e *Evaluator) evalCall(n *ast.Call, s *evalState) Object {
	switch n.Function {
	case decls.LogicalAnd:
		return e.evalLogicalAnd(n, s)
	case decls.LogicalOr:
		return e.evalLogicalOr(n, s)
	case decls.Conditional:
		return e.evalConditional(n, s)
	}

	ref := e.refMap[n.ID]
	function := n.Function
	var candidateIDs []string
	if ref != nil {
		candidateIDs = ref.OverloadIDs
		if ref.Name != "" {
			function = ref.Name
		}
	}

	// Receiver-style calls evaluate the target first, unless the checker
	// rebound the call to a namespaced global function.
	args := make([]Object, 0, len(n.Args)+1)
	if n.Target != nil && (ref == nil || ref.Name == n.Function) {
		args = append(args, e.eval(n.Target, s))
	}
	for _, arg := range n.Args {
		args = append(args, e.eval(arg, s))
	}

	// Index reads refine the attribute trail for unknown tracking.
	if n.Function == decls.Index && len(args) == 2 {
		if out, handled := e.indexUnknown(n, args, s); handled {
			return out
		}
	}

	// The merged-argument policy: the first error wins for strict
	// functions, otherwise unknown arguments union.
	nonStrict := e.allNonStrict(candidateIDs, function)
	if !nonStrict {
		var unknown *Unknown
		for _, a := range args {
			if isError(a) {
				return a
			}
			if u, ok := a.(*Unknown); ok {
				unknown = MergeUnknowns(unknown, u)
			}
		}
		if unknown != nil {
			return unknown
		}
	}

	result := e.dispatcher.dispatch(function, candidateIDs, args)
	if err, ok := result.(*Error); ok && err.ExprID == 0 {
		err.ExprID = n.ID
	}
	return result
}

// allNonStrict reports whether every dispatchable candidate is non-strict.
// Mixed sets stay strict; the merge policy runs before dispatch.
func (e *Evaluator) allNonStrict(candidateIDs []string, function string) bool {
	found := false
	for _, id := range candidateIDs {
		if o, ok := e.dispatcher.FindByID(id); ok {
			if !o.NonStrict {
				return false
			}
			found = true
		}
	}
	if found {
		return true
	}
	overloads := e.dispatcher.FindByName(function)
	if len(overloads) == 0 {
		return false
	}
	for _, o := range overloads {
		if !o.NonStrict {
			return false
		}
	}
	return true
}

// indexUnknown probes the pattern set for container[index] reads. It
// reports handled=true when the read resolves to an unknown, or when the
// operand's unknown trail extends through the index.
func (e *Evaluator) indexUnknown(n *ast.Call, args []Object, s *evalState) (Object, bool) {
	if isError(args[1]) {
		// The merged-argument policy decides; errors outrank unknowns in
		// strict dispatch.
		return nil, false
	}
	if u, ok := args[0].(*Unknown); ok {
		if len(u.Attrs) == 1 && len(u.ExprIDs) <= 1 {
			if q, supported := QualifierOf(args[1]); supported {
				return NewUnknown(n.ID, u.Attrs[0].Extend(q)), true
			}
		}
		return u, true
	}
	if !s.partial {
		return nil, false
	}
	trail, ok := e.attrTrail(n.Args[0])
	if !ok {
		return nil, false
	}
	q, supported := QualifierOf(args[1])
	if !supported {
		// Unsupported key types stop the refinement; the coarser prefix
		// was already probed when the operand evaluated.
		return nil, false
	}
	full := trail.Extend(q)
	if matchesPatterns(s.patterns, full) {
		return NewUnknown(n.ID, full), true
	}
	if potentiallyMatchesPatterns(s.patterns, full) {
		// Qualify concretely, but let a read failure resolve to unknown.
		result := e.dispatcher.dispatch(decls.Index, e.candidateIDs(n), args)
		if isError(result) {
			return NewUnknown(n.ID, full), true
		}
		return result, true
	}
	return nil, false
}

func (e *Evaluator) candidateIDs(n *ast.Call) []string {
	if ref, ok := e.refMap[n.ID]; ok {
		return ref.OverloadIDs
	}
	return nil
}

// evalLogicalAnd implements the commutative three-valued conjunction:
// false absorbs everything, unknowns beat errors, errors beat true.
func (e *Evaluator) evalLogicalAnd(n *ast.Call, s *evalState) Object {
	left := e.eval(n.Args[0], s)
	if left == FALSE || (isBool(left) && !left.(*Boolean).Value) {
		return FALSE
	}
	right := e.eval(n.Args[1], s)
	return mergeLogical(left, right, false)
}

func (e *Evaluator) evalLogicalOr(n *ast.Call, s *evalState) Object {
	left := e.eval(n.Args[0], s)
	if left == TRUE || (isBool(left) && left.(*Boolean).Value) {
		return TRUE
	}
	right := e.eval(n.Args[1], s)
	return mergeLogical(left, right, true)
}

func isBool(obj Object) bool { return obj != nil && obj.Type() == BOOLEAN_OBJ }

// mergeLogical merges two operand values per the truth table. absorb is the
// operator's absorbing element (false for &&, true for ||).
func mergeLogical(left, right Object, absorb bool) Object {
	if b, ok := left.(*Boolean); ok && b.Value == absorb {
		return nativeBoolToBooleanObject(absorb)
	}
	if b, ok := right.(*Boolean); ok && b.Value == absorb {
		return nativeBoolToBooleanObject(absorb)
	}
	lu, leftUnknown := left.(*Unknown)
	ru, rightUnknown := right.(*Unknown)
	if leftUnknown && rightUnknown {
		return MergeUnknowns(lu, ru)
	}
	if leftUnknown {
		return lu
	}
	if rightUnknown {
		return ru
	}
	if isError(left) {
		return left
	}
	if isError(right) {
		return right
	}
	lb, lok := left.(*Boolean)
	rb, rok := right.(*Boolean)
	if !lok {
		return noSuchOverload(logicalName(absorb), []Object{left, right})
	}
	if !rok {
		return noSuchOverload(logicalName(absorb), []Object{left, right})
	}
	if absorb {
		return nativeBoolToBooleanObject(lb.Value || rb.Value)
	}
	return nativeBoolToBooleanObject(lb.Value && rb.Value)
}

func logicalName(absorb bool) string {
	if absorb {
		return decls.LogicalOr
	}
	return decls.LogicalAnd
}

// evalConditional evaluates only the branch the condition selects. An
// unknown or error condition is the result; neither branch runs.
func (e *Evaluator) evalConditional(n *ast.Call, s *evalState) Object {
	cond := e.eval(n.Args[0], s)
	switch c := cond.(type) {
	case *Boolean:
		if c.Value {
			return e.eval(n.Args[1], s)
		}
		return e.eval(n.Args[2], s)
	case *Unknown, *Error:
		return cond
	default:
		return newError(diagnostics.NoMatchingOverload,
			"conditional requires a bool condition, got %s", cond.Type())
	}
}
