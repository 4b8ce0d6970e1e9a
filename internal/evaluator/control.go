package evaluator

import (
	"github.com/funvibe/polex/internal/ast"
	"github.com/funvibe/polex/internal/diagnostics"
)

// evalComprehension folds the iteration range into the accumulator. Budget
// accounting charges one tick per element, plus one per element of any
// nested comprehension so pathological nesting cannot stay cheap.
//
// Unknown and error step outcomes are recorded and the fold continues, so
// a later absorbing element (false for all-style folds, true for
// exists-style) still wins, matching the commutative three-valued tables.
// A loop-condition exit means the accumulator reached an absorbing value
// and the recorded outcomes are dropped; when the range is exhausted the
// recorded unknown wins over the recorded error, which wins over the
// accumulator.
func (e *Evaluator) evalComprehension(n *ast.Comprehension, s *evalState) Object {
	rangeVal := e.eval(n.IterRange, s)
	if isError(rangeVal) || isUnknown(rangeVal) {
		return rangeVal
	}

	var keys []Object
	switch r := rangeVal.(type) {
	case *List:
		keys = r.Elements
	case *Map:
		keys = r.Keys()
	default:
		return newError(diagnostics.InvalidArgument,
			"expected a list or a map, got %s", rangeVal.Type())
	}

	accu := e.eval(n.AccuInit, s)
	if isError(accu) {
		return accu
	}

	accuFrame := &varActivation{parent: s.vars, name: n.AccuVar, val: accu}
	iterFrame := &varActivation{parent: accuFrame, name: n.IterVar}
	outer := s.vars
	s.vars = iterFrame
	s.loopDepth++
	defer func() {
		s.loopDepth--
		s.vars = outer
	}()

	var pendingUnknown *Unknown
	var pendingErr *Error

	for _, key := range keys {
		if s.limited {
			cost := int64(1)
			if s.loopDepth > 1 {
				cost = 2
			}
			s.remaining -= cost
			if s.remaining < 0 {
				return newError(diagnostics.IterationBudgetExceeded,
					"iteration budget exceeded")
			}
		}
		iterFrame.val = key

		cond := e.eval(n.LoopCond, s)
		switch c := cond.(type) {
		case *Boolean:
			if !c.Value {
				// The condition exit means the accumulator reached an
				// absorbing value; skipped contributions are absorbed too.
				return e.eval(n.Result, s)
			}
		case *Unknown:
			pendingUnknown = MergeUnknowns(pendingUnknown, c)
			continue
		case *Error:
			return c
		default:
			return newError(diagnostics.NoMatchingOverload,
				"comprehension condition must be bool, got %s", cond.Type())
		}

		step := e.eval(n.LoopStep, s)
		switch v := step.(type) {
		case *Error:
			if pendingErr == nil {
				pendingErr = v
			}
		case *Unknown:
			pendingUnknown = MergeUnknowns(pendingUnknown, v)
		default:
			accuFrame.val = v
		}
	}

	if pendingUnknown != nil || pendingErr != nil {
		// Probe the condition once more: a false exit signal means the
		// accumulator reached an absorbing value on the final element and
		// the skipped contributions are absorbed with it.
		exit := e.eval(n.LoopCond, s)
		if b, ok := exit.(*Boolean); !ok || b.Value {
			if pendingUnknown != nil {
				accuFrame.val = pendingUnknown
			} else {
				accuFrame.val = pendingErr
			}
		}
	}
	return e.eval(n.Result, s)
}
