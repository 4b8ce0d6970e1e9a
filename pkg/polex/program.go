package polex

import (
	"fmt"

	"github.com/funvibe/polex/internal/evaluator"
)

// Program is an evaluable expression. Programs are immutable and safe for
// concurrent Eval calls with distinct activations.
type Program struct {
	eval *evaluator.Evaluator
}

// ProgramOption configures evaluation behavior.
type ProgramOption func(*programConfig)

type programConfig struct {
	iterationBudget int64
}

// IterationBudget bounds comprehension iterations per evaluation; zero or
// negative leaves evaluation unbounded.
func IterationBudget(budget int64) ProgramOption {
	return func(c *programConfig) { c.iterationBudget = budget }
}

// Program plans an AST for evaluation.
func (e *Env) Program(a *Ast, opts ...ProgramOption) (*Program, error) {
	if a == nil {
		return nil, fmt.Errorf("program requires a non-nil ast")
	}
	cfg := &programConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	evalOpts := []evaluator.Option{
		evaluator.IterationBudget(cfg.iterationBudget),
		evaluator.HeterogeneousComparisons(e.heterogeneousComparisons),
	}
	var ev *evaluator.Evaluator
	if a.checked != nil {
		ev = evaluator.New(a.checked, e.dispatcher, e.provider, evalOpts...)
	} else {
		ev = evaluator.NewUnchecked(a.parsed, e.dispatcher, e.provider, evalOpts...)
	}
	return &Program{eval: ev}, nil
}

// Eval evaluates the program. The activation argument may be an Activation,
// a Bindings map, or nil for an empty activation.
//
// Evaluation failures surface both ways: the returned Value is the error
// object (carrying its kind), and err is non-nil with the rendered message.
// Unknown results return with a nil error; callers probe them with
// IsUnknown and UnknownAttributes.
func (p *Program) Eval(vars interface{}) (Value, error) {
	var act Activation
	switch v := vars.(type) {
	case nil:
		act = evaluator.EmptyActivation()
	case Activation:
		act = v
	case Bindings:
		built, err := evaluator.NewActivation(v)
		if err != nil {
			return nil, err
		}
		act = built
	default:
		return nil, fmt.Errorf("unsupported activation type: %T", vars)
	}
	out := p.eval.Eval(act)
	if errObj, ok := out.(*evaluator.Error); ok {
		return out, fmt.Errorf("%s: %s", errObj.Kind, errObj.Message)
	}
	return out, nil
}
