package evaluator

// Activation resolves variable names for one evaluation. An activation is
// used by a single evaluation at a time and need not be thread-safe.
type Activation interface {
	ResolveName(name string) (Object, bool)
	Parent() Activation
}

type emptyActivation struct{}

func (emptyActivation) ResolveName(string) (Object, bool) { return nil, false }
func (emptyActivation) Parent() Activation                { return nil }

// EmptyActivation binds nothing.
func EmptyActivation() Activation { return emptyActivation{} }

type mapActivation struct {
	bindings map[string]Object
}

// NewActivation wraps a binding map. Values may be Objects or plain Go
// values, which convert when the activation is built; a value that cannot
// convert fails the construction.
func NewActivation(bindings map[string]interface{}) (Activation, error) {
	resolved := make(map[string]Object, len(bindings))
	for name, v := range bindings {
		obj, err := NativeToObject(v)
		if err != nil {
			return nil, err
		}
		resolved[name] = obj
	}
	return &mapActivation{bindings: resolved}, nil
}

func (a *mapActivation) ResolveName(name string) (Object, bool) {
	obj, ok := a.bindings[name]
	return obj, ok
}

func (a *mapActivation) Parent() Activation { return nil }

type hierarchicalActivation struct {
	parent Activation
	child  Activation
}

// NewHierarchicalActivation layers child bindings over a parent. The child
// wins on name collisions.
func NewHierarchicalActivation(parent, child Activation) Activation {
	return &hierarchicalActivation{parent: parent, child: child}
}

func (a *hierarchicalActivation) ResolveName(name string) (Object, bool) {
	if obj, ok := a.child.ResolveName(name); ok {
		return obj, true
	}
	return a.parent.ResolveName(name)
}

func (a *hierarchicalActivation) Parent() Activation { return a.parent }

// PartialActivation additionally declares attribute patterns whose reads
// should produce unknown values instead of failing.
type PartialActivation interface {
	Activation
	UnknownAttributePatterns() []*AttributePattern
}

type partialActivation struct {
	Activation
	patterns []*AttributePattern
}

// NewPartialActivation decorates an activation with unknown patterns.
func NewPartialActivation(base Activation, patterns ...*AttributePattern) PartialActivation {
	return &partialActivation{Activation: base, patterns: patterns}
}

func (a *partialActivation) UnknownAttributePatterns() []*AttributePattern {
	return a.patterns
}

// findPartial locates the nearest partial activation in the chain.
func findPartial(act Activation) (PartialActivation, bool) {
	for a := act; a != nil; a = a.Parent() {
		if pa, ok := a.(PartialActivation); ok {
			return pa, true
		}
	}
	return nil, false
}

// varActivation binds one mutable slot over a parent. The evaluator reuses
// these frames for comprehension iteration and accumulation variables.
type varActivation struct {
	parent Activation
	name   string
	val    Object
}

func (a *varActivation) ResolveName(name string) (Object, bool) {
	if name == a.name {
		return a.val, true
	}
	return a.parent.ResolveName(name)
}

func (a *varActivation) Parent() Activation { return a.parent }
