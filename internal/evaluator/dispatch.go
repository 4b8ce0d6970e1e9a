package evaluator

import (
	"github.com/funvibe/polex/internal/diagnostics"
)

// Overload is one runtime implementation of a function signature,
// registered under the same id the checker resolves.
type Overload struct {
	ID string

	// Guard reports whether the runtime argument tuple fits this overload.
	// A nil guard accepts any tuple of the right arity.
	Guard func(args []Object) bool

	// Arity of -1 accepts any argument count.
	Arity int

	// NonStrict implementations receive error and unknown arguments
	// unmerged.
	NonStrict bool

	Function func(args []Object) Object
}

// Dispatcher maps function names and overload ids to implementations. It is
// immutable once the program is built.
type Dispatcher struct {
	byID   map[string]*Overload
	byName map[string][]*Overload
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		byID:   make(map[string]*Overload),
		byName: make(map[string][]*Overload),
	}
}

// Add registers overloads under a function name. Later registrations of an
// existing id replace the implementation, which lets extensions and hosts
// override standard behavior deliberately.
func (d *Dispatcher) Add(function string, overloads ...*Overload) {
	for _, o := range overloads {
		if existing, ok := d.byID[o.ID]; ok {
			*existing = *o
			continue
		}
		d.byID[o.ID] = o
		d.byName[function] = append(d.byName[function], o)
	}
}

// FindByID resolves an overload id.
func (d *Dispatcher) FindByID(id string) (*Overload, bool) {
	o, ok := d.byID[id]
	return o, ok
}

// FindByName lists a function's overloads in registration order.
func (d *Dispatcher) FindByName(function string) []*Overload {
	return d.byName[function]
}

// Copy derives a dispatcher that can be extended without affecting the
// original.
func (d *Dispatcher) Copy() *Dispatcher {
	c := NewDispatcher()
	for name, overloads := range d.byName {
		for _, o := range overloads {
			dup := *o
			c.byID[dup.ID] = &dup
			c.byName[name] = append(c.byName[name], &dup)
		}
	}
	return c
}

// dispatch tries candidate overload ids in ranking order, falling back to
// the full overload list of the function name for unchecked programs.
func (d *Dispatcher) dispatch(function string, candidateIDs []string, args []Object) Object {
	for _, id := range candidateIDs {
		if o, ok := d.byID[id]; ok && o.accepts(args) {
			return o.Function(args)
		}
	}
	if len(candidateIDs) == 0 {
		for _, o := range d.byName[function] {
			if o.accepts(args) {
				return o.Function(args)
			}
		}
	}
	return noSuchOverload(function, args)
}

func (o *Overload) accepts(args []Object) bool {
	if o.Arity >= 0 && len(args) != o.Arity {
		return false
	}
	return o.Guard == nil || o.Guard(args)
}

func noSuchOverload(function string, args []Object) *Error {
	typeNames := make([]string, len(args))
	for i, a := range args {
		typeNames[i] = string(a.Type())
	}
	return newError(diagnostics.NoMatchingOverload,
		"no matching overload for '%s' applied to (%s)", function, joinStrings(typeNames, ", "))
}

func joinStrings(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

// guardTypes builds a guard requiring exact object tags per position.
func guardTypes(tags ...ObjectType) func(args []Object) bool {
	return func(args []Object) bool {
		if len(args) != len(tags) {
			return false
		}
		for i, tag := range tags {
			if args[i].Type() != tag {
				return false
			}
		}
		return true
	}
}
