// Package polex is the public embedding surface of the policy-expression
// runtime: environments hold declarations, Compile produces a typed AST,
// and Program evaluates it against activations, including partial
// activations that track unknown attributes.
package polex

import (
	"github.com/funvibe/polex/internal/evaluator"
	"github.com/funvibe/polex/internal/types"
)

// Value is a runtime value produced by evaluation.
type Value = evaluator.Object

// Type is a checker type.
type Type = types.Type

// Predeclared simple types for variable and function declarations.
var (
	BoolType      = types.BoolType
	IntType       = types.IntType
	UintType      = types.UintType
	DoubleType    = types.DoubleType
	StringType    = types.StringType
	BytesType     = types.BytesType
	NullType      = types.NullType
	DynType       = types.DynType
	DurationType  = types.DurationType
	TimestampType = types.TimestampType
)

// Compound type constructors.
func ListType(elem Type) Type          { return types.NewListType(elem) }
func MapType(key, value Type) Type     { return types.NewMapType(key, value) }
func OptionalType(elem Type) Type      { return types.NewOptionalType(elem) }
func TypeParam(name string) Type       { return types.NewTypeParamType(name) }
func ObjectType(name string) Type      { return types.NewStructType(name) }
func OpaqueType(name string, params ...Type) Type {
	return types.NewOpaqueType(name, params...)
}

// Activation resolves variables for one evaluation.
type Activation = evaluator.Activation

// AttributePattern describes attributes a partial activation has not
// resolved yet; wildcards match any qualifier at their position.
type AttributePattern = evaluator.AttributePattern

// NewAttributePattern starts a pattern at a root variable.
func NewAttributePattern(variable string) *AttributePattern {
	return evaluator.NewAttributePattern(variable)
}

// ParseAttributePattern builds a pattern from a dotted path such as
// "request.auth.*".
func ParseAttributePattern(path string) (*AttributePattern, error) {
	return evaluator.ParseAttributePattern(path)
}

// Bindings is the plain-map activation form; values may be Go natives or
// runtime values.
type Bindings = map[string]interface{}

// NewActivation converts bindings into an activation.
func NewActivation(bindings Bindings) (Activation, error) {
	return evaluator.NewActivation(bindings)
}

// PartialBindings builds an activation whose listed attribute patterns
// evaluate as unknowns instead of failing.
func PartialBindings(bindings Bindings, patterns ...*AttributePattern) (Activation, error) {
	base, err := evaluator.NewActivation(bindings)
	if err != nil {
		return nil, err
	}
	return evaluator.NewPartialActivation(base, patterns...), nil
}

// IsUnknown reports whether a result is an unknown-attribute set.
func IsUnknown(v Value) bool {
	_, ok := v.(*evaluator.Unknown)
	return ok
}

// UnknownAttributes lists the attribute paths an unknown result depends on.
func UnknownAttributes(v Value) []string {
	u, ok := v.(*evaluator.Unknown)
	if !ok {
		return nil
	}
	out := make([]string, len(u.Attrs))
	for i, a := range u.Attrs {
		out[i] = a.String()
	}
	return out
}
