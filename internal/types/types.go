// Package types implements the structural, parametric type model used by the
// checker: simple types, compound types, type parameters, nominal structs and
// enums, plus the substitution and assignability machinery that drives
// overload resolution.
package types

import (
	"fmt"
	"strings"
)

// Kind discriminates the type variants.
type Kind int

const (
	DynKind Kind = iota
	BoolKind
	IntKind
	UintKind
	DoubleKind
	StringKind
	BytesKind
	NullKind
	DurationKind
	TimestampKind
	ErrorKind
	ListKind
	MapKind
	OptionalKind
	WrapperKind
	OpaqueKind
	FunctionKind
	TypeParamKind
	StructKind
	EnumKind
	TypeKind
)

// Type is the closed interface over all type variants. Two types are equal
// iff their kind and all parameters are equal; parameter order is
// significant.
type Type interface {
	Kind() Kind
	String() string
	Equal(Type) bool
}

type simpleType struct {
	kind Kind
	name string
}

func (t *simpleType) Kind() Kind     { return t.kind }
func (t *simpleType) String() string { return t.name }
func (t *simpleType) Equal(other Type) bool {
	return other != nil && other.Kind() == t.kind
}

// Singleton simple types.
var (
	DynType       Type = &simpleType{DynKind, "dyn"}
	BoolType      Type = &simpleType{BoolKind, "bool"}
	IntType       Type = &simpleType{IntKind, "int"}
	UintType      Type = &simpleType{UintKind, "uint"}
	DoubleType    Type = &simpleType{DoubleKind, "double"}
	StringType    Type = &simpleType{StringKind, "string"}
	BytesType     Type = &simpleType{BytesKind, "bytes"}
	NullType      Type = &simpleType{NullKind, "null_type"}
	DurationType  Type = &simpleType{DurationKind, "google.protobuf.Duration"}
	TimestampType Type = &simpleType{TimestampKind, "google.protobuf.Timestamp"}
	ErrorType     Type = &simpleType{ErrorKind, "!error!"}
)

// ListType is list(Elem).
type ListType struct {
	Elem Type
}

func NewListType(elem Type) *ListType { return &ListType{Elem: elem} }

func (t *ListType) Kind() Kind     { return ListKind }
func (t *ListType) String() string { return fmt.Sprintf("list(%s)", t.Elem) }
func (t *ListType) Equal(other Type) bool {
	o, ok := other.(*ListType)
	return ok && t.Elem.Equal(o.Elem)
}

// MapType is map(Key, Value).
type MapType struct {
	Key   Type
	Value Type
}

func NewMapType(key, value Type) *MapType { return &MapType{Key: key, Value: value} }

func (t *MapType) Kind() Kind     { return MapKind }
func (t *MapType) String() string { return fmt.Sprintf("map(%s, %s)", t.Key, t.Value) }
func (t *MapType) Equal(other Type) bool {
	o, ok := other.(*MapType)
	return ok && t.Key.Equal(o.Key) && t.Value.Equal(o.Value)
}

// OptionalType is optional(Elem).
type OptionalType struct {
	Elem Type
}

func NewOptionalType(elem Type) *OptionalType { return &OptionalType{Elem: elem} }

func (t *OptionalType) Kind() Kind     { return OptionalKind }
func (t *OptionalType) String() string { return fmt.Sprintf("optional(%s)", t.Elem) }
func (t *OptionalType) Equal(other Type) bool {
	o, ok := other.(*OptionalType)
	return ok && t.Elem.Equal(o.Elem)
}

// WrapperType is the checker view of a well-known wrapper message: a scalar
// that additionally admits null.
type WrapperType struct {
	Elem Type
}

func NewWrapperType(elem Type) *WrapperType { return &WrapperType{Elem: elem} }

func (t *WrapperType) Kind() Kind     { return WrapperKind }
func (t *WrapperType) String() string { return fmt.Sprintf("wrapper(%s)", t.Elem) }
func (t *WrapperType) Equal(other Type) bool {
	o, ok := other.(*WrapperType)
	return ok && t.Elem.Equal(o.Elem)
}

// OpaqueType is a named type with ordered parameters whose structure is not
// visible to expressions.
type OpaqueType struct {
	Name   string
	Params []Type
}

func NewOpaqueType(name string, params ...Type) *OpaqueType {
	return &OpaqueType{Name: name, Params: params}
}

func (t *OpaqueType) Kind() Kind { return OpaqueKind }
func (t *OpaqueType) String() string {
	if len(t.Params) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("%s(%s)", t.Name, strings.Join(parts, ", "))
}
func (t *OpaqueType) Equal(other Type) bool {
	o, ok := other.(*OpaqueType)
	if !ok || o.Name != t.Name || len(o.Params) != len(t.Params) {
		return false
	}
	for i, p := range t.Params {
		if !p.Equal(o.Params[i]) {
			return false
		}
	}
	return true
}

// FunctionType is function(Result, Params...).
type FunctionType struct {
	Result Type
	Params []Type
}

func NewFunctionType(result Type, params ...Type) *FunctionType {
	return &FunctionType{Result: result, Params: params}
}

func (t *FunctionType) Kind() Kind { return FunctionKind }
func (t *FunctionType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), t.Result)
}
func (t *FunctionType) Equal(other Type) bool {
	o, ok := other.(*FunctionType)
	if !ok || !t.Result.Equal(o.Result) || len(o.Params) != len(t.Params) {
		return false
	}
	for i, p := range t.Params {
		if !p.Equal(o.Params[i]) {
			return false
		}
	}
	return true
}

// ParamType is a named type-parameter placeholder. The checker renames
// parameters to fresh names per overload candidate before unification.
type ParamType struct {
	Name string
}

func NewTypeParamType(name string) *ParamType { return &ParamType{Name: name} }

func (t *ParamType) Kind() Kind     { return TypeParamKind }
func (t *ParamType) String() string { return t.Name }
func (t *ParamType) Equal(other Type) bool {
	o, ok := other.(*ParamType)
	return ok && o.Name == t.Name
}

// StructType is a nominal record type. Field lookup goes through the
// Provider that registered it.
type StructType struct {
	Name string
}

func NewStructType(name string) *StructType { return &StructType{Name: name} }

func (t *StructType) Kind() Kind     { return StructKind }
func (t *StructType) String() string { return t.Name }
func (t *StructType) Equal(other Type) bool {
	o, ok := other.(*StructType)
	return ok && o.Name == t.Name
}

// EnumType is a named (symbol -> integer) set. Enums are assignable to int
// in both directions; the checker treats enum as int for equality.
type EnumType struct {
	Name string
}

func NewEnumType(name string) *EnumType { return &EnumType{Name: name} }

func (t *EnumType) Kind() Kind     { return EnumKind }
func (t *EnumType) String() string { return t.Name }
func (t *EnumType) Equal(other Type) bool {
	o, ok := other.(*EnumType)
	return ok && o.Name == t.Name
}

// TypeType is the metatype: the type of a type literal. Of may be nil for
// the bare `type` type.
type TypeType struct {
	Of Type
}

func NewTypeType(of Type) *TypeType { return &TypeType{Of: of} }

func (t *TypeType) Kind() Kind { return TypeKind }
func (t *TypeType) String() string {
	if t.Of == nil {
		return "type"
	}
	return fmt.Sprintf("type(%s)", t.Of)
}
func (t *TypeType) Equal(other Type) bool {
	o, ok := other.(*TypeType)
	if !ok {
		return false
	}
	if t.Of == nil || o.Of == nil {
		return t.Of == nil && o.Of == nil
	}
	return t.Of.Equal(o.Of)
}

// IsDyn reports whether t is the dynamic top type.
func IsDyn(t Type) bool { return t != nil && t.Kind() == DynKind }

// IsError reports whether t is the error propagation type.
func IsError(t Type) bool { return t != nil && t.Kind() == ErrorKind }

// IsDynOrError reports whether t absorbs any further checking.
func IsDynOrError(t Type) bool { return IsDyn(t) || IsError(t) }

// HasTypeParams reports whether t contains any type-parameter placeholder.
func HasTypeParams(t Type) bool {
	switch tt := t.(type) {
	case *ParamType:
		return true
	case *ListType:
		return HasTypeParams(tt.Elem)
	case *MapType:
		return HasTypeParams(tt.Key) || HasTypeParams(tt.Value)
	case *OptionalType:
		return HasTypeParams(tt.Elem)
	case *WrapperType:
		return HasTypeParams(tt.Elem)
	case *OpaqueType:
		for _, p := range tt.Params {
			if HasTypeParams(p) {
				return true
			}
		}
	case *FunctionType:
		if HasTypeParams(tt.Result) {
			return true
		}
		for _, p := range tt.Params {
			if HasTypeParams(p) {
				return true
			}
		}
	case *TypeType:
		if tt.Of != nil {
			return HasTypeParams(tt.Of)
		}
	}
	return false
}

// HasDyn reports whether t contains dyn anywhere.
func HasDyn(t Type) bool {
	switch tt := t.(type) {
	case *simpleType:
		return tt.kind == DynKind
	case *ListType:
		return HasDyn(tt.Elem)
	case *MapType:
		return HasDyn(tt.Key) || HasDyn(tt.Value)
	case *OptionalType:
		return HasDyn(tt.Elem)
	case *WrapperType:
		return HasDyn(tt.Elem)
	case *OpaqueType:
		for _, p := range tt.Params {
			if HasDyn(p) {
				return true
			}
		}
	case *FunctionType:
		if HasDyn(tt.Result) {
			return true
		}
		for _, p := range tt.Params {
			if HasDyn(p) {
				return true
			}
		}
	}
	return false
}
