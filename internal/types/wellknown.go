package types

// Well-known protobuf message names receive their expression-level semantic
// type: wrappers unwrap to their scalar (admitting null), Any and Value are
// dynamic, Struct and ListValue map to their JSON container shapes.
var wellKnownTypes = map[string]Type{
	"google.protobuf.Duration":    DurationType,
	"google.protobuf.Timestamp":   TimestampType,
	"google.protobuf.Any":         DynType,
	"google.protobuf.Value":       DynType,
	"google.protobuf.Struct":      NewMapType(StringType, DynType),
	"google.protobuf.ListValue":   NewListType(DynType),
	"google.protobuf.BoolValue":   NewWrapperType(BoolType),
	"google.protobuf.BytesValue":  NewWrapperType(BytesType),
	"google.protobuf.DoubleValue": NewWrapperType(DoubleType),
	"google.protobuf.FloatValue":  NewWrapperType(DoubleType),
	"google.protobuf.Int32Value":  NewWrapperType(IntType),
	"google.protobuf.Int64Value":  NewWrapperType(IntType),
	"google.protobuf.StringValue": NewWrapperType(StringType),
	"google.protobuf.UInt32Value": NewWrapperType(UintType),
	"google.protobuf.UInt64Value": NewWrapperType(UintType),
}

// WellKnownType maps a fully-qualified message name to its semantic type.
func WellKnownType(name string) (Type, bool) {
	t, ok := wellKnownTypes[name]
	return t, ok
}

// Simple type names addressable from expressions as type literals.
var simpleTypeNames = map[string]Type{
	"bool":      BoolType,
	"bytes":     BytesType,
	"double":    DoubleType,
	"dyn":       DynType,
	"int":       IntType,
	"list":      NewListType(DynType),
	"map":       NewMapType(DynType, DynType),
	"null_type": NullType,
	"string":    StringType,
	"uint":      UintType,
	"type":      NewTypeType(nil),
}

// SimpleTypeByName resolves predeclared type names used in type literals and
// in environment-file variable declarations.
func SimpleTypeByName(name string) (Type, bool) {
	t, ok := simpleTypeNames[name]
	return t, ok
}
