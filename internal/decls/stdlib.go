package decls

import "github.com/funvibe/polex/internal/types"

// Overload ids of the standard library. The evaluator registers its
// implementations under the same ids, and library subsets select by them.
const (
	OverloadConditional = "conditional"
	OverloadLogicalAnd  = "logical_and"
	OverloadLogicalOr   = "logical_or"
	OverloadLogicalNot  = "logical_not"

	OverloadNegateInt    = "negate_int"
	OverloadNegateDouble = "negate_double"

	OverloadAddInt               = "add_int"
	OverloadAddUint              = "add_uint"
	OverloadAddDouble            = "add_double"
	OverloadAddString            = "add_string"
	OverloadAddBytes             = "add_bytes"
	OverloadAddList              = "add_list"
	OverloadAddDurationDuration  = "add_duration_duration"
	OverloadAddTimestampDuration = "add_timestamp_duration"
	OverloadAddDurationTimestamp = "add_duration_timestamp"

	OverloadSubtractInt                = "subtract_int"
	OverloadSubtractUint               = "subtract_uint"
	OverloadSubtractDouble             = "subtract_double"
	OverloadSubtractDurationDuration   = "subtract_duration_duration"
	OverloadSubtractTimestampDuration  = "subtract_timestamp_duration"
	OverloadSubtractTimestampTimestamp = "subtract_timestamp_timestamp"

	OverloadMultiplyInt    = "multiply_int"
	OverloadMultiplyUint   = "multiply_uint"
	OverloadMultiplyDouble = "multiply_double"

	OverloadDivideInt    = "divide_int"
	OverloadDivideUint   = "divide_uint"
	OverloadDivideDouble = "divide_double"

	OverloadModuloInt  = "modulo_int"
	OverloadModuloUint = "modulo_uint"

	OverloadEquals    = "equals"
	OverloadNotEquals = "not_equals"

	OverloadIndexList = "index_list"
	OverloadIndexMap  = "index_map"

	OverloadInList = "in_list"
	OverloadInMap  = "in_map"

	OverloadSizeString  = "size_string"
	OverloadSizeBytes   = "size_bytes"
	OverloadSizeList    = "size_list"
	OverloadSizeMap     = "size_map"
	OverloadStringSize  = "string_size"
	OverloadBytesSize   = "bytes_size"
	OverloadListSize    = "list_size"
	OverloadMapSize     = "map_size"
	OverloadMatches     = "matches_string"
	OverloadMatchesRecv = "string_matches"
	OverloadContains    = "string_contains"
	OverloadStartsWith  = "string_starts_with"
	OverloadEndsWith    = "string_ends_with"

	OverloadIntToInt       = "int_to_int"
	OverloadUintToInt      = "uint_to_int"
	OverloadDoubleToInt    = "double_to_int"
	OverloadStringToInt    = "string_to_int"
	OverloadTimestampToInt = "timestamp_to_int"
	OverloadIntToUint      = "int_to_uint"
	OverloadUintToUint     = "uint_to_uint"
	OverloadDoubleToUint   = "double_to_uint"
	OverloadStringToUint   = "string_to_uint"
	OverloadIntToDouble    = "int_to_double"
	OverloadUintToDouble   = "uint_to_double"
	OverloadDoubleToDouble = "double_to_double"
	OverloadStringToDouble = "string_to_double"

	OverloadIntToString       = "int_to_string"
	OverloadUintToString      = "uint_to_string"
	OverloadDoubleToString    = "double_to_string"
	OverloadBoolToString      = "bool_to_string"
	OverloadBytesToString     = "bytes_to_string"
	OverloadStringToString    = "string_to_string"
	OverloadTimestampToString = "timestamp_to_string"
	OverloadDurationToString  = "duration_to_string"

	OverloadStringToBytes = "string_to_bytes"
	OverloadBytesToBytes  = "bytes_to_bytes"
	OverloadStringToBool  = "string_to_bool"
	OverloadBoolToBool    = "bool_to_bool"

	OverloadStringToTimestamp = "string_to_timestamp"
	OverloadStringToDuration  = "string_to_duration"
	OverloadIntToTimestamp    = "int_to_timestamp"
	OverloadIntToDuration     = "int_to_duration"

	OverloadToDyn  = "to_dyn"
	OverloadTypeOf = "type_of"

	OverloadOptionalOf       = "optional_of"
	OverloadOptionalNone     = "optional_none"
	OverloadOptionalOrValue  = "optional_or_value"
	OverloadOptionalHasValue = "optional_has_value"
	OverloadOptionalValue    = "optional_value"

	// Cross-numeric comparison overloads, declared only when heterogeneous
	// numeric comparisons are enabled.
	OverloadLessIntUint      = "less_int_uint"
	OverloadLessIntDouble    = "less_int_double"
	OverloadLessUintInt      = "less_uint_int"
	OverloadLessUintDouble   = "less_uint_double"
	OverloadLessDoubleInt    = "less_double_int"
	OverloadLessDoubleUint   = "less_double_uint"
	OverloadLessEqIntUint    = "less_equals_int_uint"
	OverloadLessEqIntDouble  = "less_equals_int_double"
	OverloadLessEqUintInt    = "less_equals_uint_int"
	OverloadLessEqUintDouble = "less_equals_uint_double"
	OverloadLessEqDoubleInt  = "less_equals_double_int"
	OverloadLessEqDoubleUint = "less_equals_double_uint"
	OverloadGtIntUint        = "greater_int_uint"
	OverloadGtIntDouble      = "greater_int_double"
	OverloadGtUintInt        = "greater_uint_int"
	OverloadGtUintDouble     = "greater_uint_double"
	OverloadGtDoubleInt      = "greater_double_int"
	OverloadGtDoubleUint     = "greater_double_uint"
	OverloadGeIntUint        = "greater_equals_int_uint"
	OverloadGeIntDouble      = "greater_equals_int_double"
	OverloadGeUintInt        = "greater_equals_uint_int"
	OverloadGeUintDouble     = "greater_equals_uint_double"
	OverloadGeDoubleInt      = "greater_equals_double_int"
	OverloadGeDoubleUint     = "greater_equals_double_uint"
)

func homogeneousComparisonIDs(op string) map[string]string {
	return map[string]string{
		"int":       op + "_int",
		"uint":      op + "_uint",
		"double":    op + "_double",
		"string":    op + "_string",
		"bytes":     op + "_bytes",
		"bool":      op + "_bool",
		"timestamp": op + "_timestamp",
		"duration":  op + "_duration",
	}
}

// StandardFunctions builds the standard library declarations. When
// heterogeneousComparisons is set, the cross-numeric comparison overloads
// join the homogeneous ones.
func StandardFunctions(heterogeneousComparisons bool) []*FunctionDecl {
	paramA := types.NewTypeParamType("A")
	paramK := types.NewTypeParamType("K")
	paramV := types.NewTypeParamType("V")
	listA := types.NewListType(paramA)
	mapKV := types.NewMapType(paramK, paramV)
	optA := types.NewOptionalType(paramA)

	var fns []*FunctionDecl
	mustFn := func(name string, overloads ...*OverloadDecl) {
		fn, err := NewFunction(name, overloads...)
		if err != nil {
			// The standard library is defined in this file; a collision here
			// is a programming error, not a configuration error.
			panic(err)
		}
		fns = append(fns, fn)
	}
	args := func(ts ...types.Type) []types.Type { return ts }

	nonStrict := func(o *OverloadDecl) *OverloadDecl {
		o.NonStrict = true
		return o
	}

	mustFn(Conditional,
		nonStrict(NewOverload(OverloadConditional, args(types.BoolType, paramA, paramA), paramA)))
	mustFn(LogicalAnd,
		nonStrict(NewOverload(OverloadLogicalAnd, args(types.BoolType, types.BoolType), types.BoolType)))
	mustFn(LogicalOr,
		nonStrict(NewOverload(OverloadLogicalOr, args(types.BoolType, types.BoolType), types.BoolType)))
	mustFn(LogicalNot,
		nonStrict(NewOverload(OverloadLogicalNot, args(types.BoolType), types.BoolType)))

	mustFn(Negate,
		NewOverload(OverloadNegateInt, args(types.IntType), types.IntType),
		NewOverload(OverloadNegateDouble, args(types.DoubleType), types.DoubleType))

	mustFn(Add,
		NewOverload(OverloadAddInt, args(types.IntType, types.IntType), types.IntType),
		NewOverload(OverloadAddUint, args(types.UintType, types.UintType), types.UintType),
		NewOverload(OverloadAddDouble, args(types.DoubleType, types.DoubleType), types.DoubleType),
		NewOverload(OverloadAddString, args(types.StringType, types.StringType), types.StringType),
		NewOverload(OverloadAddBytes, args(types.BytesType, types.BytesType), types.BytesType),
		NewOverload(OverloadAddList, args(listA, listA), listA),
		NewOverload(OverloadAddDurationDuration, args(types.DurationType, types.DurationType), types.DurationType),
		NewOverload(OverloadAddTimestampDuration, args(types.TimestampType, types.DurationType), types.TimestampType),
		NewOverload(OverloadAddDurationTimestamp, args(types.DurationType, types.TimestampType), types.TimestampType))

	mustFn(Subtract,
		NewOverload(OverloadSubtractInt, args(types.IntType, types.IntType), types.IntType),
		NewOverload(OverloadSubtractUint, args(types.UintType, types.UintType), types.UintType),
		NewOverload(OverloadSubtractDouble, args(types.DoubleType, types.DoubleType), types.DoubleType),
		NewOverload(OverloadSubtractDurationDuration, args(types.DurationType, types.DurationType), types.DurationType),
		NewOverload(OverloadSubtractTimestampDuration, args(types.TimestampType, types.DurationType), types.TimestampType),
		NewOverload(OverloadSubtractTimestampTimestamp, args(types.TimestampType, types.TimestampType), types.DurationType))

	mustFn(Multiply,
		NewOverload(OverloadMultiplyInt, args(types.IntType, types.IntType), types.IntType),
		NewOverload(OverloadMultiplyUint, args(types.UintType, types.UintType), types.UintType),
		NewOverload(OverloadMultiplyDouble, args(types.DoubleType, types.DoubleType), types.DoubleType))

	mustFn(Divide,
		NewOverload(OverloadDivideInt, args(types.IntType, types.IntType), types.IntType),
		NewOverload(OverloadDivideUint, args(types.UintType, types.UintType), types.UintType),
		NewOverload(OverloadDivideDouble, args(types.DoubleType, types.DoubleType), types.DoubleType))

	mustFn(Modulo,
		NewOverload(OverloadModuloInt, args(types.IntType, types.IntType), types.IntType),
		NewOverload(OverloadModuloUint, args(types.UintType, types.UintType), types.UintType))

	comparisons := []struct {
		op     string
		prefix string
	}{
		{Less, "less"},
		{LessEquals, "less_equals"},
		{Greater, "greater"},
		{GreaterEqual, "greater_equals"},
	}
	homogeneous := []struct {
		key string
		typ types.Type
	}{
		{"int", types.IntType},
		{"uint", types.UintType},
		{"double", types.DoubleType},
		{"string", types.StringType},
		{"bytes", types.BytesType},
		{"bool", types.BoolType},
		{"timestamp", types.TimestampType},
		{"duration", types.DurationType},
	}
	crossNumeric := []struct {
		suffix string
		lhs    types.Type
		rhs    types.Type
	}{
		{"int_uint", types.IntType, types.UintType},
		{"int_double", types.IntType, types.DoubleType},
		{"uint_int", types.UintType, types.IntType},
		{"uint_double", types.UintType, types.DoubleType},
		{"double_int", types.DoubleType, types.IntType},
		{"double_uint", types.DoubleType, types.UintType},
	}
	for _, cmp := range comparisons {
		ids := homogeneousComparisonIDs(cmp.prefix)
		var overloads []*OverloadDecl
		for _, h := range homogeneous {
			overloads = append(overloads,
				NewOverload(ids[h.key], args(h.typ, h.typ), types.BoolType))
		}
		if heterogeneousComparisons {
			for _, cn := range crossNumeric {
				overloads = append(overloads,
					NewOverload(cmp.prefix+"_"+cn.suffix, args(cn.lhs, cn.rhs), types.BoolType))
			}
		}
		mustFn(cmp.op, overloads...)
	}

	mustFn(Equals,
		NewOverload(OverloadEquals, args(paramA, paramA), types.BoolType))
	mustFn(NotEquals,
		NewOverload(OverloadNotEquals, args(paramA, paramA), types.BoolType))

	mustFn(Index,
		NewOverload(OverloadIndexList, args(listA, types.IntType), paramA),
		NewOverload(OverloadIndexMap, args(mapKV, paramK), paramV))

	mustFn(In,
		NewOverload(OverloadInList, args(paramA, listA), types.BoolType),
		NewOverload(OverloadInMap, args(paramK, mapKV), types.BoolType))

	mustFn("size",
		NewOverload(OverloadSizeString, args(types.StringType), types.IntType),
		NewOverload(OverloadSizeBytes, args(types.BytesType), types.IntType),
		NewOverload(OverloadSizeList, args(listA), types.IntType),
		NewOverload(OverloadSizeMap, args(mapKV), types.IntType),
		NewInstanceOverload(OverloadStringSize, args(types.StringType), types.IntType),
		NewInstanceOverload(OverloadBytesSize, args(types.BytesType), types.IntType),
		NewInstanceOverload(OverloadListSize, args(listA), types.IntType),
		NewInstanceOverload(OverloadMapSize, args(mapKV), types.IntType))

	mustFn("matches",
		NewOverload(OverloadMatches, args(types.StringType, types.StringType), types.BoolType),
		NewInstanceOverload(OverloadMatchesRecv, args(types.StringType, types.StringType), types.BoolType))

	mustFn("contains",
		NewInstanceOverload(OverloadContains, args(types.StringType, types.StringType), types.BoolType))
	mustFn("startsWith",
		NewInstanceOverload(OverloadStartsWith, args(types.StringType, types.StringType), types.BoolType))
	mustFn("endsWith",
		NewInstanceOverload(OverloadEndsWith, args(types.StringType, types.StringType), types.BoolType))

	mustFn("int",
		NewOverload(OverloadIntToInt, args(types.IntType), types.IntType),
		NewOverload(OverloadUintToInt, args(types.UintType), types.IntType),
		NewOverload(OverloadDoubleToInt, args(types.DoubleType), types.IntType),
		NewOverload(OverloadStringToInt, args(types.StringType), types.IntType),
		NewOverload(OverloadTimestampToInt, args(types.TimestampType), types.IntType))
	mustFn("uint",
		NewOverload(OverloadUintToUint, args(types.UintType), types.UintType),
		NewOverload(OverloadIntToUint, args(types.IntType), types.UintType),
		NewOverload(OverloadDoubleToUint, args(types.DoubleType), types.UintType),
		NewOverload(OverloadStringToUint, args(types.StringType), types.UintType))
	mustFn("double",
		NewOverload(OverloadDoubleToDouble, args(types.DoubleType), types.DoubleType),
		NewOverload(OverloadIntToDouble, args(types.IntType), types.DoubleType),
		NewOverload(OverloadUintToDouble, args(types.UintType), types.DoubleType),
		NewOverload(OverloadStringToDouble, args(types.StringType), types.DoubleType))
	mustFn("string",
		NewOverload(OverloadStringToString, args(types.StringType), types.StringType),
		NewOverload(OverloadIntToString, args(types.IntType), types.StringType),
		NewOverload(OverloadUintToString, args(types.UintType), types.StringType),
		NewOverload(OverloadDoubleToString, args(types.DoubleType), types.StringType),
		NewOverload(OverloadBoolToString, args(types.BoolType), types.StringType),
		NewOverload(OverloadBytesToString, args(types.BytesType), types.StringType),
		NewOverload(OverloadTimestampToString, args(types.TimestampType), types.StringType),
		NewOverload(OverloadDurationToString, args(types.DurationType), types.StringType))
	mustFn("bytes",
		NewOverload(OverloadBytesToBytes, args(types.BytesType), types.BytesType),
		NewOverload(OverloadStringToBytes, args(types.StringType), types.BytesType))
	mustFn("bool",
		NewOverload(OverloadBoolToBool, args(types.BoolType), types.BoolType),
		NewOverload(OverloadStringToBool, args(types.StringType), types.BoolType))
	mustFn("timestamp",
		NewOverload(OverloadStringToTimestamp, args(types.StringType), types.TimestampType),
		NewOverload(OverloadIntToTimestamp, args(types.IntType), types.TimestampType))
	mustFn("duration",
		NewOverload(OverloadStringToDuration, args(types.StringType), types.DurationType),
		NewOverload(OverloadIntToDuration, args(types.IntType), types.DurationType))

	mustFn("dyn",
		NewOverload(OverloadToDyn, args(paramA), types.DynType))
	mustFn("type",
		NewOverload(OverloadTypeOf, args(paramA), types.NewTypeType(paramA)))

	mustFn("optional.of",
		NewOverload(OverloadOptionalOf, args(paramA), optA))
	mustFn("optional.none",
		NewOverload(OverloadOptionalNone, nil, optA))
	mustFn("orValue",
		NewInstanceOverload(OverloadOptionalOrValue, args(optA, paramA), paramA))
	mustFn("hasValue",
		NewInstanceOverload(OverloadOptionalHasValue, args(optA), types.BoolType))
	mustFn("value",
		NewInstanceOverload(OverloadOptionalValue, args(optA), paramA))

	return fns
}
