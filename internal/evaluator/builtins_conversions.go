package evaluator

import (
	"math"
	"strconv"
	"time"

	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/diagnostics"
)

func installConversions(d *Dispatcher) {
	d.Add("int",
		&Overload{ID: decls.OverloadIntToInt, Arity: 1, Guard: guardTypes(INTEGER_OBJ),
			Function: func(args []Object) Object { return args[0] }},
		&Overload{ID: decls.OverloadUintToInt, Arity: 1, Guard: guardTypes(UINT_OBJ),
			Function: func(args []Object) Object {
				v := args[0].(*UInt).Value
				if v > math.MaxInt64 {
					return newError(diagnostics.Overflow, "integer overflow")
				}
				return &Integer{Value: int64(v)}
			}},
		&Overload{ID: decls.OverloadDoubleToInt, Arity: 1, Guard: guardTypes(DOUBLE_OBJ),
			Function: func(args []Object) Object {
				v := args[0].(*Double).Value
				if math.IsNaN(v) || v >= 9223372036854775808.0 || v < -9223372036854775808.0 {
					return newError(diagnostics.Overflow, "integer overflow")
				}
				return &Integer{Value: int64(v)}
			}},
		&Overload{ID: decls.OverloadStringToInt, Arity: 1, Guard: guardTypes(STRING_OBJ),
			Function: func(args []Object) Object {
				s := args[0].(*String).Value
				v, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
						return newError(diagnostics.Overflow, "integer overflow: %s", s)
					}
					return newError(diagnostics.InvalidConversion, "cannot convert '%s' to int", s)
				}
				return &Integer{Value: v}
			}},
		&Overload{ID: decls.OverloadTimestampToInt, Arity: 1, Guard: guardTypes(TIMESTAMP_OBJ),
			Function: func(args []Object) Object {
				return &Integer{Value: args[0].(*Timestamp).Value.Unix()}
			}})

	d.Add("uint",
		&Overload{ID: decls.OverloadUintToUint, Arity: 1, Guard: guardTypes(UINT_OBJ),
			Function: func(args []Object) Object { return args[0] }},
		&Overload{ID: decls.OverloadIntToUint, Arity: 1, Guard: guardTypes(INTEGER_OBJ),
			Function: func(args []Object) Object {
				v := args[0].(*Integer).Value
				if v < 0 {
					return newError(diagnostics.Overflow, "unsigned integer overflow")
				}
				return &UInt{Value: uint64(v)}
			}},
		&Overload{ID: decls.OverloadDoubleToUint, Arity: 1, Guard: guardTypes(DOUBLE_OBJ),
			Function: func(args []Object) Object {
				v := args[0].(*Double).Value
				if math.IsNaN(v) || v < 0 || v >= 18446744073709551616.0 {
					return newError(diagnostics.Overflow, "unsigned integer overflow")
				}
				return &UInt{Value: uint64(v)}
			}},
		&Overload{ID: decls.OverloadStringToUint, Arity: 1, Guard: guardTypes(STRING_OBJ),
			Function: func(args []Object) Object {
				s := args[0].(*String).Value
				v, err := strconv.ParseUint(s, 10, 64)
				if err != nil {
					if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
						return newError(diagnostics.Overflow, "unsigned integer overflow: %s", s)
					}
					return newError(diagnostics.InvalidConversion, "cannot convert '%s' to uint", s)
				}
				return &UInt{Value: v}
			}})

	d.Add("double",
		&Overload{ID: decls.OverloadDoubleToDouble, Arity: 1, Guard: guardTypes(DOUBLE_OBJ),
			Function: func(args []Object) Object { return args[0] }},
		&Overload{ID: decls.OverloadIntToDouble, Arity: 1, Guard: guardTypes(INTEGER_OBJ),
			Function: func(args []Object) Object {
				return &Double{Value: float64(args[0].(*Integer).Value)}
			}},
		&Overload{ID: decls.OverloadUintToDouble, Arity: 1, Guard: guardTypes(UINT_OBJ),
			Function: func(args []Object) Object {
				return &Double{Value: float64(args[0].(*UInt).Value)}
			}},
		&Overload{ID: decls.OverloadStringToDouble, Arity: 1, Guard: guardTypes(STRING_OBJ),
			Function: func(args []Object) Object {
				s := args[0].(*String).Value
				v, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return newError(diagnostics.InvalidConversion, "cannot convert '%s' to double", s)
				}
				return &Double{Value: v}
			}})

	d.Add("string",
		&Overload{ID: decls.OverloadStringToString, Arity: 1, Guard: guardTypes(STRING_OBJ),
			Function: func(args []Object) Object { return args[0] }},
		&Overload{ID: decls.OverloadIntToString, Arity: 1, Guard: guardTypes(INTEGER_OBJ),
			Function: func(args []Object) Object {
				return &String{Value: strconv.FormatInt(args[0].(*Integer).Value, 10)}
			}},
		&Overload{ID: decls.OverloadUintToString, Arity: 1, Guard: guardTypes(UINT_OBJ),
			Function: func(args []Object) Object {
				return &String{Value: strconv.FormatUint(args[0].(*UInt).Value, 10)}
			}},
		&Overload{ID: decls.OverloadDoubleToString, Arity: 1, Guard: guardTypes(DOUBLE_OBJ),
			Function: func(args []Object) Object {
				return &String{Value: strconv.FormatFloat(args[0].(*Double).Value, 'g', -1, 64)}
			}},
		&Overload{ID: decls.OverloadBoolToString, Arity: 1, Guard: guardTypes(BOOLEAN_OBJ),
			Function: func(args []Object) Object {
				return &String{Value: strconv.FormatBool(args[0].(*Boolean).Value)}
			}},
		&Overload{ID: decls.OverloadBytesToString, Arity: 1, Guard: guardTypes(BYTES_OBJ),
			Function: func(args []Object) Object {
				return &String{Value: string(args[0].(*Bytes).Value)}
			}},
		&Overload{ID: decls.OverloadTimestampToString, Arity: 1, Guard: guardTypes(TIMESTAMP_OBJ),
			Function: func(args []Object) Object {
				return &String{Value: args[0].(*Timestamp).Value.UTC().Format(time.RFC3339Nano)}
			}},
		&Overload{ID: decls.OverloadDurationToString, Arity: 1, Guard: guardTypes(DURATION_OBJ),
			Function: func(args []Object) Object {
				return &String{Value: args[0].(*Duration).Value.String()}
			}})

	d.Add("bytes",
		&Overload{ID: decls.OverloadBytesToBytes, Arity: 1, Guard: guardTypes(BYTES_OBJ),
			Function: func(args []Object) Object { return args[0] }},
		&Overload{ID: decls.OverloadStringToBytes, Arity: 1, Guard: guardTypes(STRING_OBJ),
			Function: func(args []Object) Object {
				return &Bytes{Value: []byte(args[0].(*String).Value)}
			}})

	d.Add("bool",
		&Overload{ID: decls.OverloadBoolToBool, Arity: 1, Guard: guardTypes(BOOLEAN_OBJ),
			Function: func(args []Object) Object { return args[0] }},
		&Overload{ID: decls.OverloadStringToBool, Arity: 1, Guard: guardTypes(STRING_OBJ),
			Function: func(args []Object) Object {
				switch args[0].(*String).Value {
				case "true", "1":
					return TRUE
				case "false", "0":
					return FALSE
				}
				return newError(diagnostics.InvalidConversion,
					"cannot convert '%s' to bool", args[0].(*String).Value)
			}})

	d.Add("timestamp",
		&Overload{ID: decls.OverloadStringToTimestamp, Arity: 1, Guard: guardTypes(STRING_OBJ),
			Function: func(args []Object) Object {
				s := args[0].(*String).Value
				t, err := time.Parse(time.RFC3339Nano, s)
				if err != nil {
					return newError(diagnostics.InvalidConversion, "cannot convert '%s' to timestamp", s)
				}
				return &Timestamp{Value: t}
			}},
		&Overload{ID: decls.OverloadIntToTimestamp, Arity: 1, Guard: guardTypes(INTEGER_OBJ),
			Function: func(args []Object) Object {
				return &Timestamp{Value: time.Unix(args[0].(*Integer).Value, 0).UTC()}
			}})

	d.Add("duration",
		&Overload{ID: decls.OverloadStringToDuration, Arity: 1, Guard: guardTypes(STRING_OBJ),
			Function: func(args []Object) Object {
				s := args[0].(*String).Value
				v, err := time.ParseDuration(s)
				if err != nil {
					return newError(diagnostics.InvalidConversion, "cannot convert '%s' to duration", s)
				}
				return &Duration{Value: v}
			}},
		&Overload{ID: decls.OverloadIntToDuration, Arity: 1, Guard: guardTypes(INTEGER_OBJ),
			Function: func(args []Object) Object {
				return &Duration{Value: time.Duration(args[0].(*Integer).Value) * time.Second}
			}})

	d.Add("dyn", &Overload{ID: decls.OverloadToDyn, Arity: 1,
		Function: func(args []Object) Object { return args[0] }})
	d.Add("type", &Overload{ID: decls.OverloadTypeOf, Arity: 1,
		Function: func(args []Object) Object {
			return &TypeObject{Of: args[0].RuntimeType()}
		}})
}

func installOptionals(d *Dispatcher) {
	d.Add("optional.of", &Overload{ID: decls.OverloadOptionalOf, Arity: 1,
		Function: func(args []Object) Object { return NewOptionalOf(args[0]) }})
	d.Add("optional.none", &Overload{ID: decls.OverloadOptionalNone, Arity: 0,
		Function: func(args []Object) Object { return OptionalNone }})
	d.Add("orValue", &Overload{
		ID: decls.OverloadOptionalOrValue, Arity: 2,
		Guard: func(args []Object) bool { return args[0].Type() == OPTIONAL_OBJ },
		Function: binary(func(l, r Object) Object {
			opt := l.(*Optional)
			if opt.HasValue() {
				return opt.GetValue()
			}
			return r
		}),
	})
	d.Add("hasValue", &Overload{
		ID: decls.OverloadOptionalHasValue, Arity: 1,
		Guard: func(args []Object) bool { return args[0].Type() == OPTIONAL_OBJ },
		Function: func(args []Object) Object {
			return nativeBoolToBooleanObject(args[0].(*Optional).HasValue())
		},
	})
	d.Add("value", &Overload{
		ID: decls.OverloadOptionalValue, Arity: 1,
		Guard: func(args []Object) bool { return args[0].Type() == OPTIONAL_OBJ },
		Function: func(args []Object) Object {
			opt := args[0].(*Optional)
			if !opt.HasValue() {
				return newError(diagnostics.InvalidArgument, "optional.none() dereference")
			}
			return opt.GetValue()
		},
	})
}
