package evaluator

import (
	"math"
	"time"

	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/diagnostics"
)

// InstallStandardOverloads registers the runtime implementations of the
// standard library under the same overload ids the checker resolves.
func InstallStandardOverloads(d *Dispatcher, heterogeneousComparisons bool, regexProgramSize int) {
	installArithmetic(d)
	installComparisons(d, heterogeneousComparisons)
	installContainers(d)
	installStrings(d, regexProgramSize)
	installConversions(d)
	installOptionals(d)

	d.Add(decls.LogicalNot, &Overload{
		ID:    decls.OverloadLogicalNot,
		Arity: 1,
		Guard: guardTypes(BOOLEAN_OBJ),
		Function: func(args []Object) Object {
			return nativeBoolToBooleanObject(!args[0].(*Boolean).Value)
		},
	})
	d.Add(decls.Negate,
		&Overload{
			ID:    decls.OverloadNegateInt,
			Arity: 1,
			Guard: guardTypes(INTEGER_OBJ),
			Function: func(args []Object) Object {
				v := args[0].(*Integer).Value
				if v == math.MinInt64 {
					return newError(diagnostics.Overflow, "integer overflow")
				}
				return &Integer{Value: -v}
			},
		},
		&Overload{
			ID:    decls.OverloadNegateDouble,
			Arity: 1,
			Guard: guardTypes(DOUBLE_OBJ),
			Function: func(args []Object) Object {
				return &Double{Value: -args[0].(*Double).Value}
			},
		})
}

func binary(fn func(l, r Object) Object) func(args []Object) Object {
	return func(args []Object) Object { return fn(args[0], args[1]) }
}

func addInt64(a, b int64) Object {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return newError(diagnostics.Overflow, "integer overflow")
	}
	return &Integer{Value: a + b}
}

func subInt64(a, b int64) Object {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return newError(diagnostics.Overflow, "integer overflow")
	}
	return &Integer{Value: a - b}
}

func mulInt64(a, b int64) Object {
	if a != 0 && b != 0 {
		res := a * b
		if res/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return newError(diagnostics.Overflow, "integer overflow")
		}
		return &Integer{Value: res}
	}
	return &Integer{Value: 0}
}

func installArithmetic(d *Dispatcher) {
	d.Add(decls.Add,
		&Overload{ID: decls.OverloadAddInt, Arity: 2, Guard: guardTypes(INTEGER_OBJ, INTEGER_OBJ),
			Function: binary(func(l, r Object) Object {
				return addInt64(l.(*Integer).Value, r.(*Integer).Value)
			})},
		&Overload{ID: decls.OverloadAddUint, Arity: 2, Guard: guardTypes(UINT_OBJ, UINT_OBJ),
			Function: binary(func(l, r Object) Object {
				a, b := l.(*UInt).Value, r.(*UInt).Value
				if a > math.MaxUint64-b {
					return newError(diagnostics.Overflow, "unsigned integer overflow")
				}
				return &UInt{Value: a + b}
			})},
		&Overload{ID: decls.OverloadAddDouble, Arity: 2, Guard: guardTypes(DOUBLE_OBJ, DOUBLE_OBJ),
			Function: binary(func(l, r Object) Object {
				return &Double{Value: l.(*Double).Value + r.(*Double).Value}
			})},
		&Overload{ID: decls.OverloadAddString, Arity: 2, Guard: guardTypes(STRING_OBJ, STRING_OBJ),
			Function: binary(func(l, r Object) Object {
				return &String{Value: l.(*String).Value + r.(*String).Value}
			})},
		&Overload{ID: decls.OverloadAddBytes, Arity: 2, Guard: guardTypes(BYTES_OBJ, BYTES_OBJ),
			Function: binary(func(l, r Object) Object {
				a, b := l.(*Bytes).Value, r.(*Bytes).Value
				out := make([]byte, 0, len(a)+len(b))
				out = append(out, a...)
				out = append(out, b...)
				return &Bytes{Value: out}
			})},
		&Overload{ID: decls.OverloadAddList, Arity: 2, Guard: guardTypes(LIST_OBJ, LIST_OBJ),
			Function: binary(func(l, r Object) Object {
				a, b := l.(*List).Elements, r.(*List).Elements
				out := make([]Object, 0, len(a)+len(b))
				out = append(out, a...)
				out = append(out, b...)
				return &List{Elements: out}
			})},
		&Overload{ID: decls.OverloadAddDurationDuration, Arity: 2, Guard: guardTypes(DURATION_OBJ, DURATION_OBJ),
			Function: binary(func(l, r Object) Object {
				sum := addInt64(int64(l.(*Duration).Value), int64(r.(*Duration).Value))
				if isError(sum) {
					return sum
				}
				return &Duration{Value: durationOf(sum)}
			})},
		&Overload{ID: decls.OverloadAddTimestampDuration, Arity: 2, Guard: guardTypes(TIMESTAMP_OBJ, DURATION_OBJ),
			Function: binary(func(l, r Object) Object {
				return &Timestamp{Value: l.(*Timestamp).Value.Add(r.(*Duration).Value)}
			})},
		&Overload{ID: decls.OverloadAddDurationTimestamp, Arity: 2, Guard: guardTypes(DURATION_OBJ, TIMESTAMP_OBJ),
			Function: binary(func(l, r Object) Object {
				return &Timestamp{Value: r.(*Timestamp).Value.Add(l.(*Duration).Value)}
			})})

	d.Add(decls.Subtract,
		&Overload{ID: decls.OverloadSubtractInt, Arity: 2, Guard: guardTypes(INTEGER_OBJ, INTEGER_OBJ),
			Function: binary(func(l, r Object) Object {
				return subInt64(l.(*Integer).Value, r.(*Integer).Value)
			})},
		&Overload{ID: decls.OverloadSubtractUint, Arity: 2, Guard: guardTypes(UINT_OBJ, UINT_OBJ),
			Function: binary(func(l, r Object) Object {
				a, b := l.(*UInt).Value, r.(*UInt).Value
				if b > a {
					return newError(diagnostics.Overflow, "unsigned integer overflow")
				}
				return &UInt{Value: a - b}
			})},
		&Overload{ID: decls.OverloadSubtractDouble, Arity: 2, Guard: guardTypes(DOUBLE_OBJ, DOUBLE_OBJ),
			Function: binary(func(l, r Object) Object {
				return &Double{Value: l.(*Double).Value - r.(*Double).Value}
			})},
		&Overload{ID: decls.OverloadSubtractDurationDuration, Arity: 2, Guard: guardTypes(DURATION_OBJ, DURATION_OBJ),
			Function: binary(func(l, r Object) Object {
				diff := subInt64(int64(l.(*Duration).Value), int64(r.(*Duration).Value))
				if isError(diff) {
					return diff
				}
				return &Duration{Value: durationOf(diff)}
			})},
		&Overload{ID: decls.OverloadSubtractTimestampDuration, Arity: 2, Guard: guardTypes(TIMESTAMP_OBJ, DURATION_OBJ),
			Function: binary(func(l, r Object) Object {
				return &Timestamp{Value: l.(*Timestamp).Value.Add(-r.(*Duration).Value)}
			})},
		&Overload{ID: decls.OverloadSubtractTimestampTimestamp, Arity: 2, Guard: guardTypes(TIMESTAMP_OBJ, TIMESTAMP_OBJ),
			Function: binary(func(l, r Object) Object {
				return &Duration{Value: l.(*Timestamp).Value.Sub(r.(*Timestamp).Value)}
			})})

	d.Add(decls.Multiply,
		&Overload{ID: decls.OverloadMultiplyInt, Arity: 2, Guard: guardTypes(INTEGER_OBJ, INTEGER_OBJ),
			Function: binary(func(l, r Object) Object {
				return mulInt64(l.(*Integer).Value, r.(*Integer).Value)
			})},
		&Overload{ID: decls.OverloadMultiplyUint, Arity: 2, Guard: guardTypes(UINT_OBJ, UINT_OBJ),
			Function: binary(func(l, r Object) Object {
				a, b := l.(*UInt).Value, r.(*UInt).Value
				if a != 0 && (a*b)/a != b {
					return newError(diagnostics.Overflow, "unsigned integer overflow")
				}
				return &UInt{Value: a * b}
			})},
		&Overload{ID: decls.OverloadMultiplyDouble, Arity: 2, Guard: guardTypes(DOUBLE_OBJ, DOUBLE_OBJ),
			Function: binary(func(l, r Object) Object {
				return &Double{Value: l.(*Double).Value * r.(*Double).Value}
			})})

	d.Add(decls.Divide,
		&Overload{ID: decls.OverloadDivideInt, Arity: 2, Guard: guardTypes(INTEGER_OBJ, INTEGER_OBJ),
			Function: binary(func(l, r Object) Object {
				a, b := l.(*Integer).Value, r.(*Integer).Value
				if b == 0 {
					return newError(diagnostics.DivideByZero, "division by zero")
				}
				if a == math.MinInt64 && b == -1 {
					return newError(diagnostics.Overflow, "integer overflow")
				}
				return &Integer{Value: a / b}
			})},
		&Overload{ID: decls.OverloadDivideUint, Arity: 2, Guard: guardTypes(UINT_OBJ, UINT_OBJ),
			Function: binary(func(l, r Object) Object {
				a, b := l.(*UInt).Value, r.(*UInt).Value
				if b == 0 {
					return newError(diagnostics.DivideByZero, "division by zero")
				}
				return &UInt{Value: a / b}
			})},
		&Overload{ID: decls.OverloadDivideDouble, Arity: 2, Guard: guardTypes(DOUBLE_OBJ, DOUBLE_OBJ),
			Function: binary(func(l, r Object) Object {
				// IEEE-754 division: zero divisors produce infinities.
				return &Double{Value: l.(*Double).Value / r.(*Double).Value}
			})})

	d.Add(decls.Modulo,
		&Overload{ID: decls.OverloadModuloInt, Arity: 2, Guard: guardTypes(INTEGER_OBJ, INTEGER_OBJ),
			Function: binary(func(l, r Object) Object {
				a, b := l.(*Integer).Value, r.(*Integer).Value
				if b == 0 {
					return newError(diagnostics.DivideByZero, "modulus by zero")
				}
				if b == -1 {
					return &Integer{Value: 0}
				}
				return &Integer{Value: a % b}
			})},
		&Overload{ID: decls.OverloadModuloUint, Arity: 2, Guard: guardTypes(UINT_OBJ, UINT_OBJ),
			Function: binary(func(l, r Object) Object {
				a, b := l.(*UInt).Value, r.(*UInt).Value
				if b == 0 {
					return newError(diagnostics.DivideByZero, "modulus by zero")
				}
				return &UInt{Value: a % b}
			})})
}

func durationOf(obj Object) time.Duration {
	return time.Duration(obj.(*Integer).Value)
}
