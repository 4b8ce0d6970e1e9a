package ext

import (
	stdmath "math"

	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/diagnostics"
	"github.com/funvibe/polex/internal/evaluator"
	"github.com/funvibe/polex/internal/types"
)

func init() {
	register("math", 1, mathV1)
	register("math", 2, mathV2)
}

func mustFunction(name string, overloads ...*decls.OverloadDecl) *decls.FunctionDecl {
	fn, err := decls.NewFunction(name, overloads...)
	if err != nil {
		panic(err)
	}
	return fn
}

func mathV1() []*FunctionBundle {
	return []*FunctionBundle{
		{
			Decl: mustFunction("math.abs",
				decls.NewOverload("math_abs_int", []types.Type{types.IntType}, types.IntType),
				decls.NewOverload("math_abs_uint", []types.Type{types.UintType}, types.UintType),
				decls.NewOverload("math_abs_double", []types.Type{types.DoubleType}, types.DoubleType)),
			Impls: []*evaluator.Overload{
				{
					ID: "math_abs_int", Arity: 1,
					Guard: func(args []evaluator.Object) bool { return args[0].Type() == evaluator.INTEGER_OBJ },
					Function: func(args []evaluator.Object) evaluator.Object {
						v := args[0].(*evaluator.Integer).Value
						if v == stdmath.MinInt64 {
							return evaluator.NewErrorObject(diagnostics.Overflow, "integer overflow")
						}
						if v < 0 {
							v = -v
						}
						return &evaluator.Integer{Value: v}
					},
				},
				{
					ID: "math_abs_uint", Arity: 1,
					Guard: func(args []evaluator.Object) bool { return args[0].Type() == evaluator.UINT_OBJ },
					Function: func(args []evaluator.Object) evaluator.Object {
						return args[0]
					},
				},
				{
					ID: "math_abs_double", Arity: 1,
					Guard: func(args []evaluator.Object) bool { return args[0].Type() == evaluator.DOUBLE_OBJ },
					Function: func(args []evaluator.Object) evaluator.Object {
						return &evaluator.Double{Value: stdmath.Abs(args[0].(*evaluator.Double).Value)}
					},
				},
			},
		},
	}
}

func mathV2() []*FunctionBundle {
	doubleOf := func(arg evaluator.Object) float64 {
		switch v := arg.(type) {
		case *evaluator.Integer:
			return float64(v.Value)
		case *evaluator.UInt:
			return float64(v.Value)
		case *evaluator.Double:
			return v.Value
		}
		return stdmath.NaN()
	}
	numericGuard := func(args []evaluator.Object) bool {
		switch args[0].Type() {
		case evaluator.INTEGER_OBJ, evaluator.UINT_OBJ, evaluator.DOUBLE_OBJ:
			return true
		}
		return false
	}
	unary := func(name string, fn func(float64) float64) *FunctionBundle {
		id := "math_" + name + "_double"
		return &FunctionBundle{
			Decl: mustFunction("math."+name,
				decls.NewOverload(id, []types.Type{types.DoubleType}, types.DoubleType),
				decls.NewOverload("math_"+name+"_int", []types.Type{types.IntType}, types.DoubleType),
				decls.NewOverload("math_"+name+"_uint", []types.Type{types.UintType}, types.DoubleType)),
			Impls: []*evaluator.Overload{
				{
					ID: id, Arity: 1, Guard: numericGuard,
					Function: func(args []evaluator.Object) evaluator.Object {
						return &evaluator.Double{Value: fn(doubleOf(args[0]))}
					},
				},
				{
					ID: "math_" + name + "_int", Arity: 1, Guard: numericGuard,
					Function: func(args []evaluator.Object) evaluator.Object {
						return &evaluator.Double{Value: fn(doubleOf(args[0]))}
					},
				},
				{
					ID: "math_" + name + "_uint", Arity: 1, Guard: numericGuard,
					Function: func(args []evaluator.Object) evaluator.Object {
						return &evaluator.Double{Value: fn(doubleOf(args[0]))}
					},
				},
			},
		}
	}
	return []*FunctionBundle{
		unary("sqrt", stdmath.Sqrt),
		unary("ceil", stdmath.Ceil),
		unary("floor", stdmath.Floor),
	}
}
