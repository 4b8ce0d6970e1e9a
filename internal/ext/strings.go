package ext

import (
	stdstrings "strings"

	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/evaluator"
	"github.com/funvibe/polex/internal/types"
)

func init() {
	register("strings", 1, stringsV1)
}

func stringsV1() []*FunctionBundle {
	stringGuard := func(args []evaluator.Object) bool {
		return args[0].Type() == evaluator.STRING_OBJ
	}
	unary := func(name string, fn func(string) string) *FunctionBundle {
		id := "strings_" + name
		return &FunctionBundle{
			Decl: mustFunction("strings."+name,
				decls.NewOverload(id, []types.Type{types.StringType}, types.StringType)),
			Impls: []*evaluator.Overload{
				{
					ID: id, Arity: 1, Guard: stringGuard,
					Function: func(args []evaluator.Object) evaluator.Object {
						return &evaluator.String{Value: fn(args[0].(*evaluator.String).Value)}
					},
				},
			},
		}
	}
	return []*FunctionBundle{
		unary("lower", stdstrings.ToLower),
		unary("upper", stdstrings.ToUpper),
		unary("trim", stdstrings.TrimSpace),
	}
}
