package evaluator

import (
	"regexp"
	"regexp/syntax"
	"strings"

	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/diagnostics"
)

func installStrings(d *Dispatcher, regexProgramSize int) {
	matches := func(args []Object) Object {
		s := args[0].(*String).Value
		pattern := args[1].(*String).Value
		if regexProgramSize > 0 {
			if err := checkRegexProgramSize(pattern, regexProgramSize); err != nil {
				return err
			}
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return newError(diagnostics.InvalidArgument, "invalid regex pattern: %v", err)
		}
		return nativeBoolToBooleanObject(re.MatchString(s))
	}
	stringPair := guardTypes(STRING_OBJ, STRING_OBJ)
	d.Add("matches",
		&Overload{ID: decls.OverloadMatches, Arity: 2, Guard: stringPair, Function: matches},
		&Overload{ID: decls.OverloadMatchesRecv, Arity: 2, Guard: stringPair, Function: matches})

	d.Add("contains", &Overload{
		ID: decls.OverloadContains, Arity: 2, Guard: stringPair,
		Function: binary(func(l, r Object) Object {
			return nativeBoolToBooleanObject(strings.Contains(l.(*String).Value, r.(*String).Value))
		}),
	})
	d.Add("startsWith", &Overload{
		ID: decls.OverloadStartsWith, Arity: 2, Guard: stringPair,
		Function: binary(func(l, r Object) Object {
			return nativeBoolToBooleanObject(strings.HasPrefix(l.(*String).Value, r.(*String).Value))
		}),
	})
	d.Add("endsWith", &Overload{
		ID: decls.OverloadEndsWith, Arity: 2, Guard: stringPair,
		Function: binary(func(l, r Object) Object {
			return nativeBoolToBooleanObject(strings.HasSuffix(l.(*String).Value, r.(*String).Value))
		}),
	})
}

// checkRegexProgramSize rejects patterns whose compiled RE2 program exceeds
// the configured instruction budget.
func checkRegexProgramSize(pattern string, limit int) *Error {
	parsed, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return newError(diagnostics.InvalidArgument, "invalid regex pattern: %v", err)
	}
	prog, err := syntax.Compile(parsed.Simplify())
	if err != nil {
		return newError(diagnostics.InvalidArgument, "invalid regex pattern: %v", err)
	}
	if len(prog.Inst) > limit {
		return newError(diagnostics.InvalidArgument,
			"regex program size %d exceeds limit %d", len(prog.Inst), limit)
	}
	return nil
}
