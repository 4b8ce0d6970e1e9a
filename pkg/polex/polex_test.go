package polex_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/polex/internal/evaluator"
	"github.com/funvibe/polex/pkg/polex"
)

func mustEnv(t *testing.T, opts ...polex.EnvOption) *polex.Env {
	t.Helper()
	opts = append(opts, polex.HeterogeneousComparisons(true))
	env, err := polex.NewEnv(opts...)
	require.NoError(t, err)
	return env
}

func compileAndRun(t *testing.T, env *polex.Env, source string, vars interface{}) polex.Value {
	t.Helper()
	compiled, issues := env.Compile(source)
	require.Nil(t, issues, "compile %q: %v", source, issues.Err())
	prg, err := env.Program(compiled)
	require.NoError(t, err)
	out, _ := prg.Eval(vars)
	require.NotNil(t, out)
	return out
}

func TestCompileAndEval(t *testing.T) {
	env := mustEnv(t,
		polex.Variable("name", polex.StringType),
		polex.Variable("age", polex.IntType))

	out := compileAndRun(t, env, "name == 'alice' && age >= 21", polex.Bindings{
		"name": "alice",
		"age":  30,
	})
	assert.Equal(t, evaluator.TRUE, out)
}

func TestExpectedResultType(t *testing.T) {
	env := mustEnv(t, polex.ExpectedResultType(polex.BoolType))
	_, issues := env.Compile("1 + 2")
	require.NotNil(t, issues)
	assert.Error(t, issues.Err())

	compiled, issues := env.Compile("1 < 2")
	require.Nil(t, issues)
	assert.Equal(t, "bool", compiled.ResultType().String())
}

func TestUnknownRoundtrip(t *testing.T) {
	env := mustEnv(t,
		polex.Variable("a", polex.BoolType),
		polex.Variable("b", polex.BoolType))
	compiled, issues := env.Compile("a || b")
	require.Nil(t, issues)
	prg, err := env.Program(compiled)
	require.NoError(t, err)

	act, err := polex.PartialBindings(polex.Bindings{"b": false},
		polex.NewAttributePattern("a"))
	require.NoError(t, err)
	out, err := prg.Eval(act)
	require.NoError(t, err)
	require.True(t, polex.IsUnknown(out))
	assert.Equal(t, []string{"a"}, polex.UnknownAttributes(out))

	// A second evaluation with the attribute resolved is concrete.
	out, err = prg.Eval(polex.Bindings{"a": true, "b": false})
	require.NoError(t, err)
	assert.Equal(t, evaluator.TRUE, out)
}

func TestUnknownMonotonicity(t *testing.T) {
	env := mustEnv(t,
		polex.Variable("a", polex.BoolType),
		polex.Variable("b", polex.BoolType),
		polex.Variable("c", polex.BoolType))
	compiled, issues := env.Compile("(a && b) || c")
	require.Nil(t, issues)
	prg, err := env.Program(compiled)
	require.NoError(t, err)

	act, err := polex.PartialBindings(polex.Bindings{},
		polex.NewAttributePattern("a"),
		polex.NewAttributePattern("b"),
		polex.NewAttributePattern("c"))
	require.NoError(t, err)
	out, err := prg.Eval(act)
	require.NoError(t, err)
	require.True(t, polex.IsUnknown(out))
	broad := polex.UnknownAttributes(out)

	// Resolving a superset of attributes shrinks the unknown set.
	act, err = polex.PartialBindings(polex.Bindings{"a": true, "b": true},
		polex.NewAttributePattern("c"))
	require.NoError(t, err)
	out, err = prg.Eval(act)
	require.NoError(t, err)
	if polex.IsUnknown(out) {
		narrow := polex.UnknownAttributes(out)
		assert.Less(t, len(narrow), len(broad))
	} else {
		assert.Equal(t, evaluator.TRUE, out)
	}
}

func TestLibrarySubsetExcludesAdd(t *testing.T) {
	env := mustEnv(t, polex.StdlibSubset(&polex.LibrarySubset{
		ExcludeFunctions: []*polex.FunctionSelector{{Name: "_+_"}},
	}))
	_, issues := env.Compile("1 + 1")
	require.NotNil(t, issues)
	assert.Contains(t, issues.Err().Error(), "undeclared reference to function '_+_'")

	// Other operators stay available.
	_, issues = env.Compile("2 - 1")
	assert.Nil(t, issues)
}

func TestLibrarySubsetConflicts(t *testing.T) {
	_, err := polex.NewEnv(polex.StdlibSubset(&polex.LibrarySubset{
		IncludeMacros: []string{"all"},
		ExcludeMacros: []string{"map"},
	}))
	assert.Error(t, err, "include and exclude are mutually exclusive")
}

func TestMacroSubset(t *testing.T) {
	env := mustEnv(t, polex.StdlibSubset(&polex.LibrarySubset{
		ExcludeMacros: []string{"map"},
	}))
	// Without the macro, map parses as an undeclared member call.
	_, issues := env.Compile("[1].map(x, x + 1)")
	require.NotNil(t, issues)
	assert.Contains(t, issues.Err().Error(), "map")

	_, issues = env.Compile("[1].all(x, x > 0)")
	assert.Nil(t, issues)
}

func TestMathExtensionVersions(t *testing.T) {
	v1 := mustEnv(t, polex.Extension("math", 1))
	out := compileAndRun(t, v1, "math.abs(-4)", nil)
	require.IsType(t, &evaluator.Integer{}, out)
	assert.Equal(t, int64(4), out.(*evaluator.Integer).Value)

	_, issues := v1.Compile("math.sqrt(4)")
	require.NotNil(t, issues)
	assert.Contains(t, issues.Err().Error(), "undeclared reference")

	latest := mustEnv(t, polex.Extension("math", polex.ExtensionLatest))
	out = compileAndRun(t, latest, "math.sqrt(4)", nil)
	require.IsType(t, &evaluator.Double{}, out)
	assert.Equal(t, 2.0, out.(*evaluator.Double).Value)
}

func TestUnknownExtension(t *testing.T) {
	_, err := polex.NewEnv(polex.Extension("math", 99))
	assert.Error(t, err)
	_, err = polex.NewEnv(polex.Extension("nope", 1))
	assert.Error(t, err)
}

func TestStringsExtension(t *testing.T) {
	env := mustEnv(t, polex.Extension("strings", polex.ExtensionLatest))
	out := compileAndRun(t, env, "strings.upper('abc') == 'ABC'", nil)
	assert.Equal(t, evaluator.TRUE, out)
}

func TestCustomFunction(t *testing.T) {
	env := mustEnv(t, polex.Function("shake",
		polex.Overload("shake_int", []polex.Type{polex.IntType}, polex.IntType).
			WithImpl(func(args []polex.Value) polex.Value {
				return &evaluator.Integer{Value: args[0].(*evaluator.Integer).Value * 3}
			})))
	out := compileAndRun(t, env, "shake(2)", nil)
	require.IsType(t, &evaluator.Integer{}, out)
	assert.Equal(t, int64(6), out.(*evaluator.Integer).Value)
}

func TestContainerAndAliases(t *testing.T) {
	env := mustEnv(t,
		polex.Container("acme.policies"),
		polex.Variable("acme.policies.region", polex.StringType),
		polex.Alias("Col", "acme.Color"),
		polex.EnumType("acme.Color", map[string]int64{"RED": 0, "BLUE": 2}))

	out := compileAndRun(t, env, "region == 'eu'", polex.Bindings{
		"acme.policies.region": "eu",
	})
	assert.Equal(t, evaluator.TRUE, out)

	out = compileAndRun(t, env, "Col.BLUE == 2", nil)
	assert.Equal(t, evaluator.TRUE, out)
}

func TestStructTypes(t *testing.T) {
	env := mustEnv(t,
		polex.StructType("acme.Request", map[string]polex.Type{
			"path": polex.StringType,
			"port": polex.IntType,
		}),
		polex.Variable("req", polex.ObjectType("acme.Request")))

	out := compileAndRun(t, env, "acme.Request{path: '/a', port: 80}.port == 80", nil)
	assert.Equal(t, evaluator.TRUE, out)

	// Unset declared fields read their zero value.
	out = compileAndRun(t, env, "acme.Request{path: '/a'}.port == 0", nil)
	assert.Equal(t, evaluator.TRUE, out)

	out = compileAndRun(t, env, "has(acme.Request{path: '/a'}.port)", nil)
	assert.Equal(t, evaluator.FALSE, out)
}

func TestConcurrentEvaluations(t *testing.T) {
	env := mustEnv(t, polex.Variable("n", polex.IntType))
	compiled, issues := env.Compile("[1, 2, 3, 4].map(x, x * n).exists(x, x > 3 * n)")
	require.Nil(t, issues)
	prg, err := env.Program(compiled)
	require.NoError(t, err)

	serial := make([]polex.Value, 50)
	for i := range serial {
		out, err := prg.Eval(polex.Bindings{"n": int64(i + 1)})
		require.NoError(t, err)
		serial[i] = out
	}

	var wg sync.WaitGroup
	concurrent := make([]polex.Value, len(serial))
	for i := range concurrent {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := prg.Eval(polex.Bindings{"n": int64(i + 1)})
			if err != nil {
				t.Errorf("eval %d: %v", i, err)
				return
			}
			concurrent[i] = out
		}(i)
	}
	wg.Wait()
	for i := range serial {
		require.NotNil(t, concurrent[i])
		assert.True(t, serial[i].Equal(concurrent[i]), "evaluation %d differs", i)
	}
}

func TestDeterministicEvaluation(t *testing.T) {
	env := mustEnv(t)
	compiled, issues := env.Compile("{'b': 2, 'a': 1}.map(k, k) == ['a', 'b']")
	require.Nil(t, issues)
	prg, err := env.Program(compiled)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		out, err := prg.Eval(nil)
		require.NoError(t, err)
		assert.Equal(t, evaluator.TRUE, out)
	}
}

func TestAstYAMLRoundtrip(t *testing.T) {
	env := mustEnv(t, polex.Variable("xs", polex.ListType(polex.IntType)))
	compiled, issues := env.Compile("xs.filter(x, x > 1).size() + 1")
	require.Nil(t, issues)

	data, err := polex.AstToYAML(compiled)
	require.NoError(t, err)
	restored, err := polex.AstFromYAML(data)
	require.NoError(t, err)
	require.True(t, restored.IsChecked())
	assert.Equal(t, compiled.ResultType().String(), restored.ResultType().String())

	// The restored AST evaluates identically.
	prg, err := env.Program(restored)
	require.NoError(t, err)
	out, err := prg.Eval(polex.Bindings{"xs": []int64{1, 2, 3}})
	require.NoError(t, err)
	require.IsType(t, &evaluator.Integer{}, out)
	assert.Equal(t, int64(3), out.(*evaluator.Integer).Value)

	// A second round trip is byte-stable.
	data2, err := polex.AstToYAML(restored)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(data2))
}

func TestEvalErrorSurface(t *testing.T) {
	env := mustEnv(t)
	compiled, issues := env.Compile("1 / 0")
	require.Nil(t, issues)
	prg, err := env.Program(compiled)
	require.NoError(t, err)
	out, err := prg.Eval(nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "DivideByZero"))
	require.IsType(t, &evaluator.Error{}, out)
}

func TestExtendEnv(t *testing.T) {
	parent := mustEnv(t, polex.Variable("a", polex.IntType))
	child, err := parent.Extend(polex.Variable("b", polex.IntType))
	require.NoError(t, err)

	_, issues := parent.Compile("a + b")
	require.NotNil(t, issues, "parent must not see the child's variable")
	_, issues = child.Compile("a + b")
	assert.Nil(t, issues)
}

func TestIterationBudgetOption(t *testing.T) {
	env := mustEnv(t)
	compiled, issues := env.Compile("[1, 2, 3].map(x, x + 1)")
	require.Nil(t, issues)
	prg, err := env.Program(compiled, polex.IterationBudget(2))
	require.NoError(t, err)
	_, err = prg.Eval(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IterationBudgetExceeded")
}
