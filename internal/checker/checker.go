// Package checker infers a type for every AST node, resolves identifiers
// through the container, binds calls to declared overloads and enforces the
// expected result type. It accumulates every issue it finds rather than
// stopping at the first.
package checker

import (
	"fmt"

	"github.com/funvibe/polex/internal/ast"
	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/diagnostics"
	"github.com/funvibe/polex/internal/types"
)

// Env is the immutable pair of type universe and declaration registry plus
// the container used to resolve unqualified names.
type Env struct {
	Container *decls.Container
	Decls     *decls.Registry
	Provider  *types.Provider

	// ExpectedResultType, when non-nil, constrains the root of every checked
	// expression.
	ExpectedResultType types.Type
}

type checker struct {
	env        *Env
	scope      *decls.Registry
	sourceInfo *ast.SourceInfo

	mapping *types.Mapping
	typeMap map[int64]types.Type
	refMap  map[int64]*ast.ReferenceInfo

	errors      []*diagnostics.DiagnosticError
	freeTypeVar int
}

// Check produces a typed AST or a non-empty issue set. The returned
// CheckedAST is nil whenever issues contain errors.
func Check(parsed *ast.AST, env *Env) (*ast.CheckedAST, *diagnostics.Issues) {
	c := &checker{
		env:        env,
		scope:      env.Decls,
		sourceInfo: parsed.Source,
		mapping:    types.NewMapping(),
		typeMap:    make(map[int64]types.Type),
		refMap:     make(map[int64]*ast.ReferenceInfo),
	}
	rootType := c.check(parsed.Root)

	if env.ExpectedResultType != nil {
		if !types.IsAssignable(c.mapping, env.ExpectedResultType, rootType) {
			c.errorf(parsed.Root, diagnostics.TypeCheckError,
				"expected type '%s' but found '%s'", env.ExpectedResultType, rootType)
		}
	}

	issues := diagnostics.NewIssues(c.errors...)
	if !issues.Empty() {
		return nil, issues
	}

	// Finalize annotations: resolve bindings, erase leftover free parameters
	// to dyn so annotations stay stable across runs.
	for id, t := range c.typeMap {
		c.typeMap[id] = types.Substitute(c.mapping, t, true)
	}
	return &ast.CheckedAST{AST: parsed, TypeMap: c.typeMap, RefMap: c.refMap}, issues
}

func (c *checker) check(e ast.Expr) types.Type {
	if e == nil {
		return types.ErrorType
	}
	var t types.Type
	switch n := e.(type) {
	case *ast.Literal:
		t = constType(n.Value)
	case *ast.Ident:
		t = c.checkIdent(n)
	case *ast.Select:
		t = c.checkSelect(n)
	case *ast.Call:
		t = c.checkCall(n)
	case *ast.List:
		t = c.checkList(n)
	case *ast.Struct:
		t = c.checkStruct(n)
	case *ast.Comprehension:
		t = c.checkComprehension(n)
	default:
		c.errorf(e, diagnostics.TypeCheckError, "unsupported expression node")
		t = types.ErrorType
	}
	c.typeMap[e.ExprID()] = t
	return t
}

func constType(v ast.Constant) types.Type {
	switch v.Kind {
	case ast.BoolConst:
		return types.BoolType
	case ast.IntConst:
		return types.IntType
	case ast.UintConst:
		return types.UintType
	case ast.DoubleConst:
		return types.DoubleType
	case ast.StringConst:
		return types.StringType
	case ast.BytesConst:
		return types.BytesType
	case ast.NullConst:
		return types.NullType
	default:
		return types.ErrorType
	}
}

// resolveName probes the container candidates for a declaration: variables
// first, then enum constants, then type names. The first candidate found
// wins.
func (c *checker) resolveName(name string) (*ast.ReferenceInfo, types.Type, bool) {
	for _, candidate := range c.env.Container.ResolveCandidateNames(name) {
		if v, ok := c.scope.FindVariable(candidate); ok {
			return &ast.ReferenceInfo{Name: candidate}, v.Type, true
		}
		if val, ok := c.env.Provider.FindEnumValue(candidate); ok {
			return &ast.ReferenceInfo{
				Name:  candidate,
				Value: &ast.Constant{Kind: ast.IntConst, Int: val},
			}, types.IntType, true
		}
		if t, ok := c.env.Provider.FindType(candidate); ok {
			return &ast.ReferenceInfo{Name: candidate}, types.NewTypeType(t), true
		}
		if t, ok := types.SimpleTypeByName(candidate); ok {
			return &ast.ReferenceInfo{Name: candidate}, types.NewTypeType(t), true
		}
	}
	return nil, nil, false
}

func (c *checker) checkIdent(n *ast.Ident) types.Type {
	if ref, t, ok := c.resolveName(n.Name); ok {
		c.refMap[n.ID] = ref
		return t
	}
	c.errorf(n, diagnostics.UndeclaredReference,
		"undeclared reference to '%s' (in container '%s')", n.Name, c.env.Container.Name)
	return types.ErrorType
}

func (c *checker) checkSelect(n *ast.Select) types.Type {
	// A select chain may actually spell a qualified declaration name, e.g.
	// a container-relative variable or an enum constant. Qualified
	// resolution wins over field access.
	if !n.TestOnly {
		if qualified, ok := memberName(n); ok {
			if ref, t, found := c.resolveName(qualified); found {
				c.refMap[n.ID] = ref
				return t
			}
		}
	}

	operandType := c.substituted(c.check(n.Operand))
	resultType := c.selectFieldType(n, operandType, n.Field)
	if n.TestOnly {
		return types.BoolType
	}
	return resultType
}

func (c *checker) selectFieldType(n *ast.Select, operandType types.Type, field string) types.Type {
	switch operandType.Kind() {
	case types.DynKind, types.ErrorKind:
		return types.DynType
	case types.TypeParamKind:
		// An unconstrained operand pins to dyn for the selection.
		types.IsAssignable(c.mapping, operandType, types.DynType)
		return types.DynType
	case types.StructKind:
		structName := operandType.(*types.StructType).Name
		ft, ok := c.env.Provider.FindStructFieldType(structName, field)
		if !ok {
			c.errorf(n, diagnostics.NoSuchField,
				"undefined field '%s' on type '%s'", field, structName)
			return types.ErrorType
		}
		if ft.Hidden {
			c.errorf(n, diagnostics.NoSuchField,
				"field '%s' on type '%s' is not accessible", field, structName)
			return types.ErrorType
		}
		return ft.Type
	case types.MapKind:
		mt := operandType.(*types.MapType)
		if !types.IsAssignable(c.mapping, mt.Key, types.StringType) {
			c.errorf(n, diagnostics.TypeCheckError,
				"field selection requires a string-keyed map, found '%s'", mt)
			return types.ErrorType
		}
		return mt.Value
	case types.OptionalKind:
		inner := c.selectFieldType(n, operandType.(*types.OptionalType).Elem, field)
		return types.NewOptionalType(inner)
	default:
		c.errorf(n, diagnostics.TypeCheckError,
			"type '%s' does not support field selection", operandType)
		return types.ErrorType
	}
}

func memberName(e ast.Expr) (string, bool) {
	switch n := e.(type) {
	case *ast.Ident:
		return n.Name, true
	case *ast.Select:
		if n.TestOnly {
			return "", false
		}
		prefix, ok := memberName(n.Operand)
		if !ok {
			return "", false
		}
		return prefix + "." + n.Field, true
	default:
		return "", false
	}
}

func (c *checker) checkList(n *ast.List) types.Type {
	var elemType types.Type
	for i, elem := range n.Elements {
		t := c.substituted(c.check(elem))
		if n.IsOptionalIndex(i) {
			if opt, ok := t.(*types.OptionalType); ok {
				t = opt.Elem
			} else if !types.IsDynOrError(t) {
				c.errorf(elem, diagnostics.TypeCheckError,
					"optional list element must be optional(...), found '%s'", t)
				continue
			}
		}
		elemType = types.Join(elemType, t)
	}
	if elemType == nil {
		elemType = c.newTypeVar()
	}
	return types.NewListType(elemType)
}

func (c *checker) checkComprehension(n *ast.Comprehension) types.Type {
	rangeType := c.substituted(c.check(n.IterRange))
	accuType := c.check(n.AccuInit)

	var iterType types.Type
	switch r := rangeType.(type) {
	case *types.ListType:
		iterType = r.Elem
	case *types.MapType:
		// Iteration visits the map's keys.
		iterType = r.Key
	default:
		if types.IsDynOrError(rangeType) || rangeType.Kind() == types.TypeParamKind {
			iterType = types.DynType
		} else {
			c.errorf(n.IterRange, diagnostics.TypeCheckError,
				"expected a list or a map, found '%s'", rangeType)
			iterType = types.ErrorType
		}
	}

	outer := c.scope
	c.scope = outer.Child()
	c.scope.ShadowVariable(decls.NewVariable(n.AccuVar, accuType))
	c.scope.ShadowVariable(decls.NewVariable(n.IterVar, iterType))

	condType := c.substituted(c.check(n.LoopCond))
	if !types.IsAssignable(c.mapping, types.BoolType, condType) {
		c.errorf(n.LoopCond, diagnostics.TypeCheckError,
			"comprehension condition must be bool, found '%s'", condType)
	}
	stepType := c.substituted(c.check(n.LoopStep))
	if !types.IsAssignable(c.mapping, accuType, stepType) {
		c.errorf(n.LoopStep, diagnostics.TypeCheckError,
			"comprehension step type '%s' is not assignable to accumulator type '%s'",
			stepType, accuType)
	}
	resultType := c.check(n.Result)

	c.scope = outer
	return resultType
}

// substituted resolves any bindings accumulated so far for a cleaner view
// of the type in subsequent structural decisions.
func (c *checker) substituted(t types.Type) types.Type {
	return types.Substitute(c.mapping, t, false)
}

func (c *checker) newTypeVar() types.Type {
	c.freeTypeVar++
	return types.NewTypeParamType(fmt.Sprintf("_var%d", c.freeTypeVar))
}

func (c *checker) errorf(node ast.Expr, kind diagnostics.Kind, format string, args ...interface{}) {
	line, column := 0, 0
	var id int64
	if node != nil {
		id = node.ExprID()
		line, column = c.sourceInfo.Location(id)
	}
	err := diagnostics.NewError(kind, line, column, format, args...)
	err.ExprID = id
	c.errors = append(c.errors, err)
}
