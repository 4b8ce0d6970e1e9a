package checker

import (
	"github.com/funvibe/polex/internal/ast"
	"github.com/funvibe/polex/internal/diagnostics"
	"github.com/funvibe/polex/internal/types"
)

func (c *checker) checkStruct(n *ast.Struct) types.Type {
	if n.IsMap() {
		return c.checkMapLiteral(n)
	}
	return c.checkMessageLiteral(n)
}

func (c *checker) checkMapLiteral(n *ast.Struct) types.Type {
	var keyType, valueType types.Type
	for _, entry := range n.Entries {
		kt := c.substituted(c.check(entry.MapKey))
		vt := c.substituted(c.check(entry.Value))
		if entry.Optional {
			if opt, ok := vt.(*types.OptionalType); ok {
				vt = opt.Elem
			} else if !types.IsDynOrError(vt) {
				c.errorf(entry.Value, diagnostics.TypeCheckError,
					"optional map entry must be optional(...), found '%s'", vt)
				continue
			}
		}
		keyType = types.Join(keyType, kt)
		valueType = types.Join(valueType, vt)
	}
	if keyType == nil {
		keyType = c.newTypeVar()
		valueType = c.newTypeVar()
	}
	return types.NewMapType(keyType, valueType)
}

func (c *checker) checkMessageLiteral(n *ast.Struct) types.Type {
	var declared types.Type
	var resolvedName string
	for _, candidate := range c.env.Container.ResolveCandidateNames(n.TypeName) {
		if t, ok := c.env.Provider.FindType(candidate); ok {
			declared = t
			resolvedName = candidate
			break
		}
	}
	if declared == nil {
		c.errorf(n, diagnostics.UndeclaredReference,
			"undeclared reference to type '%s'", n.TypeName)
		return types.ErrorType
	}
	c.refMap[n.ID] = &ast.ReferenceInfo{Name: resolvedName}

	// Well-known container messages construct as their semantic shape.
	if mt, ok := declared.(*types.MapType); ok {
		for _, entry := range n.Entries {
			c.check(entry.Value)
		}
		return mt
	}
	st, ok := declared.(*types.StructType)
	if !ok {
		c.errorf(n, diagnostics.TypeCheckError,
			"type '%s' does not support message construction", resolvedName)
		return types.ErrorType
	}

	for _, entry := range n.Entries {
		valueType := c.substituted(c.check(entry.Value))
		ft, found := c.env.Provider.FindStructFieldType(st.Name, entry.FieldName)
		if !found {
			c.errorf(n, diagnostics.NoSuchField,
				"undefined field '%s' on type '%s'", entry.FieldName, st.Name)
			continue
		}
		fieldType := ft.Type
		if entry.Optional {
			if opt, isOpt := valueType.(*types.OptionalType); isOpt {
				valueType = opt.Elem
			}
		}
		if !types.IsAssignable(c.mapping, fieldType, valueType) {
			c.errorf(entry.Value, diagnostics.TypeCheckError,
				"expected type of field '%s' is '%s' but provided type is '%s'",
				entry.FieldName, fieldType, valueType)
		}
	}
	return st
}
