package evaluator

import (
	"github.com/funvibe/polex/internal/ast"
	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/diagnostics"
	"github.com/funvibe/polex/internal/types"
)

// Evaluator walks a (typically checked) AST and produces a runtime object.
// The Evaluator itself is immutable and safe to share across goroutines;
// all per-evaluation scratch state lives in an evalState owned by one call.
type Evaluator struct {
	root    ast.Expr
	source  *ast.SourceInfo
	typeMap map[int64]types.Type
	refMap  map[int64]*ast.ReferenceInfo

	dispatcher *Dispatcher
	provider   *types.Provider

	// budget bounds comprehension iterations per evaluation; zero or
	// negative means unbounded.
	budget int64

	heterogeneousComparisons bool
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// IterationBudget bounds comprehension work per evaluation.
func IterationBudget(budget int64) Option {
	return func(e *Evaluator) { e.budget = budget }
}

// HeterogeneousComparisons toggles exact-math cross-numeric ordering.
func HeterogeneousComparisons(enabled bool) Option {
	return func(e *Evaluator) { e.heterogeneousComparisons = enabled }
}

// New builds an evaluator for a checked AST.
func New(checked *ast.CheckedAST, dispatcher *Dispatcher, provider *types.Provider, opts ...Option) *Evaluator {
	e := &Evaluator{
		root:       checked.Root,
		source:     checked.Source,
		typeMap:    checked.TypeMap,
		refMap:     checked.RefMap,
		dispatcher: dispatcher,
		provider:   provider,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewUnchecked builds an evaluator over an untyped AST; dispatch falls back
// to runtime type guards.
func NewUnchecked(parsed *ast.AST, dispatcher *Dispatcher, provider *types.Provider, opts ...Option) *Evaluator {
	e := &Evaluator{
		root:       parsed.Root,
		source:     parsed.Source,
		typeMap:    map[int64]types.Type{},
		refMap:     map[int64]*ast.ReferenceInfo{},
		dispatcher: dispatcher,
		provider:   provider,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// evalState is the per-evaluation scratch frame.
type evalState struct {
	vars      Activation
	patterns  []*AttributePattern
	partial   bool
	remaining int64
	limited   bool
	loopDepth int
}

// Eval evaluates the program against an activation. Evaluation failures are
// returned as an Error object, never as a panic.
func (e *Evaluator) Eval(act Activation) Object {
	if act == nil {
		act = EmptyActivation()
	}
	s := &evalState{
		vars:      act,
		remaining: e.budget,
		limited:   e.budget > 0,
	}
	if pa, ok := findPartial(act); ok {
		s.partial = true
		s.patterns = pa.UnknownAttributePatterns()
	}
	return e.eval(e.root, s)
}

func (e *Evaluator) eval(node ast.Expr, s *evalState) Object {
	switch n := node.(type) {
	case *ast.Literal:
		return constObject(n.Value)
	case *ast.Ident:
		return e.evalIdent(n.ID, n.Name, s)
	case *ast.Select:
		return e.evalSelect(n, s)
	case *ast.Call:
		return e.evalCall(n, s)
	case *ast.List:
		return e.evalList(n, s)
	case *ast.Struct:
		return e.evalStruct(n, s)
	case *ast.Comprehension:
		return e.evalComprehension(n, s)
	default:
		return newError(diagnostics.InvalidArgument, "unsupported expression node")
	}
}

func constObject(v ast.Constant) Object {
	switch v.Kind {
	case ast.BoolConst:
		return nativeBoolToBooleanObject(v.Bool)
	case ast.IntConst:
		return &Integer{Value: v.Int}
	case ast.UintConst:
		return &UInt{Value: v.Uint}
	case ast.DoubleConst:
		return &Double{Value: v.Double}
	case ast.StringConst:
		return &String{Value: v.Str}
	case ast.BytesConst:
		return &Bytes{Value: v.Bytes}
	default:
		return NULL
	}
}

// evalIdent resolves a (possibly qualified) name: checker-resolved enum
// constants and type literals first, then the activation, then unknown
// tracking for partial activations.
func (e *Evaluator) evalIdent(id int64, name string, s *evalState) Object {
	if ref, ok := e.refMap[id]; ok {
		if ref.Value != nil {
			return constObject(*ref.Value)
		}
		name = ref.Name
		if t, found := e.typeMap[id]; found {
			if tt, isType := t.(*types.TypeType); isType && tt.Of != nil {
				if _, bound := s.vars.ResolveName(name); !bound {
					return &TypeObject{Of: tt.Of}
				}
			}
		}
	}

	attr := NewAttribute(name)
	if s.partial && matchesPatterns(s.patterns, attr) {
		return NewUnknown(id, attr)
	}
	if obj, ok := s.vars.ResolveName(name); ok {
		return obj
	}
	// A bare type-literal name still resolves without checker annotations.
	if t, ok := e.provider.FindType(name); ok {
		return &TypeObject{Of: t}
	}
	if t, ok := types.SimpleTypeByName(name); ok {
		return &TypeObject{Of: t}
	}
	if s.partial {
		return NewUnknown(id, attr)
	}
	return newError(diagnostics.NoSuchAttribute, "no such attribute: %s", name)
}

// attrTrail reconstructs the attribute path a node spells, using resolved
// names where the checker provided them. Index steps refine the trail only
// for literal indexes; other shapes stop the refinement.
func (e *Evaluator) attrTrail(node ast.Expr) (*Attribute, bool) {
	switch n := node.(type) {
	case *ast.Ident:
		name := n.Name
		if ref, ok := e.refMap[n.ID]; ok && ref.Value == nil {
			name = ref.Name
		}
		return NewAttribute(name), true
	case *ast.Select:
		if ref, ok := e.refMap[n.ID]; ok && ref.Value == nil {
			return NewAttribute(ref.Name), true
		}
		base, ok := e.attrTrail(n.Operand)
		if !ok {
			return nil, false
		}
		return base.Extend(StringQualifier(n.Field)), true
	case *ast.Call:
		if n.Function != decls.Index || len(n.Args) != 2 {
			return nil, false
		}
		base, ok := e.attrTrail(n.Args[0])
		if !ok {
			return nil, false
		}
		lit, isLit := n.Args[1].(*ast.Literal)
		if !isLit {
			return nil, false
		}
		q, supported := QualifierOf(constObject(lit.Value))
		if !supported {
			return nil, false
		}
		return base.Extend(q), true
	default:
		return nil, false
	}
}

func (e *Evaluator) evalSelect(n *ast.Select, s *evalState) Object {
	// The checker may have resolved the whole chain as a qualified name.
	if ref, ok := e.refMap[n.ID]; ok {
		return e.evalIdent(n.ID, ref.Name, s)
	}

	operand := e.eval(n.Operand, s)

	if u, ok := operand.(*Unknown); ok {
		// A pure read trail keeps growing; merged unknowns pass through.
		if len(u.Attrs) == 1 && len(u.ExprIDs) <= 1 {
			return NewUnknown(n.ID, u.Attrs[0].Extend(StringQualifier(n.Field)))
		}
		return u
	}
	if isError(operand) {
		return operand
	}

	var full *Attribute
	if s.partial {
		if trail, ok := e.attrTrail(n.Operand); ok {
			full = trail.Extend(StringQualifier(n.Field))
			if matchesPatterns(s.patterns, full) {
				return NewUnknown(n.ID, full)
			}
		}
	}

	if n.TestOnly {
		return e.presenceTest(operand, n.Field)
	}
	result := e.selectField(operand, n.Field)
	// A failed read whose path a longer pattern could still match resolves
	// to unknown; the caller may supply the attribute later.
	if isError(result) && full != nil && potentiallyMatchesPatterns(s.patterns, full) {
		return NewUnknown(n.ID, full)
	}
	return result
}

func (e *Evaluator) presenceTest(operand Object, field string) Object {
	switch o := operand.(type) {
	case *Map:
		_, found := o.Get(&String{Value: field})
		return nativeBoolToBooleanObject(found)
	case *Message:
		_, set := o.GetField(field)
		return nativeBoolToBooleanObject(set)
	case *Optional:
		if !o.HasValue() {
			return FALSE
		}
		return e.presenceTest(o.GetValue(), field)
	default:
		return newError(diagnostics.InvalidArgument,
			"has() does not support type %s", operand.Type())
	}
}

func (e *Evaluator) selectField(operand Object, field string) Object {
	switch o := operand.(type) {
	case *Map:
		if v, found := o.Get(&String{Value: field}); found {
			return v
		}
		return newError(diagnostics.NoSuchKey, "no such key: %s", field)
	case *Message:
		if v, set := o.GetField(field); set {
			return v
		}
		if ft, declared := e.provider.FindStructFieldType(o.TypeName, field); declared {
			return ZeroValueOf(ft.Type)
		}
		return newError(diagnostics.NoSuchField, "no such field: %s", field)
	case *Optional:
		if !o.HasValue() {
			return OptionalNone
		}
		inner := e.selectField(o.GetValue(), field)
		if isError(inner) || isUnknown(inner) {
			return inner
		}
		return NewOptionalOf(inner)
	default:
		return newError(diagnostics.InvalidArgument,
			"type %s does not support field selection", operand.Type())
	}
}

func (e *Evaluator) evalList(n *ast.List, s *evalState) Object {
	var firstErr Object
	var unknown *Unknown
	elements := make([]Object, 0, len(n.Elements))
	for i, elem := range n.Elements {
		v := e.eval(elem, s)
		if isError(v) {
			if firstErr == nil {
				firstErr = v
			}
			continue
		}
		if u, ok := v.(*Unknown); ok {
			unknown = MergeUnknowns(unknown, u)
			continue
		}
		if n.IsOptionalIndex(i) {
			opt, ok := v.(*Optional)
			if !ok {
				if firstErr == nil {
					firstErr = newError(diagnostics.InvalidArgument,
						"optional list element must be optional, got %s", v.Type())
				}
				continue
			}
			if !opt.HasValue() {
				continue
			}
			v = opt.GetValue()
		}
		elements = append(elements, v)
	}
	if firstErr != nil {
		return firstErr
	}
	if unknown != nil {
		return unknown
	}
	return &List{Elements: elements}
}

func (e *Evaluator) evalStruct(n *ast.Struct, s *evalState) Object {
	if n.IsMap() {
		return e.evalMapLiteral(n, s)
	}
	return e.evalMessageLiteral(n, s)
}

func (e *Evaluator) evalMapLiteral(n *ast.Struct, s *evalState) Object {
	var firstErr Object
	var unknown *Unknown
	m := NewMap()
	for _, entry := range n.Entries {
		key := e.eval(entry.MapKey, s)
		value := e.eval(entry.Value, s)
		for _, v := range []Object{key, value} {
			if isError(v) && firstErr == nil {
				firstErr = v
			}
			if u, ok := v.(*Unknown); ok {
				unknown = MergeUnknowns(unknown, u)
			}
		}
		if firstErr != nil || unknown != nil {
			continue
		}
		if entry.Optional {
			opt, ok := value.(*Optional)
			if !ok {
				firstErr = newError(diagnostics.InvalidArgument,
					"optional map entry must be optional, got %s", value.Type())
				continue
			}
			if !opt.HasValue() {
				continue
			}
			value = opt.GetValue()
		}
		// Last write wins on duplicate keys.
		if err := m.Set(key, value); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return firstErr
	}
	if unknown != nil {
		return unknown
	}
	return m
}

func (e *Evaluator) evalMessageLiteral(n *ast.Struct, s *evalState) Object {
	typeName := n.TypeName
	if ref, ok := e.refMap[n.ID]; ok {
		typeName = ref.Name
	}
	declared, found := e.provider.FindType(typeName)
	if !found {
		return newError(diagnostics.MessageResolutionFailure,
			"unknown message type: %s", typeName)
	}

	var firstErr Object
	var unknown *Unknown
	// Well-known container messages construct as maps.
	if _, isMap := declared.(*types.MapType); isMap {
		mapNode := &ast.Struct{ID: n.ID, Entries: make([]*ast.StructEntry, len(n.Entries))}
		for i, entry := range n.Entries {
			mapNode.Entries[i] = &ast.StructEntry{
				ID:       entry.ID,
				MapKey:   &ast.Literal{ID: entry.ID, Value: ast.Constant{Kind: ast.StringConst, Str: entry.FieldName}},
				Value:    entry.Value,
				Optional: entry.Optional,
			}
		}
		return e.evalMapLiteral(mapNode, s)
	}

	st, isStruct := declared.(*types.StructType)
	if !isStruct {
		return newError(diagnostics.MessageResolutionFailure,
			"type %s does not support message construction", typeName)
	}
	msg := NewMessage(st.Name)
	for _, entry := range n.Entries {
		v := e.eval(entry.Value, s)
		if isError(v) {
			if firstErr == nil {
				firstErr = v
			}
			continue
		}
		if u, ok := v.(*Unknown); ok {
			unknown = MergeUnknowns(unknown, u)
			continue
		}
		if entry.Optional {
			opt, ok := v.(*Optional)
			if !ok {
				if firstErr == nil {
					firstErr = newError(diagnostics.InvalidArgument,
						"optional field must be optional, got %s", v.Type())
				}
				continue
			}
			if !opt.HasValue() {
				continue
			}
			v = opt.GetValue()
		}
		ft, declaredField := e.provider.FindStructFieldType(st.Name, entry.FieldName)
		if !declaredField {
			if firstErr == nil {
				firstErr = newError(diagnostics.NoSuchField,
					"no such field: %s", entry.FieldName)
			}
			continue
		}
		converted := adaptToFieldType(v, ft.Type)
		if isError(converted) {
			if firstErr == nil {
				firstErr = converted
			}
			continue
		}
		msg.SetField(entry.FieldName, converted)
	}
	if firstErr != nil {
		return firstErr
	}
	if unknown != nil {
		return unknown
	}
	return msg
}

// adaptToFieldType applies automatic wrapping and unwrapping rules when
// assigning to declared fields: scalars assign into wrapper fields
// directly, null clears them.
func adaptToFieldType(v Object, ft types.Type) Object {
	switch t := ft.(type) {
	case *types.WrapperType:
		if _, isNull := v.(*Null); isNull {
			return NULL
		}
		return adaptToFieldType(v, t.Elem)
	case *types.EnumType:
		if i, ok := v.(*Integer); ok {
			return i
		}
		return newError(diagnostics.InvalidArgument,
			"cannot assign %s to enum field", v.Type())
	default:
		return v
	}
}
