package polex

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/polex/internal/ast"
	"github.com/funvibe/polex/internal/types"
)

// The YAML interchange form preserves structure and all annotations, so a
// typed AST round-trips losslessly between processes.

type astDocument struct {
	Source  string               `yaml:"source,omitempty"`
	MaxID   int64                `yaml:"max_id"`
	Root    *exprNode            `yaml:"root"`
	Offsets map[int64]int32      `yaml:"offsets,omitempty"`
	Types   map[int64]*typeNode  `yaml:"types,omitempty"`
	Refs    map[int64]*refNode   `yaml:"refs,omitempty"`
}

type exprNode struct {
	ID   int64  `yaml:"id"`
	Kind string `yaml:"kind"`

	// const
	Const *constNode `yaml:"const,omitempty"`

	// ident
	Name string `yaml:"name,omitempty"`

	// select
	Operand  *exprNode `yaml:"operand,omitempty"`
	Field    string    `yaml:"field,omitempty"`
	TestOnly bool      `yaml:"test_only,omitempty"`

	// call
	Function string      `yaml:"function,omitempty"`
	Target   *exprNode   `yaml:"target,omitempty"`
	Args     []*exprNode `yaml:"args,omitempty"`

	// list
	Elements        []*exprNode `yaml:"elements,omitempty"`
	OptionalIndices []int32     `yaml:"optional_indices,omitempty"`

	// struct
	TypeName string       `yaml:"type_name,omitempty"`
	Entries  []*entryNode `yaml:"entries,omitempty"`

	// comprehension
	IterVar   string    `yaml:"iter_var,omitempty"`
	IterRange *exprNode `yaml:"iter_range,omitempty"`
	AccuVar   string    `yaml:"accu_var,omitempty"`
	AccuInit  *exprNode `yaml:"accu_init,omitempty"`
	LoopCond  *exprNode `yaml:"loop_cond,omitempty"`
	LoopStep  *exprNode `yaml:"loop_step,omitempty"`
	Result    *exprNode `yaml:"result,omitempty"`
}

type entryNode struct {
	ID        int64     `yaml:"id"`
	FieldName string    `yaml:"field_name,omitempty"`
	MapKey    *exprNode `yaml:"map_key,omitempty"`
	Value     *exprNode `yaml:"value"`
	Optional  bool      `yaml:"optional,omitempty"`
}

type constNode struct {
	Kind   string  `yaml:"kind"`
	Bool   bool    `yaml:"bool,omitempty"`
	Int    int64   `yaml:"int,omitempty"`
	Uint   uint64  `yaml:"uint,omitempty"`
	Double float64 `yaml:"double,omitempty"`
	Str    string  `yaml:"str,omitempty"`
	Bytes  []byte  `yaml:"bytes,omitempty"`
}

type typeNode struct {
	Kind   string      `yaml:"kind"`
	Name   string      `yaml:"name,omitempty"`
	Params []*typeNode `yaml:"params,omitempty"`
}

type refNode struct {
	Name        string     `yaml:"name,omitempty"`
	OverloadIDs []string   `yaml:"overload_ids,omitempty"`
	Value       *constNode `yaml:"value,omitempty"`
}

// AstToYAML serializes a (typed) AST to its interchange form.
func AstToYAML(a *Ast) ([]byte, error) {
	doc := &astDocument{Source: a.source}
	doc.Root = encodeExpr(a.parsed.Root)
	doc.MaxID = a.parsed.MaxID
	if a.parsed.Source != nil {
		doc.Offsets = a.parsed.Source.Offsets
	}
	if a.checked != nil {
		doc.Types = make(map[int64]*typeNode, len(a.checked.TypeMap))
		for id, t := range a.checked.TypeMap {
			doc.Types[id] = encodeType(t)
		}
		doc.Refs = make(map[int64]*refNode, len(a.checked.RefMap))
		for id, ref := range a.checked.RefMap {
			rn := &refNode{Name: ref.Name, OverloadIDs: ref.OverloadIDs}
			if ref.Value != nil {
				rn.Value = encodeConst(*ref.Value)
			}
			doc.Refs[id] = rn
		}
	}
	return yaml.Marshal(doc)
}

// AstFromYAML restores an AST from its interchange form.
func AstFromYAML(data []byte) (*Ast, error) {
	var doc astDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding ast document: %w", err)
	}
	return decodeDocument(&doc)
}

func decodeDocument(doc *astDocument) (*Ast, error) {
	root, err := decodeExpr(doc.Root)
	if err != nil {
		return nil, err
	}
	source := ast.NewSourceInfo("<interchange>", doc.Source)
	for id, off := range doc.Offsets {
		source.SetOffset(id, off)
	}
	parsed := &ast.AST{Root: root, Source: source, MaxID: doc.MaxID}
	out := &Ast{parsed: parsed, source: doc.Source}
	if doc.Types != nil || doc.Refs != nil {
		checked := &ast.CheckedAST{
			AST:     parsed,
			TypeMap: make(map[int64]types.Type, len(doc.Types)),
			RefMap:  make(map[int64]*ast.ReferenceInfo, len(doc.Refs)),
		}
		for id, tn := range doc.Types {
			t, err := decodeType(tn)
			if err != nil {
				return nil, err
			}
			checked.TypeMap[id] = t
		}
		for id, rn := range doc.Refs {
			ref := &ast.ReferenceInfo{Name: rn.Name, OverloadIDs: rn.OverloadIDs}
			if rn.Value != nil {
				c, err := decodeConst(rn.Value)
				if err != nil {
					return nil, err
				}
				ref.Value = &c
			}
			checked.RefMap[id] = ref
		}
		out.checked = checked
	}
	return out, nil
}

func encodeExpr(e ast.Expr) *exprNode {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.Literal:
		return &exprNode{ID: n.ID, Kind: "const", Const: encodeConst(n.Value)}
	case *ast.Ident:
		return &exprNode{ID: n.ID, Kind: "ident", Name: n.Name}
	case *ast.Select:
		return &exprNode{ID: n.ID, Kind: "select",
			Operand: encodeExpr(n.Operand), Field: n.Field, TestOnly: n.TestOnly}
	case *ast.Call:
		node := &exprNode{ID: n.ID, Kind: "call",
			Function: n.Function, Target: encodeExpr(n.Target)}
		for _, arg := range n.Args {
			node.Args = append(node.Args, encodeExpr(arg))
		}
		return node
	case *ast.List:
		node := &exprNode{ID: n.ID, Kind: "list", OptionalIndices: n.OptionalIndices}
		for _, elem := range n.Elements {
			node.Elements = append(node.Elements, encodeExpr(elem))
		}
		return node
	case *ast.Struct:
		node := &exprNode{ID: n.ID, Kind: "struct", TypeName: n.TypeName}
		for _, entry := range n.Entries {
			node.Entries = append(node.Entries, &entryNode{
				ID:        entry.ID,
				FieldName: entry.FieldName,
				MapKey:    encodeExpr(entry.MapKey),
				Value:     encodeExpr(entry.Value),
				Optional:  entry.Optional,
			})
		}
		return node
	case *ast.Comprehension:
		return &exprNode{ID: n.ID, Kind: "comprehension",
			IterVar:   n.IterVar,
			IterRange: encodeExpr(n.IterRange),
			AccuVar:   n.AccuVar,
			AccuInit:  encodeExpr(n.AccuInit),
			LoopCond:  encodeExpr(n.LoopCond),
			LoopStep:  encodeExpr(n.LoopStep),
			Result:    encodeExpr(n.Result)}
	default:
		return nil
	}
}

func decodeExpr(n *exprNode) (ast.Expr, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case "const":
		c, err := decodeConst(n.Const)
		if err != nil {
			return nil, err
		}
		return &ast.Literal{ID: n.ID, Value: c}, nil
	case "ident":
		return &ast.Ident{ID: n.ID, Name: n.Name}, nil
	case "select":
		operand, err := decodeExpr(n.Operand)
		if err != nil {
			return nil, err
		}
		return &ast.Select{ID: n.ID, Operand: operand, Field: n.Field, TestOnly: n.TestOnly}, nil
	case "call":
		target, err := decodeExpr(n.Target)
		if err != nil {
			return nil, err
		}
		call := &ast.Call{ID: n.ID, Target: target, Function: n.Function}
		for _, arg := range n.Args {
			a, err := decodeExpr(arg)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, a)
		}
		return call, nil
	case "list":
		list := &ast.List{ID: n.ID, OptionalIndices: n.OptionalIndices}
		for _, elem := range n.Elements {
			e, err := decodeExpr(elem)
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, e)
		}
		return list, nil
	case "struct":
		st := &ast.Struct{ID: n.ID, TypeName: n.TypeName}
		for _, entry := range n.Entries {
			key, err := decodeExpr(entry.MapKey)
			if err != nil {
				return nil, err
			}
			value, err := decodeExpr(entry.Value)
			if err != nil {
				return nil, err
			}
			st.Entries = append(st.Entries, &ast.StructEntry{
				ID:        entry.ID,
				FieldName: entry.FieldName,
				MapKey:    key,
				Value:     value,
				Optional:  entry.Optional,
			})
		}
		return st, nil
	case "comprehension":
		iterRange, err := decodeExpr(n.IterRange)
		if err != nil {
			return nil, err
		}
		accuInit, err := decodeExpr(n.AccuInit)
		if err != nil {
			return nil, err
		}
		loopCond, err := decodeExpr(n.LoopCond)
		if err != nil {
			return nil, err
		}
		loopStep, err := decodeExpr(n.LoopStep)
		if err != nil {
			return nil, err
		}
		result, err := decodeExpr(n.Result)
		if err != nil {
			return nil, err
		}
		return &ast.Comprehension{ID: n.ID,
			IterVar: n.IterVar, IterRange: iterRange,
			AccuVar: n.AccuVar, AccuInit: accuInit,
			LoopCond: loopCond, LoopStep: loopStep, Result: result}, nil
	default:
		return nil, fmt.Errorf("unknown expression kind: %q", n.Kind)
	}
}

func encodeConst(c ast.Constant) *constNode {
	switch c.Kind {
	case ast.BoolConst:
		return &constNode{Kind: "bool", Bool: c.Bool}
	case ast.IntConst:
		return &constNode{Kind: "int", Int: c.Int}
	case ast.UintConst:
		return &constNode{Kind: "uint", Uint: c.Uint}
	case ast.DoubleConst:
		return &constNode{Kind: "double", Double: c.Double}
	case ast.StringConst:
		return &constNode{Kind: "string", Str: c.Str}
	case ast.BytesConst:
		return &constNode{Kind: "bytes", Bytes: c.Bytes}
	default:
		return &constNode{Kind: "null"}
	}
}

func decodeConst(n *constNode) (ast.Constant, error) {
	if n == nil {
		return ast.Constant{}, fmt.Errorf("missing const payload")
	}
	switch n.Kind {
	case "bool":
		return ast.Constant{Kind: ast.BoolConst, Bool: n.Bool}, nil
	case "int":
		return ast.Constant{Kind: ast.IntConst, Int: n.Int}, nil
	case "uint":
		return ast.Constant{Kind: ast.UintConst, Uint: n.Uint}, nil
	case "double":
		return ast.Constant{Kind: ast.DoubleConst, Double: n.Double}, nil
	case "string":
		return ast.Constant{Kind: ast.StringConst, Str: n.Str}, nil
	case "bytes":
		return ast.Constant{Kind: ast.BytesConst, Bytes: n.Bytes}, nil
	case "null":
		return ast.Constant{Kind: ast.NullConst}, nil
	default:
		return ast.Constant{}, fmt.Errorf("unknown const kind: %q", n.Kind)
	}
}

func encodeType(t types.Type) *typeNode {
	switch tt := t.(type) {
	case *types.ListType:
		return &typeNode{Kind: "list", Params: []*typeNode{encodeType(tt.Elem)}}
	case *types.MapType:
		return &typeNode{Kind: "map", Params: []*typeNode{encodeType(tt.Key), encodeType(tt.Value)}}
	case *types.OptionalType:
		return &typeNode{Kind: "optional", Params: []*typeNode{encodeType(tt.Elem)}}
	case *types.WrapperType:
		return &typeNode{Kind: "wrapper", Params: []*typeNode{encodeType(tt.Elem)}}
	case *types.OpaqueType:
		node := &typeNode{Kind: "opaque", Name: tt.Name}
		for _, p := range tt.Params {
			node.Params = append(node.Params, encodeType(p))
		}
		return node
	case *types.FunctionType:
		node := &typeNode{Kind: "function", Params: []*typeNode{encodeType(tt.Result)}}
		for _, p := range tt.Params {
			node.Params = append(node.Params, encodeType(p))
		}
		return node
	case *types.ParamType:
		return &typeNode{Kind: "type_param", Name: tt.Name}
	case *types.StructType:
		return &typeNode{Kind: "struct", Name: tt.Name}
	case *types.EnumType:
		return &typeNode{Kind: "enum", Name: tt.Name}
	case *types.TypeType:
		node := &typeNode{Kind: "type"}
		if tt.Of != nil {
			node.Params = []*typeNode{encodeType(tt.Of)}
		}
		return node
	default:
		return &typeNode{Kind: "simple", Name: t.String()}
	}
}

func decodeType(n *typeNode) (types.Type, error) {
	decodeParams := func(want int) ([]types.Type, error) {
		if want >= 0 && len(n.Params) != want {
			return nil, fmt.Errorf("type kind %q expects %d params, got %d", n.Kind, want, len(n.Params))
		}
		out := make([]types.Type, len(n.Params))
		for i, p := range n.Params {
			t, err := decodeType(p)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	}
	switch n.Kind {
	case "list":
		params, err := decodeParams(1)
		if err != nil {
			return nil, err
		}
		return types.NewListType(params[0]), nil
	case "map":
		params, err := decodeParams(2)
		if err != nil {
			return nil, err
		}
		return types.NewMapType(params[0], params[1]), nil
	case "optional":
		params, err := decodeParams(1)
		if err != nil {
			return nil, err
		}
		return types.NewOptionalType(params[0]), nil
	case "wrapper":
		params, err := decodeParams(1)
		if err != nil {
			return nil, err
		}
		return types.NewWrapperType(params[0]), nil
	case "opaque":
		params, err := decodeParams(-1)
		if err != nil {
			return nil, err
		}
		return types.NewOpaqueType(n.Name, params...), nil
	case "function":
		params, err := decodeParams(-1)
		if err != nil {
			return nil, err
		}
		if len(params) < 1 {
			return nil, fmt.Errorf("function type needs a result")
		}
		return types.NewFunctionType(params[0], params[1:]...), nil
	case "type_param":
		return types.NewTypeParamType(n.Name), nil
	case "struct":
		return types.NewStructType(n.Name), nil
	case "enum":
		return types.NewEnumType(n.Name), nil
	case "type":
		if len(n.Params) == 0 {
			return types.NewTypeType(nil), nil
		}
		params, err := decodeParams(1)
		if err != nil {
			return nil, err
		}
		return types.NewTypeType(params[0]), nil
	case "simple":
		if t, ok := types.SimpleTypeByName(n.Name); ok {
			return t, nil
		}
		if t, ok := types.WellKnownType(n.Name); ok {
			return t, nil
		}
		if n.Name == "!error!" {
			return types.ErrorType, nil
		}
		return nil, fmt.Errorf("unknown simple type: %q", n.Name)
	default:
		return nil, fmt.Errorf("unknown type kind: %q", n.Kind)
	}
}
