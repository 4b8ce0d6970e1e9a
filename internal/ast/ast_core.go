// Package ast defines the expression nodes the parser produces and the
// checker annotates. Every node carries a stable 64-bit ID, unique within
// one AST, assigned during parsing and preserved by the checker.
package ast

import (
	"sort"

	"github.com/funvibe/polex/internal/types"
)

// Expr is the closed interface over all expression node variants.
type Expr interface {
	// ExprID returns the node's stable ID.
	ExprID() int64
	exprNode()
}

// ConstKind discriminates literal constants.
type ConstKind int

const (
	NullConst ConstKind = iota
	BoolConst
	IntConst
	UintConst
	DoubleConst
	StringConst
	BytesConst
)

// Constant is a typed literal value carried by a Literal node or recorded on
// a reference to an enum constant.
type Constant struct {
	Kind   ConstKind
	Bool   bool
	Int    int64
	Uint   uint64
	Double float64
	Str    string
	Bytes  []byte
}

// Literal is a constant expression.
type Literal struct {
	ID    int64
	Value Constant
}

func (e *Literal) ExprID() int64 { return e.ID }
func (e *Literal) exprNode()     {}

// Ident is a (possibly dotted-prefix resolved) identifier reference.
type Ident struct {
	ID   int64
	Name string
}

func (e *Ident) ExprID() int64 { return e.ID }
func (e *Ident) exprNode()     {}

// Select is field access `operand.field`. TestOnly selects are produced by
// the has() macro and evaluate to a presence bool instead of the value.
type Select struct {
	ID       int64
	Operand  Expr
	Field    string
	TestOnly bool
}

func (e *Select) ExprID() int64 { return e.ID }
func (e *Select) exprNode()     {}

// Call is a function invocation. Target is non-nil for receiver-style calls.
type Call struct {
	ID       int64
	Target   Expr
	Function string
	Args     []Expr
}

func (e *Call) ExprID() int64 { return e.ID }
func (e *Call) exprNode()     {}

// List is a list literal. OptionalIndices records `?`-prefixed elements.
type List struct {
	ID              int64
	Elements        []Expr
	OptionalIndices []int32
}

func (e *List) ExprID() int64 { return e.ID }
func (e *List) exprNode()     {}

// IsOptionalIndex reports whether element i carries the `?` prefix.
func (e *List) IsOptionalIndex(i int) bool {
	for _, oi := range e.OptionalIndices {
		if int(oi) == i {
			return true
		}
	}
	return false
}

// StructEntry is one field or map entry of a Struct node. FieldName is set
// for message construction; MapKey for map literals.
type StructEntry struct {
	ID        int64
	FieldName string
	MapKey    Expr
	Value     Expr
	Optional  bool
}

// Struct is construction syntax: `Name{f: v}` for messages, `{k: v}` for
// maps (TypeName empty).
type Struct struct {
	ID       int64
	TypeName string
	Entries  []*StructEntry
}

func (e *Struct) ExprID() int64 { return e.ID }
func (e *Struct) exprNode()     {}

// IsMap reports whether the node is a map literal rather than a message
// construction.
func (e *Struct) IsMap() bool { return e.TypeName == "" }

// Comprehension is the bounded fold every collection macro expands into.
type Comprehension struct {
	ID        int64
	IterVar   string
	IterRange Expr
	AccuVar   string
	AccuInit  Expr
	LoopCond  Expr
	LoopStep  Expr
	Result    Expr
}

func (e *Comprehension) ExprID() int64 { return e.ID }
func (e *Comprehension) exprNode()     {}

// SourceInfo carries the description of the source text and the byte offset
// of each node, so diagnostics can render line:column positions.
type SourceInfo struct {
	Description string
	Source      string
	LineOffsets []int32
	Offsets     map[int64]int32
}

func NewSourceInfo(description, source string) *SourceInfo {
	si := &SourceInfo{
		Description: description,
		Source:      source,
		Offsets:     make(map[int64]int32),
	}
	for i, ch := range source {
		if ch == '\n' {
			si.LineOffsets = append(si.LineOffsets, int32(i+1))
		}
	}
	return si
}

// SetOffset records the byte offset of a node.
func (si *SourceInfo) SetOffset(id int64, offset int32) {
	si.Offsets[id] = offset
}

// Location converts a node ID to a 1-based (line, column) pair. Missing
// positions report (0, 0).
func (si *SourceInfo) Location(id int64) (int, int) {
	off, ok := si.Offsets[id]
	if !ok {
		return 0, 0
	}
	line := 1
	lineStart := int32(0)
	idx := sort.Search(len(si.LineOffsets), func(i int) bool {
		return si.LineOffsets[i] > off
	})
	if idx > 0 {
		line = idx + 1
		lineStart = si.LineOffsets[idx-1]
	}
	return line, int(off-lineStart) + 1
}

// AST is a parsed, untyped expression tree.
type AST struct {
	Root   Expr
	Source *SourceInfo

	// MaxID is the highest node ID in use; ID allocation for macro-expanded
	// nodes continues from here.
	MaxID int64
}

// ReferenceInfo records what an identifier or call resolved to. For idents
// it is the fully-qualified declaration name and, for enum constants, the
// constant value. For calls it is the resolved overload id first, followed
// by any other unifiable candidates in ranking order.
type ReferenceInfo struct {
	Name        string
	OverloadIDs []string
	Value       *Constant
}

// CheckedAST is the checker output: the original tree plus a resolved type
// for every node ID and reference info for idents and calls.
type CheckedAST struct {
	*AST
	TypeMap map[int64]types.Type
	RefMap  map[int64]*ReferenceInfo
}

// RootType returns the annotated type of the root node.
func (c *CheckedAST) RootType() types.Type {
	if t, ok := c.TypeMap[c.Root.ExprID()]; ok {
		return t
	}
	return types.DynType
}
