// Package evaluator implements the runtime value model and the tree-walking
// interpreter: strict and non-strict dispatch, three-valued logic,
// comprehension iteration with a budget, and unknown-attribute tracking.
package evaluator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/funvibe/polex/internal/diagnostics"
	"github.com/funvibe/polex/internal/types"
)

type ObjectType string

const (
	BOOLEAN_OBJ   = "BOOLEAN"
	INTEGER_OBJ   = "INTEGER"
	UINT_OBJ      = "UINT"
	DOUBLE_OBJ    = "DOUBLE"
	STRING_OBJ    = "STRING"
	BYTES_OBJ     = "BYTES"
	NULL_OBJ      = "NULL"
	LIST_OBJ      = "LIST"
	MAP_OBJ       = "MAP"
	MESSAGE_OBJ   = "MESSAGE"
	TYPE_OBJ      = "TYPE"
	DURATION_OBJ  = "DURATION"
	TIMESTAMP_OBJ = "TIMESTAMP"
	OPTIONAL_OBJ  = "OPTIONAL"
	ERROR_OBJ     = "ERROR"
	UNKNOWN_OBJ   = "UNKNOWN"
)

// Object is the tagged runtime value. Error and Unknown are first-class
// tags that flow through evaluation and merge per the three-valued rules.
type Object interface {
	Type() ObjectType
	Inspect() string
	RuntimeType() types.Type

	// Equal is deep equality. Cross-numeric comparisons use the exact
	// mathematical value; NaN is never equal to itself.
	Equal(Object) bool
}

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType        { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string         { return strconv.FormatBool(b.Value) }
func (b *Boolean) RuntimeType() types.Type { return types.BoolType }
func (b *Boolean) Equal(other Object) bool {
	o, ok := other.(*Boolean)
	return ok && o.Value == b.Value
}

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	NULL  = &Null{}
)

func nativeBoolToBooleanObject(v bool) *Boolean {
	if v {
		return TRUE
	}
	return FALSE
}

type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType        { return INTEGER_OBJ }
func (i *Integer) Inspect() string         { return strconv.FormatInt(i.Value, 10) }
func (i *Integer) RuntimeType() types.Type { return types.IntType }
func (i *Integer) Equal(other Object) bool { return numericEqual(i, other) }

type UInt struct {
	Value uint64
}

func (u *UInt) Type() ObjectType        { return UINT_OBJ }
func (u *UInt) Inspect() string         { return strconv.FormatUint(u.Value, 10) + "u" }
func (u *UInt) RuntimeType() types.Type { return types.UintType }
func (u *UInt) Equal(other Object) bool { return numericEqual(u, other) }

type Double struct {
	Value float64
}

func (d *Double) Type() ObjectType        { return DOUBLE_OBJ }
func (d *Double) Inspect() string         { return strconv.FormatFloat(d.Value, 'g', -1, 64) }
func (d *Double) RuntimeType() types.Type { return types.DoubleType }
func (d *Double) Equal(other Object) bool { return numericEqual(d, other) }

// numericEqual compares int, uint and double values by exact mathematical
// value.
func numericEqual(a, b Object) bool {
	switch x := a.(type) {
	case *Integer:
		switch y := b.(type) {
		case *Integer:
			return x.Value == y.Value
		case *UInt:
			return x.Value >= 0 && uint64(x.Value) == y.Value
		case *Double:
			return compareIntDouble(x.Value, y.Value) == 0
		}
	case *UInt:
		switch y := b.(type) {
		case *Integer:
			return y.Value >= 0 && uint64(y.Value) == x.Value
		case *UInt:
			return x.Value == y.Value
		case *Double:
			return compareUintDouble(x.Value, y.Value) == 0
		}
	case *Double:
		switch y := b.(type) {
		case *Integer:
			return compareIntDouble(y.Value, x.Value) == 0
		case *UInt:
			return compareUintDouble(y.Value, x.Value) == 0
		case *Double:
			return x.Value == y.Value
		}
	}
	return false
}

// compareIntDouble orders an int64 against a float64 without precision loss.
// The result is -1, 0 or 1; NaN compares as incomparable (2).
func compareIntDouble(i int64, d float64) int {
	if math.IsNaN(d) {
		return 2
	}
	if d < -9223372036854775808.0 {
		return 1
	}
	if d >= 9223372036854775808.0 {
		return -1
	}
	truncated := int64(d)
	if i < truncated {
		return -1
	}
	if i > truncated {
		return 1
	}
	frac := d - math.Trunc(d)
	if frac > 0 {
		return -1
	}
	if frac < 0 {
		return 1
	}
	return 0
}

func compareUintDouble(u uint64, d float64) int {
	if math.IsNaN(d) {
		return 2
	}
	if d < 0 {
		return 1
	}
	if d >= 18446744073709551616.0 {
		return -1
	}
	truncated := uint64(d)
	if u < truncated {
		return -1
	}
	if u > truncated {
		return 1
	}
	if d-math.Trunc(d) > 0 {
		return -1
	}
	return 0
}

type String struct {
	Value string
}

func (s *String) Type() ObjectType        { return STRING_OBJ }
func (s *String) Inspect() string         { return strconv.Quote(s.Value) }
func (s *String) RuntimeType() types.Type { return types.StringType }
func (s *String) Equal(other Object) bool {
	o, ok := other.(*String)
	return ok && o.Value == s.Value
}

type Bytes struct {
	Value []byte
}

func (b *Bytes) Type() ObjectType        { return BYTES_OBJ }
func (b *Bytes) Inspect() string         { return fmt.Sprintf("b%q", string(b.Value)) }
func (b *Bytes) RuntimeType() types.Type { return types.BytesType }
func (b *Bytes) Equal(other Object) bool {
	o, ok := other.(*Bytes)
	if !ok || len(o.Value) != len(b.Value) {
		return false
	}
	for i, v := range b.Value {
		if o.Value[i] != v {
			return false
		}
	}
	return true
}

type Null struct{}

func (n *Null) Type() ObjectType        { return NULL_OBJ }
func (n *Null) Inspect() string         { return "null" }
func (n *Null) RuntimeType() types.Type { return types.NullType }
func (n *Null) Equal(other Object) bool {
	_, ok := other.(*Null)
	return ok
}

type Duration struct {
	Value time.Duration
}

func (d *Duration) Type() ObjectType        { return DURATION_OBJ }
func (d *Duration) Inspect() string         { return d.Value.String() }
func (d *Duration) RuntimeType() types.Type { return types.DurationType }
func (d *Duration) Equal(other Object) bool {
	o, ok := other.(*Duration)
	return ok && o.Value == d.Value
}

type Timestamp struct {
	Value time.Time
}

func (t *Timestamp) Type() ObjectType        { return TIMESTAMP_OBJ }
func (t *Timestamp) Inspect() string         { return t.Value.UTC().Format(time.RFC3339Nano) }
func (t *Timestamp) RuntimeType() types.Type { return types.TimestampType }
func (t *Timestamp) Equal(other Object) bool {
	o, ok := other.(*Timestamp)
	return ok && o.Value.Equal(t.Value)
}

// TypeObject is the runtime value of a type literal.
type TypeObject struct {
	Of types.Type
}

func (t *TypeObject) Type() ObjectType        { return TYPE_OBJ }
func (t *TypeObject) Inspect() string         { return t.Of.String() }
func (t *TypeObject) RuntimeType() types.Type { return types.NewTypeType(t.Of) }
func (t *TypeObject) Equal(other Object) bool {
	o, ok := other.(*TypeObject)
	return ok && o.Of.Equal(t.Of)
}

// Error is a deferred evaluation failure. It may still be absorbed by a
// short-circuiting operator before reaching the root.
type Error struct {
	Kind    diagnostics.Kind
	Message string
	ExprID  int64
}

func (e *Error) Type() ObjectType        { return ERROR_OBJ }
func (e *Error) Inspect() string         { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }
func (e *Error) RuntimeType() types.Type { return types.ErrorType }
func (e *Error) Equal(other Object) bool { return false }

func newError(kind diagnostics.Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewErrorObject builds an error value; extensions and hosts use it from
// their overload implementations.
func NewErrorObject(kind diagnostics.Kind, format string, args ...interface{}) *Error {
	return newError(kind, format, args...)
}

func isError(obj Object) bool {
	return obj != nil && obj.Type() == ERROR_OBJ
}

func isUnknown(obj Object) bool {
	return obj != nil && obj.Type() == UNKNOWN_OBJ
}

// Unknown carries the attribute set the expression's outcome depends on and
// the IDs of the nodes that produced them.
type Unknown struct {
	Attrs   []*Attribute
	ExprIDs []int64
}

func (u *Unknown) Type() ObjectType        { return UNKNOWN_OBJ }
func (u *Unknown) RuntimeType() types.Type { return types.DynType }
func (u *Unknown) Inspect() string {
	parts := make([]string, len(u.Attrs))
	for i, a := range u.Attrs {
		parts[i] = a.String()
	}
	return "unknown{" + strings.Join(parts, ", ") + "}"
}
func (u *Unknown) Equal(other Object) bool {
	o, ok := other.(*Unknown)
	if !ok || len(o.Attrs) != len(u.Attrs) {
		return false
	}
	theirs := make(map[string]bool, len(o.Attrs))
	for _, a := range o.Attrs {
		theirs[a.String()] = true
	}
	for _, a := range u.Attrs {
		if !theirs[a.String()] {
			return false
		}
	}
	return true
}

// NewUnknown builds an unknown for a single attribute read.
func NewUnknown(exprID int64, attr *Attribute) *Unknown {
	return &Unknown{Attrs: []*Attribute{attr}, ExprIDs: []int64{exprID}}
}

// MergeUnknowns unions the attribute and ID sets of two unknowns.
func MergeUnknowns(a, b *Unknown) *Unknown {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	merged := &Unknown{}
	seen := make(map[string]bool)
	for _, src := range [][]*Attribute{a.Attrs, b.Attrs} {
		for _, attr := range src {
			key := attr.String()
			if !seen[key] {
				seen[key] = true
				merged.Attrs = append(merged.Attrs, attr)
			}
		}
	}
	seenID := make(map[int64]bool)
	for _, src := range [][]int64{a.ExprIDs, b.ExprIDs} {
		for _, id := range src {
			if !seenID[id] {
				seenID[id] = true
				merged.ExprIDs = append(merged.ExprIDs, id)
			}
		}
	}
	return merged
}
