package evaluator

import (
	"strings"

	"github.com/funvibe/polex/internal/types"
)

// Message is a constructed struct value. Fields holds the explicitly set
// fields; reads of declared-but-unset fields produce the zero value of the
// field's type, which the evaluator supplies from the provider.
type Message struct {
	TypeName   string
	Fields     map[string]Object
	fieldOrder []string
}

func NewMessage(typeName string) *Message {
	return &Message{TypeName: typeName, Fields: make(map[string]Object)}
}

func (m *Message) Type() ObjectType { return MESSAGE_OBJ }
func (m *Message) Inspect() string {
	parts := make([]string, 0, len(m.fieldOrder))
	for _, name := range m.fieldOrder {
		parts = append(parts, name+": "+m.Fields[name].Inspect())
	}
	return m.TypeName + "{" + strings.Join(parts, ", ") + "}"
}
func (m *Message) RuntimeType() types.Type { return types.NewStructType(m.TypeName) }
func (m *Message) Equal(other Object) bool {
	o, ok := other.(*Message)
	if !ok || o.TypeName != m.TypeName || len(o.Fields) != len(m.Fields) {
		return false
	}
	for name, v := range m.Fields {
		ov, found := o.Fields[name]
		if !found || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// SetField records an explicitly set field.
func (m *Message) SetField(name string, value Object) {
	if _, exists := m.Fields[name]; !exists {
		m.fieldOrder = append(m.fieldOrder, name)
	}
	m.Fields[name] = value
}

// GetField returns the explicitly set value of a field.
func (m *Message) GetField(name string) (Object, bool) {
	v, ok := m.Fields[name]
	return v, ok
}

// ZeroValueOf produces the proto3-style zero value for a declared type.
func ZeroValueOf(t types.Type) Object {
	switch tt := t.(type) {
	case *types.ListType:
		return &List{}
	case *types.MapType:
		return NewMap()
	case *types.OptionalType:
		return OptionalNone
	case *types.WrapperType:
		return NULL
	case *types.StructType:
		return NewMessage(tt.Name)
	case *types.EnumType:
		return &Integer{Value: 0}
	default:
		switch t.Kind() {
		case types.BoolKind:
			return FALSE
		case types.IntKind:
			return &Integer{Value: 0}
		case types.UintKind:
			return &UInt{Value: 0}
		case types.DoubleKind:
			return &Double{Value: 0}
		case types.StringKind:
			return &String{Value: ""}
		case types.BytesKind:
			return &Bytes{Value: nil}
		case types.DurationKind:
			return &Duration{Value: 0}
		case types.TimestampKind:
			return &Timestamp{}
		default:
			return NULL
		}
	}
}
