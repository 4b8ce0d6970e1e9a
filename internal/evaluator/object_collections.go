package evaluator

import (
	"sort"
	"strings"

	"github.com/funvibe/polex/internal/diagnostics"
	"github.com/funvibe/polex/internal/types"
)

type List struct {
	Elements []Object
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.Inspect()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (l *List) RuntimeType() types.Type {
	var elem types.Type
	for _, e := range l.Elements {
		elem = types.Join(elem, e.RuntimeType())
	}
	if elem == nil {
		elem = types.DynType
	}
	return types.NewListType(elem)
}
func (l *List) Equal(other Object) bool {
	o, ok := other.(*List)
	if !ok || len(o.Elements) != len(l.Elements) {
		return false
	}
	for i, e := range l.Elements {
		if !e.Equal(o.Elements[i]) {
			return false
		}
	}
	return true
}

// Get returns the element at index i, bounds-checked.
func (l *List) Get(i int64) Object {
	if i < 0 || i >= int64(len(l.Elements)) {
		return newError(diagnostics.OutOfBounds, "index %d out of bounds [0, %d)", i, len(l.Elements))
	}
	return l.Elements[i]
}

// mapKey is the canonical comparable form of a map key. Numerically equal
// int and uint keys canonicalize to the same key.
type mapKey struct {
	kind byte // 'b', 'i', 'u', 's'
	b    bool
	i    int64
	u    uint64
	s    string
}

func mapKeyOf(obj Object) (mapKey, *Error) {
	switch k := obj.(type) {
	case *Boolean:
		return mapKey{kind: 'b', b: k.Value}, nil
	case *Integer:
		return mapKey{kind: 'i', i: k.Value}, nil
	case *UInt:
		if k.Value <= 9223372036854775807 {
			return mapKey{kind: 'i', i: int64(k.Value)}, nil
		}
		return mapKey{kind: 'u', u: k.Value}, nil
	case *String:
		return mapKey{kind: 's', s: k.Value}, nil
	default:
		return mapKey{}, newError(diagnostics.InvalidArgument,
			"unsupported map key type: %s", obj.Type())
	}
}

type mapEntry struct {
	key   Object
	value Object
}

// Map is an insertion-ordered hash map with value-equality keys. Duplicate
// writes keep the original key position; the last written value wins.
type Map struct {
	entries []mapEntry
	index   map[mapKey]int
}

func NewMap() *Map {
	return &Map{index: make(map[mapKey]int)}
}

func (m *Map) Type() ObjectType { return MAP_OBJ }
func (m *Map) Inspect() string {
	parts := make([]string, len(m.entries))
	for i, e := range m.entries {
		parts[i] = e.key.Inspect() + ": " + e.value.Inspect()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
func (m *Map) RuntimeType() types.Type {
	var key, value types.Type
	for _, e := range m.entries {
		key = types.Join(key, e.key.RuntimeType())
		value = types.Join(value, e.value.RuntimeType())
	}
	if key == nil {
		key = types.DynType
		value = types.DynType
	}
	return types.NewMapType(key, value)
}
func (m *Map) Equal(other Object) bool {
	o, ok := other.(*Map)
	if !ok || len(o.entries) != len(m.entries) {
		return false
	}
	for _, e := range m.entries {
		ov, found := o.Get(e.key)
		if !found || !e.value.Equal(ov) {
			return false
		}
	}
	return true
}

// Set writes a key; the last write wins.
func (m *Map) Set(key, value Object) *Error {
	mk, err := mapKeyOf(key)
	if err != nil {
		return err
	}
	if pos, ok := m.index[mk]; ok {
		m.entries[pos].value = value
		return nil
	}
	m.index[mk] = len(m.entries)
	m.entries = append(m.entries, mapEntry{key: key, value: value})
	return nil
}

// Get looks a key up by value equality.
func (m *Map) Get(key Object) (Object, bool) {
	mk, err := mapKeyOf(key)
	if err != nil {
		return nil, false
	}
	pos, ok := m.index[mk]
	if !ok {
		return nil, false
	}
	return m.entries[pos].value, true
}

// Len returns the entry count.
func (m *Map) Len() int { return len(m.entries) }

// Keys returns the map's keys in a fixed total order, independent of
// insertion order, so comprehension iteration is deterministic.
func (m *Map) Keys() []Object {
	keys := make([]Object, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.key
	}
	sort.SliceStable(keys, func(a, b int) bool {
		ka, _ := mapKeyOf(keys[a])
		kb, _ := mapKeyOf(keys[b])
		if ka.kind != kb.kind {
			return ka.kind < kb.kind
		}
		switch ka.kind {
		case 'b':
			return !ka.b && kb.b
		case 'i':
			return ka.i < kb.i
		case 'u':
			return ka.u < kb.u
		default:
			return ka.s < kb.s
		}
	})
	return keys
}

// Optional is a present-or-absent value.
type Optional struct {
	value   Object
	present bool
}

func NewOptionalOf(value Object) *Optional { return &Optional{value: value, present: true} }

var OptionalNone = &Optional{}

func (o *Optional) Type() ObjectType { return OPTIONAL_OBJ }
func (o *Optional) Inspect() string {
	if !o.present {
		return "optional.none()"
	}
	return "optional.of(" + o.value.Inspect() + ")"
}
func (o *Optional) RuntimeType() types.Type {
	if !o.present {
		return types.NewOptionalType(types.DynType)
	}
	return types.NewOptionalType(o.value.RuntimeType())
}
func (o *Optional) Equal(other Object) bool {
	oo, ok := other.(*Optional)
	if !ok || oo.present != o.present {
		return false
	}
	return !o.present || o.value.Equal(oo.value)
}

// HasValue reports presence.
func (o *Optional) HasValue() bool { return o.present }

// GetValue returns the contained value; callers must check HasValue.
func (o *Optional) GetValue() Object { return o.value }
