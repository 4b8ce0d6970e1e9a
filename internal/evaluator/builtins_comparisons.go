package evaluator

import (
	"bytes"
	"math"

	"github.com/funvibe/polex/internal/decls"
	"github.com/funvibe/polex/internal/diagnostics"
)

// compareSameType orders two values of the same tag. The bool result is
// false when the pair is unordered (NaN).
func compareSameType(l, r Object) (int, bool) {
	switch a := l.(type) {
	case *Integer:
		b := r.(*Integer)
		switch {
		case a.Value < b.Value:
			return -1, true
		case a.Value > b.Value:
			return 1, true
		}
		return 0, true
	case *UInt:
		b := r.(*UInt)
		switch {
		case a.Value < b.Value:
			return -1, true
		case a.Value > b.Value:
			return 1, true
		}
		return 0, true
	case *Double:
		b := r.(*Double)
		if math.IsNaN(a.Value) || math.IsNaN(b.Value) {
			return 0, false
		}
		switch {
		case a.Value < b.Value:
			return -1, true
		case a.Value > b.Value:
			return 1, true
		}
		return 0, true
	case *String:
		b := r.(*String)
		switch {
		case a.Value < b.Value:
			return -1, true
		case a.Value > b.Value:
			return 1, true
		}
		return 0, true
	case *Bytes:
		return bytes.Compare(a.Value, r.(*Bytes).Value), true
	case *Boolean:
		b := r.(*Boolean)
		switch {
		case !a.Value && b.Value:
			return -1, true
		case a.Value && !b.Value:
			return 1, true
		}
		return 0, true
	case *Duration:
		b := r.(*Duration)
		switch {
		case a.Value < b.Value:
			return -1, true
		case a.Value > b.Value:
			return 1, true
		}
		return 0, true
	case *Timestamp:
		b := r.(*Timestamp)
		switch {
		case a.Value.Before(b.Value):
			return -1, true
		case a.Value.After(b.Value):
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// compareCrossNumeric orders mixed int/uint/double pairs by exact
// mathematical value.
func compareCrossNumeric(l, r Object) (int, bool) {
	switch a := l.(type) {
	case *Integer:
		switch b := r.(type) {
		case *UInt:
			if a.Value < 0 {
				return -1, true
			}
			au := uint64(a.Value)
			switch {
			case au < b.Value:
				return -1, true
			case au > b.Value:
				return 1, true
			}
			return 0, true
		case *Double:
			c := compareIntDouble(a.Value, b.Value)
			if c == 2 {
				return 0, false
			}
			return c, true
		}
	case *UInt:
		switch b := r.(type) {
		case *Integer:
			c, ok := compareCrossNumeric(b, a)
			return -c, ok
		case *Double:
			c := compareUintDouble(a.Value, b.Value)
			if c == 2 {
				return 0, false
			}
			return c, true
		}
	case *Double:
		switch b := r.(type) {
		case *Integer:
			c := compareIntDouble(b.Value, a.Value)
			if c == 2 {
				return 0, false
			}
			return -c, true
		case *UInt:
			c := compareUintDouble(b.Value, a.Value)
			if c == 2 {
				return 0, false
			}
			return -c, true
		}
	}
	return 0, false
}

func installComparisons(d *Dispatcher, heterogeneous bool) {
	type cmpSpec struct {
		op     string
		prefix string
		accept func(c int, ordered bool) bool
	}
	specs := []cmpSpec{
		{decls.Less, "less", func(c int, ok bool) bool { return ok && c < 0 }},
		{decls.LessEquals, "less_equals", func(c int, ok bool) bool { return ok && c <= 0 }},
		{decls.Greater, "greater", func(c int, ok bool) bool { return ok && c > 0 }},
		{decls.GreaterEqual, "greater_equals", func(c int, ok bool) bool { return ok && c >= 0 }},
	}
	sameTypeTags := map[string]ObjectType{
		"int":       INTEGER_OBJ,
		"uint":      UINT_OBJ,
		"double":    DOUBLE_OBJ,
		"string":    STRING_OBJ,
		"bytes":     BYTES_OBJ,
		"bool":      BOOLEAN_OBJ,
		"timestamp": TIMESTAMP_OBJ,
		"duration":  DURATION_OBJ,
	}
	crossTags := map[string][2]ObjectType{
		"int_uint":    {INTEGER_OBJ, UINT_OBJ},
		"int_double":  {INTEGER_OBJ, DOUBLE_OBJ},
		"uint_int":    {UINT_OBJ, INTEGER_OBJ},
		"uint_double": {UINT_OBJ, DOUBLE_OBJ},
		"double_int":  {DOUBLE_OBJ, INTEGER_OBJ},
		"double_uint": {DOUBLE_OBJ, UINT_OBJ},
	}
	for _, spec := range specs {
		accept := spec.accept
		for key, tag := range sameTypeTags {
			d.Add(spec.op, &Overload{
				ID:    spec.prefix + "_" + key,
				Arity: 2,
				Guard: guardTypes(tag, tag),
				Function: binary(func(l, r Object) Object {
					c, ok := compareSameType(l, r)
					return nativeBoolToBooleanObject(accept(c, ok))
				}),
			})
		}
		if heterogeneous {
			for key, tags := range crossTags {
				d.Add(spec.op, &Overload{
					ID:    spec.prefix + "_" + key,
					Arity: 2,
					Guard: guardTypes(tags[0], tags[1]),
					Function: binary(func(l, r Object) Object {
						c, ok := compareCrossNumeric(l, r)
						return nativeBoolToBooleanObject(accept(c, ok))
					}),
				})
			}
		}
	}

	d.Add(decls.Equals, &Overload{
		ID:    decls.OverloadEquals,
		Arity: 2,
		Function: binary(func(l, r Object) Object {
			return nativeBoolToBooleanObject(l.Equal(r))
		}),
	})
	d.Add(decls.NotEquals, &Overload{
		ID:    decls.OverloadNotEquals,
		Arity: 2,
		Function: binary(func(l, r Object) Object {
			return nativeBoolToBooleanObject(!l.Equal(r))
		}),
	})
}

func installContainers(d *Dispatcher) {
	d.Add(decls.Index,
		&Overload{
			ID:    decls.OverloadIndexList,
			Arity: 2,
			Guard: func(args []Object) bool {
				if args[0].Type() != LIST_OBJ {
					return false
				}
				t := args[1].Type()
				return t == INTEGER_OBJ || t == UINT_OBJ
			},
			Function: binary(func(l, r Object) Object {
				list := l.(*List)
				switch idx := r.(type) {
				case *Integer:
					return list.Get(idx.Value)
				case *UInt:
					if idx.Value > math.MaxInt64 {
						return newError(diagnostics.OutOfBounds, "index out of bounds")
					}
					return list.Get(int64(idx.Value))
				}
				return noSuchOverload(decls.Index, []Object{l, r})
			}),
		},
		&Overload{
			ID:    decls.OverloadIndexMap,
			Arity: 2,
			Guard: func(args []Object) bool { return args[0].Type() == MAP_OBJ },
			Function: binary(func(l, r Object) Object {
				if v, found := l.(*Map).Get(r); found {
					return v
				}
				return newError(diagnostics.NoSuchKey, "no such key: %s", r.Inspect())
			}),
		})

	d.Add(decls.In,
		&Overload{
			ID:    decls.OverloadInList,
			Arity: 2,
			Guard: func(args []Object) bool { return args[1].Type() == LIST_OBJ },
			Function: binary(func(l, r Object) Object {
				for _, e := range r.(*List).Elements {
					if e.Equal(l) {
						return TRUE
					}
				}
				return FALSE
			}),
		},
		&Overload{
			ID:    decls.OverloadInMap,
			Arity: 2,
			Guard: func(args []Object) bool { return args[1].Type() == MAP_OBJ },
			Function: binary(func(l, r Object) Object {
				_, found := r.(*Map).Get(l)
				return nativeBoolToBooleanObject(found)
			}),
		})

	sizeOf := func(args []Object) Object {
		switch v := args[0].(type) {
		case *String:
			count := 0
			for range v.Value {
				count++
			}
			return &Integer{Value: int64(count)}
		case *Bytes:
			return &Integer{Value: int64(len(v.Value))}
		case *List:
			return &Integer{Value: int64(len(v.Elements))}
		case *Map:
			return &Integer{Value: int64(v.Len())}
		}
		return noSuchOverload("size", args)
	}
	sizeGuard := func(args []Object) bool {
		switch args[0].Type() {
		case STRING_OBJ, BYTES_OBJ, LIST_OBJ, MAP_OBJ:
			return true
		}
		return false
	}
	for _, id := range []string{
		decls.OverloadSizeString, decls.OverloadSizeBytes,
		decls.OverloadSizeList, decls.OverloadSizeMap,
		decls.OverloadStringSize, decls.OverloadBytesSize,
		decls.OverloadListSize, decls.OverloadMapSize,
	} {
		d.Add("size", &Overload{ID: id, Arity: 1, Guard: sizeGuard, Function: sizeOf})
	}
}
