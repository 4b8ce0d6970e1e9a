// Package jsonvalue converts JSON documents into runtime objects so hosts
// and the CLI can build activations from JSON without hand-rolled
// conversions.
package jsonvalue

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/funvibe/polex/internal/evaluator"
)

// DecodeDocument parses a JSON object into a name -> object binding map.
func DecodeDocument(data []byte) (map[string]interface{}, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON document")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("top-level JSON value must be an object")
	}
	bindings := make(map[string]interface{})
	var walkErr error
	root.ForEach(func(key, value gjson.Result) bool {
		obj, err := decodeResult(value)
		if err != nil {
			walkErr = fmt.Errorf("binding %q: %w", key.String(), err)
			return false
		}
		bindings[key.String()] = obj
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return bindings, nil
}

// Decode converts one JSON value into a runtime object.
func Decode(data []byte) (evaluator.Object, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON value")
	}
	return decodeResult(gjson.ParseBytes(data))
}

func decodeResult(r gjson.Result) (evaluator.Object, error) {
	switch r.Type {
	case gjson.Null:
		return evaluator.NULL, nil
	case gjson.True:
		return evaluator.TRUE, nil
	case gjson.False:
		return evaluator.FALSE, nil
	case gjson.String:
		return &evaluator.String{Value: r.String()}, nil
	case gjson.Number:
		// Integral numbers bind as int, everything else as double, which
		// keeps arithmetic overloads natural for JSON inputs.
		if n := r.Int(); float64(n) == r.Float() {
			return &evaluator.Integer{Value: n}, nil
		}
		return &evaluator.Double{Value: r.Float()}, nil
	case gjson.JSON:
		if r.IsArray() {
			var elements []evaluator.Object
			var walkErr error
			r.ForEach(func(_, value gjson.Result) bool {
				obj, err := decodeResult(value)
				if err != nil {
					walkErr = err
					return false
				}
				elements = append(elements, obj)
				return true
			})
			if walkErr != nil {
				return nil, walkErr
			}
			return &evaluator.List{Elements: elements}, nil
		}
		if r.IsObject() {
			m := evaluator.NewMap()
			var walkErr error
			r.ForEach(func(key, value gjson.Result) bool {
				obj, err := decodeResult(value)
				if err != nil {
					walkErr = err
					return false
				}
				if setErr := m.Set(&evaluator.String{Value: key.String()}, obj); setErr != nil {
					walkErr = fmt.Errorf("%s", setErr.Message)
					return false
				}
				return true
			})
			if walkErr != nil {
				return nil, walkErr
			}
			return m, nil
		}
	}
	return nil, fmt.Errorf("unsupported JSON value: %s", r.Raw)
}
