package evaluator

import (
	"fmt"
	"time"

	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// NativeToObject converts a host Go value into a runtime object. Well-known
// protobuf messages map to their semantic values: wrappers unwrap to their
// scalar, Value/Struct/ListValue to dynamic containers, Timestamp and
// Duration to their dedicated tags.
func NativeToObject(v interface{}) (Object, error) {
	switch val := v.(type) {
	case nil:
		return NULL, nil
	case Object:
		return val, nil
	case bool:
		return nativeBoolToBooleanObject(val), nil
	case int:
		return &Integer{Value: int64(val)}, nil
	case int32:
		return &Integer{Value: int64(val)}, nil
	case int64:
		return &Integer{Value: val}, nil
	case uint:
		return &UInt{Value: uint64(val)}, nil
	case uint32:
		return &UInt{Value: uint64(val)}, nil
	case uint64:
		return &UInt{Value: val}, nil
	case float32:
		return &Double{Value: float64(val)}, nil
	case float64:
		return &Double{Value: val}, nil
	case string:
		return &String{Value: val}, nil
	case []byte:
		return &Bytes{Value: val}, nil
	case time.Duration:
		return &Duration{Value: val}, nil
	case time.Time:
		return &Timestamp{Value: val}, nil
	case *durationpb.Duration:
		return &Duration{Value: val.AsDuration()}, nil
	case *timestamppb.Timestamp:
		return &Timestamp{Value: val.AsTime()}, nil
	case *wrapperspb.BoolValue:
		return nativeBoolToBooleanObject(val.GetValue()), nil
	case *wrapperspb.Int32Value:
		return &Integer{Value: int64(val.GetValue())}, nil
	case *wrapperspb.Int64Value:
		return &Integer{Value: val.GetValue()}, nil
	case *wrapperspb.UInt32Value:
		return &UInt{Value: uint64(val.GetValue())}, nil
	case *wrapperspb.UInt64Value:
		return &UInt{Value: val.GetValue()}, nil
	case *wrapperspb.FloatValue:
		return &Double{Value: float64(val.GetValue())}, nil
	case *wrapperspb.DoubleValue:
		return &Double{Value: val.GetValue()}, nil
	case *wrapperspb.StringValue:
		return &String{Value: val.GetValue()}, nil
	case *wrapperspb.BytesValue:
		return &Bytes{Value: val.GetValue()}, nil
	case *structpb.Value:
		return structValueToObject(val)
	case *structpb.Struct:
		return structToObject(val)
	case *structpb.ListValue:
		return listValueToObject(val)
	case *dynamic.Message:
		return dynamicToObject(val)
	case []interface{}:
		elements := make([]Object, len(val))
		for i, e := range val {
			obj, err := NativeToObject(e)
			if err != nil {
				return nil, err
			}
			elements[i] = obj
		}
		return &List{Elements: elements}, nil
	case []string:
		elements := make([]Object, len(val))
		for i, e := range val {
			elements[i] = &String{Value: e}
		}
		return &List{Elements: elements}, nil
	case []int64:
		elements := make([]Object, len(val))
		for i, e := range val {
			elements[i] = &Integer{Value: e}
		}
		return &List{Elements: elements}, nil
	case map[interface{}]interface{}:
		m := NewMap()
		for k, e := range val {
			keyObj, err := NativeToObject(k)
			if err != nil {
				return nil, err
			}
			valObj, err := NativeToObject(e)
			if err != nil {
				return nil, err
			}
			if setErr := m.Set(keyObj, valObj); setErr != nil {
				return nil, fmt.Errorf("%s", setErr.Message)
			}
		}
		return m, nil
	case map[string]interface{}:
		m := NewMap()
		for k, e := range val {
			obj, err := NativeToObject(e)
			if err != nil {
				return nil, err
			}
			if setErr := m.Set(&String{Value: k}, obj); setErr != nil {
				return nil, fmt.Errorf("%s", setErr.Message)
			}
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported native value type: %T", v)
	}
}

func structValueToObject(v *structpb.Value) (Object, error) {
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue, nil:
		return NULL, nil
	case *structpb.Value_BoolValue:
		return nativeBoolToBooleanObject(kind.BoolValue), nil
	case *structpb.Value_NumberValue:
		return &Double{Value: kind.NumberValue}, nil
	case *structpb.Value_StringValue:
		return &String{Value: kind.StringValue}, nil
	case *structpb.Value_StructValue:
		return structToObject(kind.StructValue)
	case *structpb.Value_ListValue:
		return listValueToObject(kind.ListValue)
	default:
		return nil, fmt.Errorf("unsupported struct value kind: %T", kind)
	}
}

func structToObject(s *structpb.Struct) (Object, error) {
	m := NewMap()
	for k, v := range s.GetFields() {
		obj, err := structValueToObject(v)
		if err != nil {
			return nil, err
		}
		if setErr := m.Set(&String{Value: k}, obj); setErr != nil {
			return nil, fmt.Errorf("%s", setErr.Message)
		}
	}
	return m, nil
}

func listValueToObject(l *structpb.ListValue) (Object, error) {
	elements := make([]Object, len(l.GetValues()))
	for i, v := range l.GetValues() {
		obj, err := structValueToObject(v)
		if err != nil {
			return nil, err
		}
		elements[i] = obj
	}
	return &List{Elements: elements}, nil
}

// dynamicToObject converts a protoreflect dynamic message to a struct value,
// carrying only the fields present on the wire.
func dynamicToObject(msg *dynamic.Message) (Object, error) {
	md := msg.GetMessageDescriptor()
	out := NewMessage(md.GetFullyQualifiedName())
	for _, fd := range md.GetFields() {
		if !msg.HasFieldName(fd.GetName()) {
			continue
		}
		raw := msg.GetFieldByName(fd.GetName())
		obj, err := NativeToObject(raw)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fd.GetName(), err)
		}
		out.SetField(fd.GetName(), obj)
	}
	return out, nil
}

// ObjectToNative converts a runtime object back to a plain Go value.
func ObjectToNative(obj Object) (interface{}, error) {
	switch val := obj.(type) {
	case *Null:
		return nil, nil
	case *Boolean:
		return val.Value, nil
	case *Integer:
		return val.Value, nil
	case *UInt:
		return val.Value, nil
	case *Double:
		return val.Value, nil
	case *String:
		return val.Value, nil
	case *Bytes:
		return val.Value, nil
	case *Duration:
		return val.Value, nil
	case *Timestamp:
		return val.Value, nil
	case *TypeObject:
		return val.Of.String(), nil
	case *List:
		out := make([]interface{}, len(val.Elements))
		for i, e := range val.Elements {
			nat, err := ObjectToNative(e)
			if err != nil {
				return nil, err
			}
			out[i] = nat
		}
		return out, nil
	case *Map:
		out := make(map[interface{}]interface{}, val.Len())
		for _, e := range val.entries {
			k, err := ObjectToNative(e.key)
			if err != nil {
				return nil, err
			}
			v, err := ObjectToNative(e.value)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case *Message:
		out := make(map[string]interface{}, len(val.Fields))
		for name, f := range val.Fields {
			nat, err := ObjectToNative(f)
			if err != nil {
				return nil, err
			}
			out[name] = nat
		}
		return out, nil
	case *Optional:
		if !val.HasValue() {
			return nil, nil
		}
		return ObjectToNative(val.GetValue())
	case *Error:
		return nil, fmt.Errorf("%s: %s", val.Kind, val.Message)
	case *Unknown:
		return nil, fmt.Errorf("value is unknown: %s", val.Inspect())
	default:
		return nil, fmt.Errorf("unsupported object type: %s", obj.Type())
	}
}
