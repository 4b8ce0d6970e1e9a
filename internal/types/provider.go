package types

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"google.golang.org/protobuf/types/descriptorpb"
)

// FieldType describes one field of a nominal struct: its type and its field
// mask. Hidden fields resolve for construction but are rejected on select.
type FieldType struct {
	Type   Type
	Hidden bool
}

type structInfo struct {
	typ        *StructType
	fields     map[string]*FieldType
	descriptor *desc.MessageDescriptor
}

// Provider is the arena-owned table of nominal struct and enum descriptors,
// keyed by canonical name and deduplicated on registration. It backs type
// and field resolution in the checker and message construction in the
// evaluator.
type Provider struct {
	structs    map[string]*structInfo
	enums      map[string]map[string]int64
	enumValues map[string]int64
}

func NewProvider() *Provider {
	return &Provider{
		structs:    make(map[string]*structInfo),
		enums:      make(map[string]map[string]int64),
		enumValues: make(map[string]int64),
	}
}

// RegisterStruct declares a struct type from a plain field table.
// Re-registering the same name with an identical shape is a no-op;
// a conflicting shape is a configuration error.
func (p *Provider) RegisterStruct(name string, fields map[string]*FieldType) error {
	if existing, ok := p.structs[name]; ok {
		if !sameFields(existing.fields, fields) {
			return fmt.Errorf("struct type redeclared with different fields: %s", name)
		}
		return nil
	}
	p.structs[name] = &structInfo{
		typ:    NewStructType(name),
		fields: fields,
	}
	return nil
}

// RegisterMessage declares a struct type from a protobuf message descriptor,
// along with the enums and nested messages its non-map fields reference;
// enum and message types used only inside map fields are not registered.
// Well-known messages keep their semantic mapping and are not registered
// as structs.
func (p *Provider) RegisterMessage(md *desc.MessageDescriptor) error {
	name := md.GetFullyQualifiedName()
	if _, ok := WellKnownType(name); ok {
		return nil
	}
	if existing, ok := p.structs[name]; ok {
		if existing.descriptor != nil && existing.descriptor.GetFile().GetName() != md.GetFile().GetName() {
			return fmt.Errorf("message type registered from conflicting files: %s", name)
		}
		return nil
	}
	fields := make(map[string]*FieldType, len(md.GetFields()))
	for _, fd := range md.GetFields() {
		fields[fd.GetName()] = &FieldType{Type: p.fieldDescType(fd)}
	}
	p.structs[name] = &structInfo{
		typ:        NewStructType(name),
		fields:     fields,
		descriptor: md,
	}
	for _, fd := range md.GetFields() {
		if fd.GetEnumType() != nil {
			p.registerEnumDesc(fd.GetEnumType())
		}
		if nested := fd.GetMessageType(); nested != nil && !fd.IsMap() {
			if err := p.RegisterMessage(nested); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Provider) registerEnumDesc(ed *desc.EnumDescriptor) {
	name := ed.GetFullyQualifiedName()
	if _, ok := p.enums[name]; ok {
		return
	}
	entries := make(map[string]int64, len(ed.GetValues()))
	for _, v := range ed.GetValues() {
		entries[v.GetName()] = int64(v.GetNumber())
	}
	p.registerEnum(name, entries)
}

// RegisterEnum declares a named (symbol -> integer) set. Each entry also
// becomes addressable as a fully-qualified enum constant.
func (p *Provider) RegisterEnum(name string, entries map[string]int64) error {
	if existing, ok := p.enums[name]; ok {
		if !sameEntries(existing, entries) {
			return fmt.Errorf("enum type redeclared with different entries: %s", name)
		}
		return nil
	}
	p.registerEnum(name, entries)
	return nil
}

func (p *Provider) registerEnum(name string, entries map[string]int64) {
	p.enums[name] = entries
	for sym, val := range entries {
		p.enumValues[name+"."+sym] = val
	}
}

func (p *Provider) fieldDescType(fd *desc.FieldDescriptor) Type {
	if fd.IsMap() {
		return NewMapType(
			p.fieldDescType(fd.GetMapKeyType()),
			p.fieldDescType(fd.GetMapValueType()))
	}
	base := p.scalarFieldType(fd)
	if fd.IsRepeated() {
		return NewListType(base)
	}
	return base
}

func (p *Provider) scalarFieldType(fd *desc.FieldDescriptor) Type {
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return BoolType
	case descriptorpb.FieldDescriptorProto_TYPE_INT32,
		descriptorpb.FieldDescriptorProto_TYPE_INT64,
		descriptorpb.FieldDescriptorProto_TYPE_SINT32,
		descriptorpb.FieldDescriptorProto_TYPE_SINT64,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return IntType
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32,
		descriptorpb.FieldDescriptorProto_TYPE_UINT64,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED32,
		descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return UintType
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT,
		descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return DoubleType
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return StringType
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return BytesType
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		return NewEnumType(fd.GetEnumType().GetFullyQualifiedName())
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
		descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		mname := fd.GetMessageType().GetFullyQualifiedName()
		if wkt, ok := WellKnownType(mname); ok {
			return wkt
		}
		return NewStructType(mname)
	default:
		return DynType
	}
}

// FindType resolves a name to a declared struct, enum or well-known type.
func (p *Provider) FindType(name string) (Type, bool) {
	if wkt, ok := WellKnownType(name); ok {
		return wkt, true
	}
	if info, ok := p.structs[name]; ok {
		return info.typ, true
	}
	if _, ok := p.enums[name]; ok {
		return NewEnumType(name), true
	}
	return nil, false
}

// FindStructFieldType looks up a field on a declared struct type.
func (p *Provider) FindStructFieldType(structName, field string) (*FieldType, bool) {
	info, ok := p.structs[structName]
	if !ok {
		return nil, false
	}
	ft, ok := info.fields[field]
	return ft, ok
}

// StructFieldNames lists the declared fields of a struct type.
func (p *Provider) StructFieldNames(structName string) ([]string, bool) {
	info, ok := p.structs[structName]
	if !ok {
		return nil, false
	}
	names := make([]string, 0, len(info.fields))
	for n := range info.fields {
		names = append(names, n)
	}
	return names, true
}

// MessageDescriptor returns the protobuf descriptor behind a struct type,
// when it was registered from one.
func (p *Provider) MessageDescriptor(structName string) (*desc.MessageDescriptor, bool) {
	info, ok := p.structs[structName]
	if !ok || info.descriptor == nil {
		return nil, false
	}
	return info.descriptor, true
}

// FindEnumValue resolves a fully-qualified enum constant, e.g.
// "acme.Color.RED".
func (p *Provider) FindEnumValue(name string) (int64, bool) {
	v, ok := p.enumValues[name]
	return v, ok
}

func sameFields(a, b map[string]*FieldType) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || av.Hidden != bv.Hidden || !av.Type.Equal(bv.Type) {
			return false
		}
	}
	return true
}

func sameEntries(a, b map[string]int64) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		if bv, ok := b[k]; !ok || av != bv {
			return false
		}
	}
	return true
}
