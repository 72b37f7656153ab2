package desc

import "google.golang.org/protobuf/types/descriptorpb"

// FieldDescriptor is a view of one field of a message.
type FieldDescriptor struct {
	pool    *DescriptorPool
	message int
	index   int
}

func (fd FieldDescriptor) inner() *fieldInner {
	return &fd.pool.types.messages[fd.message].fields[fd.index]
}

// Name returns the name the field was declared with.
func (fd FieldDescriptor) Name() string {
	return fd.inner().proto.GetName()
}

// FullName returns the field's fully-qualified name.
func (fd FieldDescriptor) FullName() string {
	return fd.inner().fullName
}

// JSONName returns the field's JSON name: the declared json_name
// option if present, else the camel-cased field name.
func (fd FieldDescriptor) JSONName() string {
	return fd.inner().jsonName
}

// Number returns the field number.
func (fd FieldDescriptor) Number() int32 {
	return fd.inner().number
}

// Kind returns the field's declared type.
func (fd FieldDescriptor) Kind() Kind {
	return fd.inner().kind
}

// Cardinality returns optional, required, or repeated.
func (fd FieldDescriptor) Cardinality() Cardinality {
	return fd.inner().cardinality
}

// IsList reports whether the field holds a list of values: repeated
// and not a map.
func (fd FieldDescriptor) IsList() bool {
	fi := fd.inner()
	return fi.cardinality == CardinalityRepeated && !fi.isMap
}

// IsMap reports whether the field is a map field, i.e. a repeated
// field whose type is a synthetic map entry message.
func (fd FieldDescriptor) IsMap() bool {
	return fd.inner().isMap
}

// IsPacked reports whether list values use the packed encoding when
// this field is serialized. Decoding accepts both encodings either
// way.
func (fd FieldDescriptor) IsPacked() bool {
	return fd.inner().packed
}

// IsGroup reports whether the field uses the delimited group encoding.
func (fd FieldDescriptor) IsGroup() bool {
	return fd.inner().isGroup
}

// IsExtension reports whether this field is an extension. Always false
// for FieldDescriptor; ExtensionDescriptor reports true.
func (fd FieldDescriptor) IsExtension() bool {
	return false
}

// SupportsPresence reports whether the field distinguishes "explicitly
// set to the default" from "absent": all singular proto2 fields,
// message fields, and oneof members.
func (fd FieldDescriptor) SupportsPresence() bool {
	return fd.inner().presence
}

// ContainingMessage returns the message the field is declared in.
func (fd FieldDescriptor) ContainingMessage() MessageDescriptor {
	return MessageDescriptor{pool: fd.pool, index: fd.message}
}

// ContainingOneof returns the oneof the field is a member of, if any.
func (fd FieldDescriptor) ContainingOneof() (OneofDescriptor, bool) {
	fi := fd.inner()
	if fi.oneof < 0 {
		return OneofDescriptor{}, false
	}
	return OneofDescriptor{pool: fd.pool, message: fd.message, index: fi.oneof}, true
}

// MessageType returns the referenced message descriptor for message
// and group fields.
func (fd FieldDescriptor) MessageType() (MessageDescriptor, bool) {
	fi := fd.inner()
	if fi.kind != KindMessage {
		return MessageDescriptor{}, false
	}
	return MessageDescriptor{pool: fd.pool, index: fi.ref}, true
}

// EnumType returns the referenced enum descriptor for enum fields.
func (fd FieldDescriptor) EnumType() (EnumDescriptor, bool) {
	fi := fd.inner()
	if fi.kind != KindEnum {
		return EnumDescriptor{}, false
	}
	return EnumDescriptor{pool: fd.pool, index: fi.ref}, true
}

// DefaultValue returns the field's parsed proto2 default as a concrete
// Go scalar (float64, float32, int32, int64, uint32, uint64, bool,
// string, or []byte; enum defaults are the value's number as int32),
// or nil when the schema declares none.
func (fd FieldDescriptor) DefaultValue() interface{} {
	return fd.inner().defaultValue
}

// FieldDescriptorProto returns the raw descriptor the field was built
// from. Callers must not mutate it.
func (fd FieldDescriptor) FieldDescriptorProto() *descriptorpb.FieldDescriptorProto {
	return fd.inner().proto
}
