package desc

import "google.golang.org/protobuf/types/descriptorpb"

// ExtensionDescriptor is a view of one extension in a pool. It exposes
// the same field-shaped surface as FieldDescriptor so the two can be
// handled uniformly by reflective code.
type ExtensionDescriptor struct {
	pool  *DescriptorPool
	index int
}

func (xd ExtensionDescriptor) inner() *extensionInner {
	return &xd.pool.types.extensions[xd.index]
}

// Name returns the name the extension was declared with.
func (xd ExtensionDescriptor) Name() string {
	return xd.inner().field.proto.GetName()
}

// FullName returns the extension's fully-qualified name, scoped to
// wherever it was declared.
func (xd ExtensionDescriptor) FullName() string {
	return xd.inner().field.fullName
}

// JSONName returns the extension's JSON name: the full name in
// brackets, e.g. "[my.package.my_ext]".
func (xd ExtensionDescriptor) JSONName() string {
	return xd.inner().jsonName
}

// Number returns the extension's field number in the extendee's
// number space.
func (xd ExtensionDescriptor) Number() int32 {
	return xd.inner().field.number
}

// Kind returns the extension's declared type.
func (xd ExtensionDescriptor) Kind() Kind {
	return xd.inner().field.kind
}

// Cardinality returns optional, required, or repeated.
func (xd ExtensionDescriptor) Cardinality() Cardinality {
	return xd.inner().field.cardinality
}

// IsList reports whether the extension holds a list of values.
func (xd ExtensionDescriptor) IsList() bool {
	return xd.inner().field.cardinality == CardinalityRepeated
}

// IsMap reports whether the extension is a map field. Extensions can
// never be maps; this exists for symmetry with FieldDescriptor.
func (xd ExtensionDescriptor) IsMap() bool {
	return false
}

// IsPacked reports whether list values use the packed encoding when
// this extension is serialized.
func (xd ExtensionDescriptor) IsPacked() bool {
	return xd.inner().field.packed
}

// IsGroup reports whether the extension uses the delimited group
// encoding.
func (xd ExtensionDescriptor) IsGroup() bool {
	return xd.inner().field.isGroup
}

// IsExtension reports true.
func (xd ExtensionDescriptor) IsExtension() bool {
	return true
}

// SupportsPresence reports whether the extension tracks explicit
// presence. All singular extensions do.
func (xd ExtensionDescriptor) SupportsPresence() bool {
	return xd.inner().field.presence
}

// Extendee returns the message the extension extends.
func (xd ExtensionDescriptor) Extendee() MessageDescriptor {
	return MessageDescriptor{pool: xd.pool, index: xd.inner().extendee}
}

// DeclaringMessage returns the message the extension is declared
// inside, or false for a file-level extension.
func (xd ExtensionDescriptor) DeclaringMessage() (MessageDescriptor, bool) {
	parent := xd.inner().parent
	if parent < 0 {
		return MessageDescriptor{}, false
	}
	return MessageDescriptor{pool: xd.pool, index: parent}, true
}

// File returns the file the extension is declared in.
func (xd ExtensionDescriptor) File() FileDescriptor {
	return FileDescriptor{pool: xd.pool, index: xd.inner().file}
}

// MessageType returns the referenced message descriptor for message
// and group extensions.
func (xd ExtensionDescriptor) MessageType() (MessageDescriptor, bool) {
	fi := &xd.inner().field
	if fi.kind != KindMessage {
		return MessageDescriptor{}, false
	}
	return MessageDescriptor{pool: xd.pool, index: fi.ref}, true
}

// EnumType returns the referenced enum descriptor for enum extensions.
func (xd ExtensionDescriptor) EnumType() (EnumDescriptor, bool) {
	fi := &xd.inner().field
	if fi.kind != KindEnum {
		return EnumDescriptor{}, false
	}
	return EnumDescriptor{pool: xd.pool, index: fi.ref}, true
}

// DefaultValue returns the extension's parsed proto2 default, or nil
// when the schema declares none. See FieldDescriptor.DefaultValue for
// the concrete types used.
func (xd ExtensionDescriptor) DefaultValue() interface{} {
	return xd.inner().field.defaultValue
}

// FieldDescriptorProto returns the raw descriptor the extension was
// built from. Callers must not mutate it.
func (xd ExtensionDescriptor) FieldDescriptorProto() *descriptorpb.FieldDescriptorProto {
	return xd.inner().field.proto
}
