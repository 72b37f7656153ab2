package desc

import (
	"fmt"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protodyn/protodyn/desc/internal"
)

// MessageDescriptor is a view of one message in a pool.
type MessageDescriptor struct {
	pool  *DescriptorPool
	index int
}

func (md MessageDescriptor) inner() *messageInner {
	return &md.pool.types.messages[md.index]
}

// Pool returns the pool this message belongs to.
func (md MessageDescriptor) Pool() *DescriptorPool {
	return md.pool
}

// Name returns the message's short name.
func (md MessageDescriptor) Name() string {
	return md.inner().proto.GetName()
}

// FullName returns the message's fully-qualified name, without a
// leading dot.
func (md MessageDescriptor) FullName() string {
	return md.inner().fullName
}

// File returns the file the message is declared in.
func (md MessageDescriptor) File() FileDescriptor {
	return FileDescriptor{pool: md.pool, index: md.inner().file}
}

// ParentMessage returns the enclosing message, or false for a
// top-level message.
func (md MessageDescriptor) ParentMessage() (MessageDescriptor, bool) {
	parent := md.inner().parent
	if parent < 0 {
		return MessageDescriptor{}, false
	}
	return MessageDescriptor{pool: md.pool, index: parent}, true
}

// DescriptorProto returns the raw descriptor the message was built
// from. Callers must not mutate it.
func (md MessageDescriptor) DescriptorProto() *descriptorpb.DescriptorProto {
	return md.inner().proto
}

// Fields returns the message's fields in ascending field-number order.
func (md MessageDescriptor) Fields() []FieldDescriptor {
	n := len(md.inner().fields)
	out := make([]FieldDescriptor, n)
	for i := 0; i < n; i++ {
		out[i] = FieldDescriptor{pool: md.pool, message: md.index, index: i}
	}
	return out
}

// Field looks up a field by number.
func (md MessageDescriptor) Field(number int32) (FieldDescriptor, bool) {
	if i, ok := md.inner().fieldByNumber(number); ok {
		return FieldDescriptor{pool: md.pool, message: md.index, index: i}, true
	}
	return FieldDescriptor{}, false
}

// FieldByName looks up a field by the name it was declared with.
func (md MessageDescriptor) FieldByName(name string) (FieldDescriptor, bool) {
	if i, ok := md.inner().fieldsByName[name]; ok {
		return FieldDescriptor{pool: md.pool, message: md.index, index: i}, true
	}
	return FieldDescriptor{}, false
}

// FieldByJSONName looks up a field by its JSON name.
func (md MessageDescriptor) FieldByJSONName(name string) (FieldDescriptor, bool) {
	fields := md.inner().fields
	for i := range fields {
		if fields[i].jsonName == name {
			return FieldDescriptor{pool: md.pool, message: md.index, index: i}, true
		}
	}
	return FieldDescriptor{}, false
}

// Oneofs returns the message's oneof declarations, including the
// synthetic ones proto3 optional fields produce.
func (md MessageDescriptor) Oneofs() []OneofDescriptor {
	n := len(md.inner().oneofs)
	out := make([]OneofDescriptor, n)
	for i := 0; i < n; i++ {
		out[i] = OneofDescriptor{pool: md.pool, message: md.index, index: i}
	}
	return out
}

// IsMapEntry reports whether this message is the synthetic entry type
// of a map field.
func (md MessageDescriptor) IsMapEntry() bool {
	return md.inner().isMapEntry()
}

// MapEntryKeyField returns the key field of a map entry message. It
// panics if the message is not a map entry.
func (md MessageDescriptor) MapEntryKeyField() FieldDescriptor {
	if !md.IsMapEntry() {
		panic(fmt.Sprintf("desc: %s is not a map entry", md.FullName()))
	}
	return FieldDescriptor{pool: md.pool, message: md.index, index: 0}
}

// MapEntryValueField returns the value field of a map entry message. It
// panics if the message is not a map entry.
func (md MessageDescriptor) MapEntryValueField() FieldDescriptor {
	if !md.IsMapEntry() {
		panic(fmt.Sprintf("desc: %s is not a map entry", md.FullName()))
	}
	return FieldDescriptor{pool: md.pool, message: md.index, index: 1}
}

// ChildMessages returns the messages nested directly inside this one,
// including synthetic map entry messages.
func (md MessageDescriptor) ChildMessages() []MessageDescriptor {
	indices := md.inner().nestedMessages
	out := make([]MessageDescriptor, len(indices))
	for i, idx := range indices {
		out[i] = MessageDescriptor{pool: md.pool, index: idx}
	}
	return out
}

// ChildEnums returns the enums nested directly inside this message.
func (md MessageDescriptor) ChildEnums() []EnumDescriptor {
	indices := md.inner().nestedEnums
	out := make([]EnumDescriptor, len(indices))
	for i, idx := range indices {
		out[i] = EnumDescriptor{pool: md.pool, index: idx}
	}
	return out
}

// ChildExtensions returns the extensions declared inside this message,
// whatever message they extend.
func (md MessageDescriptor) ChildExtensions() []ExtensionDescriptor {
	indices := md.inner().nestedExtensions
	out := make([]ExtensionDescriptor, len(indices))
	for i, idx := range indices {
		out[i] = ExtensionDescriptor{pool: md.pool, index: idx}
	}
	return out
}

// Extensions returns every extension in the pool that extends this
// message, wherever declared.
func (md MessageDescriptor) Extensions() []ExtensionDescriptor {
	indices := md.inner().extendedBy
	out := make([]ExtensionDescriptor, len(indices))
	for i, idx := range indices {
		out[i] = ExtensionDescriptor{pool: md.pool, index: idx}
	}
	return out
}

// Extension looks up an extension of this message by field number.
func (md MessageDescriptor) Extension(number int32) (ExtensionDescriptor, bool) {
	for _, idx := range md.inner().extendedBy {
		if md.pool.types.extensions[idx].field.number == number {
			return ExtensionDescriptor{pool: md.pool, index: idx}, true
		}
	}
	return ExtensionDescriptor{}, false
}

// ExtensionByJSONName looks up an extension of this message by its
// bracketed JSON name, e.g. "[my.package.my_ext]".
func (md MessageDescriptor) ExtensionByJSONName(name string) (ExtensionDescriptor, bool) {
	for _, idx := range md.inner().extendedBy {
		if md.pool.types.extensions[idx].jsonName == name {
			return ExtensionDescriptor{pool: md.pool, index: idx}, true
		}
	}
	return ExtensionDescriptor{}, false
}

// ReservedRanges returns the message's reserved number ranges as
// declared.
func (md MessageDescriptor) ReservedRanges() []*descriptorpb.DescriptorProto_ReservedRange {
	return md.inner().proto.GetReservedRange()
}

// ReservedNames returns the message's reserved field names.
func (md MessageDescriptor) ReservedNames() []string {
	return md.inner().proto.GetReservedName()
}

// ExtensionRanges returns the message's declared extension number
// ranges.
func (md MessageDescriptor) ExtensionRanges() []*descriptorpb.DescriptorProto_ExtensionRange {
	return md.inner().proto.GetExtensionRange()
}

// OneofDescriptor is a view of one oneof declaration in a message.
type OneofDescriptor struct {
	pool    *DescriptorPool
	message int
	index   int
}

func (od OneofDescriptor) inner() *oneofInner {
	return &od.pool.types.messages[od.message].oneofs[od.index]
}

// Name returns the oneof's short name.
func (od OneofDescriptor) Name() string {
	return od.inner().proto.GetName()
}

// FullName returns the oneof's fully-qualified name.
func (od OneofDescriptor) FullName() string {
	return internal.FullName(od.pool.types.messages[od.message].fullName, od.Name())
}

// ContainingMessage returns the message the oneof is declared in.
func (od OneofDescriptor) ContainingMessage() MessageDescriptor {
	return MessageDescriptor{pool: od.pool, index: od.message}
}

// Fields returns the oneof's member fields in field-number order.
func (od OneofDescriptor) Fields() []FieldDescriptor {
	indices := od.inner().fields
	out := make([]FieldDescriptor, len(indices))
	for i, idx := range indices {
		out[i] = FieldDescriptor{pool: od.pool, message: od.message, index: idx}
	}
	return out
}

// OneofDescriptorProto returns the raw descriptor. Callers must not
// mutate it.
func (od OneofDescriptor) OneofDescriptorProto() *descriptorpb.OneofDescriptorProto {
	return od.inner().proto
}
