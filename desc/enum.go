package desc

import "google.golang.org/protobuf/types/descriptorpb"

// EnumDescriptor is a view of one enum in a pool.
type EnumDescriptor struct {
	pool  *DescriptorPool
	index int
}

func (ed EnumDescriptor) inner() *enumInner {
	return &ed.pool.types.enums[ed.index]
}

// Pool returns the pool this enum belongs to.
func (ed EnumDescriptor) Pool() *DescriptorPool {
	return ed.pool
}

// Name returns the enum's short name.
func (ed EnumDescriptor) Name() string {
	return ed.inner().proto.GetName()
}

// FullName returns the enum's fully-qualified name.
func (ed EnumDescriptor) FullName() string {
	return ed.inner().fullName
}

// File returns the file the enum is declared in.
func (ed EnumDescriptor) File() FileDescriptor {
	return FileDescriptor{pool: ed.pool, index: ed.inner().file}
}

// ParentMessage returns the enclosing message, or false for a
// top-level enum.
func (ed EnumDescriptor) ParentMessage() (MessageDescriptor, bool) {
	parent := ed.inner().parent
	if parent < 0 {
		return MessageDescriptor{}, false
	}
	return MessageDescriptor{pool: ed.pool, index: parent}, true
}

// EnumDescriptorProto returns the raw descriptor the enum was built
// from. Callers must not mutate it.
func (ed EnumDescriptor) EnumDescriptorProto() *descriptorpb.EnumDescriptorProto {
	return ed.inner().proto
}

// Values returns the enum's values in declaration order.
func (ed EnumDescriptor) Values() []EnumValueDescriptor {
	n := len(ed.inner().proto.GetValue())
	out := make([]EnumValueDescriptor, n)
	for i := 0; i < n; i++ {
		out[i] = EnumValueDescriptor{pool: ed.pool, enum: ed.index, index: i}
	}
	return out
}

// Value looks up a value by number. When several values share a number
// (allow_alias), the first in declaration order wins.
func (ed EnumDescriptor) Value(number int32) (EnumValueDescriptor, bool) {
	if i, ok := ed.inner().valueByNumber(number); ok {
		return EnumValueDescriptor{pool: ed.pool, enum: ed.index, index: i}, true
	}
	return EnumValueDescriptor{}, false
}

// ValueByName looks up a value by its short name.
func (ed EnumDescriptor) ValueByName(name string) (EnumValueDescriptor, bool) {
	for i, vd := range ed.inner().proto.GetValue() {
		if vd.GetName() == name {
			return EnumValueDescriptor{pool: ed.pool, enum: ed.index, index: i}, true
		}
	}
	return EnumValueDescriptor{}, false
}

// DefaultValue returns the value used when a field of this enum type
// is unset: the value numbered zero if one exists, else the first
// declared value.
func (ed EnumDescriptor) DefaultValue() EnumValueDescriptor {
	return EnumValueDescriptor{pool: ed.pool, enum: ed.index, index: ed.inner().defaultIndex}
}

// ReservedRanges returns the enum's reserved number ranges.
func (ed EnumDescriptor) ReservedRanges() []*descriptorpb.EnumDescriptorProto_EnumReservedRange {
	return ed.inner().proto.GetReservedRange()
}

// ReservedNames returns the enum's reserved value names.
func (ed EnumDescriptor) ReservedNames() []string {
	return ed.inner().proto.GetReservedName()
}

// EnumValueDescriptor is a view of one value of an enum.
type EnumValueDescriptor struct {
	pool  *DescriptorPool
	enum  int
	index int
}

// Enum returns the enum the value belongs to.
func (vd EnumValueDescriptor) Enum() EnumDescriptor {
	return EnumDescriptor{pool: vd.pool, index: vd.enum}
}

func (vd EnumValueDescriptor) proto() *descriptorpb.EnumValueDescriptorProto {
	return vd.pool.types.enums[vd.enum].proto.GetValue()[vd.index]
}

// Name returns the value's short name.
func (vd EnumValueDescriptor) Name() string {
	return vd.proto().GetName()
}

// FullName returns the value's fully-qualified name. Enum values scope
// to the enum's parent, so a value V of enum my.pkg.E is named
// "my.pkg.V".
func (vd EnumValueDescriptor) FullName() string {
	return vd.pool.types.enums[vd.enum].valueFullNames[vd.index]
}

// Number returns the value's number.
func (vd EnumValueDescriptor) Number() int32 {
	return vd.proto().GetNumber()
}

// EnumValueDescriptorProto returns the raw descriptor. Callers must
// not mutate it.
func (vd EnumValueDescriptor) EnumValueDescriptorProto() *descriptorpb.EnumValueDescriptorProto {
	return vd.proto()
}
