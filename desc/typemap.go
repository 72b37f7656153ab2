package desc

import (
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protodyn/protodyn/desc/internal"
)

// typeKind tags entries in the pool's name table.
type typeKind int8

const (
	messageType typeKind = iota + 1
	enumType
	extensionType
	serviceType
)

// typeID is the internal handle for a registered type: which arena it
// lives in and its dense index there.
type typeID struct {
	kind  typeKind
	index int
}

// typeMap holds the pool's three type arenas plus the flat name table
// that resolves dotted references into them. Indices are stable once
// assembly completes; descriptor views are just (pool, index) pairs.
type typeMap struct {
	named      map[string]typeID
	messages   []messageInner
	enums      []enumInner
	extensions []extensionInner
}

func (tm *typeMap) addName(fullName string, id typeID) error {
	if _, exists := tm.named[fullName]; exists {
		return duplicateNameError(fullName)
	}
	tm.named[fullName] = id
	return nil
}

// resolveTypeName resolves a type reference the way protoc scopes it: a
// leading dot means the name is absolute; otherwise the reference is
// tried against each enclosing namespace, innermost first, down to the
// root.
func (tm *typeMap) resolveTypeName(scope, name string) (typeID, bool) {
	if len(name) > 0 && name[0] == '.' {
		id, ok := tm.named[internal.TrimLeadingDot(name)]
		return id, ok
	}
	for {
		if id, ok := tm.named[internal.FullName(scope, name)]; ok {
			return id, ok
		}
		if scope == "" {
			return typeID{}, false
		}
		scope = internal.Namespace(scope)
	}
}

type fileInner struct {
	proto      *descriptorpb.FileDescriptorProto
	messages   []int // top-level message indices
	enums      []int
	extensions []int
	services   []int
}

// proto3 reports whether the file uses proto3 field semantics. The
// syntax field is unset for proto2 files.
func (fi *fileInner) proto3() bool {
	return fi.proto.GetSyntax() == "proto3"
}

type messageInner struct {
	proto    *descriptorpb.DescriptorProto
	fullName string
	file     int
	parent   int // enclosing message index, -1 at top level

	fields       []fieldInner // sorted by field number
	fieldsByName map[string]int
	oneofs       []oneofInner

	nestedMessages   []int
	nestedEnums      []int
	nestedExtensions []int

	// extensions registered anywhere in the pool whose extendee is
	// this message, in registration order
	extendedBy []int
}

func (mi *messageInner) isMapEntry() bool {
	return mi.proto.GetOptions().GetMapEntry()
}

// fieldByNumber binary-searches the number-sorted field slice.
func (mi *messageInner) fieldByNumber(number int32) (int, bool) {
	lo, hi := 0, len(mi.fields)
	for lo < hi {
		mid := (lo + hi) / 2
		if mi.fields[mid].number < number {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(mi.fields) && mi.fields[lo].number == number {
		return lo, true
	}
	return 0, false
}

type fieldInner struct {
	proto    *descriptorpb.FieldDescriptorProto
	number   int32
	fullName string
	jsonName string

	kind Kind
	ref  int // message or enum arena index when kind warrants one

	cardinality Cardinality
	isGroup     bool
	isMap       bool
	packed      bool
	presence    bool
	oneof       int // index into the parent's oneofs, -1 if none

	// parsed proto2 default, as a concrete Go scalar (float64,
	// float32, int32, int64, uint32, uint64, bool, string, []byte);
	// nil when the schema declares none
	defaultValue interface{}
}

type oneofInner struct {
	proto  *descriptorpb.OneofDescriptorProto
	fields []int // indices into the parent's field slice
}

type enumInner struct {
	proto    *descriptorpb.EnumDescriptorProto
	fullName string
	file     int
	parent   int // enclosing message index, -1 at top level

	// value full names live in the enum's parent scope, not under the
	// enum itself
	valueFullNames []string
	valuesByNumber []int // value indices sorted by number
	defaultIndex   int   // the number-zero value, else the first declared
}

// valueByNumber binary-searches the number-sorted index slice and
// returns the index of the first value with the given number.
func (ei *enumInner) valueByNumber(number int32) (int, bool) {
	vals := ei.proto.GetValue()
	lo, hi := 0, len(ei.valuesByNumber)
	for lo < hi {
		mid := (lo + hi) / 2
		if vals[ei.valuesByNumber[mid]].GetNumber() < number {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(ei.valuesByNumber) {
		if i := ei.valuesByNumber[lo]; vals[i].GetNumber() == number {
			return i, true
		}
	}
	return 0, false
}

type extensionInner struct {
	field    fieldInner
	extendee int // message arena index
	file     int
	parent   int // declaring message index, -1 at file scope
	jsonName string
}

type serviceInner struct {
	proto    *descriptorpb.ServiceDescriptorProto
	fullName string
	file     int
	methods  []methodInner
}

type methodInner struct {
	proto  *descriptorpb.MethodDescriptorProto
	input  int // message arena indices
	output int
}
