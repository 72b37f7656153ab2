package desc

import (
	"fmt"

	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protodyn/protodyn/codec"
)

// Kind identifies the declared type of a field: one of the fifteen
// scalar protobuf types, an enum, or a message. Group fields report
// KindMessage; use FieldDescriptor.IsGroup to distinguish the encoding.
type Kind int8

const (
	KindDouble Kind = iota + 1
	KindFloat
	KindInt32
	KindInt64
	KindUint32
	KindUint64
	KindSint32
	KindSint64
	KindFixed32
	KindFixed64
	KindSfixed32
	KindSfixed64
	KindBool
	KindString
	KindBytes
	KindEnum
	KindMessage
)

var kindNames = map[Kind]string{
	KindDouble:   "double",
	KindFloat:    "float",
	KindInt32:    "int32",
	KindInt64:    "int64",
	KindUint32:   "uint32",
	KindUint64:   "uint64",
	KindSint32:   "sint32",
	KindSint64:   "sint64",
	KindFixed32:  "fixed32",
	KindFixed64:  "fixed64",
	KindSfixed32: "sfixed32",
	KindSfixed64: "sfixed64",
	KindBool:     "bool",
	KindString:   "string",
	KindBytes:    "bytes",
	KindEnum:     "enum",
	KindMessage:  "message",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int8(k))
}

// WireType returns the wire type used to encode a single value of this
// kind. Group fields are the exception: they use the start-group wire
// type even though their kind is KindMessage.
func (k Kind) WireType() int8 {
	switch k {
	case KindDouble, KindFixed64, KindSfixed64:
		return codec.WireFixed64
	case KindFloat, KindFixed32, KindSfixed32:
		return codec.WireFixed32
	case KindInt32, KindInt64, KindUint32, KindUint64,
		KindSint32, KindSint64, KindBool, KindEnum:
		return codec.WireVarint
	case KindString, KindBytes, KindMessage:
		return codec.WireBytes
	default:
		panic(fmt.Sprintf("desc: invalid kind: %v", k))
	}
}

// IsPackable reports whether repeated values of this kind may use the
// packed encoding. Only numeric, bool, and enum values pack.
func (k Kind) IsPackable() bool {
	switch k {
	case KindString, KindBytes, KindMessage:
		return false
	default:
		return true
	}
}

func kindFromProtoType(t descriptorpb.FieldDescriptorProto_Type) (Kind, bool) {
	switch t {
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		return KindDouble, true
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		return KindFloat, true
	case descriptorpb.FieldDescriptorProto_TYPE_INT32:
		return KindInt32, true
	case descriptorpb.FieldDescriptorProto_TYPE_INT64:
		return KindInt64, true
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32:
		return KindUint32, true
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64:
		return KindUint64, true
	case descriptorpb.FieldDescriptorProto_TYPE_SINT32:
		return KindSint32, true
	case descriptorpb.FieldDescriptorProto_TYPE_SINT64:
		return KindSint64, true
	case descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		return KindFixed32, true
	case descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		return KindFixed64, true
	case descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		return KindSfixed32, true
	case descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		return KindSfixed64, true
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		return KindBool, true
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		return KindString, true
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		return KindBytes, true
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		return KindEnum, true
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE,
		descriptorpb.FieldDescriptorProto_TYPE_GROUP:
		return KindMessage, true
	default:
		return 0, false
	}
}

// Cardinality describes how many values a field may carry.
type Cardinality int8

const (
	CardinalityOptional Cardinality = iota + 1
	CardinalityRequired
	CardinalityRepeated
)

func (c Cardinality) String() string {
	switch c {
	case CardinalityOptional:
		return "optional"
	case CardinalityRequired:
		return "required"
	case CardinalityRepeated:
		return "repeated"
	default:
		return fmt.Sprintf("Cardinality(%d)", int8(c))
	}
}
