package dynamic

import (
	"bytes"
	"fmt"
	"math"
	"sort"
)

type valueKind int8

const (
	kindInvalid valueKind = iota
	kindDouble
	kindFloat
	kindInt32
	kindInt64
	kindUint32
	kindUint64
	kindBool
	kindString
	kindBytes
	kindEnum
	kindMessage
	kindList
	kindMap
)

var valueKindNames = map[valueKind]string{
	kindInvalid: "invalid",
	kindDouble:  "double",
	kindFloat:   "float",
	kindInt32:   "int32",
	kindInt64:   "int64",
	kindUint32:  "uint32",
	kindUint64:  "uint64",
	kindBool:    "bool",
	kindString:  "string",
	kindBytes:   "bytes",
	kindEnum:    "enum",
	kindMessage: "message",
	kindList:    "list",
	kindMap:     "map",
}

func (k valueKind) String() string {
	if s, ok := valueKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("valueKind(%d)", int8(k))
}

// Value is a single protobuf value: one of the scalar payloads, an
// enum number, a message, a list, or a map. The zero Value is invalid
// and reports false from every accessor.
//
// Values are shallow: lists, maps, bytes, and messages are shared, not
// copied, when a Value is copied.
type Value struct {
	kind valueKind
	num  uint64 // scalar payload; floats stored as IEEE bits
	str  string
	bin  []byte
	list []Value
	mp   map[MapKey]Value
	msg  *Message
}

// ValueOfDouble returns a Value holding a double.
func ValueOfDouble(v float64) Value {
	return Value{kind: kindDouble, num: math.Float64bits(v)}
}

// ValueOfFloat returns a Value holding a float.
func ValueOfFloat(v float32) Value {
	return Value{kind: kindFloat, num: uint64(math.Float32bits(v))}
}

// ValueOfInt32 returns a Value holding an int32, sint32, or sfixed32.
func ValueOfInt32(v int32) Value {
	return Value{kind: kindInt32, num: uint64(int64(v))}
}

// ValueOfInt64 returns a Value holding an int64, sint64, or sfixed64.
func ValueOfInt64(v int64) Value {
	return Value{kind: kindInt64, num: uint64(v)}
}

// ValueOfUint32 returns a Value holding a uint32 or fixed32.
func ValueOfUint32(v uint32) Value {
	return Value{kind: kindUint32, num: uint64(v)}
}

// ValueOfUint64 returns a Value holding a uint64 or fixed64.
func ValueOfUint64(v uint64) Value {
	return Value{kind: kindUint64, num: v}
}

// ValueOfBool returns a Value holding a bool.
func ValueOfBool(v bool) Value {
	var num uint64
	if v {
		num = 1
	}
	return Value{kind: kindBool, num: num}
}

// ValueOfString returns a Value holding a string.
func ValueOfString(v string) Value {
	return Value{kind: kindString, str: v}
}

// ValueOfBytes returns a Value holding a byte slice. The slice is
// retained, not copied.
func ValueOfBytes(v []byte) Value {
	return Value{kind: kindBytes, bin: v}
}

// ValueOfEnum returns a Value holding an enum number.
func ValueOfEnum(v int32) Value {
	return Value{kind: kindEnum, num: uint64(int64(v))}
}

// ValueOfMessage returns a Value holding a message. The message is
// retained, not copied.
func ValueOfMessage(v *Message) Value {
	return Value{kind: kindMessage, msg: v}
}

// ValueOfList returns a Value holding a list. A nil slice is a valid
// empty list.
func ValueOfList(v []Value) Value {
	return Value{kind: kindList, list: v}
}

// ValueOfMap returns a Value holding a map. A nil map is a valid empty
// map.
func ValueOfMap(v map[MapKey]Value) Value {
	return Value{kind: kindMap, mp: v}
}

// IsValid reports whether the Value holds anything at all.
func (v Value) IsValid() bool {
	return v.kind != kindInvalid
}

// AsDouble returns the double payload.
func (v Value) AsDouble() (float64, bool) {
	if v.kind != kindDouble {
		return 0, false
	}
	return math.Float64frombits(v.num), true
}

// AsFloat returns the float payload.
func (v Value) AsFloat() (float32, bool) {
	if v.kind != kindFloat {
		return 0, false
	}
	return math.Float32frombits(uint32(v.num)), true
}

// AsInt32 returns the int32 payload.
func (v Value) AsInt32() (int32, bool) {
	if v.kind != kindInt32 {
		return 0, false
	}
	return int32(v.num), true
}

// AsInt64 returns the int64 payload.
func (v Value) AsInt64() (int64, bool) {
	if v.kind != kindInt64 {
		return 0, false
	}
	return int64(v.num), true
}

// AsUint32 returns the uint32 payload.
func (v Value) AsUint32() (uint32, bool) {
	if v.kind != kindUint32 {
		return 0, false
	}
	return uint32(v.num), true
}

// AsUint64 returns the uint64 payload.
func (v Value) AsUint64() (uint64, bool) {
	if v.kind != kindUint64 {
		return 0, false
	}
	return v.num, true
}

// AsBool returns the bool payload.
func (v Value) AsBool() (bool, bool) {
	if v.kind != kindBool {
		return false, false
	}
	return v.num != 0, true
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	if v.kind != kindString {
		return "", false
	}
	return v.str, true
}

// AsBytes returns the bytes payload. The slice is shared with the
// Value.
func (v Value) AsBytes() ([]byte, bool) {
	if v.kind != kindBytes {
		return nil, false
	}
	return v.bin, true
}

// AsEnum returns the enum number payload.
func (v Value) AsEnum() (int32, bool) {
	if v.kind != kindEnum {
		return 0, false
	}
	return int32(v.num), true
}

// AsMessage returns the message payload. The message is shared with
// the Value.
func (v Value) AsMessage() (*Message, bool) {
	if v.kind != kindMessage {
		return nil, false
	}
	return v.msg, true
}

// AsList returns the list payload. The slice is shared with the Value.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != kindList {
		return nil, false
	}
	return v.list, true
}

// AsMap returns the map payload. The map is shared with the Value.
func (v Value) AsMap() (map[MapKey]Value, bool) {
	if v.kind != kindMap {
		return nil, false
	}
	return v.mp, true
}

// Equal reports whether two values hold the same kind and payload.
// Floating-point payloads compare by bit pattern, so NaN equals NaN
// and negative zero differs from zero. Messages compare field by
// field.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case kindInvalid:
		return true
	case kindString:
		return v.str == other.str
	case kindBytes:
		return bytes.Equal(v.bin, other.bin)
	case kindMessage:
		return v.msg.Equal(other.msg)
	case kindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case kindMap:
		if len(v.mp) != len(other.mp) {
			return false
		}
		for k, val := range v.mp {
			o, ok := other.mp[k]
			if !ok || !val.Equal(o) {
				return false
			}
		}
		return true
	default:
		return v.num == other.num
	}
}

func (v Value) String() string {
	switch v.kind {
	case kindInvalid:
		return "<invalid>"
	case kindDouble:
		return fmt.Sprintf("%v", math.Float64frombits(v.num))
	case kindFloat:
		return fmt.Sprintf("%v", math.Float32frombits(uint32(v.num)))
	case kindInt32, kindInt64, kindEnum:
		return fmt.Sprintf("%d", int64(v.num))
	case kindUint32, kindUint64:
		return fmt.Sprintf("%d", v.num)
	case kindBool:
		return fmt.Sprintf("%t", v.num != 0)
	case kindString:
		return fmt.Sprintf("%q", v.str)
	case kindBytes:
		return fmt.Sprintf("%q", v.bin)
	case kindMessage:
		return fmt.Sprintf("message %s", v.msg.Descriptor().FullName())
	case kindList:
		return fmt.Sprintf("list of %d", len(v.list))
	case kindMap:
		return fmt.Sprintf("map of %d", len(v.mp))
	default:
		return v.kind.String()
	}
}

// MapKey is a map field key: one of the integral kinds, bool, or
// string, the key kinds the map syntax permits. MapKey is comparable
// and usable as a Go map key.
type MapKey struct {
	kind valueKind
	num  uint64
	str  string
}

// MapKeyOfInt32 returns an int32, sint32, or sfixed32 key.
func MapKeyOfInt32(v int32) MapKey {
	return MapKey{kind: kindInt32, num: uint64(int64(v))}
}

// MapKeyOfInt64 returns an int64, sint64, or sfixed64 key.
func MapKeyOfInt64(v int64) MapKey {
	return MapKey{kind: kindInt64, num: uint64(v)}
}

// MapKeyOfUint32 returns a uint32 or fixed32 key.
func MapKeyOfUint32(v uint32) MapKey {
	return MapKey{kind: kindUint32, num: uint64(v)}
}

// MapKeyOfUint64 returns a uint64 or fixed64 key.
func MapKeyOfUint64(v uint64) MapKey {
	return MapKey{kind: kindUint64, num: v}
}

// MapKeyOfBool returns a bool key.
func MapKeyOfBool(v bool) MapKey {
	var num uint64
	if v {
		num = 1
	}
	return MapKey{kind: kindBool, num: num}
}

// MapKeyOfString returns a string key.
func MapKeyOfString(v string) MapKey {
	return MapKey{kind: kindString, str: v}
}

// AsInt32 returns the int32 payload.
func (k MapKey) AsInt32() (int32, bool) {
	if k.kind != kindInt32 {
		return 0, false
	}
	return int32(k.num), true
}

// AsInt64 returns the int64 payload.
func (k MapKey) AsInt64() (int64, bool) {
	if k.kind != kindInt64 {
		return 0, false
	}
	return int64(k.num), true
}

// AsUint32 returns the uint32 payload.
func (k MapKey) AsUint32() (uint32, bool) {
	if k.kind != kindUint32 {
		return 0, false
	}
	return uint32(k.num), true
}

// AsUint64 returns the uint64 payload.
func (k MapKey) AsUint64() (uint64, bool) {
	if k.kind != kindUint64 {
		return 0, false
	}
	return k.num, true
}

// AsBool returns the bool payload.
func (k MapKey) AsBool() (bool, bool) {
	if k.kind != kindBool {
		return false, false
	}
	return k.num != 0, true
}

// AsString returns the string payload.
func (k MapKey) AsString() (string, bool) {
	if k.kind != kindString {
		return "", false
	}
	return k.str, true
}

// Value converts the key back into a Value of the same kind.
func (k MapKey) Value() Value {
	return Value{kind: k.kind, num: k.num, str: k.str}
}

// mapKeyOfValue narrows a scalar Value into a MapKey. It fails for
// value kinds the map syntax does not allow as keys.
func mapKeyOfValue(v Value) (MapKey, bool) {
	switch v.kind {
	case kindInt32, kindInt64, kindUint32, kindUint64, kindBool:
		return MapKey{kind: v.kind, num: v.num}, true
	case kindString:
		return MapKey{kind: kindString, str: v.str}, true
	default:
		return MapKey{}, false
	}
}

// sortedMapKeys returns the map's keys in deterministic order: signed
// keys numerically, unsigned and bool keys numerically, string keys
// lexically. Keys of one map always share a kind.
func sortedMapKeys(mp map[MapKey]Value) []MapKey {
	keys := make([]MapKey, 0, len(mp))
	for k := range mp {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		switch a.kind {
		case kindString:
			return a.str < b.str
		case kindInt32, kindInt64:
			return int64(a.num) < int64(b.num)
		default:
			return a.num < b.num
		}
	})
	return keys
}
