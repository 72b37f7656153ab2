// Package dynamic implements a message type whose schema is supplied
// at runtime by a desc.DescriptorPool instead of generated code.
//
// A Message stores the values of its present fields keyed by field
// number. Accessors come in pairs: the plain form panics on programmer
// error (a descriptor from the wrong message, a value of the wrong
// kind) and the Try form returns the error instead. Malformed wire
// data is never a programmer error; Unmarshal and Merge always report
// it as a returned error and leave the message untouched.
package dynamic

import (
	"errors"
	"fmt"
	"sort"

	"github.com/protodyn/protodyn/desc"
)

var (
	// ErrUnknownField is returned when a name or number does not
	// identify a field of the message.
	ErrUnknownField = errors.New("dynamic: unknown field")
	// ErrWrongMessage is returned when a descriptor describes a field
	// of some other message type.
	ErrWrongMessage = errors.New("dynamic: descriptor belongs to a different message type")
	// ErrBadValueKind is returned when a value's kind does not match
	// the field it is being stored into.
	ErrBadValueKind = errors.New("dynamic: value does not match field kind")
)

// FieldRef is the surface shared by desc.FieldDescriptor and
// desc.ExtensionDescriptor: everything needed to store, retrieve, and
// serialize one field's value.
type FieldRef interface {
	Number() int32
	FullName() string
	JSONName() string
	Kind() desc.Kind
	Cardinality() desc.Cardinality
	IsList() bool
	IsMap() bool
	IsPacked() bool
	IsGroup() bool
	IsExtension() bool
	SupportsPresence() bool
	DefaultValue() interface{}
	MessageType() (desc.MessageDescriptor, bool)
	EnumType() (desc.EnumDescriptor, bool)
}

var (
	_ FieldRef = desc.FieldDescriptor{}
	_ FieldRef = desc.ExtensionDescriptor{}
)

// Message is a dynamically-typed protobuf message. The zero value is
// unusable; create instances with NewMessage.
//
// A Message is not safe for concurrent use.
type Message struct {
	md     desc.MessageDescriptor
	values map[int32]Value
}

// NewMessage creates an empty message of the given type.
func NewMessage(md desc.MessageDescriptor) *Message {
	return &Message{md: md, values: make(map[int32]Value)}
}

// Descriptor returns the message's type.
func (m *Message) Descriptor() desc.MessageDescriptor {
	return m.md
}

// fieldRef resolves a field number against the message's declared
// fields, then against the extensions registered for it.
func (m *Message) fieldRef(number int32) (FieldRef, bool) {
	if fd, ok := m.md.Field(number); ok {
		return fd, true
	}
	if xd, ok := m.md.Extension(number); ok {
		return xd, true
	}
	return nil, false
}

// GetField returns the field's value, synthesizing the schema default
// when the field is absent: the declared proto2 default or zero for
// scalars, an empty list or map for repeated fields. An absent
// singular message field yields the invalid Value, since message
// fields always track presence. GetField panics if fd describes a
// field of another message type.
func (m *Message) GetField(fd desc.FieldDescriptor) Value {
	v, err := m.TryGetField(fd)
	if err != nil {
		panic(err.Error())
	}
	return v
}

// TryGetField is like GetField but returns an error instead of
// panicking.
func (m *Message) TryGetField(fd desc.FieldDescriptor) (Value, error) {
	if err := m.checkField(fd); err != nil {
		return Value{}, err
	}
	return m.getValue(fd), nil
}

// GetFieldByName is like GetField, addressing the field by declared
// name.
func (m *Message) GetFieldByName(name string) Value {
	v, err := m.TryGetFieldByName(name)
	if err != nil {
		panic(err.Error())
	}
	return v
}

// TryGetFieldByName is like GetFieldByName but returns an error
// instead of panicking.
func (m *Message) TryGetFieldByName(name string) (Value, error) {
	fd, ok := m.md.FieldByName(name)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, m.md.FullName(), name)
	}
	return m.getValue(fd), nil
}

// GetFieldByNumber is like GetField, addressing the field by number.
func (m *Message) GetFieldByNumber(number int32) Value {
	v, err := m.TryGetFieldByNumber(number)
	if err != nil {
		panic(err.Error())
	}
	return v
}

// TryGetFieldByNumber is like GetFieldByNumber but returns an error
// instead of panicking.
func (m *Message) TryGetFieldByNumber(number int32) (Value, error) {
	fd, ok := m.md.Field(number)
	if !ok {
		return Value{}, fmt.Errorf("%w: %s field %d", ErrUnknownField, m.md.FullName(), number)
	}
	return m.getValue(fd), nil
}

// SetField stores a value into the field. Storing into a oneof member
// clears every other member of the oneof. SetField panics if fd
// describes a field of another message type or the value's kind does
// not match the field.
func (m *Message) SetField(fd desc.FieldDescriptor, v Value) {
	if err := m.TrySetField(fd, v); err != nil {
		panic(err.Error())
	}
}

// TrySetField is like SetField but returns an error instead of
// panicking.
func (m *Message) TrySetField(fd desc.FieldDescriptor, v Value) error {
	if err := m.checkField(fd); err != nil {
		return err
	}
	if err := checkValue(fd, v); err != nil {
		return err
	}
	m.setValue(fd, v)
	return nil
}

// SetFieldByName is like SetField, addressing the field by declared
// name.
func (m *Message) SetFieldByName(name string, v Value) {
	if err := m.TrySetFieldByName(name, v); err != nil {
		panic(err.Error())
	}
}

// TrySetFieldByName is like SetFieldByName but returns an error
// instead of panicking.
func (m *Message) TrySetFieldByName(name string, v Value) error {
	fd, ok := m.md.FieldByName(name)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownField, m.md.FullName(), name)
	}
	if err := checkValue(fd, v); err != nil {
		return err
	}
	m.setValue(fd, v)
	return nil
}

// SetFieldByNumber is like SetField, addressing the field by number.
func (m *Message) SetFieldByNumber(number int32, v Value) {
	if err := m.TrySetFieldByNumber(number, v); err != nil {
		panic(err.Error())
	}
}

// TrySetFieldByNumber is like SetFieldByNumber but returns an error
// instead of panicking.
func (m *Message) TrySetFieldByNumber(number int32, v Value) error {
	fd, ok := m.md.Field(number)
	if !ok {
		return fmt.Errorf("%w: %s field %d", ErrUnknownField, m.md.FullName(), number)
	}
	if err := checkValue(fd, v); err != nil {
		return err
	}
	m.setValue(fd, v)
	return nil
}

// HasField reports whether the field is present: explicitly set, even
// if set to its default value. HasField panics if fd describes a field
// of another message type.
func (m *Message) HasField(fd desc.FieldDescriptor) bool {
	ok, err := m.TryHasField(fd)
	if err != nil {
		panic(err.Error())
	}
	return ok
}

// TryHasField is like HasField but returns an error instead of
// panicking.
func (m *Message) TryHasField(fd desc.FieldDescriptor) (bool, error) {
	if err := m.checkField(fd); err != nil {
		return false, err
	}
	_, present := m.values[fd.Number()]
	return present, nil
}

// HasFieldByName is like HasField, addressing the field by declared
// name.
func (m *Message) HasFieldByName(name string) bool {
	fd, ok := m.md.FieldByName(name)
	if !ok {
		panic(fmt.Sprintf("%v: %s.%s", ErrUnknownField, m.md.FullName(), name))
	}
	_, present := m.values[fd.Number()]
	return present
}

// HasFieldByNumber is like HasField, addressing the field by number.
func (m *Message) HasFieldByNumber(number int32) bool {
	if _, ok := m.md.Field(number); !ok {
		panic(fmt.Sprintf("%v: %s field %d", ErrUnknownField, m.md.FullName(), number))
	}
	_, present := m.values[number]
	return present
}

// ClearField removes the field's value, if any. ClearField panics if
// fd describes a field of another message type.
func (m *Message) ClearField(fd desc.FieldDescriptor) {
	if err := m.TryClearField(fd); err != nil {
		panic(err.Error())
	}
}

// TryClearField is like ClearField but returns an error instead of
// panicking.
func (m *Message) TryClearField(fd desc.FieldDescriptor) error {
	if err := m.checkField(fd); err != nil {
		return err
	}
	delete(m.values, fd.Number())
	return nil
}

// ClearFieldByName is like ClearField, addressing the field by
// declared name.
func (m *Message) ClearFieldByName(name string) {
	fd, ok := m.md.FieldByName(name)
	if !ok {
		panic(fmt.Sprintf("%v: %s.%s", ErrUnknownField, m.md.FullName(), name))
	}
	delete(m.values, fd.Number())
}

// ClearFieldByNumber is like ClearField, addressing the field by
// number.
func (m *Message) ClearFieldByNumber(number int32) {
	if _, ok := m.md.Field(number); !ok {
		panic(fmt.Sprintf("%v: %s field %d", ErrUnknownField, m.md.FullName(), number))
	}
	delete(m.values, number)
}

// GetExtension returns the extension's value, synthesizing the schema
// default when absent, like GetField. GetExtension panics if xd does
// not extend this message type.
func (m *Message) GetExtension(xd desc.ExtensionDescriptor) Value {
	v, err := m.TryGetExtension(xd)
	if err != nil {
		panic(err.Error())
	}
	return v
}

// TryGetExtension is like GetExtension but returns an error instead of
// panicking.
func (m *Message) TryGetExtension(xd desc.ExtensionDescriptor) (Value, error) {
	if err := m.checkExtension(xd); err != nil {
		return Value{}, err
	}
	return m.getValue(xd), nil
}

// SetExtension stores a value into the extension. SetExtension panics
// if xd does not extend this message type or the value's kind does not
// match.
func (m *Message) SetExtension(xd desc.ExtensionDescriptor, v Value) {
	if err := m.TrySetExtension(xd, v); err != nil {
		panic(err.Error())
	}
}

// TrySetExtension is like SetExtension but returns an error instead of
// panicking.
func (m *Message) TrySetExtension(xd desc.ExtensionDescriptor, v Value) error {
	if err := m.checkExtension(xd); err != nil {
		return err
	}
	if err := checkValue(xd, v); err != nil {
		return err
	}
	m.setValue(xd, v)
	return nil
}

// HasExtension reports whether the extension is present. HasExtension
// panics if xd does not extend this message type.
func (m *Message) HasExtension(xd desc.ExtensionDescriptor) bool {
	if err := m.checkExtension(xd); err != nil {
		panic(err.Error())
	}
	_, present := m.values[xd.Number()]
	return present
}

// ClearExtension removes the extension's value, if any.
// ClearExtension panics if xd does not extend this message type.
func (m *Message) ClearExtension(xd desc.ExtensionDescriptor) {
	if err := m.checkExtension(xd); err != nil {
		panic(err.Error())
	}
	delete(m.values, xd.Number())
}

// Clear removes every present field and extension.
func (m *Message) Clear() {
	m.values = make(map[int32]Value)
}

// Range calls f for each present field and extension in ascending
// field-number order, stopping early if f returns false.
func (m *Message) Range(f func(FieldRef, Value) bool) {
	for _, number := range m.sortedNumbers() {
		ref, ok := m.fieldRef(number)
		if !ok {
			continue
		}
		if !f(ref, m.values[number]) {
			return
		}
	}
}

// Equal reports whether two messages are of the same type and hold
// equal values for the same set of present fields.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.md.FullName() != other.md.FullName() {
		return false
	}
	if len(m.values) != len(other.values) {
		return false
	}
	for number, v := range m.values {
		o, ok := other.values[number]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}

func (m *Message) sortedNumbers() []int32 {
	numbers := make([]int32, 0, len(m.values))
	for number := range m.values {
		numbers = append(numbers, number)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	return numbers
}

func (m *Message) checkField(fd desc.FieldDescriptor) error {
	if fd.ContainingMessage() != m.md {
		return fmt.Errorf("%w: field %s is not a field of %s",
			ErrWrongMessage, fd.FullName(), m.md.FullName())
	}
	return nil
}

func (m *Message) checkExtension(xd desc.ExtensionDescriptor) error {
	if xd.Extendee() != m.md {
		return fmt.Errorf("%w: extension %s does not extend %s",
			ErrWrongMessage, xd.FullName(), m.md.FullName())
	}
	return nil
}

func (m *Message) getValue(ref FieldRef) Value {
	if v, ok := m.values[ref.Number()]; ok {
		return v
	}
	return defaultFieldValue(ref)
}

// setValue stores without validation. Storing into a oneof member
// clears the other members first.
func (m *Message) setValue(ref FieldRef, v Value) {
	if fd, ok := ref.(desc.FieldDescriptor); ok {
		if od, inOneof := fd.ContainingOneof(); inOneof {
			for _, sibling := range od.Fields() {
				if sibling.Number() != fd.Number() {
					delete(m.values, sibling.Number())
				}
			}
		}
	}
	m.values[ref.Number()] = v
}

// defaultFieldValue synthesizes the value of an absent field: empty
// list or map for repeated fields, the invalid Value for singular
// message fields, the declared or zero default for everything else.
func defaultFieldValue(ref FieldRef) Value {
	switch {
	case ref.IsMap():
		return ValueOfMap(nil)
	case ref.IsList():
		return ValueOfList(nil)
	case ref.Kind() == desc.KindMessage:
		return Value{}
	}
	if dv := ref.DefaultValue(); dv != nil {
		return scalarValueOf(ref.Kind(), dv)
	}
	if ed, ok := ref.EnumType(); ok {
		return ValueOfEnum(ed.DefaultValue().Number())
	}
	return zeroScalarValue(ref.Kind())
}

// scalarValueOf wraps a concrete Go scalar, as produced by
// desc parsing of default values, into a Value of the field's kind.
func scalarValueOf(kind desc.Kind, v interface{}) Value {
	switch kind {
	case desc.KindDouble:
		return ValueOfDouble(v.(float64))
	case desc.KindFloat:
		return ValueOfFloat(v.(float32))
	case desc.KindInt32, desc.KindSint32, desc.KindSfixed32:
		return ValueOfInt32(v.(int32))
	case desc.KindInt64, desc.KindSint64, desc.KindSfixed64:
		return ValueOfInt64(v.(int64))
	case desc.KindUint32, desc.KindFixed32:
		return ValueOfUint32(v.(uint32))
	case desc.KindUint64, desc.KindFixed64:
		return ValueOfUint64(v.(uint64))
	case desc.KindBool:
		return ValueOfBool(v.(bool))
	case desc.KindString:
		return ValueOfString(v.(string))
	case desc.KindBytes:
		return ValueOfBytes(v.([]byte))
	case desc.KindEnum:
		return ValueOfEnum(v.(int32))
	default:
		panic(fmt.Sprintf("dynamic: no scalar value for kind %v", kind))
	}
}

func zeroScalarValue(kind desc.Kind) Value {
	switch kind {
	case desc.KindDouble:
		return ValueOfDouble(0)
	case desc.KindFloat:
		return ValueOfFloat(0)
	case desc.KindInt32, desc.KindSint32, desc.KindSfixed32:
		return ValueOfInt32(0)
	case desc.KindInt64, desc.KindSint64, desc.KindSfixed64:
		return ValueOfInt64(0)
	case desc.KindUint32, desc.KindFixed32:
		return ValueOfUint32(0)
	case desc.KindUint64, desc.KindFixed64:
		return ValueOfUint64(0)
	case desc.KindBool:
		return ValueOfBool(false)
	case desc.KindString:
		return ValueOfString("")
	case desc.KindBytes:
		return ValueOfBytes(nil)
	case desc.KindEnum:
		return ValueOfEnum(0)
	default:
		panic(fmt.Sprintf("dynamic: no zero value for kind %v", kind))
	}
}

// scalarKindOf maps a field kind onto the value kind its payloads use.
func scalarKindOf(kind desc.Kind) valueKind {
	switch kind {
	case desc.KindDouble:
		return kindDouble
	case desc.KindFloat:
		return kindFloat
	case desc.KindInt32, desc.KindSint32, desc.KindSfixed32:
		return kindInt32
	case desc.KindInt64, desc.KindSint64, desc.KindSfixed64:
		return kindInt64
	case desc.KindUint32, desc.KindFixed32:
		return kindUint32
	case desc.KindUint64, desc.KindFixed64:
		return kindUint64
	case desc.KindBool:
		return kindBool
	case desc.KindString:
		return kindString
	case desc.KindBytes:
		return kindBytes
	case desc.KindEnum:
		return kindEnum
	case desc.KindMessage:
		return kindMessage
	default:
		return kindInvalid
	}
}

// checkValue verifies that a value's shape matches the field: list
// values for list fields, map values with legal key and value kinds
// for map fields, matching scalar or message payloads otherwise.
func checkValue(ref FieldRef, v Value) error {
	switch {
	case ref.IsMap():
		if v.kind != kindMap {
			return fmt.Errorf("%w: field %s wants a map, got %v",
				ErrBadValueKind, ref.FullName(), v.kind)
		}
		entry, _ := ref.MessageType()
		kf, vf := entry.MapEntryKeyField(), entry.MapEntryValueField()
		keyKind := scalarKindOf(kf.Kind())
		for k, val := range v.mp {
			if k.kind != keyKind {
				return fmt.Errorf("%w: field %s wants %v keys, got %v",
					ErrBadValueKind, ref.FullName(), keyKind, k.kind)
			}
			if err := checkSingular(vf, val); err != nil {
				return err
			}
		}
		return nil
	case ref.IsList():
		if v.kind != kindList {
			return fmt.Errorf("%w: field %s wants a list, got %v",
				ErrBadValueKind, ref.FullName(), v.kind)
		}
		for _, el := range v.list {
			if err := checkSingular(ref, el); err != nil {
				return err
			}
		}
		return nil
	default:
		return checkSingular(ref, v)
	}
}

func checkSingular(ref FieldRef, v Value) error {
	want := scalarKindOf(ref.Kind())
	if v.kind != want {
		return fmt.Errorf("%w: field %s wants %v, got %v",
			ErrBadValueKind, ref.FullName(), want, v.kind)
	}
	if want == kindMessage {
		md, _ := ref.MessageType()
		if v.msg == nil {
			return fmt.Errorf("%w: field %s: nil message", ErrBadValueKind, ref.FullName())
		}
		if v.msg.Descriptor().FullName() != md.FullName() {
			return fmt.Errorf("%w: field %s wants %s, got %s",
				ErrBadValueKind, ref.FullName(), md.FullName(), v.msg.Descriptor().FullName())
		}
	}
	return nil
}

// isZeroScalar reports whether a scalar value equals its kind's zero.
// Used to elide fields without presence tracking during encoding.
func isZeroScalar(v Value) bool {
	switch v.kind {
	case kindString:
		return v.str == ""
	case kindBytes:
		return len(v.bin) == 0
	default:
		// floats are stored as IEEE bits, so -0.0 counts as set
		return v.num == 0
	}
}
