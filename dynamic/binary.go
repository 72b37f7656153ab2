package dynamic

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/protodyn/protodyn/codec"
	"github.com/protodyn/protodyn/desc"
)

// Marshal serializes the message's present fields in ascending
// field-number order. Map entries are emitted in deterministic key
// order, so equal messages produce identical bytes.
func (m *Message) Marshal() ([]byte, error) {
	var cb codec.Buffer
	if err := m.encode(&cb); err != nil {
		return nil, err
	}
	return cb.Bytes(), nil
}

// Unmarshal replaces the message's contents with the decoded data. On
// error the message is left untouched.
func (m *Message) Unmarshal(data []byte) error {
	scratch := NewMessage(m.md)
	if err := scratch.decode(codec.NewBuffer(data)); err != nil {
		return err
	}
	m.values = scratch.values
	return nil
}

// Merge decodes data and folds it into the message the way protobuf
// treats concatenated payloads: singular scalars are overwritten,
// singular messages merge recursively, lists append, and map entries
// overwrite per key. On error the message is left untouched.
func (m *Message) Merge(data []byte) error {
	scratch := NewMessage(m.md)
	if err := scratch.decode(codec.NewBuffer(data)); err != nil {
		return err
	}
	m.mergeFrom(scratch)
	return nil
}

func (m *Message) encode(cb *codec.Buffer) error {
	for _, number := range m.sortedNumbers() {
		ref, ok := m.fieldRef(number)
		if !ok {
			return fmt.Errorf("dynamic: %s has no descriptor for present field %d",
				m.md.FullName(), number)
		}
		if err := encodeField(cb, ref, m.values[number]); err != nil {
			return err
		}
	}
	return nil
}

func encodeField(cb *codec.Buffer, ref FieldRef, v Value) error {
	switch {
	case ref.IsMap():
		entryMd, _ := ref.MessageType()
		kf, vf := entryMd.MapEntryKeyField(), entryMd.MapEntryValueField()
		for _, key := range sortedMapKeys(v.mp) {
			var entry codec.Buffer
			if kv := key.Value(); !isZeroScalar(kv) {
				if err := encodeSingular(&entry, kf, kv); err != nil {
					return err
				}
			}
			val := v.mp[key]
			if val.kind == kindMessage || !isZeroScalar(val) {
				if err := encodeSingular(&entry, vf, val); err != nil {
					return err
				}
			}
			cb.EncodeTagAndWireType(ref.Number(), codec.WireBytes)
			cb.EncodeRawBytes(entry.Bytes())
		}
		return nil
	case ref.IsList():
		if len(v.list) == 0 {
			return nil
		}
		if ref.IsPacked() {
			var packed codec.Buffer
			for _, el := range v.list {
				if err := encodePayload(&packed, ref, el); err != nil {
					return err
				}
			}
			cb.EncodeTagAndWireType(ref.Number(), codec.WireBytes)
			cb.EncodeRawBytes(packed.Bytes())
			return nil
		}
		for _, el := range v.list {
			if err := encodeSingular(cb, ref, el); err != nil {
				return err
			}
		}
		return nil
	default:
		// fields without presence elide their zero value
		if !ref.SupportsPresence() && isZeroScalar(v) {
			return nil
		}
		return encodeSingular(cb, ref, v)
	}
}

func encodeSingular(cb *codec.Buffer, ref FieldRef, v Value) error {
	if ref.Kind() == desc.KindMessage {
		if ref.IsGroup() {
			cb.EncodeTagAndWireType(ref.Number(), codec.WireStartGroup)
			if err := v.msg.encode(cb); err != nil {
				return err
			}
			cb.EncodeTagAndWireType(ref.Number(), codec.WireEndGroup)
			return nil
		}
		var sub codec.Buffer
		if err := v.msg.encode(&sub); err != nil {
			return err
		}
		cb.EncodeTagAndWireType(ref.Number(), codec.WireBytes)
		cb.EncodeRawBytes(sub.Bytes())
		return nil
	}
	cb.EncodeTagAndWireType(ref.Number(), ref.Kind().WireType())
	return encodePayload(cb, ref, v)
}

// encodePayload writes a scalar payload with no tag. Also used to fill
// packed runs.
func encodePayload(cb *codec.Buffer, ref FieldRef, v Value) error {
	switch ref.Kind() {
	case desc.KindDouble, desc.KindFixed64, desc.KindSfixed64:
		cb.EncodeFixed64(v.num)
	case desc.KindFloat, desc.KindFixed32, desc.KindSfixed32:
		cb.EncodeFixed32(v.num)
	case desc.KindInt32, desc.KindInt64, desc.KindUint32, desc.KindUint64,
		desc.KindBool, desc.KindEnum:
		cb.EncodeVarint(v.num)
	case desc.KindSint32:
		cb.EncodeVarint(codec.EncodeZigZag32(int32(v.num)))
	case desc.KindSint64:
		cb.EncodeVarint(codec.EncodeZigZag64(int64(v.num)))
	case desc.KindString:
		if !utf8.ValidString(v.str) {
			return fmt.Errorf("dynamic: field %s: string is not valid UTF-8", ref.FullName())
		}
		cb.EncodeRawBytes([]byte(v.str))
	case desc.KindBytes:
		cb.EncodeRawBytes(v.bin)
	default:
		return fmt.Errorf("dynamic: field %s: cannot encode %v payload", ref.FullName(), ref.Kind())
	}
	return nil
}

func (m *Message) decode(cb *codec.Buffer) error {
	for !cb.EOF() {
		number, wt, err := cb.DecodeTagAndWireType()
		if err != nil {
			return err
		}
		if wt == codec.WireEndGroup {
			return fmt.Errorf("dynamic: unexpected end-group tag for field %d", number)
		}
		ref, known := m.fieldRef(number)
		if !known {
			// unrecognized numbers are skipped, not preserved
			if err := cb.SkipValue(wt); err != nil {
				return err
			}
			continue
		}
		if err := m.decodeField(cb, ref, wt); err != nil {
			return err
		}
	}
	return nil
}

// decodeGroup consumes fields up to and including the end-group tag
// matching groupNumber.
func (m *Message) decodeGroup(cb *codec.Buffer, groupNumber int32) error {
	for {
		number, wt, err := cb.DecodeTagAndWireType()
		if err != nil {
			return err
		}
		if wt == codec.WireEndGroup {
			if number != groupNumber {
				return fmt.Errorf("dynamic: group %d terminated by end-group tag %d",
					groupNumber, number)
			}
			return nil
		}
		ref, known := m.fieldRef(number)
		if !known {
			if err := cb.SkipValue(wt); err != nil {
				return err
			}
			continue
		}
		if err := m.decodeField(cb, ref, wt); err != nil {
			return err
		}
	}
}

func (m *Message) decodeField(cb *codec.Buffer, ref FieldRef, wt int8) error {
	switch {
	case ref.IsMap():
		if wt != codec.WireBytes {
			return wireTypeMismatch(ref, wt)
		}
		raw, err := cb.DecodeRawBytes(false)
		if err != nil {
			return err
		}
		entryMd, _ := ref.MessageType()
		entry := NewMessage(entryMd)
		if err := entry.decode(codec.NewBuffer(raw)); err != nil {
			return err
		}
		kf, vf := entryMd.MapEntryKeyField(), entryMd.MapEntryValueField()
		key, ok := mapKeyOfValue(entry.getValue(kf))
		if !ok {
			return fmt.Errorf("dynamic: field %s: bad map key kind", ref.FullName())
		}
		val, present := entry.values[vf.Number()]
		if !present {
			if valMd, isMsg := vf.MessageType(); isMsg {
				val = ValueOfMessage(NewMessage(valMd))
			} else {
				val = defaultFieldValue(vf)
			}
		}
		existing, has := m.values[ref.Number()]
		if !has || existing.mp == nil {
			existing = ValueOfMap(make(map[MapKey]Value))
		}
		existing.mp[key] = val
		m.values[ref.Number()] = existing
		return nil

	case ref.IsList():
		kind := ref.Kind()
		// packable fields accept the packed run regardless of how the
		// schema declares them
		if wt == codec.WireBytes && kind.IsPackable() && kind.WireType() != codec.WireBytes {
			raw, err := cb.DecodeRawBytes(false)
			if err != nil {
				return err
			}
			sub := codec.NewBuffer(raw)
			for !sub.EOF() {
				el, err := decodePayload(sub, ref)
				if err != nil {
					return err
				}
				m.appendToList(ref, el)
			}
			return nil
		}
		el, err := m.decodeSingular(cb, ref, wt, nil)
		if err != nil {
			return err
		}
		m.appendToList(ref, el)
		return nil

	default:
		var existing *Message
		if ref.Kind() == desc.KindMessage {
			if cur, ok := m.values[ref.Number()]; ok && cur.kind == kindMessage {
				existing = cur.msg
			}
		}
		v, err := m.decodeSingular(cb, ref, wt, existing)
		if err != nil {
			return err
		}
		m.setValue(ref, v)
		return nil
	}
}

func (m *Message) appendToList(ref FieldRef, el Value) {
	existing, has := m.values[ref.Number()]
	if !has {
		existing = ValueOfList(nil)
	}
	existing.list = append(existing.list, el)
	m.values[ref.Number()] = existing
}

// decodeSingular reads one value of the field's kind. For message
// fields, repeated occurrences on the wire merge, so an existing
// message may be passed in to receive the new fields.
func (m *Message) decodeSingular(cb *codec.Buffer, ref FieldRef, wt int8, existing *Message) (Value, error) {
	if ref.Kind() == desc.KindMessage {
		md, _ := ref.MessageType()
		sub := existing
		if sub == nil {
			sub = NewMessage(md)
		}
		if ref.IsGroup() {
			if wt != codec.WireStartGroup {
				return Value{}, wireTypeMismatch(ref, wt)
			}
			if err := sub.decodeGroup(cb, ref.Number()); err != nil {
				return Value{}, err
			}
			return ValueOfMessage(sub), nil
		}
		if wt != codec.WireBytes {
			return Value{}, wireTypeMismatch(ref, wt)
		}
		raw, err := cb.DecodeRawBytes(false)
		if err != nil {
			return Value{}, err
		}
		if err := sub.decode(codec.NewBuffer(raw)); err != nil {
			return Value{}, err
		}
		return ValueOfMessage(sub), nil
	}
	if wt != ref.Kind().WireType() {
		return Value{}, wireTypeMismatch(ref, wt)
	}
	return decodePayload(cb, ref)
}

func decodePayload(cb *codec.Buffer, ref FieldRef) (Value, error) {
	switch kind := ref.Kind(); kind {
	case desc.KindDouble:
		raw, err := cb.DecodeFixed64()
		if err != nil {
			return Value{}, err
		}
		return ValueOfDouble(math.Float64frombits(raw)), nil
	case desc.KindFloat:
		raw, err := cb.DecodeFixed32()
		if err != nil {
			return Value{}, err
		}
		return ValueOfFloat(math.Float32frombits(uint32(raw))), nil
	case desc.KindInt32:
		raw, err := cb.DecodeVarint()
		if err != nil {
			return Value{}, err
		}
		return ValueOfInt32(int32(raw)), nil
	case desc.KindInt64:
		raw, err := cb.DecodeVarint()
		if err != nil {
			return Value{}, err
		}
		return ValueOfInt64(int64(raw)), nil
	case desc.KindUint32:
		raw, err := cb.DecodeVarint()
		if err != nil {
			return Value{}, err
		}
		return ValueOfUint32(uint32(raw)), nil
	case desc.KindUint64:
		raw, err := cb.DecodeVarint()
		if err != nil {
			return Value{}, err
		}
		return ValueOfUint64(raw), nil
	case desc.KindSint32:
		raw, err := cb.DecodeVarint()
		if err != nil {
			return Value{}, err
		}
		return ValueOfInt32(codec.DecodeZigZag32(raw)), nil
	case desc.KindSint64:
		raw, err := cb.DecodeVarint()
		if err != nil {
			return Value{}, err
		}
		return ValueOfInt64(codec.DecodeZigZag64(raw)), nil
	case desc.KindFixed32:
		raw, err := cb.DecodeFixed32()
		if err != nil {
			return Value{}, err
		}
		return ValueOfUint32(uint32(raw)), nil
	case desc.KindFixed64:
		raw, err := cb.DecodeFixed64()
		if err != nil {
			return Value{}, err
		}
		return ValueOfUint64(raw), nil
	case desc.KindSfixed32:
		raw, err := cb.DecodeFixed32()
		if err != nil {
			return Value{}, err
		}
		return ValueOfInt32(int32(uint32(raw))), nil
	case desc.KindSfixed64:
		raw, err := cb.DecodeFixed64()
		if err != nil {
			return Value{}, err
		}
		return ValueOfInt64(int64(raw)), nil
	case desc.KindBool:
		raw, err := cb.DecodeVarint()
		if err != nil {
			return Value{}, err
		}
		return ValueOfBool(raw != 0), nil
	case desc.KindEnum:
		raw, err := cb.DecodeVarint()
		if err != nil {
			return Value{}, err
		}
		return ValueOfEnum(int32(raw)), nil
	case desc.KindString:
		raw, err := cb.DecodeRawBytes(false)
		if err != nil {
			return Value{}, err
		}
		if !utf8.Valid(raw) {
			return Value{}, fmt.Errorf("dynamic: field %s: string is not valid UTF-8", ref.FullName())
		}
		return ValueOfString(string(raw)), nil
	case desc.KindBytes:
		raw, err := cb.DecodeRawBytes(true)
		if err != nil {
			return Value{}, err
		}
		return ValueOfBytes(raw), nil
	default:
		return Value{}, fmt.Errorf("dynamic: field %s: cannot decode %v payload", ref.FullName(), kind)
	}
}

func wireTypeMismatch(ref FieldRef, wt int8) error {
	return fmt.Errorf("dynamic: field %s: wire type %d cannot hold a %v",
		ref.FullName(), wt, ref.Kind())
}

// mergeFrom folds src, which must be of the same type, into m. src is
// consumed: lists and messages may be shared afterwards.
func (m *Message) mergeFrom(src *Message) {
	for number, sv := range src.values {
		ref, ok := m.fieldRef(number)
		if !ok {
			continue
		}
		switch {
		case ref.IsMap():
			existing, has := m.values[number]
			if !has || existing.mp == nil {
				existing = ValueOfMap(make(map[MapKey]Value, len(sv.mp)))
			}
			for k, v := range sv.mp {
				existing.mp[k] = v
			}
			m.values[number] = existing
		case ref.IsList():
			existing, has := m.values[number]
			if !has {
				existing = ValueOfList(nil)
			}
			existing.list = append(existing.list, sv.list...)
			m.values[number] = existing
		case ref.Kind() == desc.KindMessage:
			if cur, has := m.values[number]; has && cur.kind == kindMessage {
				cur.msg.mergeFrom(sv.msg)
			} else {
				m.setValue(ref, sv)
			}
		default:
			m.setValue(ref, sv)
		}
	}
}
