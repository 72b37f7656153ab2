package dynamic_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protodyn/protodyn/codec"
	"github.com/protodyn/protodyn/dynamic"
)

func roundTrip(t *testing.T, m *dynamic.Message) *dynamic.Message {
	t.Helper()
	data, err := m.Marshal()
	require.NoError(t, err)
	decoded := dynamic.NewMessage(m.Descriptor())
	require.NoError(t, decoded.Unmarshal(data))
	return decoded
}

const wireSource = `
	syntax = "proto3";
	package my.test;

	message Everything {
		double d = 1;
		float f = 2;
		int32 i32 = 3;
		int64 i64 = 4;
		uint32 u32 = 5;
		uint64 u64 = 6;
		sint32 s32 = 7;
		sint64 s64 = 8;
		fixed32 fx32 = 9;
		fixed64 fx64 = 10;
		sfixed32 sfx32 = 11;
		sfixed64 sfx64 = 12;
		bool flag = 13;
		string text = 14;
		bytes blob = 15;
		Everything child = 16;
		repeated int32 packed_ints = 17;
		repeated double unpacked_doubles = 42 [packed = false];
		map<string, int64> counts = 18;
		map<int32, Everything> children = 19;
		oneof pick {
			string pick_text = 20;
			int32 pick_num = 21;
		}
	}
`

func TestScalarRoundTrip(t *testing.T) {
	pool := buildPool(t, map[string]string{"wire.proto": wireSource})
	md := mustMessage(t, pool, "my.test.Everything")

	m := dynamic.NewMessage(md)
	m.SetFieldByName("d", dynamic.ValueOfDouble(-1.25))
	m.SetFieldByName("f", dynamic.ValueOfFloat(3.5))
	m.SetFieldByName("i32", dynamic.ValueOfInt32(-42))
	m.SetFieldByName("i64", dynamic.ValueOfInt64(math.MinInt64))
	m.SetFieldByName("u32", dynamic.ValueOfUint32(math.MaxUint32))
	m.SetFieldByName("u64", dynamic.ValueOfUint64(math.MaxUint64))
	m.SetFieldByName("s32", dynamic.ValueOfInt32(-7))
	m.SetFieldByName("s64", dynamic.ValueOfInt64(-9000000000))
	m.SetFieldByName("fx32", dynamic.ValueOfUint32(77))
	m.SetFieldByName("fx64", dynamic.ValueOfUint64(1<<60))
	m.SetFieldByName("sfx32", dynamic.ValueOfInt32(-100))
	m.SetFieldByName("sfx64", dynamic.ValueOfInt64(-1))
	m.SetFieldByName("flag", dynamic.ValueOfBool(true))
	m.SetFieldByName("text", dynamic.ValueOfString("héllo"))
	m.SetFieldByName("blob", dynamic.ValueOfBytes([]byte{0, 1, 0xfe}))

	decoded := roundTrip(t, m)
	require.True(t, m.Equal(decoded))

	i32, _ := decoded.GetFieldByName("i32").AsInt32()
	require.Equal(t, int32(-42), i32)
	s64, _ := decoded.GetFieldByName("s64").AsInt64()
	require.Equal(t, int64(-9000000000), s64)
}

func TestZeroElision(t *testing.T) {
	pool := buildPool(t, map[string]string{"wire.proto": wireSource})
	md := mustMessage(t, pool, "my.test.Everything")

	m := dynamic.NewMessage(md)
	m.SetFieldByName("i32", dynamic.ValueOfInt32(0))
	m.SetFieldByName("text", dynamic.ValueOfString(""))
	data, err := m.Marshal()
	require.NoError(t, err)
	require.Empty(t, data, "zero values of presence-free fields stay off the wire")

	// oneof members track presence, so their zero value is encoded
	m.SetFieldByName("pick_num", dynamic.ValueOfInt32(0))
	data, err = m.Marshal()
	require.NoError(t, err)
	require.NotEmpty(t, data)
	decoded := dynamic.NewMessage(md)
	require.NoError(t, decoded.Unmarshal(data))
	require.True(t, decoded.HasFieldByName("pick_num"))
}

func TestNestedAndListRoundTrip(t *testing.T) {
	pool := buildPool(t, map[string]string{"wire.proto": wireSource})
	md := mustMessage(t, pool, "my.test.Everything")

	child := dynamic.NewMessage(md)
	child.SetFieldByName("text", dynamic.ValueOfString("inner"))

	m := dynamic.NewMessage(md)
	m.SetFieldByName("child", dynamic.ValueOfMessage(child))
	m.SetFieldByName("packed_ints", dynamic.ValueOfList([]dynamic.Value{
		dynamic.ValueOfInt32(3), dynamic.ValueOfInt32(-1), dynamic.ValueOfInt32(300),
	}))
	m.SetFieldByName("counts", dynamic.ValueOfMap(map[dynamic.MapKey]dynamic.Value{
		dynamic.MapKeyOfString("a"): dynamic.ValueOfInt64(1),
		dynamic.MapKeyOfString("b"): dynamic.ValueOfInt64(-2),
	}))

	decoded := roundTrip(t, m)
	require.True(t, m.Equal(decoded))

	inner, ok := decoded.GetFieldByName("child").AsMessage()
	require.True(t, ok)
	text, _ := inner.GetFieldByName("text").AsString()
	require.Equal(t, "inner", text)
}

func TestDeterministicMarshal(t *testing.T) {
	pool := buildPool(t, map[string]string{"wire.proto": wireSource})
	md := mustMessage(t, pool, "my.test.Everything")

	m := dynamic.NewMessage(md)
	mp := make(map[dynamic.MapKey]dynamic.Value)
	for _, k := range []string{"zeta", "alpha", "mid", "beta", "omega"} {
		mp[dynamic.MapKeyOfString(k)] = dynamic.ValueOfInt64(int64(len(k)))
	}
	m.SetFieldByName("counts", dynamic.ValueOfMap(mp))
	m.SetFieldByName("text", dynamic.ValueOfString("x"))

	first, err := m.Marshal()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := m.Marshal()
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestUnpackedFieldAcceptsPackedBytes(t *testing.T) {
	pool := buildPool(t, map[string]string{"wire.proto": wireSource})
	md := mustMessage(t, pool, "my.test.Everything")

	doubles := []float64{0.0, 0.1, math.MaxFloat64, 2.2250738585072014e-308}
	var payload codec.Buffer
	for _, d := range doubles {
		payload.EncodeFixed64(math.Float64bits(d))
	}
	var cb codec.Buffer
	cb.EncodeTagAndWireType(42, codec.WireBytes)
	cb.EncodeRawBytes(payload.Bytes())

	m := dynamic.NewMessage(md)
	require.NoError(t, m.Unmarshal(cb.Bytes()))
	list, ok := m.GetFieldByName("unpacked_doubles").AsList()
	require.True(t, ok)
	require.Len(t, list, len(doubles))
	for i, want := range doubles {
		got, ok := list[i].AsDouble()
		require.True(t, ok)
		require.Equal(t, want, got)
	}

	// and the field still encodes unpacked
	data, err := m.Marshal()
	require.NoError(t, err)
	var expected codec.Buffer
	for _, d := range doubles {
		expected.EncodeTagAndWireType(42, codec.WireFixed64)
		expected.EncodeFixed64(math.Float64bits(d))
	}
	require.Equal(t, expected.Bytes(), data)
}

func TestPackedFieldAcceptsUnpackedElements(t *testing.T) {
	pool := buildPool(t, map[string]string{"wire.proto": wireSource})
	md := mustMessage(t, pool, "my.test.Everything")

	var cb codec.Buffer
	for _, v := range []uint64{5, 6, 7} {
		cb.EncodeTagAndWireType(17, codec.WireVarint)
		cb.EncodeVarint(v)
	}

	m := dynamic.NewMessage(md)
	require.NoError(t, m.Unmarshal(cb.Bytes()))
	list, _ := m.GetFieldByName("packed_ints").AsList()
	require.Len(t, list, 3)

	// re-encoding honors the declared packing
	data, err := m.Marshal()
	require.NoError(t, err)
	var expected codec.Buffer
	expected.EncodeTagAndWireType(17, codec.WireBytes)
	expected.EncodeRawBytes([]byte{5, 6, 7})
	require.Equal(t, expected.Bytes(), data)
}

func TestUnknownFieldsAreSkipped(t *testing.T) {
	pool := buildPool(t, map[string]string{"wire.proto": wireSource})
	md := mustMessage(t, pool, "my.test.Everything")

	var cb codec.Buffer
	cb.EncodeTagAndWireType(99, codec.WireVarint)
	cb.EncodeVarint(1234)
	cb.EncodeTagAndWireType(98, codec.WireBytes)
	cb.EncodeRawBytes([]byte("ignored"))
	cb.EncodeTagAndWireType(97, codec.WireFixed32)
	cb.EncodeFixed32(5)
	cb.EncodeTagAndWireType(3, codec.WireVarint) // i32
	cb.EncodeVarint(8)

	m := dynamic.NewMessage(md)
	require.NoError(t, m.Unmarshal(cb.Bytes()))
	i32, _ := m.GetFieldByName("i32").AsInt32()
	require.Equal(t, int32(8), i32)

	// skipped fields are not preserved on re-encode
	data, err := m.Marshal()
	require.NoError(t, err)
	var expected codec.Buffer
	expected.EncodeTagAndWireType(3, codec.WireVarint)
	expected.EncodeVarint(8)
	require.Equal(t, expected.Bytes(), data)
}

func TestMalformedInputLeavesMessageUntouched(t *testing.T) {
	pool := buildPool(t, map[string]string{"wire.proto": wireSource})
	md := mustMessage(t, pool, "my.test.Everything")

	m := dynamic.NewMessage(md)
	m.SetFieldByName("text", dynamic.ValueOfString("before"))

	// truncated length-delimited payload
	var truncated codec.Buffer
	truncated.EncodeTagAndWireType(14, codec.WireBytes)
	truncated.EncodeVarint(100)
	require.Error(t, m.Unmarshal(truncated.Bytes()))

	// wire type that contradicts the schema
	var mismatched codec.Buffer
	mismatched.EncodeTagAndWireType(3, codec.WireFixed64)
	mismatched.EncodeFixed64(1)
	require.Error(t, m.Unmarshal(mismatched.Bytes()))

	// string field carrying invalid UTF-8
	var badUTF8 codec.Buffer
	badUTF8.EncodeTagAndWireType(14, codec.WireBytes)
	badUTF8.EncodeRawBytes([]byte{0xff, 0xfe})
	require.Error(t, m.Unmarshal(badUTF8.Bytes()))

	text, _ := m.GetFieldByName("text").AsString()
	require.Equal(t, "before", text, "failed decodes must not disturb existing state")
}

func TestMergeSemantics(t *testing.T) {
	pool := buildPool(t, map[string]string{"wire.proto": wireSource})
	md := mustMessage(t, pool, "my.test.Everything")

	base := dynamic.NewMessage(md)
	base.SetFieldByName("i32", dynamic.ValueOfInt32(1))
	base.SetFieldByName("packed_ints", dynamic.ValueOfList([]dynamic.Value{dynamic.ValueOfInt32(10)}))
	base.SetFieldByName("counts", dynamic.ValueOfMap(map[dynamic.MapKey]dynamic.Value{
		dynamic.MapKeyOfString("keep"): dynamic.ValueOfInt64(1),
		dynamic.MapKeyOfString("swap"): dynamic.ValueOfInt64(1),
	}))
	child := dynamic.NewMessage(md)
	child.SetFieldByName("u32", dynamic.ValueOfUint32(5))
	base.SetFieldByName("child", dynamic.ValueOfMessage(child))

	overlay := dynamic.NewMessage(md)
	overlay.SetFieldByName("i32", dynamic.ValueOfInt32(2))
	overlay.SetFieldByName("packed_ints", dynamic.ValueOfList([]dynamic.Value{dynamic.ValueOfInt32(20)}))
	overlay.SetFieldByName("counts", dynamic.ValueOfMap(map[dynamic.MapKey]dynamic.Value{
		dynamic.MapKeyOfString("swap"): dynamic.ValueOfInt64(2),
		dynamic.MapKeyOfString("new"):  dynamic.ValueOfInt64(3),
	}))
	overlayChild := dynamic.NewMessage(md)
	overlayChild.SetFieldByName("text", dynamic.ValueOfString("added"))
	overlay.SetFieldByName("child", dynamic.ValueOfMessage(overlayChild))

	data, err := overlay.Marshal()
	require.NoError(t, err)
	require.NoError(t, base.Merge(data))

	i32, _ := base.GetFieldByName("i32").AsInt32()
	require.Equal(t, int32(2), i32, "singular scalars overwrite")

	list, _ := base.GetFieldByName("packed_ints").AsList()
	require.Len(t, list, 2, "lists append")

	mp, _ := base.GetFieldByName("counts").AsMap()
	require.Len(t, mp, 3)
	swapped, _ := mp[dynamic.MapKeyOfString("swap")].AsInt64()
	require.Equal(t, int64(2), swapped, "map entries overwrite per key")

	merged, _ := base.GetFieldByName("child").AsMessage()
	u32, _ := merged.GetFieldByName("u32").AsUint32()
	require.Equal(t, uint32(5), u32, "messages merge recursively")
	text, _ := merged.GetFieldByName("text").AsString()
	require.Equal(t, "added", text)
}

func TestOneofLastWinsOnWire(t *testing.T) {
	pool := buildPool(t, map[string]string{"wire.proto": wireSource})
	md := mustMessage(t, pool, "my.test.Everything")

	var cb codec.Buffer
	cb.EncodeTagAndWireType(20, codec.WireBytes) // pick_text
	cb.EncodeRawBytes([]byte("first"))
	cb.EncodeTagAndWireType(21, codec.WireVarint) // pick_num
	cb.EncodeVarint(9)

	m := dynamic.NewMessage(md)
	require.NoError(t, m.Unmarshal(cb.Bytes()))
	require.False(t, m.HasFieldByName("pick_text"))
	n, _ := m.GetFieldByName("pick_num").AsInt32()
	require.Equal(t, int32(9), n)
}

func TestMessageValuedMapRoundTrip(t *testing.T) {
	pool := buildPool(t, map[string]string{"wire.proto": wireSource})
	md := mustMessage(t, pool, "my.test.Everything")

	empty := dynamic.NewMessage(md)
	full := dynamic.NewMessage(md)
	full.SetFieldByName("flag", dynamic.ValueOfBool(true))

	m := dynamic.NewMessage(md)
	m.SetFieldByName("children", dynamic.ValueOfMap(map[dynamic.MapKey]dynamic.Value{
		dynamic.MapKeyOfInt32(-1): dynamic.ValueOfMessage(empty),
		dynamic.MapKeyOfInt32(2):  dynamic.ValueOfMessage(full),
	}))

	decoded := roundTrip(t, m)
	mp, _ := decoded.GetFieldByName("children").AsMap()
	require.Len(t, mp, 2)

	gotEmpty, ok := mp[dynamic.MapKeyOfInt32(-1)].AsMessage()
	require.True(t, ok, "absent map values decode as empty messages")
	require.False(t, gotEmpty.HasFieldByName("flag"))

	gotFull, _ := mp[dynamic.MapKeyOfInt32(2)].AsMessage()
	flag, _ := gotFull.GetFieldByName("flag").AsBool()
	require.True(t, flag)
}

func TestGroupRoundTrip(t *testing.T) {
	pool := buildPool(t, map[string]string{
		"groups.proto": `
			syntax = "proto2";
			package my.test;
			message WithGroup {
				optional group Payload = 1 {
					optional string label = 2;
				}
				optional int32 after = 3;
			}
		`,
	})
	md := mustMessage(t, pool, "my.test.WithGroup")
	groupField, ok := md.FieldByName("payload")
	require.True(t, ok, "group fields are named by lowercased group name")
	require.True(t, groupField.IsGroup())
	groupMd, _ := groupField.MessageType()

	g := dynamic.NewMessage(groupMd)
	g.SetFieldByName("label", dynamic.ValueOfString("grouped"))
	m := dynamic.NewMessage(md)
	m.SetField(groupField, dynamic.ValueOfMessage(g))
	m.SetFieldByName("after", dynamic.ValueOfInt32(4))

	decoded := roundTrip(t, m)
	require.True(t, m.Equal(decoded))
	inner, _ := decoded.GetField(groupField).AsMessage()
	label, _ := inner.GetFieldByName("label").AsString()
	require.Equal(t, "grouped", label)
	after, _ := decoded.GetFieldByName("after").AsInt32()
	require.Equal(t, int32(4), after)
}

func TestExtensionRoundTrip(t *testing.T) {
	pool := buildPool(t, map[string]string{
		"ext.proto": `
			syntax = "proto2";
			package my.test;
			message Extendable {
				optional int32 own = 1;
				extensions 100 to 200;
			}
			extend Extendable {
				optional string note = 100;
				repeated uint32 marks = 101;
			}
		`,
	})
	md := mustMessage(t, pool, "my.test.Extendable")
	note, _ := pool.ExtensionByName("my.test.note")
	marks, _ := pool.ExtensionByName("my.test.marks")

	m := dynamic.NewMessage(md)
	m.SetFieldByName("own", dynamic.ValueOfInt32(1))
	m.SetExtension(note, dynamic.ValueOfString("annotated"))
	m.SetExtension(marks, dynamic.ValueOfList([]dynamic.Value{
		dynamic.ValueOfUint32(7), dynamic.ValueOfUint32(9),
	}))

	decoded := roundTrip(t, m)
	require.True(t, m.Equal(decoded))
	s, _ := decoded.GetExtension(note).AsString()
	require.Equal(t, "annotated", s)
	list, _ := decoded.GetExtension(marks).AsList()
	require.Len(t, list, 2)
}
