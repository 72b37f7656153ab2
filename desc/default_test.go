package desc_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protodyn/protodyn/desc"
)

func TestProto2Defaults(t *testing.T) {
	pool := buildPool(t, map[string]string{
		"defaults.proto": `
			syntax = "proto2";
			package my.test;

			enum Mood {
				MOOD_UNKNOWN = 0;
				MOOD_HAPPY = 1;
				MOOD_GRUMPY = 2;
			}

			message Defaults {
				optional double d = 1 [default = 1.5];
				optional float f = 2 [default = -0.25];
				optional double d_inf = 3 [default = inf];
				optional double d_neg_inf = 4 [default = -inf];
				optional double d_nan = 5 [default = nan];
				optional int32 i32 = 6 [default = -3];
				optional int64 i64 = 7 [default = 9000000000];
				optional uint32 u32 = 8 [default = 4000000000];
				optional uint64 u64 = 9 [default = 10000000000000000000];
				optional sint32 s32 = 10 [default = -44];
				optional fixed32 fx32 = 11 [default = 17];
				optional bool flag = 12 [default = true];
				optional string text = 13 [default = "hello, \"world\""];
				optional bytes blob = 14 [default = "\0\001\007\010\014\n\r\t\013\\\'\"\376"];
				optional Mood mood = 15 [default = MOOD_GRUMPY];
				optional int32 plain = 16;
			}
		`,
	})
	md, ok := pool.MessageByName("my.test.Defaults")
	require.True(t, ok)

	get := func(name string) interface{} {
		fd, ok := md.FieldByName(name)
		require.True(t, ok, name)
		return fd.DefaultValue()
	}

	require.Equal(t, 1.5, get("d"))
	require.Equal(t, float32(-0.25), get("f"))
	require.Equal(t, math.Inf(1), get("d_inf"))
	require.Equal(t, math.Inf(-1), get("d_neg_inf"))
	require.True(t, math.IsNaN(get("d_nan").(float64)))
	require.Equal(t, int32(-3), get("i32"))
	require.Equal(t, int64(9000000000), get("i64"))
	require.Equal(t, uint32(4000000000), get("u32"))
	require.Equal(t, uint64(10000000000000000000), get("u64"))
	require.Equal(t, int32(-44), get("s32"))
	require.Equal(t, uint32(17), get("fx32"))
	require.Equal(t, true, get("flag"))
	require.Equal(t, `hello, "world"`, get("text"))
	require.Equal(t, []byte("\x00\x01\x07\x08\x0c\n\r\t\x0b\\'\"\xfe"), get("blob"))
	require.Equal(t, int32(2), get("mood"), "enum defaults carry the value's number")
	require.Nil(t, get("plain"))
}

func TestExtensions(t *testing.T) {
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
				repeated int32 marks = 101;
			}

			message Nester {
				extend Extendable {
					optional bool nested_flag = 102 [default = true];
				}
			}
		`,
	})
	md, ok := pool.MessageByName("my.test.Extendable")
	require.True(t, ok)
	require.Len(t, md.Extensions(), 3)

	note, ok := pool.ExtensionByName("my.test.note")
	require.True(t, ok)
	require.Equal(t, int32(100), note.Number())
	require.Equal(t, desc.KindString, note.Kind())
	require.Equal(t, "[my.test.note]", note.JSONName())
	require.True(t, note.SupportsPresence())
	require.False(t, note.IsList())
	require.True(t, note.IsExtension())
	require.Equal(t, "my.test.Extendable", note.Extendee().FullName())
	_, declaredInMessage := note.DeclaringMessage()
	require.False(t, declaredInMessage)

	marks, ok := md.Extension(101)
	require.True(t, ok)
	require.Equal(t, "my.test.marks", marks.FullName())
	require.True(t, marks.IsList())
	require.False(t, marks.IsPacked(), "proto2 extensions default to unpacked")

	nested, ok := pool.ExtensionByName("my.test.Nester.nested_flag")
	require.True(t, ok)
	require.Equal(t, true, nested.DefaultValue())
	declarer, ok := nested.DeclaringMessage()
	require.True(t, ok)
	require.Equal(t, "my.test.Nester", declarer.FullName())
	byJSON, ok := md.ExtensionByJSONName("[my.test.Nester.nested_flag]")
	require.True(t, ok)
	require.Equal(t, int32(102), byJSON.Number())

	nester, _ := pool.MessageByName("my.test.Nester")
	require.Len(t, nester.ChildExtensions(), 1)

	_, ok = md.Extension(103)
	require.False(t, ok)
}
