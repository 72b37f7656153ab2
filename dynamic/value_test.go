package dynamic_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/protodyn/protodyn/dynamic"
)

func TestValueAccessors(t *testing.T) {
	v := dynamic.ValueOfInt32(-7)
	require.True(t, v.IsValid())
	i, ok := v.AsInt32()
	require.True(t, ok)
	require.Equal(t, int32(-7), i)
	_, ok = v.AsInt64()
	require.False(t, ok, "accessors are strict about kind")
	_, ok = v.AsString()
	require.False(t, ok)

	d, ok := dynamic.ValueOfDouble(2.5).AsDouble()
	require.True(t, ok)
	require.Equal(t, 2.5, d)

	b, ok := dynamic.ValueOfBytes([]byte{1, 2}).AsBytes()
	require.True(t, ok)
	require.Equal(t, []byte{1, 2}, b)

	e, ok := dynamic.ValueOfEnum(3).AsEnum()
	require.True(t, ok)
	require.Equal(t, int32(3), e)

	var zero dynamic.Value
	require.False(t, zero.IsValid())
	_, ok = zero.AsBool()
	require.False(t, ok)
}

func TestValueEqual(t *testing.T) {
	require.True(t, dynamic.ValueOfString("x").Equal(dynamic.ValueOfString("x")))
	require.False(t, dynamic.ValueOfString("x").Equal(dynamic.ValueOfString("y")))
	require.False(t, dynamic.ValueOfInt32(1).Equal(dynamic.ValueOfInt64(1)),
		"different kinds are never equal")

	nan := math.NaN()
	require.True(t, dynamic.ValueOfDouble(nan).Equal(dynamic.ValueOfDouble(nan)),
		"bit-pattern comparison makes NaN equal itself")
	require.False(t, dynamic.ValueOfDouble(0).Equal(dynamic.ValueOfDouble(math.Copysign(0, -1))),
		"negative zero is distinct")

	la := dynamic.ValueOfList([]dynamic.Value{dynamic.ValueOfInt32(1), dynamic.ValueOfInt32(2)})
	lb := dynamic.ValueOfList([]dynamic.Value{dynamic.ValueOfInt32(1), dynamic.ValueOfInt32(2)})
	lc := dynamic.ValueOfList([]dynamic.Value{dynamic.ValueOfInt32(2), dynamic.ValueOfInt32(1)})
	require.True(t, la.Equal(lb))
	require.False(t, la.Equal(lc))

	ma := dynamic.ValueOfMap(map[dynamic.MapKey]dynamic.Value{
		dynamic.MapKeyOfString("a"): dynamic.ValueOfInt64(1),
	})
	mb := dynamic.ValueOfMap(map[dynamic.MapKey]dynamic.Value{
		dynamic.MapKeyOfString("a"): dynamic.ValueOfInt64(1),
	})
	mc := dynamic.ValueOfMap(map[dynamic.MapKey]dynamic.Value{
		dynamic.MapKeyOfString("a"): dynamic.ValueOfInt64(2),
	})
	require.True(t, ma.Equal(mb))
	require.False(t, ma.Equal(mc))
}

func TestMapKeyAccessors(t *testing.T) {
	k := dynamic.MapKeyOfInt64(-9)
	i, ok := k.AsInt64()
	require.True(t, ok)
	require.Equal(t, int64(-9), i)
	_, ok = k.AsString()
	require.False(t, ok)

	s, ok := dynamic.MapKeyOfString("key").AsString()
	require.True(t, ok)
	require.Equal(t, "key", s)

	kv := dynamic.MapKeyOfBool(true).Value()
	b, ok := kv.AsBool()
	require.True(t, ok)
	require.True(t, b)

	// MapKey is comparable and collapses equal keys
	mp := map[dynamic.MapKey]int{
		dynamic.MapKeyOfUint32(5): 1,
		dynamic.MapKeyOfUint32(5): 2,
	}
	require.Len(t, mp, 1)
}
