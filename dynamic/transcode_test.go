package dynamic_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/testing/protocmp"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/protodyn/protodyn/dynamic"
)

const transcodeSource = `
	syntax = "proto3";
	package my.test;

	import "google/protobuf/timestamp.proto";
	import "google/protobuf/wrappers.proto";

	message Uses {
		google.protobuf.Timestamp ts = 1;
		google.protobuf.StringValue name = 2;
	}
`

func TestTranscodeFromGeneratedMessage(t *testing.T) {
	pool := buildPool(t, map[string]string{"uses.proto": transcodeSource})
	md := mustMessage(t, pool, "google.protobuf.Timestamp")

	ts := timestamppb.New(time.Unix(1700000000, 42).UTC())
	m := dynamic.NewMessage(md)
	require.NoError(t, m.TranscodeFrom(ts))

	seconds, ok := m.GetFieldByName("seconds").AsInt64()
	require.True(t, ok)
	require.Equal(t, int64(1700000000), seconds)
	nanos, ok := m.GetFieldByName("nanos").AsInt32()
	require.True(t, ok)
	require.Equal(t, int32(42), nanos)
}

func TestTranscodeToGeneratedMessage(t *testing.T) {
	pool := buildPool(t, map[string]string{"uses.proto": transcodeSource})
	md := mustMessage(t, pool, "google.protobuf.Timestamp")

	m := dynamic.NewMessage(md)
	m.SetFieldByName("seconds", dynamic.ValueOfInt64(86400))
	m.SetFieldByName("nanos", dynamic.ValueOfInt32(500))

	var out timestamppb.Timestamp
	require.NoError(t, m.TranscodeTo(&out))

	want := timestamppb.New(time.Unix(86400, 500).UTC())
	require.Empty(t, cmp.Diff(want, &out, protocmp.Transform()))
}

func TestTranscodeNestedDynamic(t *testing.T) {
	pool := buildPool(t, map[string]string{"uses.proto": transcodeSource})
	md := mustMessage(t, pool, "my.test.Uses")
	tsMd := mustMessage(t, pool, "google.protobuf.Timestamp")
	nameMd := mustMessage(t, pool, "google.protobuf.StringValue")

	ts := dynamic.NewMessage(tsMd)
	ts.SetFieldByName("seconds", dynamic.ValueOfInt64(7))
	name := dynamic.NewMessage(nameMd)
	name.SetFieldByName("value", dynamic.ValueOfString("dynamic"))

	m := dynamic.NewMessage(md)
	m.SetFieldByName("ts", dynamic.ValueOfMessage(ts))
	m.SetFieldByName("name", dynamic.ValueOfMessage(name))

	data, err := m.Marshal()
	require.NoError(t, err)

	decoded := dynamic.NewMessage(md)
	require.NoError(t, decoded.Unmarshal(data))
	require.True(t, m.Equal(decoded))
}

func TestTranscodeTypeMismatch(t *testing.T) {
	pool := buildPool(t, map[string]string{"uses.proto": transcodeSource})
	md := mustMessage(t, pool, "google.protobuf.Timestamp")
	m := dynamic.NewMessage(md)

	err := m.TranscodeFrom(wrapperspb.String("not a timestamp"))
	require.ErrorIs(t, err, dynamic.ErrWrongMessage)
	var out wrapperspb.StringValue
	err = m.TranscodeTo(&out)
	require.ErrorIs(t, err, dynamic.ErrWrongMessage)
}
