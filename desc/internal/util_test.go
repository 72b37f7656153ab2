package internal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFullName(t *testing.T) {
	require.Equal(t, "my.package.MyMessage", FullName("my.package", "MyMessage"))
	require.Equal(t, "MyMessage", FullName("", "MyMessage"))
	require.Equal(t, "my.package.MyMessage.Nested", FullName("my.package.MyMessage", "Nested"))
}

func TestShortNameAndNamespace(t *testing.T) {
	require.Equal(t, "MyMessage", ShortName("my.package.MyMessage"))
	require.Equal(t, "my.package", Namespace("my.package.MyMessage"))
	require.Equal(t, "MyMessage", ShortName("MyMessage"))
	require.Equal(t, "", Namespace("MyMessage"))
}

func TestTrimLeadingDot(t *testing.T) {
	require.Equal(t, "my.package.MyMessage", TrimLeadingDot(".my.package.MyMessage"))
	require.Equal(t, "my.package.MyMessage", TrimLeadingDot("my.package.MyMessage"))
}

func TestJSONName(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{"foo_bar_baz", "fooBarBaz"},
		{"foo", "foo"},
		{"fooBar", "fooBar"},
		{"foo_2bar", "foo2bar"},
		{"_foo", "Foo"},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expected, JSONName(tc.name), "JSONName(%q)", tc.name)
	}
}
