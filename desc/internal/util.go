package internal

import (
	"strings"
	"unicode"
)

// MaxTag is the largest allowed field number (2^29 - 1).
const MaxTag = 536870911

const (
	// MapEntryKeyNumber is the field number of the key field in a
	// synthetic map entry message.
	MapEntryKeyNumber = 1
	// MapEntryValueNumber is the field number of the value field in a
	// synthetic map entry message.
	MapEntryValueNumber = 2
)

// FullName joins a namespace and a short name into a dotted full name.
// If the namespace is empty the short name is returned unchanged, so
// files without a package produce names with no leading separator.
func FullName(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// ShortName returns the final segment of a dotted full name.
func ShortName(fullName string) string {
	if i := strings.LastIndexByte(fullName, '.'); i >= 0 {
		return fullName[i+1:]
	}
	return fullName
}

// Namespace returns the enclosing namespace of a dotted full name: all
// segments except the last. The namespace of a top-level name is "".
func Namespace(fullName string) string {
	if i := strings.LastIndexByte(fullName, '.'); i >= 0 {
		return fullName[:i]
	}
	return ""
}

// TrimLeadingDot strips the leading separator off a fully-qualified
// reference such as ".my.package.MyMessage".
func TrimLeadingDot(name string) string {
	return strings.TrimPrefix(name, ".")
}

// JSONName computes the default JSON name for a field: the camel-cased
// form of the declared name, with underscores removed.
func JSONName(name string) string {
	var js []rune
	nextUpper := false
	for i, r := range name {
		if r == '_' {
			nextUpper = true
			continue
		}
		if i == 0 {
			js = append(js, r)
		} else if nextUpper {
			nextUpper = false
			js = append(js, unicode.ToUpper(r))
		} else {
			js = append(js, r)
		}
	}
	return string(js)
}
