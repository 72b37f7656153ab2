package desc

import "fmt"

// Error describes why a set of file descriptor protos could not be
// assembled into a pool. Name is the fully-qualified name of the
// element the problem was detected on.
type Error struct {
	Name   string
	detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("desc: %s: %s", e.Name, e.detail)
}

func duplicateNameError(fullName string) *Error {
	return &Error{Name: fullName, detail: "name declared more than once"}
}

func typeNotFoundError(scope, ref string) *Error {
	return &Error{Name: scope, detail: fmt.Sprintf("type %q could not be resolved", ref)}
}

func notAMessageError(scope, ref string) *Error {
	return &Error{Name: scope, detail: fmt.Sprintf("type %q is not a message", ref)}
}

func notAnEnumError(scope, ref string) *Error {
	return &Error{Name: scope, detail: fmt.Sprintf("type %q is not an enum", ref)}
}

func invalidDescriptorError(fullName, format string, args ...interface{}) *Error {
	return &Error{Name: fullName, detail: fmt.Sprintf(format, args...)}
}
