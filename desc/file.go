package desc

import "google.golang.org/protobuf/types/descriptorpb"

// FileDescriptor is a view of one file in a pool.
type FileDescriptor struct {
	pool  *DescriptorPool
	index int
}

func (fd FileDescriptor) inner() *fileInner {
	return &fd.pool.files[fd.index]
}

// Pool returns the pool this file was linked into.
func (fd FileDescriptor) Pool() *DescriptorPool {
	return fd.pool
}

// Path returns the file's path as declared in the descriptor, e.g.
// "google/protobuf/timestamp.proto".
func (fd FileDescriptor) Path() string {
	return fd.inner().proto.GetName()
}

// Package returns the file's package name, or "" if it declares none.
func (fd FileDescriptor) Package() string {
	return fd.inner().proto.GetPackage()
}

// IsProto3 reports whether the file uses proto3 field semantics.
func (fd FileDescriptor) IsProto3() bool {
	return fd.inner().proto3()
}

// FileDescriptorProto returns the raw descriptor the file was built
// from. Callers must not mutate it.
func (fd FileDescriptor) FileDescriptorProto() *descriptorpb.FileDescriptorProto {
	return fd.inner().proto
}

// Messages returns the file's top-level messages.
func (fd FileDescriptor) Messages() []MessageDescriptor {
	indices := fd.inner().messages
	out := make([]MessageDescriptor, len(indices))
	for i, idx := range indices {
		out[i] = MessageDescriptor{pool: fd.pool, index: idx}
	}
	return out
}

// Enums returns the file's top-level enums.
func (fd FileDescriptor) Enums() []EnumDescriptor {
	indices := fd.inner().enums
	out := make([]EnumDescriptor, len(indices))
	for i, idx := range indices {
		out[i] = EnumDescriptor{pool: fd.pool, index: idx}
	}
	return out
}

// Extensions returns the extensions declared at the file's top level.
func (fd FileDescriptor) Extensions() []ExtensionDescriptor {
	indices := fd.inner().extensions
	out := make([]ExtensionDescriptor, len(indices))
	for i, idx := range indices {
		out[i] = ExtensionDescriptor{pool: fd.pool, index: idx}
	}
	return out
}

// Services returns the file's services.
func (fd FileDescriptor) Services() []ServiceDescriptor {
	indices := fd.inner().services
	out := make([]ServiceDescriptor, len(indices))
	for i, idx := range indices {
		out[i] = ServiceDescriptor{pool: fd.pool, index: idx}
	}
	return out
}
