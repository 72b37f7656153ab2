package desc

import (
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/protodyn/protodyn/desc/internal"
)

// ServiceDescriptor is a view of one service in a pool.
type ServiceDescriptor struct {
	pool  *DescriptorPool
	index int
}

func (sd ServiceDescriptor) inner() *serviceInner {
	return &sd.pool.services[sd.index]
}

// Name returns the service's short name.
func (sd ServiceDescriptor) Name() string {
	return sd.inner().proto.GetName()
}

// FullName returns the service's fully-qualified name.
func (sd ServiceDescriptor) FullName() string {
	return sd.inner().fullName
}

// File returns the file the service is declared in.
func (sd ServiceDescriptor) File() FileDescriptor {
	return FileDescriptor{pool: sd.pool, index: sd.inner().file}
}

// ServiceDescriptorProto returns the raw descriptor. Callers must not
// mutate it.
func (sd ServiceDescriptor) ServiceDescriptorProto() *descriptorpb.ServiceDescriptorProto {
	return sd.inner().proto
}

// Methods returns the service's methods in declaration order.
func (sd ServiceDescriptor) Methods() []MethodDescriptor {
	n := len(sd.inner().methods)
	out := make([]MethodDescriptor, n)
	for i := 0; i < n; i++ {
		out[i] = MethodDescriptor{pool: sd.pool, service: sd.index, index: i}
	}
	return out
}

// MethodByName looks up a method by its short name.
func (sd ServiceDescriptor) MethodByName(name string) (MethodDescriptor, bool) {
	for i, mi := range sd.inner().methods {
		if mi.proto.GetName() == name {
			return MethodDescriptor{pool: sd.pool, service: sd.index, index: i}, true
		}
	}
	return MethodDescriptor{}, false
}

// MethodDescriptor is a view of one method of a service.
type MethodDescriptor struct {
	pool    *DescriptorPool
	service int
	index   int
}

func (md MethodDescriptor) inner() *methodInner {
	return &md.pool.services[md.service].methods[md.index]
}

// Service returns the service the method belongs to.
func (md MethodDescriptor) Service() ServiceDescriptor {
	return ServiceDescriptor{pool: md.pool, index: md.service}
}

// Name returns the method's short name.
func (md MethodDescriptor) Name() string {
	return md.inner().proto.GetName()
}

// FullName returns the method's fully-qualified name.
func (md MethodDescriptor) FullName() string {
	return internal.FullName(md.pool.services[md.service].fullName, md.Name())
}

// InputType returns the method's request message type.
func (md MethodDescriptor) InputType() MessageDescriptor {
	return MessageDescriptor{pool: md.pool, index: md.inner().input}
}

// OutputType returns the method's response message type.
func (md MethodDescriptor) OutputType() MessageDescriptor {
	return MessageDescriptor{pool: md.pool, index: md.inner().output}
}

// IsClientStreaming reports whether the client sends a stream of
// request messages.
func (md MethodDescriptor) IsClientStreaming() bool {
	return md.inner().proto.GetClientStreaming()
}

// IsServerStreaming reports whether the server sends a stream of
// response messages.
func (md MethodDescriptor) IsServerStreaming() bool {
	return md.inner().proto.GetServerStreaming()
}

// MethodDescriptorProto returns the raw descriptor. Callers must not
// mutate it.
func (md MethodDescriptor) MethodDescriptorProto() *descriptorpb.MethodDescriptorProto {
	return md.inner().proto
}
