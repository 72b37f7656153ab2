// Package desc builds descriptor pools from file descriptor protos and
// exposes them through lightweight descriptor views.
//
// A DescriptorPool is assembled once, from the protos produced by
// protoc or any other compiler, and is immutable afterwards: all views
// handed out by the pool are small value types that index into it, so
// they may be copied and read from any number of goroutines.
package desc

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/descriptorpb"
)

// DescriptorPool is a set of files whose message, enum, extension, and
// service declarations have been linked into a queryable type registry.
type DescriptorPool struct {
	files    []fileInner
	types    typeMap
	services []serviceInner
}

// NewPool links the given file descriptor protos into a pool. Files may
// reference types declared in any other file of the set regardless of
// order. The pool retains the protos; callers must not mutate them
// afterwards.
//
// Any duplicate full name, unresolvable type reference, malformed map
// entry, out-of-range field number, or undeclared extension number
// fails the whole build with a *Error.
func NewPool(files ...*descriptorpb.FileDescriptorProto) (*DescriptorPool, error) {
	p := &DescriptorPool{
		types: typeMap{named: make(map[string]typeID)},
	}
	seen := make(map[string]bool, len(files))
	for _, fd := range files {
		name := fd.GetName()
		if seen[name] {
			return nil, invalidDescriptorError(name, "file appears more than once")
		}
		seen[name] = true
		p.files = append(p.files, fileInner{proto: fd})
	}
	for i := range p.files {
		if err := p.registerFile(i); err != nil {
			return nil, err
		}
	}
	for i := range p.types.messages {
		if err := p.resolveMessage(i); err != nil {
			return nil, err
		}
	}
	for i := range p.types.enums {
		if err := p.resolveEnum(i); err != nil {
			return nil, err
		}
	}
	for i := range p.types.extensions {
		if err := p.resolveExtension(i); err != nil {
			return nil, err
		}
	}
	for i := range p.services {
		if err := p.resolveService(i); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// NewPoolFromFileDescriptorSet links all files of a FileDescriptorSet,
// the schema protoc emits for --descriptor_set_out.
func NewPoolFromFileDescriptorSet(fds *descriptorpb.FileDescriptorSet) (*DescriptorPool, error) {
	return NewPool(fds.GetFile()...)
}

// DecodePool unmarshals serialized FileDescriptorSet bytes and links
// the result.
func DecodePool(data []byte) (*DescriptorPool, error) {
	var fds descriptorpb.FileDescriptorSet
	if err := proto.Unmarshal(data, &fds); err != nil {
		return nil, err
	}
	return NewPoolFromFileDescriptorSet(&fds)
}

// Files returns views of every file in the pool, in the order given to
// NewPool.
func (p *DescriptorPool) Files() []FileDescriptor {
	out := make([]FileDescriptor, len(p.files))
	for i := range p.files {
		out[i] = FileDescriptor{pool: p, index: i}
	}
	return out
}

// Messages returns views of every message in the pool, including
// nested and map entry messages, in registration order.
func (p *DescriptorPool) Messages() []MessageDescriptor {
	out := make([]MessageDescriptor, len(p.types.messages))
	for i := range p.types.messages {
		out[i] = MessageDescriptor{pool: p, index: i}
	}
	return out
}

// Enums returns views of every enum in the pool.
func (p *DescriptorPool) Enums() []EnumDescriptor {
	out := make([]EnumDescriptor, len(p.types.enums))
	for i := range p.types.enums {
		out[i] = EnumDescriptor{pool: p, index: i}
	}
	return out
}

// Extensions returns views of every extension in the pool.
func (p *DescriptorPool) Extensions() []ExtensionDescriptor {
	out := make([]ExtensionDescriptor, len(p.types.extensions))
	for i := range p.types.extensions {
		out[i] = ExtensionDescriptor{pool: p, index: i}
	}
	return out
}

// Services returns views of every service in the pool.
func (p *DescriptorPool) Services() []ServiceDescriptor {
	out := make([]ServiceDescriptor, len(p.services))
	for i := range p.services {
		out[i] = ServiceDescriptor{pool: p, index: i}
	}
	return out
}

// MessageByName looks up a message by fully-qualified name, without a
// leading dot.
func (p *DescriptorPool) MessageByName(fullName string) (MessageDescriptor, bool) {
	if id, ok := p.types.named[fullName]; ok && id.kind == messageType {
		return MessageDescriptor{pool: p, index: id.index}, true
	}
	return MessageDescriptor{}, false
}

// EnumByName looks up an enum by fully-qualified name.
func (p *DescriptorPool) EnumByName(fullName string) (EnumDescriptor, bool) {
	if id, ok := p.types.named[fullName]; ok && id.kind == enumType {
		return EnumDescriptor{pool: p, index: id.index}, true
	}
	return EnumDescriptor{}, false
}

// ExtensionByName looks up an extension by fully-qualified name.
func (p *DescriptorPool) ExtensionByName(fullName string) (ExtensionDescriptor, bool) {
	if id, ok := p.types.named[fullName]; ok && id.kind == extensionType {
		return ExtensionDescriptor{pool: p, index: id.index}, true
	}
	return ExtensionDescriptor{}, false
}

// ServiceByName looks up a service by fully-qualified name.
func (p *DescriptorPool) ServiceByName(fullName string) (ServiceDescriptor, bool) {
	if id, ok := p.types.named[fullName]; ok && id.kind == serviceType {
		return ServiceDescriptor{pool: p, index: id.index}, true
	}
	return ServiceDescriptor{}, false
}
