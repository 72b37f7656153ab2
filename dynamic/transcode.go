package dynamic

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// TranscodeFrom replaces the message's contents with the contents of a
// generated message of the same type, by round-tripping through wire
// bytes. The generated message's in-memory shape is never inspected.
func (m *Message) TranscodeFrom(src proto.Message) error {
	if err := m.checkTranscodeType(src); err != nil {
		return err
	}
	data, err := proto.Marshal(src)
	if err != nil {
		return err
	}
	return m.Unmarshal(data)
}

// TranscodeTo serializes the message and decodes the bytes into a
// generated message of the same type. dst is reset first.
func (m *Message) TranscodeTo(dst proto.Message) error {
	if err := m.checkTranscodeType(dst); err != nil {
		return err
	}
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	return proto.Unmarshal(data, dst)
}

func (m *Message) checkTranscodeType(pm proto.Message) error {
	got := string(pm.ProtoReflect().Descriptor().FullName())
	if got != m.md.FullName() {
		return fmt.Errorf("%w: cannot transcode %s as %s", ErrWrongMessage, got, m.md.FullName())
	}
	return nil
}
