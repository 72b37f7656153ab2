// Package codec implements a reader/writer over the protobuf binary wire
// format.
//
// Buffer is deliberately low level: it deals in tags, varints, fixed-width
// integers, and length-delimited byte runs, and knows nothing about
// descriptors. The dynamic package layers field semantics on top of it.
package codec

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// Wire types, as encoded in the low three bits of a field tag.
const (
	WireVarint     int8 = 0
	WireFixed64    int8 = 1
	WireBytes      int8 = 2
	WireStartGroup int8 = 3
	WireEndGroup   int8 = 4
	WireFixed32    int8 = 5
)

// ErrOverflow is returned when a varint is too large to be represented
// in 64 bits.
var ErrOverflow = errors.New("codec: varint overflows 64 bits")

// ErrBadWireType is returned when a tag carries a wire type that the
// protobuf wire format does not define.
var ErrBadWireType = errors.New("codec: unknown wire type")

// Buffer wraps a slice of bytes and provides sequential decoding and
// appending encoding of wire-format primitives. The zero value is an
// empty buffer ready for encoding.
type Buffer struct {
	buf   []byte
	index int
}

// NewBuffer creates a buffer that reads from (and appends after) the
// given bytes.
func NewBuffer(buf []byte) *Buffer {
	return &Buffer{buf: buf}
}

// Reset truncates the buffer back to empty. Subsequent encodes allocate
// a new backing slice.
func (cb *Buffer) Reset() {
	cb.buf = nil
	cb.index = 0
}

// Bytes returns the unread portion of the buffer. The returned slice
// aliases the buffer's backing array.
func (cb *Buffer) Bytes() []byte {
	return cb.buf[cb.index:]
}

// Len returns the number of unread bytes.
func (cb *Buffer) Len() int {
	return len(cb.buf) - cb.index
}

// EOF reports whether all bytes have been consumed.
func (cb *Buffer) EOF() bool {
	return cb.index >= len(cb.buf)
}

// Skip advances past count bytes, or returns io.ErrUnexpectedEOF if
// fewer remain.
func (cb *Buffer) Skip(count int) error {
	if count < 0 {
		return fmt.Errorf("codec: bad byte length %d", count)
	}
	newIndex := cb.index + count
	if newIndex < cb.index || newIndex > len(cb.buf) {
		return io.ErrUnexpectedEOF
	}
	cb.index = newIndex
	return nil
}

// DecodeVarint reads a base-128 varint from the buffer. This is the
// representation of the int32, int64, uint32, uint64, bool, and enum
// protobuf types.
func (cb *Buffer) DecodeVarint() (uint64, error) {
	if cb.index >= len(cb.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	// single-byte values dominate real schemas
	if b := cb.buf[cb.index]; b < 0x80 {
		cb.index++
		return uint64(b), nil
	}
	var x uint64
	for shift := uint(0); shift < 64; shift += 7 {
		if cb.index >= len(cb.buf) {
			return 0, io.ErrUnexpectedEOF
		}
		b := cb.buf[cb.index]
		cb.index++
		x |= uint64(b&0x7f) << shift
		if b < 0x80 {
			return x, nil
		}
	}
	return 0, ErrOverflow
}

// DecodeTagAndWireType reads a field tag and splits it into the field
// number and wire type.
func (cb *Buffer) DecodeTagAndWireType() (fieldNum int32, wireType int8, err error) {
	v, err := cb.DecodeVarint()
	if err != nil {
		return 0, 0, err
	}
	wireType = int8(v & 7)
	v >>= 3
	if v > math.MaxInt32 {
		return 0, 0, fmt.Errorf("codec: field number out of range: %d", v)
	}
	if v == 0 {
		return 0, 0, errors.New("codec: invalid field number 0")
	}
	return int32(v), wireType, nil
}

// DecodeFixed64 reads a little-endian 64-bit integer. This is the
// representation of the fixed64, sfixed64, and double protobuf types.
func (cb *Buffer) DecodeFixed64() (uint64, error) {
	i := cb.index + 8
	if i < 0 || i > len(cb.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	cb.index = i
	b := cb.buf[i-8 : i]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56, nil
}

// DecodeFixed32 reads a little-endian 32-bit integer. This is the
// representation of the fixed32, sfixed32, and float protobuf types.
func (cb *Buffer) DecodeFixed32() (uint64, error) {
	i := cb.index + 4
	if i < 0 || i > len(cb.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	cb.index = i
	b := cb.buf[i-4 : i]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24, nil
}

// DecodeRawBytes reads a length-prefixed run of bytes, the
// representation of the string and bytes protobuf types and of embedded
// messages. If alloc is true the result is copied out of the buffer's
// backing array.
func (cb *Buffer) DecodeRawBytes(alloc bool) ([]byte, error) {
	n, err := cb.DecodeVarint()
	if err != nil {
		return nil, err
	}
	nb := int(n)
	if nb < 0 {
		return nil, fmt.Errorf("codec: bad byte length %d", nb)
	}
	end := cb.index + nb
	if end < cb.index || end > len(cb.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	if !alloc {
		b := cb.buf[cb.index:end]
		cb.index = end
		return b, nil
	}
	b := make([]byte, nb)
	copy(b, cb.buf[cb.index:])
	cb.index = end
	return b, nil
}

// DecodeZigZag32 undoes zig-zag encoding of a signed 32-bit integer.
func DecodeZigZag32(v uint64) int32 {
	return int32((uint32(v) >> 1) ^ uint32((int32(v&1)<<31)>>31))
}

// DecodeZigZag64 undoes zig-zag encoding of a signed 64-bit integer.
func DecodeZigZag64(v uint64) int64 {
	return int64((v >> 1) ^ uint64((int64(v&1)<<63)>>63))
}

// ReadGroup reads input up to (but not including) the matching
// "group end" tag and positions the buffer after that tag. Nested
// groups are handled. If alloc is true the returned bytes are copied.
func (cb *Buffer) ReadGroup(alloc bool) ([]byte, error) {
	groupEnd, dataEnd, err := cb.findGroupEnd()
	if err != nil {
		return nil, err
	}
	var results []byte
	if alloc {
		results = make([]byte, dataEnd-cb.index)
		copy(results, cb.buf[cb.index:])
	} else {
		results = cb.buf[cb.index:dataEnd]
	}
	cb.index = groupEnd
	return results, nil
}

// SkipGroup discards input through the matching "group end" tag.
func (cb *Buffer) SkipGroup() error {
	groupEnd, _, err := cb.findGroupEnd()
	if err != nil {
		return err
	}
	cb.index = groupEnd
	return nil
}

// SkipValue discards a single value of the given wire type. Used to
// step over unrecognized fields.
func (cb *Buffer) SkipValue(wireType int8) error {
	switch wireType {
	case WireVarint:
		_, err := cb.DecodeVarint()
		return err
	case WireFixed32:
		return cb.Skip(4)
	case WireFixed64:
		return cb.Skip(8)
	case WireBytes:
		_, err := cb.DecodeRawBytes(false)
		return err
	case WireStartGroup:
		return cb.SkipGroup()
	default:
		return ErrBadWireType
	}
}

func (cb *Buffer) findGroupEnd() (groupEnd int, dataEnd int, err error) {
	start := cb.index
	defer func() {
		cb.index = start
	}()
	for {
		fieldStart := cb.index
		_, wireType, err := cb.DecodeTagAndWireType()
		if err != nil {
			return 0, 0, err
		}
		if wireType == WireEndGroup {
			return cb.index, fieldStart, nil
		}
		if err := cb.SkipValue(wireType); err != nil {
			return 0, 0, err
		}
	}
}

// EncodeVarint appends a base-128 varint.
func (cb *Buffer) EncodeVarint(x uint64) {
	for x >= 1<<7 {
		cb.buf = append(cb.buf, uint8(x&0x7f|0x80))
		x >>= 7
	}
	cb.buf = append(cb.buf, uint8(x))
}

// EncodeTagAndWireType appends a field tag combining the given field
// number and wire type.
func (cb *Buffer) EncodeTagAndWireType(fieldNum int32, wireType int8) {
	cb.EncodeVarint(uint64(int64(fieldNum)<<3 | int64(wireType)))
}

// EncodeFixed64 appends a little-endian 64-bit integer.
func (cb *Buffer) EncodeFixed64(x uint64) {
	cb.buf = append(cb.buf,
		uint8(x),
		uint8(x>>8),
		uint8(x>>16),
		uint8(x>>24),
		uint8(x>>32),
		uint8(x>>40),
		uint8(x>>48),
		uint8(x>>56))
}

// EncodeFixed32 appends a little-endian 32-bit integer.
func (cb *Buffer) EncodeFixed32(x uint64) {
	cb.buf = append(cb.buf,
		uint8(x),
		uint8(x>>8),
		uint8(x>>16),
		uint8(x>>24))
}

// EncodeRawBytes appends a length-prefixed run of bytes.
func (cb *Buffer) EncodeRawBytes(b []byte) {
	cb.EncodeVarint(uint64(len(b)))
	cb.buf = append(cb.buf, b...)
}

// EncodeZigZag64 zig-zag encodes a signed 64-bit integer so that small
// negative values use few varint bytes.
func EncodeZigZag64(v int64) uint64 {
	return (uint64(v) << 1) ^ uint64(v>>63)
}

// EncodeZigZag32 zig-zag encodes a signed 32-bit integer.
func EncodeZigZag32(v int32) uint64 {
	return uint64((uint32(v) << 1) ^ uint32(v>>31))
}
