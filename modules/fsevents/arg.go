package fsevents

import (
	"bytes"
	"encoding/binary"
)

var byteOrder = binary.LittleEndian

// Arg is a single event argument. The terminator carries neither a length
// nor a payload, which Done reports. Payload aliases the buffer it was
// decoded from and is only valid until that buffer is reused.
type Arg struct {
	Tag     uint16
	Len     uint16
	Payload []byte
}

// Done reports whether a is the argument list terminator.
func (a Arg) Done() bool {
	return a.Tag == ArgDone
}

// Name returns the display name of the argument tag.
func (a Arg) Name() string {
	return ArgName(a.Tag)
}

// Size is the number of bytes a occupies on the wire.
func (a Arg) Size() int {
	if a.Done() {
		return tagSize
	}
	return argHeaderSize + int(a.Len)
}

// DecodeArg decodes one argument starting at off and returns it together with
// the offset of the byte following it.
func DecodeArg(buf []byte, off int) (Arg, int, error) {
	if off < 0 || off+tagSize > len(buf) {
		return Arg{}, off, &DecodeError{Offset: off, Err: ErrTruncated}
	}

	tag := byteOrder.Uint16(buf[off:])
	if tag == ArgDone {
		return Arg{Tag: ArgDone}, off + tagSize, nil
	}

	if off+argHeaderSize > len(buf) {
		return Arg{}, off, &DecodeError{Offset: off, Err: ErrTruncated}
	}

	length := byteOrder.Uint16(buf[off+tagSize:])
	start := off + argHeaderSize
	end := start + int(length)
	if end > len(buf) {
		return Arg{}, off, &DecodeError{Offset: off, Err: ErrTruncated}
	}

	a := Arg{
		Tag:     tag,
		Len:     length,
		Payload: buf[start:end:end],
	}
	return a, off + a.Size(), nil
}

// String returns the payload as a path. The producer terminates strings with
// a NUL byte; the value stops there but never reads beyond Len bytes.
func (a Arg) String() string {
	p := a.Payload[:min(int(a.Len), len(a.Payload))]
	if i := bytes.IndexByte(p, 0); i >= 0 {
		p = p[:i]
	}
	return string(p)
}

// Int32 decodes a four byte payload.
func (a Arg) Int32() (int32, bool) {
	if len(a.Payload) != 4 {
		return 0, false
	}
	return int32(byteOrder.Uint32(a.Payload)), true
}

// Uint32 decodes a four byte payload, as carried by uid, gid and mode args.
func (a Arg) Uint32() (uint32, bool) {
	if len(a.Payload) != 4 {
		return 0, false
	}
	return byteOrder.Uint32(a.Payload), true
}

// Int64 decodes an eight byte payload.
func (a Arg) Int64() (int64, bool) {
	if len(a.Payload) != 8 {
		return 0, false
	}
	return int64(byteOrder.Uint64(a.Payload)), true
}

// Ino decodes an inode number.
func (a Arg) Ino() (uint64, bool) {
	if len(a.Payload) != 8 {
		return 0, false
	}
	return byteOrder.Uint64(a.Payload), true
}

// Dev decodes a device number.
func (a Arg) Dev() (int32, bool) {
	return a.Int32()
}

// AppendArg appends the wire encoding of a to dst.
func AppendArg(dst []byte, a Arg) []byte {
	dst = byteOrder.AppendUint16(dst, a.Tag)
	if a.Done() {
		return dst
	}
	dst = byteOrder.AppendUint16(dst, a.Len)
	return append(dst, a.Payload[:a.Len]...)
}

// StringArg builds a NUL terminated string argument.
func StringArg(s string) Arg {
	p := append([]byte(s), 0)
	return Arg{Tag: ArgString, Len: uint16(len(p)), Payload: p}
}
