package rcp

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MessageType is the discriminant of a frame.
type MessageType byte

// Message types.
const (
	TypeCommand      MessageType = 0x00
	TypeResponse     MessageType = 0x01
	TypeNotification MessageType = 0x02
)

// String implements fmt.Stringer.
func (t MessageType) String() string {
	switch t {
	case TypeCommand:
		return "command"
	case TypeResponse:
		return "response"
	case TypeNotification:
		return "notification"
	}
	return fmt.Sprintf("type(%#02x)", byte(t))
}

// IsValid checks if the type is known.
func (t MessageType) IsValid() bool {
	return t <= TypeNotification
}

const (
	preamble byte = 0xBB
	endMark  byte = 0x7E

	headerLen  = 5
	trailerLen = 3

	// MaxPayloadLen is the largest payload accepted by the decoder.
	MaxPayloadLen = 1024
)

// Frame is a single protocol frame.
type Frame struct {
	Type    MessageType
	Code    byte
	Payload []byte
}

// Len returns the encoded length of the frame.
func (f *Frame) Len() int {
	return headerLen + len(f.Payload) + trailerLen
}

// Bytes returns encoded bytes for sending.
func (f *Frame) Bytes() []byte {
	b := make([]byte, f.Len())
	b[0], b[1], b[2] = preamble, byte(f.Type), f.Code
	binary.BigEndian.PutUint16(b[3:], uint16(len(f.Payload)))
	copy(b[headerLen:], f.Payload)
	b[headerLen+len(f.Payload)] = endMark
	binary.BigEndian.PutUint16(b[len(b)-2:], checksum(b[1:len(b)-2]))
	return b
}

// WriteTo implements io.WriterTo. The frame is written with a single Write.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(f.Bytes())
	return int64(n), err
}

// String implements fmt.Stringer.
func (f *Frame) String() string {
	return fmt.Sprintf("%s %#02x [% X]", f.Type, f.Code, f.Payload)
}

// Decode decodes one frame from the beginning of buf.
// It returns the frame and the number of bytes consumed. When buf holds an
// incomplete frame, ErrIncomplete is returned and nothing is consumed.
// Malformed input is reported with an error wrapping ErrMalformed, and the
// consumed count tells how many bytes must be dropped to resynchronize.
func Decode(buf []byte) (*Frame, int, error) {
	if len(buf) == 0 {
		return nil, 0, ErrIncomplete
	}
	if buf[0] != preamble {
		n := 1
		for n < len(buf) && buf[n] != preamble {
			n++
		}
		return nil, n, fmt.Errorf("%w: %d bytes before preamble", ErrMalformed, n)
	}
	if len(buf) < headerLen {
		return nil, 0, ErrIncomplete
	}
	size := int(binary.BigEndian.Uint16(buf[3:]))
	if size > MaxPayloadLen {
		return nil, 1, fmt.Errorf("%w: payload length %d", ErrMalformed, size)
	}
	total := headerLen + size + trailerLen
	if len(buf) < total {
		return nil, 0, ErrIncomplete
	}
	if buf[headerLen+size] != endMark {
		return nil, 1, fmt.Errorf("%w: end mark %#02x", ErrMalformed, buf[headerLen+size])
	}
	if sum, expected := checksum(buf[1:total-2]), binary.BigEndian.Uint16(buf[total-2:]); sum != expected {
		return nil, 1, fmt.Errorf("%w: checksum %04x, expect %04x", ErrMalformed, sum, expected)
	}
	typ := MessageType(buf[1])
	if !typ.IsValid() {
		return nil, total, fmt.Errorf("%w: unknown %s", ErrMalformed, typ)
	}
	f := &Frame{Type: typ, Code: buf[2]}
	if size > 0 {
		f.Payload = make([]byte, size)
		copy(f.Payload, buf[headerLen:])
	}
	return f, total, nil
}
