package rcp

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete indicates more bytes are needed to decode a frame.
	ErrIncomplete = errors.New("rcp: incomplete frame")
	// ErrMalformed indicates bytes which can't be decoded as a frame,
	// or a frame which can't be decoded as the expected value.
	ErrMalformed = errors.New("rcp: malformed frame")
	// ErrInvalidArgument indicates a command argument out of range.
	ErrInvalidArgument = errors.New("rcp: invalid argument")
)

// OperationError is reported by the reader in a failure response.
type OperationError struct {
	Code    byte
	Command byte
}

var errorMessages = map[byte]string{
	0x01: "invalid parameter",
	0x02: "command not supported",
	0x03: "invalid payload length",
	0x04: "CRC error",
	0x05: "reader busy",
	0x06: "tag not found",
	0x07: "memory overrun",
	0x08: "memory locked",
	0x09: "insufficient power",
	0x0A: "non-specific tag error",
	0x0B: "access password mismatch",
	0x0C: "region not supported",
	0x0D: "channel busy (LBT)",
	0x0E: "hardware error",
}

// Message returns the human readable message of the error code.
func (e *OperationError) Message() string {
	if msg, ok := errorMessages[e.Code]; ok {
		return msg
	}
	return "unknown error"
}

// Error implements error.
func (e *OperationError) Error() string {
	return fmt.Sprintf("rcp: command %#02x failed: %s (%#02x)", e.Command, e.Message(), e.Code)
}
