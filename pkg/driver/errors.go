package driver

import "errors"

var (
	// ErrNotConnected indicates a command was issued while the link is closed.
	ErrNotConnected = errors.New("driver: not connected")
	// ErrTimeout indicates no reply arrived in time.
	ErrTimeout = errors.New("driver: timeout waiting for reply")
	// ErrClosed indicates the driver has been closed.
	ErrClosed = errors.New("driver: closed")
)
