// Package link owns the byte-stream connection to the reader.
package link

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"syscall"
	"time"

	"go.bug.st/serial"
)

// Serial line settings of the reader. They are fixed by the protocol.
const (
	BaudRate = 115200
	DataBits = 8
)

// DefaultReadTimeout bounds a single Read so the reader loop can be stopped.
const DefaultReadTimeout = 10 * time.Millisecond

var (
	// ErrClosed indicates the link is not open.
	ErrClosed = errors.New("link: not open")
	// ErrDisconnected indicates the transport went away during a read or write.
	ErrDisconnected = errors.New("link: disconnected")
)

// Port is an open byte-stream transport.
// Read must return (0, nil) when no data arrives within the read timeout.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(time.Duration) error
}

// DialFunc opens a Port for an address.
type DialFunc func(address string) (Port, error)

// Link owns a Port and tracks its open state.
type Link struct {
	Dial        DialFunc
	ReadTimeout time.Duration

	port    Port
	address string
	lock    sync.RWMutex
}

// New creates a Link. A nil dial uses Dial.
func New(dial DialFunc) *Link {
	if dial == nil {
		dial = Dial
	}
	return &Link{Dial: dial, ReadTimeout: DefaultReadTimeout}
}

// Open opens the port at address. It does nothing if already open.
func (l *Link) Open(address string) error {
	l.lock.Lock()
	defer l.lock.Unlock()
	if l.port != nil {
		return nil
	}
	port, err := l.Dial(address)
	if err != nil {
		return fmt.Errorf("open %s: %w", address, err)
	}
	timeout := l.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return fmt.Errorf("open %s: set read timeout: %w", address, err)
	}
	l.port, l.address = port, address
	return nil
}

// Close closes the port. It does nothing if already closed.
func (l *Link) Close() error {
	l.lock.Lock()
	port := l.port
	l.port, l.address = nil, ""
	l.lock.Unlock()
	if port == nil {
		return nil
	}
	return port.Close()
}

// IsOpen reports whether the port is open.
func (l *Link) IsOpen() bool {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.port != nil
}

// Address returns the address of the open port.
func (l *Link) Address() string {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.address
}

// Write writes all bytes to the port.
func (l *Link) Write(p []byte) error {
	l.lock.RLock()
	defer l.lock.RUnlock()
	if l.port == nil {
		return ErrClosed
	}
	for len(p) > 0 {
		n, err := l.port.Write(p)
		if err != nil {
			return classify(err)
		}
		p = p[n:]
	}
	return nil
}

// Read reads available bytes, waiting at most the read timeout.
// A transport failure is reported as ErrDisconnected.
func (l *Link) Read(p []byte) (int, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()
	if l.port == nil {
		return 0, ErrClosed
	}
	n, err := l.port.Read(p)
	if err != nil {
		return n, classify(err)
	}
	return n, nil
}

func classify(err error) error {
	if IsDisconnect(err) {
		return fmt.Errorf("%w: %v", ErrDisconnected, err)
	}
	return err
}

// IsDisconnect tells whether err means the transport went away.
func IsDisconnect(err error) bool {
	if errors.Is(err, ErrDisconnected) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var portErr *serial.PortError
	return errors.As(err, &portErr)
}
