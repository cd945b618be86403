package link

import (
	"net"
	"sync/atomic"
	"time"
)

// NetPort adapts a net.Conn to Port using read deadlines.
type NetPort struct {
	net.Conn

	timeout int64 // time.Duration
}

// NewNetPort wraps conn.
func NewNetPort(conn net.Conn) *NetPort {
	return &NetPort{Conn: conn, timeout: int64(DefaultReadTimeout)}
}

// SetReadTimeout implements Port.
func (p *NetPort) SetReadTimeout(d time.Duration) error {
	atomic.StoreInt64(&p.timeout, int64(d))
	return nil
}

// Read implements Port. A deadline expiry is reported as (0, nil).
func (p *NetPort) Read(b []byte) (int, error) {
	if d := time.Duration(atomic.LoadInt64(&p.timeout)); d > 0 {
		if err := p.Conn.SetReadDeadline(time.Now().Add(d)); err != nil {
			return 0, err
		}
	}
	n, err := p.Conn.Read(b)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return n, nil
		}
	}
	return n, err
}

// Pipe creates a pair of connected in-memory Ports.
func Pipe() (*NetPort, *NetPort) {
	a, b := net.Pipe()
	return NewNetPort(a), NewNetPort(b)
}
