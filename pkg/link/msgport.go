package link

import (
	"io"
	"sync"
	"time"
)

// messagePort adapts a message oriented connection to a byte stream.
// A pump goroutine receives messages so a Read never interrupts a
// message half way.
type messagePort struct {
	send  func([]byte) error
	close func() error

	timeout time.Duration
	pending []byte
	dataCh  chan []byte
	err     error
	lock    sync.Mutex
}

func newMessagePort(recv func() ([]byte, error), send func([]byte) error, close func() error) *messagePort {
	p := &messagePort{
		send:    send,
		close:   close,
		timeout: DefaultReadTimeout,
		dataCh:  make(chan []byte, 16),
	}
	go p.pump(recv)
	return p
}

func (p *messagePort) pump(recv func() ([]byte, error)) {
	defer close(p.dataCh)
	for {
		data, err := recv()
		if err != nil {
			p.lock.Lock()
			p.err = err
			p.lock.Unlock()
			return
		}
		if len(data) > 0 {
			p.dataCh <- data
		}
	}
}

func (p *messagePort) SetReadTimeout(d time.Duration) error {
	p.lock.Lock()
	p.timeout = d
	p.lock.Unlock()
	return nil
}

func (p *messagePort) Read(b []byte) (int, error) {
	if len(p.pending) == 0 {
		p.lock.Lock()
		timeout := p.timeout
		p.lock.Unlock()
		var timer <-chan time.Time
		if timeout > 0 {
			t := time.NewTimer(timeout)
			defer t.Stop()
			timer = t.C
		}
		select {
		case data, ok := <-p.dataCh:
			if !ok {
				p.lock.Lock()
				err := p.err
				p.lock.Unlock()
				if err == nil {
					err = io.EOF
				}
				return 0, err
			}
			p.pending = data
		case <-timer:
			return 0, nil
		}
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

func (p *messagePort) Write(b []byte) (int, error) {
	if err := p.send(b); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (p *messagePort) Close() error {
	return p.close()
}
