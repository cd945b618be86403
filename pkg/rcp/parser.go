package rcp

import "errors"

// Parser accumulates received bytes and peels off complete frames.
// It is not safe for concurrent use.
type Parser struct {
	buf []byte
}

// Feed appends received bytes.
func (p *Parser) Feed(data []byte) {
	p.buf = append(p.buf, data...)
}

// Buffered returns the number of bytes not yet consumed.
func (p *Parser) Buffered() int {
	return len(p.buf)
}

// Reset discards all buffered bytes.
func (p *Parser) Reset() {
	p.buf = p.buf[:0]
}

// Next decodes the next frame from buffered bytes.
// ErrIncomplete is returned when more bytes are needed, and the buffered
// bytes are retained. Malformed input is dropped and reported, Next can be
// called again to continue with the remaining bytes.
func (p *Parser) Next() (*Frame, error) {
	f, n, err := Decode(p.buf)
	if n > 0 {
		p.buf = append(p.buf[:0], p.buf[n:]...)
	}
	if err != nil && !errors.Is(err, ErrIncomplete) {
		return nil, err
	}
	return f, err
}
