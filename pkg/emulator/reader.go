package emulator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/redrcp.go/pkg/link"
	"github.com/robotalks/redrcp.go/pkg/rcp"
)

// Error codes of failure replies.
const (
	ErrCodeInvalidParameter byte = 0x01
	ErrCodeNotSupported     byte = 0x02
	ErrCodeInvalidLength    byte = 0x03
	ErrCodeTagNotFound      byte = 0x06
	ErrCodeMemoryOverrun    byte = 0x07
	ErrCodeRegion           byte = 0x0C
)

// Reader is an emulated reader. It can serve multiple ports, all of them
// sharing the same state.
type Reader struct {
	Model           string
	FirmwareVersion string
	Manufacturer    string
	// ResetDelay is the time between the two replies of a reset.
	ResetDelay time.Duration
	// ReportInterval is the time between two tag reports of an inventory.
	ReportInterval time.Duration

	state State
	tags  []*Tag
	conns map[*conn]struct{}
	lock  sync.Mutex
}

// New creates a Reader in the default state without tags.
func New() *Reader {
	return &Reader{
		Model:           DefaultModel,
		FirmwareVersion: DefaultFirmwareVersion,
		Manufacturer:    DefaultManufacturer,
		ResetDelay:      5 * time.Millisecond,
		ReportInterval:  10 * time.Millisecond,
		state:           DefaultState(),
		conns:           make(map[*conn]struct{}),
	}
}

// State returns a copy of the current state.
func (r *Reader) State() State {
	r.lock.Lock()
	defer r.lock.Unlock()
	s := r.state
	s.HoppingTable = append(rcp.HoppingTable(nil), s.HoppingTable...)
	s.Enables = append(rcp.SelectionEnables(nil), s.Enables...)
	return s
}

// AddTags places tags in the field.
func (r *Reader) AddTags(tags ...*Tag) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, t := range tags {
		if t.Memory == nil {
			t.Memory = make(map[rcp.MemoryBank][]byte)
		}
		r.tags = append(r.tags, t)
	}
}

// Tags returns the tags in the field.
func (r *Reader) Tags() []*Tag {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]*Tag(nil), r.tags...)
}

func (r *Reader) findTag(epc []byte) *Tag {
	for _, t := range r.tags {
		if string(t.EPC) == string(epc) {
			return t
		}
	}
	return nil
}

// ErrNotServing indicates no port is served, so a notification has no receiver.
var ErrNotServing = errors.New("emulator: no port served")

// Notify sends a notification on all served ports.
func (r *Reader) Notify(n rcp.Notification) error {
	f, err := rcp.EncodeNotification(n)
	if err != nil {
		return err
	}
	r.lock.Lock()
	conns := make([]*conn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	r.lock.Unlock()
	if len(conns) == 0 {
		return ErrNotServing
	}
	var errs []error
	for _, c := range conns {
		if err := c.send(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dialer returns a DialFunc connecting to the emulator through an in-memory pipe.
// The address is ignored. The port is served once the DialFunc returns.
func (r *Reader) Dialer() link.DialFunc {
	return func(address string) (link.Port, error) {
		local, remote := link.Pipe()
		c := r.attach(remote)
		go func() {
			defer remote.Close()
			if err := c.serve(context.Background()); err != nil {
				glog.Warningf("emulator %s: %v", address, err)
			}
		}()
		return local, nil
	}
}

// Serve answers commands received on port until ctx is done or the port
// is disconnected.
func (r *Reader) Serve(ctx context.Context, port link.Port) error {
	return r.attach(port).serve(ctx)
}

// attach registers a conn for port so notifications reach it.
func (r *Reader) attach(port link.Port) *conn {
	c := &conn{reader: r, port: port}
	r.lock.Lock()
	r.conns[c] = struct{}{}
	r.lock.Unlock()
	return c
}

func (r *Reader) detach(c *conn) {
	c.stopInventory()
	r.lock.Lock()
	delete(r.conns, c)
	r.lock.Unlock()
}

func ignoreDisconnect(err error) error {
	if link.IsDisconnect(err) {
		return nil
	}
	return err
}
