package driver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/redrcp.go/pkg/link"
	"github.com/robotalks/redrcp.go/pkg/metrics"
	"github.com/robotalks/redrcp.go/pkg/rcp"
)

// Defaults of a Driver.
const (
	DefaultTimeout      = time.Second
	DefaultPollInterval = time.Millisecond
)

// Option configures a Driver.
type Option func(*Driver)

// WithTimeout sets how long a transaction waits for each reply.
func WithTimeout(d time.Duration) Option {
	return func(drv *Driver) { drv.timeout = d }
}

// WithPollInterval sets the idle interval of the reader loop.
func WithPollInterval(d time.Duration) Option {
	return func(drv *Driver) { drv.pollInterval = d }
}

// WithReadTimeout sets the read timeout of the link.
func WithReadTimeout(d time.Duration) Option {
	return func(drv *Driver) { drv.link.ReadTimeout = d }
}

// WithDialer replaces how the link opens ports.
func WithDialer(dial link.DialFunc) Option {
	return func(drv *Driver) {
		if dial != nil {
			drv.link.Dial = dial
		}
	}
}

// Driver issues commands to a reader and receives its replies and notifications.
// It is safe for concurrent use, transactions are serialized.
type Driver struct {
	link         *link.Link
	correlator   *Correlator
	dispatcher   *Dispatcher
	timeout      time.Duration
	pollInterval time.Duration

	txLock sync.Mutex

	lock         sync.Mutex
	loopCancel   context.CancelFunc
	loopDone     chan struct{}
	stopDispatch context.CancelFunc
	dispatchDone chan struct{}
	closed       bool
}

// New creates a Driver and starts its reader loop.
// The driver is not connected until Connect.
func New(opts ...Option) *Driver {
	d := &Driver{
		link:         link.New(nil),
		correlator:   NewCorrelator(),
		dispatcher:   NewDispatcher(),
		timeout:      DefaultTimeout,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(d)
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.stopDispatch, d.dispatchDone = cancel, make(chan struct{})
	go func() {
		defer close(d.dispatchDone)
		d.dispatcher.Run(ctx)
	}()
	d.startLoop()
	return d
}

// Timeout returns the per reply timeout.
func (d *Driver) Timeout() time.Duration {
	return d.timeout
}

// Address returns the address of the connected port.
func (d *Driver) Address() string {
	return d.link.Address()
}

// SetNotificationHandler replaces the notification handler.
// A nil handler discards notifications.
func (d *Driver) SetNotificationHandler(h NotificationHandler) {
	d.dispatcher.SetHandler(h)
}

// startLoop starts the reader loop if not running. Caller holds d.lock or owns d.
func (d *Driver) startLoop() {
	if d.loopCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	d.loopCancel, d.loopDone = cancel, done
	go func() {
		defer close(done)
		d.readLoop(ctx)
	}()
}

// stopLoop stops the reader loop and waits for it. Caller holds d.lock.
func (d *Driver) stopLoop() {
	if d.loopCancel == nil {
		return
	}
	d.loopCancel()
	<-d.loopDone
	d.loopCancel, d.loopDone = nil, nil
}

// Connect opens the port at address. Connecting while connected does nothing.
func (d *Driver) Connect(address string) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return ErrClosed
	}
	if d.link.IsOpen() {
		glog.Infof("already connected to %s", d.link.Address())
		return nil
	}
	if err := d.link.Open(address); err != nil {
		glog.Warningf("connect failed: %v", err)
		return err
	}
	metrics.Connected.Set(1)
	d.startLoop()
	glog.Infof("connected to %s", address)
	return nil
}

// IsConnected reports whether the link is open.
func (d *Driver) IsConnected() bool {
	return d.link.IsOpen()
}

// Disconnect stops the reader loop and closes the link.
// Disconnecting while disconnected does nothing.
// The reader loop is restarted by the next Connect.
func (d *Driver) Disconnect() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.disconnect()
}

func (d *Driver) disconnect() error {
	if !d.link.IsOpen() {
		glog.Info("already disconnected")
		return nil
	}
	d.stopLoop()
	err := d.link.Close()
	metrics.Connected.Set(0)
	if err != nil {
		glog.Warningf("disconnect: %v", err)
		return err
	}
	glog.Info("disconnected")
	return nil
}

// Close disconnects and stops all background goroutines.
func (d *Driver) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	err := d.disconnect()
	d.stopLoop()
	d.stopDispatch()
	<-d.dispatchDone
	return err
}

// Do sends a command and waits for its reply.
// A failure reply is returned as *rcp.OperationError.
func (d *Driver) Do(ctx context.Context, cmd *rcp.Command) (*rcp.Reply, error) {
	replies, err := d.transact(ctx, cmd, 1)
	if err != nil {
		return nil, err
	}
	return replies[0], nil
}

// transact writes cmd and waits for n replies as one serialized unit.
// Replies left over by an abandoned transaction are discarded first.
func (d *Driver) transact(ctx context.Context, cmd *rcp.Command, n int) (replies []*rcp.Reply, err error) {
	d.txLock.Lock()
	defer d.txLock.Unlock()

	start := time.Now()
	defer func() {
		metrics.Transactions.WithLabelValues(cmd.Name, resultOf(err)).Inc()
		if err == nil {
			metrics.TransactionSeconds.WithLabelValues(cmd.Name).Observe(time.Since(start).Seconds())
		}
	}()

	if !d.link.IsOpen() {
		glog.Infof("%s: not connected", cmd.Name)
		return nil, ErrNotConnected
	}
	if stale := d.correlator.Reset(); stale > 0 {
		metrics.StaleReplies.Add(float64(stale))
		glog.Warningf("%s: discarded %d stale replies", cmd.Name, stale)
	}

	data := cmd.Bytes()
	glog.Infof("TX -> %s", cmd)
	glog.V(3).Infof("TX >> % X", data)
	if err := d.link.Write(data); err != nil {
		if errors.Is(err, link.ErrClosed) {
			return nil, ErrNotConnected
		}
		if errors.Is(err, link.ErrDisconnected) {
			d.link.Close()
			metrics.Connected.Set(0)
		}
		return nil, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	metrics.FramesSent.Inc()

	for i := 0; i < n; i++ {
		r, err := d.await(ctx, cmd)
		if err != nil {
			return nil, err
		}
		replies = append(replies, r)
	}
	return replies, nil
}

// await pops the next reply answering cmd within the timeout.
// Replies to other commands are discarded as stale.
func (d *Driver) await(ctx context.Context, cmd *rcp.Command) (*rcp.Reply, error) {
	deadline := time.Now().Add(d.timeout)
	for {
		r, err := d.correlator.Pop(ctx, time.Until(deadline))
		if err != nil {
			glog.Infof("%s: %v", cmd.Name, err)
			return nil, fmt.Errorf("%s: %w", cmd.Name, err)
		}
		glog.Infof("RX <- %s", r)
		if r.Answers(cmd) {
			return r, r.Expect(cmd)
		}
		metrics.StaleReplies.Inc()
		glog.Warningf("%s: discarded stale reply %s", cmd.Name, r)
	}
}

func resultOf(err error) string {
	var opErr *rcp.OperationError
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, ErrNotConnected):
		return metrics.ResultNotConnected
	case errors.Is(err, ErrTimeout):
		return metrics.ResultTimeout
	case errors.As(err, &opErr):
		return metrics.ResultFailure
	}
	return metrics.ResultError
}
