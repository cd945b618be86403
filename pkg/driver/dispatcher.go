package driver

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/robotalks/redrcp.go/pkg/rcp"
)

// NotificationHandler receives notifications from the reader.
type NotificationHandler interface {
	HandleNotification(rcp.Notification)
}

// HandleNotificationFunc is func type of NotificationHandler.
type HandleNotificationFunc func(rcp.Notification)

// HandleNotification implements NotificationHandler.
func (f HandleNotificationFunc) HandleNotification(n rcp.Notification) {
	f(n)
}

type handlerSlot struct {
	handler NotificationHandler
}

// Dispatcher delivers notifications to at most one handler.
// Notifications are delivered one at a time in arrival order on the goroutine
// running Run. Without a handler, notifications are discarded.
type Dispatcher struct {
	slot    atomic.Value // handlerSlot
	queue   []rcp.Notification
	readyCh chan struct{}
	lock    sync.Mutex
}

// NewDispatcher creates a Dispatcher without handler.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{readyCh: make(chan struct{}, 1)}
	d.slot.Store(handlerSlot{})
	return d
}

// SetHandler replaces the handler. A nil handler discards notifications.
func (d *Dispatcher) SetHandler(h NotificationHandler) {
	d.slot.Store(handlerSlot{handler: h})
}

// Handler returns the current handler.
func (d *Dispatcher) Handler() NotificationHandler {
	return d.slot.Load().(handlerSlot).handler
}

// Dispatch queues a notification. It never blocks.
func (d *Dispatcher) Dispatch(n rcp.Notification) {
	d.lock.Lock()
	d.queue = append(d.queue, n)
	d.lock.Unlock()
	select {
	case d.readyCh <- struct{}{}:
	default:
	}
}

// Pending returns the number of notifications not yet delivered.
func (d *Dispatcher) Pending() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return len(d.queue)
}

// Run delivers queued notifications until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.readyCh:
		}
		d.lock.Lock()
		batch := d.queue
		d.queue = nil
		d.lock.Unlock()
		for _, n := range batch {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.deliver(n)
		}
	}
}

func (d *Dispatcher) deliver(n rcp.Notification) {
	h := d.Handler()
	if h == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			glog.Warningf("notification handler panic on %v: %v", n, r)
		}
	}()
	h.HandleNotification(n)
}
