package driver

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/robotalks/redrcp.go/pkg/rcp"
)

// Correlator hands replies from the reader loop to the waiting transaction.
// Replies are delivered in the order they are pushed. Push never blocks and
// never drops a reply.
type Correlator struct {
	replies list.List
	readyCh chan struct{}
	lock    sync.Mutex
}

// NewCorrelator creates an empty Correlator.
func NewCorrelator() *Correlator {
	return &Correlator{readyCh: make(chan struct{}, 1)}
}

func (c *Correlator) signal() {
	select {
	case c.readyCh <- struct{}{}:
	default:
	}
}

// Push enqueues a reply.
func (c *Correlator) Push(r *rcp.Reply) {
	c.lock.Lock()
	c.replies.PushBack(r)
	c.lock.Unlock()
	c.signal()
}

func (c *Correlator) take() *rcp.Reply {
	c.lock.Lock()
	defer c.lock.Unlock()
	e := c.replies.Front()
	if e == nil {
		return nil
	}
	c.replies.Remove(e)
	if c.replies.Len() > 0 {
		c.signal()
	}
	return e.Value.(*rcp.Reply)
}

// Pop waits up to timeout for the next reply.
// ErrTimeout is returned when the timeout elapses, or ctx.Err() if ctx is done first.
func (c *Correlator) Pop(ctx context.Context, timeout time.Duration) (*rcp.Reply, error) {
	if r := c.take(); r != nil {
		return r, nil
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-c.readyCh:
			if r := c.take(); r != nil {
				return r, nil
			}
		case <-timer.C:
			// a reply may race with the timer
			if r := c.take(); r != nil {
				return r, nil
			}
			return nil, ErrTimeout
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Reset discards queued replies and returns how many were dropped.
func (c *Correlator) Reset() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	n := c.replies.Len()
	c.replies.Init()
	select {
	case <-c.readyCh:
	default:
	}
	return n
}

// Len returns the number of queued replies.
func (c *Correlator) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.replies.Len()
}
