package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

// ErrForcedExit is returned by Wait when a second stop signal arrives.
var ErrForcedExit = errors.New("forced exit")

// Runner runs the Runnables of a daemon. The first failure stops the rest.
type Runner struct {
	ctx    context.Context
	cancel context.CancelFunc
	forced chan struct{}
	wg     sync.WaitGroup

	lock sync.Mutex
	errs AggregatedError
}

// NewRunner creates a Runner stopped when ctx is done.
func NewRunner(ctx context.Context) *Runner {
	ctx, cancel := context.WithCancel(ctx)
	return &Runner{ctx: ctx, cancel: cancel, forced: make(chan struct{})}
}

// HandleSignals stops on CtrlC or SIGTERM, and gives up waiting on the second one.
func (r *Runner) HandleSignals() *Runner {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		glog.Info("stop requested")
		r.cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.forced)
	}()
	return r
}

func nameOf(run Runnable) string {
	if named, ok := run.(Named); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", run)
}

// Go starts Runnables.
func (r *Runner) Go(runs ...Runnable) *Runner {
	for _, run := range runs {
		run := run
		name := nameOf(run)
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			glog.V(4).Infof("%s started", name)
			err := run.Run(r.ctx)
			glog.V(4).Infof("%s stopped: %v", name, err)
			if err != nil && !errors.Is(err, context.Canceled) {
				r.lock.Lock()
				r.errs.Add(fmt.Errorf("%s: %w", name, err))
				r.lock.Unlock()
				r.cancel()
			}
		}()
	}
	return r
}

// Wait waits until all Runnables stop and aggregates their errors.
// context.Canceled is not reported.
func (r *Runner) Wait() error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-r.forced:
		return ErrForcedExit
	case <-done:
	}
	r.cancel()
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.errs.Aggregate()
}
