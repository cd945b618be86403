package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/golang/glog"
)

// HTTPServer serves Handler on Addr as a Runnable.
type HTTPServer struct {
	Addr    string
	Handler http.Handler

	listener net.Listener
}

// Name implements Named.
func (s *HTTPServer) Name() string {
	return "http"
}

// Listen binds the address. Run calls it if not done before.
func (s *HTTPServer) Listen() (net.Addr, error) {
	if s.listener == nil {
		ln, err := net.Listen("tcp", s.Addr)
		if err != nil {
			return nil, err
		}
		s.listener = ln
	}
	return s.listener.Addr(), nil
}

// Run implements Runnable.
func (s *HTTPServer) Run(ctx context.Context) error {
	addr, err := s.Listen()
	if err != nil {
		return err
	}
	server := &http.Server{Handler: s.Handler, ReadHeaderTimeout: 10 * time.Second}
	glog.Infof("serving http on %s", addr)
	err = runWithCancel(ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}, func() error {
		return server.Serve(s.listener)
	})
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// runWithCancel runs fn, calling onCancel if ctx is done first.
func runWithCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case <-ctx.Done():
		onCancel()
		<-errCh
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
