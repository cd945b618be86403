package driver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/redrcp.go/pkg/rcp"
)

func runDispatcher(t *testing.T) *Dispatcher {
	d := NewDispatcher()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		d.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return d
}

func TestDispatcherOrder(t *testing.T) {
	d := runDispatcher(t)
	var lock sync.Mutex
	var got []byte
	d.SetHandler(HandleNotificationFunc(func(n rcp.Notification) {
		lock.Lock()
		defer lock.Unlock()
		got = append(got, n.(rcp.InventoryFinished).Code)
	}))
	for i := 0; i < 100; i++ {
		d.Dispatch(rcp.InventoryFinished{Code: byte(i)})
	}
	require.Eventually(t, func() bool {
		lock.Lock()
		defer lock.Unlock()
		return len(got) == 100
	}, time.Second, time.Millisecond)
	for i, code := range got {
		require.Equal(t, byte(i), code)
	}
}

func TestDispatcherSlowHandler(t *testing.T) {
	d := runDispatcher(t)
	release := make(chan struct{})
	delivered := make(chan rcp.Notification, 4)
	d.SetHandler(HandleNotificationFunc(func(n rcp.Notification) {
		<-release
		delivered <- n
	}))
	start := time.Now()
	for i := 0; i < 4; i++ {
		d.Dispatch(rcp.InventoryFinished{Code: byte(i)})
	}
	require.Less(t, time.Since(start), 50*time.Millisecond)
	close(release)
	for i := 0; i < 4; i++ {
		select {
		case n := <-delivered:
			require.Equal(t, rcp.InventoryFinished{Code: byte(i)}, n)
		case <-time.After(time.Second):
			t.Fatal("notification not delivered")
		}
	}
}

func TestDispatcherNoHandler(t *testing.T) {
	d := runDispatcher(t)
	require.Nil(t, d.Handler())
	d.Dispatch(rcp.InventoryFinished{})
	require.Eventually(t, func() bool { return d.Pending() == 0 }, time.Second, time.Millisecond)

	ch := make(chan rcp.Notification, 1)
	d.SetHandler(HandleNotificationFunc(func(n rcp.Notification) {
		if n.(rcp.InventoryFinished).Code == 1 {
			panic("boom")
		}
		ch <- n
	}))
	d.Dispatch(rcp.InventoryFinished{Code: 1})
	d.Dispatch(rcp.InventoryFinished{Code: 2})
	select {
	case n := <-ch:
		require.Equal(t, rcp.InventoryFinished{Code: 2}, n)
	case <-time.After(time.Second):
		t.Fatal("dispatcher stopped after handler panic")
	}
}
