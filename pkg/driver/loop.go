package driver

import (
	"context"
	"errors"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/redrcp.go/pkg/link"
	"github.com/robotalks/redrcp.go/pkg/metrics"
	"github.com/robotalks/redrcp.go/pkg/rcp"
)

const readBufferSize = 256

// readLoop is the only reader of the link. It keeps running while the link
// is closed, polling until the link is opened again or ctx is done.
func (d *Driver) readLoop(ctx context.Context) {
	var parser rcp.Parser
	buf := make([]byte, readBufferSize)
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()
	for {
		if ctx.Err() != nil {
			return
		}
		n := 0
		if d.link.IsOpen() {
			var err error
			n, err = d.link.Read(buf)
			if n > 0 {
				glog.V(3).Infof("RX << % X", buf[:n])
				parser.Feed(buf[:n])
				d.drain(&parser)
			}
			if err != nil {
				switch {
				case errors.Is(err, link.ErrDisconnected):
					glog.Infof("reader disconnected: %v", err)
					metrics.Disconnects.Inc()
					metrics.Connected.Set(0)
					d.link.Close()
					parser.Reset()
				case errors.Is(err, link.ErrClosed):
					parser.Reset()
				default:
					glog.Warningf("read error: %v", err)
				}
			}
		}
		if n == 0 {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}
}

// drain routes every complete frame in parser.
func (d *Driver) drain(parser *rcp.Parser) {
	for {
		f, err := parser.Next()
		if errors.Is(err, rcp.ErrIncomplete) {
			return
		}
		if err != nil {
			metrics.DecodeErrors.Inc()
			glog.V(2).Infof("dropped input: %v", err)
			continue
		}
		metrics.FramesReceived.WithLabelValues(f.Type.String()).Inc()
		d.route(f)
	}
}

func (d *Driver) route(f *rcp.Frame) {
	switch f.Type {
	case rcp.TypeResponse:
		d.correlator.Push(rcp.NewReply(f))
	case rcp.TypeNotification:
		n, err := rcp.DecodeNotification(f)
		if err != nil {
			metrics.DecodeErrors.Inc()
			glog.Warningf("bad notification %s: %v", f, err)
			return
		}
		glog.V(1).Infof("RX <- %v", n)
		metrics.Notifications.WithLabelValues(notificationKind(n)).Inc()
		d.dispatcher.Dispatch(n)
	default:
		glog.Warningf("unexpected %s", f)
	}
}

func notificationKind(n rcp.Notification) string {
	switch n.(type) {
	case rcp.TagRead:
		return "tag_read"
	case rcp.TagReadTID:
		return "tag_read_tid"
	case rcp.TagReadRSSI:
		return "tag_read_rssi"
	case rcp.InventoryFinished:
		return "inventory_finished"
	}
	return "unknown"
}
