package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/redrcp.go/pkg/driver"
	rcpv1 "github.com/robotalks/redrcp.go/pkg/proto/rcp/v1"
	"github.com/robotalks/redrcp.go/pkg/rcp"
)

// Topics relative to the reader id.
const (
	TopicTags          = "tags"
	TopicInventory     = "inventory"
	TopicStatus        = "status"
	TopicControl       = "control"
	TopicControlResult = "control/result"
)

// DefaultStatusInterval is how often the status is republished.
const DefaultStatusInterval = 10 * time.Second

// Transport publishes and subscribes messages. Queue implements it.
type Transport interface {
	Pub(topic string, payload []byte, retain bool) error
	Sub(pattern string, handler Handler) (*Subscription, error)
}

// Reader is the reader surface used by the bridge. driver.Driver implements it.
type Reader interface {
	SetNotificationHandler(driver.NotificationHandler)
	IsConnected() bool
	Address() string
	InfoModel(ctx context.Context) (string, error)
	InfoFirmwareVersion(ctx context.Context) (string, error)
	SoftwareReset(ctx context.Context) error
	StartAutoRead2(ctx context.Context, a rcp.AutoRead) error
	StopAutoRead2(ctx context.Context) error
	StartAutoReadTID(ctx context.Context, a rcp.AutoRead) error
	StopAutoReadTID(ctx context.Context) error
	StartAutoReadRSSI(ctx context.Context, a rcp.AutoRead) error
	StopAutoReadRSSI(ctx context.Context) error
}

// Bridge publishes notifications and status of a reader, and executes
// control messages received from the broker.
type Bridge struct {
	Transport      Transport
	Reader         Reader
	ReaderID       string
	StatusInterval time.Duration
	Now            func() time.Time

	controlCh chan *rcpv1.Control
}

// New creates a Bridge.
func New(transport Transport, reader Reader, readerID string) *Bridge {
	return &Bridge{
		Transport:      transport,
		Reader:         reader,
		ReaderID:       readerID,
		StatusInterval: DefaultStatusInterval,
		Now:            time.Now,
		controlCh:      make(chan *rcpv1.Control, 16),
	}
}

func (b *Bridge) topic(name string) string {
	return b.ReaderID + "/" + name
}

func (b *Bridge) publish(name string, msg proto.Message, retain bool) error {
	data, err := proto.Marshal(msg)
	if err != nil {
		return err
	}
	return b.Transport.Pub(b.topic(name), data, retain)
}

// HandleNotification implements driver.NotificationHandler.
func (b *Bridge) HandleNotification(n rcp.Notification) {
	msg, err := rcpv1.FromNotification(b.ReaderID, b.Now(), n)
	if err != nil {
		glog.Warningf("bridge: %v", err)
		return
	}
	name := TopicTags
	if _, ok := n.(rcp.InventoryFinished); ok {
		name = TopicInventory
	}
	if err := b.publish(name, msg, false); err != nil {
		glog.Warningf("bridge: publish %s: %v", name, err)
	}
}

func (b *Bridge) handleControl(topic string, payload []byte) {
	ctl := &rcpv1.Control{}
	if err := proto.Unmarshal(payload, ctl); err != nil {
		glog.Warningf("bridge: bad control on %s: %v", topic, err)
		return
	}
	select {
	case b.controlCh <- ctl:
	default:
		glog.Warningf("bridge: control %s dropped, queue full", ctl)
	}
}

// Status builds the current status.
func (b *Bridge) Status(ctx context.Context) *rcpv1.Status {
	st := &rcpv1.Status{
		ReaderId:  b.ReaderID,
		Timestamp: b.Now().UnixNano(),
		Connected: b.Reader.IsConnected(),
		Address:   b.Reader.Address(),
	}
	if st.Connected {
		var err error
		if st.Model, err = b.Reader.InfoModel(ctx); err != nil {
			glog.Warningf("bridge: model: %v", err)
		}
		if st.FirmwareVersion, err = b.Reader.InfoFirmwareVersion(ctx); err != nil {
			glog.Warningf("bridge: firmware version: %v", err)
		}
	}
	return st
}

func (b *Bridge) publishStatus(ctx context.Context) {
	if err := b.publish(TopicStatus, b.Status(ctx), true); err != nil {
		glog.Warningf("bridge: publish status: %v", err)
	}
}

// Execute performs a control action.
func (b *Bridge) Execute(ctx context.Context, ctl *rcpv1.Control) error {
	switch ctl.Action {
	case rcpv1.ActionReset:
		return b.Reader.SoftwareReset(ctx)
	case rcpv1.ActionStart:
		a, err := ctl.AutoRead()
		if err != nil {
			return err
		}
		switch ctl.Mode {
		case rcpv1.ModeRead2, "":
			return b.Reader.StartAutoRead2(ctx, a)
		case rcpv1.ModeTID:
			return b.Reader.StartAutoReadTID(ctx, a)
		case rcpv1.ModeRSSI:
			return b.Reader.StartAutoReadRSSI(ctx, a)
		}
	case rcpv1.ActionStop:
		switch ctl.Mode {
		case rcpv1.ModeRead2, "":
			return b.Reader.StopAutoRead2(ctx)
		case rcpv1.ModeTID:
			return b.Reader.StopAutoReadTID(ctx)
		case rcpv1.ModeRSSI:
			return b.Reader.StopAutoReadRSSI(ctx)
		}
	default:
		return fmt.Errorf("%w: unknown action %q", rcp.ErrInvalidArgument, ctl.Action)
	}
	return fmt.Errorf("%w: unknown mode %q", rcp.ErrInvalidArgument, ctl.Mode)
}

// Name implements service.Named.
func (b *Bridge) Name() string {
	return "bridge"
}

// Run implements service.Runnable.
func (b *Bridge) Run(ctx context.Context) error {
	sub, err := b.Transport.Sub(b.topic(TopicControl), b.handleControl)
	if err != nil {
		return fmt.Errorf("subscribe control: %w", err)
	}
	defer sub.Close()
	b.Reader.SetNotificationHandler(b)
	defer b.Reader.SetNotificationHandler(nil)

	interval := b.StatusInterval
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	connected := b.Reader.IsConnected()
	b.publishStatus(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if now := b.Reader.IsConnected(); now != connected {
				connected = now
				glog.Infof("bridge: reader connected=%v", connected)
			}
			b.publishStatus(ctx)
		case ctl := <-b.controlCh:
			glog.Infof("bridge: control %s", ctl)
			result := &rcpv1.ControlResult{Action: ctl.Action, Ok: true}
			if err := b.Execute(ctx, ctl); err != nil {
				result.Ok, result.Error = false, err.Error()
			}
			if err := b.publish(TopicControlResult, result, false); err != nil {
				glog.Warningf("bridge: publish control result: %v", err)
			}
		}
	}
}
