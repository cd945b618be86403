// Package rcpv1 holds the protobuf payloads published by the bridge.
// rcp.pb.go is generated from rcp.proto.
package rcpv1

//go:generate protoc --go_out=. --go_opt=paths=source_relative rcp.proto

import (
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/redrcp.go/pkg/rcp"
)

// Control actions.
const (
	ActionStart = "start"
	ActionStop  = "stop"
	ActionReset = "reset"
)

// Inventory modes of ActionStart and ActionStop.
const (
	ModeRead2 = "read2"
	ModeTID   = "tid"
	ModeRSSI  = "rssi"
)

// FromNotification converts a reader notification into a bridge payload.
func FromNotification(readerID string, at time.Time, n rcp.Notification) (proto.Message, error) {
	ts := at.UnixNano()
	switch v := n.(type) {
	case rcp.TagRead:
		return &TagRead{ReaderId: readerID, Timestamp: ts, Pc: uint32(v.PC), Epc: v.EPC}, nil
	case rcp.TagReadTID:
		return &TagRead{ReaderId: readerID, Timestamp: ts, Pc: uint32(v.PC), Epc: v.EPC, Tid: v.TID}, nil
	case rcp.TagReadRSSI:
		return &TagRead{ReaderId: readerID, Timestamp: ts, Pc: uint32(v.PC), Epc: v.EPC, Rssi: v.RSSI, HasRssi: true}, nil
	case rcp.InventoryFinished:
		return &InventoryFinished{ReaderId: readerID, Timestamp: ts, Code: uint32(v.Code)}, nil
	}
	return nil, fmt.Errorf("unsupported notification %T", n)
}

// AutoRead returns the automatic read limits requested by the control.
func (x *Control) AutoRead() (rcp.AutoRead, error) {
	if x.MaxTags > 0xff || x.MaxTime > 0xff || x.RepeatCycle > 0xffff {
		return rcp.AutoRead{}, fmt.Errorf("%w: control limits %d/%d/%d",
			rcp.ErrInvalidArgument, x.MaxTags, x.MaxTime, x.RepeatCycle)
	}
	return rcp.AutoRead{
		TagType:     rcp.TagTypeC,
		MaxTags:     uint8(x.MaxTags),
		MaxTime:     uint8(x.MaxTime),
		RepeatCycle: uint16(x.RepeatCycle),
	}, nil
}
