package rcp

import (
	"encoding/binary"
	"fmt"
)

// Notification is an unsolicited event reported by the reader.
type Notification interface {
	// NotificationCode is the code of the notification frame.
	NotificationCode() byte
}

// TagRead reports a tag inventoried by StartAutoRead2.
type TagRead struct {
	PC  uint16
	EPC []byte
}

// TagReadTID reports a tag inventoried by StartAutoReadTID.
type TagReadTID struct {
	TagRead
	TID []byte
}

// TagReadRSSI reports a tag inventoried by StartAutoReadRSSI.
type TagReadRSSI struct {
	TagRead
	RSSI float64 // dBm
}

// InventoryFinished reports the end of an automatic read cycle.
type InventoryFinished struct {
	// Code identifies the kind of automatic read which finished.
	Code byte
}

// inventoryFinishedMark is the single byte payload reporting the end of a cycle.
const inventoryFinishedMark byte = 0x1F

// NotificationCode implements Notification.
func (TagRead) NotificationCode() byte { return CodeReadTypeCUII }

// NotificationCode implements Notification.
func (TagReadTID) NotificationCode() byte { return CodeStartAutoReadTID }

// NotificationCode implements Notification.
func (TagReadRSSI) NotificationCode() byte { return CodeStartAutoReadRSSI }

// NotificationCode implements Notification.
func (n InventoryFinished) NotificationCode() byte { return n.Code }

// PCForEPC returns the protocol control word for an EPC without options.
func PCForEPC(epc []byte) uint16 {
	return uint16((len(epc)+1)/2) << 11
}

// EPCLen returns the EPC length in bytes encoded in the PC word.
func (t TagRead) EPCLen() int {
	return int(t.PC>>11) * 2
}

// String implements fmt.Stringer.
func (t TagRead) String() string {
	return fmt.Sprintf("PC=%04X EPC=%X", t.PC, t.EPC)
}

// String implements fmt.Stringer.
func (t TagReadTID) String() string {
	return fmt.Sprintf("%s TID=%X", t.TagRead, t.TID)
}

// String implements fmt.Stringer.
func (t TagReadRSSI) String() string {
	return fmt.Sprintf("%s RSSI=%.1fdBm", t.TagRead, t.RSSI)
}

// String implements fmt.Stringer.
func (n InventoryFinished) String() string {
	return fmt.Sprintf("inventory %#02x finished", n.Code)
}

func decodeTagRead(payload []byte) (TagRead, []byte, error) {
	if len(payload) < 2 {
		return TagRead{}, nil, fmt.Errorf("%w: tag read payload is %d bytes", ErrMalformed, len(payload))
	}
	t := TagRead{PC: binary.BigEndian.Uint16(payload)}
	n := t.EPCLen()
	if len(payload) < 2+n {
		return TagRead{}, nil, fmt.Errorf("%w: PC %04X claims %d EPC bytes, got %d", ErrMalformed, t.PC, n, len(payload)-2)
	}
	t.EPC = append([]byte(nil), payload[2:2+n]...)
	return t, payload[2+n:], nil
}

// DecodeNotification decodes a notification frame.
func DecodeNotification(f *Frame) (Notification, error) {
	if f.Type != TypeNotification {
		return nil, fmt.Errorf("%w: %s is not a notification", ErrMalformed, f.Type)
	}
	if len(f.Payload) == 1 && f.Payload[0] == inventoryFinishedMark {
		return InventoryFinished{Code: f.Code}, nil
	}
	switch f.Code {
	case CodeReadTypeCUII:
		t, rest, err := decodeTagRead(f.Payload)
		if err != nil {
			return nil, err
		}
		if len(rest) > 0 {
			return nil, fmt.Errorf("%w: %d bytes after EPC", ErrMalformed, len(rest))
		}
		return t, nil
	case CodeStartAutoReadTID:
		t, rest, err := decodeTagRead(f.Payload)
		if err != nil {
			return nil, err
		}
		return TagReadTID{TagRead: t, TID: rest}, nil
	case CodeStartAutoReadRSSI:
		t, rest, err := decodeTagRead(f.Payload)
		if err != nil {
			return nil, err
		}
		if len(rest) != 2 {
			return nil, fmt.Errorf("%w: RSSI is %d bytes", ErrMalformed, len(rest))
		}
		return TagReadRSSI{TagRead: t, RSSI: dBm(rest)}, nil
	}
	return nil, fmt.Errorf("%w: unknown notification %#02x", ErrMalformed, f.Code)
}

func encodeTagRead(t TagRead, extra int) ([]byte, error) {
	if t.EPCLen() != len(t.EPC) {
		return nil, fmt.Errorf("%w: PC %04X does not match %d EPC bytes", ErrInvalidArgument, t.PC, len(t.EPC))
	}
	b := make([]byte, 2+len(t.EPC), 2+len(t.EPC)+extra)
	binary.BigEndian.PutUint16(b, t.PC)
	copy(b[2:], t.EPC)
	return b, nil
}

// EncodeNotification encodes a notification frame.
func EncodeNotification(n Notification) (*Frame, error) {
	f := &Frame{Type: TypeNotification, Code: n.NotificationCode()}
	var err error
	switch v := n.(type) {
	case InventoryFinished:
		f.Payload = []byte{inventoryFinishedMark}
	case TagRead:
		f.Payload, err = encodeTagRead(v, 0)
	case TagReadTID:
		if f.Payload, err = encodeTagRead(v.TagRead, len(v.TID)); err == nil {
			f.Payload = append(f.Payload, v.TID...)
		}
	case TagReadRSSI:
		if f.Payload, err = encodeTagRead(v.TagRead, 2); err == nil {
			rssi := make([]byte, 2)
			putDBm(rssi, v.RSSI)
			f.Payload = append(f.Payload, rssi...)
		}
	default:
		err = fmt.Errorf("%w: notification %T", ErrInvalidArgument, n)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}
