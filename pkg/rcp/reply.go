package rcp

import (
	"encoding"
	"fmt"
)

// Reply is a decoded response frame.
type Reply struct {
	Code    byte
	Payload []byte
}

// NewReply creates a Reply from a response frame.
func NewReply(f *Frame) *Reply {
	return &Reply{Code: f.Code, Payload: f.Payload}
}

// Frame returns the response frame of the reply.
func (r *Reply) Frame() *Frame {
	return &Frame{Type: TypeResponse, Code: r.Code, Payload: r.Payload}
}

// IsFailure indicates the reply is a failure response.
func (r *Reply) IsFailure() bool {
	return r.Code == CodeFailure
}

// Err returns the OperationError of a failure response, or nil.
func (r *Reply) Err() error {
	if !r.IsFailure() {
		return nil
	}
	e := &OperationError{}
	if len(r.Payload) > 0 {
		e.Code = r.Payload[0]
	}
	if len(r.Payload) > 1 {
		e.Command = r.Payload[1]
	}
	return e
}

// Answers reports whether the reply responds to cmd.
// A failure response answers cmd unless it names another command.
func (r *Reply) Answers(cmd *Command) bool {
	if r.IsFailure() {
		return len(r.Payload) < 2 || r.Payload[1] == cmd.Code
	}
	return r.Code == cmd.Code
}

// Expect validates the reply answers the command.
// A failure response is returned as *OperationError.
func (r *Reply) Expect(cmd *Command) error {
	if err := r.Err(); err != nil {
		return err
	}
	if r.Code != cmd.Code {
		return fmt.Errorf("%w: reply %#02x for command %s (%#02x)", ErrMalformed, r.Code, cmd.Name, cmd.Code)
	}
	return nil
}

// String implements fmt.Stringer.
func (r *Reply) String() string {
	if err := r.Err(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("%#02x [% X]", r.Code, r.Payload)
}

// OK validates the payload of a reply to a set-type command.
func (r *Reply) OK() error {
	if len(r.Payload) != 1 || r.Payload[0] != 0 {
		return fmt.Errorf("%w: status [% X]", ErrMalformed, r.Payload)
	}
	return nil
}

// Text decodes the payload as text.
func (r *Reply) Text() (string, error) {
	if len(r.Payload) == 0 {
		return "", fmt.Errorf("%w: empty text", ErrMalformed)
	}
	return string(r.Payload), nil
}

// Unmarshal decodes the payload into v.
func (r *Reply) Unmarshal(v encoding.BinaryUnmarshaler) error {
	return v.UnmarshalBinary(r.Payload)
}

// Region decodes the payload as a Region.
func (r *Reply) Region() (Region, error) {
	if len(r.Payload) != 1 {
		return 0, payloadSizeError("region", len(r.Payload), 1)
	}
	return Region(r.Payload[0]), nil
}

// RSSI decodes the payload as RSSI in dBm.
func (r *Reply) RSSI() (float64, error) {
	if len(r.Payload) != 2 {
		return 0, payloadSizeError("rssi", len(r.Payload), 2)
	}
	return dBm(r.Payload), nil
}

// OKReply creates the success reply of a set-type command.
func OKReply(code byte) *Reply {
	return &Reply{Code: code, Payload: []byte{0}}
}

// FailureReply creates a failure reply.
func FailureReply(command, errCode byte) *Reply {
	return &Reply{Code: CodeFailure, Payload: []byte{errCode, command}}
}

// MarshalReply creates a reply carrying an encoded value.
func MarshalReply(code byte, v encoding.BinaryMarshaler) (*Reply, error) {
	payload, err := v.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return &Reply{Code: code, Payload: payload}, nil
}

// RSSIReply creates the reply of GetRSSI.
func RSSIReply(dbm float64) *Reply {
	payload := make([]byte, 2)
	putDBm(payload, dbm)
	return &Reply{Code: CodeGetRSSI, Payload: payload}
}

// SetTxPowerValue decodes the payload of a SetTxPower command.
func SetTxPowerValue(payload []byte) (float64, error) {
	if len(payload) != 2 {
		return 0, payloadSizeError("tx power", len(payload), 2)
	}
	return dBm(payload), nil
}
