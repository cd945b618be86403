package rcp

import (
	"encoding"
	"fmt"
)

// Command is an outbound request.
type Command struct {
	// Name identifies the operation in logs.
	Name    string
	Code    byte
	Payload []byte
}

// Frame returns the command frame.
func (c *Command) Frame() *Frame {
	return &Frame{Type: TypeCommand, Code: c.Code, Payload: c.Payload}
}

// Bytes returns encoded bytes for sending.
func (c *Command) Bytes() []byte {
	return c.Frame().Bytes()
}

// String implements fmt.Stringer.
func (c *Command) String() string {
	return c.Name
}

func newCommand(name string, code byte, payload ...byte) *Command {
	return &Command{Name: name, Code: code, Payload: payload}
}

func marshalCommand(name string, code byte, v encoding.BinaryMarshaler) (*Command, error) {
	payload, err := v.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &Command{Name: name, Code: code, Payload: payload}, nil
}

// GetReaderInfo requests reader information.
func GetReaderInfo(typ InfoType) *Command {
	var name string
	switch typ {
	case InfoModel:
		name = "InfoModel"
	case InfoFirmwareVersion:
		name = "InfoFirmwareVersion"
	case InfoManufacturer:
		name = "InfoManufacturer"
	case InfoDetail:
		name = "InfoDetail"
	default:
		name = fmt.Sprintf("Info(%#02x)", byte(typ))
	}
	return newCommand(name, CodeGetReaderInfo, byte(typ))
}

// SystemReset resets the reader. The reader replies twice: when the
// command is accepted, and when the reset completes.
func SystemReset() *Command {
	return newCommand("SoftwareReset", CodeSystemReset)
}

// GetRegion requests the current region.
func GetRegion() *Command {
	return newCommand("Region", CodeGetRegion)
}

// SetRegion changes the region.
func SetRegion(r Region) (*Command, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("SetRegion: %w: %s", ErrInvalidArgument, r)
	}
	return newCommand("SetRegion", CodeSetRegion, byte(r)), nil
}

// GetTxPower requests the transmit power level.
func GetTxPower() *Command {
	return newCommand("TxPower", CodeGetTxPower)
}

// SetTxPower changes the transmit power in dBm.
func SetTxPower(dbm float64) (*Command, error) {
	if dbm < -100 || dbm > 100 {
		return nil, fmt.Errorf("SetTxPower: %w: %.1f dBm", ErrInvalidArgument, dbm)
	}
	payload := make([]byte, 2)
	putDBm(payload, dbm)
	return newCommand("SetTxPower", CodeSetTxPower, payload...), nil
}

// GetChannel requests the current RF channel.
func GetChannel() *Command {
	return newCommand("CurrentChannel", CodeGetChannel)
}

// GetHoppingTable requests the frequency hopping table.
func GetHoppingTable() *Command {
	return newCommand("HoppingTable", CodeGetHoppingTable)
}

// GetAntiCollision requests the anti-collision mode.
func GetAntiCollision() *Command {
	return newCommand("AntiCollision", CodeGetAntiCollision)
}

// SetAntiCollision changes the anti-collision mode.
func SetAntiCollision(a AntiCollision) (*Command, error) {
	return marshalCommand("SetAntiCollision", CodeSetAntiCollision, a)
}

// GetModulation requests the modulation mode.
func GetModulation() *Command {
	return newCommand("Modulation", CodeGetModulation)
}

// SetModulation changes the modulation mode.
func SetModulation(m ModulationMode) (*Command, error) {
	return marshalCommand("SetModulation", CodeSetModulation, m)
}

// GetQueryParameters requests the Query parameters.
func GetQueryParameters() *Command {
	return newCommand("QueryParameters", CodeGetQueryParams)
}

// SetQueryParameters changes the Query parameters.
func SetQueryParameters(q QueryParameters) (*Command, error) {
	return marshalCommand("SetQueryParameters", CodeSetQueryParams, q)
}

// GetSelectFilter requests the select filter in slot index.
func GetSelectFilter(index uint8) (*Command, error) {
	if index >= MaxSelectFilters {
		return nil, fmt.Errorf("SelectFilter: %w: index %d", ErrInvalidArgument, index)
	}
	return newCommand("SelectFilter", CodeGetSelectFilter, index), nil
}

// SetSelectFilter stores a select filter.
func SetSelectFilter(f SelectFilter) (*Command, error) {
	return marshalCommand("SetSelectFilter", CodeSetSelectFilter, f)
}

// GetSelectionEnables requests the active select filter slots.
func GetSelectionEnables() *Command {
	return newCommand("SelectionEnables", CodeGetSelectEnables)
}

// SetSelectionEnables activates select filter slots.
func SetSelectionEnables(e SelectionEnables) (*Command, error) {
	return marshalCommand("SetSelectionEnables", CodeSetSelectEnables, e)
}

// GetFhLbtParameters requests the FH/LBT parameters.
func GetFhLbtParameters() *Command {
	return newCommand("FhLbtParameters", CodeGetFhLbtParams)
}

// SetFhLbtParameters changes the FH/LBT parameters.
func SetFhLbtParameters(p FhLbtParameters) (*Command, error) {
	return marshalCommand("SetFhLbtParameters", CodeSetFhLbtParams, p)
}

// GetRSSI requests the RSSI of the current channel.
func GetRSSI() *Command {
	return newCommand("RSSI", CodeGetRSSI)
}

// SetCW turns the continuous wave on or off.
func SetCW(on bool) *Command {
	var arg byte
	if on {
		arg = 0xff
	}
	return newCommand("SetCW", CodeSetCW, arg)
}

// StartAutoRead2 starts an automatic inventory reporting tag reads.
func StartAutoRead2(a AutoRead) (*Command, error) {
	return marshalCommand("StartAutoRead2", CodeStartAutoRead2, a)
}

// StopAutoRead2 stops the automatic inventory.
func StopAutoRead2() *Command {
	return newCommand("StopAutoRead2", CodeStopAutoRead2)
}

// StartAutoReadTID starts an automatic inventory reporting tag reads with TID.
// The tag type is ignored, TID reads are always Type C.
func StartAutoReadTID(a AutoRead) (*Command, error) {
	cmd, err := marshalCommand("StartAutoReadTID", CodeStartAutoReadTID, a)
	if err != nil {
		return nil, err
	}
	cmd.Payload = cmd.Payload[1:]
	return cmd, nil
}

// StopAutoReadTID stops the automatic TID inventory.
func StopAutoReadTID() *Command {
	return newCommand("StopAutoReadTID", CodeStopAutoReadTID)
}

// StartAutoReadRSSI starts an automatic inventory reporting tag reads with RSSI.
func StartAutoReadRSSI(a AutoRead) (*Command, error) {
	return marshalCommand("StartAutoReadRSSI", CodeStartAutoReadRSSI, a)
}

// StopAutoReadRSSI stops the automatic RSSI inventory.
func StopAutoReadRSSI() *Command {
	return newCommand("StopAutoReadRSSI", CodeStopAutoReadRSSI)
}

// ReadTag reads words from a tag memory bank.
func ReadTag(a TagAccess) (*Command, error) {
	return marshalCommand("ReadTag", CodeReadTagData, a)
}

// WriteTag writes data to a tag memory bank. The data length must be
// a multiple of the word size (2 bytes).
func WriteTag(a TagAccess, data []byte) (*Command, error) {
	if len(data) == 0 || len(data)%2 != 0 {
		return nil, fmt.Errorf("WriteTag: %w: %d bytes of data", ErrInvalidArgument, len(data))
	}
	a.WordCount = uint16(len(data) / 2)
	cmd, err := marshalCommand("WriteTag", CodeWriteTagData, a)
	if err != nil {
		return nil, err
	}
	cmd.Payload = append(cmd.Payload, data...)
	return cmd, nil
}
