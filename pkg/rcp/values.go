package rcp

import (
	"encoding/binary"
	"fmt"
	"math"
)

func dBm(b []byte) float64 {
	return float64(int16(binary.BigEndian.Uint16(b))) / 10
}

func putDBm(b []byte, v float64) {
	binary.BigEndian.PutUint16(b, uint16(int16(math.Round(v*10))))
}

func payloadSizeError(name string, got, expected int) error {
	return fmt.Errorf("%w: %s payload is %d bytes, expect %d", ErrMalformed, name, got, expected)
}

// ReaderDetail is the detailed reader information.
type ReaderDetail struct {
	Region      Region
	Channel     uint8
	DwellTime   uint16 // ms
	IdleTime    uint16 // ms
	SenseTime   uint16 // ms
	LBTLevel    float64
	TxPower     float64
	MinTxPower  float64
	MaxTxPower  float64
	BLF         uint16 // kHz
	Modulation  Modulation
	DivideRatio DivideRatio
}

const readerDetailLen = 20

// MarshalBinary implements encoding.BinaryMarshaler.
func (d ReaderDetail) MarshalBinary() ([]byte, error) {
	b := make([]byte, readerDetailLen)
	b[0], b[1] = byte(d.Region), d.Channel
	binary.BigEndian.PutUint16(b[2:], d.DwellTime)
	binary.BigEndian.PutUint16(b[4:], d.IdleTime)
	binary.BigEndian.PutUint16(b[6:], d.SenseTime)
	putDBm(b[8:], d.LBTLevel)
	putDBm(b[10:], d.TxPower)
	putDBm(b[12:], d.MinTxPower)
	putDBm(b[14:], d.MaxTxPower)
	binary.BigEndian.PutUint16(b[16:], d.BLF)
	b[18], b[19] = byte(d.Modulation), byte(d.DivideRatio)
	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (d *ReaderDetail) UnmarshalBinary(b []byte) error {
	if len(b) != readerDetailLen {
		return payloadSizeError("reader detail", len(b), readerDetailLen)
	}
	*d = ReaderDetail{
		Region:      Region(b[0]),
		Channel:     b[1],
		DwellTime:   binary.BigEndian.Uint16(b[2:]),
		IdleTime:    binary.BigEndian.Uint16(b[4:]),
		SenseTime:   binary.BigEndian.Uint16(b[6:]),
		LBTLevel:    dBm(b[8:]),
		TxPower:     dBm(b[10:]),
		MinTxPower:  dBm(b[12:]),
		MaxTxPower:  dBm(b[14:]),
		BLF:         binary.BigEndian.Uint16(b[16:]),
		Modulation:  Modulation(b[18]),
		DivideRatio: DivideRatio(b[19]),
	}
	return nil
}

// TxPowerLevel is the transmit power in dBm with its supported range.
type TxPowerLevel struct {
	Current float64
	Min     float64
	Max     float64
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p TxPowerLevel) MarshalBinary() ([]byte, error) {
	b := make([]byte, 6)
	putDBm(b, p.Current)
	putDBm(b[2:], p.Min)
	putDBm(b[4:], p.Max)
	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *TxPowerLevel) UnmarshalBinary(b []byte) error {
	if len(b) != 6 {
		return payloadSizeError("tx power", len(b), 6)
	}
	p.Current, p.Min, p.Max = dBm(b), dBm(b[2:]), dBm(b[4:])
	return nil
}

// Channel is the current RF channel.
type Channel struct {
	Number uint8
	Offset uint8
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (c Channel) MarshalBinary() ([]byte, error) {
	return []byte{c.Number, c.Offset}, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (c *Channel) UnmarshalBinary(b []byte) error {
	if len(b) != 2 {
		return payloadSizeError("channel", len(b), 2)
	}
	c.Number, c.Offset = b[0], b[1]
	return nil
}

// HoppingTable lists the channels used for frequency hopping.
type HoppingTable []uint8

// MarshalBinary implements encoding.BinaryMarshaler.
func (t HoppingTable) MarshalBinary() ([]byte, error) {
	if len(t) > 0xff {
		return nil, fmt.Errorf("%w: %d channels in hopping table", ErrInvalidArgument, len(t))
	}
	return append([]byte{byte(len(t))}, t...), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (t *HoppingTable) UnmarshalBinary(b []byte) error {
	if len(b) == 0 || len(b) != int(b[0])+1 {
		return fmt.Errorf("%w: hopping table payload is %d bytes", ErrMalformed, len(b))
	}
	*t = append(HoppingTable{}, b[1:]...)
	return nil
}

// MaxQ is the largest Q value.
const MaxQ = 15

// AntiCollision configures the anti-collision algorithm.
type AntiCollision struct {
	Mode   AntiCollisionMode
	StartQ uint8
	MaxQ   uint8
	MinQ   uint8
}

// Validate checks the Q values.
func (a AntiCollision) Validate() error {
	if a.MaxQ > MaxQ || a.MinQ > a.StartQ || a.StartQ > a.MaxQ {
		return fmt.Errorf("%w: Q values start=%d min=%d max=%d", ErrInvalidArgument, a.StartQ, a.MinQ, a.MaxQ)
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (a AntiCollision) MarshalBinary() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return []byte{byte(a.Mode), a.StartQ, a.MaxQ, a.MinQ}, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (a *AntiCollision) UnmarshalBinary(b []byte) error {
	if len(b) != 4 {
		return payloadSizeError("anti-collision", len(b), 4)
	}
	*a = AntiCollision{Mode: AntiCollisionMode(b[0]), StartQ: b[1], MaxQ: b[2], MinQ: b[3]}
	return nil
}

// ModulationMode is the link configuration.
type ModulationMode struct {
	BLF         uint16 // kHz
	Modulation  Modulation
	DivideRatio DivideRatio
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m ModulationMode) MarshalBinary() ([]byte, error) {
	if m.Modulation > ModulationM8 || m.DivideRatio > DivideRatio64_3 {
		return nil, fmt.Errorf("%w: modulation %d divide ratio %d", ErrInvalidArgument, m.Modulation, m.DivideRatio)
	}
	b := make([]byte, 4)
	binary.BigEndian.PutUint16(b, m.BLF)
	b[2], b[3] = byte(m.Modulation), byte(m.DivideRatio)
	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (m *ModulationMode) UnmarshalBinary(b []byte) error {
	if len(b) != 4 {
		return payloadSizeError("modulation", len(b), 4)
	}
	*m = ModulationMode{
		BLF:         binary.BigEndian.Uint16(b),
		Modulation:  Modulation(b[2]),
		DivideRatio: DivideRatio(b[3]),
	}
	return nil
}

// QueryParameters are the parameters of the Gen2 Query command.
type QueryParameters struct {
	DivideRatio  DivideRatio
	Modulation   Modulation
	PilotTone    bool
	Sel          Sel
	Session      Session
	Target       Target
	TargetToggle bool
	Q            uint8
}

func bit(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (q QueryParameters) MarshalBinary() ([]byte, error) {
	if q.Q > MaxQ || q.DivideRatio > 1 || q.Modulation > 3 || q.Sel > 3 || q.Session > 3 || q.Target > 1 {
		return nil, fmt.Errorf("%w: query parameters %+v", ErrInvalidArgument, q)
	}
	return []byte{
		byte(q.DivideRatio)<<7 | byte(q.Modulation)<<5 | bit(q.PilotTone)<<4 | byte(q.Sel)<<2 | byte(q.Session),
		byte(q.Target)<<7 | q.Q<<3 | bit(q.TargetToggle)<<2,
	}, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (q *QueryParameters) UnmarshalBinary(b []byte) error {
	if len(b) != 2 {
		return payloadSizeError("query parameters", len(b), 2)
	}
	*q = QueryParameters{
		DivideRatio:  DivideRatio(b[0] >> 7),
		Modulation:   Modulation(b[0] >> 5 & 3),
		PilotTone:    b[0]&0x10 != 0,
		Sel:          Sel(b[0] >> 2 & 3),
		Session:      Session(b[0] & 3),
		Target:       Target(b[1] >> 7),
		Q:            b[1] >> 3 & 0x0f,
		TargetToggle: b[1]&0x04 != 0,
	}
	return nil
}

// MaxSelectFilters is the number of select filter slots.
const MaxSelectFilters = 8

// SelectFilter is a Gen2 Select configuration stored in a filter slot.
type SelectFilter struct {
	Index   uint8
	Target  SelectTarget
	Action  SelectAction
	Bank    MemoryBank
	Pointer uint32 // bits
	Length  uint8  // bits
	Mask    []byte
}

func (f SelectFilter) maskLen() int {
	return (int(f.Length) + 7) / 8
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (f SelectFilter) MarshalBinary() ([]byte, error) {
	if f.Index >= MaxSelectFilters || f.Target > SelectTargetSL || f.Action > 7 || f.Bank > BankUser {
		return nil, fmt.Errorf("%w: select filter %d", ErrInvalidArgument, f.Index)
	}
	n := f.maskLen()
	if len(f.Mask) < n {
		return nil, fmt.Errorf("%w: mask has %d bytes for %d bits", ErrInvalidArgument, len(f.Mask), f.Length)
	}
	b := make([]byte, 9+n)
	b[0], b[1], b[2], b[3] = f.Index, byte(f.Target), byte(f.Action), byte(f.Bank)
	binary.BigEndian.PutUint32(b[4:], f.Pointer)
	b[8] = f.Length
	copy(b[9:], f.Mask[:n])
	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (f *SelectFilter) UnmarshalBinary(b []byte) error {
	if len(b) < 9 {
		return payloadSizeError("select filter", len(b), 9)
	}
	*f = SelectFilter{
		Index:   b[0],
		Target:  SelectTarget(b[1]),
		Action:  SelectAction(b[2]),
		Bank:    MemoryBank(b[3]),
		Pointer: binary.BigEndian.Uint32(b[4:]),
		Length:  b[8],
	}
	if n := f.maskLen(); len(b) != 9+n {
		return payloadSizeError("select filter", len(b), 9+n)
	}
	if len(b) > 9 {
		f.Mask = append([]byte(nil), b[9:]...)
	}
	return nil
}

// SelectionEnables tells which select filter slots are active.
type SelectionEnables []bool

// MarshalBinary implements encoding.BinaryMarshaler.
func (e SelectionEnables) MarshalBinary() ([]byte, error) {
	if len(e) > MaxSelectFilters {
		return nil, fmt.Errorf("%w: %d selection flags", ErrInvalidArgument, len(e))
	}
	var mask byte
	for n, en := range e {
		mask |= bit(en) << uint(n)
	}
	return []byte{mask}, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (e *SelectionEnables) UnmarshalBinary(b []byte) error {
	if len(b) != 1 {
		return payloadSizeError("selection enables", len(b), 1)
	}
	flags := make(SelectionEnables, MaxSelectFilters)
	for n := range flags {
		flags[n] = b[0]&(1<<uint(n)) != 0
	}
	*e = flags
	return nil
}

// FhLbtParameters configures frequency hopping and listen-before-talk.
type FhLbtParameters struct {
	DwellTime uint16 // ms
	IdleTime  uint16 // ms
	SenseTime uint16 // ms
	LBTLevel  float64
	Mode      FhLbtMode
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (p FhLbtParameters) MarshalBinary() ([]byte, error) {
	if p.Mode > ModeFHLBT {
		return nil, fmt.Errorf("%w: FH/LBT mode %d", ErrInvalidArgument, p.Mode)
	}
	b := make([]byte, 9)
	binary.BigEndian.PutUint16(b, p.DwellTime)
	binary.BigEndian.PutUint16(b[2:], p.IdleTime)
	binary.BigEndian.PutUint16(b[4:], p.SenseTime)
	putDBm(b[6:], p.LBTLevel)
	b[8] = byte(p.Mode)
	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (p *FhLbtParameters) UnmarshalBinary(b []byte) error {
	if len(b) != 9 {
		return payloadSizeError("FH/LBT parameters", len(b), 9)
	}
	*p = FhLbtParameters{
		DwellTime: binary.BigEndian.Uint16(b),
		IdleTime:  binary.BigEndian.Uint16(b[2:]),
		SenseTime: binary.BigEndian.Uint16(b[4:]),
		LBTLevel:  dBm(b[6:]),
		Mode:      FhLbtMode(b[8]),
	}
	return nil
}

// AutoRead limits an automatic read cycle. Zero values mean unlimited.
type AutoRead struct {
	TagType     TagType
	MaxTags     uint8
	MaxTime     uint8 // seconds
	RepeatCycle uint16
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (a AutoRead) MarshalBinary() ([]byte, error) {
	b := []byte{byte(a.TagType), a.MaxTags, a.MaxTime, 0, 0}
	binary.BigEndian.PutUint16(b[3:], a.RepeatCycle)
	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (a *AutoRead) UnmarshalBinary(b []byte) error {
	if len(b) != 5 {
		return payloadSizeError("auto read", len(b), 5)
	}
	*a = AutoRead{
		TagType:     TagType(b[0]),
		MaxTags:     b[1],
		MaxTime:     b[2],
		RepeatCycle: binary.BigEndian.Uint16(b[3:]),
	}
	return nil
}

// TagAccess addresses a range of words in a tag memory bank.
type TagAccess struct {
	AccessPassword uint32
	EPC            []byte
	Bank           MemoryBank
	WordPointer    uint16
	WordCount      uint16
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (a TagAccess) MarshalBinary() ([]byte, error) {
	if len(a.EPC) == 0 || len(a.EPC) > 62 || a.Bank > BankUser || a.WordCount == 0 {
		return nil, fmt.Errorf("%w: tag access epc=%d bytes bank=%s words=%d",
			ErrInvalidArgument, len(a.EPC), a.Bank, a.WordCount)
	}
	b := make([]byte, 6+len(a.EPC)+5)
	binary.BigEndian.PutUint32(b, a.AccessPassword)
	binary.BigEndian.PutUint16(b[4:], uint16(len(a.EPC)))
	n := copy(b[6:], a.EPC) + 6
	b[n] = byte(a.Bank)
	binary.BigEndian.PutUint16(b[n+1:], a.WordPointer)
	binary.BigEndian.PutUint16(b[n+3:], a.WordCount)
	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// Bytes after the access header are ignored (data of a write command).
func (a *TagAccess) UnmarshalBinary(b []byte) error {
	if len(b) < 6 {
		return payloadSizeError("tag access", len(b), 6)
	}
	epcLen := int(binary.BigEndian.Uint16(b[4:]))
	if len(b) < 6+epcLen+5 {
		return payloadSizeError("tag access", len(b), 6+epcLen+5)
	}
	n := 6 + epcLen
	*a = TagAccess{
		AccessPassword: binary.BigEndian.Uint32(b),
		EPC:            append([]byte(nil), b[6:n]...),
		Bank:           MemoryBank(b[n]),
		WordPointer:    binary.BigEndian.Uint16(b[n+1:]),
		WordCount:      binary.BigEndian.Uint16(b[n+3:]),
	}
	return nil
}

// EncodedLen returns the length of the encoded access header.
func (a TagAccess) EncodedLen() int {
	return 6 + len(a.EPC) + 5
}
