package rcp

import (
	"fmt"
	"strings"
)

// Command codes.
const (
	CodeGetReaderInfo     byte = 0x03
	CodeGetRegion         byte = 0x06
	CodeSetRegion         byte = 0x07
	CodeSystemReset       byte = 0x08
	CodeGetSelectFilter   byte = 0x0B
	CodeSetSelectFilter   byte = 0x0C
	CodeGetQueryParams    byte = 0x0D
	CodeSetQueryParams    byte = 0x0E
	CodeGetChannel        byte = 0x11
	CodeGetFhLbtParams    byte = 0x13
	CodeSetFhLbtParams    byte = 0x14
	CodeGetTxPower        byte = 0x15
	CodeSetTxPower        byte = 0x16
	CodeSetCW             byte = 0x17
	CodeReadTypeCUII      byte = 0x22
	CodeReadTagData       byte = 0x29
	CodeGetHoppingTable   byte = 0x30
	CodeGetAntiCollision  byte = 0x34
	CodeSetAntiCollision  byte = 0x35
	CodeStartAutoRead2    byte = 0x36
	CodeStopAutoRead2     byte = 0x37
	CodeStartAutoReadTID  byte = 0x38
	CodeStopAutoReadTID   byte = 0x39
	CodeStartAutoReadRSSI byte = 0x3A
	CodeStopAutoReadRSSI  byte = 0x3B
	CodeWriteTagData      byte = 0x46
	CodeGetModulation     byte = 0x4C
	CodeSetModulation     byte = 0x4D
	CodeGetSelectEnables  byte = 0x4E
	CodeSetSelectEnables  byte = 0x4F
	CodeGetRSSI           byte = 0xC5

	// CodeFailure is the code of a failure response.
	CodeFailure byte = 0xFF
)

// InfoType selects the reader information to retrieve.
type InfoType byte

// Reader information types.
const (
	InfoModel           InfoType = 0x00
	InfoFirmwareVersion InfoType = 0x01
	InfoManufacturer    InfoType = 0x02
	InfoDetail          InfoType = 0xB0
)

// Region is the regulatory region of the reader.
type Region byte

// Regions.
const (
	RegionKorea  Region = 0x11
	RegionUS     Region = 0x21
	RegionUS2    Region = 0x22
	RegionEurope Region = 0x31
	RegionJapan  Region = 0x41
	RegionChina1 Region = 0x51
	RegionChina2 Region = 0x52
)

var regionNames = map[Region]string{
	RegionKorea:  "korea",
	RegionUS:     "us",
	RegionUS2:    "us2",
	RegionEurope: "europe",
	RegionJapan:  "japan",
	RegionChina1: "china1",
	RegionChina2: "china2",
}

// String implements fmt.Stringer.
func (r Region) String() string {
	if name, ok := regionNames[r]; ok {
		return name
	}
	return fmt.Sprintf("region(%#02x)", byte(r))
}

// IsValid checks if the region is known.
func (r Region) IsValid() bool {
	_, ok := regionNames[r]
	return ok
}

// ParseRegion parses a region name.
func ParseRegion(name string) (Region, error) {
	name = strings.ToLower(name)
	for r, n := range regionNames {
		if n == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown region %q", ErrInvalidArgument, name)
}

// AntiCollisionMode selects how Q is adjusted during inventory.
type AntiCollisionMode byte

// Anti-collision modes.
const (
	AntiCollisionFixedQ   AntiCollisionMode = 0x00
	AntiCollisionDynamicQ AntiCollisionMode = 0x01
)

// Modulation is the tag-to-reader encoding (Miller subcarrier).
type Modulation byte

// Modulations.
const (
	ModulationFM0 Modulation = 0x00
	ModulationM2  Modulation = 0x01
	ModulationM4  Modulation = 0x02
	ModulationM8  Modulation = 0x03
)

// DivideRatio is the TRcal divide ratio.
type DivideRatio byte

// Divide ratios.
const (
	DivideRatio8    DivideRatio = 0x00
	DivideRatio64_3 DivideRatio = 0x01
)

// Sel chooses which tags respond to a Query.
type Sel byte

// Sel values.
const (
	SelAll   Sel = 0x00
	SelAll2  Sel = 0x01
	SelNotSL Sel = 0x02
	SelSL    Sel = 0x03
)

// Session is the inventory session.
type Session byte

// Sessions.
const (
	SessionS0 Session = 0x00
	SessionS1 Session = 0x01
	SessionS2 Session = 0x02
	SessionS3 Session = 0x03
)

// Target is the inventoried flag target.
type Target byte

// Targets.
const (
	TargetA Target = 0x00
	TargetB Target = 0x01
)

// SelectTarget is the flag modified by a Select.
type SelectTarget byte

// Select targets.
const (
	SelectTargetS0 SelectTarget = 0x00
	SelectTargetS1 SelectTarget = 0x01
	SelectTargetS2 SelectTarget = 0x02
	SelectTargetS3 SelectTarget = 0x03
	SelectTargetSL SelectTarget = 0x04
)

// SelectAction is the Select action (0..7) per Gen2.
type SelectAction byte

// MemoryBank is a tag memory bank.
type MemoryBank byte

// Memory banks.
const (
	BankReserved MemoryBank = 0x00
	BankEPC      MemoryBank = 0x01
	BankTID      MemoryBank = 0x02
	BankUser     MemoryBank = 0x03
)

var bankNames = []string{"reserved", "epc", "tid", "user"}

// String implements fmt.Stringer.
func (b MemoryBank) String() string {
	if int(b) < len(bankNames) {
		return bankNames[b]
	}
	return fmt.Sprintf("bank(%d)", byte(b))
}

// ParseMemoryBank parses a memory bank name.
func ParseMemoryBank(name string) (MemoryBank, error) {
	name = strings.ToLower(name)
	for n, s := range bankNames {
		if s == name {
			return MemoryBank(n), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown memory bank %q", ErrInvalidArgument, name)
}

// FhLbtMode selects frequency hopping and/or listen-before-talk.
type FhLbtMode byte

// FH/LBT modes.
const (
	ModeFH    FhLbtMode = 0x00
	ModeLBT   FhLbtMode = 0x01
	ModeFHLBT FhLbtMode = 0x02
)

// TagType is the air protocol used by automatic reads.
type TagType byte

// TagTypeC is ISO 18000-6C (EPC Gen2).
const TagTypeC TagType = 0x02
