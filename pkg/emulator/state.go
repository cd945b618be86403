// Package emulator emulates a reader answering commands over a link.Port.
package emulator

import (
	"github.com/robotalks/redrcp.go/pkg/rcp"
)

// Reader information reported by default.
const (
	DefaultModel           = "RED4S"
	DefaultFirmwareVersion = "1.0.0-emu"
	DefaultManufacturer    = "redrcp"
)

// Tag is a tag in the field of the emulated reader.
type Tag struct {
	EPC    []byte
	TID    []byte
	RSSI   float64 // dBm
	Memory map[rcp.MemoryBank][]byte
}

// State is the configuration of the emulated reader.
type State struct {
	Region        rcp.Region
	TxPower       rcp.TxPowerLevel
	Channel       rcp.Channel
	HoppingTable  rcp.HoppingTable
	AntiCollision rcp.AntiCollision
	Modulation    rcp.ModulationMode
	Query         rcp.QueryParameters
	Filters       [rcp.MaxSelectFilters]rcp.SelectFilter
	Enables       rcp.SelectionEnables
	FhLbt         rcp.FhLbtParameters
	CW            bool
	RSSI          float64 // dBm
}

// DefaultState returns the state after a reset.
func DefaultState() State {
	s := State{
		Region:        rcp.RegionEurope,
		TxPower:       rcp.TxPowerLevel{Current: 20, Min: 13, Max: 25},
		Channel:       rcp.Channel{Number: 7},
		HoppingTable:  rcp.HoppingTable{1, 4, 7, 10, 13},
		AntiCollision: rcp.AntiCollision{Mode: rcp.AntiCollisionDynamicQ, StartQ: 4, MaxQ: rcp.MaxQ},
		Modulation:    rcp.ModulationMode{BLF: 160, Modulation: rcp.ModulationM4, DivideRatio: rcp.DivideRatio64_3},
		Query: rcp.QueryParameters{
			DivideRatio: rcp.DivideRatio64_3,
			Modulation:  rcp.ModulationM4,
			PilotTone:   true,
			Session:     rcp.SessionS0,
			Q:           4,
		},
		Enables: make(rcp.SelectionEnables, rcp.MaxSelectFilters),
		FhLbt:   rcp.FhLbtParameters{DwellTime: 4000, IdleTime: 100, SenseTime: 10, LBTLevel: -74, Mode: rcp.ModeFH},
		RSSI:    -62.5,
	}
	for n := range s.Filters {
		s.Filters[n].Index = uint8(n)
	}
	return s
}

// detail builds the detailed reader information.
func (s *State) detail() rcp.ReaderDetail {
	return rcp.ReaderDetail{
		Region:      s.Region,
		Channel:     s.Channel.Number,
		DwellTime:   s.FhLbt.DwellTime,
		IdleTime:    s.FhLbt.IdleTime,
		SenseTime:   s.FhLbt.SenseTime,
		LBTLevel:    s.FhLbt.LBTLevel,
		TxPower:     s.TxPower.Current,
		MinTxPower:  s.TxPower.Min,
		MaxTxPower:  s.TxPower.Max,
		BLF:         s.Modulation.BLF,
		Modulation:  s.Modulation.Modulation,
		DivideRatio: s.Modulation.DivideRatio,
	}
}
