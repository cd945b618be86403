package sh

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/redrcp.go/pkg/rcp"
)

// parseHex parses hex bytes. ':', '-' and '_' separators are ignored.
func parseHex(s string) ([]byte, error) {
	s = strings.NewReplacer(":", "", "-", "", "_", "").Replace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex %q: %v", s, err)
	}
	return b, nil
}

func parseUint(name, s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %v", name, s, err)
	}
	return v, nil
}

func parseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %v", name, s, err)
	}
	return v, nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("expect on or off, got %q", s)
}

// parseAccess parses EPC BANK WORDPTR [PASSWORD].
func parseAccess(args []string) (a rcp.TagAccess, err error) {
	if len(args) < 3 {
		return a, fmt.Errorf("EPC BANK WORDPTR required")
	}
	if a.EPC, err = parseHex(args[0]); err != nil {
		return
	}
	if a.Bank, err = rcp.ParseMemoryBank(args[1]); err != nil {
		return
	}
	ptr, err := parseUint("WORDPTR", args[2], 16)
	if err != nil {
		return
	}
	a.WordPointer = uint16(ptr)
	if len(args) > 3 {
		pwd, err := parseUint("PASSWORD", args[3], 32)
		if err != nil {
			return a, err
		}
		a.AccessPassword = uint32(pwd)
	}
	return a, nil
}

// parseAutoRead parses [MAX_TAGS [MAX_TIME [REPEAT]]].
func parseAutoRead(args []string) (a rcp.AutoRead, err error) {
	a.TagType = rcp.TagTypeC
	names := []string{"MAX_TAGS", "MAX_TIME", "REPEAT"}
	bits := []int{8, 8, 16}
	vals := make([]uint64, len(names))
	for n := range names {
		if n >= len(args) {
			break
		}
		if vals[n], err = parseUint(names[n], args[n], bits[n]); err != nil {
			return
		}
	}
	a.MaxTags, a.MaxTime, a.RepeatCycle = uint8(vals[0]), uint8(vals[1]), uint16(vals[2])
	return a, nil
}

func parseAntiCollision(args []string) (a rcp.AntiCollision, err error) {
	if len(args) < 4 {
		return a, fmt.Errorf("MODE START MIN MAX required")
	}
	switch strings.ToLower(args[0]) {
	case "fixed":
		a.Mode = rcp.AntiCollisionFixedQ
	case "dynamic":
		a.Mode = rcp.AntiCollisionDynamicQ
	default:
		return a, fmt.Errorf("MODE must be fixed or dynamic, got %q", args[0])
	}
	var q [3]uint64
	for n, name := range []string{"START", "MIN", "MAX"} {
		if q[n], err = parseUint(name, args[n+1], 8); err != nil {
			return
		}
	}
	a.StartQ, a.MinQ, a.MaxQ = uint8(q[0]), uint8(q[1]), uint8(q[2])
	return a, a.Validate()
}

// parseSelectFilter parses INDEX TARGET ACTION BANK POINTER LENGTH [MASK].
func parseSelectFilter(args []string) (f rcp.SelectFilter, err error) {
	if len(args) < 6 {
		return f, fmt.Errorf("INDEX TARGET ACTION BANK POINTER LENGTH [MASK] required")
	}
	var v [6]uint64
	names := []string{"INDEX", "TARGET", "ACTION", "", "POINTER", "LENGTH"}
	bits := []int{8, 8, 8, 0, 32, 8}
	for n, name := range names {
		if name == "" {
			continue
		}
		if v[n], err = parseUint(name, args[n], bits[n]); err != nil {
			return
		}
	}
	if f.Bank, err = rcp.ParseMemoryBank(args[3]); err != nil {
		return
	}
	f.Index, f.Target, f.Action = uint8(v[0]), rcp.SelectTarget(v[1]), rcp.SelectAction(v[2])
	f.Pointer, f.Length = uint32(v[4]), uint8(v[5])
	if len(args) > 6 {
		if f.Mask, err = parseHex(args[6]); err != nil {
			return
		}
	}
	return f, nil
}

func parseFhLbt(args []string) (p rcp.FhLbtParameters, err error) {
	if len(args) < 5 {
		return p, fmt.Errorf("DWELL IDLE SENSE LBT MODE required")
	}
	var t [3]uint64
	for n, name := range []string{"DWELL", "IDLE", "SENSE"} {
		if t[n], err = parseUint(name, args[n], 16); err != nil {
			return
		}
	}
	p.DwellTime, p.IdleTime, p.SenseTime = uint16(t[0]), uint16(t[1]), uint16(t[2])
	if p.LBTLevel, err = parseFloat("LBT", args[3]); err != nil {
		return
	}
	switch strings.ToLower(args[4]) {
	case "fh":
		p.Mode = rcp.ModeFH
	case "lbt":
		p.Mode = rcp.ModeLBT
	case "fhlbt":
		p.Mode = rcp.ModeFHLBT
	default:
		return p, fmt.Errorf("MODE must be fh, lbt or fhlbt, got %q", args[4])
	}
	return p, nil
}
