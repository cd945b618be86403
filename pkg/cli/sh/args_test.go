package sh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/redrcp.go/pkg/rcp"
)

func TestParseHex(t *testing.T) {
	b, err := parseHex("0xE2:00-68_11")
	require.NoError(t, err)
	require.Equal(t, []byte{0xe2, 0x00, 0x68, 0x11}, b)
	_, err = parseHex("e2f")
	require.Error(t, err)
}

func TestParseAccess(t *testing.T) {
	a, err := parseAccess([]string{"e200", "user", "2", "0x11223344"})
	require.NoError(t, err)
	require.Equal(t, []byte{0xe2, 0x00}, a.EPC)
	require.Equal(t, rcp.BankUser, a.Bank)
	require.Equal(t, uint16(2), a.WordPointer)
	require.Equal(t, uint32(0x11223344), a.AccessPassword)

	_, err = parseAccess([]string{"e200", "flash", "2"})
	require.ErrorIs(t, err, rcp.ErrInvalidArgument)
	_, err = parseAccess([]string{"e200", "user"})
	require.Error(t, err)
}

func TestParseAutoRead(t *testing.T) {
	a, err := parseAutoRead(nil)
	require.NoError(t, err)
	require.Equal(t, rcp.AutoRead{TagType: rcp.TagTypeC}, a)
	a, err = parseAutoRead([]string{"5", "10", "300"})
	require.NoError(t, err)
	require.Equal(t, rcp.AutoRead{TagType: rcp.TagTypeC, MaxTags: 5, MaxTime: 10, RepeatCycle: 300}, a)
	_, err = parseAutoRead([]string{"256"})
	require.Error(t, err)
}

func TestParseAntiCollision(t *testing.T) {
	a, err := parseAntiCollision([]string{"dynamic", "4", "0", "15"})
	require.NoError(t, err)
	require.Equal(t, rcp.AntiCollision{Mode: rcp.AntiCollisionDynamicQ, StartQ: 4, MaxQ: 15}, a)
	_, err = parseAntiCollision([]string{"fixed", "4", "5", "15"})
	require.ErrorIs(t, err, rcp.ErrInvalidArgument)
	_, err = parseAntiCollision([]string{"random", "4", "0", "15"})
	require.Error(t, err)
}

func TestParseSelectFilter(t *testing.T) {
	f, err := parseSelectFilter([]string{"1", "4", "0", "epc", "32", "16", "e200"})
	require.NoError(t, err)
	require.Equal(t, rcp.SelectFilter{
		Index:   1,
		Target:  rcp.SelectTargetSL,
		Bank:    rcp.BankEPC,
		Pointer: 32,
		Length:  16,
		Mask:    []byte{0xe2, 0x00},
	}, f)
	_, err = parseSelectFilter([]string{"1", "4", "0", "epc", "32"})
	require.Error(t, err)
}

func TestParseFhLbt(t *testing.T) {
	p, err := parseFhLbt([]string{"4000", "100", "10", "-74.5", "fhlbt"})
	require.NoError(t, err)
	require.Equal(t, rcp.FhLbtParameters{DwellTime: 4000, IdleTime: 100, SenseTime: 10, LBTLevel: -74.5, Mode: rcp.ModeFHLBT}, p)
	_, err = parseFhLbt([]string{"4000", "100", "10", "-74.5", "hop"})
	require.Error(t, err)
}

func TestParseQuery(t *testing.T) {
	q := rcp.QueryParameters{Q: 4}
	require.NoError(t, parseQuery(&q, []string{"q", "6", "session", "2", "target", "B"}))
	require.Equal(t, rcp.QueryParameters{Q: 6, Session: rcp.SessionS2, Target: rcp.TargetB}, q)
	require.Error(t, parseQuery(&q, []string{"q"}))
	require.Error(t, parseQuery(&q, []string{"speed", "1"}))
}
