package rcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustCommand(t *testing.T) func(*Command, error) *Command {
	return func(cmd *Command, err error) *Command {
		require.NoError(t, err)
		return cmd
	}
}

func TestCommands(t *testing.T) {
	must := mustCommand(t)
	access := TagAccess{AccessPassword: 0x01020304, EPC: []byte{0xE2, 0x00}, Bank: BankUser, WordPointer: 2, WordCount: 1}
	testCases := []struct {
		cmd     *Command
		name    string
		code    byte
		payload []byte
	}{
		{GetReaderInfo(InfoModel), "InfoModel", CodeGetReaderInfo, []byte{0x00}},
		{GetReaderInfo(InfoDetail), "InfoDetail", CodeGetReaderInfo, []byte{0xB0}},
		{SystemReset(), "SoftwareReset", CodeSystemReset, nil},
		{must(SetRegion(RegionEurope)), "SetRegion", CodeSetRegion, []byte{0x31}},
		{must(SetTxPower(20.5)), "SetTxPower", CodeSetTxPower, []byte{0x00, 0xCD}},
		{must(SetTxPower(-1)), "SetTxPower", CodeSetTxPower, []byte{0xFF, 0xF6}},
		{SetCW(true), "SetCW", CodeSetCW, []byte{0xFF}},
		{SetCW(false), "SetCW", CodeSetCW, []byte{0x00}},
		{must(GetSelectFilter(3)), "SelectFilter", CodeGetSelectFilter, []byte{3}},
		{must(SetSelectionEnables(SelectionEnables{true, true})), "SetSelectionEnables", CodeSetSelectEnables, []byte{0x03}},
		{must(StartAutoRead2(AutoRead{TagType: TagTypeC, MaxTags: 10, MaxTime: 5, RepeatCycle: 0x0102})), "StartAutoRead2", CodeStartAutoRead2, []byte{0x02, 10, 5, 0x01, 0x02}},
		{must(StartAutoReadTID(AutoRead{MaxTags: 1})), "StartAutoReadTID", CodeStartAutoReadTID, []byte{1, 0, 0, 0}},
		{StopAutoReadRSSI(), "StopAutoReadRSSI", CodeStopAutoReadRSSI, nil},
		{must(ReadTag(access)), "ReadTag", CodeReadTagData, []byte{1, 2, 3, 4, 0, 2, 0xE2, 0x00, 3, 0, 2, 0, 1}},
		{must(WriteTag(access, []byte{0xAA, 0xBB, 0xCC, 0xDD})), "WriteTag", CodeWriteTagData, []byte{1, 2, 3, 4, 0, 2, 0xE2, 0x00, 3, 0, 2, 0, 2, 0xAA, 0xBB, 0xCC, 0xDD}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.name, tc.cmd.Name)
			f, _, err := Decode(tc.cmd.Bytes())
			require.NoError(t, err)
			require.Equal(t, TypeCommand, f.Type)
			require.Equal(t, tc.code, f.Code)
			if len(tc.payload) == 0 {
				require.Empty(t, f.Payload)
			} else {
				require.Equal(t, tc.payload, f.Payload)
			}
		})
	}
}

func TestCommandArguments(t *testing.T) {
	_, err := SetRegion(Region(0x99))
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = SetTxPower(120)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = GetSelectFilter(MaxSelectFilters)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = WriteTag(TagAccess{EPC: []byte{1, 2}, Bank: BankUser}, []byte{1, 2, 3})
	require.ErrorIs(t, err, ErrInvalidArgument)

	access := TagAccess{EPC: []byte{1, 2}, Bank: BankUser, WordPointer: 4}
	cmd, err := WriteTag(access, []byte{9, 8})
	require.NoError(t, err)
	var decoded TagAccess
	require.NoError(t, decoded.UnmarshalBinary(cmd.Payload))
	require.Equal(t, uint16(1), decoded.WordCount)
	require.Equal(t, []byte{9, 8}, cmd.Payload[decoded.EncodedLen():])
}

func TestParseNames(t *testing.T) {
	r, err := ParseRegion("Europe")
	require.NoError(t, err)
	require.Equal(t, RegionEurope, r)
	require.Equal(t, "europe", r.String())
	_, err = ParseRegion("mars")
	require.ErrorIs(t, err, ErrInvalidArgument)

	b, err := ParseMemoryBank("TID")
	require.NoError(t, err)
	require.Equal(t, BankTID, b)
	_, err = ParseMemoryBank("flash")
	require.ErrorIs(t, err, ErrInvalidArgument)
}
