package sh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/redrcp.go/pkg/driver"
	"github.com/robotalks/redrcp.go/pkg/emulator"
	"github.com/robotalks/redrcp.go/pkg/rcp"
)

func connectEmulator(t *testing.T) (*driver.Driver, *emulator.Reader) {
	reader := emulator.New()
	reader.AddTags(SampleTags()...)
	d := driver.New(driver.WithDialer(reader.Dialer()), driver.WithTimeout(500*time.Millisecond))
	t.Cleanup(func() { d.Close() })
	require.NoError(t, d.Connect(emulatorAddress))
	return d, reader
}

func TestInfoCmd(t *testing.T) {
	d, _ := connectEmulator(t)
	ctx := context.Background()

	v, err := infoCmd(ctx, d, nil)
	require.NoError(t, err)
	require.Equal(t, &Info{
		Model:           emulator.DefaultModel,
		FirmwareVersion: emulator.DefaultFirmwareVersion,
		Manufacturer:    emulator.DefaultManufacturer,
	}, v)

	v, err = infoCmd(ctx, d, []string{"model"})
	require.NoError(t, err)
	require.Equal(t, emulator.DefaultModel, v)
	v, err = infoCmd(ctx, d, []string{"detail"})
	require.NoError(t, err)
	require.Equal(t, rcp.RegionEurope, v.(rcp.ReaderDetail).Region)
	_, err = infoCmd(ctx, d, []string{"serial"})
	require.Error(t, err)
}

func TestSettingCmds(t *testing.T) {
	d, reader := connectEmulator(t)
	ctx := context.Background()

	_, err := regionCmd(ctx, d, []string{"korea"})
	require.NoError(t, err)
	v, err := regionCmd(ctx, d, nil)
	require.NoError(t, err)
	require.Equal(t, rcp.RegionKorea, v)

	_, err = powerCmd(ctx, d, []string{"18.5"})
	require.NoError(t, err)
	require.Equal(t, 18.5, reader.State().TxPower.Current)

	_, err = queryCmd(ctx, d, []string{"q", "7", "session", "1"})
	require.NoError(t, err)
	q := reader.State().Query
	require.Equal(t, uint8(7), q.Q)
	require.Equal(t, rcp.SessionS1, q.Session)
	require.True(t, q.PilotTone)

	_, err = enablesCmd(ctx, d, []string{"0x05"})
	require.NoError(t, err)
	v, err = enablesCmd(ctx, d, nil)
	require.NoError(t, err)
	require.Equal(t, rcp.SelectionEnables{true, false, true, false, false, false, false, false}, v)

	_, err = cwCmd(ctx, d, []string{"on"})
	require.NoError(t, err)
	require.True(t, reader.State().CW)
}

func TestTagMemoryCmds(t *testing.T) {
	d, _ := connectEmulator(t)
	ctx := context.Background()
	epc := "e20068110000000000000001"

	_, err := writeCmd(ctx, d, []string{epc, "user", "1", "cafebabe"})
	require.NoError(t, err)
	v, err := readCmd(ctx, d, []string{epc, "user", "0", "3"})
	require.NoError(t, err)
	require.Equal(t, "0000cafebabe", v)

	_, err = readCmd(ctx, d, []string{"e200", "user", "0", "1"})
	var opErr *rcp.OperationError
	require.ErrorAs(t, err, &opErr)
	require.Equal(t, emulator.ErrCodeTagNotFound, opErr.Code)
}

func TestInventoryCmd(t *testing.T) {
	d, _ := connectEmulator(t)
	ctx := context.Background()
	s := &Shell{}
	lines := make(chan string, 16)
	d.SetNotificationHandler(driver.HandleNotificationFunc(func(n rcp.Notification) {
		lines <- s.FormatNotification(n)
	}))

	_, err := inventoryCmd(ctx, d, []string{"start", "read2", "2"})
	require.NoError(t, err)
	var got []string
	timeout := time.After(time.Second)
	for len(got) < 3 {
		select {
		case line := <-lines:
			got = append(got, line)
		case <-timeout:
			t.Fatalf("notifications not received: %v", got)
		}
	}
	require.Equal(t, "PC=3000 EPC=E20068110000000000000001", got[0])
	require.Contains(t, got[2], "finished")

	_, err = inventoryCmd(ctx, d, []string{"stop"})
	require.NoError(t, err)
	_, err = inventoryCmd(ctx, d, []string{"start", "fast"})
	require.Error(t, err)
}

func TestFormat(t *testing.T) {
	s := &Shell{}
	out, err := s.Format(nil)
	require.NoError(t, err)
	require.Equal(t, "OK", out)
	out, err = s.Format(-62.5)
	require.NoError(t, err)
	require.Equal(t, "-62.5", out)
	out, err = s.Format(rcp.RegionEurope)
	require.NoError(t, err)
	require.Equal(t, "europe", out)
	out, err = s.Format(rcp.Channel{Number: 7})
	require.NoError(t, err)
	require.Equal(t, "Channel {Number:7 Offset:0}", out)

	s.OutputJSON = true
	out, err = s.Format(&Info{Model: "RED4S"})
	require.NoError(t, err)
	require.JSONEq(t, `{"model":"RED4S","firmware":"","manufacturer":""}`, out)
	require.JSONEq(t, `{"kind":"InventoryFinished","data":{"Code":34}}`,
		s.FormatNotification(rcp.InventoryFinished{Code: 0x22}))
}
