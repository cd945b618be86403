package emulator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/redrcp.go/pkg/driver"
	"github.com/robotalks/redrcp.go/pkg/rcp"
)

func connect(t *testing.T, r *Reader) *driver.Driver {
	drv := driver.New(driver.WithDialer(r.Dialer()), driver.WithTimeout(500*time.Millisecond))
	t.Cleanup(func() { drv.Close() })
	require.NoError(t, drv.Connect("emulator"))
	return drv
}

func TestInfo(t *testing.T) {
	r := New()
	drv := connect(t, r)
	ctx := context.Background()

	model, err := drv.InfoModel(ctx)
	require.NoError(t, err)
	require.Equal(t, DefaultModel, model)
	fw, err := drv.InfoFirmwareVersion(ctx)
	require.NoError(t, err)
	require.Equal(t, DefaultFirmwareVersion, fw)
	mf, err := drv.InfoManufacturer(ctx)
	require.NoError(t, err)
	require.Equal(t, DefaultManufacturer, mf)

	detail, err := drv.InfoDetail(ctx)
	require.NoError(t, err)
	require.Equal(t, rcp.RegionEurope, detail.Region)
	require.Equal(t, 20.0, detail.TxPower)
	require.Equal(t, uint16(160), detail.BLF)
}

func TestSettings(t *testing.T) {
	r := New()
	drv := connect(t, r)
	ctx := context.Background()

	require.NoError(t, drv.SetRegion(ctx, rcp.RegionUS))
	region, err := drv.Region(ctx)
	require.NoError(t, err)
	require.Equal(t, rcp.RegionUS, region)
	require.ErrorIs(t, drv.SetRegion(ctx, rcp.Region(0x99)), rcp.ErrInvalidArgument)
	_, err = drv.Do(ctx, &rcp.Command{Name: "SetRegion", Code: rcp.CodeSetRegion, Payload: []byte{0x99}})
	var opErr *rcp.OperationError
	require.True(t, errors.As(err, &opErr))
	require.Equal(t, ErrCodeRegion, opErr.Code)
	require.Equal(t, rcp.RegionUS, r.State().Region)

	require.NoError(t, drv.SetTxPower(ctx, 18.5))
	power, err := drv.TxPower(ctx)
	require.NoError(t, err)
	require.Equal(t, rcp.TxPowerLevel{Current: 18.5, Min: 13, Max: 25}, power)
	require.True(t, errors.As(drv.SetTxPower(ctx, 30), &opErr))

	ch, err := drv.CurrentChannel(ctx)
	require.NoError(t, err)
	require.Equal(t, uint8(7), ch.Number)
	table, err := drv.HoppingTable(ctx)
	require.NoError(t, err)
	require.Equal(t, rcp.HoppingTable{1, 4, 7, 10, 13}, table)

	ac := rcp.AntiCollision{Mode: rcp.AntiCollisionFixedQ, StartQ: 3, MaxQ: 6, MinQ: 1}
	require.NoError(t, drv.SetAntiCollision(ctx, ac))
	gotAC, err := drv.AntiCollision(ctx)
	require.NoError(t, err)
	require.Equal(t, ac, gotAC)

	mod := rcp.ModulationMode{BLF: 320, Modulation: rcp.ModulationM2, DivideRatio: rcp.DivideRatio8}
	require.NoError(t, drv.SetModulation(ctx, mod))
	gotMod, err := drv.Modulation(ctx)
	require.NoError(t, err)
	require.Equal(t, mod, gotMod)

	q := rcp.QueryParameters{Sel: rcp.SelSL, Session: rcp.SessionS1, Target: rcp.TargetB, Q: 7}
	require.NoError(t, drv.SetQueryParameters(ctx, q))
	gotQ, err := drv.QueryParameters(ctx)
	require.NoError(t, err)
	require.Equal(t, q, gotQ)

	sf := rcp.SelectFilter{Index: 2, Target: rcp.SelectTargetS1, Action: 4, Bank: rcp.BankEPC, Pointer: 32, Length: 16, Mask: []byte{0xE2, 0x00}}
	require.NoError(t, drv.SetSelectFilter(ctx, sf))
	gotSF, err := drv.SelectFilter(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, sf, gotSF)
	_, err = drv.SelectFilter(ctx, rcp.MaxSelectFilters)
	require.ErrorIs(t, err, rcp.ErrInvalidArgument)

	en := rcp.SelectionEnables{false, false, true, false, false, false, false, true}
	require.NoError(t, drv.SetSelectionEnables(ctx, en))
	gotEn, err := drv.SelectionEnables(ctx)
	require.NoError(t, err)
	require.Equal(t, en, gotEn)

	p := rcp.FhLbtParameters{DwellTime: 200, IdleTime: 50, SenseTime: 5, LBTLevel: -80, Mode: rcp.ModeFHLBT}
	require.NoError(t, drv.SetFhLbtParameters(ctx, p))
	gotP, err := drv.FhLbtParameters(ctx)
	require.NoError(t, err)
	require.Equal(t, p, gotP)

	rssi, err := drv.RSSI(ctx)
	require.NoError(t, err)
	require.Equal(t, -62.5, rssi)

	require.NoError(t, drv.SetCW(ctx, true))
	require.True(t, r.State().CW)

	// reset restores defaults
	require.NoError(t, drv.SoftwareReset(ctx))
	require.Equal(t, DefaultState().Region, r.State().Region)
	require.False(t, r.State().CW)
	region, err = drv.Region(ctx)
	require.NoError(t, err)
	require.Equal(t, rcp.RegionEurope, region)
}

func TestTagMemory(t *testing.T) {
	r := New()
	epc := []byte{0xE2, 0x00, 0x00, 0x01}
	r.AddTags(&Tag{EPC: epc, Memory: map[rcp.MemoryBank][]byte{rcp.BankUser: {1, 2, 3, 4}}})
	drv := connect(t, r)
	ctx := context.Background()

	data, err := drv.ReadTag(ctx, rcp.TagAccess{EPC: epc, Bank: rcp.BankUser, WordPointer: 1, WordCount: 1})
	require.NoError(t, err)
	require.Equal(t, []byte{3, 4}, data)

	require.NoError(t, drv.WriteTag(ctx, rcp.TagAccess{EPC: epc, Bank: rcp.BankUser, WordPointer: 2}, []byte{5, 6, 7, 8}))
	data, err = drv.ReadTag(ctx, rcp.TagAccess{EPC: epc, Bank: rcp.BankUser, WordCount: 4})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, data)

	var opErr *rcp.OperationError
	_, err = drv.ReadTag(ctx, rcp.TagAccess{EPC: epc, Bank: rcp.BankUser, WordPointer: 4, WordCount: 1})
	require.True(t, errors.As(err, &opErr))
	require.Equal(t, ErrCodeMemoryOverrun, opErr.Code)
	_, err = drv.ReadTag(ctx, rcp.TagAccess{EPC: []byte{1, 2}, Bank: rcp.BankUser, WordCount: 1})
	require.True(t, errors.As(err, &opErr))
	require.Equal(t, ErrCodeTagNotFound, opErr.Code)
}

func collect(drv *driver.Driver) <-chan rcp.Notification {
	ch := make(chan rcp.Notification, 64)
	drv.SetNotificationHandler(driver.HandleNotificationFunc(func(n rcp.Notification) {
		ch <- n
	}))
	return ch
}

func next(t *testing.T, ch <-chan rcp.Notification) rcp.Notification {
	select {
	case n := <-ch:
		return n
	case <-time.After(time.Second):
		t.Fatal("notification not received")
	}
	return nil
}

func TestInventory(t *testing.T) {
	r := New()
	r.ReportInterval = time.Millisecond
	tags := []*Tag{
		{EPC: []byte{0xE2, 0x00, 0x00, 0x01}, TID: []byte{0xE2, 0x80, 0x11, 0x05}, RSSI: -55},
		{EPC: []byte{0xE2, 0x00, 0x00, 0x02}, TID: []byte{0xE2, 0x80, 0x11, 0x06}, RSSI: -60.5},
	}
	r.AddTags(tags...)
	drv := connect(t, r)
	ch := collect(drv)
	ctx := context.Background()

	require.NoError(t, drv.StartAutoRead2(ctx, rcp.AutoRead{TagType: rcp.TagTypeC, RepeatCycle: 1}))
	for _, tag := range tags {
		require.Equal(t, rcp.TagRead{PC: rcp.PCForEPC(tag.EPC), EPC: tag.EPC}, next(t, ch))
	}
	require.Equal(t, rcp.InventoryFinished{Code: rcp.CodeReadTypeCUII}, next(t, ch))

	require.NoError(t, drv.StartAutoReadTID(ctx, rcp.AutoRead{MaxTags: 1}))
	n := next(t, ch)
	require.Equal(t, tags[0].TID, n.(rcp.TagReadTID).TID)
	require.Equal(t, rcp.InventoryFinished{Code: rcp.CodeStartAutoReadTID}, next(t, ch))

	require.NoError(t, drv.StartAutoReadRSSI(ctx, rcp.AutoRead{TagType: rcp.TagTypeC}))
	n = next(t, ch)
	require.Equal(t, -55.0, n.(rcp.TagReadRSSI).RSSI)
	require.NoError(t, drv.StopAutoReadRSSI(ctx))
	require.NoError(t, drv.StopAutoRead2(ctx))
	require.NoError(t, drv.StopAutoReadTID(ctx))
}

func TestNotify(t *testing.T) {
	r := New()
	epc := []byte{0x30, 0x00}
	tag := rcp.TagRead{PC: rcp.PCForEPC(epc), EPC: epc}
	require.ErrorIs(t, r.Notify(tag), ErrNotServing)

	drv := connect(t, r)
	ch := collect(drv)
	// served as soon as Connect returns
	require.NoError(t, r.Notify(tag))
	require.Equal(t, tag, next(t, ch))
}

func TestNotifyAfterDisconnect(t *testing.T) {
	r := New()
	drv := connect(t, r)
	require.NoError(t, drv.Disconnect())
	require.Eventually(t, func() bool {
		return errors.Is(r.Notify(rcp.InventoryFinished{Code: rcp.CodeReadTypeCUII}), ErrNotServing)
	}, time.Second, time.Millisecond)
}

func TestNotSupported(t *testing.T) {
	drv := connect(t, New())
	_, err := drv.Do(context.Background(), &rcp.Command{Name: "Unknown", Code: 0x70})
	var opErr *rcp.OperationError
	require.True(t, errors.As(err, &opErr))
	require.Equal(t, ErrCodeNotSupported, opErr.Code)
	require.Equal(t, byte(0x70), opErr.Command)
}
