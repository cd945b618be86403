package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/redrcp.go/pkg/link"
	"github.com/robotalks/redrcp.go/pkg/metrics"
	"github.com/robotalks/redrcp.go/pkg/rcp"
)

// driverTestEnv connects a Driver to an in-memory peer playing the reader.
type driverTestEnv struct {
	t     *testing.T
	drv   *Driver
	peers chan *link.NetPort
	peer  *link.NetPort
	cmds  chan *rcp.Frame
}

func newDriverTestEnv(t *testing.T, opts ...Option) *driverTestEnv {
	env := &driverTestEnv{t: t, peers: make(chan *link.NetPort, 1)}
	dial := func(address string) (link.Port, error) {
		if address == "bad" {
			return nil, errors.New("no such port")
		}
		a, b := link.Pipe()
		env.peers <- b
		return a, nil
	}
	opts = append([]Option{WithDialer(dial), WithTimeout(200 * time.Millisecond)}, opts...)
	env.drv = New(opts...)
	t.Cleanup(func() {
		env.drv.Close()
		if env.peer != nil {
			env.peer.Close()
		}
	})
	return env
}

func (e *driverTestEnv) connect() *driverTestEnv {
	require.NoError(e.t, e.drv.Connect("pipe"))
	require.True(e.t, e.drv.IsConnected())
	e.peer = <-e.peers
	e.cmds = make(chan *rcp.Frame, 16)
	go e.serve(e.peer, e.cmds)
	return e
}

func (e *driverTestEnv) serve(peer *link.NetPort, cmds chan<- *rcp.Frame) {
	defer close(cmds)
	var parser rcp.Parser
	buf := make([]byte, 256)
	for {
		n, err := peer.Read(buf)
		if err != nil {
			return
		}
		parser.Feed(buf[:n])
		for {
			f, err := parser.Next()
			if err != nil {
				break
			}
			cmds <- f
		}
	}
}

// expect waits for the next command sent by the driver.
func (e *driverTestEnv) expect(code byte) *rcp.Frame {
	select {
	case f, ok := <-e.cmds:
		require.True(e.t, ok, "peer closed")
		require.Equal(e.t, rcp.TypeCommand, f.Type)
		require.Equal(e.t, code, f.Code, "command %s", f)
		return f
	case <-time.After(time.Second):
		e.t.Fatalf("command %#02x not received", code)
	}
	return nil
}

func (e *driverTestEnv) expectNone(d time.Duration) {
	select {
	case f := <-e.cmds:
		e.t.Fatalf("unexpected command %s", f)
	case <-time.After(d):
	}
}

func (e *driverTestEnv) send(data []byte) {
	_, err := e.peer.Write(data)
	require.NoError(e.t, err)
}

func (e *driverTestEnv) reply(code byte, payload ...byte) {
	e.send((&rcp.Reply{Code: code, Payload: payload}).Frame().Bytes())
}

func async(fn func() error) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- fn() }()
	return ch
}

func wait(t *testing.T, ch <-chan error) error {
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("operation not returned")
	}
	return nil
}

func TestInfoModel(t *testing.T) {
	env := newDriverTestEnv(t).connect()
	var model string
	done := async(func() (err error) {
		model, err = env.drv.InfoModel(context.Background())
		return
	})
	f := env.expect(rcp.CodeGetReaderInfo)
	require.Equal(t, []byte{byte(rcp.InfoModel)}, f.Payload)
	time.Sleep(10 * time.Millisecond)
	env.reply(rcp.CodeGetReaderInfo, []byte("XYZ")...)
	require.NoError(t, wait(t, done))
	require.Equal(t, "XYZ", model)
}

func TestSoftwareReset(t *testing.T) {
	env := newDriverTestEnv(t).connect()
	done := async(func() error {
		return env.drv.SoftwareReset(context.Background())
	})
	env.expect(rcp.CodeSystemReset)
	env.reply(rcp.CodeSystemReset, 0)
	select {
	case err := <-done:
		t.Fatalf("returned after the first reply: %v", err)
	case <-time.After(30 * time.Millisecond):
	}
	env.reply(rcp.CodeSystemReset, 0)
	require.NoError(t, wait(t, done))
}

func TestSoftwareResetRejected(t *testing.T) {
	env := newDriverTestEnv(t, WithTimeout(time.Second)).connect()
	start := time.Now()
	done := async(func() error {
		return env.drv.SoftwareReset(context.Background())
	})
	env.expect(rcp.CodeSystemReset)
	env.send(rcp.FailureReply(rcp.CodeSystemReset, 0x05).Frame().Bytes())
	err := wait(t, done)
	var opErr *rcp.OperationError
	require.True(t, errors.As(err, &opErr))
	require.Equal(t, byte(0x05), opErr.Code)
	require.Equal(t, rcp.CodeSystemReset, opErr.Command)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestNotConnected(t *testing.T) {
	env := newDriverTestEnv(t)
	require.False(t, env.drv.IsConnected())
	sent := testutil.ToFloat64(metrics.FramesSent)
	_, err := env.drv.Region(context.Background())
	require.ErrorIs(t, err, ErrNotConnected)
	require.ErrorIs(t, env.drv.SetCW(context.Background(), true), ErrNotConnected)
	require.Equal(t, sent, testutil.ToFloat64(metrics.FramesSent))

	require.Error(t, env.drv.Connect("bad"))
	require.False(t, env.drv.IsConnected())
	require.NoError(t, env.drv.Disconnect())
}

func TestTruncatedFrame(t *testing.T) {
	env := newDriverTestEnv(t).connect()
	var region rcp.Region
	done := async(func() (err error) {
		region, err = env.drv.Region(context.Background())
		return
	})
	env.expect(rcp.CodeGetRegion)
	data := (&rcp.Reply{Code: rcp.CodeGetRegion, Payload: []byte{byte(rcp.RegionEurope)}}).Frame().Bytes()
	env.send(data[:3])
	time.Sleep(20 * time.Millisecond)
	env.send(data[3:])
	require.NoError(t, wait(t, done))
	require.Equal(t, rcp.RegionEurope, region)
}

func TestGarbageBeforeFrame(t *testing.T) {
	env := newDriverTestEnv(t).connect()
	var power rcp.TxPowerLevel
	done := async(func() (err error) {
		power, err = env.drv.TxPower(context.Background())
		return
	})
	env.expect(rcp.CodeGetTxPower)
	reply, err := rcp.MarshalReply(rcp.CodeGetTxPower, rcp.TxPowerLevel{Current: 20, Min: 13, Max: 25})
	require.NoError(t, err)
	env.send(append([]byte{0x00, 0x7E, 0x13}, reply.Frame().Bytes()...))
	require.NoError(t, wait(t, done))
	require.Equal(t, rcp.TxPowerLevel{Current: 20, Min: 13, Max: 25}, power)
}

func TestNotificationDoesNotSatisfyReply(t *testing.T) {
	env := newDriverTestEnv(t).connect()
	tags := make(chan rcp.Notification, 4)
	env.drv.SetNotificationHandler(HandleNotificationFunc(func(n rcp.Notification) {
		tags <- n
	}))

	done := async(func() error {
		return env.drv.StartAutoRead2(context.Background(), rcp.AutoRead{TagType: rcp.TagTypeC})
	})
	env.expect(rcp.CodeStartAutoRead2)
	epc := []byte{0xE2, 0x00, 0x12, 0x34}
	f, err := rcp.EncodeNotification(rcp.TagRead{PC: rcp.PCForEPC(epc), EPC: epc})
	require.NoError(t, err)
	env.send(f.Bytes())
	select {
	case err := <-done:
		t.Fatalf("notification completed the transaction: %v", err)
	case <-time.After(30 * time.Millisecond):
	}
	env.reply(rcp.CodeStartAutoRead2, 0)
	require.NoError(t, wait(t, done))

	select {
	case n := <-tags:
		require.Equal(t, rcp.TagRead{PC: rcp.PCForEPC(epc), EPC: epc}, n)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}

	f, err = rcp.EncodeNotification(rcp.InventoryFinished{Code: rcp.CodeReadTypeCUII})
	require.NoError(t, err)
	env.send(f.Bytes())
	select {
	case n := <-tags:
		require.Equal(t, rcp.InventoryFinished{Code: rcp.CodeReadTypeCUII}, n)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}
}

func TestTimeout(t *testing.T) {
	env := newDriverTestEnv(t, WithTimeout(50*time.Millisecond)).connect()
	start := time.Now()
	done := async(func() error {
		_, err := env.drv.RSSI(context.Background())
		return err
	})
	env.expect(rcp.CodeGetRSSI)
	err := wait(t, done)
	require.ErrorIs(t, err, ErrTimeout)
	elapsed := time.Since(start)
	require.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	require.Less(t, elapsed, time.Second)
}

func TestStaleReplyDiscarded(t *testing.T) {
	env := newDriverTestEnv(t, WithTimeout(50*time.Millisecond)).connect()
	done := async(func() error {
		_, err := env.drv.Region(context.Background())
		return err
	})
	env.expect(rcp.CodeGetRegion)
	require.ErrorIs(t, wait(t, done), ErrTimeout)

	// the late reply stays queued until the next transaction
	env.reply(rcp.CodeGetRegion, byte(rcp.RegionEurope))
	require.Eventually(t, func() bool { return env.drv.correlator.Len() == 1 }, time.Second, time.Millisecond)

	var region rcp.Region
	done = async(func() (err error) {
		region, err = env.drv.Region(context.Background())
		return
	})
	env.expect(rcp.CodeGetRegion)
	env.reply(rcp.CodeGetRegion, byte(rcp.RegionUS))
	require.NoError(t, wait(t, done))
	require.Equal(t, rcp.RegionUS, region)
}

func TestOperationFailure(t *testing.T) {
	env := newDriverTestEnv(t).connect()
	done := async(func() error {
		return env.drv.SetRegion(context.Background(), rcp.RegionKorea)
	})
	f := env.expect(rcp.CodeSetRegion)
	require.Equal(t, []byte{byte(rcp.RegionKorea)}, f.Payload)
	env.send(rcp.FailureReply(rcp.CodeSetRegion, 0x0E).Frame().Bytes())
	err := wait(t, done)
	var opErr *rcp.OperationError
	require.True(t, errors.As(err, &opErr))
	require.Equal(t, byte(0x0E), opErr.Code)
	require.Equal(t, rcp.CodeSetRegion, opErr.Command)
}

func TestMalformedReply(t *testing.T) {
	env := newDriverTestEnv(t).connect()
	done := async(func() error {
		_, err := env.drv.CurrentChannel(context.Background())
		return err
	})
	env.expect(rcp.CodeGetChannel)
	env.reply(rcp.CodeGetChannel, 1, 2, 3)
	require.ErrorIs(t, wait(t, done), rcp.ErrMalformed)
}

func TestMismatchedReplyDiscarded(t *testing.T) {
	env := newDriverTestEnv(t).connect()
	stale := testutil.ToFloat64(metrics.StaleReplies)
	var region rcp.Region
	done := async(func() (err error) {
		region, err = env.drv.Region(context.Background())
		return
	})
	env.expect(rcp.CodeGetRegion)
	env.reply(rcp.CodeGetChannel, 1, 2)
	env.send(rcp.FailureReply(rcp.CodeSetRegion, 0x0E).Frame().Bytes())
	select {
	case err := <-done:
		t.Fatalf("returned on a reply to another command: %v", err)
	case <-time.After(30 * time.Millisecond):
	}
	env.reply(rcp.CodeGetRegion, byte(rcp.RegionKorea))
	require.NoError(t, wait(t, done))
	require.Equal(t, rcp.RegionKorea, region)
	require.Equal(t, stale+2, testutil.ToFloat64(metrics.StaleReplies))
}

func TestMismatchedReplyTimeout(t *testing.T) {
	env := newDriverTestEnv(t, WithTimeout(80*time.Millisecond)).connect()
	start := time.Now()
	done := async(func() error {
		_, err := env.drv.CurrentChannel(context.Background())
		return err
	})
	env.expect(rcp.CodeGetChannel)
	// stale replies keep arriving past the deadline and must not extend it
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				env.peer.Write((&rcp.Reply{Code: rcp.CodeGetRegion, Payload: []byte{byte(rcp.RegionUS)}}).Frame().Bytes())
			}
		}
	}()
	require.ErrorIs(t, wait(t, done), ErrTimeout)
	elapsed := time.Since(start)
	require.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
	require.Less(t, elapsed, 400*time.Millisecond)
}

func TestInvalidArgument(t *testing.T) {
	env := newDriverTestEnv(t).connect()
	require.ErrorIs(t, env.drv.SetTxPower(context.Background(), 1000), rcp.ErrInvalidArgument)
	require.ErrorIs(t, env.drv.WriteTag(context.Background(), rcp.TagAccess{EPC: []byte{1, 2}}, []byte{1}), rcp.ErrInvalidArgument)
	env.expectNone(20 * time.Millisecond)
}

func TestSerializedTransactions(t *testing.T) {
	env := newDriverTestEnv(t).connect()
	first := async(func() error {
		_, err := env.drv.Region(context.Background())
		return err
	})
	env.expect(rcp.CodeGetRegion)
	second := async(func() error {
		return env.drv.SetCW(context.Background(), false)
	})
	env.expectNone(30 * time.Millisecond)
	env.reply(rcp.CodeGetRegion, byte(rcp.RegionJapan))
	require.NoError(t, wait(t, first))

	f := env.expect(rcp.CodeSetCW)
	require.Equal(t, []byte{0x00}, f.Payload)
	env.reply(rcp.CodeSetCW, 0)
	require.NoError(t, wait(t, second))
}

func TestReadWriteTag(t *testing.T) {
	env := newDriverTestEnv(t).connect()
	access := rcp.TagAccess{EPC: []byte{0xE2, 0x00}, Bank: rcp.BankUser, WordPointer: 2, WordCount: 2}
	var data []byte
	done := async(func() (err error) {
		data, err = env.drv.ReadTag(context.Background(), access)
		return
	})
	f := env.expect(rcp.CodeReadTagData)
	var got rcp.TagAccess
	require.NoError(t, got.UnmarshalBinary(f.Payload))
	require.Equal(t, access, got)
	env.reply(rcp.CodeReadTagData, 1, 2, 3, 4)
	require.NoError(t, wait(t, done))
	require.Equal(t, []byte{1, 2, 3, 4}, data)

	done = async(func() error {
		return env.drv.WriteTag(context.Background(), access, []byte{9, 8})
	})
	f = env.expect(rcp.CodeWriteTagData)
	require.Equal(t, []byte{9, 8}, f.Payload[access.EncodedLen():])
	require.NoError(t, got.UnmarshalBinary(f.Payload))
	require.Equal(t, uint16(1), got.WordCount)
	env.reply(rcp.CodeWriteTagData, 0)
	require.NoError(t, wait(t, done))
}

func TestReconnect(t *testing.T) {
	env := newDriverTestEnv(t).connect()
	require.NoError(t, env.drv.Disconnect())
	require.False(t, env.drv.IsConnected())
	require.NoError(t, env.drv.Disconnect())
	_, err := env.drv.InfoManufacturer(context.Background())
	require.ErrorIs(t, err, ErrNotConnected)

	env.peer.Close()
	env.connect()
	var name string
	done := async(func() (err error) {
		name, err = env.drv.InfoManufacturer(context.Background())
		return
	})
	env.expect(rcp.CodeGetReaderInfo)
	env.reply(rcp.CodeGetReaderInfo, []byte("ACME")...)
	require.NoError(t, wait(t, done))
	require.Equal(t, "ACME", name)
}

func TestTransportDisconnect(t *testing.T) {
	env := newDriverTestEnv(t).connect()
	env.peer.Close()
	require.Eventually(t, func() bool { return !env.drv.IsConnected() }, time.Second, time.Millisecond)
	_, err := env.drv.HoppingTable(context.Background())
	require.ErrorIs(t, err, ErrNotConnected)

	// the reader loop survives and serves the next connection
	env.connect()
	var table rcp.HoppingTable
	done := async(func() (err error) {
		table, err = env.drv.HoppingTable(context.Background())
		return
	})
	env.expect(rcp.CodeGetHoppingTable)
	env.reply(rcp.CodeGetHoppingTable, 3, 1, 5, 9)
	require.NoError(t, wait(t, done))
	require.Equal(t, rcp.HoppingTable{1, 5, 9}, table)
}

func TestClose(t *testing.T) {
	env := newDriverTestEnv(t).connect()
	require.NoError(t, env.drv.Close())
	require.False(t, env.drv.IsConnected())
	require.NoError(t, env.drv.Close())
	require.ErrorIs(t, env.drv.Connect("pipe"), ErrClosed)
}
