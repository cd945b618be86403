package emulator

import (
	"context"
	"encoding"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/redrcp.go/pkg/link"
	"github.com/robotalks/redrcp.go/pkg/rcp"
)

// conn serves a single port.
type conn struct {
	reader *Reader
	port   link.Port

	writeLock sync.Mutex

	invLock   sync.Mutex
	invCancel context.CancelFunc
	invDone   chan struct{}
}

func (c *conn) send(f *rcp.Frame) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	_, err := f.WriteTo(c.port)
	return err
}

func (c *conn) reply(r *rcp.Reply) error {
	return c.send(r.Frame())
}

// serve runs until ctx is done or the port is disconnected, then detaches c.
func (c *conn) serve(ctx context.Context) error {
	defer c.reader.detach(c)
	var parser rcp.Parser
	buf := make([]byte, 256)
	for ctx.Err() == nil {
		n, err := c.port.Read(buf)
		if n > 0 {
			parser.Feed(buf[:n])
			if err := c.drain(&parser); err != nil {
				return ignoreDisconnect(err)
			}
		}
		if err != nil {
			return ignoreDisconnect(err)
		}
	}
	return ctx.Err()
}

func (c *conn) drain(parser *rcp.Parser) error {
	for {
		f, err := parser.Next()
		if errors.Is(err, rcp.ErrIncomplete) {
			return nil
		}
		if err != nil {
			glog.V(2).Infof("emulator dropped input: %v", err)
			continue
		}
		if f.Type != rcp.TypeCommand {
			glog.V(2).Infof("emulator ignored %s", f)
			continue
		}
		if err := c.handle(f); err != nil {
			return err
		}
	}
}

func failure(f *rcp.Frame, code byte) *rcp.Reply {
	return rcp.FailureReply(f.Code, code)
}

func marshal(code byte, v encoding.BinaryMarshaler) *rcp.Reply {
	r, err := rcp.MarshalReply(code, v)
	if err != nil {
		return rcp.FailureReply(code, ErrCodeInvalidParameter)
	}
	return r
}

// update decodes the payload into v and applies it with fn under the reader lock.
func (c *conn) update(f *rcp.Frame, v encoding.BinaryUnmarshaler, fn func(*State) byte) *rcp.Reply {
	if err := v.UnmarshalBinary(f.Payload); err != nil {
		return failure(f, ErrCodeInvalidLength)
	}
	r := c.reader
	r.lock.Lock()
	defer r.lock.Unlock()
	if code := fn(&r.state); code != 0 {
		return failure(f, code)
	}
	return rcp.OKReply(f.Code)
}

// query encodes a value read from the state under the reader lock.
func (c *conn) query(f *rcp.Frame, fn func(*State) encoding.BinaryMarshaler) *rcp.Reply {
	r := c.reader
	r.lock.Lock()
	v := fn(&r.state)
	r.lock.Unlock()
	return marshal(f.Code, v)
}

func (c *conn) handle(f *rcp.Frame) error {
	glog.V(3).Infof("emulator RX %s", f)
	r := c.reader
	switch f.Code {
	case rcp.CodeSystemReset:
		return c.reset()
	case rcp.CodeStartAutoRead2, rcp.CodeStartAutoReadRSSI:
		var a rcp.AutoRead
		if err := a.UnmarshalBinary(f.Payload); err != nil {
			return c.reply(failure(f, ErrCodeInvalidLength))
		}
		return c.startInventory(f.Code, a)
	case rcp.CodeStartAutoReadTID:
		var a rcp.AutoRead
		if err := a.UnmarshalBinary(append([]byte{byte(rcp.TagTypeC)}, f.Payload...)); err != nil {
			return c.reply(failure(f, ErrCodeInvalidLength))
		}
		return c.startInventory(f.Code, a)
	case rcp.CodeStopAutoRead2, rcp.CodeStopAutoReadTID, rcp.CodeStopAutoReadRSSI:
		c.stopInventory()
		return c.reply(rcp.OKReply(f.Code))
	case rcp.CodeGetReaderInfo:
		return c.reply(c.info(f))
	case rcp.CodeReadTagData:
		return c.reply(c.readTag(f))
	case rcp.CodeWriteTagData:
		return c.reply(c.writeTag(f))
	}

	var reply *rcp.Reply
	switch f.Code {
	case rcp.CodeGetRegion:
		r.lock.Lock()
		reply = &rcp.Reply{Code: f.Code, Payload: []byte{byte(r.state.Region)}}
		r.lock.Unlock()
	case rcp.CodeSetRegion:
		if len(f.Payload) != 1 {
			reply = failure(f, ErrCodeInvalidLength)
		} else if region := rcp.Region(f.Payload[0]); !region.IsValid() {
			reply = failure(f, ErrCodeRegion)
		} else {
			r.lock.Lock()
			r.state.Region = region
			r.lock.Unlock()
			reply = rcp.OKReply(f.Code)
		}
	case rcp.CodeGetTxPower:
		reply = c.query(f, func(s *State) encoding.BinaryMarshaler { return s.TxPower })
	case rcp.CodeSetTxPower:
		dbm, err := rcp.SetTxPowerValue(f.Payload)
		if err != nil {
			reply = failure(f, ErrCodeInvalidLength)
			break
		}
		r.lock.Lock()
		if dbm < r.state.TxPower.Min || dbm > r.state.TxPower.Max {
			reply = failure(f, ErrCodeInvalidParameter)
		} else {
			r.state.TxPower.Current = dbm
			reply = rcp.OKReply(f.Code)
		}
		r.lock.Unlock()
	case rcp.CodeGetChannel:
		reply = c.query(f, func(s *State) encoding.BinaryMarshaler { return s.Channel })
	case rcp.CodeGetHoppingTable:
		reply = c.query(f, func(s *State) encoding.BinaryMarshaler { return s.HoppingTable })
	case rcp.CodeGetAntiCollision:
		reply = c.query(f, func(s *State) encoding.BinaryMarshaler { return s.AntiCollision })
	case rcp.CodeSetAntiCollision:
		var a rcp.AntiCollision
		reply = c.update(f, &a, func(s *State) byte {
			if a.Validate() != nil {
				return ErrCodeInvalidParameter
			}
			s.AntiCollision = a
			return 0
		})
	case rcp.CodeGetModulation:
		reply = c.query(f, func(s *State) encoding.BinaryMarshaler { return s.Modulation })
	case rcp.CodeSetModulation:
		var m rcp.ModulationMode
		reply = c.update(f, &m, func(s *State) byte {
			if _, err := m.MarshalBinary(); err != nil {
				return ErrCodeInvalidParameter
			}
			s.Modulation = m
			return 0
		})
	case rcp.CodeGetQueryParams:
		reply = c.query(f, func(s *State) encoding.BinaryMarshaler { return s.Query })
	case rcp.CodeSetQueryParams:
		var q rcp.QueryParameters
		reply = c.update(f, &q, func(s *State) byte {
			s.Query = q
			return 0
		})
	case rcp.CodeGetSelectFilter:
		if len(f.Payload) != 1 {
			reply = failure(f, ErrCodeInvalidLength)
		} else if index := f.Payload[0]; index >= rcp.MaxSelectFilters {
			reply = failure(f, ErrCodeInvalidParameter)
		} else {
			reply = c.query(f, func(s *State) encoding.BinaryMarshaler { return s.Filters[index] })
		}
	case rcp.CodeSetSelectFilter:
		var sf rcp.SelectFilter
		reply = c.update(f, &sf, func(s *State) byte {
			if sf.Index >= rcp.MaxSelectFilters {
				return ErrCodeInvalidParameter
			}
			s.Filters[sf.Index] = sf
			return 0
		})
	case rcp.CodeGetSelectEnables:
		reply = c.query(f, func(s *State) encoding.BinaryMarshaler { return s.Enables })
	case rcp.CodeSetSelectEnables:
		var e rcp.SelectionEnables
		reply = c.update(f, &e, func(s *State) byte {
			s.Enables = e
			return 0
		})
	case rcp.CodeGetFhLbtParams:
		reply = c.query(f, func(s *State) encoding.BinaryMarshaler { return s.FhLbt })
	case rcp.CodeSetFhLbtParams:
		var p rcp.FhLbtParameters
		reply = c.update(f, &p, func(s *State) byte {
			if p.Mode > rcp.ModeFHLBT {
				return ErrCodeInvalidParameter
			}
			s.FhLbt = p
			return 0
		})
	case rcp.CodeSetCW:
		if len(f.Payload) != 1 {
			reply = failure(f, ErrCodeInvalidLength)
			break
		}
		r.lock.Lock()
		r.state.CW = f.Payload[0] == 0xFF
		r.lock.Unlock()
		reply = rcp.OKReply(f.Code)
	case rcp.CodeGetRSSI:
		r.lock.Lock()
		reply = rcp.RSSIReply(r.state.RSSI)
		r.lock.Unlock()
	default:
		reply = failure(f, ErrCodeNotSupported)
	}
	return c.reply(reply)
}

func (c *conn) info(f *rcp.Frame) *rcp.Reply {
	if len(f.Payload) != 1 {
		return failure(f, ErrCodeInvalidLength)
	}
	r := c.reader
	var text string
	switch rcp.InfoType(f.Payload[0]) {
	case rcp.InfoModel:
		text = r.Model
	case rcp.InfoFirmwareVersion:
		text = r.FirmwareVersion
	case rcp.InfoManufacturer:
		text = r.Manufacturer
	case rcp.InfoDetail:
		return c.query(f, func(s *State) encoding.BinaryMarshaler { return s.detail() })
	default:
		return failure(f, ErrCodeInvalidParameter)
	}
	return &rcp.Reply{Code: f.Code, Payload: []byte(text)}
}

// access locates the tag and the memory range addressed by a.
func (c *conn) access(f *rcp.Frame, a *rcp.TagAccess) (*Tag, int, *rcp.Reply) {
	if err := a.UnmarshalBinary(f.Payload); err != nil {
		return nil, 0, failure(f, ErrCodeInvalidLength)
	}
	if a.Bank > rcp.BankUser {
		return nil, 0, failure(f, ErrCodeInvalidParameter)
	}
	t := c.reader.findTag(a.EPC)
	if t == nil {
		return nil, 0, failure(f, ErrCodeTagNotFound)
	}
	return t, int(a.WordPointer) * 2, nil
}

func (c *conn) readTag(f *rcp.Frame) *rcp.Reply {
	r := c.reader
	r.lock.Lock()
	defer r.lock.Unlock()
	var a rcp.TagAccess
	t, offset, failed := c.access(f, &a)
	if failed != nil {
		return failed
	}
	mem := t.Memory[a.Bank]
	end := offset + int(a.WordCount)*2
	if end > len(mem) {
		return failure(f, ErrCodeMemoryOverrun)
	}
	return &rcp.Reply{Code: f.Code, Payload: append([]byte(nil), mem[offset:end]...)}
}

func (c *conn) writeTag(f *rcp.Frame) *rcp.Reply {
	r := c.reader
	r.lock.Lock()
	defer r.lock.Unlock()
	var a rcp.TagAccess
	t, offset, failed := c.access(f, &a)
	if failed != nil {
		return failed
	}
	data := f.Payload[a.EncodedLen():]
	if len(data) != int(a.WordCount)*2 {
		return failure(f, ErrCodeInvalidLength)
	}
	mem := t.Memory[a.Bank]
	if end := offset + len(data); end > len(mem) {
		mem = append(mem, make([]byte, end-len(mem))...)
	}
	copy(mem[offset:], data)
	if t.Memory == nil {
		t.Memory = make(map[rcp.MemoryBank][]byte)
	}
	t.Memory[a.Bank] = mem
	return rcp.OKReply(f.Code)
}

// reset acknowledges, restores the default state, then reports completion.
func (c *conn) reset() error {
	if err := c.reply(rcp.OKReply(rcp.CodeSystemReset)); err != nil {
		return err
	}
	c.stopInventory()
	r := c.reader
	time.Sleep(r.ResetDelay)
	r.lock.Lock()
	r.state = DefaultState()
	r.lock.Unlock()
	return c.reply(rcp.OKReply(rcp.CodeSystemReset))
}

func (c *conn) startInventory(code byte, a rcp.AutoRead) error {
	c.stopInventory()
	if err := c.reply(rcp.OKReply(code)); err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.invLock.Lock()
	c.invCancel, c.invDone = cancel, done
	c.invLock.Unlock()
	go func() {
		defer close(done)
		c.inventory(ctx, code, a)
	}()
	return nil
}

func (c *conn) stopInventory() {
	c.invLock.Lock()
	cancel, done := c.invCancel, c.invDone
	c.invCancel, c.invDone = nil, nil
	c.invLock.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

func tagReport(code byte, t *Tag) rcp.Notification {
	read := rcp.TagRead{PC: rcp.PCForEPC(t.EPC), EPC: t.EPC}
	switch code {
	case rcp.CodeStartAutoReadTID:
		return rcp.TagReadTID{TagRead: read, TID: t.TID}
	case rcp.CodeStartAutoReadRSSI:
		return rcp.TagReadRSSI{TagRead: read, RSSI: t.RSSI}
	}
	return read
}

// inventory reports tags until a limit of a is reached or ctx is done.
func (c *conn) inventory(ctx context.Context, code byte, a rcp.AutoRead) {
	finishCode := code
	if code == rcp.CodeStartAutoRead2 {
		finishCode = rcp.CodeReadTypeCUII
	}
	var deadline <-chan time.Time
	if a.MaxTime > 0 {
		timer := time.NewTimer(time.Duration(a.MaxTime) * time.Second)
		defer timer.Stop()
		deadline = timer.C
	}
	ticker := time.NewTicker(c.reader.ReportInterval)
	defer ticker.Stop()

	reported := 0
	for cycle := 0; a.RepeatCycle == 0 || cycle < int(a.RepeatCycle); cycle++ {
		tags := c.reader.Tags()
		if len(tags) == 0 {
			tags = []*Tag{nil}
		}
		for _, t := range tags {
			select {
			case <-ctx.Done():
				return
			case <-deadline:
				c.finish(finishCode)
				return
			case <-ticker.C:
			}
			if t == nil {
				continue
			}
			f, err := rcp.EncodeNotification(tagReport(code, t))
			if err != nil {
				glog.Warningf("emulator tag %X: %v", t.EPC, err)
				continue
			}
			if err := c.send(f); err != nil {
				return
			}
			if reported++; a.MaxTags > 0 && reported >= int(a.MaxTags) {
				c.finish(finishCode)
				return
			}
		}
	}
	c.finish(finishCode)
}

func (c *conn) finish(code byte) {
	f, err := rcp.EncodeNotification(rcp.InventoryFinished{Code: code})
	if err == nil {
		c.send(f)
	}
}
