package rcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParserTruncatedFrame(t *testing.T) {
	raw := (&Frame{Type: TypeResponse, Code: CodeGetReaderInfo, Payload: []byte("RED4S")}).Bytes()
	var p Parser
	for i := 0; i < len(raw)-1; i++ {
		p.Feed(raw[i : i+1])
		f, err := p.Next()
		require.ErrorIs(t, err, ErrIncomplete)
		require.Nil(t, f)
		require.Equal(t, i+1, p.Buffered())
	}
	p.Feed(raw[len(raw)-1:])
	f, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, "RED4S", string(f.Payload))
	require.Zero(t, p.Buffered())
}

func TestParserResync(t *testing.T) {
	reply := (&Frame{Type: TypeResponse, Code: CodeGetRegion, Payload: []byte{0x31}}).Bytes()
	event := (&Frame{Type: TypeNotification, Code: CodeReadTypeCUII, Payload: []byte{0x08, 0x00, 0xE2, 0x00}}).Bytes()
	corrupted := append([]byte(nil), reply...)
	corrupted[5] = 0x32

	var p Parser
	p.Feed([]byte{0x00, 0x11})
	p.Feed(corrupted)
	p.Feed(reply)
	p.Feed(event)

	var frames []*Frame
	var malformed int
	for {
		f, err := p.Next()
		if err == ErrIncomplete {
			break
		}
		if err != nil {
			require.ErrorIs(t, err, ErrMalformed)
			malformed++
			continue
		}
		frames = append(frames, f)
	}
	require.Len(t, frames, 2)
	require.Equal(t, TypeResponse, frames[0].Type)
	require.Equal(t, []byte{0x31}, frames[0].Payload)
	require.Equal(t, TypeNotification, frames[1].Type)
	require.NotZero(t, malformed)
	require.Zero(t, p.Buffered())
}

func TestParserReset(t *testing.T) {
	var p Parser
	p.Feed([]byte{0xBB, 0x01})
	require.Equal(t, 2, p.Buffered())
	p.Reset()
	require.Zero(t, p.Buffered())
	_, err := p.Next()
	require.ErrorIs(t, err, ErrIncomplete)
}
