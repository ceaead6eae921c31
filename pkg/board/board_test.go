package board

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type sinkRec struct {
	lock  sync.Mutex
	bytes []byte
}

func (s *sinkRec) Put(b byte) bool {
	s.lock.Lock()
	s.bytes = append(s.bytes, b)
	s.lock.Unlock()
	return true
}

func (s *sinkRec) String() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return string(s.bytes)
}

func TestSerialPump(t *testing.T) {
	sink := &sinkRec{}
	pump := &SerialPump{Reader: strings.NewReader("help\n"), Sink: sink}
	err := pump.Run(context.Background())
	require.Equal(t, io.EOF, err)
	require.Equal(t, "help\n", sink.String())
}

type stallSink struct {
	sinkRec
	stalls int
}

func (s *stallSink) Put(b byte) bool {
	s.lock.Lock()
	if s.stalls > 0 {
		s.stalls--
		s.lock.Unlock()
		return false
	}
	s.lock.Unlock()
	return s.sinkRec.Put(b)
}

func TestSerialPumpPacesWhenFull(t *testing.T) {
	sink := &stallSink{stalls: 3}
	pump := &SerialPump{Reader: strings.NewReader("ab"), Sink: sink}
	err := pump.Run(context.Background())
	require.Equal(t, io.EOF, err)
	require.Equal(t, "ab", sink.String())
}

func TestSerialPumpCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pump := &SerialPump{Reader: strings.NewReader(""), Sink: &sinkRec{}}
	require.Equal(t, context.Canceled, pump.Run(ctx))
}

func TestSystickStartStop(t *testing.T) {
	var ticks uint32
	var lock sync.Mutex
	tick := &Systick{Interval: time.Millisecond, OnTick: func() {
		lock.Lock()
		ticks++
		lock.Unlock()
	}}

	tick.Start()
	tick.Start() // second start is a no-op
	require.True(t, tick.Running())

	deadline := time.Now().Add(time.Second)
	for {
		lock.Lock()
		n := ticks
		lock.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("tick never fired")
		}
		time.Sleep(time.Millisecond)
	}

	tick.Stop()
	tick.Stop() // second stop is a no-op
	require.False(t, tick.Running())

	// restart after stop
	tick.Start()
	require.True(t, tick.Running())
	tick.Stop()
}
