package console

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTick struct {
	running bool
	starts  int
	stops   int
}

func (f *fakeTick) Start() { f.running = true; f.starts++ }
func (f *fakeTick) Stop()  { f.running = false; f.stops++ }

func TestPowerControllerTransitions(t *testing.T) {
	tick := &fakeTick{running: true}
	ctl := NewPowerController(tick)
	require.Equal(t, ModeActive, ctl.Mode())

	ctl.EnterLowPower()
	require.Equal(t, ModeLowPower, ctl.Mode())
	require.False(t, tick.running)

	ctl.EnterActive()
	require.Equal(t, ModeActive, ctl.Mode())
	require.True(t, tick.running)
	require.Equal(t, 1, tick.starts)
	require.Equal(t, 1, tick.stops)
}

func TestPowerControllerNilTick(t *testing.T) {
	ctl := NewPowerController(nil)
	ctl.EnterLowPower()
	require.Equal(t, ModeLowPower, ctl.Mode())
	ctl.EnterActive()
	require.Equal(t, ModeActive, ctl.Mode())
}

func TestModeString(t *testing.T) {
	require.Equal(t, "normal", ModeActive.String())
	require.Equal(t, "low", ModeLowPower.String())
}
