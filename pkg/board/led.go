package board

import (
	"time"

	"github.com/golang/glog"
)

// LED controls the board LED.
type LED interface {
	Set(on bool)
}

// NopLED is an LED wired to nothing.
type NopLED struct{}

// Set implements LED.
func (NopLED) Set(bool) {}

// LogLED traces LED transitions, for headless runs.
type LogLED struct{}

// Set implements LED.
func (LogLED) Set(on bool) {
	glog.V(2).Infof("led %v", on)
}

// BlinkenHalt blinks the LED in groups of count, forever. It is the
// terminal state for fatal conditions and never returns.
func BlinkenHalt(led LED, count int) {
	time.Sleep(time.Millisecond)
	for {
		for i := 0; i < count; i++ {
			led.Set(true)
			time.Sleep(100 * time.Millisecond)
			led.Set(false)
			time.Sleep(100 * time.Millisecond)
		}
		time.Sleep(time.Second)
	}
}
