// Package node assembles the console engine, the parameter storage
// and the peripheral drivers into the sensor-node application.
package node

import (
	"github.com/sensortalks/zeronode.go/pkg/console"
	"github.com/sensortalks/zeronode.go/pkg/drivers/rfm69"
	"github.com/sensortalks/zeronode.go/pkg/drivers/rtcclk"
	"github.com/sensortalks/zeronode.go/pkg/drivers/spiflash"
	"github.com/sensortalks/zeronode.go/pkg/drivers/tmp102"
	"github.com/sensortalks/zeronode.go/pkg/past"
)

// Context carries every collaborator a command handler can touch. One
// value is threaded from the node into the dispatcher and each
// handler; there are no package-level singletons. It is owned by the
// foreground loop and needs no synchronization.
type Context struct {
	Store  *past.Store
	Radio  rfm69.Link
	Sensor tmp102.Sensor
	Flash  spiflash.Device
	Clock  rtcclk.Clock
	Power  *console.PowerController

	// Halt enters the terminal blink state and never returns on real
	// hardware. Tests substitute a recording stub.
	Halt func(blinks int)
}
