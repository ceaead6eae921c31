// Package tmp102 defines the temperature sensor contract.
package tmp102

// Sensor is the board temperature sensor. Readings are fixed point:
// milli-degrees Celsius, so 23400 is 23.4°C.
type Sensor interface {
	// Init probes the sensor and reports whether it is present.
	Init() bool
	// ReadMilliC returns the current temperature.
	ReadMilliC() int32
	// AlertLevel returns the state of the alert pin.
	AlertLevel() bool
}

// Sim is an in-memory Sensor with a settable reading.
type Sim struct {
	Present bool
	MilliC  int32
	Alert   bool
}

// NewSim creates a present Sim at room temperature.
func NewSim() *Sim {
	return &Sim{Present: true, MilliC: 23400}
}

// Init implements Sensor.
func (s *Sim) Init() bool { return s.Present }

// ReadMilliC implements Sensor.
func (s *Sim) ReadMilliC() int32 { return s.MilliC }

// AlertLevel implements Sensor.
func (s *Sim) AlertLevel() bool { return s.Alert }
