// Package spiflash defines the external flash probe contract.
package spiflash

// Device is the external SPI flash chip.
type Device interface {
	// Probe reports whether a known chip answered.
	Probe() bool
	// Description names the probed chip.
	Description() string
}

// Sim is an in-memory Device.
type Sim struct {
	Present bool
	Desc    string
}

// NewSim creates a present Sim.
func NewSim() *Sim {
	return &Sim{Present: true, Desc: "XT25F08B 1 MB"}
}

// Probe implements Device.
func (s *Sim) Probe() bool { return s.Present }

// Description implements Device.
func (s *Sim) Description() string { return s.Desc }
