package console

// Mode is the node power mode.
type Mode int

const (
	// ModeActive keeps the periodic tick service running.
	ModeActive Mode = iota
	// ModeLowPower stops the tick service; the foreground loop then
	// suspends between input polls.
	ModeLowPower
)

// String returns the operator-facing mode name.
func (m Mode) String() string {
	if m == ModeLowPower {
		return "low"
	}
	return "normal"
}

// TickService is the periodic tick owned outside the console core.
// It is stopped in low power mode and restarted on return to active.
type TickService interface {
	Start()
	Stop()
}

// PowerController toggles the two-state power mode. Transitions are
// operator-driven only; the controller is owned by the foreground
// loop and needs no synchronization.
type PowerController struct {
	tick TickService
	mode Mode
}

// NewPowerController creates a PowerController in active mode.
func NewPowerController(tick TickService) *PowerController {
	return &PowerController{tick: tick}
}

// Mode returns the current power mode.
func (c *PowerController) Mode() Mode {
	return c.mode
}

// EnterLowPower stops the tick service and enters low power mode.
func (c *PowerController) EnterLowPower() {
	if c.tick != nil {
		c.tick.Stop()
	}
	c.mode = ModeLowPower
}

// EnterActive restarts the tick service and returns to active mode.
func (c *PowerController) EnterActive() {
	if c.tick != nil {
		c.tick.Start()
	}
	c.mode = ModeActive
}
