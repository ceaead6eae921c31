package board

import (
	"sync"
	"time"
)

// DefaultTickInterval matches a 10ms system tick.
const DefaultTickInterval = 10 * time.Millisecond

// Systick is the periodic tick service. It runs while the node is
// active and is stopped in low power mode; Start and Stop may be
// called repeatedly in either order.
type Systick struct {
	// Interval defaults to DefaultTickInterval.
	Interval time.Duration
	// OnTick is called on every tick.
	OnTick func()

	lock   sync.Mutex
	stopCh chan struct{}
}

// Start starts the tick loop. A running tick is left alone.
func (s *Systick) Start() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.stopCh != nil {
		return
	}
	interval := s.Interval
	if interval == 0 {
		interval = DefaultTickInterval
	}
	stopCh := make(chan struct{})
	s.stopCh = stopCh
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				if s.OnTick != nil {
					s.OnTick()
				}
			}
		}
	}()
}

// Stop stops the tick loop. A stopped tick is left alone.
func (s *Systick) Stop() {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	s.stopCh = nil
}

// Running reports whether the tick loop is running.
func (s *Systick) Running() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.stopCh != nil
}
