// Package rtcclk defines the real-time clock contract and a simulated
// clock doubling as the periodic wake source.
package rtcclk

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Clock is the real-time clock.
type Clock interface {
	// TimeOfDay returns the decoded wall time.
	TimeOfDay() (hh, mm, ss int)
	// WakeCounter returns the number of periodic wakeups since reset.
	WakeCounter() uint32
}

// Sim is a Clock backed by the host clock. Its Run loop fires a
// periodic wakeup, incrementing the counter and invoking OnWake; this
// is the wake source that resumes a suspended foreground loop.
type Sim struct {
	// WakePeriod defaults to one second.
	WakePeriod time.Duration
	// OnWake, when set, is called on every wakeup.
	OnWake func()

	counter uint32
	nowLock sync.Mutex
	now     func() time.Time
}

// NewSim creates a Sim with a one second wakeup.
func NewSim() *Sim {
	return &Sim{WakePeriod: time.Second, now: time.Now}
}

// TimeOfDay implements Clock.
func (s *Sim) TimeOfDay() (int, int, int) {
	s.nowLock.Lock()
	now := s.now
	s.nowLock.Unlock()
	t := now()
	return t.Hour(), t.Minute(), t.Second()
}

// WakeCounter implements Clock.
func (s *Sim) WakeCounter() uint32 {
	return atomic.LoadUint32(&s.counter)
}

// Run fires the periodic wakeup until the context is canceled.
func (s *Sim) Run(ctx context.Context) error {
	period := s.WakePeriod
	if period == 0 {
		period = time.Second
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			atomic.AddUint32(&s.counter, 1)
			if s.OnWake != nil {
				s.OnWake()
			}
		}
	}
}

// SetNow overrides the time source. Tests only.
func (s *Sim) SetNow(now func() time.Time) {
	s.nowLock.Lock()
	s.now = now
	s.nowLock.Unlock()
}
