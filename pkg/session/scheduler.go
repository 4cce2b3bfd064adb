package session

import (
	"sync"
	"time"

	"github.com/safescrow/dashboard/pkg/tokenx"
)

// Scheduler holds at most one timer that fires a refresh shortly before the
// current access token expires. Arming a new timer always stops the old one.
//
// The timer is only a hint: timers can be late (suspended laptops, stopped
// containers), so callers still re-check expiry when they use a token.
type Scheduler struct {
	lead time.Duration
	now  func() time.Time
	fire func()

	mu       sync.Mutex
	timer    *time.Timer
	gen      uint64
	deadline time.Time
}

// NewScheduler returns a scheduler that calls fire leadTime before expiry.
// fire runs on its own goroutine.
func NewScheduler(leadTime time.Duration, fire func()) *Scheduler {
	return &Scheduler{
		lead: leadTime,
		now:  time.Now,
		fire: fire,
	}
}

// Schedule replaces any armed timer with one for token. It reports whether a
// timer was armed: a token without a readable expiry, or one expiring within
// the lead time, leaves the scheduler disarmed.
func (s *Scheduler) Schedule(token string) bool {
	exp, ok := tokenx.DecodeExpiry(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	if !ok {
		return false
	}

	now := s.now()
	delay := exp.Sub(now) - s.lead
	if delay <= 0 {
		return false
	}

	gen := s.gen
	s.deadline = now.Add(delay)
	s.timer = time.AfterFunc(delay, func() { s.onFire(gen) })
	return true
}

// Cancel disarms the timer. Safe to call when nothing is armed.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Deadline returns when the armed timer will fire.
func (s *Scheduler) Deadline() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadline, s.timer != nil
}

// stopLocked stops the current timer and bumps the generation so a callback
// that already started cannot act on a replaced timer.
func (s *Scheduler) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.deadline = time.Time{}
	s.gen++
}

func (s *Scheduler) onFire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.deadline = time.Time{}
	s.mu.Unlock()

	s.fire()
}
