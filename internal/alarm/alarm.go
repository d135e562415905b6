// internal/alarm/alarm.go
//
// Debounced hysteresis supervisor for the high-temperature alarm.
// Pure state machine: no IO, no clocks. The poll loop feeds it
// (timestamp, temperature) pairs in sample order and publishes
// whatever transition comes back.
package alarm

import (
	"time"

	"github.com/juju/errors"
)

// Transition is the edge reported by Update.
type Transition uint8

const (
	// Raised means the alarm just went active.
	Raised Transition = iota + 1
	// Cleared means the alarm just went inactive.
	Cleared
)

func (tr Transition) String() string {
	switch tr {
	case Raised:
		return "raised"
	case Cleared:
		return "cleared"
	default:
		return "none"
	}
}

// Event is one alarm edge. Threshold carries the band edge that the
// transition was judged against: Hi for Raised, Lo for Cleared.
type Event struct {
	At         time.Time
	Transition Transition
	Threshold  float64
}

// Config sets the hysteresis band and the debounce windows.
//
// A sample is hot when temp > Hi (strict) and cold when temp < Lo
// (strict). Samples inside [Lo, Hi] belong to neither run: they break
// whichever run was building. Raising requires an unbroken hot run
// spanning at least RaiseAfter; clearing an unbroken cold run spanning
// at least ClearAfter. Spans are measured between sample timestamps,
// not sample counts, so sparse samples still satisfy a window.
type Config struct {
	Hi         float64
	Lo         float64
	RaiseAfter time.Duration
	ClearAfter time.Duration
}

// Supervisor tracks the alarm through successive samples. Not safe for
// concurrent use: the poll loop owns it.
type Supervisor struct {
	cfg    Config
	active bool

	// Run starts. Zero time means no run in progress.
	highSince time.Time
	lowSince  time.Time
}

// New builds a Supervisor. The band must be non-degenerate (Lo < Hi)
// and the windows non-negative. A zero window fires on the first
// qualifying sample.
func New(cfg Config) (*Supervisor, error) {
	if cfg.Lo >= cfg.Hi {
		return nil, errors.NotValidf("alarm band lo=%g hi=%g", cfg.Lo, cfg.Hi)
	}
	if cfg.RaiseAfter < 0 {
		return nil, errors.NotValidf("raise window %v", cfg.RaiseAfter)
	}
	if cfg.ClearAfter < 0 {
		return nil, errors.NotValidf("clear window %v", cfg.ClearAfter)
	}
	return &Supervisor{cfg: cfg}, nil
}

// Active reports whether the alarm is currently raised.
func (s *Supervisor) Active() bool { return s.active }

// Update feeds one sample. At most one transition per call; ok is
// false when the state did not change. Timestamps must be fed in
// non-decreasing order.
func (s *Supervisor) Update(at time.Time, temp float64) (Event, bool) {
	if s.active {
		if temp < s.cfg.Lo {
			if s.lowSince.IsZero() {
				s.lowSince = at
			}
			if at.Sub(s.lowSince) >= s.cfg.ClearAfter {
				s.active = false
				s.lowSince = time.Time{}
				s.highSince = time.Time{}
				return Event{At: at, Transition: Cleared, Threshold: s.cfg.Lo}, true
			}
		} else {
			s.lowSince = time.Time{}
		}
		return Event{}, false
	}

	if temp > s.cfg.Hi {
		if s.highSince.IsZero() {
			s.highSince = at
		}
		if at.Sub(s.highSince) >= s.cfg.RaiseAfter {
			s.active = true
			s.highSince = time.Time{}
			s.lowSince = time.Time{}
			return Event{At: at, Transition: Raised, Threshold: s.cfg.Hi}, true
		}
	} else {
		s.highSince = time.Time{}
	}
	return Event{}, false
}
