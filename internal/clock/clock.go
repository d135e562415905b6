// internal/clock/clock.go
//
// Time source abstraction. Production code injects Real(); tests
// inject Fake(initial) and advance it explicitly, so cadence and
// debounce behavior can be asserted without wall-clock sleeps.
package clock

import "time"

// Clock is the time surface the poll loop and the simulator tick
// depend on. Implementations must be safe for concurrent use.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d
	// has elapsed. A d <= 0 delivers immediately.
	After(d time.Duration) <-chan time.Time

	// NewTicker returns a Ticker delivering on C every d. Panics if
	// d <= 0, matching time.NewTicker.
	NewTicker(d time.Duration) *Ticker
}

// Ticker delivers periodic ticks on C. C is buffered with capacity 1;
// a slow consumer drops ticks rather than queuing them.
type Ticker struct {
	C <-chan time.Time

	stop func()
}

// Stop turns the ticker off. No sends happen after Stop returns.
// Stop does not close C.
func (t *Ticker) Stop() { t.stop() }
