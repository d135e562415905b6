// internal/poller/backoff.go
package poller

import "time"

// backoffBase is the delay after the first failure. Growth is capped
// by Backoff.Max; the base never changes.
const backoffBase = 1 * time.Second

// Backoff is limited exponential backoff for poll retries.
// First delay is 0. Each Failure doubles the next delay up to Max;
// Reset drops it back to 0. Not safe for concurrent use: the poll
// loop owns it.
type Backoff struct {
	Max time.Duration

	delay time.Duration
}

// Failure records a failed cycle and returns the new delay.
func (b *Backoff) Failure() time.Duration {
	if b.delay == 0 {
		b.delay = backoffBase
	} else {
		b.delay *= 2
	}
	if b.delay > b.Max {
		b.delay = b.Max
	}
	return b.delay
}

// Reset records a successful cycle. The next delay is 0.
func (b *Backoff) Reset() { b.delay = 0 }

// Delay returns the current delay without changing it.
func (b *Backoff) Delay() time.Duration { return b.delay }
