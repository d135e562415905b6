// internal/poller/runner.go
package poller

import (
	"context"
	"log"
	"time"

	"github.com/tamzrod/bms-telemetry/internal/alarm"
	"github.com/tamzrod/bms-telemetry/internal/telemetry"
)

// Run drives the poll loop until ctx is cancelled.
// One cycle per period, timed against the cycle start so slow reads do
// not stretch the cadence. Read failures add the current backoff delay
// on top of the period. No overlap. One goroutine.
func (p *Poller) Run(ctx context.Context) error {
	for {
		start := p.clk.Now()
		p.cycle(start)

		wait := p.cfg.Period - p.clk.Now().Sub(start)
		if wait < 0 {
			wait = 0
		}
		wait += p.back.Delay()

		select {
		case <-ctx.Done():
			return nil
		case <-p.clk.After(wait):
		}
	}
}

// cycle reads, publishes, and feeds the alarm supervisor.
// Telemetry goes out for every cycle, degraded ones included; alarm
// evaluation runs on good samples only.
func (p *Poller) cycle(at time.Time) {
	s := p.PollOnce(at)

	if s.Quality == telemetry.QualityGood {
		p.back.Reset()
	} else {
		delay := p.back.Failure()
		log.Printf("poll failed: %s (backing off %s)", s.Err, delay)
	}

	if err := p.pub.Telemetry(s); err != nil {
		log.Printf("telemetry publish failed: %v", err)
	}

	if s.Quality != telemetry.QualityGood {
		return
	}

	ev, ok := p.alarms.Update(s.At, s.Values.TempC)
	if !ok {
		return
	}

	var msg telemetry.AlarmMessage
	switch ev.Transition {
	case alarm.Raised:
		msg = telemetry.AlarmRaised(ev.At, s.DeviceID, ev.Threshold)
	case alarm.Cleared:
		msg = telemetry.AlarmCleared(ev.At, s.DeviceID, ev.Threshold)
	default:
		return
	}

	log.Printf("alarm %s: device=%d temp=%.1f", ev.Transition, s.DeviceID, s.Values.TempC)
	if err := p.pub.Alarm(msg); err != nil {
		log.Printf("alarm publish failed: %v", err)
	}
}
