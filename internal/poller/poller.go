// internal/poller/poller.go
package poller

import (
	"time"

	"github.com/juju/errors"

	"github.com/tamzrod/bms-telemetry/internal/alarm"
	"github.com/tamzrod/bms-telemetry/internal/clock"
	"github.com/tamzrod/bms-telemetry/internal/telemetry"
)

// Poller is a clock-driven reader with one device, one register
// block, and one publisher.
type Poller struct {
	cfg    Config
	tr     Transport
	pub    Publisher
	alarms *alarm.Supervisor
	clk    clock.Clock
	back   Backoff
}

// New creates a poller with immutable config.
func New(cfg Config, tr Transport, pub Publisher, alarms *alarm.Supervisor, clk clock.Clock) (*Poller, error) {
	if cfg.Period <= 0 {
		return nil, errors.New("poller: period must be > 0")
	}
	if cfg.MaxBackoff <= 0 {
		return nil, errors.New("poller: max backoff must be > 0")
	}
	if tr == nil {
		return nil, errors.New("poller: transport required")
	}
	if pub == nil {
		return nil, errors.New("poller: publisher required")
	}
	if alarms == nil {
		return nil, errors.New("poller: alarm supervisor required")
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Poller{
		cfg:    cfg,
		tr:     tr,
		pub:    pub,
		alarms: alarms,
		clk:    clk,
		back:   Backoff{Max: cfg.MaxBackoff},
	}, nil
}

// PollOnce performs exactly one read and decode.
// All-or-nothing: any failure degrades the whole sample.
func (p *Poller) PollOnce(at time.Time) telemetry.Sample {
	regs, err := p.tr.ReadHoldingRegisters(0, telemetry.BlockLength)
	if err != nil {
		return telemetry.Degraded(at, err)
	}
	s, err := telemetry.Decode(at, regs)
	if err != nil {
		return telemetry.Degraded(at, err)
	}
	return s
}
