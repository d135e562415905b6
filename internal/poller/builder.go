// internal/poller/builder.go
package poller

import (
	"time"

	"github.com/tamzrod/bms-telemetry/internal/alarm"
	"github.com/tamzrod/bms-telemetry/internal/clock"
	cfg "github.com/tamzrod/bms-telemetry/internal/config"
	pmodbus "github.com/tamzrod/bms-telemetry/internal/poller/modbus"
)

// Build constructs a Poller from config and wires the Modbus transport
// lifecycle. The transport dials lazily: a device that is down at
// startup produces degraded samples, not a crash. The publisher is
// injected because its lifecycle belongs to the caller.
func Build(pc cfg.PollerConfig, pub Publisher, clk clock.Clock) (*Poller, func() error, error) {
	tr, err := pmodbus.New(pmodbus.Config{
		Endpoint: pc.Source.Endpoint,
		UnitID:   pc.Source.UnitID,
		Timeout:  time.Duration(pc.Source.TimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, nil, err
	}

	alarms, err := alarm.New(alarm.Config{
		Hi:         pc.Alarm.TempHigh,
		Lo:         pc.Alarm.TempLow,
		RaiseAfter: time.Duration(pc.Alarm.RaiseAfterMs) * time.Millisecond,
		ClearAfter: time.Duration(pc.Alarm.ClearAfterMs) * time.Millisecond,
	})
	if err != nil {
		_ = tr.Close()
		return nil, nil, err
	}

	p, err := New(
		Config{
			Period:     time.Duration(pc.Poll.PeriodMs) * time.Millisecond,
			MaxBackoff: time.Duration(pc.Poll.MaxBackoffMs) * time.Millisecond,
		},
		tr, pub, alarms, clk,
	)
	if err != nil {
		_ = tr.Close()
		return nil, nil, err
	}

	return p, tr.Close, nil
}
