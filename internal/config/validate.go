// internal/config/validate.go
package config

import (
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil")
	}

	// ------------------------------------------------------------
	// POLLER: SOURCE + CADENCE
	// ------------------------------------------------------------

	p := cfg.Poller

	if p.Source.Endpoint == "" {
		return fmt.Errorf("poller.source.endpoint is required")
	}
	if p.Source.TimeoutMs <= 0 {
		return fmt.Errorf("poller.source.timeout_ms must be > 0, got %d", p.Source.TimeoutMs)
	}
	if p.Poll.PeriodMs <= 0 {
		return fmt.Errorf("poller.poll.period_ms must be > 0, got %d", p.Poll.PeriodMs)
	}
	if p.Poll.MaxBackoffMs <= 0 {
		return fmt.Errorf("poller.poll.max_backoff_ms must be > 0, got %d", p.Poll.MaxBackoffMs)
	}

	// ------------------------------------------------------------
	// POLLER: ALARM BAND
	// ------------------------------------------------------------

	if p.Alarm.TempLow >= p.Alarm.TempHigh {
		return fmt.Errorf(
			"poller.alarm: temp_low (%g) must be below temp_high (%g)",
			p.Alarm.TempLow, p.Alarm.TempHigh,
		)
	}
	if p.Alarm.RaiseAfterMs < 0 {
		return fmt.Errorf("poller.alarm.raise_after_ms must be >= 0, got %d", p.Alarm.RaiseAfterMs)
	}
	if p.Alarm.ClearAfterMs < 0 {
		return fmt.Errorf("poller.alarm.clear_after_ms must be >= 0, got %d", p.Alarm.ClearAfterMs)
	}

	// ------------------------------------------------------------
	// POLLER: BROKER
	// ------------------------------------------------------------

	if p.Broker.URL == "" {
		return fmt.Errorf("poller.broker.url is required")
	}
	if p.Broker.ClientID == "" {
		return fmt.Errorf("poller.broker.client_id is required")
	}
	if p.Broker.KeepaliveSec <= 0 {
		return fmt.Errorf("poller.broker.keepalive_sec must be > 0, got %d", p.Broker.KeepaliveSec)
	}
	if p.Broker.TopicTelemetry == "" {
		return fmt.Errorf("poller.broker.topic_telemetry is required")
	}
	if p.Broker.TopicAlarms == "" {
		return fmt.Errorf("poller.broker.topic_alarms is required")
	}

	// ------------------------------------------------------------
	// SIMULATOR
	// ------------------------------------------------------------

	s := cfg.Simulator

	if s.Listen == "" {
		return fmt.Errorf("simulator.listen is required")
	}
	if s.TickMs <= 0 {
		return fmt.Errorf("simulator.tick_ms must be > 0, got %d", s.TickMs)
	}
	if s.Registers < 10 {
		return fmt.Errorf("simulator.registers must be >= 10, got %d", s.Registers)
	}
	if s.DeviceID < 0 || s.DeviceID > 65535 {
		return fmt.Errorf("simulator.device_id must fit a register (0..65535), got %d", s.DeviceID)
	}
	if s.SetpointW < 0 || s.SetpointW > 65535 {
		return fmt.Errorf("simulator.setpoint_w must fit a register (0..65535), got %d", s.SetpointW)
	}

	return nil
}
