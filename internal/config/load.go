// internal/config/load.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default returns the built-in configuration. Both binaries run with
// it unchanged when no config file is given.
func Default() *Config {
	return &Config{
		Poller: PollerConfig{
			Source: SourceConfig{
				Endpoint:  "127.0.0.1:5020",
				UnitID:    1,
				TimeoutMs: 1000,
			},
			Poll: PollConfig{
				PeriodMs:     1000,
				MaxBackoffMs: 30000,
			},
			Alarm: AlarmConfig{
				TempHigh:     60.0,
				TempLow:      58.0,
				RaiseAfterMs: 5000,
				ClearAfterMs: 3000,
			},
			Broker: BrokerConfig{
				URL:            "tcp://127.0.0.1:1883",
				ClientID:       "bms-poller",
				KeepaliveSec:   30,
				TopicTelemetry: "demo/telemetry",
				TopicAlarms:    "demo/alarms",
			},
		},
		Simulator: SimulatorConfig{
			Listen:    "0.0.0.0:5020",
			TickMs:    1000,
			DeviceID:  1001,
			SetpointW: 1200,
			Registers: 16,
		},
	}
}

// Load reads a YAML config file on top of the defaults. Absent keys
// keep their default values. An empty path returns pure defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}
