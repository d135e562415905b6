// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	b := &cfg.Poller.Broker

	// ------------------------------------------------------------
	// BROKER URL SCHEME
	// ------------------------------------------------------------

	// Accept a bare host:port and default it to plain TCP. The MQTT
	// client needs an explicit scheme.
	b.URL = strings.TrimSpace(b.URL)
	if !strings.Contains(b.URL, "://") {
		b.URL = "tcp://" + b.URL
	}

	// ------------------------------------------------------------
	// TOPIC HYGIENE
	// ------------------------------------------------------------

	// Trailing slashes create an extra empty topic level.
	b.TopicTelemetry = strings.TrimRight(strings.TrimSpace(b.TopicTelemetry), "/")
	b.TopicAlarms = strings.TrimRight(strings.TrimSpace(b.TopicAlarms), "/")

	cfg.Poller.Source.Endpoint = strings.TrimSpace(cfg.Poller.Source.Endpoint)
	cfg.Simulator.Listen = strings.TrimSpace(cfg.Simulator.Listen)
}
