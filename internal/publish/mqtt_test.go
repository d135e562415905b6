// internal/publish/mqtt_test.go
package publish

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_Validation(t *testing.T) {
	base := Config{
		URL:            "tcp://127.0.0.1:1883",
		ClientID:       "bms-poller",
		Keepalive:      30 * time.Second,
		TopicTelemetry: "demo/telemetry",
		TopicAlarms:    "demo/alarms",
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing url", func(c *Config) { c.URL = "" }},
		{"missing client id", func(c *Config) { c.ClientID = "" }},
		{"missing telemetry topic", func(c *Config) { c.TopicTelemetry = "" }},
		{"missing alarm topic", func(c *Config) { c.TopicAlarms = "" }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := base
			c.mutate(&cfg)
			_, err := New(cfg)
			assert.Error(t, err)
		})
	}
}
