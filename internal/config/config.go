// internal/config/config.go
package config

type Config struct {
	Poller    PollerConfig    `yaml:"poller"`
	Simulator SimulatorConfig `yaml:"simulator"`
}

// ---- POLLER ----

type PollerConfig struct {
	Source SourceConfig `yaml:"source"`
	Poll   PollConfig   `yaml:"poll"`
	Alarm  AlarmConfig  `yaml:"alarm"`
	Broker BrokerConfig `yaml:"broker"`
}

// ---- SOURCE ----

type SourceConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- POLL CADENCE ----

type PollConfig struct {
	PeriodMs     int `yaml:"period_ms"`
	MaxBackoffMs int `yaml:"max_backoff_ms"`
}

// ---- ALARM ----

type AlarmConfig struct {
	TempHigh     float64 `yaml:"temp_high"`
	TempLow      float64 `yaml:"temp_low"`
	RaiseAfterMs int     `yaml:"raise_after_ms"`
	ClearAfterMs int     `yaml:"clear_after_ms"`
}

// ---- BROKER ----

type BrokerConfig struct {
	URL          string `yaml:"url"`
	ClientID     string `yaml:"client_id"`
	KeepaliveSec int    `yaml:"keepalive_sec"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`

	TopicTelemetry string `yaml:"topic_telemetry"`
	TopicAlarms    string `yaml:"topic_alarms"`
}

// ---- SIMULATOR ----

// The served device answers any unit id on the wire, so none is
// configured here.
type SimulatorConfig struct {
	Listen string `yaml:"listen"`
	TickMs int    `yaml:"tick_ms"`

	DeviceID  int `yaml:"device_id"`
	SetpointW int `yaml:"setpoint_w"`

	// Registers is the size of the served holding register block.
	// Must cover the telemetry block; the tail stays zero.
	Registers int `yaml:"registers"`

	// Seed fixes the simulation RNG. 0 seeds from the wall clock.
	Seed int64 `yaml:"seed"`
}
