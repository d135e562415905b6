// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/bms-telemetry/internal/telemetry"
)

// Transport abstracts the Modbus operation the poller needs.
// The poller depends on geometry only.
type Transport interface {
	ReadHoldingRegisters(addr, qty uint16) ([]uint16, error) // FC 3
}

// Publisher delivers samples and alarm edges downstream.
// Delivery errors are logged and dropped: publishing must never
// disturb the poll cadence.
type Publisher interface {
	Telemetry(s telemetry.Sample) error
	Alarm(m telemetry.AlarmMessage) error
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	Period     time.Duration
	MaxBackoff time.Duration
}
