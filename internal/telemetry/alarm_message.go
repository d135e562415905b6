// internal/telemetry/alarm_message.go
package telemetry

import "time"

// ---- ALARM WIRE CONSTANTS ----

// AlarmTypeTempHigh is the only alarm type this harness raises.
const AlarmTypeTempHigh = "TEMP_HIGH"

const (
	AlarmStateRaised  = "RAISED"
	AlarmStateCleared = "CLEARED"
)

// AlarmMessage is the wire document published on every alarm state
// transition. The crossed threshold rides along: hi on raise, lo on
// clear, never both.
type AlarmMessage struct {
	TS          string   `json:"ts"`
	DeviceID    int      `json:"device_id"`
	Type        string   `json:"type"`
	State       string   `json:"state"`
	ThresholdHi *float64 `json:"threshold_hi,omitempty"`
	ThresholdLo *float64 `json:"threshold_lo,omitempty"`
}

// AlarmRaised builds the RAISED transition message.
func AlarmRaised(at time.Time, deviceID int, thresholdHi float64) AlarmMessage {
	return AlarmMessage{
		TS:          at.UTC().Format(time.RFC3339Nano),
		DeviceID:    deviceID,
		Type:        AlarmTypeTempHigh,
		State:       AlarmStateRaised,
		ThresholdHi: &thresholdHi,
	}
}

// AlarmCleared builds the CLEARED transition message.
func AlarmCleared(at time.Time, deviceID int, thresholdLo float64) AlarmMessage {
	return AlarmMessage{
		TS:          at.UTC().Format(time.RFC3339Nano),
		DeviceID:    deviceID,
		Type:        AlarmTypeTempHigh,
		State:       AlarmStateCleared,
		ThresholdLo: &thresholdLo,
	}
}
