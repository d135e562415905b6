// internal/telemetry/sample.go
package telemetry

import (
	"encoding/json"
	"time"
)

// Quality marks whether a sample carries real register data or is a
// placeholder emitted after a failed poll cycle.
type Quality uint8

const (
	QualityGood Quality = iota
	QualityBad
)

func (q Quality) String() string {
	if q == QualityGood {
		return "good"
	}
	return "bad"
}

// MarshalJSON encodes the quality as its wire string.
func (q Quality) MarshalJSON() ([]byte, error) {
	return json.Marshal(q.String())
}

// Values are the decoded physical readings of one block.
// All fields derive from unsigned 16-bit raws by a fixed linear scale.
type Values struct {
	PowerW   int     `json:"power_w"`
	VoltageV float64 `json:"voltage_v"`
	CurrentA float64 `json:"current_a"`
	TempC    float64 `json:"temp_c"`
	SocPct   float64 `json:"soc_pct"`
}

// Sample is one poll cycle's telemetry. Built once per cycle and
// immutable after construction.
type Sample struct {
	At       time.Time
	DeviceID int
	Values   Values
	Quality  Quality
	Err      string
}

// MarshalJSON produces the wire document:
//
//	{ "ts": <ISO-8601 UTC>, "device_id": <int|null>,
//	  "values": {...} | {}, "quality": "good"|"bad",
//	  "error": <string, bad only> }
//
// A bad sample never reports a device id or values: the identity is
// unknown for the failed cycle.
func (s Sample) MarshalJSON() ([]byte, error) {
	doc := struct {
		TS       string      `json:"ts"`
		DeviceID interface{} `json:"device_id"`
		Values   interface{} `json:"values"`
		Quality  Quality     `json:"quality"`
		Error    string      `json:"error,omitempty"`
	}{
		TS:      s.At.UTC().Format(time.RFC3339Nano),
		Values:  struct{}{},
		Quality: s.Quality,
		Error:   s.Err,
	}
	if s.Quality == QualityGood {
		doc.DeviceID = s.DeviceID
		doc.Values = s.Values
	}
	return json.Marshal(doc)
}

// Degraded builds the placeholder sample for a failed cycle.
func Degraded(at time.Time, cause error) Sample {
	s := Sample{At: at, Quality: QualityBad}
	if cause != nil {
		s.Err = cause.Error()
	}
	return s
}
