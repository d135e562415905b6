// internal/telemetry/decode.go
package telemetry

import (
	"time"

	"github.com/juju/errors"
)

// ErrShortBlock reports a register block too short to decode.
var ErrShortBlock = errors.New("telemetry: short register block")

// Decode converts one raw register block into a good Sample.
// Pure transform: no IO, no validation beyond length. Out-of-range
// raws pass through unchanged; the transport is responsible for
// rejecting malformed responses.
func Decode(at time.Time, regs []uint16) (Sample, error) {
	if len(regs) < BlockLength {
		return Sample{}, errors.Annotatef(ErrShortBlock, "have %d registers, need %d", len(regs), BlockLength)
	}
	return Sample{
		At:       at,
		DeviceID: int(regs[RegDeviceID]),
		Values: Values{
			PowerW:   int(regs[RegPowerW]),
			VoltageV: float64(regs[RegVoltageX10]) / 10,
			CurrentA: float64(regs[RegCurrentX100]) / 100,
			TempC:    float64(regs[RegTempX10]) / 10,
			SocPct:   float64(regs[RegSocX10]) / 10,
		},
		Quality: QualityGood,
	}, nil
}
