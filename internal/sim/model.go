// internal/sim/model.go
package sim

import (
	"math/rand"
	"time"

	"github.com/juju/errors"

	"github.com/tamzrod/bms-telemetry/internal/telemetry"
)

// Tuning for the synthetic inverter. Stored values use the register
// scaling from the telemetry block layout.
const (
	powerCeilW          = 5000
	powerGapClampW      = 50
	powerSlewThresholdW = 10
	powerSlewRate       = 0.3
	powerJitterW        = 5

	voltageNominalX10 = 2300
	voltageJitterX10  = 15

	currentCeilX100 = 2000

	tempPhaseSeconds = 10
	tempHighTargetC  = 65.0
	tempLowTargetC   = 40.0
	tempKeepRatio    = 0.8
	tempBlendRatio   = 0.2

	socMaxStepPct = 0.2
)

// DefaultSeed is the initial register image. Power starts on its
// setpoint, temperature mid-band, battery at 70%.
func DefaultSeed(deviceID, setpointW uint16) []uint16 {
	return []uint16{
		deviceID,
		telemetry.StatusRunning,
		setpointW, // power_w tracks the setpoint from the start
		voltageNominalX10,
		500, // 5.00 A
		550, // 55.0 C
		700, // 70.0 %
		setpointW,
	}
}

// Model advances the synthetic state one tick at a time. All state
// lives in the register block: every tick re-reads what it needs, so
// registers written from outside (a new setpoint via FC 6) take effect
// on the next tick.
type Model struct {
	block    *Block
	rng      *rand.Rand
	interval time.Duration

	// elapsed simulated seconds; drives the temperature duty cycle.
	t float64
}

// NewModel builds a model over block. The rng is owned by the model:
// a fixed seed reproduces the whole run.
func NewModel(block *Block, rng *rand.Rand, interval time.Duration) (*Model, error) {
	if block == nil {
		return nil, errors.New("sim: block required")
	}
	if block.Len() < telemetry.BlockLength {
		return nil, errors.Errorf("sim: block has %d registers, need %d", block.Len(), telemetry.BlockLength)
	}
	if rng == nil {
		return nil, errors.New("sim: rng required")
	}
	if interval <= 0 {
		return nil, errors.New("sim: interval must be > 0")
	}
	return &Model{block: block, rng: rng, interval: interval}, nil
}

// Step advances the model one tick. Field updates go through the
// block one register at a time, in a fixed order, so a concurrent
// reader observes the same interleaving a real device would show.
func (m *Model) Step() error {
	// Power slews toward the setpoint; near it, it just jitters.
	sp, err := m.block.Get(telemetry.RegSetpointW)
	if err != nil {
		return err
	}
	pwReg, err := m.block.Get(telemetry.RegPowerW)
	if err != nil {
		return err
	}
	pw := int(pwReg)
	delta := int(sp) - pw
	if delta > powerGapClampW {
		delta = powerGapClampW
	}
	if delta < -powerGapClampW {
		delta = -powerGapClampW
	}
	if delta > powerSlewThresholdW || delta < -powerSlewThresholdW {
		pw += int(float64(delta) * powerSlewRate)
	} else {
		pw += m.rng.Intn(2*powerJitterW+1) - powerJitterW
	}
	if pw < 0 {
		pw = 0
	}
	if pw > powerCeilW {
		pw = powerCeilW
	}
	if err := m.block.Set(telemetry.RegPowerW, uint16(pw)); err != nil {
		return err
	}

	// Voltage jitters around nominal.
	v := voltageNominalX10 + m.rng.Intn(2*voltageJitterX10+1) - voltageJitterX10
	if err := m.block.Set(telemetry.RegVoltageX10, uint16(v)); err != nil {
		return err
	}

	// Current derives from power over the jittered voltage.
	volts := float64(v) / 10
	if volts < 1 {
		volts = 1
	}
	ia := float64(pw) / volts * 100
	if ia < 0 {
		ia = 0
	}
	if ia > currentCeilX100 {
		ia = currentCeilX100
	}
	if err := m.block.Set(telemetry.RegCurrentX100, uint16(int(ia))); err != nil {
		return err
	}

	// Temperature chases a two-phase duty cycle through an EMA over
	// the stored value. Storing re-quantizes to 0.1 C, so the EMA
	// deliberately compounds on the quantized value.
	target := tempLowTargetC
	if m.phase() == 0 {
		target = tempHighTargetC
	}
	target += m.rng.Float64() - 0.5

	tReg, err := m.block.Get(telemetry.RegTempX10)
	if err != nil {
		return err
	}
	temp := float64(tReg)/10*tempKeepRatio + target*tempBlendRatio
	if err := m.block.Set(telemetry.RegTempX10, uint16(int(temp*10))); err != nil {
		return err
	}

	// State of charge takes a bounded random walk.
	socReg, err := m.block.Get(telemetry.RegSocX10)
	if err != nil {
		return err
	}
	soc := float64(socReg)/10 + (m.rng.Float64()*(2*socMaxStepPct) - socMaxStepPct)
	if soc > 100 {
		soc = 100
	}
	if soc < 0 {
		soc = 0
	}
	if err := m.block.Set(telemetry.RegSocX10, uint16(int(soc*10))); err != nil {
		return err
	}

	// Status re-asserts "running" every tick.
	if err := m.block.Set(telemetry.RegStatusBits, telemetry.StatusRunning); err != nil {
		return err
	}

	m.t += m.interval.Seconds()
	return nil
}

// phase is 0 in the hot half of the cycle, 1 in the cool half.
func (m *Model) phase() int {
	return int(m.t/tempPhaseSeconds) % 2
}
