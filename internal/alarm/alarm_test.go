// internal/alarm/alarm_test.go
package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return base.Add(time.Duration(sec) * time.Second) }

func defaultConfig() Config {
	return Config{Hi: 60.0, Lo: 58.0, RaiseAfter: 5 * time.Second, ClearAfter: 3 * time.Second}
}

func mustNew(t *testing.T, cfg Config) *Supervisor {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	return s
}

func TestNew_Validation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"defaults", defaultConfig(), true},
		{"inverted band", Config{Hi: 58, Lo: 60, RaiseAfter: time.Second, ClearAfter: time.Second}, false},
		{"degenerate band", Config{Hi: 60, Lo: 60, RaiseAfter: time.Second, ClearAfter: time.Second}, false},
		{"negative raise window", Config{Hi: 60, Lo: 58, RaiseAfter: -time.Second, ClearAfter: time.Second}, false},
		{"negative clear window", Config{Hi: 60, Lo: 58, RaiseAfter: time.Second, ClearAfter: -time.Second}, false},
		{"zero windows", Config{Hi: 60, Lo: 58}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := New(c.cfg)
			if c.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestUpdate_RaiseAfterUnbrokenRun(t *testing.T) {
	s := mustNew(t, defaultConfig())

	for sec := 0; sec < 5; sec++ {
		_, ok := s.Update(at(sec), 61.0)
		assert.False(t, ok, "no event at t=%d", sec)
	}

	ev, ok := s.Update(at(5), 61.0)
	require.True(t, ok, "window satisfied at t=5")
	assert.Equal(t, Raised, ev.Transition)
	assert.Equal(t, at(5), ev.At)
	assert.Equal(t, 60.0, ev.Threshold)
	assert.True(t, s.Active())
}

func TestUpdate_BoundarySampleBreaksRun(t *testing.T) {
	s := mustNew(t, defaultConfig())

	for sec := 0; sec < 4; sec++ {
		_, ok := s.Update(at(sec), 61.0)
		require.False(t, ok)
	}

	// Exactly Hi is not hot: the comparison is strict.
	_, ok := s.Update(at(4), 60.0)
	require.False(t, ok)

	// The run restarts at t=5, so the earliest raise is t=10.
	for sec := 5; sec < 10; sec++ {
		_, ok := s.Update(at(sec), 61.0)
		require.False(t, ok, "no event at t=%d", sec)
	}
	ev, ok := s.Update(at(10), 61.0)
	require.True(t, ok)
	assert.Equal(t, Raised, ev.Transition)
	assert.Equal(t, at(10), ev.At)
}

func TestUpdate_ClearAfterColdRun(t *testing.T) {
	s := mustNew(t, defaultConfig())

	// Drive to active.
	for sec := 0; sec <= 5; sec++ {
		s.Update(at(sec), 61.0)
	}
	require.True(t, s.Active())

	// Still hot: nothing happens while active.
	for sec := 6; sec <= 7; sec++ {
		_, ok := s.Update(at(sec), 61.0)
		assert.False(t, ok)
	}

	// Cold run from t=8 clears at t=11.
	for sec := 8; sec < 11; sec++ {
		_, ok := s.Update(at(sec), 57.5)
		require.False(t, ok, "no event at t=%d", sec)
	}
	ev, ok := s.Update(at(11), 57.5)
	require.True(t, ok)
	assert.Equal(t, Cleared, ev.Transition)
	assert.Equal(t, at(11), ev.At)
	assert.Equal(t, 58.0, ev.Threshold)
	assert.False(t, s.Active())
}

func TestUpdate_BandSampleBreaksColdRun(t *testing.T) {
	s := mustNew(t, Config{Hi: 60, Lo: 58, RaiseAfter: 0, ClearAfter: 3 * time.Second})

	_, ok := s.Update(at(0), 61.0)
	require.True(t, ok, "zero raise window fires immediately")

	s.Update(at(1), 57.0)
	s.Update(at(2), 57.0)

	// In-band sample: not cold (strict <), resets the cold run. 58.0
	// itself sits on the boundary and does not count.
	s.Update(at(3), 58.0)

	for sec := 4; sec < 7; sec++ {
		_, ok := s.Update(at(sec), 57.0)
		require.False(t, ok, "no event at t=%d", sec)
	}
	ev, ok := s.Update(at(7), 57.0)
	require.True(t, ok)
	assert.Equal(t, Cleared, ev.Transition)
}

func TestUpdate_HysteresisNoChatter(t *testing.T) {
	s := mustNew(t, defaultConfig())

	// Oscillation across the band never builds a full run.
	temps := []float64{61, 59, 61, 59, 61, 59, 61, 59, 61, 59}
	for sec, temp := range temps {
		_, ok := s.Update(at(sec), temp)
		assert.False(t, ok, "no event at t=%d", sec)
	}
	assert.False(t, s.Active())
}

func TestUpdate_SparseSamplesSatisfyWindow(t *testing.T) {
	s := mustNew(t, defaultConfig())

	// Windows are judged on elapsed time between samples, not on
	// sample counts: two hot samples ten seconds apart raise.
	_, ok := s.Update(at(0), 61.0)
	require.False(t, ok)

	ev, ok := s.Update(at(10), 61.0)
	require.True(t, ok)
	assert.Equal(t, Raised, ev.Transition)
	assert.Equal(t, at(10), ev.At)
}

func TestUpdate_ZeroWindows(t *testing.T) {
	s := mustNew(t, Config{Hi: 60, Lo: 58})

	ev, ok := s.Update(at(0), 60.1)
	require.True(t, ok)
	assert.Equal(t, Raised, ev.Transition)

	ev, ok = s.Update(at(1), 57.9)
	require.True(t, ok)
	assert.Equal(t, Cleared, ev.Transition)
}

func TestUpdate_NoRepeatWhileActive(t *testing.T) {
	s := mustNew(t, Config{Hi: 60, Lo: 58, RaiseAfter: 0, ClearAfter: 0})

	_, ok := s.Update(at(0), 65.0)
	require.True(t, ok)

	// Staying hot produces no further edges.
	for sec := 1; sec < 20; sec++ {
		_, ok := s.Update(at(sec), 65.0)
		assert.False(t, ok)
	}
	assert.True(t, s.Active())
}

func TestUpdate_FullDutyCycle(t *testing.T) {
	// A square-ish temperature wave produces alternating edges, one
	// pair per period, with the debounce delays applied.
	s := mustNew(t, defaultConfig())

	var raised, cleared int
	temp := func(sec int) float64 {
		if sec%20 < 10 {
			return 64.0
		}
		return 41.0
	}
	for sec := 0; sec < 60; sec++ {
		ev, ok := s.Update(at(sec), temp(sec))
		if !ok {
			continue
		}
		switch ev.Transition {
		case Raised:
			raised++
		case Cleared:
			cleared++
		}
	}
	assert.Equal(t, 3, raised)
	assert.Equal(t, 3, cleared)
}
