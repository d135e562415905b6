// internal/sim/updater.go
package sim

import (
	"log"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"

	"github.com/tamzrod/bms-telemetry/internal/clock"
)

// Updater drives the model on a fixed tick until stopped. A failed
// step is logged and the tick keeps going: a noisy device beats a
// silently frozen one.
type Updater struct {
	model    *Model
	clk      clock.Clock
	interval time.Duration
	alive    *alive.Alive
}

// NewUpdater wires a model to a tick source.
func NewUpdater(model *Model, clk clock.Clock, interval time.Duration) (*Updater, error) {
	if model == nil {
		return nil, errors.New("sim: model required")
	}
	if interval <= 0 {
		return nil, errors.New("sim: tick interval must be > 0")
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Updater{
		model:    model,
		clk:      clk,
		interval: interval,
		alive:    alive.NewAlive(),
	}, nil
}

// Start launches the tick goroutine. The first step runs immediately;
// later steps follow the tick.
func (u *Updater) Start() {
	if !u.alive.Add(1) {
		return
	}
	go u.loop()
}

func (u *Updater) loop() {
	defer u.alive.Done()

	tk := u.clk.NewTicker(u.interval)
	defer tk.Stop()

	for {
		if err := u.model.Step(); err != nil {
			log.Printf("simulator tick failed: %v", err)
		}

		select {
		case <-u.alive.StopChan():
			return
		case <-tk.C:
		}
	}
}

// Stop halts the tick and waits for the loop to exit.
func (u *Updater) Stop() {
	u.alive.Stop()
	u.alive.Wait()
}
