// cmd/simulator/main.go
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"

	"github.com/tamzrod/bms-telemetry/internal/config"
	"github.com/tamzrod/bms-telemetry/internal/sim"
	"github.com/tamzrod/bms-telemetry/internal/sim/modbus"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
}

func run() error {
	flagConfig := flag.String("config", "", "path to config.yaml (empty runs built-in defaults)")
	flag.Parse()

	const logFlagsService = log.Lshortfile
	const logFlagsInteractive = log.Lshortfile | log.Ltime | log.Lmicroseconds
	if sdnotify("start") {
		log.SetFlags(logFlagsService)
	} else {
		log.SetFlags(logFlagsInteractive)
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		return errors.Annotate(err, "config load")
	}
	if err := config.Validate(cfg); err != nil {
		return errors.Annotate(err, "config validation")
	}
	config.Normalize(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sc := cfg.Simulator
	tick := time.Duration(sc.TickMs) * time.Millisecond

	// --------------------
	// Seed the register block and the process model
	// --------------------

	block := sim.NewBlock(sc.Registers)
	if err := block.Seed(sim.DefaultSeed(uint16(sc.DeviceID), uint16(sc.SetpointW))); err != nil {
		return errors.Trace(err)
	}

	seed := sc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	model, err := sim.NewModel(block, rand.New(rand.NewSource(seed)), tick)
	if err != nil {
		return errors.Trace(err)
	}

	updater, err := sim.NewUpdater(model, nil, tick)
	if err != nil {
		return errors.Trace(err)
	}

	// --------------------
	// Serve Modbus TCP
	// --------------------

	srv, err := modbus.NewServer(modbus.Config{
		Listen:   sc.Listen,
		Identity: modbus.DefaultIdentity(),
	}, block)
	if err != nil {
		return errors.Annotate(err, "modbus server")
	}

	updater.Start()
	sdnotify(daemon.SdNotifyReady)
	log.Printf("simulator: device %d on %s, tick %s, seed %d",
		sc.DeviceID, srv.Addr(), tick, seed)

	<-ctx.Done()

	sdnotify(daemon.SdNotifyStopping)
	updater.Stop()
	if err := srv.Close(); err != nil {
		log.Printf("simulator: close: %v", err)
	}
	log.Print("simulator: stopped")
	return nil
}

func sdnotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
