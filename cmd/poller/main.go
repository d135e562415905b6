// cmd/poller/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/juju/errors"

	"github.com/tamzrod/bms-telemetry/internal/config"
	"github.com/tamzrod/bms-telemetry/internal/poller"
	"github.com/tamzrod/bms-telemetry/internal/publish"
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
		// under systemd the journal stamps every line already
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

	// --------------------
	// Build the pipeline: broker session, then the poll loop
	// --------------------

	pc := cfg.Poller

	pub, err := publish.New(publish.Config{
		URL:            pc.Broker.URL,
		ClientID:       pc.Broker.ClientID,
		Keepalive:      time.Duration(pc.Broker.KeepaliveSec) * time.Second,
		Username:       pc.Broker.Username,
		Password:       pc.Broker.Password,
		TopicTelemetry: pc.Broker.TopicTelemetry,
		TopicAlarms:    pc.Broker.TopicAlarms,
	})
	if err != nil {
		return errors.Annotate(err, "broker session")
	}
	defer func() {
		if err := pub.Close(); err != nil {
			log.Printf("poller: broker close: %v", err)
		}
	}()

	p, closeTransport, err := poller.Build(pc, pub, nil)
	if err != nil {
		return errors.Annotate(err, "poller build")
	}
	defer func() {
		if err := closeTransport(); err != nil {
			log.Printf("poller: transport close: %v", err)
		}
	}()

	sdnotify(daemon.SdNotifyReady)
	log.Printf("poller: %s unit=%d -> %s every %s",
		pc.Source.Endpoint, pc.Source.UnitID, pc.Broker.TopicTelemetry,
		time.Duration(pc.Poll.PeriodMs)*time.Millisecond)

	err = p.Run(ctx)

	sdnotify(daemon.SdNotifyStopping)
	log.Print("poller: stopped")
	return errors.Trace(err)
}

func sdnotify(s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
