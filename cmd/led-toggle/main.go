// Command led-toggle drives the LED on BCM pin 23 high for five seconds, then low.
//
// Usage:
//
//	led-toggle [flags]          run the on/hold/off sequence
//	led-toggle [flags] on|1     switch the LED on and exit
//	led-toggle [flags] off|0    switch the LED off and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/led-toggle/internal/gpio"
	"github.com/sweeney/led-toggle/internal/mqtt"
	"github.com/sweeney/led-toggle/internal/status"
	"github.com/sweeney/led-toggle/internal/toggle"
)

// config holds the parsed command line.
type config struct {
	Driver           string
	Chip             string
	Broker           string
	QuietReconfigure bool

	// Command is empty for the full sequence, or "on"/"off" for a one-shot switch.
	Command string
}

// openFunc acquires a GPIO controller. gpio.Open in production.
type openFunc func(driver string, opts gpio.Options) (gpio.Controller, error)

func main() {
	driver := flag.String("driver", gpio.DriverCdev, "GPIO driver (cdev, rpio, periph)")
	chip := flag.String("chip", gpio.DefaultChip, "GPIO character device for the cdev driver")
	broker := flag.String("broker", "", "MQTT broker address (empty to disable)")
	quiet := flag.Bool("quiet-reconfigure", true, "Do not warn when the pin is already configured")

	flag.Parse()

	command, err := parseCommand(flag.Args())
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	cfg := config{
		Driver:           *driver,
		Chip:             *chip,
		Broker:           *broker,
		QuietReconfigure: *quiet,
		Command:          command,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	var publisher mqtt.Publisher
	if cfg.Broker != "" {
		publisher = mqtt.NewRealPublisher(cfg.Broker)
	}

	err = run(ctx, cfg, os.Stdout, gpio.Open, publisher, toggle.Sleep)
	stop()
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(ctx context.Context, cfg config, stdout io.Writer, open openFunc, publisher mqtt.Publisher, wait toggle.WaitFunc) error {
	ctrl, err := open(cfg.Driver, gpio.Options{
		Numbering:        gpio.BCM,
		AllowReconfigure: cfg.QuietReconfigure,
		Chip:             cfg.Chip,
		Consumer:         gpio.DefaultConsumer,
	})
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		Driver: cfg.Driver,
		Chip:   cfg.Chip,
		Pin:    toggle.Pin,
		HoldMs: toggle.Hold.Milliseconds(),
		Broker: cfg.Broker,
	})

	tg := toggle.New(stdout, tracker)
	tg.Wait = wait

	if publisher != nil {
		defer publisher.Close()
		publishSystem(publisher, tracker, "STARTUP", "")
		tg.Observers = append(tg.Observers, toggle.ObserverFunc(publisher.Publish))
	}

	var runErr error
	switch cfg.Command {
	case commandOn:
		log.Printf("started: driver=%s pin=%d command=%s", cfg.Driver, tg.Pin, cfg.Command)
		runErr = tg.Switch(ctrl, gpio.High)
	case commandOff:
		log.Printf("started: driver=%s pin=%d command=%s", cfg.Driver, tg.Pin, cfg.Command)
		runErr = tg.Switch(ctrl, gpio.Low)
	default:
		log.Printf("started: driver=%s pin=%d hold=%v", cfg.Driver, tg.Pin, tg.Hold)
		runErr = tg.Run(ctx, ctrl)
	}

	if err := tg.Release(ctrl); err != nil {
		log.Printf("release gpio: %v", err)
	}

	if publisher != nil {
		event, reason := outcome(runErr)
		publishSystem(publisher, tracker, event, reason)
	}

	if runErr != nil {
		return runErr
	}
	log.Printf("done")
	return nil
}

// One-shot commands.
const (
	commandOn  = "on"
	commandOff = "off"
)

// parseCommand validates the positional arguments. "1" and "0" are accepted
// as aliases for on and off.
func parseCommand(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", nil
	case 1:
	default:
		return "", fmt.Errorf("expected at most one command, got %d", len(args))
	}

	switch args[0] {
	case commandOn, "1":
		return commandOn, nil
	case commandOff, "0":
		return commandOff, nil
	default:
		return "", fmt.Errorf("unknown command %q (want on, off, 1 or 0)", args[0])
	}
}

// outcome names the lifecycle event for the result of a run.
func outcome(err error) (event, reason string) {
	switch {
	case err == nil:
		return "COMPLETE", ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "INTERRUPTED", err.Error()
	default:
		return "FAILED", err.Error()
	}
}

func publishSystem(publisher mqtt.Publisher, tracker *status.Tracker, event, reason string) {
	if cs, ok := publisher.(mqtt.ConnectionStatus); ok {
		tracker.SetMQTTConnected(cs.IsConnected())
	}
	snap := tracker.Snapshot()
	se := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := publisher.PublishSystem(se); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
	} else {
		log.Printf("published %s event", event)
	}
}
