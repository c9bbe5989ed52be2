//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"strings"

	"periph.io/x/conn/v3/driver/driverreg"
	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// periphBackend drives pins through the periph.io host drivers.
// Pins are looked up by their BCM name, e.g. "GPIO23".
type periphBackend struct {
	initialised bool
	// initErr joins the host drivers that failed to load. periph reports
	// those in its State rather than as an Init error.
	initErr error
}

func (b *periphBackend) requestOutput(channel int) (line, error) {
	if !b.initialised {
		state, err := host.Init()
		if err != nil {
			return nil, fmt.Errorf("init periph host: %w", err)
		}
		if state != nil {
			b.initErr = initFailures(state.Failed)
		}
		b.initialised = true
	}

	name := fmt.Sprintf("GPIO%d", channel)
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, b.withInitErr(fmt.Errorf("no pin named %s", name))
	}
	if err := p.Out(pgpio.Low); err != nil {
		return nil, b.withInitErr(fmt.Errorf("configure %s as output: %w", name, classifyPeriph(err)))
	}
	return periphLine{p}, nil
}

func (b *periphBackend) withInitErr(err error) error {
	if b.initErr == nil {
		return err
	}
	return fmt.Errorf("%w (host drivers failed: %w)", err, b.initErr)
}

// release is a no-op: periph has no host teardown.
func (b *periphBackend) release() error {
	return nil
}

// initFailures joins the driver failures reported by host.Init, or returns
// nil when there are none.
func initFailures(failed []driverreg.DriverFailure) error {
	var errs []error
	for _, f := range failed {
		name := "unknown driver"
		if f.D != nil {
			name = f.D.String()
		}
		errs = append(errs, fmt.Errorf("%s: %w", name, classifyPeriph(f.Err)))
	}
	return errors.Join(errs...)
}

// classifyPeriph maps periph's access failures onto ErrPermission. periph
// formats the underlying os error with %v, so only its message survives.
func classifyPeriph(err error) error {
	if err == nil || errors.Is(err, ErrPermission) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "need more access") || strings.Contains(msg, "permission denied") {
		return fmt.Errorf("%w: %v", ErrPermission, err)
	}
	return err
}

type periphLine struct {
	p pgpio.PinIO
}

func (l periphLine) setValue(level Level) error {
	return l.p.Out(pgpio.Level(level == High))
}

func (l periphLine) close() error {
	return l.p.Halt()
}
