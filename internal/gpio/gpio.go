// Package gpio provides digital output control with hardware abstraction.
// A Controller is an explicitly owned handle to the pin-control interface:
// it is created by Open, passed to whatever drives pins, and released by Close.
// Hardware drivers exist for the Linux GPIO character device, memory mapped
// /dev/gpiomem, and periph.io. The fake implementation allows testing without
// hardware.
package gpio

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

// Level is the logic level of an output pin.
type Level int

const (
	Low  Level = 0
	High Level = 1
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// Controller is a handle to the GPIO subsystem.
type Controller interface {
	// Setup configures pin (under the controller's numbering scheme) as an
	// output driven low and returns it.
	// Configuring a pin twice returns the same Output.
	Setup(pin int) (Output, error)

	// Close releases every configured line and the underlying device.
	// The level last driven on each line is left as-is.
	Close() error
}

// Output is a pin configured as a push-pull digital output.
type Output interface {
	// Set drives the pin to level.
	Set(level Level) error

	// Level returns the last level driven.
	Level() Level

	// Channel returns the BCM channel number of the pin.
	Channel() int
}

// Options configures a Controller.
type Options struct {
	// Numbering selects how pin numbers passed to Setup are interpreted.
	Numbering Numbering

	// AllowReconfigure silences the warning logged when a pin that is already
	// configured is set up again.
	AllowReconfigure bool

	// Chip is the GPIO character device used by the cdev driver.
	Chip string

	// Consumer labels requested lines (visible in gpioinfo).
	Consumer string
}

// Defaults
const (
	DefaultChip     = "gpiochip0"
	DefaultConsumer = "led-toggle"
)

func (o Options) withDefaults() Options {
	if o.Chip == "" {
		o.Chip = DefaultChip
	}
	if o.Consumer == "" {
		o.Consumer = DefaultConsumer
	}
	return o
}

var (
	// ErrPermission is matched by configuration failures caused by missing
	// access rights to the hardware interface.
	ErrPermission = fs.ErrPermission

	// ErrBusy is matched when the line is held by another consumer.
	ErrBusy = errors.New("gpio: line busy")

	// ErrUnsupported is returned by hardware drivers on platforms without
	// GPIO support.
	ErrUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

	// ErrClosed is returned when using a controller after Close.
	ErrClosed = errors.New("gpio: controller closed")
)

// ConfigError reports a failure to configure a pin.
type ConfigError struct {
	Driver string
	Pin    int
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("gpio: configure pin %d (%s): %v", e.Pin, e.Driver, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// requestError wraps a failed line request. EBUSY additionally matches ErrBusy;
// the original errno stays in the chain.
func requestError(channel int, err error) error {
	if errors.Is(err, syscall.EBUSY) {
		return fmt.Errorf("request line %d: %w: %w", channel, ErrBusy, err)
	}
	return fmt.Errorf("request line %d: %w", channel, err)
}
