package gpio

import (
	"fmt"
	"strings"
)

// Driver names accepted by Open.
const (
	DriverCdev   = "cdev"   // Linux GPIO character device (go-gpiocdev)
	DriverRpio   = "rpio"   // memory mapped /dev/gpiomem (go-rpio)
	DriverPeriph = "periph" // periph.io host drivers
)

// Drivers returns the names of the hardware drivers, default first.
func Drivers() []string {
	return []string{DriverCdev, DriverRpio, DriverPeriph}
}

// Open creates a Controller backed by the named hardware driver.
// No hardware is touched until the first Setup.
func Open(driver string, opts Options) (Controller, error) {
	opts = opts.withDefaults()

	known := false
	for _, d := range Drivers() {
		if d == driver {
			known = true
			break
		}
	}
	if !known {
		return nil, fmt.Errorf("gpio: unknown driver %q (want one of %s)", driver, strings.Join(Drivers(), ", "))
	}

	return newController(driver, opts, newBackend(driver, opts)), nil
}
