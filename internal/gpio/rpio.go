//go:build linux

package gpio

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"
)

// maxRpioChannel is the highest channel of the BCM283x GPIO block.
const maxRpioChannel = 53

// rpioBackend drives pins through memory mapped GPIO registers.
// go-rpio keeps its mapping in package state, so only one rpioBackend
// should be live per process.
type rpioBackend struct {
	opened bool
}

func (b *rpioBackend) requestOutput(channel int) (line, error) {
	if channel > maxRpioChannel {
		return nil, fmt.Errorf("channel %d out of range (0-%d)", channel, maxRpioChannel)
	}
	if !b.opened {
		if err := rpio.Open(); err != nil {
			return nil, fmt.Errorf("map gpio memory: %w", err)
		}
		b.opened = true
	}

	pin := rpio.Pin(channel)
	pin.Output()
	pin.Low()
	return rpioLine{pin}, nil
}

func (b *rpioBackend) release() error {
	if !b.opened {
		return nil
	}
	b.opened = false
	return rpio.Close()
}

type rpioLine struct {
	pin rpio.Pin
}

func (r rpioLine) setValue(level Level) error {
	if level == High {
		r.pin.High()
	} else {
		r.pin.Low()
	}
	return nil
}

// close is a no-op: registers keep the pin as an output at its last level.
func (r rpioLine) close() error {
	return nil
}
