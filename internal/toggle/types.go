// Package toggle drives a single LED pin through its on/off sequence.
// The package takes its GPIO handle, output writer, clock and wait primitive
// from the caller. It never sleeps on its own, so tests run instantly.
package toggle

import (
	"time"

	"github.com/sweeney/led-toggle/internal/gpio"
)

// Sequence constants. The pin is addressed by BCM channel.
const (
	Pin  = 23
	Hold = 5 * time.Second
)

// Console lines printed before each transition.
const (
	MsgOn  = "LED on"
	MsgOff = "LED off"
)

// State is a step of the toggle sequence.
type State string

const (
	StateUninitialized State = "UNINITIALIZED"
	StateOutputLow     State = "OUTPUT_LOW"
	StateHigh          State = "HIGH"
	StateLow           State = "LOW"
	StateReleased      State = "RELEASED"
)

// Event is a state change of the sequence.
type Event struct {
	Timestamp time.Time
	Pin       int
	State     State
	Level     gpio.Level
}

// Observer receives sequence events.
type Observer interface {
	Observe(event Event) error
}

// ObserverFunc adapts a function to an Observer.
type ObserverFunc func(event Event) error

// Observe calls f(event).
func (f ObserverFunc) Observe(event Event) error {
	return f(event)
}
