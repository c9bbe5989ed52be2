package toggle

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/sweeney/led-toggle/internal/gpio"
)

// Toggler runs the LED sequence: configure, drive high, hold, drive low.
type Toggler struct {
	Pin  int
	Hold time.Duration

	// Out receives the "LED on" / "LED off" lines.
	Out io.Writer

	// Wait blocks for the hold period.
	Wait WaitFunc

	// Now stamps events.
	Now func() time.Time

	// Observers are notified of every state change. Observer errors are
	// logged and never abort the sequence.
	Observers []Observer

	// out is the pin configured by the last successful setup.
	out gpio.Output
}

// New creates a Toggler for the LED pin with the real clock and Sleep.
func New(out io.Writer, observers ...Observer) *Toggler {
	return &Toggler{
		Pin:       Pin,
		Hold:      Hold,
		Out:       out,
		Wait:      Sleep,
		Now:       time.Now,
		Observers: observers,
	}
}

// Run performs the sequence on a pin of ctrl. Run does not close ctrl;
// call Release when done.
//
// A setup failure returns before anything is printed or driven.
// If ctx is cancelled during the hold, the pin is still driven low and
// the returned error wraps ctx.Err().
func (t *Toggler) Run(ctx context.Context, ctrl gpio.Controller) error {
	out, err := t.setup(ctrl)
	if err != nil {
		return err
	}

	if err := t.drive(out, gpio.High); err != nil {
		return err
	}

	waitErr := t.Wait(ctx, t.Hold)

	if err := t.drive(out, gpio.Low); err != nil {
		return err
	}

	if waitErr != nil {
		return fmt.Errorf("hold interrupted: %w", waitErr)
	}
	return nil
}

// Switch configures the pin and drives it to level once, printing the
// matching console line first. The pin is left at level.
func (t *Toggler) Switch(ctrl gpio.Controller, level gpio.Level) error {
	out, err := t.setup(ctrl)
	if err != nil {
		return err
	}
	return t.drive(out, level)
}

// Release closes ctrl. If the pin was configured, observers receive a
// RELEASED event carrying the level last driven onto it.
func (t *Toggler) Release(ctrl gpio.Controller) error {
	if err := ctrl.Close(); err != nil {
		return err
	}
	if t.out != nil {
		t.emit(StateReleased, t.out.Level())
		t.out = nil
	}
	return nil
}

func (t *Toggler) setup(ctrl gpio.Controller) (gpio.Output, error) {
	t.out = nil
	out, err := ctrl.Setup(t.Pin)
	if err != nil {
		return nil, fmt.Errorf("setup pin %d: %w", t.Pin, err)
	}
	t.out = out
	t.emit(StateOutputLow, out.Level())
	return out, nil
}

func (t *Toggler) drive(out gpio.Output, level gpio.Level) error {
	state, msg, name := StateLow, MsgOff, "low"
	if level == gpio.High {
		state, msg, name = StateHigh, MsgOn, "high"
	}

	fmt.Fprintln(t.Out, msg)
	if err := out.Set(level); err != nil {
		return fmt.Errorf("drive pin %d %s: %w", t.Pin, name, err)
	}
	t.emit(state, level)
	return nil
}

func (t *Toggler) emit(state State, level gpio.Level) {
	event := Event{
		Timestamp: t.Now(),
		Pin:       t.Pin,
		State:     state,
		Level:     level,
	}
	for _, o := range t.Observers {
		if err := o.Observe(event); err != nil {
			log.Printf("observer error (%s): %v", state, err)
		}
	}
}
