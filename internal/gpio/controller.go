package gpio

import (
	"fmt"
	"log"
	"sort"
	"sync"
)

// backend is the driver specific part of a controller.
// Drivers acquire the device lazily on the first request so that access
// failures surface from Setup.
type backend interface {
	// requestOutput claims the BCM channel as an output driven low.
	requestOutput(channel int) (line, error)
	// release frees the device. Lines are closed before release is called.
	release() error
}

// line is a claimed output line.
type line interface {
	setValue(level Level) error
	close() error
}

// controller implements Controller on top of a backend.
// Safe for concurrent use.
type controller struct {
	driver string
	opts   Options
	be     backend

	mu      sync.Mutex
	outputs map[int]*output // keyed by BCM channel
	closed  bool
}

func newController(driver string, opts Options, be backend) *controller {
	return &controller{
		driver:  driver,
		opts:    opts,
		be:      be,
		outputs: make(map[int]*output),
	}
}

// Setup configures pin as an output driven low.
func (c *controller) Setup(pin int) (Output, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, &ConfigError{Driver: c.driver, Pin: pin, Err: ErrClosed}
	}

	ch, err := c.opts.Numbering.Channel(pin)
	if err != nil {
		return nil, &ConfigError{Driver: c.driver, Pin: pin, Err: err}
	}

	if out, ok := c.outputs[ch]; ok {
		if !c.opts.AllowReconfigure {
			log.Printf("gpio: channel %d is already in use, continuing anyway", ch)
		}
		return out, nil
	}

	l, err := c.be.requestOutput(ch)
	if err != nil {
		return nil, &ConfigError{Driver: c.driver, Pin: pin, Err: err}
	}

	out := &output{channel: ch, line: l}
	c.outputs[ch] = out
	return out, nil
}

// Close releases all lines and the device. Calling Close more than once is a no-op.
func (c *controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var errs []error

	channels := make([]int, 0, len(c.outputs))
	for ch := range c.outputs {
		channels = append(channels, ch)
	}
	sort.Ints(channels)
	for _, ch := range channels {
		if err := c.outputs[ch].close(); err != nil {
			errs = append(errs, fmt.Errorf("close channel %d: %w", ch, err))
		}
	}
	c.outputs = nil

	if err := c.be.release(); err != nil {
		errs = append(errs, fmt.Errorf("release %s: %w", c.driver, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// output implements Output for a claimed line.
type output struct {
	channel int

	mu     sync.Mutex
	line   line
	level  Level
	closed bool
}

func (o *output) Set(level Level) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if err := o.line.setValue(level); err != nil {
		return fmt.Errorf("set channel %d %s: %w", o.channel, level, err)
	}
	o.level = level
	return nil
}

func (o *output) Level() Level {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.level
}

func (o *output) Channel() int {
	return o.channel
}

func (o *output) close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	return o.line.close()
}
