package gpio

import (
	"sync"
	"time"
)

// FakeController is a test double that records line requests and level
// transitions instead of touching hardware.
type FakeController struct {
	*controller

	// SetupError, if set, is returned (wrapped in a ConfigError) by Setup.
	SetupError error

	// SetError, if set, is returned by Set on every line.
	SetError error

	// Now stamps transitions. Defaults to time.Now.
	Now func() time.Time

	mu       sync.Mutex
	requests []int
	lines    map[int]*FakeLine
	released bool
}

// Transition is a level change recorded by a FakeLine.
type Transition struct {
	Level Level
	At    time.Time
}

// FakeLine records everything driven onto one channel.
type FakeLine struct {
	Channel     int
	Transitions []Transition
	Closed      bool
}

// NewFakeController creates a FakeController with the given options.
func NewFakeController(opts Options) *FakeController {
	f := &FakeController{lines: make(map[int]*FakeLine)}
	f.controller = newController("fake", opts.withDefaults(), f)
	return f
}

// Requests returns the BCM channels requested from the hardware, in order.
// A pin set up twice on the same controller is only requested once.
func (f *FakeController) Requests() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.requests...)
}

// Line returns the recorded line for a BCM channel, or nil if never requested.
func (f *FakeController) Line(channel int) *FakeLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lines[channel]
}

// Released reports whether the controller was closed.
func (f *FakeController) Released() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

func (f *FakeController) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f *FakeController) requestOutput(channel int) (line, error) {
	if f.SetupError != nil {
		return nil, f.SetupError
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, channel)
	fl := &FakeLine{Channel: channel}
	f.lines[channel] = fl
	return fakeLine{f: f, fl: fl}, nil
}

func (f *FakeController) release() error {
	f.mu.Lock()
	f.released = true
	f.mu.Unlock()
	return nil
}

type fakeLine struct {
	f  *FakeController
	fl *FakeLine
}

func (l fakeLine) setValue(level Level) error {
	if l.f.SetError != nil {
		return l.f.SetError
	}
	at := l.f.now()

	l.f.mu.Lock()
	defer l.f.mu.Unlock()
	l.fl.Transitions = append(l.fl.Transitions, Transition{Level: level, At: at})
	return nil
}

func (l fakeLine) close() error {
	l.f.mu.Lock()
	defer l.f.mu.Unlock()
	l.fl.Closed = true
	return nil
}
