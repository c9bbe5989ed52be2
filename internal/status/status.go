// Package status provides a thread-safe status tracker for the LED toggle
// sequence. It is fed by toggle events and read when building MQTT payloads.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/led-toggle/internal/gpio"
	"github.com/sweeney/led-toggle/internal/toggle"
)

// Config contains run configuration for display.
type Config struct {
	Driver string
	Chip   string
	Pin    int
	HoldMs int64
	Broker string
}

// Snapshot is a point-in-time view of the sequence.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	State         toggle.State
	Level         gpio.Level
	Transitions   int // HIGH and LOW transitions since start
	LastChange    time.Time
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Runtime returns the duration since the run started.
func (s Snapshot) Runtime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable sequence state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			State:     toggle.StateUninitialized,
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Observe records a toggle event. It implements toggle.Observer.
func (t *Tracker) Observe(event toggle.Event) error {
	t.mu.Lock()
	t.snap.State = event.State
	t.snap.Level = event.Level
	t.snap.LastChange = event.Timestamp
	if event.State == toggle.StateHigh || event.State == toggle.StateLow {
		t.snap.Transitions++
	}
	t.mu.Unlock()
	return nil
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the sequence state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
