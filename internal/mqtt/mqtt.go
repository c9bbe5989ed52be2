// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/led-toggle/internal/toggle"
)

// Topic is the MQTT topic for LED transition events.
const Topic = "gpio/led/events"

// TopicSystem is the MQTT topic for run lifecycle events.
const TopicSystem = "gpio/led/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an LED event to the broker.
	// Returns error if publishing fails (should not abort the sequence).
	Publish(event toggle.Event) error

	// PublishSystem sends a lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close flushes pending messages and disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a run lifecycle event (e.g., startup, completion).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "COMPLETE", "INTERRUPTED", "FAILED"
	Reason     string // e.g., "SIGTERM", or the error text for FAILED
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	LED LEDPayload `json:"led"`
}

// LEDPayload contains the LED event details.
type LEDPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Pin       int    `json:"pin"`
	State     string `json:"state"`
	Level     string `json:"level"`
}

// EventName returns the published event name for a sequence state.
func EventName(state toggle.State) string {
	switch state {
	case toggle.StateOutputLow:
		return "CONFIGURED"
	case toggle.StateHigh:
		return "LED_ON"
	case toggle.StateLow:
		return "LED_OFF"
	case toggle.StateReleased:
		return "RELEASED"
	default:
		return string(state)
	}
}

// FormatPayload creates the JSON payload for an LED event.
func FormatPayload(event toggle.Event) ([]byte, error) {
	payload := Payload{
		LED: LEDPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     EventName(event.State),
			Pin:       event.Pin,
			State:     string(event.State),
			Level:     event.Level.String(),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (the last will) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
