package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event       string     `json:"event,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	State       string     `json:"state"`
	Level       string     `json:"level"`
	Pin         int        `json:"pin"`
	Transitions int        `json:"transitions"`
	RuntimeMs   int64      `json:"runtime_ms"`
	StartTime   string     `json:"start_time"`
	LastChange  string     `json:"last_change,omitempty"`
	Timestamp   string     `json:"timestamp"`
	MQTT        MQTTStatus `json:"mqtt"`
	Config      ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of the run config.
type ConfigJSON struct {
	Driver string `json:"driver"`
	Chip   string `json:"chip,omitempty"`
	HoldMs int64  `json:"hold_ms"`
}

func buildInner(snap Snapshot) StatusInner {
	state := string(snap.State)
	if state == "" {
		state = "UNKNOWN"
	}

	inner := StatusInner{
		State:       state,
		Level:       snap.Level.String(),
		Pin:         snap.Config.Pin,
		Transitions: snap.Transitions,
		RuntimeMs:   snap.Runtime().Milliseconds(),
		StartTime:   snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:   snap.Now.UTC().Format(time.RFC3339),
		MQTT:        MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			Driver: snap.Config.Driver,
			Chip:   snap.Config.Chip,
			HoldMs: snap.Config.HoldMs,
		},
	}
	if !snap.LastChange.IsZero() {
		inner.LastChange = snap.LastChange.UTC().Format(time.RFC3339)
	}
	return inner
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
