// Package mqtt mirrors button presses to an MQTT broker, with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/button-panel/internal/logic"
)

// Topic is the MQTT topic for button press events.
const Topic = "panel/buttons/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "panel/buttons/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a button press to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(press logic.Press) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active and how
// many messages are held back waiting for it.
type ConnectionStatus interface {
	IsConnected() bool
	Buffered() int
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown).
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g., "STARTUP", "SHUTDOWN", "OFFLINE", "RECONNECTED"
	Reason    string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	Counts    *logic.PressCounts
	Retained  bool
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Button ButtonPayload `json:"button"`
}

// ButtonPayload contains the press details.
type ButtonPayload struct {
	Timestamp string `json:"timestamp"`
	Number    int    `json:"number"`
	Label     string `json:"label"`
}

// FormatPayload creates the JSON payload for a button press.
func FormatPayload(press logic.Press) ([]byte, error) {
	payload := Payload{
		Button: ButtonPayload{
			Timestamp: press.Timestamp.UTC().Format(time.RFC3339),
			Number:    press.Button.Number,
			Label:     press.Button.Label,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	Reason    string         `json:"reason,omitempty"`
	Presses   map[string]int `json:"presses,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// Press counts, when present, are keyed by label.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	inner := SystemPayloadInner{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Event:     event.Event,
		Reason:    event.Reason,
	}
	if event.Counts != nil {
		inner.Presses = make(map[string]int, logic.NumButtons)
		for _, b := range logic.Buttons {
			inner.Presses[b.Label] = event.Counts[b.Position]
		}
	}
	return json.Marshal(SystemPayload{System: inner})
}
