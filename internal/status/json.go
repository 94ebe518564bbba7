package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/button-panel/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Buttons       []ButtonJSON `json:"buttons"`
	TotalPresses  int          `json:"total_presses"`
	LastPress     *PressJSON   `json:"last_press,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Config        ConfigJSON   `json:"config"`
}

// ButtonJSON describes one input line.
type ButtonJSON struct {
	Number  int    `json:"number"`
	Label   string `json:"label"`
	Pin     int    `json:"pin"`
	Level   string `json:"level"`
	Presses int    `json:"presses"`
}

// PressJSON is the JSON representation of a press.
type PressJSON struct {
	Number    int    `json:"number"`
	Label     string `json:"label"`
	Timestamp string `json:"timestamp"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Enabled   bool   `json:"enabled"`
	Connected bool   `json:"connected"`
	Buffered  int    `json:"buffered"`
	Broker    string `json:"broker,omitempty"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip     string `json:"chip"`
	Serial   string `json:"serial"`
	Baud     int    `json:"baud"`
	PauseMs  int64  `json:"pause_ms"`
	PollMs   int64  `json:"poll_ms"`
	HTTPAddr string `json:"http_addr"`
}

// Rows returns one ButtonJSON per panel button, in scan order.
func (s Snapshot) Rows() []ButtonJSON {
	rows := make([]ButtonJSON, 0, logic.NumButtons)
	for _, b := range logic.Buttons {
		pin := -1
		if b.Position < len(s.Config.Pins) {
			pin = s.Config.Pins[b.Position]
		}
		rows = append(rows, ButtonJSON{
			Number:  b.Number,
			Label:   b.Label,
			Pin:     pin,
			Level:   s.Levels[b.Position].String(),
			Presses: s.Counts[b.Position],
		})
	}
	return rows
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	inner := StatusInner{
		Buttons:       snap.Rows(),
		TotalPresses:  snap.Counts.Total(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT: MQTTStatus{
			Enabled:   snap.Config.Broker != "",
			Connected: snap.MQTTConnected,
			Buffered:  snap.MQTTBuffered,
			Broker:    snap.Config.Broker,
		},
		Config: ConfigJSON{
			Chip:     snap.Config.Chip,
			Serial:   snap.Config.Serial,
			Baud:     snap.Config.Baud,
			PauseMs:  snap.Config.PauseMs,
			PollMs:   snap.Config.PollMs,
			HTTPAddr: snap.Config.HTTPAddr,
		},
	}
	if p := snap.LastPress; p != nil {
		inner.LastPress = &PressJSON{
			Number:    p.Button.Number,
			Label:     p.Button.Label,
			Timestamp: p.Timestamp.UTC().Format(time.RFC3339),
		}
	}

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
