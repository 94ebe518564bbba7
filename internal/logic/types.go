// Package logic contains pure business logic for the button panel.
// This package has NO external dependencies (no GPIO, serial, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"fmt"
	"time"
)

// Level is the sampled electrical level of an input line.
type Level bool

const (
	High Level = true
	Low  Level = false
)

// Pressed is the level an active-low button line reads while held.
const Pressed = Low

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// Button binds a line position to its command label.
type Button struct {
	Position int    // 0-based scan order
	Number   int    // 1-based number used in announcements
	Label    string // command label
}

// NumButtons is the fixed number of input lines on the panel.
const NumButtons = 4

// Buttons is the panel layout in scan order. Never modified at runtime.
var Buttons = [NumButtons]Button{
	{Position: 0, Number: 1, Label: "upload"},
	{Position: 1, Number: 2, Label: "delete"},
	{Position: 2, Number: 3, Label: "rescan"},
	{Position: 3, Number: 4, Label: "confirm"},
}

// LabelFor returns the command label for a line position.
func LabelFor(position int) (string, bool) {
	if position < 0 || position >= NumButtons {
		return "", false
	}
	return Buttons[position].Label, true
}

// Press is a detected press of one button.
type Press struct {
	Timestamp time.Time
	Button    Button
}

// FormatAnnouncement returns the two lines written to the console for a press.
func FormatAnnouncement(p Press) string {
	return fmt.Sprintf("Button %d Pressed!\n%s\n", p.Button.Number, p.Button.Label)
}

// PressCounts tracks the number of presses per position since startup.
type PressCounts [NumButtons]int

// Total returns the sum of all per-button counts.
func (c PressCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}
