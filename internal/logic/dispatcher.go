package logic

import "time"

// Dispatcher turns sampled line levels into presses.
//
// Detection is level-triggered: every sample that reads Pressed yields a
// press, so a held button fires again on every scan that observes it.
// Rate limiting is the caller's job (the post-press pause).
type Dispatcher struct {
	counts PressCounts
	levels [NumButtons]Level
	last   *Press
}

// NewDispatcher creates a dispatcher. All lines start out High (idle).
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{}
	for i := range d.levels {
		d.levels[i] = High
	}
	return d
}

// Check records the sampled level of the line at position and returns a
// press if the line reads Pressed. Out-of-range positions are ignored.
func (d *Dispatcher) Check(position int, level Level, now time.Time) *Press {
	if position < 0 || position >= NumButtons {
		return nil
	}
	d.levels[position] = level

	if level != Pressed {
		return nil
	}

	p := Press{Timestamp: now, Button: Buttons[position]}
	d.counts[position]++
	d.last = &p
	return &p
}

// Counts returns a copy of the per-button press counts.
func (d *Dispatcher) Counts() PressCounts {
	return d.counts
}

// Levels returns the most recently sampled level of each line.
func (d *Dispatcher) Levels() [NumButtons]Level {
	return d.levels
}

// LastPress returns the most recent press, or nil if none occurred yet.
func (d *Dispatcher) LastPress() *Press {
	if d.last == nil {
		return nil
	}
	p := *d.last
	return &p
}

