//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealReader reads GPIO from actual hardware using Linux GPIO character device.
type RealReader struct {
	chip  *gpiocdev.Chip
	lines []*gpiocdev.Line
	pins  []int
}

// NewRealReader requests each pin as an input with the internal pull-up
// enabled, so an open button reads high and a pressed one reads low.
func NewRealReader(chipName string, pins []int) (*RealReader, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer("button-panel"))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	r := &RealReader{chip: chip, pins: pins}
	for i, pin := range pins {
		line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullUp)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("request button %d pin %d: %w", i+1, pin, err)
		}
		r.lines = append(r.lines, line)
	}

	return r, nil
}

// Read returns the raw level of the line at position (true = high).
func (r *RealReader) Read(position int) (bool, error) {
	if position < 0 || position >= len(r.lines) {
		return false, fmt.Errorf("read position %d: out of range (0..%d)", position, len(r.lines)-1)
	}
	v, err := r.lines[position].Value()
	if err != nil {
		return false, fmt.Errorf("read button %d pin %d: %w", position+1, r.pins[position], err)
	}
	return v != 0, nil
}

// Close releases GPIO resources.
// Lines are left configured as pulled-up inputs so the buttons stay idle
// high while nothing holds them.
func (r *RealReader) Close() error {
	var errs []error

	for i, line := range r.lines {
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullUp); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure pin %d: %w", r.pins[i], err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pin %d: %w", r.pins[i], err))
		}
	}
	r.lines = nil

	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
