package gpio

import (
	"errors"
	"fmt"
)

// Sample is the raw level of every line for one scan pass.
// true = high (idle), false = low (pressed).
type Sample []bool

// Idle returns a sample with n lines all high.
func Idle(n int) Sample {
	s := make(Sample, n)
	for i := range s {
		s[i] = true
	}
	return s
}

// PressedAt returns a sample with n lines where only the given positions are low.
func PressedAt(n int, positions ...int) Sample {
	s := Idle(n)
	for _, p := range positions {
		s[p] = false
	}
	return s
}

// FakeReader is a test double that returns scripted GPIO values.
type FakeReader struct {
	// Samples contains one scripted sample per scan pass.
	// Reading the last line of a sample advances to the next one.
	Samples []Sample

	// index tracks current position in Samples
	index int

	// Reads counts calls to Read.
	Reads int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Sample) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the level of position in the current sample.
// If samples are exhausted, the last sample is returned repeatedly.
func (f *FakeReader) Read(position int) (bool, error) {
	f.Reads++
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Samples) == 0 {
		return false, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if position < 0 || position >= len(sample) {
		return false, fmt.Errorf("read position %d: out of range", position)
	}

	if position == len(sample)-1 && f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample[position], nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Reads = 0
	f.Closed = false
}
