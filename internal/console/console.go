// Package console writes press announcements to the serial output channel.
package console

import (
	"fmt"
	"io"
	"os"

	"go.bug.st/serial"

	"github.com/sweeney/button-panel/internal/logic"
)

// DefaultBaud is the serial line rate the panel announces at.
const DefaultBaud = 115200

// DefaultDevice is the primary UART on the Raspberry Pi header.
const DefaultDevice = "/dev/serial0"

// Stdout is the device name that selects standard output instead of a port.
const Stdout = "-"

// Console writes announcements to an output stream.
type Console struct {
	w    io.Writer
	port serial.Port
}

// New creates a Console over an arbitrary writer. Close does not close w.
func New(w io.Writer) *Console {
	return &Console{w: w}
}

// Open opens the serial device at the given baud rate, 8N1.
// The device name "-" selects standard output.
func Open(device string, baud int) (*Console, error) {
	if device == Stdout {
		return New(os.Stdout), nil
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return &Console{w: port, port: port}, nil
}

// Announce writes the two announcement lines for a press in a single write.
func (c *Console) Announce(p logic.Press) error {
	if _, err := io.WriteString(c.w, logic.FormatAnnouncement(p)); err != nil {
		return fmt.Errorf("write announcement: %w", err)
	}
	return nil
}

// Close drains and closes the serial port, if one was opened.
func (c *Console) Close() error {
	if c.port == nil {
		return nil
	}
	if err := c.port.Drain(); err != nil {
		c.port.Close()
		return fmt.Errorf("drain serial: %w", err)
	}
	return c.port.Close()
}

// Ports lists the serial ports present on the system.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
