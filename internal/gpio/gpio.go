// Package gpio provides GPIO input reading with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads the raw level of the panel's input lines.
type Reader interface {
	// Read returns the raw level of the line at the given scan position.
	// true = high (idle), false = low (button pulling the line to ground).
	Read(position int) (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// DefaultChip is the GPIO character device used on the Raspberry Pi header.
const DefaultChip = "gpiochip0"

// Default pin definitions (BCM numbering), in scan order.
var DefaultPins = []int{5, 6, 13, 19}
