// Package backlight switches the LCD backlight with hardware abstraction.
// The real implementation drives a Linux GPIO character device line.
// The fake implementation allows testing without hardware.
package backlight

// Switch powers the backlight on and off.
type Switch interface {
	On() error
	Off() error

	// Close releases the GPIO line, leaving the backlight off.
	Close() error
}

// Defaults for the panel wiring.
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 6
)
