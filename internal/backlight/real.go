//go:build linux

package backlight

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealSwitch drives the backlight enable pin through the GPIO character device.
type RealSwitch struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealSwitch requests pin on the named chip as an output. The backlight
// starts lit so the boot animation is visible.
func NewRealSwitch(chipName string, pin int) (*RealSwitch, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chipName, err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(1), gpiocdev.WithConsumer("gauge-display"))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request backlight pin %d: %w", pin, err)
	}

	return &RealSwitch{chip: chip, line: line}, nil
}

// On drives the enable pin high.
func (s *RealSwitch) On() error {
	if err := s.line.SetValue(1); err != nil {
		return fmt.Errorf("backlight on: %w", err)
	}
	return nil
}

// Off drives the enable pin low.
func (s *RealSwitch) Off() error {
	if err := s.line.SetValue(0); err != nil {
		return fmt.Errorf("backlight off: %w", err)
	}
	return nil
}

// Close switches the backlight off and reconfigures the pin as an input with
// pull-down, matching the Pi boot default, before releasing it.
func (s *RealSwitch) Close() error {
	var errs []error

	if s.line != nil {
		if err := s.line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("backlight off: %w", err))
		}
		if err := s.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure backlight pin: %w", err))
		}
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close backlight pin: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
