//go:build linux

package indicator

import (
	"fmt"
	"log/slog"

	"github.com/warthog618/go-gpiocdev"

	"github.com/larsks/fancontrol/internal/logx"
)

// RGB drives a common-cathode RGB LED on three GPIO lines.
type RGB struct {
	chip  *gpiocdev.Chip
	red   *gpiocdev.Line
	green *gpiocdev.Line
	blue  *gpiocdev.Line
	log   *slog.Logger
}

// NewRGB opens the chip and claims the three lines as outputs, starting
// dark. A nil logger discards output.
func NewRGB(chipName string, pinRed, pinGreen, pinBlue int, log *slog.Logger) (*RGB, error) {
	if log == nil {
		log = logx.Discard()
	}

	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	red, err := chip.RequestLine(pinRed, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request red pin %d: %w", pinRed, err)
	}

	green, err := chip.RequestLine(pinGreen, gpiocdev.AsOutput(0))
	if err != nil {
		red.Close()
		chip.Close()
		return nil, fmt.Errorf("request green pin %d: %w", pinGreen, err)
	}

	blue, err := chip.RequestLine(pinBlue, gpiocdev.AsOutput(0))
	if err != nil {
		green.Close()
		red.Close()
		chip.Close()
		return nil, fmt.Errorf("request blue pin %d: %w", pinBlue, err)
	}

	return &RGB{chip: chip, red: red, green: green, blue: blue, log: log}, nil
}

// Calm shows green.
func (l *RGB) Calm() { l.set(0, 1, 0) }

// Candidate shows yellow.
func (l *RGB) Candidate() { l.set(1, 1, 0) }

// Confirmed shows red.
func (l *RGB) Confirmed() { l.set(1, 0, 0) }

// Off darkens all three lines.
func (l *RGB) Off() { l.set(0, 0, 0) }

// set applies the three line values. Failures are logged, not returned.
func (l *RGB) set(r, g, b int) {
	if err := l.red.SetValue(r); err != nil {
		l.log.Warn("failed to set red line", "error", err)
	}
	if err := l.green.SetValue(g); err != nil {
		l.log.Warn("failed to set green line", "error", err)
	}
	if err := l.blue.SetValue(b); err != nil {
		l.log.Warn("failed to set blue line", "error", err)
	}
}

// Close darkens the LED and releases GPIO resources.
func (l *RGB) Close() error {
	l.Off()

	var errs []error
	for _, line := range []*gpiocdev.Line{l.red, l.green, l.blue} {
		if line == nil {
			continue
		}
		if err := line.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if l.chip != nil {
		if err := l.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
