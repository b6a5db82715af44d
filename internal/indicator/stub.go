//go:build !linux

package indicator

import (
	"errors"
	"log/slog"
)

// RGB is not available on non-Linux platforms.
type RGB struct{}

// NewRGB returns an error on non-Linux platforms.
func NewRGB(chipName string, pinRed, pinGreen, pinBlue int, log *slog.Logger) (*RGB, error) {
	return nil, errors.New("indicator: not supported on this platform (requires Linux)")
}

// Calm is not implemented on non-Linux platforms.
func (l *RGB) Calm() {}

// Candidate is not implemented on non-Linux platforms.
func (l *RGB) Candidate() {}

// Confirmed is not implemented on non-Linux platforms.
func (l *RGB) Confirmed() {}

// Off is not implemented on non-Linux platforms.
func (l *RGB) Off() {}

// Close is not implemented on non-Linux platforms.
func (l *RGB) Close() error {
	return nil
}
