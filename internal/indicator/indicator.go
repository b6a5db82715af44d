// Package indicator shows the daemon's state on an RGB LED with hardware
// abstraction. The real implementation drives GPIO lines through the Linux
// character device; the fake implementation records colors for tests.
package indicator

// Indicator displays the motion state as a color.
type Indicator interface {
	// Calm shows green: no motion, switch off.
	Calm()

	// Candidate shows yellow: a motion burst is being confirmed.
	Candidate()

	// Confirmed shows red: sustained motion, switch on.
	Confirmed()

	// Off darkens the LED.
	Off()

	// Close darkens the LED and releases GPIO resources.
	Close() error
}

// Default wiring (BCM numbering).
const (
	DefaultChip     = "gpiochip0"
	DefaultPinRed   = 23
	DefaultPinGreen = 24
	DefaultPinBlue  = 25
)
