package indicator

// Fake records the colors shown, for test assertions.
type Fake struct {
	// Colors contains every color change in order.
	Colors []string

	// Closed tracks if Close was called.
	Closed bool
}

// NewFake creates a Fake indicator.
func NewFake() *Fake {
	return &Fake{}
}

// Calm records green.
func (f *Fake) Calm() { f.Colors = append(f.Colors, "green") }

// Candidate records yellow.
func (f *Fake) Candidate() { f.Colors = append(f.Colors, "yellow") }

// Confirmed records red.
func (f *Fake) Confirmed() { f.Colors = append(f.Colors, "red") }

// Off records the LED going dark.
func (f *Fake) Off() { f.Colors = append(f.Colors, "off") }

// Close marks the indicator as closed.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded colors.
func (f *Fake) Reset() {
	f.Colors = nil
	f.Closed = false
}
