package sensor

import "errors"

// FakeReader is a test double that returns scripted gyro rates.
type FakeReader struct {
	// Samples contains scripted rates to return.
	// Each call to Read() consumes the next sample.
	Samples []Rates

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// Rates is a single scripted reading in degrees per second.
type Rates struct {
	X float64
	Y float64
	Z float64
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Rates) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (x, y, z float64, err error) {
	if f.ReadError != nil {
		return 0, 0, 0, f.ReadError
	}

	if len(f.Samples) == 0 {
		return 0, 0, 0, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	return sample.X, sample.Y, sample.Z, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}
