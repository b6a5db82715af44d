//go:build !linux

package sensor

import "errors"

// MPU6050 is not available on non-Linux platforms.
type MPU6050 struct{}

// NewMPU6050 returns an error on non-Linux platforms.
func NewMPU6050(bus string, addr uint16) (*MPU6050, error) {
	return nil, errors.New("sensor: not supported on this platform (requires Linux)")
}

// Read is not implemented on non-Linux platforms.
func (m *MPU6050) Read() (x, y, z float64, err error) {
	return 0, 0, 0, errors.New("sensor: not supported")
}

// Close is not implemented on non-Linux platforms.
func (m *MPU6050) Close() error {
	return nil
}
