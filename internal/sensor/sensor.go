// Package sensor reads angular rates from an MPU-6050 gyroscope with
// hardware abstraction. The real implementation talks I2C through periph.io;
// the fake implementation allows testing without hardware.
package sensor

// Reader reads gyroscope angular rates.
type Reader interface {
	// Read returns the three angular rates in degrees per second.
	Read() (x, y, z float64, err error)

	// Close releases the bus.
	Close() error
}

// DefaultAddr is the MPU-6050 I2C address with the AD0 pin low.
const DefaultAddr = 0x68
