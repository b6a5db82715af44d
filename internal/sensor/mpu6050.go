//go:build linux

package sensor

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// MPU-6050 register map, from the datasheet.
const (
	regPwrMgmt1   = 0x6B
	regGyroConfig = 0x1B
	regGyroXOutH  = 0x43
)

// gyroScale converts raw readings to degrees per second at the +/-250 deg/s
// full scale range.
const gyroScale = 131.0

// MPU6050 reads the gyroscope over the Linux I2C character device.
type MPU6050 struct {
	bus i2c.BusCloser
	dev i2c.Dev
}

// NewMPU6050 opens the named I2C bus ("1" for /dev/i2c-1, "" for the first
// one registered) and wakes the device at addr.
func NewMPU6050(bus string, addr uint16) (*MPU6050, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}

	b, err := i2creg.Open(bus)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", bus, err)
	}

	m := &MPU6050{bus: b, dev: i2c.Dev{Bus: b, Addr: addr}}

	// The device powers up asleep. Clearing PWR_MGMT_1 wakes it; clearing
	// GYRO_CONFIG selects the +/-250 deg/s range that gyroScale assumes.
	if err := m.dev.Tx([]byte{regPwrMgmt1, 0x00}, nil); err != nil {
		b.Close()
		return nil, fmt.Errorf("wake device at %#x: %w", addr, err)
	}
	if err := m.dev.Tx([]byte{regGyroConfig, 0x00}, nil); err != nil {
		b.Close()
		return nil, fmt.Errorf("configure gyro range: %w", err)
	}

	return m, nil
}

// Read returns the three angular rates in degrees per second.
func (m *MPU6050) Read() (x, y, z float64, err error) {
	var buf [6]byte
	if err := m.dev.Tx([]byte{regGyroXOutH}, buf[:]); err != nil {
		return 0, 0, 0, fmt.Errorf("read gyro registers: %w", err)
	}

	x = float64(int16(binary.BigEndian.Uint16(buf[0:2]))) / gyroScale
	y = float64(int16(binary.BigEndian.Uint16(buf[2:4]))) / gyroScale
	z = float64(int16(binary.BigEndian.Uint16(buf[4:6]))) / gyroScale
	return x, y, z, nil
}

// Close releases the bus.
func (m *MPU6050) Close() error {
	return m.bus.Close()
}
