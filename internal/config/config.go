// Package config loads daemon configuration from an optional YAML file,
// starting from built-in defaults. MQTT credentials can also come from the
// environment so they stay out of the config file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/larsks/fancontrol/internal/indicator"
	"github.com/larsks/fancontrol/internal/logx"
	"github.com/larsks/fancontrol/internal/sensor"
)

// Environment variable names for MQTT credentials.
const (
	EnvMQTTUsername = "FANCONTROL_MQTT_USERNAME"
	EnvMQTTPassword = "FANCONTROL_MQTT_PASSWORD"
)

// Config is the top-level daemon configuration.
type Config struct {
	Sensor    Sensor    `yaml:"sensor"`
	Indicator Indicator `yaml:"indicator"`
	Switch    Switch    `yaml:"switch"`
	Motion    Motion    `yaml:"motion"`
	Clock     Clock     `yaml:"clock"`
	HTTP      HTTP      `yaml:"http"`
	Logging   Logging   `yaml:"logging"`
}

// Sensor selects the gyroscope I2C bus and device address.
type Sensor struct {
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`
}

// Indicator selects the GPIO chip and RGB LED pins (BCM numbering).
type Indicator struct {
	Chip  string `yaml:"chip"`
	Red   int    `yaml:"red"`
	Green int    `yaml:"green"`
	Blue  int    `yaml:"blue"`
}

// Switch configures how the daemon reaches the Tasmota device. Transport
// is "http" or "mqtt"; Address serves the former, Broker and Topic the
// latter.
type Switch struct {
	Transport string `yaml:"transport"`
	Address   string `yaml:"address"`
	Broker    string `yaml:"broker"`
	Topic     string `yaml:"topic"`
	ClientID  string `yaml:"client_id"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
}

// Motion holds the state machine tuning knobs. TrackingTimeout is a
// duration string such as "60s".
type Motion struct {
	DeltaThreshold  float64 `yaml:"delta_threshold"`
	TrackingTimeout string  `yaml:"tracking_timeout"`
}

// Timeout parses the tracking timeout.
func (m Motion) Timeout() (time.Duration, error) {
	return time.ParseDuration(m.TrackingTimeout)
}

// Clock selects the NTP server used to set the system time.
type Clock struct {
	NTPServer string `yaml:"ntp_server"`
}

// HTTP configures the status server.
type HTTP struct {
	Addr string `yaml:"addr"`
}

// Logging configures log output.
type Logging struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Sensor: Sensor{
			Bus:     "1",
			Address: sensor.DefaultAddr,
		},
		Indicator: Indicator{
			Chip:  indicator.DefaultChip,
			Red:   indicator.DefaultPinRed,
			Green: indicator.DefaultPinGreen,
			Blue:  indicator.DefaultPinBlue,
		},
		Switch: Switch{
			Transport: "http",
			Address:   "192.168.1.20",
			Topic:     "fancontrol",
			ClientID:  "fancontrol",
		},
		Motion: Motion{
			DeltaThreshold:  30.0,
			TrackingTimeout: "60s",
		},
		Clock: Clock{
			NTPServer: "pool.ntp.org",
		},
		HTTP: HTTP{
			Addr: ":8080",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults. An empty path yields
// the defaults. Fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvMQTTUsername); ok {
		cfg.Switch.Username = v
	}
	if v, ok := os.LookupEnv(EnvMQTTPassword); ok {
		cfg.Switch.Password = v
	}
}

// Validate checks the configuration for contradictions the daemon cannot
// work around.
func (c Config) Validate() error {
	switch c.Switch.Transport {
	case "http":
		if c.Switch.Address == "" {
			return fmt.Errorf("switch: http transport requires an address")
		}
	case "mqtt":
		if c.Switch.Broker == "" {
			return fmt.Errorf("switch: mqtt transport requires a broker")
		}
		if c.Switch.Topic == "" {
			return fmt.Errorf("switch: mqtt transport requires a topic")
		}
	default:
		return fmt.Errorf("switch: unknown transport %q", c.Switch.Transport)
	}

	if c.Motion.DeltaThreshold <= 0 {
		return fmt.Errorf("motion: delta threshold must be positive")
	}
	timeout, err := c.Motion.Timeout()
	if err != nil {
		return fmt.Errorf("motion: parse tracking timeout: %w", err)
	}
	if timeout <= 0 {
		return fmt.Errorf("motion: tracking timeout must be positive")
	}

	if c.Sensor.Bus == "" {
		return fmt.Errorf("sensor: bus must not be empty")
	}
	if c.Clock.NTPServer == "" {
		return fmt.Errorf("clock: ntp server must not be empty")
	}
	if _, err := logx.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}
