package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Sensor.Bus != "1" {
		t.Errorf("sensor bus: got %q, want 1", cfg.Sensor.Bus)
	}
	if cfg.Sensor.Address != 0x68 {
		t.Errorf("sensor address: got %#x, want 0x68", cfg.Sensor.Address)
	}
	if cfg.Indicator.Chip != "gpiochip0" {
		t.Errorf("indicator chip: got %q, want gpiochip0", cfg.Indicator.Chip)
	}
	if cfg.Switch.Transport != "http" {
		t.Errorf("switch transport: got %q, want http", cfg.Switch.Transport)
	}
	if cfg.Motion.DeltaThreshold != 30.0 {
		t.Errorf("delta threshold: got %v, want 30", cfg.Motion.DeltaThreshold)
	}
	timeout, err := cfg.Motion.Timeout()
	if err != nil {
		t.Fatalf("Timeout: %v", err)
	}
	if timeout != time.Minute {
		t.Errorf("tracking timeout: got %v, want 1m", timeout)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("log level: got %q, want info", cfg.Logging.Level)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := writeConfig(t, `
sensor:
  bus: "3"
switch:
  transport: mqtt
  broker: tcp://192.168.1.200:1883
  topic: fan
motion:
  delta_threshold: 12.5
  tracking_timeout: 90s
http:
  addr: ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Sensor.Bus != "3" {
		t.Errorf("sensor bus: got %q, want 3", cfg.Sensor.Bus)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Sensor.Address != 0x68 {
		t.Errorf("sensor address: got %#x, want 0x68", cfg.Sensor.Address)
	}
	if cfg.Switch.Transport != "mqtt" {
		t.Errorf("switch transport: got %q, want mqtt", cfg.Switch.Transport)
	}
	if cfg.Switch.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("switch broker: got %q", cfg.Switch.Broker)
	}
	if cfg.Motion.DeltaThreshold != 12.5 {
		t.Errorf("delta threshold: got %v, want 12.5", cfg.Motion.DeltaThreshold)
	}
	timeout, _ := cfg.Motion.Timeout()
	if timeout != 90*time.Second {
		t.Errorf("tracking timeout: got %v, want 90s", timeout)
	}
	if cfg.HTTP.Addr != "" {
		t.Errorf("http addr: got %q, want empty", cfg.HTTP.Addr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := writeConfig(t, "switch: [not a map")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestEnvOverridesCredentials(t *testing.T) {
	path := writeConfig(t, `
switch:
  transport: mqtt
  broker: tcp://broker:1883
  topic: fan
  username: filed
  password: filed
`)
	t.Setenv(EnvMQTTUsername, "enviro")
	t.Setenv(EnvMQTTPassword, "hunter2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Switch.Username != "enviro" {
		t.Errorf("username: got %q, want enviro", cfg.Switch.Username)
	}
	if cfg.Switch.Password != "hunter2" {
		t.Errorf("password: got %q, want hunter2", cfg.Switch.Password)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "unknown transport",
			mutate: func(c *Config) { c.Switch.Transport = "carrier-pigeon" },
			want:   "unknown transport",
		},
		{
			name:   "http without address",
			mutate: func(c *Config) { c.Switch.Address = "" },
			want:   "requires an address",
		},
		{
			name: "mqtt without broker",
			mutate: func(c *Config) {
				c.Switch.Transport = "mqtt"
				c.Switch.Broker = ""
			},
			want: "requires a broker",
		},
		{
			name: "mqtt without topic",
			mutate: func(c *Config) {
				c.Switch.Transport = "mqtt"
				c.Switch.Broker = "tcp://broker:1883"
				c.Switch.Topic = ""
			},
			want: "requires a topic",
		},
		{
			name:   "bad timeout",
			mutate: func(c *Config) { c.Motion.TrackingTimeout = "sixty seconds" },
			want:   "parse tracking timeout",
		},
		{
			name:   "negative timeout",
			mutate: func(c *Config) { c.Motion.TrackingTimeout = "-5s" },
			want:   "must be positive",
		},
		{
			name:   "zero threshold",
			mutate: func(c *Config) { c.Motion.DeltaThreshold = 0 },
			want:   "must be positive",
		},
		{
			name:   "empty bus",
			mutate: func(c *Config) { c.Sensor.Bus = "" },
			want:   "bus must not be empty",
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Logging.Level = "chatty" },
			want:   "unknown log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}
