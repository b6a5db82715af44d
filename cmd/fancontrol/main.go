// Command fancontrol watches a gyroscope for sustained motion and switches
// a Tasmota power outlet on while the motion lasts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/larsks/fancontrol/internal/clock"
	"github.com/larsks/fancontrol/internal/config"
	"github.com/larsks/fancontrol/internal/indicator"
	"github.com/larsks/fancontrol/internal/logx"
	"github.com/larsks/fancontrol/internal/motion"
	"github.com/larsks/fancontrol/internal/netmon"
	"github.com/larsks/fancontrol/internal/sensor"
	"github.com/larsks/fancontrol/internal/status"
	"github.com/larsks/fancontrol/internal/tasmota"
	"github.com/larsks/fancontrol/internal/web"
)

// switchOffTimeout bounds the forced switch-off during shutdown so an
// unreachable device cannot wedge the daemon.
const switchOffTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warning, error)")
	httpAddr := flag.String("http", "", `HTTP status address (overrides config, "off" disables)`)
	printSample := flag.Bool("print-sample", false, "Read one gyroscope sample and exit")
	printSwitch := flag.Bool("print-switch", false, "Query switch power state and exit")

	flag.Parse()

	// Credentials may come from a .env file next to the binary; absence is
	// fine since they normally arrive through the unit file.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	applyOverrides(&cfg, *logLevel, *httpAddr)

	level, err := logx.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	logger := logx.New(os.Stderr, level)

	if err := run(cfg, logger, *printSample, *printSwitch); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// applyOverrides folds command-line flags into the loaded config.
func applyOverrides(cfg *config.Config, logLevel, httpAddr string) {
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	switch httpAddr {
	case "":
	case "off":
		cfg.HTTP.Addr = ""
	default:
		cfg.HTTP.Addr = httpAddr
	}
}

func run(cfg config.Config, logger *slog.Logger, printSample, printSwitch bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Diagnostic modes
	if printSample {
		return runPrintSample(cfg)
	}
	if printSwitch {
		return runPrintSwitch(ctx, cfg, logger)
	}

	imu, err := sensor.NewMPU6050(cfg.Sensor.Bus, cfg.Sensor.Address)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer imu.Close()

	led, err := indicator.NewRGB(cfg.Indicator.Chip, cfg.Indicator.Red, cfg.Indicator.Green, cfg.Indicator.Blue, logx.Named(logger, "indicator"))
	if err != nil {
		return fmt.Errorf("init indicator: %w", err)
	}
	defer led.Close()

	transport, closeTransport, err := newTransport(cfg.Switch)
	if err != nil {
		return err
	}
	defer closeTransport()

	sw := tasmota.NewSwitch(transport, logx.Named(logger, "switch"))

	timeout, err := cfg.Motion.Timeout()
	if err != nil {
		return fmt.Errorf("parse tracking timeout: %w", err)
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		DeltaThreshold:  cfg.Motion.DeltaThreshold,
		TrackingTimeout: timeout,
		Switch:          describeSwitch(cfg.Switch),
		NTPServer:       cfg.Clock.NTPServer,
		HTTPAddr:        cfg.HTTP.Addr,
	})

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http server error", "error", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Info("http status server listening", "addr", cfg.HTTP.Addr)
	}

	clk := clock.New(clock.NewNTPSyncer(cfg.Clock.NTPServer), logx.Named(logger, "clock"))
	mon := netmon.New(netmon.InterfaceProber{}, logx.Named(logger, "netmon"))

	machine := motion.NewMachine(motion.Config{
		DeltaThreshold:  cfg.Motion.DeltaThreshold,
		TrackingTimeout: timeout,
	}, motion.Deps{
		Sensor: motion.SensorFunc(func() (motion.Sample, error) {
			x, y, z, err := imu.Read()
			if err != nil {
				return motion.Sample{}, err
			}
			return motion.Sample{X: x, Y: y, Z: z}, nil
		}),
		Indicator: led,
		Switch:    sw,
		Observer:  tracker,
		Log:       logx.Named(logger, "motion"),
	})

	logger.Info("started",
		"switch", describeSwitch(cfg.Switch),
		"threshold", cfg.Motion.DeltaThreshold,
		"timeout", timeout)

	led.Off()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return clk.Run(gctx) })
	g.Go(func() error { return mon.Run(gctx) })
	g.Go(func() error {
		select {
		case <-clk.Valid():
			tracker.SetTimeValid(true)
		case <-gctx.Done():
		}
		return nil
	})
	g.Go(func() error {
		// The sensor is local but the switch is not, so the machine holds
		// off until the network is up.
		select {
		case <-mon.Ready():
			tracker.SetNetworkReady(true)
		case <-gctx.Done():
			return gctx.Err()
		}
		return machine.Run(gctx)
	})

	err = g.Wait()

	// Restore default signal handling so a second interrupt kills a stuck
	// shutdown outright.
	stop()

	logger.Info("shutting down, forcing switch off")
	offCtx, cancel := context.WithTimeout(context.Background(), switchOffTimeout)
	defer cancel()
	if offErr := sw.TurnOff(offCtx); offErr != nil {
		logger.Error("could not force switch off", "error", offErr)
	}
	led.Off()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runPrintSample(cfg config.Config) error {
	imu, err := sensor.NewMPU6050(cfg.Sensor.Bus, cfg.Sensor.Address)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer imu.Close()

	x, y, z, err := imu.Read()
	if err != nil {
		return fmt.Errorf("read sensor: %w", err)
	}
	fmt.Printf("x=%.2f y=%.2f z=%.2f\n", x, y, z)
	return nil
}

func runPrintSwitch(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	transport, closeTransport, err := newTransport(cfg.Switch)
	if err != nil {
		return err
	}
	defer closeTransport()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sw := tasmota.NewSwitch(transport, logx.Named(logger, "switch"))
	on, err := sw.IsOn(ctx)
	if err != nil {
		return fmt.Errorf("query switch: %w", err)
	}
	fmt.Println(powerString(on))
	return nil
}

// newTransport builds the Tasmota transport selected by the config. The
// returned func releases any connection it holds.
func newTransport(cfg config.Switch) (tasmota.Transport, func(), error) {
	switch cfg.Transport {
	case "http":
		return tasmota.NewHTTPTransport(cfg.Address), func() {}, nil
	case "mqtt":
		t, err := tasmota.NewMQTTTransport(tasmota.MQTTOptions{
			Broker:   cfg.Broker,
			Topic:    cfg.Topic,
			ClientID: cfg.ClientID,
			Username: cfg.Username,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect mqtt: %w", err)
		}
		return t, func() { t.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown switch transport %q", cfg.Transport)
	}
}

func describeSwitch(cfg config.Switch) string {
	if cfg.Transport == "mqtt" {
		return fmt.Sprintf("mqtt %s (topic %s)", cfg.Broker, cfg.Topic)
	}
	return fmt.Sprintf("http %s", cfg.Address)
}

func powerString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
