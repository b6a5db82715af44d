// Package netmon waits for the host to come up on the network. It exists
// for the boot race on headless boards: the daemon starts before DHCP has
// finished, and the switch is unreachable until an address arrives.
package netmon

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/larsks/fancontrol/internal/logx"
)

// pollInterval is how often the prober is consulted while waiting.
const pollInterval = time.Second

// Prober reports whether the host currently has a usable network.
type Prober interface {
	Connected() bool
}

// Monitor polls a Prober until the network is up, signals readiness, and
// stops. Connectivity lost after that first signal is not detected.
type Monitor struct {
	prober Prober
	log    *slog.Logger
	sleep  func(context.Context, time.Duration) error

	once  sync.Once
	ready chan struct{}
}

// New creates a Monitor. A nil logger discards output.
func New(p Prober, log *slog.Logger) *Monitor {
	if log == nil {
		log = logx.Discard()
	}
	return &Monitor{
		prober: p,
		log:    log,
		sleep:  sleepCtx,
		ready:  make(chan struct{}),
	}
}

// Ready returns a channel that is closed once the network is up.
func (m *Monitor) Ready() <-chan struct{} { return m.ready }

// NetworkReady reports whether readiness has been signalled.
func (m *Monitor) NetworkReady() bool {
	select {
	case <-m.ready:
		return true
	default:
		return false
	}
}

// Run polls until the network is connected, then returns nil. Unlike the
// other background tasks it terminates on success.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("waiting for network")
	for {
		if m.prober.Connected() {
			m.log.Info("network is connected")
			m.once.Do(func() { close(m.ready) })
			return nil
		}
		if err := m.sleep(ctx, pollInterval); err != nil {
			return err
		}
	}
}

// InterfaceProber scans the kernel's interface list for a global unicast
// address on an interface that is up and not loopback.
type InterfaceProber struct{}

// Connected implements Prober.
func (InterfaceProber) Connected() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ipnet.IP.IsGlobalUnicast() {
				return true
			}
		}
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
