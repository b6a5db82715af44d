package motion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/larsks/fancontrol/internal/logx"
)

// state is the per-kind behavior driven by the Machine. begin and end are
// the shared session bookkeeping, promoted from the embedded session.
type state interface {
	begin(now time.Time)
	end(now time.Time)
	enter(ctx context.Context) error
	run(ctx context.Context) (Kind, error)
}

// Machine owns the current state and the collaborators the states use.
// It runs on a single goroutine; states never run concurrently.
type Machine struct {
	cfg       Config
	sensor    Sensor
	indicator Indicator
	sw        Switch
	observer  Observer
	log       *slog.Logger
	now       func() time.Time
	sleep     func(context.Context, time.Duration) error

	current Kind
	states  map[Kind]state
}

// Deps bundles the machine's collaborators. Sensor, Indicator, and Switch
// are required; the rest default to production implementations.
type Deps struct {
	Sensor    Sensor
	Indicator Indicator
	Switch    Switch
	Observer  Observer
	Log       *slog.Logger
	Now       func() time.Time
	Sleep     func(context.Context, time.Duration) error
}

// NewMachine creates a machine starting in Idle.
func NewMachine(cfg Config, deps Deps) *Machine {
	if cfg.DeltaThreshold == 0 {
		cfg.DeltaThreshold = DefaultDeltaThreshold
	}
	if cfg.TrackingTimeout == 0 {
		cfg.TrackingTimeout = DefaultTrackingTimeout
	}

	m := &Machine{
		cfg:       cfg,
		sensor:    deps.Sensor,
		indicator: deps.Indicator,
		sw:        deps.Switch,
		observer:  deps.Observer,
		log:       deps.Log,
		now:       deps.Now,
		sleep:     deps.Sleep,
		current:   KindIdle,
	}
	if m.observer == nil {
		m.observer = nopObserver{}
	}
	if m.log == nil {
		m.log = logx.Discard()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.sleep == nil {
		m.sleep = sleepCtx
	}

	m.states = map[Kind]state{
		KindIdle:     &idleState{m: m},
		KindTracking: &trackingState{m: m, win: NewWindow(trackingWindowSize)},
		KindActive:   &activeState{m: m, win: NewWindow(activeWindowSize)},
	}
	return m
}

// Current returns the state the machine is in or about to enter.
func (m *Machine) Current() Kind { return m.current }

// Run drives the state loop until a state fails or ctx is cancelled.
// There is no terminal state; a nil return never happens.
func (m *Machine) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, err := m.step(ctx)
		if err != nil {
			return err
		}
		m.current = next
	}
}

// step enters the current state, runs it, and returns the next kind. The
// exit bookkeeping is deferred so it happens on every path out of run,
// including errors and cancellation.
func (m *Machine) step(ctx context.Context) (Kind, error) {
	st := m.states[m.current]

	now := m.now()
	m.observer.StateChanged(m.current, now)
	m.log.Info("entering state", "state", m.current)

	st.begin(now)
	if err := st.enter(ctx); err != nil {
		st.end(m.now())
		return 0, fmt.Errorf("enter %s: %w", m.current, err)
	}
	defer func() {
		st.end(m.now())
		m.log.Info("leaving state", "state", m.current)
	}()

	next, err := st.run(ctx)
	if err != nil {
		return 0, fmt.Errorf("run %s: %w", m.current, err)
	}
	return next, nil
}

type nopObserver struct{}

func (nopObserver) StateChanged(Kind, time.Time) {}
func (nopObserver) DeltaObserved(float64, bool)  {}

// sleepCtx pauses for d or until ctx is cancelled.
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
