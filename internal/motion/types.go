// Package motion contains the motion classification state machine.
// The machine itself performs no I/O of its own: the sensor, indicator, and
// switch are injected behind small interfaces, and the clock and sleep
// functions are injectable so tests run without waiting.
package motion

import (
	"context"
	"math"
	"time"
)

// Kind identifies one of the classification states.
type Kind int

const (
	// KindIdle means no motion has been suspected recently.
	KindIdle Kind = iota
	// KindTracking means a candidate motion burst is being confirmed.
	KindTracking
	// KindActive means sustained motion is confirmed and the switch is on.
	KindActive
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindTracking:
		return "tracking"
	case KindActive:
		return "active"
	default:
		return "unknown"
	}
}

// Sample is a single gyroscope reading: angular rates for the three axes,
// in the same units as Config.DeltaThreshold.
type Sample struct {
	X float64
	Y float64
	Z float64
}

// MaxDelta returns the largest per-axis absolute difference between two
// consecutive samples. It is symmetric in its arguments.
func MaxDelta(a, b Sample) float64 {
	d := math.Abs(a.X - b.X)
	if dy := math.Abs(a.Y - b.Y); dy > d {
		d = dy
	}
	if dz := math.Abs(a.Z - b.Z); dz > d {
		d = dz
	}
	return d
}

// Sensor supplies gyroscope samples to the state machine.
type Sensor interface {
	Read() (Sample, error)
}

// SensorFunc adapts a function to the Sensor interface.
type SensorFunc func() (Sample, error)

// Read calls f.
func (f SensorFunc) Read() (Sample, error) { return f() }

// Indicator shows the current classification to the user. Calls must be
// prompt and idempotent; implementations may not fail the caller.
type Indicator interface {
	Calm()
	Candidate()
	Confirmed()
	Off()
}

// Switch controls the remote power device. Implementations retry failed
// commands internally and return only on success or context cancellation,
// so callers must not assume bounded latency.
type Switch interface {
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
}

// Observer receives state machine updates, typically for a status page.
// Methods are called from the machine's goroutine and must be cheap.
type Observer interface {
	StateChanged(k Kind, at time.Time)
	DeltaObserved(delta float64, moving bool)
}

// Config holds the two tuning constants. Zero values select the defaults.
type Config struct {
	// DeltaThreshold is the motion delta above which a sample pair counts
	// as movement, in the sensor's angular rate units.
	DeltaThreshold float64

	// TrackingTimeout bounds how long Tracking may wait for sustained
	// motion before falling back to Idle.
	TrackingTimeout time.Duration
}

// Defaults for Config.
const (
	DefaultDeltaThreshold  = 30.0
	DefaultTrackingTimeout = 60 * time.Second
)

// session tracks per-activation bookkeeping shared by every state. It is
// reset on each entry and never carried across transitions.
type session struct {
	enteredAt time.Time
	exitedAt  time.Time
	active    bool
}

func (s *session) begin(now time.Time) {
	*s = session{enteredAt: now, active: true}
}

func (s *session) end(now time.Time) {
	s.exitedAt = now
	s.active = false
}

// elapsed returns the time spent in the state, or zero when not active.
func (s *session) elapsed(now time.Time) time.Duration {
	if !s.active {
		return 0
	}
	return now.Sub(s.enteredAt)
}
