// Package status provides a thread-safe status tracker for the fancontrol
// daemon. The motion machine feeds it as an observer; HTTP handlers read it.
package status

import (
	"sync"
	"time"

	"github.com/larsks/fancontrol/internal/motion"
)

// Config contains daemon configuration for display.
type Config struct {
	DeltaThreshold  float64
	TrackingTimeout time.Duration
	Switch          string
	NTPServer       string
	HTTPAddr        string
}

// Counts tallies how many times each state has been entered.
type Counts struct {
	Idle     int
	Tracking int
	Active   int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State      motion.Kind
	StateSince time.Time
	Counts     Counts

	// LastDelta is the most recent motion delta; HaveDelta is false until
	// the first one arrives.
	LastDelta float64
	Moving    bool
	HaveDelta bool

	NetworkReady bool
	TimeValid    bool

	StartTime time.Time
	Now       time.Time
	Config    Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// SwitchOn reports whether the machine is holding the switch on.
func (s Snapshot) SwitchOn() bool {
	return s.State == motion.KindActive
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// StateChanged records a state entry. Called by the motion machine on
// every transition.
func (t *Tracker) StateChanged(k motion.Kind, at time.Time) {
	t.mu.Lock()
	t.snap.State = k
	t.snap.StateSince = at
	switch k {
	case motion.KindIdle:
		t.snap.Counts.Idle++
	case motion.KindTracking:
		t.snap.Counts.Tracking++
	case motion.KindActive:
		t.snap.Counts.Active++
	}
	t.mu.Unlock()
}

// DeltaObserved records the most recent motion delta.
func (t *Tracker) DeltaObserved(delta float64, moving bool) {
	t.mu.Lock()
	t.snap.LastDelta = delta
	t.snap.Moving = moving
	t.snap.HaveDelta = true
	t.mu.Unlock()
}

// SetNetworkReady records that the network has come up.
func (t *Tracker) SetNetworkReady(ready bool) {
	t.mu.Lock()
	t.snap.NetworkReady = ready
	t.mu.Unlock()
}

// SetTimeValid records that the clock has been synchronized.
func (t *Tracker) SetTimeValid(valid bool) {
	t.mu.Lock()
	t.snap.TimeValid = valid
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
