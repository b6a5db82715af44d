package motion

import (
	"context"
	"fmt"
	"time"
)

const (
	// sampleInterval is the cadence of every state's run loop.
	sampleInterval = time.Second

	// Idle drains this many reads at this spacing on entry, flushing
	// transients left over from the previous mode.
	discardCount    = 10
	discardInterval = 500 * time.Millisecond

	trackingWindowSize = 30
	activeWindowSize   = 60
)

// idleState waits for a single large motion delta. No window: one jump
// above the threshold is enough to suspect motion.
type idleState struct {
	m *Machine
	session
}

func (s *idleState) enter(ctx context.Context) error {
	s.m.indicator.Calm()
	if err := s.m.sw.TurnOff(ctx); err != nil {
		return err
	}

	s.m.log.Info("discarding samples", "count", discardCount)
	for i := 0; i < discardCount; i++ {
		if _, err := s.m.sensor.Read(); err != nil {
			return fmt.Errorf("discard read: %w", err)
		}
		if err := s.m.sleep(ctx, discardInterval); err != nil {
			return err
		}
	}
	return nil
}

func (s *idleState) run(ctx context.Context) (Kind, error) {
	var prev *Sample
	for {
		cur, err := s.m.sensor.Read()
		if err != nil {
			return 0, fmt.Errorf("read sample: %w", err)
		}
		if prev != nil {
			delta := MaxDelta(cur, *prev)
			moving := delta > s.m.cfg.DeltaThreshold
			s.m.log.Debug("got maxdelta", "delta", delta)
			s.m.observer.DeltaObserved(delta, moving)
			if moving {
				return KindTracking, nil
			}
		}
		prev = &cur
		if err := s.m.sleep(ctx, sampleInterval); err != nil {
			return 0, err
		}
	}
}

// trackingState watches for the motion majority that confirms a candidate
// burst. It gives up and returns to Idle after the tracking timeout.
type trackingState struct {
	m   *Machine
	win *Window
	session
}

func (s *trackingState) enter(ctx context.Context) error {
	s.m.indicator.Candidate()
	s.win.Reset()
	return nil
}

func (s *trackingState) run(ctx context.Context) (Kind, error) {
	var prev *Sample
	for {
		// The escape hatch comes first so a stalled candidate cannot
		// dwell here past the timeout.
		if s.elapsed(s.m.now()) > s.m.cfg.TrackingTimeout {
			s.m.log.Info("no sustained motion, giving up")
			return KindIdle, nil
		}

		cur, err := s.m.sensor.Read()
		if err != nil {
			return 0, fmt.Errorf("read sample: %w", err)
		}
		if prev != nil {
			delta := MaxDelta(cur, *prev)
			moving := delta > s.m.cfg.DeltaThreshold
			s.m.log.Debug("got maxdelta", "delta", delta)
			s.m.observer.DeltaObserved(delta, moving)
			if s.win.Record(moving) > s.win.Capacity()/2 {
				return KindActive, nil
			}
		}
		prev = &cur
		if err := s.m.sleep(ctx, sampleInterval); err != nil {
			return 0, err
		}
	}
}

// activeState holds the switch on while motion is sustained. The drop
// condition is evaluated only once the window has been fully written, so a
// fresh activation cannot bounce straight back to Idle.
type activeState struct {
	m         *Machine
	win       *Window
	populated bool
	session
}

func (s *activeState) enter(ctx context.Context) error {
	s.m.indicator.Confirmed()
	if err := s.m.sw.TurnOn(ctx); err != nil {
		return err
	}
	s.win.Reset()
	s.populated = false
	return nil
}

func (s *activeState) run(ctx context.Context) (Kind, error) {
	var prev *Sample
	for {
		cur, err := s.m.sensor.Read()
		if err != nil {
			return 0, fmt.Errorf("read sample: %w", err)
		}
		if prev != nil {
			delta := MaxDelta(cur, *prev)
			moving := delta > s.m.cfg.DeltaThreshold
			s.m.log.Debug("got maxdelta", "delta", delta)
			s.m.observer.DeltaObserved(delta, moving)

			count := s.win.Record(moving)
			if !s.populated && s.win.Cursor() == 0 {
				s.populated = true
				s.m.log.Info("collected sufficient samples")
			}
			if s.populated && count < s.win.Capacity()/2 {
				return KindIdle, nil
			}
		}
		prev = &cur
		if err := s.m.sleep(ctx, sampleInterval); err != nil {
			return 0, err
		}
	}
}
