package clock

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptSyncer returns the scripted errors in order, then succeeds.
type scriptSyncer struct {
	errs  []error
	calls int
}

func (s *scriptSyncer) Sync(ctx context.Context) error {
	var err error
	if s.calls < len(s.errs) {
		err = s.errs[s.calls]
	}
	s.calls++
	return err
}

func TestClockRetriesUntilFirstSync(t *testing.T) {
	errNTP := errors.New("no route to host")
	sync := &scriptSyncer{errs: []error{errNTP, errNTP, nil}}
	c := New(sync, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sleeps []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		// The long resynchronization wait means the first sync landed;
		// stop the loop there.
		if d == resyncInterval {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	err := c.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	if sync.calls != 3 {
		t.Errorf("sync attempts %d, want 3", sync.calls)
	}

	want := []time.Duration{retryInterval, retryInterval, resyncInterval}
	if len(sleeps) != len(want) {
		t.Fatalf("sleeps %v, want %v", sleeps, want)
	}
	for i, d := range sleeps {
		if d != want[i] {
			t.Errorf("sleep %d was %v, want %v", i, d, want[i])
		}
	}
}

func TestClockSignalsValidity(t *testing.T) {
	c := New(&scriptSyncer{}, nil)

	if c.TimeValid() {
		t.Error("TimeValid = true before any synchronization")
	}
	select {
	case <-c.Valid():
		t.Error("Valid channel closed before any synchronization")
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resyncs := 0
	c.sleep = func(ctx context.Context, d time.Duration) error {
		resyncs++
		// Let the loop complete two successful rounds to show the valid
		// channel is closed exactly once.
		if resyncs == 2 {
			cancel()
			return ctx.Err()
		}
		return nil
	}

	err := c.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	if !c.TimeValid() {
		t.Error("TimeValid = false after a successful synchronization")
	}
	select {
	case <-c.Valid():
	default:
		t.Error("Valid channel not closed after a successful synchronization")
	}
}

func TestClockReturnsContextErrorFromFailedSync(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sync := &scriptSyncer{errs: []error{errors.New("interrupted")}}
	c := New(sync, nil)
	cancel()

	err := c.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	if c.TimeValid() {
		t.Error("TimeValid = true after a failed synchronization")
	}
}
