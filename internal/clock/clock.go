// Package clock keeps the system time synchronized and reports when it
// first becomes trustworthy. Small boards often have no battery-backed
// clock, so timestamps are garbage until the first synchronization.
package clock

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/larsks/fancontrol/internal/logx"
)

const (
	// retryInterval is the wait after a failed synchronization.
	retryInterval = 10 * time.Second

	// resyncInterval is the pace once the clock has been set.
	resyncInterval = 4 * time.Hour
)

// Syncer sets the system time from an external source.
type Syncer interface {
	Sync(ctx context.Context) error
}

// Clock drives a Syncer forever: retry quickly until the first success,
// then resynchronize at a relaxed pace.
type Clock struct {
	syncer Syncer
	log    *slog.Logger
	sleep  func(context.Context, time.Duration) error

	once  sync.Once
	valid chan struct{}
}

// New creates a Clock. A nil logger discards output.
func New(s Syncer, log *slog.Logger) *Clock {
	if log == nil {
		log = logx.Discard()
	}
	return &Clock{
		syncer: s,
		log:    log,
		sleep:  sleepCtx,
		valid:  make(chan struct{}),
	}
}

// Valid returns a channel that is closed once the clock has been set. It
// never closes a second time; later resynchronizations are silent.
func (c *Clock) Valid() <-chan struct{} { return c.valid }

// TimeValid reports whether at least one synchronization has succeeded.
func (c *Clock) TimeValid() bool {
	select {
	case <-c.valid:
		return true
	default:
		return false
	}
}

// Run synchronizes until ctx is cancelled. It never returns nil.
func (c *Clock) Run(ctx context.Context) error {
	for {
		if err := c.syncer.Sync(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn("failed to set time", "error", err)
			if err := c.sleep(ctx, retryInterval); err != nil {
				return err
			}
			continue
		}

		c.once.Do(func() { close(c.valid) })
		c.log.Info("time synchronized", "now", time.Now().Format(time.RFC3339))
		if err := c.sleep(ctx, resyncInterval); err != nil {
			return err
		}
	}
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
