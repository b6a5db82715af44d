//go:build !linux

package clock

import (
	"context"
	"errors"
)

// NTPSyncer is only able to set the system clock on Linux.
type NTPSyncer struct {
	server string
}

// NewNTPSyncer creates a syncer that will fail on non-Linux platforms.
func NewNTPSyncer(server string) *NTPSyncer {
	return &NTPSyncer{server: server}
}

// Sync returns an error on non-Linux platforms.
func (s *NTPSyncer) Sync(ctx context.Context) error {
	return errors.New("clock: not supported on this platform (requires Linux)")
}
