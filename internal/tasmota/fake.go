package tasmota

import (
	"context"
	"errors"
	"sync"
)

// ErrUnreachable is the failure a FakeTransport reports while its Failures
// budget lasts.
var ErrUnreachable = errors.New("device unreachable")

// FakeTransport records delivery attempts for test assertions and can
// simulate an unreachable device or a slow one.
type FakeTransport struct {
	mu sync.Mutex

	// Commands contains every delivery attempt, in order, including the
	// ones that failed.
	Commands []string

	// Reply is returned for successful commands. When nil the transport
	// answers like a device whose relay is on.
	Reply []byte

	// Failures is how many initial attempts fail with ErrUnreachable.
	Failures int

	// Gate, when set, stalls each delivery until a value is received,
	// letting tests hold a command in flight.
	Gate chan struct{}

	inFlight    int
	maxInFlight int
}

// NewFakeTransport creates a FakeTransport for testing.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

// Do records the attempt and replies according to the fake's settings.
func (f *FakeTransport) Do(ctx context.Context, cmnd string) ([]byte, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.Commands = append(f.Commands, cmnd)
	gate := f.Gate
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Failures > 0 {
		f.Failures--
		return nil, ErrUnreachable
	}
	if f.Reply != nil {
		return f.Reply, nil
	}
	return []byte(`{"POWER":"ON"}`), nil
}

// MaxInFlight reports the most deliveries ever executing at once.
func (f *FakeTransport) MaxInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// InFlight reports how many deliveries are executing right now.
func (f *FakeTransport) InFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inFlight
}

// Sent returns a copy of the attempt log.
func (f *FakeTransport) Sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Commands))
	copy(out, f.Commands)
	return out
}

// Reset clears the recorded attempts.
func (f *FakeTransport) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Commands = nil
	f.inFlight = 0
	f.maxInFlight = 0
}
