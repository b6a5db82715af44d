// Package tasmota drives a Tasmota smart switch over HTTP or MQTT.
package tasmota

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/larsks/fancontrol/internal/logx"
)

// Console commands understood by the device.
const (
	CmdPowerOn     = "Power On"
	CmdPowerOff    = "Power Off"
	CmdPowerStatus = "Power Status"
)

// retryInterval is the pause between delivery attempts while the device is
// unreachable.
const retryInterval = 5 * time.Second

// Transport delivers one command to the device and returns the raw reply.
// A Transport does not retry; that is the Switch's job.
type Transport interface {
	Do(ctx context.Context, cmnd string) ([]byte, error)
}

// Switch layers the delivery guarantees callers rely on over a Transport:
// at most one command is in flight, queued callers proceed in submission
// order, and a failed send is retried until the device acknowledges or the
// context ends. Transport failures never surface to the caller.
type Switch struct {
	transport Transport
	log       *slog.Logger
	sleep     func(context.Context, time.Duration) error

	// sem holds the single in-flight slot. Blocked senders are woken in
	// FIFO order, which preserves submission order across callers.
	sem chan struct{}
}

// NewSwitch wraps the transport. A nil logger discards output.
func NewSwitch(t Transport, log *slog.Logger) *Switch {
	if log == nil {
		log = logx.Discard()
	}
	return &Switch{
		transport: t,
		log:       log,
		sleep:     sleepCtx,
		sem:       make(chan struct{}, 1),
	}
}

// TurnOn powers the device on. It returns only once the device has
// acknowledged or ctx has ended.
func (s *Switch) TurnOn(ctx context.Context) error {
	s.log.Info("turning switch on")
	_, err := s.request(ctx, CmdPowerOn)
	return err
}

// TurnOff powers the device off under the same delivery rules as TurnOn.
func (s *Switch) TurnOff(ctx context.Context) error {
	s.log.Info("turning switch off")
	_, err := s.request(ctx, CmdPowerOff)
	return err
}

// powerReply is the JSON document Tasmota returns for Power commands.
type powerReply struct {
	Power string `json:"POWER"`
}

// IsOn queries the device's relay state.
func (s *Switch) IsOn(ctx context.Context) (bool, error) {
	reply, err := s.request(ctx, CmdPowerStatus)
	if err != nil {
		return false, err
	}
	var pr powerReply
	if err := json.Unmarshal(reply, &pr); err != nil {
		return false, fmt.Errorf("parse power reply: %w", err)
	}
	return pr.Power == "ON", nil
}

func (s *Switch) request(ctx context.Context, cmnd string) ([]byte, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-s.sem }()

	for {
		reply, err := s.transport.Do(ctx, cmnd)
		if err == nil {
			s.log.Debug("command acknowledged", "cmnd", cmnd)
			return reply, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.log.Error("switch command failed, will retry", "cmnd", cmnd, "error", err)
		if err := s.sleep(ctx, retryInterval); err != nil {
			return nil, err
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
