package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	State         string     `json:"state"`
	StateSince    string     `json:"state_since,omitempty"`
	SwitchOn      bool       `json:"switch_on"`
	LastDelta     *float64   `json:"last_delta,omitempty"`
	Moving        bool       `json:"moving"`
	NetworkReady  bool       `json:"network_ready"`
	TimeValid     bool       `json:"time_valid"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	Counts        CountsJSON `json:"state_counts"`
	Config        ConfigJSON `json:"config"`
}

// CountsJSON is the JSON representation of state entry counts.
type CountsJSON struct {
	Idle     int `json:"idle"`
	Tracking int `json:"tracking"`
	Active   int `json:"active"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	DeltaThreshold         float64 `json:"delta_threshold"`
	TrackingTimeoutSeconds int64   `json:"tracking_timeout_seconds"`
	Switch                 string  `json:"switch"`
	NTPServer              string  `json:"ntp_server"`
	HTTPAddr               string  `json:"http_addr,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	// Until the machine reports its first state the zero Kind would read
	// as idle, which has not actually been entered yet.
	state := snap.State.String()
	if snap.StateSince.IsZero() {
		state = "starting"
	}

	inner := StatusInner{
		State:         state,
		SwitchOn:      snap.SwitchOn(),
		Moving:        snap.Moving,
		NetworkReady:  snap.NetworkReady,
		TimeValid:     snap.TimeValid,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Counts: CountsJSON{
			Idle:     snap.Counts.Idle,
			Tracking: snap.Counts.Tracking,
			Active:   snap.Counts.Active,
		},
		Config: ConfigJSON{
			DeltaThreshold:         snap.Config.DeltaThreshold,
			TrackingTimeoutSeconds: int64(snap.Config.TrackingTimeout.Seconds()),
			Switch:                 snap.Config.Switch,
			NTPServer:              snap.Config.NTPServer,
			HTTPAddr:               snap.Config.HTTPAddr,
		},
	}
	if !snap.StateSince.IsZero() {
		inner.StateSince = snap.StateSince.UTC().Format(time.RFC3339)
	}
	if snap.HaveDelta {
		d := snap.LastDelta
		inner.LastDelta = &d
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}
