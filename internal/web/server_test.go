package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/larsks/fancontrol/internal/motion"
	"github.com/larsks/fancontrol/internal/status"
)

func newTestServer(t *testing.T) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		DeltaThreshold:  30.0,
		TrackingTimeout: time.Minute,
		Switch:          "http 192.168.1.20",
		NTPServer:       "pool.ntp.org",
		HTTPAddr:        ":8080",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, tr
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.StateChanged(motion.KindIdle, time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC))
	tr.StateChanged(motion.KindTracking, time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC))
	tr.StateChanged(motion.KindActive, time.Date(2026, 1, 1, 0, 2, 0, 0, time.UTC))
	tr.DeltaObserved(42.5, true)
	tr.SetNetworkReady(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.State != "active" {
		t.Errorf("state: got %q, want active", sj.Status.State)
	}
	if !sj.Status.SwitchOn {
		t.Error("expected switch_on=true in active state")
	}
	if sj.Status.LastDelta == nil || *sj.Status.LastDelta != 42.5 {
		t.Errorf("last_delta: got %v, want 42.5", sj.Status.LastDelta)
	}
	if !sj.Status.Moving {
		t.Error("expected moving=true")
	}
	if !sj.Status.NetworkReady {
		t.Error("expected network_ready=true")
	}
	if sj.Status.TimeValid {
		t.Error("expected time_valid=false")
	}
	if sj.Status.Counts.Idle != 1 || sj.Status.Counts.Tracking != 1 || sj.Status.Counts.Active != 1 {
		t.Errorf("counts: got %+v", sj.Status.Counts)
	}
	if sj.Status.Config.DeltaThreshold != 30.0 {
		t.Errorf("config.delta_threshold: got %v, want 30", sj.Status.Config.DeltaThreshold)
	}
	if sj.Status.Config.Switch != "http 192.168.1.20" {
		t.Errorf("config.switch: got %q", sj.Status.Config.Switch)
	}
}

func TestJSONStartingBeforeFirstState(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	json.NewDecoder(resp.Body).Decode(&sj)

	if sj.Status.State != "starting" {
		t.Errorf("state before first entry: got %q, want starting", sj.Status.State)
	}
	if sj.Status.SwitchOn {
		t.Error("expected switch_on=false before first entry")
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t)
	tr.StateChanged(motion.KindTracking, time.Date(2026, 1, 1, 0, 1, 0, 0, time.UTC))

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "tracking") {
		t.Error("expected body to name the tracking state")
	}
	if !strings.Contains(string(body), "Fan Control") {
		t.Error("expected body to contain the page title")
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
}

func TestHTMLStartingBeforeFirstState(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "starting") {
		t.Error("expected body to show the starting placeholder")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t)

	resp1, _ := http.Get(ts.URL + "/index.json")
	var sj1 status.StatusJSON
	json.NewDecoder(resp1.Body).Decode(&sj1)
	resp1.Body.Close()
	if sj1.Status.State != "starting" {
		t.Errorf("initial state: got %q, want starting", sj1.Status.State)
	}

	tr.StateChanged(motion.KindIdle, time.Date(2026, 1, 1, 0, 0, 1, 0, time.UTC))
	tr.SetTimeValid(true)

	resp2, _ := http.Get(ts.URL + "/index.json")
	var sj2 status.StatusJSON
	json.NewDecoder(resp2.Body).Decode(&sj2)
	resp2.Body.Close()

	if sj2.Status.State != "idle" {
		t.Errorf("state after entry: got %q, want idle", sj2.Status.State)
	}
	if !sj2.Status.TimeValid {
		t.Error("expected time_valid=true after update")
	}
}
