package tasmota

import (
	"testing"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		cmnd     string
		wantVerb string
		wantArg  string
	}{
		{"Power On", "Power", "On"},
		{"Power Off", "Power", "Off"},
		{"Power Status", "Power", ""},
		{"Power status", "Power", ""},
		{"Power TOGGLE", "Power", "TOGGLE"},
		{"Power", "Power", ""},
	}

	for _, tt := range tests {
		verb, arg := splitCommand(tt.cmnd)
		if verb != tt.wantVerb || arg != tt.wantArg {
			t.Errorf("splitCommand(%q) = %q, %q; want %q, %q",
				tt.cmnd, verb, arg, tt.wantVerb, tt.wantArg)
		}
	}
}

type fakeMessage struct {
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return "stat/fan/RESULT" }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

func TestOnResultDeliversToWaiter(t *testing.T) {
	tr := &MQTTTransport{topic: "fan"}

	// No command outstanding: the reply is dropped without blocking.
	tr.onResult(nil, fakeMessage{payload: []byte(`{"POWER":"OFF"}`)})

	reply := make(chan []byte, 1)
	tr.mu.Lock()
	tr.pending = reply
	tr.mu.Unlock()

	tr.onResult(nil, fakeMessage{payload: []byte(`{"POWER":"ON"}`)})
	select {
	case got := <-reply:
		if string(got) != `{"POWER":"ON"}` {
			t.Errorf("payload %q", got)
		}
	default:
		t.Fatal("reply not delivered to the waiting command")
	}

	// A second reply with the buffer already full must not block the
	// paho callback goroutine.
	reply <- []byte("queued")
	tr.onResult(nil, fakeMessage{payload: []byte("dropped")})
}
