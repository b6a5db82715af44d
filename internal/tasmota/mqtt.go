package tasmota

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// mqttReplyTimeout bounds the wait for the device's RESULT message after a
// command has been published.
const mqttReplyTimeout = 5 * time.Second

// MQTTOptions configures the MQTT transport.
type MQTTOptions struct {
	// Broker is the broker URL, e.g. tcp://broker.example.com:1883.
	Broker string

	// Topic is the device topic configured on the Tasmota switch.
	Topic string

	// ClientID identifies this client to the broker.
	ClientID string

	// Username and Password are optional broker credentials.
	Username string
	Password string
}

// MQTTTransport sends commands over the Tasmota MQTT topics: commands are
// published to cmnd/<topic>/<verb> and replies arrive on stat/<topic>/RESULT.
type MQTTTransport struct {
	client paho.Client
	topic  string

	mu      sync.Mutex
	pending chan []byte
}

// NewMQTTTransport connects to the broker and subscribes to the device's
// result topic.
func NewMQTTTransport(o MQTTOptions) (*MQTTTransport, error) {
	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)
	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	t := &MQTTTransport{client: client, topic: o.Topic}

	result := fmt.Sprintf("stat/%s/RESULT", o.Topic)
	token = client.Subscribe(result, 1, t.onResult)
	if !token.WaitTimeout(10 * time.Second) {
		client.Disconnect(250)
		return nil, fmt.Errorf("subscribe timeout")
	}
	if err := token.Error(); err != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("subscribe %s: %w", result, err)
	}

	return t, nil
}

// onResult hands a RESULT payload to the waiting command, if any. Replies
// arriving with no command outstanding are dropped.
func (t *MQTTTransport) onResult(_ paho.Client, msg paho.Message) {
	t.mu.Lock()
	ch := t.pending
	t.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- msg.Payload():
	default:
	}
}

// Do publishes one command and waits for the device's reply.
func (t *MQTTTransport) Do(ctx context.Context, cmnd string) ([]byte, error) {
	verb, arg := splitCommand(cmnd)

	reply := make(chan []byte, 1)
	t.mu.Lock()
	t.pending = reply
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		if t.pending == reply {
			t.pending = nil
		}
		t.mu.Unlock()
	}()

	topic := fmt.Sprintf("cmnd/%s/%s", t.topic, verb)
	token := t.client.Publish(topic, 1, false, arg)
	if !token.WaitTimeout(mqttReplyTimeout) {
		return nil, fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("publish %s: %w", topic, err)
	}

	timer := time.NewTimer(mqttReplyTimeout)
	defer timer.Stop()
	select {
	case payload := <-reply:
		return payload, nil
	case <-timer.C:
		return nil, fmt.Errorf("no reply from device")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close disconnects from the broker.
func (t *MQTTTransport) Close() error {
	t.client.Disconnect(1000) // 1 second timeout
	return nil
}

// splitCommand maps a console command like "Power On" onto its MQTT form:
// the verb selects the topic suffix and the argument becomes the payload.
// Tasmota expects a state query as an empty payload, so a Status argument
// is dropped.
func splitCommand(cmnd string) (verb, arg string) {
	verb, arg, _ = strings.Cut(cmnd, " ")
	if strings.EqualFold(arg, "status") {
		arg = ""
	}
	return verb, arg
}
