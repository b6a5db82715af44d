package tasmota

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// httpTimeout bounds a single command round trip.
const httpTimeout = 5 * time.Second

// HTTPTransport sends commands through the Tasmota web API, a GET against
// the /cm endpoint with the command percent-encoded in the query string.
type HTTPTransport struct {
	url    string
	client *http.Client
}

// NewHTTPTransport targets the device at addr (a host or host:port).
func NewHTTPTransport(addr string) *HTTPTransport {
	return &HTTPTransport{
		url:    fmt.Sprintf("http://%s/cm", addr),
		client: &http.Client{Timeout: httpTimeout},
	}
}

// Do issues one command and returns the device's JSON reply.
func (t *HTTPTransport) Do(ctx context.Context, cmnd string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url+"?cmnd="+url.PathEscape(cmnd), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send command: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}
	return body, nil
}
