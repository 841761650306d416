package httputil

import (
	"net/http"
	"time"

	"github.com/matzehuels/optima/pkg/observability"
)

// DefaultTimeout bounds a single request made through [NewClient].
const DefaultTimeout = 10 * time.Second

// NewClient returns an HTTP client with a timeout whose requests are
// reported to the observability HTTP hooks. A zero timeout means
// [DefaultTimeout].
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: Instrument(http.DefaultTransport),
	}
}

// Instrument wraps rt so every round trip emits request, response and error
// events.
func Instrument(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return instrumented{next: rt}
}

type instrumented struct {
	next http.RoundTripper
}

func (t instrumented) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path

	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

// CloseIdleConnections forwards to the wrapped transport.
func (t instrumented) CloseIdleConnections() {
	type closeIdler interface{ CloseIdleConnections() }
	if c, ok := t.next.(closeIdler); ok {
		c.CloseIdleConnections()
	}
}
