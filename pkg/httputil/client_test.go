package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/optima/pkg/observability"
)

type recordingHooks struct {
	observability.NoopHTTPHooks
	mu        sync.Mutex
	responses []int
	errors    int
}

func (h *recordingHooks) OnResponse(_ context.Context, _, _, _ string, code int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, code)
}

func (h *recordingHooks) OnError(context.Context, string, string, string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors++
}

func TestClientReportsRequests(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	addr := srv.URL

	c := NewClient(0)
	if c.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, DefaultTimeout)
	}
	resp, err := c.Get(addr)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	resp.Body.Close()
	srv.Close()

	if _, err := c.Get(addr); err == nil {
		t.Fatal("Get() against a closed server should fail")
	}
	c.CloseIdleConnections()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.responses) != 1 || hooks.responses[0] != http.StatusTeapot {
		t.Errorf("responses = %v, want [418]", hooks.responses)
	}
	if hooks.errors != 1 {
		t.Errorf("errors = %d, want 1", hooks.errors)
	}
}
