package jobapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/optima/pkg/errors"
	"github.com/matzehuels/optima/pkg/poller"
)

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithHTTPClient(srv.Client()),
		WithLogger(log.New(io.Discard)),
		WithRetry(3, time.Millisecond),
	}, opts...)
	c, err := New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestNewValidatesBaseURL(t *testing.T) {
	for _, base := range []string{"", "ftp://host", "localhost:8080"} {
		if _, err := New(base); err == nil {
			t.Errorf("New(%q) should fail", base)
		}
	}
}

func TestResolve(t *testing.T) {
	c, err := New("http://example.com/optima/")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	tests := []struct {
		ref  string
		want string
	}{
		{"/api/task/p1/type/autofit", "http://example.com/optima/api/task/p1/type/autofit"},
		{"api/x?y=1", "http://example.com/optima/api/x?y=1"},
		{"https://other.org/status", "https://other.org/status"},
	}
	for _, tt := range tests {
		got, err := c.Resolve(tt.ref)
		if err != nil {
			t.Errorf("Resolve(%q) error: %v", tt.ref, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
	if c.BaseURL() != "http://example.com/optima" {
		t.Errorf("BaseURL() = %q", c.BaseURL())
	}
}

func TestPaths(t *testing.T) {
	if got := TaskPath("p1", "autofit"); got != "/api/task/p1/type/autofit" {
		t.Errorf("TaskPath = %q", got)
	}
	if got := OptimizationResultsPath("p1", "o2"); got != "/api/project/p1/optimizations/o2/results" {
		t.Errorf("OptimizationResultsPath = %q", got)
	}
	if got := CalibrationPath("p1", "ps3"); got != "/api/project/p1/parsets/ps3/automatic_calibration" {
		t.Errorf("CalibrationPath = %q", got)
	}
}

func TestCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		if r.URL.Path != "/api/project/p1/parsets/ps1/automatic_calibration" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"status": "running", "start_time": "2024-01-01T00:00:00Z"})
	}))
	defer srv.Close()

	p, err := newTestClient(t, srv).Check(context.Background(), CalibrationPath("p1", "ps1"))
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if _, ok := poller.Classify(p).(poller.Running); !ok {
		t.Errorf("status = %q, want running", p.Status)
	}
	if p.String("start_time") != "2024-01-01T00:00:00Z" {
		t.Errorf("start_time = %q", p.String("start_time"))
	}
}

func TestCheckErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode errors.Code
	}{
		{"not found", http.StatusNotFound, "", errors.ErrCodeJobNotFound},
		{"server error", http.StatusInternalServerError, "boom", errors.ErrCodeNetwork},
		{"bad request", http.StatusBadRequest, "nope", errors.ErrCodeNetwork},
		{"not json", http.StatusOK, "<html>", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv).Check(context.Background(), "/status")
			if err == nil {
				t.Fatal("Check() should fail")
			}
			if code := errors.GetCode(err); code != tt.wantCode {
				t.Errorf("code = %v, want %v", code, tt.wantCode)
			}
			if n := calls.Load(); n != 1 {
				t.Errorf("Check made %d requests, want 1 (no retry)", n)
			}
		})
	}
}

func TestKill(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := newTestClient(t, srv).Kill(context.Background(), "p1", "autofit"); err != nil {
		t.Fatalf("Kill() error: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/task/p1/type/autofit" {
		t.Errorf("request = %s %s, want DELETE /api/task/p1/type/autofit", gotMethod, gotPath)
	}
}

func TestKillRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := newTestClient(t, srv).Kill(context.Background(), "p1", "autofit"); err != nil {
		t.Fatalf("Kill() error: %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("requests = %d, want 3", n)
	}
}

func TestKillDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := newTestClient(t, srv).Kill(context.Background(), "p1", "autofit")
	if !errors.Is(err, errors.ErrCodeJobNotFound) {
		t.Errorf("Kill() error = %v, want JOB_NOT_FOUND", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

func TestKillValidatesSegments(t *testing.T) {
	c, err := New("http://localhost:1")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	for _, tc := range [][2]string{{"", "autofit"}, {"p1", ""}, {"../etc", "x"}, {"p1", "a/b"}} {
		if err := c.Kill(context.Background(), tc[0], tc[1]); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Kill(%q, %q) error = %v, want INVALID_INPUT", tc[0], tc[1], err)
		}
	}
}

func TestStart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"status":"started"}`)
	}))
	defer srv.Close()

	p, err := newTestClient(t, srv).Start(context.Background(), "p1", "autofit")
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if p.Status != poller.StatusStarted {
		t.Errorf("status = %q, want started", p.Status)
	}
}

func TestCheckCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestClient(t, srv).Check(ctx, "/status")
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("Check() error = %v, want TIMEOUT", err)
	}
}
