package cli

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/optima/pkg/cache"
	"github.com/matzehuels/optima/pkg/config"
	"github.com/matzehuels/optima/pkg/errors"
	"github.com/matzehuels/optima/pkg/poller"
	"github.com/matzehuels/optima/pkg/render/pie"
	"github.com/matzehuels/optima/pkg/render/series"
	"github.com/matzehuels/optima/pkg/taskapi"
)

// testCLI returns a CLI whose config and cache live in temp dirs.
func testCLI(t *testing.T, baseURL string) *CLI {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("OPTIMA_BASE_URL", baseURL)
	t.Setenv("OPTIMA_CACHE", "")
	return New(io.Discard, log.InfoLevel)
}

func TestParseJobRef(t *testing.T) {
	tests := []struct {
		in      string
		want    jobRef
		wantErr errors.Code
	}{
		{in: "42:optimize", want: jobRef{"42", "optimize"}},
		{in: "project-1.a:autofit", want: jobRef{"project-1.a", "autofit"}},
		{in: "", wantErr: errors.ErrCodeInvalidJobID},
		{in: "42", wantErr: errors.ErrCodeInvalidJobID},
		{in: ":optimize", wantErr: errors.ErrCodeInvalidInput},
		{in: "42:../x", wantErr: errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		got, err := parseJobRef(tt.in)
		if tt.wantErr != "" {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("parseJobRef(%q) error = %v, want %s", tt.in, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseJobRef(%q) = %+v, %v; want %+v", tt.in, got, err, tt.want)
		}
	}

	refs, err := parseJobRefs([]string{"1:a", "2:b", "1:a"})
	if err != nil || len(refs) != 2 {
		t.Errorf("parseJobRefs dedup = %v, %v", refs, err)
	}
	if refs[0].Path() != "/api/task/1/type/a" {
		t.Errorf("Path() = %q", refs[0].Path())
	}
}

func TestHistory(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	h := newHistory(c)
	ctx := context.Background()
	now := time.Now()

	done := poller.Completed{Payload: &poller.Payload{Status: "completed", Fields: map[string]any{"result_id": "r-1"}}}
	failed := poller.Failed{Payload: &poller.Payload{Status: "error", Fields: map[string]any{"error_text": "diverged"}}}

	if err := h.record(ctx, newOutcome("b:optimize", "/x", done, 4, now)); err != nil {
		t.Fatal(err)
	}
	if err := h.record(ctx, newOutcome("a:autofit", "/y", failed, 2, now)); err != nil {
		t.Fatal(err)
	}
	if err := h.record(ctx, newOutcome("b:optimize", "/x", done, 5, now)); err != nil {
		t.Fatal(err)
	}

	ids, err := h.ids(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(ids, ",") != "a:autofit,b:optimize" {
		t.Errorf("ids = %v, want sorted unique ids", ids)
	}

	o, ok, err := h.get(ctx, "b:optimize")
	if err != nil || !ok {
		t.Fatalf("get() = %v, %v", ok, err)
	}
	if o.Status != "completed" || o.ResultID != "r-1" || o.Checks != 5 {
		t.Errorf("outcome = %+v", o)
	}
	o, _, _ = h.get(ctx, "a:autofit")
	if o.Status != "failed" || o.Reason != "diverged" {
		t.Errorf("failed outcome = %+v", o)
	}
	if _, ok, _ := h.get(ctx, "c:none"); ok {
		t.Error("get() found an unrecorded job")
	}

	table := renderOutcomes([]outcome{o}, now.Add(90*time.Second))
	if !strings.Contains(table, "a:autofit") || !strings.Contains(table, "1m ago") {
		t.Errorf("renderOutcomes() =\n%s", table)
	}
}

func TestPollDelay(t *testing.T) {
	cfg := config.PollConfig{Interval: time.Second, SlowInterval: 5 * time.Second}
	tests := []struct {
		ref      jobRef
		override time.Duration
		want     time.Duration
	}{
		{jobRef{"42", "optimize"}, 0, 5 * time.Second},
		{jobRef{"42", "autofit"}, 0, time.Second},
		{jobRef{"42", "optimize"}, 200 * time.Millisecond, 200 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := pollDelay(tt.ref, tt.override, cfg); got != tt.want {
			t.Errorf("pollDelay(%s, %v) = %v, want %v", tt.ref.ID(), tt.override, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct{ output, input, want string }{
		{"", "data/spend.csv", "data/spend"},
		{"", "-", "pie"},
		{"out.svg", "x.csv", "out"},
		{"out.v2", "x.csv", "out.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}

	if got := parseFormats(""); len(got) != 1 || got[0] != pie.FormatSVG {
		t.Errorf("parseFormats(\"\") = %v", got)
	}
	if got := parseFormats("svg,json"); len(got) != 2 {
		t.Errorf("parseFormats(svg,json) = %v", got)
	}
}

func TestRunPie(t *testing.T) {
	c := testCLI(t, "http://localhost:1")
	dir := t.TempDir()
	input := filepath.Join(dir, "spend.csv")
	if err := os.WriteFile(input, []byte("label,value\nART,60\nPMTCT,10\nHTC,9\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := withLogger(context.Background(), c.Logger)
	err := c.runPie(ctx, input, pieOpts{formats: []string{"svg", "json"}, scale: 2})
	if err != nil {
		t.Fatalf("runPie() error: %v", err)
	}
	for _, ext := range []string{".svg", ".json"} {
		data, err := os.ReadFile(filepath.Join(dir, "spend"+ext))
		if err != nil {
			t.Fatalf("missing output %s: %v", ext, err)
		}
		if !bytes.Contains(data, []byte("ART")) {
			t.Errorf("%s output missing label", ext)
		}
	}

	if err := c.runPie(ctx, filepath.Join(dir, "absent.csv"), pieOpts{formats: []string{"svg"}}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("runPie(absent) error = %v", err)
	}
}

func TestRunChart(t *testing.T) {
	c := testCLI(t, "http://localhost:1")
	dir := t.TempDir()
	input := filepath.Join(dir, "incidence.csv")
	if err := os.WriteFile(input, []byte("year,base,opt\n2015,10,10\n2016,9,7\n2017,8,5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx := withLogger(context.Background(), c.Logger)
	if err := c.runChart(ctx, "line", input, "", series.Options{}); err != nil {
		t.Fatalf("runChart() error: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "incidence.svg"))
	if err != nil || !bytes.Contains(data, []byte("<svg")) {
		t.Fatalf("chart output missing or not SVG: %v", err)
	}
}

func TestRunPollAgainstTaskServer(t *testing.T) {
	srv := taskapi.New(taskapi.WithTiming(10*time.Millisecond, 50*time.Millisecond), taskapi.WithLogger(log.New(io.Discard)))
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := testCLI(t, ts.URL)
	ctx := withLogger(context.Background(), c.Logger)

	opts := pollOpts{start: true, interval: 10 * time.Millisecond, timeout: 5 * time.Second}
	if err := c.runPoll(ctx, []jobRef{{"42", taskapi.TypeOptimize}}, opts); err != nil {
		t.Fatalf("runPoll() error: %v", err)
	}

	cc, err := c.newCache(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	defer cc.Close()
	o, ok, err := newHistory(cc).get(ctx, "42:optimize")
	if err != nil || !ok {
		t.Fatalf("outcome not recorded: %v", err)
	}
	if o.Status != poller.StatusCompleted || o.ResultID == "" || o.Checks == 0 {
		t.Errorf("outcome = %+v, want completed with result id", o)
	}

	// A job the server never started is a terminal failure.
	err = c.runPoll(ctx, []jobRef{{"43", taskapi.TypeAutofit}}, pollOpts{interval: 10 * time.Millisecond, timeout: 5 * time.Second})
	if !errors.Is(err, errors.ErrCodeJobNotFound) {
		t.Errorf("runPoll() on an unknown job error = %v, want JOB_NOT_FOUND", err)
	}
}

func TestRunPollTimeout(t *testing.T) {
	srv := taskapi.New(taskapi.WithTiming(time.Hour, time.Hour), taskapi.WithLogger(log.New(io.Discard)))
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := testCLI(t, ts.URL)
	ctx := withLogger(context.Background(), c.Logger)

	opts := pollOpts{start: true, noHistory: true, interval: 10 * time.Millisecond, timeout: 100 * time.Millisecond}
	err := c.runPoll(ctx, []jobRef{{"7", taskapi.TypeOptimize}}, opts)
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("runPoll() error = %v, want TIMEOUT", err)
	}
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, log.InfoLevel).RootCommand()
	want := []string{"poll", "kill", "watch", "status", "pie", "chart", "serve", "cache", "config", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("root is missing %q", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("root is missing --config")
	}
}
