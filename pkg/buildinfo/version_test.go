package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	embedded := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Version: "v0.3.1"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
			},
		}, true
	}

	tests := []struct {
		name                  string
		version, commit, date string
		read                  func() (*debug.BuildInfo, bool)
		want                  Info
	}{
		{
			name:    "ldflags win",
			version: "v1.0.0", commit: "deadbeef", date: "2026-10-01",
			read: embedded,
			want: Info{Version: "v1.0.0", Commit: "deadbeef", Date: "2026-10-01"},
		},
		{
			name:    "embedded fills defaults",
			version: "dev", commit: "none", date: "unknown",
			read: embedded,
			want: Info{Version: "v0.3.1", Commit: "abc123", Date: "2026-01-02T03:04:05Z"},
		},
		{
			name:    "devel module keeps dev",
			version: "dev", commit: "none", date: "unknown",
			read: func() (*debug.BuildInfo, bool) {
				return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
			},
			want: Info{Version: "dev", Commit: "none", Date: "unknown"},
		},
		{
			name:    "no build info",
			version: "dev", commit: "none", date: "unknown",
			read: func() (*debug.BuildInfo, bool) { return nil, false },
			want: Info{Version: "dev", Commit: "none", Date: "unknown"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolve(tt.version, tt.commit, tt.date, tt.read)
			got.GoVersion = ""
			if got != tt.want {
				t.Errorf("resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTemplateAndUserAgent(t *testing.T) {
	if !strings.HasPrefix(Template(), "{{.Name}} version ") {
		t.Errorf("Template() = %q", Template())
	}
	if !strings.HasPrefix(UserAgent(), "optima/") {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
	if !strings.Contains(String(), "go: go") {
		t.Errorf("String() = %q, want go version line", String())
	}
}
