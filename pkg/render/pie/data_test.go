package pie

import (
	"strings"
	"testing"

	"github.com/matzehuels/optima/pkg/errors"
	"github.com/matzehuels/optima/pkg/render/pie/layout"
)

func TestReadSlices(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
		want   []layout.Slice
	}{
		{
			name:   "csv with header",
			format: InputCSV,
			input:  "label,value\nART,60\nHTC, 9\n",
			want:   []layout.Slice{{Label: "ART", Value: 60}, {Label: "HTC", Value: 9}},
		},
		{
			name:   "csv without header",
			format: InputCSV,
			input:  "# comment\nA,1.5\nB,0\n",
			want:   []layout.Slice{{Label: "A", Value: 1.5}, {Label: "B", Value: 0}},
		},
		{
			name:   "json array",
			format: InputJSON,
			input:  `[{"label":"B","value":2},{"label":"A","value":1}]`,
			want:   []layout.Slice{{Label: "B", Value: 2}, {Label: "A", Value: 1}},
		},
		{
			name:   "json object sorted by label",
			format: InputJSON,
			input:  `{"b": 2, "a": 1}`,
			want:   []layout.Slice{{Label: "a", Value: 1}, {Label: "b", Value: 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadSlices(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadSlices() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ReadSlices() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("slice %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestReadSlicesErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
		code   errors.Code
	}{
		{"csv bad value", InputCSV, "A,1\nB,x\n", errors.ErrCodeInvalidFormat},
		{"csv wrong columns", InputCSV, "A,1,2\n", errors.ErrCodeInvalidFormat},
		{"csv negative", InputCSV, "A,-1\n", errors.ErrCodeInvalidChart},
		{"json malformed", InputJSON, `[{"label":`, errors.ErrCodeInvalidFormat},
		{"json negative", InputJSON, `{"a": -2}`, errors.ErrCodeInvalidChart},
		{"unknown format", "xml", "", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSlices(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadSlices() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestDetectInput(t *testing.T) {
	for name, want := range map[string]string{
		"data.json": InputJSON,
		"DATA.JSON": InputJSON,
		"data.csv":  InputCSV,
		"-":         InputCSV,
	} {
		if got := DetectInput(name); got != want {
			t.Errorf("DetectInput(%q) = %q, want %q", name, got, want)
		}
	}
}
