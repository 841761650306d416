package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateJobID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid composite", "42:autofit", false},
		{"valid uuid", "9b2d1c0e-6f0a-4a53-8a61-5d3e0b1f2a77", false},
		{"valid with slash", "project/optimization", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateJobID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidJobID) {
				t.Errorf("ValidateJobID(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidJobID)
			}
		})
	}
}

func TestValidatePathSegment(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"numeric", "42", false},
		{"work type", "autofit", false},
		{"uuid", "9b2d1c0e-6f0a-4a53-8a61-5d3e0b1f2a77", false},
		{"dotted", "v1.2", false},

		{"empty", "", true},
		{"slash", "a/b", true},
		{"traversal", "a..b", true},
		{"leading dot", ".hidden", true},
		{"space", "a b", true},
		{"too long", strings.Repeat("x", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePathSegment("job type", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePathSegment(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"http", "http://localhost:8080", false},
		{"https", "https://optima.example.org", false},

		{"empty", "", true},
		{"no scheme", "localhost:8080", true},
		{"ftp", "ftp://example.org", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSliceValue(t *testing.T) {
	tests := []struct {
		name    string
		value   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"positive", 12.5, false},

		{"negative", -1, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSliceValue("ART", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSliceValue(%v) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidChart) {
				t.Errorf("ValidateSliceValue(%v) code = %v, want %v", tt.value, GetCode(err), ErrCodeInvalidChart)
			}
		})
	}
}

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name    string
		w, h    float64
		wantErr bool
	}{
		{"square", 400, 400, false},
		{"wide", 800, 300, false},

		{"zero width", 0, 400, true},
		{"negative height", 400, -1, true},
		{"nan", math.NaN(), 400, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDimensions(tt.w, tt.h)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDimensions(%v, %v) error = %v, wantErr %v", tt.w, tt.h, err, tt.wantErr)
			}
		})
	}
}
