package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// ValidateJobID validates an opaque poll identifier such as "project-42:autofit".
// It rejects values that would be unsafe as cache keys or log fields.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateJobID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidJobID, "job id cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidJobID, "job id too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidJobID, "job id contains invalid control characters")
		}
	}

	return nil
}

// pathSegmentRegex matches identifiers that are safe to embed in a URL path.
var pathSegmentRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidatePathSegment validates a value that is interpolated into an API path,
// such as the resource id and job type of a kill request.
func ValidatePathSegment(kind, value string) error {
	if value == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}
	if len(value) > 128 {
		return New(ErrCodeInvalidInput, "%s too long (max 128 characters)", kind)
	}
	if strings.Contains(value, "..") || !pathSegmentRegex.MatchString(value) {
		return New(ErrCodeInvalidInput, "invalid %s: %q", kind, value)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateSliceValue validates a pie slice value. Values must be finite and
// non-negative.
func ValidateSliceValue(label string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidChart, "slice %q has a non-finite value", label)
	}
	if v < 0 {
		return New(ErrCodeInvalidChart, "slice %q has a negative value (%g)", label, v)
	}
	return nil
}

// ValidateDimensions validates a drawing surface size.
func ValidateDimensions(width, height float64) error {
	if !(width > 0) || !(height > 0) {
		return New(ErrCodeInvalidChart, "chart dimensions must be positive (got %gx%g)", width, height)
	}
	return nil
}
