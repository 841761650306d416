// Package pie runs the pie chart pipeline: read slices, lay out labels,
// render artifacts. [Runner] adds caching so the CLI and the task server
// can share computed layouts and rendered files.
//
//	runner := pie.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pie.Options{
//	    Slices:  slices,
//	    Formats: []string{pie.FormatSVG, pie.FormatJSON},
//	})
//	svg := res.Artifacts[pie.FormatSVG]
package pie

import (
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/optima/pkg/cache"
	"github.com/matzehuels/optima/pkg/errors"
	"github.com/matzehuels/optima/pkg/render/pie/layout"
)

const (
	// DefaultWidth is the default surface width in pixels.
	DefaultWidth = 400.0

	// DefaultHeight is the default surface height in pixels.
	DefaultHeight = 300.0

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Options configures one pipeline run.
type Options struct {
	Slices []layout.Slice `json:"slices"`

	// Layout options
	Width  float64        `json:"width,omitempty"`
	Height float64        `json:"height,omitempty"`
	Layout layout.Options `json:"layout"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Title   string   `json:"title,omitempty"`
	Palette []string `json:"palette,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Refresh skips cache reads.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// ValidateAndSetDefaults fills zero values and checks the rest.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.Layout = o.Layout.WithDefaults()

	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if !(o.Scale > 0) {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive (got %g)", o.Scale)
	}
	for _, s := range o.Slices {
		if err := errors.ValidateSliceValue(s.Label, s.Value); err != nil {
			return err
		}
	}
	return ValidateFormats(o.Formats)
}

// Geometry returns the drawing surface.
func (o Options) Geometry() layout.Geometry {
	return layout.Geometry{Width: o.Width, Height: o.Height}
}

// ChartKeyOpts returns the cache key inputs for the layout stage.
func (o Options) ChartKeyOpts() cache.ChartKeyOpts {
	return cache.ChartKeyOpts{
		Width:         o.Width,
		Height:        o.Height,
		Spacing:       o.Layout.Spacing,
		Step:          o.Layout.Step,
		MaxIterations: o.Layout.MaxIterations,
	}
}

// ArtifactKeyOpts returns the cache key inputs for one rendered format.
func (o Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Title: o.Title}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	if len(o.Palette) > 0 {
		k.Palette = cache.Hash([]byte(strings.Join(o.Palette, ";")))
	}
	return k
}

// ValidateFormat checks a single output format. Formats are case-sensitive.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (valid: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks every format in the list.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Result holds the outputs of a pipeline run.
type Result struct {
	// Chart is the computed layout.
	Chart *layout.Chart

	// ChartHash is the content hash of the input data.
	ChartHash string

	// Artifacts holds rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Formats returns the artifact formats in sorted order.
func (r *Result) Formats() []string {
	out := make([]string, 0, len(r.Artifacts))
	for f := range r.Artifacts {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Stats holds timings.
type Stats struct {
	Slices     int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	ChartHit  bool
	RenderHit bool
}
