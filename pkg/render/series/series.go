package series

import (
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/matzehuels/optima/pkg/errors"
)

// Kind selects the chart type for [Render].
type Kind string

const (
	KindLine    Kind = "line"
	KindArea    Kind = "area"
	KindScatter Kind = "scatter"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

const (
	DefaultWidth  = 640
	DefaultHeight = 400
)

// DefaultPalette matches the pie chart colors.
var DefaultPalette = []string{
	"#98DF8A", "#2CA02C", "#9AB3D4", "#7777FF", "#D62728", "#9ACEFF", "#0024FF",
}

// Point is one sample.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is a named sequence of points.
type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Segment is one stacked part of a bar.
type Segment struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Bar is a named stack of segments.
type Bar struct {
	Name     string    `json:"name"`
	Segments []Segment `json:"segments"`
}

// Options configures rendering. Zero values select defaults.
type Options struct {
	Title   string
	XLabel  string
	YLabel  string
	Width   int
	Height  int
	Palette []string
	Format  string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if len(o.Palette) == 0 {
		o.Palette = DefaultPalette
	}
	if o.Format == "" {
		o.Format = FormatSVG
	}
	return o
}

func (o Options) provider() (chart.RendererProvider, error) {
	switch o.Format {
	case FormatSVG:
		return chart.SVG, nil
	case FormatPNG:
		return chart.PNG, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (valid: svg, png)", o.Format)
}

func (o Options) color(i int) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(o.Palette[i%len(o.Palette)], "#"))
}

// Render draws a line, area or scatter chart of data to w.
func Render(w io.Writer, kind Kind, data []Series, opts Options) error {
	opts = opts.withDefaults()
	rp, err := opts.provider()
	if err != nil {
		return err
	}
	if err := validateSeries(kind, data); err != nil {
		return err
	}

	yMax := 0.0
	list := make([]chart.Series, len(data))
	for i, s := range data {
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j], ys[j] = p.X, p.Y
			yMax = math.Max(yMax, p.Y)
		}
		list[i] = chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   seriesStyle(kind, opts.color(i)),
		}
	}

	yAxis := chart.YAxis{Name: opts.YLabel}
	if kind != KindScatter && yMax > 0 {
		yAxis.Range = &chart.ContinuousRange{Min: 0, Max: yMax}
	}

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 16, Right: 12, Bottom: 12}},
		XAxis:      chart.XAxis{Name: opts.XLabel},
		YAxis:      yAxis,
		Series:     list,
	}
	if len(data) > 1 {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	if err := ch.Render(rp, w); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "render %s chart", kind)
	}
	return nil
}

func seriesStyle(kind Kind, col drawing.Color) chart.Style {
	switch kind {
	case KindArea:
		return chart.Style{StrokeColor: col, StrokeWidth: 2, FillColor: col.WithAlpha(96)}
	case KindScatter:
		return chart.Style{StrokeWidth: chart.Disabled, DotWidth: 4, DotColor: col}
	}
	return chart.Style{StrokeColor: col, StrokeWidth: 2}
}

func validateSeries(kind Kind, data []Series) error {
	switch kind {
	case KindLine, KindArea, KindScatter:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown chart kind %q", kind)
	}
	if len(data) == 0 {
		return errors.New(errors.ErrCodeInvalidChart, "no series to draw")
	}
	var xMin, xMax, yMin, yMax = math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	for _, s := range data {
		if len(s.Points) < 2 {
			return errors.New(errors.ErrCodeInvalidChart, "series %q needs at least two points", s.Name)
		}
		for _, p := range s.Points {
			if !finite(p.X) || !finite(p.Y) {
				return errors.New(errors.ErrCodeInvalidChart, "series %q has a non-finite point", s.Name)
			}
			xMin, xMax = math.Min(xMin, p.X), math.Max(xMax, p.X)
			yMin, yMax = math.Min(yMin, p.Y), math.Max(yMax, p.Y)
		}
	}
	if xMin == xMax {
		return errors.New(errors.ErrCodeInvalidChart, "x values span a zero range")
	}
	if yMin == yMax && (kind == KindScatter || yMax <= 0) {
		return errors.New(errors.ErrCodeInvalidChart, "y values span a zero range")
	}
	return nil
}

// RenderBars draws a stacked bar chart to w. Segment colors follow their
// position in the stack.
func RenderBars(w io.Writer, bars []Bar, opts Options) error {
	opts = opts.withDefaults()
	rp, err := opts.provider()
	if err != nil {
		return err
	}
	if len(bars) == 0 {
		return errors.New(errors.ErrCodeInvalidChart, "no bars to draw")
	}

	total := 0.0
	stacked := make([]chart.StackedBar, len(bars))
	for i, b := range bars {
		values := make([]chart.Value, len(b.Segments))
		for j, s := range b.Segments {
			if err := errors.ValidateSliceValue(s.Label, s.Value); err != nil {
				return err
			}
			total += s.Value
			col := opts.color(j)
			values[j] = chart.Value{
				Label: s.Label,
				Value: s.Value,
				Style: chart.Style{FillColor: col, StrokeColor: col},
			}
		}
		stacked[i] = chart.StackedBar{Name: b.Name, Values: values}
	}
	if total == 0 {
		return errors.New(errors.ErrCodeInvalidChart, "all bar segments are zero")
	}

	sbc := chart.StackedBarChart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		BarSpacing: 20,
		Bars:       stacked,
	}
	if err := sbc.Render(rp, w); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "render stacked bar chart")
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
