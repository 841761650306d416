package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/matzehuels/optima/pkg/render/pie/layout"
)

// DefaultPalette is the wedge fill cycle.
var DefaultPalette = []string{
	"#98DF8A", "#2CA02C", "#9AB3D4", "#7777FF", "#D62728", "#9aceff", "#0024FF",
}

const (
	dotRadius  = 2.0
	fontFamily = "Helvetica, Arial, sans-serif"
	fontSize   = 12
)

const pieCSS = `
    .arc path { stroke: #fff; stroke-width: 1; }
    .label-dot { fill: #000; }
    .leader { stroke: #000; stroke-width: 1; fill: none; }
    .label { font-family: ` + fontFamily + `; font-size: 12px; }
    .title { font-family: ` + fontFamily + `; font-size: 14px; font-weight: bold; }`

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title   string
	palette []string
}

// WithTitle draws a title above the chart.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithPalette overrides the wedge colors. An empty palette keeps the default.
func WithPalette(colors ...string) SVGOption {
	return func(r *svgRenderer) {
		if len(colors) > 0 {
			r.palette = colors
		}
	}
}

// RenderSVG draws the chart centered on its surface.
func RenderSVG(c *layout.Chart, opts ...SVGOption) []byte {
	r := svgRenderer{palette: DefaultPalette}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := c.Geometry.Width, c.Geometry.Height
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", pieCSS)
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text class="title" x="%.2f" y="%d" text-anchor="middle">%s</text>`+"\n",
			w/2, fontSize+4, escapeXML(r.title))
	}

	fmt.Fprintf(&buf, `  <g transform="translate(%.2f,%.2f)">`+"\n", w/2, h/2)
	renderWedges(&buf, c.Wedges, r.palette)
	renderLabels(&buf, c)
	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func renderWedges(buf *bytes.Buffer, wedges []layout.Wedge, palette []string) {
	buf.WriteString(`    <g class="arcs">` + "\n")
	for _, w := range wedges {
		d := arcPath(w.Arc)
		if d == "" {
			continue
		}
		fmt.Fprintf(buf, `      <g class="arc" id="wedge-%d"><path d="%s" fill="%s"/><title>%s</title></g>`+"\n",
			w.Index, d, palette[w.Index%len(palette)], escapeXML(w.Slice.Label))
	}
	buf.WriteString("    </g>\n")
}

func renderLabels(buf *bytes.Buffer, c *layout.Chart) {
	buf.WriteString(`    <g class="labels">` + "\n")
	for i, n := range c.Labels {
		fmt.Fprintf(buf, `      <circle class="label-dot" cx="%.2f" cy="%.2f" r="%.0f"/>`+"\n",
			n.Centroid.X, n.Centroid.Y, dotRadius)
		if i < len(c.Lines) {
			l := c.Lines[i]
			fmt.Fprintf(buf, `      <line class="leader" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
				l.From.X, l.From.Y, l.To.X, l.To.Y)
		}
		fmt.Fprintf(buf, `      <text class="label" x="%.2f" y="%.2f" dy=".35em" text-anchor="%s">%s</text>`+"\n",
			n.TextX(), n.Y, n.Side.TextAnchor(), escapeXML(n.Label))
	}
	buf.WriteString("    </g>\n")
}

// arcPath returns SVG path data for a wedge, or "" for an empty wedge.
func arcPath(a layout.Arc) string {
	span := a.Span()
	r := a.OuterRadius
	if span <= 0 || r <= 0 {
		return ""
	}
	if span >= 2*math.Pi-1e-9 {
		// A single arc command cannot draw a full circle; use two halves.
		top := layout.PointAt(0, r)
		bottom := layout.PointAt(math.Pi, r)
		return fmt.Sprintf("M%.2f,%.2fA%.2f,%.2f 0 1,1 %.2f,%.2fA%.2f,%.2f 0 1,1 %.2f,%.2fZ",
			top.X, top.Y, r, r, bottom.X, bottom.Y, r, r, top.X, top.Y)
	}

	start := layout.PointAt(a.StartAngle, r)
	end := layout.PointAt(a.EndAngle, r)
	large := 0
	if span > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M%.2f,%.2fA%.2f,%.2f 0 %d,1 %.2f,%.2fL0,0Z",
		start.X, start.Y, r, r, large, end.X, end.Y)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
