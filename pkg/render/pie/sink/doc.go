// Package sink renders laid out pie charts.
//
// A sink turns a [layout.Chart] into bytes:
//
//   - [RenderSVG]: wedges, centroid dots, leader lines and side-aligned labels
//   - [RenderJSON]: the layout itself, for caching and API consumers
//   - [RenderPDF] and [RenderPNG]: SVG converted with rsvg-convert
//
// Basic usage:
//
//	chart, err := layout.Compute(slices, layout.Geometry{Width: 400, Height: 300}, layout.Options{})
//	svg := sink.RenderSVG(chart, sink.WithTitle("Spending by program"))
//
// [layout.Chart]: github.com/matzehuels/optima/pkg/render/pie/layout.Chart
package sink
