// Package render holds rendering helpers shared by the chart packages.
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). The pie sinks use them for
// print and raster output.
//
//	svg := sink.RenderSVG(chart)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Subpackages
//
//   - [pie/layout]: pie geometry and label relaxation
//   - [pie/sink]: SVG, JSON, PNG and PDF output for laid out pies
//   - [pie]: cache-aware runner that ties layout and sinks together
//   - [series]: line, area, scatter and stacked-bar charts
//
// [pie/layout]: github.com/matzehuels/optima/pkg/render/pie/layout
// [pie/sink]: github.com/matzehuels/optima/pkg/render/pie/sink
// [pie]: github.com/matzehuels/optima/pkg/render/pie
// [series]: github.com/matzehuels/optima/pkg/render/series
package render
