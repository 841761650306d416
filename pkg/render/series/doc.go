// Package series renders line, area, scatter and stacked-bar charts.
//
// Charts are drawn with go-chart and written as SVG or PNG. The y axis of
// line and area charts starts at zero, like the client dashboards; scatter
// charts fit both axes to the data.
//
//	err := series.Render(w, series.KindLine, data, series.Options{
//	    Title:  "Incidence",
//	    Format: series.FormatSVG,
//	})
package series
