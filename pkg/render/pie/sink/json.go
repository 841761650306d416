package sink

import (
	"encoding/json"

	"github.com/matzehuels/optima/pkg/render/pie/layout"
)

type jsonOutput struct {
	Width       float64     `json:"width"`
	Height      float64     `json:"height"`
	OuterRadius float64     `json:"outer_radius"`
	LabelRadius float64     `json:"label_radius"`
	Converged   bool        `json:"converged"`
	Iterations  int         `json:"iterations"`
	Wedges      []jsonWedge `json:"wedges"`
}

type jsonWedge struct {
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
	CentroidX  float64 `json:"centroid_x"`
	CentroidY  float64 `json:"centroid_y"`
	LabelX     float64 `json:"label_x"`
	LabelY     float64 `json:"label_y"`
	Side       string  `json:"side"`
	TextAnchor string  `json:"text_anchor"`
}

// RenderJSON exports the chart as a pretty-printed JSON document with one
// entry per wedge in slice order.
func RenderJSON(c *layout.Chart) ([]byte, error) {
	out := jsonOutput{
		Width:       c.Geometry.Width,
		Height:      c.Geometry.Height,
		OuterRadius: c.OuterRadius,
		LabelRadius: c.LabelRadius,
		Converged:   c.Relaxation.Converged,
		Iterations:  c.Relaxation.Iterations,
		Wedges:      make([]jsonWedge, len(c.Wedges)),
	}
	for i, w := range c.Wedges {
		jw := jsonWedge{
			Label:      w.Slice.Label,
			Value:      w.Slice.Value,
			StartAngle: w.Arc.StartAngle,
			EndAngle:   w.Arc.EndAngle,
		}
		if i < len(c.Labels) {
			n := c.Labels[i]
			jw.CentroidX, jw.CentroidY = n.Centroid.X, n.Centroid.Y
			jw.LabelX, jw.LabelY = n.TextX(), n.Y
			jw.Side = n.Side.String()
			jw.TextAnchor = n.Side.TextAnchor()
		}
		out.Wedges[i] = jw
	}
	return json.MarshalIndent(out, "", "  ")
}
