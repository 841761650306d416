package layout

import (
	"math"

	"github.com/matzehuels/optima/pkg/errors"
)

// wedgeInset is the gap between the wedge edge and the label radius.
const wedgeInset = 10.0

// Geometry is the drawing surface.
type Geometry struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Radius returns the label radius for the surface: half the shorter side.
func (g Geometry) Radius() float64 { return math.Min(g.Width, g.Height) / 2 }

// Wedge is a slice with its arc.
type Wedge struct {
	Index int   `json:"index"`
	Slice Slice `json:"slice"`
	Arc   Arc   `json:"arc"`
}

// Chart is a fully laid out pie chart. Coordinates are relative to the
// chart center.
type Chart struct {
	Geometry    Geometry `json:"geometry"`
	OuterRadius float64  `json:"outer_radius"`
	LabelRadius float64  `json:"label_radius"`
	Wedges      []Wedge  `json:"wedges"`
	Labels      []Node   `json:"labels"`
	Lines       []Line   `json:"lines"`
	Relaxation  Result   `json:"relaxation"`
	Options     Options  `json:"options"`
}

// Compute lays out slices on the surface g. It validates the input, builds
// wedges and label nodes, relaxes the labels and connects leader lines.
func Compute(slices []Slice, g Geometry, opts Options) (*Chart, error) {
	if err := errors.ValidateDimensions(g.Width, g.Height); err != nil {
		return nil, err
	}
	for _, s := range slices {
		if err := errors.ValidateSliceValue(s.Label, s.Value); err != nil {
			return nil, err
		}
	}
	opts = opts.WithDefaults()

	labelRadius := g.Radius()
	outer := max(labelRadius-wedgeInset, 0)

	arcs := Pie(slices)
	wedges := make([]Wedge, len(slices))
	nodes := make([]Node, len(slices))
	for i, s := range slices {
		arc := arcs[i]
		arc.OuterRadius = outer
		wedges[i] = Wedge{Index: i, Slice: s, Arc: arc}
		nodes[i] = NewNode(i, s, arc, labelRadius)
	}

	res := Relax(nodes, opts)

	return &Chart{
		Geometry:    g,
		OuterRadius: outer,
		LabelRadius: labelRadius,
		Wedges:      wedges,
		Labels:      nodes,
		Lines:       LeaderLines(nodes),
		Relaxation:  res,
		Options:     opts,
	}, nil
}
