package layout

import (
	"fmt"
	"math"
)

// Side is the half of the chart a label is drawn on.
type Side int

const (
	Left Side = iota
	Right
)

// String returns "left" or "right".
func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// MarshalText encodes the side as "left" or "right".
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes "left" or "right".
func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "left":
		*s = Left
	case "right":
		*s = Right
	default:
		return fmt.Errorf("unknown side %q", b)
	}
	return nil
}

// TextAnchor returns the SVG text-anchor value for labels on this side.
func (s Side) TextAnchor() string {
	if s == Right {
		return "start"
	}
	return "end"
}

// textOffset is the horizontal gap between the anchor and the label text.
const textOffset = 5.0

// Node is a placed label. Anchor is the natural position before relaxation;
// Y is the current vertical position and is the only field Relax changes.
type Node struct {
	Index    int     `json:"index"`
	Label    string  `json:"label"`
	Centroid Point   `json:"centroid"`
	Anchor   Point   `json:"anchor"`
	Side     Side    `json:"side"`
	Y        float64 `json:"y"`
}

// TextX returns the x coordinate of the label text, offset outward from the
// anchor.
func (n Node) TextX() float64 {
	if n.Side == Right {
		return n.Anchor.X + textOffset
	}
	return n.Anchor.X - textOffset
}

// Line is a leader line segment.
type Line struct {
	From, To Point
}

// ComputeAnchor returns the arc centroid, the label anchor on the ray
// through that centroid at labelRadius, and the side the label belongs to.
func ComputeAnchor(arc Arc, labelRadius float64) (centroid, anchor Point, side Side) {
	centroid = arc.Centroid()
	mid := math.Atan2(centroid.Y, centroid.X)
	anchor = Point{X: math.Cos(mid) * labelRadius, Y: math.Sin(mid) * labelRadius}
	side = Left
	if anchor.X > 0 {
		side = Right
	}
	return centroid, anchor, side
}

// NewNode builds the label node for slice i.
func NewNode(i int, s Slice, arc Arc, labelRadius float64) Node {
	c, a, side := ComputeAnchor(arc, labelRadius)
	return Node{Index: i, Label: s.Label, Centroid: c, Anchor: a, Side: side, Y: a.Y}
}

// LeaderLines returns one line per node from the wedge centroid to the
// settled label position.
func LeaderLines(nodes []Node) []Line {
	lines := make([]Line, len(nodes))
	for i, n := range nodes {
		lines[i] = Line{From: n.Centroid, To: Point{X: n.Anchor.X, Y: n.Y}}
	}
	return lines
}
