package layout

import "math"

// Point is a 2D coordinate relative to the chart center. Y grows downward,
// matching SVG user space.
type Point struct {
	X, Y float64
}

// Arc is an annular sector. Angles are in radians, measured clockwise from
// 12 o'clock.
type Arc struct {
	StartAngle, EndAngle     float64
	InnerRadius, OuterRadius float64
}

// Span returns the angular width of the arc.
func (a Arc) Span() float64 { return a.EndAngle - a.StartAngle }

// Centroid returns the midpoint of the arc: halfway between the start and
// end angles and halfway between the inner and outer radius.
func (a Arc) Centroid() Point {
	r := (a.InnerRadius + a.OuterRadius) / 2
	theta := (a.StartAngle+a.EndAngle)/2 - math.Pi/2
	return Point{X: math.Cos(theta) * r, Y: math.Sin(theta) * r}
}

// PointAt returns the point at angle theta on a circle of radius r.
func PointAt(theta, r float64) Point {
	return Point{X: r * math.Sin(theta), Y: -r * math.Cos(theta)}
}

// Slice is one wedge of input data.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Pie assigns angular spans to slices in input order. Each span is
// proportional to the slice value and the spans cover the full circle.
// When all values are zero every span is empty. Radii are left zero for the
// caller to fill in.
func Pie(slices []Slice) []Arc {
	var sum float64
	for _, s := range slices {
		sum += s.Value
	}

	arcs := make([]Arc, len(slices))
	angle := 0.0
	for i, s := range slices {
		span := 0.0
		if sum > 0 {
			span = s.Value / sum * 2 * math.Pi
		}
		arcs[i] = Arc{StartAngle: angle, EndAngle: angle + span}
		angle += span
	}
	return arcs
}
