package layout

import "math"

const (
	// DefaultSpacing is the minimum vertical distance between two labels on
	// the same side.
	DefaultSpacing = 18.0

	// DefaultStep is how far each label of a colliding pair moves per pass.
	DefaultStep = 3.0

	// DefaultMaxIterations bounds the number of relaxation passes.
	DefaultMaxIterations = 500
)

// Options controls relaxation. Zero values select the defaults.
type Options struct {
	Spacing       float64 `json:"spacing"`
	Step          float64 `json:"step"`
	MaxIterations int     `json:"max_iterations"`
}

// WithDefaults returns o with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.Spacing <= 0 {
		o.Spacing = DefaultSpacing
	}
	if o.Step <= 0 {
		o.Step = DefaultStep
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	return o
}

// Result describes how relaxation ended.
type Result struct {
	// Iterations is the number of passes that ran.
	Iterations int `json:"iterations"`
	// Converged is false when the iteration cap was hit while labels still
	// collided.
	Converged bool `json:"converged"`
}

// Relax moves labels apart vertically until no two labels on the same side
// are within opts.Spacing of each other.
//
// Each pass visits every unordered pair once, in slice order. A colliding
// pair moves apart by opts.Step each: the lower label down, the upper label
// up. Labels at exactly the same height are split by Index, the smaller
// index moving up. Updates apply immediately, so later pairs in a pass see
// earlier moves.
func Relax(nodes []Node, opts Options) Result {
	opts = opts.WithDefaults()

	for iter := 1; iter <= opts.MaxIterations; iter++ {
		moved := false
		for i := range nodes {
			for j := i + 1; j < len(nodes); j++ {
				a, b := &nodes[i], &nodes[j]
				if a.Side != b.Side {
					continue
				}
				d := a.Y - b.Y
				if math.Abs(d) > opts.Spacing {
					continue
				}
				sign := 1.0
				if d < 0 || (d == 0 && a.Index < b.Index) {
					sign = -1.0
				}
				a.Y += sign * opts.Step
				b.Y -= sign * opts.Step
				moved = true
			}
		}
		if !moved {
			return Result{Iterations: iter, Converged: true}
		}
	}
	return Result{Iterations: opts.MaxIterations, Converged: false}
}

// Collisions returns the number of same-side pairs within spacing of each
// other, the pairs [Relax] would still move.
func Collisions(nodes []Node, spacing float64) int {
	n := 0
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			if nodes[i].Side == nodes[j].Side && math.Abs(nodes[i].Y-nodes[j].Y) <= spacing {
				n++
			}
		}
	}
	return n
}
