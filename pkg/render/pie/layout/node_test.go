package layout

import (
	"encoding/json"
	"math"
	"testing"
)

func TestComputeAnchor(t *testing.T) {
	tests := []struct {
		name     string
		arc      Arc
		wantSide Side
		wantText string
	}{
		{"right half", Arc{StartAngle: 0, EndAngle: math.Pi, OuterRadius: 90}, Right, "start"},
		{"left half", Arc{StartAngle: math.Pi, EndAngle: 2 * math.Pi, OuterRadius: 90}, Left, "end"},
		{"top right sliver", Arc{StartAngle: 0, EndAngle: 0.1, OuterRadius: 90}, Right, "start"},
		{"top left sliver", Arc{StartAngle: 2*math.Pi - 0.1, EndAngle: 2 * math.Pi, OuterRadius: 90}, Left, "end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, a, side := ComputeAnchor(tt.arc, 100)
			if side != tt.wantSide {
				t.Errorf("side = %v, want %v", side, tt.wantSide)
			}
			if side.TextAnchor() != tt.wantText {
				t.Errorf("TextAnchor() = %q, want %q", side.TextAnchor(), tt.wantText)
			}
			if r := math.Hypot(a.X, a.Y); !approx(r, 100) {
				t.Errorf("anchor radius = %v, want 100", r)
			}
			// Anchor lies on the ray through the centroid.
			if !approx(math.Atan2(a.Y, a.X), math.Atan2(c.Y, c.X)) {
				t.Errorf("anchor %+v not aligned with centroid %+v", a, c)
			}
		})
	}
}

func TestNodeTextX(t *testing.T) {
	right := Node{Anchor: Point{X: 100}, Side: Right}
	if got := right.TextX(); got != 105 {
		t.Errorf("right TextX() = %v, want 105", got)
	}
	left := Node{Anchor: Point{X: -100}, Side: Left}
	if got := left.TextX(); got != -105 {
		t.Errorf("left TextX() = %v, want -105", got)
	}
}

func TestLeaderLinesFollowLabels(t *testing.T) {
	nodes := []Node{
		{Centroid: Point{X: 10, Y: 10}, Anchor: Point{X: 50, Y: 40}, Y: 55},
		{Centroid: Point{X: -10, Y: 5}, Anchor: Point{X: -50, Y: 20}, Y: 20},
	}
	lines := LeaderLines(nodes)
	if len(lines) != 2 {
		t.Fatalf("LeaderLines() returned %d lines, want 2", len(lines))
	}
	if lines[0].From != nodes[0].Centroid {
		t.Errorf("line[0].From = %+v, want centroid %+v", lines[0].From, nodes[0].Centroid)
	}
	if lines[0].To != (Point{X: 50, Y: 55}) {
		t.Errorf("line[0].To = %+v, want {50 55}", lines[0].To)
	}
	if lines[1].To != (Point{X: -50, Y: 20}) {
		t.Errorf("line[1].To = %+v, want {-50 20}", lines[1].To)
	}
}

func TestSideJSON(t *testing.T) {
	data, err := json.Marshal(Node{Side: Right})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if n.Side != Right {
		t.Errorf("Side = %v, want right", n.Side)
	}

	var s Side
	if err := s.UnmarshalText([]byte("middle")); err == nil {
		t.Error("UnmarshalText(middle) should fail")
	}
}
