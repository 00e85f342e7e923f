package geometry

import (
	"math"
	"testing"

	"github.com/matzehuels/orbit/pkg/hierarchy"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool { return math.Abs(a-b) < epsilon }

func buildTree(t *testing.T) *hierarchy.Tree {
	t.Helper()
	tr := hierarchy.New()
	add := func(n hierarchy.Node, parent string) {
		t.Helper()
		if err := tr.AddNode(n, parent); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	add(hierarchy.Node{ID: "R"}, "")
	add(hierarchy.Node{ID: "A"}, "R")
	add(hierarchy.Node{ID: "B"}, "R")
	add(hierarchy.Node{ID: "C"}, "A")
	add(hierarchy.Node{ID: "D"}, "A")
	return tr
}

func TestPosition(t *testing.T) {
	tests := []struct {
		name   string
		angle  float64
		radius float64
		want   Point
	}{
		{name: "TwelveOClock", angle: 0, radius: 100, want: Point{X: 0, Y: -100}},
		{name: "ThreeOClock", angle: math.Pi / 2, radius: 100, want: Point{X: 100, Y: 0}},
		{name: "SixOClock", angle: math.Pi, radius: 100, want: Point{X: 0, Y: 100}},
		{name: "NineOClock", angle: 3 * math.Pi / 2, radius: 100, want: Point{X: -100, Y: 0}},
		{name: "ZeroRadius", angle: 1.23, radius: 0, want: Point{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Position(tt.angle, tt.radius)
			if !almostEqual(got.X, tt.want.X) || !almostEqual(got.Y, tt.want.Y) {
				t.Errorf("Position = (%v, %v), want (%v, %v)", got.X, got.Y, tt.want.X, tt.want.Y)
			}
		})
	}
}

func TestAssignLayout(t *testing.T) {
	tr := buildTree(t)
	AssignLayout(tr, 100, 180)

	root := tr.Root()
	if root.Angle != 0 || root.Radius != 0 {
		t.Errorf("root layout = (%v, %v), want origin", root.Angle, root.Radius)
	}
	if p := NodePosition(root); p.X != 0 || p.Y != 0 {
		t.Errorf("root position = %+v, want origin", p)
	}

	a, _ := tr.Node("A")
	b, _ := tr.Node("B")
	if !almostEqual(a.Angle, 0) {
		t.Errorf("angle(A) = %v, want 0", a.Angle)
	}
	if !almostEqual(b.Angle, math.Pi) {
		t.Errorf("angle(B) = %v, want pi", b.Angle)
	}
	if a.Radius != 100 || b.Radius != 100 {
		t.Errorf("primary radius = (%v, %v), want 100", a.Radius, b.Radius)
	}

	// Secondary nodes sit on the outer ring, fanned symmetrically around
	// their parent's angle.
	c, _ := tr.Node("C")
	d, _ := tr.Node("D")
	if c.Radius != 180 || d.Radius != 180 {
		t.Errorf("secondary radius = (%v, %v), want 180", c.Radius, d.Radius)
	}
	if !almostEqual(c.Angle+d.Angle, 2*a.Angle) {
		t.Errorf("fan not centered: angles %v, %v around %v", c.Angle, d.Angle, a.Angle)
	}
	if c.Angle >= d.Angle {
		t.Errorf("fan order inverted: %v >= %v", c.Angle, d.Angle)
	}
}

func TestPathFor(t *testing.T) {
	tr := buildTree(t)
	AssignLayout(tr, 100, 180)

	rootLink, _ := tr.LinkBetween("R", "A")
	p := PathFor(tr, rootLink)
	if p.Kind != PathLine {
		t.Errorf("center link kind = %v, want PathLine", p.Kind)
	}
	if p.Start.X != 0 || p.Start.Y != 0 {
		t.Errorf("center link start = %+v, want origin", p.Start)
	}

	outerLink, _ := tr.LinkBetween("A", "D")
	q := PathFor(tr, outerLink)
	if q.Kind != PathQuadratic {
		t.Errorf("outer link kind = %v, want PathQuadratic", q.Kind)
	}
	wantCtrl := Point{X: (q.Start.X + q.End.X) / 2, Y: (q.Start.Y + q.End.Y) / 2}
	if !almostEqual(q.Control.X, wantCtrl.X) || !almostEqual(q.Control.Y, wantCtrl.Y) {
		t.Errorf("control = %+v, want midpoint %+v", q.Control, wantCtrl)
	}
}

func TestPointAt(t *testing.T) {
	line := LinkPath{Kind: PathLine, Start: Point{X: 0, Y: 0}, End: Point{X: 10, Y: 20}}
	if got := line.PointAt(0.5); !almostEqual(got.X, 5) || !almostEqual(got.Y, 10) {
		t.Errorf("line midpoint = %+v", got)
	}

	quad := LinkPath{
		Kind:    PathQuadratic,
		Start:   Point{X: 0, Y: 0},
		Control: Point{X: 5, Y: 10},
		End:     Point{X: 10, Y: 0},
	}
	if got := quad.PointAt(0); !almostEqual(got.X, 0) || !almostEqual(got.Y, 0) {
		t.Errorf("quad start = %+v", got)
	}
	if got := quad.PointAt(1); !almostEqual(got.X, 10) || !almostEqual(got.Y, 0) {
		t.Errorf("quad end = %+v", got)
	}
	if got := quad.PointAt(0.5); !almostEqual(got.X, 5) || !almostEqual(got.Y, 5) {
		t.Errorf("quad midpoint = %+v", got)
	}
}

func TestSplitLabel(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		longText int
		want     []string
	}{
		{name: "Short", text: "hello", longText: 12, want: []string{"hello"}},
		{name: "Empty", text: "", longText: 12, want: nil},
		{name: "UnderThreshold", text: "two words", longText: 12, want: []string{"two words"}},
		{
			name:     "EvenSplit",
			text:     "alpha beta gamma delta",
			longText: 12,
			want:     []string{"alpha beta", "gamma delta"},
		},
		{
			name:     "OddTakesMiddle",
			text:     "one two three four five",
			longText: 12,
			want:     []string{"one two three", "four five"},
		},
		{
			name:     "RebalancedTowardShorterHalf",
			text:     "extraordinarily lengthy description no",
			longText: 12,
			want:     []string{"extraordinarily", "lengthy description no"},
		},
		{
			name:     "SingleLongWordStaysWhole",
			text:     "supercalifragilistic",
			longText: 12,
			want:     []string{"supercalifragilistic"},
		},
		{name: "DefaultThreshold", text: "really quite long label here", longText: 0,
			want: []string{"really quite", "long label here"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLabel(tt.text, tt.longText)
			if len(got) != len(tt.want) {
				t.Fatalf("lines = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLabelOffset(t *testing.T) {
	// Top of the ring: angle 0, no extra side clearance.
	if got := LabelOffset(0, 10, 6); !almostEqual(got, 10) {
		t.Errorf("offset at 0 = %v, want 10", got)
	}
	// Right extreme: angle pi/2 under the twelve-o'clock convention gets the
	// full side clearance, keeping horizontal text off the ring.
	if got := LabelOffset(math.Pi/2, 10, 6); !almostEqual(got, 16) {
		t.Errorf("offset at pi/2 = %v, want 16", got)
	}
	// Clearance grows monotonically toward the horizontal extremes.
	if LabelOffset(0.2, 10, 6) >= LabelOffset(1.2, 10, 6) {
		t.Error("offset should grow as the angle approaches horizontal")
	}
	// Left extreme mirrors the right one.
	if got := LabelOffset(3*math.Pi/2, 10, 6); !almostEqual(got, 16) {
		t.Errorf("offset at 3pi/2 = %v, want 16", got)
	}
}
