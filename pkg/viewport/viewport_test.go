package viewport

import (
	"math"
	"testing"

	"github.com/matzehuels/orbit/pkg/display"
	"github.com/matzehuels/orbit/pkg/geometry"
	"github.com/matzehuels/orbit/pkg/hierarchy"
)

func newController(t *testing.T, opts Options) *Controller {
	t.Helper()
	c, err := NewController(opts)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "Defaults", opts: Options{}},
		{name: "Custom", opts: Options{MinZoom: 0.25, MaxZoom: 8}},
		{name: "Inverted", opts: Options{MinZoom: 2, MaxZoom: 1}, wantErr: true},
		{name: "NegativeMin", opts: Options{MinZoom: -1, MaxZoom: 2}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewController(tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewController err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestZoomClamping(t *testing.T) {
	c := newController(t, Options{})

	tests := []struct {
		name  string
		level float64
		want  float64
	}{
		{name: "InRange", level: 2, want: 2},
		{name: "BelowMin", level: 0.1, want: DefaultMinZoom},
		{name: "AboveMax", level: 10, want: DefaultMaxZoom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Zoom(tt.level); got.Scale != tt.want {
				t.Errorf("Zoom(%v).Scale = %v, want %v", tt.level, got.Scale, tt.want)
			}
		})
	}
}

func TestZoomToPointKeepsAnchorFixed(t *testing.T) {
	c := newController(t, Options{})
	p := geometry.Point{X: 50, Y: -30}

	before := c.Transform()
	screenBefore := geometry.Point{
		X: p.X*before.Scale + before.TranslateX,
		Y: p.Y*before.Scale + before.TranslateY,
	}

	after := c.ZoomToPoint(2, p)
	screenAfter := geometry.Point{
		X: p.X*after.Scale + after.TranslateX,
		Y: p.Y*after.Scale + after.TranslateY,
	}

	if math.Abs(screenAfter.X-screenBefore.X) > 1e-9 || math.Abs(screenAfter.Y-screenBefore.Y) > 1e-9 {
		t.Errorf("anchor moved from %+v to %+v during zoom", screenBefore, screenAfter)
	}
	if after.Scale != 2 {
		t.Errorf("Scale = %v, want 2", after.Scale)
	}
}

func TestZoomToNodeLevels(t *testing.T) {
	c := newController(t, Options{})

	tests := []struct {
		name  string
		depth int
		want  float64
	}{
		{name: "Root", depth: 0, want: 1},
		{name: "Primary", depth: 1, want: 1.5},
		{name: "Secondary", depth: 2, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &hierarchy.Node{ID: "x", Depth: tt.depth, Angle: math.Pi / 2, Radius: 100}
			if got := c.ZoomToNode(n); got.Scale != tt.want {
				t.Errorf("ZoomToNode(depth=%d).Scale = %v, want %v", tt.depth, got.Scale, tt.want)
			}
		})
	}
}

func TestZoomToNodeCentersNode(t *testing.T) {
	c := newController(t, Options{})

	n := &hierarchy.Node{ID: "x", Depth: 1, Angle: math.Pi / 2, Radius: 100}
	tf := c.ZoomToNode(n)

	pos := geometry.NodePosition(n)
	screenX := pos.X*tf.Scale + tf.TranslateX
	screenY := pos.Y*tf.Scale + tf.TranslateY
	if math.Abs(screenX) > 1e-9 || math.Abs(screenY) > 1e-9 {
		t.Errorf("node lands at (%v, %v), want canvas centre", screenX, screenY)
	}

	if got := c.ZoomToNode(nil); got != tf {
		t.Error("ZoomToNode(nil) should leave the transform unchanged")
	}
}

func TestZoomToFit(t *testing.T) {
	c := newController(t, Options{})
	c.SetDimensions(display.Dimensions{Width: 800, Height: 600, OuterRadius: 240})

	tf := c.ZoomToFit(nil)

	// Half the short edge with a 5% margin over the outer ring.
	want := 300 * 0.95 / 240
	if math.Abs(tf.Scale-want) > 1e-9 {
		t.Errorf("Scale = %v, want %v", tf.Scale, want)
	}
	if tf.TranslateX != 0 || tf.TranslateY != 0 {
		t.Errorf("fit should recentre, got translate (%v, %v)", tf.TranslateX, tf.TranslateY)
	}
}

func TestZoomToFitWithoutDimensionsResets(t *testing.T) {
	c := newController(t, Options{})
	c.Zoom(3)

	if tf := c.ZoomToFit(nil); tf.Scale != 1 {
		t.Errorf("Scale = %v, want reset to 1", tf.Scale)
	}
}

func TestCenterViewAndReset(t *testing.T) {
	var last Transform
	c := newController(t, Options{OnChange: func(tf Transform) { last = tf }})

	c.ZoomToPoint(2, geometry.Point{X: 10, Y: 10})
	tf := c.CenterView()
	if tf.Scale != 2 || tf.TranslateX != 0 || tf.TranslateY != 0 {
		t.Errorf("CenterView = %+v, want zoom kept and translation dropped", tf)
	}

	tf = c.Reset()
	if tf != (Transform{Scale: 1}) {
		t.Errorf("Reset = %+v, want identity", tf)
	}
	if last != tf {
		t.Errorf("OnChange saw %+v, want %+v", last, tf)
	}
}
