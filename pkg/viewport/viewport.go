// Package viewport maps the diagram's world coordinates onto the visible
// canvas. The controller owns one Transform (scale plus translation around
// the canvas centre) and exposes the zoom operations the shell and the
// terminal view drive.
package viewport

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orbit/pkg/display"
	orberrors "github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/geometry"
	"github.com/matzehuels/orbit/pkg/hierarchy"
)

// ErrInvalidZoomBounds is returned when the configured zoom range is empty
// or inverted.
var ErrInvalidZoomBounds = orberrors.New(orberrors.ErrCodeInvalidConfig,
	"min zoom must be positive and not exceed max zoom")

// Zoom clamp defaults. Every zoom operation lands inside these bounds no
// matter what the caller asked for.
const (
	DefaultMinZoom = 0.5
	DefaultMaxZoom = 4.0
)

// fitMargin is the fraction of canvas left free around the fitted content.
const fitMargin = 0.05

// Transform places world coordinates on the canvas: a world point p maps to
// the canvas centre plus p*Scale + (TranslateX, TranslateY).
type Transform struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

// Options configures a Controller. Zero bounds fall back to the defaults.
type Options struct {
	Logger  *log.Logger
	MinZoom float64
	MaxZoom float64

	// OnChange fires after every transform change with the new transform.
	OnChange func(Transform)
}

// ValidateAndSetDefaults fills zero values and rejects inverted bounds.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.MinZoom == 0 {
		o.MinZoom = DefaultMinZoom
	}
	if o.MaxZoom == 0 {
		o.MaxZoom = DefaultMaxZoom
	}
	if o.MinZoom <= 0 || o.MaxZoom < o.MinZoom {
		return ErrInvalidZoomBounds
	}
	return nil
}

// Controller owns the viewport transform for one diagram instance.
type Controller struct {
	opts Options
	dims display.Dimensions
	tf   Transform
}

// NewController builds a controller at zoom 1, centred.
func NewController(opts Options) (*Controller, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Controller{opts: opts, tf: Transform{Scale: 1}}, nil
}

// Transform returns the current transform.
func (c *Controller) Transform() Transform { return c.tf }

// SetDimensions records the canvas dimensions used by fit operations.
func (c *Controller) SetDimensions(d display.Dimensions) { c.dims = d }

// clamp bounds a requested zoom level to the configured range.
func (c *Controller) clamp(level float64) float64 {
	return math.Min(c.opts.MaxZoom, math.Max(c.opts.MinZoom, level))
}

func (c *Controller) set(tf Transform) {
	c.tf = tf
	if c.opts.OnChange != nil {
		c.opts.OnChange(tf)
	}
}

// Zoom sets the zoom level around the canvas centre, clamped to bounds.
func (c *Controller) Zoom(level float64) Transform {
	c.set(Transform{Scale: c.clamp(level), TranslateX: c.tf.TranslateX, TranslateY: c.tf.TranslateY})
	return c.tf
}

// ZoomToPoint zooms to level while keeping the given world point fixed on
// screen, so the zoom appears anchored under that point.
func (c *Controller) ZoomToPoint(level float64, p geometry.Point) Transform {
	s := c.clamp(level)
	c.set(Transform{
		Scale:      s,
		TranslateX: c.tf.TranslateX + p.X*(c.tf.Scale-s),
		TranslateY: c.tf.TranslateY + p.Y*(c.tf.Scale-s),
	})
	return c.tf
}

// ZoomToFit scales the whole layout into the canvas with a small margin and
// recentres it. With no dimensions or an empty tree it resets to zoom 1.
func (c *Controller) ZoomToFit(t *hierarchy.Tree) Transform {
	content := contentRadius(t, c.dims)
	if content <= 0 || c.dims.Width <= 0 || c.dims.Height <= 0 {
		c.set(Transform{Scale: 1})
		return c.tf
	}
	half := math.Min(c.dims.Width, c.dims.Height) / 2
	s := c.clamp(half * (1 - fitMargin) / content)
	c.set(Transform{Scale: s})
	c.opts.Logger.Debug("zoom to fit", "scale", s, "content", content)
	return c.tf
}

// ZoomToNode centres the view on a node at a zoom level that grows with the
// node's depth: the root fits at 1, each level below zooms in by half a
// step, never below 1.
func (c *Controller) ZoomToNode(n *hierarchy.Node) Transform {
	if n == nil {
		return c.tf
	}
	s := c.clamp(math.Max(1, 1+float64(n.Depth)*0.5))
	pos := geometry.NodePosition(n)
	c.set(Transform{
		Scale:      s,
		TranslateX: -pos.X * s,
		TranslateY: -pos.Y * s,
	})
	return c.tf
}

// CenterView drops the translation, keeping the current zoom level.
func (c *Controller) CenterView() Transform {
	c.set(Transform{Scale: c.tf.Scale})
	return c.tf
}

// Reset restores zoom 1, centred.
func (c *Controller) Reset() Transform {
	c.set(Transform{Scale: 1})
	return c.tf
}

// contentRadius is the world-space radius the layout occupies: the outer
// ring when present, otherwise the farthest node from the centre.
func contentRadius(t *hierarchy.Tree, d display.Dimensions) float64 {
	if d.OuterRadius > 0 {
		return d.OuterRadius
	}
	if t == nil {
		return 0
	}
	var r float64
	for _, n := range t.Nodes() {
		r = math.Max(r, n.Radius)
	}
	return r
}
