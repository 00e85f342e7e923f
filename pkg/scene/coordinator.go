package scene

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orbit/pkg/display"
	orberrors "github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/geometry"
	"github.com/matzehuels/orbit/pkg/hierarchy"
	"github.com/matzehuels/orbit/pkg/observability"
)

// frameState guards the batching of frame requests. Requests arriving while
// a frame is pending or flushing coalesce into the one already scheduled.
type frameState int

const (
	frameIdle frameState = iota
	framePending
	frameFlushing
)

// Coordinator owns the three scene layers and the animator. It is the single
// entry point for scene mutations: selection changes, data replacement, and
// dimension changes all funnel into one batched frame flush, and a failure
// in one layer never prevents the other layers from reconciling.
type Coordinator struct {
	logger  *log.Logger
	surface Surface
	anim    *Animator
	policy  OuterPolicy

	nodes *Reconciler[nodeData]
	links *Reconciler[linkData]
	ring  *Reconciler[ringData]

	mu    sync.Mutex
	view  view
	frame frameState

	ctx context.Context
}

// CoordinatorOptions configures a Coordinator.
type CoordinatorOptions struct {
	Logger  *log.Logger
	Surface Surface
	Policy  OuterPolicy
}

// NewCoordinator wires the layers onto the given surface.
func NewCoordinator(opts CoordinatorOptions) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Surface == nil {
		opts.Surface = NewMemorySurface()
	}
	anim := NewAnimator()
	c := &Coordinator{
		logger:  opts.Logger,
		surface: opts.Surface,
		anim:    anim,
		policy:  opts.Policy,
		nodes:   NewReconciler(KindNode, opts.Surface, nodeHooks(anim, opts.Surface)),
		links:   NewReconciler(KindLink, opts.Surface, linkHooks(anim, opts.Surface)),
		ring:    NewReconciler(KindRing, opts.Surface, ringHooks(anim)),
		ctx:     context.Background(),
	}
	return c
}

// Surface returns the drawing target the coordinator reconciles onto.
func (c *Coordinator) Surface() Surface { return c.surface }

// Animator returns the shared animator so a frame clock can drive it.
func (c *Coordinator) Animator() *Animator { return c.anim }

// UpdateSelection moves the scene to a new selection. In-flight animations
// are cancelled first so a rapid series of selections cannot leave stale
// exits fighting the new enter pass.
func (c *Coordinator) UpdateSelection(newID, oldID string) error {
	c.mu.Lock()
	if c.view.selected == newID {
		c.mu.Unlock()
		return nil
	}
	c.view.selected = newID
	c.mu.Unlock()

	c.anim.CancelAll()
	c.logger.Debug("selection updated", "new", newID, "old", oldID)
	c.RequestFrame()
	return c.Flush()
}

// UpdateData replaces the tree and recomputes the radial layout.
func (c *Coordinator) UpdateData(t *hierarchy.Tree) error {
	c.mu.Lock()
	c.view.tree = t
	c.layoutLocked()
	c.mu.Unlock()

	c.anim.CancelAll()
	c.RequestFrame()
	return c.Flush()
}

// SetDimensions applies new display dimensions and relays out the tree.
func (c *Coordinator) SetDimensions(d display.Dimensions) error {
	c.mu.Lock()
	c.view.dims = d
	c.layoutLocked()
	c.mu.Unlock()

	c.RequestFrame()
	return c.Flush()
}

func (c *Coordinator) layoutLocked() {
	if c.view.tree != nil && c.view.dims.Radius > 0 {
		geometry.AssignLayout(c.view.tree, c.view.dims.Radius, c.view.dims.OuterRadius)
	}
}

// RequestFrame schedules a reconcile pass. Repeated requests before the
// next Flush coalesce into a single frame.
func (c *Coordinator) RequestFrame() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frame == frameIdle {
		c.frame = framePending
		observability.Scene().OnFrameScheduled(c.ctx, 1)
	}
}

// Flush runs one reconcile pass over all three layers if a frame is
// pending. Each layer is isolated: a panic inside one layer is converted to
// a structured render error and the remaining layers still run. The joined
// error of all failed layers is returned.
func (c *Coordinator) Flush() error {
	c.mu.Lock()
	if c.frame != framePending {
		c.mu.Unlock()
		return nil
	}
	c.frame = frameFlushing
	v := c.view
	c.mu.Unlock()

	start := time.Now()
	var errs []error
	errs = append(errs, c.applyLayer("nodes", orberrors.ErrCodeRenderNodes, func() {
		entered, updated, exited := c.nodes.Apply(desiredNodes(v))
		c.reportPass("nodes", entered, updated, exited)
	}))
	errs = append(errs, c.applyLayer("links", orberrors.ErrCodeRenderLinks, func() {
		entered, updated, exited := c.links.Apply(desiredLinks(v))
		c.reportPass("links", entered, updated, exited)
	}))
	errs = append(errs, c.applyLayer("outer", orberrors.ErrCodeRenderOuter, func() {
		entered, updated, exited := c.ring.Apply(desiredRing(v, c.policy))
		c.reportPass("outer", entered, updated, exited)
	}))

	c.mu.Lock()
	c.frame = frameIdle
	c.mu.Unlock()

	err := stderrors.Join(errs...)
	observability.Scene().OnFrameFlushed(c.ctx, time.Since(start), err)
	return err
}

// Step advances in-flight animations to now. Call from the frame clock.
func (c *Coordinator) Step(now time.Time) {
	c.anim.Step(now)
}

// applyLayer runs one layer's reconcile pass, containing panics as
// structured render errors so the other layers still get their pass.
func (c *Coordinator) applyLayer(name string, code orberrors.Code, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = orberrors.Wrap(code, fmt.Errorf("%v", r), "%s layer failed", name)
			c.logger.Error("layer reconcile failed", "layer", name, "err", err)
		}
	}()
	start := time.Now()
	observability.Scene().OnReconcileStart(c.ctx, name, 0)
	fn()
	observability.Scene().OnReconcileComplete(c.ctx, name, time.Since(start), nil)
	return nil
}

func (c *Coordinator) reportPass(layer string, entered, updated, exited int) {
	if entered+exited > 0 {
		c.logger.Debug("reconciled", "layer", layer,
			"entered", entered, "updated", updated, "exited", exited)
	}
}
