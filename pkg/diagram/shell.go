package diagram

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/orbit/pkg/display"
	orberrors "github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/hierarchy"
	"github.com/matzehuels/orbit/pkg/scene"
	"github.com/matzehuels/orbit/pkg/state"
	"github.com/matzehuels/orbit/pkg/viewport"
)

// lifecycle is the shell's phase guard. Construction errors leave the
// instance in lifecycleDead so a half-built diagram can never be driven.
type lifecycle int

const (
	lifecycleReady lifecycle = iota
	lifecycleDestroying
	lifecycleDead
)

// Host carries the callbacks an embedding application registers. All are
// optional.
type Host struct {
	// OnSelect fires after a selection lands, with new and previous IDs.
	OnSelect func(newID, oldID string)

	// OnError receives recoverable failures (fetch, preload, render).
	OnError func(error)

	// OnFatal receives unrecoverable construction failures, just before the
	// half-built instance is torn down. New still returns the same error.
	OnFatal func(error)

	// OnDestroyed fires exactly once when the instance is torn down.
	OnDestroyed func()
}

// Options configures a diagram instance.
type Options struct {
	Config   Config
	Logger   *log.Logger
	Surface  scene.Surface
	Provider state.Preloader
	Host     Host

	// Data is the initial tree. Optional; SetData can supply it later.
	Data *hierarchy.Tree
}

// Diagram is one live instance: the lifecycle shell around the store,
// calculator, coordinator, and viewport.
type Diagram struct {
	id     string
	cfg    Config
	logger *log.Logger
	host   Host

	store   *state.Store
	calc    *display.Calculator
	resizer *display.Resizer
	coord   *scene.Coordinator
	vp      *viewport.Controller

	mu    sync.Mutex
	phase lifecycle
}

// New builds and wires a diagram instance.
//
// Construction failures are fatal: a nil surface, invalid viewport bounds,
// or invalid initial data return a structured error and no instance.
func New(opts Options) (*Diagram, error) {
	if opts.Surface == nil {
		return nil, orberrors.New(orberrors.ErrCodeInvalidContainer, "surface required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	opts.Config.normalize()

	vp, err := viewport.NewController(viewport.Options{
		Logger:  opts.Logger,
		MinZoom: opts.Config.Viewport.MinZoom,
		MaxZoom: opts.Config.Viewport.MaxZoom,
	})
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	d := &Diagram{
		id:     id,
		cfg:    opts.Config,
		logger: opts.Logger.With("diagram", id[:8]),
		host:   opts.Host,
		calc:   display.NewCalculator(opts.Config.displayOptions()),
		vp:     vp,
	}

	d.coord = scene.NewCoordinator(scene.CoordinatorOptions{
		Logger:  d.logger,
		Surface: opts.Surface,
		Policy:  opts.Config.outerPolicy(),
	})

	d.store = state.NewStore(state.Options{
		Logger:        d.logger,
		MinTransition: opts.Config.MinTransition(),
		OnError:       d.forwardError,
	})
	d.store.SetScene(d.coord)
	if opts.Provider != nil {
		d.store.SetPreloader(opts.Provider)
	}

	d.resizer = display.NewResizer(d.calc, display.DefaultMinWidth, display.DefaultMinHeight,
		opts.Config.Debounce(), d.logger, d.applyDimensions)

	init := true
	if _, err := d.store.Update(state.Patch{Initialized: &init}); err != nil {
		werr := orberrors.Wrap(orberrors.ErrCodeFatalInit, err, "initial state update failed")
		d.fatal(werr)
		return nil, werr
	}
	if opts.Data != nil {
		if err := d.SetData(opts.Data); err != nil {
			d.fatal(err)
			return nil, err
		}
	}
	d.logger.Debug("diagram created")
	return d, nil
}

// ID returns the instance's unique identifier.
func (d *Diagram) ID() string { return d.id }

// Store exposes the state store for event subscription.
func (d *Diagram) Store() *state.Store { return d.store }

// Coordinator exposes the scene coordinator, mainly so a frame clock can
// drive animation steps.
func (d *Diagram) Coordinator() *scene.Coordinator { return d.coord }

// Viewport exposes the viewport controller.
func (d *Diagram) Viewport() *viewport.Controller { return d.vp }

// SetData validates and installs a new tree.
func (d *Diagram) SetData(t *hierarchy.Tree) error {
	if err := d.guard(); err != nil {
		return err
	}
	if t == nil {
		return orberrors.New(orberrors.ErrCodeInvalidData, "nil tree")
	}
	if err := t.Validate(); err != nil {
		return orberrors.Wrap(orberrors.ErrCodeInvalidData, err, "tree rejected")
	}

	if _, err := d.store.Update(state.Patch{Data: t}); err != nil {
		return err
	}
	if err := d.coord.UpdateData(t); err != nil {
		d.forwardError(err)
	}
	return nil
}

// Select moves the selection to nodeID; an empty ID clears it. Selecting a
// node missing from the tree is rejected without touching state.
func (d *Diagram) Select(nodeID string) error {
	if err := d.guard(); err != nil {
		return err
	}
	if nodeID != "" {
		t := d.store.Data()
		if t == nil {
			return orberrors.New(orberrors.ErrCodeInvalidData, "no data loaded")
		}
		if _, ok := t.Node(nodeID); !ok {
			return orberrors.New(orberrors.ErrCodeInvalidData, "unknown node %q", nodeID)
		}
	}

	old := d.store.Selected()
	ok, err := d.store.Update(state.Patch{SelectedID: &nodeID})
	if err != nil {
		return err
	}
	if ok && nodeID != old && d.host.OnSelect != nil {
		d.host.OnSelect(nodeID, old)
	}
	return nil
}

// Resize reports a new container size. Changes settle through the debounce
// window; sub-threshold noise never reaches the store.
func (d *Diagram) Resize(width, height float64) {
	if d.guard() != nil {
		return
	}
	d.resizer.Notify(width, height)
}

// applyDimensions pushes settled dimensions into state, scene, and viewport.
func (d *Diagram) applyDimensions(dims display.Dimensions) {
	if d.guard() != nil {
		return
	}
	if _, err := d.store.Update(state.Patch{Dimensions: &dims}); err != nil {
		d.forwardError(err)
		return
	}
	d.vp.SetDimensions(dims)
	if err := d.coord.SetDimensions(dims); err != nil {
		d.forwardError(err)
	}
}

// Zoom sets the zoom level (clamped) and records it in state.
func (d *Diagram) Zoom(level float64) error {
	if err := d.guard(); err != nil {
		return err
	}
	tf := d.vp.Zoom(level)
	return d.recordZoom(tf)
}

// ZoomToFit fits the whole layout into the canvas.
func (d *Diagram) ZoomToFit() error {
	if err := d.guard(); err != nil {
		return err
	}
	tf := d.vp.ZoomToFit(d.store.Data())
	return d.recordZoom(tf)
}

// ZoomToNode centres a node at a depth-scaled zoom level.
func (d *Diagram) ZoomToNode(nodeID string) error {
	if err := d.guard(); err != nil {
		return err
	}
	t := d.store.Data()
	if t == nil {
		return orberrors.New(orberrors.ErrCodeInvalidData, "no data loaded")
	}
	n, ok := t.Node(nodeID)
	if !ok {
		return orberrors.New(orberrors.ErrCodeInvalidData, "unknown node %q", nodeID)
	}
	tf := d.vp.ZoomToNode(n)
	return d.recordZoom(tf)
}

func (d *Diagram) recordZoom(tf viewport.Transform) error {
	_, err := d.store.Update(state.Patch{ZoomLevel: &tf.Scale})
	return err
}

// Destroy tears the instance down: debounce timers stop, animations
// cancel, the store closes, and OnDestroyed fires. Safe to call more than
// once; later lifecycle calls return a destroyed error.
func (d *Diagram) Destroy() {
	d.mu.Lock()
	if d.phase != lifecycleReady {
		d.mu.Unlock()
		return
	}
	d.phase = lifecycleDestroying
	d.mu.Unlock()

	d.teardown()

	d.mu.Lock()
	d.phase = lifecycleDead
	d.mu.Unlock()

	d.logger.Debug("diagram destroyed")
	if d.host.OnDestroyed != nil {
		d.host.OnDestroyed()
	}
}

// fatal signals an unrecoverable construction failure to the host and tears
// the half-built instance down.
func (d *Diagram) fatal(err error) {
	d.logger.Error("fatal failure", "err", err)
	if d.host.OnFatal != nil {
		d.host.OnFatal(err)
	}
	d.teardown()
}

func (d *Diagram) teardown() {
	if d.resizer != nil {
		d.resizer.Stop()
	}
	if d.coord != nil {
		d.coord.Animator().CancelAll()
	}
	if d.store != nil {
		d.store.Close()
	}
}

// guard rejects operations on a destroyed or destroying instance.
func (d *Diagram) guard() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase != lifecycleReady {
		return orberrors.New(orberrors.ErrCodeDestroyed, "diagram destroyed")
	}
	return nil
}

func (d *Diagram) forwardError(err error) {
	if err == nil {
		return
	}
	d.logger.Warn("recoverable failure", "err", err)
	if d.host.OnError != nil {
		d.host.OnError(err)
	}
}

// WithContext sets the context used for preload fetches.
func (d *Diagram) WithContext(ctx context.Context) *Diagram {
	d.store.SetContext(ctx)
	return d
}
