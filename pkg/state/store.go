package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orbit/pkg/events"
	orberrors "github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/hierarchy"
	"github.com/matzehuels/orbit/pkg/observability"
)

// DefaultMinTransition is the minimum time the transitioning flag stays set
// after an update lands. Selection changes that settle faster than the
// animation they trigger would otherwise flicker for less than a frame.
const DefaultMinTransition = 100 * time.Millisecond

// Preloader fetches a node's content ahead of display. Implementations live
// in pkg/datasource; the store only cares that repeat calls are cheap.
type Preloader interface {
	Preload(ctx context.Context, nodeID string) error
}

// SceneUpdater is the store's view of the render coordinator. Wired in by
// the lifecycle shell after both exist.
type SceneUpdater interface {
	UpdateSelection(newID, oldID string) error
}

// Options configures a Store.
type Options struct {
	Logger        *log.Logger
	MinTransition time.Duration
	// OnError receives side-effect failures (preload, scene updates) that
	// are surfaced to the host rather than failing the update.
	OnError func(error)
}

// Store is the canonical owner of VisualState.
type Store struct {
	logger        *log.Logger
	bus           *events.Bus[Event, Change]
	minTransition time.Duration
	onError       func(error)

	ctx       context.Context
	preloader Preloader
	scene     SceneUpdater

	mu            sync.Mutex
	st            VisualState
	contentLoaded map[string]struct{}
	transition    transitionState
	generation    int
	endTimer      *time.Timer
}

// NewStore creates a store with all flags false and no data.
func NewStore(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.MinTransition <= 0 {
		opts.MinTransition = DefaultMinTransition
	}
	return &Store{
		logger:        opts.Logger,
		bus:           events.NewBus[Event, Change](),
		minTransition: opts.MinTransition,
		onError:       opts.OnError,
		ctx:           context.Background(),
		st:            VisualState{ZoomLevel: 1},
		contentLoaded: make(map[string]struct{}),
	}
}

// SetPreloader wires the content preloader. Call before the first selection.
func (s *Store) SetPreloader(p Preloader) { s.preloader = p }

// SetScene wires the render coordinator for selection side effects.
func (s *Store) SetScene(sc SceneUpdater) { s.scene = sc }

// SetContext sets the context used for preload calls.
func (s *Store) SetContext(ctx context.Context) {
	if ctx != nil {
		s.ctx = ctx
	}
}

// On subscribes to a store event. Off removes the subscription.
func (s *Store) On(ev Event, fn func(Change)) events.Subscription { return s.bus.On(ev, fn) }

// Off removes a subscription registered with On.
func (s *Store) Off(ev Event, sub events.Subscription) { s.bus.Off(ev, sub) }

// State returns a copy of the current state. The Data pointer inside the
// copy is shared and must be treated as read-only.
func (s *Store) State() VisualState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

// Selected returns the current selection ID, or "" when nothing is selected.
func (s *Store) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.SelectedID
}

// Data returns the current tree snapshot (may be nil).
func (s *Store) Data() *hierarchy.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Data
}

// IsTransitioning reports whether a transition window is open.
func (s *Store) IsTransitioning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transition != transitionIdle
}

// ContentLoaded reports whether a node's content has already been preloaded.
func (s *Store) ContentLoaded(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.contentLoaded[nodeID]
	return ok
}

// Update applies a partial state update transactionally.
//
// Returns (false, nil) without touching anything when the store is being
// destroyed. Otherwise it opens a transition window, merges the patch, runs
// the ordered side-effect handlers, emits a <field>Change event for every
// field whose value changed, stamps LastUpdate, and schedules the window to
// close no earlier than the minimum transition duration.
//
// A failure inside the merge or a handler is recorded on the state
// (Errored/Err), the transition window is force-closed, and the error is
// returned to the caller.
func (s *Store) Update(p Patch) (ok bool, err error) {
	s.mu.Lock()
	if s.st.Destroying {
		s.mu.Unlock()
		return false, nil
	}
	flipped := s.beginTransitionLocked()
	s.st.Updating = true
	s.mu.Unlock()

	s.bus.Emit(EventTransitionStart, Change{Event: EventTransitionStart, At: time.Now()})
	if flipped {
		s.bus.Emit(EventTransitioningChange,
			Change{Event: EventTransitioningChange, Old: false, New: true, At: time.Now()})
	}
	observability.State().OnTransitionStart(s.ctx)

	defer func() {
		if r := recover(); r != nil {
			err = orberrors.Wrap(orberrors.ErrCodeTransition,
				fmt.Errorf("%v", r), "state update panicked")
		}
		s.mu.Lock()
		s.st.Updating = false
		s.mu.Unlock()
		if err != nil {
			s.failTransition(err)
		}
	}()

	changes := s.merge(p)

	// Ordered side-effect handlers: selection, data, destroying, error.
	// Handlers may re-enter Update; the destroying check above is the only
	// gate a nested call needs.
	for _, c := range changes {
		switch c.Event {
		case EventSelectedNodeChange:
			s.handleSelectionChange(c)
		case EventDataChange:
			s.logger.Debug("data replaced",
				"nodes", treeSize(c.New), "was", treeSize(c.Old))
		case EventDestroyingChange:
			s.logger.Debug("destroying flag set")
		case EventErrorChange:
			s.forwardError(c)
		}
	}

	for _, c := range changes {
		s.bus.Emit(c.Event, c)
		observability.State().OnFieldChange(s.ctx, string(c.Event))
	}

	s.mu.Lock()
	s.st.LastUpdate = time.Now()
	gen := s.generation
	s.mu.Unlock()

	s.scheduleTransitionEnd(gen)
	return true, nil
}

// merge applies the patch under the lock and returns one Change per field
// whose value differed (identity comparison), in a fixed field order.
func (s *Store) merge(p Patch) []Change {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	var changes []Change
	record := func(ev Event, old, new any) {
		changes = append(changes, Change{Event: ev, Old: old, New: new, At: now})
	}

	if p.SelectedID != nil && *p.SelectedID != s.st.SelectedID {
		record(EventSelectedNodeChange, s.st.SelectedID, *p.SelectedID)
		record(EventPreviousNodeChange, s.st.PreviousID, s.st.SelectedID)
		s.st.PreviousID = s.st.SelectedID
		s.st.SelectedID = *p.SelectedID
	}
	if p.Data != nil && p.Data != s.st.Data {
		record(EventDataChange, s.st.Data, p.Data)
		s.st.Data = p.Data
	}
	if p.Initialized != nil && *p.Initialized != s.st.Initialized {
		record(EventInitializedChange, s.st.Initialized, *p.Initialized)
		s.st.Initialized = *p.Initialized
	}
	if p.Destroying != nil && *p.Destroying != s.st.Destroying {
		record(EventDestroyingChange, s.st.Destroying, *p.Destroying)
		s.st.Destroying = *p.Destroying
	}
	if p.ZoomLevel != nil && *p.ZoomLevel != s.st.ZoomLevel {
		record(EventZoomLevelChange, s.st.ZoomLevel, *p.ZoomLevel)
		s.st.ZoomLevel = *p.ZoomLevel
	}
	if p.Dimensions != nil && *p.Dimensions != s.st.Dimensions {
		record(EventDimensionsChange, s.st.Dimensions, *p.Dimensions)
		if p.Dimensions.Profile != s.st.Dimensions.Profile {
			record(EventProfileChange, s.st.Dimensions.Profile, p.Dimensions.Profile)
		}
		s.st.Dimensions = *p.Dimensions
	}
	if p.Err != nil && *p.Err != s.st.Err {
		record(EventErrorChange, s.st.Err, *p.Err)
		s.st.Err = *p.Err
		s.st.Errored = *p.Err != nil
	}
	return changes
}

// handleSelectionChange preloads the newly selected node's content (once per
// node) and forwards the selection to the scene. Failures go to the host
// error handler instead of failing the update; the transition window is
// closed by the normal scheduling path regardless.
func (s *Store) handleSelectionChange(c Change) {
	newID, _ := c.New.(string)
	oldID, _ := c.Old.(string)

	if newID != "" && s.preloader != nil && !s.ContentLoaded(newID) {
		if err := s.preloader.Preload(s.ctx, newID); err != nil {
			s.logger.Warn("preload failed", "node", newID, "err", err)
			s.forward(err)
		} else {
			s.MarkContentLoaded(newID)
		}
	}

	if s.scene != nil {
		if err := s.scene.UpdateSelection(newID, oldID); err != nil {
			s.logger.Warn("selection reconciliation failed",
				"new", newID, "old", oldID, "err", err)
			s.forward(err)
		}
	}
}

// MarkContentLoaded records that a node's content is available so repeat
// selections skip the refetch.
func (s *Store) MarkContentLoaded(nodeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contentLoaded[nodeID] = struct{}{}
}

func (s *Store) forwardError(c Change) {
	if err, ok := c.New.(error); ok && err != nil {
		s.logger.Error("error state set", "err", err)
	}
}

func (s *Store) forward(err error) {
	if s.onError != nil {
		s.onError(err)
	}
}

// beginTransitionLocked opens (or extends) the transition window and reports
// whether the transitioning flag flipped from false to true. Extending an
// already-open window is not a flip.
func (s *Store) beginTransitionLocked() (flipped bool) {
	s.generation++
	s.transition = transitionInFlight
	flipped = !s.st.Transitioning
	s.st.Transitioning = true
	if s.endTimer != nil {
		s.endTimer.Stop()
		s.endTimer = nil
	}
	return flipped
}

// scheduleTransitionEnd closes the window once the minimum duration has
// elapsed since LastUpdate, unless a newer update has extended it.
func (s *Store) scheduleTransitionEnd(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.transition != transitionInFlight {
		return
	}
	delay := s.minTransition - time.Since(s.st.LastUpdate)
	if delay < 0 {
		delay = 0
	}
	s.endTimer = time.AfterFunc(delay, func() { s.endTransition(gen) })
}

func (s *Store) endTransition(gen int) {
	s.mu.Lock()
	if gen != s.generation || s.transition != transitionInFlight {
		s.mu.Unlock()
		return
	}
	s.transition = transitionIdle
	s.st.Transitioning = false
	s.mu.Unlock()

	s.bus.Emit(EventTransitioningChange,
		Change{Event: EventTransitioningChange, Old: true, New: false, At: time.Now()})
	s.bus.Emit(EventTransitionEnd, Change{Event: EventTransitionEnd, At: time.Now()})
	observability.State().OnTransitionEnd(s.ctx)
}

// failTransition records the error and force-closes the window so a failed
// update can never leave the store transitioning forever.
func (s *Store) failTransition(err error) {
	s.mu.Lock()
	s.st.Errored = true
	s.st.Err = err
	s.transition = transitionIdle
	flipped := s.st.Transitioning
	s.st.Transitioning = false
	if s.endTimer != nil {
		s.endTimer.Stop()
		s.endTimer = nil
	}
	s.mu.Unlock()

	s.bus.Emit(EventErrorChange, Change{Event: EventErrorChange, New: err, At: time.Now()})
	if flipped {
		s.bus.Emit(EventTransitioningChange,
			Change{Event: EventTransitioningChange, Old: true, New: false, At: time.Now()})
	}
	s.bus.Emit(EventTransitionEnd, Change{Event: EventTransitionEnd, At: time.Now()})
}

// Close marks the store destroying, cancels the pending transition end, and
// drops all subscriptions. Safe to call more than once.
func (s *Store) Close() {
	s.mu.Lock()
	if s.st.Destroying {
		s.mu.Unlock()
		return
	}
	s.st.Destroying = true
	s.transition = transitionCancelling
	s.st.Transitioning = false
	if s.endTimer != nil {
		s.endTimer.Stop()
		s.endTimer = nil
	}
	s.transition = transitionIdle
	s.mu.Unlock()

	s.bus.Clear()
}

func treeSize(v any) int {
	if t, ok := v.(*hierarchy.Tree); ok && t != nil {
		return t.NodeCount()
	}
	return 0
}
