// Package state owns the canonical mutable state of a diagram instance.
//
// A single Store is the only writer of VisualState. Every other component
// reads through accessors or subscribes to change events; nothing else
// mutates the state directly. Updates are transactional: one Update call
// marks a transition, merges a patch, runs ordered side-effect handlers,
// emits per-field change events, and ends the transition no earlier than a
// configured minimum duration after the update landed.
//
// The store is designed for a single cooperative scheduling domain:
// re-entrant Update calls from side-effect handlers are expected and
// guarded, true parallel callers are not.
package state

import (
	"time"

	"github.com/matzehuels/orbit/pkg/display"
	"github.com/matzehuels/orbit/pkg/hierarchy"
)

// Event is the closed set of event names the store emits.
type Event string

// Lifecycle events. EventProfileChange fires alongside the dimensions
// change whenever a resize crosses a breakpoint into a different profile.
const (
	EventTransitionStart Event = "transition:start"
	EventTransitionEnd   Event = "transition:end"
	EventProfileChange   Event = "profile:change"
)

// Per-field change events, one per observable top-level field.
const (
	EventInitializedChange   Event = "initializedChange"
	EventDestroyingChange    Event = "destroyingChange"
	EventTransitioningChange Event = "transitioningChange"
	EventErrorChange         Event = "errorChange"
	EventDataChange          Event = "dataChange"
	EventSelectedNodeChange  Event = "selectedNodeChange"
	EventPreviousNodeChange  Event = "previousNodeChange"
	EventZoomLevelChange     Event = "zoomLevelChange"
	EventDimensionsChange    Event = "dimensionsChange"
)

// Change is the payload carried by every emitted event. For the lifecycle
// events only At is meaningful.
type Change struct {
	Event Event
	Old   any
	New   any
	At    time.Time
}

// VisualState is the complete observable state of one diagram instance.
// Node references are stored as arena IDs, never as pointers into the tree,
// so replacing the tree wholesale cannot leave dangling references.
type VisualState struct {
	Initialized   bool
	Destroying    bool
	Transitioning bool
	Updating      bool
	Errored       bool
	Err           error

	Data       *hierarchy.Tree
	SelectedID string
	PreviousID string

	ZoomLevel  float64
	Dimensions display.Dimensions

	LastUpdate time.Time
}

// Patch is a partial state update. Nil fields are left untouched; a non-nil
// pointer replaces the field even when it points at the zero value, so a
// selection can be explicitly cleared with an empty string.
type Patch struct {
	Initialized *bool
	Destroying  *bool
	Err         *error
	Data        *hierarchy.Tree
	SelectedID  *string
	ZoomLevel   *float64
	Dimensions  *display.Dimensions
}

// transitionState is the guard for the transition window. The explicit
// enum replaces a raw boolean so an overlapping "ending while starting"
// state cannot be represented by accident.
type transitionState int

const (
	transitionIdle transitionState = iota
	transitionInFlight
	transitionCancelling
)
