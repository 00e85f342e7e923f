// Package scene turns tree, selection, and dimension state into drawable
// elements and keeps them reconciled across updates.
//
// The package is split into three layers (nodes, links, outer ring), each
// driven by the same generic keyed reconciler: elements present in the
// desired set but not on the surface enter, elements present in both are
// updated in place, and elements no longer desired exit. A coordinator owns
// the layers, batches frame requests, and isolates per-layer failures so a
// broken layer cannot take the rest of the scene down with it.
package scene

import (
	"sort"
	"sync"

	"github.com/matzehuels/orbit/pkg/geometry"
)

// ElementKind discriminates the three drawable layers.
type ElementKind int

const (
	KindNode ElementKind = iota
	KindLink
	KindRing
)

// String returns the layer name used in logs and hooks.
func (k ElementKind) String() string {
	switch k {
	case KindNode:
		return "nodes"
	case KindLink:
		return "links"
	case KindRing:
		return "outer"
	default:
		return "unknown"
	}
}

// Class is the visual emphasis bucket an element lands in relative to the
// current selection.
type Class string

const (
	ClassDefault Class = ""
	ClassActive  Class = "active"
	ClassSibling Class = "sibling"
	ClassFaded   Class = "faded"
)

// Element is one drawable item on a surface, addressed by a stable key so
// reconcile passes can match desired state against what is already drawn.
type Element struct {
	Key     string
	Kind    ElementKind
	Class   Class
	Opacity float64
	Dashed  bool

	// Node fields
	Pos   geometry.Point
	Label []string

	// Link fields
	Path geometry.LinkPath

	// Ring fields. Size is the marker radius for indicator elements.
	StartAngle float64
	EndAngle   float64
	Size       float64
}

// Surface is the drawing target the reconcilers mutate. Implementations
// must tolerate removal of keys that are not present.
type Surface interface {
	Put(el *Element)
	Remove(key string)
	Get(key string) (*Element, bool)
	Keys(kind ElementKind) []string
}

// MemorySurface is the in-memory Surface used by the terminal view and by
// tests. Safe for use from one cooperative scheduling domain plus the
// animation ticker.
type MemorySurface struct {
	mu  sync.Mutex
	els map[string]*Element
}

// NewMemorySurface returns an empty surface.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{els: make(map[string]*Element)}
}

// Put inserts or replaces the element under its key.
func (s *MemorySurface) Put(el *Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.els[el.Key] = el
}

// Remove drops the element under key, if present.
func (s *MemorySurface) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.els, key)
}

// Get returns the element under key.
func (s *MemorySurface) Get(key string) (*Element, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.els[key]
	return el, ok
}

// Keys returns the sorted keys of all elements of the given kind.
func (s *MemorySurface) Keys(kind ElementKind) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k, el := range s.els {
		if el.Kind == kind {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Len returns the total number of elements on the surface.
func (s *MemorySurface) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.els)
}
