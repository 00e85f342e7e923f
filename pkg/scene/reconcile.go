package scene

// Desired pairs a stable key with the layer-specific data needed to draw it.
type Desired[D any] struct {
	Key  string
	Data D
}

// Hooks customises a reconcile pass for one layer. Enter builds a fresh
// element, Update mutates an element already on the surface, Exit is given
// the element on its way out and returns true when it should be removed
// immediately (false leaves removal to a completing exit animation).
type Hooks[D any] struct {
	Enter  func(key string, d D) *Element
	Update func(el *Element, d D)
	Exit   func(el *Element) bool
}

// reconcileState guards against re-entrant passes on the same layer. The
// enum leaves room for a queued state without widening the API.
type reconcileState int

const (
	reconcileIdle reconcileState = iota
	reconcileInFlight
)

// Reconciler applies keyed enter/update/exit passes for one element kind.
// Not safe for concurrent Apply calls; a re-entrant Apply (a hook that
// triggers another pass on the same layer) is dropped rather than recursed.
type Reconciler[D any] struct {
	kind    ElementKind
	surface Surface
	hooks   Hooks[D]
	state   reconcileState
}

// NewReconciler builds a reconciler for one layer of the surface.
func NewReconciler[D any](kind ElementKind, surface Surface, hooks Hooks[D]) *Reconciler[D] {
	return &Reconciler[D]{kind: kind, surface: surface, hooks: hooks}
}

// Apply reconciles the surface's elements of this kind against desired.
// Elements are matched by key: new keys enter, shared keys update, absent
// keys exit. Returns the number of entered, updated, and exited elements.
func (r *Reconciler[D]) Apply(desired []Desired[D]) (entered, updated, exited int) {
	if r.state == reconcileInFlight {
		return 0, 0, 0
	}
	r.state = reconcileInFlight
	defer func() { r.state = reconcileIdle }()

	want := make(map[string]D, len(desired))
	for _, d := range desired {
		want[d.Key] = d.Data
	}

	// Exit pass first so a key that swaps kind never collides.
	for _, key := range r.surface.Keys(r.kind) {
		if _, ok := want[key]; ok {
			continue
		}
		el, ok := r.surface.Get(key)
		if !ok {
			continue
		}
		exited++
		if r.hooks.Exit == nil || r.hooks.Exit(el) {
			r.surface.Remove(key)
		}
	}

	for _, d := range desired {
		if el, ok := r.surface.Get(d.Key); ok {
			updated++
			if r.hooks.Update != nil {
				r.hooks.Update(el, d.Data)
			}
			continue
		}
		entered++
		if r.hooks.Enter != nil {
			if el := r.hooks.Enter(d.Key, d.Data); el != nil {
				el.Key = d.Key
				el.Kind = r.kind
				r.surface.Put(el)
			}
		}
	}
	return entered, updated, exited
}
