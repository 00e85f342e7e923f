package diagram

import (
	"sort"
	"sync"
)

// Registry tracks live diagram instances by ID. It is an explicit object
// the embedding application owns; nothing in this module keeps global
// instance state.
type Registry struct {
	mu        sync.Mutex
	instances map[string]*Diagram
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{instances: make(map[string]*Diagram)}
}

// Add registers an instance under its ID.
func (r *Registry) Add(d *Diagram) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[d.ID()] = d
}

// Get returns the instance with the given ID.
func (r *Registry) Get(id string) (*Diagram, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.instances[id]
	return d, ok
}

// Remove drops an instance from the registry without destroying it.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, id)
}

// Destroy tears down the instance with the given ID and removes it.
// Returns false when the ID is unknown.
func (r *Registry) Destroy(id string) bool {
	r.mu.Lock()
	d, ok := r.instances[id]
	delete(r.instances, id)
	r.mu.Unlock()

	if ok {
		d.Destroy()
	}
	return ok
}

// DestroyAll tears down every registered instance.
func (r *Registry) DestroyAll() {
	r.mu.Lock()
	all := make([]*Diagram, 0, len(r.instances))
	for _, d := range r.instances {
		all = append(all, d)
	}
	r.instances = make(map[string]*Diagram)
	r.mu.Unlock()

	for _, d := range all {
		d.Destroy()
	}
}

// IDs returns the registered instance IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered instances.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}
