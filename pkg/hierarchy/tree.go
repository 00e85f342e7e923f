package hierarchy

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Tree.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Tree.AddNode] when a node with the
	// same ID already exists in the tree. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownParent is returned by [Tree.AddNode] when the named parent
	// does not exist in the tree.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrMultipleRoots is returned by [Tree.AddNode] when a second parentless
	// node is added. A tree has exactly one root.
	ErrMultipleRoots = errors.New("tree already has a root")

	// ErrNoRoot is returned by [Tree.Validate] when the tree has no root node.
	ErrNoRoot = errors.New("tree has no root")

	// ErrDepthExceeded is returned by [Tree.AddNode] when the resulting node
	// would sit below MaxDepth. The radial diagram renders at most three
	// rings: a center, a primary ring, and a secondary ring.
	ErrDepthExceeded = errors.New("node depth exceeds maximum")

	// ErrInconsistentDepth is returned by [Tree.Validate] when a node's depth
	// is not exactly its parent's depth plus one.
	ErrInconsistentDepth = errors.New("node depth must be parent depth + 1")
)

// MaxDepth is the deepest level a node may occupy. Depth 0 is the central
// node, depth 1 the primary ring, depth 2 the secondary (outer) ring.
const MaxDepth = 2

// Node is a vertex in the hierarchy with layout fields assigned by the
// geometry engine. Angle and Radius are recomputed on every layout pass and
// are never authoritative - only ID, Name and Depth survive serialization.
//
// The zero value is not usable - ID must be set before adding to a Tree.
type Node struct {
	ID    string `json:"id" bson:"id"`
	Name  string `json:"name" bson:"name"`
	Depth int    `json:"depth" bson:"depth"`

	// Computed layout fields (not persisted).
	Angle  float64 `json:"-" bson:"-"`
	Radius float64 `json:"-" bson:"-"`
}

// IsRoot reports whether the node is the central (depth 0) node.
func (n *Node) IsRoot() bool { return n.Depth == 0 }

// DisplayName returns the name if set, otherwise the ID.
func (n *Node) DisplayName() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// Tree is an arena of nodes addressed by ID. Children are stored as ordered
// ID lists and each non-root node carries a parent back-index; there are no
// owning pointers between nodes, so snapshots can be replaced wholesale and
// diffed by key without cycles.
//
// The zero value is not usable - use New to create a valid Tree instance.
// Tree is not safe for concurrent use without external synchronization.
type Tree struct {
	nodes    map[string]*Node
	children map[string][]string // nodeID -> ordered child IDs
	parent   map[string]string   // nodeID -> parent ID (absent for root)
	rootID   string
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
		parent:   make(map[string]string),
	}
}

// AddNode adds a node under the named parent. An empty parentID adds the
// root; exactly one root is allowed. The node's Depth is assigned from the
// parent, not taken from the input.
//
// Returns ErrInvalidNodeID, ErrDuplicateNodeID, ErrUnknownParent,
// ErrMultipleRoots or ErrDepthExceeded on constraint violations.
func (t *Tree) AddNode(n Node, parentID string) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := t.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}

	if parentID == "" {
		if t.rootID != "" {
			return ErrMultipleRoots
		}
		n.Depth = 0
		node := &n
		t.nodes[node.ID] = node
		t.rootID = node.ID
		return nil
	}

	p, ok := t.nodes[parentID]
	if !ok {
		return ErrUnknownParent
	}
	if p.Depth+1 > MaxDepth {
		return ErrDepthExceeded
	}

	n.Depth = p.Depth + 1
	node := &n
	t.nodes[node.ID] = node
	t.parent[node.ID] = parentID
	t.children[parentID] = append(t.children[parentID], node.ID)
	return nil
}

// Root returns the central node, or nil for an empty tree.
func (t *Tree) Root() *Node {
	if t.rootID == "" {
		return nil
	}
	return t.nodes[t.rootID]
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the actual node in the arena, so
// layout-field updates affect the tree.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Parent returns the parent of the given node, or nil for the root or an
// unknown ID. This walks the back-index, never a pointer held by the child.
func (t *Tree) Parent(id string) *Node {
	pid, ok := t.parent[id]
	if !ok {
		return nil
	}
	return t.nodes[pid]
}

// ParentID returns the parent ID for a node, or "" for the root/unknown IDs.
func (t *Tree) ParentID(id string) string { return t.parent[id] }

// Children returns the ordered child IDs of the node.
// The returned slice should not be modified - use it as a read-only view.
func (t *Tree) Children(id string) []string { return t.children[id] }

// ChildNodes returns the ordered child nodes of the node.
func (t *Tree) ChildNodes(id string) []*Node {
	ids := t.children[id]
	out := make([]*Node, 0, len(ids))
	for _, cid := range ids {
		out = append(out, t.nodes[cid])
	}
	return out
}

// Siblings returns the IDs of nodes sharing the given node's parent,
// excluding the node itself. Returns nil for the root.
func (t *Tree) Siblings(id string) []string {
	pid, ok := t.parent[id]
	if !ok {
		return nil
	}
	var out []string
	for _, cid := range t.children[pid] {
		if cid != id {
			out = append(out, cid)
		}
	}
	return out
}

// NodeCount returns the number of nodes in the tree.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// Nodes returns all nodes sorted by ID for deterministic iteration.
func (t *Tree) Nodes() []*Node {
	out := make([]*Node, 0, len(t.nodes))
	for _, n := range t.nodes {
		out = append(out, n)
	}
	slices.SortFunc(out, func(a, b *Node) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

// NodesAtDepth returns the nodes at the given depth, in child order
// (depth-first over the ordered children lists).
func (t *Tree) NodesAtDepth(depth int) []*Node {
	var out []*Node
	var walk func(id string)
	walk = func(id string) {
		n := t.nodes[id]
		if n.Depth == depth {
			out = append(out, n)
			return
		}
		for _, cid := range t.children[id] {
			walk(cid)
		}
	}
	if t.rootID != "" {
		walk(t.rootID)
	}
	return out
}

// IsAncestor reports whether ancestorID lies on the path from the root to
// id, excluding id itself.
func (t *Tree) IsAncestor(ancestorID, id string) bool {
	for {
		pid, ok := t.parent[id]
		if !ok {
			return false
		}
		if pid == ancestorID {
			return true
		}
		id = pid
	}
}

// Validate checks tree integrity and returns nil if valid. It verifies that
// a root exists, that every non-root node's parent is present, and that
// depths increase by exactly one along every edge.
func (t *Tree) Validate() error {
	if t.rootID == "" {
		return ErrNoRoot
	}
	for id, n := range t.nodes {
		pid, ok := t.parent[id]
		if !ok {
			if id != t.rootID {
				return ErrUnknownParent
			}
			if n.Depth != 0 {
				return ErrInconsistentDepth
			}
			continue
		}
		p, ok := t.nodes[pid]
		if !ok {
			return ErrUnknownParent
		}
		if n.Depth != p.Depth+1 {
			return ErrInconsistentDepth
		}
		if n.Depth > MaxDepth {
			return ErrDepthExceeded
		}
	}
	return nil
}

// Clone returns a deep copy of the tree. Layout fields are copied as-is;
// they are recomputed on the next layout pass anyway.
func (t *Tree) Clone() *Tree {
	c := New()
	c.rootID = t.rootID
	for id, n := range t.nodes {
		cp := *n
		c.nodes[id] = &cp
	}
	for id, kids := range t.children {
		c.children[id] = slices.Clone(kids)
	}
	for id, pid := range t.parent {
		c.parent[id] = pid
	}
	return c
}
