package hierarchy

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Snapshot - Tree Serialization Format
// =============================================================================

// Snapshot is the canonical serialization format for hierarchy trees.
// Used for API responses, storage, caching, and cross-tool compatibility.
//
// Nodes appear in parent-before-child order so a snapshot can be replayed
// through AddNode without forward references.
type Snapshot struct {
	Nodes []SnapshotNode `json:"nodes" bson:"nodes"`
}

// SnapshotNode is one serialized node with its parent reference.
type SnapshotNode struct {
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name,omitempty" bson:"name,omitempty"`
	Depth  int    `json:"depth" bson:"depth"`
	Parent string `json:"parent,omitempty" bson:"parent,omitempty"`
}

// FromTree converts a tree to its serialization format. Nodes are emitted
// depth-first in child order, which is both deterministic and replayable.
func FromTree(t *Tree) Snapshot {
	var out Snapshot
	var walk func(id string)
	walk = func(id string) {
		n := t.nodes[id]
		out.Nodes = append(out.Nodes, SnapshotNode{
			ID:     n.ID,
			Name:   n.Name,
			Depth:  n.Depth,
			Parent: t.parent[id],
		})
		for _, cid := range t.children[id] {
			walk(cid)
		}
	}
	if t.rootID != "" {
		walk(t.rootID)
	}
	return out
}

// ToTree converts a snapshot back into a tree.
// Returns an error if the structure violates tree constraints.
func ToTree(s Snapshot) (*Tree, error) {
	t := New()
	for _, sn := range s.Nodes {
		n := Node{ID: sn.ID, Name: sn.Name}
		if err := t.AddNode(n, sn.Parent); err != nil {
			return nil, fmt.Errorf("add node %s: %w", sn.ID, err)
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalTree converts a tree to pretty-printed JSON bytes.
func MarshalTree(t *Tree) ([]byte, error) {
	return json.MarshalIndent(FromTree(t), "", "  ")
}

// UnmarshalTree deserializes JSON bytes into a tree.
func UnmarshalTree(data []byte) (*Tree, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal tree: %w", err)
	}
	return ToTree(s)
}

// ReadTree decodes a JSON tree from an io.Reader.
// Use ReadTreeFile for files or pass bytes.NewReader for in-memory data.
func ReadTree(r io.Reader) (*Tree, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToTree(s)
}

// ReadTreeFile reads a JSON file and returns the decoded tree.
func ReadTreeFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f)
}

// WriteTreeFile writes a tree to a JSON file.
func WriteTreeFile(t *Tree, path string) error {
	data, err := MarshalTree(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
