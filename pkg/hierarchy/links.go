package hierarchy

import "fmt"

// Link is a derived parent→child edge. Links are never stored - they are
// recomputed from the tree on demand so that diffing stays keyed and
// side-effect free.
type Link struct {
	SourceID string `json:"source" bson:"source"`
	TargetID string `json:"target" bson:"target"`
}

// Key returns the identity key used by the scene reconcilers.
func (l Link) Key() string { return fmt.Sprintf("%s-%s", l.SourceID, l.TargetID) }

// Links derives every parent→child edge whose target sits at or above
// MaxDepth, in depth-first child order starting from the root.
func (t *Tree) Links() []Link {
	var out []Link
	var walk func(id string)
	walk = func(id string) {
		for _, cid := range t.children[id] {
			if t.nodes[cid].Depth <= MaxDepth {
				out = append(out, Link{SourceID: id, TargetID: cid})
			}
			walk(cid)
		}
	}
	if t.rootID != "" {
		walk(t.rootID)
	}
	return out
}

// LinkBetween returns the link from source to target and true if target is
// a direct child of source.
func (t *Tree) LinkBetween(sourceID, targetID string) (Link, bool) {
	if t.parent[targetID] != sourceID {
		return Link{}, false
	}
	return Link{SourceID: sourceID, TargetID: targetID}, true
}

// ActivePath returns the links from the root down to the given node, in
// root-first order. Returns nil for the root itself or unknown IDs.
func (t *Tree) ActivePath(id string) []Link {
	if _, ok := t.nodes[id]; !ok {
		return nil
	}
	var rev []Link
	for {
		pid, ok := t.parent[id]
		if !ok {
			break
		}
		rev = append(rev, Link{SourceID: pid, TargetID: id})
		id = pid
	}
	// Reverse into root-first order.
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}
