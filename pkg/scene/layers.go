package scene

import (
	"math"

	"github.com/matzehuels/orbit/pkg/display"
	"github.com/matzehuels/orbit/pkg/geometry"
	"github.com/matzehuels/orbit/pkg/hierarchy"
)

// Opacity levels per emphasis class.
const (
	opacityDefault = 1.0
	opacityActive  = 1.0
	opacitySibling = 0.6
	opacityFaded   = 0.25
)

// longTextThreshold is the label length above which node labels wrap onto
// two lines.
const longTextThreshold = 12

// view is the read-only slice of state the layers render from. The
// coordinator fills it before every frame.
type view struct {
	tree     *hierarchy.Tree
	dims     display.Dimensions
	selected string
}

// classify buckets a node relative to the selection: nodes on the active
// path (the selection and its ancestors) are active, children of the
// selection's parent are siblings, everything else unrelated fades.
func classify(t *hierarchy.Tree, selected, id string) Class {
	if selected == "" {
		return ClassDefault
	}
	if id == selected || t.IsAncestor(id, selected) {
		return ClassActive
	}
	for _, sib := range t.Siblings(selected) {
		if sib == id {
			return ClassSibling
		}
	}
	// Descendants of the selection stay visible too.
	if t.IsAncestor(selected, id) {
		return ClassActive
	}
	return ClassFaded
}

func opacityFor(c Class) float64 {
	switch c {
	case ClassActive:
		return opacityActive
	case ClassSibling:
		return opacitySibling
	case ClassFaded:
		return opacityFaded
	default:
		return opacityDefault
	}
}

// linkOpacityFor is the link layer's variant of opacityFor. Faded links
// disappear entirely; only nodes keep a low-opacity ghost.
func linkOpacityFor(c Class) float64 {
	if c == ClassFaded {
		return 0
	}
	return opacityFor(c)
}

// nodeData is the per-node desired state for the node layer.
type nodeData struct {
	pos   geometry.Point
	label []string
	class Class
}

// desiredNodes computes the node layer's desired set from the current view.
func desiredNodes(v view) []Desired[nodeData] {
	if v.tree == nil {
		return nil
	}
	var out []Desired[nodeData]
	for _, n := range v.tree.Nodes() {
		out = append(out, Desired[nodeData]{
			Key: "node:" + n.ID,
			Data: nodeData{
				pos:   geometry.NodePosition(n),
				label: geometry.SplitLabel(n.DisplayName(), longTextThreshold),
				class: classify(v.tree, v.selected, n.ID),
			},
		})
	}
	return out
}

// fadeOut starts an exit animation and removes the element from the
// surface only if the animation runs to completion. A cancelled exit leaves
// the element in place for the next pass to reclaim or re-enter.
func fadeOut(anim *Animator, surface Surface, el *Element) {
	from := el.Opacity
	anim.Start(el.Key, ExitDuration, func(p float64) {
		el.Opacity = from * (1 - p)
	}, func(cancelled bool) {
		if !cancelled {
			surface.Remove(el.Key)
		}
	})
}

func nodeHooks(anim *Animator, surface Surface) Hooks[nodeData] {
	return Hooks[nodeData]{
		Enter: func(key string, d nodeData) *Element {
			el := &Element{
				Pos:     d.pos,
				Label:   d.label,
				Class:   d.class,
				Opacity: 0,
			}
			target := opacityFor(d.class)
			anim.Start(key, EnterDuration, func(p float64) {
				el.Opacity = target * p
			}, nil)
			return el
		},
		Update: func(el *Element, d nodeData) {
			el.Label = d.label
			el.Class = d.class
			from, to := el.Pos, d.pos
			fromOp, toOp := el.Opacity, opacityFor(d.class)
			if from == to && fromOp == toOp {
				return
			}
			anim.Start(el.Key, MoveDuration, func(p float64) {
				el.Pos = geometry.Point{
					X: from.X + (to.X-from.X)*p,
					Y: from.Y + (to.Y-from.Y)*p,
				}
				el.Opacity = fromOp + (toOp-fromOp)*p
			}, nil)
		},
		Exit: func(el *Element) bool {
			fadeOut(anim, surface, el)
			return false
		},
	}
}

// linkData is the per-link desired state for the link layer.
type linkData struct {
	path   geometry.LinkPath
	class  Class
	dashed bool
}

// desiredLinks computes the link layer's desired set. Links on the active
// path and links inside the selection's subtree highlight, links from the
// selection's parent to its siblings render dashed, and unrelated links
// fade out with their subtrees.
func desiredLinks(v view) []Desired[linkData] {
	if v.tree == nil {
		return nil
	}

	onPath := make(map[string]bool)
	siblingOf := make(map[string]bool)
	if v.selected != "" {
		for _, l := range v.tree.ActivePath(v.selected) {
			onPath[l.Key()] = true
		}
		pid := v.tree.ParentID(v.selected)
		for _, sib := range v.tree.Siblings(v.selected) {
			siblingOf[hierarchy.Link{SourceID: pid, TargetID: sib}.Key()] = true
		}
	}

	var out []Desired[linkData]
	for _, l := range v.tree.Links() {
		d := linkData{path: geometry.PathFor(v.tree, l)}
		switch {
		case v.selected == "":
			d.class = ClassDefault
		case onPath[l.Key()]:
			d.class = ClassActive
		case l.SourceID == v.selected || v.tree.IsAncestor(v.selected, l.SourceID):
			// Edges inside the selection's subtree carry full emphasis.
			d.class = ClassActive
		case siblingOf[l.Key()]:
			d.class = ClassSibling
			d.dashed = true
		default:
			d.class = ClassFaded
		}
		out = append(out, Desired[linkData]{Key: "link:" + l.Key(), Data: d})
	}
	return out
}

func linkHooks(anim *Animator, surface Surface) Hooks[linkData] {
	return Hooks[linkData]{
		Enter: func(key string, d linkData) *Element {
			el := &Element{
				Path:    d.path,
				Class:   d.class,
				Dashed:  d.dashed,
				Opacity: 0,
			}
			target := linkOpacityFor(d.class)
			anim.Start(key, EnterDuration, func(p float64) {
				el.Opacity = target * p
			}, nil)
			return el
		},
		Update: func(el *Element, d linkData) {
			el.Path = d.path
			el.Class = d.class
			el.Dashed = d.dashed
			from, to := el.Opacity, linkOpacityFor(d.class)
			if from == to {
				return
			}
			anim.Start(el.Key, MoveDuration, func(p float64) {
				el.Opacity = from + (to-from)*p
			}, nil)
		},
		Exit: func(el *Element) bool {
			fadeOut(anim, surface, el)
			return false
		},
	}
}

// OuterPolicy names how the outer ring distributes emphasis when a
// selection is active. The two policies are deliberately asymmetric: one
// dims everything outside the active segment, the other raises the active
// segment while leaving the rest readable.
type OuterPolicy int

const (
	// PolicyDimOthers keeps the active segment at full opacity and drops
	// every other segment to the faded level.
	PolicyDimOthers OuterPolicy = iota

	// PolicyHighlightActive raises the active segment to full opacity and
	// holds the others at the sibling level.
	PolicyHighlightActive
)

// Outer label clearance from the node, in pixels. The side term only applies
// near the horizontal extremes where labels would run into the ring.
const (
	labelSpacingBase = 14.0
	labelSpacingSide = 8.0
)

// ringData is the per-element desired state for the outer ring layer: arc
// segments for primary nodes plus indicator markers and label anchors for
// the secondary nodes sitting on the ring.
type ringData struct {
	startAngle float64
	endAngle   float64
	opacity    float64

	pos   geometry.Point
	label []string
	size  float64
}

// desiredRing computes one ring segment per primary node, split evenly
// around the circle, plus an indicator marker and an offset label anchor
// for every secondary node. The segment covering the selection's primary
// ancestor is the active one; markers on the active path grow to the outer
// indicator radius.
func desiredRing(v view, policy OuterPolicy) []Desired[ringData] {
	if v.tree == nil {
		return nil
	}
	primaries := v.tree.NodesAtDepth(1)
	if len(primaries) == 0 {
		return nil
	}

	activePrimary := ""
	if v.selected != "" {
		if n, ok := v.tree.Node(v.selected); ok {
			switch n.Depth {
			case 1:
				activePrimary = n.ID
			case 2:
				activePrimary = v.tree.ParentID(n.ID)
			}
		}
	}

	slot := 2 * math.Pi / float64(len(primaries))
	var out []Desired[ringData]
	for _, p := range primaries {
		op := opacityDefault
		if activePrimary != "" {
			switch policy {
			case PolicyDimOthers:
				if p.ID != activePrimary {
					op = opacityFaded
				}
			case PolicyHighlightActive:
				if p.ID != activePrimary {
					op = opacitySibling
				}
			}
		}
		out = append(out, Desired[ringData]{
			Key: "ring:" + p.ID,
			Data: ringData{
				startAngle: p.Angle - slot/2,
				endAngle:   p.Angle + slot/2,
				opacity:    op,
			},
		})
	}

	for _, n := range v.tree.NodesAtDepth(2) {
		class := classify(v.tree, v.selected, n.ID)
		size := v.dims.Indicators.Inner
		if class == ClassActive && v.selected != "" {
			size = v.dims.Indicators.Outer
		}
		out = append(out, Desired[ringData]{
			Key: "indicator:" + n.ID,
			Data: ringData{
				pos:     geometry.NodePosition(n),
				size:    size,
				opacity: opacityFor(class),
			},
		})

		offset := geometry.LabelOffset(n.Angle, labelSpacingBase, labelSpacingSide)
		out = append(out, Desired[ringData]{
			Key: "outerlabel:" + n.ID,
			Data: ringData{
				pos:     geometry.Position(n.Angle, n.Radius+offset),
				label:   geometry.SplitLabel(n.DisplayName(), longTextThreshold),
				opacity: opacityFor(class),
			},
		})
	}
	return out
}

func ringHooks(anim *Animator) Hooks[ringData] {
	return Hooks[ringData]{
		Enter: func(key string, d ringData) *Element {
			el := &Element{
				StartAngle: d.startAngle,
				EndAngle:   d.endAngle,
				Pos:        d.pos,
				Label:      d.label,
				Size:       d.size,
				Opacity:    0,
			}
			target := d.opacity
			anim.Start(key, EnterDuration, func(p float64) {
				el.Opacity = target * p
			}, nil)
			return el
		},
		Update: func(el *Element, d ringData) {
			el.StartAngle = d.startAngle
			el.EndAngle = d.endAngle
			el.Pos = d.pos
			el.Label = d.label
			el.Size = d.size
			from, to := el.Opacity, d.opacity
			if from == to {
				return
			}
			anim.Start(el.Key, MoveDuration, func(p float64) {
				el.Opacity = from + (to-from)*p
			}, nil)
		},
		Exit: func(el *Element) bool { return true },
	}
}
