package geometry

import "github.com/matzehuels/orbit/pkg/hierarchy"

// PathKind distinguishes the two link path shapes.
type PathKind int

const (
	// PathLine is a straight segment, used for center→primary links.
	PathLine PathKind = iota
	// PathQuadratic is a quadratic curve through a control point, used for
	// primary→secondary links.
	PathQuadratic
)

// LinkPath describes the geometry of one rendered link.
type LinkPath struct {
	Kind    PathKind
	Start   Point
	Control Point // Meaningful only for PathQuadratic.
	End     Point
}

// PathFor computes the path for a link between two laid-out nodes.
//
// Links from the central node are straight lines from the origin. Links from
// a primary to a secondary node curve through the segment midpoint, which
// bows the outer fan slightly and keeps adjacent links visually separate.
func PathFor(t *hierarchy.Tree, l hierarchy.Link) LinkPath {
	src, _ := t.Node(l.SourceID)
	dst, _ := t.Node(l.TargetID)
	start := NodePosition(src)
	end := NodePosition(dst)

	if src != nil && src.IsRoot() {
		return LinkPath{Kind: PathLine, Start: start, End: end}
	}
	mid := Point{X: (start.X + end.X) / 2, Y: (start.Y + end.Y) / 2}
	return LinkPath{Kind: PathQuadratic, Start: start, Control: mid, End: end}
}

// PointAt evaluates the path at parameter u in [0,1]. Used by animated
// transitions to interpolate a link into place.
func (p LinkPath) PointAt(u float64) Point {
	switch p.Kind {
	case PathQuadratic:
		// Standard quadratic Bezier evaluation.
		v := 1 - u
		return Point{
			X: v*v*p.Start.X + 2*v*u*p.Control.X + u*u*p.End.X,
			Y: v*v*p.Start.Y + 2*v*u*p.Control.Y + u*u*p.End.Y,
		}
	default:
		return Point{
			X: p.Start.X + (p.End.X-p.Start.X)*u,
			Y: p.Start.Y + (p.End.Y-p.Start.Y)*u,
		}
	}
}
