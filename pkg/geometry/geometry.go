// Package geometry maps hierarchy nodes to polar and Cartesian coordinates
// and computes label layouts for the radial diagram.
//
// Everything in this package is a pure function of its inputs. Layout fields
// written onto nodes (Angle, Radius) are recomputed wholesale on every pass;
// nothing here holds state between calls.
package geometry

import (
	"math"

	"github.com/matzehuels/orbit/pkg/hierarchy"
)

// Point is a Cartesian coordinate relative to the diagram center.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// secondarySpread is the fraction of a primary node's angular slot that its
// children fan out across. Leaving a gap keeps neighboring fans apart.
const secondarySpread = 0.8

// Position converts polar coordinates to a Cartesian point. Angle 0 points
// straight up: the quarter-turn offset rotates the standard math convention
// so the first primary node sits at twelve o'clock.
func Position(angle, radius float64) Point {
	return Point{
		X: radius * math.Cos(angle-math.Pi/2),
		Y: radius * math.Sin(angle-math.Pi/2),
	}
}

// NodePosition returns the Cartesian position for a laid-out node.
// The central node is always at the origin regardless of its layout fields.
func NodePosition(n *hierarchy.Node) Point {
	if n.IsRoot() {
		return Point{}
	}
	return Position(n.Angle, n.Radius)
}

// AssignLayout writes Angle and Radius onto every node in the tree.
//
// Primary nodes are distributed evenly around the ring at the given radius.
// Each secondary node fans out across its parent's angular slot at
// outerRadius, centered on the parent's angle. The root keeps angle 0 and
// radius 0.
func AssignLayout(t *hierarchy.Tree, radius, outerRadius float64) {
	root := t.Root()
	if root == nil {
		return
	}
	root.Angle, root.Radius = 0, 0

	primaries := t.ChildNodes(root.ID)
	if len(primaries) == 0 {
		return
	}
	slot := 2 * math.Pi / float64(len(primaries))

	for i, p := range primaries {
		p.Angle = slot * float64(i)
		p.Radius = radius

		kids := t.ChildNodes(p.ID)
		if len(kids) == 0 {
			continue
		}
		span := slot * secondarySpread
		step := span / float64(len(kids))
		start := p.Angle - span/2 + step/2
		for j, k := range kids {
			k.Angle = start + step*float64(j)
			k.Radius = outerRadius
		}
	}
}
