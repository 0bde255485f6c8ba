package physics

import (
	"math"

	"github.com/zeusync/pitch/pkg/vector"
)

// Shape is the closed set of collider geometries. Only Circle and Box
// implement it; adding a kind means extending overlaps below.
type Shape interface {
	isShape()
}

// Circle is a circle of the given radius around the collider position.
type Circle struct {
	Radius float64
}

// Box is an axis-aligned rectangle of full Size centred on the collider position.
type Box struct {
	Size vector.Vector2
}

func (Circle) isShape() {}
func (Box) isShape()    {}

// DefaultNormal is returned when a contact point gives no direction.
var DefaultNormal = vector.Vec2(1, 0)

type bounds struct {
	min, max vector.Vector2
}

func boxBounds(center vector.Vector2, b Box) bounds {
	half := b.Size.Scale(0.5)
	return bounds{min: center.Sub(half), max: center.Add(half)}
}

func (b bounds) clamp(p vector.Vector2) vector.Vector2 {
	return vector.Vec2(
		math.Max(b.min.X, math.Min(p.X, b.max.X)),
		math.Max(b.min.Y, math.Min(p.Y, b.max.Y)),
	)
}

func circleCircle(ca vector.Vector2, a Circle, cb vector.Vector2, b Circle) bool {
	return vector.Distance(ca, cb) < a.Radius+b.Radius
}

// circleBox uses the closest point of the box to the circle centre.
func circleBox(cc vector.Vector2, c Circle, cb vector.Vector2, b Box) bool {
	closest := boxBounds(cb, b).clamp(cc)
	return closest.Sub(cc).SqrMagnitude() < c.Radius*c.Radius
}

// boxBox treats both boxes as closed intervals, so touching edges overlap.
func boxBox(ca vector.Vector2, a Box, cb vector.Vector2, b Box) bool {
	ba, bb := boxBounds(ca, a), boxBounds(cb, b)
	return ba.min.X <= bb.max.X && ba.max.X >= bb.min.X &&
		ba.min.Y <= bb.max.Y && ba.max.Y >= bb.min.Y
}

// overlaps resolves the pairwise test for two placed shapes.
func overlaps(pa vector.Vector2, a Shape, pb vector.Vector2, b Shape) bool {
	switch sa := a.(type) {
	case Circle:
		switch sb := b.(type) {
		case Circle:
			return circleCircle(pa, sa, pb, sb)
		case Box:
			return circleBox(pa, sa, pb, sb)
		}
	case Box:
		switch sb := b.(type) {
		case Circle:
			return circleBox(pb, sb, pa, sa)
		case Box:
			return boxBox(pa, sa, pb, sb)
		}
	}
	return false
}

func containsPoint(center vector.Vector2, s Shape, p vector.Vector2) bool {
	switch sh := s.(type) {
	case Circle:
		return vector.Distance(center, p) <= sh.Radius
	case Box:
		b := boxBounds(center, sh)
		return p.X >= b.min.X && p.X <= b.max.X && p.Y >= b.min.Y && p.Y <= b.max.Y
	}
	return false
}

// normalAt returns the outward surface normal of s facing point p.
//
// For boxes the side nearest to p wins; on ties the scan order left, right,
// top, bottom decides, so horizontal normals beat vertical ones. Top is the
// smaller y (screen coordinates).
func normalAt(center vector.Vector2, s Shape, p vector.Vector2) vector.Vector2 {
	switch sh := s.(type) {
	case Circle:
		n := p.Sub(center).Normalize()
		if n.IsZero() {
			return DefaultNormal
		}
		return n
	case Box:
		b := boxBounds(center, sh)
		sides := [4]struct {
			dist   float64
			normal vector.Vector2
		}{
			{math.Abs(p.X - b.min.X), vector.Vec2(-1, 0)},
			{math.Abs(b.max.X - p.X), vector.Vec2(1, 0)},
			{math.Abs(p.Y - b.min.Y), vector.Vec2(0, -1)},
			{math.Abs(b.max.Y - p.Y), vector.Vec2(0, 1)},
		}
		best := 0
		for i := 1; i < len(sides); i++ {
			if sides[i].dist < sides[best].dist {
				best = i
			}
		}
		return sides[best].normal
	}
	return DefaultNormal
}
