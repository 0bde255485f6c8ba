package physics

import (
	"github.com/zeusync/pitch/internal/core/models"
	"github.com/zeusync/pitch/pkg/vector"
)

// Bounds keeps an entity inside the pitch rectangle [Min, Max]. With Teleport
// set the entity wraps to the opposite edge; otherwise a body bounces off the
// edge it crossed and an entity without a body is clamped.
type Bounds struct {
	Min, Max vector.Vector2
	Teleport bool
}

// Apply enforces the bounds on e. body may be nil.
func (b Bounds) Apply(e *models.Entity, body *Rigidbody) {
	p := &e.Position
	switch {
	case p.X < b.Min.X:
		b.edge(&p.X, b.Min.X, b.Max.X, vector.Vec2(1, 0), body)
	case p.X > b.Max.X:
		b.edge(&p.X, b.Max.X, b.Min.X, vector.Vec2(-1, 0), body)
	}
	switch {
	case p.Y < b.Min.Y:
		b.edge(&p.Y, b.Min.Y, b.Max.Y, vector.Vec2(0, 1), body)
	case p.Y > b.Max.Y:
		b.edge(&p.Y, b.Max.Y, b.Min.Y, vector.Vec2(0, -1), body)
	}
}

func (b Bounds) edge(coord *float64, crossed, opposite float64, inward vector.Vector2, body *Rigidbody) {
	switch {
	case b.Teleport:
		*coord = opposite
	case body != nil:
		body.BounceOff(inward)
	default:
		*coord = crossed
	}
}

// Contains reports whether p lies within the bounds.
func (b Bounds) Contains(p vector.Vector2) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}
