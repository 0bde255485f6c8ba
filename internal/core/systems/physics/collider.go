package physics

import (
	"errors"
	"fmt"

	"github.com/zeusync/pitch/internal/core/models"
	"github.com/zeusync/pitch/pkg/vector"
)

var ErrInvalidShape = errors.New("physics: invalid collider shape")

// CollisionHandler receives collision-entered notifications. self is the
// collider the handler is attached to; other is the collider it touched.
type CollisionHandler interface {
	OnCollisionEnter(self, other *Collider)
}

// CollisionHandlerFunc adapts a function to CollisionHandler.
type CollisionHandlerFunc func(self, other *Collider)

func (f CollisionHandlerFunc) OnCollisionEnter(self, other *Collider) { f(self, other) }

// Collider attaches a Shape to an entity. It is created through a Manager,
// which keeps it registered until Destroy.
type Collider struct {
	entity  *models.Entity
	shape   Shape
	offset  vector.Vector2
	enabled bool

	manager    *Manager
	registered bool
	handlers   []CollisionHandler
}

func validateShape(s Shape) error {
	switch sh := s.(type) {
	case Circle:
		if !(sh.Radius > 0) {
			return fmt.Errorf("%w: radius %v", ErrInvalidShape, sh.Radius)
		}
	case Box:
		if !(sh.Size.X > 0) || !(sh.Size.Y > 0) {
			return fmt.Errorf("%w: size %v", ErrInvalidShape, sh.Size)
		}
	default:
		return fmt.Errorf("%w: %T", ErrInvalidShape, s)
	}
	return nil
}

func (c *Collider) Entity() *models.Entity { return c.entity }
func (c *Collider) Shape() Shape           { return c.shape }
func (c *Collider) Offset() vector.Vector2 { return c.offset }
func (c *Collider) Enabled() bool          { return c.enabled }
func (c *Collider) Registered() bool       { return c.registered }

func (c *Collider) SetOffset(offset vector.Vector2) { c.offset = offset }

// SetEnabled toggles participation in sweeps. A disabled collider stays registered.
func (c *Collider) SetEnabled(enabled bool) { c.enabled = enabled }

// SetShape replaces the geometry, e.g. to resize a radius.
func (c *Collider) SetShape(s Shape) error {
	if err := validateShape(s); err != nil {
		return err
	}
	c.shape = s
	return nil
}

// Radius returns the circle radius, or 0 for non-circular colliders.
func (c *Collider) Radius() float64 {
	if circle, ok := c.shape.(Circle); ok {
		return circle.Radius
	}
	return 0
}

// Position is the world-space centre: entity position plus offset.
func (c *Collider) Position() vector.Vector2 {
	return c.entity.Position.Add(c.offset)
}

// Subscribe adds a handler invoked, in subscription order, on every
// collision-entered notification for this collider.
func (c *Collider) Subscribe(h CollisionHandler) {
	c.handlers = append(c.handlers, h)
}

// CheckCollision reports whether the two colliders overlap. Enabled state is
// not considered here; the Manager filters disabled colliders.
func (c *Collider) CheckCollision(other *Collider) bool {
	if other == nil || other == c {
		return false
	}
	return overlaps(c.Position(), c.shape, other.Position(), other.shape)
}

// ContainsPoint reports whether p lies inside or on the shape.
func (c *Collider) ContainsPoint(p vector.Vector2) bool {
	return containsPoint(c.Position(), c.shape, p)
}

// Normal returns the outward unit normal of the surface facing p.
func (c *Collider) Normal(p vector.Vector2) vector.Vector2 {
	return normalAt(c.Position(), c.shape, p)
}

// Destroy deregisters the collider. Safe to call from inside a collision handler.
func (c *Collider) Destroy() {
	if c.manager != nil {
		c.manager.Remove(c)
	}
}

func (c *Collider) notify(other *Collider) {
	for _, h := range c.handlers {
		h.OnCollisionEnter(c, other)
	}
}
