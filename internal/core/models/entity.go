package models

import (
	"github.com/zeusync/pitch/pkg/vector"
)

// EntityID identifies an entity within one world.
type EntityID uint64

// Well-known tags. Team tags are free-form strings supplied by config.
const (
	TagBall  = "Ball"
	TagWall  = "Wall"
	TagGoal1 = "Goal1"
	TagGoal2 = "Goal2"
)

// Transform is the mutable placement of an entity. Rotation is in degrees.
type Transform struct {
	Position vector.Vector2 `json:"position"`
	Rotation float64        `json:"rotation"`
}

// Entity is an opaque container owned by a Registry. Components such as
// rigidbodies and colliders hold a pointer to it and read or write its
// Transform directly.
type Entity struct {
	Transform

	id     EntityID
	name   string
	tag    string
	active bool
}

func (e *Entity) ID() EntityID      { return e.id }
func (e *Entity) Name() string      { return e.name }
func (e *Entity) Tag() string       { return e.tag }
func (e *Entity) SetTag(tag string) { e.tag = tag }
func (e *Entity) IsActive() bool    { return e.active }

// SameTeam reports whether both entities carry the same non-empty tag.
func (e *Entity) SameTeam(other *Entity) bool {
	if e == nil || other == nil || e.tag == "" {
		return false
	}
	return e.tag == other.tag
}

func (e *Entity) String() string { return e.name }
