package physics

import "github.com/zeusync/pitch/pkg/vector"

// facingThreshold is the speed above which a body's heading is refreshed.
const facingThreshold = 0.1

// Facing turns an entity to face its direction of travel. The last heading is
// kept while the body is (nearly) at rest.
type Facing struct {
	Forward vector.Vector2
	heading vector.Vector2
}

// NewFacing starts out facing forward, the direction the unrotated sprite points.
func NewFacing(forward vector.Vector2) *Facing {
	return &Facing{Forward: forward, heading: forward}
}

// Apply sets the rotation of the body's entity in degrees.
func (f *Facing) Apply(body *Rigidbody) {
	if body.Velocity.Magnitude() > facingThreshold {
		f.heading = body.Velocity
	}
	body.Entity().Rotation = vector.SignedAngle(f.Forward, f.heading)
}

// Heading is the last direction of travel.
func (f *Facing) Heading() vector.Vector2 { return f.heading }
