package physics

import (
	"errors"
	"fmt"

	"github.com/zeusync/pitch/internal/core/models"
	"github.com/zeusync/pitch/pkg/vector"
)

// RestVelocity is the speed below which a body is snapped to rest.
const RestVelocity = 0.05

var (
	ErrNilEntity       = errors.New("physics: nil entity")
	ErrInvalidMass     = errors.New("physics: mass must be positive")
	ErrInvalidDrag     = errors.New("physics: drag must be in [0, 1)")
	ErrInvalidBounce   = errors.New("physics: bounciness must not be negative")
	ErrInvalidMaxSpeed = errors.New("physics: max speed must not be negative")
)

// BodyConfig describes the linear-motion parameters of a Rigidbody.
type BodyConfig struct {
	Mass       float64 `json:"mass" yaml:"mass"`
	Drag       float64 `json:"drag" yaml:"drag"`
	Bounciness float64 `json:"bounciness" yaml:"bounciness"`
	// MaxSpeed caps the speed after forces are applied. Zero means no cap.
	MaxSpeed float64 `json:"max_speed,omitempty" yaml:"max_speed,omitempty"`
}

// Validate reports every invalid parameter.
func (c BodyConfig) Validate() error {
	var errs []error
	if !(c.Mass > 0) {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidMass, c.Mass))
	}
	if c.Drag < 0 || c.Drag >= 1 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidDrag, c.Drag))
	}
	if c.Bounciness < 0 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidBounce, c.Bounciness))
	}
	if c.MaxSpeed < 0 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidMaxSpeed, c.MaxSpeed))
	}
	return errors.Join(errs...)
}

// Rigidbody integrates the linear motion of one entity.
type Rigidbody struct {
	entity *models.Entity

	Velocity     vector.Vector2
	acceleration vector.Vector2

	mass       float64
	drag       float64
	bounciness float64
	maxSpeed   float64
}

// NewRigidbody attaches a body to entity. Invalid parameters fail here so the
// integrator never has to check them.
func NewRigidbody(entity *models.Entity, cfg BodyConfig) (*Rigidbody, error) {
	if entity == nil {
		return nil, ErrNilEntity
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Rigidbody{
		entity:     entity,
		mass:       cfg.Mass,
		drag:       cfg.Drag,
		bounciness: cfg.Bounciness,
		maxSpeed:   cfg.MaxSpeed,
	}, nil
}

func (r *Rigidbody) Entity() *models.Entity { return r.entity }
func (r *Rigidbody) Mass() float64          { return r.mass }
func (r *Rigidbody) Drag() float64          { return r.drag }
func (r *Rigidbody) Bounciness() float64    { return r.bounciness }

// Acceleration returns the forces accumulated since the last Update.
func (r *Rigidbody) Acceleration() vector.Vector2 { return r.acceleration }

func (r *Rigidbody) SetDrag(drag float64) error {
	if drag < 0 || drag >= 1 {
		return fmt.Errorf("%w: %v", ErrInvalidDrag, drag)
	}
	r.drag = drag
	return nil
}

func (r *Rigidbody) SetBounciness(b float64) error {
	if b < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidBounce, b)
	}
	r.bounciness = b
	return nil
}

// AddForce accumulates force/mass. Velocity changes on the next Update.
func (r *Rigidbody) AddForce(force vector.Vector2) {
	r.acceleration = r.acceleration.Add(force.Div(r.mass))
}

// Update advances one fixed tick.
func (r *Rigidbody) Update() {
	r.Velocity = r.Velocity.Add(r.acceleration)
	r.acceleration = vector.Zero
	r.Velocity = r.Velocity.ClampMagnitude(r.maxSpeed)
	r.Velocity = r.Velocity.Scale(1 - r.drag)
	if r.Velocity.Magnitude() < RestVelocity {
		r.Velocity = vector.Zero
	}
	r.entity.Position = r.entity.Position.Add(r.Velocity)
}

// BounceOff reflects the velocity about normal scaled by bounciness. A body
// already moving away from the surface is left alone, so repeated contact
// frames do not bounce it back in.
func (r *Rigidbody) BounceOff(normal vector.Vector2) {
	if r.Velocity.Dot(normal) > 0 {
		return
	}
	r.acceleration = vector.Zero
	r.Velocity = vector.Reflect(r.Velocity, normal).Scale(r.bounciness)
}

// Stop clears velocity and pending forces.
func (r *Rigidbody) Stop() {
	r.Velocity = vector.Zero
	r.acceleration = vector.Zero
}
