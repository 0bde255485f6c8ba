package ball

import (
	"time"

	"github.com/zeusync/pitch/internal/core/events/bus"
	"github.com/zeusync/pitch/internal/core/models"
	"github.com/zeusync/pitch/internal/core/systems/physics"
	"github.com/zeusync/pitch/pkg/vector"
)

// carryThreshold is the possessor speed above which its heading is refreshed.
const carryThreshold = 0.1

// BodyLookup finds the rigidbody of another entity, or nil.
type BodyLookup func(*models.Entity) *physics.Rigidbody

// Machine is the possession state machine of one ball. It listens to the
// ball's collider and drives the ball's rigidbody.
//
// Rejected transitions (kicking a ball that is not bound, stealing during the
// cooldown) are silent no-ops.
type Machine struct {
	cfg      Config
	body     *physics.Rigidbody
	collider *physics.Collider
	clock    Clock
	bodies   BodyLookup
	events   bus.EventBus

	state     State
	possessor *physics.Collider
	carry     vector.Vector2

	lastPossessor *models.Entity
	lastKicker    *models.Entity
	lastBindTime  time.Duration
	lastKickTime  time.Duration
	everBound     bool
}

type Option func(*Machine)

// WithClock sets the time source for cooldowns. Defaults to a wall clock.
func WithClock(c Clock) Option {
	return func(m *Machine) { m.clock = c }
}

// WithBodies lets the machine read the possessor's velocity while carrying.
func WithBodies(lookup BodyLookup) Option {
	return func(m *Machine) { m.bodies = lookup }
}

// WithBus publishes every transition to b.
func WithBus(b bus.EventBus) Option {
	return func(m *Machine) { m.events = b }
}

// NewMachine creates a Free ball and subscribes it to collider.
func NewMachine(body *physics.Rigidbody, collider *physics.Collider, cfg Config, opts ...Option) (*Machine, error) {
	if body == nil {
		return nil, ErrMissingRigidbody
	}
	if collider == nil {
		return nil, ErrMissingCollider
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Machine{
		cfg:      cfg,
		body:     body,
		collider: collider,
		state:    Free,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.clock == nil {
		m.clock = NewWallClock()
	}
	collider.Subscribe(m)
	return m, nil
}

func (m *Machine) State() State                  { return m.state }
func (m *Machine) Config() Config                { return m.cfg }
func (m *Machine) Body() *physics.Rigidbody      { return m.body }
func (m *Machine) Collider() *physics.Collider   { return m.collider }
func (m *Machine) Entity() *models.Entity        { return m.body.Entity() }
func (m *Machine) LastKicker() *models.Entity    { return m.lastKicker }
func (m *Machine) LastPossessor() *models.Entity { return m.lastPossessor }

// Possessor returns the entity carrying the ball, or nil unless Bound.
func (m *Machine) Possessor() *models.Entity {
	if m.state != Bound || m.possessor == nil {
		return nil
	}
	return m.possessor.Entity()
}

// OnCollisionEnter implements physics.CollisionHandler.
func (m *Machine) OnCollisionEnter(self, other *physics.Collider) {
	oe := other.Entity()
	if m.cfg.isIgnored(oe.Tag()) {
		return
	}

	switch m.state {
	case Free:
		if m.cfg.isTeam(oe.Tag()) {
			m.bind(other, true)
		}
	case Bound:
		// only an opponent can take the ball off its possessor
		if m.cfg.isTeam(oe.Tag()) && !oe.SameTeam(m.possessor.Entity()) {
			m.bind(other, false)
		}
	case Kicked:
		now := m.clock.Now()
		switch {
		case oe == m.lastKicker && now-m.lastKickTime > m.cfg.KickerCooldown:
			m.bind(other, true)
		case oe != m.lastKicker && m.cfg.isTeam(oe.Tag()) && oe.SameTeam(m.lastPossessor):
			m.bind(other, true)
		default:
			m.body.BounceOff(other.Normal(self.Position()))
		}
	}
}

// Kick launches a bound ball with direction*force and reports whether it did.
func (m *Machine) Kick(direction vector.Vector2, force float64, kicker *models.Entity) bool {
	if m.state != Bound {
		return false
	}
	from := m.state
	m.body.AddForce(direction.Scale(force))
	m.state = Kicked
	m.possessor = nil
	m.lastKicker = kicker
	m.lastKickTime = m.clock.Now()
	m.publish(EventKicked, from, kicker)
	return true
}

// Update runs after the rigidbodies have been integrated for the tick.
func (m *Machine) Update() {
	switch m.state {
	case Bound:
		m.carryBall()
	case Kicked:
		if m.body.Velocity.Magnitude() < m.cfg.KickedMinSpeed {
			m.free()
		}
	}
}

// Reset returns the ball to a fresh Free state at position, forgetting
// possession history.
func (m *Machine) Reset(position vector.Vector2) {
	m.state = Free
	m.possessor = nil
	m.carry = vector.Zero
	m.lastPossessor = nil
	m.lastKicker = nil
	m.lastBindTime = 0
	m.lastKickTime = 0
	m.everBound = false
	m.body.Stop()
	m.Entity().Position = position
}

func (m *Machine) bind(to *physics.Collider, ignoreCooldown bool) {
	now := m.clock.Now()
	if !ignoreCooldown && m.everBound && now-m.lastBindTime < m.cfg.BindCooldown {
		return
	}
	from := m.state
	m.state = Bound
	m.possessor = to
	m.lastPossessor = to.Entity()
	m.lastBindTime = now
	m.everBound = true
	m.body.Stop()

	m.carry = m.Entity().Position.Sub(to.Entity().Position)
	if pb := m.possessorBody(); pb != nil && pb.Velocity.Magnitude() > carryThreshold {
		m.carry = pb.Velocity
	}
	m.publish(EventBound, from, to.Entity())
}

func (m *Machine) free() {
	from := m.state
	m.state = Free
	m.possessor = nil
	m.publish(EventFreed, from, nil)
}

// carryBall keeps the ball just outside the possessor, on the side it last moved toward.
func (m *Machine) carryBall() {
	p := m.possessor
	if p == nil || !p.Registered() || !p.Entity().IsActive() {
		m.free()
		return
	}
	if pb := m.possessorBody(); pb != nil && pb.Velocity.Magnitude() > carryThreshold {
		m.carry = pb.Velocity
	}
	m.body.Stop()
	m.Entity().Position = p.Entity().Position.Add(m.carry.Normalize().Scale(p.Radius()))
}

func (m *Machine) possessorBody() *physics.Rigidbody {
	if m.bodies == nil || m.possessor == nil {
		return nil
	}
	return m.bodies(m.possessor.Entity())
}

func (m *Machine) publish(eventType string, from State, by *models.Entity) {
	if m.events == nil {
		return
	}
	t := Transition{From: from, To: m.state, At: m.clock.Now()}
	if by != nil {
		t.By = by.Name()
	}
	// handlers are observers only; their errors do not affect the ball
	_ = m.events.Publish(bus.NewEvent(eventType, m.Entity().Name(), t))
}
