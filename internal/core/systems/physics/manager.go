package physics

import (
	"slices"

	"github.com/zeusync/pitch/internal/core/models"
	"github.com/zeusync/pitch/pkg/vector"
)

// Manager owns the colliders of one scene and runs the per-tick all-pairs sweep.
// It is not safe for concurrent use; the simulation loop is its only caller.
type Manager struct {
	colliders []*Collider
	sweeping  bool
}

func NewManager() *Manager {
	return &Manager{}
}

// NewCollider creates an enabled collider on entity and registers it.
func (m *Manager) NewCollider(entity *models.Entity, offset vector.Vector2, shape Shape) (*Collider, error) {
	if entity == nil {
		return nil, ErrNilEntity
	}
	if err := validateShape(shape); err != nil {
		return nil, err
	}
	c := &Collider{
		entity:  entity,
		shape:   shape,
		offset:  offset,
		enabled: true,
		manager: m,
	}
	m.Add(c)
	return c, nil
}

func (m *Manager) NewCircle(entity *models.Entity, offset vector.Vector2, radius float64) (*Collider, error) {
	return m.NewCollider(entity, offset, Circle{Radius: radius})
}

func (m *Manager) NewBox(entity *models.Entity, offset, size vector.Vector2) (*Collider, error) {
	return m.NewCollider(entity, offset, Box{Size: size})
}

// Add registers c. Registering twice is a no-op.
func (m *Manager) Add(c *Collider) {
	if c == nil || c.registered {
		return
	}
	c.manager = m
	c.registered = true
	m.colliders = append(m.colliders, c)
}

// Remove deregisters c immediately. A sweep in progress skips it from then on.
func (m *Manager) Remove(c *Collider) {
	if c == nil || !c.registered || c.manager != m {
		return
	}
	c.registered = false
	m.colliders = slices.DeleteFunc(m.colliders, func(x *Collider) bool { return x == c })
}

// RemoveEntity deregisters every collider attached to e.
func (m *Manager) RemoveEntity(e *models.Entity) {
	for _, c := range slices.Clone(m.colliders) {
		if c.entity == e {
			m.Remove(c)
		}
	}
}

// Clear drops every registration, used when a scene is torn down.
func (m *Manager) Clear() {
	for _, c := range m.colliders {
		c.registered = false
	}
	m.colliders = nil
}

// Colliders returns the registered colliders in registration order.
func (m *Manager) Colliders() []*Collider {
	return slices.Clone(m.colliders)
}

func (m *Manager) Len() int { return len(m.colliders) }

// Update runs one sweep over a snapshot of the registry. Every ordered pair
// (a, b) of distinct enabled colliders that overlap notifies a with b; the
// reverse pair notifies b with a. Colliders removed or disabled by a handler
// are skipped for the rest of the sweep; colliders added during the sweep
// take part from the next one. It returns the number of notifications.
func (m *Manager) Update() int {
	if m.sweeping {
		return 0
	}
	m.sweeping = true
	defer func() { m.sweeping = false }()

	snapshot := slices.Clone(m.colliders)
	fired := 0
	for _, a := range snapshot {
		for _, b := range snapshot {
			if a == b || !live(a) || !live(b) {
				continue
			}
			if a.CheckCollision(b) {
				a.notify(b)
				fired++
			}
		}
	}
	return fired
}

// Collisions lists the enabled colliders currently overlapping c without
// raising notifications.
func (m *Manager) Collisions(c *Collider) []*Collider {
	var out []*Collider
	for _, o := range m.colliders {
		if o != c && live(o) && c.CheckCollision(o) {
			out = append(out, o)
		}
	}
	return out
}

// Hit returns the first enabled collider containing p, in registration order.
func (m *Manager) Hit(p vector.Vector2) (*Collider, bool) {
	for _, c := range m.colliders {
		if live(c) && c.ContainsPoint(p) {
			return c, true
		}
	}
	return nil, false
}

func live(c *Collider) bool {
	return c.registered && c.enabled && c.entity.IsActive()
}
