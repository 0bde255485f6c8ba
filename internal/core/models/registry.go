package models

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrDuplicateName  = errors.New("entity name already in use")
)

// Registry owns entity lifecycle for one scene. Iteration follows creation
// order so that per-tick processing is deterministic.
type Registry struct {
	nextID   EntityID
	entities []*Entity
	byID     map[EntityID]*Entity
	byName   map[string]*Entity

	onDestroyed []func(*Entity)
}

func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[EntityID]*Entity),
		byName: make(map[string]*Entity),
	}
}

// Create adds an active entity. Names are unique within the registry.
func (r *Registry) Create(name, tag string) (*Entity, error) {
	if _, exists := r.byName[name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	r.nextID++
	e := &Entity{id: r.nextID, name: name, tag: tag, active: true}
	r.entities = append(r.entities, e)
	r.byID[e.id] = e
	r.byName[name] = e
	return e, nil
}

// OnDestroyed registers a hook run synchronously when an entity is destroyed,
// before Destroy returns. Components use it to drop their references.
func (r *Registry) OnDestroyed(fn func(*Entity)) {
	r.onDestroyed = append(r.onDestroyed, fn)
}

func (r *Registry) Destroy(id EntityID) error {
	e, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrEntityNotFound, id)
	}
	e.active = false
	delete(r.byID, id)
	delete(r.byName, e.name)
	r.entities = slices.DeleteFunc(r.entities, func(x *Entity) bool { return x == e })
	for _, fn := range r.onDestroyed {
		fn(e)
	}
	return nil
}

func (r *Registry) Get(id EntityID) (*Entity, bool) {
	e, ok := r.byID[id]
	return e, ok
}

func (r *Registry) FindByName(name string) (*Entity, bool) {
	e, ok := r.byName[name]
	return e, ok
}

func (r *Registry) FindByTag(tag string) []*Entity {
	var out []*Entity
	for _, e := range r.entities {
		if e.tag == tag {
			out = append(out, e)
		}
	}
	return out
}

// All returns a copy of the entity list in creation order.
func (r *Registry) All() []*Entity {
	return slices.Clone(r.entities)
}

func (r *Registry) Len() int { return len(r.entities) }

// Clear deactivates and forgets every entity. Destroy hooks are not run;
// callers clearing a scene reset their component stores themselves.
func (r *Registry) Clear() {
	for _, e := range r.entities {
		e.active = false
	}
	r.entities = nil
	r.byID = make(map[EntityID]*Entity)
	r.byName = make(map[string]*Entity)
}
