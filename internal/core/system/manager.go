package system

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	ErrDuplicateSystem = errors.New("system: already registered")
	ErrSystemNotFound  = errors.New("system: not found")
	ErrNilSystem       = errors.New("system: nil system")
)

type entry struct {
	system  System
	enabled bool
	seq     int
	metrics Metrics
}

// Manager orchestrates the systems of a world.
// Systems run by phase, then by descending priority, then in registration order.
type Manager struct {
	entries []*entry
	seq     int
	onError []func(name string, err error)
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Register(s System) error {
	if s == nil {
		return ErrNilSystem
	}
	if m.find(s.Name()) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateSystem, s.Name())
	}
	m.seq++
	m.entries = append(m.entries, &entry{system: s, enabled: true, seq: m.seq})
	slices.SortStableFunc(m.entries, func(a, b *entry) int {
		if c := cmp.Compare(a.system.ExecutionPhase(), b.system.ExecutionPhase()); c != 0 {
			return c
		}
		if c := cmp.Compare(b.system.Priority(), a.system.Priority()); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	return nil
}

func (m *Manager) Unregister(name string) error {
	i := slices.IndexFunc(m.entries, func(e *entry) bool { return e.system.Name() == name })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	m.entries = slices.Delete(m.entries, i, i+1)
	return nil
}

func (m *Manager) Get(name string) (System, bool) {
	if e := m.find(name); e != nil {
		return e.system, true
	}
	return nil, false
}

func (m *Manager) SetEnabled(name string, enabled bool) error {
	e := m.find(name)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	e.enabled = enabled
	return nil
}

// ExecutionOrder lists system names in the order Update runs them.
func (m *Manager) ExecutionOrder() []string {
	names := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		names = append(names, e.system.Name())
	}
	return names
}

func (m *Manager) Metrics(name string) (Metrics, bool) {
	if e := m.find(name); e != nil {
		return e.metrics, true
	}
	return Metrics{}, false
}

// OnSystemError registers fn to be called whenever a system fails.
func (m *Manager) OnSystemError(fn func(name string, err error)) {
	m.onError = append(m.onError, fn)
}

// Update runs every enabled system once. A failing system does not stop the
// rest of the tick; all failures are returned joined.
func (m *Manager) Update(w *World, dt float64) error {
	var errs []error
	for _, e := range slices.Clone(m.entries) {
		if !e.enabled {
			continue
		}
		start := time.Now()
		err := e.system.Update(w, dt)
		elapsed := time.Since(start)

		e.metrics.ExecutionCount++
		e.metrics.TotalExecutionTime += elapsed
		e.metrics.MaxExecutionTime = max(e.metrics.MaxExecutionTime, elapsed)
		if err != nil {
			e.metrics.ErrorCount++
			e.metrics.LastError = err
			for _, fn := range m.onError {
				fn(e.system.Name(), err)
			}
			errs = append(errs, fmt.Errorf("%s: %w", e.system.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) find(name string) *entry {
	for _, e := range m.entries {
		if e.system.Name() == name {
			return e
		}
	}
	return nil
}
