package system

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorder(calls *[]string, id string, phase ExecutionPhase, prio Priority) Func {
	return Func{ID: id, Phase: phase, Order: prio, Fn: func(*World, float64) error {
		*calls = append(*calls, id)
		return nil
	}}
}

func TestManagerExecutionOrder(t *testing.T) {
	var calls []string
	m := NewManager()
	require.NoError(t, m.Register(recorder(&calls, "late", PhaseLateUpdate, PriorityHighest)))
	require.NoError(t, m.Register(recorder(&calls, "update-low", PhaseUpdate, PriorityLow)))
	require.NoError(t, m.Register(recorder(&calls, "update-high", PhaseUpdate, PriorityHigh)))
	require.NoError(t, m.Register(recorder(&calls, "pre", PhasePreUpdate, PriorityLowest)))
	require.NoError(t, m.Register(recorder(&calls, "update-low-2", PhaseUpdate, PriorityLow)))

	want := []string{"pre", "update-high", "update-low", "update-low-2", "late"}
	assert.Equal(t, want, m.ExecutionOrder())

	require.NoError(t, m.Update(nil, 0))
	assert.Equal(t, want, calls)
}

func TestManagerRegistration(t *testing.T) {
	var calls []string
	m := NewManager()
	require.NoError(t, m.Register(recorder(&calls, "a", PhaseUpdate, PriorityNormal)))

	assert.ErrorIs(t, m.Register(recorder(&calls, "a", PhaseUpdate, PriorityNormal)), ErrDuplicateSystem)
	assert.ErrorIs(t, m.Register(nil), ErrNilSystem)

	s, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", s.Name())

	assert.ErrorIs(t, m.Unregister("missing"), ErrSystemNotFound)
	require.NoError(t, m.Unregister("a"))
	_, ok = m.Get("a")
	assert.False(t, ok)
	assert.Empty(t, m.ExecutionOrder())
}

func TestManagerDisabledSystemsAreSkipped(t *testing.T) {
	var calls []string
	m := NewManager()
	require.NoError(t, m.Register(recorder(&calls, "a", PhaseUpdate, PriorityNormal)))
	require.NoError(t, m.Register(recorder(&calls, "b", PhaseUpdate, PriorityNormal)))

	require.NoError(t, m.SetEnabled("a", false))
	require.NoError(t, m.Update(nil, 0))
	assert.Equal(t, []string{"b"}, calls)

	assert.ErrorIs(t, m.SetEnabled("zzz", true), ErrSystemNotFound)
}

func TestManagerCollectsErrors(t *testing.T) {
	boom := errors.New("boom")
	var calls []string
	m := NewManager()
	require.NoError(t, m.Register(Func{ID: "bad", Phase: PhasePreUpdate, Fn: func(*World, float64) error { return boom }}))
	require.NoError(t, m.Register(recorder(&calls, "good", PhaseUpdate, PriorityNormal)))

	var failed []string
	m.OnSystemError(func(name string, err error) {
		failed = append(failed, name)
		assert.ErrorIs(t, err, boom)
	})

	err := m.Update(nil, 0)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad")
	assert.Equal(t, []string{"good"}, calls, "a failing system does not stop the tick")
	assert.Equal(t, []string{"bad"}, failed)

	metrics, ok := m.Metrics("bad")
	require.True(t, ok)
	assert.Equal(t, uint64(1), metrics.ExecutionCount)
	assert.Equal(t, uint64(1), metrics.ErrorCount)
	assert.ErrorIs(t, metrics.LastError, boom)

	metrics, _ = m.Metrics("good")
	assert.Zero(t, metrics.ErrorCount)
}
