package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateAndLookup(t *testing.T) {
	r := NewRegistry()

	a, err := r.Create("Player1", "1")
	require.NoError(t, err)
	b, err := r.Create("Player4", "2")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.True(t, a.IsActive())

	got, ok := r.FindByName("Player4")
	require.True(t, ok)
	assert.Same(t, b, got)

	_, err = r.Create("Player1", "1")
	assert.ErrorIs(t, err, ErrDuplicateName)

	assert.Equal(t, []*Entity{a}, r.FindByTag("1"))
	assert.Equal(t, []*Entity{a, b}, r.All())
}

func TestRegistryDestroyRunsHooks(t *testing.T) {
	r := NewRegistry()
	a, _ := r.Create("Ball", TagBall)

	var destroyed []*Entity
	r.OnDestroyed(func(e *Entity) { destroyed = append(destroyed, e) })

	require.NoError(t, r.Destroy(a.ID()))
	assert.Equal(t, []*Entity{a}, destroyed)
	assert.False(t, a.IsActive())
	assert.Zero(t, r.Len())

	assert.ErrorIs(t, r.Destroy(a.ID()), ErrEntityNotFound)
}

func TestSameTeam(t *testing.T) {
	r := NewRegistry()
	a, _ := r.Create("a", "1")
	b, _ := r.Create("b", "1")
	c, _ := r.Create("c", "2")
	w, _ := r.Create("w", "")

	assert.True(t, a.SameTeam(b))
	assert.False(t, a.SameTeam(c))
	assert.False(t, w.SameTeam(w))
	assert.False(t, a.SameTeam(nil))
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	a, _ := r.Create("a", "1")
	r.Clear()

	assert.False(t, a.IsActive())
	_, ok := r.FindByName("a")
	assert.False(t, ok)

	_, err := r.Create("a", "1")
	assert.NoError(t, err)
}
