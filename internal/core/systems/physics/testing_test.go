package physics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/pitch/internal/core/models"
	"github.com/zeusync/pitch/pkg/vector"
)

func spawn(t *testing.T, r *models.Registry, name, tag string, pos vector.Vector2) *models.Entity {
	t.Helper()
	e, err := r.Create(name, tag)
	require.NoError(t, err)
	e.Position = pos
	return e
}

func body(t *testing.T, e *models.Entity, cfg BodyConfig) *Rigidbody {
	t.Helper()
	rb, err := NewRigidbody(e, cfg)
	require.NoError(t, err)
	return rb
}
