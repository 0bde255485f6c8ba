package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/pitch/internal/core/models"
	"github.com/zeusync/pitch/internal/core/systems/physics"
	"github.com/zeusync/pitch/pkg/vector"
)

type kick struct {
	dir    vector.Vector2
	force  float64
	kicker *models.Entity
}

type fakeBall struct {
	entity    *models.Entity
	possessor *models.Entity
	kicks     []kick
}

func (b *fakeBall) Entity() *models.Entity    { return b.entity }
func (b *fakeBall) Possessor() *models.Entity { return b.possessor }
func (b *fakeBall) Kick(d vector.Vector2, f float64, k *models.Entity) bool {
	b.kicks = append(b.kicks, kick{d, f, k})
	return true
}

var params = Params{Width: 1280, Height: 720, TickRate: 60, Speed: 10, HighKick: 17, LowKick: 12}

const step = 10.0 / 60

type scene struct {
	registry *models.Registry
	ball     *fakeBall
}

func newScene(t *testing.T, ballAt vector.Vector2) *scene {
	t.Helper()
	r := models.NewRegistry()
	e, err := r.Create("Ball", models.TagBall)
	require.NoError(t, err)
	e.Position = ballAt
	return &scene{registry: r, ball: &fakeBall{entity: e}}
}

func (s *scene) player(t *testing.T, name, tag string, role Role, side Side, pos vector.Vector2) *Controller {
	t.Helper()
	e, err := s.registry.Create(name, tag)
	require.NoError(t, err)
	e.Position = pos
	rb, err := physics.NewRigidbody(e, physics.BodyConfig{Mass: 1, Drag: 0.04, Bounciness: 0.2})
	require.NoError(t, err)
	c, err := New(role, side, rb, s.ball, params)
	require.NoError(t, err)
	return c
}

func assertForce(t *testing.T, c *Controller, want vector.Vector2) {
	t.Helper()
	got := c.Body().Acceleration()
	assert.True(t, got.ApproxEqual(want, 1e-9), "force %v, want %v", got, want)
}

func TestNewValidates(t *testing.T) {
	r := models.NewRegistry()
	e, _ := r.Create("P", "1")
	rb, err := physics.NewRigidbody(e, physics.BodyConfig{Mass: 1})
	require.NoError(t, err)
	ball := &fakeBall{}

	_, err = New(Keeper, Left, nil, ball, params)
	assert.ErrorIs(t, err, ErrMissingBody)
	_, err = New(Keeper, Left, rb, nil, params)
	assert.ErrorIs(t, err, ErrMissingBall)
	_, err = New(Keeper, Left, rb, ball, Params{})
	assert.ErrorIs(t, err, ErrInvalidPitch)
	_, err = New(Role(9), Left, rb, ball, params)
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{"keeper": Keeper, "Defender": Defender, "striker": Attacker} {
		got, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseRole("winger")
	assert.ErrorIs(t, err, ErrUnknownRole)

	var r Role
	require.NoError(t, r.UnmarshalText([]byte("attacker")))
	assert.Equal(t, Attacker, r)
}

func TestPossessorClearsTheBall(t *testing.T) {
	tests := []struct {
		role  Role
		side  Side
		dir   vector.Vector2
		force float64
	}{
		{Keeper, Left, vector.Vec2(1, 0), 17},
		{Keeper, Right, vector.Vec2(-1, 0), 17},
		{Defender, Left, vector.Vec2(1, 0), 12},
		{Defender, Right, vector.Vec2(-1, 0), 12},
	}
	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			s := newScene(t, vector.Vec2(640, 360))
			c := s.player(t, "P", "1", tt.role, tt.side, vector.Vec2(640, 360))
			s.ball.possessor = c.Entity()

			c.Update()
			require.Len(t, s.ball.kicks, 1)
			assert.Equal(t, kick{tt.dir, tt.force, c.Entity()}, s.ball.kicks[0])
			assertForce(t, c, vector.Zero)
		})
	}
}

func TestAttackerShootsFromTheBand(t *testing.T) {
	s := newScene(t, vector.Vec2(1000, 360))
	c := s.player(t, "A", "1", Attacker, Left, vector.Vec2(1000, 360))
	s.ball.possessor = c.Entity()

	c.Update()
	require.Len(t, s.ball.kicks, 1)
	assert.True(t, s.ball.kicks[0].dir.ApproxEqual(vector.Vec2(1, 0), 1e-9))
	assert.Equal(t, 17.0, s.ball.kicks[0].force)

	s2 := newScene(t, vector.Vec2(250, 300))
	c2 := s2.player(t, "B", "2", Attacker, Right, vector.Vec2(250, 300))
	s2.ball.possessor = c2.Entity()
	c2.Update()
	require.Len(t, s2.ball.kicks, 1)
	assert.Less(t, s2.ball.kicks[0].dir.X, 0.0)
}

func TestAttackerDribbles(t *testing.T) {
	s := newScene(t, vector.Vec2(600, 360))
	c := s.player(t, "A", "1", Attacker, Left, vector.Vec2(600, 360))
	s.ball.possessor = c.Entity()

	c.Update()
	assert.Empty(t, s.ball.kicks)
	assertForce(t, c, vector.Vec2(step, 0))
}

func TestAttackerComesBackFromBehindTheGoal(t *testing.T) {
	s := newScene(t, vector.Vec2(1200, 100))
	c := s.player(t, "A", "1", Attacker, Left, vector.Vec2(1200, 100))
	s.ball.possessor = c.Entity()

	c.Update()
	assert.Empty(t, s.ball.kicks)
	want := vector.Vec2(1088, 360).Sub(vector.Vec2(1200, 100)).Normalize().Scale(step)
	assertForce(t, c, want)
}

func TestKeeperTracksBallAlongGoalLine(t *testing.T) {
	s := newScene(t, vector.Vec2(400, 100))
	c := s.player(t, "K", "1", Keeper, Left, vector.Vec2(60, 360))

	c.Update()
	assertForce(t, c, vector.Vec2(0, -step))

	c.Body().Stop()
	s.ball.entity.Position = vector.Vec2(400, 600)
	c.Update()
	assertForce(t, c, vector.Vec2(0, step))
}

func TestKeeperChargesInDangerZone(t *testing.T) {
	s := newScene(t, vector.Vec2(160, 460))
	c := s.player(t, "K", "1", Keeper, Left, vector.Vec2(60, 360))

	c.Update()
	d := vector.Vec2(100, 100).Normalize()
	want := vector.Vec2(d.X/4, d.Y*4).Normalize().Scale(step)
	assertForce(t, c, want)
}

func TestKeeperReturnsHomeWhenTeamHasBall(t *testing.T) {
	s := newScene(t, vector.Vec2(400, 100))
	c := s.player(t, "K", "1", Keeper, Left, vector.Vec2(60, 360))
	mate := s.player(t, "M", "1", Defender, Left, vector.Vec2(400, 100))
	s.ball.possessor = mate.Entity()

	c.Update()
	assertForce(t, c, vector.Vec2(step, 0))
}

func TestDefenderZones(t *testing.T) {
	s := newScene(t, vector.Vec2(800, 200))
	c := s.player(t, "D", "1", Defender, Left, vector.Vec2(500, 200))

	c.Update()
	assertForce(t, c, vector.Vec2(step, 0))

	// ball deep in the opponent half: go back to the middle of the own half
	c.Body().Stop()
	s.ball.entity.Position = vector.Vec2(1100, 200)
	c.Update()
	want := vector.Vec2(320, 360).Sub(vector.Vec2(500, 200)).Normalize().Scale(step)
	assertForce(t, c, want)
}

func TestAttackerWaitsOnItsLaneOutsideItsHalf(t *testing.T) {
	s := newScene(t, vector.Vec2(200, 600))
	c := s.player(t, "A", "2", Attacker, Right, vector.Vec2(900, 300))

	// ball in the attacker's zone: chase it
	c.Update()
	assertForce(t, c, vector.Vec2(200, 600).Sub(vector.Vec2(900, 300)).Normalize().Scale(step))

	c.Body().Stop()
	s.ball.entity.Position = vector.Vec2(1000, 600)
	c.Update()
	assertForce(t, c, vector.Vec2(-step, 0))
}

func TestDisabledControllerDoesNothing(t *testing.T) {
	s := newScene(t, vector.Vec2(800, 200))
	c := s.player(t, "D", "1", Defender, Left, vector.Vec2(500, 200))
	c.SetEnabled(false)
	s.ball.possessor = c.Entity()

	c.Update()
	assert.Empty(t, s.ball.kicks)
	assertForce(t, c, vector.Zero)
}

func TestSideText(t *testing.T) {
	var s Side
	require.NoError(t, s.UnmarshalText([]byte("Right")))
	assert.Equal(t, Right, s)
	b, err := Left.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "left", string(b))
	assert.Error(t, s.UnmarshalText([]byte("centre")))
}
