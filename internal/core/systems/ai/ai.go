// Package ai steers computer-controlled players with the zone-based roles of
// the arcade game: a keeper guarding its goal line, a defender covering its
// own half and an attacker pushing into the opponent half.
package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zeusync/pitch/internal/core/models"
	"github.com/zeusync/pitch/internal/core/systems/physics"
	"github.com/zeusync/pitch/pkg/vector"
)

var (
	ErrUnknownRole  = errors.New("ai: unknown role")
	ErrMissingBody  = errors.New("ai: rigidbody is required")
	ErrMissingBall  = errors.New("ai: ball is required")
	ErrInvalidPitch = errors.New("ai: pitch must have a positive size")
)

// Ball is the part of the possession machine a controller needs.
type Ball interface {
	Entity() *models.Entity
	Possessor() *models.Entity
	Kick(direction vector.Vector2, force float64, kicker *models.Entity) bool
}

type Role uint8

const (
	Keeper Role = iota
	Defender
	Attacker
)

func (r Role) String() string {
	switch r {
	case Keeper:
		return "keeper"
	case Defender:
		return "defender"
	case Attacker:
		return "attacker"
	default:
		return fmt.Sprintf("role(%d)", uint8(r))
	}
}

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(s) {
	case "keeper", "goalkeeper":
		return Keeper, nil
	case "defender":
		return Defender, nil
	case "attacker", "striker":
		return Attacker, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Side is the half a team defends. Left defends x=0 and attacks toward +x.
type Side uint8

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "left":
		*s = Left
	case "right":
		*s = Right
	default:
		return fmt.Errorf("ai: unknown side %q", b)
	}
	return nil
}

func (s Side) attack() float64 {
	if s == Left {
		return 1
	}
	return -1
}

// Params are shared by every controller of a match.
type Params struct {
	Width, Height float64
	TickRate      float64
	Speed         float64
	HighKick      float64
	LowKick       float64
}

func (p Params) validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return ErrInvalidPitch
	}
	return nil
}

// force is the per-tick steering force.
func (p Params) force() float64 {
	if p.TickRate <= 0 {
		return p.Speed
	}
	return p.Speed / p.TickRate
}

// span is a closed interval of x or y.
type span struct{ lo, hi float64 }

func (s span) contains(v float64) bool { return s.lo <= v && v <= s.hi }
func (s span) mid() float64 { return (s.lo + s.hi) / 2 }

// Controller drives one player's rigidbody.
type Controller struct {
	role    Role
	side    Side
	body    *physics.Rigidbody
	ball    Ball
	params  Params
	enabled bool

	alert, danger span
	dangerY       span
}

func New(role Role, side Side, body *physics.Rigidbody, ball Ball, params Params) (*Controller, error) {
	if body == nil {
		return nil, ErrMissingBody
	}
	if ball == nil {
		return nil, ErrMissingBall
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		role:    role,
		side:    side,
		body:    body,
		ball:    ball,
		params:  params,
		enabled: true,
		dangerY: span{0, params.Height},
	}

	w := params.Width
	pct := func(lo, hi float64) span { return span{lo / 100 * w, hi / 100 * w} }
	switch {
	case role == Keeper && side == Left:
		c.danger, c.alert = pct(0, 20), pct(20, 60)
	case role == Keeper:
		c.danger, c.alert = pct(80, 100), pct(40, 80)
	case role == Defender && side == Left:
		c.danger, c.alert = pct(0, 50), pct(50, 75)
	case role == Defender:
		c.danger, c.alert = pct(50, 100), pct(25, 50)
	case role == Attacker && side == Left:
		c.danger, c.alert = pct(50, 100), pct(100, 100)
	case role == Attacker:
		c.danger, c.alert = pct(0, 50), pct(0, 0)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownRole, role)
	}
	return c, nil
}

func (c *Controller) Role() Role { return c.role }
func (c *Controller) Side() Side { return c.side }
func (c *Controller) Entity() *models.Entity { return c.body.Entity() }
func (c *Controller) Body() *physics.Rigidbody { return c.body }
func (c *Controller) Enabled() bool { return c.enabled }
func (c *Controller) SetEnabled(enabled bool) { c.enabled = enabled }

// Update applies one tick of steering, or kicks when this player has the ball.
func (c *Controller) Update() {
	if !c.enabled {
		return
	}
	self := c.body.Entity()
	if !self.IsActive() {
		return
	}
	possessor := c.ball.Possessor()
	if possessor == self {
		c.withBall()
		return
	}
	teamHasBall := possessor != nil && possessor.SameTeam(self)

	switch c.role {
	case Keeper:
		c.keeper(teamHasBall)
	default:
		c.chase()
	}
}

func (c *Controller) keeper(teamHasBall bool) {
	ball := c.ball.Entity().Position
	pos := c.body.Entity().Position

	switch {
	case !teamHasBall && c.alert.contains(ball.X):
		// track the ball along the goal line only
		switch {
		case ball.Y < pos.Y:
			c.push(vector.Vec2(0, -1))
		case ball.Y > pos.Y:
			c.push(vector.Vec2(0, 1))
		}
	case !teamHasBall && c.danger.contains(ball.X) && c.dangerY.contains(ball.Y):
		dir := ball.Sub(pos).Normalize()
		c.push(vector.Vec2(dir.X/4, dir.Y*4))
	default:
		c.push(vector.Vec2(c.danger.mid(), c.dangerY.mid()).Sub(pos))
	}
}

func (c *Controller) chase() {
	ball := c.ball.Entity().Position
	pos := c.body.Entity().Position

	if c.alert.contains(ball.X) || c.danger.contains(ball.X) {
		c.push(ball.Sub(pos))
		return
	}
	home := vector.Vec2(c.danger.mid(), c.params.Height/2)
	if c.role == Attacker {
		home.Y = pos.Y
	}
	c.push(home.Sub(pos))
}

func (c *Controller) withBall() {
	self := c.body.Entity()
	switch c.role {
	case Keeper:
		c.ball.Kick(vector.Vec2(c.side.attack(), 0), c.params.HighKick, self)
	case Defender:
		c.ball.Kick(vector.Vec2(c.side.attack(), 0), c.params.LowKick, self)
	case Attacker:
		c.attack()
	}
}

func (c *Controller) attack() {
	self := c.body.Entity()
	pos := self.Position
	w, h := c.params.Width, c.params.Height

	goal := vector.Vec2(0.95*w, h/2)
	front := vector.Vec2(0.85*w, h/2)
	shooting := span{0.75 * w, 0.85 * w}
	behind := pos.X > 0.92*w
	if c.side == Right {
		goal = vector.Vec2(0.05*w, h/2)
		front = vector.Vec2(0.15*w, h/2)
		shooting = span{0.15 * w, 0.25 * w}
		behind = pos.X < 0.08*w
	}

	dir := goal.Sub(pos).Normalize()
	if (span{0.2 * h, 0.8 * h}).contains(pos.Y) && shooting.contains(pos.X) {
		c.ball.Kick(dir, c.params.HighKick, self)
		return
	}
	if behind {
		dir = front.Sub(pos)
	}
	c.push(dir)
}

func (c *Controller) push(dir vector.Vector2) {
	c.body.AddForce(dir.Normalize().Scale(c.params.force()))
}
