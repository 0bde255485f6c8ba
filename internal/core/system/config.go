package system

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/pitch/internal/core/models"
	"github.com/zeusync/pitch/internal/core/systems/ai"
	"github.com/zeusync/pitch/internal/core/systems/ball"
	"github.com/zeusync/pitch/internal/core/systems/physics"
	"github.com/zeusync/pitch/pkg/vector"
)

var ErrInvalidConfig = errors.New("system: invalid config")

type PitchConfig struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

type KickConfig struct {
	High float64 `json:"high" yaml:"high"`
	Low  float64 `json:"low" yaml:"low"`
}

// TeamConfig declares a team. Entities whose tag equals Tag belong to it.
type TeamConfig struct {
	Tag  string  `json:"tag" yaml:"tag"`
	Side ai.Side `json:"side" yaml:"side"`
	// Goal is the tag of the goal the team defends.
	Goal string `json:"goal" yaml:"goal"`
}

// ColliderTemplate describes a circle (Radius) or a box (Size), never both.
type ColliderTemplate struct {
	Offset vector.Vector2 `json:"offset" yaml:"offset,omitempty"`
	Radius float64        `json:"radius,omitempty" yaml:"radius,omitempty"`
	Size   vector.Vector2 `json:"size" yaml:"size,omitempty"`
}

func (c ColliderTemplate) shape() (physics.Shape, error) {
	switch {
	case c.Radius > 0 && c.Size.IsZero():
		return physics.Circle{Radius: c.Radius}, nil
	case c.Radius == 0 && c.Size.X > 0 && c.Size.Y > 0:
		return physics.Box{Size: c.Size}, nil
	}
	return nil, fmt.Errorf("%w: need either radius or size, got %+v", physics.ErrInvalidShape, c)
}

// EntityTemplate is everything needed to spawn one entity. Templates are plain
// data; Spawn instantiates them.
type EntityTemplate struct {
	Name     string              `json:"name" yaml:"name"`
	Tag      string              `json:"tag" yaml:"tag"`
	Position vector.Vector2      `json:"position" yaml:"position"`
	Rotation float64             `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Body     *physics.BodyConfig `json:"body,omitempty" yaml:"body,omitempty"`
	Collider *ColliderTemplate   `json:"collider,omitempty" yaml:"collider,omitempty"`

	// Role attaches an AI controller (keeper, defender, attacker).
	Role string `json:"role,omitempty" yaml:"role,omitempty"`
	// BounceOff lists tags the body bounces off on contact.
	BounceOff    []string        `json:"bounce_off,omitempty" yaml:"bounce_off,omitempty"`
	StayInBounds bool            `json:"stay_in_bounds,omitempty" yaml:"stay_in_bounds,omitempty"`
	Teleport     bool            `json:"teleport,omitempty" yaml:"teleport,omitempty"`
	Facing       *vector.Vector2 `json:"facing,omitempty" yaml:"facing,omitempty"`
}

func (t EntityTemplate) validate() error {
	var errs []error
	if t.Name == "" {
		errs = append(errs, errors.New("entity without a name"))
	}
	if t.Body != nil {
		if err := t.Body.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if t.Collider != nil {
		if _, err := t.Collider.shape(); err != nil {
			errs = append(errs, err)
		}
	}
	if t.Role != "" {
		if _, err := ai.ParseRole(t.Role); err != nil {
			errs = append(errs, err)
		}
		if t.Body == nil {
			errs = append(errs, errors.New("role requires a body"))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("entity %q: %w", t.Name, err)
	}
	return nil
}

// MatchConfig is the full description of a match.
type MatchConfig struct {
	Pitch      PitchConfig      `json:"pitch" yaml:"pitch"`
	TickRate   int              `json:"tick_rate" yaml:"tick_rate"`
	Possession ball.Config      `json:"possession" yaml:"possession"`
	Kick       KickConfig       `json:"kick" yaml:"kick"`
	AISpeed    float64          `json:"ai_speed" yaml:"ai_speed"`
	Teams      []TeamConfig     `json:"teams" yaml:"teams"`
	Ball       EntityTemplate   `json:"ball" yaml:"ball"`
	Entities   []EntityTemplate `json:"entities" yaml:"entities"`
}

// DefaultConfig is the three-a-side arcade match on a 1280x720 pitch.
func DefaultConfig() MatchConfig {
	ballBody := physics.BodyConfig{Mass: 1, Drag: 0.025, Bounciness: 0.9}
	playerBody := physics.BodyConfig{Mass: 1, Drag: 0.04, Bounciness: 0.2}
	up := vector.Vec2(0, -1)
	possession := ball.DefaultConfig()
	possession.Teams = nil

	player := func(name, tag, role string, x, y float64) EntityTemplate {
		body := playerBody
		return EntityTemplate{
			Name:         name,
			Tag:          tag,
			Position:     vector.Vec2(x, y),
			Body:         &body,
			Collider:     &ColliderTemplate{Radius: 34},
			Role:         role,
			BounceOff:    []string{models.TagWall},
			StayInBounds: true,
			Facing:       &up,
		}
	}
	box := func(name, tag string, x, y, w, h float64) EntityTemplate {
		return EntityTemplate{
			Name:     name,
			Tag:      tag,
			Position: vector.Vec2(x, y),
			Collider: &ColliderTemplate{Size: vector.Vec2(w, h)},
		}
	}

	return MatchConfig{
		Pitch:      PitchConfig{Width: 1280, Height: 720},
		TickRate:   60,
		Possession: possession,
		Kick:       KickConfig{High: 17, Low: 12},
		AISpeed:    10,
		Teams: []TeamConfig{
			{Tag: "1", Side: ai.Left, Goal: models.TagGoal1},
			{Tag: "2", Side: ai.Right, Goal: models.TagGoal2},
		},
		Ball: EntityTemplate{
			Name:         "Ball",
			Tag:          models.TagBall,
			Position:     vector.Vec2(640, 360),
			Body:         &ballBody,
			Collider:     &ColliderTemplate{Radius: 7.5},
			StayInBounds: true,
		},
		Entities: []EntityTemplate{
			player("Player1", "1", "keeper", 25, 360),
			player("Player2", "1", "defender", 100, 420),
			player("Player3", "1", "attacker", 100, 300),
			player("Player4", "2", "attacker", 1125, 300),
			player("Player5", "2", "defender", 1125, 360),
			player("Player6", "2", "keeper", 1200, 420),

			box("Goal1", models.TagGoal1, 20, 360, 40, 160),
			box("Goal2", models.TagGoal2, 1260, 360, 40, 160),
			box("Post1Top", models.TagWall, 20, 275, 40, 10),
			box("Post1Bottom", models.TagWall, 20, 445, 40, 10),
			box("Post2Top", models.TagWall, 1260, 275, 40, 10),
			box("Post2Bottom", models.TagWall, 1260, 445, 40, 10),
		},
	}
}

// Validate reports every problem with the config at once.
func (c MatchConfig) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Pitch.Width <= 0 || c.Pitch.Height <= 0 {
		add("pitch size %vx%v", c.Pitch.Width, c.Pitch.Height)
	}
	if c.TickRate <= 0 {
		add("tick_rate %d", c.TickRate)
	}
	if c.Kick.High < 0 || c.Kick.Low < 0 {
		add("negative kick force")
	}
	if c.AISpeed < 0 {
		add("ai_speed %v", c.AISpeed)
	}
	if len(c.Teams) == 0 {
		add("no teams")
	}
	seen := make(map[string]bool)
	for _, t := range c.Teams {
		if t.Tag == "" || seen[t.Tag] {
			add("team tag %q is empty or duplicated", t.Tag)
		}
		seen[t.Tag] = true
	}
	if err := c.possession().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}

	if c.Ball.Body == nil {
		add("ball needs a body")
	}
	if c.Ball.Collider == nil || c.Ball.Collider.Radius <= 0 {
		add("ball needs a circle collider")
	}
	if c.Ball.Role != "" {
		add("ball cannot have a role")
	}

	names := make(map[string]bool)
	for _, t := range append([]EntityTemplate{c.Ball}, c.Entities...) {
		if err := t.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
		}
		if names[t.Name] {
			add("duplicate entity name %q", t.Name)
		}
		names[t.Name] = true
		if t.Role != "" && !seen[t.Tag] {
			add("entity %q has a role but tag %q is not a team", t.Name, t.Tag)
		}
	}
	return errors.Join(errs...)
}

// possession takes the team list from Teams unless it is set explicitly and
// makes the ball pass through goals.
func (c MatchConfig) possession() ball.Config {
	p := c.Possession
	if len(p.Teams) == 0 {
		for _, t := range c.Teams {
			p.Teams = append(p.Teams, t.Tag)
		}
	}
	p.Ignore = slices.Clone(p.Ignore)
	for _, t := range c.Teams {
		if t.Goal != "" && !slices.Contains(p.Ignore, t.Goal) {
			p.Ignore = append(p.Ignore, t.Goal)
		}
	}
	return p
}

func (c MatchConfig) aiParams() ai.Params {
	return ai.Params{
		Width:    c.Pitch.Width,
		Height:   c.Pitch.Height,
		TickRate: float64(c.TickRate),
		Speed:    c.AISpeed,
		HighKick: c.Kick.High,
		LowKick:  c.Kick.Low,
	}
}

func (c MatchConfig) team(tag string) (TeamConfig, bool) {
	for _, t := range c.Teams {
		if t.Tag == tag {
			return t, true
		}
	}
	return TeamConfig{}, false
}

// LoadConfig decodes YAML on top of DefaultConfig. Lists replace the defaults
// wholesale. An empty document yields the defaults.
func LoadConfig(r io.Reader) (MatchConfig, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return MatchConfig{}, fmt.Errorf("decode match config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return MatchConfig{}, err
	}
	return cfg, nil
}

func LoadConfigFile(path string) (MatchConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return MatchConfig{}, fmt.Errorf("open match config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}
