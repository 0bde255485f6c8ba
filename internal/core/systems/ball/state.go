package ball

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// State is the possession state of the ball.
type State uint8

const (
	// Free: the ball moves under plain physics.
	Free State = iota
	// Bound: the ball is carried by a possessor.
	Bound
	// Kicked: the ball was launched and bounces off whatever it hits.
	Kicked
)

func (s State) String() string {
	switch s {
	case Free:
		return "free"
	case Bound:
		return "bound"
	case Kicked:
		return "kicked"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// ParseState is the inverse of State.String.
func ParseState(s string) (State, error) {
	switch strings.ToLower(s) {
	case "free":
		return Free, nil
	case "bound":
		return Bound, nil
	case "kicked":
		return Kicked, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownState, s)
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	v, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Event types published on the bus.
const (
	EventBound  = "ball.bound"
	EventKicked = "ball.kicked"
	EventFreed  = "ball.freed"
)

// Transition is the payload of every ball event.
type Transition struct {
	From State         `json:"from"`
	To   State         `json:"to"`
	By   string        `json:"by,omitempty"`
	At   time.Duration `json:"at"`
}

var (
	ErrMissingRigidbody = errors.New("ball: rigidbody is required")
	ErrMissingCollider  = errors.New("ball: collider is required")
	ErrInvalidConfig    = errors.New("ball: invalid config")
	ErrUnknownState     = errors.New("ball: unknown state")
)

// Config holds the possession policy.
type Config struct {
	// KickedMinSpeed is the speed under which a kicked ball becomes free.
	KickedMinSpeed float64 `json:"kicked_min_speed" yaml:"kicked_min_speed"`
	// BindCooldown is the minimum time between a bind and a steal.
	BindCooldown time.Duration `json:"bind_cooldown" yaml:"bind_cooldown"`
	// KickerCooldown is how long a kicked ball bounces off its own kicker.
	KickerCooldown time.Duration `json:"kicker_cooldown" yaml:"kicker_cooldown"`
	// Teams lists the tags that may possess the ball.
	Teams []string `json:"teams" yaml:"teams"`
	// Ignore lists tags the ball neither binds to nor bounces off, e.g. goals.
	Ignore []string `json:"ignore,omitempty" yaml:"ignore,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		KickedMinSpeed: 2.0,
		BindCooldown:   700 * time.Millisecond,
		KickerCooldown: 100 * time.Millisecond,
		Teams:          []string{"1", "2"},
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.KickedMinSpeed < 0 {
		errs = append(errs, fmt.Errorf("%w: kicked_min_speed %v", ErrInvalidConfig, c.KickedMinSpeed))
	}
	if c.BindCooldown < 0 {
		errs = append(errs, fmt.Errorf("%w: bind_cooldown %v", ErrInvalidConfig, c.BindCooldown))
	}
	if c.KickerCooldown < 0 {
		errs = append(errs, fmt.Errorf("%w: kicker_cooldown %v", ErrInvalidConfig, c.KickerCooldown))
	}
	if len(c.Teams) == 0 {
		errs = append(errs, fmt.Errorf("%w: no teams", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

func (c Config) isTeam(tag string) bool   { return slices.Contains(c.Teams, tag) }
func (c Config) isIgnored(tag string) bool { return slices.Contains(c.Ignore, tag) }
