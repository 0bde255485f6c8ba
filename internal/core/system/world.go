package system

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/pitch/internal/core/events/bus"
	"github.com/zeusync/pitch/internal/core/models"
	"github.com/zeusync/pitch/internal/core/observability/log"
	"github.com/zeusync/pitch/internal/core/systems/ai"
	"github.com/zeusync/pitch/internal/core/systems/ball"
	"github.com/zeusync/pitch/internal/core/systems/physics"
	"github.com/zeusync/pitch/pkg/vector"
)

// Match event types published on the bus.
const (
	EventGoal  = "match.goal"
	EventReset = "match.reset"
)

var (
	ErrUnknownTeam = errors.New("system: tag is not a team")
	ErrNoBall      = errors.New("system: controllers need a ball")
)

// Goal is the payload of EventGoal.
type Goal struct {
	Scorer string         `json:"scorer"`
	Goal   string         `json:"goal"`
	Tick   uint64         `json:"tick"`
	Score  map[string]int `json:"score"`
}

// actor groups the parts spawned for one entity.
type actor struct {
	entity     *models.Entity
	body       *physics.Rigidbody
	collider   *physics.Collider
	controller *ai.Controller
	bounds     *physics.Bounds
	facing     *physics.Facing
}

// World owns one match: its entities, physics, ball and score. Tick advances
// the match by one fixed step; Run ticks in real time.
//
// Event handlers run inside Tick with the world locked and must not call back
// into the World.
type World struct {
	mu sync.RWMutex

	id      string
	cfg     MatchConfig
	logger  log.Log
	events  bus.EventBus
	systems *Manager
	clock   *ball.ManualClock
	step    time.Duration

	registry  *models.Registry
	colliders *physics.Manager
	actors    []*actor
	byEntity  map[*models.Entity]*actor
	ball      *ball.Machine

	tick  uint64
	score map[string]int
	subs  []bus.Subscription
}

// NewWorld builds the scene described by cfg. A nil logger discards logs and a
// nil bus gets replaced by a private one.
func NewWorld(cfg MatchConfig, logger log.Log, events bus.EventBus) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNop()
	}
	if events == nil {
		events = bus.New()
	}

	w := &World{
		id:        uuid.NewString(),
		cfg:       cfg,
		events:    events,
		systems:   NewManager(),
		clock:     &ball.ManualClock{},
		step:      time.Second / time.Duration(cfg.TickRate),
		registry:  models.NewRegistry(),
		colliders: physics.NewManager(),
		byEntity:  make(map[*models.Entity]*actor),
		score:     make(map[string]int),
	}
	w.logger = logger.Named("world").With(log.String("match_id", w.id))
	for _, t := range cfg.Teams {
		w.score[t.Tag] = 0
	}

	w.registry.OnDestroyed(w.forget)
	w.systems.OnSystemError(func(name string, err error) {
		w.logger.Error("system failed", log.String("system", name), log.Error(err))
	})
	for _, s := range builtins() {
		if err := w.systems.Register(s); err != nil {
			return nil, err
		}
	}

	for _, typ := range []string{ball.EventBound, ball.EventKicked, ball.EventFreed} {
		sub, err := events.Subscribe(typ, func(e bus.Event) error {
			w.logger.Debug("possession", log.String("event", e.Type()), log.Any("transition", e.Data()))
			return nil
		})
		if err != nil {
			w.Close()
			return nil, err
		}
		w.subs = append(w.subs, sub)
	}

	if err := w.buildScene(); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

func (w *World) ID() string { return w.id }
func (w *World) Config() MatchConfig { return w.cfg }
func (w *World) Events() bus.EventBus { return w.events }
func (w *World) Systems() *Manager { return w.systems }
func (w *World) Registry() *models.Registry { return w.registry }
func (w *World) Colliders() *physics.Manager { return w.colliders }
func (w *World) Ball() *ball.Machine { return w.ball }
func (w *World) Clock() ball.Clock { return w.clock }
func (w *World) StepDuration() time.Duration { return w.step }

func (w *World) TickCount() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tick
}

func (w *World) Score() map[string]int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return maps.Clone(w.score)
}

// Body returns the rigidbody spawned for e, or nil.
func (w *World) Body(e *models.Entity) *physics.Rigidbody {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.body(e)
}

// Controller returns the AI controller spawned for e, or nil.
func (w *World) Controller(e *models.Entity) *ai.Controller {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if a := w.byEntity[e]; a != nil {
		return a.controller
	}
	return nil
}

// body is Body for callers already holding mu.
func (w *World) body(e *models.Entity) *physics.Rigidbody {
	if a := w.byEntity[e]; a != nil {
		return a.body
	}
	return nil
}

// publish delivers e and logs subscriber failures. Called with mu held.
func (w *World) publish(e bus.Event) {
	if err := w.events.Publish(e); err != nil {
		w.logger.Warn("event handler failed", log.String("event", e.Type()), log.Error(err))
	}
}

// Tick advances the match by one fixed step.
func (w *World) Tick() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clock.Advance(w.step)
	w.tick++
	return w.systems.Update(w, w.step.Seconds())
}

// Run ticks at the configured rate until ctx is done. Tick errors are logged
// and do not stop the match.
func (w *World) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.step)
	defer ticker.Stop()

	w.mu.RLock()
	entities := w.registry.Len()
	w.mu.RUnlock()
	w.logger.Info("match started", log.Int("tick_rate", w.cfg.TickRate), log.Int("entities", entities))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("match stopped", log.Uint64("ticks", w.TickCount()), log.Any("score", w.Score()))
			return nil
		case <-ticker.C:
			if err := w.Tick(); err != nil {
				w.logger.Error("tick failed", log.Error(err))
			}
		}
	}
}

// Spawn instantiates t into the running match.
func (w *World) Spawn(t EntityTemplate) (*models.Entity, error) {
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.spawn(t)
}

// Destroy removes an entity and everything spawned with it.
func (w *World) Destroy(e *models.Entity) error {
	if e == nil {
		return models.ErrEntityNotFound
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.registry.Destroy(e.ID())
}

// Reset performs a kickoff: the scene is rebuilt from the config and the
// score is kept.
func (w *World) Reset() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.kickoff()
}

// Close releases the world's bus subscriptions.
func (w *World) Close() {
	for _, s := range w.subs {
		_ = w.events.Unsubscribe(s)
	}
	w.subs = nil
}

func (w *World) kickoff() error {
	if err := w.buildScene(); err != nil {
		return err
	}
	w.logger.Info("kickoff", log.Uint64("tick", w.tick), log.Any("score", w.score))
	w.publish(bus.NewEvent(EventReset, w.id, maps.Clone(w.score)))
	return nil
}

// buildScene drops every entity and collider and spawns the configured ones.
func (w *World) buildScene() error {
	w.colliders.Clear()
	w.registry.Clear()
	w.actors = nil
	clear(w.byEntity)
	w.ball = nil

	e, err := w.spawn(w.cfg.Ball)
	if err != nil {
		return fmt.Errorf("spawn ball: %w", err)
	}
	a := w.byEntity[e]
	w.ball, err = ball.NewMachine(a.body, a.collider, w.cfg.possession(),
		ball.WithClock(w.clock),
		ball.WithBodies(w.body),
		ball.WithBus(w.events),
	)
	if err != nil {
		return err
	}

	for _, t := range w.cfg.Entities {
		if _, err := w.spawn(t); err != nil {
			return fmt.Errorf("spawn %s: %w", t.Name, err)
		}
	}
	return nil
}

func (w *World) spawn(t EntityTemplate) (_ *models.Entity, err error) {
	e, err := w.registry.Create(t.Name, t.Tag)
	if err != nil {
		return nil, err
	}
	e.Position = t.Position
	e.Rotation = t.Rotation

	a := &actor{entity: e}
	w.actors = append(w.actors, a)
	w.byEntity[e] = a
	defer func() {
		if err != nil {
			_ = w.registry.Destroy(e.ID())
		}
	}()

	if t.Body != nil {
		if a.body, err = physics.NewRigidbody(e, *t.Body); err != nil {
			return nil, err
		}
	}
	if t.Collider != nil {
		shape, serr := t.Collider.shape()
		if serr != nil {
			return nil, serr
		}
		if a.collider, err = w.colliders.NewCollider(e, t.Collider.Offset, shape); err != nil {
			return nil, err
		}
		if len(t.BounceOff) > 0 && a.body != nil {
			a.collider.Subscribe(bouncer(a.body, t.BounceOff))
		}
	}
	if t.StayInBounds {
		a.bounds = &physics.Bounds{
			Max:      vector.Vec2(w.cfg.Pitch.Width, w.cfg.Pitch.Height),
			Teleport: t.Teleport,
		}
	}
	if t.Facing != nil && a.body != nil {
		a.facing = physics.NewFacing(*t.Facing)
	}
	if t.Role != "" {
		if a.controller, err = w.newController(t, a); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (w *World) newController(t EntityTemplate, a *actor) (*ai.Controller, error) {
	if w.ball == nil {
		return nil, ErrNoBall
	}
	role, err := ai.ParseRole(t.Role)
	if err != nil {
		return nil, err
	}
	team, ok := w.cfg.team(t.Tag)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTeam, t.Tag)
	}
	return ai.New(role, team.Side, a.body, w.ball, w.cfg.aiParams())
}

// forget drops the parts of a destroyed entity.
func (w *World) forget(e *models.Entity) {
	a := w.byEntity[e]
	if a == nil {
		return
	}
	delete(w.byEntity, e)
	w.actors = slices.DeleteFunc(w.actors, func(x *actor) bool { return x == a })
	w.colliders.RemoveEntity(e)
}

// bouncer reflects body off colliders carrying one of tags.
func bouncer(body *physics.Rigidbody, tags []string) physics.CollisionHandler {
	tags = slices.Clone(tags)
	return physics.CollisionHandlerFunc(func(self, other *physics.Collider) {
		if slices.Contains(tags, other.Entity().Tag()) {
			body.BounceOff(other.Normal(self.Position()))
		}
	})
}
