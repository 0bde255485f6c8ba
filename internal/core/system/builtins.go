package system

import (
	"maps"
	"slices"

	"github.com/zeusync/pitch/internal/core/events/bus"
	"github.com/zeusync/pitch/internal/core/observability/log"
)

// Names of the systems every world registers.
const (
	SystemCollisions  = "collisions"
	SystemControllers = "controllers"
	SystemIntegrate   = "integrate"
	SystemPossession  = "possession"
	SystemBounds      = "bounds"
	SystemGoals       = "goals"
)

// builtins is the fixed-tick pipeline: contacts are resolved first so kicks
// and steals see this tick's touches, forces are integrated next, and the
// ball is carried and scored against the settled positions.
func builtins() []System {
	return []System{
		Func{ID: SystemCollisions, Phase: PhasePreUpdate, Order: PriorityNormal, Fn: func(w *World, _ float64) error {
			w.colliders.Update()
			return nil
		}},
		Func{ID: SystemControllers, Phase: PhaseUpdate, Order: PriorityNormal, Fn: func(w *World, _ float64) error {
			for _, a := range slices.Clone(w.actors) {
				if a.controller != nil {
					a.controller.Update()
				}
			}
			return nil
		}},
		Func{ID: SystemIntegrate, Phase: PhaseFixedUpdate, Order: PriorityNormal, Fn: func(w *World, _ float64) error {
			for _, a := range w.actors {
				if a.body != nil {
					a.body.Update()
				}
			}
			return nil
		}},
		Func{ID: SystemPossession, Phase: PhaseLateUpdate, Order: PriorityHighest, Fn: func(w *World, _ float64) error {
			if w.ball != nil {
				w.ball.Update()
			}
			return nil
		}},
		Func{ID: SystemBounds, Phase: PhaseLateUpdate, Order: PriorityHigh, Fn: func(w *World, _ float64) error {
			for _, a := range w.actors {
				if a.bounds != nil {
					a.bounds.Apply(a.entity, a.body)
				}
				if a.facing != nil {
					a.facing.Apply(a.body)
				}
			}
			return nil
		}},
		Func{ID: SystemGoals, Phase: PhaseLateUpdate, Order: PriorityLow, Fn: func(w *World, _ float64) error {
			return w.checkGoal()
		}},
	}
}

// checkGoal scores when the centre of the ball is inside a goal and kicks off again.
func (w *World) checkGoal() error {
	if w.ball == nil {
		return nil
	}
	p := w.ball.Entity().Position
	for _, a := range w.actors {
		if a.collider == nil || !a.collider.ContainsPoint(p) {
			continue
		}
		for _, team := range w.cfg.Teams {
			if team.Goal == "" || team.Goal != a.entity.Tag() {
				continue
			}
			scorer := w.opponentOf(team.Tag)
			if scorer != "" {
				w.score[scorer]++
			}
			w.logger.Info("goal", log.String("scorer", scorer), log.String("goal", team.Goal),
				log.Uint64("tick", w.tick), log.Any("score", w.score))
			w.publish(bus.NewEvent(EventGoal, w.id, Goal{
				Scorer: scorer,
				Goal:   team.Goal,
				Tick:   w.tick,
				Score:  maps.Clone(w.score),
			}))
			return w.kickoff()
		}
	}
	return nil
}

func (w *World) opponentOf(tag string) string {
	for _, t := range w.cfg.Teams {
		if t.Tag != tag {
			return t.Tag
		}
	}
	return ""
}
