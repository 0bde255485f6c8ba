package system

import (
	"maps"

	"github.com/zeusync/pitch/internal/core/models"
	"github.com/zeusync/pitch/internal/core/systems/ball"
	"github.com/zeusync/pitch/pkg/vector"
)

// Snapshot is a JSON-ready copy of the match state.
type Snapshot struct {
	MatchID   string         `json:"match_id"`
	Tick      uint64         `json:"tick"`
	ElapsedMS int64          `json:"elapsed_ms"`
	Score     map[string]int `json:"score"`
	Ball      BallView       `json:"ball"`
	Entities  []EntityView   `json:"entities"`
}

type BallView struct {
	State      ball.State `json:"state"`
	Possessor  string     `json:"possessor,omitempty"`
	LastKicker string     `json:"last_kicker,omitempty"`
}

type EntityView struct {
	ID       models.EntityID `json:"id"`
	Name     string          `json:"name"`
	Tag      string          `json:"tag"`
	Position vector.Vector2  `json:"position"`
	Rotation float64         `json:"rotation"`
	Velocity vector.Vector2  `json:"velocity"`
}

func (w *World) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	s := Snapshot{
		MatchID:   w.id,
		Tick:      w.tick,
		ElapsedMS: w.clock.Now().Milliseconds(),
		Score:     maps.Clone(w.score),
		Entities:  make([]EntityView, 0, len(w.actors)),
	}
	if w.ball != nil {
		s.Ball.State = w.ball.State()
		if p := w.ball.Possessor(); p != nil {
			s.Ball.Possessor = p.Name()
		}
		if k := w.ball.LastKicker(); k != nil {
			s.Ball.LastKicker = k.Name()
		}
	}
	for _, a := range w.actors {
		v := EntityView{
			ID:       a.entity.ID(),
			Name:     a.entity.Name(),
			Tag:      a.entity.Tag(),
			Position: a.entity.Position,
			Rotation: a.entity.Rotation,
		}
		if a.body != nil {
			v.Velocity = a.body.Velocity
		}
		s.Entities = append(s.Entities, v)
	}
	return s
}
