package system

import (
	"fmt"
	"time"
)

// System is one step of the fixed-tick pipeline.
type System interface {
	Name() string
	Priority() Priority
	ExecutionPhase() ExecutionPhase
	Update(w *World, dt float64) error
}

// Priority orders systems within a phase. Higher runs first.
type Priority uint16

const (
	PriorityLowest  Priority = 200
	PriorityLow     Priority = 500
	PriorityNormal  Priority = 600
	PriorityHigh    Priority = 1000
	PriorityHighest Priority = 1300
)

// ExecutionPhase defines when a system runs within a tick
type ExecutionPhase uint8

const (
	PhasePreUpdate ExecutionPhase = iota
	PhaseUpdate
	PhaseFixedUpdate
	PhaseLateUpdate
)

func (p ExecutionPhase) String() string {
	switch p {
	case PhasePreUpdate:
		return "pre_update"
	case PhaseUpdate:
		return "update"
	case PhaseFixedUpdate:
		return "fixed_update"
	case PhaseLateUpdate:
		return "late_update"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Metrics provides runtime metrics for a system
type Metrics struct {
	ExecutionCount     uint64
	TotalExecutionTime time.Duration
	MaxExecutionTime   time.Duration
	ErrorCount         uint64
	LastError          error
}

// Func adapts a plain function to a System.
type Func struct {
	ID    string
	Phase ExecutionPhase
	Order Priority
	Fn    func(w *World, dt float64) error
}

func (f Func) Name() string { return f.ID }
func (f Func) Priority() Priority { return f.Order }
func (f Func) ExecutionPhase() ExecutionPhase { return f.Phase }
func (f Func) Update(w *World, dt float64) error { return f.Fn(w, dt) }
