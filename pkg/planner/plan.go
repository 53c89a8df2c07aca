// Package planner turns a free-text question into the ordered list of steps the
// chat UI shows while the backend works, and reduces that list as progress arrives.
//
// Every function here is pure: plans are values, inputs are never mutated and a
// new plan is returned from each operation.
package planner

import (
	"time"

	"github.com/google/uuid"
)

// StepStatus is the lifecycle state of a single plan step.
type StepStatus string

const (
	StatusPending  StepStatus = "pending"
	StatusActive   StepStatus = "active"
	StatusComplete StepStatus = "complete"
	StatusError    StepStatus = "error"
)

// IsTerminal reports whether a step in this status will not change again.
func (s StepStatus) IsTerminal() bool {
	return s == StatusComplete || s == StatusError
}

// QueryStep is one unit of a client-visible progress plan.
type QueryStep struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	Status      StepStatus  `json:"status"`
	DurationMs  *int64      `json:"duration_ms,omitempty"`
	Result      interface{} `json:"result,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// QueryPlan is the plan built for one user query. Step order is fixed at creation.
type QueryPlan struct {
	ID        string      `json:"id"`
	Query     string      `json:"query"`
	Steps     []QueryStep `json:"steps"`
	StartedAt time.Time   `json:"started_at"`
	EndedAt   *time.Time  `json:"ended_at,omitempty"`
}

// StepPatch holds the fields UpdateStep merges into a step. Nil fields are left as they are.
type StepPatch struct {
	Description *string
	Status      *StepStatus
	DurationMs  *int64
	Result      interface{}
	Error       *string
}

// NewPlan builds a fresh plan for query with every step pending.
func NewPlan(query string, now time.Time) QueryPlan {
	return QueryPlan{
		ID:        uuid.New().String(),
		Query:     query,
		Steps:     GeneratePlanSteps(query),
		StartedAt: now,
	}
}

// clone copies the step slice so callers can mutate the result freely.
func (p QueryPlan) clone() QueryPlan {
	out := p
	out.Steps = make([]QueryStep, len(p.Steps))
	copy(out.Steps, p.Steps)
	if p.EndedAt != nil {
		ended := *p.EndedAt
		out.EndedAt = &ended
	}
	return out
}

// ActiveStep returns the first active step, if any.
func (p QueryPlan) ActiveStep() (QueryStep, bool) {
	for _, step := range p.Steps {
		if step.Status == StatusActive {
			return step, true
		}
	}
	return QueryStep{}, false
}

// IsFinished reports whether every step reached a terminal status.
func (p QueryPlan) IsFinished() bool {
	for _, step := range p.Steps {
		if !step.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// Progress returns completed and total step counts.
func (p QueryPlan) Progress() (completed, total int) {
	for _, step := range p.Steps {
		if step.Status == StatusComplete {
			completed++
		}
	}
	return completed, len(p.Steps)
}
