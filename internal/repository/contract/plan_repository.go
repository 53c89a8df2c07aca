package contract

import (
	"errors"

	"chatpulse/pkg/planner"
)

var ErrRecordNotFound = errors.New("record not found")

// PlanRecord is a plan plus the identifier whose live subscribers see it.
type PlanRecord struct {
	Identifier string
	Plan       planner.QueryPlan
}

// PlanRepository keeps in-flight plans between requests.
type PlanRepository interface {
	Save(record PlanRecord)
	Get(id string) (PlanRecord, bool)
	// Update runs fn on the stored record and saves its result as one atomic
	// step. An error from fn leaves the record untouched. Missing ids return
	// ErrRecordNotFound.
	Update(id string, fn func(PlanRecord) (PlanRecord, error)) (PlanRecord, error)
	Delete(id string)
	Count() int
}
