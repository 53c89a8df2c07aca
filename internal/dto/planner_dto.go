package dto

import "chatpulse/pkg/planner"

type CreatePlanRequest struct {
	Query      string `json:"query" validate:"required,max=2000"`
	Identifier string `json:"identifier" validate:"omitempty,max=128"`
}

type CompleteStepRequest struct {
	Result interface{} `json:"result"`
}

// UpdateStepRequest carries only the fields to change.
type UpdateStepRequest struct {
	Description *string     `json:"description" validate:"omitempty,max=200"`
	Status      *string     `json:"status" validate:"omitempty,oneof=pending active complete error"`
	DurationMs  *int64      `json:"duration_ms" validate:"omitempty,min=0"`
	Result      interface{} `json:"result"`
	Error       *string     `json:"error"`
}

func (r UpdateStepRequest) ToPatch() planner.StepPatch {
	patch := planner.StepPatch{
		Description: r.Description,
		DurationMs:  r.DurationMs,
		Result:      r.Result,
		Error:       r.Error,
	}
	if r.Status != nil {
		s := planner.StepStatus(*r.Status)
		patch.Status = &s
	}
	return patch
}

type PlanResponse struct {
	Plan      planner.QueryPlan `json:"plan"`
	Completed int               `json:"completed"`
	Total     int               `json:"total"`
	Finished  bool              `json:"finished"`
}

func NewPlanResponse(plan planner.QueryPlan) PlanResponse {
	completed, total := plan.Progress()
	return PlanResponse{
		Plan:      plan,
		Completed: completed,
		Total:     total,
		Finished:  plan.IsFinished(),
	}
}
