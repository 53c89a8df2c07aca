package planner

import "time"

// ActivateNextStep marks the first pending step active. Other steps are left
// alone, including one that is already active: completing it is the caller's job.
func ActivateNextStep(plan QueryPlan) QueryPlan {
	for i, step := range plan.Steps {
		if step.Status != StatusPending {
			continue
		}
		out := plan.clone()
		out.Steps[i].Status = StatusActive
		return out
	}
	return plan
}

// CompleteActiveStep marks every active step complete and attaches result.
func CompleteActiveStep(plan QueryPlan, result interface{}) QueryPlan {
	var out *QueryPlan
	for i, step := range plan.Steps {
		if step.Status != StatusActive {
			continue
		}
		if out == nil {
			c := plan.clone()
			out = &c
		}
		out.Steps[i].Status = StatusComplete
		out.Steps[i].Result = result
	}
	if out == nil {
		return plan
	}
	return *out
}

// UpdateStep merges patch into the step with the given id. Unknown ids are a no-op.
func UpdateStep(plan QueryPlan, stepID string, patch StepPatch) QueryPlan {
	for i, step := range plan.Steps {
		if step.ID != stepID {
			continue
		}
		out := plan.clone()
		s := &out.Steps[i]
		if patch.Description != nil {
			s.Description = *patch.Description
		}
		if patch.Status != nil {
			s.Status = *patch.Status
		}
		if patch.DurationMs != nil {
			d := *patch.DurationMs
			s.DurationMs = &d
		}
		if patch.Result != nil {
			s.Result = patch.Result
		}
		if patch.Error != nil {
			s.Error = *patch.Error
		}
		return out
	}
	return plan
}

// FailStep is the common error transition: status error plus message.
func FailStep(plan QueryPlan, stepID string, message string) QueryPlan {
	status := StatusError
	return UpdateStep(plan, stepID, StepPatch{Status: &status, Error: &message})
}

// Finish stamps EndedAt once every step is terminal. Unfinished or already
// finished plans are returned unchanged.
func Finish(plan QueryPlan, now time.Time) QueryPlan {
	if plan.EndedAt != nil || !plan.IsFinished() {
		return plan
	}
	out := plan.clone()
	out.EndedAt = &now
	return out
}
