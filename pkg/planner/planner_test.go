package planner

import (
	"reflect"
	"testing"
	"time"
)

func stepIDs(steps []QueryStep) []string {
	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID
	}
	return ids
}

func TestGeneratePlanSteps(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{
			name:  "empty query",
			query: "",
			want:  []string{StepAnalyze, StepAggregate},
		},
		{
			name:  "sentiment for merchant calls",
			query: "Show me sentiment for this merchant's calls",
			want:  []string{StepAnalyze, StepD1Query, StepCanvas, StepAggregate},
		},
		{
			name:  "search only",
			query: "Find the refund discussion",
			want:  []string{StepAnalyze, StepVectorize, StepAggregate},
		},
		{
			name:  "multi word keyword",
			query: "look for invoices",
			want:  []string{StepAnalyze, StepVectorize, StepAggregate},
		},
		{
			name:  "timeline and stats",
			query: "Dashboard of contact history",
			want:  []string{StepAnalyze, StepCanvas, StepTimeline, StepStats, StepAggregate},
		},
		{
			name:  "every optional step",
			query: "search sms timeline statistics for merchant",
			want:  []string{StepAnalyze, StepVectorize, StepD1Query, StepCanvas, StepTimeline, StepStats, StepAggregate},
		},
		{
			name:  "substring containment not tokens",
			query: "recall",
			want:  []string{StepAnalyze, StepD1Query, StepAggregate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := GeneratePlanSteps(tt.query)
			if got := stepIDs(steps); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GeneratePlanSteps(%q) = %v, want %v", tt.query, got, tt.want)
			}
			for _, s := range steps {
				if s.Status != StatusPending {
					t.Errorf("step %s status = %s, want pending", s.ID, s.Status)
				}
			}
		})
	}
}

func TestGeneratePlanStepsInvariants(t *testing.T) {
	queries := []string{
		"", "x", "about about about", "CALLS AND MESSAGES", "positive negative mood feeling",
		"canvas contact merchant", "interactions history", "stats analytics", "🙂 unicode",
	}
	for _, q := range queries {
		steps := GeneratePlanSteps(q)
		if steps[0].ID != StepAnalyze {
			t.Errorf("%q: first step = %s", q, steps[0].ID)
		}
		if steps[len(steps)-1].ID != StepAggregate {
			t.Errorf("%q: last step = %s", q, steps[len(steps)-1].ID)
		}
		seen := map[string]bool{}
		for _, s := range steps {
			if seen[s.ID] {
				t.Errorf("%q: duplicate step %s", q, s.ID)
			}
			seen[s.ID] = true
		}
	}
}

func TestActivateNextStep(t *testing.T) {
	plan := NewPlan("find calls", time.Unix(0, 0))

	next := ActivateNextStep(plan)
	if next.Steps[0].Status != StatusActive {
		t.Fatalf("first step status = %s, want active", next.Steps[0].Status)
	}
	if plan.Steps[0].Status != StatusPending {
		t.Errorf("input plan was mutated")
	}

	// A second activation leaves the active one alone and starts the next pending step.
	both := ActivateNextStep(next)
	if both.Steps[0].Status != StatusActive || both.Steps[1].Status != StatusActive {
		t.Errorf("statuses = %s, %s, want active, active", both.Steps[0].Status, both.Steps[1].Status)
	}
}

func TestActivateNextStepNoPending(t *testing.T) {
	plan := NewPlan("hello", time.Unix(0, 0))
	for i := range plan.Steps {
		plan.Steps[i].Status = StatusComplete
	}
	plan.Steps[0].Status = StatusError

	got := ActivateNextStep(plan)
	if !reflect.DeepEqual(got, plan) {
		t.Errorf("ActivateNextStep changed a plan with no pending steps")
	}
}

func TestCompleteActiveStep(t *testing.T) {
	plan := ActivateNextStep(NewPlan("search calls", time.Unix(0, 0)))

	done := CompleteActiveStep(plan, map[string]interface{}{"intent": "search"})
	if done.Steps[0].Status != StatusComplete {
		t.Errorf("status = %s, want complete", done.Steps[0].Status)
	}
	if done.Steps[0].Result == nil {
		t.Errorf("result not attached")
	}
	for i := 1; i < len(done.Steps); i++ {
		if done.Steps[i].Status != plan.Steps[i].Status {
			t.Errorf("step %s changed from %s to %s", done.Steps[i].ID, plan.Steps[i].Status, done.Steps[i].Status)
		}
	}
	if plan.Steps[0].Status != StatusActive {
		t.Errorf("input plan was mutated")
	}
}

func TestCompleteActiveStepWithoutActive(t *testing.T) {
	plan := NewPlan("search calls", time.Unix(0, 0))
	got := CompleteActiveStep(plan, "ignored")
	if !reflect.DeepEqual(got, plan) {
		t.Errorf("CompleteActiveStep changed a plan with no active step")
	}
}

func TestUpdateStep(t *testing.T) {
	plan := NewPlan("merchant stats", time.Unix(0, 0))

	duration := int64(420)
	got := UpdateStep(plan, StepCanvas, StepPatch{DurationMs: &duration})
	var canvas QueryStep
	for _, s := range got.Steps {
		if s.ID == StepCanvas {
			canvas = s
		}
	}
	if canvas.DurationMs == nil || *canvas.DurationMs != 420 {
		t.Errorf("duration not merged: %+v", canvas)
	}
	if canvas.Status != StatusPending {
		t.Errorf("status changed to %s by a duration-only patch", canvas.Status)
	}

	failed := FailStep(got, StepStats, "timeout")
	for _, s := range failed.Steps {
		if s.ID == StepStats && (s.Status != StatusError || s.Error != "timeout") {
			t.Errorf("FailStep result = %+v", s)
		}
	}

	unknown := UpdateStep(plan, "nope", StepPatch{DurationMs: &duration})
	if !reflect.DeepEqual(unknown, plan) {
		t.Errorf("unknown step id changed the plan")
	}
}

func TestFinish(t *testing.T) {
	plan := NewPlan("hi", time.Unix(0, 0))
	now := time.Unix(10, 0)

	if got := Finish(plan, now); got.EndedAt != nil {
		t.Fatalf("unfinished plan was stamped")
	}

	for plan.EndedAt == nil {
		plan = CompleteActiveStep(ActivateNextStep(plan), nil)
		plan = Finish(plan, now)
	}
	if !plan.EndedAt.Equal(now) {
		t.Errorf("EndedAt = %v, want %v", plan.EndedAt, now)
	}
	completed, total := plan.Progress()
	if completed != total {
		t.Errorf("progress = %d/%d", completed, total)
	}
}
