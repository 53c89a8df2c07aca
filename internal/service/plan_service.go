package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"chatpulse/internal/dto"
	"chatpulse/internal/pkg/logger"
	"chatpulse/internal/repository/contract"
	"chatpulse/pkg/events"
	"chatpulse/pkg/planner"
)

type IPlanService interface {
	Create(ctx context.Context, req *dto.CreatePlanRequest) (*dto.PlanResponse, error)
	Show(ctx context.Context, id string) (*dto.PlanResponse, error)
	Activate(ctx context.Context, id string) (*dto.PlanResponse, error)
	Complete(ctx context.Context, id string, req *dto.CompleteStepRequest) (*dto.PlanResponse, error)
	UpdateStep(ctx context.Context, id, stepID string, req *dto.UpdateStepRequest) (*dto.PlanResponse, error)
}

type planService struct {
	repo      contract.PlanRepository
	publisher IPublisherService
	logger    logger.ILogger
	now       func() time.Time
}

func NewPlanService(repo contract.PlanRepository, publisher IPublisherService, log logger.ILogger) IPlanService {
	return &planService{
		repo:      repo,
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

func (s *planService) Create(ctx context.Context, req *dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	plan := planner.NewPlan(req.Query, s.now())
	record := contract.PlanRecord{Identifier: req.Identifier, Plan: plan}
	s.repo.Save(record)

	s.logger.Info("PlanService", "Plan created", map[string]interface{}{
		"plan_id": plan.ID,
		"steps":   len(plan.Steps),
	})
	s.publish(ctx, record)

	res := dto.NewPlanResponse(plan)
	return &res, nil
}

func (s *planService) Show(ctx context.Context, id string) (*dto.PlanResponse, error) {
	record, ok := s.repo.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	res := dto.NewPlanResponse(record.Plan)
	return &res, nil
}

func (s *planService) Activate(ctx context.Context, id string) (*dto.PlanResponse, error) {
	return s.mutate(ctx, id, func(p planner.QueryPlan) (planner.QueryPlan, error) {
		return planner.ActivateNextStep(p), nil
	})
}

func (s *planService) Complete(ctx context.Context, id string, req *dto.CompleteStepRequest) (*dto.PlanResponse, error) {
	return s.mutate(ctx, id, func(p planner.QueryPlan) (planner.QueryPlan, error) {
		return planner.CompleteActiveStep(p, req.Result), nil
	})
}

// UpdateStep refuses to move a complete or failed step to another status.
func (s *planService) UpdateStep(ctx context.Context, id, stepID string, req *dto.UpdateStepRequest) (*dto.PlanResponse, error) {
	patch := req.ToPatch()
	return s.mutate(ctx, id, func(p planner.QueryPlan) (planner.QueryPlan, error) {
		if patch.Status != nil {
			for _, step := range p.Steps {
				if step.ID == stepID && step.Status.IsTerminal() && step.Status != *patch.Status {
					return p, fmt.Errorf("%w: %s is %s", ErrStepTerminal, stepID, step.Status)
				}
			}
		}
		return planner.UpdateStep(p, stepID, patch), nil
	})
}

// mutate applies a reducer atomically, stamps the end time once every step is
// terminal, and publishes the result when anything changed.
func (s *planService) mutate(ctx context.Context, id string, reduce func(planner.QueryPlan) (planner.QueryPlan, error)) (*dto.PlanResponse, error) {
	changed := false
	record, err := s.repo.Update(id, func(r contract.PlanRecord) (contract.PlanRecord, error) {
		after, err := reduce(r.Plan)
		if err != nil {
			return r, err
		}
		after = planner.Finish(after, s.now())
		changed = !reflect.DeepEqual(r.Plan, after)
		r.Plan = after
		return r, nil
	})
	if errors.Is(err, contract.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if changed {
		s.publish(ctx, record)
	}

	res := dto.NewPlanResponse(record.Plan)
	return &res, nil
}

func (s *planService) publish(ctx context.Context, record contract.PlanRecord) {
	if s.publisher == nil {
		return
	}
	event := events.NewLiveEvent(events.TypePlanUpdated, record.Identifier, events.ToMap(record.Plan))
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("PlanService", "Failed to publish plan update", map[string]interface{}{
			"plan_id": record.Plan.ID,
			"error":   err.Error(),
		})
	}
}
