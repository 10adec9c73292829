package pip

import (
	"context"
	"errors"
	"fmt"
	"time"

	"perfhub/internal/domain/core"
	"perfhub/internal/domain/settings"
	"perfhub/internal/platform/metrics"
)

type Service struct {
	store     StoreAPI
	audit     AuditRecorder
	collector *metrics.Collector
	now       func() time.Time
}

func NewService(store StoreAPI, auditSvc AuditRecorder, collector *metrics.Collector) *Service {
	return &Service{store: store, audit: auditSvc, collector: collector, now: time.Now}
}

func (s *Service) GetPlan(ctx context.Context, id string) (Plan, error) {
	return s.store.GetPlan(ctx, id)
}

func (s *Service) ListPlans(ctx context.Context, employeeID string) ([]Plan, error) {
	return s.store.ListPlans(ctx, employeeID)
}

func (s *Service) EvaluateEmployee(ctx context.Context, employeeID string, cfg settings.Settings) (Evaluation, error) {
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return Evaluation{}, err
	}
	history, err := s.store.MetricsByEmployee(ctx, employeeID)
	if err != nil {
		return Evaluation{}, err
	}
	return Evaluate(emp, history, cfg)
}

// EvaluateCandidates sweeps every non-terminated employee and opens plans
// where the consecutive-low trigger fires. Per-employee failures are
// isolated into the result; one bad record never aborts the sweep.
func (s *Service) EvaluateCandidates(ctx context.Context, cfg settings.Settings, actorID, requestID string) (SweepResult, error) {
	if s.collector != nil {
		s.collector.SweepRun()
	}
	if cfg.KillSwitchActive {
		return SweepResult{
			Paused:  true,
			Message: "kill switch active, evaluation sweep paused",
			Results: []SweepOutcome{},
		}, nil
	}

	employees, err := s.store.ListNonTerminatedEmployees(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Results: make([]SweepOutcome, 0, len(employees))}
	for _, emp := range employees {
		result.Processed++
		outcome := SweepOutcome{EmployeeID: emp.ID}

		history, err := s.store.MetricsByEmployee(ctx, emp.ID)
		if err != nil {
			outcome.Outcome = "error"
			outcome.Err = "failed to load metrics"
			result.Results = append(result.Results, outcome)
			continue
		}

		eval, err := Evaluate(emp, history, cfg)
		if err != nil {
			outcome.Outcome = "error"
			outcome.Err = err.Error()
			result.Results = append(result.Results, outcome)
			continue
		}
		outcome.Detail = eval

		if !eval.ShouldCreatePip {
			outcome.Outcome = "no_action"
			result.Results = append(result.Results, outcome)
			continue
		}

		planID, err := s.openPlan(ctx, emp, history, eval, cfg, actorID, requestID)
		if err != nil {
			if errors.Is(err, ErrAlreadyOnPip) {
				outcome.Outcome = "skipped"
			} else {
				outcome.Outcome = "error"
			}
			outcome.Err = err.Error()
			result.Results = append(result.Results, outcome)
			continue
		}
		outcome.Outcome = "pip_created"
		outcome.PipID = planID
		result.Results = append(result.Results, outcome)
	}
	return result, nil
}

// openPlan persists a new plan. The already-on-PIP guard is re-checked
// immediately before the write so two overlapping sweeps cannot both create
// one; the storage layer backs this with a unique partial index.
func (s *Service) openPlan(ctx context.Context, emp core.Employee, history []core.PerformanceMetric, eval Evaluation, cfg settings.Settings, actorID, requestID string) (string, error) {
	exists, err := s.store.ActivePlanExists(ctx, emp.ID)
	if err != nil {
		return "", err
	}
	if exists {
		return "", ErrAlreadyOnPip
	}

	latestScore := 0.0
	if sorted := employeeMetricsByPeriod(emp.ID, history); len(sorted) > 0 {
		latestScore = sorted[0].Score
	}

	now := s.now()
	plan := Plan{
		EmployeeID: emp.ID,
		Status:     StatusActive,
		StartDate:  now,
		EndDate:    now.AddDate(0, 0, cfg.DefaultGracePeriodDays),
		Goals: []string{
			fmt.Sprintf("raise score above %.0f for every remaining period", cfg.MinScoreThreshold),
			fmt.Sprintf("hold utilization at or above %.0f%%", cfg.MinUtilizationThreshold),
			"attend weekly coaching sessions",
		},
		CoachingPlan:        "weekly one-on-one coaching with documented action items",
		InitialScore:        latestScore,
		CurrentScore:        latestScore,
		ImprovementRequired: cfg.MinImprovementPercent,
	}

	planID, err := s.store.CreatePlan(ctx, plan)
	if err != nil {
		return "", err
	}
	if err := s.store.SetEmployeeStatus(ctx, emp.ID, core.EmployeeStatusPip); err != nil {
		return "", err
	}
	if s.collector != nil {
		s.collector.PipCreated()
	}
	if err := s.audit.Record(ctx, actorID, "pip.created", "pip", planID, requestID, eval); err != nil {
		return planID, err
	}
	return planID, nil
}

// TransitionPlan applies a manual, FSM-gated status change. Termination is
// refused here: it only happens through the guarded workflow.
func (s *Service) TransitionPlan(ctx context.Context, planID, to, actorID, requestID string) (Plan, error) {
	if to == StatusTerminated {
		return Plan{}, errors.New("termination requires the guarded termination workflow")
	}

	plan, err := s.store.GetPlan(ctx, planID)
	if err != nil {
		return Plan{}, err
	}
	if err := AssertTransition(plan.Status, to); err != nil {
		return Plan{}, err
	}
	if err := s.store.UpdatePlanStatus(ctx, planID, to); err != nil {
		return Plan{}, err
	}

	// leaving the plan via a non-termination terminal state releases the
	// employee back to active
	if to == StatusClosed || to == StatusCompleted {
		if err := s.store.SetEmployeeStatus(ctx, plan.EmployeeID, core.EmployeeStatusActive); err != nil {
			return Plan{}, err
		}
	}

	if err := s.audit.Record(ctx, actorID, "pip.transition", "pip", planID, requestID, map[string]string{
		"from": plan.Status,
		"to":   to,
	}); err != nil {
		return Plan{}, err
	}

	plan.Status = to
	return plan, nil
}
