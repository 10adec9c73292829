package termination

import (
	"context"
	"log/slog"
	"time"

	"perfhub/internal/domain/auth"
	"perfhub/internal/domain/core"
	"perfhub/internal/domain/pip"
	"perfhub/internal/domain/settings"
	cryptoutil "perfhub/internal/platform/crypto"
	"perfhub/internal/platform/metrics"
)

// RecordStore persists the append-only termination records.
type RecordStore interface {
	CreateRecord(ctx context.Context, rec Record) (string, error)
	ListRecords(ctx context.Context) ([]Record, error)
}

type Service struct {
	plans     pip.StoreAPI
	records   RecordStore
	audit     pip.AuditRecorder
	crypto    *cryptoutil.Service
	collector *metrics.Collector
	letterDir string
	dryRun    bool
	now       func() time.Time
}

func NewService(plans pip.StoreAPI, records RecordStore, auditSvc pip.AuditRecorder, crypto *cryptoutil.Service, collector *metrics.Collector, letterDir string, dryRun bool) *Service {
	return &Service{
		plans:     plans,
		records:   records,
		audit:     auditSvc,
		crypto:    crypto,
		collector: collector,
		letterDir: letterDir,
		dryRun:    dryRun,
		now:       time.Now,
	}
}

func (s *Service) ListRecords(ctx context.Context) ([]Record, error) {
	return s.records.ListRecords(ctx)
}

// EvaluateTerminations is the guarded entry point. The gate runs before any
// evaluation logic; the kill switch then short-circuits the sweep as a
// successful no-op, distinct from the gate's error rejections. Each due
// plan is evaluated independently: one plan's failure never blocks its
// siblings.
func (s *Service) EvaluateTerminations(ctx context.Context, principal auth.Principal, req Request, cfg settings.Settings, requestID string) (SweepResult, error) {
	gate := Gate{DryRun: s.dryRun}
	if err := gate.Check(principal, req); err != nil {
		if s.collector != nil {
			s.collector.PolicyRejection()
		}
		return SweepResult{}, err
	}

	if s.collector != nil {
		s.collector.SweepRun()
	}
	if cfg.KillSwitchActive {
		return SweepResult{
			Paused:  true,
			Message: "kill switch active, termination sweep paused",
			Results: []Outcome{},
		}, nil
	}

	now := s.now()
	duePlans, err := s.plans.ListDuePlans(ctx, now)
	if err != nil {
		return SweepResult{}, err
	}

	result := SweepResult{Results: make([]Outcome, 0, len(duePlans))}
	for _, plan := range duePlans {
		result.Processed++
		result.Results = append(result.Results, s.reviewPlan(ctx, plan, cfg, principal, requestID, now))
	}
	return result, nil
}

func (s *Service) reviewPlan(ctx context.Context, plan pip.Plan, cfg settings.Settings, principal auth.Principal, requestID string, now time.Time) Outcome {
	outcome := Outcome{PipID: plan.ID, EmployeeID: plan.EmployeeID}

	emp, err := s.plans.GetEmployee(ctx, plan.EmployeeID)
	if err != nil {
		outcome.Result = "error"
		outcome.Err = "failed to load employee"
		return outcome
	}
	if emp.Status == core.EmployeeStatusTerminated {
		outcome.Result = "skipped"
		outcome.Err = "employee is already terminated"
		return outcome
	}

	history, err := s.plans.MetricsByEmployee(ctx, emp.ID)
	if err != nil {
		outcome.Result = "error"
		outcome.Err = "failed to load metrics"
		return outcome
	}

	review, err := pip.ReviewProgress(emp, history, plan, cfg, now)
	if err != nil {
		outcome.Result = "error"
		outcome.Err = err.Error()
		return outcome
	}
	outcome.Detail = review

	if err := s.plans.UpdatePlanProgress(ctx, plan.ID, review.LatestScore, progressPercent(review, plan)); err != nil {
		slog.Warn("plan progress update failed", "pipId", plan.ID, "err", err)
	}

	switch {
	case review.Succeeded:
		if err := s.completePlan(ctx, plan, principal, requestID, review); err != nil {
			outcome.Result = "error"
			outcome.Err = err.Error()
			return outcome
		}
		outcome.Result = "pip_completed"
	case review.ShouldTerminate:
		if err := s.terminate(ctx, plan, emp, history, review, principal, requestID, now, &outcome); err != nil {
			outcome.Result = "error"
			outcome.Err = err.Error()
			return outcome
		}
		outcome.Result = "terminated"
	case review.ShouldExtend:
		if err := s.extendPlan(ctx, plan, cfg, principal, requestID, now, review); err != nil {
			outcome.Result = "error"
			outcome.Err = err.Error()
			return outcome
		}
		outcome.Result = "pip_extended"
	default:
		outcome.Result = "monitored"
	}
	return outcome
}

func (s *Service) completePlan(ctx context.Context, plan pip.Plan, principal auth.Principal, requestID string, review pip.ProgressReview) error {
	if err := pip.AssertTransition(plan.Status, pip.StatusCompleted); err != nil {
		return err
	}
	if err := s.plans.UpdatePlanStatus(ctx, plan.ID, pip.StatusCompleted); err != nil {
		return err
	}
	if err := s.plans.SetEmployeeStatus(ctx, plan.EmployeeID, core.EmployeeStatusActive); err != nil {
		return err
	}
	if err := s.audit.Record(ctx, principal.ID, "pip.completed", "pip", plan.ID, requestID, review); err != nil {
		slog.Warn("audit pip.completed failed", "pipId", plan.ID, "err", err)
	}
	return nil
}

func (s *Service) extendPlan(ctx context.Context, plan pip.Plan, cfg settings.Settings, principal auth.Principal, requestID string, now time.Time, review pip.ProgressReview) error {
	// an already-extended plan keeps its status; only the first extension
	// is a lifecycle transition
	if plan.Status != pip.StatusExtended {
		if err := pip.AssertTransition(plan.Status, pip.StatusExtended); err != nil {
			return err
		}
	}
	newEnd := now.AddDate(0, 0, cfg.DefaultGracePeriodDays)
	if err := s.plans.ExtendPlan(ctx, plan.ID, newEnd); err != nil {
		return err
	}
	if err := s.audit.Record(ctx, principal.ID, "pip.extended", "pip", plan.ID, requestID, review); err != nil {
		slog.Warn("audit pip.extended failed", "pipId", plan.ID, "err", err)
	}
	return nil
}

// terminate applies the irreversible transition. The status change and its
// audit entry are authoritative; letter generation failing afterwards is
// logged and surfaced on the outcome but does not undo the termination.
func (s *Service) terminate(ctx context.Context, plan pip.Plan, emp core.Employee, history []core.PerformanceMetric, review pip.ProgressReview, principal auth.Principal, requestID string, now time.Time, outcome *Outcome) error {
	if err := pip.AssertTransition(plan.Status, pip.StatusTerminated); err != nil {
		return err
	}
	if err := s.plans.UpdatePlanStatus(ctx, plan.ID, pip.StatusTerminated); err != nil {
		return err
	}
	if err := s.plans.SetEmployeeStatus(ctx, emp.ID, core.EmployeeStatusTerminated); err != nil {
		return err
	}
	if err := s.audit.Record(ctx, principal.ID, "employee.terminated", "employee", emp.ID, requestID, review); err != nil {
		slog.Warn("audit employee.terminated failed", "employeeId", emp.ID, "err", err)
	}
	if s.collector != nil {
		s.collector.Termination()
	}

	input := LetterInput{
		Employee:         emp,
		FinalScore:       review.LatestScore,
		FinalUtilization: latestUtilization(history),
		Reason:           review.Reason,
		EffectiveDate:    now,
	}
	rec := Record{
		EmployeeID:       emp.ID,
		PipID:            plan.ID,
		FinalScore:       input.FinalScore,
		FinalUtilization: input.FinalUtilization,
		Reason:           review.Reason,
		LetterText:       BuildLetterText(input),
		TerminatedAt:     now,
	}

	artifact, err := WriteLetterPDF(s.letterDir, input, s.crypto)
	if err != nil {
		slog.Warn("termination letter generation failed", "employeeId", emp.ID, "err", err)
		outcome.Err = "letter generation failed: " + err.Error()
		if auditErr := s.audit.Record(ctx, principal.ID, "termination.letter_failed", "employee", emp.ID, requestID, map[string]string{"error": err.Error()}); auditErr != nil {
			slog.Warn("audit termination.letter_failed failed", "err", auditErr)
		}
	} else {
		rec.LetterPath = artifact.Path
		rec.LetterSHA256 = artifact.SHA256
	}

	recID, err := s.records.CreateRecord(ctx, rec)
	if err != nil {
		slog.Warn("termination record insert failed", "employeeId", emp.ID, "err", err)
		outcome.Err = "termination record insert failed"
		return nil
	}
	if err := s.audit.Record(ctx, principal.ID, "termination.recorded", "termination", recID, requestID, map[string]string{
		"letterSha256": rec.LetterSHA256,
	}); err != nil {
		slog.Warn("audit termination.recorded failed", "err", err)
	}
	return nil
}

func progressPercent(review pip.ProgressReview, plan pip.Plan) float64 {
	if plan.ImprovementRequired <= 0 {
		return 100
	}
	pct := review.ImprovementPercent / plan.ImprovementRequired * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func latestUtilization(history []core.PerformanceMetric) float64 {
	var latest *core.PerformanceMetric
	for i := range history {
		if latest == nil || history[i].Date.After(latest.Date) {
			latest = &history[i]
		}
	}
	if latest == nil {
		return 0
	}
	return latest.Utilization
}
