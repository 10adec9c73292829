package pip

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"perfhub/internal/domain/core"
)

type fakeStore struct {
	employees  map[string]core.Employee
	metrics    map[string][]core.PerformanceMetric
	plans      map[string]Plan
	nextPlanID int
	metricsErr map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees:  map[string]core.Employee{},
		metrics:    map[string][]core.PerformanceMetric{},
		plans:      map[string]Plan{},
		metricsErr: map[string]error{},
	}
}

func (f *fakeStore) ListNonTerminatedEmployees(ctx context.Context) ([]core.Employee, error) {
	var out []core.Employee
	for _, emp := range f.employees {
		if emp.Status != core.EmployeeStatusTerminated {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (f *fakeStore) GetEmployee(ctx context.Context, id string) (core.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return core.Employee{}, errors.New("not found")
	}
	return emp, nil
}

func (f *fakeStore) MetricsByEmployee(ctx context.Context, employeeID string) ([]core.PerformanceMetric, error) {
	if err := f.metricsErr[employeeID]; err != nil {
		return nil, err
	}
	return f.metrics[employeeID], nil
}

func (f *fakeStore) ActivePlanExists(ctx context.Context, employeeID string) (bool, error) {
	for _, plan := range f.plans {
		if plan.EmployeeID == employeeID && (plan.Status == StatusActive || plan.Status == StatusExtended) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreatePlan(ctx context.Context, plan Plan) (string, error) {
	f.nextPlanID++
	plan.ID = fmt.Sprintf("plan-%d", f.nextPlanID)
	f.plans[plan.ID] = plan
	return plan.ID, nil
}

func (f *fakeStore) GetPlan(ctx context.Context, id string) (Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return plan, nil
}

func (f *fakeStore) ListPlans(ctx context.Context, employeeID string) ([]Plan, error) {
	var out []Plan
	for _, plan := range f.plans {
		if employeeID == "" || plan.EmployeeID == employeeID {
			out = append(out, plan)
		}
	}
	return out, nil
}

func (f *fakeStore) ListDuePlans(ctx context.Context, now time.Time) ([]Plan, error) {
	var out []Plan
	for _, plan := range f.plans {
		if (plan.Status == StatusActive || plan.Status == StatusExtended) && !plan.EndDate.After(now) {
			out = append(out, plan)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdatePlanStatus(ctx context.Context, planID, status string) error {
	plan, ok := f.plans[planID]
	if !ok {
		return ErrPlanNotFound
	}
	plan.Status = status
	f.plans[planID] = plan
	return nil
}

func (f *fakeStore) UpdatePlanProgress(ctx context.Context, planID string, currentScore, progress float64) error {
	plan, ok := f.plans[planID]
	if !ok {
		return ErrPlanNotFound
	}
	plan.CurrentScore = currentScore
	plan.Progress = progress
	f.plans[planID] = plan
	return nil
}

func (f *fakeStore) ExtendPlan(ctx context.Context, planID string, newEndDate time.Time) error {
	plan, ok := f.plans[planID]
	if !ok {
		return ErrPlanNotFound
	}
	plan.Status = StatusExtended
	plan.EndDate = newEndDate
	f.plans[planID] = plan
	return nil
}

func (f *fakeStore) SetEmployeeStatus(ctx context.Context, employeeID, status string) error {
	emp, ok := f.employees[employeeID]
	if !ok {
		return errors.New("not found")
	}
	if emp.Status == core.EmployeeStatusTerminated {
		return nil
	}
	emp.Status = status
	f.employees[employeeID] = emp
	return nil
}

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Record(ctx context.Context, actorID, action, entityType, entityID, requestID string, details any) error {
	f.actions = append(f.actions, action)
	return nil
}

func TestEvaluateCandidatesCreatesPlan(t *testing.T) {
	store := newFakeStore()
	store.employees["e1"] = activeEmployee("e1")
	store.metrics["e1"] = metricsFromScores("e1", 50, 55, 60, 90, 90)
	auditRec := &fakeAudit{}
	svc := NewService(store, auditRec, nil)

	result, err := svc.EvaluateCandidates(context.Background(), testSettings(), "hr-1", "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 1 {
		t.Fatalf("expected 1 processed, got %d", result.Processed)
	}
	if result.Results[0].Outcome != "pip_created" {
		t.Fatalf("expected pip_created, got %+v", result.Results[0])
	}
	if store.employees["e1"].Status != core.EmployeeStatusPip {
		t.Fatalf("employee status not updated: %s", store.employees["e1"].Status)
	}
	plan := store.plans[result.Results[0].PipID]
	if plan.Status != StatusActive || plan.InitialScore != 50 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if len(auditRec.actions) != 1 || auditRec.actions[0] != "pip.created" {
		t.Fatalf("expected audit entry, got %v", auditRec.actions)
	}
}

func TestEvaluateCandidatesKillSwitchPauses(t *testing.T) {
	store := newFakeStore()
	store.employees["e1"] = activeEmployee("e1")
	store.metrics["e1"] = metricsFromScores("e1", 10, 10, 10)
	svc := NewService(store, &fakeAudit{}, nil)

	cfg := testSettings()
	cfg.KillSwitchActive = true
	result, err := svc.EvaluateCandidates(context.Background(), cfg, "hr-1", "req-1")
	if err != nil {
		t.Fatalf("kill switch must not be an error: %v", err)
	}
	if !result.Paused || result.Processed != 0 || len(result.Results) != 0 {
		t.Fatalf("expected paused empty sweep, got %+v", result)
	}
	if result.Message == "" {
		t.Fatal("expected explanatory message")
	}
	if len(store.plans) != 0 {
		t.Fatal("kill switch must prevent all writes")
	}
}

func TestEvaluateCandidatesSecondSweepIsNoOp(t *testing.T) {
	store := newFakeStore()
	store.employees["e1"] = activeEmployee("e1")
	store.metrics["e1"] = metricsFromScores("e1", 50, 55, 60, 90, 90)
	svc := NewService(store, &fakeAudit{}, nil)

	first, err := svc.EvaluateCandidates(context.Background(), testSettings(), "hr-1", "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Results[0].Outcome != "pip_created" {
		t.Fatalf("first sweep should create, got %+v", first.Results[0])
	}

	second, err := svc.EvaluateCandidates(context.Background(), testSettings(), "hr-1", "req-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Results[0].Outcome != "no_action" {
		t.Fatalf("second sweep must be a no-op, got %+v", second.Results[0])
	}
	eval, ok := second.Results[0].Detail.(Evaluation)
	if !ok || eval.Reason != "employee already has an active PIP" {
		t.Fatalf("expected already-on-PIP reason, got %+v", second.Results[0].Detail)
	}
	if len(store.plans) != 1 {
		t.Fatalf("expected a single plan, found %d", len(store.plans))
	}
}

func TestEvaluateCandidatesRechecksActivePlanBeforeWrite(t *testing.T) {
	// employee status still says active, but a plan row already exists:
	// the pre-write re-check must refuse a second plan.
	store := newFakeStore()
	store.employees["e1"] = activeEmployee("e1")
	store.metrics["e1"] = metricsFromScores("e1", 50, 55, 60)
	store.plans["stale"] = Plan{ID: "stale", EmployeeID: "e1", Status: StatusActive}
	svc := NewService(store, &fakeAudit{}, nil)

	result, err := svc.EvaluateCandidates(context.Background(), testSettings(), "hr-1", "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Results[0].Outcome != "skipped" {
		t.Fatalf("expected skipped outcome, got %+v", result.Results[0])
	}
	if len(store.plans) != 1 {
		t.Fatal("no second plan may be created")
	}
}

func TestEvaluateCandidatesIsolatesFailures(t *testing.T) {
	store := newFakeStore()
	store.employees["bad"] = activeEmployee("bad")
	store.employees["good"] = activeEmployee("good")
	store.metrics["good"] = metricsFromScores("good", 50, 55, 60)
	store.metricsErr["bad"] = errors.New("boom")
	svc := NewService(store, &fakeAudit{}, nil)

	result, err := svc.EvaluateCandidates(context.Background(), testSettings(), "hr-1", "req-1")
	if err != nil {
		t.Fatalf("sweep must not abort: %v", err)
	}
	if result.Processed != 2 {
		t.Fatalf("expected both employees processed, got %d", result.Processed)
	}
	outcomes := map[string]string{}
	for _, res := range result.Results {
		outcomes[res.EmployeeID] = res.Outcome
	}
	if outcomes["bad"] != "error" {
		t.Fatalf("expected error outcome for bad employee: %v", outcomes)
	}
	if outcomes["good"] != "pip_created" {
		t.Fatalf("expected plan for good employee: %v", outcomes)
	}
}

func TestTransitionPlanRefusesTermination(t *testing.T) {
	store := newFakeStore()
	store.plans["p1"] = Plan{ID: "p1", EmployeeID: "e1", Status: StatusActive}
	svc := NewService(store, &fakeAudit{}, nil)

	if _, err := svc.TransitionPlan(context.Background(), "p1", StatusTerminated, "hr-1", "req-1"); err == nil {
		t.Fatal("manual termination must be refused")
	}
	if store.plans["p1"].Status != StatusActive {
		t.Fatal("plan must be unchanged")
	}
}

func TestTransitionPlanRejectsIllegalMove(t *testing.T) {
	store := newFakeStore()
	store.plans["p1"] = Plan{ID: "p1", EmployeeID: "e1", Status: StatusClosed}
	svc := NewService(store, &fakeAudit{}, nil)

	_, err := svc.TransitionPlan(context.Background(), "p1", StatusActive, "hr-1", "req-1")
	var terr *TransitionError
	if !errors.As(err, &terr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if store.plans["p1"].Status != StatusClosed {
		t.Fatal("rejected transition must not mutate the plan")
	}
}

func TestTransitionPlanCompletedReleasesEmployee(t *testing.T) {
	store := newFakeStore()
	store.employees["e1"] = core.Employee{ID: "e1", Status: core.EmployeeStatusPip}
	store.plans["p1"] = Plan{ID: "p1", EmployeeID: "e1", Status: StatusActive}
	auditRec := &fakeAudit{}
	svc := NewService(store, auditRec, nil)

	plan, err := svc.TransitionPlan(context.Background(), "p1", StatusCompleted, "hr-1", "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Status != StatusCompleted {
		t.Fatalf("unexpected plan status: %s", plan.Status)
	}
	if store.employees["e1"].Status != core.EmployeeStatusActive {
		t.Fatalf("employee must return to active, got %s", store.employees["e1"].Status)
	}
	if len(auditRec.actions) != 1 || auditRec.actions[0] != "pip.transition" {
		t.Fatalf("expected transition audit entry, got %v", auditRec.actions)
	}
}
