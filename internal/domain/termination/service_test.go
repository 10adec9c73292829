package termination

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"perfhub/internal/domain/core"
	"perfhub/internal/domain/pip"
	"perfhub/internal/domain/settings"
)

type fakePlanStore struct {
	employees   map[string]core.Employee
	metrics     map[string][]core.PerformanceMetric
	plans       map[string]pip.Plan
	employeeErr map[string]error
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{
		employees:   map[string]core.Employee{},
		metrics:     map[string][]core.PerformanceMetric{},
		plans:       map[string]pip.Plan{},
		employeeErr: map[string]error{},
	}
}

func (f *fakePlanStore) ListNonTerminatedEmployees(ctx context.Context) ([]core.Employee, error) {
	var out []core.Employee
	for _, emp := range f.employees {
		if emp.Status != core.EmployeeStatusTerminated {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (f *fakePlanStore) GetEmployee(ctx context.Context, id string) (core.Employee, error) {
	if err := f.employeeErr[id]; err != nil {
		return core.Employee{}, err
	}
	emp, ok := f.employees[id]
	if !ok {
		return core.Employee{}, errors.New("not found")
	}
	return emp, nil
}

func (f *fakePlanStore) MetricsByEmployee(ctx context.Context, employeeID string) ([]core.PerformanceMetric, error) {
	return f.metrics[employeeID], nil
}

func (f *fakePlanStore) ActivePlanExists(ctx context.Context, employeeID string) (bool, error) {
	for _, plan := range f.plans {
		if plan.EmployeeID == employeeID && (plan.Status == pip.StatusActive || plan.Status == pip.StatusExtended) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePlanStore) CreatePlan(ctx context.Context, plan pip.Plan) (string, error) {
	id := fmt.Sprintf("plan-%d", len(f.plans)+1)
	plan.ID = id
	f.plans[id] = plan
	return id, nil
}

func (f *fakePlanStore) GetPlan(ctx context.Context, id string) (pip.Plan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return pip.Plan{}, pip.ErrPlanNotFound
	}
	return plan, nil
}

func (f *fakePlanStore) ListPlans(ctx context.Context, employeeID string) ([]pip.Plan, error) {
	var out []pip.Plan
	for _, plan := range f.plans {
		if employeeID == "" || plan.EmployeeID == employeeID {
			out = append(out, plan)
		}
	}
	return out, nil
}

func (f *fakePlanStore) ListDuePlans(ctx context.Context, now time.Time) ([]pip.Plan, error) {
	var out []pip.Plan
	for _, plan := range f.plans {
		if (plan.Status == pip.StatusActive || plan.Status == pip.StatusExtended) && !plan.EndDate.After(now) {
			out = append(out, plan)
		}
	}
	return out, nil
}

func (f *fakePlanStore) UpdatePlanStatus(ctx context.Context, planID, status string) error {
	plan, ok := f.plans[planID]
	if !ok {
		return pip.ErrPlanNotFound
	}
	plan.Status = status
	f.plans[planID] = plan
	return nil
}

func (f *fakePlanStore) UpdatePlanProgress(ctx context.Context, planID string, currentScore, progress float64) error {
	plan, ok := f.plans[planID]
	if !ok {
		return pip.ErrPlanNotFound
	}
	plan.CurrentScore = currentScore
	plan.Progress = progress
	f.plans[planID] = plan
	return nil
}

func (f *fakePlanStore) ExtendPlan(ctx context.Context, planID string, newEndDate time.Time) error {
	plan, ok := f.plans[planID]
	if !ok {
		return pip.ErrPlanNotFound
	}
	plan.Status = pip.StatusExtended
	plan.EndDate = newEndDate
	f.plans[planID] = plan
	return nil
}

func (f *fakePlanStore) SetEmployeeStatus(ctx context.Context, employeeID, status string) error {
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

type fakeRecordStore struct {
	records   []Record
	createErr error
}

func (f *fakeRecordStore) CreateRecord(ctx context.Context, rec Record) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	rec.ID = fmt.Sprintf("rec-%d", len(f.records)+1)
	f.records = append(f.records, rec)
	return rec.ID, nil
}

func (f *fakeRecordStore) ListRecords(ctx context.Context) ([]Record, error) {
	return f.records, nil
}

type fakeAudit struct {
	actions []string
}

func (f *fakeAudit) Record(ctx context.Context, actorID, action, entityType, entityID, requestID string, details any) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAudit) has(action string) bool {
	for _, recorded := range f.actions {
		if recorded == action {
			return true
		}
	}
	return false
}

func sweepSettings() settings.Settings {
	return settings.Settings{
		MinScoreThreshold:       70,
		MinUtilizationThreshold: 60,
		ConsecutiveLowPeriods:   3,
		DefaultGracePeriodDays:  30,
		MinImprovementPercent:   15,
	}
}

var sweepNow = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func duePlan(id, employeeID string, initialScore float64) pip.Plan {
	return pip.Plan{
		ID:                  id,
		EmployeeID:          employeeID,
		Status:              pip.StatusActive,
		StartDate:           sweepNow.AddDate(0, -2, 0),
		EndDate:             sweepNow.AddDate(0, 0, -1),
		InitialScore:        initialScore,
		ImprovementRequired: 15,
	}
}

func windowMetrics(employeeID string, scores ...float64) []core.PerformanceMetric {
	base := sweepNow.AddDate(0, 0, -3)
	metrics := make([]core.PerformanceMetric, 0, len(scores))
	for i, score := range scores {
		metrics = append(metrics, core.PerformanceMetric{
			EmployeeID:  employeeID,
			Period:      len(scores) - i,
			Score:       score,
			Utilization: 45,
			Date:        base.AddDate(0, 0, -7*i),
		})
	}
	return metrics
}

func newTestService(store *fakePlanStore, records *fakeRecordStore, auditRec *fakeAudit, dryRun bool, t *testing.T) *Service {
	svc := NewService(store, records, auditRec, nil, nil, t.TempDir(), dryRun)
	svc.now = func() time.Time { return sweepNow }
	return svc
}

func TestEvaluateTerminationsDryRunPrecedence(t *testing.T) {
	svc := newTestService(newFakePlanStore(), &fakeRecordStore{}, &fakeAudit{}, true, t)

	_, err := svc.EvaluateTerminations(context.Background(), hrPrincipal(), validRequest(), sweepSettings(), "req-1")
	if policyCode(t, err) != CodeDryRunEnabled {
		t.Fatalf("dry run must reject even valid signoffs, got %v", err)
	}
}

func TestEvaluateTerminationsKillSwitchIsNoOp(t *testing.T) {
	store := newFakePlanStore()
	store.employees["e1"] = core.Employee{ID: "e1", Status: core.EmployeeStatusPip}
	store.plans["p1"] = duePlan("p1", "e1", 60)
	store.metrics["e1"] = windowMetrics("e1", 61, 60, 60)
	svc := newTestService(store, &fakeRecordStore{}, &fakeAudit{}, false, t)

	cfg := sweepSettings()
	cfg.KillSwitchActive = true
	result, err := svc.EvaluateTerminations(context.Background(), hrPrincipal(), validRequest(), cfg, "req-1")
	if err != nil {
		t.Fatalf("kill switch must not be an error: %v", err)
	}
	if !result.Paused || result.Processed != 0 {
		t.Fatalf("expected paused no-op, got %+v", result)
	}
	if store.plans["p1"].Status != pip.StatusActive {
		t.Fatal("kill switch must prevent all transitions")
	}
}

func TestEvaluateTerminationsExecutesTermination(t *testing.T) {
	store := newFakePlanStore()
	store.employees["e1"] = core.Employee{ID: "e1", FirstName: "Ana", LastName: "Silva", Status: core.EmployeeStatusPip}
	store.plans["p1"] = duePlan("p1", "e1", 60)
	// latest 62: improvement 3.3%, below half the bar
	store.metrics["e1"] = windowMetrics("e1", 62, 58, 60)
	records := &fakeRecordStore{}
	auditRec := &fakeAudit{}
	svc := newTestService(store, records, auditRec, false, t)

	result, err := svc.EvaluateTerminations(context.Background(), hrPrincipal(), validRequest(), sweepSettings(), "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Processed != 1 || result.Results[0].Result != "terminated" {
		t.Fatalf("expected termination, got %+v", result)
	}
	if store.plans["p1"].Status != pip.StatusTerminated {
		t.Fatalf("plan not terminated: %s", store.plans["p1"].Status)
	}
	if store.employees["e1"].Status != core.EmployeeStatusTerminated {
		t.Fatalf("employee not terminated: %s", store.employees["e1"].Status)
	}
	if len(records.records) != 1 {
		t.Fatalf("expected one termination record, got %d", len(records.records))
	}
	rec := records.records[0]
	if rec.LetterText == "" || rec.LetterSHA256 == "" || rec.LetterPath == "" {
		t.Fatalf("record missing letter artifact: %+v", rec)
	}
	if rec.FinalScore != 62 || rec.FinalUtilization != 45 {
		t.Fatalf("unexpected final snapshot: %+v", rec)
	}
	if !auditRec.has("employee.terminated") || !auditRec.has("termination.recorded") {
		t.Fatalf("missing audit entries: %v", auditRec.actions)
	}
}

func TestEvaluateTerminationsCompletesSuccessfulPlan(t *testing.T) {
	store := newFakePlanStore()
	store.employees["e1"] = core.Employee{ID: "e1", Status: core.EmployeeStatusPip}
	store.plans["p1"] = duePlan("p1", "e1", 60)
	// latest 78: improvement 30%, average above threshold
	store.metrics["e1"] = windowMetrics("e1", 78, 74, 72)
	auditRec := &fakeAudit{}
	svc := newTestService(store, &fakeRecordStore{}, auditRec, false, t)

	result, err := svc.EvaluateTerminations(context.Background(), hrPrincipal(), validRequest(), sweepSettings(), "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Results[0].Result != "pip_completed" {
		t.Fatalf("expected completion, got %+v", result.Results[0])
	}
	if store.plans["p1"].Status != pip.StatusCompleted {
		t.Fatalf("plan not completed: %s", store.plans["p1"].Status)
	}
	if store.employees["e1"].Status != core.EmployeeStatusActive {
		t.Fatalf("employee must return to active: %s", store.employees["e1"].Status)
	}
	if !auditRec.has("pip.completed") {
		t.Fatalf("missing audit entry: %v", auditRec.actions)
	}
}

func TestEvaluateTerminationsExtendsPartialImprovement(t *testing.T) {
	store := newFakePlanStore()
	store.employees["e1"] = core.Employee{ID: "e1", Status: core.EmployeeStatusPip}
	store.plans["p1"] = duePlan("p1", "e1", 60)
	// latest 66: improvement 10%, between half-bar and bar
	store.metrics["e1"] = windowMetrics("e1", 66, 62, 60)
	svc := newTestService(store, &fakeRecordStore{}, &fakeAudit{}, false, t)

	result, err := svc.EvaluateTerminations(context.Background(), hrPrincipal(), validRequest(), sweepSettings(), "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Results[0].Result != "pip_extended" {
		t.Fatalf("expected extension, got %+v", result.Results[0])
	}
	plan := store.plans["p1"]
	if plan.Status != pip.StatusExtended {
		t.Fatalf("plan not extended: %s", plan.Status)
	}
	wantEnd := sweepNow.AddDate(0, 0, 30)
	if !plan.EndDate.Equal(wantEnd) {
		t.Fatalf("expected end date %v, got %v", wantEnd, plan.EndDate)
	}
}

func TestEvaluateTerminationsIsolatesFailures(t *testing.T) {
	store := newFakePlanStore()
	store.employees["good"] = core.Employee{ID: "good", Status: core.EmployeeStatusPip}
	store.plans["p-good"] = duePlan("p-good", "good", 60)
	store.metrics["good"] = windowMetrics("good", 62, 58, 60)
	store.plans["p-bad"] = duePlan("p-bad", "bad", 60)
	store.employeeErr["bad"] = errors.New("boom")
	svc := newTestService(store, &fakeRecordStore{}, &fakeAudit{}, false, t)

	result, err := svc.EvaluateTerminations(context.Background(), hrPrincipal(), validRequest(), sweepSettings(), "req-1")
	if err != nil {
		t.Fatalf("sweep must not abort: %v", err)
	}
	if result.Processed != 2 {
		t.Fatalf("expected both plans processed, got %d", result.Processed)
	}
	outcomes := map[string]string{}
	for _, res := range result.Results {
		outcomes[res.PipID] = res.Result
	}
	if outcomes["p-bad"] != "error" {
		t.Fatalf("expected error for bad plan: %v", outcomes)
	}
	if outcomes["p-good"] != "terminated" {
		t.Fatalf("bad plan must not block its sibling: %v", outcomes)
	}
}

func TestEvaluateTerminationsSkipsAlreadyTerminatedEmployee(t *testing.T) {
	store := newFakePlanStore()
	store.employees["e1"] = core.Employee{ID: "e1", Status: core.EmployeeStatusTerminated}
	store.plans["p1"] = duePlan("p1", "e1", 60)
	store.metrics["e1"] = windowMetrics("e1", 62, 58, 60)
	records := &fakeRecordStore{}
	svc := newTestService(store, records, &fakeAudit{}, false, t)

	result, err := svc.EvaluateTerminations(context.Background(), hrPrincipal(), validRequest(), sweepSettings(), "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Results[0].Result != "skipped" {
		t.Fatalf("terminated employee must be skipped, got %+v", result.Results[0])
	}
	if len(records.records) != 0 {
		t.Fatal("no record may be written for an already-terminated employee")
	}
}

func TestEvaluateTerminationsRecordInsertFailureKeepsTransition(t *testing.T) {
	store := newFakePlanStore()
	store.employees["e1"] = core.Employee{ID: "e1", Status: core.EmployeeStatusPip}
	store.plans["p1"] = duePlan("p1", "e1", 60)
	store.metrics["e1"] = windowMetrics("e1", 62, 58, 60)
	records := &fakeRecordStore{createErr: errors.New("db down")}
	auditRec := &fakeAudit{}
	svc := newTestService(store, records, auditRec, false, t)

	result, err := svc.EvaluateTerminations(context.Background(), hrPrincipal(), validRequest(), sweepSettings(), "req-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Results[0].Result != "terminated" {
		t.Fatalf("transition is authoritative despite artifact failure, got %+v", result.Results[0])
	}
	if result.Results[0].Err == "" {
		t.Fatal("artifact failure must be surfaced on the outcome")
	}
	if store.employees["e1"].Status != core.EmployeeStatusTerminated {
		t.Fatal("employee transition must stand")
	}
	if !auditRec.has("employee.terminated") {
		t.Fatalf("audit log is the authoritative record: %v", auditRec.actions)
	}
}
