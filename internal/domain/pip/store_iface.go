package pip

import (
	"context"
	"time"

	"perfhub/internal/domain/core"
)

// StoreAPI is what the sweep service needs from persistence. The pgx store
// implements it; tests use an in-memory fake.
type StoreAPI interface {
	ListNonTerminatedEmployees(ctx context.Context) ([]core.Employee, error)
	GetEmployee(ctx context.Context, id string) (core.Employee, error)
	MetricsByEmployee(ctx context.Context, employeeID string) ([]core.PerformanceMetric, error)

	ActivePlanExists(ctx context.Context, employeeID string) (bool, error)
	CreatePlan(ctx context.Context, plan Plan) (string, error)
	GetPlan(ctx context.Context, id string) (Plan, error)
	ListPlans(ctx context.Context, employeeID string) ([]Plan, error)
	ListDuePlans(ctx context.Context, now time.Time) ([]Plan, error)
	UpdatePlanStatus(ctx context.Context, planID, status string) error
	UpdatePlanProgress(ctx context.Context, planID string, currentScore, progress float64) error
	ExtendPlan(ctx context.Context, planID string, newEndDate time.Time) error

	SetEmployeeStatus(ctx context.Context, employeeID, status string) error
}

// AuditRecorder is the slice of the audit service the sweeps write through.
type AuditRecorder interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID string, details any) error
}
