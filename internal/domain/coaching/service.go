package coaching

import (
	"context"
	"time"

	"perfhub/internal/domain/core"
	"perfhub/internal/domain/pip"
	"perfhub/internal/domain/settings"
)

// SessionStore persists coaching sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) (string, error)
	ListSessions(ctx context.Context, employeeID string) ([]Session, error)
}

// Service assembles the engine's input from stored state, runs the engine
// and persists the resulting session.
type Service struct {
	directory pip.StoreAPI
	sessions  SessionStore
	audit     pip.AuditRecorder
	now       func() time.Time
}

func NewService(directory pip.StoreAPI, sessions SessionStore, auditSvc pip.AuditRecorder) *Service {
	return &Service{
		directory: directory,
		sessions:  sessions,
		audit:     auditSvc,
		now:       time.Now,
	}
}

// Generate produces and persists a coaching session for one employee.
// Terminated employees are rejected before any state is written.
func (s *Service) Generate(ctx context.Context, req GenerateRequest, cfg settings.Settings, actorID, requestID string) (Session, error) {
	if req.EmployeeID == "" {
		return Session{}, ErrEmployeeRequired
	}
	if req.Score < 0 || req.Score > 100 {
		return Session{}, ErrScoreOutOfRange
	}

	emp, err := s.directory.GetEmployee(ctx, req.EmployeeID)
	if err != nil {
		return Session{}, ErrEmployeeNotFound
	}
	if emp.Status == core.EmployeeStatusTerminated {
		return Session{}, ErrEmployeeTerminated
	}

	history, err := s.directory.MetricsByEmployee(ctx, emp.ID)
	if err != nil {
		return Session{}, err
	}
	summary := pip.SummarizeHistory(emp.ID, history, cfg)

	pipActive, err := s.planActive(ctx, emp, req.PipID)
	if err != nil {
		return Session{}, err
	}

	advice := Generate(Input{
		CurrentScore:          req.Score,
		PreviousScore:         summary.PreviousScore,
		HasPreviousScore:      summary.HasPrevious,
		AverageScore:          summary.AverageScore,
		ConsecutiveLowPeriods: summary.ConsecutiveLowCount,
		Trend:                 summary.Trend.Direction,
		PipActive:             pipActive,
		RoleExpectations:      req.RoleExpectations,
	})

	session := Session{
		EmployeeID:       emp.ID,
		PipID:            req.PipID,
		Score:            req.Score,
		Category:         advice.Category,
		Priority:         advice.Priority,
		Feedback:         advice.Feedback,
		ActionItems:      advice.ActionItems,
		Timeframe:        advice.Timeframe,
		FollowUpRequired: advice.FollowUpRequired,
		CreatedAt:        s.now().UTC(),
	}
	id, err := s.sessions.CreateSession(ctx, session)
	if err != nil {
		return Session{}, err
	}
	session.ID = id

	if err := s.audit.Record(ctx, actorID, "coaching.generated", "employee", emp.ID, requestID, map[string]any{
		"sessionId": id,
		"category":  session.Category,
		"priority":  session.Priority,
		"followUp":  session.FollowUpRequired,
	}); err != nil {
		return session, err
	}
	return session, nil
}

// List returns an employee's sessions, most recent first.
func (s *Service) List(ctx context.Context, employeeID string) ([]Session, error) {
	if employeeID == "" {
		return nil, ErrEmployeeRequired
	}
	return s.sessions.ListSessions(ctx, employeeID)
}

// planActive reports whether the session should use the improvement-plan
// override. An explicit plan id wins over the employee's status flag.
func (s *Service) planActive(ctx context.Context, emp core.Employee, pipID string) (bool, error) {
	if pipID == "" {
		return emp.Status == core.EmployeeStatusPip, nil
	}
	plan, err := s.directory.GetPlan(ctx, pipID)
	if err != nil {
		return false, err
	}
	return plan.Status == pip.StatusActive || plan.Status == pip.StatusExtended, nil
}
