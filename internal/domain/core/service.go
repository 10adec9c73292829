package core

import (
	"context"
	"fmt"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListEmployees(ctx context.Context, status string, limit, offset int) ([]Employee, error) {
	return s.store.ListEmployees(ctx, status, limit, offset)
}

func (s *Service) GetEmployee(ctx context.Context, id string) (Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

func (s *Service) CreateEmployee(ctx context.Context, emp Employee) (string, error) {
	return s.store.CreateEmployee(ctx, emp)
}

func (s *Service) CreateMetric(ctx context.Context, m PerformanceMetric) (string, error) {
	return s.store.CreateMetric(ctx, m)
}

func (s *Service) ListMetricsByEmployee(ctx context.Context, employeeID string) ([]PerformanceMetric, error) {
	return s.store.ListMetricsByEmployee(ctx, employeeID)
}

type IngestResult struct {
	Inserted int           `json:"inserted"`
	Issues   []IngestIssue `json:"issues,omitempty"`
}

// IngestRows persists parsed CSV rows. Rows for unknown employees are
// reported as issues; one bad row never aborts the batch.
func (s *Service) IngestRows(ctx context.Context, rows []MetricRow, issues []IngestIssue) (IngestResult, error) {
	result := IngestResult{Issues: issues}
	for i, row := range rows {
		employeeID, err := s.store.EmployeeIDByEmail(ctx, row.EmployeeEmail)
		if err != nil {
			result.Issues = append(result.Issues, IngestIssue{
				Line:   i + 2,
				Reason: fmt.Sprintf("unknown employee %s", row.EmployeeEmail),
			})
			continue
		}
		_, err = s.store.CreateMetric(ctx, PerformanceMetric{
			EmployeeID:     employeeID,
			Period:         row.Period,
			Score:          row.Score,
			Utilization:    row.Utilization,
			TasksCompleted: row.TasksCompleted,
			Date:           row.Date,
		})
		if err != nil {
			result.Issues = append(result.Issues, IngestIssue{
				Line:   i + 2,
				Reason: "insert failed",
			})
			continue
		}
		result.Inserted++
	}
	return result, nil
}
