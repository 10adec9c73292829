package pip

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"perfhub/internal/domain/core"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListNonTerminatedEmployees(ctx context.Context) ([]core.Employee, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, first_name, last_name, email, role_title, department,
           COALESCE(manager_id::text, ''), status, hired_at, created_at, updated_at
    FROM employees
    WHERE status != $1
    ORDER BY last_name, first_name
  `, core.EmployeeStatusTerminated)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.Employee
	for rows.Next() {
		var emp core.Employee
		if err := rows.Scan(&emp.ID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.RoleTitle,
			&emp.Department, &emp.ManagerID, &emp.Status, &emp.HiredAt, &emp.CreatedAt, &emp.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, id string) (core.Employee, error) {
	var emp core.Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id, first_name, last_name, email, role_title, department,
           COALESCE(manager_id::text, ''), status, hired_at, created_at, updated_at
    FROM employees WHERE id = $1
  `, id).Scan(&emp.ID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.RoleTitle,
		&emp.Department, &emp.ManagerID, &emp.Status, &emp.HiredAt, &emp.CreatedAt, &emp.UpdatedAt)
	return emp, err
}

func (s *Store) MetricsByEmployee(ctx context.Context, employeeID string) ([]core.PerformanceMetric, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, period, score, utilization, tasks_completed, metric_date
    FROM performance_metrics
    WHERE employee_id = $1
    ORDER BY period DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.PerformanceMetric
	for rows.Next() {
		var m core.PerformanceMetric
		if err := rows.Scan(&m.ID, &m.EmployeeID, &m.Period, &m.Score, &m.Utilization, &m.TasksCompleted, &m.Date); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ActivePlanExists(ctx context.Context, employeeID string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM pips
    WHERE employee_id = $1 AND status IN ($2, $3)
  `, employeeID, StatusActive, StatusExtended).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) CreatePlan(ctx context.Context, plan Plan) (string, error) {
	goalsJSON, err := json.Marshal(plan.Goals)
	if err != nil {
		return "", err
	}
	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO pips (employee_id, status, start_date, end_date, goals, coaching_plan,
                      progress, initial_score, current_score, improvement_required)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
    RETURNING id
  `, plan.EmployeeID, plan.Status, plan.StartDate, plan.EndDate, goalsJSON, plan.CoachingPlan,
		plan.Progress, plan.InitialScore, plan.CurrentScore, plan.ImprovementRequired).Scan(&id)
	return id, err
}

const planColumns = `
  id, employee_id, status, start_date, end_date, goals, coaching_plan,
  progress, initial_score, current_score, improvement_required, created_at, updated_at`

func scanPlan(row pgx.Row) (Plan, error) {
	var plan Plan
	var goalsJSON []byte
	err := row.Scan(&plan.ID, &plan.EmployeeID, &plan.Status, &plan.StartDate, &plan.EndDate,
		&goalsJSON, &plan.CoachingPlan, &plan.Progress, &plan.InitialScore, &plan.CurrentScore,
		&plan.ImprovementRequired, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return Plan{}, err
	}
	if len(goalsJSON) > 0 {
		if err := json.Unmarshal(goalsJSON, &plan.Goals); err != nil {
			return Plan{}, err
		}
	}
	return plan, nil
}

func (s *Store) GetPlan(ctx context.Context, id string) (Plan, error) {
	plan, err := scanPlan(s.DB.QueryRow(ctx, "SELECT"+planColumns+" FROM pips WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, ErrPlanNotFound
	}
	return plan, err
}

func (s *Store) ListPlans(ctx context.Context, employeeID string) ([]Plan, error) {
	query := "SELECT" + planColumns + " FROM pips"
	args := []any{}
	if employeeID != "" {
		query += " WHERE employee_id = $1"
		args = append(args, employeeID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, plan)
	}
	return out, rows.Err()
}

// ListDuePlans returns open plans whose end date has passed.
func (s *Store) ListDuePlans(ctx context.Context, now time.Time) ([]Plan, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+planColumns+`
    FROM pips
    WHERE status IN ($1, $2) AND end_date <= $3
    ORDER BY end_date
  `, StatusActive, StatusExtended, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, plan)
	}
	return out, rows.Err()
}

func (s *Store) UpdatePlanStatus(ctx context.Context, planID, status string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE pips SET status = $1, updated_at = now() WHERE id = $2", status, planID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func (s *Store) UpdatePlanProgress(ctx context.Context, planID string, currentScore, progress float64) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE pips SET current_score = $1, progress = $2, updated_at = now() WHERE id = $3
  `, currentScore, progress, planID)
	return err
}

func (s *Store) ExtendPlan(ctx context.Context, planID string, newEndDate time.Time) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE pips SET status = $1, end_date = $2, updated_at = now() WHERE id = $3
  `, StatusExtended, newEndDate, planID)
	return err
}

// SetEmployeeStatus never moves an employee out of terminated; the WHERE
// clause makes the terminal state a fixed point even under races.
func (s *Store) SetEmployeeStatus(ctx context.Context, employeeID, status string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE employees SET status = $1, updated_at = now()
    WHERE id = $2 AND status != $3
  `, status, employeeID, core.EmployeeStatusTerminated)
	return err
}
