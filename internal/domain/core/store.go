package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const employeeColumns = `
  id, first_name, last_name, email, role_title, department,
  COALESCE(manager_id::text, ''), status, hired_at, created_at, updated_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var emp Employee
	err := row.Scan(&emp.ID, &emp.FirstName, &emp.LastName, &emp.Email, &emp.RoleTitle,
		&emp.Department, &emp.ManagerID, &emp.Status, &emp.HiredAt, &emp.CreatedAt, &emp.UpdatedAt)
	return emp, err
}

func (s *Store) ListEmployees(ctx context.Context, status string, limit, offset int) ([]Employee, error) {
	query := "SELECT" + employeeColumns + " FROM employees"
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY last_name, first_name"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, limit, offset)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, id string) (Employee, error) {
	return scanEmployee(s.DB.QueryRow(ctx, "SELECT"+employeeColumns+" FROM employees WHERE id = $1", id))
}

func (s *Store) EmployeeIDByEmail(ctx context.Context, email string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, "SELECT id FROM employees WHERE email = $1", email).Scan(&id)
	return id, err
}

func (s *Store) CreateEmployee(ctx context.Context, emp Employee) (string, error) {
	var managerID any
	if emp.ManagerID != "" {
		managerID = emp.ManagerID
	}
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO employees (first_name, last_name, email, role_title, department, manager_id, status, hired_at)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    RETURNING id
  `, emp.FirstName, emp.LastName, emp.Email, emp.RoleTitle, emp.Department, managerID, EmployeeStatusActive, emp.HiredAt).Scan(&id)
	return id, err
}

func (s *Store) CreateMetric(ctx context.Context, m PerformanceMetric) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO performance_metrics (employee_id, period, score, utilization, tasks_completed, metric_date)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, m.EmployeeID, m.Period, m.Score, m.Utilization, m.TasksCompleted, m.Date).Scan(&id)
	return id, err
}

func (s *Store) ListMetricsByEmployee(ctx context.Context, employeeID string) ([]PerformanceMetric, error) {
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

	var out []PerformanceMetric
	for rows.Next() {
		var m PerformanceMetric
		if err := rows.Scan(&m.ID, &m.EmployeeID, &m.Period, &m.Score, &m.Utilization, &m.TasksCompleted, &m.Date); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
