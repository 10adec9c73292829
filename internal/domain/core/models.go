package core

import "time"

const (
	EmployeeStatusActive     = "active"
	EmployeeStatusPip        = "pip"
	EmployeeStatusTerminated = "terminated"
)

type Employee struct {
	ID         string     `json:"id"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Email      string     `json:"email"`
	RoleTitle  string     `json:"roleTitle"`
	Department string     `json:"department"`
	ManagerID  string     `json:"managerId,omitempty"`
	Status     string     `json:"status"`
	HiredAt    *time.Time `json:"hiredAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// PerformanceMetric is an immutable observation. Rows are append-only; the
// evaluators sort copies, never mutate history.
type PerformanceMetric struct {
	ID             string    `json:"id"`
	EmployeeID     string    `json:"employeeId"`
	Period         int       `json:"period"`
	Score          float64   `json:"score"`
	Utilization    float64   `json:"utilization"`
	TasksCompleted int       `json:"tasksCompleted"`
	Date           time.Time `json:"date"`
}
