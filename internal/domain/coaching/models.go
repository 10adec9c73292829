package coaching

import "time"

// Session is a persisted coaching record: the advice the engine produced
// for one employee at one point in time.
type Session struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employeeId"`
	PipID            string    `json:"pipId,omitempty"`
	Score            float64   `json:"score"`
	Category         string    `json:"category"`
	Priority         string    `json:"priority"`
	Feedback         string    `json:"feedback"`
	ActionItems      []string  `json:"actionItems"`
	Timeframe        string    `json:"timeframe"`
	FollowUpRequired bool      `json:"followUpRequired"`
	CreatedAt        time.Time `json:"createdAt"`
}

// GenerateRequest is the caller-supplied context for a new session.
type GenerateRequest struct {
	EmployeeID       string  `json:"employeeId"`
	Score            float64 `json:"score"`
	PipID            string  `json:"pipId,omitempty"`
	RoleExpectations string  `json:"roleExpectations,omitempty"`
}
