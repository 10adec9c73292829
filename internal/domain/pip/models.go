package pip

import "time"

type Plan struct {
	ID                  string    `json:"id"`
	EmployeeID          string    `json:"employeeId"`
	Status              string    `json:"status"`
	StartDate           time.Time `json:"startDate"`
	EndDate             time.Time `json:"endDate"`
	Goals               []string  `json:"goals"`
	CoachingPlan        string    `json:"coachingPlan"`
	Progress            float64   `json:"progress"`
	InitialScore        float64   `json:"initialScore"`
	CurrentScore        float64   `json:"currentScore"`
	ImprovementRequired float64   `json:"improvementRequired"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

type TrendAnalysis struct {
	Direction     string  `json:"direction"`
	ChangePercent float64 `json:"changePercent"`
}

// Evaluation is the outcome of one employee's threshold review. Producing
// it has no side effects; the caller owns persistence and the lifecycle
// transition.
type Evaluation struct {
	ShouldCreatePip     bool          `json:"shouldCreatePip"`
	Reason              string        `json:"reason"`
	RiskLevel           string        `json:"riskLevel"`
	Recommendations     []string      `json:"recommendations"`
	ConsecutiveLowCount int           `json:"consecutiveLowCount"`
	AverageScore        float64       `json:"averageScore"`
	Trend               TrendAnalysis `json:"trendAnalysis"`
}

// HistorySummary is the rolled-up view of an employee's recent metrics.
type HistorySummary struct {
	ConsecutiveLowCount int
	AverageScore        float64
	PreviousScore       float64
	HasPrevious         bool
	Trend               TrendAnalysis
}

// ProgressReview is the outcome of reviewing an in-flight plan against its
// improvement bar.
type ProgressReview struct {
	ShouldTerminate    bool    `json:"shouldTerminate"`
	ShouldExtend       bool    `json:"shouldExtend"`
	Succeeded          bool    `json:"succeeded"`
	PipEnded           bool    `json:"pipEnded"`
	ImprovementPercent float64 `json:"improvementPercent"`
	AverageScore       float64 `json:"averageScore"`
	LatestScore        float64 `json:"latestScore"`
	RiskLevel          string  `json:"riskLevel"`
	Reason             string  `json:"reason"`
}

// SweepOutcome is one employee's entry in a batch sweep result. Err is a
// message rather than an error value so the whole batch marshals cleanly.
type SweepOutcome struct {
	EmployeeID string `json:"employeeId"`
	PipID      string `json:"pipId,omitempty"`
	Outcome    string `json:"outcome"`
	Detail     any    `json:"detail,omitempty"`
	Err        string `json:"error,omitempty"`
}

type SweepResult struct {
	Processed int            `json:"processed"`
	Paused    bool           `json:"paused"`
	Message   string         `json:"message,omitempty"`
	Results   []SweepOutcome `json:"results"`
}
