package termination

import "time"

// Risk flags that force a hold regardless of signoffs.
const (
	FlagProtectedClass = "protected_class"
	FlagOngoingLeave   = "ongoing_leave"
	FlagWhistleblower  = "whistleblower"
)

// Request carries the attestations for one guarded termination sweep.
type Request struct {
	LegalSignoff bool     `json:"legalSignoff"`
	HRSignoff    bool     `json:"hrSignoff"`
	RiskFlags    []string `json:"riskFlags"`
}

// Record is the append-only snapshot written at the moment of termination.
// Immutable once created.
type Record struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employeeId"`
	PipID            string    `json:"pipId,omitempty"`
	FinalScore       float64   `json:"finalScore"`
	FinalUtilization float64   `json:"finalUtilization"`
	Reason           string    `json:"reason"`
	LetterText       string    `json:"letterText"`
	LetterPath       string    `json:"letterPath,omitempty"`
	LetterSHA256     string    `json:"letterSha256,omitempty"`
	TerminatedAt     time.Time `json:"terminatedAt"`
}

// Outcome is one plan's entry in a gated sweep result.
type Outcome struct {
	PipID      string `json:"pipId"`
	EmployeeID string `json:"employeeId"`
	Result     string `json:"result"`
	Detail     any    `json:"detail,omitempty"`
	Err        string `json:"error,omitempty"`
}

type SweepResult struct {
	Processed int       `json:"processed"`
	Paused    bool      `json:"paused"`
	Message   string    `json:"message,omitempty"`
	Results   []Outcome `json:"results"`
}
