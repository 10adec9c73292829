package termination

import "fmt"

// PolicyError is an expected, structured rejection from the gate: dry run,
// missing signoff, risk hold, or a forbidden role. It carries enough detail
// for the caller to act, and maps to a conflict or forbidden response.
type PolicyError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	CodeForbiddenRole  = "forbidden_role"
	CodeDryRunEnabled  = "dry_run_enabled"
	CodeMissingSignoff = "missing_signoff"
	CodeRiskHold       = "risk_requires_hold"
)

// Forbidden reports whether the policy failure maps to a 403 rather than a
// 409.
func (e *PolicyError) Forbidden() bool {
	return e.Code == CodeForbiddenRole
}
