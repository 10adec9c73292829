package pip

// Plan lifecycle states. closed, terminated, hold and completed are
// terminal; completed and closed are deliberately distinct (a plan closed
// early is not a plan completed successfully).
const (
	StatusProposed         = "proposed"
	StatusActive           = "active"
	StatusExtended         = "extended"
	StatusClosed           = "closed"
	StatusOffboardingDraft = "offboarding_draft"
	StatusTerminated       = "terminated"
	StatusHold             = "hold"
	StatusCompleted        = "completed"
)

const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)
