package coaching

import (
	"fmt"

	"perfhub/internal/domain/pip"
)

const (
	CategoryPipSupport       = "pip_support"
	CategoryRecovery         = "performance_recovery"
	CategorySkillDevelopment = "skill_development"
	CategoryCourseCorrection = "course_correction"
	CategoryGrowth           = "growth_development"
)

const (
	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Input is the performance context the engine maps to feedback. It is
// assembled by the caller; the engine itself reads no state.
type Input struct {
	CurrentScore          float64
	PreviousScore         float64
	HasPreviousScore      bool
	AverageScore          float64
	ConsecutiveLowPeriods int
	Trend                 string
	PipActive             bool
	RoleExpectations      string
}

// Advice is the engine's structured feedback for one coaching session.
type Advice struct {
	Feedback         string   `json:"feedback"`
	Category         string   `json:"category"`
	Priority         string   `json:"priority"`
	ActionItems      []string `json:"actionItems"`
	Timeframe        string   `json:"timeframe"`
	FollowUpRequired bool     `json:"followUpRequired"`
}

// Generate maps performance context to structured coaching feedback. Pure
// and deterministic: identical input always yields identical advice.
//
// Category and priority come from a fixed table keyed on the score bands
// <50, 50-69 and 70+, with an override when an improvement plan is active.
func Generate(in Input) Advice {
	advice := decide(in)
	advice.Feedback = buildFeedback(in, advice)
	advice.FollowUpRequired = in.PipActive ||
		advice.Priority == PriorityUrgent ||
		advice.Priority == PriorityHigh ||
		in.CurrentScore < 60
	return advice
}

func decide(in Input) Advice {
	if in.PipActive {
		return Advice{
			Category:  CategoryPipSupport,
			Priority:  PriorityUrgent,
			Timeframe: "weekly",
			ActionItems: []string{
				"review progress against each plan goal",
				"hold a structured coaching session this week",
				"document blockers and agreed next steps",
			},
		}
	}

	switch {
	case in.CurrentScore < 50:
		return Advice{
			Category:  CategoryRecovery,
			Priority:  PriorityUrgent,
			Timeframe: "immediate",
			ActionItems: []string{
				"schedule a performance conversation within 48 hours",
				"agree on two concrete deliverables for the coming week",
				"set up daily check-ins until the score recovers",
			},
		}
	case in.CurrentScore < 70:
		priority := PriorityMedium
		if in.ConsecutiveLowPeriods >= 2 || in.Trend == pip.TrendDeclining {
			priority = PriorityHigh
		}
		return Advice{
			Category:  CategorySkillDevelopment,
			Priority:  priority,
			Timeframe: "biweekly",
			ActionItems: []string{
				"identify the two skills most limiting current output",
				"pair with a senior colleague on one active task",
				"review progress at the next one-on-one",
			},
		}
	case in.Trend == pip.TrendDeclining:
		return Advice{
			Category:  CategoryCourseCorrection,
			Priority:  PriorityMedium,
			Timeframe: "monthly",
			ActionItems: []string{
				"discuss what changed since the last review period",
				"rebalance workload if overcommitment is the cause",
			},
		}
	default:
		return Advice{
			Category:  CategoryGrowth,
			Priority:  PriorityLow,
			Timeframe: "quarterly",
			ActionItems: []string{
				"identify a stretch goal for the next quarter",
				"share strong practices with the wider team",
			},
		}
	}
}

func buildFeedback(in Input, advice Advice) string {
	var movement string
	switch {
	case in.HasPreviousScore && in.CurrentScore > in.PreviousScore:
		movement = fmt.Sprintf("up from %.1f last period", in.PreviousScore)
	case in.HasPreviousScore && in.CurrentScore < in.PreviousScore:
		movement = fmt.Sprintf("down from %.1f last period", in.PreviousScore)
	case in.HasPreviousScore:
		movement = "unchanged from last period"
	default:
		movement = "no prior period on record"
	}

	feedback := fmt.Sprintf("Current score %.1f (%s), recent average %.1f.", in.CurrentScore, movement, in.AverageScore)
	if in.ConsecutiveLowPeriods > 0 {
		feedback += fmt.Sprintf(" %d consecutive period(s) below threshold.", in.ConsecutiveLowPeriods)
	}
	switch advice.Category {
	case CategoryPipSupport:
		feedback += " An improvement plan is active; coaching focuses on closing its goals."
	case CategoryRecovery:
		feedback += " Performance needs immediate attention."
	case CategorySkillDevelopment:
		feedback += " Targeted skill development should lift output above expectations."
	case CategoryCourseCorrection:
		feedback += " Performance is solid but trending down; an early correction avoids escalation."
	case CategoryGrowth:
		feedback += " Performance meets expectations; focus shifts to growth."
	}
	if in.RoleExpectations != "" {
		feedback += " Role expectations: " + in.RoleExpectations
	}
	return feedback
}
