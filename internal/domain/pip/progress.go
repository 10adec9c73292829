package pip

import (
	"fmt"
	"sort"
	"time"

	"perfhub/internal/domain/core"
	"perfhub/internal/domain/settings"
)

// ReviewProgress decides the fate of an in-flight plan: close as success,
// extend, or mark for termination. Like Evaluate it is pure; the caller
// routes the outcome through AssertTransition before persisting anything.
//
// Note: this review orders metrics by calendar date while Evaluate orders
// by period ordinal. The two can disagree on "most recent" for backfilled
// data; the behavior is kept as-is until the intended semantics are
// confirmed.
func ReviewProgress(emp core.Employee, history []core.PerformanceMetric, plan Plan, cfg settings.Settings, now time.Time) (ProgressReview, error) {
	if emp.ID == "" {
		return ProgressReview{}, ErrEmployeeRequired
	}

	metrics := planWindowMetricsByDate(emp.ID, plan.StartDate, history)
	if len(metrics) == 0 {
		return ProgressReview{
			ShouldExtend: true,
			RiskLevel:    RiskHigh,
			Reason:       "no performance data recorded during the plan, extend for monitoring",
		}, nil
	}

	latest := metrics[0].Score
	improvement := improvementPercent(plan.InitialScore, latest)
	avg := averageScore(metrics, 5)
	ended := !now.Before(plan.EndDate)

	review := ProgressReview{
		PipEnded:           ended,
		ImprovementPercent: improvement,
		AverageScore:       avg,
		LatestScore:        latest,
	}

	if ended {
		switch {
		case improvement >= plan.ImprovementRequired && avg >= cfg.MinScoreThreshold:
			review.Succeeded = true
			review.RiskLevel = RiskLow
			review.Reason = fmt.Sprintf("improved %.1f%% against a %.1f%% bar, plan completed", improvement, plan.ImprovementRequired)
		case improvement < plan.ImprovementRequired/2:
			review.ShouldTerminate = true
			review.RiskLevel = RiskCritical
			review.Reason = fmt.Sprintf("improvement %.1f%% is below half the %.1f%% bar", improvement, plan.ImprovementRequired)
		default:
			review.ShouldExtend = true
			review.RiskLevel = RiskHigh
			review.Reason = fmt.Sprintf("partial improvement %.1f%%, extend the plan", improvement)
		}
		return review, nil
	}

	trend := computeTrend(metrics)
	switch {
	case improvement >= plan.ImprovementRequired:
		review.RiskLevel = RiskLow
		review.Reason = "on track, improvement bar already met"
	case trend.Direction == TrendImproving:
		review.RiskLevel = RiskMedium
		review.Reason = "improving, continue monitoring"
	default:
		review.RiskLevel = RiskHigh
		review.Reason = "not improving, increase coaching intensity"
	}
	return review, nil
}

// planWindowMetricsByDate filters to observations recorded on or after the
// plan start, most recent date first.
func planWindowMetricsByDate(employeeID string, startDate time.Time, history []core.PerformanceMetric) []core.PerformanceMetric {
	var metrics []core.PerformanceMetric
	for _, m := range history {
		if m.EmployeeID == employeeID && !m.Date.Before(startDate) {
			metrics = append(metrics, m)
		}
	}
	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].Date.After(metrics[j].Date)
	})
	return metrics
}

func improvementPercent(initial, latest float64) float64 {
	if initial == 0 {
		if latest > 0 {
			return 100
		}
		return 0
	}
	return (latest - initial) / initial * 100
}
