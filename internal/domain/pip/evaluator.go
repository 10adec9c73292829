package pip

import (
	"fmt"
	"sort"

	"perfhub/internal/domain/core"
	"perfhub/internal/domain/settings"
)

// Evaluate decides whether an employee should be placed on an improvement
// plan. It is a pure function of its inputs: the caller supplies the full
// metric history (filtering happens here) and the current settings
// snapshot, and owns any persistence that follows.
func Evaluate(emp core.Employee, history []core.PerformanceMetric, cfg settings.Settings) (Evaluation, error) {
	if emp.ID == "" {
		return Evaluation{}, ErrEmployeeRequired
	}

	if cfg.KillSwitchActive {
		return Evaluation{
			Reason:    "kill switch active, automated evaluation paused",
			RiskLevel: RiskLow,
			Trend:     TrendAnalysis{Direction: TrendStable},
		}, nil
	}

	metrics := employeeMetricsByPeriod(emp.ID, history)
	if len(metrics) == 0 {
		return Evaluation{
			Reason:          "no performance data recorded",
			RiskLevel:       RiskLow,
			Recommendations: []string{"upload performance data for this employee"},
			Trend:           TrendAnalysis{Direction: TrendStable},
		}, nil
	}

	switch emp.Status {
	case core.EmployeeStatusPip:
		return Evaluation{
			Reason:    "employee already has an active PIP",
			RiskLevel: RiskHigh,
			Recommendations: []string{
				"monitor progress against current plan goals",
				"hold weekly coaching check-ins until the plan concludes",
			},
			ConsecutiveLowCount: consecutiveLowCount(metrics, cfg),
			AverageScore:        averageScore(metrics, 5),
			Trend:               computeTrend(metrics),
		}, nil
	case core.EmployeeStatusTerminated:
		return Evaluation{
			Reason:    "employee is terminated",
			RiskLevel: RiskLow,
			Trend:     TrendAnalysis{Direction: TrendStable},
		}, nil
	}

	lowCount := consecutiveLowCount(metrics, cfg)
	avg := averageScore(metrics, 5)
	trend := computeTrend(metrics)

	eval := Evaluation{
		ConsecutiveLowCount: lowCount,
		AverageScore:        avg,
		Trend:               trend,
	}

	if lowCount >= cfg.ConsecutiveLowPeriods {
		eval.ShouldCreatePip = true
		eval.RiskLevel = RiskCritical
		eval.Reason = fmt.Sprintf("%d consecutive periods below score threshold %.0f", lowCount, cfg.MinScoreThreshold)
	} else {
		eval.Reason = fmt.Sprintf("%d of %d consecutive low periods required for a PIP", lowCount, cfg.ConsecutiveLowPeriods)
		switch {
		case lowCount >= 2:
			eval.RiskLevel = RiskHigh
		case avg < cfg.MinScoreThreshold:
			eval.RiskLevel = RiskMedium
		default:
			eval.RiskLevel = RiskLow
		}
	}

	eval.Recommendations = buildRecommendations(eval, cfg)
	return eval, nil
}

// SummarizeHistory rolls up an employee's recent metrics for downstream
// consumers (coaching) that need the streak, average and trend without
// re-running the full plan decision.
func SummarizeHistory(employeeID string, history []core.PerformanceMetric, cfg settings.Settings) HistorySummary {
	metrics := employeeMetricsByPeriod(employeeID, history)
	summary := HistorySummary{
		ConsecutiveLowCount: consecutiveLowCount(metrics, cfg),
		AverageScore:        averageScore(metrics, 5),
		Trend:               computeTrend(metrics),
	}
	if len(metrics) >= 2 {
		summary.PreviousScore = metrics[1].Score
		summary.HasPrevious = true
	}
	return summary
}

// employeeMetricsByPeriod filters history to one employee, most recent
// period first. History is never mutated.
func employeeMetricsByPeriod(employeeID string, history []core.PerformanceMetric) []core.PerformanceMetric {
	var metrics []core.PerformanceMetric
	for _, m := range history {
		if m.EmployeeID == employeeID {
			metrics = append(metrics, m)
		}
	}
	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].Period > metrics[j].Period
	})
	return metrics
}

// consecutiveLowCount counts the unbroken run of below-threshold scores
// starting from the most recent metric in the evaluation window. The count
// stops permanently at the first metric that meets the threshold; low
// periods behind it do not count.
func consecutiveLowCount(metrics []core.PerformanceMetric, cfg settings.Settings) int {
	window := metrics
	if cfg.ConsecutiveLowPeriods > 0 && len(window) > cfg.ConsecutiveLowPeriods {
		window = window[:cfg.ConsecutiveLowPeriods]
	}
	count := 0
	for _, m := range window {
		if m.Score >= cfg.MinScoreThreshold {
			break
		}
		count++
	}
	return count
}

func averageScore(metrics []core.PerformanceMetric, window int) float64 {
	if len(metrics) == 0 {
		return 0
	}
	if window > 0 && len(metrics) > window {
		metrics = metrics[:window]
	}
	total := 0.0
	for _, m := range metrics {
		total += m.Score
	}
	return total / float64(len(metrics))
}

// computeTrend compares the latest score to the average of the 2nd and 3rd
// most recent scores.
func computeTrend(metrics []core.PerformanceMetric) TrendAnalysis {
	if len(metrics) < 2 {
		return TrendAnalysis{Direction: TrendStable}
	}
	previousAvg := metrics[1].Score
	if len(metrics) >= 3 {
		previousAvg = (metrics[1].Score + metrics[2].Score) / 2
	}
	if previousAvg == 0 {
		return TrendAnalysis{Direction: TrendStable}
	}
	changePercent := (metrics[0].Score - previousAvg) / previousAvg * 100
	direction := TrendStable
	if changePercent > 5 {
		direction = TrendImproving
	} else if changePercent < -5 {
		direction = TrendDeclining
	}
	return TrendAnalysis{Direction: direction, ChangePercent: changePercent}
}

func buildRecommendations(eval Evaluation, cfg settings.Settings) []string {
	var recs []string
	if eval.ShouldCreatePip {
		recs = append(recs, "open a performance improvement plan immediately")
	} else if eval.ConsecutiveLowCount >= 2 {
		recs = append(recs, "schedule a performance check-in before the next period closes")
	}
	if eval.AverageScore < 50 {
		recs = append(recs, "provide structured daily coaching")
	} else if eval.AverageScore < 60 {
		recs = append(recs, "assign a mentor for skill development")
	}
	switch eval.Trend.Direction {
	case TrendDeclining:
		recs = append(recs, "investigate the recent performance decline with the employee")
	case TrendImproving:
		recs = append(recs, "acknowledge the recent improvement to reinforce momentum")
	}
	return recs
}
