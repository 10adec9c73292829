package settings

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Settings is the process-wide configuration every evaluator reads at
// decision time. Evaluators take a snapshot as an explicit parameter; only
// the admin update endpoint writes it.
type Settings struct {
	KillSwitchActive        bool      `json:"killSwitchActive"`
	MinScoreThreshold       float64   `json:"minScoreThreshold"`
	MinUtilizationThreshold float64   `json:"minUtilizationThreshold"`
	ConsecutiveLowPeriods   int       `json:"consecutiveLowPeriods"`
	DefaultGracePeriodDays  int       `json:"defaultGracePeriodDays"`
	MinImprovementPercent   float64   `json:"minImprovementPercent"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

func (s Settings) Validate() error {
	if s.MinScoreThreshold < 0 || s.MinScoreThreshold > 100 {
		return errors.New("minScoreThreshold must be between 0 and 100")
	}
	if s.MinUtilizationThreshold < 0 || s.MinUtilizationThreshold > 100 {
		return errors.New("minUtilizationThreshold must be between 0 and 100")
	}
	if s.ConsecutiveLowPeriods < 1 {
		return errors.New("consecutiveLowPeriods must be at least 1")
	}
	if s.DefaultGracePeriodDays < 1 {
		return errors.New("defaultGracePeriodDays must be at least 1")
	}
	if s.MinImprovementPercent < 0 {
		return errors.New("minImprovementPercent must not be negative")
	}
	return nil
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Get(ctx context.Context) (Settings, error) {
	var out Settings
	err := s.DB.QueryRow(ctx, `
    SELECT kill_switch_active, min_score_threshold, min_utilization_threshold,
           consecutive_low_periods, default_grace_period_days, min_improvement_percent,
           updated_at
    FROM system_settings WHERE id = 1
  `).Scan(&out.KillSwitchActive, &out.MinScoreThreshold, &out.MinUtilizationThreshold,
		&out.ConsecutiveLowPeriods, &out.DefaultGracePeriodDays, &out.MinImprovementPercent, &out.UpdatedAt)
	return out, err
}

func (s *Store) Update(ctx context.Context, in Settings) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE system_settings
    SET kill_switch_active = $1,
        min_score_threshold = $2,
        min_utilization_threshold = $3,
        consecutive_low_periods = $4,
        default_grace_period_days = $5,
        min_improvement_percent = $6,
        updated_at = now()
    WHERE id = 1
  `, in.KillSwitchActive, in.MinScoreThreshold, in.MinUtilizationThreshold,
		in.ConsecutiveLowPeriods, in.DefaultGracePeriodDays, in.MinImprovementPercent)
	return err
}
