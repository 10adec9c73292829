package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	"perfhub/internal/platform/config"
)

const (
	JobPipSweep = "pip_evaluation_sweep"
)

// Service runs background jobs through a bounded queue with one worker,
// recording every run in job_runs. The PIP evaluation sweep is scheduled
// from a standard 5-field cron expression; an empty expression disables it.
type Service struct {
	DB    *pgxpool.Pool
	Cfg   config.Config
	queue chan job
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, cfg config.Config) *Service {
	return &Service{
		DB:    db,
		Cfg:   cfg,
		queue: make(chan job, 64),
	}
}

// Start launches the worker and, when a schedule is configured, the sweep
// scheduler. sweep is the evaluation entry point to run on each tick; it
// reads the settings snapshot itself so a kill switch flipped between
// ticks is honored.
func (s *Service) Start(ctx context.Context, sweep func(context.Context) (any, error)) {
	go s.worker(ctx)

	schedule := s.Cfg.SweepCron
	if schedule == "" {
		slog.Info("pip sweep scheduler disabled, no cron expression configured")
		return
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		slog.Warn("invalid sweep cron expression, scheduler disabled", "cron", schedule, "err", err)
		return
	}
	slog.Info("pip sweep scheduled", "cron", schedule)
	go s.schedule(ctx, sched, sweep)
}

// Enqueue queues a job without blocking; a full queue drops the job with
// a warning rather than stalling the caller.
func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType)
	}
}

// RunNow executes a job synchronously, still recording it in job_runs.
func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if runID != "" {
		if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
			slog.Warn("job run update failed", "err", updErr)
		}
	}
	return details, err
}

func (s *Service) schedule(ctx context.Context, sched cron.Schedule, sweep func(context.Context) (any, error)) {
	for {
		now := time.Now()
		next := sched.Next(now)
		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.Enqueue(JobPipSweep, sweep)
		}
	}
}
