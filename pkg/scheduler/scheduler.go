// Package scheduler runs periodic maintenance jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
	config *config.Scheduler
}

func New(jobs *Jobs, cfg *config.Scheduler, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cronLogger))),
		jobs:   jobs,
		logger: logger.With("component", "scheduler"),
		config: cfg,
	}
}

// Start registers the jobs and starts the cron scheduler. An invalid
// schedule expression is an error and nothing is started.
func (s *Scheduler) Start() error {
	entries := []struct {
		name     string
		schedule string
		run      func()
	}{
		{"campaign expiry", s.config.CampaignExpiry, s.jobs.ExpireCampaigns},
		{"pending donation audit", s.config.PendingAudit, s.jobs.AuditStalePendingJob},
	}
	for _, e := range entries {
		if e.schedule == "" {
			s.logger.Info("job disabled", "job", e.name)
			continue
		}
		if _, err := s.cron.AddFunc(e.schedule, e.run); err != nil {
			return fmt.Errorf("schedule %s job %q: %w", e.name, e.schedule, err)
		}
		s.logger.Info("⏱️ Scheduled job", "job", e.name, "schedule", e.schedule)
	}
	s.cron.Start()
	return nil
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Stop stops the scheduler; the returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
