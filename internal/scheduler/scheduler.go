// Package scheduler runs the periodic ledger jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/ledger-service/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Jobs is the work the scheduler triggers
type Jobs interface {
	PostDueRecurrings(ctx context.Context, now time.Time) (int, error)
	LowBalanceAlerts(ctx context.Context, now time.Time) (int, error)
}

// Scheduler owns the cron runner
type Scheduler struct {
	cron    *cron.Cron
	jobs    Jobs
	log     *logrus.Logger
	timeout time.Duration
	now     func() time.Time
}

// New registers the recurring-posting and alert jobs. An empty cron spec
// leaves that job unscheduled.
func New(jobs Jobs, cfg *config.Config, log *logrus.Logger) (*Scheduler, error) {
	logger := cron.PrintfLogger(log)
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		jobs:    jobs,
		log:     log,
		timeout: 10 * cfg.DBTimeout,
		now:     time.Now,
	}
	if s.timeout <= 0 {
		s.timeout = time.Minute
	}

	if cfg.RecurringCron != "" {
		if _, err := s.cron.AddFunc(cfg.RecurringCron, s.runRecurring); err != nil {
			return nil, fmt.Errorf("invalid RECURRING_CRON %q: %w", cfg.RecurringCron, err)
		}
	}
	if cfg.AlertCron != "" {
		if _, err := s.cron.AddFunc(cfg.AlertCron, s.runAlerts); err != nil {
			return nil, fmt.Errorf("invalid ALERT_CRON %q: %w", cfg.AlertCron, err)
		}
	}
	return s, nil
}

// Start runs the jobs in the background
func (s *Scheduler) Start() {
	s.log.Infof("Starting scheduler with %d jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stopped before running jobs finished")
	}
}

// Jobs returns the number of scheduled jobs
func (s *Scheduler) Jobs() int { return len(s.cron.Entries()) }

// PostRecurring posts every recurring occurrence due now
func (s *Scheduler) PostRecurring(ctx context.Context) {
	posted, err := s.jobs.PostDueRecurrings(ctx, s.now())
	if err != nil {
		s.log.Errorf("Recurring posting finished with errors: %v", err)
	}
	s.log.WithField("posted", posted).Debug("Recurring posting run complete")
}

// SendAlerts sends low balance alerts
func (s *Scheduler) SendAlerts(ctx context.Context) {
	sent, err := s.jobs.LowBalanceAlerts(ctx, s.now())
	if err != nil {
		s.log.Errorf("Low balance alerts finished with errors: %v", err)
	}
	s.log.WithField("sent", sent).Debug("Low balance alert run complete")
}

func (s *Scheduler) runRecurring() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.PostRecurring(ctx)
}

func (s *Scheduler) runAlerts() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.SendAlerts(ctx)
}
