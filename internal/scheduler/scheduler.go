package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/config"
)

const jobTimeout = 2 * time.Minute

// SessionChecker re-validates the remote session.
type SessionChecker interface {
	VerifyAuth(ctx context.Context)
	IsAuthenticated() bool
}

// RosterRefresher reloads the roster cache.
type RosterRefresher interface {
	FetchSheep(ctx context.Context) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron    *cron.Cron
	session SessionChecker
	roster  RosterRefresher
	cfg     config.SchedulerConfig
	logger  *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.SchedulerConfig, sess SessionChecker, roster RosterRefresher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Standard 5-field cron expressions plus descriptors such as @hourly.
	c := cron.New()

	return &Scheduler{
		cron:    c,
		session: sess,
		roster:  roster,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start registers the roster refresh job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("roster_refresh", s.cfg.RosterRefreshCron))

	if _, err := s.cron.AddFunc(s.cfg.RosterRefreshCron, s.refreshRoster); err != nil {
		return fmt.Errorf("schedule roster refresh %q: %w", s.cfg.RosterRefreshCron, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) refreshRoster() {
	if !s.session.IsAuthenticated() {
		s.logger.Debug("roster refresh skipped: not signed in")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	// The session may have expired remotely since the last request.
	s.session.VerifyAuth(ctx)
	if !s.session.IsAuthenticated() {
		s.logger.Info("roster refresh skipped: session expired")
		return
	}

	if err := s.roster.FetchSheep(ctx); err != nil {
		s.logger.Warn("scheduled roster refresh failed", zap.Error(err))
		return
	}
	s.logger.Info("roster refreshed on schedule")
}
