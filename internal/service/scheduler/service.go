// Package scheduler runs the periodic maintenance jobs: the nightly
// auto-badge sweep and snapshot compaction.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/abontemps/classquest/internal/config"
	prommetrics "github.com/abontemps/classquest/internal/metrics"
	"github.com/abontemps/classquest/pkg/logger"
)

// BadgeSweeper runs a full badge rule evaluation over the roster.
type BadgeSweeper interface {
	RunBadgeSweep(ctx context.Context) (int, error)
}

// SnapshotPruner compacts the snapshot history down to the newest entries.
type SnapshotPruner interface {
	Prune(keep int) (int64, error)
}

// Service handles cron job scheduling.
type Service struct {
	config  *config.Config
	sweeper BadgeSweeper
	pruner  SnapshotPruner
	log     *logger.Logger
	cron    *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(cfg *config.Config, sweeper BadgeSweeper, pruner SnapshotPruner, log *logger.Logger) *Service {
	return &Service{
		config:  cfg,
		sweeper: sweeper,
		pruner:  pruner,
		log:     log,
	}
}

// Start initializes and starts the cron scheduler.
func (s *Service) Start() error {
	if !s.config.Scheduler.Enabled {
		s.log.Info().Msg("Scheduler is disabled in configuration")
		return nil
	}

	location, err := s.config.Scheduler.GetLocation()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", s.config.Scheduler.Timezone, err)
	}

	s.cron = cron.New(cron.WithLocation(location))

	if s.config.Scheduler.BadgeSweep != "" && s.sweeper != nil {
		if _, err := s.cron.AddFunc(s.config.Scheduler.BadgeSweep, func() {
			s.runBadgeSweep(context.Background())
		}); err != nil {
			return fmt.Errorf("failed to register badge sweep job: %w", err)
		}
		s.log.Info().
			Str("schedule", s.config.Scheduler.BadgeSweep).
			Msg("Badge sweep job registered")
	}

	if s.config.Scheduler.SnapshotPrune != "" && s.pruner != nil {
		if _, err := s.cron.AddFunc(s.config.Scheduler.SnapshotPrune, func() {
			s.runSnapshotPrune()
		}); err != nil {
			return fmt.Errorf("failed to register snapshot prune job: %w", err)
		}
		s.log.Info().
			Str("schedule", s.config.Scheduler.SnapshotPrune).
			Msg("Snapshot prune job registered")
	}

	s.cron.Start()

	entries := s.cron.Entries()
	nextRun := ""
	if len(entries) > 0 {
		nextRun = entries[0].Next.Format(time.RFC3339)
	}

	s.log.Info().
		Str("timezone", s.config.Scheduler.Timezone).
		Int("jobs", len(entries)).
		Str("next_run", nextRun).
		Msg("Scheduler started successfully")

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// runBadgeSweep executes the nightly badge rule evaluation.
func (s *Service) runBadgeSweep(ctx context.Context) {
	start := time.Now()
	s.log.Info().Msg("Running badge sweep job")

	awarded, err := s.sweeper.RunBadgeSweep(ctx)
	duration := time.Since(start)
	prommetrics.ObserveBadgeSweepDuration(duration.Seconds())

	if err != nil {
		s.log.Error().
			Err(err).
			Dur("duration", duration).
			Msg("Badge sweep failed")
		prommetrics.RecordSchedulerJob("badge_sweep", "error")
		return
	}

	s.log.Info().
		Int("badges_awarded", awarded).
		Dur("duration", duration).
		Msg("Badge sweep finished")
	prommetrics.RecordSchedulerJob("badge_sweep", "success")
}

// runSnapshotPrune compacts the snapshot table.
func (s *Service) runSnapshotPrune() {
	keep := s.config.Scheduler.KeepSnapshots
	if keep <= 0 {
		s.log.Debug().Msg("Snapshot pruning disabled, keep_snapshots is not positive")
		return
	}

	removed, err := s.pruner.Prune(keep)
	if err != nil {
		s.log.Error().Err(err).Msg("Snapshot prune failed")
		prommetrics.RecordSchedulerJob("snapshot_prune", "error")
		return
	}

	s.log.Info().
		Int64("removed", removed).
		Int("kept", keep).
		Msg("Snapshot prune finished")
	prommetrics.RecordSchedulerJob("snapshot_prune", "success")
}
