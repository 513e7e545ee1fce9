package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"feedsift/internal/config"
	"feedsift/internal/domain/entity"
	"feedsift/internal/observability/logging"
)

// GroupRunner runs one processing group.
type GroupRunner interface {
	RunGroup(ctx context.Context, group string) *entity.RunSummary
}

type scheduledGroup struct {
	id       cron.EntryID
	schedule string
}

// Scheduler keeps one cron entry per scheduled group. Entries of the same
// group never overlap: a tick that finds the previous run still going is
// skipped.
type Scheduler struct {
	cron    *cron.Cron
	runner  GroupRunner
	config  WorkerConfig
	metrics *WorkerMetrics
	logger  *slog.Logger

	baseCtx context.Context
	cancel  context.CancelFunc

	mu      sync.Mutex
	entries map[string]scheduledGroup
}

// NewScheduler creates a stopped scheduler.
//
// Parameters:
//   - runner: Executes one group run per cron tick
//   - cfg: Worker configuration (timezone, group timeout)
//   - metrics: Worker metrics (can be nil)
//   - logger: Structured logger (nil means slog.Default)
//
// Returns:
//   - *Scheduler: Scheduler with no entries; call Sync then Start
//   - error: Unknown timezone in cfg.Timezone
func NewScheduler(runner GroupRunner, cfg WorkerConfig, metrics *WorkerMetrics, logger *slog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	baseCtx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		runner:  runner,
		config:  cfg,
		metrics: metrics,
		logger:  logger,
		baseCtx: baseCtx,
		cancel:  cancel,
		entries: make(map[string]scheduledGroup),
	}, nil
}

// Sync reconciles cron entries with groups: groups that lost or changed
// their schedule are removed, new or changed ones are added. Groups
// without a schedule are never run by the scheduler.
func (s *Scheduler) Sync(groups []config.GroupConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]string, len(groups))
	for _, g := range groups {
		if g.Schedule != "" {
			wanted[g.Name] = g.Schedule
		}
	}

	for name, entry := range s.entries {
		if schedule, ok := wanted[name]; !ok || schedule != entry.schedule {
			s.cron.Remove(entry.id)
			delete(s.entries, name)
			s.logger.Info("group unscheduled", slog.String("group", name), slog.String("schedule", entry.schedule))
		}
	}

	var errs []error
	for name, schedule := range wanted {
		if _, ok := s.entries[name]; ok {
			continue
		}
		group := name
		id, err := s.cron.AddFunc(schedule, func() { s.RunGroup(group) })
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.entries[name] = scheduledGroup{id: id, schedule: schedule}
		s.logger.Info("group scheduled",
			slog.String("group", name),
			slog.String("schedule", schedule),
			slog.String("timezone", s.config.Timezone))
	}

	if s.metrics != nil {
		s.metrics.ScheduledGroups.Set(float64(len(s.entries)))
	}
	return errors.Join(errs...)
}

// Scheduled returns group name to schedule for every active entry.
func (s *Scheduler) Scheduled() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.entries))
	for name, e := range s.entries {
		out[name] = e.schedule
	}
	return out
}

// Next returns the next activation of group, or the zero time.
func (s *Scheduler) Next(group string) time.Time {
	s.mu.Lock()
	entry, ok := s.entries[group]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(entry.id).Next
}

// Start begins firing entries in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and waits for running groups until ctx expires,
// after which their contexts are canceled.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	defer s.cancel()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timeout, canceling running groups")
		return ctx.Err()
	}
}

// RunGroup runs group once, bounded by the group timeout.
func (s *Scheduler) RunGroup(group string) *entity.RunSummary {
	ctx, cancel := context.WithTimeout(s.baseCtx, s.config.GroupTimeout)
	defer cancel()
	ctx = logging.WithRunID(logging.WithLogger(ctx, s.logger), logging.NewRunID())
	logger := logging.FromContext(ctx).With(slog.String("group", group))

	start := time.Now()
	summary := s.runner.RunGroup(ctx, group)
	duration := time.Since(start)

	status := "success"
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		status = "timeout"
		logger.Warn("group run exceeded timeout", slog.Duration("timeout", s.config.GroupTimeout))
	case ctx.Err() != nil:
		status = "canceled"
	case summary.Feeds > 0 && summary.FeedsFailed == int64(summary.Feeds):
		status = "failure"
	}

	if s.metrics != nil {
		s.metrics.RecordGroupRun(group, status, duration)
	}
	logger.Info("scheduled group run finished",
		slog.String("status", status),
		slog.Int64("saved", summary.Saved),
		slog.Duration("duration", duration))
	return summary
}
