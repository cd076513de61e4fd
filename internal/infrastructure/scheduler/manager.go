// Package scheduler provides scheduled job management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"opsdesk/internal/application/sync"
	"opsdesk/internal/domain/syncrun"
	"opsdesk/internal/shared/logger"
)

// SyncTrigger starts one sync run of the given kind.
type SyncTrigger interface {
	TriggerSync(ctx context.Context, kind syncrun.Kind, opts sync.TriggerOptions) (sync.RunSummary, error)
}

// SchedulerManager manages all scheduled jobs using gocron v2.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance. All
// schedules are evaluated in UTC.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// RegisterSyncJob registers the periodic incremental sync. Singleton mode
// means a tick that fires while a run is still in flight is rescheduled
// rather than stacked; the orchestrator's own running guard covers manual
// triggers racing the schedule.
func (m *SchedulerManager) RegisterSyncJob(trigger SyncTrigger, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			m.runIncrementalSync(ctx, trigger)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("sync", "incremental"),
		gocron.WithName("incremental-sync"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered incremental sync job", "interval", interval.String())
	return nil
}

func (m *SchedulerManager) runIncrementalSync(ctx context.Context, trigger SyncTrigger) {
	m.logger.Debugw("scheduled incremental sync started")

	startTime := time.Now()
	summary, err := trigger.TriggerSync(ctx, syncrun.KindIncremental, sync.TriggerOptions{})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("scheduled incremental sync failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	if summary.Skipped {
		m.logger.Debugw("scheduled incremental sync skipped, run already in flight")
		return
	}

	m.logger.Infow("scheduled incremental sync completed",
		"run_uid", summary.RunUID,
		"tickets", summary.Counts.Tickets,
		"failed", summary.Counts.Failed,
		"duration", time.Since(startTime),
	)
}

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler. It waits for all running jobs to
// complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}
