package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chrisdamba/foodautomat/internal/archive"
	"github.com/chrisdamba/foodautomat/internal/models"
	"github.com/chrisdamba/foodautomat/internal/notify"
	"github.com/chrisdamba/foodautomat/internal/personalize"
	"github.com/chrisdamba/foodautomat/internal/repositories"
	"github.com/chrisdamba/foodautomat/internal/schedule"
	"github.com/chrisdamba/foodautomat/internal/stream"
	"github.com/go-co-op/gocron/v2"
	"github.com/lucsky/cuid"
)

// personalizationWindow bounds which users get their profiles refreshed:
// only those with delivered orders inside this window.
const personalizationWindow = 7 * 24 * time.Hour

type taskFunc func(ctx context.Context) error

// Runner owns the recurring automation tasks. It is explicitly constructed
// and shut down by the caller; there is no package-level scheduler state.
type Runner struct {
	cfg        *models.Config
	notifier   *notify.Scheduler
	engine     *personalize.Engine
	resolver   *schedule.Resolver
	stores     repositories.StoreRepository
	schedules  repositories.MenuScheduleRepository
	executions repositories.ExecutionLogRepository
	archiver   *archive.Archiver
	producer   *stream.Producer

	scheduler gocron.Scheduler
	tasks     map[models.TaskType]taskFunc
	now       func() time.Time
}

func NewRunner(
	cfg *models.Config,
	notifier *notify.Scheduler,
	engine *personalize.Engine,
	resolver *schedule.Resolver,
	stores repositories.StoreRepository,
	schedules repositories.MenuScheduleRepository,
	executions repositories.ExecutionLogRepository,
	archiver *archive.Archiver,
	producer *stream.Producer,
) *Runner {
	r := &Runner{
		cfg:        cfg,
		notifier:   notifier,
		engine:     engine,
		resolver:   resolver,
		stores:     stores,
		schedules:  schedules,
		executions: executions,
		archiver:   archiver,
		producer:   producer,
		now:        time.Now,
	}
	r.tasks = map[models.TaskType]taskFunc{
		models.TaskNotificationDispatch:   r.dispatchNotifications,
		models.TaskPersonalizationRefresh: r.refreshProfiles,
		models.TaskLogCleanup:             r.cleanupLogs,
		models.TaskMenuScheduleValidation: r.validateSchedules,
	}
	return r
}

// WithClock overrides the runner's time source for tests.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Start registers every task with its configured interval and begins the
// scheduler. Each task runs in singleton mode so a slow run never overlaps
// the next one.
func (r *Runner) Start() error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	intervals := map[models.TaskType]time.Duration{
		models.TaskNotificationDispatch:   r.cfg.NotificationInterval,
		models.TaskPersonalizationRefresh: r.cfg.PersonalizationInterval,
		models.TaskLogCleanup:             r.cfg.CleanupInterval,
		models.TaskMenuScheduleValidation: r.cfg.ScheduleCheckInterval,
	}
	for taskType, interval := range intervals {
		taskType := taskType
		_, err := s.NewJob(
			gocron.DurationJob(interval),
			gocron.NewTask(func() {
				if err := r.RunNow(context.Background(), taskType); err != nil {
					log.Printf("Task %s failed: %v", taskType, err)
				}
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithName(string(taskType)),
		)
		if err != nil {
			return fmt.Errorf("failed to register task %s: %w", taskType, err)
		}
	}

	s.Start()
	r.scheduler = s
	log.Printf("Automation runner started with %d tasks", len(intervals))
	return nil
}

// Shutdown stops the scheduler and waits for running jobs to finish.
func (r *Runner) Shutdown() error {
	if r.scheduler == nil {
		return nil
	}
	return r.scheduler.Shutdown()
}

// RunNow executes a single task immediately, records the execution in the
// log repository and mirrors it to the event stream. The returned error is
// the task's own error; logging failures are only logged.
func (r *Runner) RunNow(ctx context.Context, taskType models.TaskType) error {
	task, ok := r.tasks[taskType]
	if !ok {
		return fmt.Errorf("unknown task type: %s", taskType)
	}

	started := r.now()
	taskErr := task(ctx)
	elapsed := r.now().Sub(started)

	exec := &models.TaskExecution{
		ID:         cuid.New(),
		TaskType:   taskType,
		StartedAt:  started,
		DurationMs: elapsed.Milliseconds(),
		Success:    taskErr == nil,
	}
	if taskErr != nil {
		exec.Error = taskErr.Error()
	}
	if err := r.executions.Append(ctx, exec); err != nil {
		log.Printf("Failed to record execution of %s: %v", taskType, err)
	}
	if err := r.producer.PublishJSON(stream.TopicTaskExecutions, exec); err != nil {
		log.Printf("Failed to publish execution of %s: %v", taskType, err)
	}
	return taskErr
}

// Stats reports per-task success and failure counts since the given time.
func (r *Runner) Stats(ctx context.Context, since time.Time) ([]models.TaskStats, error) {
	return r.executions.Stats(ctx, since)
}

func (r *Runner) dispatchNotifications(ctx context.Context) error {
	results, err := r.notifier.ProcessDue(ctx, r.now())
	if err != nil {
		return err
	}
	for _, res := range results {
		log.Printf("Notification %s: targeted=%d sent=%d failed=%d paused=%v",
			res.NotificationID, res.Targeted, res.Sent, res.Failed, res.Paused)
	}
	return nil
}

func (r *Runner) refreshProfiles(ctx context.Context) error {
	refreshed, err := r.engine.RefreshRecentlyActive(ctx, personalizationWindow)
	if err != nil {
		return err
	}
	log.Printf("Refreshed %d user profiles", refreshed)
	return nil
}

// cleanupLogs archives and then deletes execution rows older than the
// configured retention. Deletion is skipped if archiving fails, so rows
// are never lost.
func (r *Runner) cleanupLogs(ctx context.Context) error {
	retention := time.Duration(r.cfg.LogRetentionDays) * 24 * time.Hour
	cutoff := r.now().Add(-retention)

	if r.archiver != nil {
		rows, err := r.executions.GetBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("failed to load expired executions: %w", err)
		}
		dest, err := r.archiver.Archive(rows, cutoff)
		if err != nil {
			return fmt.Errorf("failed to archive executions: %w", err)
		}
		if dest != "" {
			log.Printf("Archived %d executions to %s", len(rows), dest)
		}
	}

	deleted, err := r.executions.DeleteBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete expired executions: %w", err)
	}
	if deleted > 0 {
		log.Printf("Deleted %d executions older than %s", deleted, cutoff.Format(time.RFC3339))
	}
	return nil
}

// validateSchedules backfills the default meal windows for any active store
// that has no menu schedules yet.
func (r *Runner) validateSchedules(ctx context.Context) error {
	stores, err := r.stores.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active stores: %w", err)
	}
	for _, store := range stores {
		count, err := r.schedules.CountByStoreID(ctx, store.ID)
		if err != nil {
			return fmt.Errorf("failed to count schedules for store %s: %w", store.ID, err)
		}
		if count > 0 {
			continue
		}
		if _, err := r.resolver.InitializeDefaults(ctx, store.ID); err != nil {
			return fmt.Errorf("failed to initialize schedules for store %s: %w", store.ID, err)
		}
		log.Printf("Initialized default menu schedules for store %s", store.ID)
	}
	return nil
}
