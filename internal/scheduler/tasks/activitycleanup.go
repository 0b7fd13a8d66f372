package tasks

import (
	"context"
	"time"

	"github.com/slipstream/posterd/internal/activity"
	"github.com/slipstream/posterd/internal/config"
	"github.com/slipstream/posterd/internal/scheduler"
)

const ActivityCleanupTaskID = "activity-cleanup"

// RegisterActivityCleanupTask registers the activity log retention task.
// A non-positive retention keeps entries forever.
func RegisterActivityCleanupTask(sched *scheduler.Scheduler, service *activity.Service, cfg config.ActivityConfig) error {
	if cfg.RetentionDays <= 0 {
		return nil
	}
	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour
	return sched.RegisterTask(&scheduler.TaskConfig{
		ID:          ActivityCleanupTaskID,
		Name:        "Activity Cleanup",
		Description: "Deletes activity entries older than the configured retention period",
		Cron:        cfg.CleanupCron,
		Func: func(ctx context.Context) error {
			_, err := service.Cleanup(ctx, retention)
			return err
		},
	})
}
