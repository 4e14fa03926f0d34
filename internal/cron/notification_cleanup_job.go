package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/tabacweb/tabac-backend/pkg/logger"
)

const notificationRetentionDays = 30

type notificationPurger interface {
	PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationCleanupJobParams configure the daily purge of old
// deactivated notifications.
type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	Repository notificationPurger
	Retention  int
}

// NewNotificationCleanupJob deletes inactive notifications older than
// the retention window.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = notificationRetentionDays
	}
	return &notificationCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		retention: retention,
		now:       time.Now,
	}, nil
}

type notificationCleanupJob struct {
	logg      *logger.Logger
	repo      notificationPurger
	retention int
	now       func() time.Time
}

func (j *notificationCleanupJob) Name() string         { return "notification-cleanup" }
func (j *notificationCleanupJob) Every() time.Duration { return 24 * time.Hour }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	deleted, err := j.repo.PurgeInactiveBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}
