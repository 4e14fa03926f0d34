package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/tabacweb/tabac-backend/pkg/logger"
)

type notificationSweeper interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// NotificationSweepJobParams configure the hourly expiry sweep.
type NotificationSweepJobParams struct {
	Logger     *logger.Logger
	Repository notificationSweeper
}

// NewNotificationSweepJob deactivates notifications whose expiry passed.
// Deactivation is idempotent; a rerun finds nothing left to touch.
func NewNotificationSweepJob(params NotificationSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &notificationSweepJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type notificationSweepJob struct {
	logg *logger.Logger
	repo notificationSweeper
	now  func() time.Time
}

func (j *notificationSweepJob) Name() string         { return "notification-sweep" }
func (j *notificationSweepJob) Every() time.Duration { return time.Hour }

func (j *notificationSweepJob) Run(ctx context.Context) error {
	deactivated, err := j.repo.DeactivateExpired(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("notification sweep: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "rows_deactivated", deactivated)
	j.logg.Info(logCtx, "notification sweep complete")
	return nil
}
