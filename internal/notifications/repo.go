package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabacweb/tabac-backend/pkg/db/models"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	"github.com/tabacweb/tabac-backend/pkg/pagination"
)

// Repository exposes persistence helpers for notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error)
	CountUnread(ctx context.Context, role enums.Role, userID uuid.UUID, now time.Time) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID, now time.Time) (notificationMarkResult, error)
	MarkAllRead(ctx context.Context, role enums.Role, userID uuid.UUID, now time.Time) (int64, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listNotificationsParams struct {
	Role       enums.Role
	UserID     uuid.UUID
	Limit      int
	Cursor     *pagination.Cursor
	UnreadOnly bool
	Now        time.Time
}

type notificationMarkResult struct {
	Updated bool
	Found   bool
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var notification models.Notification
	if err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *repositoryImpl) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Preload("ReadBy", "user_id = ?", params.UserID).
		Where("active = TRUE AND expires_at > ? AND ? = ANY(roles)", params.Now, string(params.Role))
	if params.UnreadOnly {
		query = query.Where(
			"id NOT IN (SELECT notification_id FROM notification_reads WHERE user_id = ?)",
			params.UserID,
		)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&notifications).Error; err != nil {
		return nil, nil, err
	}

	if len(notifications) > normalized {
		next := notifications[normalized]
		notifications = notifications[:normalized]
		return notifications, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return notifications, nil, nil
}

func (r *repositoryImpl) CountUnread(ctx context.Context, role enums.Role, userID uuid.UUID, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("active = TRUE AND expires_at > ? AND ? = ANY(roles)", now, string(role)).
		Where("id NOT IN (SELECT notification_id FROM notification_reads WHERE user_id = ?)", userID).
		Count(&count).Error
	return count, err
}

// MarkRead inserts a read receipt. The unique index on
// (notification_id, user_id) makes repeated marks a no-op.
func (r *repositoryImpl) MarkRead(ctx context.Context, notificationID, userID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Count(&count).Error; err != nil {
		return notificationMarkResult{}, err
	}
	if count == 0 {
		return notificationMarkResult{}, nil
	}

	result := r.db.WithContext(ctx).
		Exec(`INSERT INTO notification_reads (notification_id, user_id, read_at)
			VALUES (?, ?, ?)
			ON CONFLICT (notification_id, user_id) DO NOTHING`,
			notificationID, userID, now)
	if result.Error != nil {
		return notificationMarkResult{}, result.Error
	}
	return notificationMarkResult{Found: true, Updated: result.RowsAffected > 0}, nil
}

func (r *repositoryImpl) MarkAllRead(ctx context.Context, role enums.Role, userID uuid.UUID, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Exec(`INSERT INTO notification_reads (notification_id, user_id, read_at)
			SELECT id, ?, ? FROM notifications
			WHERE active = TRUE AND ? = ANY(roles)
			ON CONFLICT (notification_id, user_id) DO NOTHING`,
			userID, now, string(role))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repositoryImpl) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("active = TRUE AND expires_at <= ?", now).
		UpdateColumn("active", false)
	return result.RowsAffected, result.Error
}

func (r *repositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}

// PurgeInactiveBefore removes inactive rows whose expiry passed before the
// cutoff. Retention is keyed to expiry, not creation.
func (r *repositoryImpl) PurgeInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("active = FALSE AND expires_at < ?", cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
