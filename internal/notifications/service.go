package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/pkg/db/models"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
	"github.com/tabacweb/tabac-backend/pkg/pagination"
)

// Service defines notification list/read operations for staff clients.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	UnreadCount(ctx context.Context, role enums.Role, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, role enums.Role, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context) (int64, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// ListParams configures pagination for notifications.
type ListParams struct {
	Role       enums.Role
	UserID     uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// NotificationDTO is the notification payload returned to clients.
type NotificationDTO struct {
	ID        uuid.UUID              `json:"id"`
	Type      enums.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Entity    *enums.EntityKind      `json:"entity,omitempty"`
	EntityID  *uuid.UUID             `json:"entity_id,omitempty"`
	Metadata  map[string]any         `json:"metadata,omitempty"`
	Read      bool                   `json:"read"`
	ExpiresAt time.Time              `json:"expires_at"`
	CreatedAt time.Time              `json:"created_at"`
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []NotificationDTO `json:"items"`
	Cursor string            `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if !params.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listNotificationsParams{
		Role:       params.Role,
		UserID:     params.UserID,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
		Now:        s.now(),
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	items := make([]NotificationDTO, 0, len(rows))
	for i := range rows {
		items = append(items, newNotificationDTO(&rows[i], params.UserID))
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: items, Cursor: cursor}, nil
}

func (s *service) UnreadCount(ctx context.Context, role enums.Role, userID uuid.UUID) (int64, error) {
	if !role.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.CountUnread(ctx, role, userID, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}

func (s *service) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	result, err := s.repo.MarkRead(ctx, notificationID, userID, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, role enums.Role, userID uuid.UUID) (int64, error) {
	if !role.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	count, err := s.repo.MarkAllRead(ctx, role, userID, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

// DeleteExpired removes every notification whose expiry has passed.
// The cron sweep normally deactivates first; this is the manual purge.
func (s *service) DeleteExpired(ctx context.Context) (int64, error) {
	count, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete expired notifications")
	}
	return count, nil
}

func newNotificationDTO(n *models.Notification, userID uuid.UUID) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Entity:    n.Entity,
		EntityID:  n.EntityID,
		Metadata:  n.Metadata,
		Read:      n.ReadByUser(userID),
		ExpiresAt: n.ExpiresAt,
		CreatedAt: n.CreatedAt,
	}
}
