package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tabacweb/tabac-backend/pkg/enums"
)

// Notification stores an in-app notification targeted at one or more roles.
type Notification struct {
	ID       uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Roles    pq.StringArray         `gorm:"type:text[];column:roles;not null"`
	Type     enums.NotificationType `gorm:"column:type;type:text;not null"`
	Title    string                 `gorm:"type:text;not null"`
	Message  string                 `gorm:"type:text;not null"`
	Entity   *enums.EntityKind      `gorm:"column:entity;type:text"`
	EntityID *uuid.UUID             `gorm:"column:entity_id;type:uuid"`
	Metadata map[string]any         `gorm:"column:metadata;type:jsonb;serializer:json"`

	ReadBy []NotificationRead `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE"`

	Active    bool      `gorm:"column:active;not null;default:true;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;type:timestamptz;not null;index"`
	CreatedAt time.Time `gorm:"type:timestamptz;default:now()"`
}

// TargetsRole reports whether the notification addresses the given role.
func (n Notification) TargetsRole(role enums.Role) bool {
	for _, r := range n.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}

// ReadByUser reports whether the user already has a read receipt.
func (n Notification) ReadByUser(userID uuid.UUID) bool {
	for _, r := range n.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// NotificationRead is a per-user read receipt.
type NotificationRead struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	NotificationID uuid.UUID `gorm:"column:notification_id;type:uuid;not null;uniqueIndex:idx_notification_reads_user"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_notification_reads_user"`
	ReadAt         time.Time `gorm:"column:read_at;type:timestamptz;not null"`
}
