package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/pkg/enums"
)

// Reservation books one table for one half-hour slot on one day.
// A partial unique index on (table_number, reserved_on, start_time) for
// pending/confirmed rows enforces the slot invariant at the store.
type Reservation struct {
	ID          uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	TableNumber int                     `gorm:"column:table_number;not null;index:idx_reservations_slot"`
	ReservedOn  time.Time               `gorm:"column:reserved_on;type:date;not null;index:idx_reservations_slot"`
	StartTime   string                  `gorm:"column:start_time;not null;index:idx_reservations_slot"`
	PartySize   int                     `gorm:"column:party_size;not null"`
	Status      enums.ReservationStatus `gorm:"column:status;type:text;not null;default:'pending';index"`

	CustomerName  string  `gorm:"column:customer_name;not null"`
	CustomerPhone string  `gorm:"column:customer_phone;not null"`
	CustomerEmail *string `gorm:"column:customer_email"`

	Notes *string `gorm:"column:notes"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
