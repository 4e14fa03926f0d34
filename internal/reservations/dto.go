package reservations

import (
	"time"

	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/pkg/db/models"
	"github.com/tabacweb/tabac-backend/pkg/enums"
)

// ReservationDTO is the reservation payload returned to clients.
type ReservationDTO struct {
	ID            uuid.UUID               `json:"id"`
	TableNumber   int                     `json:"table_number"`
	Date          string                  `json:"date"`
	Time          string                  `json:"time"`
	PartySize     int                     `json:"party_size"`
	Status        enums.ReservationStatus `json:"status"`
	CustomerName  string                  `json:"customer_name"`
	CustomerPhone string                  `json:"customer_phone"`
	CustomerEmail *string                 `json:"customer_email,omitempty"`
	Notes         *string                 `json:"notes,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// NewReservationDTO builds a DTO from the persisted model.
func NewReservationDTO(r *models.Reservation) *ReservationDTO {
	if r == nil {
		return nil
	}
	return &ReservationDTO{
		ID:            r.ID,
		TableNumber:   r.TableNumber,
		Date:          r.ReservedOn.Format("2006-01-02"),
		Time:          r.StartTime,
		PartySize:     r.PartySize,
		Status:        r.Status,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		CustomerEmail: r.CustomerEmail,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// AvailabilityGrid maps table number to slot time to openness.
type AvailabilityGrid struct {
	Date   string                  `json:"date"`
	Slots  []string                `json:"slots"`
	Tables map[int]map[string]bool `json:"tables"`
}
