package enums

import "fmt"

// ReservationStatus tracks the reservation lifecycle.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusPending,
	ReservationStatusConfirmed,
	ReservationStatusCancelled,
	ReservationStatusCompleted,
}

// String implements fmt.Stringer.
func (s ReservationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReservationStatus.
func (s ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Blocks reports whether a reservation in this status occupies its slot.
// Only pending and confirmed reservations count toward availability.
func (s ReservationStatus) Blocks() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

// ParseReservationStatus converts raw input into a ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, candidate := range validReservationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}
