package reservations

import (
	"fmt"
	"regexp"
)

const (
	// TableCount is the number of physical tables in the dining room.
	TableCount = 20
	// MaxPartySize caps how many guests one table seats.
	MaxPartySize = 10

	openingHour = 12
	closingHour = 23
)

var timeRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// TimeSlots returns the bookable half-hour slots, 12:00 through 23:00.
// The closing hour has no half-past slot.
func TimeSlots() []string {
	slots := make([]string, 0, (closingHour-openingHour)*2+1)
	for hour := openingHour; hour <= closingHour; hour++ {
		slots = append(slots, fmt.Sprintf("%02d:00", hour))
		if hour < closingHour {
			slots = append(slots, fmt.Sprintf("%02d:30", hour))
		}
	}
	return slots
}

// IsValidSlot reports whether value names a bookable slot.
func IsValidSlot(value string) bool {
	if !timeRe.MatchString(value) {
		return false
	}
	for _, slot := range TimeSlots() {
		if slot == value {
			return true
		}
	}
	return false
}

// IsValidTable reports whether the table number exists.
func IsValidTable(table int) bool {
	return table >= 1 && table <= TableCount
}
