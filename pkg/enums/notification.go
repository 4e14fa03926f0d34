package enums

import "fmt"

// NotificationType tags the domain event a notification describes.
type NotificationType string

const (
	NotificationTypeNewOrder                NotificationType = "new_order"
	NotificationTypeOrderStatusChange       NotificationType = "order_status_change"
	NotificationTypeNewReservation          NotificationType = "new_reservation"
	NotificationTypeReservationStatusChange NotificationType = "reservation_status_change"
	NotificationTypeLowStock                NotificationType = "low_stock"
	NotificationTypeSystem                  NotificationType = "system"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeNewOrder,
	NotificationTypeOrderStatusChange,
	NotificationTypeNewReservation,
	NotificationTypeReservationStatusChange,
	NotificationTypeLowStock,
	NotificationTypeSystem,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}

// EntityKind names the entity a notification references.
type EntityKind string

const (
	EntityKindOrder       EntityKind = "order"
	EntityKindReservation EntityKind = "reservation"
	EntityKindProduct     EntityKind = "product"
	EntityKindSystem      EntityKind = "system"
)

var validEntityKinds = []EntityKind{
	EntityKindOrder,
	EntityKindReservation,
	EntityKindProduct,
	EntityKindSystem,
}

// IsValid reports whether the value is a known EntityKind.
func (e EntityKind) IsValid() bool {
	for _, candidate := range validEntityKinds {
		if candidate == e {
			return true
		}
	}
	return false
}
