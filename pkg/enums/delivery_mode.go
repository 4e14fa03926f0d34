package enums

import "fmt"

// DeliveryMode distinguishes pickup orders from delivery orders.
type DeliveryMode string

const (
	DeliveryModePickup   DeliveryMode = "pickup"
	DeliveryModeDelivery DeliveryMode = "delivery"
)

var validDeliveryModes = []DeliveryMode{
	DeliveryModePickup,
	DeliveryModeDelivery,
}

// String implements fmt.Stringer.
func (d DeliveryMode) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryMode.
func (d DeliveryMode) IsValid() bool {
	for _, candidate := range validDeliveryModes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryMode converts raw input into a DeliveryMode.
func ParseDeliveryMode(value string) (DeliveryMode, error) {
	for _, candidate := range validDeliveryModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery mode %q", value)
}
