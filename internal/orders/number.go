package orders

import (
	"fmt"
	"time"
)

// BuildOrderNumber formats the human-facing order number for the given day
// and daily sequence, e.g. ORD-20260830-00042.
func BuildOrderNumber(day time.Time, seq int64) string {
	return fmt.Sprintf("ORD-%s-%05d", day.UTC().Format("20060102"), seq)
}
