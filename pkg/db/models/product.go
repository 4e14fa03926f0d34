package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a menu item.
type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	PriceCents  int       `gorm:"column:price_cents;not null"`
	Category    string    `gorm:"column:category;not null;index"`
	ImageURL    *string   `gorm:"column:image_url"`
	Stock       int       `gorm:"column:stock;not null;default:0"`
	MinStock    int       `gorm:"column:min_stock;not null;default:10"`
	Available   bool      `gorm:"column:available;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// LowOnStock reports whether the product sits at or below its threshold.
func (p Product) LowOnStock() bool {
	return p.Stock <= p.MinStock
}
