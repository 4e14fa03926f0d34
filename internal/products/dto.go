package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/pkg/db/models"
)

// ProductDTO represents the menu item payload returned to clients.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	PriceCents  int       `json:"price_cents"`
	Category    string    `json:"category"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Stock       int       `json:"stock"`
	MinStock    int       `json:"min_stock"`
	Available   bool      `json:"available"`
	LowStock    bool      `json:"low_stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		PriceCents:  product.PriceCents,
		Category:    product.Category,
		ImageURL:    product.ImageURL,
		Stock:       product.Stock,
		MinStock:    product.MinStock,
		Available:   product.Available,
		LowStock:    product.LowOnStock(),
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}
