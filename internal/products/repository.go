package product

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabacweb/tabac-backend/pkg/db/models"
)

// ProductRepository defines CRUD operations for the catalog.
type ProductRepository interface {
	CreateProduct(context.Context, *models.Product) (*models.Product, error)
	UpdateProduct(context.Context, *models.Product) (*models.Product, error)
	DeleteProduct(context.Context, uuid.UUID) error
	FindByID(context.Context, uuid.UUID) (*models.Product, error)
	ListProducts(context.Context, ListProductsInput) ([]models.Product, error)
}

// Repository wires together catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product by ID.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// ListProducts returns catalog rows matching the provided filters.
func (r *Repository) ListProducts(ctx context.Context, input ListProductsInput) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if !input.IncludeUnavailable {
		query = query.Where("available = TRUE")
	} else if input.Filters.Available != nil {
		query = query.Where("available = ?", *input.Filters.Available)
	}
	if input.Filters.Category != nil {
		query = query.Where("category = ?", *input.Filters.Category)
	}
	if input.Filters.PriceMinCents != nil {
		query = query.Where("price_cents >= ?", *input.Filters.PriceMinCents)
	}
	if input.Filters.PriceMaxCents != nil {
		query = query.Where("price_cents <= ?", *input.Filters.PriceMaxCents)
	}
	if q := strings.TrimSpace(input.Filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(description, '')) LIKE ?", pattern, pattern)
	}

	var rows []models.Product
	if err := query.Order("category ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DecrementStock atomically reduces stock for a product, refusing to go
// negative. It returns the updated row, or gorm.ErrRecordNotFound when the
// product is missing or short on stock.
func (r *Repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (*models.Product, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(ctx, id)
}
