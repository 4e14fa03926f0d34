package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabacweb/tabac-backend/pkg/db/models"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
)

// Service exposes catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a menu item.
type CreateProductInput struct {
	Name        string
	Description *string
	PriceCents  int
	Category    string
	ImageURL    *string
	Stock       int
	MinStock    *int
	Available   bool
}

// UpdateProductInput holds optional mutation values for a menu item.
type UpdateProductInput struct {
	Name        *string
	Description *string
	PriceCents  *int
	Category    *string
	ImageURL    *string
	Stock       *int
	MinStock    *int
	Available   *bool
}

type repository interface {
	CreateProduct(context.Context, *models.Product) (*models.Product, error)
	UpdateProduct(context.Context, *models.Product) (*models.Product, error)
	DeleteProduct(context.Context, uuid.UUID) error
	FindByID(context.Context, uuid.UUID) (*models.Product, error)
	ListProducts(context.Context, ListProductsInput) ([]models.Product, error)
}

type service struct {
	repo repository
}

// NewService constructs a catalog service instance.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	if err := validatePrice(input.PriceCents); err != nil {
		return nil, err
	}
	if err := validateStock(input.Stock); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}

	product := &models.Product{
		Name:        name,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		Category:    category,
		ImageURL:    input.ImageURL,
		Stock:       input.Stock,
		Available:   input.Available,
	}
	if input.MinStock != nil {
		if err := validateStock(*input.MinStock); err != nil {
			return nil, err
		}
		product.MinStock = *input.MinStock
	} else {
		product.MinStock = 10
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return NewProductDTO(created), nil
}

func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if input.PriceCents != nil {
		if err := validatePrice(*input.PriceCents); err != nil {
			return nil, err
		}
		product.PriceCents = *input.PriceCents
	}
	if input.Stock != nil {
		if err := validateStock(*input.Stock); err != nil {
			return nil, err
		}
		product.Stock = *input.Stock
	}
	if input.MinStock != nil {
		if err := validateStock(*input.MinStock); err != nil {
			return nil, err
		}
		product.MinStock = *input.MinStock
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		product.Name = name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
		}
		product.Category = category
	}
	if input.ImageURL != nil {
		product.ImageURL = input.ImageURL
	}
	if input.Available != nil {
		product.Available = *input.Available
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return NewProductDTO(updated), nil
}

func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, input ListProductsInput) ([]ProductDTO, error) {
	rows, err := s.repo.ListProducts(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewProductDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) loadProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}

func validatePrice(cents int) error {
	if cents < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be non-negative")
	}
	return nil
}

func validateStock(value int) error {
	if value < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock values must be non-negative")
	}
	return nil
}
