package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabacweb/tabac-backend/pkg/db/models"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
)

type fakeProductRepo struct {
	products map[uuid.UUID]*models.Product
	lastList ListProductsInput
}

func newFakeProductRepo(products ...*models.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[uuid.UUID]*models.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (f *fakeProductRepo) CreateProduct(_ context.Context, p *models.Product) (*models.Product, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	copied := *p
	f.products[p.ID] = &copied
	return p, nil
}

func (f *fakeProductRepo) UpdateProduct(_ context.Context, p *models.Product) (*models.Product, error) {
	copied := *p
	f.products[p.ID] = &copied
	return p, nil
}

func (f *fakeProductRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProductRepo) ListProducts(_ context.Context, input ListProductsInput) ([]models.Product, error) {
	f.lastList = input
	out := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		if !input.IncludeUnavailable && !p.Available {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func TestCreateProductDefaultsMinStock(t *testing.T) {
	repo := newFakeProductRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	dto, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Espresso",
		PriceCents: 350,
		Category:   "drinks",
		Stock:      100,
		Available:  true,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if dto.MinStock != 10 {
		t.Fatalf("expected default min_stock of 10, got %d", dto.MinStock)
	}
	if dto.LowStock {
		t.Fatalf("100 units with threshold 10 should not be low stock")
	}
}

func TestCreateProductRejectsNegativePrice(t *testing.T) {
	svc, err := NewService(newFakeProductRepo())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.CreateProduct(context.Background(), CreateProductInput{
		Name:       "Broken",
		PriceCents: -1,
		Category:   "drinks",
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateProductAppliesPartialInput(t *testing.T) {
	existing := &models.Product{
		ID:         uuid.New(),
		Name:       "Croissant",
		PriceCents: 250,
		Category:   "bakery",
		Stock:      40,
		MinStock:   10,
		Available:  true,
	}
	repo := newFakeProductRepo(existing)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	price := 300
	available := false
	dto, err := svc.UpdateProduct(context.Background(), existing.ID, UpdateProductInput{
		PriceCents: &price,
		Available:  &available,
	})
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if dto.PriceCents != 300 {
		t.Fatalf("expected updated price, got %d", dto.PriceCents)
	}
	if dto.Available {
		t.Fatalf("expected product to be unavailable")
	}
	if dto.Name != "Croissant" {
		t.Fatalf("untouched fields should survive, got name %q", dto.Name)
	}
}

func TestGetProductNotFound(t *testing.T) {
	svc, err := NewService(newFakeProductRepo())
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	_, err = svc.GetProduct(context.Background(), uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListProductsHidesUnavailableForPublicCallers(t *testing.T) {
	visible := &models.Product{ID: uuid.New(), Name: "Latte", Available: true}
	hidden := &models.Product{ID: uuid.New(), Name: "Seasonal", Available: false}
	repo := newFakeProductRepo(visible, hidden)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	out, err := svc.ListProducts(context.Background(), ListProductsInput{})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(out) != 1 || out[0].Name != "Latte" {
		t.Fatalf("expected only available products, got %d", len(out))
	}

	out, err = svc.ListProducts(context.Background(), ListProductsInput{IncludeUnavailable: true})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("staff listing should include unavailable products, got %d", len(out))
	}
}
