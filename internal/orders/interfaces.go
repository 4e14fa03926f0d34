package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/tabacweb/tabac-backend/internal/products"
	"github.com/tabacweb/tabac-backend/pkg/db/models"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Catalog exposes the product reads and stock writes the checkout flow needs.
type Catalog interface {
	Find(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*models.Product, error)
	Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (*models.Product, error)
}

// Notifier receives best-effort order lifecycle events. Implementations must
// not fail the calling flow; delivery problems are logged, not returned.
type Notifier interface {
	OrderCreated(ctx context.Context, order *models.Order)
	OrderStatusChanged(ctx context.Context, order *models.Order, previous enums.OrderStatus)
	LowStock(ctx context.Context, p *models.Product)
}

type catalogImpl struct{}

// NewCatalog exposes the default product catalog implementation.
func NewCatalog() Catalog {
	return catalogImpl{}
}

func (catalogImpl) Find(ctx context.Context, tx *gorm.DB, productID uuid.UUID) (*models.Product, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for catalog read")
	}
	return product.NewRepository(tx).FindByID(ctx, productID)
}

func (catalogImpl) Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) (*models.Product, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock decrement")
	}
	return product.NewRepository(tx).DecrementStock(ctx, productID, qty)
}
