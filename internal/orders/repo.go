package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabacweb/tabac-backend/pkg/db/models"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	"github.com/tabacweb/tabac-backend/pkg/pagination"
)

// OrderListFilters describe the admin listing knobs. GuestOnly splits the
// board by purchase channel: true keeps guest checkouts, false keeps
// registered-user checkouts, nil keeps both.
type OrderListFilters struct {
	Status       *enums.OrderStatus
	DeliveryMode *enums.DeliveryMode
	UserID       *uuid.UUID
	GuestOnly    *bool
	From         *time.Time
	To           *time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumber(ctx context.Context, number string) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters OrderListFilters) ([]models.Order, *pagination.Cursor, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, *pagination.Cursor, error)
	CountCreatedOn(ctx context.Context, day time.Time) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateStatusChange(ctx context.Context, change *models.OrderStatusChange) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "number = ?", number).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repositoryImpl) List(ctx context.Context, params pagination.Params, filters OrderListFilters) ([]models.Order, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Order{}).Preload("Items")
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DeliveryMode != nil {
		query = query.Where("delivery_mode = ?", *filters.DeliveryMode)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.GuestOnly != nil {
		if *filters.GuestOnly {
			query = query.Where("user_id IS NULL")
		} else {
			query = query.Where("user_id IS NOT NULL")
		}
	}
	if filters.From != nil {
		query = query.Where("created_at >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("created_at < ?", *filters.To)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, nil, err
	}

	if len(orders) > normalized {
		next := orders[normalized]
		orders = orders[:normalized]
		return orders, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return orders, nil, nil
}

func (r *repositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, *pagination.Cursor, error) {
	id := userID
	return r.List(ctx, params, OrderListFilters{UserID: &id})
}

func (r *repositoryImpl) CountCreatedOn(ctx context.Context, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repositoryImpl) CreateStatusChange(ctx context.Context, change *models.OrderStatusChange) error {
	return r.db.WithContext(ctx).Create(change).Error
}
