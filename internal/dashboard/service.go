package dashboard

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tabacweb/tabac-backend/pkg/db/models"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
)

// Summary is the staff dashboard payload.
type Summary struct {
	ProductsTotal     int64  `json:"products_total"`
	ProductsAvailable int64  `json:"products_available"`
	ProductsLowStock  int64  `json:"products_low_stock"`
	OrdersToday       int64  `json:"orders_today"`
	OrdersPending     int64  `json:"orders_pending"`
	RevenueTodayCents int64  `json:"revenue_today_cents"`
	ReservationsToday int64  `json:"reservations_today"`
	ServerDate        string `json:"server_date"`
}

// Service computes the staff dashboard summary.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService builds the dashboard service over the primary store.
func NewService(conn *gorm.DB) (Service, error) {
	if conn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database required")
	}
	return &service{
		db:  conn,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	summary := &Summary{ServerDate: dayStart.Format("2006-01-02")}

	type countQuery struct {
		dest  *int64
		build func(*gorm.DB) *gorm.DB
	}
	counts := []countQuery{
		{&summary.ProductsTotal, func(q *gorm.DB) *gorm.DB {
			return q.Model(&models.Product{})
		}},
		{&summary.ProductsAvailable, func(q *gorm.DB) *gorm.DB {
			return q.Model(&models.Product{}).Where("available = TRUE")
		}},
		{&summary.ProductsLowStock, func(q *gorm.DB) *gorm.DB {
			return q.Model(&models.Product{}).Where("stock <= min_stock")
		}},
		{&summary.OrdersToday, func(q *gorm.DB) *gorm.DB {
			return q.Model(&models.Order{}).Where("created_at >= ? AND created_at < ?", dayStart, dayEnd)
		}},
		{&summary.OrdersPending, func(q *gorm.DB) *gorm.DB {
			return q.Model(&models.Order{}).Where("status = 'pending'")
		}},
		{&summary.ReservationsToday, func(q *gorm.DB) *gorm.DB {
			return q.Model(&models.Reservation{}).
				Where("reserved_on = ? AND status IN ('pending', 'confirmed')", dayStart)
		}},
	}
	for _, c := range counts {
		if err := c.build(s.db.WithContext(ctx)).Count(c.dest).Error; err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dashboard count")
		}
	}

	// Cancelled and rejected orders do not count as revenue.
	err := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(SUM(total_cents), 0)").
		Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		Where("status NOT IN ('cancelled', 'rejected')").
		Scan(&summary.RevenueTodayCents).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dashboard revenue")
	}

	return summary, nil
}
