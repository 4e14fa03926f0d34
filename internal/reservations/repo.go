package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabacweb/tabac-backend/pkg/db/models"
	"github.com/tabacweb/tabac-backend/pkg/enums"
)

// ReservationListFilters describe the staff listing knobs.
type ReservationListFilters struct {
	Date        *time.Time
	Status      *enums.ReservationStatus
	TableNumber *int
}

// Repository defines persistence operations for reservations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	List(ctx context.Context, filters ReservationListFilters) ([]models.Reservation, error)
	ListBlockingForDate(ctx context.Context, day time.Time) ([]models.Reservation, error)
	CountBlocking(ctx context.Context, table int, day time.Time, slot string, excludeID *uuid.UUID) (int64, error)
	Update(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository builds a reservations repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

func (r *repositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repositoryImpl) List(ctx context.Context, filters ReservationListFilters) ([]models.Reservation, error) {
	query := r.db.WithContext(ctx).Model(&models.Reservation{})
	if filters.Date != nil {
		query = query.Where("reserved_on = ?", truncateDay(*filters.Date))
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.TableNumber != nil {
		query = query.Where("table_number = ?", *filters.TableNumber)
	}

	var rows []models.Reservation
	err := query.Order("reserved_on ASC, start_time ASC, table_number ASC").Find(&rows).Error
	return rows, err
}

// ListBlockingForDate returns the pending/confirmed reservations for one day.
func (r *repositoryImpl) ListBlockingForDate(ctx context.Context, day time.Time) ([]models.Reservation, error) {
	var rows []models.Reservation
	err := r.db.WithContext(ctx).
		Where("reserved_on = ? AND status IN ?", truncateDay(day), blockingStatuses()).
		Find(&rows).Error
	return rows, err
}

// CountBlocking counts pending/confirmed reservations holding the given slot,
// optionally excluding one reservation (the one being edited).
func (r *repositoryImpl) CountBlocking(ctx context.Context, table int, day time.Time, slot string, excludeID *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("table_number = ? AND reserved_on = ? AND start_time = ? AND status IN ?",
			table, truncateDay(day), slot, blockingStatuses())
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}

func (r *repositoryImpl) Update(ctx context.Context, reservation *models.Reservation) (*models.Reservation, error) {
	if err := r.db.WithContext(ctx).Save(reservation).Error; err != nil {
		return nil, err
	}
	return reservation, nil
}

func (r *repositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ?", id).
		UpdateColumn("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func blockingStatuses() []enums.ReservationStatus {
	return []enums.ReservationStatus{
		enums.ReservationStatusPending,
		enums.ReservationStatusConfirmed,
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
