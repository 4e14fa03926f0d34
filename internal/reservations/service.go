package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabacweb/tabac-backend/pkg/db"
	"github.com/tabacweb/tabac-backend/pkg/db/models"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
)

const tableUnavailableMessage = "table unavailable for the requested slot"

// Notifier receives best-effort reservation lifecycle events.
type Notifier interface {
	ReservationCreated(ctx context.Context, reservation *models.Reservation)
	ReservationStatusChanged(ctx context.Context, reservation *models.Reservation, previous enums.ReservationStatus)
}

// Service defines the reservation operations exposed to controllers.
type Service interface {
	CheckAvailability(ctx context.Context, table int, date time.Time, slot string, excludeID *uuid.UUID) (bool, error)
	GetAvailabilityGrid(ctx context.Context, date time.Time) (*AvailabilityGrid, error)
	CreateReservation(ctx context.Context, input CreateReservationInput) (*ReservationDTO, error)
	UpdateReservation(ctx context.Context, id uuid.UUID, input UpdateReservationInput) (*ReservationDTO, error)
	CancelReservation(ctx context.Context, id uuid.UUID) (*ReservationDTO, error)
	GetReservation(ctx context.Context, id uuid.UUID) (*ReservationDTO, error)
	ListReservations(ctx context.Context, filters ReservationListFilters) ([]ReservationDTO, error)
}

// CreateReservationInput captures a validated booking request.
type CreateReservationInput struct {
	TableNumber   int
	Date          time.Time
	Time          string
	PartySize     int
	CustomerName  string
	CustomerPhone string
	CustomerEmail *string
	Notes         *string
}

// UpdateReservationInput holds optional mutation values for a booking.
type UpdateReservationInput struct {
	TableNumber *int
	Date        *time.Time
	Time        *string
	PartySize   *int
	Status      *enums.ReservationStatus
	Notes       *string
}

type service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build a reservation service.
type ServiceParams struct {
	Repo     Repository
	Notifier Notifier
}

// NewService builds a reservation service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("reservations repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		repo:     params.Repo,
		notifier: params.Notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// CheckAvailability reports whether the slot is free of pending/confirmed
// reservations. Dates compare at day granularity.
func (s *service) CheckAvailability(ctx context.Context, table int, date time.Time, slot string, excludeID *uuid.UUID) (bool, error) {
	if !IsValidTable(table) {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "table number out of range")
	}
	if !IsValidSlot(slot) {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "time must name a half-hour slot between 12:00 and 23:00")
	}

	count, err := s.repo.CountBlocking(ctx, table, date, slot, excludeID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count reservations")
	}
	return count == 0, nil
}

// GetAvailabilityGrid returns the full table-by-slot openness map for a date.
func (s *service) GetAvailabilityGrid(ctx context.Context, date time.Time) (*AvailabilityGrid, error) {
	slots := TimeSlots()
	grid := &AvailabilityGrid{
		Date:   truncateDay(date).Format("2006-01-02"),
		Slots:  slots,
		Tables: make(map[int]map[string]bool, TableCount),
	}
	for table := 1; table <= TableCount; table++ {
		row := make(map[string]bool, len(slots))
		for _, slot := range slots {
			row[slot] = true
		}
		grid.Tables[table] = row
	}

	blocking, err := s.repo.ListBlockingForDate(ctx, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list reservations")
	}
	for _, reservation := range blocking {
		if row, ok := grid.Tables[reservation.TableNumber]; ok {
			if _, known := row[reservation.StartTime]; known {
				row[reservation.StartTime] = false
			}
		}
	}
	return grid, nil
}

func (s *service) CreateReservation(ctx context.Context, input CreateReservationInput) (*ReservationDTO, error) {
	if err := s.validateSlotInput(input.TableNumber, input.Date, input.Time, input.PartySize); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.CustomerName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	phone := strings.TrimSpace(input.CustomerPhone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer phone required")
	}

	available, err := s.CheckAvailability(ctx, input.TableNumber, input.Date, input.Time, nil)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, tableUnavailableMessage)
	}

	reservation := &models.Reservation{
		TableNumber:   input.TableNumber,
		ReservedOn:    truncateDay(input.Date),
		StartTime:     input.Time,
		PartySize:     input.PartySize,
		Status:        enums.ReservationStatusPending,
		CustomerName:  name,
		CustomerPhone: phone,
		CustomerEmail: input.CustomerEmail,
		Notes:         input.Notes,
	}

	created, err := s.repo.Create(ctx, reservation)
	if err != nil {
		// Two concurrent bookings can both pass the pre-check; the partial
		// unique index reports the loser here.
		if db.IsUniqueViolation(err, "idx_reservations_active_slot") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, tableUnavailableMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert reservation")
	}

	s.notifier.ReservationCreated(ctx, created)
	return NewReservationDTO(created), nil
}

func (s *service) UpdateReservation(ctx context.Context, id uuid.UUID, input UpdateReservationInput) (*ReservationDTO, error) {
	reservation, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.Status == enums.ReservationStatusCancelled || reservation.Status == enums.ReservationStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "reservation can no longer be edited")
	}

	previousStatus := reservation.Status

	table := reservation.TableNumber
	if input.TableNumber != nil {
		table = *input.TableNumber
	}
	date := reservation.ReservedOn
	if input.Date != nil {
		date = truncateDay(*input.Date)
	}
	slot := reservation.StartTime
	if input.Time != nil {
		slot = *input.Time
	}
	partySize := reservation.PartySize
	if input.PartySize != nil {
		partySize = *input.PartySize
	}
	if err := s.validateSlotInput(table, date, slot, partySize); err != nil {
		return nil, err
	}

	slotChanged := table != reservation.TableNumber ||
		!date.Equal(truncateDay(reservation.ReservedOn)) ||
		slot != reservation.StartTime
	if slotChanged {
		excludeID := reservation.ID
		available, err := s.CheckAvailability(ctx, table, date, slot, &excludeID)
		if err != nil {
			return nil, err
		}
		if !available {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, tableUnavailableMessage)
		}
	}

	reservation.TableNumber = table
	reservation.ReservedOn = date
	reservation.StartTime = slot
	reservation.PartySize = partySize
	if input.Notes != nil {
		reservation.Notes = input.Notes
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid reservation status")
		}
		reservation.Status = *input.Status
	}

	updated, err := s.repo.Update(ctx, reservation)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_reservations_active_slot") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, tableUnavailableMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update reservation")
	}

	if input.Status != nil && *input.Status != previousStatus {
		s.notifier.ReservationStatusChanged(ctx, updated, previousStatus)
	}
	return NewReservationDTO(updated), nil
}

// CancelReservation soft-cancels the booking so the slot frees up while the
// row stays for the audit trail.
func (s *service) CancelReservation(ctx context.Context, id uuid.UUID) (*ReservationDTO, error) {
	reservation, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.Status == enums.ReservationStatusCancelled {
		return NewReservationDTO(reservation), nil
	}
	if reservation.Status == enums.ReservationStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "completed reservations cannot be cancelled")
	}

	previous := reservation.Status
	if err := s.repo.UpdateStatus(ctx, reservation.ID, enums.ReservationStatusCancelled); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: cancel reservation")
	}
	reservation.Status = enums.ReservationStatusCancelled

	s.notifier.ReservationStatusChanged(ctx, reservation, previous)
	return NewReservationDTO(reservation), nil
}

func (s *service) GetReservation(ctx context.Context, id uuid.UUID) (*ReservationDTO, error) {
	reservation, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewReservationDTO(reservation), nil
}

func (s *service) ListReservations(ctx context.Context, filters ReservationListFilters) ([]ReservationDTO, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list reservations")
	}
	out := make([]ReservationDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewReservationDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) validateSlotInput(table int, date time.Time, slot string, partySize int) error {
	if !IsValidTable(table) {
		return pkgerrors.New(pkgerrors.CodeValidation, "table number out of range")
	}
	if !IsValidSlot(slot) {
		return pkgerrors.New(pkgerrors.CodeValidation, "time must name a half-hour slot between 12:00 and 23:00")
	}
	if partySize < 1 || partySize > MaxPartySize {
		return pkgerrors.New(pkgerrors.CodeValidation, "party size must be between 1 and 10")
	}
	if truncateDay(date).Before(truncateDay(s.now())) {
		return pkgerrors.New(pkgerrors.CodeValidation, "date cannot be in the past")
	}
	return nil
}

func (s *service) loadReservation(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load reservation")
	}
	return reservation, nil
}
