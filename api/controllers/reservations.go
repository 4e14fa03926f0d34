package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/tabacweb/tabac-backend/api/responses"
	"github.com/tabacweb/tabac-backend/api/validators"
	"github.com/tabacweb/tabac-backend/internal/reservations"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
	"github.com/tabacweb/tabac-backend/pkg/logger"
)

// GetAvailability returns the table-by-slot openness grid for a date.
func GetAvailability(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		date, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		grid, err := svc.GetAvailabilityGrid(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, grid)
	}
}

type createReservationRequest struct {
	TableNumber   int     `json:"table_number" validate:"required,min=1"`
	Date          string  `json:"date" validate:"required"`
	Time          string  `json:"time" validate:"required"`
	PartySize     int     `json:"party_size" validate:"required,min=1"`
	CustomerName  string  `json:"customer_name" validate:"required"`
	CustomerPhone string  `json:"customer_phone" validate:"required"`
	CustomerEmail *string `json:"customer_email,omitempty" validate:"omitempty,email"`
	Notes         *string `json:"notes,omitempty"`
}

// CreateReservation books a table. Open to the public.
func CreateReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		var body createReservationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD"))
			return
		}

		reservation, err := svc.CreateReservation(r.Context(), reservations.CreateReservationInput{
			TableNumber:   body.TableNumber,
			Date:          date,
			Time:          body.Time,
			PartySize:     body.PartySize,
			CustomerName:  body.CustomerName,
			CustomerPhone: body.CustomerPhone,
			CustomerEmail: body.CustomerEmail,
			Notes:         body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, reservation)
	}
}

// ListReservations is the staff booking board, filterable by date, status,
// and table.
func ListReservations(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		filters := reservations.ReservationListFilters{}

		if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
			date, err := time.Parse("2006-01-02", raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD"))
				return
			}
			filters.Date = &date
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseReservationStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		table, err := validators.ParseQueryInt(r, "table", 0, 1, reservations.TableCount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if table > 0 {
			filters.TableNumber = &table
		}

		list, err := svc.ListReservations(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// GetReservation returns one booking by id. Staff only.
func GetReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		reservationID, err := pathUUID(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.GetReservation(r.Context(), reservationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reservation)
	}
}

type updateReservationRequest struct {
	TableNumber *int    `json:"table_number,omitempty" validate:"omitempty,min=1"`
	Date        *string `json:"date,omitempty"`
	Time        *string `json:"time,omitempty"`
	PartySize   *int    `json:"party_size,omitempty" validate:"omitempty,min=1"`
	Status      *string `json:"status,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// UpdateReservation edits a booking or moves it through its lifecycle.
// Staff only.
func UpdateReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		reservationID, err := pathUUID(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateReservationRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := reservations.UpdateReservationInput{
			TableNumber: body.TableNumber,
			Time:        body.Time,
			PartySize:   body.PartySize,
			Notes:       body.Notes,
		}
		if body.Date != nil {
			date, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD"))
				return
			}
			input.Date = &date
		}
		if body.Status != nil {
			status, err := enums.ParseReservationStatus(*body.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reservation status"))
				return
			}
			input.Status = &status
		}

		reservation, err := svc.UpdateReservation(r.Context(), reservationID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reservation)
	}
}

// CancelReservation frees the slot. Cancelling twice is a no-op.
func CancelReservation(svc reservations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		reservationID, err := pathUUID(r, "reservationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reservation, err := svc.CancelReservation(r.Context(), reservationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, reservation)
	}
}
