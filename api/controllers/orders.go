package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/api/middleware"
	"github.com/tabacweb/tabac-backend/api/responses"
	"github.com/tabacweb/tabac-backend/api/validators"
	"github.com/tabacweb/tabac-backend/internal/orders"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
	"github.com/tabacweb/tabac-backend/pkg/logger"
	"github.com/tabacweb/tabac-backend/pkg/pagination"
)

type checkoutItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type checkoutGuestRequest struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Phone *string `json:"phone,omitempty"`
}

type checkoutRequest struct {
	Items           []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	Guest           *checkoutGuestRequest `json:"guest,omitempty"`
	DeliveryMode    string                `json:"delivery_mode" validate:"required"`
	DeliveryAddress *string               `json:"delivery_address,omitempty"`
	DeliveryNotes   *string               `json:"delivery_notes,omitempty"`
	PaymentMethod   string                `json:"payment_method" validate:"required"`
}

// Checkout places an order. Authenticated callers order under their own
// account; anonymous callers must supply guest contact details.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var body checkoutRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode, err := enums.ParseDeliveryMode(body.DeliveryMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery mode"))
			return
		}
		method, err := enums.ParsePaymentMethod(body.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		input := orders.CreateOrderInput{
			DeliveryMode:    mode,
			DeliveryAddress: body.DeliveryAddress,
			DeliveryNotes:   body.DeliveryNotes,
			PaymentMethod:   method,
		}

		for _, item := range body.Items {
			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
				return
			}
			input.Items = append(input.Items, orders.CreateOrderItemInput{ProductID: productID, Quantity: item.Quantity})
		}

		if userID := middleware.UserUUIDFromContext(r.Context()); userID != uuid.Nil {
			input.UserID = &userID
		} else if body.Guest != nil {
			input.Guest = &orders.GuestInfo{Name: body.Guest.Name, Email: body.Guest.Email, Phone: body.Guest.Phone}
		}

		order, err := svc.Checkout(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// TrackOrder looks an order up by its public number. No auth required; the
// number itself is the capability.
func TrackOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		number := strings.TrimSpace(chi.URLParam(r, "number"))
		if number == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "order number required"))
			return
		}

		order, err := svc.TrackOrder(r.Context(), number)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// ListMyOrders returns the caller's own order history.
func ListMyOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		userID := middleware.UserUUIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListUserOrders(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ListOrders is the staff order board with status, mode, and date filters.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		params, err := paginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := orderListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListOrders(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetOrder returns one order by id. Staff only.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

type updateOrderStatusRequest struct {
	Status          string  `json:"status" validate:"required"`
	Notes           *string `json:"notes,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

// UpdateOrderStatus moves an order through its lifecycle. Staff only; the
// acting user is recorded in the audit trail.
func UpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, ok := middleware.ActorRoleFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required"))
			return
		}

		var body updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status"))
			return
		}

		actor := middleware.NameFromContext(r.Context())
		if actor == "" {
			actor = middleware.UserIDFromContext(r.Context())
		}

		order, err := svc.UpdateStatus(r.Context(), orders.UpdateStatusInput{
			OrderID:         orderID,
			Status:          status,
			Actor:           actor,
			ActorRole:       role,
			Notes:           body.Notes,
			RejectionReason: body.RejectionReason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func paginationParams(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{}

	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
	if err != nil {
		return params, err
	}
	params.Limit = limit

	if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
		params.Cursor = cursor
	}
	return params, nil
}

func orderListFilters(r *http.Request) (orders.OrderListFilters, error) {
	filters := orders.OrderListFilters{}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("delivery_mode")); raw != "" {
		mode, err := enums.ParseDeliveryMode(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery mode filter")
		}
		filters.DeliveryMode = &mode
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("channel")); raw != "" {
		switch raw {
		case "guest":
			guest := true
			filters.GuestOnly = &guest
		case "registered":
			guest := false
			filters.GuestOnly = &guest
		default:
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "channel must be guest or registered")
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "from must be a date (YYYY-MM-DD)")
		}
		filters.From = &from
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "to must be a date (YYYY-MM-DD)")
		}
		end := to.AddDate(0, 0, 1)
		filters.To = &end
	}

	return filters, nil
}
