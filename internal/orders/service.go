package orders

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
	"github.com/tabacweb/tabac-backend/pkg/pagination"
)

const numberAttempts = 3

// Service defines the order operations exposed to controllers.
type Service interface {
	Checkout(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	TrackOrder(ctx context.Context, number string) (*OrderDTO, error)
	ListOrders(ctx context.Context, params pagination.Params, filters OrderListFilters) (*OrderListResult, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListResult, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error)
}

// CreateOrderItemInput names one product and quantity in a checkout.
type CreateOrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateOrderInput captures a validated checkout request. Exactly one of
// UserID and Guest must be set.
type CreateOrderInput struct {
	UserID           *uuid.UUID
	Guest            *GuestInfo
	Items            []CreateOrderItemInput
	DeliveryMode     enums.DeliveryMode
	DeliveryAddress  *string
	DeliveryNotes    *string
	PaymentMethod    enums.PaymentMethod
	DiscountsCents   int
	DeliveryFeeCents int
}

// UpdateStatusInput carries a staff transition request for an order.
type UpdateStatusInput struct {
	OrderID         uuid.UUID
	Status          enums.OrderStatus
	Actor           string
	ActorRole       enums.Role
	Notes           *string
	RejectionReason *string
}

type service struct {
	repo     Repository
	tx       txRunner
	catalog  Catalog
	notifier Notifier
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build an order service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Catalog  Catalog
	Notifier Notifier
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("product catalog required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		catalog:  params.Catalog,
		notifier: params.Notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Checkout validates the request, snapshots the priced items, decrements
// stock, and persists the order in one transaction. Lifecycle notifications
// go out after commit.
func (s *service) Checkout(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if err := validateOwnership(input); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
	}
	if !input.DeliveryMode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery mode")
	}
	if input.DeliveryMode == enums.DeliveryModeDelivery && trimmed(input.DeliveryAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required for delivery orders")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.DiscountsCents < 0 || input.DeliveryFeeCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discounts and delivery fee must be non-negative")
	}

	var created *models.Order
	var lowStock []models.Product

	var lastErr error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		created = nil
		lowStock = lowStock[:0]

		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			order := &models.Order{
				UserID:           input.UserID,
				Status:           enums.OrderStatusPending,
				DeliveryMode:     input.DeliveryMode,
				DeliveryAddress:  input.DeliveryAddress,
				DeliveryNotes:    input.DeliveryNotes,
				DiscountsCents:   input.DiscountsCents,
				DeliveryFeeCents: input.DeliveryFeeCents,
				PaymentMethod:    input.PaymentMethod,
				PaymentStatus:    enums.PaymentStatusPending,
			}
			if input.Guest != nil {
				name := strings.TrimSpace(input.Guest.Name)
				email := strings.ToLower(strings.TrimSpace(input.Guest.Email))
				order.GuestName = &name
				order.GuestEmail = &email
				order.GuestPhone = input.Guest.Phone
			}

			subtotal := 0
			for _, item := range input.Items {
				snapshot, err := s.snapshotItem(ctx, tx, item)
				if err != nil {
					return err
				}
				subtotal += snapshot.item.SubtotalCents
				order.Items = append(order.Items, snapshot.item)
				if snapshot.lowStock != nil {
					lowStock = append(lowStock, *snapshot.lowStock)
				}
			}

			order.SubtotalCents = subtotal
			order.TotalCents = subtotal - input.DiscountsCents + input.DeliveryFeeCents
			if order.TotalCents < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "discounts exceed order subtotal")
			}
			if order.PaymentMethod == enums.PaymentMethodSimulated {
				order.PaymentStatus = enums.PaymentStatusApproved
			}

			seq, err := repo.CountCreatedOn(ctx, s.now())
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count daily orders")
			}
			order.Number = BuildOrderNumber(s.now(), seq+1)

			if _, err := repo.Create(ctx, order); err != nil {
				return err
			}
			if err := repo.CreateStatusChange(ctx, &models.OrderStatusChange{
				OrderID:   order.ID,
				Status:    enums.OrderStatusPending,
				Actor:     actorForOrder(order),
				ActorRole: "customer",
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record status change")
			}

			created = order
			return nil
		})
		if err == nil {
			break
		}
		lastErr = err
		// Two checkouts in the same instant can race the daily sequence.
		if db.IsUniqueViolation(err, "idx_orders_number") {
			continue
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	if created == nil {
		if pkgerrors.As(lastErr) != nil {
			return nil, lastErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, lastErr, "create order")
	}

	s.notifier.OrderCreated(ctx, created)
	for i := range lowStock {
		s.notifier.LowStock(ctx, &lowStock[i])
	}

	return NewOrderDTO(created), nil
}

type itemSnapshot struct {
	item     models.OrderItem
	lowStock *models.Product
}

func (s *service) snapshotItem(ctx context.Context, tx *gorm.DB, item CreateOrderItemInput) (*itemSnapshot, error) {
	p, err := s.catalog.Find(ctx, tx, item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product not found").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	if !p.Available {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available").
			WithDetails(map[string]any{"product_id": p.ID, "name": p.Name})
	}

	updated, err := s.catalog.Decrement(ctx, tx, p.ID, item.Quantity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
				WithDetails(map[string]any{"product_id": p.ID, "name": p.Name, "stock": p.Stock})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
	}

	category := p.Category
	snapshot := &itemSnapshot{
		item: models.OrderItem{
			ProductID:     p.ID,
			Name:          p.Name,
			PriceCents:    p.PriceCents,
			ImageURL:      p.ImageURL,
			Category:      &category,
			Quantity:      item.Quantity,
			SubtotalCents: p.PriceCents * item.Quantity,
		},
	}
	if updated.LowOnStock() {
		snapshot.lowStock = updated
	}
	return snapshot, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewOrderDTO(order), nil
}

// TrackOrder resolves an order by its public number for anonymous tracking.
func (s *service) TrackOrder(ctx context.Context, number string) (*OrderDTO, error) {
	trimmedNumber := strings.TrimSpace(number)
	if trimmedNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}
	order, err := s.repo.FindByNumber(ctx, trimmedNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return NewOrderDTO(order), nil
}

func (s *service) ListOrders(ctx context.Context, params pagination.Params, filters OrderListFilters) (*OrderListResult, error) {
	rows, next, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	return buildListResult(rows, next), nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, next, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list user orders")
	}
	return buildListResult(rows, next), nil
}

// UpdateStatus applies one lifecycle transition, records the audit entry, and
// fans out the status-change notification after commit.
func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}
	if strings.TrimSpace(input.Actor) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if input.Status == enums.OrderStatusRejected && trimmed(input.RejectionReason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason required")
	}

	var updated *models.Order
	var previous enums.OrderStatus

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
		}

		if order.Status == input.Status {
			updated = order
			previous = order.Status
			return nil
		}
		if !order.Status.CanTransitionTo(input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
				WithDetails(map[string]any{"from": order.Status, "to": input.Status})
		}

		updates := map[string]any{"status": input.Status}
		if input.Status == enums.OrderStatusRejected {
			updates["rejection_reason"] = trimmed(input.RejectionReason)
		}
		if err := repo.UpdateStatus(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
		}
		if err := repo.CreateStatusChange(ctx, &models.OrderStatusChange{
			OrderID:   order.ID,
			Status:    input.Status,
			Actor:     input.Actor,
			ActorRole: string(input.ActorRole),
			Notes:     input.Notes,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record status change")
		}

		previous = order.Status
		order.Status = input.Status
		if input.Status == enums.OrderStatusRejected {
			reason := trimmed(input.RejectionReason)
			order.RejectionReason = &reason
		}
		updated = order
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}

	if previous != updated.Status {
		s.notifier.OrderStatusChanged(ctx, updated, previous)
	}
	return NewOrderDTO(updated), nil
}

func (s *service) loadOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return order, nil
}

func buildListResult(rows []models.Order, next *pagination.Cursor) *OrderListResult {
	result := &OrderListResult{Orders: make([]OrderDTO, 0, len(rows))}
	for i := range rows {
		result.Orders = append(result.Orders, *NewOrderDTO(&rows[i]))
	}
	if next != nil {
		result.NextCursor = pagination.EncodeCursor(*next)
	}
	return result
}

func validateOwnership(input CreateOrderInput) error {
	hasUser := input.UserID != nil && *input.UserID != uuid.Nil
	hasGuest := input.Guest != nil
	if hasUser == hasGuest {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires exactly one of user or guest identity")
	}
	if hasGuest {
		if strings.TrimSpace(input.Guest.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "guest name required")
		}
		if strings.TrimSpace(input.Guest.Email) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "guest email required")
		}
	}
	return nil
}

func actorForOrder(order *models.Order) string {
	if order.IsGuest() {
		if order.GuestName != nil {
			return *order.GuestName
		}
		return "guest"
	}
	return order.UserID.String()
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
