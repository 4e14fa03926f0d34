package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/tabacweb/tabac-backend/pkg/db/models"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	"github.com/tabacweb/tabac-backend/pkg/logger"
)

// defaultTTL is how long a notification stays visible before the sweep
// deactivates it.
const defaultTTL = 7 * 24 * time.Hour

// Broadcaster pushes events to connected websocket clients.
type Broadcaster interface {
	PublishToRole(role enums.Role, event string, payload any)
	PublishToUser(userID uuid.UUID, event string, payload any)
	PublishGlobal(event string, payload any)
}

// Mailer delivers confirmation emails to customers.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Notifier turns domain events into persisted notifications and realtime
// pushes. Delivery is best effort: a failed insert is logged and the push
// still goes out, so connected staff see the event even in degraded mode.
type Notifier struct {
	repo        Repository
	broadcaster Broadcaster
	mailer      Mailer
	logg        *logger.Logger
	now         func() time.Time
}

// NewNotifier builds the notification fan-out.
func NewNotifier(repo Repository, broadcaster Broadcaster, mailer Mailer, logg *logger.Logger) (*Notifier, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if broadcaster == nil {
		return nil, fmt.Errorf("broadcaster required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Notifier{
		repo:        repo,
		broadcaster: broadcaster,
		mailer:      mailer,
		logg:        logg,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

// OrderCreated notifies staff about a fresh order.
func (n *Notifier) OrderCreated(ctx context.Context, order *models.Order) {
	notification := n.build(
		enums.NotificationTypeNewOrder,
		staffRoles(),
		"New order",
		fmt.Sprintf("Order %s for %s is waiting to be accepted.", order.Number, formatCents(order.TotalCents)),
		entityRef(enums.EntityKindOrder, order.ID),
		map[string]any{
			"order_number": order.Number,
			"total_cents":  order.TotalCents,
			"status":       string(order.Status),
		},
	)
	n.persist(ctx, notification)
	n.pushToRoles(staffRoles(), "new_order", notification)

	if order.GuestEmail != nil && *order.GuestEmail != "" {
		n.email(ctx, *order.GuestEmail,
			fmt.Sprintf("Order %s received", order.Number),
			fmt.Sprintf("Thanks for your order!\n\nOrder number: %s\nTotal: %s\n\nTrack it any time with your order number.",
				order.Number, formatCents(order.TotalCents)))
	}
}

// OrderStatusChanged notifies staff and broadcasts the transition so guests
// tracking by order number see it too.
func (n *Notifier) OrderStatusChanged(ctx context.Context, order *models.Order, previous enums.OrderStatus) {
	notification := n.build(
		enums.NotificationTypeOrderStatusChange,
		staffRoles(),
		"Order status changed",
		fmt.Sprintf("Order %s moved from %s to %s.", order.Number, previous, order.Status),
		entityRef(enums.EntityKindOrder, order.ID),
		map[string]any{
			"order_number":    order.Number,
			"previous_status": string(previous),
			"status":          string(order.Status),
		},
	)
	n.persist(ctx, notification)
	n.pushToRoles(staffRoles(), "order_status_change", notification)

	payload := map[string]any{
		"order_number": order.Number,
		"status":       string(order.Status),
	}
	n.broadcaster.PublishGlobal("order_status_change", payload)
	if order.UserID != nil {
		n.broadcaster.PublishToUser(*order.UserID, "order_status_change", payload)
	}
}

// LowStock warns admins that a product crossed its stock threshold.
func (n *Notifier) LowStock(ctx context.Context, product *models.Product) {
	roles := []enums.Role{enums.RoleAdmin}
	notification := n.build(
		enums.NotificationTypeLowStock,
		roles,
		"Low stock",
		fmt.Sprintf("%s is down to %d units (threshold %d).", product.Name, product.Stock, product.MinStock),
		entityRef(enums.EntityKindProduct, product.ID),
		map[string]any{
			"product_name": product.Name,
			"stock":        product.Stock,
			"min_stock":    product.MinStock,
		},
	)
	n.persist(ctx, notification)
	n.pushToRoles(roles, "low_stock", notification)
}

// ReservationCreated notifies staff about a new booking.
func (n *Notifier) ReservationCreated(ctx context.Context, reservation *models.Reservation) {
	notification := n.build(
		enums.NotificationTypeNewReservation,
		staffRoles(),
		"New reservation",
		fmt.Sprintf("Table %d booked for %s at %s (%d guests).",
			reservation.TableNumber,
			reservation.ReservedOn.Format("2006-01-02"),
			reservation.StartTime,
			reservation.PartySize),
		entityRef(enums.EntityKindReservation, reservation.ID),
		map[string]any{
			"table_number": reservation.TableNumber,
			"date":         reservation.ReservedOn.Format("2006-01-02"),
			"time":         reservation.StartTime,
		},
	)
	n.persist(ctx, notification)
	n.pushToRoles(staffRoles(), "new_reservation", notification)

	if reservation.CustomerEmail != nil && *reservation.CustomerEmail != "" {
		n.email(ctx, *reservation.CustomerEmail,
			"Reservation received",
			fmt.Sprintf("We have your booking for table %d on %s at %s for %d guests. We will confirm it shortly.",
				reservation.TableNumber,
				reservation.ReservedOn.Format("2006-01-02"),
				reservation.StartTime,
				reservation.PartySize))
	}
}

// ReservationStatusChanged notifies staff about a booking transition.
func (n *Notifier) ReservationStatusChanged(ctx context.Context, reservation *models.Reservation, previous enums.ReservationStatus) {
	notification := n.build(
		enums.NotificationTypeReservationStatusChange,
		staffRoles(),
		"Reservation status changed",
		fmt.Sprintf("Reservation for table %d on %s at %s moved from %s to %s.",
			reservation.TableNumber,
			reservation.ReservedOn.Format("2006-01-02"),
			reservation.StartTime,
			previous,
			reservation.Status),
		entityRef(enums.EntityKindReservation, reservation.ID),
		map[string]any{
			"table_number":    reservation.TableNumber,
			"previous_status": string(previous),
			"status":          string(reservation.Status),
		},
	)
	n.persist(ctx, notification)
	n.pushToRoles(staffRoles(), "reservation_status_change", notification)
}

func (n *Notifier) build(
	kind enums.NotificationType,
	roles []enums.Role,
	title, message string,
	entity entityReference,
	metadata map[string]any,
) *models.Notification {
	roleNames := make(pq.StringArray, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, string(role))
	}
	return &models.Notification{
		Roles:     roleNames,
		Type:      kind,
		Title:     title,
		Message:   message,
		Entity:    &entity.Kind,
		EntityID:  &entity.ID,
		Metadata:  metadata,
		Active:    true,
		ExpiresAt: n.now().Add(defaultTTL),
	}
}

func (n *Notifier) email(ctx context.Context, to, subject, body string) {
	if err := n.mailer.Send(ctx, to, subject, body); err != nil {
		n.logg.Error(ctx, "confirmation email failed", err)
	}
}

func (n *Notifier) persist(ctx context.Context, notification *models.Notification) {
	if err := n.repo.Create(ctx, notification); err != nil {
		n.logg.Error(ctx, "notification insert failed, pushing anyway", err)
	}
}

func (n *Notifier) pushToRoles(roles []enums.Role, event string, notification *models.Notification) {
	for _, role := range roles {
		n.broadcaster.PublishToRole(role, event, notification)
	}
}

type entityReference struct {
	Kind enums.EntityKind
	ID   uuid.UUID
}

func entityRef(kind enums.EntityKind, id uuid.UUID) entityReference {
	return entityReference{Kind: kind, ID: id}
}

func staffRoles() []enums.Role {
	return []enums.Role{enums.RoleAdmin, enums.RoleCashier}
}

func formatCents(cents int) string {
	return fmt.Sprintf("€%d.%02d", cents/100, cents%100)
}
