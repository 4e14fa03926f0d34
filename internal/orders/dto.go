package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/pkg/db/models"
	"github.com/tabacweb/tabac-backend/pkg/enums"
)

// GuestInfo identifies an anonymous purchaser.
type GuestInfo struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

// OrderItemDTO is a snapshotted line item as returned to clients.
type OrderItemDTO struct {
	ID            uuid.UUID `json:"id"`
	ProductID     uuid.UUID `json:"product_id"`
	Name          string    `json:"name"`
	PriceCents    int       `json:"price_cents"`
	ImageURL      *string   `json:"image_url,omitempty"`
	Category      *string   `json:"category,omitempty"`
	Quantity      int       `json:"quantity"`
	SubtotalCents int       `json:"subtotal_cents"`
}

// StatusChangeDTO is one audit trail entry.
type StatusChangeDTO struct {
	Status    enums.OrderStatus `json:"status"`
	Actor     string            `json:"actor"`
	ActorRole string            `json:"actor_role"`
	Notes     *string           `json:"notes,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	Number          string              `json:"number"`
	UserID          *uuid.UUID          `json:"user_id,omitempty"`
	Guest           *GuestInfo          `json:"guest,omitempty"`
	Status          enums.OrderStatus   `json:"status"`
	DeliveryMode    enums.DeliveryMode  `json:"delivery_mode"`
	DeliveryAddress *string             `json:"delivery_address,omitempty"`
	DeliveryNotes   *string             `json:"delivery_notes,omitempty"`
	SubtotalCents   int                 `json:"subtotal_cents"`
	DiscountsCents  int                 `json:"discounts_cents"`
	DeliveryFee     int                 `json:"delivery_fee_cents"`
	TotalCents      int                 `json:"total_cents"`
	PaymentMethod   enums.PaymentMethod `json:"payment_method"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	RejectionReason *string             `json:"rejection_reason,omitempty"`
	Items           []OrderItemDTO      `json:"items"`
	StatusHistory   []StatusChangeDTO   `json:"status_history,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// NewOrderDTO builds a DTO from the persisted model.
func NewOrderDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}

	dto := &OrderDTO{
		ID:              order.ID,
		Number:          order.Number,
		UserID:          order.UserID,
		Status:          order.Status,
		DeliveryMode:    order.DeliveryMode,
		DeliveryAddress: order.DeliveryAddress,
		DeliveryNotes:   order.DeliveryNotes,
		SubtotalCents:   order.SubtotalCents,
		DiscountsCents:  order.DiscountsCents,
		DeliveryFee:     order.DeliveryFeeCents,
		TotalCents:      order.TotalCents,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		RejectionReason: order.RejectionReason,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}

	if order.IsGuest() && order.GuestName != nil {
		guest := GuestInfo{Name: *order.GuestName, Phone: order.GuestPhone}
		if order.GuestEmail != nil {
			guest.Email = *order.GuestEmail
		}
		dto.Guest = &guest
	}

	dto.Items = make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		dto.Items = append(dto.Items, OrderItemDTO{
			ID:            item.ID,
			ProductID:     item.ProductID,
			Name:          item.Name,
			PriceCents:    item.PriceCents,
			ImageURL:      item.ImageURL,
			Category:      item.Category,
			Quantity:      item.Quantity,
			SubtotalCents: item.SubtotalCents,
		})
	}

	for _, change := range order.StatusHistory {
		dto.StatusHistory = append(dto.StatusHistory, StatusChangeDTO{
			Status:    change.Status,
			Actor:     change.Actor,
			ActorRole: change.ActorRole,
			Notes:     change.Notes,
			CreatedAt: change.CreatedAt,
		})
	}

	return dto
}

// OrderListResult carries one admin listing page plus the next cursor.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
