package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/pkg/enums"
)

// Order represents a checkout, owned either by a registered user or a guest.
type Order struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Number string     `gorm:"column:number;not null;uniqueIndex"`
	UserID *uuid.UUID `gorm:"column:user_id;type:uuid;index"`

	GuestName  *string `gorm:"column:guest_name"`
	GuestEmail *string `gorm:"column:guest_email"`
	GuestPhone *string `gorm:"column:guest_phone"`

	Status enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending';index"`

	DeliveryMode    enums.DeliveryMode `gorm:"column:delivery_mode;type:text;not null;default:'pickup'"`
	DeliveryAddress *string            `gorm:"column:delivery_address"`
	DeliveryNotes   *string            `gorm:"column:delivery_notes"`

	SubtotalCents    int `gorm:"column:subtotal_cents;not null"`
	DiscountsCents   int `gorm:"column:discounts_cents;not null;default:0"`
	DeliveryFeeCents int `gorm:"column:delivery_fee_cents;not null;default:0"`
	TotalCents       int `gorm:"column:total_cents;not null"`

	PaymentMethod        enums.PaymentMethod `gorm:"column:payment_method;type:text;not null;default:'simulated'"`
	PaymentStatus        enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	PaymentTransactionID *string             `gorm:"column:payment_transaction_id"`

	RejectionReason *string `gorm:"column:rejection_reason"`

	Items         []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusHistory []OrderStatusChange `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// IsGuest reports whether the order belongs to an anonymous purchaser.
func (o Order) IsGuest() bool {
	return o.UserID == nil
}

// OrderItem snapshots a product at order time.
type OrderItem struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name          string    `gorm:"column:name;not null"`
	PriceCents    int       `gorm:"column:price_cents;not null"`
	ImageURL      *string   `gorm:"column:image_url"`
	Category      *string   `gorm:"column:category"`
	Quantity      int       `gorm:"column:quantity;not null"`
	SubtotalCents int       `gorm:"column:subtotal_cents;not null"`
}

// OrderStatusChange records one entry in an order's audit trail.
type OrderStatusChange struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null"`
	Actor     string            `gorm:"column:actor;not null"`
	ActorRole string            `gorm:"column:actor_role;not null"`
	Notes     *string           `gorm:"column:notes"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
