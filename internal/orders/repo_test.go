package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tabacweb/tabac-backend/pkg/db/models"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	"github.com/tabacweb/tabac-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  number TEXT NOT NULL UNIQUE,
  user_id TEXT,
  guest_name TEXT,
  guest_email TEXT,
  guest_phone TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  delivery_mode TEXT NOT NULL DEFAULT 'pickup',
  delivery_address TEXT,
  delivery_notes TEXT,
  subtotal_cents INTEGER NOT NULL,
  discounts_cents INTEGER NOT NULL DEFAULT 0,
  delivery_fee_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  payment_method TEXT NOT NULL DEFAULT 'simulated',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payment_transaction_id TEXT,
  rejection_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	items := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  image_url TEXT,
  category TEXT,
  quantity INTEGER NOT NULL,
  subtotal_cents INTEGER NOT NULL
);`
	changes := `
CREATE TABLE IF NOT EXISTS order_status_changes (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  status TEXT NOT NULL,
  actor TEXT NOT NULL,
  actor_role TEXT NOT NULL,
  notes TEXT,
  created_at DATETIME
);`

	for _, ddl := range []string{orders, items, changes} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedOrder(t *testing.T, repo Repository, number string, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		Number:        number,
		Status:        status,
		DeliveryMode:  enums.DeliveryModePickup,
		SubtotalCents: 1500,
		TotalCents:    1500,
		PaymentMethod: enums.PaymentMethodCash,
		PaymentStatus: enums.PaymentStatusPending,
		CreatedAt:     createdAt,
		Items: []models.OrderItem{
			{
				ID:            uuid.New(),
				ProductID:     uuid.New(),
				Name:          "Espresso",
				PriceCents:    150,
				Quantity:      10,
				SubtotalCents: 1500,
			},
		},
	}

	created, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return created
}

func TestOrdersRepo_CreateAndFindByNumber(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))

	seeded := seedOrder(t, repo, "ORD-20260830-00001", enums.OrderStatusPending, time.Now().UTC())

	found, err := repo.FindByNumber(context.Background(), "ORD-20260830-00001")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Espresso", found.Items[0].Name)
	assert.Equal(t, 1500, found.Items[0].SubtotalCents)
}

func TestOrdersRepo_ListFiltersAndPaginates(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	seedOrder(t, repo, "ORD-20260830-00001", enums.OrderStatusPending, base)
	seedOrder(t, repo, "ORD-20260830-00002", enums.OrderStatusPending, base.Add(time.Minute))
	seedOrder(t, repo, "ORD-20260830-00003", enums.OrderStatusDelivered, base.Add(2*time.Minute))

	status := enums.OrderStatusPending
	page, cursor, err := repo.List(context.Background(), pagination.Params{Limit: 1}, OrderListFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "ORD-20260830-00002", page[0].Number)
	require.NotNil(t, cursor)

	page, cursor, err = repo.List(context.Background(), pagination.Params{
		Limit:  1,
		Cursor: pagination.EncodeCursor(*cursor),
	}, OrderListFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "ORD-20260830-00001", page[0].Number)
	assert.Nil(t, cursor)
}

func TestOrdersRepo_ListByUser(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	userID := uuid.New()

	order := seedOrder(t, repo, "ORD-20260830-00009", enums.OrderStatusPending, time.Now().UTC())
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).Update("user_id", userID).Error)
	seedOrder(t, repo, "ORD-20260830-00010", enums.OrderStatusPending, time.Now().UTC())

	page, _, err := repo.ListByUser(context.Background(), userID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "ORD-20260830-00009", page[0].Number)
}

func TestOrdersRepo_StatusUpdateAndHistory(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order := seedOrder(t, repo, "ORD-20260830-00004", enums.OrderStatusPending, time.Now().UTC())

	err := repo.UpdateStatus(context.Background(), order.ID, map[string]any{
		"status": enums.OrderStatusAccepted,
	})
	require.NoError(t, err)

	err = repo.CreateStatusChange(context.Background(), &models.OrderStatusChange{
		ID:        uuid.New(),
		OrderID:   order.ID,
		Status:    enums.OrderStatusAccepted,
		Actor:     "Marta",
		ActorRole: enums.RoleCashier.String(),
	})
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusAccepted, found.Status)
	require.Len(t, found.StatusHistory, 1)
	assert.Equal(t, "Marta", found.StatusHistory[0].Actor)
}

func TestOrdersRepo_CountCreatedOn(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	day := time.Date(2026, 8, 30, 9, 30, 0, 0, time.UTC)

	seedOrder(t, repo, "ORD-20260830-00005", enums.OrderStatusPending, day)
	seedOrder(t, repo, "ORD-20260830-00006", enums.OrderStatusPending, day.Add(6*time.Hour))
	seedOrder(t, repo, "ORD-20260829-00001", enums.OrderStatusPending, day.AddDate(0, 0, -1))

	count, err := repo.CountCreatedOn(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
