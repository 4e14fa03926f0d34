package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabacweb/tabac-backend/pkg/db/models"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
	"github.com/tabacweb/tabac-backend/pkg/pagination"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeOrderRepo struct {
	byID      map[uuid.UUID]*models.Order
	byNumber  map[string]*models.Order
	changes   []models.OrderStatusChange
	dailySeed int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		byID:     make(map[uuid.UUID]*models.Order),
		byNumber: make(map[string]*models.Order),
	}
}

func (f *fakeOrderRepo) WithTx(*gorm.DB) Repository { return f }

func (f *fakeOrderRepo) Create(_ context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now().UTC()
	f.byID[order.ID] = order
	f.byNumber[order.Number] = order
	return order, nil
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) FindByNumber(_ context.Context, number string) (*models.Order, error) {
	order, ok := f.byNumber[number]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (f *fakeOrderRepo) List(_ context.Context, _ pagination.Params, _ OrderListFilters) ([]models.Order, *pagination.Cursor, error) {
	out := make([]models.Order, 0, len(f.byID))
	for _, o := range f.byID {
		out = append(out, *o)
	}
	return out, nil, nil
}

func (f *fakeOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, *pagination.Cursor, error) {
	var out []models.Order
	for _, o := range f.byID {
		if o.UserID != nil && *o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil, nil
}

func (f *fakeOrderRepo) CountCreatedOn(context.Context, time.Time) (int64, error) {
	return f.dailySeed + int64(len(f.byID)), nil
}

func (f *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, updates map[string]any) error {
	order, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := updates["status"].(enums.OrderStatus); ok {
		order.Status = status
	}
	if reason, ok := updates["rejection_reason"].(string); ok {
		order.RejectionReason = &reason
	}
	return nil
}

func (f *fakeOrderRepo) CreateStatusChange(_ context.Context, change *models.OrderStatusChange) error {
	f.changes = append(f.changes, *change)
	return nil
}

type fakeCatalog struct {
	products map[uuid.UUID]*models.Product
}

func newFakeCatalog(products ...*models.Product) *fakeCatalog {
	c := &fakeCatalog{products: make(map[uuid.UUID]*models.Product)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (f *fakeCatalog) Find(_ context.Context, _ *gorm.DB, id uuid.UUID) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakeCatalog) Decrement(_ context.Context, _ *gorm.DB, id uuid.UUID, qty int) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok || p.Stock < qty {
		return nil, gorm.ErrRecordNotFound
	}
	p.Stock -= qty
	copied := *p
	return &copied, nil
}

type recordingNotifier struct {
	created  []string
	statuses []enums.OrderStatus
	lowStock []uuid.UUID
}

func (r *recordingNotifier) OrderCreated(_ context.Context, order *models.Order) {
	r.created = append(r.created, order.Number)
}

func (r *recordingNotifier) OrderStatusChanged(_ context.Context, order *models.Order, _ enums.OrderStatus) {
	r.statuses = append(r.statuses, order.Status)
}

func (r *recordingNotifier) LowStock(_ context.Context, p *models.Product) {
	r.lowStock = append(r.lowStock, p.ID)
}

func buildOrderService(t *testing.T, repo Repository, catalog Catalog, notifier Notifier) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Tx:       stubTxRunner{},
		Catalog:  catalog,
		Notifier: notifier,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func guestInput(items ...CreateOrderItemInput) CreateOrderInput {
	return CreateOrderInput{
		Guest:         &GuestInfo{Name: "Walk In", Email: "walkin@example.com"},
		Items:         items,
		DeliveryMode:  enums.DeliveryModePickup,
		PaymentMethod: enums.PaymentMethodSimulated,
	}
}

func TestCheckoutComputesTotalsFromSnapshots(t *testing.T) {
	burger := &models.Product{ID: uuid.New(), Name: "Burger", PriceCents: 1000, Category: "food", Stock: 50, MinStock: 5, Available: true}
	soda := &models.Product{ID: uuid.New(), Name: "Soda", PriceCents: 500, Category: "drinks", Stock: 50, MinStock: 5, Available: true}
	repo := newFakeOrderRepo()
	notifier := &recordingNotifier{}
	svc := buildOrderService(t, repo, newFakeCatalog(burger, soda), notifier)

	dto, err := svc.Checkout(context.Background(), guestInput(
		CreateOrderItemInput{ProductID: burger.ID, Quantity: 2},
		CreateOrderItemInput{ProductID: soda.ID, Quantity: 1},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if dto.SubtotalCents != 2500 || dto.TotalCents != 2500 {
		t.Fatalf("expected totals of 2500, got subtotal=%d total=%d", dto.SubtotalCents, dto.TotalCents)
	}
	if len(dto.Items) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(dto.Items))
	}
	for _, item := range dto.Items {
		if item.SubtotalCents != item.PriceCents*item.Quantity {
			t.Fatalf("line subtotal mismatch for %s", item.Name)
		}
	}
	if len(notifier.created) != 1 {
		t.Fatalf("expected one order-created notification, got %d", len(notifier.created))
	}
}

func TestCheckoutGeneratesSequentialNumbers(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "Tea", PriceCents: 300, Category: "drinks", Stock: 100, MinStock: 5, Available: true}
	repo := newFakeOrderRepo()
	svc := buildOrderService(t, repo, newFakeCatalog(product), &recordingNotifier{})

	first, err := svc.Checkout(context.Background(), guestInput(CreateOrderItemInput{ProductID: product.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("first checkout: %v", err)
	}
	second, err := svc.Checkout(context.Background(), guestInput(CreateOrderItemInput{ProductID: product.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("second checkout: %v", err)
	}

	day := time.Now().UTC().Format("20060102")
	if first.Number != "ORD-"+day+"-00001" {
		t.Fatalf("unexpected first number %s", first.Number)
	}
	if second.Number != "ORD-"+day+"-00002" {
		t.Fatalf("unexpected second number %s", second.Number)
	}
}

func TestCheckoutRejectsEmptyItems(t *testing.T) {
	svc := buildOrderService(t, newFakeOrderRepo(), newFakeCatalog(), &recordingNotifier{})

	_, err := svc.Checkout(context.Background(), guestInput())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCheckoutRequiresExactlyOneOwner(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "Tea", PriceCents: 300, Category: "drinks", Stock: 10, Available: true}
	svc := buildOrderService(t, newFakeOrderRepo(), newFakeCatalog(product), &recordingNotifier{})
	item := CreateOrderItemInput{ProductID: product.ID, Quantity: 1}
	userID := uuid.New()

	both := guestInput(item)
	both.UserID = &userID
	if _, err := svc.Checkout(context.Background(), both); pkgerrors.As(err) == nil {
		t.Fatalf("expected user+guest to be rejected, got %v", err)
	}

	neither := CreateOrderInput{
		Items:         []CreateOrderItemInput{item},
		DeliveryMode:  enums.DeliveryModePickup,
		PaymentMethod: enums.PaymentMethodSimulated,
	}
	if _, err := svc.Checkout(context.Background(), neither); pkgerrors.As(err) == nil {
		t.Fatalf("expected ownerless order to be rejected, got %v", err)
	}
}

func TestCheckoutInsufficientStockConflicts(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "Cake", PriceCents: 700, Category: "bakery", Stock: 1, MinStock: 0, Available: true}
	svc := buildOrderService(t, newFakeOrderRepo(), newFakeCatalog(product), &recordingNotifier{})

	_, err := svc.Checkout(context.Background(), guestInput(CreateOrderItemInput{ProductID: product.ID, Quantity: 5}))
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCheckoutNotifiesLowStock(t *testing.T) {
	product := &models.Product{ID: uuid.New(), Name: "Pie", PriceCents: 900, Category: "bakery", Stock: 6, MinStock: 5, Available: true}
	notifier := &recordingNotifier{}
	svc := buildOrderService(t, newFakeOrderRepo(), newFakeCatalog(product), notifier)

	if _, err := svc.Checkout(context.Background(), guestInput(CreateOrderItemInput{ProductID: product.ID, Quantity: 2})); err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(notifier.lowStock) != 1 || notifier.lowStock[0] != product.ID {
		t.Fatalf("expected low stock notification for product")
	}
}

func TestUpdateStatusEnforcesTransitions(t *testing.T) {
	repo := newFakeOrderRepo()
	notifier := &recordingNotifier{}
	product := &models.Product{ID: uuid.New(), Name: "Tea", PriceCents: 300, Category: "drinks", Stock: 10, Available: true}
	svc := buildOrderService(t, repo, newFakeCatalog(product), notifier)

	dto, err := svc.Checkout(context.Background(), guestInput(CreateOrderItemInput{ProductID: product.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// pending -> ready skips accepted/preparing
	_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:   dto.ID,
		Status:    enums.OrderStatusReady,
		Actor:     "Ana",
		ActorRole: enums.RoleCashier,
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:   dto.ID,
		Status:    enums.OrderStatusAccepted,
		Actor:     "Ana",
		ActorRole: enums.RoleCashier,
	})
	if err != nil {
		t.Fatalf("accept order: %v", err)
	}
	if updated.Status != enums.OrderStatusAccepted {
		t.Fatalf("expected accepted, got %s", updated.Status)
	}
	if len(notifier.statuses) != 1 {
		t.Fatalf("expected one status notification, got %d", len(notifier.statuses))
	}
	if len(repo.changes) != 2 {
		t.Fatalf("expected creation + transition audit entries, got %d", len(repo.changes))
	}
}

func TestUpdateStatusRequiresRejectionReason(t *testing.T) {
	repo := newFakeOrderRepo()
	product := &models.Product{ID: uuid.New(), Name: "Tea", PriceCents: 300, Category: "drinks", Stock: 10, Available: true}
	svc := buildOrderService(t, repo, newFakeCatalog(product), &recordingNotifier{})

	dto, err := svc.Checkout(context.Background(), guestInput(CreateOrderItemInput{ProductID: product.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:   dto.ID,
		Status:    enums.OrderStatusRejected,
		Actor:     "Ana",
		ActorRole: enums.RoleAdmin,
	})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	reason := "out of hours"
	updated, err := svc.UpdateStatus(context.Background(), UpdateStatusInput{
		OrderID:         dto.ID,
		Status:          enums.OrderStatusRejected,
		Actor:           "Ana",
		ActorRole:       enums.RoleAdmin,
		RejectionReason: &reason,
	})
	if err != nil {
		t.Fatalf("reject order: %v", err)
	}
	if updated.RejectionReason == nil || *updated.RejectionReason != reason {
		t.Fatalf("expected rejection reason to persist")
	}
}

func TestTrackOrderByNumber(t *testing.T) {
	repo := newFakeOrderRepo()
	product := &models.Product{ID: uuid.New(), Name: "Tea", PriceCents: 300, Category: "drinks", Stock: 10, Available: true}
	svc := buildOrderService(t, repo, newFakeCatalog(product), &recordingNotifier{})

	dto, err := svc.Checkout(context.Background(), guestInput(CreateOrderItemInput{ProductID: product.ID, Quantity: 1}))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	tracked, err := svc.TrackOrder(context.Background(), dto.Number)
	if err != nil {
		t.Fatalf("track order: %v", err)
	}
	if tracked.ID != dto.ID {
		t.Fatalf("expected tracked order to match")
	}

	if _, err := svc.TrackOrder(context.Background(), "ORD-19700101-00001"); pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown number")
	}
}
