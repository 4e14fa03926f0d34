package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/api/middleware"
	"github.com/tabacweb/tabac-backend/internal/orders"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	"github.com/tabacweb/tabac-backend/pkg/logger"
	"github.com/tabacweb/tabac-backend/pkg/pagination"
)

type testOrdersService struct {
	checkoutFn     func(ctx context.Context, input orders.CreateOrderInput) (*orders.OrderDTO, error)
	trackFn        func(ctx context.Context, number string) (*orders.OrderDTO, error)
	updateStatusFn func(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderDTO, error)
	listFn         func(ctx context.Context, params pagination.Params, filters orders.OrderListFilters) (*orders.OrderListResult, error)
}

func (s *testOrdersService) Checkout(ctx context.Context, input orders.CreateOrderInput) (*orders.OrderDTO, error) {
	if s.checkoutFn != nil {
		return s.checkoutFn(ctx, input)
	}
	return &orders.OrderDTO{}, nil
}

func (s *testOrdersService) GetOrder(ctx context.Context, id uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: id}, nil
}

func (s *testOrdersService) TrackOrder(ctx context.Context, number string) (*orders.OrderDTO, error) {
	if s.trackFn != nil {
		return s.trackFn(ctx, number)
	}
	return &orders.OrderDTO{Number: number}, nil
}

func (s *testOrdersService) ListOrders(ctx context.Context, params pagination.Params, filters orders.OrderListFilters) (*orders.OrderListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params, filters)
	}
	return &orders.OrderListResult{}, nil
}

func (s *testOrdersService) ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*orders.OrderListResult, error) {
	return &orders.OrderListResult{}, nil
}

func (s *testOrdersService) UpdateStatus(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderDTO, error) {
	if s.updateStatusFn != nil {
		return s.updateStatusFn(ctx, input)
	}
	return &orders.OrderDTO{ID: input.OrderID, Status: input.Status}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestCheckoutGuestOrder(t *testing.T) {
	var captured orders.CreateOrderInput
	svc := &testOrdersService{
		checkoutFn: func(ctx context.Context, input orders.CreateOrderInput) (*orders.OrderDTO, error) {
			captured = input
			return &orders.OrderDTO{Number: "ORD-20260301-0001"}, nil
		},
	}

	productID := uuid.New()
	payload := `{"items":[{"product_id":"` + productID.String() + `","quantity":2}],"guest":{"name":"Ana","email":"ana@example.com"},"delivery_mode":"pickup","payment_method":"cash"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(payload))
	resp := httptest.NewRecorder()

	Checkout(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.Guest == nil || captured.Guest.Email != "ana@example.com" {
		t.Fatalf("guest not forwarded: %+v", captured.Guest)
	}
	if captured.UserID != nil {
		t.Fatal("guest checkout must not carry a user id")
	}
	if len(captured.Items) != 1 || captured.Items[0].ProductID != productID || captured.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", captured.Items)
	}
}

func TestCheckoutAuthenticatedUserWins(t *testing.T) {
	userID := uuid.New()
	var captured orders.CreateOrderInput
	svc := &testOrdersService{
		checkoutFn: func(ctx context.Context, input orders.CreateOrderInput) (*orders.OrderDTO, error) {
			captured = input
			return &orders.OrderDTO{}, nil
		},
	}

	payload := `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":1}],"guest":{"name":"Ana","email":"ana@example.com"},"delivery_mode":"delivery","delivery_address":"Calle 1","payment_method":"card"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(payload))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()

	Checkout(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.UserID == nil || *captured.UserID != userID {
		t.Fatalf("expected user id %s, got %+v", userID, captured.UserID)
	}
	if captured.Guest != nil {
		t.Fatal("authenticated checkout must ignore the guest block")
	}
}

func TestCheckoutRejectsUnknownDeliveryMode(t *testing.T) {
	payload := `{"items":[{"product_id":"` + uuid.NewString() + `","quantity":1}],"delivery_mode":"drone","payment_method":"cash"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(payload))
	resp := httptest.NewRecorder()

	Checkout(&testOrdersService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestTrackOrderByNumber(t *testing.T) {
	svc := &testOrdersService{
		trackFn: func(ctx context.Context, number string) (*orders.OrderDTO, error) {
			if number != "ORD-20260301-0042" {
				t.Fatalf("unexpected number %q", number)
			}
			return &orders.OrderDTO{Number: number, Status: enums.OrderStatusPreparing}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/track/ORD-20260301-0042", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("number", "ORD-20260301-0042")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	resp := httptest.NewRecorder()

	TrackOrder(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data orders.OrderDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Status != enums.OrderStatusPreparing {
		t.Fatalf("unexpected status %q", envelope.Data.Status)
	}
}

func TestUpdateOrderStatusRecordsActor(t *testing.T) {
	orderID := uuid.New()
	var captured orders.UpdateStatusInput
	svc := &testOrdersService{
		updateStatusFn: func(ctx context.Context, input orders.UpdateStatusInput) (*orders.OrderDTO, error) {
			captured = input
			return &orders.OrderDTO{ID: input.OrderID, Status: input.Status}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", strings.NewReader(`{"status":"ready"}`))
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, "cashier")
	ctx = middleware.WithName(ctx, "Marta")
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", orderID.String())
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)
	resp := httptest.NewRecorder()

	UpdateOrderStatus(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.OrderID != orderID {
		t.Fatalf("unexpected order id %s", captured.OrderID)
	}
	if captured.Status != enums.OrderStatusReady {
		t.Fatalf("unexpected status %q", captured.Status)
	}
	if captured.Actor != "Marta" || captured.ActorRole != enums.RoleCashier {
		t.Fatalf("actor not captured: %+v", captured)
	}
}

func TestUpdateOrderStatusWithoutRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+uuid.NewString()+"/status", strings.NewReader(`{"status":"ready"}`))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", uuid.NewString())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	resp := httptest.NewRecorder()

	UpdateOrderStatus(&testOrdersService{}, testLogger())(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestListOrdersParsesFilters(t *testing.T) {
	var captured orders.OrderListFilters
	svc := &testOrdersService{
		listFn: func(ctx context.Context, params pagination.Params, filters orders.OrderListFilters) (*orders.OrderListResult, error) {
			captured = filters
			return &orders.OrderListResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/admin?status=pending&delivery_mode=pickup&channel=guest&from=2026-03-01&to=2026-03-02", nil)
	resp := httptest.NewRecorder()

	ListOrders(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.Status == nil || *captured.Status != enums.OrderStatusPending {
		t.Fatalf("status filter not parsed: %+v", captured.Status)
	}
	if captured.DeliveryMode == nil || *captured.DeliveryMode != enums.DeliveryModePickup {
		t.Fatalf("delivery mode filter not parsed: %+v", captured.DeliveryMode)
	}
	if captured.GuestOnly == nil || !*captured.GuestOnly {
		t.Fatalf("channel filter not parsed: %+v", captured.GuestOnly)
	}
	if captured.From == nil || captured.To == nil {
		t.Fatal("date window not parsed")
	}
	if !captured.To.After(*captured.From) {
		t.Fatal("to must be exclusive upper bound")
	}
}
