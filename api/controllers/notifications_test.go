package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/api/middleware"
	"github.com/tabacweb/tabac-backend/internal/notifications"
	"github.com/tabacweb/tabac-backend/pkg/enums"
)

type testNotificationsService struct {
	listFn        func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error)
	unreadFn      func(ctx context.Context, role enums.Role, userID uuid.UUID) (int64, error)
	markReadFn    func(ctx context.Context, notificationID, userID uuid.UUID) error
	markAllReadFn func(ctx context.Context, role enums.Role, userID uuid.UUID) (int64, error)
	deleteFn      func(ctx context.Context) (int64, error)
}

func (s *testNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, params)
	}
	return &notifications.ListResult{}, nil
}

func (s *testNotificationsService) UnreadCount(ctx context.Context, role enums.Role, userID uuid.UUID) (int64, error) {
	if s.unreadFn != nil {
		return s.unreadFn(ctx, role, userID)
	}
	return 0, nil
}

func (s *testNotificationsService) MarkRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, notificationID, userID)
	}
	return nil
}

func (s *testNotificationsService) MarkAllRead(ctx context.Context, role enums.Role, userID uuid.UUID) (int64, error) {
	if s.markAllReadFn != nil {
		return s.markAllReadFn(ctx, role, userID)
	}
	return 0, nil
}

func (s *testNotificationsService) DeleteExpired(ctx context.Context) (int64, error) {
	if s.deleteFn != nil {
		return s.deleteFn(ctx)
	}
	return 0, nil
}

func staffContext(ctx context.Context, role string, userID uuid.UUID) context.Context {
	ctx = middleware.WithUserID(ctx, userID.String())
	return middleware.WithRole(ctx, role)
}

func TestListNotificationsForwardsIdentity(t *testing.T) {
	userID := uuid.New()
	var captured notifications.ListParams
	svc := &testNotificationsService{
		listFn: func(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
			captured = params
			return &notifications.ListResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=10&unreadOnly=true", nil)
	req = req.WithContext(staffContext(req.Context(), "cashier", userID))
	resp := httptest.NewRecorder()

	ListNotifications(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if captured.Role != enums.RoleCashier || captured.UserID != userID {
		t.Fatalf("identity not forwarded: %+v", captured)
	}
	if captured.Limit != 10 || !captured.UnreadOnly {
		t.Fatalf("query knobs not forwarded: %+v", captured)
	}
}

func TestListNotificationsWithoutRole(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	resp := httptest.NewRecorder()

	ListNotifications(&testNotificationsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestMarkNotificationReadSuccess(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()
	called := false
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, nid, uid uuid.UUID) error {
			called = true
			if nid != notificationID {
				t.Fatalf("unexpected notification %s", nid)
			}
			if uid != userID {
				t.Fatalf("unexpected user %s", uid)
			}
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/"+notificationID.String()+"/read", nil)
	ctx := staffContext(req.Context(), "admin", userID)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("notificationId", notificationID.String())
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)
	resp := httptest.NewRecorder()

	MarkNotificationRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
	var envelope struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Data["read"] {
		t.Fatal("response missing read flag")
	}
}

func TestUnreadNotificationCount(t *testing.T) {
	svc := &testNotificationsService{
		unreadFn: func(ctx context.Context, role enums.Role, userID uuid.UUID) (int64, error) {
			return 7, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/unread-count", nil)
	req = req.WithContext(staffContext(req.Context(), "admin", uuid.New()))
	resp := httptest.NewRecorder()

	UnreadNotificationCount(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["unread"] != 7 {
		t.Fatalf("unexpected count %d", envelope.Data["unread"])
	}
}

func TestDeleteExpiredNotifications(t *testing.T) {
	svc := &testNotificationsService{
		deleteFn: func(ctx context.Context) (int64, error) {
			return 12, nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/notifications/expired", nil)
	resp := httptest.NewRecorder()

	DeleteExpiredNotifications(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data map[string]int64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["deleted"] != 12 {
		t.Fatalf("unexpected count %d", envelope.Data["deleted"])
	}
}
