package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/api/middleware"
	"github.com/tabacweb/tabac-backend/internal/users"
)

type testUsersService struct {
	listFn           func(ctx context.Context) ([]users.UserDTO, error)
	getFn            func(ctx context.Context, id uuid.UUID) (*users.UserDTO, error)
	updateFn         func(ctx context.Context, actorID, userID uuid.UUID, input users.UpdateUserInput) (*users.UserDTO, error)
	deleteFn         func(ctx context.Context, actorID, userID uuid.UUID) error
	profileFn        func(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error)
	changePasswordFn func(ctx context.Context, userID uuid.UUID, input users.ChangePasswordInput) error
}

func (s *testUsersService) ListUsers(ctx context.Context) ([]users.UserDTO, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *testUsersService) GetUser(ctx context.Context, id uuid.UUID) (*users.UserDTO, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return &users.UserDTO{}, nil
}

func (s *testUsersService) UpdateUser(ctx context.Context, actorID, userID uuid.UUID, input users.UpdateUserInput) (*users.UserDTO, error) {
	if s.updateFn != nil {
		return s.updateFn(ctx, actorID, userID, input)
	}
	return &users.UserDTO{}, nil
}

func (s *testUsersService) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, actorID, userID)
	}
	return nil
}

func (s *testUsersService) GetProfile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	if s.profileFn != nil {
		return s.profileFn(ctx, userID)
	}
	return &users.UserDTO{}, nil
}

func (s *testUsersService) ChangePassword(ctx context.Context, userID uuid.UUID, input users.ChangePasswordInput) error {
	if s.changePasswordFn != nil {
		return s.changePasswordFn(ctx, userID, input)
	}
	return nil
}

func TestUpdateProfileTargetsCaller(t *testing.T) {
	callerID := uuid.New()
	var gotActor, gotTarget uuid.UUID
	var gotInput users.UpdateUserInput
	svc := &testUsersService{
		updateFn: func(ctx context.Context, actorID, userID uuid.UUID, input users.UpdateUserInput) (*users.UserDTO, error) {
			gotActor, gotTarget, gotInput = actorID, userID, input
			return &users.UserDTO{ID: userID, Name: "Ana"}, nil
		},
	}

	body := `{"name":"Ana","email":"ana@tabac.example"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), callerID.String()))
	resp := httptest.NewRecorder()

	UpdateProfile(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotActor != callerID || gotTarget != callerID {
		t.Fatalf("profile update must target the caller, got actor=%s target=%s", gotActor, gotTarget)
	}
	if gotInput.Name == nil || *gotInput.Name != "Ana" {
		t.Fatalf("name not forwarded: %+v", gotInput.Name)
	}
	if gotInput.Role != nil {
		t.Fatal("profile update must not carry a role change")
	}
}

func TestUpdateProfileRequiresIdentity(t *testing.T) {
	svc := &testUsersService{}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile", strings.NewReader(`{"name":"Ana"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	UpdateProfile(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestChangePasswordRejectsShortPassword(t *testing.T) {
	called := false
	svc := &testUsersService{
		changePasswordFn: func(ctx context.Context, userID uuid.UUID, input users.ChangePasswordInput) error {
			called = true
			return nil
		},
	}

	body := `{"current_password":"old-secret","new_password":"short"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/profile/password", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	resp := httptest.NewRecorder()

	ChangePassword(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
	if called {
		t.Fatal("service must not be called on invalid input")
	}
}
