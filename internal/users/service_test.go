package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabacweb/tabac-backend/pkg/config"
	"github.com/tabacweb/tabac-backend/pkg/db/models"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
	"github.com/tabacweb/tabac-backend/pkg/security"
)

type fakeUserRepo struct {
	users   map[uuid.UUID]*models.User
	deleted []uuid.UUID
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) (*models.User, error) {
	copied := *user
	f.users[user.ID] = &copied
	return user, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUserRepo) CountAdmins(_ context.Context) (int64, error) {
	var count int64
	for _, u := range f.users {
		if u.Role == enums.RoleAdmin {
			count++
		}
	}
	return count, nil
}

func buildService(t *testing.T, repo userRepository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, PasswordConfig: config.PasswordConfig{}})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestDeleteUserRefusesSelfDeletion(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: enums.RoleAdmin}
	repo := newFakeUserRepo(admin)
	svc := buildService(t, repo)

	err := svc.DeleteUser(context.Background(), admin.ID, admin.ID)
	if err == nil {
		t.Fatalf("expected self-deletion to fail")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(repo.deleted) != 0 {
		t.Fatalf("user should not have been deleted")
	}
}

func TestDeleteUserRefusesLastAdmin(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: enums.RoleAdmin}
	other := &models.User{ID: uuid.New(), Role: enums.RoleAdmin}
	repo := newFakeUserRepo(admin, other)
	svc := buildService(t, repo)

	if err := svc.DeleteUser(context.Background(), other.ID, admin.ID); err != nil {
		t.Fatalf("deleting one of two admins should work: %v", err)
	}

	err := svc.DeleteUser(context.Background(), admin.ID, other.ID)
	if err == nil {
		t.Fatalf("expected last-admin deletion to fail")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUpdateUserRefusesDemotingLastAdmin(t *testing.T) {
	admin := &models.User{ID: uuid.New(), Role: enums.RoleAdmin}
	repo := newFakeUserRepo(admin)
	svc := buildService(t, repo)

	cashier := enums.RoleCashier
	_, err := svc.UpdateUser(context.Background(), admin.ID, admin.ID, UpdateUserInput{Role: &cashier})
	if err == nil {
		t.Fatalf("expected demotion of last admin to fail")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestChangePasswordVerifiesCurrent(t *testing.T) {
	cfg := config.PasswordConfig{}
	hash, err := security.HashPassword("old-secret", cfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{ID: uuid.New(), Role: enums.RoleCashier, PasswordHash: hash}
	repo := newFakeUserRepo(user)
	svc := buildService(t, repo)

	err = svc.ChangePassword(context.Background(), user.ID, ChangePasswordInput{
		CurrentPassword: "wrong",
		NewPassword:     "new-secret",
	})
	if err == nil {
		t.Fatalf("expected wrong current password to fail")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, ChangePasswordInput{
		CurrentPassword: "old-secret",
		NewPassword:     "new-secret",
	}); err != nil {
		t.Fatalf("change password: %v", err)
	}

	stored := repo.users[user.ID]
	ok, err := security.VerifyPassword("new-secret", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("new password should verify, ok=%v err=%v", ok, err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	repo := newFakeUserRepo()
	svc := buildService(t, repo)

	_, err := svc.GetUser(context.Background(), uuid.New())
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
