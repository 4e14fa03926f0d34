package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabacweb/tabac-backend/pkg/config"
	"github.com/tabacweb/tabac-backend/pkg/db"
	"github.com/tabacweb/tabac-backend/pkg/db/models"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
	"github.com/tabacweb/tabac-backend/pkg/security"
)

// Service exposes staff account management operations.
type Service interface {
	ListUsers(ctx context.Context) ([]UserDTO, error)
	GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	UpdateUser(ctx context.Context, actorID, userID uuid.UUID, input UpdateUserInput) (*UserDTO, error)
	DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error
}

// UpdateUserInput holds optional mutation values for a staff account.
type UpdateUserInput struct {
	Name  *string
	Email *string
	Role  *enums.Role
}

// ChangePasswordInput carries a verified password rotation request.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountAdmins(ctx context.Context) (int64, error)
}

type service struct {
	repo        userRepository
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo           userRepository
	PasswordConfig config.PasswordConfig
}

// NewService constructs a users service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{
		repo:        params.Repo,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) ListUsers(ctx context.Context) ([]UserDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list users")
	}
	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

// UpdateUser mutates a staff account. Demoting the last administrator is
// refused so the platform always keeps at least one admin.
func (s *service) UpdateUser(ctx context.Context, actorID, userID uuid.UUID, input UpdateUserInput) (*UserDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Role != nil && *input.Role != user.Role && user.Role == enums.RoleAdmin {
		admins, err := s.repo.CountAdmins(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count admins")
		}
		if admins <= 1 {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot demote the last administrator")
		}
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Role != nil {
		user.Role = *input.Role
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update user")
	}
	return FromModel(updated), nil
}

// DeleteUser removes a staff account. Users cannot delete themselves.
func (s *service) DeleteUser(ctx context.Context, actorID, userID uuid.UUID) error {
	if actorID == userID {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot delete your own account")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == enums.RoleAdmin {
		admins, err := s.repo.CountAdmins(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count admins")
		}
		if admins <= 1 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cannot delete the last administrator")
		}
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete user")
	}
	return nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	return s.GetUser(ctx, userID)
}

func (s *service) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	valid, err := security.VerifyPassword(input.CurrentPassword, user.PasswordHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "current password is incorrect")
	}

	hash, err := security.HashPassword(input.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user.PasswordHash = hash

	if _, err := s.repo.Update(ctx, user); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update user")
	}
	return nil
}

func (s *service) loadUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user")
	}
	return user, nil
}
