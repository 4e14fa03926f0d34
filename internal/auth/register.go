package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tabacweb/tabac-backend/internal/users"
	"github.com/tabacweb/tabac-backend/pkg/config"
	"github.com/tabacweb/tabac-backend/pkg/db"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
	"github.com/tabacweb/tabac-backend/pkg/security"
)

// RegisterRequest contains the fields required to create a staff account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=admin cashier"`
}

// RegisterService handles creating staff users. Only administrators may call it.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

// RegisterServiceParams names the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a staff registration service.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	role, err := enums.ParseRole(req.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be admin or cashier")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *users.UserDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Name:         name,
			Email:        email,
			PasswordHash: passwordHash,
			Role:         role,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "idx_users_email") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		created = users.FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
