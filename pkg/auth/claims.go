package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   enums.Role
}

// AccessTokenClaims represents the typed JWT issued to staff clients.
type AccessTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Email  string     `json:"email"`
	Name   string     `json:"name"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}
