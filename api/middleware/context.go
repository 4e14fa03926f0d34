package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
	ctxName   contextKey = "actor_name"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

// UserUUIDFromContext parses the authenticated user id, returning
// uuid.Nil when the request is anonymous.
func UserUUIDFromContext(ctx context.Context) uuid.UUID {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return uuid.Nil
	}
	return id
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// ActorRoleFromContext parses the role, returning false when the
// request carries no valid role.
func ActorRoleFromContext(ctx context.Context) (enums.Role, bool) {
	role, err := enums.ParseRole(RoleFromContext(ctx))
	if err != nil {
		return "", false
	}
	return role, true
}

func NameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxName).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// WithName injects the actor display name into the context.
func WithName(ctx context.Context, name string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxName, name)
}
