package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/api/middleware"
	"github.com/tabacweb/tabac-backend/api/responses"
	"github.com/tabacweb/tabac-backend/internal/notifications"
	"github.com/tabacweb/tabac-backend/pkg/enums"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
	"github.com/tabacweb/tabac-backend/pkg/logger"
)

func notificationIdentity(r *http.Request) (enums.Role, uuid.UUID, error) {
	role, ok := middleware.ActorRoleFromContext(r.Context())
	if !ok {
		return "", uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}
	userID := middleware.UserUUIDFromContext(r.Context())
	if userID == uuid.Nil {
		return "", uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return role, userID, nil
}

// ListNotifications returns the caller's role-targeted feed, newest first.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		role, userID, err := notificationIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := notifications.ListParams{Role: role, UserID: userID}

		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			params.Limit = value
		}
		if cursor := strings.TrimSpace(r.URL.Query().Get("cursor")); cursor != "" {
			params.Cursor = cursor
		}
		if unread := strings.TrimSpace(r.URL.Query().Get("unreadOnly")); unread != "" {
			value, err := strconv.ParseBool(unread)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unreadOnly value"))
				return
			}
			params.UnreadOnly = value
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// UnreadNotificationCount returns the badge counter for the caller.
func UnreadNotificationCount(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		role, userID, err := notificationIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.UnreadCount(r.Context(), role, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{"unread": count})
	}
}

// MarkNotificationRead records a per-user read receipt.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		_, userID, err := notificationIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		notificationID, err := pathUUID(r, "notificationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkRead(r.Context(), notificationID, userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"read": true})
	}
}

// MarkAllNotificationsRead clears the caller's unread backlog.
func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		role, userID, err := notificationIdentity(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.MarkAllRead(r.Context(), role, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{"marked": count})
	}
}

// DeleteExpiredNotifications hard-deletes every notification past its TTL.
// Admin only; the hourly sweep handles deactivation on its own.
func DeleteExpiredNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}

		count, err := svc.DeleteExpired(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{"deleted": count})
	}
}
