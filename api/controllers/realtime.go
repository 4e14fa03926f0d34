package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tabacweb/tabac-backend/api/middleware"
	"github.com/tabacweb/tabac-backend/internal/realtime"
)

// Websocket upgrades the connection and subscribes it according to the
// caller's identity. Anonymous connections receive global events only.
func Websocket(hub *realtime.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			http.Error(w, "realtime unavailable", http.StatusServiceUnavailable)
			return
		}

		identity := realtime.Identity{}
		if role, ok := middleware.ActorRoleFromContext(r.Context()); ok {
			identity.Role = &role
		}
		if userID := middleware.UserUUIDFromContext(r.Context()); userID != uuid.Nil {
			identity.UserID = &userID
		}

		hub.Upgrade(w, r, identity)
	}
}
