package controllers

import (
	"context"
	"net/http"

	"github.com/tabacweb/tabac-backend/api/responses"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
	"github.com/tabacweb/tabac-backend/pkg/logger"
)

// Pinger is the health check surface shared by the database and redis
// clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Live reports process liveness.
func Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// Ready reports whether the service can reach its backing stores.
func Ready(database, cache Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if database != nil {
			if err := database.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
