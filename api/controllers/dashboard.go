package controllers

import (
	"net/http"

	"github.com/tabacweb/tabac-backend/api/middleware"
	"github.com/tabacweb/tabac-backend/api/responses"
	"github.com/tabacweb/tabac-backend/internal/dashboard"
	pkgerrors "github.com/tabacweb/tabac-backend/pkg/errors"
	"github.com/tabacweb/tabac-backend/pkg/logger"
)

type dashboardCaller struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type dashboardResponse struct {
	*dashboard.Summary
	Caller dashboardCaller `json:"caller"`
}

// DashboardSummary returns the staff landing page counters plus the caller
// identity the frontend greets with.
func DashboardSummary(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		summary, err := svc.Summary(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dashboardResponse{
			Summary: summary,
			Caller: dashboardCaller{
				Name: middleware.NameFromContext(r.Context()),
				Role: middleware.RoleFromContext(r.Context()),
			},
		})
	}
}
