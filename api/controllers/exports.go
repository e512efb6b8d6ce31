package controllers

import (
	"net/http"

	"github.com/itbpos/restaurant-backend/api/middleware"
	"github.com/itbpos/restaurant-backend/api/responses"
	internalexports "github.com/itbpos/restaurant-backend/internal/exports"
	"github.com/itbpos/restaurant-backend/pkg/logger"
)

// OrdersExport writes a CSV of the filtered order list and returns its
// download location.
func OrdersExport(svc internalexports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := orderListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ExportOrders(r.Context(), middleware.ScopeFromContext(r.Context()), *filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
