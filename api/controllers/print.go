package controllers

import (
	"net/http"

	"github.com/itbpos/restaurant-backend/api/middleware"
	"github.com/itbpos/restaurant-backend/api/responses"
	"github.com/itbpos/restaurant-backend/api/validators"
	internalprinting "github.com/itbpos/restaurant-backend/internal/printing"
	"github.com/itbpos/restaurant-backend/pkg/logger"
)

func PrintKOT(svc internalprinting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kotID, err := validators.ParseUUIDParam(r, "kotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := svc.RenderKOT(r.Context(), middleware.ScopeFromContext(r.Context()), kotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteHTML(w, doc)
	}
}

func PrintReceipt(svc internalprinting.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		doc, err := svc.RenderReceipt(r.Context(), middleware.ScopeFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteHTML(w, doc)
	}
}
