package controllers

import (
	"net/http"

	"github.com/itbpos/restaurant-backend/api/middleware"
	"github.com/itbpos/restaurant-backend/api/responses"
	"github.com/itbpos/restaurant-backend/api/validators"
	internalkitchen "github.com/itbpos/restaurant-backend/internal/kitchen"
	"github.com/itbpos/restaurant-backend/pkg/enums"
	pkgerrors "github.com/itbpos/restaurant-backend/pkg/errors"
	"github.com/itbpos/restaurant-backend/pkg/logger"
)

// KitchenDispatch sends an order's undispatched lines to the kitchen and
// returns the waiter confirmation summary.
func KitchenDispatch(svc internalkitchen.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := kitchenActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Dispatch(r.Context(), actor, middleware.ScopeFromContext(r.Context()), internalkitchen.DispatchInput{
			OrderID: orderID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type itemStatusRequest struct {
	Target string `json:"target" validate:"required"`
	Reason string `json:"reason,omitempty"`
}

func KitchenUpdateItemStatus(svc internalkitchen.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := kitchenActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kotID, err := validators.ParseUUIDParam(r, "kotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req itemStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseKitchenItemStatus(req.Target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown kitchen status").WithDetails(map[string]any{"target": req.Target}))
			return
		}
		scope := middleware.ScopeFromContext(r.Context())
		if err := svc.UpdateItemStatus(r.Context(), actor, scope, internalkitchen.ItemStatusInput{
			KOTItemID: itemID,
			Target:    target,
			Reason:    req.Reason,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticket, err := svc.GetTicket(r.Context(), scope, kotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ticket)
	}
}

type cancelTicketRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func KitchenCancelTicket(svc internalkitchen.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := kitchenActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kotID, err := validators.ParseUUIDParam(r, "kotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cancelTicketRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		scope := middleware.ScopeFromContext(r.Context())
		if err := svc.CancelTicket(r.Context(), actor, scope, internalkitchen.CancelTicketInput{
			KOTID:  kotID,
			Reason: req.Reason,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticket, err := svc.GetTicket(r.Context(), scope, kotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ticket)
	}
}

func KitchenGetTicket(svc internalkitchen.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kotID, err := validators.ParseUUIDParam(r, "kotId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticket, err := svc.GetTicket(r.Context(), middleware.ScopeFromContext(r.Context()), kotID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ticket)
	}
}

// KitchenDisplay returns the live board for one branch, actionable tickets
// only.
func KitchenDisplay(svc internalkitchen.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		branchID, err := validators.ParseQueryUUID(r, "branch")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if branchID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "branch query parameter is required"))
			return
		}
		board, err := svc.Display(r.Context(), middleware.ScopeFromContext(r.Context()), *branchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, board)
	}
}
