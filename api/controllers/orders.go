package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/api/middleware"
	"github.com/itbpos/restaurant-backend/api/responses"
	"github.com/itbpos/restaurant-backend/api/validators"
	internalorders "github.com/itbpos/restaurant-backend/internal/orders"
	"github.com/itbpos/restaurant-backend/pkg/enums"
	pkgerrors "github.com/itbpos/restaurant-backend/pkg/errors"
	"github.com/itbpos/restaurant-backend/pkg/logger"
	"github.com/itbpos/restaurant-backend/pkg/pagination"
	"github.com/itbpos/restaurant-backend/pkg/visibility"
)

// OrdersCreate opens an order and returns the authoritative document, so the
// terminal never has to render an optimistic state.
func OrdersCreate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var input internalorders.CreateOrderInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.CreateOrder(r.Context(), actor, middleware.ScopeFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}

type addLinesRequest struct {
	Lines []internalorders.LineInput `json:"lines" validate:"required,min=1,dive"`
}

func OrdersAddLines(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req addLinesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.AddLines(r.Context(), actor, middleware.ScopeFromContext(r.Context()), internalorders.AddLinesInput{
			OrderID: orderID,
			Lines:   req.Lines,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

type updateLineRequest struct {
	Qty  int     `json:"qty" validate:"required,gt=0"`
	Note *string `json:"note,omitempty"`
}

func OrdersUpdateLine(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := validators.ParseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateLineRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		scope := middleware.ScopeFromContext(r.Context())
		if err := svc.UpdateLine(r.Context(), actor, scope, internalorders.UpdateLineInput{
			OrderID: orderID,
			LineID:  lineID,
			Qty:     req.Qty,
			Note:    req.Note,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOrderDetail(svc, logg, w, r, scope, orderID)
	}
}

type cancelLineRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func OrdersCancelLine(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lineID, err := validators.ParseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req cancelLineRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		scope := middleware.ScopeFromContext(r.Context())
		if err := svc.CancelLine(r.Context(), actor, scope, internalorders.CancelLineInput{
			OrderID: orderID,
			LineID:  lineID,
			Reason:  req.Reason,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOrderDetail(svc, logg, w, r, scope, orderID)
	}
}

// markServedRequest is optional on the wire: no body (or no lineIds) means
// serve every dispatched line still outstanding.
type markServedRequest struct {
	LineIDs []uuid.UUID `json:"lineIds,omitempty"`
}

func OrdersMarkServed(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req markServedRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		scope := middleware.ScopeFromContext(r.Context())
		if err := svc.MarkServed(r.Context(), actor, scope, internalorders.MarkServedInput{
			OrderID: orderID,
			LineIDs: req.LineIDs,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOrderDetail(svc, logg, w, r, scope, orderID)
	}
}

type statusChangeRequest struct {
	Target enums.OrderStatus `json:"target" validate:"required"`
	Reason string            `json:"reason,omitempty"`
}

func OrdersSetStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := orderActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req statusChangeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		scope := middleware.ScopeFromContext(r.Context())
		if err := svc.SetStatus(r.Context(), actor, scope, internalorders.StatusChangeInput{
			OrderID: orderID,
			Target:  req.Target,
			Reason:  req.Reason,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeOrderDetail(svc, logg, w, r, scope, orderID)
	}
}

func OrdersGet(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.GetOrder(r.Context(), middleware.ScopeFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func OrdersList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := orderListFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListOrders(r.Context(), middleware.ScopeFromContext(r.Context()), *filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func orderListFilters(r *http.Request) (*internalorders.ListFilters, error) {
	filters := internalorders.ListFilters{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").WithDetails(map[string]any{"status": raw})
		}
		filters.Status = &status
	}
	branchID, err := validators.ParseQueryUUID(r, "branch")
	if err != nil {
		return nil, err
	}
	filters.BranchID = branchID

	from, err := validators.ParseQueryDate(r, "from")
	if err != nil {
		return nil, err
	}
	filters.DateFrom = from

	to, err := validators.ParseQueryDate(r, "to")
	if err != nil {
		return nil, err
	}
	filters.DateTo = to

	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return nil, err
	}
	filters.Limit = limit

	if raw := strings.TrimSpace(r.URL.Query().Get("cursor")); raw != "" {
		cursor, err := pagination.ParseCursor(raw)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
		filters.Cursor = cursor
	}

	return &filters, nil
}

// writeOrderDetail returns the post-commit document after a mutation.
func writeOrderDetail(svc internalorders.Service, logg *logger.Logger, w http.ResponseWriter, r *http.Request, scope visibility.BranchScope, orderID uuid.UUID) {
	detail, err := svc.GetOrder(r.Context(), scope, orderID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, detail)
}
