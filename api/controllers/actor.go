package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/itbpos/restaurant-backend/api/middleware"
	"github.com/itbpos/restaurant-backend/internal/kitchen"
	"github.com/itbpos/restaurant-backend/internal/orders"
	pkgerrors "github.com/itbpos/restaurant-backend/pkg/errors"
)

const branchHeader = "X-Branch-Id"

// orderActor builds the acting staff identity from verified claims. The
// optional X-Branch-Id header records which terminal branch performed the
// action for event attribution.
func orderActor(r *http.Request) (orders.Actor, error) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	actor := orders.Actor{User: claims.User, Role: claims.Role}
	branchID, err := branchFromHeader(r)
	if err != nil {
		return orders.Actor{}, err
	}
	actor.BranchID = branchID
	return actor, nil
}

func kitchenActor(r *http.Request) (kitchen.Actor, error) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		return kitchen.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	actor := kitchen.Actor{User: claims.User, Role: claims.Role}
	branchID, err := branchFromHeader(r)
	if err != nil {
		return kitchen.Actor{}, err
	}
	actor.BranchID = branchID
	return actor, nil
}

func branchFromHeader(r *http.Request) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get(branchHeader))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch header must be a uuid")
	}
	return &id, nil
}
