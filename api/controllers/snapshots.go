package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itbpos/restaurant-backend/api/middleware"
	"github.com/itbpos/restaurant-backend/api/responses"
	"github.com/itbpos/restaurant-backend/api/validators"
	pkgerrors "github.com/itbpos/restaurant-backend/pkg/errors"
	"github.com/itbpos/restaurant-backend/pkg/logger"
	pkgredis "github.com/itbpos/restaurant-backend/pkg/redis"
	"github.com/itbpos/restaurant-backend/pkg/visibility"
)

type snapshotReader interface {
	Get(ctx context.Context, key string) (string, error)
	SnapshotKey(view, branch string) string
}

var snapshotViews = map[string]bool{
	"kitchen": true,
	"orders":  true,
}

// Snapshot serves the precomputed branch view written by the kds worker.
// Terminals poll this instead of recomputing the board on every refresh.
func Snapshot(store snapshotReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := chi.URLParam(r, "view")
		if !snapshotViews[view] {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown snapshot view"))
			return
		}
		branchID, err := validators.ParseQueryUUID(r, "branch")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if branchID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "branch query parameter is required"))
			return
		}
		if err := visibility.EnsureBranchAccess(middleware.ScopeFromContext(r.Context()), *branchID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		raw, err := store.Get(r.Context(), store.SnapshotKey(view, branchID.String()))
		if err != nil {
			if pkgredis.IsNil(err) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "snapshot not ready"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read snapshot"))
			return
		}
		responses.WriteSuccess(w, json.RawMessage(raw))
	}
}
