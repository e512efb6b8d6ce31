package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/itbpos/restaurant-backend/api/responses"
	"github.com/itbpos/restaurant-backend/api/validators"
	internalvariants "github.com/itbpos/restaurant-backend/internal/variants"
	pkgerrors "github.com/itbpos/restaurant-backend/pkg/errors"
	"github.com/itbpos/restaurant-backend/pkg/logger"
)

func itemCodeParam(r *http.Request) (string, error) {
	code := strings.TrimSpace(chi.URLParam(r, "itemCode"))
	if code == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "item code is required")
	}
	return code, nil
}

// ItemsAttributes lists a template's selectable attributes and values.
func ItemsAttributes(svc internalvariants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := itemCodeParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		options, err := svc.AttributesForItem(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, options)
	}
}

type resolveVariantRequest struct {
	Attributes map[string]string `json:"attributes" validate:"required"`
}

// ItemsResolveVariant turns a template plus attribute selection into the
// concrete sellable item.
func ItemsResolveVariant(svc internalvariants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := itemCodeParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req resolveVariantRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resolved, err := svc.ResolveVariant(r.Context(), internalvariants.ResolveInput{
			TemplateCode: code,
			Attributes:   req.Attributes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resolved)
	}
}

// ItemsPrice looks up the selling rate. A missing price comes back as zero
// with warned=true rather than an error.
func ItemsPrice(svc internalvariants.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := itemCodeParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		price, err := svc.PriceFor(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, price)
	}
}
