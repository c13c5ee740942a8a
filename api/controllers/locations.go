package controllers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/paolomureddu/agrikmzero-backend/api/responses"
	"github.com/paolomureddu/agrikmzero-backend/internal/locations"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
	"github.com/paolomureddu/agrikmzero-backend/pkg/logger"
)

// LocationProvinces lists the Sardinian provinces.
func LocationProvinces() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, locations.Provinces())
	}
}

// LocationComuni lists the comuni of one province.
func LocationComuni(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		province := chi.URLParam(r, "province")
		if decoded, err := url.PathUnescape(province); err == nil {
			province = decoded
		}
		if !locations.IsValidProvince(province) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "unknown province"))
			return
		}
		responses.WriteSuccess(w, locations.Comuni(province))
	}
}
