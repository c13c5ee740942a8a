package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/paolomureddu/agrikmzero-backend/api/responses"
	productsvc "github.com/paolomureddu/agrikmzero-backend/internal/products"
	reviewsvc "github.com/paolomureddu/agrikmzero-backend/internal/reviews"
	"github.com/paolomureddu/agrikmzero-backend/internal/users"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
	"github.com/paolomureddu/agrikmzero-backend/pkg/logger"
)

// FarmerStorefront returns the public farmer page: profile plus listings.
func FarmerStorefront(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storefront, err := svc.Storefront(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, storefront)
	}
}

// FarmerProducts returns just the farmer's listings.
func FarmerProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storefront, err := svc.Storefront(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, storefront.Products)
	}
}

// FarmerReviews returns the public review list and average for a farmer.
func FarmerReviews(userRepo *users.Repository, svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		farmer, err := userRepo.FindFarmerBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "farmer not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load farmer"))
			return
		}

		result, err := svc.ListForFarmer(r.Context(), farmer.ID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
