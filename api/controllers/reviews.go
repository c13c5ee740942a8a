package controllers

import (
	"net/http"

	"github.com/paolomureddu/agrikmzero-backend/api/responses"
	"github.com/paolomureddu/agrikmzero-backend/api/validators"
	reviewsvc "github.com/paolomureddu/agrikmzero-backend/internal/reviews"
	"github.com/paolomureddu/agrikmzero-backend/pkg/logger"
)

// ReviewSubmit creates a review for one of the client's completed orders.
func ReviewSubmit(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		farmerID, err := uuidParam(r, "farmerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload reviewsvc.SubmitReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.FarmerID = farmerID

		review, err := svc.Submit(r.Context(), clientID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}
