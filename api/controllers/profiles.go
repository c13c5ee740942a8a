package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/paolomureddu/agrikmzero-backend/api/responses"
	"github.com/paolomureddu/agrikmzero-backend/api/validators"
	profilesvc "github.com/paolomureddu/agrikmzero-backend/internal/profiles"
	"github.com/paolomureddu/agrikmzero-backend/pkg/logger"
)

// ProfileMe returns the authenticated user's own profile.
func ProfileMe(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Me(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ProfileUpdate applies partial profile changes.
func ProfileUpdate(svc profilesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload profilesvc.UpdateProfileInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.Update(r.Context(), userID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ProfileUploadLogo stores the farmer's company logo.
func ProfileUploadLogo(svc profilesvc.Service, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return profileUpload(svc.UploadLogo, maxUploadMB, logg)
}

// ProfileUploadCover stores the farmer's storefront cover image.
func ProfileUploadCover(svc profilesvc.Service, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return profileUpload(svc.UploadCover, maxUploadMB, logg)
}

func profileUpload(
	upload func(ctx context.Context, userID uuid.UUID, input profilesvc.UploadImageInput) (*profilesvc.ProfileDTO, error),
	maxUploadMB int,
	logg *logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireFarmerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		image, err := imageFromRequest(r, maxUploadMB)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer image.Close()

		profile, err := upload(r.Context(), userID, profilesvc.UploadImageInput{
			ContentType: image.contentType,
			Filename:    image.filename,
			Body:        image.file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
