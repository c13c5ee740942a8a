package profiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paolomureddu/agrikmzero-backend/internal/users"
	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
	"github.com/paolomureddu/agrikmzero-backend/pkg/geo"
	"github.com/paolomureddu/agrikmzero-backend/pkg/logger"
)

// ProfileDTO is the authenticated user's own profile view.
type ProfileDTO struct {
	User   *users.UserDTO          `json:"user"`
	Farmer *users.FarmerProfileDTO `json:"farmer,omitempty"`
}

// UpdateProfileInput carries optional profile mutations. Company fields are
// only honored for farmer accounts.
type UpdateProfileInput struct {
	DisplayName        *string  `json:"display_name,omitempty"`
	Phone              *string  `json:"phone,omitempty"`
	Province           *string  `json:"province,omitempty"`
	City               *string  `json:"city,omitempty"`
	Address            *string  `json:"address,omitempty"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Longitude          *float64 `json:"longitude,omitempty"`
	CompanyName        *string  `json:"company_name,omitempty"`
	CompanyDescription *string  `json:"company_description,omitempty"`
	DeliveryAvailable  *bool    `json:"delivery_available,omitempty"`
}

// UploadImageInput carries one profile image upload.
type UploadImageInput struct {
	ContentType string
	Filename    string
	Body        io.Reader
}

// Service exposes profile reads and writes for the authenticated user.
type Service interface {
	Me(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error)
	UploadLogo(ctx context.Context, userID uuid.UUID, input UploadImageInput) (*ProfileDTO, error)
	UploadCover(ctx context.Context, userID uuid.UUID, input UploadImageInput) (*ProfileDTO, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Save(ctx context.Context, user *models.User) (*models.User, error)
	SlugExists(ctx context.Context, slug string, excludeUserID uuid.UUID) (bool, error)
}

type geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*geo.Place, error)
}

type objectStore interface {
	UploadObject(ctx context.Context, object, contentType string, body io.Reader) (string, error)
}

type service struct {
	repo     userRepository
	geocoder geocoder
	storage  objectStore
	logg     *logger.Logger
}

// NewService constructs a profiles service. Geocoder and storage are
// optional; the matching features degrade when absent.
func NewService(repo userRepository, geocoder geocoder, storage objectStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{repo: repo, geocoder: geocoder, storage: storage, logg: logg}, nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toProfile(user), nil
}

// Update applies the changes, recomputing the public slug when a farmer
// renames their company and backfilling city/province from coordinates
// when a geocoder is configured.
func (s *service) Update(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "display_name must not be empty")
		}
		user.DisplayName = name
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone == "" {
			user.Phone = nil
		} else {
			user.Phone = &phone
		}
	}
	if input.Province != nil {
		user.Province = strings.TrimSpace(*input.Province)
	}
	if input.City != nil {
		user.City = strings.TrimSpace(*input.City)
	}
	if input.Address != nil {
		user.Address = strings.TrimSpace(*input.Address)
	}
	if input.Latitude != nil {
		user.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		user.Longitude = input.Longitude
	}

	if user.IsFarmer {
		if input.CompanyName != nil {
			name := strings.TrimSpace(*input.CompanyName)
			if name == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "company_name must not be empty")
			}
			if name != user.CompanyName {
				user.CompanyName = name
				slug, err := users.EnsureUniqueSlug(ctx, s.repo, users.Slugify(name), user.ID)
				if err != nil {
					return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "compute slug")
				}
				user.Slug = &slug
			}
		}
		if input.CompanyDescription != nil {
			user.CompanyDescription = strings.TrimSpace(*input.CompanyDescription)
		}
		if input.DeliveryAvailable != nil {
			user.DeliveryAvailable = *input.DeliveryAvailable
		}
	}

	s.backfillLocation(ctx, user)

	if _, err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save profile")
	}
	return toProfile(user), nil
}

func (s *service) UploadLogo(ctx context.Context, userID uuid.UUID, input UploadImageInput) (*ProfileDTO, error) {
	return s.uploadImage(ctx, userID, input, "logos", func(user *models.User, url string) {
		user.CompanyLogoURL = &url
	})
}

func (s *service) UploadCover(ctx context.Context, userID uuid.UUID, input UploadImageInput) (*ProfileDTO, error) {
	return s.uploadImage(ctx, userID, input, "covers", func(user *models.User, url string) {
		user.CompanyCoverURL = &url
	})
}

func (s *service) uploadImage(ctx context.Context, userID uuid.UUID, input UploadImageInput, prefix string, apply func(*models.User, string)) (*ProfileDTO, error) {
	if s.storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "object storage not configured")
	}
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image body is required")
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsFarmer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only farmers have a public page")
	}

	object := fmt.Sprintf("%s/%s%s", prefix, user.ID, imageExtension(input))
	url, err := s.storage.UploadObject(ctx, object, input.ContentType, input.Body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}

	apply(user, url)
	if _, err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save profile")
	}
	return toProfile(user), nil
}

// backfillLocation fills blank city/province from coordinates, best effort.
func (s *service) backfillLocation(ctx context.Context, user *models.User) {
	if s.geocoder == nil || user.Latitude == nil || user.Longitude == nil {
		return
	}
	if user.City != "" && user.Province != "" {
		return
	}

	place, err := s.geocoder.ReverseGeocode(ctx, *user.Latitude, *user.Longitude)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "user_id", user.ID), "profiles.geocode_failed")
		}
		return
	}
	if user.City == "" {
		user.City = place.City
	}
	if user.Province == "" {
		user.Province = place.Province
	}
	if user.Address == "" {
		user.Address = place.FormattedAddress
	}
}

func (s *service) load(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func toProfile(user *models.User) *ProfileDTO {
	return &ProfileDTO{
		User:   users.FromModel(user),
		Farmer: users.FarmerFromModel(user),
	}
}

func imageExtension(input UploadImageInput) string {
	if ext := path.Ext(input.Filename); ext != "" {
		return strings.ToLower(ext)
	}
	switch input.ContentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
