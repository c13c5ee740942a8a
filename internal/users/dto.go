package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits credentials and tokens.
type UserDTO struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	IsFarmer    bool      `json:"is_farmer"`
	DisplayName string    `json:"display_name"`
	Phone       *string   `json:"phone,omitempty"`
	Province    string    `json:"province"`
	City        string    `json:"city"`
	CreatedAt   time.Time `json:"created_at"`
}

// FarmerProfileDTO is the public farmer card shown on marketplace pages.
type FarmerProfileDTO struct {
	ID                 uuid.UUID `json:"id"`
	CompanyName        string    `json:"company_name"`
	CompanyDescription string    `json:"company_description"`
	CompanyLogoURL     *string   `json:"company_logo_url,omitempty"`
	CompanyCoverURL    *string   `json:"company_cover_url,omitempty"`
	Slug               string    `json:"slug"`
	Province           string    `json:"province"`
	City               string    `json:"city"`
	Address            string    `json:"address"`
	Latitude           *float64  `json:"latitude,omitempty"`
	Longitude          *float64  `json:"longitude,omitempty"`
	DeliveryAvailable  bool      `json:"delivery_available"`
	Phone              *string   `json:"phone,omitempty"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username     string
	Email        string
	PasswordHash string
	IsFarmer     bool
	DisplayName  string
	Phone        *string
	Province     string
	City         string
	CompanyName  string
	Slug         *string
	VerifyToken  *string
}

func (d CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		IsFarmer:     d.IsFarmer,
		DisplayName:  d.DisplayName,
		Phone:        d.Phone,
		Province:     d.Province,
		City:         d.City,
		CompanyName:  d.CompanyName,
		Slug:         d.Slug,
		VerifyToken:  d.VerifyToken,
	}
}

// FromModel maps the persisted user onto the transport DTO.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsFarmer:    u.IsFarmer,
		DisplayName: u.DisplayName,
		Phone:       u.Phone,
		Province:    u.Province,
		City:        u.City,
		CreatedAt:   u.CreatedAt,
	}
}

// FarmerFromModel maps a farmer user onto the public profile DTO.
func FarmerFromModel(u *models.User) *FarmerProfileDTO {
	if u == nil || !u.IsFarmer {
		return nil
	}
	slug := ""
	if u.Slug != nil {
		slug = *u.Slug
	}
	return &FarmerProfileDTO{
		ID:                 u.ID,
		CompanyName:        u.CompanyName,
		CompanyDescription: u.CompanyDescription,
		CompanyLogoURL:     u.CompanyLogoURL,
		CompanyCoverURL:    u.CompanyCoverURL,
		Slug:               slug,
		Province:           u.Province,
		City:               u.City,
		Address:            u.Address,
		Latitude:           u.Latitude,
		Longitude:          u.Longitude,
		DeliveryAvailable:  u.DeliveryAvailable,
		Phone:              u.Phone,
	}
}
