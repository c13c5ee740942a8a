package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the canonical identity entity. Farmers additionally carry
// company metadata and a public slug; clients only use the profile fields.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string    `gorm:"type:text;not null;uniqueIndex"`
	Email        string    `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	IsFarmer     bool      `gorm:"column:is_farmer;not null;default:false"`
	DisplayName  string    `gorm:"column:display_name"`
	Phone        *string   `gorm:"column:phone"`

	Province  string   `gorm:"column:province"`
	City      string   `gorm:"column:city"`
	Address   string   `gorm:"column:address"`
	Latitude  *float64 `gorm:"column:latitude"`
	Longitude *float64 `gorm:"column:longitude"`

	CompanyName        string  `gorm:"column:company_name"`
	CompanyDescription string  `gorm:"column:company_description"`
	CompanyLogoURL     *string `gorm:"column:company_logo_url"`
	CompanyCoverURL    *string `gorm:"column:company_cover_url"`
	Slug               *string `gorm:"column:slug;uniqueIndex"`
	DeliveryAvailable  bool    `gorm:"column:delivery_available;not null;default:false"`

	EmailVerified       bool       `gorm:"column:email_verified;not null;default:false"`
	VerifyToken         *string    `gorm:"column:verify_token"`
	ResetToken          *string    `gorm:"column:reset_token"`
	ResetTokenExpiresAt *time.Time `gorm:"column:reset_token_expires_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the id app-side so inserts do not depend on a
// database default.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
