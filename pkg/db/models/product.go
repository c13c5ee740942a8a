package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/paolomureddu/agrikmzero-backend/pkg/enums"
)

// Product is a listing owned by exactly one farmer.
type Product struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	Name        string            `gorm:"type:text;not null"`
	Description string            `gorm:"type:text"`
	Price       decimal.Decimal   `gorm:"type:numeric(12,2);not null"`
	Unit        enums.ProductUnit `gorm:"type:text;not null;default:'pz'"`
	ImageURL    *string           `gorm:"column:image_url"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
