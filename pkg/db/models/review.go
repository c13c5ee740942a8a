package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is left by a client against a farmer, keyed to a completed order.
type Review struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FarmerID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClientID   *uuid.UUID `gorm:"type:uuid;index"`
	ClientName string     `gorm:"column:client_name"`
	OrderID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Rating     int        `gorm:"column:rating;not null"`
	Comment    *string    `gorm:"column:comment"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
