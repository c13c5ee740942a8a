package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbtypes "github.com/paolomureddu/agrikmzero-backend/pkg/db/types"
	"github.com/paolomureddu/agrikmzero-backend/pkg/enums"
)

// OrderRequest is the immutable snapshot of one seller-scoped cart at
// submission time plus the buyer's contact info. Items and TotalPrice are
// computed once at creation and never recomputed.
type OrderRequest struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	BuyerID  *uuid.UUID `gorm:"type:uuid;index"`

	BuyerName  string `gorm:"column:buyer_name"`
	BuyerEmail string `gorm:"column:buyer_email"`
	BuyerPhone string `gorm:"column:buyer_phone"`

	Delivery        bool    `gorm:"column:delivery;not null;default:false"`
	DeliveryAddress *string `gorm:"column:delivery_address"`

	Items      dbtypes.OrderItems `gorm:"type:jsonb;not null"`
	TotalPrice decimal.Decimal    `gorm:"column:total_price;type:numeric(12,2);not null"`

	Status      enums.OrderStatus `gorm:"type:text;not null;default:'pending';index"`
	CompletedAt *time.Time        `gorm:"column:completed_at"`
	Reviewed    bool              `gorm:"column:reviewed;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (o *OrderRequest) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
