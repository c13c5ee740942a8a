package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
	dbtypes "github.com/paolomureddu/agrikmzero-backend/pkg/db/types"
	"github.com/paolomureddu/agrikmzero-backend/pkg/enums"
)

// CreateOrderInput collects everything needed to submit one seller's cart
// as an order request. BuyerID is nil for guest checkouts.
type CreateOrderInput struct {
	SessionID string
	SellerID  uuid.UUID
	BuyerID   *uuid.UUID

	BuyerName  string
	BuyerEmail string
	BuyerPhone string

	Delivery        bool
	DeliveryAddress string
}

// CreateOrderRequest is the JSON payload posted at checkout. The seller
// comes from the URL.
type CreateOrderRequest struct {
	BuyerName       string `json:"buyer_name"`
	BuyerEmail      string `json:"buyer_email"`
	BuyerPhone      string `json:"buyer_phone"`
	Delivery        bool   `json:"delivery"`
	DeliveryAddress string `json:"delivery_address"`
}

// TransitionRequest carries the accept/reject decision.
type TransitionRequest struct {
	Action string `json:"action" validate:"required"`
}

// BulkTransitionRequest applies one decision to many pending orders.
type BulkTransitionRequest struct {
	OrderIDs []uuid.UUID `json:"order_ids" validate:"required,min=1"`
	Action   string      `json:"action" validate:"required"`
}

// ReplyRequest is a free-text note the farmer sends back to the buyer.
type ReplyRequest struct {
	Message string `json:"message" validate:"required"`
}

// OrderDTO is the transport shape of an order request.
type OrderDTO struct {
	ID       uuid.UUID  `json:"id"`
	SellerID uuid.UUID  `json:"seller_id"`
	BuyerID  *uuid.UUID `json:"buyer_id,omitempty"`

	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
	BuyerPhone string `json:"buyer_phone,omitempty"`

	Delivery        bool    `json:"delivery"`
	DeliveryAddress *string `json:"delivery_address,omitempty"`

	Items      dbtypes.OrderItems `json:"items"`
	TotalPrice decimal.Decimal    `json:"total_price"`

	Status      enums.OrderStatus `json:"status"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Reviewed    bool              `json:"reviewed"`
	CreatedAt   time.Time         `json:"created_at"`
}

// BulkTransitionResult reports how many orders the bulk decision touched.
type BulkTransitionResult struct {
	Updated int64 `json:"updated"`
}

// FromModel maps the persisted order onto the transport DTO.
func FromModel(o *models.OrderRequest) *OrderDTO {
	if o == nil {
		return nil
	}
	return &OrderDTO{
		ID:              o.ID,
		SellerID:        o.SellerID,
		BuyerID:         o.BuyerID,
		BuyerName:       o.BuyerName,
		BuyerEmail:      o.BuyerEmail,
		BuyerPhone:      o.BuyerPhone,
		Delivery:        o.Delivery,
		DeliveryAddress: o.DeliveryAddress,
		Items:           o.Items,
		TotalPrice:      o.TotalPrice,
		Status:          o.Status,
		CompletedAt:     o.CompletedAt,
		Reviewed:        o.Reviewed,
		CreatedAt:       o.CreatedAt,
	}
}

// FromModels maps a slice of orders, never returning nil.
func FromModels(items []models.OrderRequest) []OrderDTO {
	out := make([]OrderDTO, 0, len(items))
	for i := range items {
		out = append(out, *FromModel(&items[i]))
	}
	return out
}
