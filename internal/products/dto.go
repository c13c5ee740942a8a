package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paolomureddu/agrikmzero-backend/internal/users"
	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
	"github.com/paolomureddu/agrikmzero-backend/pkg/enums"
)

// ProductDTO is the transport shape for a listing.
type ProductDTO struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"user_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	Unit        enums.ProductUnit `json:"unit"`
	ImageURL    *string           `json:"image_url,omitempty"`
	SellerName  string            `json:"seller_name,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// StorefrontDTO is the public page for a farmer: profile plus listings.
type StorefrontDTO struct {
	Farmer   *users.FarmerProfileDTO `json:"farmer"`
	Products []ProductDTO            `json:"products"`
}

// FromModel maps the persisted product onto the transport DTO.
func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Unit:        p.Unit,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// FromModels maps a slice of products, never returning nil.
func FromModels(items []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(items))
	for i := range items {
		out = append(out, *FromModel(&items[i]))
	}
	return out
}
