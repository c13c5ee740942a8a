package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
)

// SubmitReviewRequest is the JSON payload for reviewing a completed order.
// FarmerID comes from the URL; when set, the order must belong to that farmer.
type SubmitReviewRequest struct {
	FarmerID uuid.UUID `json:"-"`
	OrderID  uuid.UUID `json:"order_id" validate:"required"`
	Rating   int       `json:"rating" validate:"required,min=1,max=5"`
	Comment  string    `json:"comment"`
}

// ReviewDTO is the transport shape of one review.
type ReviewDTO struct {
	ID         uuid.UUID `json:"id"`
	FarmerID   uuid.UUID `json:"farmer_id"`
	ClientName string    `json:"client_name"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// FarmerReviewsDTO lists a farmer's reviews with their running average.
type FarmerReviewsDTO struct {
	FarmerID      uuid.UUID   `json:"farmer_id"`
	AverageRating float64     `json:"average_rating"`
	Count         int         `json:"count"`
	Reviews       []ReviewDTO `json:"reviews"`
}

// FromModel maps the persisted review onto the transport DTO.
func FromModel(r *models.Review) *ReviewDTO {
	if r == nil {
		return nil
	}
	return &ReviewDTO{
		ID:         r.ID,
		FarmerID:   r.FarmerID,
		ClientName: r.ClientName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}
