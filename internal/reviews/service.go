package reviews

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paolomureddu/agrikmzero-backend/internal/orders"
	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
	"github.com/paolomureddu/agrikmzero-backend/pkg/enums"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
)

// Service exposes review submission and the public farmer rating page.
type Service interface {
	Submit(ctx context.Context, clientID uuid.UUID, req SubmitReviewRequest) (*ReviewDTO, error)
	ListForFarmer(ctx context.Context, farmerID uuid.UUID) (*FarmerReviewsDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type service struct {
	db      txRunner
	reviews *Repository
	orders  *orders.Repository
	users   userLoader
}

// NewService constructs a reviews service.
func NewService(db txRunner, reviews *Repository, ordersRepo *orders.Repository, users userLoader) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if reviews == nil {
		return nil, fmt.Errorf("reviews repository is required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader is required")
	}
	return &service{db: db, reviews: reviews, orders: ordersRepo, users: users}, nil
}

// Submit validates the order (owned by the client, completed, not yet
// reviewed), then creates the review and flags the order in one transaction.
func (s *service) Submit(ctx context.Context, clientID uuid.UUID, req SubmitReviewRequest) (*ReviewDTO, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	client, err := s.users.FindByID(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load client")
	}

	var created *models.Review
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		reviewsRepo := s.reviews.WithTx(tx)

		order, err := ordersRepo.FindByID(ctx, req.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order.BuyerID == nil || *order.BuyerID != clientID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "not your order")
		}
		if req.FarmerID != uuid.Nil && order.SellerID != req.FarmerID {
			return pkgerrors.New(pkgerrors.CodeValidation, "order does not belong to this farmer")
		}
		if order.Status != enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only completed orders can be reviewed")
		}
		if order.Reviewed {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already reviewed")
		}

		review := &models.Review{
			FarmerID:   order.SellerID,
			ClientID:   &clientID,
			ClientName: clientName(client),
			OrderID:    order.ID,
			Rating:     req.Rating,
		}
		if comment := strings.TrimSpace(req.Comment); comment != "" {
			review.Comment = &comment
		}

		if err := reviewsRepo.Create(ctx, review); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create review")
		}
		if err := ordersRepo.MarkReviewed(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark order reviewed")
		}

		created = review
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(created), nil
}

// ListForFarmer returns the farmer's reviews with the average rounded to
// one decimal place.
func (s *service) ListForFarmer(ctx context.Context, farmerID uuid.UUID) (*FarmerReviewsDTO, error) {
	items, err := s.reviews.ListByFarmer(ctx, farmerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reviews")
	}

	out := &FarmerReviewsDTO{
		FarmerID: farmerID,
		Count:    len(items),
		Reviews:  make([]ReviewDTO, 0, len(items)),
	}
	sum := 0
	for i := range items {
		out.Reviews = append(out.Reviews, *FromModel(&items[i]))
		sum += items[i].Rating
	}
	if out.Count > 0 {
		out.AverageRating = math.Round(float64(sum)/float64(out.Count)*10) / 10
	}
	return out, nil
}

func clientName(u *models.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
