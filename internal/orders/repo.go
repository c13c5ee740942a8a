package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
	"github.com/paolomureddu/agrikmzero-backend/pkg/enums"
)

// Repository exposes order request persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an orders repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a new order request.
func (r *Repository) Create(ctx context.Context, order *models.OrderRequest) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByID loads an order by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.OrderRequest, error) {
	var order models.OrderRequest
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListBySeller returns the seller's incoming orders, newest first,
// optionally filtered by status.
func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, status *enums.OrderStatus) ([]models.OrderRequest, error) {
	query := r.db.WithContext(ctx).Where("seller_id = ?", sellerID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var items []models.OrderRequest
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListByBuyer returns the orders placed by an authenticated buyer, newest first.
func (r *Repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.OrderRequest, error) {
	var items []models.OrderRequest
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateStatus sets the status on a single order.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// MarkCompleted stamps the order completed with its completion time.
func (r *Repository) MarkCompleted(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderRequest{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": enums.OrderStatusCompleted, "completed_at": at}).Error
}

// MarkReviewed flags the order as reviewed.
func (r *Repository) MarkReviewed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderRequest{}).
		Where("id = ?", id).
		Update("reviewed", true).Error
}

// FindPendingBySeller loads the seller's still-pending orders among the
// given ids.
func (r *Repository) FindPendingBySeller(ctx context.Context, sellerID uuid.UUID, ids []uuid.UUID) ([]models.OrderRequest, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.OrderRequest
	err := r.db.WithContext(ctx).
		Where("seller_id = ? AND status = ? AND id IN ?", sellerID, enums.OrderStatusPending, ids).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// BulkUpdateStatus moves the seller's still-pending orders among the given
// ids to the new status and reports how many rows changed. Orders that are
// not owned by the seller or no longer pending are skipped silently.
func (r *Repository) BulkUpdateStatus(ctx context.Context, sellerID uuid.UUID, ids []uuid.UUID, status enums.OrderStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.OrderRequest{}).
		Where("seller_id = ? AND status = ? AND id IN ?", sellerID, enums.OrderStatusPending, ids).
		Update("status", status)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
