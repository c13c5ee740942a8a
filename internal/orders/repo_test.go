package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
	dbtypes "github.com/paolomureddu/agrikmzero-backend/pkg/db/types"
	"github.com/paolomureddu/agrikmzero-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS order_requests (
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL,
  buyer_id TEXT,
  buyer_name TEXT NOT NULL DEFAULT '',
  buyer_email TEXT NOT NULL DEFAULT '',
  buyer_phone TEXT NOT NULL DEFAULT '',
  delivery INTEGER NOT NULL DEFAULT 0,
  delivery_address TEXT,
  items TEXT NOT NULL DEFAULT '{}',
  total_price NUMERIC NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  completed_at DATETIME,
  reviewed INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, sellerID uuid.UUID, status enums.OrderStatus) *models.OrderRequest {
	t.Helper()
	order := &models.OrderRequest{
		ID:         uuid.New(),
		SellerID:   sellerID,
		BuyerName:  "Gavino Ledda",
		BuyerEmail: "gavino@example.com",
		Items: dbtypes.OrderItems{
			uuid.NewString(): {Name: "Pomodori", Unit: "kg", Price: decimal.NewFromFloat(2.50), Qty: 2},
		},
		TotalPrice: decimal.NewFromFloat(5.00),
		Status:     status,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller := uuid.New()
	created := seedOrder(t, db, seller, enums.OrderStatusPending)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, seller, found.SellerID)
	assert.Equal(t, enums.OrderStatusPending, found.Status)
	require.Len(t, found.Items, 1)
	assert.True(t, found.TotalPrice.Equal(decimal.NewFromFloat(5.00)))
}

func TestRepositoryListBySellerWithStatusFilter(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller := uuid.New()
	seedOrder(t, db, seller, enums.OrderStatusPending)
	seedOrder(t, db, seller, enums.OrderStatusAccepted)
	seedOrder(t, db, uuid.New(), enums.OrderStatusPending)

	all, err := repo.ListBySeller(ctx, seller, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending := enums.OrderStatusPending
	filtered, err := repo.ListBySeller(ctx, seller, &pending)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, enums.OrderStatusPending, filtered[0].Status)
}

func TestRepositoryBulkUpdateStatusSkipsForeignAndNonPending(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seller := uuid.New()
	pending := seedOrder(t, db, seller, enums.OrderStatusPending)
	accepted := seedOrder(t, db, seller, enums.OrderStatusAccepted)
	foreign := seedOrder(t, db, uuid.New(), enums.OrderStatusPending)

	updated, err := repo.BulkUpdateStatus(ctx, seller, []uuid.UUID{pending.ID, accepted.ID, foreign.ID}, enums.OrderStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	reloaded, err := repo.FindByID(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, reloaded.Status)
}

func TestRepositoryMarkCompletedAndReviewed(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := seedOrder(t, db, uuid.New(), enums.OrderStatusAccepted)
	completedAt := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, repo.MarkCompleted(ctx, order.ID, completedAt))
	require.NoError(t, repo.MarkReviewed(ctx, order.ID))

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.CompletedAt)
	assert.True(t, reloaded.Reviewed)
}
