package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
	"github.com/paolomureddu/agrikmzero-backend/pkg/enums"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
)

type memoryCartStore struct {
	carts map[string]Cart
}

func newMemoryCartStore() *memoryCartStore {
	return &memoryCartStore{carts: map[string]Cart{}}
}

func (m *memoryCartStore) Load(_ context.Context, sessionID string) (Cart, error) {
	if cart, ok := m.carts[sessionID]; ok {
		return cart, nil
	}
	return Cart{}, nil
}

func (m *memoryCartStore) Save(_ context.Context, sessionID string, cart Cart) error {
	m.carts[sessionID] = cart
	return nil
}

func (m *memoryCartStore) Delete(_ context.Context, sessionID string) error {
	delete(m.carts, sessionID)
	return nil
}

type stubProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newCartFixture(t *testing.T) (Service, *memoryCartStore, *models.Product, *models.Product) {
	t.Helper()

	seller := uuid.New()
	tomatoes := &models.Product{
		ID:     uuid.New(),
		UserID: seller,
		Name:   "Pomodori",
		Price:  decimal.NewFromFloat(2.50),
		Unit:   enums.ProductUnitKg,
	}
	crates := &models.Product{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Name:   "Cassetta mista",
		Price:  decimal.NewFromInt(15),
		Unit:   enums.ProductUnitCrate,
	}

	store := newMemoryCartStore()
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{
		tomatoes.ID: tomatoes,
		crates.ID:   crates,
	}}
	svc, err := NewService(store, loader)
	require.NoError(t, err)
	return svc, store, tomatoes, crates
}

func TestAddItemSnapshotsAndSums(t *testing.T) {
	svc, _, tomatoes, _ := newCartFixture(t)
	ctx := context.Background()

	dto, err := svc.AddItem(ctx, "sess", tomatoes.ID, 2)
	require.NoError(t, err)
	require.Len(t, dto.Sellers, 1)
	assert.Equal(t, 2, dto.ItemCount)

	// adding again sums onto the existing line
	dto, err = svc.AddItem(ctx, "sess", tomatoes.ID, 3)
	require.NoError(t, err)
	require.Len(t, dto.Sellers[0].Items, 1)
	assert.Equal(t, 5, dto.Sellers[0].Items[0].Qty)
	assert.True(t, dto.Total.Equal(decimal.NewFromFloat(12.50)), "got %s", dto.Total)
}

func TestAddItemInvalidQtyCountsAsOne(t *testing.T) {
	svc, _, tomatoes, _ := newCartFixture(t)

	dto, err := svc.AddItem(context.Background(), "sess", tomatoes.ID, -4)
	require.NoError(t, err)
	assert.Equal(t, 1, dto.Sellers[0].Items[0].Qty)
}

func TestAddItemUnknownProductLeavesCartUntouched(t *testing.T) {
	svc, _, tomatoes, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", tomatoes.ID, 1)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "sess", uuid.New(), 1)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	dto, err := svc.Get(ctx, "sess")
	require.NoError(t, err)
	assert.Equal(t, 1, dto.ItemCount)
}

func TestCartGroupsBySeller(t *testing.T) {
	svc, _, tomatoes, crates := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", tomatoes.ID, 2)
	require.NoError(t, err)
	dto, err := svc.AddItem(ctx, "sess", crates.ID, 1)
	require.NoError(t, err)

	require.Len(t, dto.Sellers, 2)
	assert.True(t, dto.Total.Equal(decimal.NewFromFloat(20.00)), "got %s", dto.Total)
}

func TestRemoveItemPrunesEmptySellerGroup(t *testing.T) {
	svc, _, tomatoes, crates := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", tomatoes.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "sess", crates.ID, 1)
	require.NoError(t, err)

	dto, err := svc.RemoveItem(ctx, "sess", crates.ID)
	require.NoError(t, err)
	require.Len(t, dto.Sellers, 1)
	assert.Equal(t, tomatoes.UserID.String(), dto.Sellers[0].SellerID)

	_, err = svc.RemoveItem(ctx, "sess", crates.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateQty(t *testing.T) {
	svc, _, tomatoes, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", tomatoes.ID, 1)
	require.NoError(t, err)

	dto, err := svc.UpdateQty(ctx, "sess", tomatoes.ID, QtyIncrement, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, dto.Sellers[0].Items[0].Qty)

	dto, err = svc.UpdateQty(ctx, "sess", tomatoes.ID, QtyDecrement, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, dto.Sellers[0].Items[0].Qty)

	// decrement never drops below one
	dto, err = svc.UpdateQty(ctx, "sess", tomatoes.ID, QtyDecrement, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, dto.Sellers[0].Items[0].Qty)

	dto, err = svc.UpdateQty(ctx, "sess", tomatoes.ID, QtySet, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, dto.Sellers[0].Items[0].Qty)

	// set clamps to a minimum of one
	dto, err = svc.UpdateQty(ctx, "sess", tomatoes.ID, QtySet, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, dto.Sellers[0].Items[0].Qty)

	_, err = svc.UpdateQty(ctx, "sess", tomatoes.ID, QtyAction("halve"), 0)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.UpdateQty(ctx, "sess", uuid.New(), QtyIncrement, 0)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestSellerSnapshotAndClearSeller(t *testing.T) {
	svc, _, tomatoes, crates := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", tomatoes.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "sess", crates.ID, 1)
	require.NoError(t, err)

	snapshot, err := svc.SellerSnapshot(ctx, "sess", tomatoes.UserID)
	require.NoError(t, err)
	require.Len(t, snapshot, 1)
	assert.True(t, snapshot.Total().Equal(decimal.NewFromFloat(5.00)))

	_, err = svc.SellerSnapshot(ctx, "sess", uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	require.NoError(t, svc.ClearSeller(ctx, "sess", tomatoes.UserID))
	dto, err := svc.Get(ctx, "sess")
	require.NoError(t, err)
	require.Len(t, dto.Sellers, 1)
	assert.Equal(t, crates.UserID.String(), dto.Sellers[0].SellerID)
}

func TestClear(t *testing.T) {
	svc, store, tomatoes, _ := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess", tomatoes.ID, 2)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "sess"))

	assert.NotContains(t, store.carts, "sess")
}

func TestEmptySessionRejected(t *testing.T) {
	svc, _, _, _ := newCartFixture(t)

	_, err := svc.Get(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
