package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
	dbtypes "github.com/paolomureddu/agrikmzero-backend/pkg/db/types"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
)

// QtyAction selects how UpdateQty mutates the line quantity.
type QtyAction string

const (
	QtyIncrement QtyAction = "increment"
	QtyDecrement QtyAction = "decrement"
	QtySet       QtyAction = "set"
)

// Service exposes the session cart operations.
type Service interface {
	Get(ctx context.Context, sessionID string) (*CartDTO, error)
	AddItem(ctx context.Context, sessionID string, productID uuid.UUID, qty int) (*CartDTO, error)
	RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*CartDTO, error)
	UpdateQty(ctx context.Context, sessionID string, productID uuid.UUID, action QtyAction, qty int) (*CartDTO, error)
	Clear(ctx context.Context, sessionID string) error
	SellerSnapshot(ctx context.Context, sessionID string, sellerID uuid.UUID) (dbtypes.OrderItems, error)
	ClearSeller(ctx context.Context, sessionID string, sellerID uuid.UUID) error
}

type cartStore interface {
	Load(ctx context.Context, sessionID string) (Cart, error)
	Save(ctx context.Context, sessionID string, cart Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	store    cartStore
	products productLoader
}

// NewService constructs the cart service.
func NewService(store cartStore, products productLoader) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader is required")
	}
	return &service{store: store, products: products}, nil
}

func (s *service) Get(ctx context.Context, sessionID string) (*CartDTO, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return cart.Render(), nil
}

// AddItem snapshots the product's name, unit and price at add time and sums
// the quantity onto any existing line. Quantities below one count as one.
func (s *service) AddItem(ctx context.Context, sessionID string, productID uuid.UUID, qty int) (*CartDTO, error) {
	if qty < 1 {
		qty = 1
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sellerKey := product.UserID.String()
	productKey := product.ID.String()
	items, ok := cart[sellerKey]
	if !ok {
		items = dbtypes.OrderItems{}
		cart[sellerKey] = items
	}

	line, exists := items[productKey]
	if exists {
		line.Qty += qty
	} else {
		line = dbtypes.OrderLine{
			Name:  product.Name,
			Unit:  product.Unit.String(),
			Price: product.Price,
			Qty:   qty,
		}
	}
	items[productKey] = line

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart")
	}
	return cart.Render(), nil
}

func (s *service) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*CartDTO, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !cart.RemoveLine(productID.String()) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart")
	}
	return cart.Render(), nil
}

// UpdateQty adjusts an existing line. Quantities never drop below one;
// removing a line goes through RemoveItem instead.
func (s *service) UpdateQty(ctx context.Context, sessionID string, productID uuid.UUID, action QtyAction, qty int) (*CartDTO, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	productKey := productID.String()
	sellerKey, line, ok := cart.Line(productKey)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}

	switch action {
	case QtyIncrement:
		line.Qty++
	case QtyDecrement:
		if line.Qty > 1 {
			line.Qty--
		}
	case QtySet:
		if qty < 1 {
			qty = 1
		}
		line.Qty = qty
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid quantity action")
	}

	cart[sellerKey][productKey] = line

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart")
	}
	return cart.Render(), nil
}

func (s *service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

// SellerSnapshot returns a copy of the seller's lines for order creation.
func (s *service) SellerSnapshot(ctx context.Context, sessionID string, sellerID uuid.UUID) (dbtypes.OrderItems, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	items, ok := cart[sellerID.String()]
	if !ok || len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items for this seller in cart")
	}

	snapshot := make(dbtypes.OrderItems, len(items))
	for productID, line := range items {
		snapshot[productID] = line
	}
	return snapshot, nil
}

// ClearSeller drops the seller's group after their order request was created.
func (s *service) ClearSeller(ctx context.Context, sessionID string, sellerID uuid.UUID) error {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	delete(cart, sellerID.String())

	if err := s.store.Save(ctx, sessionID, cart); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save cart")
	}
	return nil
}

func (s *service) load(ctx context.Context, sessionID string) (Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	cart, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return cart, nil
}
