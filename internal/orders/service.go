package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paolomureddu/agrikmzero-backend/pkg/config"
	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
	dbtypes "github.com/paolomureddu/agrikmzero-backend/pkg/db/types"
	"github.com/paolomureddu/agrikmzero-backend/pkg/enums"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
	"github.com/paolomureddu/agrikmzero-backend/pkg/logger"
)

// Service exposes the order request workflow.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID, status *enums.OrderStatus) ([]OrderDTO, error)
	ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]OrderDTO, error)
	Transition(ctx context.Context, sellerID, orderID uuid.UUID, action enums.OrderAction) (*OrderDTO, error)
	BulkTransition(ctx context.Context, sellerID uuid.UUID, ids []uuid.UUID, action enums.OrderAction) (*BulkTransitionResult, error)
	Complete(ctx context.Context, sellerID, orderID uuid.UUID) (*OrderDTO, error)
	Reply(ctx context.Context, sellerID, orderID uuid.UUID, message string) error
}

type cartSnapshotter interface {
	SellerSnapshot(ctx context.Context, sessionID string, sellerID uuid.UUID) (dbtypes.OrderItems, error)
	ClearSeller(ctx context.Context, sessionID string, sellerID uuid.UUID) error
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Notifier receives order lifecycle events. Implementations must never
// block the request path; delivery failures stay inside the notifier.
type Notifier interface {
	OrderCreated(ctx context.Context, order *models.OrderRequest)
	OrderStatusChanged(ctx context.Context, order *models.OrderRequest)
	OrderReply(ctx context.Context, order *models.OrderRequest, message string)
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	Repo     *Repository
	Cart     cartSnapshotter
	Users    userLoader
	Notifier Notifier
	Logger   *logger.Logger
	Config   config.OrdersConfig
}

type service struct {
	repo     *Repository
	cart     cartSnapshotter
	users    userLoader
	notifier Notifier
	logg     *logger.Logger
	cfg      config.OrdersConfig
	sleep    func(time.Duration)
}

// NewService constructs an orders service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart snapshotter is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user loader is required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	cfg := params.Config
	if cfg.CreateMaxAttempts <= 0 {
		cfg.CreateMaxAttempts = 3
	}
	if cfg.CreateBackoffBase <= 0 {
		cfg.CreateBackoffBase = 500 * time.Millisecond
	}
	return &service{
		repo:     params.Repo,
		cart:     params.Cart,
		users:    params.Users,
		notifier: params.Notifier,
		logg:     params.Logger,
		cfg:      cfg,
		sleep:    time.Sleep,
	}, nil
}

// Create snapshots the seller's portion of the cart into a pending order.
// The item lines and total are computed once here and never recomputed.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller_id is required")
	}

	buyerName := strings.TrimSpace(input.BuyerName)
	buyerEmail := strings.ToLower(strings.TrimSpace(input.BuyerEmail))
	buyerPhone := strings.TrimSpace(input.BuyerPhone)

	if input.BuyerID != nil {
		buyer, err := s.users.FindByID(ctx, *input.BuyerID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load buyer")
		}
		if buyerName == "" {
			buyerName = buyer.DisplayName
		}
		if buyerEmail == "" {
			buyerEmail = buyer.Email
		}
		if buyerPhone == "" && buyer.Phone != nil {
			buyerPhone = *buyer.Phone
		}
	}
	if buyerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer name is required")
	}
	// phone-only buyers are fine; the notifier logs and drops when it has
	// no channel to reach them
	if buyerEmail == "" && buyerPhone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer email or phone is required")
	}

	var deliveryAddress *string
	if input.Delivery {
		addr := strings.TrimSpace(input.DeliveryAddress)
		if addr == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required for delivery orders")
		}
		deliveryAddress = &addr
	}

	items, err := s.cart.SellerSnapshot(ctx, input.SessionID, input.SellerID)
	if err != nil {
		return nil, err
	}

	order := &models.OrderRequest{
		SellerID:        input.SellerID,
		BuyerID:         input.BuyerID,
		BuyerName:       buyerName,
		BuyerEmail:      buyerEmail,
		BuyerPhone:      buyerPhone,
		Delivery:        input.Delivery,
		DeliveryAddress: deliveryAddress,
		Items:           items,
		TotalPrice:      items.Total().Round(2),
		Status:          enums.OrderStatusPending,
	}

	if err := s.createWithRetry(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	// post-creation work is best effort; the order already exists
	s.notifier.OrderCreated(ctx, order)
	if err := s.cart.ClearSeller(ctx, input.SessionID, input.SellerID); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "order_id", order.ID), "orders.cart_clear_failed")
	}

	return FromModel(order), nil
}

// createWithRetry retries transient persistence faults with linear backoff.
// Non-retryable failures surface immediately.
func (s *service) createWithRetry(ctx context.Context, order *models.OrderRequest) error {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.CreateMaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = s.repo.Create(ctx, order)
		if lastErr == nil {
			return nil
		}
		if !pkgerrors.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt < s.cfg.CreateMaxAttempts {
			s.sleep(s.cfg.CreateBackoffBase * time.Duration(attempt))
		}
	}
	return lastErr
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != userID && (order.BuyerID == nil || *order.BuyerID != userID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not your order")
	}
	return FromModel(order), nil
}

func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID, status *enums.OrderStatus) ([]OrderDTO, error) {
	items, err := s.repo.ListBySeller(ctx, sellerID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return FromModels(items), nil
}

func (s *service) ListForBuyer(ctx context.Context, buyerID uuid.UUID) ([]OrderDTO, error) {
	items, err := s.repo.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return FromModels(items), nil
}

// Transition applies an accept or reject decision. The seller may flip a
// decision as long as the order has not been completed; completed orders
// are terminal.
func (s *service) Transition(ctx context.Context, sellerID, orderID uuid.UUID, action enums.OrderAction) (*OrderDTO, error) {
	status, err := action.StatusFor()
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order action")
	}

	order, err := s.loadOwned(ctx, sellerID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == enums.OrderStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "completed orders cannot change")
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update status")
	}
	order.Status = status

	s.notifier.OrderStatusChanged(ctx, order)
	return FromModel(order), nil
}

// BulkTransition applies one decision to many orders at once. Only orders
// owned by the seller and still pending are touched; the result reports how
// many actually changed.
func (s *service) BulkTransition(ctx context.Context, sellerID uuid.UUID, ids []uuid.UUID, action enums.OrderAction) (*BulkTransitionResult, error) {
	status, err := action.StatusFor()
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order action")
	}
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_ids is required")
	}

	eligible, err := s.repo.FindPendingBySeller(ctx, sellerID, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pending orders")
	}
	if len(eligible) == 0 {
		return &BulkTransitionResult{Updated: 0}, nil
	}

	eligibleIDs := make([]uuid.UUID, 0, len(eligible))
	for i := range eligible {
		eligibleIDs = append(eligibleIDs, eligible[i].ID)
	}

	updated, err := s.repo.BulkUpdateStatus(ctx, sellerID, eligibleIDs, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bulk update status")
	}

	// buyers hear about bulk decisions the same way as single ones
	for i := range eligible {
		eligible[i].Status = status
		s.notifier.OrderStatusChanged(ctx, &eligible[i])
	}
	return &BulkTransitionResult{Updated: updated}, nil
}

// Complete marks an accepted order as fulfilled, which unlocks the buyer's
// review. Completion is terminal.
func (s *service) Complete(ctx context.Context, sellerID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOwned(ctx, sellerID, orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case enums.OrderStatusCompleted:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already completed")
	case enums.OrderStatusAccepted:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only accepted orders can be completed")
	}

	now := time.Now().UTC()
	if err := s.repo.MarkCompleted(ctx, order.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark completed")
	}
	order.Status = enums.OrderStatusCompleted
	order.CompletedAt = &now

	s.notifier.OrderStatusChanged(ctx, order)
	return FromModel(order), nil
}

// Reply forwards a free-text note from the farmer to the buyer.
func (s *service) Reply(ctx context.Context, sellerID, orderID uuid.UUID, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}

	order, err := s.loadOwned(ctx, sellerID, orderID)
	if err != nil {
		return err
	}

	s.notifier.OrderReply(ctx, order, message)
	return nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.OrderRequest, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func (s *service) loadOwned(ctx context.Context, sellerID, orderID uuid.UUID) (*models.OrderRequest, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not your order")
	}
	return order, nil
}
