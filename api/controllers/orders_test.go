package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paolomureddu/agrikmzero-backend/api/middleware"
	ordersvc "github.com/paolomureddu/agrikmzero-backend/internal/orders"
	"github.com/paolomureddu/agrikmzero-backend/pkg/enums"
	pkgerrors "github.com/paolomureddu/agrikmzero-backend/pkg/errors"
)

type stubOrdersService struct {
	order  *ordersvc.OrderDTO
	orders []ordersvc.OrderDTO
	bulk   *ordersvc.BulkTransitionResult
	err    error

	lastAction enums.OrderAction
}

func (s *stubOrdersService) Create(context.Context, ordersvc.CreateOrderInput) (*ordersvc.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrdersService) Get(context.Context, uuid.UUID, uuid.UUID) (*ordersvc.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrdersService) ListForSeller(context.Context, uuid.UUID, *enums.OrderStatus) ([]ordersvc.OrderDTO, error) {
	return s.orders, s.err
}

func (s *stubOrdersService) ListForBuyer(context.Context, uuid.UUID) ([]ordersvc.OrderDTO, error) {
	return s.orders, s.err
}

func (s *stubOrdersService) Transition(_ context.Context, _, _ uuid.UUID, action enums.OrderAction) (*ordersvc.OrderDTO, error) {
	s.lastAction = action
	return s.order, s.err
}

func (s *stubOrdersService) BulkTransition(context.Context, uuid.UUID, []uuid.UUID, enums.OrderAction) (*ordersvc.BulkTransitionResult, error) {
	return s.bulk, s.err
}

func (s *stubOrdersService) Complete(context.Context, uuid.UUID, uuid.UUID) (*ordersvc.OrderDTO, error) {
	return s.order, s.err
}

func (s *stubOrdersService) Reply(context.Context, uuid.UUID, uuid.UUID, string) error {
	return s.err
}

func farmerRequest(req *http.Request) *http.Request {
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithIsFarmer(ctx, true)
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestOrderDecisionAccept(t *testing.T) {
	svc := &stubOrdersService{order: &ordersvc.OrderDTO{ID: uuid.New(), Status: enums.OrderStatusAccepted}}
	handler := OrderDecision(svc, enums.OrderActionAccept, nil)

	req := farmerRequest(httptest.NewRequest(http.MethodPost, "/api/v1/orders/x/accept", nil))
	req = withURLParam(req, "orderId", uuid.NewString())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastAction != enums.OrderActionAccept {
		t.Fatalf("unexpected action: %s", svc.lastAction)
	}
}

func TestOrderDecisionRequiresFarmer(t *testing.T) {
	handler := OrderDecision(&stubOrdersService{}, enums.OrderActionAccept, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/x/accept", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = withURLParam(req, "orderId", uuid.NewString())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestOrderCreateGuestPassesNilBuyer(t *testing.T) {
	svc := &stubOrdersService{order: &ordersvc.OrderDTO{ID: uuid.New(), Status: enums.OrderStatusPending}}
	handler := OrderCreate(svc, nil)

	body, _ := json.Marshal(map[string]any{
		"buyer_name":  "Mario Rossi",
		"buyer_email": "mario@example.com",
	})
	req := withCartSession(httptest.NewRequest(http.MethodPost, "/api/v1/orders/create/x", bytes.NewReader(body)))
	req = withURLParam(req, "sellerId", uuid.NewString())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestOrderListBadStatusFilter(t *testing.T) {
	handler := OrderList(&stubOrdersService{}, nil)

	req := farmerRequest(httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=bogus", nil))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestOrderListSentViewForClient(t *testing.T) {
	svc := &stubOrdersService{orders: []ordersvc.OrderDTO{{ID: uuid.New()}}}
	handler := OrderList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data []ordersvc.OrderDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected one order, got %d", len(envelope.Data))
	}
}

func TestOrderListReceivedViewForbiddenForClient(t *testing.T) {
	handler := OrderList(&stubOrdersService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?view=received", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestOrderCompleteStateConflict(t *testing.T) {
	svc := &stubOrdersService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "only accepted orders can be completed")}
	handler := OrderComplete(svc, nil)

	req := farmerRequest(httptest.NewRequest(http.MethodPost, "/api/orders/received/x/complete", nil))
	req = withURLParam(req, "orderId", uuid.NewString())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
