package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
)

type captureMessages struct {
	mu       sync.Mutex
	messages []*models.Message
	err      error
}

func (c *captureMessages) Create(_ context.Context, message *models.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, message)
	return nil
}

type captureUsers struct {
	users map[uuid.UUID]*models.User
}

func (c *captureUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := c.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type captureMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (c *captureMailer) Send(_ context.Context, to, _, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, to)
	return nil
}

type notifyFixture struct {
	dispatcher *Dispatcher
	messages   *captureMessages
	users      *captureUsers
	mailer     *captureMailer
}

func newNotifyFixture(t *testing.T) *notifyFixture {
	t.Helper()

	f := &notifyFixture{
		messages: &captureMessages{},
		users:    &captureUsers{users: map[uuid.UUID]*models.User{}},
		mailer:   &captureMailer{},
	}
	dispatcher, err := NewDispatcher(Params{
		Messages: f.messages,
		Users:    f.users,
		Mailer:   f.mailer,
		Timeout:  time.Second,
	})
	require.NoError(t, err)
	f.dispatcher = dispatcher
	return f
}

func sampleOrder(sellerID uuid.UUID, buyerID *uuid.UUID) *models.OrderRequest {
	return &models.OrderRequest{
		ID:         uuid.New(),
		SellerID:   sellerID,
		BuyerID:    buyerID,
		BuyerName:  "Gavino",
		BuyerEmail: "gavino@example.com",
		TotalPrice: decimal.NewFromFloat(6.80),
		Status:     "pending",
	}
}

func TestOrderCreatedLinkedBuyerGoesInApp(t *testing.T) {
	f := newNotifyFixture(t)
	seller := uuid.New()
	buyer := uuid.New()

	f.dispatcher.OrderCreated(context.Background(), sampleOrder(seller, &buyer))
	f.dispatcher.Wait()

	require.Len(t, f.messages.messages, 1)
	assert.Equal(t, buyer, f.messages.messages[0].SenderID)
	assert.Equal(t, seller, f.messages.messages[0].RecipientID)
	assert.Empty(t, f.mailer.sent)
}

func TestOrderCreatedGuestEmailsSeller(t *testing.T) {
	f := newNotifyFixture(t)
	seller := &models.User{ID: uuid.New(), Email: "farmer@example.com"}
	f.users.users[seller.ID] = seller

	f.dispatcher.OrderCreated(context.Background(), sampleOrder(seller.ID, nil))
	f.dispatcher.Wait()

	assert.Empty(t, f.messages.messages)
	assert.Equal(t, []string{"farmer@example.com"}, f.mailer.sent)
}

func TestOrderStatusChangedGuestEmailsBuyer(t *testing.T) {
	f := newNotifyFixture(t)
	order := sampleOrder(uuid.New(), nil)
	order.Status = "accepted"

	f.dispatcher.OrderStatusChanged(context.Background(), order)
	f.dispatcher.Wait()

	assert.Equal(t, []string{"gavino@example.com"}, f.mailer.sent)
}

func TestOrderStatusChangedNoChannelDropsSilently(t *testing.T) {
	f := newNotifyFixture(t)
	order := sampleOrder(uuid.New(), nil)
	order.BuyerEmail = ""

	f.dispatcher.OrderStatusChanged(context.Background(), order)
	f.dispatcher.Wait()

	assert.Empty(t, f.messages.messages)
	assert.Empty(t, f.mailer.sent)
}

func TestDeliveryFailuresNeverPanicOrSurface(t *testing.T) {
	f := newNotifyFixture(t)
	f.messages.err = errors.New("db down")
	f.mailer.err = errors.New("smtp down")
	buyer := uuid.New()

	f.dispatcher.OrderCreated(context.Background(), sampleOrder(uuid.New(), &buyer))
	f.dispatcher.OrderStatusChanged(context.Background(), sampleOrder(uuid.New(), nil))
	f.dispatcher.Wait()

	assert.Empty(t, f.messages.messages)
	assert.Empty(t, f.mailer.sent)
}

func TestOrderReplyLinkedBuyerGoesInApp(t *testing.T) {
	f := newNotifyFixture(t)
	seller := uuid.New()
	buyer := uuid.New()

	f.dispatcher.OrderReply(context.Background(), sampleOrder(seller, &buyer), "Consegno sabato")
	f.dispatcher.Wait()

	require.Len(t, f.messages.messages, 1)
	assert.Equal(t, seller, f.messages.messages[0].SenderID)
	assert.Equal(t, buyer, f.messages.messages[0].RecipientID)
	assert.Equal(t, "Consegno sabato", f.messages.messages[0].Content)
}
