package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/paolomureddu/agrikmzero-backend/pkg/db/models"
	"github.com/paolomureddu/agrikmzero-backend/pkg/logger"
	"github.com/paolomureddu/agrikmzero-backend/pkg/metrics"
)

// Dispatcher delivers order lifecycle notifications off the request path.
// Channel policy: when both parties have linked accounts the notification
// lands as an in-app message; otherwise it goes out by email; with no
// address at all it is logged and dropped. Delivery failures never reach
// the caller.
type Dispatcher struct {
	messages messageCreator
	users    userLoader
	mailer   mailSender
	metrics  *metrics.NotificationMetrics
	logg     *logger.Logger
	timeout  time.Duration

	wg sync.WaitGroup
}

type messageCreator interface {
	Create(ctx context.Context, message *models.Message) error
}

type userLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type mailSender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Params bundles the dispatcher dependencies.
type Params struct {
	Messages messageCreator
	Users    userLoader
	Mailer   mailSender
	Metrics  *metrics.NotificationMetrics
	Logger   *logger.Logger
	Timeout  time.Duration
}

// NewDispatcher constructs the notification dispatcher.
func NewDispatcher(params Params) (*Dispatcher, error) {
	if params.Messages == nil {
		return nil, fmt.Errorf("message creator is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user loader is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mail sender is required")
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		messages: params.Messages,
		users:    params.Users,
		mailer:   params.Mailer,
		metrics:  params.Metrics,
		logg:     params.Logger,
		timeout:  timeout,
	}, nil
}

// OrderCreated notifies the seller about a fresh order request.
func (d *Dispatcher) OrderCreated(ctx context.Context, order *models.OrderRequest) {
	snapshot := *order
	d.async(func(ctx context.Context) {
		d.notifySeller(ctx, &snapshot,
			"Nuova richiesta d'ordine",
			fmt.Sprintf("Hai ricevuto una nuova richiesta d'ordine da %s per un totale di %s euro.",
				snapshot.BuyerName, snapshot.TotalPrice.StringFixed(2)))
	})
}

// OrderStatusChanged notifies the buyer about an accept/reject/complete decision.
func (d *Dispatcher) OrderStatusChanged(ctx context.Context, order *models.OrderRequest) {
	snapshot := *order
	d.async(func(ctx context.Context) {
		d.notifyBuyer(ctx, &snapshot,
			"Aggiornamento sul tuo ordine",
			fmt.Sprintf("Il tuo ordine è ora nello stato: %s.", statusLabel(snapshot)))
	})
}

// OrderReply forwards a free-text note from the farmer to the buyer.
func (d *Dispatcher) OrderReply(ctx context.Context, order *models.OrderRequest, message string) {
	snapshot := *order
	d.async(func(ctx context.Context) {
		d.notifyBuyer(ctx, &snapshot, "Messaggio dal produttore", message)
	})
}

// Wait blocks until every in-flight notification finished. Used on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) async(fn func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil && d.logg != nil {
				d.logg.Error(context.Background(), "notify.panic", fmt.Errorf("%v", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		fn(ctx)
	}()
}

// notifySeller targets the farmer. In-app delivery needs a linked buyer as
// the message sender; guest orders fall back to emailing the farmer.
func (d *Dispatcher) notifySeller(ctx context.Context, order *models.OrderRequest, subject, body string) {
	if order.BuyerID != nil {
		d.deliverInApp(ctx, *order.BuyerID, order.SellerID, body)
		return
	}

	seller, err := d.users.FindByID(ctx, order.SellerID)
	if err != nil {
		d.drop(ctx, order.ID, "seller lookup failed")
		return
	}
	d.deliverEmail(ctx, seller.Email, subject, body, order.ID)
}

// notifyBuyer targets whoever placed the order.
func (d *Dispatcher) notifyBuyer(ctx context.Context, order *models.OrderRequest, subject, body string) {
	if order.BuyerID != nil {
		d.deliverInApp(ctx, order.SellerID, *order.BuyerID, body)
		return
	}
	if order.BuyerEmail != "" {
		d.deliverEmail(ctx, order.BuyerEmail, subject, body, order.ID)
		return
	}
	d.drop(ctx, order.ID, "no delivery channel")
}

func (d *Dispatcher) deliverInApp(ctx context.Context, senderID, recipientID uuid.UUID, body string) {
	message := &models.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     body,
	}
	if err := d.messages.Create(ctx, message); err != nil {
		d.count(metrics.ChannelInApp, metrics.OutcomeFailed)
		if d.logg != nil {
			d.logg.Warn(d.logg.WithField(ctx, "recipient_id", recipientID), "notify.in_app_failed")
		}
		return
	}
	d.count(metrics.ChannelInApp, metrics.OutcomeSent)
}

func (d *Dispatcher) deliverEmail(ctx context.Context, to, subject, body string, orderID uuid.UUID) {
	html := fmt.Sprintf("<p>%s</p>", body)
	if err := d.mailer.Send(ctx, to, subject, html); err != nil {
		d.count(metrics.ChannelEmail, metrics.OutcomeFailed)
		if d.logg != nil {
			d.logg.Warn(d.logg.WithField(ctx, "order_id", orderID), "notify.email_failed")
		}
		return
	}
	d.count(metrics.ChannelEmail, metrics.OutcomeSent)
}

func (d *Dispatcher) drop(ctx context.Context, orderID uuid.UUID, reason string) {
	d.count(metrics.ChannelNone, metrics.OutcomeDropped)
	if d.logg != nil {
		ctx = d.logg.WithFields(ctx, map[string]any{"order_id": orderID, "reason": reason})
		d.logg.Warn(ctx, "notify.dropped")
	}
}

func (d *Dispatcher) count(channel, outcome string) {
	if d.metrics != nil {
		d.metrics.Inc(channel, outcome)
	}
}

func statusLabel(order models.OrderRequest) string {
	switch order.Status {
	case "accepted":
		return "accettato"
	case "rejected":
		return "rifiutato"
	case "completed":
		return "completato"
	default:
		return order.Status.String()
	}
}
