package mail

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/paolomureddu/agrikmzero-backend/pkg/config"
	"github.com/paolomureddu/agrikmzero-backend/pkg/logger"
)

// Sender delivers one transactional email.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Chain tries each sender in order until one succeeds. The log sender sits at
// the end and always succeeds, so auth and order flows never block on email
// delivery.
type Chain struct {
	senders []Sender
	logg    *logger.Logger
}

// NewFromConfig assembles the delivery chain from configuration. An explicit
// provider override pins the chain to a single transport (plus the log
// fallback); otherwise every configured transport participates.
func NewFromConfig(cfg config.MailConfig, logg *logger.Logger) *Chain {
	var senders []Sender

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case "sendgrid":
		if cfg.SendgridAPIKey != "" {
			senders = append(senders, NewSendgridSender(cfg))
		}
	case "smtp":
		if cfg.SMTPHost != "" {
			senders = append(senders, NewSMTPSender(cfg))
		}
	case "log", "none":
		// log fallback only
	default:
		if cfg.SendgridAPIKey != "" {
			senders = append(senders, NewSendgridSender(cfg))
		}
		if cfg.SMTPHost != "" {
			senders = append(senders, NewSMTPSender(cfg))
		}
	}

	senders = append(senders, NewLogSender(logg))
	return &Chain{senders: senders, logg: logg}
}

// NewChain builds a chain from explicit senders, appending nothing. Used by tests.
func NewChain(logg *logger.Logger, senders ...Sender) *Chain {
	return &Chain{senders: senders, logg: logg}
}

// Send walks the chain. Errors from failed transports are aggregated and
// logged; a later success clears them.
func (c *Chain) Send(ctx context.Context, to, subject, html string) error {
	if len(c.senders) == 0 {
		return fmt.Errorf("no mail senders configured")
	}

	var errs error
	for _, s := range c.senders {
		err := s.Send(ctx, to, subject, html)
		if err == nil {
			if errs != nil && c.logg != nil {
				c.logg.Warn(ctx, fmt.Sprintf("mail delivered after transport failures: %v", errs))
			}
			return nil
		}
		errs = multierr.Append(errs, err)
	}
	return errs
}
