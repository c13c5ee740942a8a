package mail

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/paolomureddu/agrikmzero-backend/pkg/config"
)

// SendgridSender delivers through the SendGrid v3 API.
type SendgridSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

func NewSendgridSender(cfg config.MailConfig) *SendgridSender {
	return &SendgridSender{
		client:   sendgrid.NewSendClient(cfg.SendgridAPIKey),
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

func (s *SendgridSender) Send(ctx context.Context, to, subject, html string) error {
	from := sgmail.NewEmail(s.fromName, s.from)
	recipient := sgmail.NewEmail("", to)
	message := sgmail.NewSingleEmail(from, subject, recipient, "", html)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
