package mail

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paolomureddu/agrikmzero-backend/pkg/config"
)

type stubSender struct {
	err   error
	calls int
}

func (s *stubSender) Send(ctx context.Context, to, subject, html string) error {
	s.calls++
	return s.err
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	first := &stubSender{}
	second := &stubSender{}
	chain := NewChain(nil, first, second)

	err := chain.Send(context.Background(), "a@example.com", "hi", "<p>hi</p>")
	require.NoError(t, err)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	first := &stubSender{err: errors.New("api down")}
	second := &stubSender{}
	chain := NewChain(nil, first, second)

	err := chain.Send(context.Background(), "a@example.com", "hi", "<p>hi</p>")
	require.NoError(t, err)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestChainAggregatesAllFailures(t *testing.T) {
	first := &stubSender{err: errors.New("api down")}
	second := &stubSender{err: errors.New("relay refused")}
	chain := NewChain(nil, first, second)

	err := chain.Send(context.Background(), "a@example.com", "hi", "<p>hi</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api down")
	assert.Contains(t, err.Error(), "relay refused")
}

func TestLogSenderAlwaysSucceeds(t *testing.T) {
	sender := NewLogSender(nil)
	require.NoError(t, sender.Send(context.Background(), "a@example.com", "hi", "<p>hi</p>"))
}

func TestNewFromConfigEndsWithLogFallback(t *testing.T) {
	chain := NewFromConfig(config.MailConfig{Provider: "log"}, nil)
	require.NoError(t, chain.Send(context.Background(), "a@example.com", "hi", "<p>hi</p>"))
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	sender := NewSMTPSender(config.MailConfig{
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		From:     "no-reply@agrikmzero.it",
		FromName: "Agri KM Zero",
	})
	sender.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr = addr
		gotFrom = from
		gotTo = to
		gotMsg = msg
		return nil
	}

	err := sender.Send(context.Background(), "buyer@example.com", "Ordine ricevuto", "<p>grazie</p>")
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "no-reply@agrikmzero.it", gotFrom)
	assert.Equal(t, []string{"buyer@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Ordine ricevuto")
	assert.Contains(t, string(gotMsg), "<p>grazie</p>")
}
