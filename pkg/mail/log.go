package mail

import (
	"context"

	"github.com/paolomureddu/agrikmzero-backend/pkg/logger"
)

// LogSender records the email instead of delivering it and always succeeds.
// It terminates the chain so callers treat mail as best-effort.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, to, subject, html string) error {
	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"mail_to":      to,
			"mail_subject": subject,
		})
		s.logg.Info(ctx, "mail transport unavailable, logging instead")
	}
	return nil
}
