package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Notification channel and outcome label values.
const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
	ChannelNone  = "none"

	OutcomeSent    = "sent"
	OutcomeDropped = "dropped"
	OutcomeFailed  = "failed"
)

// NotificationMetrics counts dispatcher outcomes per channel.
type NotificationMetrics struct {
	dispatched *prometheus.CounterVec
}

// NewNotificationMetrics registers the dispatch counter on the provided registerer.
func NewNotificationMetrics(reg prometheus.Registerer) *NotificationMetrics {
	if reg == nil {
		return &NotificationMetrics{}
	}
	dispatched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_dispatch_total",
		Help: "Order notification dispatch attempts by channel and outcome.",
	}, []string{"channel", "outcome"})
	reg.MustRegister(dispatched)
	return &NotificationMetrics{dispatched: dispatched}
}

// Inc records one dispatch outcome.
func (m *NotificationMetrics) Inc(channel, outcome string) {
	if m == nil || m.dispatched == nil {
		return
	}
	if channel == "" {
		channel = ChannelNone
	}
	if outcome == "" {
		outcome = OutcomeFailed
	}
	m.dispatched.WithLabelValues(channel, outcome).Inc()
}
