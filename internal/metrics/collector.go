// Package metrics exposes Prometheus counters for webhook traffic and
// outbound notifications.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded on WebhookRequests.
const (
	OutcomeVerified = "verified"
	OutcomeRejected = "rejected"
	OutcomeInvalid  = "invalid"
)

var (
	WebhookRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraudnotifier_webhook_requests_total",
		Help: "Inbound webhook requests, labelled by verification outcome.",
	}, []string{"outcome"})

	EventsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraudnotifier_events_dispatched_total",
		Help: "Verified events, labelled by event type and whether a handler exists.",
	}, []string{"event_type", "handled"})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fraudnotifier_notifications_total",
		Help: "Outbound chat notifications, labelled by status.",
	}, []string{"status"})

	NotificationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fraudnotifier_notification_latency_seconds",
		Help:    "Outbound chat webhook latency in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)

// Handler renders the default registry in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
