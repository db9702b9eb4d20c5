package webhook

import (
	"context"
	"log/slog"
	"strings"

	"fraudnotifier/internal/metrics"
)

// DefaultDashboardURL is the base of the provider's review deep links.
const DefaultDashboardURL = "https://dashboard.stripe.com"

// FraudAlert is what gets forwarded to chat for an early fraud warning.
type FraudAlert struct {
	EventID    string
	ChargeID   string
	ReviewLink string
}

// Notifier delivers fraud alerts to a chat destination.
type Notifier interface {
	NotifyEarlyFraudWarning(ctx context.Context, alert FraudAlert) error
}

// Dispatcher routes classified events to their handlers.
type Dispatcher struct {
	notifier     Notifier
	dashboardURL string
	logger       *slog.Logger
}

func NewDispatcher(notifier Notifier, dashboardURL string, logger *slog.Logger) *Dispatcher {
	if dashboardURL == "" {
		dashboardURL = DefaultDashboardURL
	}
	return &Dispatcher{
		notifier:     notifier,
		dashboardURL: strings.TrimRight(dashboardURL, "/"),
		logger:       logger,
	}
}

// ReviewLink returns the dashboard review page for a charge.
func ReviewLink(dashboardURL, chargeID string) string {
	return strings.TrimRight(dashboardURL, "/") + "/payments/" + chargeID + "/review"
}

// Dispatch handles one verified event. Notification failures are logged
// and never returned: the provider has already been answered by then.
func (d *Dispatcher) Dispatch(ctx context.Context, evt Event) {
	switch e := evt.(type) {
	case EarlyFraudWarningCreated:
		metrics.EventsDispatched.WithLabelValues(string(e.Type()), "true").Inc()
		d.earlyFraudWarningCreated(ctx, e)
	default:
		metrics.EventsDispatched.WithLabelValues(string(evt.Type()), "false").Inc()
		d.logger.Info("unhandled event type", "type", evt.Type(), "event_id", evt.EventID())
	}
}

func (d *Dispatcher) earlyFraudWarningCreated(ctx context.Context, e EarlyFraudWarningCreated) {
	if e.ChargeID == "" {
		d.logger.Error("early fraud warning without charge", "event_id", e.ID, "warning_id", e.WarningID)
		return
	}

	alert := FraudAlert{
		EventID:    e.ID,
		ChargeID:   e.ChargeID,
		ReviewLink: ReviewLink(d.dashboardURL, e.ChargeID),
	}
	d.logger.Info("early fraud warning created",
		"event_id", e.ID,
		"charge", e.ChargeID,
		"fraud_type", e.FraudType,
		"livemode", e.Livemode,
	)

	if err := d.notifier.NotifyEarlyFraudWarning(ctx, alert); err != nil {
		d.logger.Error("fraud warning notification failed", "event_id", e.ID, "charge", e.ChargeID, "err", err)
	}
}
