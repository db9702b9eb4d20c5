// Package notify posts fraud alerts to a Slack incoming webhook.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"fraudnotifier/internal/metrics"
	"fraudnotifier/internal/webhook"

	"github.com/slack-go/slack"
)

const earlyFraudWarningHeader = "*Early Fraud warning created*"

// Slack implements webhook.Notifier for a Slack incoming webhook.
type Slack struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
}

// SlackConfig configures the Slack notifier.
type SlackConfig struct {
	WebhookURL string
	Timeout    time.Duration
	Client     *http.Client // optional, overrides Timeout
	Logger     *slog.Logger
}

// NewSlack creates a new Slack notifier.
func NewSlack(cfg SlackConfig) *Slack {
	client := cfg.Client
	if client == nil {
		client = SharedHTTPClient(cfg.Timeout)
	}
	return &Slack{
		webhookURL: cfg.WebhookURL,
		client:     client,
		logger:     cfg.Logger,
	}
}

var _ webhook.Notifier = (*Slack)(nil)

// NotifyEarlyFraudWarning posts the alert once. There is no retry.
func (s *Slack) NotifyEarlyFraudWarning(ctx context.Context, alert webhook.FraudAlert) error {
	msg := EarlyFraudWarningMessage(alert.ReviewLink)

	start := time.Now()
	err := slack.PostWebhookCustomHTTPContext(ctx, s.webhookURL, s.client, msg)
	metrics.NotificationLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.NotificationsSent.WithLabelValues("failed").Inc()
		return fmt.Errorf("slack webhook: %w", err)
	}

	metrics.NotificationsSent.WithLabelValues("sent").Inc()
	s.logger.Info("fraud warning posted to slack", "event_id", alert.EventID, "charge", alert.ChargeID)
	return nil
}

// EarlyFraudWarningMessage builds the two-block message: a bold header line and a link line.
func EarlyFraudWarningMessage(reviewLink string) *slack.WebhookMessage {
	return &slack.WebhookMessage{
		Blocks: &slack.Blocks{
			BlockSet: []slack.Block{
				markdownSection(earlyFraudWarningHeader),
				markdownSection(fmt.Sprintf("<%s|View details>", reviewLink)),
			},
		},
	}
}

func markdownSection(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}
