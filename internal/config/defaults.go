package config

import "github.com/stripe/stripe-go/v82/webhook"

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		Server: ServerConfig{
			Host:               "0.0.0.0",
			Port:               8080,
			Path:               "/webhook",
			ReadTimeoutSeconds: 30,
		},
		Stripe: StripeConfig{
			ToleranceSeconds:         int(webhook.DefaultTolerance.Seconds()),
			IgnoreAPIVersionMismatch: true,
			MaxNetworkRetries:        3,
			DashboardURL:             "https://dashboard.stripe.com",
		},
		Slack: SlackConfig{
			TimeoutSeconds: 10,
		},
		Metrics: MetricsConfig{
			Enabled:  true,
			Endpoint: "/metrics",
		},
	}
}
