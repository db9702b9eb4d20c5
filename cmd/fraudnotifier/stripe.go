package main

import (
	"fraudnotifier/internal/config"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/balance"
)

// configureStripe sets the API key and retry budget on the shared Stripe backend.
// Signature verification is local; the key is only used for API calls such as doctor's check.
func configureStripe(cfg config.StripeConfig) {
	stripe.Key = cfg.APIKey
	stripe.SetBackend(stripe.APIBackend, stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(int64(cfg.MaxNetworkRetries)),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelError},
	}))
}

// checkStripeAPI confirms the API key is accepted by retrieving the account balance.
func checkStripeAPI() (livemode bool, err error) {
	b, err := balance.Get(nil)
	if err != nil {
		return false, err
	}
	return b.Livemode, nil
}
