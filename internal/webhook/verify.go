package webhook

import (
	"time"

	"github.com/stripe/stripe-go/v82"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

// SignatureHeader carries the provider's signature token.
const SignatureHeader = "Stripe-Signature"

// VerificationError reports a request whose signature could not be verified.
// Its message is returned verbatim to the caller with a 400.
type VerificationError struct {
	Err error
}

func (e *VerificationError) Error() string { return e.Err.Error() }

func (e *VerificationError) Unwrap() error { return e.Err }

// Verifier checks Stripe webhook signatures against a signing secret.
type Verifier struct {
	Secret                   string
	Tolerance                time.Duration
	IgnoreAPIVersionMismatch bool
}

// NewVerifier returns a verifier with the SDK's default tolerance.
func NewVerifier(secret string) Verifier {
	return Verifier{
		Secret:                   secret,
		Tolerance:                stripewebhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	}
}

// Verify validates header over the exact raw body and decodes the event.
// The body must be the bytes as received; re-encoded JSON will not verify.
func (v Verifier) Verify(rawBody []byte, header string) (stripe.Event, error) {
	tolerance := v.Tolerance
	if tolerance <= 0 {
		tolerance = stripewebhook.DefaultTolerance
	}
	evt, err := stripewebhook.ConstructEventWithOptions(rawBody, header, v.Secret, stripewebhook.ConstructEventOptions{
		Tolerance:                tolerance,
		IgnoreAPIVersionMismatch: v.IgnoreAPIVersionMismatch,
	})
	if err != nil {
		return stripe.Event{}, &VerificationError{Err: err}
	}
	return evt, nil
}

// Verify is a convenience wrapper using the default tolerance.
func Verify(rawBody []byte, header, secret string) (stripe.Event, error) {
	return NewVerifier(secret).Verify(rawBody, header)
}
