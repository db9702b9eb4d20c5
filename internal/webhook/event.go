package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v82"
)

// Event is the closed set of event variants the dispatcher understands.
// New provider event types are added as new variants plus a case in Classify.
type Event interface {
	EventID() string
	Type() stripe.EventType
	sealed()
}

// EarlyFraudWarningCreated is a radar.early_fraud_warning.created event.
type EarlyFraudWarningCreated struct {
	ID        string
	WarningID string
	ChargeID  string
	FraudType string
	Livemode  bool
}

func (e EarlyFraudWarningCreated) EventID() string { return e.ID }

func (e EarlyFraudWarningCreated) Type() stripe.EventType {
	return stripe.EventTypeRadarEarlyFraudWarningCreated
}

func (EarlyFraudWarningCreated) sealed() {}

// Unhandled is any verified event without a dedicated variant.
type Unhandled struct {
	ID        string
	EventType stripe.EventType
}

func (e Unhandled) EventID() string { return e.ID }

func (e Unhandled) Type() stripe.EventType { return e.EventType }

func (Unhandled) sealed() {}

// Classify maps a verified Stripe event onto its variant.
func Classify(evt stripe.Event) (Event, error) {
	switch evt.Type {
	case stripe.EventTypeRadarEarlyFraudWarningCreated:
		if evt.Data == nil {
			return nil, fmt.Errorf("event %s: missing data object", evt.ID)
		}
		var warning stripe.RadarEarlyFraudWarning
		if err := json.Unmarshal(evt.Data.Raw, &warning); err != nil {
			return nil, fmt.Errorf("event %s: decode early fraud warning: %w", evt.ID, err)
		}
		out := EarlyFraudWarningCreated{
			ID:        evt.ID,
			WarningID: warning.ID,
			FraudType: string(warning.FraudType),
			Livemode:  evt.Livemode,
		}
		// charge is expandable: either an id string or a full object.
		if warning.Charge != nil {
			out.ChargeID = warning.Charge.ID
		}
		return out, nil
	default:
		return Unhandled{ID: evt.ID, EventType: evt.Type}, nil
	}
}
