package webhook

import (
	"encoding/json"
	"testing"

	"github.com/stripe/stripe-go/v82"
)

func decodeEvent(t *testing.T, raw string) stripe.Event {
	t.Helper()
	var evt stripe.Event
	if err := json.Unmarshal([]byte(raw), &evt); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	return evt
}

func TestClassify_EarlyFraudWarning(t *testing.T) {
	got, err := Classify(decodeEvent(t, fraudWarningBody))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	efw, ok := got.(EarlyFraudWarningCreated)
	if !ok {
		t.Fatalf("expected EarlyFraudWarningCreated, got %T", got)
	}
	if efw.ChargeID != "ch_123" {
		t.Errorf("expected charge ch_123, got %q", efw.ChargeID)
	}
	if efw.WarningID != "issfr_1" {
		t.Errorf("expected warning issfr_1, got %q", efw.WarningID)
	}
	if efw.FraudType != "unauthorized_use_of_card" {
		t.Errorf("unexpected fraud type %q", efw.FraudType)
	}
	if efw.EventID() != "evt_1" {
		t.Errorf("expected evt_1, got %q", efw.EventID())
	}
}

func TestClassify_ExpandedCharge(t *testing.T) {
	raw := `{"id":"evt_2","type":"radar.early_fraud_warning.created","data":{"object":{"id":"issfr_2","charge":{"id":"ch_expanded","object":"charge"}}}}`
	got, err := Classify(decodeEvent(t, raw))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if efw := got.(EarlyFraudWarningCreated); efw.ChargeID != "ch_expanded" {
		t.Fatalf("expected ch_expanded, got %q", efw.ChargeID)
	}
}

func TestClassify_MissingCharge(t *testing.T) {
	raw := `{"id":"evt_3","type":"radar.early_fraud_warning.created","data":{"object":{"id":"issfr_3"}}}`
	got, err := Classify(decodeEvent(t, raw))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if efw := got.(EarlyFraudWarningCreated); efw.ChargeID != "" {
		t.Fatalf("expected empty charge, got %q", efw.ChargeID)
	}
}

func TestClassify_OtherTypeIsUnhandled(t *testing.T) {
	raw := `{"id":"evt_4","type":"charge.succeeded","data":{"object":{"id":"ch_1"}}}`
	got, err := Classify(decodeEvent(t, raw))
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	u, ok := got.(Unhandled)
	if !ok {
		t.Fatalf("expected Unhandled, got %T", got)
	}
	if u.Type() != "charge.succeeded" {
		t.Errorf("unexpected type %q", u.Type())
	}
}

func TestClassify_MissingData(t *testing.T) {
	evt := stripe.Event{ID: "evt_5", Type: stripe.EventTypeRadarEarlyFraudWarningCreated}
	if _, err := Classify(evt); err == nil {
		t.Fatal("expected error for missing data")
	}
}
