package webhook

import (
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

const testSecret = "whsec_test_secret"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func signPayload(body []byte, secret string, at time.Time) string {
	return stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload:   body,
		Secret:    secret,
		Timestamp: at,
	}).Header
}

const fraudWarningBody = `{
  "id": "evt_1",
  "object": "event",
  "type": "radar.early_fraud_warning.created",
  "livemode": false,
  "data": {
    "object": {
      "id": "issfr_1",
      "object": "radar.early_fraud_warning",
      "charge": "ch_123",
      "fraud_type": "unauthorized_use_of_card"
    }
  }
}`

func TestVerify_Valid(t *testing.T) {
	body := []byte(fraudWarningBody)
	evt, err := Verify(body, signPayload(body, testSecret, time.Now()), testSecret)
	if err != nil {
		t.Fatalf("valid signature should verify: %v", err)
	}
	if evt.ID != "evt_1" {
		t.Errorf("expected evt_1, got %s", evt.ID)
	}
	if evt.Type != "radar.early_fraud_warning.created" {
		t.Errorf("unexpected type %s", evt.Type)
	}
}

func TestVerify_MissingHeader(t *testing.T) {
	_, err := Verify([]byte(fraudWarningBody), "", testSecret)
	var verr *VerificationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected VerificationError, got %v", err)
	}
	if !errors.Is(err, stripewebhook.ErrNotSigned) {
		t.Errorf("expected ErrNotSigned, got %v", err)
	}
}

func TestVerify_MalformedHeader(t *testing.T) {
	_, err := Verify([]byte(fraudWarningBody), "garbage", testSecret)
	if !errors.Is(err, stripewebhook.ErrInvalidHeader) {
		t.Fatalf("expected ErrInvalidHeader, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	body := []byte(fraudWarningBody)
	_, err := Verify(body, signPayload(body, "whsec_other", time.Now()), testSecret)
	if !errors.Is(err, stripewebhook.ErrNoValidSignature) {
		t.Fatalf("expected ErrNoValidSignature, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	body := []byte(fraudWarningBody)
	_, err := Verify(body, signPayload(body, testSecret, time.Now().Add(-time.Hour)), testSecret)
	if !errors.Is(err, stripewebhook.ErrTooOld) {
		t.Fatalf("expected ErrTooOld, got %v", err)
	}
}

func TestVerify_CustomTolerance(t *testing.T) {
	body := []byte(fraudWarningBody)
	header := signPayload(body, testSecret, time.Now().Add(-time.Hour))

	v := NewVerifier(testSecret)
	v.Tolerance = 2 * time.Hour
	if _, err := v.Verify(body, header); err != nil {
		t.Fatalf("signature within custom tolerance should verify: %v", err)
	}
}

func TestVerify_TamperedByte(t *testing.T) {
	body := []byte(fraudWarningBody)
	header := signPayload(body, testSecret, time.Now())

	tampered := append([]byte(nil), body...)
	// Flip one digit of the charge id.
	for i := range tampered {
		if tampered[i] == '3' {
			tampered[i] = '4'
			break
		}
	}
	if _, err := Verify(tampered, header, testSecret); err == nil {
		t.Fatal("tampered body should not verify")
	}
}

func TestVerify_ReserializedBodyFails(t *testing.T) {
	body := []byte(fraudWarningBody)
	header := signPayload(body, testSecret, time.Now())

	// Same JSON value, different byte layout.
	compact := []byte(`{"id":"evt_1","object":"event","type":"radar.early_fraud_warning.created","livemode":false,"data":{"object":{"id":"issfr_1","object":"radar.early_fraud_warning","charge":"ch_123","fraud_type":"unauthorized_use_of_card"}}}`)
	if _, err := Verify(compact, header, testSecret); err == nil {
		t.Fatal("re-encoded body should not verify against the original signature")
	}
}

func TestVerify_SignedButNotJSON(t *testing.T) {
	body := []byte("not json")
	_, err := Verify(body, signPayload(body, testSecret, time.Now()), testSecret)
	var verr *VerificationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected VerificationError for non-JSON body, got %v", err)
	}
}
