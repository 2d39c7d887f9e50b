package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v79/webhook"
)

func testHandler(secret string) *Handler {
	return New(nil, nil, slog.Default(), Config{StripeWebhookSecret: secret})
}

func signedBody(t *testing.T, payload []byte, secret string, at time.Time) string {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: at,
		Scheme:    "v1",
	})
	return signed.Header
}

func TestStripeWebhookRejectsMethod(t *testing.T) {
	h := testHandler("whsec_test")
	rec := httptest.NewRecorder()
	h.StripeWebhook(rec, httptest.NewRequest(http.MethodGet, "/webhooks/stripe", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestStripeWebhookUnconfigured(t *testing.T) {
	h := testHandler("")
	rec := httptest.NewRecorder()
	h.StripeWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader([]byte(`{}`))))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestStripeWebhookMissingSignature(t *testing.T) {
	h := testHandler("whsec_test")
	rec := httptest.NewRecorder()
	h.StripeWebhook(rec, httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader([]byte(`{}`))))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestStripeWebhookRejectsWrongSecret(t *testing.T) {
	h := testHandler("whsec_right")
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","created":1700000000,"data":{"object":{}}}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signedBody(t, payload, "whsec_wrong", time.Now()))

	rec := httptest.NewRecorder()
	h.StripeWebhook(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for bad signature", rec.Code)
	}
}

func TestStripeWebhookRejectsStaleTimestamp(t *testing.T) {
	h := testHandler("whsec_test")
	payload := []byte(`{"id":"evt_1","type":"payment_intent.succeeded","created":1700000000,"data":{"object":{}}}`)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signedBody(t, payload, "whsec_test", time.Now().Add(-time.Hour)))

	rec := httptest.NewRecorder()
	h.StripeWebhook(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for a stale signature", rec.Code)
	}
}
