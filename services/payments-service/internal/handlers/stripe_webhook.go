package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/shinebook/shinebook/services/payments-service/internal/outbox"
	"github.com/shinebook/shinebook/services/payments-service/internal/storage"
)

type Handler struct {
	repo             *storage.Repository
	outboxRepo       *outbox.Repository
	logger           *slog.Logger
	webhookSecret    string
	webhookTolerance time.Duration
}

type Config struct {
	StripeWebhookSecret           string
	StripeWebhookToleranceSeconds int
}

func New(repo *storage.Repository, outboxRepo *outbox.Repository, logger *slog.Logger, cfg Config) *Handler {
	tolSeconds := cfg.StripeWebhookToleranceSeconds
	if tolSeconds <= 0 {
		tolSeconds = 300
	}
	return &Handler{
		repo:             repo,
		outboxRepo:       outboxRepo,
		logger:           logger,
		webhookSecret:    strings.TrimSpace(cfg.StripeWebhookSecret),
		webhookTolerance: time.Duration(tolSeconds) * time.Second,
	}
}

// StripeWebhook handles Stripe deliveries. Signature verification is the
// authentication; the endpoint is otherwise public.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.webhookSecret == "" {
		http.Error(w, "stripe webhook not configured", http.StatusServiceUnavailable)
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if strings.TrimSpace(sigHeader) == "" {
		http.Error(w, "missing Stripe-Signature header", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1 MiB hard cap
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	evt, err := webhook.ConstructEventWithTolerance(body, sigHeader, h.webhookSecret, h.webhookTolerance)
	if err != nil {
		http.Error(w, "invalid signature", http.StatusBadRequest)
		return
	}

	occurredAt := time.Unix(evt.Created, 0).UTC()
	evtType := string(evt.Type)
	h.logger.Info("payment provider event received",
		"provider", "stripe",
		"provider_event_id", evt.ID,
		"event_type", evtType,
		"occurred_at", occurredAt.Format(time.RFC3339),
	)

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.repo.InsertProviderEvent(ctx, tx, storage.ProviderEvent{
		Provider:        "stripe",
		ProviderEventID: evt.ID,
		EventType:       evtType,
		Payload:         body,
	}); err != nil {
		if errors.Is(err, storage.ErrDuplicateProviderEvent) {
			h.logger.Info("duplicate provider event ignored", "provider_event_id", evt.ID)
			_ = tx.Commit(ctx)
			writeJSON(w, http.StatusOK, map[string]any{"status": "duplicate"})
			return
		}
		http.Error(w, "failed to record provider event", http.StatusInternalServerError)
		return
	}

	if evtType == "payment_intent.succeeded" {
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(evt.Data.Raw, &intent); err != nil {
			h.logger.Error("stripe: invalid payment intent payload", "err", err)
		} else if err := h.applyPaymentSucceeded(ctx, tx, intent, occurredAt); err != nil {
			http.Error(w, "failed to apply payment", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) applyPaymentSucceeded(ctx context.Context, tx pgx.Tx, intent stripe.PaymentIntent, occurredAt time.Time) error {
	appointmentID := strings.TrimSpace(intent.Metadata["appointment_id"])
	if appointmentID == "" {
		h.logger.Warn("stripe: payment intent without appointment_id metadata", "intent_id", intent.ID)
		return nil
	}

	currency := strings.ToUpper(string(intent.Currency))
	if currency == "" {
		currency = "USD"
	}
	if _, err := h.repo.InsertPayment(ctx, tx, storage.Payment{
		AppointmentID: appointmentID,
		Provider:      "stripe",
		ProviderRef:   intent.ID,
		AmountCents:   intent.AmountReceived,
		Currency:      currency,
		Status:        "succeeded",
		OccurredAt:    occurredAt,
	}); err != nil {
		return err
	}

	payload, err := json.Marshal(map[string]any{
		"appointment_id": appointmentID,
		"provider_ref":   intent.ID,
		"amount_cents":   intent.AmountReceived,
		"currency":       currency,
		"paid_at":        occurredAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "payment",
		AggregateID:   appointmentID,
		EventType:     outbox.EventPaymentSucceeded,
		Payload:       payload,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
