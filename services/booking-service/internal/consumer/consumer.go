package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/shinebook/shinebook/libs/kafkax"
	"github.com/shinebook/shinebook/services/booking-service/internal/inbox"
	"github.com/shinebook/shinebook/services/booking-service/internal/storage"
)

// TopicPaymentSucceeded is produced by the payments service when a Stripe
// payment for an appointment settles.
const TopicPaymentSucceeded = "payments.payment.succeeded.v1"

type paymentSucceededPayload struct {
	AppointmentID string    `json:"appointment_id"`
	PaidAt        time.Time `json:"paid_at"`
}

// Consumer marks appointments paid as payment events arrive. The inbox
// table deduplicates Kafka redeliveries.
type Consumer struct {
	reader *kafka.Reader
	logger *slog.Logger
	inbox  *inbox.Repository
	repo   *storage.AppointmentRepository
}

type Config struct {
	Brokers string
	GroupID string
}

func New(logger *slog.Logger, inboxRepo *inbox.Repository, repo *storage.AppointmentRepository, cfg Config) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kafkax.SplitBrokers(cfg.Brokers),
		GroupID:  cfg.GroupID,
		Topic:    TopicPaymentSucceeded,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{
		reader: reader,
		logger: logger,
		inbox:  inboxRepo,
		repo:   repo,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", "err", err)
			time.Sleep(1 * time.Second)
			continue
		}

		ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
		ctxSpan, span := otel.Tracer("kafka").Start(ctxMsg, "kafka.consume",
			trace.WithAttributes(
				attribute.String("messaging.system", "kafka"),
				attribute.String("messaging.destination", msg.Topic),
			),
		)

		meta := kafkax.ExtractEventMeta(msg)

		ok, err := c.inbox.Record(ctxSpan, meta.EventID, meta.EventType)
		if err != nil {
			c.logger.Error("inbox record failed", "err", err)
			span.RecordError(err)
			span.End()
			continue
		}
		if !ok {
			c.logger.Info("duplicate event ignored", "event_id", meta.EventID, "event_type", meta.EventType)
			span.End()
			continue
		}

		if err := c.handle(ctxSpan, msg); err != nil {
			c.logger.Error("payment event handling failed", "err", err, "event_id", meta.EventID)
			span.RecordError(err)
		}
		span.End()
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	var payload paymentSucceededPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return err
	}
	if payload.AppointmentID == "" {
		c.logger.Warn("payment event without appointment id, skipping")
		return nil
	}
	paidAt := payload.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}
	if err := c.repo.MarkPaid(ctx, payload.AppointmentID, paidAt); err != nil {
		return err
	}
	c.logger.Info("appointment marked paid", "appointment_id", payload.AppointmentID)
	return nil
}
