package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shinebook/shinebook/libs/config"
	"github.com/shinebook/shinebook/libs/db"
	"github.com/shinebook/shinebook/libs/httpx"
	"github.com/shinebook/shinebook/libs/kafkax"
	otelx "github.com/shinebook/shinebook/libs/otel"
	"github.com/shinebook/shinebook/libs/runtime"
	"github.com/shinebook/shinebook/services/notification-service/internal/consumer"
	"github.com/shinebook/shinebook/services/notification-service/internal/email"
	"github.com/shinebook/shinebook/services/notification-service/internal/inbox"
	"github.com/shinebook/shinebook/services/notification-service/internal/jobs"
	"github.com/shinebook/shinebook/services/notification-service/internal/sms"
	"github.com/shinebook/shinebook/services/notification-service/internal/storage"
)

const (
	topicBooked            = "booking.appointment.booked.v1"
	topicCancelled         = "booking.appointment.cancelled.v1"
	topicReminderRequested = "booking.reminder.requested.v1"
)

type bookingEvent struct {
	AppointmentID string `json:"appointment_id"`
	Date          string `json:"date"`
	Start         string `json:"start"`
	RemindAt      string `json:"remind_at"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8084")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	jobsRepo := jobs.NewRepository()
	logRepo := storage.NewRepository(pool)

	emailSender := email.NewSMTPSender(
		config.String("SMTP_HOST", "localhost"),
		config.String("SMTP_PORT", "1025"),
		config.String("SMTP_FROM", ""),
	)
	var smsSender sms.Sender = sms.NewNoopSender()
	if url := config.String("SMS_WEBHOOK_URL", ""); url != "" {
		smsSender = sms.NewWebhookSender(url, config.String("SMS_WEBHOOK_TOKEN", ""))
	} else {
		logger.Warn("SMS_WEBHOOK_URL not set; sms deliveries are dropped")
	}

	worker := jobs.NewWorker(pool, jobsRepo, logRepo, emailSender, smsSender, logger, jobs.WorkerConfig{
		Interval:  config.Duration("WORKER_INTERVAL", 5*time.Second),
		BatchSize: config.Int("WORKER_BATCH_SIZE", 50),
		Backoff:   config.Duration("WORKER_BACKOFF", time.Minute),
	})
	go worker.Run(ctx)

	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "notification-service")
	inboxRepo := inbox.NewRepository(pool)

	startConsumer := func(topic string, handler consumer.Handler) {
		if strings.TrimSpace(brokers) == "" {
			logger.Warn("consumer disabled (no kafka brokers configured)", "topic", topic)
			return
		}
		c := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}, handler)
		go c.Run(ctx)
	}

	startConsumer(topicBooked, onBooked(pool, jobsRepo, logger))
	startConsumer(topicCancelled, onCancelled(pool, jobsRepo, logger))
	startConsumer(topicReminderRequested, onReminderRequested(pool, jobsRepo, logger))

	mux := runtime.NewBaseMux(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func onBooked(pool *db.Pool, repo *jobs.Repository, logger *slog.Logger) consumer.Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		evt, ok := decodeBookingEvent(msg.Value, logger)
		if !ok {
			return nil
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if evt.CustomerEmail != "" {
			if err := repo.Insert(ctx, tx, jobs.Job{
				IdempotencyKey: evt.AppointmentID + ":confirmation:email",
				AppointmentID:  evt.AppointmentID,
				Kind:           jobs.KindConfirmation,
				Channel:        "email",
				Recipient:      evt.CustomerEmail,
				RunAt:          time.Now().UTC(),
				TemplateData:   evt.templateData(),
			}); err != nil {
				return err
			}
		}
		return tx.Commit(ctx)
	}
}

func onCancelled(pool *db.Pool, repo *jobs.Repository, logger *slog.Logger) consumer.Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		evt, ok := decodeBookingEvent(msg.Value, logger)
		if !ok {
			return nil
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := repo.CancelPending(ctx, tx, evt.AppointmentID); err != nil {
			return err
		}
		if evt.CustomerEmail != "" {
			if err := repo.Insert(ctx, tx, jobs.Job{
				IdempotencyKey: evt.AppointmentID + ":cancellation:email",
				AppointmentID:  evt.AppointmentID,
				Kind:           jobs.KindCancellation,
				Channel:        "email",
				Recipient:      evt.CustomerEmail,
				RunAt:          time.Now().UTC(),
				TemplateData:   evt.templateData(),
			}); err != nil {
				return err
			}
		}
		return tx.Commit(ctx)
	}
}

func onReminderRequested(pool *db.Pool, repo *jobs.Repository, logger *slog.Logger) consumer.Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		evt, ok := decodeBookingEvent(msg.Value, logger)
		if !ok {
			return nil
		}
		runAt := time.Now().UTC()
		if evt.RemindAt != "" {
			t, err := time.Parse(time.RFC3339, evt.RemindAt)
			if err != nil {
				logger.Error("invalid remind_at in event", "err", err, "appointment_id", evt.AppointmentID)
				return nil
			}
			runAt = t
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if evt.CustomerEmail != "" {
			if err := repo.Insert(ctx, tx, jobs.Job{
				IdempotencyKey: evt.AppointmentID + ":reminder:email",
				AppointmentID:  evt.AppointmentID,
				Kind:           jobs.KindReminder,
				Channel:        "email",
				Recipient:      evt.CustomerEmail,
				RunAt:          runAt,
				TemplateData:   evt.templateData(),
			}); err != nil {
				return err
			}
		}
		if evt.CustomerPhone != "" {
			if err := repo.Insert(ctx, tx, jobs.Job{
				IdempotencyKey: evt.AppointmentID + ":reminder:sms",
				AppointmentID:  evt.AppointmentID,
				Kind:           jobs.KindReminder,
				Channel:        "sms",
				Recipient:      evt.CustomerPhone,
				RunAt:          runAt,
				TemplateData:   evt.templateData(),
			}); err != nil {
				return err
			}
		}
		return tx.Commit(ctx)
	}
}

func decodeBookingEvent(raw []byte, logger *slog.Logger) (bookingEvent, bool) {
	var evt bookingEvent
	if err := json.Unmarshal(raw, &evt); err != nil {
		logger.Error("invalid event payload", "err", err)
		return bookingEvent{}, false
	}
	if strings.TrimSpace(evt.AppointmentID) == "" {
		logger.Warn("event without appointment_id, skipping")
		return bookingEvent{}, false
	}
	return evt, true
}

func (e bookingEvent) templateData() map[string]any {
	return map[string]any{
		"customer_name": e.CustomerName,
		"date":          e.Date,
		"start":         e.Start,
	}
}
