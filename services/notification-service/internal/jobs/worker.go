package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shinebook/shinebook/libs/db"
	otelx "github.com/shinebook/shinebook/libs/otel"
	"github.com/shinebook/shinebook/services/notification-service/internal/email"
	"github.com/shinebook/shinebook/services/notification-service/internal/sms"
	"github.com/shinebook/shinebook/services/notification-service/internal/storage"
)

// Worker drains due jobs and hands them to the channel senders. Delivery is
// at-least-once: a send that succeeds but fails to commit will be retried.
type Worker struct {
	pool      *db.Pool
	repo      *Repository
	log       *storage.Repository
	email     email.Sender
	sms       sms.Sender
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	backoff   time.Duration
}

type WorkerConfig struct {
	Interval  time.Duration
	BatchSize int
	Backoff   time.Duration
}

func NewWorker(pool *db.Pool, repo *Repository, logRepo *storage.Repository, emailSender email.Sender, smsSender sms.Sender, logger *slog.Logger, cfg WorkerConfig) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 1 * time.Minute
	}
	return &Worker{
		pool:      pool,
		repo:      repo,
		log:       logRepo,
		email:     emailSender,
		sms:       smsSender,
		logger:    logger,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		backoff:   cfg.Backoff,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				w.logger.Error("notification batch failed", "err", err)
			}
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	jobs, err := w.repo.FetchDue(ctx, tx, w.batchSize)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return tx.Commit(ctx)
	}

	var done []int64
	for _, job := range jobs {
		jobCtx := otelx.ContextWithTraceContext(ctx, job.Traceparent, job.Tracestate)
		if err := w.deliver(jobCtx, job); err != nil {
			w.logger.Error("delivery failed", "err", err, "job_id", job.ID, "channel", job.Channel)
			attempts := job.Attempts + 1
			nextRunAt := time.Now().UTC().Add(w.backoff)
			if err := w.repo.MarkFailed(ctx, tx, job.ID, attempts, job.MaxAttempts, nextRunAt, err.Error()); err != nil {
				return err
			}
			_ = w.log.Insert(jobCtx, storage.Notification{
				AppointmentID: job.AppointmentID,
				Channel:       job.Channel,
				Recipient:     job.Recipient,
				Payload:       job.TemplateData,
				Status:        "failed",
			})
			continue
		}
		done = append(done, job.ID)
		_ = w.log.Insert(jobCtx, storage.Notification{
			AppointmentID: job.AppointmentID,
			Channel:       job.Channel,
			Recipient:     job.Recipient,
			Payload:       job.TemplateData,
			Status:        "sent",
		})
	}

	if err := w.repo.MarkProcessed(ctx, tx, done); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (w *Worker) deliver(ctx context.Context, job Job) error {
	subject, body := composeMessage(job)
	switch job.Channel {
	case "email":
		return w.email.Send(job.Recipient, subject, body)
	case "sms":
		return w.sms.Send(ctx, job.Recipient, body)
	default:
		return fmt.Errorf("unknown channel %q", job.Channel)
	}
}

func composeMessage(job Job) (subject, body string) {
	name, _ := job.TemplateData["customer_name"].(string)
	date, _ := job.TemplateData["date"].(string)
	start, _ := job.TemplateData["start"].(string)
	if name == "" {
		name = "there"
	}

	switch job.Kind {
	case KindConfirmation:
		subject = "Your detailing appointment is booked"
		body = fmt.Sprintf("Hi %s, your appointment on %s at %s is confirmed. See you then!", name, date, start)
	case KindCancellation:
		subject = "Your detailing appointment was cancelled"
		body = fmt.Sprintf("Hi %s, your appointment on %s at %s has been cancelled.", name, date, start)
	default:
		subject = "Reminder: upcoming detailing appointment"
		body = fmt.Sprintf("Hi %s, this is a reminder about your appointment on %s at %s.", name, date, start)
	}
	return subject, body
}
