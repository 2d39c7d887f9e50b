package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	otelx "github.com/shinebook/shinebook/libs/otel"
)

// Job is one queued delivery: a reminder, confirmation or cancellation
// notice on a single channel. RunAt is when it becomes due.
type Job struct {
	ID             int64
	IdempotencyKey string
	AppointmentID  string
	Kind           string
	Channel        string
	Recipient      string
	RunAt          time.Time
	TemplateData   map[string]any
	Traceparent    string
	Tracestate     string
	Attempts       int
	MaxAttempts    int
}

const (
	KindReminder     = "reminder"
	KindConfirmation = "confirmation"
	KindCancellation = "cancellation"
)

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// Insert enqueues a job; the idempotency key absorbs event redeliveries.
func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, job Job) error {
	payload, err := json.Marshal(job.TemplateData)
	if err != nil {
		return err
	}
	traceparent, tracestate := otelx.TraceContextStrings(ctx)
	_, err = tx.Exec(ctx, `
		INSERT INTO notification_jobs (idempotency_key, appointment_id, kind, channel, recipient, run_at, next_run_at, template_data, traceparent, tracestate)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7, $8, $9)
		ON CONFLICT (idempotency_key) DO NOTHING
	`, job.IdempotencyKey, job.AppointmentID, job.Kind, job.Channel, job.Recipient, job.RunAt, payload, traceparent, tracestate)
	return err
}

func (r *Repository) FetchDue(ctx context.Context, tx pgx.Tx, limit int) ([]Job, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, idempotency_key, appointment_id, kind, channel, recipient, run_at, template_data, traceparent, tracestate, attempts, max_attempts
		FROM notification_jobs
		WHERE status = 'pending' AND next_run_at <= now()
		ORDER BY next_run_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		var raw []byte
		if err := rows.Scan(&j.ID, &j.IdempotencyKey, &j.AppointmentID, &j.Kind, &j.Channel, &j.Recipient, &j.RunAt, &raw, &j.Traceparent, &j.Tracestate, &j.Attempts, &j.MaxAttempts); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &j.TemplateData); err != nil {
				return nil, err
			}
		} else {
			j.TemplateData = map[string]any{}
		}
		jobs = append(jobs, j)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return jobs, nil
}

func (r *Repository) MarkProcessed(ctx context.Context, tx pgx.Tx, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE notification_jobs
		SET status = 'processed', updated_at = now()
		WHERE id = ANY($1)
	`, ids)
	return err
}

func (r *Repository) MarkFailed(ctx context.Context, tx pgx.Tx, id int64, attempts int, maxAttempts int, nextRunAt time.Time, lastError string) error {
	status := "pending"
	if attempts >= maxAttempts {
		status = "failed"
	}
	_, err := tx.Exec(ctx, `
		UPDATE notification_jobs
		SET attempts = $2,
		    status = $3,
		    next_run_at = $4,
		    last_error = $5,
		    updated_at = now()
		WHERE id = $1
	`, id, attempts, status, nextRunAt, lastError)
	return err
}

// CancelPending drops queued jobs for an appointment, used when a booking
// is cancelled before its reminder fires.
func (r *Repository) CancelPending(ctx context.Context, tx pgx.Tx, appointmentID string) error {
	_, err := tx.Exec(ctx, `
		UPDATE notification_jobs
		SET status = 'cancelled', updated_at = now()
		WHERE appointment_id = $1 AND status = 'pending' AND kind = $2
	`, appointmentID, KindReminder)
	return err
}
