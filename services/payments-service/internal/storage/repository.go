package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shinebook/shinebook/libs/db"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

type ProviderEvent struct {
	Provider        string
	ProviderEventID string
	EventType       string
	Payload         []byte
}

var ErrDuplicateProviderEvent = errors.New("duplicate provider event")

// InsertProviderEvent records the raw webhook delivery. The unique key on
// (provider, provider_event_id) makes replays surface as
// ErrDuplicateProviderEvent instead of double-processing.
func (r *Repository) InsertProviderEvent(ctx context.Context, tx pgx.Tx, evt ProviderEvent) error {
	var payload any
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO provider_events (provider, provider_event_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (provider, provider_event_id) DO NOTHING
	`, evt.Provider, evt.ProviderEventID, evt.EventType, payload)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrDuplicateProviderEvent
	}
	return nil
}

type Payment struct {
	ID            string
	AppointmentID string
	Provider      string
	ProviderRef   string
	AmountCents   int64
	Currency      string
	Status        string
	OccurredAt    time.Time
	CreatedAt     time.Time
}

func (r *Repository) InsertPayment(ctx context.Context, tx pgx.Tx, p Payment) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO payments (appointment_id, provider, provider_ref, amount_cents, currency, status, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, p.AppointmentID, p.Provider, p.ProviderRef, p.AmountCents, p.Currency, p.Status, p.OccurredAt).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListByAppointment(ctx context.Context, appointmentID string) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, appointment_id::text, provider, provider_ref, amount_cents, currency, status, occurred_at, created_at
		FROM payments
		WHERE appointment_id = $1
		ORDER BY created_at ASC
	`, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.AppointmentID, &p.Provider, &p.ProviderRef, &p.AmountCents, &p.Currency, &p.Status, &p.OccurredAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
