package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shinebook/shinebook/libs/db"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

// Settings is the single shop-wide booking configuration row.
type Settings struct {
	Name            string
	Timezone        string
	MinAdvanceHours int
	SlotStepMinutes int
	BufferMinutes   int
}

func (r *Repository) GetOrCreateSettings(ctx context.Context) (Settings, error) {
	// Seed the singleton row if missing so a fresh install works immediately.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO booking_settings (id)
		VALUES (1)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	err = r.pool.QueryRow(ctx, `
		SELECT name, timezone, min_advance_hours, slot_step_minutes, buffer_minutes
		FROM booking_settings
		WHERE id = 1
	`).Scan(&s.Name, &s.Timezone, &s.MinAdvanceHours, &s.SlotStepMinutes, &s.BufferMinutes)
	return s, err
}

func (r *Repository) UpdateSettings(ctx context.Context, s Settings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO booking_settings (id, name, timezone, min_advance_hours, slot_step_minutes, buffer_minutes)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			timezone = EXCLUDED.timezone,
			min_advance_hours = EXCLUDED.min_advance_hours,
			slot_step_minutes = EXCLUDED.slot_step_minutes,
			buffer_minutes = EXCLUDED.buffer_minutes,
			updated_at = now()
	`, s.Name, s.Timezone, s.MinAdvanceHours, s.SlotStepMinutes, s.BufferMinutes)
	return err
}

// BusinessHours is one weekday's open window. Weekday follows time.Weekday
// numbering, Sunday = 0.
type BusinessHours struct {
	Weekday     int
	IsOpen      bool
	StartMinute int
	EndMinute   int
}

func (r *Repository) ListHours(ctx context.Context) ([]BusinessHours, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, is_open, start_minute, end_minute
		FROM business_hours
		ORDER BY weekday ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BusinessHours
	for rows.Next() {
		var h BusinessHours
		if err := rows.Scan(&h.Weekday, &h.IsOpen, &h.StartMinute, &h.EndMinute); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) UpsertHours(ctx context.Context, h BusinessHours) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO business_hours (weekday, is_open, start_minute, end_minute)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (weekday) DO UPDATE
		SET is_open = EXCLUDED.is_open,
			start_minute = EXCLUDED.start_minute,
			end_minute = EXCLUDED.end_minute,
			updated_at = now()
	`, h.Weekday, h.IsOpen, h.StartMinute, h.EndMinute)
	return err
}

// DetailingService is one catalog entry customers can select when booking.
type DetailingService struct {
	ID              string
	Name            string
	Description     string
	PriceCents      int64
	DurationMinutes int
	Active          bool
	CreatedAt       time.Time
}

func (r *Repository) CreateService(ctx context.Context, name, description string, priceCents int64, durationMinutes int) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO detailing_services (id, name, description, price_cents, duration_minutes)
		VALUES ($1, $2, $3, $4, $5)
	`, id, name, description, priceCents, durationMinutes)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListServices(ctx context.Context, includeInactive bool) ([]DetailingService, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, COALESCE(description, ''), price_cents, duration_minutes, active, created_at
		FROM detailing_services
		WHERE active OR $1
		ORDER BY created_at ASC
	`, includeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DetailingService
	for rows.Next() {
		var s DetailingService
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.PriceCents, &s.DurationMinutes, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) UpdateService(ctx context.Context, s DetailingService) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE detailing_services
		SET name = $2,
			description = $3,
			price_cents = $4,
			duration_minutes = $5,
			active = $6,
			updated_at = now()
		WHERE id = $1
	`, s.ID, s.Name, s.Description, s.PriceCents, s.DurationMinutes, s.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) DeactivateService(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE detailing_services
		SET active = false, updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
