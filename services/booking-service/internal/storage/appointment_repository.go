package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shinebook/shinebook/libs/db"
	"github.com/shinebook/shinebook/services/booking-service/internal/model"
)

const apptColumns = `
	id::text, date, start_minute, duration_minutes, services, status,
	customer_name, customer_email, customer_phone,
	vehicle_make, vehicle_model, COALESCE(vehicle_year, ''), COALESCE(vehicle_color, ''),
	address, city, state, zip, COALESCE(notes, ''),
	paid_at, cancelled_at, COALESCE(cancellation_reason, ''), created_at, updated_at`

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Create inserts the appointment inside the caller's transaction. The
// appointments table carries an exclusion constraint over (date, minute
// range) for non-cancelled rows, so two racing bookings for overlapping
// windows cannot both commit; the loser surfaces here as IsConflict.
func (r *AppointmentRepository) Create(ctx context.Context, tx pgx.Tx, appt *model.Appointment) (string, error) {
	services, err := json.Marshal(appt.Services)
	if err != nil {
		return "", err
	}
	var id string
	err = tx.QueryRow(ctx, `
		INSERT INTO appointments
			(date, start_minute, duration_minutes, services, status,
			 customer_name, customer_email, customer_phone,
			 vehicle_make, vehicle_model, vehicle_year, vehicle_color,
			 address, city, state, zip, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id
	`, appt.Date, appt.StartMinute, appt.DurationMinutes, services, appt.Status,
		appt.CustomerName, appt.CustomerEmail, appt.CustomerPhone,
		appt.VehicleMake, appt.VehicleModel, appt.VehicleYear, appt.VehicleColor,
		appt.Address, appt.City, appt.State, appt.Zip, appt.Notes).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *AppointmentRepository) Get(ctx context.Context, id string) (model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+apptColumns+` FROM appointments WHERE id = $1`, id)
	return scanAppointment(row)
}

func (r *AppointmentRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (model.Appointment, error) {
	row := tx.QueryRow(ctx, `SELECT `+apptColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, id)
	return scanAppointment(row)
}

// ListDay returns every non-cancelled appointment on the given date in
// start order. This is the snapshot fed to conflict detection and slot
// enumeration.
func (r *AppointmentRepository) ListDay(ctx context.Context, date time.Time) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE date = $1 AND status <> 'cancelled'
		ORDER BY start_minute ASC
	`, date)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

func (r *AppointmentRepository) ListRange(ctx context.Context, from, to time.Time, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE date >= $1 AND date <= $2
		ORDER BY date ASC, start_minute ASC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	return scanAppointments(rows)
}

// Reschedule moves an appointment to a new date/time inside the caller's
// transaction; the exclusion constraint still guards the new window.
func (r *AppointmentRepository) Reschedule(ctx context.Context, tx pgx.Tx, id string, date time.Time, startMinute, durationMinutes int) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET date = $2, start_minute = $3, duration_minutes = $4, updated_at = now()
		WHERE id = $1 AND status <> 'cancelled'
	`, id, date, startMinute, durationMinutes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET status = $2, updated_at = now()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *AppointmentRepository) Cancel(ctx context.Context, tx pgx.Tx, id, reason string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
			cancelled_at = now(),
			cancellation_reason = $2,
			updated_at = now()
		WHERE id = $1 AND status <> 'cancelled'
		RETURNING cancelled_at
	`, id, reason).Scan(&cancelledAt)
	return cancelledAt, err
}

func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkPaid stamps paid_at once; replays of the same payment event are no-ops.
func (r *AppointmentRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET paid_at = $2, updated_at = now()
		WHERE id = $1 AND paid_at IS NULL
	`, id, paidAt)
	return err
}

// IsConflict reports whether err is the appointments overlap exclusion
// constraint firing (Postgres exclusion_violation).
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func scanAppointment(row pgx.Row) (model.Appointment, error) {
	var appt model.Appointment
	var services []byte
	err := row.Scan(
		&appt.ID,
		&appt.Date,
		&appt.StartMinute,
		&appt.DurationMinutes,
		&services,
		&appt.Status,
		&appt.CustomerName,
		&appt.CustomerEmail,
		&appt.CustomerPhone,
		&appt.VehicleMake,
		&appt.VehicleModel,
		&appt.VehicleYear,
		&appt.VehicleColor,
		&appt.Address,
		&appt.City,
		&appt.State,
		&appt.Zip,
		&appt.Notes,
		&appt.PaidAt,
		&appt.CancelledAt,
		&appt.CancelReason,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	if len(services) > 0 {
		if err := json.Unmarshal(services, &appt.Services); err != nil {
			return model.Appointment{}, err
		}
	}
	return appt, nil
}

func scanAppointments(rows pgx.Rows) ([]model.Appointment, error) {
	defer rows.Close()
	var appts []model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}
