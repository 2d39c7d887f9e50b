package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shinebook/shinebook/services/booking-service/internal/hours"
	"github.com/shinebook/shinebook/services/booking-service/internal/model"
	"github.com/shinebook/shinebook/services/booking-service/internal/outbox"
	"github.com/shinebook/shinebook/services/booking-service/internal/schedule"
	"github.com/shinebook/shinebook/services/booking-service/internal/storage"
)

// reminderLead is how far before the appointment start the reminder fires.
const reminderLead = 24 * time.Hour

type BookingHandler struct {
	repo       *storage.AppointmentRepository
	outboxRepo *outbox.Repository
	hours      hours.Provider
	logger     *slog.Logger
	now        func() time.Time
}

func NewBookingHandler(repo *storage.AppointmentRepository, outboxRepo *outbox.Repository, hoursProvider hours.Provider, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		hours:      hoursProvider,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type serviceItem struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes"`
}

type createBookingRequest struct {
	Date     string        `json:"date"`  // 2006-01-02
	Start    string        `json:"start"` // 15:04
	Services []serviceItem `json:"services"`

	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`

	VehicleMake  string `json:"vehicle_make"`
	VehicleModel string `json:"vehicle_model"`
	VehicleYear  string `json:"vehicle_year"`
	VehicleColor string `json:"vehicle_color"`

	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Notes   string `json:"notes"`
}

type createBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
}

type conflictItem struct {
	AppointmentID string `json:"appointment_id"`
	Customer      string `json:"customer,omitempty"`
	Window        string `json:"window"`
}

type validationErrorResponse struct {
	Errors    []string       `json:"errors"`
	Conflicts []conflictItem `json:"conflicts,omitempty"`
}

type appointmentItem struct {
	AppointmentID   string        `json:"appointment_id"`
	Date            string        `json:"date"`
	Start           string        `json:"start"`
	End             string        `json:"end"`
	DurationMinutes int           `json:"duration_minutes"`
	Services        []serviceItem `json:"services"`
	Status          string        `json:"status"`
	CustomerName    string        `json:"customer_name"`
	VehicleMake     string        `json:"vehicle_make"`
	VehicleModel    string        `json:"vehicle_model"`
	PaidAt          string        `json:"paid_at,omitempty"`
	CancelledAt     string        `json:"cancelled_at,omitempty"`
	CreatedAt       string        `json:"created_at"`
}

type slotItem struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	Available bool   `json:"available"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	startMinute, err := schedule.ParseMinute(strings.TrimSpace(req.Start))
	if err != nil {
		http.Error(w, "invalid start, expected HH:MM", http.StatusBadRequest)
		return
	}

	appt := appointmentFromRequest(req, date, startMinute)

	ctx := r.Context()
	cfg := h.dayConfig(ctx, date)

	existing, err := h.repo.ListDay(ctx, date)
	if err != nil {
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}

	res := schedule.Validate(
		candidateFromAppointment(appt, ""),
		schedule.Settings{Week: cfg.Week, MinAdvanceHours: cfg.MinAdvanceHours},
		entriesFrom(existing),
		h.now(),
	)
	if !res.OK() {
		writeValidationFailure(w, res)
		return
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" {
		rec, exists, err := h.repo.LockIdempotencyKey(ctx, tx, idempotencyKey)
		if err != nil {
			http.Error(w, "failed to lock idempotency key", http.StatusInternalServerError)
			return
		}
		if exists && rec.StatusCode > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			if len(rec.ResponsePayload) > 0 {
				_, _ = w.Write(rec.ResponsePayload)
				return
			}
			_ = json.NewEncoder(w).Encode(createBookingResponse{AppointmentID: rec.AppointmentID})
			return
		}
	}

	id, err := h.repo.Create(ctx, tx, appt)
	if err != nil {
		if storage.IsConflict(err) {
			// Lost the race against a concurrent booking for an overlapping
			// window; the pre-check above saw a stale snapshot.
			http.Error(w, "time slot was just booked by someone else", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	if err := h.emitBookedEvents(ctx, tx, id, appt); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	respBody, err := json.Marshal(createBookingResponse{AppointmentID: id})
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if idempotencyKey != "" {
		if err := h.repo.FinalizeIdempotency(ctx, tx, idempotencyKey, id, http.StatusCreated, respBody); err != nil {
			http.Error(w, "failed to finalize idempotency key", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		http.Error(w, "date is required", http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	durationMins := 60
	if raw := strings.TrimSpace(r.URL.Query().Get("duration_minutes")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 24*60 {
			http.Error(w, "invalid duration_minutes", http.StatusBadRequest)
			return
		}
		durationMins = n
	}

	ctx := r.Context()
	cfg := h.dayConfig(ctx, date)
	if !cfg.Week.Day(date.Weekday()).Open {
		h.logger.Warn("no business hours for weekday, returning no slots", "weekday", date.Weekday().String())
	}

	existing, err := h.repo.ListDay(ctx, date)
	if err != nil {
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}

	slots := schedule.Slots(date, cfg.Week, cfg.StepMinutes, cfg.BufferMinutes, durationMins, entriesFrom(existing))
	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotItem{
			Start:     schedule.FormatMinute(s.StartMinute),
			End:       schedule.FormatMinute(s.StartMinute + durationMins),
			Available: s.Available,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

type rescheduleRequest struct {
	AppointmentID string `json:"appointment_id"`
	Date          string `json:"date"`
	Start         string `json:"start"`
}

func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.Date))
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	startMinute, err := schedule.ParseMinute(strings.TrimSpace(req.Start))
	if err != nil {
		http.Error(w, "invalid start, expected HH:MM", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetForUpdate(ctx, tx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	if appt.Status == model.StatusCancelled {
		http.Error(w, "cancelled appointments cannot be rescheduled", http.StatusConflict)
		return
	}

	cfg := h.dayConfig(ctx, date)
	existing, err := h.repo.ListDay(ctx, date)
	if err != nil {
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}

	moved := appt
	moved.Date = date
	moved.StartMinute = startMinute

	res := schedule.Validate(
		candidateFromAppointment(&moved, appt.ID),
		schedule.Settings{Week: cfg.Week, MinAdvanceHours: cfg.MinAdvanceHours},
		entriesFrom(existing),
		h.now(),
	)
	if !res.OK() {
		writeValidationFailure(w, res)
		return
	}

	if err := h.repo.Reschedule(ctx, tx, appt.ID, date, startMinute, appt.DurationMinutes); err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot was just booked by someone else", http.StatusConflict)
			return
		}
		http.Error(w, "failed to reschedule appointment", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"appointment_id": appt.ID,
		"date":           date.Format("2006-01-02"),
		"start":          schedule.FormatMinute(startMinute),
	})
}

type cancelRequest struct {
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetForUpdate(ctx, tx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	if appt.Status == model.StatusCancelled && appt.CancelledAt != nil {
		h.writeCancelResponse(w, appt.ID, appt.CancelledAt.UTC())
		return
	}
	if appt.Status == model.StatusCompleted {
		http.Error(w, "completed appointments cannot be cancelled", http.StatusConflict)
		return
	}

	cancelledAt, err := h.repo.Cancel(ctx, tx, appt.ID, req.Reason)
	if err != nil {
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}

	cancelPayload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"date":           appt.Date.Format("2006-01-02"),
		"start":          schedule.FormatMinute(appt.StartMinute),
		"customer_email": appt.CustomerEmail,
		"cancelled_at":   cancelledAt.UTC().Format(time.RFC3339),
		"reason":         req.Reason,
	})
	if err != nil {
		http.Error(w, "failed to build cancellation event", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     outbox.EventAppointmentCancelled,
		Payload:       cancelPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	h.writeCancelResponse(w, appt.ID, cancelledAt.UTC())
}

type statusRequest struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Status = strings.TrimSpace(req.Status)
	if req.AppointmentID == "" || req.Status == "" {
		http.Error(w, "appointment_id and status required", http.StatusBadRequest)
		return
	}
	if !model.ValidStatus(req.Status) {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}
	if req.Status == model.StatusCancelled {
		http.Error(w, "use the cancel endpoint to cancel appointments", http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateStatus(r.Context(), req.AppointmentID, req.Status); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update status", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"appointment_id": req.AppointmentID,
		"status":         req.Status,
	})
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	now := h.now()
	from := schedule.DateOnly(now)
	to := from.AddDate(0, 0, 30)
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid from, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		from = d
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid to, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		to = d
	}

	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	appts, err := h.repo.ListRange(r.Context(), from, to, limit)
	if err != nil {
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, appt := range appts {
		items = append(items, appointmentToItem(appt))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	appt, err := h.repo.Get(r.Context(), id)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, appointmentToItem(appt))
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete appointment", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dayConfig resolves the availability configuration for date, logging and
// falling back on provider failure.
func (h *BookingHandler) dayConfig(ctx context.Context, date time.Time) hours.Config {
	cfg, err := h.hours.AvailabilityConfig(ctx, date)
	if err != nil {
		h.logger.Warn("availability config fetch failed; using fallback", "err", err)
	}
	return cfg
}

func (h *BookingHandler) emitBookedEvents(ctx context.Context, tx pgx.Tx, id string, appt *model.Appointment) error {
	bookedPayload, err := json.Marshal(map[string]any{
		"appointment_id": id,
		"date":           appt.Date.Format("2006-01-02"),
		"start":          schedule.FormatMinute(appt.StartMinute),
		"end":            schedule.FormatMinute(appt.EndMinute()),
		"customer_name":  appt.CustomerName,
		"customer_email": appt.CustomerEmail,
		"customer_phone": appt.CustomerPhone,
		"total_cents":    appt.TotalPriceCents(),
	})
	if err != nil {
		return err
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   id,
		EventType:     outbox.EventAppointmentBooked,
		Payload:       bookedPayload,
	}); err != nil {
		return err
	}

	remindAt := schedule.StartTime(appt.Date, appt.StartMinute).Add(-reminderLead)
	if !remindAt.After(h.now()) {
		return nil
	}
	reminderPayload, err := json.Marshal(map[string]any{
		"appointment_id": id,
		"remind_at":      remindAt.UTC().Format(time.RFC3339),
		"date":           appt.Date.Format("2006-01-02"),
		"start":          schedule.FormatMinute(appt.StartMinute),
		"customer_name":  appt.CustomerName,
		"customer_email": appt.CustomerEmail,
		"customer_phone": appt.CustomerPhone,
	})
	if err != nil {
		return err
	}
	return h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   id,
		EventType:     outbox.EventReminderRequested,
		Payload:       reminderPayload,
	})
}

func (h *BookingHandler) writeCancelResponse(w http.ResponseWriter, id string, cancelledAt time.Time) {
	writeJSON(w, http.StatusOK, map[string]string{
		"appointment_id": id,
		"status":         model.StatusCancelled,
		"cancelled_at":   cancelledAt.Format(time.RFC3339),
	})
}

func appointmentFromRequest(req createBookingRequest, date time.Time, startMinute int) *model.Appointment {
	services := make([]model.SelectedService, 0, len(req.Services))
	total := 0
	for _, s := range req.Services {
		services = append(services, model.SelectedService{
			ID:              strings.TrimSpace(s.ID),
			Name:            strings.TrimSpace(s.Name),
			PriceCents:      s.PriceCents,
			DurationMinutes: s.DurationMinutes,
		})
		total += s.DurationMinutes
	}
	return &model.Appointment{
		Date:            date,
		StartMinute:     startMinute,
		DurationMinutes: total,
		Services:        services,
		Status:          model.StatusPending,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   strings.TrimSpace(req.CustomerEmail),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		VehicleMake:     strings.TrimSpace(req.VehicleMake),
		VehicleModel:    strings.TrimSpace(req.VehicleModel),
		VehicleYear:     strings.TrimSpace(req.VehicleYear),
		VehicleColor:    strings.TrimSpace(req.VehicleColor),
		Address:         strings.TrimSpace(req.Address),
		City:            strings.TrimSpace(req.City),
		State:           strings.TrimSpace(req.State),
		Zip:             strings.TrimSpace(req.Zip),
		Notes:           strings.TrimSpace(req.Notes),
	}
}

func candidateFromAppointment(appt *model.Appointment, editID string) schedule.Candidate {
	return schedule.Candidate{
		EditID:          editID,
		Date:            appt.Date,
		StartMinute:     appt.StartMinute,
		DurationMinutes: appt.DurationMinutes,
		ServiceCount:    len(appt.Services),
		CustomerName:    appt.CustomerName,
		CustomerEmail:   appt.CustomerEmail,
		CustomerPhone:   appt.CustomerPhone,
		VehicleMake:     appt.VehicleMake,
		VehicleModel:    appt.VehicleModel,
		Address:         appt.Address,
		City:            appt.City,
		State:           appt.State,
		Zip:             appt.Zip,
	}
}

func entriesFrom(appts []model.Appointment) []schedule.Entry {
	entries := make([]schedule.Entry, 0, len(appts))
	for _, a := range appts {
		entries = append(entries, schedule.Entry{
			ID:              a.ID,
			Date:            a.Date,
			StartMinute:     a.StartMinute,
			DurationMinutes: a.DurationMinutes,
			Cancelled:       a.Status == model.StatusCancelled,
			Label:           a.CustomerName,
		})
	}
	return entries
}

func appointmentToItem(appt model.Appointment) appointmentItem {
	services := make([]serviceItem, 0, len(appt.Services))
	for _, s := range appt.Services {
		services = append(services, serviceItem(s))
	}
	item := appointmentItem{
		AppointmentID:   appt.ID,
		Date:            appt.Date.Format("2006-01-02"),
		Start:           schedule.FormatMinute(appt.StartMinute),
		End:             schedule.FormatMinute(appt.EndMinute()),
		DurationMinutes: appt.DurationMinutes,
		Services:        services,
		Status:          appt.Status,
		CustomerName:    appt.CustomerName,
		VehicleMake:     appt.VehicleMake,
		VehicleModel:    appt.VehicleModel,
		CreatedAt:       appt.CreatedAt.UTC().Format(time.RFC3339),
	}
	if appt.PaidAt != nil {
		item.PaidAt = appt.PaidAt.UTC().Format(time.RFC3339)
	}
	if appt.CancelledAt != nil {
		item.CancelledAt = appt.CancelledAt.UTC().Format(time.RFC3339)
	}
	return item
}

func writeValidationFailure(w http.ResponseWriter, res schedule.Result) {
	resp := validationErrorResponse{Errors: res.Reasons}
	for _, c := range res.Conflicts {
		resp.Conflicts = append(resp.Conflicts, conflictItem{
			AppointmentID: c.ID,
			Customer:      c.Label,
			Window:        c.Window,
		})
	}
	writeJSON(w, http.StatusUnprocessableEntity, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
