package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/shinebook/shinebook/services/business-service/internal/storage"
)

type Handler struct {
	repo *storage.Repository
}

func New(repo *storage.Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s, err := h.repo.GetOrCreateSettings(r.Context())
	if err != nil {
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"name":              s.Name,
		"timezone":          s.Timezone,
		"min_advance_hours": s.MinAdvanceHours,
		"slot_step_minutes": s.SlotStepMinutes,
		"buffer_minutes":    s.BufferMinutes,
	})
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Name            string `json:"name"`
		Timezone        string `json:"timezone"`
		MinAdvanceHours int    `json:"min_advance_hours"`
		SlotStepMinutes int    `json:"slot_step_minutes"`
		BufferMinutes   int    `json:"buffer_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Timezone = strings.TrimSpace(req.Timezone)
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		http.Error(w, "invalid timezone", http.StatusBadRequest)
		return
	}
	if req.MinAdvanceHours < 0 || req.MinAdvanceHours > 24*14 {
		http.Error(w, "invalid min_advance_hours", http.StatusBadRequest)
		return
	}
	if req.SlotStepMinutes <= 0 || req.SlotStepMinutes > 240 {
		http.Error(w, "invalid slot_step_minutes", http.StatusBadRequest)
		return
	}
	if req.BufferMinutes < 0 || req.BufferMinutes > 240 {
		http.Error(w, "invalid buffer_minutes", http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateSettings(r.Context(), storage.Settings{
		Name:            req.Name,
		Timezone:        req.Timezone,
		MinAdvanceHours: req.MinAdvanceHours,
		SlotStepMinutes: req.SlotStepMinutes,
		BufferMinutes:   req.BufferMinutes,
	}); err != nil {
		http.Error(w, "failed to update settings", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type hoursItem struct {
	Weekday int    `json:"weekday"`
	Open    bool   `json:"open"`
	Opens   string `json:"opens,omitempty"`
	Closes  string `json:"closes,omitempty"`
}

func (h *Handler) Hours(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listHours(w, r)
	case http.MethodPut:
		h.upsertHours(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listHours(w http.ResponseWriter, r *http.Request) {
	rows, err := h.repo.ListHours(r.Context())
	if err != nil {
		http.Error(w, "failed to load hours", http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(hoursToItems(rows))
}

func (h *Handler) upsertHours(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Weekday     int    `json:"weekday"`
		Open        bool   `json:"open"`
		StartMinute int    `json:"start_minute"`
		EndMinute   int    `json:"end_minute"`
		Opens       string `json:"opens"`
		Closes      string `json:"closes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if req.Weekday < 0 || req.Weekday > 6 {
		http.Error(w, "weekday must be 0 (Sunday) through 6 (Saturday)", http.StatusBadRequest)
		return
	}

	start, end := req.StartMinute, req.EndMinute
	if req.Opens != "" {
		m, err := parseClock(req.Opens)
		if err != nil {
			http.Error(w, "invalid opens, expected HH:MM", http.StatusBadRequest)
			return
		}
		start = m
	}
	if req.Closes != "" {
		m, err := parseClock(req.Closes)
		if err != nil {
			http.Error(w, "invalid closes, expected HH:MM", http.StatusBadRequest)
			return
		}
		end = m
	}
	if req.Open {
		if start < 0 || end > 24*60 || end <= start {
			http.Error(w, "open window must satisfy 0 <= start < end <= 1440", http.StatusBadRequest)
			return
		}
	}

	if err := h.repo.UpsertHours(r.Context(), storage.BusinessHours{
		Weekday:     req.Weekday,
		IsOpen:      req.Open,
		StartMinute: start,
		EndMinute:   end,
	}); err != nil {
		http.Error(w, "failed to save hours", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AvailabilityConfig serves the resolved booking configuration the booking
// service consumes before validating or enumerating slots.
func (h *Handler) AvailabilityConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	settings, err := h.repo.GetOrCreateSettings(r.Context())
	if err != nil {
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	rows, err := h.repo.ListHours(r.Context())
	if err != nil {
		http.Error(w, "failed to load hours", http.StatusInternalServerError)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"timezone":          settings.Timezone,
		"min_advance_hours": settings.MinAdvanceHours,
		"slot_step_minutes": settings.SlotStepMinutes,
		"buffer_minutes":    settings.BufferMinutes,
		"hours":             hoursToItems(rows),
	})
}

type serviceRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes"`
	Active          *bool  `json:"active"`
}

func (req serviceRequest) validate() string {
	if strings.TrimSpace(req.Name) == "" {
		return "name is required"
	}
	if req.PriceCents < 0 {
		return "price_cents must not be negative"
	}
	if req.DurationMinutes <= 0 || req.DurationMinutes > 24*60 {
		return "duration_minutes must be between 1 and 1440"
	}
	return ""
}

func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listServices(w, r)
	case http.MethodPost:
		h.createService(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listServices(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	services, err := h.repo.ListServices(r.Context(), includeInactive)
	if err != nil {
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}

	items := make([]map[string]any, 0, len(services))
	for _, s := range services {
		items = append(items, map[string]any{
			"id":               s.ID,
			"name":             s.Name,
			"description":      s.Description,
			"price_cents":      s.PriceCents,
			"duration_minutes": s.DurationMinutes,
			"active":           s.Active,
		})
	}
	_ = json.NewEncoder(w).Encode(items)
}

func (h *Handler) createService(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	id, err := h.repo.CreateService(r.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Description), req.PriceCents, req.DurationMinutes)
	if err != nil {
		http.Error(w, "failed to create service", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if msg := req.validate(); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	err := h.repo.UpdateService(r.Context(), storage.DetailingService{
		ID:              id,
		Name:            strings.TrimSpace(req.Name),
		Description:     strings.TrimSpace(req.Description),
		PriceCents:      req.PriceCents,
		DurationMinutes: req.DurationMinutes,
		Active:          active,
	})
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update service", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeactivateService(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	if err := h.repo.DeactivateService(r.Context(), id); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to deactivate service", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func hoursToItems(rows []storage.BusinessHours) []hoursItem {
	items := make([]hoursItem, 0, len(rows))
	for _, row := range rows {
		item := hoursItem{Weekday: row.Weekday, Open: row.IsOpen}
		if row.IsOpen {
			item.Opens = formatClock(row.StartMinute)
			item.Closes = formatClock(row.EndMinute)
		}
		items = append(items, item)
	}
	return items
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(m int) string {
	return time.Date(2000, 1, 1, m/60, m%60, 0, 0, time.UTC).Format("15:04")
}
