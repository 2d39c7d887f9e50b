package hours

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientFetchesConfig(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/availability-config" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("date"); got != "2025-03-10" {
			t.Fatalf("unexpected date %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"timezone": "America/Chicago",
			"min_advance_hours": 4,
			"slot_step_minutes": 15,
			"buffer_minutes": 10,
			"hours": [
				{"weekday": 1, "open": true, "opens": "09:00", "closes": "17:00"},
				{"weekday": 0, "open": false}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, DefaultConfig())
	cfg, err := c.AvailabilityConfig(context.Background(), time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("availability config: %v", err)
	}
	if cfg.MinAdvanceHours != 4 || cfg.StepMinutes != 15 || cfg.BufferMinutes != 10 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	mon := cfg.Week[time.Monday]
	if !mon.Open || mon.OpenMinute != 540 || mon.CloseMinute != 1020 {
		t.Fatalf("unexpected monday hours: %+v", mon)
	}
	if cfg.Week[time.Sunday].Open {
		t.Fatal("sunday should be closed")
	}
}

func TestClientFallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	fallback := DefaultConfig()
	c := NewClient(srv.URL, fallback)
	cfg, err := c.AvailabilityConfig(context.Background(), time.Now())
	if err == nil {
		t.Fatal("expected an error for a 500 response")
	}
	if cfg.StepMinutes != fallback.StepMinutes || len(cfg.Week) != len(fallback.Week) {
		t.Fatalf("expected the fallback config, got %+v", cfg)
	}
}

func TestClientRejectsMalformedHours(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hours": [{"weekday": 1, "open": true, "opens": "9am", "closes": "17:00"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, DefaultConfig())
	if _, err := c.AvailabilityConfig(context.Background(), time.Now()); err == nil {
		t.Fatal("expected an error for an unparseable open time")
	}
}
