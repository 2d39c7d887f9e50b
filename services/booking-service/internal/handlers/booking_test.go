package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shinebook/shinebook/services/booking-service/internal/model"
	"github.com/shinebook/shinebook/services/booking-service/internal/schedule"
)

func TestAppointmentFromRequestSumsDurations(t *testing.T) {
	req := createBookingRequest{
		Services: []serviceItem{
			{ID: "svc-1", Name: "Exterior Wash", PriceCents: 4500, DurationMinutes: 45},
			{ID: "svc-2", Name: "Interior Detail", PriceCents: 12000, DurationMinutes: 90},
		},
		CustomerName: "  Dana Willis ",
	}
	date := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	appt := appointmentFromRequest(req, date, 600)
	if appt.DurationMinutes != 135 {
		t.Fatalf("duration = %d, want 135", appt.DurationMinutes)
	}
	if appt.CustomerName != "Dana Willis" {
		t.Fatalf("customer name not trimmed: %q", appt.CustomerName)
	}
	if appt.Status != model.StatusPending {
		t.Fatalf("status = %q, want pending", appt.Status)
	}
	if appt.TotalPriceCents() != 16500 {
		t.Fatalf("total = %d, want 16500", appt.TotalPriceCents())
	}
}

func TestEntriesFromFlagsCancelled(t *testing.T) {
	appts := []model.Appointment{
		{ID: "a1", Status: model.StatusConfirmed, StartMinute: 600, DurationMinutes: 60, CustomerName: "Dana"},
		{ID: "a2", Status: model.StatusCancelled, StartMinute: 700, DurationMinutes: 30},
	}
	entries := entriesFrom(appts)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Cancelled || !entries[1].Cancelled {
		t.Fatalf("cancelled flags wrong: %+v", entries)
	}
	if entries[0].Label != "Dana" {
		t.Fatalf("label = %q", entries[0].Label)
	}
}

func TestWriteValidationFailureShape(t *testing.T) {
	rec := httptest.NewRecorder()
	writeValidationFailure(rec, schedule.Result{
		Reasons: []string{"the selected time conflicts with Dana's appointment at 10:00-11:00"},
		Conflicts: []schedule.Conflict{
			{ID: "a1", Label: "Dana", Window: "10:00-11:00"},
		},
	})

	if rec.Code != 422 {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp validationErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Errors) != 1 || len(resp.Conflicts) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Conflicts[0].AppointmentID != "a1" || resp.Conflicts[0].Window != "10:00-11:00" {
		t.Fatalf("unexpected conflict item: %+v", resp.Conflicts[0])
	}
}
