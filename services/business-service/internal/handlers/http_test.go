package handlers

import (
	"testing"

	"github.com/shinebook/shinebook/services/business-service/internal/storage"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"08:00", 480, false},
		{"18:00", 1080, false},
		{"00:00", 0, false},
		{"8am", 0, true},
		{"24:30", 0, true},
	}
	for _, tc := range cases {
		got, err := parseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseClock(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("parseClock(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
	}
}

func TestHoursToItems(t *testing.T) {
	items := hoursToItems([]storage.BusinessHours{
		{Weekday: 0, IsOpen: false},
		{Weekday: 1, IsOpen: true, StartMinute: 480, EndMinute: 1080},
	})
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Open || items[0].Opens != "" {
		t.Fatalf("closed day should omit times: %+v", items[0])
	}
	if items[1].Opens != "08:00" || items[1].Closes != "18:00" {
		t.Fatalf("unexpected open window: %+v", items[1])
	}
}

func TestServiceRequestValidate(t *testing.T) {
	ok := serviceRequest{Name: "Full Detail", PriceCents: 25000, DurationMinutes: 180}
	if msg := ok.validate(); msg != "" {
		t.Fatalf("expected valid, got %q", msg)
	}

	cases := []serviceRequest{
		{Name: " ", PriceCents: 100, DurationMinutes: 30},
		{Name: "Wash", PriceCents: -1, DurationMinutes: 30},
		{Name: "Wash", PriceCents: 100, DurationMinutes: 0},
		{Name: "Wash", PriceCents: 100, DurationMinutes: 2000},
	}
	for i, tc := range cases {
		if msg := tc.validate(); msg == "" {
			t.Fatalf("case %d expected a validation message", i)
		}
	}
}
