package schedule

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func validCandidate() Candidate {
	return Candidate{
		Date:            date(2025, time.March, 10), // Monday
		StartMinute:     840,                        // 14:00
		DurationMinutes: 60,
		ServiceCount:    1,
		CustomerName:    "Dana Willis",
		CustomerEmail:   "dana@example.com",
		CustomerPhone:   "(555) 010-2233",
		VehicleMake:     "Honda",
		VehicleModel:    "Civic",
		Address:         "12 Elm St",
		City:            "Springfield",
		State:           "IL",
		Zip:             "62704",
	}
}

func defaultSettings() Settings {
	return Settings{Week: openWeek(), MinAdvanceHours: 2}
}

func morningOf(d time.Time, hour int) time.Time {
	return StartTime(d, hour*60)
}

func TestValidateAccepts(t *testing.T) {
	now := morningOf(date(2025, time.March, 10), 9)
	res := Validate(validCandidate(), defaultSettings(), nil, now)
	if !res.OK() {
		t.Fatalf("expected valid, got reasons %v", res.Reasons)
	}
}

func TestValidateCollectsAllFailures(t *testing.T) {
	c := validCandidate()
	c.CustomerName = ""
	c.CustomerEmail = "not-an-email"
	c.CustomerPhone = "123"
	c.ServiceCount = 0
	c.DurationMinutes = 0

	now := morningOf(c.Date, 9)
	res := Validate(c, defaultSettings(), nil, now)
	want := []string{"customer name", "email format", "10 to 15 digits", "at least one service"}
	for _, frag := range want {
		if !hasReason(res, frag) {
			t.Fatalf("expected a reason containing %q, got %v", frag, res.Reasons)
		}
	}
	if len(res.Reasons) < len(want) {
		t.Fatalf("expected every failure collected in one pass, got %v", res.Reasons)
	}
}

func TestValidateScenarioConflict(t *testing.T) {
	// Existing confirmed 10:00 for 60 minutes; candidate 10:30 for 30 minutes.
	day := date(2025, time.March, 10)
	existing := []Entry{{ID: "a1", Date: day, StartMinute: 600, DurationMinutes: 60, Label: "Dana"}}

	c := validCandidate()
	c.StartMinute = 630
	c.DurationMinutes = 30

	res := Validate(c, defaultSettings(), existing, morningOf(day, 7))
	if res.OK() {
		t.Fatal("expected a conflict failure")
	}
	if len(res.Conflicts) != 1 || res.Conflicts[0].Window != "10:00-11:00" {
		t.Fatalf("expected conflict details for 10:00-11:00, got %+v", res.Conflicts)
	}
}

func TestValidateScenarioTouchingBoundary(t *testing.T) {
	day := date(2025, time.March, 10)
	existing := []Entry{{ID: "a1", Date: day, StartMinute: 600, DurationMinutes: 60}}

	c := validCandidate()
	c.StartMinute = 660 // 11:00, right after the existing booking ends
	c.DurationMinutes = 30

	res := Validate(c, defaultSettings(), existing, morningOf(day, 7))
	if !res.OK() {
		t.Fatalf("touching bookings must validate, got %v", res.Reasons)
	}
}

func TestValidateScenarioAdvanceWindow(t *testing.T) {
	// now = 09:00, minimum advance 2h, candidate starts 10:30 the same day.
	day := date(2025, time.March, 10)
	c := validCandidate()
	c.StartMinute = 630
	c.DurationMinutes = 30

	res := Validate(c, defaultSettings(), nil, morningOf(day, 9))
	if res.OK() || !hasReason(res, "2 hours in advance") {
		t.Fatalf("expected an advance-window failure, got %v", res.Reasons)
	}
}

func TestValidateScenarioEndsAfterClose(t *testing.T) {
	// 17:45 start with a 60-minute service on a day closing at 18:00.
	c := validCandidate()
	c.StartMinute = 1065
	c.DurationMinutes = 60

	res := Validate(c, defaultSettings(), nil, morningOf(c.Date, 9))
	if res.OK() || !hasReason(res, "after closing time") {
		t.Fatalf("expected an after-close failure, got %v", res.Reasons)
	}
}

func TestValidateScenarioNoServices(t *testing.T) {
	c := validCandidate()
	c.ServiceCount = 0
	c.DurationMinutes = 0

	res := Validate(c, defaultSettings(), nil, morningOf(c.Date, 9))
	if res.OK() || !hasReason(res, "at least one service") {
		t.Fatalf("expected a no-service failure, got %v", res.Reasons)
	}
}

func TestValidatePastDateNewBooking(t *testing.T) {
	c := validCandidate()
	now := morningOf(date(2025, time.March, 11), 9)

	res := Validate(c, defaultSettings(), nil, now)
	if res.OK() || !hasReason(res, "in the past") {
		t.Fatalf("expected a past-date failure, got %v", res.Reasons)
	}
}

func TestValidateBeforeOpening(t *testing.T) {
	c := validCandidate()
	c.StartMinute = 420 // 07:00 against an 08:00 open

	res := Validate(c, defaultSettings(), nil, morningOf(c.Date, 0))
	if res.OK() || !hasReason(res, "before opening time") {
		t.Fatalf("expected a before-opening failure, got %v", res.Reasons)
	}
}

func TestValidateClosedDay(t *testing.T) {
	c := validCandidate()
	c.Date = date(2025, time.March, 9) // Sunday, unconfigured

	res := Validate(c, defaultSettings(), nil, morningOf(date(2025, time.March, 7), 9))
	if res.OK() || !hasReason(res, "closed on the selected day") {
		t.Fatalf("expected a closed-day failure, got %v", res.Reasons)
	}
}

func TestValidateEditReValidationAlwaysSucceeds(t *testing.T) {
	// Re-saving an untouched appointment against the unchanged list must
	// pass, even when the appointment is in the past.
	day := date(2024, time.June, 3) // a Monday long gone
	c := validCandidate()
	c.EditID = "a1"
	c.Date = day
	c.StartMinute = 600

	existing := []Entry{{ID: "a1", Date: day, StartMinute: 600, DurationMinutes: 60, Label: "Dana"}}
	now := morningOf(date(2025, time.March, 10), 9)

	res := Validate(c, defaultSettings(), existing, now)
	if !res.OK() {
		t.Fatalf("re-validating an unchanged edit must succeed, got %v", res.Reasons)
	}
}

func TestValidateEditStillChecksConflicts(t *testing.T) {
	day := date(2025, time.March, 10)
	existing := []Entry{
		{ID: "a1", Date: day, StartMinute: 600, DurationMinutes: 60},
		{ID: "a2", Date: day, StartMinute: 720, DurationMinutes: 60},
	}

	c := validCandidate()
	c.EditID = "a1"
	c.StartMinute = 750 // move onto a2

	res := Validate(c, defaultSettings(), existing, morningOf(day, 7))
	if res.OK() {
		t.Fatal("moving an edit onto another booking must fail")
	}
	if len(res.Conflicts) != 1 || res.Conflicts[0].ID != "a2" {
		t.Fatalf("expected a conflict with a2, got %+v", res.Conflicts)
	}
}

func TestValidateIdempotent(t *testing.T) {
	day := date(2025, time.March, 10)
	existing := []Entry{{ID: "a1", Date: day, StartMinute: 600, DurationMinutes: 60}}
	c := validCandidate()
	c.StartMinute = 630
	now := morningOf(day, 7)

	first := Validate(c, defaultSettings(), existing, now)
	second := Validate(c, defaultSettings(), existing, now)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different results:\n%+v\n%+v", first, second)
	}
}

func hasReason(res Result, frag string) bool {
	for _, r := range res.Reasons {
		if strings.Contains(r, frag) {
			return true
		}
	}
	return false
}
