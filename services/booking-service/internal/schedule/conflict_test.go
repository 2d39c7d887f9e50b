package schedule

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestConflictsOverlapPairs(t *testing.T) {
	day := date(2025, time.March, 10)
	existing := []Entry{{ID: "a1", Date: day, StartMinute: 600, DurationMinutes: 60, Label: "Dana"}}

	cases := []struct {
		name     string
		start    int
		duration int
		want     bool
	}{
		{"candidate inside existing", 630, 30, true},
		{"existing inside candidate", 570, 120, true},
		{"overlap at front", 570, 60, true},
		{"overlap at back", 630, 60, true},
		{"identical interval", 600, 60, true},
		{"touching before", 540, 60, false},
		{"touching after", 660, 30, false},
		{"well before", 480, 60, false},
		{"well after", 720, 60, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := HasConflict(day, tc.start, tc.duration, existing, "")
			if got != tc.want {
				t.Fatalf("HasConflict(start=%d dur=%d) = %v, want %v", tc.start, tc.duration, got, tc.want)
			}
		})
	}
}

func TestConflictsTouchingBoundaryScenario(t *testing.T) {
	// Existing booking 10:00-11:00; a candidate starting exactly at 11:00
	// must not be flagged.
	day := date(2025, time.March, 10)
	existing := []Entry{{ID: "a1", Date: day, StartMinute: 600, DurationMinutes: 60}}

	if got := Conflicts(day, 660, 30, existing, ""); len(got) != 0 {
		t.Fatalf("expected no conflicts at the touching boundary, got %v", got)
	}
	if got := Conflicts(day, 630, 30, existing, ""); len(got) != 1 {
		t.Fatalf("expected one conflict for 10:30-11:00, got %v", got)
	}
}

func TestConflictsZeroDurationCandidate(t *testing.T) {
	// An empty interval overlaps nothing. Callers reject zero-duration
	// candidates before reaching the detector; this pins the no-op result.
	day := date(2025, time.March, 10)
	existing := []Entry{{ID: "a1", Date: day, StartMinute: 600, DurationMinutes: 60}}

	if HasConflict(day, 600, 0, existing, "") {
		t.Fatal("a zero-duration interval must not report a conflict")
	}
}

func TestConflictsDifferentDatesNeverCollide(t *testing.T) {
	existing := []Entry{{ID: "a1", Date: date(2025, time.March, 10), StartMinute: 600, DurationMinutes: 60}}

	if HasConflict(date(2025, time.March, 11), 600, 60, existing, "") {
		t.Fatal("identical time on a different date must not conflict")
	}
}

func TestConflictsIgnoreCancelled(t *testing.T) {
	day := date(2025, time.March, 10)
	existing := []Entry{
		{ID: "a1", Date: day, StartMinute: 600, DurationMinutes: 60, Cancelled: true},
		{ID: "a2", Date: day, StartMinute: 600, DurationMinutes: 60},
	}

	got := Conflicts(day, 600, 60, existing, "")
	if len(got) != 1 || got[0].ID != "a2" {
		t.Fatalf("expected only the non-cancelled entry to conflict, got %v", got)
	}
}

func TestConflictsSelfExclusion(t *testing.T) {
	day := date(2025, time.March, 10)
	existing := []Entry{{ID: "a1", Date: day, StartMinute: 600, DurationMinutes: 60}}

	if HasConflict(day, 600, 60, existing, "a1") {
		t.Fatal("an appointment must not conflict with itself during an edit")
	}
	if !HasConflict(day, 600, 60, existing, "other") {
		t.Fatal("excluding an unrelated id must not suppress the conflict")
	}
}

func TestConflictsReportDetails(t *testing.T) {
	day := date(2025, time.March, 10)
	existing := []Entry{{ID: "a1", Date: day, StartMinute: 600, DurationMinutes: 60, Label: "Dana"}}

	got := Conflicts(day, 630, 30, existing, "")
	if len(got) != 1 {
		t.Fatalf("expected one conflict, got %d", len(got))
	}
	if got[0].ID != "a1" || got[0].Label != "Dana" || got[0].Window != "10:00-11:00" {
		t.Fatalf("unexpected conflict detail: %+v", got[0])
	}
}

func TestConflictsMultipleOrdered(t *testing.T) {
	day := date(2025, time.March, 10)
	existing := []Entry{
		{ID: "a1", Date: day, StartMinute: 540, DurationMinutes: 60},
		{ID: "a2", Date: day, StartMinute: 600, DurationMinutes: 60},
		{ID: "a3", Date: day, StartMinute: 720, DurationMinutes: 60},
	}

	got := Conflicts(day, 570, 120, existing, "")
	if len(got) != 2 {
		t.Fatalf("expected two conflicts, got %d", len(got))
	}
	if got[0].ID != "a1" || got[1].ID != "a2" {
		t.Fatalf("conflicts should preserve input order, got %+v", got)
	}
}

func TestFormatMinute(t *testing.T) {
	cases := map[int]string{0: "00:00", 540: "09:00", 600: "10:00", 1125: "18:45"}
	for in, want := range cases {
		if got := FormatMinute(in); got != want {
			t.Fatalf("FormatMinute(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestParseMinute(t *testing.T) {
	got, err := ParseMinute("09:30")
	if err != nil || got != 570 {
		t.Fatalf("ParseMinute(09:30) = %d, %v", got, err)
	}
	if _, err := ParseMinute("25:00"); err == nil {
		t.Fatal("expected error for out-of-range hour")
	}
}
