package schedule

import (
	"testing"
	"time"
)

func openWeek() WeekHours {
	w := WeekHours{}
	for d := time.Monday; d <= time.Friday; d++ {
		w[d] = DayHours{Open: true, OpenMinute: 480, CloseMinute: 1080} // 08:00-18:00
	}
	return w
}

func TestSlotsClosedDayEmpty(t *testing.T) {
	// 2025-03-09 is a Sunday and openWeek leaves weekends unconfigured.
	got := Slots(date(2025, time.March, 9), openWeek(), 30, 0, 60, nil)
	if len(got) != 0 {
		t.Fatalf("expected no slots on a closed day, got %d", len(got))
	}
}

func TestSlotsAlignmentAndCloseBoundary(t *testing.T) {
	got := Slots(date(2025, time.March, 10), openWeek(), 30, 0, 60, nil)
	if len(got) == 0 {
		t.Fatal("expected slots on an open weekday")
	}
	if got[0].StartMinute != 480 {
		t.Fatalf("first slot = %d, want opening minute 480", got[0].StartMinute)
	}
	last := got[len(got)-1]
	if last.StartMinute != 1020 {
		t.Fatalf("last slot = %d, want 1020 so a 60-minute booking ends exactly at close", last.StartMinute)
	}
	for i, s := range got {
		if (s.StartMinute-480)%30 != 0 {
			t.Fatalf("slot %d at %d is not step-aligned", i, s.StartMinute)
		}
		if i > 0 && s.StartMinute <= got[i-1].StartMinute {
			t.Fatalf("slots not strictly ascending at index %d", i)
		}
		if !s.Available {
			t.Fatalf("slot %d should be available with no existing bookings", s.StartMinute)
		}
	}
}

func TestSlotsMarkConflicting(t *testing.T) {
	day := date(2025, time.March, 10)
	existing := []Entry{{ID: "a1", Date: day, StartMinute: 600, DurationMinutes: 60}}

	got := Slots(day, openWeek(), 30, 0, 60, existing)
	byStart := map[int]bool{}
	for _, s := range got {
		byStart[s.StartMinute] = s.Available
	}

	// A 60-minute candidate at 09:30 runs into the 10:00 booking; 09:00 does not.
	for start, want := range map[int]bool{540: true, 570: false, 600: false, 630: false, 660: true} {
		if byStart[start] != want {
			t.Fatalf("slot %s available = %v, want %v", FormatMinute(start), byStart[start], want)
		}
	}
}

func TestSlotsBufferWidensCandidate(t *testing.T) {
	day := date(2025, time.March, 10)
	existing := []Entry{{ID: "a1", Date: day, StartMinute: 600, DurationMinutes: 60}}

	// Without a buffer, 09:00 is free for a 60-minute booking ending exactly
	// at 10:00. A 15-minute buffer pushes the padded end to 10:15 and takes
	// the slot away.
	plain := Slots(day, openWeek(), 30, 0, 60, existing)
	padded := Slots(day, openWeek(), 30, 15, 60, existing)

	if !availableAt(plain, 540) {
		t.Fatal("09:00 should be free with zero buffer")
	}
	if availableAt(padded, 540) {
		t.Fatal("09:00 should be taken once the 15-minute buffer is applied")
	}
	// Slot positions themselves are unchanged by the buffer.
	if len(plain) != len(padded) {
		t.Fatalf("buffer changed the slot grid: %d vs %d", len(plain), len(padded))
	}
}

func TestSlotsInvalidInputs(t *testing.T) {
	day := date(2025, time.March, 10)
	if got := Slots(day, openWeek(), 0, 0, 60, nil); got != nil {
		t.Fatal("non-positive step must yield no slots")
	}
	if got := Slots(day, openWeek(), 30, 0, 0, nil); got != nil {
		t.Fatal("non-positive duration must yield no slots")
	}
	badWeek := WeekHours{time.Monday: {Open: true, OpenMinute: 600, CloseMinute: 600}}
	if got := Slots(day, badWeek, 30, 0, 30, nil); got != nil {
		t.Fatal("an empty open window must yield no slots")
	}
}

func availableAt(slots []Slot, start int) bool {
	for _, s := range slots {
		if s.StartMinute == start {
			return s.Available
		}
	}
	return false
}
