package schedule

import "time"

// Entry is an existing appointment as seen by the conflict detector:
// a date, a half-open minute interval and a cancellation flag. Label is
// the customer-facing string used in conflict messages.
type Entry struct {
	ID              string
	Date            time.Time
	StartMinute     int
	DurationMinutes int
	Cancelled       bool
	Label           string
}

func (e Entry) EndMinute() int {
	return e.StartMinute + e.DurationMinutes
}

// Conflict identifies one existing appointment that collides with a candidate.
type Conflict struct {
	ID     string
	Label  string
	Window string // e.g. "10:00-11:00"
}

// overlaps reports whether the half-open minute intervals [s1,e1) and
// [s2,e2) intersect. Touching endpoints do not count: an appointment
// ending at minute 600 never collides with one starting at minute 600.
func overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// Conflicts returns every non-cancelled entry on the candidate's calendar
// date whose interval overlaps [startMinute, startMinute+durationMinutes).
// Entries on other dates are never compared; appointments do not span
// midnight. excludeID skips the appointment being edited so it cannot
// collide with itself.
//
// The detector is pure and does not defend against durationMinutes <= 0;
// callers reject candidates with no services before getting here.
func Conflicts(date time.Time, startMinute, durationMinutes int, entries []Entry, excludeID string) []Conflict {
	end := startMinute + durationMinutes
	var out []Conflict
	for _, e := range entries {
		if e.Cancelled {
			continue
		}
		if excludeID != "" && e.ID == excludeID {
			continue
		}
		if !SameDate(e.Date, date) {
			continue
		}
		if overlaps(startMinute, end, e.StartMinute, e.EndMinute()) {
			out = append(out, Conflict{
				ID:     e.ID,
				Label:  e.Label,
				Window: FormatMinute(e.StartMinute) + "-" + FormatMinute(e.EndMinute()),
			})
		}
	}
	return out
}

// HasConflict is the boolean form of Conflicts; the two are kept consistent
// by construction.
func HasConflict(date time.Time, startMinute, durationMinutes int, entries []Entry, excludeID string) bool {
	return len(Conflicts(date, startMinute, durationMinutes, entries, excludeID)) > 0
}
