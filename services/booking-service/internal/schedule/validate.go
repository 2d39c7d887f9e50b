package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Candidate carries everything a booking submission provides. EditID is
// empty for new bookings and holds the appointment's own id when an existing
// booking is being rescheduled or edited.
type Candidate struct {
	EditID          string
	Date            time.Time
	StartMinute     int
	DurationMinutes int
	ServiceCount    int

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	VehicleMake  string
	VehicleModel string

	Address string
	City    string
	State   string
	Zip     string
}

// Settings is the business configuration a validation run needs.
type Settings struct {
	Week            WeekHours
	MinAdvanceHours int
}

// Result is the outcome of one validation pass. Reasons is empty when the
// candidate is acceptable; Conflicts carries the colliding appointments
// whenever a conflict reason is present.
type Result struct {
	Reasons   []string
	Conflicts []Conflict
}

func (r Result) OK() bool {
	return len(r.Reasons) == 0
}

// Validate runs every check against the candidate and collects all failures
// in one pass so the caller can show every problem at once. It never panics
// on bad user input. The caller supplies "now" explicitly; Validate reads no
// clock of its own, so identical inputs always produce identical results.
//
// Edits (EditID set) skip the past-date and advance-window checks, which
// keeps re-saving an untouched appointment always valid.
func Validate(c Candidate, s Settings, entries []Entry, now time.Time) Result {
	var res Result

	requireField(&res, c.CustomerName, "customer name is required")
	requireField(&res, c.CustomerEmail, "email is required")
	requireField(&res, c.CustomerPhone, "phone is required")
	requireField(&res, c.VehicleMake, "vehicle make is required")
	requireField(&res, c.VehicleModel, "vehicle model is required")
	requireField(&res, c.Address, "address is required")
	requireField(&res, c.City, "city is required")
	requireField(&res, c.State, "state is required")
	requireField(&res, c.Zip, "zip code is required")

	if strings.TrimSpace(c.CustomerEmail) != "" && !emailRe.MatchString(strings.TrimSpace(c.CustomerEmail)) {
		res.Reasons = append(res.Reasons, "email format is invalid")
	}
	if strings.TrimSpace(c.CustomerPhone) != "" {
		digits := digitCount(c.CustomerPhone)
		if digits < 10 || digits > 15 {
			res.Reasons = append(res.Reasons, "phone number must contain 10 to 15 digits")
		}
	}

	if c.ServiceCount <= 0 || c.DurationMinutes <= 0 {
		res.Reasons = append(res.Reasons, "at least one service must be selected")
	}

	if c.EditID == "" {
		if DateOnly(c.Date).Before(DateOnly(now)) {
			res.Reasons = append(res.Reasons, "appointment date cannot be in the past")
		}
		earliest := now.Add(time.Duration(s.MinAdvanceHours) * time.Hour)
		if StartTime(c.Date, c.StartMinute).Before(earliest) {
			res.Reasons = append(res.Reasons, "appointments must be booked at least "+strconv.Itoa(s.MinAdvanceHours)+" hours in advance")
		}
	}

	day := s.Week.Day(c.Date.Weekday())
	switch {
	case !day.Open:
		res.Reasons = append(res.Reasons, "the business is closed on the selected day")
	case c.StartMinute < day.OpenMinute:
		res.Reasons = append(res.Reasons, "start time "+FormatMinute(c.StartMinute)+" is before opening time "+FormatMinute(day.OpenMinute))
	case c.DurationMinutes > 0 && c.StartMinute+c.DurationMinutes > day.CloseMinute:
		res.Reasons = append(res.Reasons, "the appointment would end at "+FormatMinute(c.StartMinute+c.DurationMinutes)+", after closing time "+FormatMinute(day.CloseMinute))
	}

	if c.DurationMinutes > 0 {
		if conflicts := Conflicts(c.Date, c.StartMinute, c.DurationMinutes, entries, c.EditID); len(conflicts) > 0 {
			res.Conflicts = conflicts
			for _, cf := range conflicts {
				msg := "the selected time conflicts with an existing appointment at " + cf.Window
				if cf.Label != "" {
					msg = "the selected time conflicts with " + cf.Label + "'s appointment at " + cf.Window
				}
				res.Reasons = append(res.Reasons, msg)
			}
		}
	}

	return res
}

func requireField(res *Result, value, reason string) {
	if strings.TrimSpace(value) == "" {
		res.Reasons = append(res.Reasons, reason)
	}
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
