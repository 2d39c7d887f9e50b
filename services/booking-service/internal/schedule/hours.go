package schedule

import (
	"fmt"
	"time"
)

// DayHours is the open window for one weekday, in minutes since midnight.
// The zero value is a closed day.
type DayHours struct {
	Open        bool
	OpenMinute  int
	CloseMinute int
}

// WeekHours maps weekdays to their open windows. A weekday with no entry
// behaves as closed; callers that consider a missing entry a configuration
// fault should log it, the schedule package does not.
type WeekHours map[time.Weekday]DayHours

func (w WeekHours) Day(d time.Weekday) DayHours {
	return w[d]
}

// MinuteOfDay converts a wall-clock hour/minute pair into minutes since midnight.
func MinuteOfDay(hour, minute int) int {
	return hour*60 + minute
}

// FormatMinute renders a minute-of-day as "15:04".
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ParseMinute parses "15:04" into a minute-of-day.
func ParseMinute(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return MinuteOfDay(t.Hour(), t.Minute()), nil
}

// SameDate reports whether two timestamps fall on the same calendar date,
// ignoring the time component.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DateOnly truncates a timestamp to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartTime composes a date-only value and a minute-of-day into a timestamp.
func StartTime(date time.Time, minute int) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, minute, 0, 0, date.Location())
}
