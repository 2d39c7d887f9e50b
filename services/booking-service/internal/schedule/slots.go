package schedule

import "time"

// Slot is a candidate start time within a business day.
type Slot struct {
	StartMinute int
	Available   bool
}

// Slots enumerates every stepMinutes-aligned start time between the day's
// open minute and (close minute - durationMinutes), inclusive, in ascending
// order, each tagged with whether a booking of durationMinutes would be free
// of conflicts. bufferMinutes is an idle gap enforced between consecutive
// appointments: it pads the candidate interval during enumeration only and
// plays no part in conflict detection proper.
//
// A closed (or unconfigured) weekday yields no slots. The result is a pure
// function of the inputs.
func Slots(date time.Time, week WeekHours, stepMinutes, bufferMinutes, durationMinutes int, entries []Entry) []Slot {
	if stepMinutes <= 0 || durationMinutes <= 0 {
		return nil
	}
	day := week.Day(date.Weekday())
	if !day.Open || day.CloseMinute <= day.OpenMinute {
		return nil
	}

	var out []Slot
	for start := day.OpenMinute; start+durationMinutes <= day.CloseMinute; start += stepMinutes {
		free := !HasConflict(date, start, durationMinutes+bufferMinutes, entries, "")
		out = append(out, Slot{StartMinute: start, Available: free})
	}
	return out
}
