package tab

import (
	"regexp"
	"time"
)

// hhmmPattern matches strict 24-hour HH:MM wall-clock times.
var hhmmPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// minutesOfDay converts "HH:MM" to minutes since midnight.
// Malformed input returns ok = false; callers must fail closed.
func minutesOfDay(hhmm string) (int, bool) {
	m := hhmmPattern.FindStringSubmatch(hhmm)
	if m == nil {
		return 0, false
	}
	hr := int(m[1][0]-'0')*10 + int(m[1][1]-'0')
	mn := int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	return hr*60 + mn, true
}

// ActiveAt reports whether the window contains the given instant.
// Dates are inclusive and compared at UTC midnight; the daily time
// range is inclusive at both ends; bitmask 0 means every weekday.
//
// Any unparsable date or time makes the window inactive. This
// predicate gates live checkout, so a misconfigured window must never
// read as always-open.
func (w Window) ActiveAt(now time.Time) bool {
	startDate, err := time.ParseInLocation(time.DateOnly, w.StartDate, time.UTC)
	if err != nil {
		return false
	}
	endDate, err := time.ParseInLocation(time.DateOnly, w.EndDate, time.UTC)
	if err != nil {
		return false
	}

	startMin, ok := minutesOfDay(w.DailyStartTime)
	if !ok {
		return false
	}
	endMin, ok := minutesOfDay(w.DailyEndTime)
	if !ok {
		return false
	}

	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(startDate) || day.After(endDate) {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	if minute < startMin || minute > endMin {
		return false
	}

	if w.ActiveDaysOfWk != 0 {
		if w.ActiveDaysOfWk&(1<<int(now.Weekday())) == 0 {
			return false
		}
	}

	return true
}
