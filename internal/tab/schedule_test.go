package tab

import (
	"testing"
	"time"
)

func weekdayWindow() Window {
	return Window{
		StartDate:      "2024-01-01",
		EndDate:        "2024-01-31",
		DailyStartTime: "09:00",
		DailyEndTime:   "17:00",
		ActiveDaysOfWk: 0b0111110, // Monday through Friday
	}
}

func TestActiveAtWithinWindow(t *testing.T) {
	w := weekdayWindow()
	// 2024-01-15 is a Monday.
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	if !w.ActiveAt(now) {
		t.Error("expected window to be active on a weekday morning in range")
	}
}

func TestActiveAtAfterEndDate(t *testing.T) {
	w := weekdayWindow()
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	if w.ActiveAt(now) {
		t.Error("window must be inactive after its end date")
	}
}

func TestActiveAtDateBoundariesInclusive(t *testing.T) {
	w := weekdayWindow()
	w.ActiveDaysOfWk = 0

	first := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if !w.ActiveAt(first) {
		t.Error("start date itself should be active")
	}
	last := time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)
	if !w.ActiveAt(last) {
		t.Error("end date itself should be active")
	}
	before := time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC)
	if w.ActiveAt(before) {
		t.Error("day before start must be inactive")
	}
}

func TestActiveAtTimeBoundariesInclusive(t *testing.T) {
	w := weekdayWindow()

	atOpen := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	if !w.ActiveAt(atOpen) {
		t.Error("opening minute should be active")
	}
	atClose := time.Date(2024, 1, 15, 17, 0, 0, 0, time.UTC)
	if !w.ActiveAt(atClose) {
		t.Error("closing minute should be active")
	}
	beforeOpen := time.Date(2024, 1, 15, 8, 59, 0, 0, time.UTC)
	if w.ActiveAt(beforeOpen) {
		t.Error("minute before opening must be inactive")
	}
	afterClose := time.Date(2024, 1, 15, 17, 1, 0, 0, time.UTC)
	if w.ActiveAt(afterClose) {
		t.Error("minute after closing must be inactive")
	}
}

func TestActiveAtDayMask(t *testing.T) {
	w := weekdayWindow()

	// 2024-01-14 is a Sunday, excluded by the weekday mask.
	sunday := time.Date(2024, 1, 14, 12, 0, 0, 0, time.UTC)
	if w.ActiveAt(sunday) {
		t.Error("sunday must be inactive under a weekday mask")
	}

	w.ActiveDaysOfWk = 1 // Sunday only
	if !w.ActiveAt(sunday) {
		t.Error("sunday should be active when bit 0 is set")
	}
	monday := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	if w.ActiveAt(monday) {
		t.Error("monday must be inactive under a sunday-only mask")
	}
}

func TestActiveAtZeroMaskMeansEveryDay(t *testing.T) {
	w := weekdayWindow()
	w.ActiveDaysOfWk = 0

	sunday := time.Date(2024, 1, 14, 12, 0, 0, 0, time.UTC)
	if !w.ActiveAt(sunday) {
		t.Error("zero mask should allow every day of the week")
	}
}

func TestActiveAtFailsClosedOnBadInput(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	w := weekdayWindow()
	w.DailyEndTime = "25:99"
	if w.ActiveAt(now) {
		t.Error("malformed time must make the window inactive")
	}

	w = weekdayWindow()
	w.DailyStartTime = "9:00"
	if w.ActiveAt(now) {
		t.Error("non-padded time must make the window inactive")
	}

	w = weekdayWindow()
	w.StartDate = "01/01/2024"
	if w.ActiveAt(now) {
		t.Error("malformed date must make the window inactive")
	}
}

func TestActiveAtUsesUTC(t *testing.T) {
	w := weekdayWindow()

	// 2024-01-16 01:00 in UTC+9 is still 2024-01-15 16:00 UTC.
	tokyo := time.FixedZone("UTC+9", 9*60*60)
	now := time.Date(2024, 1, 16, 1, 0, 0, 0, tokyo)
	if !w.ActiveAt(now) {
		t.Error("instant should be evaluated in UTC")
	}
}

func TestMinutesOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"noon", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := minutesOfDay(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("minutesOfDay(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
