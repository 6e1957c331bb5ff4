// Package datefmt renders event timestamps the way the event screens show them.
package datefmt

import "time"

const (
	dateTimeLayout = "Jan 2, 2006 @ 3:04 PM"
	timeLayout     = "3:04 PM"
	dayLayout      = "Jan 2, 2006"
)

// EventDate formats t as "Jan 2, 2006 @ 3:04 PM" in loc.
func EventDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(dateTimeLayout)
}

func EventTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(timeLayout)
}

func EventDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

// EventDateRange prints only the end time when both ends fall on the same
// calendar day in loc, and the full end date otherwise.
func EventDateRange(start, end time.Time, loc *time.Location) string {
	s, e := start.In(loc), end.In(loc)
	if s.Format(time.DateOnly) == e.Format(time.DateOnly) {
		return s.Format(dateTimeLayout) + " - " + e.Format(timeLayout)
	}
	return s.Format(dateTimeLayout) + " - " + e.Format(dateTimeLayout)
}
