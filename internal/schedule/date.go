// Package schedule decides when a medication is due. It holds the dosing-day
// predicate, the due-dose resolver and the hour-bucket helpers used to
// narrow candidate queries. Everything here is pure: callers pass the
// reference location and the current instant explicitly.
package schedule

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of civil dates (treatment start dates).
const DateLayout = "2006-01-02"

// Date is a civil calendar date with no time-of-day and no location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf returns the civil date of t as observed in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	y, m, d := t.In(orUTC(loc)).Date()
	return Date{Year: y, Month: m, Day: d}
}

// midnight is the UTC midnight of d; used only for day arithmetic.
func (d Date) midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns d shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	y, m, dd := d.midnight().AddDate(0, 0, n).Date()
	return Date{Year: y, Month: m, Day: dd}
}

// Weekday returns the day of the week, Sunday = 0.
func (d Date) Weekday() time.Weekday { return d.midnight().Weekday() }

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.midnight().Before(o.midnight()) }

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool { return d.midnight().After(o.midnight()) }

// String formats d as YYYY-MM-DD.
func (d Date) String() string { return d.midnight().Format(DateLayout) }

// DaysBetween counts whole calendar days from a to b. It is negative when b
// is before a and zero when they are the same day.
func DaysBetween(a, b Date) int {
	return int(b.midnight().Sub(a.midnight()).Hours() / 24)
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
