package schedule

import (
	"fmt"
	"sort"
	"time"
)

// ClockTime is a wall-clock time of day (HH:MM) in the reference location.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses a strict two-digit HH:MM value.
func ParseClockTime(s string) (ClockTime, error) {
	if len(s) != 5 || s[2] != ':' {
		return ClockTime{}, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, okH := twoDigits(s[0:2])
	m, okM := twoDigits(s[3:5])
	if !okH || !okM || h > 23 || m > 59 {
		return ClockTime{}, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// String formats c as HH:MM.
func (c ClockTime) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }

// minutes since midnight, used for ordering.
func (c ClockTime) minutes() int { return c.Hour*60 + c.Minute }

// On anchors c on civil date d in loc. The second result is false when the
// wall-clock time does not exist on that day (a DST gap).
func (c ClockTime) On(d Date, loc *time.Location) (time.Time, bool) {
	loc = orUTC(loc)
	t := time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, loc)
	y, m, dd := t.Date()
	if y != d.Year || m != d.Month || dd != d.Day || t.Hour() != c.Hour || t.Minute() != c.Minute {
		return time.Time{}, false
	}
	return t, true
}

// ParseClockTimes parses, de-duplicates and sorts a list of HH:MM values.
// The first malformed entry aborts with an error.
func ParseClockTimes(values []string) ([]ClockTime, error) {
	seen := make(map[int]struct{}, len(values))
	out := make([]ClockTime, 0, len(values))
	for _, v := range values {
		c, err := ParseClockTime(v)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[c.minutes()]; dup {
			continue
		}
		seen[c.minutes()] = struct{}{}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].minutes() < out[j].minutes() })
	return out, nil
}

// NormalizeTimes returns the canonical sorted unique HH:MM strings.
func NormalizeTimes(values []string) ([]string, error) {
	cs, err := ParseClockTimes(values)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out, nil
}
