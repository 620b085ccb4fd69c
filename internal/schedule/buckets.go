package schedule

import "time"

// AllHours is a mask with every hour bucket set.
const AllHours int64 = 1<<24 - 1

// HourMask encodes the hours of the given HH:MM values as a 24-bit mask.
// Malformed values are ignored.
func HourMask(times []string) int64 {
	var mask int64
	for _, c := range validTimes(times) {
		mask |= 1 << uint(c.Hour)
	}
	return mask
}

// WindowMask returns the hour buckets, in loc, touched by (now-lookback, now].
// Stored HourMask values matching this mask are the medications that can
// have an instant due in the window.
func WindowMask(now time.Time, lookback time.Duration, loc *time.Location) int64 {
	if lookback >= 24*time.Hour {
		return AllHours
	}
	loc = orUTC(loc)
	var mask int64
	for t := now.Add(-lookback); t.Before(now); t = t.Add(time.Hour) {
		mask |= 1 << uint(t.In(loc).Hour())
	}
	mask |= 1 << uint(now.In(loc).Hour())
	return mask
}
