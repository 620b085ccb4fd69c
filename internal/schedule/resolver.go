package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/tbourn/go-med-robot/internal/domain"
)

// Options carries the environment of a resolution.
type Options struct {
	// Location is the reference timezone scheduled times are expressed in.
	// Nil means UTC.
	Location *time.Location
	// MaxCatchUp bounds how far back before now instants are considered.
	// Zero or negative disables the bound.
	MaxCatchUp time.Duration
}

// DueDose is one scheduled administration that matured in a window.
type DueDose struct {
	Time ClockTime
	Date Date
	At   time.Time
}

// Window is the half-open interval (From, Until].
type Window struct {
	From  time.Time
	Until time.Time
}

// CatchUpLower returns the lower bound of the due window. When maxCatchUp
// cuts into (lastCheckedAt, now] the part left behind is returned too.
func CatchUpLower(lastCheckedAt, now time.Time, maxCatchUp time.Duration) (time.Time, *Window) {
	if maxCatchUp <= 0 {
		return lastCheckedAt, nil
	}
	floor := now.Add(-maxCatchUp)
	if !floor.After(lastCheckedAt) {
		return lastCheckedAt, nil
	}
	return floor, &Window{From: lastCheckedAt, Until: floor}
}

// ResolveDue returns the administrations of m that fall in (lastCheckedAt, now],
// ordered by instant. Every civil day touched by the window is evaluated, so
// the same clock time appears once per elapsed dosing day.
//
// A nil lastCheckedAt yields nothing: the caller is expected to baseline the
// checkpoint at now. Malformed scheduled times and wall-clock times that do
// not exist on a given day are skipped.
func ResolveDue(m *domain.Medication, lastCheckedAt *time.Time, now time.Time, opts Options) []DueDose {
	if lastCheckedAt == nil || !now.After(*lastCheckedAt) {
		return nil
	}
	loc := orUTC(opts.Location)

	lower, _ := CatchUpLower(*lastCheckedAt, now, opts.MaxCatchUp)

	times := validTimes(m.ScheduledTimes)
	if len(times) == 0 {
		return nil
	}

	var out []DueDose
	last := DateOf(now, loc)
	for d := DateOf(lower, loc); !d.After(last); d = d.AddDays(1) {
		if !IsDosingDay(m, d) {
			continue
		}
		for _, c := range times {
			at, ok := c.On(d, loc)
			if !ok {
				continue
			}
			if at.After(lower) && !at.After(now) {
				out = append(out, DueDose{Time: c, Date: d, At: at})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}

// validTimes parses each entry independently so one bad value does not hide
// the others.
func validTimes(values []string) []ClockTime {
	seen := make(map[int]struct{}, len(values))
	out := make([]ClockTime, 0, len(values))
	for _, v := range values {
		c, err := ParseClockTime(strings.TrimSpace(v))
		if err != nil {
			continue
		}
		if _, dup := seen[c.minutes()]; dup {
			continue
		}
		seen[c.minutes()] = struct{}{}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].minutes() < out[j].minutes() })
	return out
}

// Labels returns the HH:MM of each due dose, in order, keeping repeats.
func Labels(due []DueDose) []string {
	out := make([]string, len(due))
	for i, d := range due {
		out[i] = d.Time.String()
	}
	return out
}
