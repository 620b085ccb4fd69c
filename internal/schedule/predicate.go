package schedule

import (
	"github.com/tbourn/go-med-robot/internal/domain"
)

// IsDosingDay reports whether d is a day on which m should be taken.
//
// A medication with no (or an unparsable) treatment start date is dosed
// every day regardless of its frequency kind. For EVERY_N_DAYS the start
// date is day zero and days before it never qualify.
func IsDosingDay(m *domain.Medication, d Date) bool {
	if m.TreatmentStartDate == nil || *m.TreatmentStartDate == "" {
		return true
	}
	start, err := ParseDate(*m.TreatmentStartDate)
	if err != nil {
		return true
	}

	switch m.FrequencyKind {
	case domain.FrequencyWeeklyDays:
		wd := int(d.Weekday())
		for _, w := range m.FrequencyWeekdays {
			if w == wd {
				return true
			}
		}
		return false
	case domain.FrequencyEveryNDays:
		n := DaysBetween(start, d)
		if n < 0 {
			return false
		}
		return n%IntervalDays(m) == 0
	default:
		return true
	}
}

// IntervalDays returns the effective EVERY_N_DAYS interval of m.
func IntervalDays(m *domain.Medication) int {
	if m.FrequencyIntervalDays <= 0 {
		return domain.DefaultIntervalDays
	}
	return m.FrequencyIntervalDays
}
