package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/schedule"
)

// invalid wraps a field message in ErrInvalidMedication.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidMedication, fmt.Sprintf(format, args...))
}

// Quantities are stored as decimal(12,4).
const quantityScale = 4

var quantityLimit = decimal.New(1, 8)

// checkQuantity rejects values the quantity columns cannot hold exactly.
func checkQuantity(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(quantityScale)) {
		return fmt.Errorf("%s has more than %d decimal places", d.String(), quantityScale)
	}
	if d.Abs().GreaterThanOrEqual(quantityLimit) {
		return fmt.Errorf("%s is out of range", d.String())
	}
	return nil
}

// ValidateMedication checks the configuration and stock of m. It runs when
// medications are written and again before the robot reconciles one, so a
// bad row is skipped rather than crashing a cycle.
func ValidateMedication(m *domain.Medication) error {
	if m.Name == "" {
		return invalid("name is required")
	}
	if !m.DosePerAdministration.IsPositive() {
		return invalid("dose_per_administration must be positive")
	}
	if err := checkQuantity(m.DosePerAdministration); err != nil {
		return invalid("dose_per_administration: %v", err)
	}
	if len(m.ScheduledTimes) == 0 {
		return invalid("at least one scheduled time is required")
	}
	seen := make(map[string]struct{}, len(m.ScheduledTimes))
	for _, v := range m.ScheduledTimes {
		if _, err := schedule.ParseClockTime(v); err != nil {
			return invalid("scheduled_times: %v", err)
		}
		if _, dup := seen[v]; dup {
			return invalid("scheduled_times: duplicate %s", v)
		}
		seen[v] = struct{}{}
	}
	if m.PackCapacity <= 0 {
		return invalid("pack_capacity must be positive")
	}
	if int64(m.PackCapacity) >= quantityLimit.IntPart() {
		return invalid("pack_capacity is out of range")
	}
	if m.SealedBoxCount < 0 {
		return invalid("sealed_box_count must not be negative")
	}
	if m.ActivePackRemaining.IsNegative() {
		return invalid("active_pack_remaining must not be negative")
	}
	if err := checkQuantity(m.ActivePackRemaining); err != nil {
		return invalid("active_pack_remaining: %v", err)
	}
	if m.ActivePackRemaining.GreaterThan(decimal.NewFromInt(int64(m.PackCapacity))) {
		return invalid("active_pack_remaining exceeds pack_capacity")
	}
	if !m.FrequencyKind.Valid() {
		return invalid("unknown frequency_kind %q", m.FrequencyKind)
	}
	switch m.FrequencyKind {
	case domain.FrequencyWeeklyDays:
		if len(m.FrequencyWeekdays) == 0 {
			return invalid("frequency_weekdays is required for WEEKLY_DAYS")
		}
		for _, d := range m.FrequencyWeekdays {
			if d < 0 || d > 6 {
				return invalid("frequency_weekdays: %d is not in 0..6", d)
			}
		}
	case domain.FrequencyEveryNDays:
		if m.FrequencyIntervalDays < 1 {
			return invalid("frequency_interval_days must be at least 1")
		}
	}
	if m.TreatmentStartDate != nil && *m.TreatmentStartDate != "" {
		if _, err := schedule.ParseDate(*m.TreatmentStartDate); err != nil {
			return invalid("treatment_start_date: %v", err)
		}
	}
	return nil
}
