// Package services – MedicationService
//
// This file implements registration and configuration of medications:
// creating them with an opened first box, editing schedules, pausing and
// resuming. Every write re-validates the whole configuration, and any change
// that affects when doses are due resets the robot checkpoint to now so that
// no dose is invented retroactively.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/clock"
	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/repo"
	"github.com/tbourn/go-med-robot/internal/schedule"
)

const maxNameRunes = 120

// MedicationSpec is the editable configuration of a medication.
type MedicationSpec struct {
	Name                  string
	Strength              string
	DosePerAdministration decimal.Decimal
	ScheduledTimes        []string
	PackCapacity          int
	TreatmentStartDate    string
	FrequencyKind         domain.FrequencyKind
	FrequencyIntervalDays int
	FrequencyWeekdays     []int
	Notes                 string
}

// NewMedication is a MedicationSpec plus the boxes handed over at
// registration. One of them is opened immediately.
type NewMedication struct {
	MedicationSpec
	BoxesOnHand int
}

// MedicationService manages medication configuration.
type MedicationService struct {
	DB    *gorm.DB
	Clock clock.Clock
}

func (s *MedicationService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC().Truncate(time.Second)
	}
	return s.Clock.Now().UTC().Truncate(time.Second)
}

// apply copies spec onto m, normalizing names and times.
func (spec MedicationSpec) apply(m *domain.Medication) error {
	m.Name = normalizeName(spec.Name, maxNameRunes)
	m.Strength = normalizeName(spec.Strength, 64)
	m.DosePerAdministration = spec.DosePerAdministration
	m.PackCapacity = spec.PackCapacity
	m.Notes = strings.TrimSpace(spec.Notes)

	times, err := schedule.NormalizeTimes(spec.ScheduledTimes)
	if err != nil {
		return invalid("scheduled_times: %v", err)
	}
	if len(times) != len(spec.ScheduledTimes) {
		return invalid("scheduled_times: duplicate entries")
	}
	m.ScheduledTimes = datatypes.JSONSlice[string](times)
	m.HourMask = schedule.HourMask(times)

	m.FrequencyKind = spec.FrequencyKind
	if m.FrequencyKind == "" {
		m.FrequencyKind = domain.FrequencyDaily
	}
	m.FrequencyIntervalDays = spec.FrequencyIntervalDays
	if m.FrequencyIntervalDays == 0 {
		m.FrequencyIntervalDays = domain.DefaultIntervalDays
	}
	m.FrequencyWeekdays = datatypes.JSONSlice[int](append([]int(nil), spec.FrequencyWeekdays...))

	m.TreatmentStartDate = nil
	if d := strings.TrimSpace(spec.TreatmentStartDate); d != "" {
		m.TreatmentStartDate = &d
	}
	return nil
}

// Create registers a medication for a patient. The first box is opened
// right away and the checkpoint starts at now.
func (s *MedicationService) Create(ctx context.Context, patientID string, in NewMedication) (*domain.Medication, error) {
	tr := otel.Tracer("services/MedicationService")
	ctx, span := tr.Start(ctx, "Create", trace.WithAttributes(attribute.String("patient.id", patientID)))
	defer span.End()

	if _, err := repo.GetPatient(ctx, s.DB, patientID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	if in.BoxesOnHand < 0 {
		return nil, invalid("boxes_on_hand must not be negative")
	}

	now := s.now()
	m := &domain.Medication{
		PatientID:     patientID,
		Status:        domain.StatusActive,
		LastCheckedAt: &now,
	}
	if err := in.apply(m); err != nil {
		return nil, err
	}
	m.ActivePackRemaining = decimal.Zero
	if in.BoxesOnHand > 0 {
		m.ActivePackRemaining = decimal.NewFromInt(int64(in.PackCapacity))
		m.SealedBoxCount = in.BoxesOnHand - 1
	}
	if err := ValidateMedication(m); err != nil {
		return nil, err
	}
	if err := repo.CreateMedication(ctx, s.DB, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Get returns a medication by id.
func (s *MedicationService) Get(ctx context.Context, id string) (*domain.Medication, error) {
	m, err := repo.GetMedication(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrMedicationNotFound
	}
	return m, err
}

// ListByPatient returns all medications of a patient.
func (s *MedicationService) ListByPatient(ctx context.Context, patientID string) ([]domain.Medication, error) {
	if _, err := repo.GetPatient(ctx, s.DB, patientID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return repo.ListMedicationsByPatient(ctx, s.DB, patientID)
}

// Delete soft-deletes a medication. Its history stays readable and the robot
// no longer sees it.
func (s *MedicationService) Delete(ctx context.Context, id string) error {
	err := repo.DeleteMedication(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrMedicationNotFound
	}
	return err
}

// Update replaces the configuration of a medication. Stock is untouched;
// the checkpoint is reset to now.
func (s *MedicationService) Update(ctx context.Context, id string, spec MedicationSpec) (*domain.Medication, error) {
	tr := otel.Tracer("services/MedicationService")
	ctx, span := tr.Start(ctx, "Update", trace.WithAttributes(attribute.String("medication.id", id)))
	defer span.End()

	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := spec.apply(m); err != nil {
		return nil, err
	}
	if err := ValidateMedication(m); err != nil {
		return nil, err
	}
	now := s.now()
	if err := repo.UpdateSchedule(ctx, s.DB, m, now); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}
	m.Revision++
	m.LastCheckedAt = &now
	return m, nil
}

// Pause stops the robot from reconciling a medication.
func (s *MedicationService) Pause(ctx context.Context, id string) (*domain.Medication, error) {
	return s.setStatus(ctx, id, domain.StatusPaused)
}

// Resume re-activates a paused medication. Doses scheduled while it was
// paused are not consumed: the checkpoint restarts at now.
func (s *MedicationService) Resume(ctx context.Context, id string) (*domain.Medication, error) {
	return s.setStatus(ctx, id, domain.StatusActive)
}

func (s *MedicationService) setStatus(ctx context.Context, id string, status domain.MedicationStatus) (*domain.Medication, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status == status {
		return m, nil
	}
	var checked *time.Time
	if status == domain.StatusActive {
		now := s.now()
		checked = &now
	}
	if err := repo.SetStatus(ctx, s.DB, m.ID, m.Revision, status, checked); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}
	m.Revision++
	m.Status = status
	if checked != nil {
		m.LastCheckedAt = checked
	}
	return m, nil
}

// Stats returns the count and latest update of a patient's medications,
// used to build list ETags.
func (s *MedicationService) Stats(ctx context.Context, patientID string) (int64, *time.Time, error) {
	return repo.MedicationsStats(ctx, s.DB, patientID)
}
