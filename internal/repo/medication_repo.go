package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/domain"
)

// ErrConflict is returned when a conditional medication write finds that the
// row changed since it was read (its revision moved on).
var ErrConflict = errors.New("medication changed concurrently")

// CreateMedication inserts m, assigning an ID and the initial revision when
// they are unset.
func CreateMedication(ctx context.Context, db *gorm.DB, m *domain.Medication) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Revision == 0 {
		m.Revision = 1
	}
	return db.WithContext(ctx).Create(m).Error
}

// GetMedication fetches a medication by ID or returns ErrNotFound.
func GetMedication(ctx context.Context, db *gorm.DB, id string) (*domain.Medication, error) {
	var m domain.Medication
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMedication soft-deletes medication id. The robot and every list
// query skip deleted rows; guarded writes against it report ErrConflict.
func DeleteMedication(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Medication{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListMedicationsByPatient returns all medications of a patient ordered by
// name, then id.
func ListMedicationsByPatient(ctx context.Context, db *gorm.DB, patientID string) ([]domain.Medication, error) {
	var out []domain.Medication
	err := db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("name ASC, id ASC").
		Find(&out).Error
	return out, err
}

// CandidateFilter narrows the robot's candidate scan. The zero value selects
// every active medication.
type CandidateFilter struct {
	// HourMask keeps medications with a scheduled hour in these buckets.
	HourMask int64
	// StaleBefore also keeps medications last checked before this instant
	// (and never-checked ones) whatever their hours.
	StaleBefore time.Time
}

// ListCandidateMedications returns active medications ordered by patient.
// When f carries a mask, medications outside it that were checked recently
// are left out.
func ListCandidateMedications(ctx context.Context, db *gorm.DB, f CandidateFilter) ([]domain.Medication, error) {
	var out []domain.Medication
	q := db.WithContext(ctx).Where("status = ?", domain.StatusActive)
	if f.HourMask != 0 {
		q = q.Where("((hour_mask & ?) <> 0 OR last_checked_at IS NULL OR last_checked_at < ?)", f.HourMask, f.StaleBefore)
	}
	err := q.Order("patient_id ASC, id ASC").Find(&out).Error
	return out, err
}

// updateGuarded applies fields to medication id only if its revision is
// still rev, bumping the revision. ErrConflict means someone else won.
func updateGuarded(ctx context.Context, db *gorm.DB, id string, rev int64, fields map[string]any) error {
	fields["revision"] = gorm.Expr("revision + 1")
	fields["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Medication{}).
		Where("id = ? AND revision = ?", id, rev).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// CommitConsumption stores the stock left after a consumption together with
// the new checkpoint.
func CommitConsumption(ctx context.Context, db *gorm.DB, id string, rev int64, active decimal.Decimal, sealed int, checkedAt time.Time) error {
	return updateGuarded(ctx, db, id, rev, map[string]any{
		"active_pack_remaining": active,
		"sealed_box_count":      sealed,
		"last_checked_at":       checkedAt,
	})
}

// AdvanceCheckpoint moves only the checkpoint forward.
func AdvanceCheckpoint(ctx context.Context, db *gorm.DB, id string, rev int64, checkedAt time.Time) error {
	return updateGuarded(ctx, db, id, rev, map[string]any{
		"last_checked_at": checkedAt,
	})
}

// SetStock overwrites both stock tiers without touching the checkpoint.
func SetStock(ctx context.Context, db *gorm.DB, id string, rev int64, active decimal.Decimal, sealed int) error {
	return updateGuarded(ctx, db, id, rev, map[string]any{
		"active_pack_remaining": active,
		"sealed_box_count":      sealed,
	})
}

// UpdateSchedule persists the editable configuration of m and resets its
// checkpoint to checkedAt.
func UpdateSchedule(ctx context.Context, db *gorm.DB, m *domain.Medication, checkedAt time.Time) error {
	return updateGuarded(ctx, db, m.ID, m.Revision, map[string]any{
		"name":                    m.Name,
		"strength":                m.Strength,
		"dose_per_administration": m.DosePerAdministration,
		"scheduled_times":         m.ScheduledTimes,
		"hour_mask":               m.HourMask,
		"pack_capacity":           m.PackCapacity,
		"treatment_start_date":    m.TreatmentStartDate,
		"frequency_kind":          m.FrequencyKind,
		"frequency_interval_days": m.FrequencyIntervalDays,
		"frequency_weekdays":      m.FrequencyWeekdays,
		"notes":                   m.Notes,
		"last_checked_at":         checkedAt,
	})
}

// SetStatus changes the lifecycle status; a non-nil checkedAt also resets
// the checkpoint.
func SetStatus(ctx context.Context, db *gorm.DB, id string, rev int64, status domain.MedicationStatus, checkedAt *time.Time) error {
	fields := map[string]any{"status": status}
	if checkedAt != nil {
		fields["last_checked_at"] = *checkedAt
	}
	return updateGuarded(ctx, db, id, rev, fields)
}
