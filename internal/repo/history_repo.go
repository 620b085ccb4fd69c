package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/domain"
)

// HistoryFilter narrows history listings. A nil Grouped returns both kinds.
type HistoryFilter struct {
	Grouped *bool
}

func (f HistoryFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Grouped == nil {
		return q
	}
	if *f.Grouped {
		return q.Where("medication_id = ?", domain.GroupedMedicationID)
	}
	return q.Where("medication_id <> ?", domain.GroupedMedicationID)
}

// AppendHistory inserts e. Missing ID and timestamp are filled in.
// History rows are never updated or deleted.
func AppendHistory(ctx context.Context, db *gorm.DB, e *domain.HistoryEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	e.CreatedAt = now
	return db.WithContext(ctx).Create(e).Error
}

// GetHistoryEntry fetches a single entry by ID or returns ErrNotFound.
func GetHistoryEntry(ctx context.Context, db *gorm.DB, id string) (*domain.HistoryEntry, error) {
	var e domain.HistoryEntry
	if err := db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// CountHistory returns the number of entries of a patient matching f.
func CountHistory(ctx context.Context, db *gorm.DB, patientID string, f HistoryFilter) (int64, error) {
	var total int64
	q := db.WithContext(ctx).Model(&domain.HistoryEntry{}).Where("patient_id = ?", patientID)
	err := f.apply(q).Count(&total).Error
	return total, err
}

// ListHistoryPage returns a patient's entries, newest first.
// A non-positive limit returns every matching row.
func ListHistoryPage(ctx context.Context, db *gorm.DB, patientID string, f HistoryFilter, offset, limit int) ([]domain.HistoryEntry, error) {
	var out []domain.HistoryEntry
	q := db.WithContext(ctx).Where("patient_id = ?", patientID)
	q = f.apply(q).Order("timestamp DESC, id DESC").Offset(offset)
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
