// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/domain"
)

// HistoryStats returns the number of history rows of a patient matching f
// and the newest timestamp among them. With no rows it returns (0, nil, nil).
func HistoryStats(ctx context.Context, db *gorm.DB, patientID string, f HistoryFilter) (count int64, latest *time.Time, err error) {
	scope := func() *gorm.DB {
		return f.apply(db.WithContext(ctx).Model(&domain.HistoryEntry{}).Where("patient_id = ?", patientID))
	}

	if err = scope().Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest timestamp (avoid MAX() -> TEXT in SQLite)
	var row struct {
		Timestamp time.Time
	}
	if err = scope().Select("timestamp").Order("timestamp DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.Timestamp, nil
}

// MedicationsStats returns the number of medications of a patient and the
// greatest UpdatedAt among them.
func MedicationsStats(ctx context.Context, db *gorm.DB, patientID string) (count int64, maxUpdatedAt *time.Time, err error) {
	scope := func() *gorm.DB {
		return db.WithContext(ctx).Model(&domain.Medication{}).Where("patient_id = ?", patientID)
	}

	if err = scope().Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		UpdatedAt time.Time
	}
	if err = scope().Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
