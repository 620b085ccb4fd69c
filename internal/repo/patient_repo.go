// Package repo implements the data persistence layer for domain entities,
// backed by GORM.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
//
// Error semantics:
//   - Missing rows surface as gorm.ErrRecordNotFound (exported as ErrNotFound).
//   - Conditional medication writes that lose a race return ErrConflict.
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreatePatient inserts p with a random UUID. An empty condition is stored
// as STABLE.
func CreatePatient(ctx context.Context, db *gorm.DB, p domain.Patient) (*domain.Patient, error) {
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Condition == "" {
		p.Condition = domain.ConditionStable
	}
	if err := db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePatient overwrites the editable fields of patient id.
func UpdatePatient(ctx context.Context, db *gorm.DB, id string, p domain.Patient) error {
	res := db.WithContext(ctx).
		Model(&domain.Patient{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"name":       p.Name,
			"notes":      p.Notes,
			"room":       p.Room,
			"condition":  p.Condition,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePatient soft-deletes patient id together with its medications in a
// single transaction. History rows are kept.
func DeletePatient(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&domain.Patient{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Where("patient_id = ?", id).Delete(&domain.Medication{}).Error
	})
}

// GetPatient fetches a patient by ID or returns ErrNotFound.
func GetPatient(ctx context.Context, db *gorm.DB, id string) (*domain.Patient, error) {
	var p domain.Patient
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// CountPatients returns the number of patients.
func CountPatients(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Patient{}).Count(&total).Error
	return total, err
}

// ListPatientsPage returns patients ordered by name, then id.
func ListPatientsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Patient, error) {
	var out []domain.Patient
	err := db.WithContext(ctx).
		Order("name ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
