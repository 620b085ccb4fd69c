package repo

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-med-robot/internal/domain"
)

var allModels = []any{&domain.Patient{}, &domain.Medication{}, &domain.HistoryEntry{}, &domain.Idempotency{}}

// newTestDB opens a throwaway file database. Pass models to migrate.
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedPatient(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	if err := db.Create(&domain.Patient{ID: id, Name: "patient " + id}).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}
}

func newMed(id, patientID string, times ...string) *domain.Medication {
	return &domain.Medication{
		ID:                    id,
		PatientID:             patientID,
		Name:                  "med " + id,
		DosePerAdministration: decimal.NewFromInt(1),
		ScheduledTimes:        datatypes.JSONSlice[string](times),
		ActivePackRemaining:   decimal.NewFromInt(10),
		SealedBoxCount:        1,
		PackCapacity:          10,
		FrequencyKind:         domain.FrequencyDaily,
		FrequencyIntervalDays: 2,
		Status:                domain.StatusActive,
	}
}
