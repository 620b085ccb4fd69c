package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/repo"
	"github.com/tbourn/go-med-robot/internal/schedule"
)

// ---------- test helpers ----------

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.Open(repo.Options{
		Driver: repo.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "services_test.db"),
		Silent: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func mustPatient(t *testing.T, db *gorm.DB, name string) *domain.Patient {
	t.Helper()
	p, err := repo.CreatePatient(context.Background(), db, domain.Patient{Name: name})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return p
}

type medOpt func(m *domain.Medication)

func withStock(active string, sealed, capacity int) medOpt {
	return func(m *domain.Medication) {
		m.ActivePackRemaining = decimal.RequireFromString(active)
		m.SealedBoxCount = sealed
		m.PackCapacity = capacity
	}
}

func withCheckpoint(ts *time.Time) medOpt {
	return func(m *domain.Medication) { m.LastCheckedAt = ts }
}

func withTimes(times ...string) medOpt {
	return func(m *domain.Medication) {
		m.ScheduledTimes = datatypes.JSONSlice[string](times)
		m.HourMask = schedule.HourMask(times)
	}
}

func withDose(d string) medOpt {
	return func(m *domain.Medication) { m.DosePerAdministration = decimal.RequireFromString(d) }
}

// mustMed inserts a daily 08:00/20:00 medication with 10 units open and one
// sealed box, checkpointed at 2025-01-10T07:00Z, then applies opts.
func mustMed(t *testing.T, db *gorm.DB, patientID, name string, opts ...medOpt) *domain.Medication {
	t.Helper()
	checked := at("2025-01-10T07:00:00Z")
	m := &domain.Medication{
		PatientID:             patientID,
		Name:                  name,
		DosePerAdministration: decimal.NewFromInt(1),
		ActivePackRemaining:   decimal.NewFromInt(10),
		SealedBoxCount:        1,
		PackCapacity:          10,
		FrequencyKind:         domain.FrequencyDaily,
		FrequencyIntervalDays: domain.DefaultIntervalDays,
		Status:                domain.StatusActive,
		LastCheckedAt:         &checked,
	}
	withTimes("08:00", "20:00")(m)
	for _, o := range opts {
		o(m)
	}
	if err := repo.CreateMedication(context.Background(), db, m); err != nil {
		t.Fatalf("create medication: %v", err)
	}
	return m
}

func reload(t *testing.T, db *gorm.DB, id string) *domain.Medication {
	t.Helper()
	m, err := repo.GetMedication(context.Background(), db, id)
	if err != nil {
		t.Fatalf("reload medication: %v", err)
	}
	return m
}

func historyOf(t *testing.T, db *gorm.DB, patientID string) []domain.HistoryEntry {
	t.Helper()
	out, err := repo.ListHistoryPage(context.Background(), db, patientID, repo.HistoryFilter{}, 0, 0)
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	return out
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
