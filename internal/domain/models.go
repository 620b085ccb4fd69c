// Package domain defines the persistence models for patients, medications
// and the append-only medication history. These types are mapped with GORM
// and shared by the repository, service and HTTP layers.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FrequencyKind selects how a medication's dosing days are computed.
type FrequencyKind string

const (
	FrequencyDaily      FrequencyKind = "DAILY"
	FrequencyEveryNDays FrequencyKind = "EVERY_N_DAYS"
	FrequencyWeeklyDays FrequencyKind = "WEEKLY_DAYS"
)

// Valid reports whether k is one of the known frequency kinds.
func (k FrequencyKind) Valid() bool {
	switch k {
	case FrequencyDaily, FrequencyEveryNDays, FrequencyWeeklyDays:
		return true
	}
	return false
}

// MedicationStatus is the lifecycle state of a medication. Paused
// medications are never reconciled by the robot.
type MedicationStatus string

const (
	StatusActive MedicationStatus = "ACTIVE"
	StatusPaused MedicationStatus = "PAUSED"
)

// ActionKind classifies a history entry.
type ActionKind string

const (
	ActionAutoConsumed     ActionKind = "AUTO_CONSUMED"
	ActionStockShortage    ActionKind = "STOCK_SHORTAGE"
	ActionManualAdjustment ActionKind = "MANUAL_ADJUSTMENT"
	ActionReturnedDose     ActionKind = "RETURNED_DOSE"
	ActionAdHocDose        ActionKind = "AD_HOC_DOSE"
)

// PatientCondition is the care team's triage flag for a patient.
type PatientCondition string

const (
	ConditionStable    PatientCondition = "STABLE"
	ConditionAttention PatientCondition = "ATTENTION"
	ConditionCritical  PatientCondition = "CRITICAL"
)

// Valid reports whether c is one of the known conditions.
func (c PatientCondition) Valid() bool {
	switch c {
	case ConditionStable, ConditionAttention, ConditionCritical:
		return true
	}
	return false
}

// GroupedMedicationID is the medication id carried by per-patient cycle
// summaries that aggregate several medications.
const GroupedMedicationID = "GROUPED"

// DefaultIntervalDays is used when an EVERY_N_DAYS medication has no
// usable interval.
const DefaultIntervalDays = 2

// Patient is the person medications belong to. Robot summaries are grouped
// per patient. Deleting a patient soft-deletes its medications too.
type Patient struct {
	ID        string           `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string           `json:"name"       gorm:"type:varchar(255);not null"`
	Notes     string           `json:"notes"      gorm:"type:text"`
	Room      string           `json:"room"       gorm:"type:varchar(32)"`
	Condition PatientCondition `json:"condition"  gorm:"type:varchar(16);not null;default:STABLE"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
	DeletedAt gorm.DeletedAt   `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Patient.
func (Patient) TableName() string { return "patients" }

// Medication is a prescribed item tracked for a patient: what to take, when,
// and how much stock is left.
//
// Stock is split into the currently open pack (ActivePackRemaining, a
// fixed-point quantity so fractional doses do not drift) and a count of
// sealed boxes, each holding PackCapacity units.
//
// LastCheckedAt is the robot checkpoint: scheduled instants at or before it
// have already been accounted for. It only moves forward. A nil value means
// the medication has not been baselined yet.
//
// Revision is bumped on every write and guards conditional updates.
type Medication struct {
	ID                    string                      `json:"id"                      gorm:"type:char(36);primaryKey"`
	PatientID             string                      `json:"patient_id"              gorm:"type:char(36);not null;index:idx_patient_meds"`
	Name                  string                      `json:"name"                    gorm:"type:varchar(255);not null"`
	Strength              string                      `json:"strength"                gorm:"type:varchar(64)"`
	DosePerAdministration decimal.Decimal             `json:"dose_per_administration" gorm:"type:decimal(12,4);not null"`
	ScheduledTimes        datatypes.JSONSlice[string] `json:"scheduled_times"         gorm:"not null"`
	HourMask              int64                       `json:"-"                       gorm:"not null;default:0"`
	ActivePackRemaining   decimal.Decimal             `json:"active_pack_remaining"   gorm:"type:decimal(12,4);not null"`
	SealedBoxCount        int                         `json:"sealed_box_count"        gorm:"not null;default:0;check:sealed_box_count >= 0"`
	PackCapacity          int                         `json:"pack_capacity"           gorm:"not null;check:pack_capacity > 0"`
	LastCheckedAt         *time.Time                  `json:"last_checked_at"`
	TreatmentStartDate    *string                     `json:"treatment_start_date"    gorm:"type:varchar(10)"`
	FrequencyKind         FrequencyKind               `json:"frequency_kind"          gorm:"type:varchar(16);not null;default:'DAILY'"`
	FrequencyIntervalDays int                         `json:"frequency_interval_days" gorm:"not null;default:2"`
	FrequencyWeekdays     datatypes.JSONSlice[int]    `json:"frequency_weekdays"`
	Status                MedicationStatus            `json:"status"                  gorm:"type:varchar(16);not null;default:'ACTIVE';index"`
	Notes                 string                      `json:"notes"                   gorm:"type:text"`
	Revision              int64                       `json:"revision"                gorm:"not null;default:1"`
	CreatedAt             time.Time                   `json:"created_at"`
	UpdatedAt             time.Time                   `json:"updated_at"`
	DeletedAt             gorm.DeletedAt              `json:"-"                       gorm:"index"`

	// Patient owns the medication; medications are cascade-deleted with it.
	Patient Patient `json:"-" gorm:"foreignKey:PatientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Medication.
func (Medication) TableName() string { return "medications" }

// TotalUnits returns every unit available: the open pack plus all sealed boxes.
func (m *Medication) TotalUnits() decimal.Decimal {
	sealed := decimal.NewFromInt(int64(m.SealedBoxCount) * int64(m.PackCapacity))
	return m.ActivePackRemaining.Add(sealed)
}

// HistoryEntry is an append-only audit record. Entries are never updated or
// deleted; robot summaries use GroupedMedicationID.
type HistoryEntry struct {
	ID             string     `json:"id"              gorm:"type:char(36);primaryKey"`
	PatientID      string     `json:"patient_id"      gorm:"type:char(36);not null;index:idx_patient_history,priority:1"`
	MedicationID   string     `json:"medication_id"   gorm:"type:varchar(36);not null;index"`
	MedicationName string     `json:"medication_name" gorm:"type:varchar(255);not null"`
	ActionKind     ActionKind `json:"action_kind"     gorm:"type:varchar(32);not null"`
	Detail         string     `json:"detail"          gorm:"type:text;not null"`
	Actor          string     `json:"actor"           gorm:"type:varchar(64);not null"`
	Timestamp      time.Time  `json:"timestamp"       gorm:"not null;index:idx_patient_history,priority:2"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TableName returns the database table name for HistoryEntry.
func (HistoryEntry) TableName() string { return "medication_history" }

// Grouped reports whether e is a per-patient cycle summary.
func (e HistoryEntry) Grouped() bool { return e.MedicationID == GroupedMedicationID }
