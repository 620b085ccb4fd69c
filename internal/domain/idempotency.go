package domain

import "time"

// Idempotency records the outcome of a manual dose action so that a retried
// request with the same key is answered without touching stock again.
// Keys are scoped by (actor, medication_id, key).
type Idempotency struct {
	ID           string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	Actor        string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_actor_med_key,priority:1"`
	MedicationID string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_actor_med_key,priority:2"`
	Key          string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_actor_med_key,priority:3"`
	HistoryID    string    `gorm:"type:TEXT NOT NULL"`
	Status       int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt    time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt    time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
