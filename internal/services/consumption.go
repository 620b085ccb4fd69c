// Package services – ConsumptionService
//
// This file implements the per-medication reconcile step of the robot: it
// resolves which scheduled doses matured since the last checkpoint, runs the
// stock ledger over them and commits the new stock, the advanced checkpoint
// and one history entry in a single transaction.
//
// Writes are conditional on the medication revision that was read, so two
// overlapping cycles can never both consume the same doses: the loser gets
// ErrConflict and the medication is re-evaluated next cycle.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/inventory"
	"github.com/tbourn/go-med-robot/internal/repo"
	"github.com/tbourn/go-med-robot/internal/schedule"
)

// DefaultActor identifies robot-written history entries.
const DefaultActor = "robot"

// OutcomeKind is the result class of one reconcile.
type OutcomeKind string

const (
	OutcomeNoAction OutcomeKind = "NO_ACTION"
	OutcomeConsumed OutcomeKind = "CONSUMED"
	OutcomeShortage OutcomeKind = "SHORTAGE"
)

// Outcome describes what a reconcile did to one medication.
type Outcome struct {
	Kind           OutcomeKind
	MedicationID   string
	MedicationName string
	PatientID      string
	// Units is consumed units for CONSUMED and unmet units for SHORTAGE.
	Units       decimal.Decimal
	PacksOpened int
	Due         []schedule.DueDose
	Stock       inventory.Stock
	Level       inventory.Level
	Entry       *domain.HistoryEntry
	// Skipped is the part of the window older than the catch-up horizon.
	// Doses due in it were not consumed.
	Skipped *schedule.Window
}

// Summary renders the one-line description used in grouped robot entries.
// NoAction outcomes render as an empty string.
func (o Outcome) Summary() string {
	times := strings.Join(schedule.Labels(o.Due), ", ")
	var line string
	switch o.Kind {
	case OutcomeConsumed:
		line = fmt.Sprintf("✅ %s: consumed %s (times: %s). Remaining: %s in pack.",
			o.MedicationName, o.Units.String(), times, o.Stock.ActivePack.String())
		if o.PacksOpened > 0 {
			line += " (opened new pack)"
		}
	case OutcomeShortage:
		line = fmt.Sprintf("🚫 %s: NOT TAKEN! Insufficient stock for %s unit(s) at %s",
			o.MedicationName, o.Units.String(), times)
	default:
		return ""
	}
	if o.Level != "" && o.Level != inventory.LevelOK {
		line += fmt.Sprintf(" [stock: %s]", o.Level)
	}
	return line
}

// ConsumptionService reconciles single medications against the clock.
type ConsumptionService struct {
	DB *gorm.DB
	// Location is the reference timezone scheduled times are expressed in.
	Location *time.Location
	// MaxCatchUp bounds how far back missed doses are still consumed.
	MaxCatchUp time.Duration
	// Actor is written on every entry; DefaultActor when empty.
	Actor string
	// LowStockUnits is the CRITICAL threshold for the stock level.
	LowStockUnits int
}

func (s *ConsumptionService) actor() string {
	if s.Actor == "" {
		return DefaultActor
	}
	return s.Actor
}

// Reconcile brings m up to date as of now. m is updated in place when a
// write succeeds. Invalid configurations return ErrInvalidMedication without
// writing anything; a lost conditional write returns repo.ErrConflict.
func (s *ConsumptionService) Reconcile(ctx context.Context, m *domain.Medication, now time.Time) (Outcome, error) {
	tr := otel.Tracer("services/ConsumptionService")
	ctx, span := tr.Start(ctx, "Reconcile",
		trace.WithAttributes(
			attribute.String("medication.id", m.ID),
			attribute.String("patient.id", m.PatientID),
		),
	)
	defer span.End()

	out := Outcome{
		Kind:           OutcomeNoAction,
		MedicationID:   m.ID,
		MedicationName: m.Name,
		PatientID:      m.PatientID,
		Stock:          inventory.StockOf(m),
	}
	if err := ValidateMedication(m); err != nil {
		return out, err
	}

	// Never checked: baseline the checkpoint, invent nothing.
	if m.LastCheckedAt == nil {
		if err := repo.AdvanceCheckpoint(ctx, s.DB, m.ID, m.Revision, now); err != nil {
			return out, err
		}
		m.Revision++
		m.LastCheckedAt = &now
		return out, nil
	}

	if _, skipped := schedule.CatchUpLower(*m.LastCheckedAt, now, s.MaxCatchUp); skipped != nil {
		out.Skipped = skipped
		span.SetAttributes(attribute.String("catchup.skipped_until", skipped.Until.Format(time.RFC3339)))
		log.Warn().
			Str("medication_id", m.ID).
			Str("patient_id", m.PatientID).
			Time("skipped_from", skipped.From).
			Time("skipped_until", skipped.Until).
			Dur("max_catch_up", s.MaxCatchUp).
			Msg("robot: catch-up horizon reached, older doses not consumed")
	}

	due := schedule.ResolveDue(m, m.LastCheckedAt, now, schedule.Options{
		Location:   s.Location,
		MaxCatchUp: s.MaxCatchUp,
	})
	span.SetAttributes(attribute.Int("due.count", len(due)))
	if len(due) == 0 {
		// Move past the skipped window so it is reported once.
		if out.Skipped != nil {
			if err := repo.AdvanceCheckpoint(ctx, s.DB, m.ID, m.Revision, now); err != nil {
				return out, err
			}
			m.Revision++
			m.LastCheckedAt = &now
		}
		return out, nil
	}

	required := m.DosePerAdministration.Mul(decimal.NewFromInt(int64(len(due))))
	res := inventory.Apply(out.Stock, required)
	out.Due = due

	entry := &domain.HistoryEntry{
		PatientID:      m.PatientID,
		MedicationID:   m.ID,
		MedicationName: m.Name,
		Actor:          s.actor(),
		Timestamp:      now,
	}
	if res.Short() {
		out.Kind = OutcomeShortage
		out.Units = res.Shortage
		entry.ActionKind = domain.ActionStockShortage
		entry.Detail = fmt.Sprintf("Insufficient stock for %s unit(s) due at %s. Available: %s.",
			res.Shortage.String(), strings.Join(schedule.Labels(due), ", "), out.Stock.Total().String())
	} else {
		out.Kind = OutcomeConsumed
		out.Units = required
		out.PacksOpened = res.PacksOpened
		entry.ActionKind = domain.ActionAutoConsumed
		entry.Detail = fmt.Sprintf("Consumed %s unit(s) for %s. Remaining in pack: %s.",
			required.String(), strings.Join(schedule.Labels(due), ", "), res.Stock.ActivePack.String())
		if res.PacksOpened > 0 {
			entry.Detail += fmt.Sprintf(" Opened %d new pack(s).", res.PacksOpened)
		}
	}
	if out.Skipped != nil {
		entry.Detail += fmt.Sprintf(" Doses due between %s and %s were skipped (catch-up limit).",
			out.Skipped.From.UTC().Format(time.RFC3339), out.Skipped.Until.UTC().Format(time.RFC3339))
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if res.Short() {
			if err := repo.AdvanceCheckpoint(ctx, tx, m.ID, m.Revision, now); err != nil {
				return err
			}
		} else {
			if err := repo.CommitConsumption(ctx, tx, m.ID, m.Revision, res.Stock.ActivePack, res.Stock.SealedBoxes, now); err != nil {
				return err
			}
		}
		return repo.AppendHistory(ctx, tx, entry)
	})
	if err != nil {
		return Outcome{Kind: OutcomeNoAction, MedicationID: m.ID, MedicationName: m.Name, PatientID: m.PatientID, Stock: out.Stock, Skipped: out.Skipped}, err
	}

	m.Revision++
	m.LastCheckedAt = &now
	m.ActivePackRemaining = res.Stock.ActivePack
	m.SealedBoxCount = res.Stock.SealedBoxes

	out.Stock = res.Stock
	out.Level = inventory.LevelOf(res.Stock, s.LowStockUnits)
	out.Entry = entry
	span.SetAttributes(attribute.String("outcome", string(out.Kind)))
	return out, nil
}
