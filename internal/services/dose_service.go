// Package services – DoseService
//
// This file implements the manual stock actions a nurse can take outside
// the robot cycle: an ad-hoc dose, returning a dose to the open pack and a
// trusted stock correction. Each action writes the new stock and one history
// entry in a single transaction guarded by the medication revision, and is
// retried a few times when it races with the robot.
//
// Ad-hoc doses and returns accept an idempotency key. A retried request with
// the same (actor, medication, key) gets the original entry back instead of
// moving stock again.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/clock"
	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/inventory"
	"github.com/tbourn/go-med-robot/internal/repo"
)

const maxConflictRetries = 3

// DoseResult is the state after a manual action.
type DoseResult struct {
	Medication *domain.Medication
	Entry      *domain.HistoryEntry
	Level      inventory.Level
	// Replayed is true when the result was served from an earlier request
	// with the same idempotency key.
	Replayed bool
}

// DoseService applies manual stock actions.
type DoseService struct {
	DB             *gorm.DB
	Clock          clock.Clock
	LowStockUnits  int
	IdempotencyTTL time.Duration
}

func (s *DoseService) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s *DoseService) ttl() time.Duration {
	if s.IdempotencyTTL <= 0 {
		return 24 * time.Hour
	}
	return s.IdempotencyTTL
}

// mutation computes the new stock and the entry describing it, or an error
// that aborts the action without writing.
type mutation func(m *domain.Medication) (inventory.Stock, *domain.HistoryEntry, error)

// AdHoc takes one unit out of stock right now, opening a box if needed.
func (s *DoseService) AdHoc(ctx context.Context, medicationID, actor, key string) (*DoseResult, error) {
	return s.run(ctx, "AdHoc", medicationID, actor, key, func(m *domain.Medication) (inventory.Stock, *domain.HistoryEntry, error) {
		res := inventory.Apply(inventory.StockOf(m), decimal.NewFromInt(1))
		if res.Short() {
			return res.Stock, nil, ErrInsufficientStock
		}
		detail := fmt.Sprintf("Ad-hoc dose: 1 unit taken. Remaining in pack: %s.", res.Stock.ActivePack.String())
		if res.PacksOpened > 0 {
			detail += " Opened a new pack."
		}
		return res.Stock, &domain.HistoryEntry{ActionKind: domain.ActionAdHocDose, Detail: detail}, nil
	})
}

// Return puts one unit back into the open pack. A full pack is refused.
func (s *DoseService) Return(ctx context.Context, medicationID, actor, key string) (*DoseResult, error) {
	return s.run(ctx, "Return", medicationID, actor, key, func(m *domain.Medication) (inventory.Stock, *domain.HistoryEntry, error) {
		st, err := inventory.Return(inventory.StockOf(m), decimal.NewFromInt(1))
		if errors.Is(err, inventory.ErrPackFull) {
			return st, nil, ErrPackFull
		}
		detail := fmt.Sprintf("Dose returned: 1 unit back in pack. Remaining in pack: %s.", st.ActivePack.String())
		return st, &domain.HistoryEntry{ActionKind: domain.ActionReturnedDose, Detail: detail}, nil
	})
}

// Adjust overwrites both stock tiers. It bypasses the ledger and records
// the before and after values.
func (s *DoseService) Adjust(ctx context.Context, medicationID, actor string, active decimal.Decimal, sealed int, note string) (*DoseResult, error) {
	return s.run(ctx, "Adjust", medicationID, actor, "", func(m *domain.Medication) (inventory.Stock, *domain.HistoryEntry, error) {
		before := inventory.StockOf(m)
		if err := checkQuantity(active); err != nil {
			return before, nil, fmt.Errorf("%w: active_pack_remaining: %v", ErrInvalidStock, err)
		}
		switch {
		case active.IsNegative():
			return before, nil, fmt.Errorf("%w: active_pack_remaining must not be negative", ErrInvalidStock)
		case active.GreaterThan(decimal.NewFromInt(int64(m.PackCapacity))):
			return before, nil, fmt.Errorf("%w: active_pack_remaining exceeds pack_capacity %d", ErrInvalidStock, m.PackCapacity)
		case sealed < 0:
			return before, nil, fmt.Errorf("%w: sealed_box_count must not be negative", ErrInvalidStock)
		}
		after := before
		after.ActivePack = active
		after.SealedBoxes = sealed
		detail := fmt.Sprintf("Manual adjustment: active pack %s -> %s, sealed boxes %d -> %d.",
			before.ActivePack.String(), after.ActivePack.String(), before.SealedBoxes, after.SealedBoxes)
		if note = strings.TrimSpace(note); note != "" {
			detail += " Note: " + note
		}
		return after, &domain.HistoryEntry{ActionKind: domain.ActionManualAdjustment, Detail: detail}, nil
	})
}

func (s *DoseService) run(ctx context.Context, op, medicationID, actor, key string, mutate mutation) (*DoseResult, error) {
	tr := otel.Tracer("services/DoseService")
	ctx, span := tr.Start(ctx, op,
		trace.WithAttributes(
			attribute.String("medication.id", medicationID),
			attribute.String("actor", actor),
			attribute.Bool("idempotent", key != ""),
		),
	)
	defer span.End()

	if key != "" {
		if res, err := s.replay(ctx, actor, medicationID, key); err != nil || res != nil {
			return res, err
		}
	}

	for attempt := 0; ; attempt++ {
		m, err := repo.GetMedication(ctx, s.DB, medicationID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrMedicationNotFound
		}
		if err != nil {
			return nil, err
		}

		stock, entry, err := mutate(m)
		if err != nil {
			return nil, err
		}
		entry.PatientID = m.PatientID
		entry.MedicationID = m.ID
		entry.MedicationName = m.Name
		entry.Actor = actor
		entry.Timestamp = s.now()

		err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := repo.SetStock(ctx, tx, m.ID, m.Revision, stock.ActivePack, stock.SealedBoxes); err != nil {
				return err
			}
			if err := repo.AppendHistory(ctx, tx, entry); err != nil {
				return err
			}
			if key != "" {
				if _, err := repo.CreateIdempotency(ctx, tx, actor, m.ID, key, entry.ID, http.StatusOK, entry.Timestamp, s.ttl()); err != nil {
					return err
				}
			}
			return nil
		})
		switch {
		case err == nil:
			m.Revision++
			m.ActivePackRemaining = stock.ActivePack
			m.SealedBoxCount = stock.SealedBoxes
			return &DoseResult{Medication: m, Entry: entry, Level: inventory.LevelOf(stock, s.LowStockUnits)}, nil
		case errors.Is(err, repo.ErrDuplicate):
			// A concurrent request with the same key won; serve its result.
			res, err := s.replay(ctx, actor, medicationID, key)
			if err == nil && res == nil {
				return nil, ErrConflict
			}
			return res, err
		case errors.Is(err, repo.ErrConflict) && attempt+1 < maxConflictRetries:
			continue
		case errors.Is(err, repo.ErrConflict):
			return nil, ErrConflict
		default:
			return nil, err
		}
	}
}

// replay returns the stored result for key, or (nil, nil) when there is none.
func (s *DoseService) replay(ctx context.Context, actor, medicationID, key string) (*DoseResult, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, actor, medicationID, key, s.now())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	entry, err := repo.GetHistoryEntry(ctx, s.DB, rec.HistoryID)
	if err != nil {
		return nil, err
	}
	m, err := repo.GetMedication(ctx, s.DB, medicationID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrMedicationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &DoseResult{
		Medication: m,
		Entry:      entry,
		Level:      inventory.LevelOf(inventory.StockOf(m), s.LowStockUnits),
		Replayed:   true,
	}, nil
}
