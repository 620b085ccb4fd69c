// Package inventory implements the two-tier stock ledger: an open pack that
// doses are taken from and a reserve of sealed boxes opened on demand.
package inventory

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/tbourn/go-med-robot/internal/domain"
)

// ErrPackFull is returned by Return when the open pack is already at capacity.
var ErrPackFull = errors.New("active pack already full")

// Stock is the inventory state of one medication.
type Stock struct {
	ActivePack   decimal.Decimal `json:"active_pack_remaining"`
	SealedBoxes  int             `json:"sealed_box_count"`
	PackCapacity int             `json:"pack_capacity"`
}

// StockOf extracts the ledger view of m.
func StockOf(m *domain.Medication) Stock {
	return Stock{
		ActivePack:   m.ActivePackRemaining,
		SealedBoxes:  m.SealedBoxCount,
		PackCapacity: m.PackCapacity,
	}
}

// Total is every unit available: open pack plus sealed boxes.
func (s Stock) Total() decimal.Decimal {
	return s.ActivePack.Add(decimal.NewFromInt(int64(s.SealedBoxes) * int64(s.PackCapacity)))
}

// Equal reports whether two stocks hold exactly the same quantities.
func (s Stock) Equal(o Stock) bool {
	return s.ActivePack.Equal(o.ActivePack) && s.SealedBoxes == o.SealedBoxes && s.PackCapacity == o.PackCapacity
}

// Result is the outcome of Apply.
type Result struct {
	Stock       Stock
	PacksOpened int
	// Shortage is the requested amount when it could not be met, zero otherwise.
	Shortage decimal.Decimal
}

// Short reports whether the request was refused for lack of stock.
func (r Result) Short() bool { return r.Shortage.IsPositive() }

// Apply consumes required units from s. It is all or nothing: when the total
// available is below required, s is returned untouched with Shortage set.
// Otherwise units come out of the open pack and sealed boxes are opened, one
// capacity at a time, while the open pack is empty or negative.
func Apply(s Stock, required decimal.Decimal) Result {
	if !required.IsPositive() {
		return Result{Stock: s}
	}
	if s.Total().LessThan(required) {
		return Result{Stock: s, Shortage: required}
	}

	out := s
	out.ActivePack = s.ActivePack.Sub(required)
	opened := 0
	capacity := decimal.NewFromInt(int64(s.PackCapacity))
	for !out.ActivePack.IsPositive() && out.SealedBoxes > 0 {
		out.SealedBoxes--
		out.ActivePack = out.ActivePack.Add(capacity)
		opened++
	}
	return Result{Stock: out, PacksOpened: opened}
}

// Return puts units back into the open pack. Returns that would overflow
// the pack capacity are refused with ErrPackFull.
func Return(s Stock, units decimal.Decimal) (Stock, error) {
	next := s.ActivePack.Add(units)
	if next.GreaterThan(decimal.NewFromInt(int64(s.PackCapacity))) {
		return s, ErrPackFull
	}
	s.ActivePack = next
	return s, nil
}
