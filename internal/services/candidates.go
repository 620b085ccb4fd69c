package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/repo"
	"github.com/tbourn/go-med-robot/internal/schedule"
)

// StoreCandidates loads active medications from the database, optionally
// narrowed by the hour-bucket prefilter.
//
// The prefilter keeps a medication when one of its scheduled hours falls in
// the buckets touched by (now-Lookback, now], or when its checkpoint is older
// than now-Lookback (or unset). Any dose due since a recent checkpoint lies
// inside that window, so nothing the resolver would flag is dropped.
type StoreCandidates struct {
	DB        *gorm.DB
	Prefilter bool
	Lookback  time.Duration
	Location  *time.Location
}

// Candidates implements CandidateSource.
func (s *StoreCandidates) Candidates(ctx context.Context, now time.Time) ([]domain.Medication, error) {
	if !s.Prefilter || s.Lookback <= 0 {
		return repo.ListCandidateMedications(ctx, s.DB, repo.CandidateFilter{})
	}
	return repo.ListCandidateMedications(ctx, s.DB, repo.CandidateFilter{
		HourMask:    schedule.WindowMask(now, s.Lookback, s.Location),
		StaleBefore: now.Add(-s.Lookback),
	})
}
