// Package scheduler triggers robot cycles in-process at the top of every
// wall-clock hour of the reference timezone.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-med-robot/internal/clock"
	"github.com/tbourn/go-med-robot/internal/services"
)

// RunFunc executes one cycle.
type RunFunc func(ctx context.Context) (services.CycleReport, error)

// NextBoundary returns the first top of the hour in loc strictly after now.
func NextBoundary(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t := now.In(loc)
	hour := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
	// Zones whose offset is not a whole hour still tick on local :00.
	for !hour.After(now) {
		hour = hour.Add(time.Hour)
	}
	return hour
}

// Hourly fires Run at every hour boundary until its context ends.
type Hourly struct {
	Run      RunFunc
	Location *time.Location
	Clock    clock.Clock
	// RunOnStart triggers one cycle immediately, catching up after downtime.
	RunOnStart bool

	// after is time.After; replaced in tests.
	after func(d time.Duration) <-chan time.Time
}

// Start blocks, running cycles on schedule. It returns ctx.Err() when ctx
// is cancelled.
func (h *Hourly) Start(ctx context.Context) error {
	clk := h.Clock
	if clk == nil {
		clk = clock.System{}
	}
	after := h.after
	if after == nil {
		after = time.After
	}

	if h.RunOnStart {
		h.fire(ctx)
	}
	for {
		now := clk.Now()
		next := NextBoundary(now, h.Location)
		log.Debug().Time("next_run", next).Msg("robot: scheduler armed")

		select {
		case <-ctx.Done():
			log.Info().Msg("robot: scheduler stopped")
			return ctx.Err()
		case <-after(next.Sub(now)):
			h.fire(ctx)
		}
	}
}

func (h *Hourly) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	_, err := h.Run(ctx)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrCycleInProgress):
		log.Info().Msg("robot: cycle skipped, another one is running")
	default:
		log.Error().Err(err).Msg("robot: scheduled cycle failed")
	}
}
