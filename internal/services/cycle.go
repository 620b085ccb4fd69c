// Package services – CycleRunner
//
// This file implements one robot cycle: load candidate medications, group
// them by patient, reconcile every medication of a patient and write one
// aggregated "Robot visit" entry per patient that had anything happen.
// Patients are processed concurrently and independently; a failing patient
// is logged and counted, never aborting the rest of the batch.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/go-med-robot/internal/clock"
	"github.com/tbourn/go-med-robot/internal/domain"
	"github.com/tbourn/go-med-robot/internal/lock"
	"github.com/tbourn/go-med-robot/internal/observability"
	"github.com/tbourn/go-med-robot/internal/repo"
)

// CycleLockKey is the lease key serializing cycles across triggers.
const CycleLockKey = "robot:cycle"

// GroupedEntryName is the medication name carried by grouped entries.
const GroupedEntryName = "Robot visit"

const summaryWriteTimeout = 5 * time.Second

// CandidateSource selects the medications a cycle looks at. It may return
// more than needed but never fewer: the reconcile step decides what is due.
type CandidateSource interface {
	Candidates(ctx context.Context, now time.Time) ([]domain.Medication, error)
}

// Reconciler brings one medication up to date.
type Reconciler interface {
	Reconcile(ctx context.Context, m *domain.Medication, now time.Time) (Outcome, error)
}

// EventPublisher forwards persisted grouped entries downstream.
type EventPublisher interface {
	Publish(ctx context.Context, e *domain.HistoryEntry) error
}

// CycleReport summarizes one run.
type CycleReport struct {
	StartedAt       time.Time       `json:"started_at"`
	Duration        time.Duration   `json:"duration_ns"`
	Patients        int             `json:"patients"`
	Medications     int             `json:"medications"`
	Consumed        int             `json:"consumed"`
	Shortages       int             `json:"shortages"`
	NoAction        int             `json:"no_action"`
	Errors          int             `json:"errors"`
	PatientFailures int             `json:"patient_failures"`
	Summaries       int             `json:"summaries"`
	UnitsConsumed   decimal.Decimal `json:"units_consumed"`
	TimedOut        bool            `json:"timed_out"`
}

// Result classifies the report for metrics.
func (r CycleReport) Result() string {
	if r.TimedOut || r.Errors > 0 || r.PatientFailures > 0 {
		return observability.CyclePartial
	}
	return observability.CycleOK
}

// CycleRunner runs robot cycles.
type CycleRunner struct {
	DB         *gorm.DB
	Clock      clock.Clock
	Candidates CandidateSource
	Reconciler Reconciler
	// Publisher is optional.
	Publisher EventPublisher
	// Lock is optional; without it overlapping runs rely only on the
	// conditional medication writes.
	Lock    lock.Locker
	LockTTL time.Duration
	// Timeout bounds the whole cycle; zero means no bound.
	Timeout time.Duration
	// Concurrency caps patients processed at once; <= 0 means 8.
	Concurrency int
	Actor       string
}

// patientResult is what one patient's worker hands back.
type patientResult struct {
	outcomes []Outcome
	errors   int
	summary  bool
	failed   bool
}

// Run executes one cycle. It returns ErrCycleInProgress when another cycle
// holds the lease; per-medication and per-patient failures are reported in
// the CycleReport, not as an error.
func (s *CycleRunner) Run(ctx context.Context) (CycleReport, error) {
	now := s.Clock.Now().UTC().Truncate(time.Second)
	report := CycleReport{StartedAt: now, UnitsConsumed: decimal.Zero}
	began := time.Now()

	tr := otel.Tracer("services/CycleRunner")
	ctx, span := tr.Start(ctx, "Run", trace.WithAttributes(attribute.String("cycle.now", now.Format(time.RFC3339))))
	defer span.End()

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	if s.Lock != nil {
		ttl := s.LockTTL
		if ttl <= 0 {
			ttl = 2 * time.Minute
		}
		release, ok, err := s.Lock.TryLock(ctx, CycleLockKey, ttl)
		if err != nil {
			observability.ObserveCycle(observability.CycleError, time.Since(began))
			return report, fmt.Errorf("acquire cycle lock: %w", err)
		}
		if !ok {
			observability.ObserveCycle(observability.CycleSkipped, 0)
			return report, ErrCycleInProgress
		}
		defer func() {
			if err := release(context.Background()); err != nil {
				log.Warn().Err(err).Msg("robot: release cycle lock")
			}
		}()
	}

	meds, err := s.Candidates.Candidates(ctx, now)
	if err != nil {
		observability.ObserveCycle(observability.CycleError, time.Since(began))
		return report, fmt.Errorf("load candidates: %w", err)
	}

	byPatient := make(map[string][]domain.Medication)
	for _, m := range meds {
		byPatient[m.PatientID] = append(byPatient[m.PatientID], m)
	}
	patients := make([]string, 0, len(byPatient))
	for id := range byPatient {
		patients = append(patients, id)
	}
	sort.Strings(patients)

	report.Patients = len(patients)
	report.Medications = len(meds)

	limit := s.Concurrency
	if limit <= 0 {
		limit = 8
	}
	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(limit)
	for _, pid := range patients {
		pid, pm := pid, byPatient[pid]
		g.Go(func() error {
			res := s.runPatient(ctx, pid, pm, now)
			mu.Lock()
			defer mu.Unlock()
			report.merge(res)
			return nil
		})
	}
	_ = g.Wait()

	report.TimedOut = errors.Is(ctx.Err(), context.DeadlineExceeded)
	report.Duration = time.Since(began)

	result := report.Result()
	observability.ObserveCycle(result, report.Duration)
	span.SetAttributes(
		attribute.String("cycle.result", result),
		attribute.Int("cycle.patients", report.Patients),
	)
	log.Info().
		Str("result", result).
		Int("patients", report.Patients).
		Int("medications", report.Medications).
		Int("consumed", report.Consumed).
		Int("shortages", report.Shortages).
		Int("errors", report.Errors).
		Int("patient_failures", report.PatientFailures).
		Bool("timed_out", report.TimedOut).
		Dur("took", report.Duration).
		Msg("robot: cycle finished")
	return report, nil
}

func (r *CycleReport) merge(p patientResult) {
	r.Errors += p.errors
	if p.failed {
		r.PatientFailures++
	}
	if p.summary {
		r.Summaries++
	}
	for _, o := range p.outcomes {
		switch o.Kind {
		case OutcomeConsumed:
			r.Consumed++
			r.UnitsConsumed = r.UnitsConsumed.Add(o.Units)
		case OutcomeShortage:
			r.Shortages++
		default:
			r.NoAction++
		}
	}
}

// runPatient reconciles one patient's medications sequentially and writes
// the grouped entry. Panics are contained to the patient.
func (s *CycleRunner) runPatient(ctx context.Context, patientID string, meds []domain.Medication, now time.Time) (res patientResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("patient_id", patientID).Interface("panic", r).Msg("robot: patient processing panicked")
			observability.RobotPatientFailures.Inc()
			res.failed = true
		}
	}()

	var lines []string
	shortage := false
	for i := range meds {
		if ctx.Err() != nil {
			// Out of budget: the rest keep their checkpoint and are picked
			// up next cycle.
			break
		}
		m := &meds[i]
		out, err := s.Reconciler.Reconcile(ctx, m, now)
		if err != nil {
			res.errors++
			observability.RobotOutcomes.WithLabelValues("error").Inc()
			ev := log.Warn()
			if errors.Is(err, ErrInvalidMedication) {
				ev = log.Error()
			}
			ev.Err(err).Str("patient_id", patientID).Str("medication_id", m.ID).Msg("robot: reconcile failed")
			continue
		}
		res.outcomes = append(res.outcomes, out)
		observability.RobotOutcomes.WithLabelValues(strings.ToLower(string(out.Kind))).Inc()
		if out.Kind == OutcomeNoAction {
			continue
		}
		if out.Kind == OutcomeConsumed {
			f, _ := out.Units.Float64()
			observability.RobotUnitsConsumed.Add(f)
		}
		if out.Kind == OutcomeShortage {
			shortage = true
		}
		log.Info().
			Str("patient_id", patientID).
			Str("medication_id", m.ID).
			Str("outcome", string(out.Kind)).
			Str("units", out.Units.String()).
			Int("packs_opened", out.PacksOpened).
			Msg("robot: medication reconciled")
		lines = append(lines, out.Summary())
	}

	if len(lines) == 0 {
		return res
	}

	kind := domain.ActionAutoConsumed
	if shortage {
		kind = domain.ActionStockShortage
	}
	actor := s.Actor
	if actor == "" {
		actor = DefaultActor
	}
	entry := &domain.HistoryEntry{
		PatientID:      patientID,
		MedicationID:   domain.GroupedMedicationID,
		MedicationName: GroupedEntryName,
		ActionKind:     kind,
		Detail:         strings.Join(lines, "\n"),
		Actor:          actor,
		Timestamp:      now,
	}
	// The summary covers writes that already committed, so it is written
	// even when the cycle budget ran out meanwhile.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), summaryWriteTimeout)
	defer cancel()
	if err := repo.AppendHistory(wctx, s.DB, entry); err != nil {
		log.Error().Err(err).Str("patient_id", patientID).Msg("robot: write grouped entry")
		observability.RobotPatientFailures.Inc()
		res.failed = true
		return res
	}
	res.summary = true

	if s.Publisher != nil {
		if err := s.Publisher.Publish(wctx, entry); err != nil {
			log.Warn().Err(err).Str("patient_id", patientID).Msg("robot: publish grouped entry")
		}
	}
	return res
}
