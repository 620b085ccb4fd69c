package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cycle results used as the "result" label of robot_cycles_total.
const (
	CycleOK      = "ok"
	CyclePartial = "partial"
	CycleSkipped = "skipped"
	CycleError   = "error"
)

var (
	// RobotCycles counts cycle runs by result.
	RobotCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robot_cycles_total",
			Help: "Total number of robot cycles by result.",
		},
		[]string{"result"},
	)

	// RobotCycleDuration observes wall-clock time of cycles that ran.
	RobotCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "robot_cycle_duration_seconds",
			Help:    "Duration of robot cycles in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// RobotOutcomes counts per-medication reconcile outcomes.
	RobotOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "robot_medication_outcomes_total",
			Help: "Per-medication reconcile outcomes.",
		},
		[]string{"outcome"},
	)

	// RobotUnitsConsumed sums units taken out of stock by the robot.
	RobotUnitsConsumed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "robot_units_consumed_total",
			Help: "Units consumed automatically by the robot.",
		},
	)

	// RobotPatientFailures counts patients whose processing failed in a cycle.
	RobotPatientFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "robot_patient_failures_total",
			Help: "Patients whose cycle processing failed.",
		},
	)
)

func init() {
	prometheus.MustRegister(RobotCycles, RobotCycleDuration, RobotOutcomes, RobotUnitsConsumed, RobotPatientFailures)
}

// ObserveCycle records one finished cycle.
func ObserveCycle(result string, took time.Duration) {
	RobotCycles.WithLabelValues(result).Inc()
	if result != CycleSkipped {
		RobotCycleDuration.Observe(took.Seconds())
	}
}
