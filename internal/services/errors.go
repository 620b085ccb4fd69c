// Package services defines the business logic for patients, medications,
// manual dose actions and the dose-consumption robot. This file centralizes
// service-level error values so that callers can check them with errors.Is.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrPatientNotFound indicates that the requested patient does not exist.
	ErrPatientNotFound = errors.New("patient not found")

	// ErrMedicationNotFound indicates that the requested medication does not exist.
	ErrMedicationNotFound = errors.New("medication not found")

	// ErrInvalidPatient is returned when patient data fails validation.
	ErrInvalidPatient = errors.New("invalid patient")

	// ErrInvalidMedication wraps every medication configuration problem
	// (schedule, frequency, dose or pack capacity).
	ErrInvalidMedication = errors.New("invalid medication")

	// ErrInvalidStock is returned when a manual stock correction is out of range.
	ErrInvalidStock = errors.New("invalid stock")

	// ErrInsufficientStock is returned when an ad-hoc dose cannot be covered.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrPackFull is returned when a returned dose would overflow the open pack.
	ErrPackFull = errors.New("active pack already full")

	// ErrConflict is returned when a medication kept changing concurrently and
	// the operation gave up.
	ErrConflict = errors.New("medication was modified concurrently")

	// ErrCycleInProgress is returned when another robot cycle holds the lease.
	ErrCycleInProgress = errors.New("robot cycle already in progress")
)
