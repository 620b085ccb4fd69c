// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them, not on
// messages. Generic codes mirror HTTP status semantics; the domain codes
// name the dose-tracking failure a caregiver can act on.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "insufficient_stock",
//	  "message": "insufficient stock"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeValidation        = "validation_failed"
	ErrCodeInsufficientStock = "insufficient_stock"
	ErrCodePackFull          = "pack_full"
	ErrCodeCycleInProgress   = "cycle_in_progress"
	ErrCodeCycleFailed       = "cycle_failed"
	ErrCodeExportFailed      = "export_failed"
)
