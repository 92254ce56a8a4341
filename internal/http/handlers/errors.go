// Package handlers defines HTTP-layer error codes used across all API
// endpoints.
//
// These symbolic constants give clients a stable, machine-readable error
// taxonomy that supplements the human-readable messages. Codes are
// lowercase snake_case; generic codes mirror common HTTP status semantics,
// domain-specific codes cover outcomes a status alone cannot convey.

package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeRegisterFailed   = "register_failed"
	ErrCodeUpdateFailed     = "update_failed"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeDeleteFailed     = "delete_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
