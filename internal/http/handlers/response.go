// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all
// endpoints: structured error envelopes, the validation-error shape, and
// helpers for common HTTP patterns. The goal is uniform, machine-friendly
// responses for both success and failure.
//
// Conventions:
//   - All error responses return an ErrorResponse with a stable `code`.
//   - Validation failures return a ValidationErrorResponse carrying every
//     field violation together, so the Mini App can annotate a whole form
//     from one round trip.
//   - `fail()` centralizes error logging and formatting; 5xx responses are
//     logged with request context.
//   - Mutating endpoints confirm with a MessageResponse; stored records are
//     only returned by the read endpoints.
//
// Example error response:
//
//	HTTP/1.1 409 Conflict
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "conflict",
//	  "message": "You have already submitted a registration."
//	}
//
// Example validation response:
//
//	HTTP/1.1 400 Bad Request
//	{
//	  "request_id": "…",
//	  "code": "validation_failed",
//	  "errors": { "age": ["You must be at least 12 years old"] }
//	}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edupay/go-course-backend/internal/http/middleware"
	"github.com/edupay/go-course-backend/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code"`
	// Human-readable message (safe to show to users)
	Message string `json:"message"`
}

// ValidationErrorResponse carries every field violation of a rejected
// payload, keyed by field name.
type ValidationErrorResponse struct {
	RequestID string              `json:"request_id,omitempty"`
	Code      string              `json:"code"`
	Errors    map[string][]string `json:"errors"`
}

// fail aborts the request with a structured error and logs server-side
// errors via the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail(), for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failFields aborts with 400 and the full set of field violations.
func failFields(c *gin.Context, fields services.FieldErrors) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      ErrCodeValidationFailed,
		Errors:    fields,
	})
}

// MessageResponse is the success envelope for mutating endpoints. Writes
// confirm with a stable message only; the stored record is never echoed
// back.
type MessageResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Message   string `json:"message"`
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// okMessage writes a success confirmation with a stable message.
func okMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, MessageResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Message:   msg,
	})
}
