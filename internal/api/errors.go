package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/scry-studygen/internal/domain"
	"github.com/phrazzld/scry-studygen/internal/extract"
	"github.com/phrazzld/scry-studygen/internal/generation"
	"github.com/phrazzld/scry-studygen/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Input errors
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType

	case errors.Is(err, extract.ErrExtractionFailed),
		errors.Is(err, extract.ErrRequiresVision),
		errors.Is(err, generation.ErrNoChunks),
		errors.Is(err, generation.ErrVisionUnavailable),
		errors.Is(err, domain.ErrEmptyContent):
		return http.StatusUnprocessableEntity

	case errors.Is(err, generation.ErrInvalidCount),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	// Upstream errors
	case errors.Is(err, generation.ErrRateLimitExceeded),
		errors.Is(err, generation.ErrRateLimited):
		return http.StatusTooManyRequests

	case errors.Is(err, generation.ErrUpstream),
		errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrInvalidResponse):
		return http.StatusBadGateway

	// Capacity and lifecycle errors
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed),
		errors.Is(err, task.ErrRunnerStopped):
		return http.StatusServiceUnavailable

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return "Unsupported file format: re-save the document as plain text, HTML or PDF and upload it again"

	case errors.Is(err, extract.ErrExtractionFailed),
		errors.Is(err, generation.ErrNoChunks):
		return "No usable text could be extracted from the file"

	case errors.Is(err, domain.ErrEmptyContent):
		return "File is empty"

	case errors.Is(err, extract.ErrRequiresVision),
		errors.Is(err, generation.ErrVisionUnavailable):
		return "Image files are not supported by the configured model"

	case errors.Is(err, generation.ErrInvalidCount):
		return "Card count must be at least 1"

	case errors.Is(err, domain.ErrValidation):
		return SanitizeValidationError(err)

	case errors.Is(err, generation.ErrRateLimitExceeded),
		errors.Is(err, generation.ErrRateLimited):
		return "The language model is rate limiting requests; try again later"

	case errors.Is(err, generation.ErrContentBlocked):
		return "The language model declined to process this content"

	case errors.Is(err, generation.ErrUpstream),
		errors.Is(err, generation.ErrInvalidResponse):
		return "The language model request failed"

	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed),
		errors.Is(err, task.ErrRunnerStopped):
		return "The server is busy; try again later"

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return "The request was cancelled before the file was processed"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'GenerateFlashcardsRequest.Count' Error:Field validation for 'Count' failed on the 'gte' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := strings.ToLower(fieldParts[1])
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too few values"
	case "max":
		return "too many values"
	case "gte":
		return "too small"
	case "ltefield":
		return "exceeds the maximum"
	default:
		return "validation failed"
	}
}
