// Package domain defines the core pipeline entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain value fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyFileName is returned when a source file has no name.
	ErrEmptyFileName = errors.New("file name cannot be empty")

	// ErrEmptyContent is returned when required content is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidChunk is returned when a text chunk violates its invariants.
	ErrInvalidChunk = errors.New("invalid text chunk")
)
