// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Under a CI environment records are enriched with CI
// metadata by CIHandler. Request-scoped loggers travel in the context.
package logger
