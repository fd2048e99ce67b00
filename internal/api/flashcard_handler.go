package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/phrazzld/scry-studygen/internal/api/shared"
	"github.com/phrazzld/scry-studygen/internal/domain"
	"github.com/phrazzld/scry-studygen/internal/platform/logger"
	"github.com/phrazzld/scry-studygen/internal/redact"
	"github.com/phrazzld/scry-studygen/internal/task"
)

// Form field names accepted by GenerateFlashcards.
const (
	FilesField = "files"
	CountField = "count"
)

// BatchRunner generates cards for a batch of files and reports one outcome
// per file, in input order.
type BatchRunner interface {
	RunBatch(ctx context.Context, files []domain.SourceFile, count int) []task.Outcome
}

// FlashcardHandlerConfig bounds the requests FlashcardHandler accepts.
type FlashcardHandlerConfig struct {
	DefaultCount   int
	MaxCount       int
	MaxUploadBytes int64
}

// FlashcardHandler handles flashcard generation requests.
type FlashcardHandler struct {
	runner BatchRunner
	config FlashcardHandlerConfig
	logger *slog.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler.
func NewFlashcardHandler(
	runner BatchRunner,
	config FlashcardHandlerConfig,
	logger *slog.Logger,
) (*FlashcardHandler, error) {
	if runner == nil {
		return nil, errors.New("batch runner cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if config.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive, got %d", config.MaxUploadBytes)
	}

	return &FlashcardHandler{
		runner: runner,
		config: config,
		logger: logger.With(slog.String("component", "flashcard_handler")),
	}, nil
}

// GenerateFlashcards handles POST /api/flashcards.
//
// The request is a multipart form with one or more "files" parts and an
// optional "count" value. Per-file failures are reported inline and do not
// change the response status.
func (h *FlashcardHandler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	log := h.loggerFor(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			shared.RespondWithErrorAndLog(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Upload exceeds the %d byte limit", h.config.MaxUploadBytes), err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			log.Warn("failed to remove multipart temp files", "error", err)
		}
	}()

	count, err := h.parseCount(r.FormValue(CountField))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid count: must be an integer", err)
		return
	}

	headers := r.MultipartForm.File[FilesField]

	req := GenerateFlashcardsRequest{
		Count:     count,
		MaxCount:  h.config.MaxCount,
		FileCount: len(headers),
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	files, err := readUploads(headers)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("generating flashcards",
		slog.Int("file_count", len(files)),
		slog.Int("requested_per_file", count))

	outcomes := h.runner.RunBatch(r.Context(), files, count)

	resp := GenerateFlashcardsResponse{Results: make([]FileResultResponse, len(outcomes))}
	failed := 0
	for i, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			log.Warn("file generation failed",
				slog.String("file_name", outcome.FileName),
				slog.String("error", redact.Error(outcome.Err)))
		}
		resp.Results[i] = NewFileResultResponse(outcome)
	}

	log.Info("flashcard batch completed",
		slog.Int("file_count", len(outcomes)),
		slog.Int("failed", failed))

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// loggerFor prefers the request-scoped logger so entries carry the trace ID.
func (h *FlashcardHandler) loggerFor(ctx context.Context) *slog.Logger {
	if log, ok := logger.FromContext(ctx); ok {
		return log.With(slog.String("component", "flashcard_handler"))
	}
	return h.logger
}

// parseCount returns the default count for an empty value.
func (h *FlashcardHandler) parseCount(value string) (int, error) {
	if value == "" {
		return h.config.DefaultCount, nil
	}
	return strconv.Atoi(value)
}

// readUploads loads every uploaded part into memory.
func readUploads(headers []*multipart.FileHeader) ([]domain.SourceFile, error) {
	files := make([]domain.SourceFile, 0, len(headers))
	for _, header := range headers {
		content, err := readUpload(header)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", domain.ErrValidation, header.Filename, err)
		}

		file, err := domain.NewSourceFile(header.Filename, header.Header.Get("Content-Type"), content)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return io.ReadAll(f)
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}
