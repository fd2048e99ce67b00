package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/scry-studygen/internal/api/shared"
	"github.com/phrazzld/scry-studygen/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceMiddleware(t *testing.T) {
	log, buf := logger.GetTestLogger(t)

	var (
		seenTraceID string
		hasLogger   bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTraceID = shared.GetTraceID(r.Context())
		_, hasLogger = logger.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	TraceMiddleware(log)(next).ServeHTTP(rec, req)

	require.NotEmpty(t, seenTraceID)
	assert.True(t, hasLogger)
	assert.Equal(t, seenTraceID, rec.Header().Get(shared.TraceIDHeader))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "request started", entries[0]["msg"])
	assert.Equal(t, "request completed", entries[1]["msg"])
	assert.Equal(t, float64(http.StatusTeapot), entries[1]["status"])
	assert.Equal(t, seenTraceID, entries[1]["trace_id"])
}
