package logger

import (
	"io"
	"log/slog"
	"os"
	"sort"
)

// ciMetadataEnv maps CI environment variables to the log attribute they become.
var ciMetadataEnv = map[string]string{
	"GITHUB_RUN_ID":     "ci_run_id",
	"GITHUB_SHA":        "ci_commit",
	"GITHUB_REF_NAME":   "ci_branch",
	"GITHUB_WORKFLOW":   "ci_workflow",
	"GITHUB_REPOSITORY": "ci_repository",
}

// isInCIEnvironment reports whether the process runs under a CI system.
func isInCIEnvironment() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}

// ciAttrs returns the CI attributes present in the environment, sorted by key
// so output is stable between runs.
func ciAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.Bool("ci", true)}
	for env, key := range ciMetadataEnv {
		if value := os.Getenv(env); value != "" {
			attrs = append(attrs, slog.String(key, value))
		}
	}
	sort.Slice(attrs[1:], func(i, j int) bool { return attrs[1+i].Key < attrs[1+j].Key })
	return attrs
}

// CIHandler writes JSON records tagged with the CI run they came from, so
// logs from parallel pipeline runs can be told apart.
type CIHandler struct {
	slog.Handler
}

// NewCIHandler creates a JSON CIHandler writing to out. The CI attributes are
// resolved once, at construction, and sit at the top level of every record
// regardless of later groups.
func NewCIHandler(out io.Writer, opts *slog.HandlerOptions) *CIHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	return &CIHandler{Handler: slog.NewJSONHandler(out, opts).WithAttrs(ciAttrs())}
}

// WithAttrs keeps the CIHandler type so callers can still detect it.
func (h *CIHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CIHandler{Handler: h.Handler.WithAttrs(attrs)}
}

// WithGroup keeps the CIHandler type so callers can still detect it.
func (h *CIHandler) WithGroup(name string) slog.Handler {
	return &CIHandler{Handler: h.Handler.WithGroup(name)}
}
