package generation

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

// promptTemplates holds the parsed prompt templates, keyed by file name.
var promptTemplates = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

// promptData represents the data passed to the prompt templates
type promptData struct {
	Count int
}

// TextSystemPrompt returns the system instruction asking for count cards from
// the user-supplied text.
func TextSystemPrompt(count int) (string, error) {
	return renderPrompt("text.tmpl", count)
}

// VisionPrompt returns the instruction asking for count cards about an image.
func VisionPrompt(count int) (string, error) {
	return renderPrompt("vision.tmpl", count)
}

func renderPrompt(name string, count int) (string, error) {
	if count < 1 {
		return "", fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	var buf bytes.Buffer
	if err := promptTemplates.ExecuteTemplate(&buf, name, promptData{Count: count}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template %s: %w", name, err)
	}

	return strings.TrimSpace(buf.String()), nil
}
