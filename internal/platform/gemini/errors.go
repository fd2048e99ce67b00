package gemini

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/phrazzld/scry-studygen/internal/generation"
	"google.golang.org/genai"
)

// statusResourceExhausted is the RPC status Gemini reports for quota and
// rate limit rejections.
const statusResourceExhausted = "RESOURCE_EXHAUSTED"

// classifyError maps a genai error onto the generation error contract.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	if code, status, ok := apiErrorStatus(err); ok {
		if code == http.StatusTooManyRequests || status == statusResourceExhausted {
			return fmt.Errorf("%w: gemini returned %d %s: %w", generation.ErrRateLimited, code, status, err)
		}
		return fmt.Errorf("gemini returned %d %s: %w", code, status, err)
	}

	return err
}

// apiErrorStatus extracts the HTTP code and RPC status of a genai.APIError,
// which may be returned by value or by pointer.
func apiErrorStatus(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status, true
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Status, true
	}

	return 0, "", false
}
