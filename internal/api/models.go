package api

import (
	"github.com/phrazzld/scry-studygen/internal/domain"
	"github.com/phrazzld/scry-studygen/internal/task"
)

// GenerateFlashcardsRequest holds the validated form values of an upload.
type GenerateFlashcardsRequest struct {
	Count     int `validate:"gte=1,ltefield=MaxCount"`
	MaxCount  int `validate:"gte=1"`
	FileCount int `validate:"min=1"`
}

// FlashcardResponse is the JSON shape of one generated card.
type FlashcardResponse struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Source   string `json:"source"`
}

// FileResultResponse reports the outcome for one uploaded file. Either Cards
// or Error is populated.
type FileResultResponse struct {
	File      string              `json:"file"`
	Cards     []FlashcardResponse `json:"cards,omitempty"`
	Requested int                 `json:"requested,omitempty"`
	Produced  int                 `json:"produced,omitempty"`
	Error     string              `json:"error,omitempty"`
	Status    int                 `json:"status,omitempty"`
}

// GenerateFlashcardsResponse is the body returned by POST /api/flashcards.
type GenerateFlashcardsResponse struct {
	Results []FileResultResponse `json:"results"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func flashcardToResponse(card domain.Flashcard) FlashcardResponse {
	return FlashcardResponse{
		Question: card.Question,
		Answer:   card.Answer,
		Source:   card.Source,
	}
}

// NewFileResultResponse converts a batch outcome. Errors are reduced to a safe
// message and the status code the error would map to on its own.
func NewFileResultResponse(outcome task.Outcome) FileResultResponse {
	if outcome.Err != nil {
		return FileResultResponse{
			File:   outcome.FileName,
			Error:  GetSafeErrorMessage(outcome.Err),
			Status: MapErrorToStatusCode(outcome.Err),
		}
	}

	resp := FileResultResponse{File: outcome.FileName}
	if outcome.Result == nil {
		return resp
	}

	resp.Cards = make([]FlashcardResponse, len(outcome.Result.Cards))
	for i, card := range outcome.Result.Cards {
		resp.Cards[i] = flashcardToResponse(card)
	}
	resp.Requested = outcome.Result.Requested
	resp.Produced = outcome.Result.Produced

	return resp
}
