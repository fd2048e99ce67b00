package domain

import (
	"time"

	"github.com/google/uuid"
)

// Source tags attached to generated flashcards.
const (
	// SourceAIGenerated marks a card parsed from a model response.
	SourceAIGenerated = "AI Generated"

	// SourceErrorRecovery marks the placeholder card produced when a model
	// response could not be parsed.
	SourceErrorRecovery = "Error Recovery"
)

// Flashcard is a question/answer pair produced by the pipeline.
// Values are immutable once produced.
type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Source   string `json:"source"`
}

// NewFlashcard creates a Flashcard, substituting the given placeholders when
// the question or answer is blank.
func NewFlashcard(question, answer, source, questionPlaceholder, answerPlaceholder string) Flashcard {
	if question == "" {
		question = questionPlaceholder
	}

	if answer == "" {
		answer = answerPlaceholder
	}

	return Flashcard{
		Question: question,
		Answer:   answer,
		Source:   source,
	}
}

// IsRecovery reports whether the card is a parse-failure placeholder.
func (f Flashcard) IsRecovery() bool {
	return f.Source == SourceErrorRecovery
}

// GenerationResult is the ordered output of one pipeline invocation.
type GenerationResult struct {
	// ID identifies the invocation for logging and correlation.
	ID uuid.UUID `json:"id"`

	// Cards is the ordered list of generated flashcards.
	Cards []Flashcard `json:"cards"`

	// Requested is the total card count the caller asked for.
	Requested int `json:"requested"`

	// Produced is len(Cards); it never exceeds Requested.
	Produced int `json:"produced"`

	// CreatedAt is the time the result was assembled.
	CreatedAt time.Time `json:"created_at"`
}

// NewGenerationResult assembles a result, truncating cards to the requested total.
func NewGenerationResult(cards []Flashcard, requested int) *GenerationResult {
	if requested < 0 {
		requested = 0
	}

	if len(cards) > requested {
		cards = cards[:requested]
	}

	out := make([]Flashcard, len(cards))
	copy(out, cards)

	return &GenerationResult{
		ID:        uuid.New(),
		Cards:     out,
		Requested: requested,
		Produced:  len(out),
		CreatedAt: time.Now().UTC(),
	}
}
