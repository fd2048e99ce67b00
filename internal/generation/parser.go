package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/scry-studygen/internal/domain"
)

// Placeholder and fallback texts used by ParseFlashcards.
const (
	QuestionPlaceholder = "Question not provided"
	AnswerPlaceholder   = "Answer not provided"

	FallbackQuestion = "Flashcards could not be generated from this content"
	FallbackAnswer   = "The AI response was not in the expected format. Try generating the flashcards again."
)

// questionKeys and answerKeys are the accepted field names, in priority order.
var (
	questionKeys = []string{"question", "front", "q"}
	answerKeys   = []string{"answer", "back", "a"}
)

// ParseFlashcards turns raw model output into flashcards. It never fails:
// output that does not contain a non-empty JSON array yields a single
// recovery card.
//
// Leading and trailing code fences are stripped first. If the remaining text
// is not a JSON array, the substring from the first '[' to the last ']' is
// tried instead.
func ParseFlashcards(raw string) []domain.Flashcard {
	text := stripCodeFence(raw)

	items, ok := decodeArray(text)
	if !ok {
		start := strings.Index(text, "[")
		end := strings.LastIndex(text, "]")
		if start >= 0 && end > start {
			items, ok = decodeArray(text[start : end+1])
		}
	}

	if !ok || len(items) == 0 {
		return []domain.Flashcard{FallbackFlashcard()}
	}

	cards := make([]domain.Flashcard, 0, len(items))
	for _, item := range items {
		cards = append(cards, toFlashcard(item))
	}

	return cards
}

// FallbackFlashcard returns the card produced when a response cannot be parsed.
func FallbackFlashcard() domain.Flashcard {
	return domain.Flashcard{
		Question: FallbackQuestion,
		Answer:   FallbackAnswer,
		Source:   domain.SourceErrorRecovery,
	}
}

// stripCodeFence removes a leading ``` line (with optional language tag) and
// a trailing ``` marker.
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		if newline := strings.IndexByte(text, '\n'); newline >= 0 {
			text = text[newline+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}

	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")

	return strings.TrimSpace(text)
}

// decodeArray unmarshals text as a JSON array of raw elements.
func decodeArray(text string) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, false
	}
	return items, items != nil
}

// toFlashcard maps one array element to a card. Elements that are not
// objects, or lack the fields, get placeholders.
func toFlashcard(item json.RawMessage) domain.Flashcard {
	var fields map[string]any
	if err := json.Unmarshal(item, &fields); err != nil {
		fields = nil
	}

	return domain.NewFlashcard(
		firstField(fields, questionKeys),
		firstField(fields, answerKeys),
		domain.SourceAIGenerated,
		QuestionPlaceholder,
		AnswerPlaceholder,
	)
}

// firstField returns the first non-blank scalar value among keys.
func firstField(fields map[string]any, keys []string) string {
	for _, key := range keys {
		value, ok := fields[key]
		if !ok {
			continue
		}

		var text string
		switch v := value.(type) {
		case string:
			text = v
		case float64, bool:
			text = fmt.Sprint(v)
		}

		if text = strings.TrimSpace(text); text != "" {
			return text
		}
	}
	return ""
}
