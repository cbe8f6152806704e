package generation

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/slowpost-labs/slowpost-api/internal/logger"
	"github.com/slowpost-labs/slowpost-api/internal/models"
)

const (
	// DefaultReflectionQuestion is returned when fallback extraction finds
	// no question mark in the raw output.
	DefaultReflectionQuestion = "Looking back at what you wrote, what feels different about your life today?"

	// Fallback prompt lines at or below this length are discarded as noise.
	minPromptLineLength = 6
)

// interpret decodes the provider's raw structured text for the intent.
// Malformed or partial output never fails the request: an intent-specific
// deterministic fallback recovers a best-effort payload instead, marked
// degraded. requestedCount only applies to the writing-prompts intent.
func interpret(intent models.Intent, rawText string, requestedCount int) (any, bool) {
	switch intent {
	case models.IntentReflectionQuestion:
		var payload models.QuestionPayload
		if err := json.Unmarshal([]byte(rawText), &payload); err == nil && payload.Question != "" {
			return payload, false
		}
		logParseFallback(intent, rawText)
		return models.QuestionPayload{Question: fallbackQuestion(rawText)}, true

	case models.IntentWritingPrompts:
		var payload models.WritingPromptsPayload
		if err := json.Unmarshal([]byte(rawText), &payload); err == nil && len(payload.Prompts) > 0 {
			return payload, false
		}
		logParseFallback(intent, rawText)
		return models.WritingPromptsPayload{Prompts: fallbackPrompts(rawText, requestedCount)}, true

	case models.IntentAffirmation:
		var payload models.AffirmationPayload
		if err := json.Unmarshal([]byte(rawText), &payload); err == nil && payload.Affirmation != "" {
			return payload, false
		}
		logParseFallback(intent, rawText)
		return models.AffirmationPayload{Affirmation: strings.TrimSpace(rawText)}, true

	default:
		// Freeform output is unconstrained; the raw text is the payload.
		return models.FreeformPayload{Text: rawText}, false
	}
}

// fallbackQuestion scans the raw text for the first substring ending in a
// question mark, strips leading non-letter characters and all quotes, and
// falls back to the fixed default question when no question mark exists.
func fallbackQuestion(rawText string) string {
	idx := strings.Index(rawText, "?")
	if idx < 0 {
		return DefaultReflectionQuestion
	}

	question := rawText[:idx+1]
	question = strings.TrimLeftFunc(question, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	question = strings.ReplaceAll(question, `"`, "")
	question = strings.ReplaceAll(question, "'", "")
	if question == "" {
		return DefaultReflectionQuestion
	}
	return question
}

// fallbackPrompts splits raw text on line breaks, trims each line, drops
// lines too short to be real prompts, and keeps at most requestedCount.
func fallbackPrompts(rawText string, requestedCount int) []string {
	var prompts []string
	for _, line := range strings.Split(rawText, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < minPromptLineLength {
			continue
		}
		prompts = append(prompts, line)
		if len(prompts) == requestedCount {
			break
		}
	}
	return prompts
}

func logParseFallback(intent models.Intent, rawText string) {
	logger.Warn("Structured output parse failed, applying fallback extraction", logger.Fields{
		"intent":     string(intent),
		"raw_length": len(rawText),
	})
}
