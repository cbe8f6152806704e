package llm

import "github.com/slowpost-labs/slowpost-api/internal/models"

const (
	writingPromptsMin = 1
	writingPromptsMax = 5
)

// Per-intent output contracts, defined once and shared read-only across
// all concurrent invocations. They constrain provider output only; client
// input is validated separately by the generation service.
var intentSchemas = map[models.Intent]*OutputSchema{
	models.IntentReflectionQuestion: {
		Name:        "reflection_question",
		Description: "A single reflection question about a delivered letter",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{"type": "string"},
			},
			"required":             []string{"question"},
			"additionalProperties": false,
		},
	},
	models.IntentWritingPrompts: {
		Name:        "writing_prompts",
		Description: "A list of letter-writing prompts",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"prompts": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": writingPromptsMin,
					"maxItems": writingPromptsMax,
				},
			},
			"required":             []string{"prompts"},
			"additionalProperties": false,
		},
	},
	models.IntentAffirmation: {
		Name:        "affirmation",
		Description: "A single short affirmation",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"affirmation": map[string]any{"type": "string"},
			},
			"required":             []string{"affirmation"},
			"additionalProperties": false,
		},
	},
}

// SchemaForIntent returns the output contract for the intent, or nil for
// intents (freeform) that produce unconstrained text.
func SchemaForIntent(intent models.Intent) *OutputSchema {
	return intentSchemas[intent]
}
