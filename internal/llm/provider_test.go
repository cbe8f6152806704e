package llm

import (
	"testing"

	"github.com/slowpost-labs/slowpost-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func float64Ptr(v float64) *float64 { return &v }
func int32Ptr(v int32) *int32       { return &v }

func TestMergeSamplingDefaults(t *testing.T) {
	expected := ResolvedSampling{
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
		TopP:            DefaultTopP,
		TopK:            DefaultTopK,
	}

	assert.Equal(t, expected, MergeSampling(nil))
	assert.Equal(t, expected, MergeSampling(&models.SamplingParams{}))
}

func TestMergeSamplingPerField(t *testing.T) {
	tests := []struct {
		name      string
		overrides *models.SamplingParams
		expected  ResolvedSampling
	}{
		{
			name:      "temperature only",
			overrides: &models.SamplingParams{Temperature: float64Ptr(0.2)},
			expected: ResolvedSampling{
				Temperature:     0.2,
				MaxOutputTokens: DefaultMaxOutputTokens,
				TopP:            DefaultTopP,
				TopK:            DefaultTopK,
			},
		},
		{
			name:      "max tokens only",
			overrides: &models.SamplingParams{MaxOutputTokens: int32Ptr(512)},
			expected: ResolvedSampling{
				Temperature:     DefaultTemperature,
				MaxOutputTokens: 512,
				TopP:            DefaultTopP,
				TopK:            DefaultTopK,
			},
		},
		{
			name: "all fields",
			overrides: &models.SamplingParams{
				Temperature:     float64Ptr(1.0),
				MaxOutputTokens: int32Ptr(100),
				TopP:            float64Ptr(0.5),
				TopK:            int32Ptr(10),
			},
			expected: ResolvedSampling{
				Temperature:     1.0,
				MaxOutputTokens: 100,
				TopP:            0.5,
				TopK:            10,
			},
		},
		{
			name:      "zero-valued override still wins",
			overrides: &models.SamplingParams{Temperature: float64Ptr(0)},
			expected: ResolvedSampling{
				Temperature:     0,
				MaxOutputTokens: DefaultMaxOutputTokens,
				TopP:            DefaultTopP,
				TopK:            DefaultTopK,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MergeSampling(tt.overrides))
		})
	}
}

func TestSchemaForIntent(t *testing.T) {
	assert.Nil(t, SchemaForIntent(models.IntentFreeform), "freeform output is unconstrained")

	question := SchemaForIntent(models.IntentReflectionQuestion)
	assert.NotNil(t, question)
	assert.Equal(t, "reflection_question", question.Name)
	assert.Equal(t, []string{"question"}, question.Schema["required"])

	prompts := SchemaForIntent(models.IntentWritingPrompts)
	assert.NotNil(t, prompts)
	props := prompts.Schema["properties"].(map[string]any)
	array := props["prompts"].(map[string]any)
	assert.Equal(t, writingPromptsMin, array["minItems"])
	assert.Equal(t, writingPromptsMax, array["maxItems"])

	affirmation := SchemaForIntent(models.IntentAffirmation)
	assert.NotNil(t, affirmation)
	assert.Equal(t, "affirmation", affirmation.Name)
}

func TestConvertSchemaToGemini(t *testing.T) {
	schema := SchemaForIntent(models.IntentWritingPrompts)
	converted := convertSchemaToGemini(schema.Schema)

	assert.NotNil(t, converted)
	assert.NotNil(t, converted.Properties["prompts"])
	assert.NotNil(t, converted.Properties["prompts"].Items)
	assert.Equal(t, []string{"prompts"}, converted.Required)
}
