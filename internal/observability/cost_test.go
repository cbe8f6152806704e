package observability

import (
	"testing"

	"github.com/slowpost-labs/slowpost-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	usage := &models.TokenUsage{InputTokens: 1000, OutputTokens: 1000, TotalTokens: 2000}

	tests := []struct {
		name     string
		model    string
		usage    *models.TokenUsage
		expected float64
	}{
		{"nil usage is free", "gemini-2.5-flash", nil, 0},
		{"gemini flash", "gemini-2.5-flash", usage, gemini25FlashInputPrice + gemini25FlashOutputPrice},
		{"gpt-4o", "gpt-4o", usage, gpt4oInputPrice + gpt4oOutputPrice},
		{"unknown gpt model falls back to mini pricing", "gpt-9", usage, gpt4oMiniInputPrice + gpt4oMiniOutputPrice},
		{"unknown model falls back to flash pricing", "mystery-model", usage, gemini25FlashInputPrice + gemini25FlashOutputPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CalculateCost(tt.model, tt.usage), 1e-9)
		})
	}
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.000000", FormatCost(0))
	assert.Equal(t, "$0.002800", FormatCost(0.0028))
	assert.Equal(t, "$1.500000", FormatCost(1.5))
}
