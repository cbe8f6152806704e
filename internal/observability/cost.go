package observability

import (
	"strconv"
	"strings"

	"github.com/slowpost-labs/slowpost-api/internal/models"
)

// Pricing constants, USD per 1K tokens
const (
	tokensPerKilo       = 1000.0
	costFormatPrecision = 6

	gemini25FlashInputPrice  = 0.0003
	gemini25FlashOutputPrice = 0.0025

	gemini25ProInputPrice  = 0.00125
	gemini25ProOutputPrice = 0.01

	gpt4oInputPrice  = 0.005
	gpt4oOutputPrice = 0.015

	gpt4oMiniInputPrice  = 0.00015
	gpt4oMiniOutputPrice = 0.0006
)

// ModelPricing contains pricing information per 1K tokens
type ModelPricing struct {
	InputPricePer1K  float64
	OutputPricePer1K float64
}

// PricingTable contains pricing for the models we route to
var PricingTable = map[string]ModelPricing{
	"gemini-2.5-flash": {
		InputPricePer1K:  gemini25FlashInputPrice,
		OutputPricePer1K: gemini25FlashOutputPrice,
	},
	"gemini-2.5-pro": {
		InputPricePer1K:  gemini25ProInputPrice,
		OutputPricePer1K: gemini25ProOutputPrice,
	},
	"gpt-4o": {
		InputPricePer1K:  gpt4oInputPrice,
		OutputPricePer1K: gpt4oOutputPrice,
	},
	"gpt-4o-mini": {
		InputPricePer1K:  gpt4oMiniInputPrice,
		OutputPricePer1K: gpt4oMiniOutputPrice,
	},
}

// CalculateCost estimates the USD cost of a generation. Unknown models
// fall back to gemini-2.5-flash pricing, or gpt-4o-mini for gpt-* models.
func CalculateCost(modelName string, usage *models.TokenUsage) float64 {
	if usage == nil {
		return 0
	}

	pricing, exists := PricingTable[modelName]
	if !exists {
		if strings.HasPrefix(modelName, "gpt-") {
			pricing = PricingTable["gpt-4o-mini"]
		} else {
			pricing = PricingTable["gemini-2.5-flash"]
		}
	}

	inputCost := (float64(usage.InputTokens) / tokensPerKilo) * pricing.InputPricePer1K
	outputCost := (float64(usage.OutputTokens) / tokensPerKilo) * pricing.OutputPricePer1K
	return inputCost + outputCost
}

// FormatCost formats a cost value as a USD string
func FormatCost(cost float64) string {
	return "$" + strconv.FormatFloat(cost, 'f', costFormatPrecision, 64)
}
