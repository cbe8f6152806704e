package llm

import (
	"context"

	"github.com/slowpost-labs/slowpost-api/internal/models"
)

// Fixed sampling defaults, used for any field the caller does not override.
const (
	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 2048
	DefaultTopP            = 0.95
	DefaultTopK            = 40
)

// Provider is the single abstract call-and-classify interface to a
// generative-text backend. Implementations issue exactly one provider call
// per Generate invocation and translate provider failures into
// *models.GenerationError; retry policy belongs to the caller.
type Provider interface {
	// Generate renders one completion for the request. The returned
	// response carries the raw structured text; parsing it is the
	// interpreter's job, not the provider's.
	Generate(ctx context.Context, request *GenerationRequest) (*ProviderResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// GenerationRequest contains all parameters for one provider call.
type GenerationRequest struct {
	Model             string
	SystemInstruction string
	Prompt            string
	Sampling          ResolvedSampling
	// OutputSchema constrains the provider to structured JSON output.
	// Nil means plain text.
	OutputSchema *OutputSchema
}

// OutputSchema defines the expected JSON output structure
type OutputSchema struct {
	Name        string
	Description string
	Schema      map[string]any // JSON Schema object
}

// ProviderResponse is the transient result of one provider call. It is
// owned by the gateway for the duration of the call and never persisted.
type ProviderResponse struct {
	RawText      string
	FinishReason string
	Usage        *models.TokenUsage
}

// ResolvedSampling is the effective sampling configuration after merging
// caller overrides over the fixed defaults.
type ResolvedSampling struct {
	Temperature     float64
	MaxOutputTokens int32
	TopP            float64
	TopK            int32
}

// MergeSampling applies caller overrides over the defaults. Each field is
// merged independently: a non-nil override wins, a nil one falls back.
func MergeSampling(overrides *models.SamplingParams) ResolvedSampling {
	merged := ResolvedSampling{
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
		TopP:            DefaultTopP,
		TopK:            DefaultTopK,
	}
	if overrides == nil {
		return merged
	}

	if overrides.Temperature != nil {
		merged.Temperature = *overrides.Temperature
	}
	if overrides.MaxOutputTokens != nil {
		merged.MaxOutputTokens = *overrides.MaxOutputTokens
	}
	if overrides.TopP != nil {
		merged.TopP = *overrides.TopP
	}
	if overrides.TopK != nil {
		merged.TopK = *overrides.TopK
	}
	return merged
}
