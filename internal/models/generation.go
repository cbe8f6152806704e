package models

import "fmt"

// Intent identifies one of the supported generation goals.
type Intent string

const (
	IntentFreeform           Intent = "freeform"
	IntentReflectionQuestion Intent = "reflection_question"
	IntentWritingPrompts     Intent = "writing_prompts"
	IntentAffirmation        Intent = "affirmation"
)

// ErrorKind classifies a generation failure. The HTTP boundary maps kinds
// to status codes; everything else about the error is diagnostic only.
type ErrorKind string

const (
	ErrorKindValidation          ErrorKind = "validation"
	ErrorKindProviderRateLimited ErrorKind = "provider_rate_limited"
	ErrorKindProviderBadRequest  ErrorKind = "provider_bad_request"
	ErrorKindProviderAuthFailed  ErrorKind = "provider_auth_failed"
	ErrorKindProviderUnavailable ErrorKind = "provider_unavailable"
)

// GenerationError is the stable error type surfaced by the generation core.
// It is created at the point of failure and never mutated afterward.
type GenerationError struct {
	Kind    ErrorKind
	Message string
	// Fields carries field-level validation detail, nil for provider errors.
	Fields map[string]string
	cause  error
}

func (e *GenerationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the original failure for logging; callers should only
// rely on Kind and Message.
func (e *GenerationError) Unwrap() error {
	return e.cause
}

// NewValidationError builds a caller-input error with field-level detail.
func NewValidationError(message string, fields map[string]string) *GenerationError {
	return &GenerationError{
		Kind:    ErrorKindValidation,
		Message: message,
		Fields:  fields,
	}
}

// NewProviderError wraps a provider failure under the given taxonomy kind.
func NewProviderError(kind ErrorKind, message string, cause error) *GenerationError {
	return &GenerationError{
		Kind:    kind,
		Message: message,
		cause:   cause,
	}
}

// SamplingParams are caller overrides for the provider's sampling
// configuration. Nil fields fall back to the fixed defaults.
type SamplingParams struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int32   `json:"max_output_tokens,omitempty"`
	TopP            *float64 `json:"top_p,omitempty"`
	TopK            *int32   `json:"top_k,omitempty"`
}

// TokenUsage is the provider-reported token accounting for one call.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// GenerationMetadata describes how a result was produced. Degraded marks
// payloads recovered via fallback extraction instead of schema parsing.
type GenerationMetadata struct {
	Model        string      `json:"model"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Usage        *TokenUsage `json:"usage,omitempty"`
	Degraded     bool        `json:"degraded"`
}

// GenerationResult is the value handed to the HTTP boundary, which owns
// serialization from here on.
type GenerationResult struct {
	Payload  any                `json:"payload"`
	Metadata GenerationMetadata `json:"metadata"`
}

// Intent-specific payloads decoded from the provider's structured output.
type (
	QuestionPayload struct {
		Question string `json:"question"`
	}

	WritingPromptsPayload struct {
		Prompts []string `json:"prompts"`
	}

	AffirmationPayload struct {
		Affirmation string `json:"affirmation"`
	}

	FreeformPayload struct {
		Text string `json:"text"`
	}
)
