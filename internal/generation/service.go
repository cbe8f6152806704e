package generation

import (
	"context"
	"strconv"

	"github.com/slowpost-labs/slowpost-api/internal/llm"
	"github.com/slowpost-labs/slowpost-api/internal/logger"
	"github.com/slowpost-labs/slowpost-api/internal/models"
	"github.com/slowpost-labs/slowpost-api/internal/observability"
	"github.com/slowpost-labs/slowpost-api/internal/prompt"
)

// Sanitization bounds applied before any text reaches a prompt.
const (
	maxFreeformPromptLength = 4000
	maxSystemLength         = 2000
	maxContentLength        = 2000
	maxTitleLength          = 200
	maxMoodLength           = 100
	maxThemeLength          = 100
	maxDisplayNameLength    = 100
)

const (
	defaultPromptCount = 3
	minPromptCount     = 1
	maxPromptCount     = 5
)

// ContentStore supplies letter records. The gorm-backed implementation
// lives in internal/services; tests substitute a fake.
type ContentStore interface {
	GetLetterByID(ownerID, letterID uint) (*models.Letter, error)
}

// ProviderSource resolves a provider for a model name. Satisfied by
// *llm.ProviderFactory; tests substitute a stub provider.
type ProviderSource interface {
	GetProvider(ctx context.Context, model, providerName string) (llm.Provider, error)
}

// Service orchestrates structured generation: it sanitizes context, renders
// instructions, invokes the provider under the intent's output schema, and
// interprets the result. All state is request-scoped.
type Service struct {
	providers    ProviderSource
	store        ContentStore
	defaultModel string
}

// NewService creates a generation service
func NewService(providers ProviderSource, store ContentStore, defaultModel string) *Service {
	return &Service{
		providers:    providers,
		store:        store,
		defaultModel: defaultModel,
	}
}

// ResponseEnvelope is the uniform success envelope handed to the HTTP
// boundary, which owns serialization and error-kind status mapping.
type ResponseEnvelope struct {
	Success bool                     `json:"success"`
	Data    *models.GenerationResult `json:"data"`
}

// WrapResult wraps a successful result into the response envelope.
func WrapResult(result *models.GenerationResult) ResponseEnvelope {
	return ResponseEnvelope{Success: true, Data: result}
}

// FreeformRequest is a caller-supplied prompt with optional overrides.
type FreeformRequest struct {
	Prompt            string
	SystemInstruction string
	Model             string
	Sampling          *models.SamplingParams
}

// GenerateFreeform runs an unconstrained generation for a raw prompt.
func (s *Service) GenerateFreeform(ctx context.Context, req FreeformRequest) (*models.GenerationResult, error) {
	cleanPrompt := prompt.Sanitize(req.Prompt, maxFreeformPromptLength)
	if cleanPrompt == "" {
		return nil, models.NewValidationError("prompt text is required", map[string]string{
			"prompt": "must not be blank",
		})
	}

	if err := validateSampling(req.Sampling); err != nil {
		return nil, err
	}

	instr := prompt.BuildFreeform(cleanPrompt, prompt.Sanitize(req.SystemInstruction, maxSystemLength))
	return s.invoke(ctx, models.IntentFreeform, s.modelOrDefault(req.Model), instr, req.Sampling, 0)
}

// validateSampling rejects overrides outside the accepted domains so they
// surface as validation errors instead of provider rejections.
func validateSampling(sampling *models.SamplingParams) error {
	if sampling == nil {
		return nil
	}

	fields := map[string]string{}
	if sampling.Temperature != nil && (*sampling.Temperature < 0 || *sampling.Temperature > 2) {
		fields["temperature"] = "must be between 0 and 2"
	}
	if sampling.TopP != nil && (*sampling.TopP < 0 || *sampling.TopP > 1) {
		fields["top_p"] = "must be between 0 and 1"
	}
	if sampling.TopK != nil && *sampling.TopK < 0 {
		fields["top_k"] = "must not be negative"
	}
	if sampling.MaxOutputTokens != nil && *sampling.MaxOutputTokens <= 0 {
		fields["max_output_tokens"] = "must be positive"
	}

	if len(fields) > 0 {
		return models.NewValidationError("sampling parameters out of range", fields)
	}
	return nil
}

// GenerateReflectionQuestion generates one reflection question for a
// delivered letter. Validation runs before any provider call so invalid
// requests never spend provider quota.
func (s *Service) GenerateReflectionQuestion(ctx context.Context, ownerID, letterID uint) (*models.GenerationResult, error) {
	if letterID == 0 {
		return nil, models.NewValidationError("letter identifier is required", map[string]string{
			"letter_id": "must be provided",
		})
	}

	letter, err := s.store.GetLetterByID(ownerID, letterID)
	if err != nil {
		return nil, err
	}

	if !letter.Delivered {
		return nil, models.NewValidationError("letter has not been delivered yet", map[string]string{
			"letter_id": "reflection is only available after delivery",
		})
	}

	instr := prompt.BuildReflectionQuestion(prompt.ReflectionContext{
		Title:      prompt.Sanitize(letter.Title, maxTitleLength),
		WrittenAgo: prompt.TimeSince(letter.CreatedAt),
		Mood:       prompt.Sanitize(letter.Mood, maxMoodLength),
		Goals:      letter.Goals,
		Themes:     prompt.ExtractThemes(prompt.Sanitize(letter.Content, maxContentLength)),
	})
	return s.invoke(ctx, models.IntentReflectionQuestion, s.defaultModel, instr, nil, 0)
}

// WritingPromptsRequest carries the optional mood/theme context and the
// raw requested count, clamped before use.
type WritingPromptsRequest struct {
	Mood  string
	Theme string
	Count any
}

// GenerateWritingPrompts generates between one and five letter-writing
// prompts.
func (s *Service) GenerateWritingPrompts(ctx context.Context, req WritingPromptsRequest) (*models.GenerationResult, error) {
	count := ClampCount(req.Count)
	instr := prompt.BuildWritingPrompts(
		prompt.Sanitize(req.Mood, maxMoodLength),
		prompt.Sanitize(req.Theme, maxThemeLength),
		count,
	)
	return s.invoke(ctx, models.IntentWritingPrompts, s.defaultModel, instr, nil, count)
}

// AffirmationRequest carries the optional personalization context for an
// affirmation.
type AffirmationRequest struct {
	DisplayName string
	TimeOfDay   string
	Stats       *models.UsageStats
}

// GenerateAffirmation generates one short affirmation.
func (s *Service) GenerateAffirmation(ctx context.Context, req AffirmationRequest) (*models.GenerationResult, error) {
	instr := prompt.BuildAffirmation(prompt.AffirmationContext{
		DisplayName: prompt.Sanitize(req.DisplayName, maxDisplayNameLength),
		TimeOfDay:   req.TimeOfDay,
		Stats:       req.Stats,
	})
	return s.invoke(ctx, models.IntentAffirmation, s.defaultModel, instr, nil, 0)
}

// invoke runs the shared provider round trip: merge sampling, resolve the
// provider, issue exactly one call, interpret the raw output.
func (s *Service) invoke(
	ctx context.Context,
	intent models.Intent,
	model string,
	instr prompt.Instructions,
	sampling *models.SamplingParams,
	requestedCount int,
) (*models.GenerationResult, error) {
	provider, err := s.providers.GetProvider(ctx, model, "")
	if err != nil {
		return nil, models.NewProviderError(models.ErrorKindProviderUnavailable,
			"no generation provider available", err)
	}

	trace := observability.GetClient().StartTrace(ctx, "generation."+string(intent), map[string]any{
		"intent": string(intent),
		"model":  model,
	})
	defer trace.Finish()

	gen := trace.Generation(string(intent), map[string]any{"provider": provider.Name()})
	gen.Input(instr.User)

	resp, err := provider.Generate(ctx, &llm.GenerationRequest{
		Model:             model,
		SystemInstruction: instr.System,
		Prompt:            instr.User,
		Sampling:          llm.MergeSampling(sampling),
		OutputSchema:      llm.SchemaForIntent(intent),
	})
	if err != nil {
		gen.SetLevel("ERROR")
		gen.Finish()
		return nil, err
	}

	payload, degraded := interpret(intent, resp.RawText, requestedCount)

	gen.Output(resp.RawText)
	gen.Usage(model, resp.Usage)
	gen.Finish()

	logger.Info("Generation completed", logger.Fields{
		"intent":   string(intent),
		"model":    model,
		"degraded": degraded,
	})

	return &models.GenerationResult{
		Payload: payload,
		Metadata: models.GenerationMetadata{
			Model:        model,
			FinishReason: resp.FinishReason,
			Usage:        resp.Usage,
			Degraded:     degraded,
		},
	}, nil
}

func (s *Service) modelOrDefault(model string) string {
	if model != "" {
		return model
	}
	return s.defaultModel
}

// ClampCount normalizes a raw prompt count into [1,5]. Absent or
// non-numeric input defaults to 3; numeric input is clamped.
func ClampCount(raw any) int {
	var n int
	switch v := raw.(type) {
	case nil:
		return defaultPromptCount
	case int:
		n = v
	case float64:
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return defaultPromptCount
		}
		n = parsed
	default:
		return defaultPromptCount
	}

	if n < minPromptCount {
		return minPromptCount
	}
	if n > maxPromptCount {
		return maxPromptCount
	}
	return n
}
