package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slowpost-labs/slowpost-api/internal/llm"
	"github.com/slowpost-labs/slowpost-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	resp    *llm.ProviderResponse
	err     error
	calls   int
	lastReq *llm.GenerationRequest
}

func (s *stubProvider) Generate(_ context.Context, req *llm.GenerationRequest) (*llm.ProviderResponse, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubProvider) Name() string { return "stub" }

type stubProviderSource struct {
	provider *stubProvider
	err      error
}

func (s *stubProviderSource) GetProvider(_ context.Context, _, _ string) (llm.Provider, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.provider, nil
}

type stubStore struct {
	letter *models.Letter
	err    error
}

func (s *stubStore) GetLetterByID(_, _ uint) (*models.Letter, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.letter, nil
}

func newTestService(provider *stubProvider, store ContentStore) *Service {
	return NewService(&stubProviderSource{provider: provider}, store, "gemini-2.5-flash")
}

func TestGenerateFreeformBlankPromptFailsBeforeProviderCall(t *testing.T) {
	provider := &stubProvider{}
	svc := newTestService(provider, &stubStore{})

	_, err := svc.GenerateFreeform(context.Background(), FreeformRequest{Prompt: "   "})

	var genErr *models.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, models.ErrorKindValidation, genErr.Kind)
	assert.Contains(t, genErr.Fields, "prompt")
	assert.Equal(t, 0, provider.calls, "provider must not be called for invalid input")
}

func TestGenerateFreeformSuccess(t *testing.T) {
	provider := &stubProvider{
		resp: &llm.ProviderResponse{
			RawText:      "Here is a thought.",
			FinishReason: "stop",
			Usage:        &models.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
		},
	}
	svc := newTestService(provider, &stubStore{})

	result, err := svc.GenerateFreeform(context.Background(), FreeformRequest{Prompt: "say something kind"})
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, "gemini-2.5-flash", provider.lastReq.Model, "default model applied")
	assert.Nil(t, provider.lastReq.OutputSchema, "freeform is unconstrained")
	assert.Equal(t, llm.MergeSampling(nil), provider.lastReq.Sampling)

	payload, ok := result.Payload.(models.FreeformPayload)
	require.True(t, ok)
	assert.Equal(t, "Here is a thought.", payload.Text)
	assert.False(t, result.Metadata.Degraded)
	assert.Equal(t, 15, result.Metadata.Usage.TotalTokens)
}

func TestGenerateFreeformSamplingOverride(t *testing.T) {
	provider := &stubProvider{resp: &llm.ProviderResponse{RawText: "ok"}}
	svc := newTestService(provider, &stubStore{})

	temp := 0.1
	_, err := svc.GenerateFreeform(context.Background(), FreeformRequest{
		Prompt:   "hello",
		Model:    "gpt-4o-mini",
		Sampling: &models.SamplingParams{Temperature: &temp},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", provider.lastReq.Model)
	assert.Equal(t, 0.1, provider.lastReq.Sampling.Temperature)
	assert.Equal(t, int32(llm.DefaultMaxOutputTokens), provider.lastReq.Sampling.MaxOutputTokens)
}

func TestGenerateFreeformRejectsOutOfRangeSampling(t *testing.T) {
	temp := 3.0
	topP := 1.5
	topK := int32(-1)
	maxTokens := int32(0)

	tests := []struct {
		name     string
		sampling *models.SamplingParams
		field    string
	}{
		{"temperature above 2", &models.SamplingParams{Temperature: &temp}, "temperature"},
		{"top_p above 1", &models.SamplingParams{TopP: &topP}, "top_p"},
		{"negative top_k", &models.SamplingParams{TopK: &topK}, "top_k"},
		{"zero max tokens", &models.SamplingParams{MaxOutputTokens: &maxTokens}, "max_output_tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &stubProvider{resp: &llm.ProviderResponse{RawText: "ok"}}
			svc := newTestService(provider, &stubStore{})

			_, err := svc.GenerateFreeform(context.Background(), FreeformRequest{
				Prompt:   "hello",
				Sampling: tt.sampling,
			})

			var genErr *models.GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, models.ErrorKindValidation, genErr.Kind)
			assert.Contains(t, genErr.Fields, tt.field)
			assert.Equal(t, 0, provider.calls, "provider must not see invalid sampling")
		})
	}
}

func TestGenerateFreeformAcceptsBoundarySampling(t *testing.T) {
	temp := 2.0
	topP := 0.0
	topK := int32(0)
	provider := &stubProvider{resp: &llm.ProviderResponse{RawText: "ok"}}
	svc := newTestService(provider, &stubStore{})

	_, err := svc.GenerateFreeform(context.Background(), FreeformRequest{
		Prompt:   "hello",
		Sampling: &models.SamplingParams{Temperature: &temp, TopP: &topP, TopK: &topK},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
}

func TestReflectionQuestionUndeliveredLetter(t *testing.T) {
	provider := &stubProvider{}
	store := &stubStore{letter: &models.Letter{
		ID:        7,
		UserID:    1,
		Content:   "my goals for the year",
		Delivered: false,
		CreatedAt: time.Now().AddDate(0, -2, 0),
	}}
	svc := newTestService(provider, store)

	_, err := svc.GenerateReflectionQuestion(context.Background(), 1, 7)

	var genErr *models.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, models.ErrorKindValidation, genErr.Kind)
	assert.Equal(t, 0, provider.calls, "provider must not be called before delivery")
}

func TestReflectionQuestionMissingID(t *testing.T) {
	provider := &stubProvider{}
	svc := newTestService(provider, &stubStore{})

	_, err := svc.GenerateReflectionQuestion(context.Background(), 1, 0)

	var genErr *models.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, models.ErrorKindValidation, genErr.Kind)
	assert.Equal(t, 0, provider.calls)
}

func TestReflectionQuestionStoreErrorPassthrough(t *testing.T) {
	provider := &stubProvider{}
	notFound := errors.New("letter not found")
	svc := newTestService(provider, &stubStore{err: notFound})

	_, err := svc.GenerateReflectionQuestion(context.Background(), 1, 7)

	assert.ErrorIs(t, err, notFound)
	assert.Equal(t, 0, provider.calls)
}

func TestReflectionQuestionSuccess(t *testing.T) {
	provider := &stubProvider{
		resp: &llm.ProviderResponse{RawText: `{"question": "Did the new job work out?"}`},
	}
	store := &stubStore{letter: &models.Letter{
		ID:        7,
		UserID:    1,
		Title:     "Big move",
		Content:   "starting a new job and career next week",
		Mood:      "nervous",
		Delivered: true,
		CreatedAt: time.Now().AddDate(0, 0, -30),
	}}
	svc := newTestService(provider, store)

	result, err := svc.GenerateReflectionQuestion(context.Background(), 1, 7)
	require.NoError(t, err)

	require.NotNil(t, provider.lastReq.OutputSchema)
	assert.Equal(t, "reflection_question", provider.lastReq.OutputSchema.Name)
	assert.Contains(t, provider.lastReq.Prompt, "career")
	assert.NotContains(t, provider.lastReq.Prompt, "starting a new job", "letter body never reaches the prompt")

	payload, ok := result.Payload.(models.QuestionPayload)
	require.True(t, ok)
	assert.Equal(t, "Did the new job work out?", payload.Question)
	assert.False(t, result.Metadata.Degraded)
}

func TestRateLimitedProviderSurfacesKind(t *testing.T) {
	provider := &stubProvider{
		err: models.NewProviderError(models.ErrorKindProviderRateLimited,
			"generation provider is rate limiting requests", errors.New("429")),
	}
	svc := newTestService(provider, &stubStore{})

	result, err := svc.GenerateFreeform(context.Background(), FreeformRequest{Prompt: "hello"})

	assert.Nil(t, result, "no envelope on provider failure")
	var genErr *models.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, models.ErrorKindProviderRateLimited, genErr.Kind)
}

func TestProviderSourceFailure(t *testing.T) {
	svc := NewService(&stubProviderSource{err: errors.New("no key configured")}, &stubStore{}, "gemini-2.5-flash")

	_, err := svc.GenerateFreeform(context.Background(), FreeformRequest{Prompt: "hello"})

	var genErr *models.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, models.ErrorKindProviderUnavailable, genErr.Kind)
}

func TestGenerateWritingPromptsPassesClampedCount(t *testing.T) {
	provider := &stubProvider{
		resp: &llm.ProviderResponse{RawText: `{"prompts": ["one real prompt", "two real prompt"]}`},
	}
	svc := newTestService(provider, &stubStore{})

	result, err := svc.GenerateWritingPrompts(context.Background(), WritingPromptsRequest{
		Mood:  "hopeful",
		Count: float64(9),
	})
	require.NoError(t, err)

	assert.Contains(t, provider.lastReq.Prompt, "Generate 5 distinct prompts")
	require.NotNil(t, provider.lastReq.OutputSchema)
	assert.Equal(t, "writing_prompts", provider.lastReq.OutputSchema.Name)

	payload, ok := result.Payload.(models.WritingPromptsPayload)
	require.True(t, ok)
	assert.Len(t, payload.Prompts, 2)
}

func TestGenerateAffirmation(t *testing.T) {
	provider := &stubProvider{
		resp: &llm.ProviderResponse{RawText: `{"affirmation": "You keep your promises."}`},
	}
	svc := newTestService(provider, &stubStore{})

	result, err := svc.GenerateAffirmation(context.Background(), AffirmationRequest{
		DisplayName: "Sam",
		TimeOfDay:   "evening",
		Stats:       &models.UsageStats{CurrentStreak: 3},
	})
	require.NoError(t, err)

	assert.Contains(t, provider.lastReq.Prompt, "Sam")
	assert.Contains(t, provider.lastReq.Prompt, "3-day writing streak")

	payload, ok := result.Payload.(models.AffirmationPayload)
	require.True(t, ok)
	assert.Equal(t, "You keep your promises.", payload.Affirmation)
}

func TestClampCount(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected int
	}{
		{"nil defaults to 3", nil, 3},
		{"zero clamps to 1", 0, 1},
		{"one stays", 1, 1},
		{"five stays", 5, 5},
		{"six clamps to 5", 6, 5},
		{"negative clamps to 1", -4, 1},
		{"json number", float64(2), 2},
		{"numeric string", "4", 4},
		{"non-numeric string defaults to 3", "abc", 3},
		{"unsupported type defaults to 3", []string{"2"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampCount(tt.raw)
			assert.Equal(t, tt.expected, got)
			assert.GreaterOrEqual(t, got, 1)
			assert.LessOrEqual(t, got, 5)
		})
	}
}
