package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/slowpost-labs/slowpost-api/internal/models"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	mimeTypeJSON       = "application/json"
	geminiUserRole     = "user"
)

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

// Generate issues exactly one GenerateContent call and classifies any
// failure into the generation error taxonomy.
func (p *GeminiProvider) Generate(ctx context.Context, request *GenerationRequest) (*ProviderResponse, error) {
	startTime := time.Now()
	log.Printf("✉️  GEMINI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "gemini.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)

	contents := []*genai.Content{
		{
			Role:  geminiUserRole,
			Parts: []*genai.Part{{Text: request.Prompt}},
		},
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemInstruction}},
		},
		Temperature:     genai.Ptr(float32(request.Sampling.Temperature)),
		TopP:            genai.Ptr(float32(request.Sampling.TopP)),
		TopK:            genai.Ptr(float32(request.Sampling.TopK)),
		MaxOutputTokens: request.Sampling.MaxOutputTokens,
	}

	if request.OutputSchema != nil {
		config.ResponseMIMEType = mimeTypeJSON
		config.ResponseSchema = convertSchemaToGemini(request.OutputSchema.Schema)
	}

	span := transaction.StartChild("gemini.api_call")
	apiStartTime := time.Now()
	result, err := p.client.Models.GenerateContent(ctx, request.Model, contents, config)
	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ GEMINI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, classifyGeminiError(err)
	}

	log.Printf("⏱️  GEMINI API CALL COMPLETED in %v", apiDuration)

	response, err := p.processGeminiResponse(result, startTime)
	if err != nil {
		transaction.SetTag("success", "false")
		return nil, err
	}

	transaction.SetTag("success", "true")
	return response, nil
}

// processGeminiResponse extracts the raw text and usage from a Gemini response
func (p *GeminiProvider) processGeminiResponse(
	result *genai.GenerateContentResponse,
	startTime time.Time,
) (*ProviderResponse, error) {
	if len(result.Candidates) == 0 {
		return nil, models.NewProviderError(models.ErrorKindProviderUnavailable,
			"generation provider returned no candidates", errors.New("no candidates in Gemini response"))
	}

	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, models.NewProviderError(models.ErrorKindProviderUnavailable,
			"generation provider returned an empty response", errors.New("no parts in Gemini response"))
	}

	textOutput := candidate.Content.Parts[0].Text
	log.Printf("📥 GEMINI RESPONSE: output_length=%d", len(textOutput))

	if textOutput == "" {
		return nil, models.NewProviderError(models.ErrorKindProviderUnavailable,
			"generation provider returned no output text", errors.New("empty text in Gemini response"))
	}

	response := &ProviderResponse{
		RawText:      textOutput,
		FinishReason: string(candidate.FinishReason),
	}

	if result.UsageMetadata != nil {
		log.Printf("📊 GEMINI USAGE: input=%d, output=%d, total=%d",
			result.UsageMetadata.PromptTokenCount,
			result.UsageMetadata.CandidatesTokenCount,
			result.UsageMetadata.TotalTokenCount)
		response.Usage = &models.TokenUsage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}

	log.Printf("✅ GEMINI GENERATION COMPLETED in %v", time.Since(startTime))
	return response, nil
}

// convertSchemaToGemini converts a JSON schema map to Gemini's schema type.
// Only the shapes the schema registry produces are handled: objects with
// scalar/array fields and string arrays.
func convertSchemaToGemini(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{}

	typeName, _ := schema["type"].(string)
	switch typeName {
	case "object":
		out.Type = genai.TypeObject
		if props, ok := schema["properties"].(map[string]any); ok {
			out.Properties = make(map[string]*genai.Schema, len(props))
			for name, sub := range props {
				if subSchema, ok := sub.(map[string]any); ok {
					out.Properties[name] = convertSchemaToGemini(subSchema)
				}
			}
		}
		if required, ok := schema["required"].([]string); ok {
			out.Required = required
		}
	case "array":
		out.Type = genai.TypeArray
		if items, ok := schema["items"].(map[string]any); ok {
			out.Items = convertSchemaToGemini(items)
		}
	case "string":
		out.Type = genai.TypeString
	case "integer":
		out.Type = genai.TypeInteger
	case "number":
		out.Type = genai.TypeNumber
	case "boolean":
		out.Type = genai.TypeBoolean
	}

	return out
}

// classifyGeminiError maps a Gemini API failure onto the error taxonomy.
// The original error stays attached as the wrapped cause.
func classifyGeminiError(err error) *models.GenerationError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return models.NewProviderError(models.ErrorKindProviderRateLimited,
				"generation provider is rate limiting requests", err)
		case http.StatusBadRequest:
			return models.NewProviderError(models.ErrorKindProviderBadRequest,
				fmt.Sprintf("generation provider rejected the request: %s", apiErr.Message), err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return models.NewProviderError(models.ErrorKindProviderAuthFailed,
				"generation provider rejected the configured credentials", err)
		}
	}
	return models.NewProviderError(models.ErrorKindProviderUnavailable,
		"generation provider is unavailable", err)
}
