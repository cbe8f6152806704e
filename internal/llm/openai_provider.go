package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/slowpost-labs/slowpost-api/internal/models"
)

const (
	providerNameOpenAI = "openai"
)

// OpenAIProvider implements the Provider interface using OpenAI's Responses API
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client: &client,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

// Generate issues exactly one Responses API call and classifies any
// failure into the generation error taxonomy.
func (p *OpenAIProvider) Generate(ctx context.Context, request *GenerationRequest) (*ProviderResponse, error) {
	startTime := time.Now()
	log.Printf("✉️  OPENAI GENERATION REQUEST STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "openai.generate")
	defer transaction.Finish()

	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)

	params := p.buildRequestParams(request)

	span := transaction.StartChild("openai.api_call")
	apiStartTime := time.Now()
	resp, err := p.client.Responses.New(ctx, params)
	apiDuration := time.Since(apiStartTime)
	span.Finish()

	if err != nil {
		log.Printf("❌ OPENAI REQUEST FAILED after %v: %v", apiDuration, err)
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, classifyOpenAIError(err)
	}

	log.Printf("⏱️  OPENAI API CALL COMPLETED in %v", apiDuration)

	textOutput := resp.OutputText()
	if textOutput == "" {
		transaction.SetTag("success", "false")
		return nil, models.NewProviderError(models.ErrorKindProviderUnavailable,
			"generation provider returned no output text", errors.New("empty output in OpenAI response"))
	}

	response := &ProviderResponse{
		RawText:      textOutput,
		FinishReason: string(resp.Status),
		Usage: &models.TokenUsage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
			TotalTokens:  int(resp.Usage.TotalTokens),
		},
	}

	log.Printf("✅ OPENAI GENERATION COMPLETED in %v (output_length=%d)", time.Since(startTime), len(textOutput))
	transaction.SetTag("success", "true")
	return response, nil
}

// buildRequestParams converts a GenerationRequest to OpenAI ResponseNewParams.
// The Responses API has no top-k control, so that sampling field only
// applies to providers that support it.
func (p *OpenAIProvider) buildRequestParams(request *GenerationRequest) responses.ResponseNewParams {
	inputItems := responses.ResponseInputParam{
		responses.ResponseInputItemParamOfMessage(request.Prompt, responses.EasyInputMessageRoleUser),
	}

	params := responses.ResponseNewParams{
		Model: request.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems,
		},
		Instructions:    openai.String(request.SystemInstruction),
		Temperature:     openai.Float(request.Sampling.Temperature),
		TopP:            openai.Float(request.Sampling.TopP),
		MaxOutputTokens: openai.Int(int64(request.Sampling.MaxOutputTokens)),
	}

	if request.OutputSchema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        request.OutputSchema.Name,
					Description: openai.String(request.OutputSchema.Description),
					Schema:      request.OutputSchema.Schema,
					Strict:      openai.Bool(true),
				},
			},
		}
	}

	return params
}

// classifyOpenAIError maps an OpenAI API failure onto the error taxonomy.
// The original error stays attached as the wrapped cause.
func classifyOpenAIError(err error) *models.GenerationError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
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
