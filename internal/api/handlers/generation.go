package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slowpost-labs/slowpost-api/internal/generation"
	"github.com/slowpost-labs/slowpost-api/internal/logger"
	"github.com/slowpost-labs/slowpost-api/internal/metrics"
	"github.com/slowpost-labs/slowpost-api/internal/middleware"
	"github.com/slowpost-labs/slowpost-api/internal/models"
	"github.com/slowpost-labs/slowpost-api/internal/services"
)

const (
	morningEnd   = 12
	afternoonEnd = 18
)

type GenerationHandler struct {
	service       *generation.Service
	letters       *services.LetterService
	metrics       *metrics.Client
	sentryMetrics *metrics.SentryMetrics
}

func NewGenerationHandler(service *generation.Service, letters *services.LetterService, metricsClient *metrics.Client) *GenerationHandler {
	return &GenerationHandler{
		service:       service,
		letters:       letters,
		metrics:       metricsClient,
		sentryMetrics: metrics.NewSentryMetrics(),
	}
}

type FreeformRequest struct {
	Prompt            string                 `json:"prompt"`
	SystemInstruction string                 `json:"system_instruction"`
	Model             string                 `json:"model"`
	Sampling          *models.SamplingParams `json:"sampling"`
}

// Generate handles freeform generation requests
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req FreeformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	result, err := h.service.GenerateFreeform(c.Request.Context(), generation.FreeformRequest{
		Prompt:            req.Prompt,
		SystemInstruction: req.SystemInstruction,
		Model:             req.Model,
		Sampling:          req.Sampling,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.recordGeneration(c, models.IntentFreeform, result, time.Since(start))
	c.JSON(http.StatusOK, generation.WrapResult(result))
}

// ReflectionQuestion generates a reflection question for a delivered letter
func (h *GenerationHandler) ReflectionQuestion(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	letterID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid letter id"})
		return
	}

	start := time.Now()
	result, genErr := h.service.GenerateReflectionQuestion(c.Request.Context(), userID, uint(letterID))
	if genErr != nil {
		h.respondError(c, genErr)
		return
	}

	h.recordGeneration(c, models.IntentReflectionQuestion, result, time.Since(start))
	c.JSON(http.StatusOK, generation.WrapResult(result))
}

type WritingPromptsRequest struct {
	Mood  string `json:"mood"`
	Theme string `json:"theme"`
	Count any    `json:"count"`
}

// WritingPrompts generates letter-writing prompts
func (h *GenerationHandler) WritingPrompts(c *gin.Context) {
	var req WritingPromptsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	result, err := h.service.GenerateWritingPrompts(c.Request.Context(), generation.WritingPromptsRequest{
		Mood:  req.Mood,
		Theme: req.Theme,
		Count: req.Count,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.recordGeneration(c, models.IntentWritingPrompts, result, time.Since(start))
	c.JSON(http.StatusOK, generation.WrapResult(result))
}

// Affirmation generates a personalized affirmation for the current user
func (h *GenerationHandler) Affirmation(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Stats are best effort; an affirmation still works without them.
	stats, err := h.letters.GetUsageStats(user.ID)
	if err != nil {
		logger.Warn("Failed to load usage stats for affirmation", logger.Fields{
			"user_id": user.ID,
			"error":   err.Error(),
		})
		stats = nil
	}

	start := time.Now()
	result, genErr := h.service.GenerateAffirmation(c.Request.Context(), generation.AffirmationRequest{
		DisplayName: user.DisplayName,
		TimeOfDay:   timeOfDay(time.Now()),
		Stats:       stats,
	})
	if genErr != nil {
		h.respondError(c, genErr)
		return
	}

	h.recordGeneration(c, models.IntentAffirmation, result, time.Since(start))
	c.JSON(http.StatusOK, generation.WrapResult(result))
}

// recordGeneration persists the generation log and emits metrics
func (h *GenerationHandler) recordGeneration(c *gin.Context, intent models.Intent, result *models.GenerationResult, duration time.Duration) {
	userID, _ := middleware.GetCurrentUserID(c)

	entry := &models.GenerationLog{
		UserID:     userID,
		Intent:     string(intent),
		Model:      result.Metadata.Model,
		Degraded:   result.Metadata.Degraded,
		DurationMS: int(duration.Milliseconds()),
		RequestID:  c.GetString("request_id"),
	}
	if usage := result.Metadata.Usage; usage != nil {
		entry.TotalTokens = usage.TotalTokens
		entry.InputTokens = usage.InputTokens
		entry.OutputTokens = usage.OutputTokens
	}
	if err := h.letters.LogGeneration(entry); err != nil {
		logger.Warn("Failed to log generation", logger.Fields{
			"user_id": userID,
			"intent":  string(intent),
			"error":   err.Error(),
		})
	}

	logger.LogGenerationRequest(c.Request.Context(), result.Metadata.Model, duration, result.Metadata.Usage, logger.WithContext(c))

	if h.metrics != nil {
		h.metrics.RecordGeneration(string(intent), result.Metadata.Degraded, duration)
		if usage := result.Metadata.Usage; usage != nil {
			h.metrics.RecordTokenUsage(result.Metadata.Model, usage.TotalTokens, usage.InputTokens, usage.OutputTokens)
		}
	}

	if h.sentryMetrics != nil {
		h.sentryMetrics.RecordGeneration(c.Request.Context(), string(intent), result.Metadata.Degraded, duration)
		if usage := result.Metadata.Usage; usage != nil {
			h.sentryMetrics.RecordTokenUsage(c.Request.Context(), result.Metadata.Model, usage.TotalTokens, usage.InputTokens, usage.OutputTokens)
		}
	}
}

// GenerationStats reports aggregate generation usage for the current user,
// optionally bounded by RFC 3339 from/to query parameters.
func (h *GenerationHandler) GenerationStats(c *gin.Context) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	from, ok := parseTimeParam(c, "from")
	if !ok {
		return
	}
	to, ok := parseTimeParam(c, "to")
	if !ok {
		return
	}

	stats, err := h.letters.GetGenerationStats(userID, from, to)
	if err != nil {
		logger.Error("Failed to load generation stats", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load generation stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// parseTimeParam reads an optional RFC 3339 query parameter. A missing
// parameter yields a zero time, which the store treats as unbounded.
func parseTimeParam(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " timestamp, expected RFC 3339"})
		return time.Time{}, false
	}
	return parsed, true
}

// respondError maps an error to the uniform error envelope and status code
func (h *GenerationHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrLetterNotFound) {
		c.JSON(http.StatusNotFound, errorEnvelope("not_found", "Letter not found", nil))
		return
	}

	var genErr *models.GenerationError
	if errors.As(err, &genErr) {
		status := statusForKind(genErr.Kind)
		if status >= http.StatusInternalServerError {
			logger.Error("Generation failed", err, logger.Fields{
				"request_id": c.GetString("request_id"),
				"kind":       string(genErr.Kind),
			})
		}
		c.JSON(status, errorEnvelope(string(genErr.Kind), genErr.Message, genErr.Fields))
		return
	}

	logger.Error("Unexpected generation failure", err, logger.Fields{
		"request_id": c.GetString("request_id"),
	})
	c.JSON(http.StatusInternalServerError, errorEnvelope("internal", "Internal server error", nil))
}

func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.ErrorKindValidation:
		return http.StatusBadRequest
	case models.ErrorKindProviderRateLimited:
		return http.StatusTooManyRequests
	case models.ErrorKindProviderBadRequest:
		return http.StatusBadGateway
	case models.ErrorKindProviderAuthFailed, models.ErrorKindProviderUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorEnvelope(code, message string, fields map[string]string) gin.H {
	errBody := gin.H{
		"code":    code,
		"message": message,
	}
	if len(fields) > 0 {
		errBody["fields"] = fields
	}
	return gin.H{
		"success": false,
		"error":   errBody,
	}
}

func timeOfDay(now time.Time) string {
	switch hour := now.Hour(); {
	case hour < morningEnd:
		return "morning"
	case hour < afternoonEnd:
		return "afternoon"
	default:
		return "evening"
	}
}
