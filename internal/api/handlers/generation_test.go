package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slowpost-labs/slowpost-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestStatusForKind(t *testing.T) {
	tests := []struct {
		kind     models.ErrorKind
		expected int
	}{
		{models.ErrorKindValidation, http.StatusBadRequest},
		{models.ErrorKindProviderRateLimited, http.StatusTooManyRequests},
		{models.ErrorKindProviderBadRequest, http.StatusBadGateway},
		{models.ErrorKindProviderAuthFailed, http.StatusServiceUnavailable},
		{models.ErrorKindProviderUnavailable, http.StatusServiceUnavailable},
		{models.ErrorKind("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, statusForKind(tt.kind))
		})
	}
}

func TestErrorEnvelope(t *testing.T) {
	env := errorEnvelope("validation", "prompt text is required", map[string]string{"prompt": "must not be blank"})

	assert.Equal(t, false, env["success"])
	errBody := env["error"].(gin.H)
	assert.Equal(t, "validation", errBody["code"])
	assert.Equal(t, "prompt text is required", errBody["message"])
	assert.Contains(t, errBody, "fields")

	noFields := errorEnvelope("provider_unavailable", "generation provider is unavailable", nil)
	errBody = noFields["error"].(gin.H)
	assert.NotContains(t, errBody, "fields")
}

func TestTimeOfDay(t *testing.T) {
	day := func(hour int) time.Time {
		return time.Date(2026, 8, 25, hour, 0, 0, 0, time.UTC)
	}

	assert.Equal(t, "morning", timeOfDay(day(6)))
	assert.Equal(t, "morning", timeOfDay(day(11)))
	assert.Equal(t, "afternoon", timeOfDay(day(12)))
	assert.Equal(t, "afternoon", timeOfDay(day(17)))
	assert.Equal(t, "evening", timeOfDay(day(18)))
	assert.Equal(t, "evening", timeOfDay(day(23)))
}
