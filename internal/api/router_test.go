package api

import (
	"context"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/slowpost-labs/slowpost-api/internal/config"
	"github.com/slowpost-labs/slowpost-api/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Route registration never touches the database, so a nil DB is fine here.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment:  "test",
		JWTSecret:    "test-secret",
		DefaultModel: "gemini-2.5-flash",
	}
	metricsClient, err := metrics.NewClient(context.Background(), "test", false, "")
	require.NoError(t, err)

	return SetupRouter(nil, cfg, metricsClient, "test")
}

func TestSetupRouterRegistersRoutes(t *testing.T) {
	router := newTestRouter(t)

	registered := make(map[string]bool)
	for _, route := range router.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /health",
		"GET /api/metrics",
		"POST /api/auth/register",
		"POST /api/auth/login",
		"POST /api/auth/logout",
		"GET /api/v1/me",
		"POST /api/v1/generate",
		"POST /api/v1/letters/:id/reflection-question",
		"POST /api/v1/prompts/writing",
		"POST /api/v1/affirmation",
		"GET /api/v1/generation/stats",
		"POST /api/v1/letters",
		"GET /api/v1/letters",
		"GET /api/v1/letters/:id",
		"PATCH /api/v1/letters/:id",
		"DELETE /api/v1/letters/:id",
		"PATCH /api/v1/letters/:id/goals/:goal_id",
		"GET /api/v1/usage/stats",
	}

	for _, route := range expected {
		assert.True(t, registered[route], "missing route %s", route)
	}
}
