package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type MetricsHandler struct {
	version   string
	startedAt time.Time
}

func NewMetricsHandler(version string) *MetricsHandler {
	return &MetricsHandler{
		version:   version,
		startedAt: time.Now(),
	}
}

// GetMetrics returns basic process information
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}
