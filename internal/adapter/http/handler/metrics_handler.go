package handler

import (
	"invoicing-backend/internal/core/ports"
	"invoicing-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// MetricsHandler exposes the in-process operational metrics snapshot.
type MetricsHandler struct {
	metrics ports.MetricsService
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(metrics ports.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Snapshot handles GET /api/v1/metrics.
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.OK(c, h.metrics.Snapshot())
}
