package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-relay/internal/observability"
)

// MetricsHandler exposes relay counters.
type MetricsHandler struct {
	metrics *observability.RelayMetrics
}

// NewMetricsHandler returns a new handler instance.
func NewMetricsHandler(metrics *observability.RelayMetrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Snapshot returns the current counter values.
func (h *MetricsHandler) Snapshot(c *fiber.Ctx) error {
	return c.JSON(h.metrics.Snapshot())
}
