package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civigo/citizen-portal/internal/service"
)

// AnalyticsHandler serves dashboard aggregates.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analyticsService}
}

// Summary handles GET /analytics/summary.
func (h *AnalyticsHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.analytics.Summary(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}
