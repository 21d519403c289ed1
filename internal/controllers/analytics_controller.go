package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"makemeshort/internal/service"
)

type AnalyticsController struct {
	analytics service.AnalyticsService
	logger    *zap.Logger
}

func NewAnalyticsController(analytics service.AnalyticsService, logger *zap.Logger) *AnalyticsController {
	return &AnalyticsController{analytics: analytics, logger: logger}
}

// GetAnalytics handles GET /api/analytics/:code - the aggregated summary for
// a short code. ?days=N windows and zero-fills the click history.
func (ac *AnalyticsController) GetAnalytics(c *gin.Context) {
	code := c.Param("code")

	windowDays := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		windowDays = n
	}

	summary, err := ac.analytics.Summarize(c.Request.Context(), code, windowDays)
	if err != nil {
		respondError(c, ac.logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
