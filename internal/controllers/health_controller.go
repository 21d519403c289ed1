package controllers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthController struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewHealthController(db *sql.DB, logger *zap.Logger) *HealthController {
	return &HealthController{db: db, logger: logger}
}

// Check handles GET /health/check
func (hc *HealthController) Check(c *gin.Context) {
	if err := hc.db.PingContext(c.Request.Context()); err != nil {
		hc.logger.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database unreachable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
