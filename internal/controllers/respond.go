package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"makemeshort/internal/apperrors"
)

// respondError maps a structured error to its suggested status; anything
// unclassified is logged and hidden behind a generic 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var ae *apperrors.Error
	if errors.As(err, &ae) {
		if ae.Kind.HTTPStatus() >= http.StatusInternalServerError {
			logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		c.JSON(ae.Kind.HTTPStatus(), gin.H{"error": ae.Message, "code": ae.Kind.String()})
		return
	}

	logger.Error("unclassified error", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
