package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"makemeshort/internal/geo"
	"makemeshort/internal/middleware"
	"makemeshort/internal/models"
	"makemeshort/internal/service"
)

type ShortenerController struct {
	urls    service.URLService
	tracker service.VisitorTracker
	geo     geo.Geolocator
	logger  *zap.Logger
}

func NewShortenerController(urls service.URLService, tracker service.VisitorTracker, geolocator geo.Geolocator, logger *zap.Logger) *ShortenerController {
	return &ShortenerController{
		urls:    urls,
		tracker: tracker,
		geo:     geolocator,
		logger:  logger,
	}
}

// CreateShortURL handles POST /api/shorten
func (sc *ShortenerController) CreateShortURL(c *gin.Context) {
	var req models.CreateURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	response, err := sc.urls.Create(c.Request.Context(), &req, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func optionalHeader(c *gin.Context, name string) *string {
	if v := c.GetHeader(name); v != "" {
		return &v
	}
	return nil
}

// Redirect handles GET /r/:code - resolves the code and sends the visitor
// to the original URL while recording the click.
func (sc *ShortenerController) Redirect(c *gin.Context) {
	code := c.Param("code")

	url, err := sc.urls.Resolve(c.Request.Context(), code)
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}

	ip := c.ClientIP()
	userAgent := optionalHeader(c, "User-Agent")
	referrer := optionalHeader(c, "Referer")
	country := sc.geo.Country(ip, c.Request.Header)

	// Detached from the request context: a client disconnect during the
	// redirect must not abort the event+counter transaction halfway.
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		if err := sc.tracker.RecordVisit(ctx, code, ip, userAgent, referrer, country); err != nil {
			sc.logger.Warn("failed to record visit", zap.String("short_code", code), zap.Error(err))
		}
	}()

	c.Redirect(http.StatusFound, url.OriginalURL)
}

// ListURLs handles GET /api/urls
func (sc *ShortenerController) ListURLs(c *gin.Context) {
	var params models.URLSearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters", "details": err.Error()})
		return
	}

	urls, err := sc.urls.List(c.Request.Context(), params, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}

	c.JSON(http.StatusOK, urls)
}

// ListUserURLs handles GET /api/users/:user_id/urls (ownership-guarded)
func (sc *ShortenerController) ListUserURLs(c *gin.Context) {
	params := models.URLSearchParams{
		Search: c.Query("search"),
		UserID: c.Param("user_id"),
	}

	urls, err := sc.urls.List(c.Request.Context(), params, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, sc.logger, err)
		return
	}

	c.JSON(http.StatusOK, urls)
}

// DeleteURL handles DELETE /api/urls/:code
func (sc *ShortenerController) DeleteURL(c *gin.Context) {
	code := c.Param("code")

	if err := sc.urls.Delete(c.Request.Context(), code, middleware.CurrentUserID(c)); err != nil {
		respondError(c, sc.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
