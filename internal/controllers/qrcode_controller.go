package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"makemeshort/internal/entities"
	"makemeshort/internal/middleware"
	"makemeshort/internal/models"
	"makemeshort/internal/service"
)

type QRCodeController struct {
	qrs    service.QRService
	logger *zap.Logger
}

func NewQRCodeController(qrs service.QRService, logger *zap.Logger) *QRCodeController {
	return &QRCodeController{qrs: qrs, logger: logger}
}

func writeSVG(c *gin.Context, qr *entities.QRCode) {
	c.Header("X-QR-Generated-At", qr.GeneratedAt.UTC().Format(http.TimeFormat))
	c.Data(http.StatusOK, "image/svg+xml", []byte(qr.SVGContent))
}

// RegenerateQR handles GET /api/qr/:code/regenerate - returns the cached
// payload unless force=true, in which case a fresh render replaces it.
func (qc *QRCodeController) RegenerateQR(c *gin.Context) {
	code := c.Param("code")
	target := entities.ParseTargetType(c.Query("url_type"))
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	qr, err := qc.qrs.GetOrCreateForCode(c.Request.Context(), code, target, force, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, qc.logger, err)
		return
	}

	writeSVG(c, qr)
}

// GetQRInfo handles GET /api/qr/:code/info - metadata only, never renders.
func (qc *QRCodeController) GetQRInfo(c *gin.Context) {
	code := c.Param("code")
	target := entities.ParseTargetType(c.Query("url_type"))

	qr, err := qc.qrs.GetCached(c.Request.Context(), code, target)
	if err != nil {
		respondError(c, qc.logger, err)
		return
	}

	current := middleware.CurrentUserID(c)
	owned := current != nil && qr.UserID != nil && *current == *qr.UserID
	c.JSON(http.StatusOK, models.QRCodeInfo{
		ID:                 qr.ID,
		ShortCode:          qr.ShortCode,
		OriginalURL:        qr.OriginalURL,
		TargetType:         string(qr.TargetType),
		IsDirect:           qr.IsDirect(),
		Size:               qr.Size,
		UserID:             qr.UserID,
		OwnedByCurrentUser: owned,
		GeneratedAt:        qr.GeneratedAt,
	})
}

// CreateDirectQR handles POST /api/qr - a QR code for an arbitrary URL
// without shortening it first.
func (qc *QRCodeController) CreateDirectQR(c *gin.Context) {
	var req models.DirectQRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	size := 0
	if req.Size != nil {
		size = *req.Size
	}
	force := req.ForceRegenerate != nil && *req.ForceRegenerate

	qr, err := qc.qrs.GetOrCreateDirect(c.Request.Context(), req.URL, size, force, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, qc.logger, err)
		return
	}

	writeSVG(c, qr)
}

// ListQRCodes handles GET /api/qr
func (qc *QRCodeController) ListQRCodes(c *gin.Context) {
	var params models.QRSearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters", "details": err.Error()})
		return
	}

	infos, err := qc.qrs.List(c.Request.Context(), params, "", middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, qc.logger, err)
		return
	}

	c.JSON(http.StatusOK, infos)
}

// ListUserQRCodes handles GET /api/users/:user_id/qr (ownership-guarded)
func (qc *QRCodeController) ListUserQRCodes(c *gin.Context) {
	params := models.QRSearchParams{
		Search:     c.Query("search"),
		TargetType: c.Query("target_type"),
	}

	infos, err := qc.qrs.List(c.Request.Context(), params, c.Param("user_id"), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, qc.logger, err)
		return
	}

	c.JSON(http.StatusOK, infos)
}
