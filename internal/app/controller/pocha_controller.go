package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/umichkisa/pocha-backend/internal/app/service"
	apperrors "github.com/umichkisa/pocha-backend/internal/errors"
	"github.com/umichkisa/pocha-backend/internal/middleware"
)

type PochaController struct {
	pochaService service.PochaService
}

func NewPochaController(pochaService service.PochaService) *PochaController {
	return &PochaController{
		pochaService: pochaService,
	}
}

// GetStatusInfo 현재 또는 다음 포차 정보. 없으면 204
// GET /api/v2/pocha/status-info/?date=2026-04-18T20:00:00Z
func (ctrl *PochaController) GetStatusInfo(c *gin.Context) {
	raw := c.Query("date")
	if raw == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "date query parameter is required")
		return
	}
	now, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "date must be an ISO-8601 timestamp")
		return
	}

	status, err := ctrl.pochaService.GetStatusInfo(now)
	if err != nil {
		respondServiceError(c, err, "pocha status")
		return
	}
	if status == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, status)
}

// CreatePocha
// POST /api/v2/pocha/
func (ctrl *PochaController) CreatePocha(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.PochaInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid pocha request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid request body")
		return
	}

	pocha, err := ctrl.pochaService.CreatePocha(req)
	if err != nil {
		respondServiceError(c, err, "create pocha")
		return
	}
	c.JSON(http.StatusCreated, pocha)
}

// UpdatePocha
// PUT /api/v2/pocha/:pochaID/
func (ctrl *PochaController) UpdatePocha(c *gin.Context) {
	pochaID, ok := uintParam(c, "pochaID")
	if !ok {
		return
	}

	var req service.PochaInput
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidFormat, "Invalid request body")
		return
	}

	pocha, err := ctrl.pochaService.UpdatePocha(c.Request.Context(), pochaID, req)
	if err != nil {
		respondServiceError(c, err, "update pocha")
		return
	}
	c.JSON(http.StatusOK, pocha)
}

// GetMenu 카테고리별 메뉴
// GET /api/v2/pocha/menu/:pochaID/
func (ctrl *PochaController) GetMenu(c *gin.Context) {
	pochaID, ok := uintParam(c, "pochaID")
	if !ok {
		return
	}

	menu, err := ctrl.pochaService.GetMenu(pochaID)
	if err != nil {
		respondServiceError(c, err, "get menu")
		return
	}
	c.JSON(http.StatusOK, menu)
}
