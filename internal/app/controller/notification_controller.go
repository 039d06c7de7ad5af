package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/internal/app/service"
	apperrors "github.com/umichkisa/pocha-backend/internal/errors"
	"github.com/umichkisa/pocha-backend/internal/middleware"
)

type NotificationController struct {
	notificationService service.NotificationService
}

func NewNotificationController(notificationService service.NotificationService) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
	}
}

type RegisterTokenRequest struct {
	Email string `json:"email" binding:"required,email"`
	Token string `json:"token" binding:"required"`
}

// RegisterToken 디바이스 토큰 등록/갱신
// POST /api/v2/pocha/notification/register-token/
func (ctrl *NotificationController) RegisterToken(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "email and token are required")
		return
	}

	// 본인 토큰만 등록 (운영진 제외)
	authEmail, _ := middleware.GetUserEmail(c)
	role, _ := middleware.GetUserRole(c)
	if role != model.RoleAdmin && !strings.EqualFold(authEmail, req.Email) {
		apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzOwnerOnly, "Cannot register a token for another user")
		return
	}

	endpoint, err := ctrl.notificationService.RegisterToken(c.Request.Context(), req.Email, req.Token)
	if err != nil {
		respondServiceError(c, err, "register token")
		return
	}

	log.Info("Device token registered", map[string]interface{}{
		"endpoint_id": endpoint.ID,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "push endpoint registered for " + endpoint.Email,
	})
}
