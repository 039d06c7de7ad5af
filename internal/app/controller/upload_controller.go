package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/umichkisa/pocha-backend/internal/errors"
	"github.com/umichkisa/pocha-backend/internal/middleware"
	"github.com/umichkisa/pocha-backend/internal/storage"
)

// MenuImagePresigner issues upload URLs for menu images
type MenuImagePresigner interface {
	PresignMenuImageUpload(ctx context.Context, pochaID uint, filename, contentType string) (*storage.PresignedURLResponse, error)
}

type UploadController struct {
	storage MenuImagePresigner
}

func NewUploadController(storage MenuImagePresigner) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type GeneratePresignedURLRequest struct {
	PochaID     uint   `json:"pochaID" binding:"required"`
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// GeneratePresignedURL generates a presigned URL for uploading a menu image to S3
// POST /api/v2/pocha/upload/presigned-url
func (ctrl *UploadController) GeneratePresignedURL(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GeneratePresignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presigned URL request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "pochaID, filename and contentType are required")
		return
	}

	response, err := ctrl.storage.PresignMenuImageUpload(c.Request.Context(), req.PochaID, req.Filename, req.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrContentTypeNotAllowed) {
			log.Warn("Invalid content type", map[string]interface{}{
				"content_type": req.ContentType,
			})
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Only image files are allowed (JPEG, PNG, GIF, WEBP)")
			return
		}
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Failed to generate presigned URL")
		return
	}

	log.Info("Presigned URL generated successfully", map[string]interface{}{
		"pocha_id": req.PochaID,
		"key":      response.Key,
	})
	c.JSON(http.StatusOK, response)
}
