package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/umichkisa/pocha-backend/internal/app/service"
	apperrors "github.com/umichkisa/pocha-backend/internal/errors"
	"github.com/umichkisa/pocha-backend/internal/middleware"
)

type PaymentController struct {
	paymentService service.PaymentService
}

func NewPaymentController(paymentService service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

type PayResultRequest struct {
	Result string `json:"result" binding:"required"`
}

// respondShortage 424 {isStocked:false, menu}
func respondShortage(c *gin.Context, err error) bool {
	var shortage *service.StockShortageError
	if !errors.As(err, &shortage) {
		return false
	}
	middleware.GetLoggerFromContext(c).Warn("Insufficient stock", map[string]interface{}{
		"menu_id":   shortage.Menu.ID,
		"requested": shortage.Requested,
		"stock":     shortage.Menu.Stock,
	})
	c.JSON(http.StatusFailedDependency, gin.H{
		"isStocked": false,
		"menu":      shortage.Menu,
	})
	return true
}

// CheckStock reserves stock for the whole cart
// GET /api/v2/pocha/payment/:email/:pochaID/check-stock/
func (ctrl *PaymentController) CheckStock(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	pochaID, ok := uintParam(c, "pochaID")
	if !ok {
		return
	}

	if err := ctrl.paymentService.ReserveStock(c.Param("email"), pochaID); err != nil {
		if respondShortage(c, err) {
			return
		}
		respondServiceError(c, err, "reserve stock")
		return
	}

	log.Info("Stock reserved", map[string]interface{}{
		"pocha_id": pochaID,
	})
	c.JSON(http.StatusOK, gin.H{"isStocked": true})
}

// PayResult finalizes or compensates the cart
// PUT /api/v2/pocha/payment/:email/:pochaID/pay-result/
func (ctrl *PaymentController) PayResult(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	pochaID, ok := uintParam(c, "pochaID")
	if !ok {
		return
	}

	var req PayResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.PaymentInvalidResult, "result is required")
		return
	}

	outcome, err := ctrl.paymentService.ApplyResult(c.Param("email"), pochaID, service.PaymentResult(req.Result))
	if err != nil {
		if respondShortage(c, err) {
			return
		}
		respondServiceError(c, err, "pay result")
		return
	}

	log.Info("Payment result handled", map[string]interface{}{
		"pocha_id":  pochaID,
		"order_id":  outcome.OrderID,
		"result":    outcome.Result,
		"restocked": outcome.Restocked,
	})

	if outcome.Result == service.PaymentFailure {
		c.JSON(http.StatusOK, gin.H{"message": "items restocked", "restocked": outcome.Restocked})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "success",
		"orderID":       outcome.OrderID,
		"newOrderItems": outcome.NewOrderItems,
	})
}
