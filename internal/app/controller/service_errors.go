package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/umichkisa/pocha-backend/internal/app/service"
	apperrors "github.com/umichkisa/pocha-backend/internal/errors"
	"github.com/umichkisa/pocha-backend/internal/middleware"
)

type errorMapping struct {
	target  error
	respond func(c *gin.Context, code string, message string)
	code    string
	message string
}

// 서비스 에러 → HTTP 응답. 위에서부터 처음 일치하는 항목 사용
var serviceErrorMappings = []errorMapping{
	{service.ErrUserNotFound, apperrors.NotFound, apperrors.UserNotFound, "User not found"},
	{service.ErrPochaNotFound, apperrors.NotFound, apperrors.PochaNotFound, "Pocha not found"},
	{service.ErrMenuNotFound, apperrors.NotFound, apperrors.MenuNotFound, "Menu not found"},
	{service.ErrCartNotFound, apperrors.NotFound, apperrors.CartNotFound, "No cart for this pocha"},
	{service.ErrCartEmpty, apperrors.NotFound, apperrors.CartEmpty, "Cart is empty"},
	{service.ErrOrderItemNotFound, apperrors.NotFound, apperrors.OrderItemNotFound, "Order item not found"},
	{service.ErrPushEndpointNotFound, apperrors.NotFound, apperrors.ResourceNotFound, "No device registered"},

	{service.ErrInvalidQuantity, apperrors.BadRequest, apperrors.CartInvalidQuantity, "Quantity must be non-zero and at most 50 per menu"},
	{service.ErrInvalidPaymentResult, apperrors.BadRequest, apperrors.PaymentInvalidResult, "Result must be success or failure"},
	{service.ErrInvalidStock, apperrors.BadRequest, apperrors.StockInvalidQuantity, "Stock must not be negative"},
	{service.ErrOrderItemClosed, apperrors.BadRequest, apperrors.OrderItemClosed, "Order item is already closed"},
	{service.ErrOrderNotPaid, apperrors.BadRequest, apperrors.OrderNotPaid, "Order is not paid"},
	{service.ErrInvalidDeviceToken, apperrors.BadRequest, apperrors.ValidationRequired, "Device token is required"},

	{service.ErrCartItemMismatch, apperrors.FailedDependency, apperrors.CartItemMismatch, "Cart does not hold the requested items"},
	{service.ErrInsufficientStock, apperrors.FailedDependency, apperrors.StockInsufficient, "Not enough stock"},
	{service.ErrStatusConflict, apperrors.FailedDependency, apperrors.OrderStatusConflict, "Order item status changed, reload and retry"},

	{service.ErrPushRegistration, apperrors.BadGateway, apperrors.PushRegistrationFailed, "Could not register device with push service"},
}

// pochaValidationCode 검증 실패 필드별 에러 코드
func pochaValidationCode(field string) string {
	switch {
	case field == "menus":
		return apperrors.PochaMenuRequired
	case strings.HasPrefix(field, "menus["):
		return apperrors.MenuInvalidField
	case strings.HasPrefix(field, "startDate"), strings.HasPrefix(field, "endDate"):
		return apperrors.PochaInvalidDates
	}
	return apperrors.ValidationInvalidInput
}

// respondServiceError writes the mapped error response; unknown errors become 500
func respondServiceError(c *gin.Context, err error, action string) {
	log := middleware.GetLoggerFromContext(c)

	var invalid *service.PochaValidationError
	if errors.As(err, &invalid) {
		log.Warn("Rejected pocha input", map[string]interface{}{
			"action": action,
			"field":  invalid.Field,
		})
		apperrors.RespondWithValidationError(c, pochaValidationCode(invalid.Field), invalid.Error(),
			map[string]string{invalid.Field: invalid.Reason})
		return
	}

	for _, m := range serviceErrorMappings {
		if errors.Is(err, m.target) {
			log.Warn("Request rejected", map[string]interface{}{
				"action": action,
				"code":   m.code,
				"error":  err.Error(),
			})
			m.respond(c, m.code, m.message)
			return
		}
	}

	log.Error("Request failed", err, map[string]interface{}{
		"action": action,
	})
	apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, action)
}

// uintParam parses a positive id path parameter, responding 400 on failure
func uintParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
