package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo 에러 정보 구조
type ErrorInfo struct {
	Code    string // 에러 코드 (codes.go 참조)
	Message string // 사용자 메시지
}

// ParseError converts a persistence error into a client-safe code and message.
// DB details never leak into the message.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Internal server error"}
	}

	errLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundInfo(context)
	}

	// Postgres 23505 / sqlite UNIQUE
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		if strings.Contains(errLower, "email") {
			return ErrorInfo{Code: ResourceAlreadyExists, Message: "Email already registered"}
		}
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Resource already exists"}
	}

	// 23503
	if strings.Contains(errLower, "foreign key constraint") {
		if strings.Contains(errLower, "still referenced") {
			return ErrorInfo{Code: ResourceConflict, Message: "Resource is still referenced by orders"}
		}
		return notFoundInfo(context)
	}

	// 23502
	if strings.Contains(errLower, "not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "Missing required field"}
	}

	// 23514, menus.stock >= 0
	if strings.Contains(errLower, "check constraint") {
		if strings.Contains(errLower, "stock") {
			return ErrorInfo{Code: StockInvalidQuantity, Message: "Stock cannot be negative"}
		}
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid input"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "Upstream service unavailable, please try again later",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

func notFoundInfo(context string) ErrorInfo {
	c := strings.ToLower(context)
	switch {
	case strings.Contains(c, "pocha"):
		return ErrorInfo{Code: PochaNotFound, Message: "Pocha not found"}
	case strings.Contains(c, "menu"):
		return ErrorInfo{Code: MenuNotFound, Message: "Menu not found"}
	case strings.Contains(c, "order item"):
		return ErrorInfo{Code: OrderItemNotFound, Message: "Order item not found"}
	case strings.Contains(c, "user"):
		return ErrorInfo{Code: UserNotFound, Message: "User not found"}
	case strings.Contains(c, "cart"), strings.Contains(c, "order"):
		return ErrorInfo{Code: CartNotFound, Message: "Order not found"}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "Resource not found"}
}

func defaultMessage(context string) string {
	c := strings.ToLower(context)
	switch {
	case strings.Contains(c, "create"):
		return "Failed to create, please try again later"
	case strings.Contains(c, "update"):
		return "Failed to update, please try again later"
	case strings.Contains(c, "delete"):
		return "Failed to delete, please try again later"
	}
	return "Internal server error, please try again later"
}

// ParseAndRespond 에러를 파싱하여 응답 반환
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
