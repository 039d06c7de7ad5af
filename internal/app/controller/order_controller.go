package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/umichkisa/pocha-backend/internal/app/service"
)

// OrderController 사용자 본인의 결제된 주문 조회
type OrderController struct {
	dashboardService service.DashboardService
}

func NewOrderController(dashboardService service.DashboardService) *OrderController {
	return &OrderController{
		dashboardService: dashboardService,
	}
}

// GetUserOrders
// GET /api/v2/pocha/order/:email/:pochaID/
func (ctrl *OrderController) GetUserOrders(c *gin.Context) {
	pochaID, ok := uintParam(c, "pochaID")
	if !ok {
		return
	}

	buckets, err := ctrl.dashboardService.UserOrders(c.Param("email"), pochaID)
	if err != nil {
		respondServiceError(c, err, "user orders")
		return
	}
	c.JSON(http.StatusOK, buckets)
}
