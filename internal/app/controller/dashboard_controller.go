package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/umichkisa/pocha-backend/internal/app/service"
	apperrors "github.com/umichkisa/pocha-backend/internal/errors"
	"github.com/umichkisa/pocha-backend/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardController struct {
	dashboardService   service.DashboardService
	orderStatusService service.OrderStatusService
	exportService      service.ExportService
}

func NewDashboardController(
	dashboardService service.DashboardService,
	orderStatusService service.OrderStatusService,
	exportService service.ExportService,
) *DashboardController {
	return &DashboardController{
		dashboardService:   dashboardService,
		orderStatusService: orderStatusService,
		exportService:      exportService,
	}
}

type ChangeStockRequest struct {
	MenuID   uint `json:"menuID" binding:"required"`
	Quantity *int `json:"quantity" binding:"required"`
}

// GetActiveOrders pending/preparing/ready 주문
// GET /api/v2/pocha/dashboard/:pochaID/
func (ctrl *DashboardController) GetActiveOrders(c *gin.Context) {
	pochaID, ok := uintParam(c, "pochaID")
	if !ok {
		return
	}

	buckets, err := ctrl.dashboardService.ActiveOrders(pochaID)
	if err != nil {
		respondServiceError(c, err, "active orders")
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// GetClosedOrders
// GET /api/v2/pocha/dashboard/:pochaID/closed/
func (ctrl *DashboardController) GetClosedOrders(c *gin.Context) {
	pochaID, ok := uintParam(c, "pochaID")
	if !ok {
		return
	}

	buckets, err := ctrl.dashboardService.ClosedOrders(pochaID)
	if err != nil {
		respondServiceError(c, err, "closed orders")
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// ExportOrders streams the xlsx workbook
// GET /api/v2/pocha/dashboard/:pochaID/export/
func (ctrl *DashboardController) ExportOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	pochaID, ok := uintParam(c, "pochaID")
	if !ok {
		return
	}

	buf, filename, err := ctrl.exportService.ExportOrders(pochaID)
	if err != nil {
		respondServiceError(c, err, "export orders")
		return
	}

	log.Info("Orders workbook served", map[string]interface{}{
		"pocha_id": pochaID,
		"bytes":    buf.Len(),
	})
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ChangeStatus advances an order item one step
// PUT /api/v2/pocha/dashboard/:orderItemID/change-status/
func (ctrl *DashboardController) ChangeStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	orderItemID, ok := uintParam(c, "orderItemID")
	if !ok {
		return
	}

	change, err := ctrl.orderStatusService.AdvanceStatus(c.Request.Context(), orderItemID)
	if err != nil {
		respondServiceError(c, err, "change status")
		return
	}

	log.Info("Order item advanced", map[string]interface{}{
		"order_item_id": change.OrderItemID,
		"new_status":    change.NewStatus,
	})
	c.JSON(http.StatusOK, change)
}

// ChangeStock sets a menu's absolute stock
// PUT /api/v2/pocha/dashboard/change-stock/
func (ctrl *DashboardController) ChangeStock(c *gin.Context) {
	var req ChangeStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "menuID and quantity are required")
		return
	}

	if err := ctrl.dashboardService.ChangeStock(req.MenuID, *req.Quantity); err != nil {
		respondServiceError(c, err, "change stock")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "stock quantity changed"})
}
