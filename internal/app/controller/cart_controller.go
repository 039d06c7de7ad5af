package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/umichkisa/pocha-backend/internal/app/service"
	apperrors "github.com/umichkisa/pocha-backend/internal/errors"
	"github.com/umichkisa/pocha-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

// ModifyCartRequest quantity > 0 담기, < 0 빼기
type ModifyCartRequest struct {
	MenuID   uint `json:"menuID" binding:"required"`
	Quantity int  `json:"quantity" binding:"min=-50,max=50"`
}

// GetCart returns the user's unpaid cart keyed by menuID
// GET /api/v2/pocha/cart/:email/:pochaID/
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	email := c.Param("email")
	pochaID, ok := uintParam(c, "pochaID")
	if !ok {
		return
	}

	cart, err := ctrl.cartService.GetCart(email, pochaID)
	if err != nil {
		respondServiceError(c, err, "get cart")
		return
	}

	log.Debug("Cart fetched", map[string]interface{}{
		"pocha_id": pochaID,
		"menus":    len(cart),
	})
	c.JSON(http.StatusOK, cart)
}

// ModifyCart adds or removes menu units
// POST|PATCH|DELETE /api/v2/pocha/cart/:email/:pochaID/
func (ctrl *CartController) ModifyCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	email := c.Param("email")
	pochaID, ok := uintParam(c, "pochaID")
	if !ok {
		return
	}

	var req ModifyCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "menuID is required and quantity must be between -50 and 50")
		return
	}

	action, err := ctrl.cartService.ModifyCart(email, pochaID, req.MenuID, req.Quantity)
	if err != nil {
		respondServiceError(c, err, "modify cart")
		return
	}

	log.Info("Cart modified", map[string]interface{}{
		"pocha_id": pochaID,
		"menu_id":  req.MenuID,
		"quantity": req.Quantity,
		"action":   action,
	})

	if action == service.CartItemsRemoved {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":  "items added to cart",
		"menuID":   req.MenuID,
		"quantity": req.Quantity,
	})
}

// GetCheckoutInfo returns the amount due and whether an ID check is needed
// GET /api/v2/pocha/cart/:email/:pochaID/checkout-info/
func (ctrl *CartController) GetCheckoutInfo(c *gin.Context) {
	pochaID, ok := uintParam(c, "pochaID")
	if !ok {
		return
	}

	info, err := ctrl.cartService.GetCheckoutInfo(c.Param("email"), pochaID)
	if err != nil {
		respondServiceError(c, err, "checkout info")
		return
	}
	c.JSON(http.StatusOK, info)
}
