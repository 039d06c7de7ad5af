package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/umichkisa/pocha-backend/config"
	"github.com/umichkisa/pocha-backend/internal/app/controller"
	apperrors "github.com/umichkisa/pocha-backend/internal/errors"
	"github.com/umichkisa/pocha-backend/internal/middleware"
	"github.com/umichkisa/pocha-backend/pkg/logger"
)

type Router struct {
	pochaController        *controller.PochaController
	cartController         *controller.CartController
	paymentController      *controller.PaymentController
	orderController        *controller.OrderController
	dashboardController    *controller.DashboardController
	notificationController *controller.NotificationController
	uploadController       *controller.UploadController
	socketController       *controller.SocketController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	pochaController *controller.PochaController,
	cartController *controller.CartController,
	paymentController *controller.PaymentController,
	orderController *controller.OrderController,
	dashboardController *controller.DashboardController,
	notificationController *controller.NotificationController,
	uploadController *controller.UploadController,
	socketController *controller.SocketController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		pochaController:        pochaController,
		cartController:         cartController,
		paymentController:      paymentController,
		orderController:        orderController,
		dashboardController:    dashboardController,
		notificationController: notificationController,
		uploadController:       uploadController,
		socketController:       socketController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Recovered from panic", nil, map[string]interface{}{
			"path":  c.Request.URL.Path,
			"panic": fmt.Sprint(recovered),
		})
		apperrors.InternalError(c, "")
		c.Abort()
	}))
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "KISA pocha API is running",
		})
	})

	auth := r.authMiddleware.Authenticate()
	admin := r.authMiddleware.RequireRole("admin")
	self := r.authMiddleware.RequireSelfOrRole("email", "admin")

	pocha := router.Group("/api/v2/pocha")
	{
		pocha.GET("/status-info/", r.pochaController.GetStatusInfo)
		pocha.GET("/menu/:pochaID/", r.pochaController.GetMenu)
		pocha.POST("/", auth, admin, r.pochaController.CreatePocha)
		pocha.PUT("/:pochaID/", auth, admin, r.pochaController.UpdatePocha)

		cart := pocha.Group("/cart/:email/:pochaID", auth, self)
		{
			cart.GET("/", r.cartController.GetCart)
			cart.POST("/", r.cartController.ModifyCart)
			cart.PATCH("/", r.cartController.ModifyCart)
			cart.DELETE("/", r.cartController.ModifyCart)
			cart.GET("/checkout-info/", r.cartController.GetCheckoutInfo)
		}

		payment := pocha.Group("/payment/:email/:pochaID", auth, self)
		{
			payment.GET("/check-stock/", r.paymentController.CheckStock)
			payment.PUT("/pay-result/", r.paymentController.PayResult)
		}

		pocha.GET("/order/:email/:pochaID/", auth, self, r.orderController.GetUserOrders)

		dashboard := pocha.Group("/dashboard", auth, admin)
		{
			dashboard.PUT("/change-stock/", r.dashboardController.ChangeStock)
			dashboard.GET("/:pochaID/", r.dashboardController.GetActiveOrders)
			dashboard.GET("/:pochaID/closed/", r.dashboardController.GetClosedOrders)
			dashboard.GET("/:pochaID/export/", r.dashboardController.ExportOrders)
			dashboard.PUT("/:orderItemID/change-status/", r.dashboardController.ChangeStatus)
		}

		pocha.POST("/notification/register-token/", auth, r.notificationController.RegisterToken)
		pocha.POST("/upload/presigned-url", auth, admin, r.uploadController.GeneratePresignedURL)
		pocha.GET("/socket", auth, r.socketController.Connect)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
