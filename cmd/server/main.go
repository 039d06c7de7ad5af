package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/umichkisa/pocha-backend/config"
	"github.com/umichkisa/pocha-backend/internal/app/controller"
	"github.com/umichkisa/pocha-backend/internal/app/repository"
	"github.com/umichkisa/pocha-backend/internal/app/service"
	"github.com/umichkisa/pocha-backend/internal/db"
	"github.com/umichkisa/pocha-backend/internal/middleware"
	"github.com/umichkisa/pocha-backend/internal/push"
	"github.com/umichkisa/pocha-backend/internal/realtime"
	"github.com/umichkisa/pocha-backend/internal/router"
	"github.com/umichkisa/pocha-backend/internal/scheduler"
	"github.com/umichkisa/pocha-backend/internal/storage"
	"github.com/umichkisa/pocha-backend/internal/websocket"
	"github.com/umichkisa/pocha-backend/pkg/logger"
	redisclient "github.com/umichkisa/pocha-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Server.Environment == "development",
		Service:     "pocha-backend",
	})

	logger.Info("Starting KISA Pocha Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   cfg.Log.Level,
		"db_driver":   cfg.Database.Driver,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if cfg.Server.Environment == "development" {
		if err := db.Seed(); err != nil {
			logger.Warn("Failed to seed database", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	database := db.GetDB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database)
	pochaRepo := repository.NewPochaRepository(database)
	menuRepo := repository.NewMenuRepository(database)
	orderRepo := repository.NewOrderRepository(database)
	orderItemRepo := repository.NewOrderItemRepository(database)
	endpointRepo := repository.NewPushEndpointRepository(database)

	// Real-time channel
	hub := websocket.NewHub()
	go hub.Run(ctx.Done())

	var emitter service.EventEmitter = hub
	if cfg.Realtime.RedisFanout {
		rdb, err := redisclient.Init(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to initialize Redis for realtime fan-out", err)
		}
		defer redisclient.Close()

		emitter = realtime.NewRedisEmitter(rdb, cfg.Realtime.Channel)
		relay := realtime.NewRelay(rdb, cfg.Realtime.Channel, hub)
		go func() {
			if err := relay.Run(ctx); err != nil {
				logger.Error("Realtime relay stopped", err)
			}
		}()
	}

	// Push gateway
	var gateway push.Gateway = push.LogGateway{}
	if cfg.Push.Enabled {
		snsGateway, err := push.NewSNSGateway(ctx, cfg.Push.Region, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.Push.PlatformApplicationARN)
		if err != nil {
			logger.Fatal("Failed to initialize SNS gateway", err)
		}
		gateway = snsGateway
	} else {
		logger.Warn("Push notifications disabled, logging messages instead")
	}

	imageStorage := storage.NewS3Storage(ctx, cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.S3.BaseURL)

	// Initialize services
	notificationService := service.NewNotificationService(userRepo, endpointRepo, gateway)
	pochaService := service.NewPochaService(pochaRepo, menuRepo, imageStorage, database)
	cartService := service.NewCartService(userRepo, pochaRepo, menuRepo, orderRepo, orderItemRepo, database)
	paymentService := service.NewPaymentService(userRepo, menuRepo, orderRepo, emitter, database)
	orderStatusService := service.NewOrderStatusService(orderItemRepo, notificationService, emitter)
	dashboardService := service.NewDashboardService(userRepo, menuRepo, orderItemRepo)
	exportService := service.NewExportService(pochaRepo, menuRepo, orderItemRepo, userRepo)

	// Reservation sweeper
	if cfg.Scheduler.SweeperEnabled {
		sweeper := scheduler.NewReservationSweeper(paymentService, cfg.Scheduler.ReservationTTL, cfg.Scheduler.SweepSchedule)
		if err := sweeper.Start(); err != nil {
			logger.Fatal("Failed to start reservation sweeper", err)
		}
		defer sweeper.Stop()
	}

	// Initialize controllers
	pochaController := controller.NewPochaController(pochaService)
	cartController := controller.NewCartController(cartService)
	paymentController := controller.NewPaymentController(paymentService)
	orderController := controller.NewOrderController(dashboardService)
	dashboardController := controller.NewDashboardController(dashboardService, orderStatusService, exportService)
	notificationController := controller.NewNotificationController(notificationService)
	uploadController := controller.NewUploadController(imageStorage)
	socketController := controller.NewSocketController(hub, cfg.CORS.AllowedOrigins)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		pochaController,
		cartController,
		paymentController,
		orderController,
		dashboardController,
		notificationController,
		uploadController,
		socketController,
		authMiddleware,
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
