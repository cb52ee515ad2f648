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

	"github.com/gsaan/gsaan-backend/config"
	"github.com/gsaan/gsaan-backend/internal/app/controller"
	"github.com/gsaan/gsaan-backend/internal/app/repository"
	"github.com/gsaan/gsaan-backend/internal/app/service"
	"github.com/gsaan/gsaan-backend/internal/cart"
	"github.com/gsaan/gsaan-backend/internal/checkout"
	"github.com/gsaan/gsaan-backend/internal/db"
	"github.com/gsaan/gsaan-backend/internal/middleware"
	"github.com/gsaan/gsaan-backend/internal/orderfeed"
	"github.com/gsaan/gsaan-backend/internal/router"
	"github.com/gsaan/gsaan-backend/internal/scheduler"
	"github.com/gsaan/gsaan-backend/internal/storage"
	ws "github.com/gsaan/gsaan-backend/internal/websocket"
	"github.com/gsaan/gsaan-backend/pkg/logger"
	"github.com/gsaan/gsaan-backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: logFormat == "console",
	})

	loc := cfg.Shop.Location()
	logger.Info("Starting GSAAN Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
		"timezone":    loc.String(),
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

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

	// Carts fall back to process memory when Redis is off or unreachable.
	var cartStore cart.Store = cart.NewMemoryStore()
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, carts will not survive restarts", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redis.Close()
			cartStore = cart.NewRedisStore(redis.GetClient(), cfg.Shop.CartKeyPrefix, cfg.Shop.CartTTL)
		}
	}

	var objects storage.ObjectStore
	if cfg.S3.AccessKeyID != "" || cfg.Server.Environment == "production" {
		objects = storage.NewS3Storage(cfg.S3.Region, cfg.S3.Bucket, cfg.S3.AccessKeyID, cfg.S3.SecretAccessKey, cfg.S3.BaseURL)
	} else {
		logger.Warn("No S3 credentials configured, uploads are kept in memory")
		objects = storage.NewMemoryStorage(fmt.Sprintf("http://localhost:%s/objects", cfg.Server.Port))
	}

	productRepo := repository.NewProductRepository(db.GetDB())
	orderRepo := repository.NewOrderRepository(db.GetDB())
	settingsRepo := repository.NewSettingsRepository(db.GetDB())
	adminUserRepo := repository.NewAdminUserRepository(db.GetDB())
	adminProfileRepo := repository.NewAdminProfileRepository(db.GetDB())

	feed := orderfeed.New(orderRepo)

	settingsService := service.NewSettingsService(settingsRepo, cfg.Shop)
	productService := service.NewProductService(productRepo, objects, settingsService)
	cartService := service.NewCartService(cartStore, productService, settingsService, cfg.Shop.MaxQuantity)
	orderService := service.NewOrderService(orderRepo, feed, loc)
	checkoutService := service.NewCheckoutService(
		cartService,
		orderRepo,
		settingsService,
		checkout.NewNumberGenerator(cfg.Shop.OrderPrefix, loc),
		feed,
		loc,
	)
	authService := service.NewAuthService(
		adminUserRepo,
		adminProfileRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
		service.SignInLimits{
			MaxFailures: cfg.Shop.SignInMaxFailures,
			Window:      cfg.Shop.SignInFailureWindow,
		},
	)

	hub := ws.NewHub(feed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)
	go hub.Run(ctx)

	var reports *scheduler.OrderReportScheduler
	if cfg.Scheduler.Enabled {
		reports = scheduler.NewOrderReportScheduler(orderService, objects, loc, cfg.Scheduler.OrderReportSpec)
		if err := reports.Start(); err != nil {
			logger.Error("Failed to start order report scheduler", err)
			reports = nil
		}
	}

	r := router.NewRouter(
		controller.NewAuthController(authService),
		controller.NewProductController(productService),
		controller.NewCartController(cartService),
		controller.NewCheckoutController(checkoutService),
		controller.NewOrderController(orderService, hub, ws.NewUpgrader(cfg.CORS.AllowedOrigins), loc),
		controller.NewUploadController(objects),
		controller.NewSettingsController(settingsService),
		middleware.NewAuthMiddleware(cfg.JWT.Secret),
		cfg,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	if reports != nil {
		reports.Stop()
	}
	cancel()

	logger.Info("Server stopped successfully")
}
