package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsaan/gsaan-backend/config"
	"github.com/gsaan/gsaan-backend/internal/app/controller"
	"github.com/gsaan/gsaan-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	productController  *controller.ProductController
	cartController     *controller.CartController
	checkoutController *controller.CheckoutController
	orderController    *controller.OrderController
	uploadController   *controller.UploadController
	settingsController *controller.SettingsController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	checkoutController *controller.CheckoutController,
	orderController *controller.OrderController,
	uploadController *controller.UploadController,
	settingsController *controller.SettingsController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		productController:  productController,
		cartController:     cartController,
		checkoutController: checkoutController,
		orderController:    orderController,
		uploadController:   uploadController,
		settingsController: settingsController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": r.config.Shop.Name + " API is running",
		})
	})

	shop := r.config.Shop
	cartSession := middleware.CartSession(shop.SessionCookie, shop.CartTTL, r.config.Server.Environment == "production")

	v1 := router.Group("/api/v1")
	{
		v1.GET("/categories", r.productController.ListCategories)
		v1.GET("/settings", r.settingsController.GetSettings)

		products := v1.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:slug", r.productController.GetProduct)
			products.GET("/:slug/inquiry", r.productController.Inquiry)
		}

		cart := v1.Group("/cart", cartSession)
		{
			cart.GET("", r.cartController.GetCart)
			cart.DELETE("", r.cartController.ClearCart)
			cart.GET("/contains", r.cartController.Contains)
			cart.POST("/items", r.cartController.AddToCart)
			cart.PUT("/items", r.cartController.UpdateCartItem)
			cart.DELETE("/items", r.cartController.RemoveCartItem)
		}

		v1.POST("/checkout", cartSession, r.checkoutController.PlaceOrder)

		admin := v1.Group("/admin")
		{
			auth := admin.Group("/auth")
			{
				auth.POST("/login", r.authController.Login)
				auth.POST("/refresh", r.authController.Refresh)
				auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
				auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			}

			protected := admin.Group("", r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(middleware.AdminRoles...))
			{
				orders := protected.Group("/orders")
				{
					orders.GET("", r.orderController.ListOrders)
					orders.GET("/stats", r.orderController.GetStats)
					orders.GET("/export", r.orderController.ExportOrders)
					orders.GET("/live", r.orderController.LiveOrders)
					orders.GET("/:id", r.orderController.GetOrder)
					orders.PUT("/:id/status", r.orderController.UpdateOrderStatus)
				}

				products := protected.Group("/products")
				{
					products.GET("/:id", r.productController.GetProductByID)
					products.POST("", r.productController.CreateProduct)
					products.PUT("/:id", r.productController.UpdateProduct)
					products.DELETE("/:id", r.productController.DeleteProduct)
					products.PATCH("/:id/stock", r.productController.SetStock)
					products.PATCH("/:id/featured", r.productController.SetFeatured)
				}

				uploads := protected.Group("/uploads")
				{
					uploads.POST("/products/:id", r.uploadController.UploadProductImage)
					uploads.DELETE("", r.uploadController.DeleteImage)
					uploads.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
				}

				protected.PUT("/settings", r.settingsController.UpdateSettings)
			}
		}
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
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, "+middleware.CartSessionHeader+", "+middleware.RequestIDHeader)
		c.Writer.Header().Set("Access-Control-Expose-Headers", middleware.CartSessionHeader+", "+middleware.RequestIDHeader+", Content-Disposition")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
