package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
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
	"github.com/gsaan/gsaan-backend/internal/storage"
	ws "github.com/gsaan/gsaan-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: "test", Environment: "test"},
		JWT:    config.JWTConfig{Secret: "router-test-secret", AccessTokenExpiry: time.Hour, RefreshTokenExpiry: time.Hour},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"https://gsaan.in"}},
		Shop: config.ShopConfig{
			Name:                  "GSAAN Products",
			WhatsAppNumber:        "918300051198",
			OrderPrefix:           "GSAAN",
			FreeDeliveryThreshold: 499,
			DeliveryCharge:        49,
			MaxQuantity:           10,
			CartTTL:               time.Hour,
			SessionCookie:         "gsaan_cart",
		},
	}

	orderRepo := repository.NewOrderRepository(testDB)
	feed := orderfeed.New(orderRepo)
	objects := storage.NewMemoryStorage("https://cdn.gsaan.test")

	settings := service.NewSettingsService(repository.NewSettingsRepository(testDB), cfg.Shop)
	products := service.NewProductService(repository.NewProductRepository(testDB), objects, settings)
	carts := service.NewCartService(cart.NewMemoryStore(), products, settings, cfg.Shop.MaxQuantity)
	orders := service.NewOrderService(orderRepo, feed, time.UTC)
	checkouts := service.NewCheckoutService(carts, orderRepo, settings, checkout.NewNumberGenerator("GSAAN", time.UTC), feed, time.UTC)
	auth := service.NewAuthService(
		repository.NewAdminUserRepository(testDB),
		repository.NewAdminProfileRepository(testDB),
		cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry,
		service.SignInLimits{},
	)

	r := NewRouter(
		controller.NewAuthController(auth),
		controller.NewProductController(products),
		controller.NewCartController(carts),
		controller.NewCheckoutController(checkouts),
		controller.NewOrderController(orders, ws.NewHub(feed), ws.NewUpgrader(cfg.CORS.AllowedOrigins), time.UTC),
		controller.NewUploadController(objects),
		controller.NewSettingsController(settings),
		middleware.NewAuthMiddleware(cfg.JWT.Secret),
		cfg,
	)
	return r.Setup()
}

func TestRouter_Health(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest("OPTIONS", "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://gsaan.in")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://gsaan.in", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), middleware.CartSessionHeader)

	req = httptest.NewRequest("OPTIONS", "/api/v1/cart", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_PublicRoutes(t *testing.T) {
	router := setupRouter(t)

	for _, path := range []string{"/api/v1/products", "/api/v1/categories", "/api/v1/settings", "/api/v1/cart"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestRouter_CartIssuesSession(t *testing.T) {
	router := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/cart", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.CartSessionHeader))
}

func TestRouter_AdminRoutesRequireAuth(t *testing.T) {
	router := setupRouter(t)

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/admin/orders"},
		{"GET", "/api/v1/admin/orders/stats"},
		{"PUT", "/api/v1/admin/orders/1/status"},
		{"POST", "/api/v1/admin/products"},
		{"DELETE", "/api/v1/admin/uploads"},
		{"PUT", "/api/v1/admin/settings"},
		{"GET", "/api/v1/admin/auth/me"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
