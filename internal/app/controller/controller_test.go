package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gsaan/gsaan-backend/config"
	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/app/repository"
	"github.com/gsaan/gsaan-backend/internal/app/service"
	"github.com/gsaan/gsaan-backend/internal/cart"
	"github.com/gsaan/gsaan-backend/internal/checkout"
	"github.com/gsaan/gsaan-backend/internal/db"
	"github.com/gsaan/gsaan-backend/internal/middleware"
	"github.com/gsaan/gsaan-backend/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testStorageURL = "https://cdn.gsaan.test"
	testJWTSecret  = "controller-test-secret"
	testSession    = "session-0000-0001"
	testAdminEmail = "owner@gsaan.in"
)

type countingNotifier struct {
	calls atomic.Int32
}

func (n *countingNotifier) Notify() {
	n.calls.Add(1)
}

type testEnv struct {
	db       *gorm.DB
	objects  *storage.MemoryStorage
	notifier *countingNotifier

	settings service.SettingsService
	products service.ProductService
	carts    service.CartService
	orders   service.OrderService
	checkout service.CheckoutService
	auth     service.AuthService

	router *gin.Engine
}

func testShopConfig() config.ShopConfig {
	return config.ShopConfig{
		Name:                  "GSAAN Products",
		WhatsAppNumber:        "918300051198",
		OrderPrefix:           "GSAAN",
		Timezone:              "UTC",
		FreeDeliveryThreshold: 499,
		DeliveryCharge:        49,
		MaxQuantity:           10,
	}
}

// setupTestEnv wires the services against an in-memory database. The router
// carries the request logger and cart session middleware; admin routes get
// an injected identity instead of a token.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	shop := testShopConfig()
	objects := storage.NewMemoryStorage(testStorageURL)
	notifier := &countingNotifier{}

	orderRepo := repository.NewOrderRepository(testDB)
	settings := service.NewSettingsService(repository.NewSettingsRepository(testDB), shop)
	products := service.NewProductService(repository.NewProductRepository(testDB), objects, settings)
	carts := service.NewCartService(cart.NewMemoryStore(), products, settings, shop.MaxQuantity)

	numbers := checkout.NewNumberGenerator(shop.OrderPrefix, time.UTC)
	numbers.Now = func() time.Time { return time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC) }

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())

	return &testEnv{
		db:       testDB,
		objects:  objects,
		notifier: notifier,
		settings: settings,
		products: products,
		carts:    carts,
		orders:   service.NewOrderService(orderRepo, notifier, time.UTC),
		checkout: service.NewCheckoutService(carts, orderRepo, settings, numbers, notifier, time.UTC),
		auth: service.NewAuthService(
			repository.NewAdminUserRepository(testDB),
			repository.NewAdminProfileRepository(testDB),
			testJWTSecret, 15*time.Minute, 24*time.Hour,
			service.SignInLimits{},
		),
		router: router,
	}
}

// asAdmin stands in for the JWT middleware.
func asAdmin(c *gin.Context) {
	c.Set(middleware.UserIDKey, uint(1))
	c.Set(middleware.UserEmailKey, testAdminEmail)
	c.Set(middleware.UserRoleKey, model.RoleAdmin)
	c.Next()
}

func cartSession() gin.HandlerFunc {
	return middleware.CartSession("gsaan_cart", time.Hour, false)
}

func (e *testEnv) createCamphor(t *testing.T) *model.Product {
	t.Helper()
	product, err := e.products.CreateProduct(context.Background(), camphorInput())
	require.NoError(t, err)
	return product
}

func camphorInput() service.ProductInput {
	return service.ProductInput{
		Name:     "Pure Bhimseni Camphor",
		Category: model.CategoryCamphor,
		Images:   []string{testStorageURL + "/products/tmp/camphor.jpg"},
		InStock:  true,
		Variants: []service.VariantInput{
			{Name: "50g Pack", Price: 169, MRP: 199},
			{Name: "100g Pack", Price: 299, MRP: 349},
		},
	}
}

func performRequest(router http.Handler, method, path string, body interface{}, session string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(middleware.CartSessionHeader, session)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
