package service

import (
	"sync/atomic"
	"testing"

	"github.com/gsaan/gsaan-backend/config"
	"github.com/gsaan/gsaan-backend/internal/app/repository"
	"github.com/gsaan/gsaan-backend/internal/db"
	"github.com/gsaan/gsaan-backend/internal/storage"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testStorageURL = "https://cdn.gsaan.test"

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
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

type countingNotifier struct {
	calls atomic.Int32
}

func (n *countingNotifier) Notify() {
	n.calls.Add(1)
}

type catalogFixture struct {
	db       *gorm.DB
	objects  *storage.MemoryStorage
	settings SettingsService
	products ProductService
}

func setupCatalog(t *testing.T) *catalogFixture {
	t.Helper()
	testDB := setupTestDB(t)
	objects := storage.NewMemoryStorage(testStorageURL)
	settings := NewSettingsService(repository.NewSettingsRepository(testDB), testShopConfig())
	products := NewProductService(repository.NewProductRepository(testDB), objects, settings)
	return &catalogFixture{
		db:       testDB,
		objects:  objects,
		settings: settings,
		products: products,
	}
}

func camphorInput() ProductInput {
	return ProductInput{
		Name:     "Pure Bhimseni Camphor",
		Category: "camphor",
		Images:   []string{testStorageURL + "/products/tmp/camphor.jpg"},
		InStock:  true,
		Variants: []VariantInput{
			{Name: "50g Pack", Price: 169, MRP: 199},
			{Name: "100g Pack", Price: 299, MRP: 349},
		},
	}
}
