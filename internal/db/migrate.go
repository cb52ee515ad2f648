package db

import (
	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table the service owns.
func Models() []interface{} {
	return []interface{}{
		&model.Category{},
		&model.Product{},
		&model.ProductVariant{},
		&model.Order{},
		&model.OrderItem{},
		&model.StatusHistoryEntry{},
		&model.AdminUser{},
		&model.AdminProfile{},
		&model.SiteSettings{},
	}
}

// Migrate creates or updates tables and seeds the fixed category list.
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := SeedCategories(DB); err != nil {
		logger.Error("Failed to seed categories during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed loads the sample catalog into an empty products table.
func Seed() error {
	return SeedSampleProducts(DB)
}

var defaultCategories = []model.Category{
	{Slug: model.CategoryCamphor, Name: "Camphor", NameInTamil: "கற்பூரம்", DisplayOrder: 1, IsActive: true},
	{Slug: model.CategoryAgarbatti, Name: "Agarbatti", NameInTamil: "ஊதுபத்தி", DisplayOrder: 2, IsActive: true},
	{Slug: model.CategorySambraniDhoop, Name: "Sambrani & Dhoop", NameInTamil: "சாம்பிராணி", DisplayOrder: 3, IsActive: true},
	{Slug: model.CategoryDeepamOil, Name: "Deepam Oil", NameInTamil: "தீப எண்ணெய்", DisplayOrder: 4, IsActive: true},
	{Slug: model.CategoryPoojaPowders, Name: "Pooja Powders", NameInTamil: "பூஜை பொடிகள்", DisplayOrder: 5, IsActive: true},
	{Slug: model.CategoryAccessories, Name: "Accessories", NameInTamil: "பூஜை பொருட்கள்", DisplayOrder: 6, IsActive: true},
}

// SeedCategories inserts any missing category rows.
func SeedCategories(db *gorm.DB) error {
	inserted := 0
	for _, c := range defaultCategories {
		category := c
		result := db.Where(model.Category{Slug: category.Slug}).FirstOrCreate(&category)
		if result.Error != nil {
			logger.Error("Failed to seed category", result.Error, map[string]interface{}{
				"slug": category.Slug,
			})
			return result.Error
		}
		inserted += int(result.RowsAffected)
	}

	logger.Debug("Categories seeded", map[string]interface{}{
		"inserted": inserted,
	})
	return nil
}

// SeedSampleProducts is a no-op when any product exists.
func SeedSampleProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Products already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	products := sampleProducts()
	for i := range products {
		products[i].DerivePricing()
		if err := db.Create(&products[i]).Error; err != nil {
			logger.Error("Failed to create sample product", err, map[string]interface{}{
				"slug": products[i].Slug,
			})
			return err
		}
	}

	logger.Info("Sample products seeded", map[string]interface{}{
		"total_products": len(products),
	})
	return nil
}

func sampleProducts() []model.Product {
	return []model.Product{
		{
			Name:             "Pure Bhimseni Camphor",
			Slug:             "pure-bhimseni-camphor",
			NameInTamil:      "பீம்சேனி கற்பூரம்",
			Category:         model.CategoryCamphor,
			ShortDescription: "100% pure camphor for daily pooja",
			InStock:          true,
			IsFeatured:       true,
			IsBestSeller:     true,
			Tags:             model.StringList{"camphor", "pooja", "pure"},
			Variants: []model.ProductVariant{
				{Name: "50g Pack", Weight: "50g", SKU: "CAMP-50G", MRP: 199, Price: 169, InStock: true, SortOrder: 1},
				{Name: "100g Pack", Weight: "100g", SKU: "CAMP-100G", MRP: 349, Price: 299, InStock: true, SortOrder: 2},
				{Name: "250g Pack", Weight: "250g", SKU: "CAMP-250G", MRP: 749, Price: 649, InStock: true, SortOrder: 3},
			},
		},
		{
			Name:             "Premium Rose Agarbatti",
			Slug:             "premium-rose-agarbatti",
			Category:         model.CategoryAgarbatti,
			ShortDescription: "Long-lasting rose fragrance sticks",
			InStock:          true,
			IsBestSeller:     true,
			Tags:             model.StringList{"agarbatti", "rose"},
			Variants: []model.ProductVariant{
				{Name: "12 Sticks", SKU: "ROSE-12", MRP: 149, Price: 129, InStock: true, SortOrder: 1},
				{Name: "50 Sticks", SKU: "ROSE-50", MRP: 449, Price: 399, InStock: true, SortOrder: 2},
				{Name: "100 Sticks", SKU: "ROSE-100", MRP: 799, Price: 699, InStock: true, SortOrder: 3},
			},
		},
		{
			Name:             "Sambrani Cup",
			Slug:             "sambrani-cup",
			Category:         model.CategorySambraniDhoop,
			ShortDescription: "Traditional sambrani cups",
			InStock:          true,
			IsNewArrival:     true,
			Tags:             model.StringList{"sambrani", "dhoop"},
			Variants: []model.ProductVariant{
				{Name: "12 Cups", SKU: "SAM-12", MRP: 99, Price: 79, InStock: true, SortOrder: 1},
				{Name: "24 Cups", SKU: "SAM-24", MRP: 179, Price: 149, InStock: true, SortOrder: 2},
				{Name: "50 Cups", SKU: "SAM-50", MRP: 349, Price: 299, InStock: true, SortOrder: 3},
			},
		},
		{
			Name:             "Pure Deepam Oil",
			Slug:             "pure-deepam-oil",
			Category:         model.CategoryDeepamOil,
			ShortDescription: "Blend of five oils for lamps",
			InStock:          true,
			IsFeatured:       true,
			Tags:             model.StringList{"oil", "deepam"},
			Variants: []model.ProductVariant{
				{Name: "200ml", Weight: "200ml", SKU: "OIL-200", MRP: 249, Price: 199, InStock: true, SortOrder: 1},
				{Name: "500ml", Weight: "500ml", SKU: "OIL-500", MRP: 499, Price: 449, InStock: true, SortOrder: 2},
				{Name: "1 Litre", Weight: "1L", SKU: "OIL-1L", MRP: 899, Price: 799, InStock: true, SortOrder: 3},
			},
		},
	}
}
