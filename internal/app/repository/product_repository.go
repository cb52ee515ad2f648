package repository

import (
	"strings"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortPrice     ProductSort = "price"
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortName      ProductSort = "name"
	ProductSortFeatured  ProductSort = "featured"
)

type ProductFilter struct {
	Category      *model.ProductCategory
	Search        string
	InStockOnly   bool
	FeaturedOnly  bool
	BestSellers   bool
	NewArrivals   bool
	MinPrice      int64
	MaxPrice      int64
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

// ProductFlags toggles storefront flags; nil fields are left unchanged.
type ProductFlags struct {
	InStock      *bool
	IsFeatured   *bool
	IsBestSeller *bool
	IsNewArrival *bool
}

func (f ProductFlags) updates() map[string]interface{} {
	out := map[string]interface{}{}
	if f.InStock != nil {
		out["in_stock"] = *f.InStock
	}
	if f.IsFeatured != nil {
		out["is_featured"] = *f.IsFeatured
	}
	if f.IsBestSeller != nil {
		out["is_best_seller"] = *f.IsBestSeller
	}
	if f.IsNewArrival != nil {
		out["is_new_arrival"] = *f.IsNewArrival
	}
	return out
}

type ProductRepository interface {
	Create(product *model.Product) error
	BulkCreate(products []model.Product, batchSize int) (int, error)
	FindWithFilter(filter ProductFilter) ([]model.Product, error)
	FindByID(id string) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	SlugExists(slug, excludeID string) (bool, error)
	Update(product *model.Product) error
	UpdateFlags(id string, flags ProductFlags) error
	Delete(id string) error
	ListCategories() ([]model.Category, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.Product{}).Preload("Variants", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	})
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name":     product.Name,
		"slug":     product.Slug,
		"variants": len(product.Variants),
	})

	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
			"slug": product.Slug,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return nil
}

// BulkCreate inserts products with their variants in batches and returns the
// number of products written.
func (r *productRepository) BulkCreate(products []model.Product, batchSize int) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	logger.Debug("Bulk creating products in database", map[string]interface{}{
		"count":      len(products),
		"batch_size": batchSize,
	})

	result := r.db.CreateInBatches(products, batchSize)
	if result.Error != nil {
		logger.Error("Failed to bulk create products in database", result.Error, map[string]interface{}{
			"count": len(products),
		})
		return 0, result.Error
	}

	logger.Info("Products bulk created in database", map[string]interface{}{
		"count": len(products),
	})
	return len(products), nil
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category": filter.Category,
		"search":   filter.Search,
		"sort_by":  filter.SortBy,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})

	query := r.baseQuery()

	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.InStockOnly {
		query = query.Where("in_stock = ?", true)
	}
	if filter.FeaturedOnly {
		query = query.Where("is_featured = ?", true)
	}
	if filter.BestSellers {
		query = query.Where("is_best_seller = ?", true)
	}
	if filter.NewArrivals {
		query = query.Where("is_new_arrival = ?", true)
	}
	if filter.MinPrice > 0 {
		query = query.Where("selling_price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query = query.Where("selling_price <= ?", filter.MaxPrice)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(name_in_tamil) LIKE ? OR LOWER(short_description) LIKE ?", like, like, like)
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	switch filter.SortBy {
	case ProductSortPrice:
		query = query.Order("selling_price " + direction)
	case ProductSortName:
		query = query.Order("name " + direction)
	case ProductSortFeatured:
		query = query.Order("is_featured DESC").Order("is_best_seller DESC").Order("created_at DESC")
	case ProductSortCreatedAt:
		fallthrough
	default:
		query = query.Order("created_at " + direction)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
	})
	return products, nil
}

func (r *productRepository) FindByID(id string) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.baseQuery().Where("id = ?", id).First(&product).Error; err != nil {
		logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	logger.Debug("Product found by ID in database", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return &product, nil
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	logger.Debug("Finding product by slug in database", map[string]interface{}{
		"slug": slug,
	})

	var product model.Product
	if err := r.baseQuery().Where("slug = ?", slug).First(&product).Error; err != nil {
		logger.Error("Failed to find product by slug in database", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}

	return &product, nil
}

func (r *productRepository) SlugExists(slug, excludeID string) (bool, error) {
	query := r.db.Model(&model.Product{}).Where("slug = ?", slug)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		logger.Error("Failed to check product slug", err, map[string]interface{}{
			"slug": slug,
		})
		return false, err
	}
	return count > 0, nil
}

// Update saves product columns and replaces its variant list. Variants keep
// their IDs when the caller supplies them so existing cart lines stay valid.
func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
		"variants":   len(product.Variants),
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Variants", "CreatedAt").Save(product).Error; err != nil {
			return err
		}

		keep := make([]string, 0, len(product.Variants))
		for i := range product.Variants {
			product.Variants[i].ProductID = product.ID
			if product.Variants[i].ID != "" {
				keep = append(keep, product.Variants[i].ID)
			}
		}

		stale := tx.Where("product_id = ?", product.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&model.ProductVariant{}).Error; err != nil {
			return err
		}

		for i := range product.Variants {
			v := &product.Variants[i]
			var err error
			if v.ID == "" {
				err = tx.Create(v).Error
			} else {
				err = tx.Omit("CreatedAt").Save(v).Error
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}

	logger.Debug("Product updated in database", map[string]interface{}{
		"product_id": product.ID,
	})
	return nil
}

func (r *productRepository) UpdateFlags(id string, flags ProductFlags) error {
	updates := flags.updates()
	if len(updates) == 0 {
		return nil
	}

	logger.Debug("Updating product flags in database", map[string]interface{}{
		"product_id": id,
		"updates":    updates,
	})

	result := r.db.Model(&model.Product{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		logger.Error("Failed to update product flags in database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) Delete(id string) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&model.ProductVariant{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Product{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	logger.Debug("Product deleted from database", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

func (r *productRepository) ListCategories() ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.Where("is_active = ?", true).Order("display_order ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to list categories", err)
		return nil, err
	}
	return categories, nil
}
