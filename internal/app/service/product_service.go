package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/app/repository"
	"github.com/gsaan/gsaan-backend/internal/storage"
	"github.com/gsaan/gsaan-backend/internal/whatsapp"
	"github.com/gsaan/gsaan-backend/pkg/logger"
	"github.com/gsaan/gsaan-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrVariantNotFound = errors.New("product variant not found")
	ErrOutOfStock      = errors.New("product is out of stock")
)

const maxSlugAttempts = 50

type ProductSort string

const (
	ProductSortPriceAsc  ProductSort = "price-asc"
	ProductSortPriceDesc ProductSort = "price-desc"
	ProductSortName      ProductSort = "name"
	ProductSortNewest    ProductSort = "newest"
	ProductSortFeatured  ProductSort = "featured"
)

type ProductListOptions struct {
	Category     *model.ProductCategory
	Search       string
	InStockOnly  bool
	FeaturedOnly bool
	BestSellers  bool
	NewArrivals  bool
	MinPrice     int64
	MaxPrice     int64
	Sort         ProductSort
	Limit        int
	Offset       int
}

type VariantInput struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Weight   string `json:"weight,omitempty"`
	PackSize int    `json:"pack_size,omitempty"`
	Price    int64  `json:"price"`
	MRP      int64  `json:"mrp"`
	SKU      string `json:"sku,omitempty"`
	InStock  *bool  `json:"in_stock,omitempty"`
}

// ProductInput is the admin product form.
type ProductInput struct {
	Name             string                `json:"name"`
	NameInTamil      string                `json:"name_in_tamil"`
	Category         model.ProductCategory `json:"category"`
	Description      string                `json:"description"`
	ShortDescription string                `json:"short_description"`
	Images           []string              `json:"images"`
	Tags             []string              `json:"tags"`
	Variants         []VariantInput        `json:"variants"`
	InStock          bool                  `json:"in_stock"`
	IsFeatured       bool                  `json:"is_featured"`
	IsBestSeller     bool                  `json:"is_best_seller"`
	IsNewArrival     bool                  `json:"is_new_arrival"`
}

// Validate returns field-keyed errors, or nil.
func (in ProductInput) Validate() FormErrors {
	errs := FormErrors{}
	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "Product name is required"
	}
	if !in.Category.Valid() {
		errs["category"] = "Select a valid category"
	}
	if len(in.Images) == 0 {
		errs["images"] = "At least one image is required"
	}
	if len(in.Variants) == 0 {
		errs["variants"] = "At least one variant is required"
	}
	for i, v := range in.Variants {
		if strings.TrimSpace(v.Name) == "" {
			errs[fmt.Sprintf("variants.%d.name", i)] = "Variant name is required"
		}
		if v.Price <= 0 {
			errs[fmt.Sprintf("variants.%d.price", i)] = "Price must be greater than 0"
		}
		if v.MRP < 0 {
			errs[fmt.Sprintf("variants.%d.mrp", i)] = "MRP cannot be negative"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

type ProductService interface {
	ListProducts(opts ProductListOptions) ([]model.Product, error)
	GetProductBySlug(slug string) (*model.Product, error)
	GetProductByID(id string) (*model.Product, error)
	ListCategories() ([]model.Category, error)
	CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, in ProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	SetStock(id string, inStock bool) error
	SetFeatured(id string, featured bool) error
	FindVariant(productID, variantID string) (*model.Product, *model.ProductVariant, error)
	InquiryURL(slug, variantID string) (string, error)
}

type productService struct {
	productRepo repository.ProductRepository
	objects     storage.ObjectStore
	settings    SettingsService
}

func NewProductService(productRepo repository.ProductRepository, objects storage.ObjectStore, settings SettingsService) ProductService {
	return &productService{
		productRepo: productRepo,
		objects:     objects,
		settings:    settings,
	}
}

func (s *productService) ListProducts(opts ProductListOptions) ([]model.Product, error) {
	logger.Debug("Listing products", map[string]interface{}{
		"category": opts.Category,
		"search":   opts.Search,
		"sort":     opts.Sort,
		"limit":    opts.Limit,
		"offset":   opts.Offset,
	})

	filter := repository.ProductFilter{
		Category:     opts.Category,
		Search:       opts.Search,
		InStockOnly:  opts.InStockOnly,
		FeaturedOnly: opts.FeaturedOnly,
		BestSellers:  opts.BestSellers,
		NewArrivals:  opts.NewArrivals,
		MinPrice:     opts.MinPrice,
		MaxPrice:     opts.MaxPrice,
		Limit:        opts.Limit,
		Offset:       opts.Offset,
	}

	switch opts.Sort {
	case ProductSortPriceAsc:
		filter.SortBy = repository.ProductSortPrice
		filter.SortAscending = true
	case ProductSortPriceDesc:
		filter.SortBy = repository.ProductSortPrice
	case ProductSortName:
		filter.SortBy = repository.ProductSortName
		filter.SortAscending = true
	case ProductSortFeatured:
		filter.SortBy = repository.ProductSortFeatured
	case ProductSortNewest:
		fallthrough
	default:
		filter.SortBy = repository.ProductSortCreatedAt
	}

	products, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}
	return products, nil
}

func (s *productService) GetProductBySlug(slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductByID(id string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) ListCategories() ([]model.Category, error) {
	return s.productRepo.ListCategories()
}

// uniqueSlug slugifies name and appends -2, -3, ... until no other product
// holds it.
func (s *productService) uniqueSlug(name, excludeID string) (string, error) {
	base := util.Slugify(name)
	if base == "" {
		base = "product"
	}

	slug := base
	for n := 2; n <= maxSlugAttempts+1; n++ {
		taken, err := s.productRepo.SlugExists(slug, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	return "", fmt.Errorf("no free slug for %q", name)
}

func buildVariants(productID string, inputs []VariantInput) []model.ProductVariant {
	variants := make([]model.ProductVariant, 0, len(inputs))
	for i, v := range inputs {
		inStock := true
		if v.InStock != nil {
			inStock = *v.InStock
		}
		mrp := v.MRP
		if mrp == 0 {
			mrp = v.Price
		}
		variants = append(variants, model.ProductVariant{
			ID:        v.ID,
			ProductID: productID,
			Name:      strings.TrimSpace(v.Name),
			Weight:    v.Weight,
			PackSize:  v.PackSize,
			Price:     v.Price,
			MRP:       mrp,
			SKU:       v.SKU,
			InStock:   inStock,
			SortOrder: i,
		})
	}
	return variants
}

func (in ProductInput) apply(p *model.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.NameInTamil = strings.TrimSpace(in.NameInTamil)
	p.Category = in.Category
	p.Description = in.Description
	p.ShortDescription = in.ShortDescription
	p.Images = model.StringList(in.Images)
	p.Tags = model.StringList(in.Tags)
	if p.Tags == nil {
		p.Tags = model.StringList{}
	}
	p.InStock = in.InStock
	p.IsFeatured = in.IsFeatured
	p.IsBestSeller = in.IsBestSeller
	p.IsNewArrival = in.IsNewArrival
	p.Variants = buildVariants(p.ID, in.Variants)
	p.DerivePricing()
}

func (s *productService) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	if errs := in.Validate(); errs != nil {
		logger.Warn("Product create rejected", map[string]interface{}{
			"fields": errs.Error(),
		})
		return nil, errs
	}

	slug, err := s.uniqueSlug(in.Name, "")
	if err != nil {
		logger.Error("Failed to generate product slug", err, map[string]interface{}{
			"name": in.Name,
		})
		return nil, err
	}

	product := &model.Product{Slug: slug}
	in.apply(product)

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
		"variants":   len(product.Variants),
	})
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*model.Product, error) {
	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	if errs := in.Validate(); errs != nil {
		logger.Warn("Product update rejected", map[string]interface{}{
			"product_id": id,
			"fields":     errs.Error(),
		})
		return nil, errs
	}

	if strings.TrimSpace(in.Name) != product.Name {
		slug, err := s.uniqueSlug(in.Name, product.ID)
		if err != nil {
			return nil, err
		}
		product.Slug = slug
	}

	previous := product.Images
	in.apply(product)

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}

	kept := make(map[string]bool, len(product.Images))
	for _, url := range product.Images {
		kept[url] = true
	}
	for _, url := range previous {
		if !kept[url] {
			s.objects.DeleteByURL(ctx, url)
		}
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return product, nil
}

// DeleteProduct removes the record, then its image folder. A failed image
// cleanup is logged and does not fail the delete.
func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	removed, err := s.objects.DeletePrefix(ctx, storage.ProductPrefix(id))
	if err != nil {
		logger.Warn("Failed to delete product images", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id":     id,
		"images_removed": removed,
	})
	return nil
}

func (s *productService) setFlags(id string, flags repository.ProductFlags) error {
	if err := s.productRepo.UpdateFlags(id, flags); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return nil
}

func (s *productService) SetStock(id string, inStock bool) error {
	if err := s.setFlags(id, repository.ProductFlags{InStock: &inStock}); err != nil {
		return err
	}
	logger.Info("Product stock toggled", map[string]interface{}{
		"product_id": id,
		"in_stock":   inStock,
	})
	return nil
}

func (s *productService) SetFeatured(id string, featured bool) error {
	if err := s.setFlags(id, repository.ProductFlags{IsFeatured: &featured}); err != nil {
		return err
	}
	logger.Info("Product featured toggled", map[string]interface{}{
		"product_id":  id,
		"is_featured": featured,
	})
	return nil
}

// FindVariant loads a product and one of its variants, failing when either
// is missing or out of stock.
func (s *productService) FindVariant(productID, variantID string) (*model.Product, *model.ProductVariant, error) {
	product, err := s.GetProductByID(productID)
	if err != nil {
		return nil, nil, err
	}
	variant, ok := product.FindVariant(variantID)
	if !ok {
		return nil, nil, ErrVariantNotFound
	}
	if !product.InStock || !variant.InStock {
		return product, variant, ErrOutOfStock
	}
	return product, variant, nil
}

// InquiryURL is the WhatsApp deep link a shopper uses to ask about a product.
// An empty variantID picks the first variant.
func (s *productService) InquiryURL(slug, variantID string) (string, error) {
	product, err := s.GetProductBySlug(slug)
	if err != nil {
		return "", err
	}

	variantName := ""
	if variantID != "" {
		variant, ok := product.FindVariant(variantID)
		if !ok {
			return "", ErrVariantNotFound
		}
		variantName = variant.Name
	} else if len(product.Variants) > 0 {
		variantName = product.Variants[0].Name
	}

	message := whatsapp.BuildInquiryMessage(product.Name, variantName)
	return whatsapp.NewLink(s.settings.WhatsAppNumber()).URL(message), nil
}
