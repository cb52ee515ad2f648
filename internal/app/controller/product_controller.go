package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/app/service"
	apperrors "github.com/gsaan/gsaan-backend/internal/errors"
	"github.com/gsaan/gsaan-backend/internal/middleware"
)

const maxProductPageSize = 100

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type ToggleRequest struct {
	Value *bool `json:"value" binding:"required"`
}

func queryInt64(c *gin.Context, key string) (int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func queryBool(c *gin.Context, key string) bool {
	b, _ := strconv.ParseBool(c.Query(key))
	return b
}

// parseListOptions reads the storefront filter query.
func parseListOptions(c *gin.Context) (service.ProductListOptions, map[string]string) {
	opts := service.ProductListOptions{
		Search:       c.Query("search"),
		InStockOnly:  queryBool(c, "in_stock"),
		FeaturedOnly: queryBool(c, "featured"),
		BestSellers:  queryBool(c, "best_sellers"),
		NewArrivals:  queryBool(c, "new_arrivals"),
		Sort:         service.ProductSort(c.DefaultQuery("sort", string(service.ProductSortNewest))),
	}
	fields := map[string]string{}

	if raw := c.Query("category"); raw != "" {
		category := model.ProductCategory(raw)
		if !category.Valid() {
			fields["category"] = "Unknown category"
		}
		opts.Category = &category
	}

	var ok bool
	if opts.MinPrice, ok = queryInt64(c, "min_price"); !ok {
		fields["min_price"] = "Must be a whole number of rupees"
	}
	if opts.MaxPrice, ok = queryInt64(c, "max_price"); !ok {
		fields["max_price"] = "Must be a whole number of rupees"
	}

	limit, ok := queryInt64(c, "limit")
	if !ok || limit > maxProductPageSize {
		fields["limit"] = "Must be between 0 and 100"
	}
	offset, ok := queryInt64(c, "offset")
	if !ok {
		fields["offset"] = "Must be zero or more"
	}
	opts.Limit, opts.Offset = int(limit), int(offset)

	switch opts.Sort {
	case service.ProductSortPriceAsc, service.ProductSortPriceDesc, service.ProductSortName,
		service.ProductSortNewest, service.ProductSortFeatured:
	default:
		fields["sort"] = "Unknown sort order"
	}

	if len(fields) == 0 {
		return opts, nil
	}
	return opts, fields
}

// ListProducts returns the catalog, filtered and sorted.
// GET /api/v1/products
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts, fields := parseListOptions(c)
	if fields != nil {
		log.Warn("Invalid product query", map[string]interface{}{
			"query": c.Request.URL.RawQuery,
		})
		apperrors.RespondWithValidationError(c, fields)
		return
	}

	products, err := ctrl.productService.ListProducts(opts)
	if err != nil {
		log.Error("Failed to list products", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one product by slug.
// GET /api/v1/products/:slug
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	slug := c.Param("slug")

	product, err := ctrl.productService.GetProductBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
			return
		}
		log.Error("Failed to fetch product", err, map[string]interface{}{
			"slug": slug,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get product")
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

// GetProductByID is the admin lookup, used by the edit form.
// GET /api/v1/admin/products/:id
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	product, err := ctrl.productService.GetProductByID(c.Param("id"))
	if err != nil {
		ctrl.respondProductError(c, err, "get product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// ListCategories returns the active catalog sections in display order.
// GET /api/v1/categories
func (ctrl *ProductController) ListCategories(c *gin.Context) {
	categories, err := ctrl.productService.ListCategories()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list categories", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}

// Inquiry returns the WhatsApp link for asking about a product.
// GET /api/v1/products/:slug/inquiry?variant=
func (ctrl *ProductController) Inquiry(c *gin.Context) {
	url, err := ctrl.productService.InquiryURL(c.Param("slug"), c.Query("variant"))
	if err != nil {
		ctrl.respondProductError(c, err, "product inquiry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"whatsapp_url": url})
}

// CreateProduct adds a product with its variants.
// POST /api/v1/admin/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product data")
		return
	}

	product, err := ctrl.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		ctrl.respondProductError(c, err, "create product")
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	c.JSON(http.StatusCreated, gin.H{
		"message": "Product created successfully",
		"product": product,
	})
}

// UpdateProduct replaces a product and its variants.
// PUT /api/v1/admin/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	id := c.Param("id")

	var req service.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid product request", map[string]interface{}{
			"product_id": id,
			"error":      err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid product data")
		return
	}

	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		ctrl.respondProductError(c, err, "update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product updated successfully",
		"product": product,
	})
}

// DeleteProduct removes a product and its images.
// DELETE /api/v1/admin/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if err := ctrl.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		ctrl.respondProductError(c, err, "delete product")
		return
	}

	middleware.GetLoggerFromContext(c).Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// SetStock toggles availability.
// PATCH /api/v1/admin/products/:id/stock
func (ctrl *ProductController) SetStock(c *gin.Context) {
	ctrl.toggle(c, "in_stock", ctrl.productService.SetStock)
}

// SetFeatured toggles the featured flag.
// PATCH /api/v1/admin/products/:id/featured
func (ctrl *ProductController) SetFeatured(c *gin.Context) {
	ctrl.toggle(c, "is_featured", ctrl.productService.SetFeatured)
}

func (ctrl *ProductController) toggle(c *gin.Context, field string, set func(string, bool) error) {
	id := c.Param("id")

	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.RespondWithValidationError(c, map[string]string{"value": "true or false is required"})
		return
	}

	if err := set(id, *req.Value); err != nil {
		ctrl.respondProductError(c, err, "update product")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":  id,
		field: *req.Value,
	})
}

func (ctrl *ProductController) respondProductError(c *gin.Context, err error, context string) {
	var fields service.FormErrors
	switch {
	case errors.As(err, &fields):
		apperrors.RespondWithValidationError(c, fields)
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrVariantNotFound):
		apperrors.NotFound(c, apperrors.ProductVariantNotFound, "Variant not found")
	case errors.Is(err, service.ErrOutOfStock):
		apperrors.Conflict(c, apperrors.ProductOutOfStock, "This item is currently out of stock")
	default:
		middleware.GetLoggerFromContext(c).Error("Product request failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}
