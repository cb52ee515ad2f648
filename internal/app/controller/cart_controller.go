package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsaan/gsaan-backend/internal/app/service"
	apperrors "github.com/gsaan/gsaan-backend/internal/errors"
	"github.com/gsaan/gsaan-backend/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,min=1"`
}

type UpdateCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required"`
}

// GetCart returns the session cart with its delivery quote.
// GET /api/v1/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	view, err := ctrl.cartService.GetCart(c.Request.Context(), middleware.GetCartSession(c))
	if err != nil {
		ctrl.respondCartError(c, err, "get cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": view})
}

// AddToCart adds a variant or raises its quantity.
// POST /api/v1/cart/items
func (ctrl *CartController) AddToCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add to cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id and variant_id are required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := ctrl.cartService.AddItem(c.Request.Context(), middleware.GetCartSession(c), req.ProductID, req.VariantID, req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, err, "add to cart")
		return
	}

	log.Info("Item added to cart", map[string]interface{}{
		"product_id": req.ProductID,
		"variant_id": req.VariantID,
		"quantity":   req.Quantity,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Added to cart",
		"cart":    view,
	})
}

// UpdateCartItem sets a line quantity. Zero or less removes the line.
// PUT /api/v1/cart/items
func (ctrl *CartController) UpdateCartItem(c *gin.Context) {
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.GetLoggerFromContext(c).Warn("Invalid cart update request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id, variant_id and quantity are required")
		return
	}

	view, err := ctrl.cartService.UpdateQuantity(c.Request.Context(), middleware.GetCartSession(c), req.ProductID, req.VariantID, *req.Quantity)
	if err != nil {
		ctrl.respondCartError(c, err, "update cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": view})
}

// RemoveCartItem drops one line.
// DELETE /api/v1/cart/items?product_id=&variant_id=
func (ctrl *CartController) RemoveCartItem(c *gin.Context) {
	productID, variantID := c.Query("product_id"), c.Query("variant_id")
	if productID == "" || variantID == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "product_id and variant_id are required")
		return
	}

	view, err := ctrl.cartService.RemoveItem(c.Request.Context(), middleware.GetCartSession(c), productID, variantID)
	if err != nil {
		ctrl.respondCartError(c, err, "remove from cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": view})
}

// ClearCart empties the session cart.
// DELETE /api/v1/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	if err := ctrl.cartService.ClearCart(c.Request.Context(), middleware.GetCartSession(c)); err != nil {
		ctrl.respondCartError(c, err, "clear cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// Contains reports whether a product is in the cart. Leaving variant_id out
// matches any variant of the product.
// GET /api/v1/cart/contains?product_id=&variant_id=
func (ctrl *CartController) Contains(c *gin.Context) {
	productID := c.Query("product_id")
	if productID == "" {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "product_id is required")
		return
	}

	inCart, quantity, err := ctrl.cartService.Contains(c.Request.Context(), middleware.GetCartSession(c), productID, c.Query("variant_id"))
	if err != nil {
		ctrl.respondCartError(c, err, "check cart")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"in_cart":  inCart,
		"quantity": quantity,
	})
}

func (ctrl *CartController) respondCartError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrCartSessionMissing):
		apperrors.BadRequest(c, apperrors.CartSessionMissing, "Cart session is missing")
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
	case errors.Is(err, service.ErrVariantNotFound):
		apperrors.NotFound(c, apperrors.ProductVariantNotFound, "Variant not found")
	case errors.Is(err, service.ErrOutOfStock):
		apperrors.Conflict(c, apperrors.ProductOutOfStock, "This item is currently out of stock")
	default:
		middleware.GetLoggerFromContext(c).Error("Cart request failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}
