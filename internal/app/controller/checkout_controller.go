package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gsaan/gsaan-backend/internal/app/service"
	"github.com/gsaan/gsaan-backend/internal/checkout"
	apperrors "github.com/gsaan/gsaan-backend/internal/errors"
	"github.com/gsaan/gsaan-backend/internal/middleware"
)

type CheckoutController struct {
	checkoutService service.CheckoutService
}

func NewCheckoutController(checkoutService service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
	}
}

// PlaceOrder turns the session cart into a pending order and returns the
// WhatsApp link that sends it to the shop.
// POST /api/v1/checkout
func (ctrl *CheckoutController) PlaceOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var form checkout.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		log.Warn("Invalid checkout request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid checkout data")
		return
	}

	result, err := ctrl.checkoutService.PlaceOrder(c.Request.Context(), middleware.GetCartSession(c), form)
	if err != nil {
		var fields checkout.FieldErrors
		switch {
		case errors.As(err, &fields):
			apperrors.RespondWithValidationError(c, fields)
		case errors.Is(err, checkout.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Your cart is empty")
		case errors.Is(err, service.ErrCartSessionMissing):
			apperrors.BadRequest(c, apperrors.CartSessionMissing, "Cart session is missing")
		case errors.Is(err, checkout.ErrNumberExhausted):
			log.Error("Order number allocation failed", err)
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.OrderNumberUnavailable, "Could not place the order. Please try again")
		default:
			log.Error("Checkout failed", err)
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create order")
		}
		return
	}

	log.Info("Checkout completed", map[string]interface{}{
		"order_number": result.Order.OrderNumber,
		"total":        result.Order.Total,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Order placed successfully",
		"order_number": result.Order.OrderNumber,
		"whatsapp_url": result.WhatsAppURL,
		"whatsapp_msg": result.Message,
		"order":        result.Order,
	})
}
