package service

import (
	"context"
	"time"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/app/repository"
	"github.com/gsaan/gsaan-backend/internal/cart"
	"github.com/gsaan/gsaan-backend/internal/checkout"
	"github.com/gsaan/gsaan-backend/internal/whatsapp"
	"github.com/gsaan/gsaan-backend/pkg/logger"
)

// CheckoutResult is what the storefront needs to hand the customer over to
// WhatsApp.
type CheckoutResult struct {
	Order       *model.Order `json:"order"`
	Message     string       `json:"message"`
	WhatsAppURL string       `json:"whatsapp_url"`
}

type CheckoutService interface {
	PlaceOrder(ctx context.Context, sessionID string, form checkout.Form) (*CheckoutResult, error)
}

type checkoutService struct {
	carts     CartService
	orderRepo repository.OrderRepository
	settings  SettingsService
	numbers   *checkout.NumberGenerator
	notifier  OrderNotifier
	loc       *time.Location
}

func NewCheckoutService(
	carts CartService,
	orderRepo repository.OrderRepository,
	settings SettingsService,
	numbers *checkout.NumberGenerator,
	notifier OrderNotifier,
	loc *time.Location,
) CheckoutService {
	if loc == nil {
		loc = time.UTC
	}
	return &checkoutService{
		carts:     carts,
		orderRepo: orderRepo,
		settings:  settings,
		numbers:   numbers,
		notifier:  notifier,
		loc:       loc,
	}
}

// PlaceOrder validates the form, turns the session cart into a pending order,
// stores it and returns the pre-filled WhatsApp link. The whole sequence runs
// under the session's cart lock, and the cart is cleared only after the order
// is stored.
func (s *checkoutService) PlaceOrder(ctx context.Context, sessionID string, form checkout.Form) (*CheckoutResult, error) {
	var order *model.Order
	err := s.carts.Checkout(ctx, sessionID, func(lines []cart.LineItem) error {
		if len(lines) == 0 {
			logger.Warn("Checkout rejected: cart is empty", map[string]interface{}{
				"session": sessionID,
			})
			return checkout.ErrEmptyCart
		}

		if errs := checkout.Validate(form); errs != nil {
			logger.Warn("Checkout rejected: invalid form", map[string]interface{}{
				"fields": errs.Error(),
			})
			return errs
		}

		now := s.numbers.Now()
		number, err := s.numbers.GenerateAt(ctx, now, s.orderRepo.ExistsByNumber)
		if err != nil {
			return err
		}

		assembled, err := checkout.Assemble(checkout.AssembleInput{
			Number: number,
			Form:   form,
			Items:  lines,
			Policy: s.settings.Policy(),
			Now:    now,
		})
		if err != nil {
			return err
		}

		if err := s.orderRepo.Create(assembled); err != nil {
			logger.Error("Failed to store order", err, map[string]interface{}{
				"order_number": number,
			})
			return err
		}
		order = assembled
		return nil
	})
	if err != nil {
		return nil, err
	}

	message := whatsapp.BuildOrderMessage(order, s.loc)
	url := whatsapp.NewLink(s.settings.WhatsAppNumber()).URL(message)

	if err := s.orderRepo.MarkWhatsAppSent(order.ID); err != nil {
		logger.Warn("Failed to flag WhatsApp message", map[string]interface{}{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	} else {
		order.WhatsAppMessageSent = true
	}

	logger.Info("Order placed", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"items":        len(order.Items),
		"total":        order.Total,
	})

	if s.notifier != nil {
		s.notifier.Notify()
	}

	return &CheckoutResult{
		Order:       order,
		Message:     message,
		WhatsAppURL: url,
	}, nil
}
