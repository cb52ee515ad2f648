package checkout

import (
	"errors"
	"strings"
	"time"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/cart"
	"github.com/gsaan/gsaan-backend/internal/pricing"
)

var ErrEmptyCart = errors.New("cart is empty")

const (
	PaymentCashOnDelivery = "cod"
	placedNote            = "Order placed"
	placedBy              = "customer"
)

type AssembleInput struct {
	Number string
	Form   Form
	Items  []cart.LineItem
	Policy pricing.Policy
	Now    time.Time
}

// Assemble builds a pending order from a validated form and cart lines.
// Lines are copied by value so later catalog edits never touch the order.
func Assemble(in AssembleInput) (*model.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyCart
	}

	form := in.Form.WithDefaults()

	var subtotal int64
	items := make([]model.OrderItem, 0, len(in.Items))
	for _, line := range in.Items {
		total := line.LineTotal()
		subtotal += total
		items = append(items, model.OrderItem{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			ProductSlug:  line.ProductSlug,
			VariantID:    line.VariantID,
			VariantName:  line.VariantName,
			Quantity:     line.Quantity,
			UnitPrice:    line.Price,
			TotalPrice:   total,
			ThumbnailURL: line.ProductImage,
		})
	}

	quote := in.Policy.Quote(subtotal)

	whatsapp := ""
	if strings.TrimSpace(form.WhatsApp) != "" {
		whatsapp = CleanPhone(form.WhatsApp)
	}

	order := &model.Order{
		OrderNumber: in.Number,
		Customer: model.Customer{
			Name:     strings.TrimSpace(form.FullName),
			Phone:    CleanPhone(form.Phone),
			WhatsApp: whatsapp,
			Email:    strings.TrimSpace(form.Email),
			Address: model.Address{
				Line1:    strings.TrimSpace(form.AddressLine1),
				Line2:    strings.TrimSpace(form.AddressLine2),
				Landmark: strings.TrimSpace(form.Landmark),
				City:     strings.TrimSpace(form.City),
				District: strings.TrimSpace(form.District),
				State:    strings.TrimSpace(form.State),
				Pincode:  CleanPincode(form.Pincode),
				Country:  DefaultCountry,
			},
		},
		Items:          items,
		Subtotal:       quote.Subtotal,
		DeliveryCharge: quote.DeliveryCharge,
		Discount:       quote.Discount,
		Total:          quote.Total,
		Status:         model.OrderStatusPending,
		PaymentMethod:  PaymentCashOnDelivery,
		CustomerNotes:  strings.TrimSpace(form.Notes),
		CreatedAt:      in.Now,
		UpdatedAt:      in.Now,
		StatusHistory: []model.StatusHistoryEntry{{
			Status:    model.OrderStatusPending,
			Note:      placedNote,
			UpdatedBy: placedBy,
			Timestamp: in.Now,
		}},
	}
	return order, nil
}
