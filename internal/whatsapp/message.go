// Package whatsapp formats orders as chat messages and builds wa.me links.
package whatsapp

import (
	"fmt"
	"strings"
	"time"

	"github.com/gsaan/gsaan-backend/internal/app/model"
)

const (
	divider      = "━━━━━━━━━━━━━━━━━━"
	orderHeader  = "🙏 *புதிய ஆர்டர் - GSAAN Products*"
	productsHead = "*பொருட்கள் (Products):*"
	addressHead  = "*டெலிவரி முகவரி (Delivery Address):*"
	notesLabel   = "*குறிப்பு (Notes):*"
	orderFooter  = "தயவுசெய்து இந்த ஆர்டரை உறுதிப்படுத்தவும் 🙏\nPlease confirm this order."
)

// BuildOrderMessage renders the bilingual order summary sent to the shop.
func BuildOrderMessage(order *model.Order, loc *time.Location) string {
	var b strings.Builder

	b.WriteString(orderHeader + "\n\n")
	fmt.Fprintf(&b, "*Order #:* %s\n", order.OrderNumber)
	fmt.Fprintf(&b, "*Date:* %s\n\n", FormatDate(order.CreatedAt, loc))

	b.WriteString(divider + "\n")
	b.WriteString(productsHead + "\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "• %s (%s) x%d = %s\n", item.ProductName, item.VariantName, item.Quantity, FormatPrice(item.TotalPrice))
	}
	b.WriteString(divider + "\n\n")

	fmt.Fprintf(&b, "*Subtotal:* %s\n", FormatPrice(order.Subtotal))
	delivery := "FREE"
	if order.DeliveryCharge > 0 {
		delivery = FormatPrice(order.DeliveryCharge)
	}
	fmt.Fprintf(&b, "*Delivery:* %s\n", delivery)
	if order.Discount > 0 {
		fmt.Fprintf(&b, "*Discount:* -%s\n", FormatPrice(order.Discount))
	}
	fmt.Fprintf(&b, "*Total:* %s\n\n", FormatPrice(order.Total))

	b.WriteString(divider + "\n")
	b.WriteString(addressHead + "\n")
	for _, line := range addressLines(order.Customer) {
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "*Phone:* %s\n", order.Customer.Phone)
	if wa := order.Customer.WhatsApp; wa != "" && wa != order.Customer.Phone {
		fmt.Fprintf(&b, "*WhatsApp:* %s\n", wa)
	}
	if order.CustomerNotes != "" {
		fmt.Fprintf(&b, "\n%s %s\n", notesLabel, order.CustomerNotes)
	}
	b.WriteString(divider + "\n\n")
	b.WriteString(orderFooter)

	return b.String()
}

func addressLines(c model.Customer) []string {
	a := c.Address
	candidates := []string{
		c.Name,
		a.Line1,
		a.Line2,
		a.Landmark,
		fmt.Sprintf("%s, %s - %s", a.City, a.State, a.Pincode),
	}

	lines := make([]string, 0, len(candidates))
	for _, l := range candidates {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// BuildInquiryMessage asks the shop about a single product.
func BuildInquiryMessage(productName, variantName string) string {
	title := "*" + productName + "*"
	if variantName != "" {
		title += " (" + variantName + ")"
	}
	return "Hi, I'm interested in ordering:\n\n" + title + "\n\nPlease share the details and availability."
}
