package whatsapp

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "₹0"},
		{49, "₹49"},
		{499, "₹499"},
		{1299, "₹1,299"},
		{12345, "₹12,345"},
		{123456, "₹1,23,456"},
		{12345678, "₹1,23,45,678"},
		{-250, "-₹250"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPrice(tt.in))
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2025, 1, 15, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, "15 Jan 2025", FormatDate(ts, nil))
	assert.Equal(t, "16 Jan 2025", FormatDate(ts, time.FixedZone("IST", 19800)))
}

func sampleOrder() *model.Order {
	return &model.Order{
		OrderNumber: "GSAAN-20250115-AB12",
		Customer: model.Customer{
			Name:  "Lakshmi",
			Phone: "9876543210",
			Address: model.Address{
				Line1:   "12, Gandhi Road",
				City:    "Salem",
				State:   "Tamil Nadu",
				Pincode: "636001",
			},
		},
		Items: []model.OrderItem{
			{ProductName: "Pure Bhimseni Camphor", VariantName: "100g Pack", Quantity: 2, UnitPrice: 100, TotalPrice: 200},
			{ProductName: "Sambrani Cup", VariantName: "12 Cups", Quantity: 1, UnitPrice: 50, TotalPrice: 50},
		},
		Subtotal:       250,
		DeliveryCharge: 49,
		Total:          299,
		CreatedAt:      time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestBuildOrderMessage(t *testing.T) {
	msg := BuildOrderMessage(sampleOrder(), time.UTC)

	assert.True(t, strings.HasPrefix(msg, "🙏 *புதிய ஆர்டர் - GSAAN Products*"))
	assert.Contains(t, msg, "*Order #:* GSAAN-20250115-AB12")
	assert.Contains(t, msg, "*Date:* 15 Jan 2025")
	assert.Contains(t, msg, "• Pure Bhimseni Camphor (100g Pack) x2 = ₹200")
	assert.Contains(t, msg, "• Sambrani Cup (12 Cups) x1 = ₹50")
	assert.Contains(t, msg, "*Subtotal:* ₹250")
	assert.Contains(t, msg, "*Delivery:* ₹49")
	assert.Contains(t, msg, "*Total:* ₹299")
	assert.Contains(t, msg, "Lakshmi\n12, Gandhi Road\nSalem, Tamil Nadu - 636001")
	assert.Contains(t, msg, "*Phone:* 9876543210")
	assert.NotContains(t, msg, "*WhatsApp:*")
	assert.NotContains(t, msg, "Notes")
	assert.Equal(t, 4, strings.Count(msg, divider))
	assert.True(t, strings.HasSuffix(msg, "Please confirm this order."))
}

func TestBuildOrderMessage_FreeDeliveryAndOptionalLines(t *testing.T) {
	o := sampleOrder()
	o.DeliveryCharge = 0
	o.Total = 250
	o.Customer.WhatsApp = "9123456789"
	o.Customer.Address.Line2 = "Near Temple"
	o.CustomerNotes = "Deliver before Friday"

	msg := BuildOrderMessage(o, time.UTC)

	assert.Contains(t, msg, "*Delivery:* FREE")
	assert.Contains(t, msg, "*WhatsApp:* 9123456789")
	assert.Contains(t, msg, "12, Gandhi Road\nNear Temple\n")
	assert.Contains(t, msg, "*குறிப்பு (Notes):* Deliver before Friday")
}

func TestBuildOrderMessage_SameWhatsAppOmitted(t *testing.T) {
	o := sampleOrder()
	o.Customer.WhatsApp = o.Customer.Phone

	assert.NotContains(t, BuildOrderMessage(o, time.UTC), "*WhatsApp:*")
}

func TestBuildInquiryMessage(t *testing.T) {
	assert.Equal(t,
		"Hi, I'm interested in ordering:\n\n*Pure Deepam Oil* (500ml)\n\nPlease share the details and availability.",
		BuildInquiryMessage("Pure Deepam Oil", "500ml"))
	assert.Contains(t, BuildInquiryMessage("Sambrani Cup", ""), "*Sambrani Cup*\n")
}

func TestLink(t *testing.T) {
	l := NewLink("+91 83000 51198")
	assert.Equal(t, "918300051198", l.Number)
	assert.Equal(t, "https://wa.me/918300051198", l.ChatURL())

	msg := "Total: ₹299 & more\nline+two"
	raw := l.URL(msg)
	require.True(t, strings.HasPrefix(raw, "https://wa.me/918300051198?text="))
	assert.NotContains(t, raw, " ")
	assert.Contains(t, raw, "%20")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, msg, u.Query().Get("text"))
}

func TestLink_OrderMessageRoundTrip(t *testing.T) {
	msg := BuildOrderMessage(sampleOrder(), time.UTC)
	u, err := url.Parse(NewLink("918300051198").URL(msg))
	require.NoError(t, err)
	assert.Equal(t, msg, u.Query().Get("text"))
}
