package model

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPacked,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:   "Pending",
	OrderStatusConfirmed: "Confirmed",
	OrderStatusPacked:    "Packed",
	OrderStatusShipped:   "Shipped",
	OrderStatusDelivered: "Delivered",
	OrderStatusCancelled: "Cancelled",
}

// Label is the display name used in the dashboard and exports.
func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

type Address struct {
	Line1    string `gorm:"type:varchar(255)" json:"line1"`
	Line2    string `gorm:"type:varchar(255)" json:"line2,omitempty"`
	Landmark string `gorm:"type:varchar(255)" json:"landmark,omitempty"`
	City     string `gorm:"type:varchar(100)" json:"city"`
	District string `gorm:"type:varchar(100)" json:"district,omitempty"`
	State    string `gorm:"type:varchar(100)" json:"state"`
	Pincode  string `gorm:"type:varchar(6)" json:"pincode"`
	Country  string `gorm:"type:varchar(50)" json:"country"`
}

type Customer struct {
	Name     string  `gorm:"type:varchar(150)" json:"name"`
	Phone    string  `gorm:"type:varchar(15);index" json:"phone"`
	WhatsApp string  `gorm:"column:whatsapp;type:varchar(15)" json:"whatsapp,omitempty"`
	Email    string  `gorm:"type:varchar(255)" json:"email,omitempty"`
	Address  Address `gorm:"embedded;embeddedPrefix:address_" json:"address"`
}

// Order totals are fixed at creation: Total = Subtotal + DeliveryCharge - Discount.
type Order struct {
	ID                  uint        `gorm:"primarykey" json:"id"`
	OrderNumber         string      `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_number"`
	Customer            Customer    `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	Subtotal            int64       `gorm:"not null" json:"subtotal"`
	DeliveryCharge      int64       `gorm:"not null" json:"delivery_charge"`
	Discount            int64       `gorm:"not null" json:"discount"`
	Total               int64       `gorm:"not null" json:"total"`
	Status              OrderStatus `gorm:"type:varchar(20);index;not null" json:"status"`
	PaymentMethod       string      `gorm:"type:varchar(20)" json:"payment_method"`
	WhatsAppMessageSent bool        `gorm:"column:whatsapp_message_sent;not null" json:"whatsapp_message_sent"`
	TrackingNumber      string      `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`
	CustomerNotes       string      `gorm:"type:text" json:"customer_notes,omitempty"`
	AdminNotes          string      `gorm:"type:text" json:"admin_notes,omitempty"`
	CreatedAt           time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	StatusHistory []StatusHistoryEntry `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"status_history"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is a by-value snapshot of a cart line; it never joins the catalog.
type OrderItem struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	OrderID      uint   `gorm:"not null;index" json:"order_id"`
	ProductID    string `gorm:"type:varchar(36);not null" json:"product_id"`
	ProductName  string `gorm:"type:varchar(200);not null" json:"product_name"`
	ProductSlug  string `gorm:"type:varchar(220)" json:"product_slug"`
	VariantID    string `gorm:"type:varchar(36);not null" json:"variant_id"`
	VariantName  string `gorm:"type:varchar(100)" json:"variant_name"`
	Quantity     int    `gorm:"not null" json:"quantity"`
	UnitPrice    int64  `gorm:"not null" json:"unit_price"`
	TotalPrice   int64  `gorm:"not null" json:"total_price"`
	ThumbnailURL string `gorm:"type:text" json:"thumbnail_url,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type StatusHistoryEntry struct {
	ID        uint        `gorm:"primarykey" json:"-"`
	OrderID   uint        `gorm:"not null;index" json:"-"`
	Status    OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	Note      string      `gorm:"type:text" json:"note,omitempty"`
	UpdatedBy string      `gorm:"type:varchar(255)" json:"updated_by,omitempty"`
	Timestamp time.Time   `gorm:"not null" json:"timestamp"`
}

func (StatusHistoryEntry) TableName() string {
	return "order_status_history"
}

// OrderStats summarises the order book for the dashboard. Revenue counts
// delivered orders only.
type OrderStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Packed    int64 `json:"packed"`
	Shipped   int64 `json:"shipped"`
	Delivered int64 `json:"delivered"`
	Cancelled int64 `json:"cancelled"`
	Revenue   int64 `json:"total_revenue"`
}
