// Package report renders order exports as spreadsheets.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const (
	OrdersSheet  = "Orders"
	ItemsSheet   = "Items"
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timestampFmt = "2006-01-02 15:04"
)

var orderHeaders = []interface{}{
	"Order Number", "Date", "Status", "Customer", "Phone", "WhatsApp",
	"Address", "City", "Pincode", "Items", "Subtotal", "Delivery", "Discount",
	"Total", "Payment", "Tracking Number", "Customer Notes",
}

var itemHeaders = []interface{}{
	"Order Number", "Product", "Variant", "Quantity", "Unit Price", "Line Total",
}

// OrdersFilename is the export name for orders placed on day.
func OrdersFilename(day time.Time) string {
	return fmt.Sprintf("orders-%s.xlsx", day.Format("20060102"))
}

// BuildOrders writes one row per order on the Orders sheet and one row per
// line on the Items sheet. Times are shown in loc.
func BuildOrders(orders []model.Order, loc *time.Location) (*excelize.File, error) {
	if loc == nil {
		loc = time.UTC
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", OrdersSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(ItemsSheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeHeader(f, OrdersSheet, orderHeaders, bold); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeHeader(f, ItemsSheet, itemHeaders, bold); err != nil {
		f.Close()
		return nil, err
	}

	itemRow := 2
	for i, o := range orders {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			o.OrderNumber,
			o.CreatedAt.In(loc).Format(timestampFmt),
			o.Status.Label(),
			o.Customer.Name,
			o.Customer.Phone,
			o.Customer.WhatsApp,
			joinAddress(o.Customer.Address),
			o.Customer.Address.City,
			o.Customer.Address.Pincode,
			len(o.Items),
			o.Subtotal,
			o.DeliveryCharge,
			o.Discount,
			o.Total,
			strings.ToUpper(o.PaymentMethod),
			o.TrackingNumber,
			o.CustomerNotes,
		}
		if err := f.SetSheetRow(OrdersSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write order %s: %w", o.OrderNumber, err)
		}

		for _, it := range o.Items {
			cell, _ := excelize.CoordinatesToCellName(1, itemRow)
			line := []interface{}{
				o.OrderNumber, it.ProductName, it.VariantName, it.Quantity, it.UnitPrice, it.TotalPrice,
			}
			if err := f.SetSheetRow(ItemsSheet, cell, &line); err != nil {
				f.Close()
				return nil, fmt.Errorf("write items of %s: %w", o.OrderNumber, err)
			}
			itemRow++
		}
	}

	_ = f.SetColWidth(OrdersSheet, "A", "A", 22)
	_ = f.SetColWidth(OrdersSheet, "D", "G", 24)
	_ = f.SetColWidth(ItemsSheet, "A", "C", 24)
	return f, nil
}

func writeHeader(f *excelize.File, sheet string, headers []interface{}, style int) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

// OrdersXLSX renders the workbook to bytes.
func OrdersXLSX(orders []model.Order, loc *time.Location) ([]byte, error) {
	f, err := BuildOrders(orders, loc)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render orders workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func joinAddress(a model.Address) string {
	parts := []string{}
	for _, p := range []string{a.Line1, a.Line2, a.Landmark, a.District, a.State} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
