package repository

import (
	"context"
	"strings"
	"time"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderFilter struct {
	Status *model.OrderStatus
	Search string // order number or customer phone/name
	Limit  int
	Offset int
}

// StatusChange is one admin status update.
type StatusChange struct {
	Status         model.OrderStatus
	Note           string
	UpdatedBy      string
	TrackingNumber *string
	AdminNotes     *string
	At             time.Time
}

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByNumber(number string) (*model.Order, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	FindWithFilter(filter OrderFilter) ([]model.Order, error)
	FindBetween(from, to time.Time) ([]model.Order, error)
	UpdateStatus(id uint, change StatusChange) (*model.Order, error)
	MarkWhatsAppSent(id uint) error
	GetStats() (*model.OrderStats, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("timestamp ASC").Order("id ASC")
	})
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"order_number": order.OrderNumber,
		"total":        order.Total,
		"items":        len(order.Items),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"order_number": order.OrderNumber,
			"total":        order.Total,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	})
	return nil
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.preloadOrder(r.db).First(&order, id).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}

	logger.Debug("Order found by ID in database", map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	})
	return &order, nil
}

func (r *orderRepository) FindByNumber(number string) (*model.Order, error) {
	logger.Debug("Finding order by number in database", map[string]interface{}{
		"order_number": number,
	})

	var order model.Order
	if err := r.preloadOrder(r.db).Where("order_number = ?", number).First(&order).Error; err != nil {
		logger.Error("Failed to find order by number in database", err, map[string]interface{}{
			"order_number": number,
		})
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_number = ?", number).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check order number", err, map[string]interface{}{
			"order_number": number,
		})
		return false, err
	}
	return count > 0, nil
}

func (r *orderRepository) FindWithFilter(filter OrderFilter) ([]model.Order, error) {
	logger.Debug("Finding orders with filter", map[string]interface{}{
		"status": filter.Status,
		"search": filter.Search,
		"limit":  filter.Limit,
	})

	query := r.preloadOrder(r.db.Model(&model.Order{}))
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(order_number) LIKE ? OR customer_phone LIKE ? OR LOWER(customer_name) LIKE ?", like, like, like)
	}
	query = query.Order("created_at DESC").Order("id DESC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var orders []model.Order
	if err := query.Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders with filter", err, map[string]interface{}{
			"status": filter.Status,
		})
		return nil, err
	}

	logger.Debug("Orders found with filter", map[string]interface{}{
		"count": len(orders),
	})
	return orders, nil
}

// FindBetween returns orders created in [from, to), oldest first.
func (r *orderRepository) FindBetween(from, to time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.preloadOrder(r.db).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders in range", err, map[string]interface{}{
			"from": from,
			"to":   to,
		})
		return nil, err
	}
	return orders, nil
}

// UpdateStatus sets the status, appends a history entry and applies any
// optional fulfilment fields in one transaction. Any status may follow any
// other.
func (r *orderRepository) UpdateStatus(id uint, change StatusChange) (*model.Order, error) {
	logger.Debug("Updating order status in database", map[string]interface{}{
		"order_id":   id,
		"status":     change.Status,
		"updated_by": change.UpdatedBy,
	})

	at := change.At
	if at.IsZero() {
		at = time.Now()
	}

	var order model.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"status":     change.Status,
			"updated_at": at,
		}
		if change.TrackingNumber != nil {
			updates["tracking_number"] = *change.TrackingNumber
		}
		if change.AdminNotes != nil {
			updates["admin_notes"] = *change.AdminNotes
		}
		if err := tx.Model(&model.Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}

		entry := model.StatusHistoryEntry{
			OrderID:   id,
			Status:    change.Status,
			Note:      change.Note,
			UpdatedBy: change.UpdatedBy,
			Timestamp: at,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		order = model.Order{}
		return r.preloadOrder(tx).First(&order, id).Error
	})
	if err != nil {
		logger.Error("Failed to update order status in database", err, map[string]interface{}{
			"order_id": id,
			"status":   change.Status,
		})
		return nil, err
	}

	logger.Debug("Order status updated in database", map[string]interface{}{
		"order_id": id,
		"status":   order.Status,
		"history":  len(order.StatusHistory),
	})
	return &order, nil
}

func (r *orderRepository) MarkWhatsAppSent(id uint) error {
	if err := r.db.Model(&model.Order{}).Where("id = ?", id).
		Update("whatsapp_message_sent", true).Error; err != nil {
		logger.Error("Failed to mark WhatsApp message sent", err, map[string]interface{}{
			"order_id": id,
		})
		return err
	}
	return nil
}

type statusCount struct {
	Status model.OrderStatus
	Count  int64
}

func (r *orderRepository) GetStats() (*model.OrderStats, error) {
	var rows []statusCount
	if err := r.db.Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		logger.Error("Failed to count orders by status", err)
		return nil, err
	}

	stats := &model.OrderStats{}
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case model.OrderStatusPending:
			stats.Pending = row.Count
		case model.OrderStatusConfirmed:
			stats.Confirmed = row.Count
		case model.OrderStatusPacked:
			stats.Packed = row.Count
		case model.OrderStatusShipped:
			stats.Shipped = row.Count
		case model.OrderStatusDelivered:
			stats.Delivered = row.Count
		case model.OrderStatusCancelled:
			stats.Cancelled = row.Count
		}
	}

	if err := r.db.Model(&model.Order{}).
		Where("status = ?", model.OrderStatusDelivered).
		Select("COALESCE(SUM(total), 0)").
		Scan(&stats.Revenue).Error; err != nil {
		logger.Error("Failed to sum delivered revenue", err)
		return nil, err
	}

	logger.Debug("Order stats computed", map[string]interface{}{
		"total":   stats.Total,
		"revenue": stats.Revenue,
	})
	return stats, nil
}
