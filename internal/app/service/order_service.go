package service

import (
	"errors"
	"strings"
	"time"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/app/repository"
	"github.com/gsaan/gsaan-backend/internal/report"
	"github.com/gsaan/gsaan-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrInvalidStatus = errors.New("invalid order status")
)

const (
	defaultOrderPageSize = 100
	defaultExportLimit   = 5000
)

// OrderNotifier is told whenever the order book changes.
type OrderNotifier interface {
	Notify()
}

type OrderListOptions struct {
	Status *model.OrderStatus
	Search string
	Limit  int
	Offset int
}

type StatusUpdate struct {
	Status         model.OrderStatus
	Note           string
	TrackingNumber *string
	AdminNotes     *string
}

type OrderService interface {
	ListOrders(opts OrderListOptions) ([]model.Order, error)
	GetOrderByID(id uint) (*model.Order, error)
	GetOrderByNumber(number string) (*model.Order, error)
	UpdateStatus(id uint, update StatusUpdate, updatedBy string) (*model.Order, error)
	Stats() (*model.OrderStats, error)
	Export(opts OrderListOptions) ([]byte, error)
	OrdersBetween(from, to time.Time) ([]model.Order, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	notifier  OrderNotifier
	loc       *time.Location
	now       func() time.Time
}

func NewOrderService(orderRepo repository.OrderRepository, notifier OrderNotifier, loc *time.Location) OrderService {
	if loc == nil {
		loc = time.UTC
	}
	return &orderService{
		orderRepo: orderRepo,
		notifier:  notifier,
		loc:       loc,
		now:       time.Now,
	}
}

func (s *orderService) ListOrders(opts OrderListOptions) ([]model.Order, error) {
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultOrderPageSize
	}

	orders, err := s.orderRepo.FindWithFilter(repository.OrderFilter{
		Status: opts.Status,
		Search: strings.TrimSpace(opts.Search),
		Limit:  opts.Limit,
		Offset: opts.Offset,
	})
	if err != nil {
		logger.Error("Failed to list orders", err)
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetOrderByID(id uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetOrderByNumber(number string) (*model.Order, error) {
	order, err := s.orderRepo.FindByNumber(strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// UpdateStatus moves an order to any status, including backwards, and
// records the change in its history.
func (s *orderService) UpdateStatus(id uint, update StatusUpdate, updatedBy string) (*model.Order, error) {
	if !update.Status.Valid() {
		logger.Warn("Order status update rejected", map[string]interface{}{
			"order_id": id,
			"status":   update.Status,
		})
		return nil, ErrInvalidStatus
	}

	note := strings.TrimSpace(update.Note)
	if note == "" {
		note = "Status changed to " + update.Status.Label()
	}

	order, err := s.orderRepo.UpdateStatus(id, repository.StatusChange{
		Status:         update.Status,
		Note:           note,
		UpdatedBy:      updatedBy,
		TrackingNumber: update.TrackingNumber,
		AdminNotes:     update.AdminNotes,
		At:             s.now(),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       order.Status,
		"updated_by":   updatedBy,
	})

	if s.notifier != nil {
		s.notifier.Notify()
	}
	return order, nil
}

func (s *orderService) Stats() (*model.OrderStats, error) {
	stats, err := s.orderRepo.GetStats()
	if err != nil {
		logger.Error("Failed to compute order stats", err)
		return nil, err
	}
	return stats, nil
}

func (s *orderService) Export(opts OrderListOptions) ([]byte, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultExportLimit
	}
	orders, err := s.ListOrders(opts)
	if err != nil {
		return nil, err
	}

	data, err := report.OrdersXLSX(orders, s.loc)
	if err != nil {
		logger.Error("Failed to build orders export", err, map[string]interface{}{
			"orders": len(orders),
		})
		return nil, err
	}

	logger.Info("Orders exported", map[string]interface{}{
		"orders": len(orders),
		"bytes":  len(data),
	})
	return data, nil
}

func (s *orderService) OrdersBetween(from, to time.Time) ([]model.Order, error) {
	return s.orderRepo.FindBetween(from, to)
}
