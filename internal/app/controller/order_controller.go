package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/app/service"
	apperrors "github.com/gsaan/gsaan-backend/internal/errors"
	"github.com/gsaan/gsaan-backend/internal/middleware"
	"github.com/gsaan/gsaan-backend/internal/report"
	ws "github.com/gsaan/gsaan-backend/internal/websocket"
)

type OrderController struct {
	orderService service.OrderService
	hub          *ws.Hub
	upgrader     websocket.Upgrader
	loc          *time.Location
}

func NewOrderController(orderService service.OrderService, hub *ws.Hub, upgrader websocket.Upgrader, loc *time.Location) *OrderController {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderController{
		orderService: orderService,
		hub:          hub,
		upgrader:     upgrader,
		loc:          loc,
	}
}

type UpdateOrderStatusRequest struct {
	Status         model.OrderStatus `json:"status" binding:"required"`
	Note           string            `json:"note"`
	TrackingNumber *string           `json:"tracking_number"`
	AdminNotes     *string           `json:"admin_notes"`
}

// statusFilter reads ?status=. Empty and "all" mean no filter.
func statusFilter(c *gin.Context) (*model.OrderStatus, bool) {
	raw := c.Query("status")
	if raw == "" || raw == "all" {
		return nil, true
	}
	status := model.OrderStatus(raw)
	return &status, status.Valid()
}

func (ctrl *OrderController) listOptions(c *gin.Context) (service.OrderListOptions, bool) {
	status, ok := statusFilter(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
		return service.OrderListOptions{}, false
	}
	limit, okLimit := queryInt64(c, "limit")
	offset, okOffset := queryInt64(c, "offset")
	if !okLimit || !okOffset {
		apperrors.BadRequest(c, apperrors.ValidationInvalidRange, "limit and offset must be zero or more")
		return service.OrderListOptions{}, false
	}
	return service.OrderListOptions{
		Status: status,
		Search: c.Query("search"),
		Limit:  int(limit),
		Offset: int(offset),
	}, true
}

// ListOrders returns orders newest first.
// GET /api/v1/admin/orders?status=&search=
func (ctrl *OrderController) ListOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts, ok := ctrl.listOptions(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.ListOrders(opts)
	if err != nil {
		log.Error("Failed to fetch orders", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list orders")
		return
	}

	log.Debug("Orders fetched", map[string]interface{}{
		"count":  len(orders),
		"status": opts.Status,
	})
	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrder accepts either the numeric id or the order number.
// GET /api/v1/admin/orders/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	param := c.Param("id")

	var (
		order *model.Order
		err   error
	)
	if id, convErr := strconv.ParseUint(param, 10, 32); convErr == nil {
		order, err = ctrl.orderService.GetOrderByID(uint(id))
	} else {
		order, err = ctrl.orderService.GetOrderByNumber(param)
	}
	if err != nil {
		ctrl.respondOrderError(c, err, "get order")
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateOrderStatus moves an order to any status.
// PUT /api/v1/admin/orders/:id/status
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid order ID")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid status update request", map[string]interface{}{
			"order_id": id,
			"error":    err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "status is required")
		return
	}

	updatedBy, _ := middleware.GetUserEmail(c)
	order, err := ctrl.orderService.UpdateStatus(uint(id), service.StatusUpdate{
		Status:         req.Status,
		Note:           req.Note,
		TrackingNumber: req.TrackingNumber,
		AdminNotes:     req.AdminNotes,
	}, updatedBy)
	if err != nil {
		ctrl.respondOrderError(c, err, "update order status")
		return
	}

	log.Info("Order status updated", map[string]interface{}{
		"order_id":   order.ID,
		"status":     order.Status,
		"updated_by": updatedBy,
	})
	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated",
		"order":   order,
	})
}

// GetStats returns per-status counts and delivered revenue.
// GET /api/v1/admin/orders/stats
func (ctrl *OrderController) GetStats(c *gin.Context) {
	stats, err := ctrl.orderService.Stats()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to compute order stats", err)
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "order stats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// ExportOrders downloads the filtered orders as a spreadsheet.
// GET /api/v1/admin/orders/export?status=
func (ctrl *OrderController) ExportOrders(c *gin.Context) {
	opts, ok := ctrl.listOptions(c)
	if !ok {
		return
	}

	data, err := ctrl.orderService.Export(opts)
	if err != nil {
		ctrl.respondOrderError(c, err, "export orders")
		return
	}

	filename := report.OrdersFilename(time.Now().In(ctrl.loc))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, report.ContentType, data)
}

// LiveOrders streams the order list over a websocket. Every change to the
// order book pushes a fresh snapshot for the requested status filter.
// GET /api/v1/admin/orders/live?status=&token=
func (ctrl *OrderController) LiveOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	status, ok := statusFilter(c)
	if !ok {
		apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, userID, status)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Live order connection established", map[string]interface{}{
		"user_id": userID,
		"status":  status,
	})
}

func (ctrl *OrderController) respondOrderError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
	case errors.Is(err, service.ErrInvalidStatus):
		apperrors.BadRequest(c, apperrors.OrderInvalidStatus, "Unknown order status")
	default:
		middleware.GetLoggerFromContext(c).Error("Order request failed", err, map[string]interface{}{
			"context": context,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, context)
	}
}
