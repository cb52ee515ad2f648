package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/orderfeed"
	"github.com/gsaan/gsaan-backend/pkg/logger"
)

const sendBuffer = 4

// Snapshot is the frame written to live order clients.
type Snapshot struct {
	Type   string             `json:"type"`
	Status *model.OrderStatus `json:"status,omitempty"`
	Count  int                `json:"count"`
	Orders []model.Order      `json:"orders"`
}

// Client is one admin dashboard connection following the order feed.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Status *model.OrderStatus
	Send   chan []byte

	mu          sync.Mutex
	closed      bool
	unsubscribe func()
}

func NewClient(hub *Hub, conn *Conn, userID uint, status *model.OrderStatus) *Client {
	return &Client{
		Hub:    hub,
		Conn:   conn,
		UserID: userID,
		Status: status,
		Send:   make(chan []byte, sendBuffer),
	}
}

// push queues a snapshot. When the buffer is full the oldest queued frame is
// dropped; every frame is a full list so only the newest matters.
func (c *Client) push(orders []model.Order) {
	data, err := json.Marshal(Snapshot{
		Type:   "orders",
		Status: c.Status,
		Count:  len(orders),
		Orders: orders,
	})
	if err != nil {
		logger.Error("Failed to marshal order snapshot", err, map[string]interface{}{
			"user_id": c.UserID,
		})
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for {
		select {
		case c.Send <- data:
			return
		default:
		}
		select {
		case <-c.Send:
		default:
		}
	}
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// Hub tracks live order clients and wires each to an order feed
// subscription for as long as it is registered.
type Hub struct {
	feed *orderfeed.Feed

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

func NewHub(feed *orderfeed.Feed) *Hub {
	return &Hub{
		feed:       feed,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
	}
}

// Run serves register/unregister requests until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.detach(client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			if client.isClosed() {
				continue
			}
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()

			unsubscribe := h.feed.Subscribe(client.Status, client.push)
			client.mu.Lock()
			client.unsubscribe = unsubscribe
			client.mu.Unlock()

			logger.Info("Live order client registered", map[string]interface{}{
				"user_id": client.UserID,
				"status":  client.Status,
				"clients": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				h.detach(client)
			} else {
				// Unregistered before its register was processed.
				client.close()
			}
			total := len(h.clients)
			h.mu.Unlock()

			logger.Info("Live order client unregistered", map[string]interface{}{
				"user_id": client.UserID,
				"clients": total,
			})
		}
	}
}

// detach must be called with h.mu held.
func (h *Hub) detach(client *Client) {
	delete(h.clients, client)

	client.mu.Lock()
	unsubscribe := client.unsubscribe
	client.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
	client.close()
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
