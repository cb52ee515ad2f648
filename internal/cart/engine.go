package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gsaan/gsaan-backend/pkg/logger"
)

// Engine owns one session's cart. It hydrates from its Store once at
// construction and writes the full line list back after every mutation.
// Store failures are logged and the engine keeps working in memory.
type Engine struct {
	mu          sync.Mutex
	store       Store
	key         string
	items       []LineItem
	hydrated    bool
	maxQuantity int
}

type Option func(*Engine)

// WithQuantityCap clamps line quantities to [1, max] on add and update.
// Without it quantities are only bounded below.
func WithQuantityCap(max int) Option {
	return func(e *Engine) {
		e.maxQuantity = max
	}
}

// New builds an engine and hydrates it from store under key.
func New(ctx context.Context, store Store, key string, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		key:   key,
		items: []LineItem{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.hydrate(ctx)
	return e
}

func (e *Engine) hydrate(ctx context.Context) {
	defer func() { e.hydrated = true }()

	data, err := e.store.Load(ctx, e.key)
	if err != nil {
		logger.Warn("Failed to load cart, starting empty", map[string]interface{}{
			"key":   e.key,
			"error": err.Error(),
		})
		return
	}
	if len(data) == 0 {
		return
	}

	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn("Stored cart is corrupt, starting empty", map[string]interface{}{
			"key":   e.key,
			"error": err.Error(),
		})
		return
	}

	for _, it := range items {
		if it.ProductID == "" || it.VariantID == "" || it.Quantity < 1 {
			continue
		}
		it.ID = Key(it.ProductID, it.VariantID)
		e.items = append(e.items, it)
	}

	logger.Debug("Cart hydrated", map[string]interface{}{
		"key":   e.key,
		"lines": len(e.items),
	})
}

// Hydrated reports whether the initial load has completed.
func (e *Engine) Hydrated() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hydrated
}

// persist must be called with mu held.
func (e *Engine) persist(ctx context.Context) {
	if !e.hydrated {
		return
	}

	data, err := json.Marshal(e.items)
	if err != nil {
		logger.Error("Failed to encode cart", err, map[string]interface{}{
			"key": e.key,
		})
		return
	}
	if err := e.store.Save(ctx, e.key, data); err != nil {
		logger.Error("Failed to persist cart", err, map[string]interface{}{
			"key":   e.key,
			"lines": len(e.items),
		})
	}
}

func (e *Engine) clamp(q int) int {
	if q < 1 {
		q = 1
	}
	if e.maxQuantity > 0 && q > e.maxQuantity {
		q = e.maxQuantity
	}
	return q
}

// indexOf matches on the id pair; Key alone is ambiguous when ids contain "-".
func (e *Engine) indexOf(productID, variantID string) int {
	for i := range e.items {
		if e.items[i].ProductID == productID && e.items[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

// AddItem merges into an existing line by summing quantities, or appends.
func (e *Engine) AddItem(ctx context.Context, in AddInput) {
	e.mu.Lock()
	defer e.mu.Unlock()

	// A line never holds less than one unit, so a zero or negative request adds one.
	qty := in.Quantity
	if qty < 1 {
		qty = 1
	}

	if i := e.indexOf(in.ProductID, in.VariantID); i >= 0 {
		merged := e.items[i].Quantity + qty
		if e.maxQuantity > 0 {
			merged = e.clamp(merged)
		}
		e.items[i].Quantity = merged
	} else {
		if e.maxQuantity > 0 {
			qty = e.clamp(qty)
		}
		e.items = append(e.items, LineItem{
			ID:           Key(in.ProductID, in.VariantID),
			ProductID:    in.ProductID,
			ProductName:  in.ProductName,
			ProductSlug:  in.ProductSlug,
			ProductImage: in.ProductImage,
			VariantID:    in.VariantID,
			VariantName:  in.VariantName,
			Price:        in.Price,
			Quantity:     qty,
		})
	}

	e.persist(ctx)
}

// RemoveItem deletes the line if present.
func (e *Engine) RemoveItem(ctx context.Context, productID, variantID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(ctx, productID, variantID)
}

func (e *Engine) removeLocked(ctx context.Context, productID, variantID string) {
	i := e.indexOf(productID, variantID)
	if i < 0 {
		return
	}
	e.items = append(e.items[:i], e.items[i+1:]...)
	e.persist(ctx)
}

// UpdateQuantity replaces the quantity; anything below 1 removes the line.
func (e *Engine) UpdateQuantity(ctx context.Context, productID, variantID string, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity < 1 {
		e.removeLocked(ctx, productID, variantID)
		return
	}

	i := e.indexOf(productID, variantID)
	if i < 0 {
		return
	}
	e.items[i].Quantity = e.clamp(quantity)
	e.persist(ctx)
}

func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = []LineItem{}
	e.persist(ctx)
}

// IsInCart matches the exact line when variantID is set, otherwise any
// variant of the product.
func (e *Engine) IsInCart(productID, variantID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if variantID != "" {
		return e.indexOf(productID, variantID) >= 0
	}
	for _, it := range e.items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// ItemQuantity returns 0 when the line is absent.
func (e *Engine) ItemQuantity(productID, variantID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if i := e.indexOf(productID, variantID); i >= 0 {
		return e.items[i].Quantity
	}
	return 0
}

func (e *Engine) Subtotal() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	var total int64
	for _, it := range e.items {
		total += it.LineTotal()
	}
	return total
}

func (e *Engine) ItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := 0
	for _, it := range e.items {
		count += it.Quantity
	}
	return count
}

// Items returns a copy of the lines in insertion order.
func (e *Engine) Items() []LineItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]LineItem, len(e.items))
	copy(out, e.items)
	return out
}

func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items)
}
