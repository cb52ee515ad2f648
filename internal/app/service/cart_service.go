package service

import (
	"context"
	"errors"
	"sync"

	"github.com/gsaan/gsaan-backend/internal/cart"
	"github.com/gsaan/gsaan-backend/internal/pricing"
	"github.com/gsaan/gsaan-backend/pkg/logger"
)

var ErrCartSessionMissing = errors.New("cart session missing")

// CartView is a cart plus its delivery quote.
type CartView struct {
	Items                 []cart.LineItem `json:"items"`
	ItemCount             int             `json:"item_count"`
	Subtotal              int64           `json:"subtotal"`
	Quote                 pricing.Quote   `json:"quote"`
	AmountForFreeDelivery int64           `json:"amount_for_free_delivery"`
	FreeDeliveryThreshold int64           `json:"free_delivery_threshold"`
}

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*CartView, error)
	AddItem(ctx context.Context, sessionID, productID, variantID string, quantity int) (*CartView, error)
	UpdateQuantity(ctx context.Context, sessionID, productID, variantID string, quantity int) (*CartView, error)
	RemoveItem(ctx context.Context, sessionID, productID, variantID string) (*CartView, error)
	ClearCart(ctx context.Context, sessionID string) error
	Contains(ctx context.Context, sessionID, productID, variantID string) (bool, int, error)
	Lines(ctx context.Context, sessionID string) ([]cart.LineItem, error)
	// Checkout hands the session's lines to fn while holding the session lock
	// and clears the cart only if fn succeeds.
	Checkout(ctx context.Context, sessionID string, fn func(lines []cart.LineItem) error) error
}

// sessionLocks serializes load, mutate and save per cart session. Entries are
// refcounted and dropped once no request holds or waits on them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) lock(sessionID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sessionLock)
	}
	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &sessionLock{}
		l.locks[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}

func (l *sessionLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

type cartService struct {
	store       cart.Store
	products    ProductService
	settings    SettingsService
	maxQuantity int
	locks       sessionLocks
}

func NewCartService(store cart.Store, products ProductService, settings SettingsService, maxQuantity int) CartService {
	return &cartService{
		store:       store,
		products:    products,
		settings:    settings,
		maxQuantity: maxQuantity,
	}
}

// withCart runs fn on a freshly hydrated engine while holding the session lock.
func (s *cartService) withCart(ctx context.Context, sessionID string, fn func(engine *cart.Engine) error) error {
	if sessionID == "" {
		return ErrCartSessionMissing
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	var opts []cart.Option
	if s.maxQuantity > 0 {
		opts = append(opts, cart.WithQuantityCap(s.maxQuantity))
	}
	return fn(cart.New(ctx, s.store, sessionID, opts...))
}

func (s *cartService) view(engine *cart.Engine) *CartView {
	policy := s.settings.Policy()
	subtotal := engine.Subtotal()
	return &CartView{
		Items:                 engine.Items(),
		ItemCount:             engine.ItemCount(),
		Subtotal:              subtotal,
		Quote:                 policy.Quote(subtotal),
		AmountForFreeDelivery: policy.AmountForFreeDelivery(subtotal),
		FreeDeliveryThreshold: policy.FreeDeliveryThreshold,
	}
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (*CartView, error) {
	var view *CartView
	err := s.withCart(ctx, sessionID, func(engine *cart.Engine) error {
		view = s.view(engine)
		return nil
	})
	return view, err
}

// AddItem looks the variant up in the catalog so the line carries the current
// name and price rather than whatever the client sent.
func (s *cartService) AddItem(ctx context.Context, sessionID, productID, variantID string, quantity int) (*CartView, error) {
	if sessionID == "" {
		return nil, ErrCartSessionMissing
	}

	product, variant, err := s.products.FindVariant(productID, variantID)
	if err != nil {
		logger.Warn("Add to cart rejected", map[string]interface{}{
			"product_id": productID,
			"variant_id": variantID,
			"error":      err.Error(),
		})
		return nil, err
	}

	var view *CartView
	err = s.withCart(ctx, sessionID, func(engine *cart.Engine) error {
		engine.AddItem(ctx, cart.AddInput{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductSlug:  product.Slug,
			ProductImage: product.ThumbnailURL,
			VariantID:    variant.ID,
			VariantName:  variant.Name,
			Price:        variant.Price,
			Quantity:     quantity,
		})

		logger.Debug("Item added to cart", map[string]interface{}{
			"product_id": productID,
			"variant_id": variantID,
			"quantity":   engine.ItemQuantity(productID, variantID),
		})
		view = s.view(engine)
		return nil
	})
	return view, err
}

func (s *cartService) UpdateQuantity(ctx context.Context, sessionID, productID, variantID string, quantity int) (*CartView, error) {
	var view *CartView
	err := s.withCart(ctx, sessionID, func(engine *cart.Engine) error {
		engine.UpdateQuantity(ctx, productID, variantID, quantity)
		view = s.view(engine)
		return nil
	})
	return view, err
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID, productID, variantID string) (*CartView, error) {
	var view *CartView
	err := s.withCart(ctx, sessionID, func(engine *cart.Engine) error {
		engine.RemoveItem(ctx, productID, variantID)
		view = s.view(engine)
		return nil
	})
	return view, err
}

func (s *cartService) ClearCart(ctx context.Context, sessionID string) error {
	return s.withCart(ctx, sessionID, func(engine *cart.Engine) error {
		engine.Clear(ctx)
		return nil
	})
}

func (s *cartService) Contains(ctx context.Context, sessionID, productID, variantID string) (bool, int, error) {
	var (
		in  bool
		qty int
	)
	err := s.withCart(ctx, sessionID, func(engine *cart.Engine) error {
		in, qty = engine.IsInCart(productID, variantID), engine.ItemQuantity(productID, variantID)
		return nil
	})
	return in, qty, err
}

func (s *cartService) Lines(ctx context.Context, sessionID string) ([]cart.LineItem, error) {
	var lines []cart.LineItem
	err := s.withCart(ctx, sessionID, func(engine *cart.Engine) error {
		lines = engine.Items()
		return nil
	})
	return lines, err
}

func (s *cartService) Checkout(ctx context.Context, sessionID string, fn func(lines []cart.LineItem) error) error {
	return s.withCart(ctx, sessionID, func(engine *cart.Engine) error {
		if err := fn(engine.Items()); err != nil {
			return err
		}
		engine.Clear(ctx)
		return nil
	})
}
