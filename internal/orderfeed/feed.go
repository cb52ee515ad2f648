package orderfeed

import (
	"context"
	"sync"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/app/repository"
	"github.com/gsaan/gsaan-backend/pkg/logger"
)

// Lister is the query the feed re-runs on every change.
type Lister interface {
	FindWithFilter(filter repository.OrderFilter) ([]model.Order, error)
}

// Callback receives the full ordered list matching a subscription. Each
// delivery replaces the previous one.
type Callback func(orders []model.Order)

// Feed pushes order-list snapshots to subscribers after every change.
// Notify is cheap and coalescing; the refresh runs on Run's goroutine.
// Each subscriber has its own delivery goroutine holding at most one
// pending snapshot, so a slow callback only ever sees the latest list.
type Feed struct {
	lister  Lister
	trigger chan struct{}

	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*subscriber
}

type subscriber struct {
	id     uint64
	status *model.OrderStatus
	fn     Callback

	mu      sync.Mutex
	pending []model.Order
	hasNext bool
	wake    chan struct{}
	done    chan struct{}
	stopped sync.Once
}

func New(lister Lister) *Feed {
	return &Feed{
		lister:  lister,
		trigger: make(chan struct{}, 1),
		subs:    make(map[uint64]*subscriber),
	}
}

// Run refreshes subscribers until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			f.closeAll()
			return
		case <-f.trigger:
			f.refresh()
		}
	}
}

// Notify schedules a refresh. Calls made while one is pending collapse.
func (f *Feed) Notify() {
	select {
	case f.trigger <- struct{}{}:
	default:
	}
}

// Subscribe registers fn for orders with the given status (nil for all) and
// schedules an initial snapshot. The returned func unsubscribes; it is safe to
// call more than once.
func (f *Feed) Subscribe(status *model.OrderStatus, fn Callback) func() {
	var filter *model.OrderStatus
	if status != nil {
		s := *status
		filter = &s
	}

	f.mu.Lock()
	f.nextID++
	sub := &subscriber{
		id:     f.nextID,
		status: filter,
		fn:     fn,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	f.subs[sub.id] = sub
	count := len(f.subs)
	f.mu.Unlock()

	go sub.loop()

	logger.Debug("Order feed subscriber added", map[string]interface{}{
		"subscriber_id": sub.id,
		"status":        filter,
		"subscribers":   count,
	})

	f.Notify()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, sub.id)
			f.mu.Unlock()
			sub.stop()
		})
	}
}

// Subscribers reports the current subscription count.
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

func statusKey(status *model.OrderStatus) string {
	if status == nil {
		return ""
	}
	return string(*status)
}

func (f *Feed) refresh() {
	f.mu.RLock()
	groups := make(map[string][]*subscriber)
	for _, sub := range f.subs {
		key := statusKey(sub.status)
		groups[key] = append(groups[key], sub)
	}
	f.mu.RUnlock()

	for key, subs := range groups {
		orders, err := f.lister.FindWithFilter(repository.OrderFilter{Status: subs[0].status})
		if err != nil {
			logger.Error("Failed to refresh order feed", err, map[string]interface{}{
				"status": key,
			})
			continue
		}
		for _, sub := range subs {
			sub.offer(orders)
		}
	}
}

func (f *Feed) closeAll() {
	f.mu.Lock()
	subs := f.subs
	f.subs = make(map[uint64]*subscriber)
	f.mu.Unlock()

	for _, sub := range subs {
		sub.stop()
	}
}

func (s *subscriber) stop() {
	s.stopped.Do(func() { close(s.done) })
}

func (s *subscriber) offer(orders []model.Order) {
	s.mu.Lock()
	s.pending = orders
	s.hasNext = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) loop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
			s.mu.Lock()
			orders, ok := s.pending, s.hasNext
			s.pending, s.hasNext = nil, false
			s.mu.Unlock()

			if ok {
				s.deliver(orders)
			}
		}
	}
}

func (s *subscriber) deliver(orders []model.Order) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Order feed callback panicked", map[string]interface{}{
				"subscriber_id": s.id,
				"panic":         r,
			})
		}
	}()
	s.fn(orders)
}
