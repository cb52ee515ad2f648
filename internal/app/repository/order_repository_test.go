package repository

import (
	"context"
	"testing"
	"time"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderTest(t *testing.T) (*gorm.DB, OrderRepository) {
	testDB := setupTestDB(t)
	return testDB, NewOrderRepository(testDB)
}

func newOrder(number string, status model.OrderStatus, total int64, createdAt time.Time) *model.Order {
	return &model.Order{
		OrderNumber: number,
		Customer: model.Customer{
			Name:  "Lakshmi",
			Phone: "9876543210",
			Address: model.Address{
				Line1:   "12 Gandhi Road",
				City:    "Salem",
				State:   "Tamil Nadu",
				Pincode: "636001",
				Country: "India",
			},
		},
		Items: []model.OrderItem{
			{ProductID: "p1", ProductName: "Sambrani Cup", VariantID: "v1", VariantName: "12 Cups", Quantity: 2, UnitPrice: 79, TotalPrice: 158},
		},
		Subtotal:       total,
		Total:          total,
		Status:         status,
		PaymentMethod:  "cod",
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
		StatusHistory: []model.StatusHistoryEntry{
			{Status: model.OrderStatusPending, Note: "Order placed", UpdatedBy: "customer", Timestamp: createdAt},
		},
	}
}

func TestOrderRepository_CreateAndFind(t *testing.T) {
	_, repo := setupOrderTest(t)

	order := newOrder("GSAAN-20250115-AB12", model.OrderStatusPending, 207, time.Now().UTC())
	require.NoError(t, repo.Create(order))
	assert.NotZero(t, order.ID)

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, "GSAAN-20250115-AB12", found.OrderNumber)
	assert.Equal(t, "Salem", found.Customer.Address.City)
	require.Len(t, found.Items, 1)
	assert.Equal(t, int64(158), found.Items[0].TotalPrice)
	require.Len(t, found.StatusHistory, 1)
	assert.Equal(t, "customer", found.StatusHistory[0].UpdatedBy)

	byNumber, err := repo.FindByNumber("GSAAN-20250115-AB12")
	require.NoError(t, err)
	assert.Equal(t, order.ID, byNumber.ID)

	_, err = repo.FindByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_ExistsByNumber(t *testing.T) {
	_, repo := setupOrderTest(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(newOrder("GSAAN-20250115-AAAA", model.OrderStatusPending, 100, time.Now())))

	exists, err := repo.ExistsByNumber(ctx, "GSAAN-20250115-AAAA")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByNumber(ctx, "GSAAN-20250115-BBBB")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestOrderRepository_DuplicateNumberRejected(t *testing.T) {
	_, repo := setupOrderTest(t)

	require.NoError(t, repo.Create(newOrder("GSAAN-20250115-AAAA", model.OrderStatusPending, 100, time.Now())))
	assert.Error(t, repo.Create(newOrder("GSAAN-20250115-AAAA", model.OrderStatusPending, 100, time.Now())))
}

func TestOrderRepository_FindWithFilter(t *testing.T) {
	_, repo := setupOrderTest(t)

	base := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(newOrder("GSAAN-20250115-0001", model.OrderStatusPending, 100, base)))
	require.NoError(t, repo.Create(newOrder("GSAAN-20250115-0002", model.OrderStatusShipped, 200, base.Add(time.Hour))))
	require.NoError(t, repo.Create(newOrder("GSAAN-20250115-0003", model.OrderStatusPending, 300, base.Add(2*time.Hour))))

	all, err := repo.FindWithFilter(OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "GSAAN-20250115-0003", all[0].OrderNumber)
	assert.Equal(t, "GSAAN-20250115-0001", all[2].OrderNumber)
	assert.Len(t, all[0].Items, 1)

	pending := model.OrderStatusPending
	filtered, err := repo.FindWithFilter(OrderFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, "GSAAN-20250115-0003", filtered[0].OrderNumber)

	searched, err := repo.FindWithFilter(OrderFilter{Search: "0002"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, model.OrderStatusShipped, searched[0].Status)

	limited, err := repo.FindWithFilter(OrderFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "GSAAN-20250115-0002", limited[0].OrderNumber)
}

func TestOrderRepository_FindBetween(t *testing.T) {
	_, repo := setupOrderTest(t)

	day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(newOrder("GSAAN-20250114-0001", model.OrderStatusPending, 100, day.Add(-time.Hour))))
	require.NoError(t, repo.Create(newOrder("GSAAN-20250115-0001", model.OrderStatusPending, 100, day.Add(3*time.Hour))))
	require.NoError(t, repo.Create(newOrder("GSAAN-20250115-0002", model.OrderStatusPending, 100, day.Add(20*time.Hour))))
	require.NoError(t, repo.Create(newOrder("GSAAN-20250116-0001", model.OrderStatusPending, 100, day.Add(25*time.Hour))))

	orders, err := repo.FindBetween(day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "GSAAN-20250115-0001", orders[0].OrderNumber)
	assert.Equal(t, "GSAAN-20250115-0002", orders[1].OrderNumber)
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	_, repo := setupOrderTest(t)

	created := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	order := newOrder("GSAAN-20250115-0001", model.OrderStatusPending, 100, created)
	require.NoError(t, repo.Create(order))

	tracking := "TRK123"
	updated, err := repo.UpdateStatus(order.ID, StatusChange{
		Status:         model.OrderStatusShipped,
		Note:           "Dispatched via courier",
		UpdatedBy:      "admin@gsaan.in",
		TrackingNumber: &tracking,
		At:             created.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusShipped, updated.Status)
	assert.Equal(t, "TRK123", updated.TrackingNumber)
	require.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, model.OrderStatusShipped, updated.StatusHistory[1].Status)
	assert.Equal(t, "admin@gsaan.in", updated.StatusHistory[1].UpdatedBy)

	// Backwards moves are allowed.
	updated, err = repo.UpdateStatus(order.ID, StatusChange{Status: model.OrderStatusPending, At: created.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, updated.Status)
	assert.Equal(t, "TRK123", updated.TrackingNumber)
	assert.Len(t, updated.StatusHistory, 3)

	_, err = repo.UpdateStatus(9999, StatusChange{Status: model.OrderStatusConfirmed})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_MarkWhatsAppSent(t *testing.T) {
	_, repo := setupOrderTest(t)

	order := newOrder("GSAAN-20250115-0001", model.OrderStatusPending, 100, time.Now())
	require.NoError(t, repo.Create(order))
	require.NoError(t, repo.MarkWhatsAppSent(order.ID))

	found, err := repo.FindByID(order.ID)
	require.NoError(t, err)
	assert.True(t, found.WhatsAppMessageSent)
}

func TestOrderRepository_GetStats(t *testing.T) {
	_, repo := setupOrderTest(t)

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, model.OrderStats{}, *stats)

	now := time.Now()
	require.NoError(t, repo.Create(newOrder("GSAAN-20250115-0001", model.OrderStatusPending, 100, now)))
	require.NoError(t, repo.Create(newOrder("GSAAN-20250115-0002", model.OrderStatusDelivered, 250, now)))
	require.NoError(t, repo.Create(newOrder("GSAAN-20250115-0003", model.OrderStatusDelivered, 300, now)))
	require.NoError(t, repo.Create(newOrder("GSAAN-20250115-0004", model.OrderStatusCancelled, 999, now)))

	stats, err = repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(2), stats.Delivered)
	assert.Equal(t, int64(1), stats.Cancelled)
	assert.Equal(t, int64(550), stats.Revenue)
}
