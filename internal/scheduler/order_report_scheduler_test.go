package scheduler

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/report"
	"github.com/gsaan/gsaan-backend/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type recordingSource struct {
	orders   []model.Order
	err      error
	from, to time.Time
}

func (r *recordingSource) OrdersBetween(from, to time.Time) ([]model.Order, error) {
	r.from, r.to = from, to
	return r.orders, r.err
}

func TestOrderReportScheduler_RunReport(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	source := &recordingSource{orders: []model.Order{
		{OrderNumber: "GSAAN-20250115-AAAA", Status: model.OrderStatusPending, Total: 300, CreatedAt: time.Date(2025, 1, 15, 9, 0, 0, 0, ist)},
		{OrderNumber: "GSAAN-20250115-BBBB", Status: model.OrderStatusCancelled, Total: 600, CreatedAt: time.Date(2025, 1, 15, 18, 0, 0, 0, ist)},
	}}
	objects := storage.NewMemoryStorage("https://cdn.gsaan.test")
	s := NewOrderReportScheduler(source, objects, ist, "")

	url, err := s.RunReport(context.Background(), time.Date(2025, 1, 15, 23, 30, 0, 0, ist))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.gsaan.test/reports/orders-20250115.xlsx", url)

	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, ist), source.from)
	assert.Equal(t, time.Date(2025, 1, 16, 0, 0, 0, 0, ist), source.to)

	data, contentType, ok := objects.Object("reports/orders-20250115.xlsx")
	require.True(t, ok)
	assert.Equal(t, report.ContentType, contentType)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(report.OrdersSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestOrderReportScheduler_RunReport_SourceError(t *testing.T) {
	source := &recordingSource{err: errors.New("db down")}
	objects := storage.NewMemoryStorage("https://cdn.gsaan.test")
	s := NewOrderReportScheduler(source, objects, time.UTC, "")

	_, err := s.RunReport(context.Background(), time.Now())
	assert.Error(t, err)
	assert.Empty(t, objects.Keys())
}

func TestOrderReportScheduler_StartRejectsBadSpec(t *testing.T) {
	s := NewOrderReportScheduler(&recordingSource{}, storage.NewMemoryStorage(""), time.UTC, "not a cron spec")
	assert.Error(t, s.Start())
}

func TestOrderReportScheduler_StartStop(t *testing.T) {
	s := NewOrderReportScheduler(&recordingSource{}, storage.NewMemoryStorage(""), time.UTC, "")
	require.NoError(t, s.Start())
	s.Stop()
}
