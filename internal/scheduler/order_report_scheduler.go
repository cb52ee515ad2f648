package scheduler

import (
	"bytes"
	"context"
	"time"

	"github.com/gsaan/gsaan-backend/internal/app/model"
	"github.com/gsaan/gsaan-backend/internal/report"
	"github.com/gsaan/gsaan-backend/internal/storage"
	"github.com/gsaan/gsaan-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// DefaultOrderReportSpec runs shortly after midnight shop time.
const DefaultOrderReportSpec = "5 0 * * *"

// OrderSource is the order query the report needs.
type OrderSource interface {
	OrdersBetween(from, to time.Time) ([]model.Order, error)
}

// OrderReportScheduler writes the previous day's orders to the object store
// as a spreadsheet.
type OrderReportScheduler struct {
	cron    *cron.Cron
	orders  OrderSource
	objects storage.ObjectStore
	loc     *time.Location
	spec    string
	now     func() time.Time
}

func NewOrderReportScheduler(orders OrderSource, objects storage.ObjectStore, loc *time.Location, spec string) *OrderReportScheduler {
	if loc == nil {
		loc = time.UTC
	}
	if spec == "" {
		spec = DefaultOrderReportSpec
	}
	return &OrderReportScheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		orders:  orders,
		objects: objects,
		loc:     loc,
		spec:    spec,
		now:     time.Now,
	}
}

func (s *OrderReportScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		yesterday := s.now().In(s.loc).AddDate(0, 0, -1)
		if _, err := s.RunReport(context.Background(), yesterday); err != nil {
			logger.Error("Scheduled order report failed", err, map[string]interface{}{
				"day": yesterday.Format("2006-01-02"),
			})
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for order report", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Order report scheduler started", map[string]interface{}{
		"spec":     s.spec,
		"timezone": s.loc.String(),
	})
	return nil
}

// Stop waits for a running report to finish.
func (s *OrderReportScheduler) Stop() {
	logger.Info("Stopping order report scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Order report scheduler stopped")
}

// RunReport exports the orders placed on day (shop time) and returns the
// object URL.
func (s *OrderReportScheduler) RunReport(ctx context.Context, day time.Time) (string, error) {
	day = day.In(s.loc)
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 0, 1)

	orders, err := s.orders.OrdersBetween(from, to)
	if err != nil {
		return "", err
	}

	data, err := report.OrdersXLSX(orders, s.loc)
	if err != nil {
		return "", err
	}

	key := storage.ReportKey(report.OrdersFilename(from))
	url, err := s.objects.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), report.ContentType)
	if err != nil {
		return "", err
	}

	var revenue int64
	for _, o := range orders {
		if o.Status != model.OrderStatusCancelled {
			revenue += o.Total
		}
	}

	logger.Info("Daily order report stored", map[string]interface{}{
		"day":     from.Format("2006-01-02"),
		"orders":  len(orders),
		"revenue": revenue,
		"key":     key,
	})
	return url, nil
}
