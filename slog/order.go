package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/bookhaven"
)

var _ bookhaven.OrderService = (*LoggingOrderService)(nil)

// LoggingOrderService wraps an OrderService and logs writes.
type LoggingOrderService struct {
	next   bookhaven.OrderService
	logger *slog.Logger
}

// NewLoggingOrderService creates a new LoggingOrderService.
func NewLoggingOrderService(next bookhaven.OrderService, logger *slog.Logger) *LoggingOrderService {
	return &LoggingOrderService{next: next, logger: logger}
}

// CreateOrder logs the stored order without customer contact details.
func (s *LoggingOrderService) CreateOrder(ctx context.Context, order *bookhaven.Order) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("create order",
			"order_id", order.ID,
			"items", len(order.Items),
			"total", order.Total.StringFixed(2),
			"payment", string(order.Payment),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateOrder(ctx, order)
}

// FindOrderByID delegates to the wrapped service.
func (s *LoggingOrderService) FindOrderByID(ctx context.Context, id string) (*bookhaven.Order, error) {
	return s.next.FindOrderByID(ctx, id)
}

// FindOrders delegates to the wrapped service.
func (s *LoggingOrderService) FindOrders(ctx context.Context, filter bookhaven.OrderFilter) ([]*bookhaven.Order, error) {
	return s.next.FindOrders(ctx, filter)
}
