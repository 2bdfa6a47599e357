package mock

import (
	"context"

	"github.com/fwojciec/bookhaven"
)

var _ bookhaven.OrderService = (*OrderService)(nil)

// OrderService is a mock implementation of bookhaven.OrderService.
type OrderService struct {
	CreateOrderFn   func(ctx context.Context, order *bookhaven.Order) error
	FindOrderByIDFn func(ctx context.Context, id string) (*bookhaven.Order, error)
	FindOrdersFn    func(ctx context.Context, filter bookhaven.OrderFilter) ([]*bookhaven.Order, error)
}

func (s *OrderService) CreateOrder(ctx context.Context, order *bookhaven.Order) error {
	return s.CreateOrderFn(ctx, order)
}

func (s *OrderService) FindOrderByID(ctx context.Context, id string) (*bookhaven.Order, error) {
	return s.FindOrderByIDFn(ctx, id)
}

func (s *OrderService) FindOrders(ctx context.Context, filter bookhaven.OrderFilter) ([]*bookhaven.Order, error) {
	return s.FindOrdersFn(ctx, filter)
}
