package guarded

import (
	"context"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/order"
	"github.com/jsamuelsen11/storefront-service/internal/platform/breaker"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

var _ ports.OrderRepository = (*OrderRepository)(nil)

// OrderRepository guards a ports.OrderRepository.
type OrderRepository struct {
	next ports.OrderRepository
	b    *breaker.Breaker
}

// NewOrderRepository wraps next with b.
func NewOrderRepository(next ports.OrderRepository, b *breaker.Breaker) *OrderRepository {
	return &OrderRepository{next: next, b: b}
}

func (r *OrderRepository) List(ctx context.Context, filter order.Filter, req domain.PageRequest) (domain.Page[order.Order], error) {
	return breaker.Execute(ctx, r.b, "order.list", func(ctx context.Context) (domain.Page[order.Order], error) {
		return r.next.List(ctx, filter, req)
	})
}

func (r *OrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	return breaker.Execute(ctx, r.b, "order.get", func(ctx context.Context) (*order.Order, error) {
		return r.next.Get(ctx, id)
	})
}

func (r *OrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	return breaker.Execute(ctx, r.b, "order.get_by_number", func(ctx context.Context) (*order.Order, error) {
		return r.next.GetByNumber(ctx, orderNumber)
	})
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	return breaker.Execute(ctx, r.b, "order.create", func(ctx context.Context) (*order.Order, error) {
		return r.next.Create(ctx, o)
	})
}

func (r *OrderRepository) Update(ctx context.Context, id int64, o *order.Order) (*order.Order, error) {
	return breaker.Execute(ctx, r.b, "order.update", func(ctx context.Context) (*order.Order, error) {
		return r.next.Update(ctx, id, o)
	})
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error) {
	return breaker.Execute(ctx, r.b, "order.update_status", func(ctx context.Context) (*order.Order, error) {
		return r.next.UpdateStatus(ctx, id, status)
	})
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	return breaker.Do(ctx, r.b, "order.delete", func(ctx context.Context) error {
		return r.next.Delete(ctx, id)
	})
}
