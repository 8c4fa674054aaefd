package guarded

import (
	"context"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/platform/breaker"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

var _ ports.ProductRepository = (*ProductRepository)(nil)

// ProductRepository guards a ports.ProductRepository.
type ProductRepository struct {
	next ports.ProductRepository
	b    *breaker.Breaker
}

// NewProductRepository wraps next with b.
func NewProductRepository(next ports.ProductRepository, b *breaker.Breaker) *ProductRepository {
	return &ProductRepository{next: next, b: b}
}

func (r *ProductRepository) List(ctx context.Context, filter product.Filter, req domain.PageRequest) (domain.Page[product.Product], error) {
	return breaker.Execute(ctx, r.b, "product.list", func(ctx context.Context) (domain.Page[product.Product], error) {
		return r.next.List(ctx, filter, req)
	})
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*product.Product, error) {
	return breaker.Execute(ctx, r.b, "product.get", func(ctx context.Context) (*product.Product, error) {
		return r.next.Get(ctx, id)
	})
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) (*product.Product, error) {
	return breaker.Execute(ctx, r.b, "product.create", func(ctx context.Context) (*product.Product, error) {
		return r.next.Create(ctx, p)
	})
}

func (r *ProductRepository) Update(ctx context.Context, id int64, p *product.Product) (*product.Product, error) {
	return breaker.Execute(ctx, r.b, "product.update", func(ctx context.Context) (*product.Product, error) {
		return r.next.Update(ctx, id, p)
	})
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	return breaker.Do(ctx, r.b, "product.delete", func(ctx context.Context) error {
		return r.next.Delete(ctx, id)
	})
}

func (r *ProductRepository) ListLowStock(ctx context.Context, threshold int) ([]product.Product, error) {
	return breaker.Execute(ctx, r.b, "product.list_low_stock", func(ctx context.Context) ([]product.Product, error) {
		return r.next.ListLowStock(ctx, threshold)
	})
}
