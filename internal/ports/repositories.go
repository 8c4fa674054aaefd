package ports

import (
	"context"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/order"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/domain/user"
)

// ProductRepository is the storage port for products. Implementations assign
// IDs and timestamps, apply filter, sort and paging, and report missing rows
// as *domain.NotFoundError.
type ProductRepository interface {
	List(ctx context.Context, filter product.Filter, req domain.PageRequest) (domain.Page[product.Product], error)
	Get(ctx context.Context, id int64) (*product.Product, error)
	Create(ctx context.Context, p *product.Product) (*product.Product, error)
	Update(ctx context.Context, id int64, p *product.Product) (*product.Product, error)
	Delete(ctx context.Context, id int64) error

	// ListLowStock returns products with stock strictly below threshold,
	// ordered by stock ascending then id.
	ListLowStock(ctx context.Context, threshold int) ([]product.Product, error)
}

// UserRepository is the storage port for users. Username uniqueness is
// enforced here and reported as *domain.ConflictError.
type UserRepository interface {
	List(ctx context.Context, filter user.Filter, req domain.PageRequest) (domain.Page[user.User], error)
	Get(ctx context.Context, id int64) (*user.User, error)
	GetByUsername(ctx context.Context, username string) (*user.User, error)
	Create(ctx context.Context, u *user.User) (*user.User, error)
	Update(ctx context.Context, id int64, u *user.User) (*user.User, error)
	Delete(ctx context.Context, id int64) error
}

// OrderRepository is the storage port for orders and their items. An order
// and its items are written atomically. Order number uniqueness is reported
// as *domain.ConflictError.
type OrderRepository interface {
	List(ctx context.Context, filter order.Filter, req domain.PageRequest) (domain.Page[order.Order], error)
	Get(ctx context.Context, id int64) (*order.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*order.Order, error)
	Create(ctx context.Context, o *order.Order) (*order.Order, error)
	Update(ctx context.Context, id int64, o *order.Order) (*order.Order, error)
	UpdateStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error)
	Delete(ctx context.Context, id int64) error
}

// OrderEventPublisher emits order lifecycle events to downstream consumers.
type OrderEventPublisher interface {
	PublishOrderEvent(ctx context.Context, event order.Event) error
}
