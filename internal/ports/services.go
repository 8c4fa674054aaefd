package ports

import (
	"context"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/order"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/domain/user"
)

// ProductService defines the service port for catalog operations.
// Implemented by the application layer; called by inbound adapters (handlers).
type ProductService interface {
	// ListProducts returns one page of products matching filter. Name search
	// and price-range queries are expressed through the filter.
	// Returns domain.ErrValidation for a bad page request or inverted price range.
	ListProducts(ctx context.Context, filter product.Filter, req domain.PageRequest) (domain.Page[product.Product], error)

	// GetProduct returns a single product by ID.
	// Returns domain.ErrNotFound if the product does not exist.
	GetProduct(ctx context.Context, id int64) (*product.Product, error)

	// CreateProduct validates and stores a new product.
	// Returns domain.ErrValidation if the product fails validation.
	CreateProduct(ctx context.Context, p *product.Product) (*product.Product, error)

	// UpdateProduct replaces an existing product.
	// Returns domain.ErrNotFound if the product does not exist.
	UpdateProduct(ctx context.Context, id int64, p *product.Product) (*product.Product, error)

	// DeleteProduct removes a product.
	// Returns domain.ErrNotFound if the product does not exist.
	DeleteProduct(ctx context.Context, id int64) error

	// ListLowStock returns every product whose stock is strictly below
	// threshold, unpaginated.
	ListLowStock(ctx context.Context, threshold int) ([]product.Product, error)
}

// UserService defines the service port for user account operations.
type UserService interface {
	ListUsers(ctx context.Context, filter user.Filter, req domain.PageRequest) (domain.Page[user.User], error)

	// GetUser returns a single user by ID.
	// Returns domain.ErrNotFound if the user does not exist.
	GetUser(ctx context.Context, id int64) (*user.User, error)

	// GetUserByUsername returns the user owning username.
	// Returns domain.ErrNotFound if no user has that username.
	GetUserByUsername(ctx context.Context, username string) (*user.User, error)

	// CreateUser validates and stores a new user.
	// Returns domain.ErrConflict if the username is taken.
	CreateUser(ctx context.Context, u *user.User) (*user.User, error)

	// UpdateUser replaces an existing user.
	// Returns domain.ErrNotFound or domain.ErrConflict.
	UpdateUser(ctx context.Context, id int64, u *user.User) (*user.User, error)

	DeleteUser(ctx context.Context, id int64) error
}

// OrderService defines the service port for order operations.
type OrderService interface {
	// ListOrders returns one page of orders, optionally narrowed to a user
	// or a status.
	ListOrders(ctx context.Context, filter order.Filter, req domain.PageRequest) (domain.Page[order.Order], error)

	// GetOrder returns a single order with its items.
	// Returns domain.ErrNotFound if the order does not exist.
	GetOrder(ctx context.Context, id int64) (*order.Order, error)

	// GetOrderByNumber returns the order carrying orderNumber.
	// Returns domain.ErrNotFound if no order has that number.
	GetOrderByNumber(ctx context.Context, orderNumber string) (*order.Order, error)

	// CreateOrder resolves the referenced user and products, computes item
	// subtotals and the total, then stores the order.
	// Returns domain.ErrValidation, domain.ErrNotFound for an unknown user or
	// product, or domain.ErrConflict for a duplicate order number.
	CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error)

	// UpdateOrder replaces an existing order, recomputing derived amounts.
	UpdateOrder(ctx context.Context, id int64, o *order.Order) (*order.Order, error)

	// UpdateOrderStatus overwrites the status of an order. Any defined status
	// is accepted regardless of the current one.
	UpdateOrderStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error)

	DeleteOrder(ctx context.Context, id int64) error
}
