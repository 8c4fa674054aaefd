// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port interfaces.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen11/storefront-service/internal/app/fanout"
	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/order"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

// DefaultLookupWorkers bounds concurrent product lookups when the caller
// passes a non-positive worker count.
const DefaultLookupWorkers = 4

// Compile-time check that OrderService implements ports.OrderService.
var _ ports.OrderService = (*OrderService)(nil)

// OrderService implements ports.OrderService. It resolves the user and
// products an order references, derives item subtotals and the order total,
// persists through the OrderRepository and emits lifecycle events.
// Event publishing is best-effort: a failed publish is logged and does not
// fail the request.
type OrderService struct {
	orders        ports.OrderRepository
	users         ports.UserRepository
	products      ports.ProductRepository
	events        ports.OrderEventPublisher
	lookupWorkers int
	logger        *slog.Logger

	now            func() time.Time
	newOrderNumber func() string
}

// NewOrderService creates an OrderService. lookupWorkers caps the number of
// concurrent product lookups performed per order.
func NewOrderService(
	orders ports.OrderRepository,
	users ports.UserRepository,
	products ports.ProductRepository,
	events ports.OrderEventPublisher,
	lookupWorkers int,
	logger *slog.Logger,
) *OrderService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if lookupWorkers < 1 {
		lookupWorkers = DefaultLookupWorkers
	}
	return &OrderService{
		orders:         orders,
		users:          users,
		products:       products,
		events:         events,
		lookupWorkers:  lookupWorkers,
		logger:         logger,
		now:            time.Now,
		newOrderNumber: generateOrderNumber,
	}
}

func generateOrderNumber() string {
	return order.NumberPrefix + strings.ToUpper(uuid.NewString())
}

// ListOrders returns one page of orders matching filter.
func (s *OrderService) ListOrders(ctx context.Context, filter order.Filter, req domain.PageRequest) (domain.Page[order.Order], error) {
	s.logger.InfoContext(ctx, "listing orders",
		slog.Int("page", req.Page),
		slog.Int("size", req.Size),
		slog.String("sort", req.Sort.String()),
		slog.String("status", filter.Status.String()),
	)

	if err := req.Validate(order.SortFields); err != nil {
		return domain.Page[order.Order]{}, err
	}

	page, err := s.orders.List(ctx, filter, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list orders",
			slog.String("operation", "ListOrders"),
			slog.Any("error", err),
		)
		return domain.Page[order.Order]{}, err
	}

	return page, nil
}

// GetOrder returns a single order by ID.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	s.logger.InfoContext(ctx, "fetching order", slog.Int64("id", id))

	o, err := s.orders.Get(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch order",
			slog.String("operation", "GetOrder"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return o, nil
}

// GetOrderByNumber returns the order carrying orderNumber.
func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	s.logger.InfoContext(ctx, "fetching order by number", slog.String("order_number", orderNumber))

	o, err := s.orders.GetByNumber(ctx, orderNumber)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch order by number",
			slog.String("operation", "GetOrderByNumber"),
			slog.String("order_number", orderNumber),
			slog.Any("error", err),
		)
		return nil, err
	}

	return o, nil
}

// CreateOrder fills defaults, validates, resolves references, derives the
// money fields and stores the order.
func (s *OrderService) CreateOrder(ctx context.Context, o *order.Order) (*order.Order, error) {
	if o.OrderNumber == "" {
		o.OrderNumber = s.newOrderNumber()
	}
	if o.Status == "" {
		o.Status = order.StatusPending
	}

	s.logger.InfoContext(ctx, "creating order",
		slog.String("order_number", o.OrderNumber),
		slog.Int64("user_id", o.UserID),
		slog.Int("items", len(o.Items)),
	)

	if err := o.Validate(); err != nil {
		return nil, err
	}

	if err := s.prepare(ctx, "CreateOrder", o); err != nil {
		return nil, err
	}

	created, err := s.orders.Create(ctx, o)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create order",
			slog.String("operation", "CreateOrder"),
			slog.String("order_number", o.OrderNumber),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.publish(ctx, order.NewEvent(order.EventCreated, created, s.now()))
	return created, nil
}

// UpdateOrder replaces an existing order. An omitted order number or status
// keeps the stored value.
func (s *OrderService) UpdateOrder(ctx context.Context, id int64, o *order.Order) (*order.Order, error) {
	s.logger.InfoContext(ctx, "updating order", slog.Int64("id", id))

	existing, err := s.orders.Get(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch order for update",
			slog.String("operation", "UpdateOrder"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}
	if o.OrderNumber == "" {
		o.OrderNumber = existing.OrderNumber
	}
	if o.Status == "" {
		o.Status = existing.Status
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}

	if err := s.prepare(ctx, "UpdateOrder", o); err != nil {
		return nil, err
	}

	updated, err := s.orders.Update(ctx, id, o)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update order",
			slog.String("operation", "UpdateOrder"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.publish(ctx, order.NewEvent(order.EventUpdated, updated, s.now()))
	return updated, nil
}

// UpdateOrderStatus overwrites the order status without checking the
// transition.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error) {
	s.logger.InfoContext(ctx, "updating order status",
		slog.Int64("id", id),
		slog.String("status", status.String()),
	)

	if !status.IsValid() {
		verr := domain.NewValidationError(domain.LocationQuery)
		verr.Invalid("status", fmt.Sprintf("invalid: %q", status))
		return nil, verr
	}

	existing, err := s.orders.Get(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch order for status update",
			slog.String("operation", "UpdateOrderStatus"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	updated, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update order status",
			slog.String("operation", "UpdateOrderStatus"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	event := order.NewEvent(order.EventStatusChanged, updated, s.now())
	event.PreviousStatus = existing.Status
	s.publish(ctx, event)
	return updated, nil
}

// DeleteOrder removes an order and its items.
func (s *OrderService) DeleteOrder(ctx context.Context, id int64) error {
	s.logger.InfoContext(ctx, "deleting order", slog.Int64("id", id))

	existing, err := s.orders.Get(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch order for delete",
			slog.String("operation", "DeleteOrder"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return err
	}

	if err := s.orders.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete order",
			slog.String("operation", "DeleteOrder"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return err
	}

	s.publish(ctx, order.NewEvent(order.EventDeleted, existing, s.now()))
	return nil
}

// prepare checks that the user and every product exist, denormalizes product
// names onto the items and recomputes subtotals and the total.
func (s *OrderService) prepare(ctx context.Context, operation string, o *order.Order) error {
	if _, err := s.users.Get(ctx, o.UserID); err != nil {
		s.logger.ErrorContext(ctx, "failed to resolve order user",
			slog.String("operation", operation),
			slog.Int64("user_id", o.UserID),
			slog.Any("error", err),
		)
		return fmt.Errorf("resolving user: %w", err)
	}

	names, err := s.lookupProducts(ctx, o.ProductIDs())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to resolve order products",
			slog.String("operation", operation),
			slog.Any("error", err),
		)
		return fmt.Errorf("resolving products: %w", err)
	}

	for i := range o.Items {
		o.Items[i].ProductName = names[o.Items[i].ProductID]
	}
	o.ComputeTotals()
	return nil
}

// lookupProducts fetches each product concurrently and returns their names
// keyed by id. The first failure in input order is returned.
func (s *OrderService) lookupProducts(ctx context.Context, ids []int64) (map[int64]string, error) {
	results := fanout.Run(ctx, s.lookupWorkers, ids, func(ctx context.Context, id int64) (*product.Product, error) {
		return s.products.Get(ctx, id)
	})

	if err := fanout.FirstErr(results); err != nil {
		return nil, err
	}

	names := make(map[int64]string, len(ids))
	for i, r := range results {
		names[ids[i]] = r.Value.Name
	}
	return names, nil
}

func (s *OrderService) publish(ctx context.Context, event order.Event) {
	if err := s.events.PublishOrderEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish order event",
			slog.String("event_type", string(event.Type)),
			slog.Int64("order_id", event.OrderID),
			slog.Any("error", err),
		)
	}
}
