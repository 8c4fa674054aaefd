package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/order"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/domain/user"
	"github.com/jsamuelsen11/storefront-service/mocks"
)

type orderMocks struct {
	orders   *mocks.MockOrderRepository
	users    *mocks.MockUserRepository
	products *mocks.MockProductRepository
	events   *mocks.MockOrderEventPublisher
}

func newOrderService(t *testing.T) (*OrderService, orderMocks) {
	t.Helper()

	m := orderMocks{
		orders:   mocks.NewMockOrderRepository(t),
		users:    mocks.NewMockUserRepository(t),
		products: mocks.NewMockProductRepository(t),
		events:   mocks.NewMockOrderEventPublisher(t),
	}
	svc := NewOrderService(m.orders, m.users, m.products, m.events, 2, testLogger())
	svc.now = func() time.Time { return fixedTime }
	svc.newOrderNumber = func() string { return "ORD-GENERATED" }
	return svc, m
}

func newOrderInput() *order.Order {
	return &order.Order{
		UserID: 7,
		Items: []order.Item{
			{ProductID: 1, Quantity: 1, UnitPrice: money("10.00"), Subtotal: money("999")},
			{ProductID: 2, Quantity: 3, UnitPrice: money("2.50")},
		},
		TotalAmount: money("1"),
	}
}

func expectLookups(m orderMocks) {
	u := validUser()
	m.users.EXPECT().Get(mock.Anything, int64(7)).Return(&u, nil)
	m.products.EXPECT().Get(mock.Anything, int64(1)).Return(&product.Product{ID: 1, Name: "Keyboard"}, nil)
	m.products.EXPECT().Get(mock.Anything, int64(2)).Return(&product.Product{ID: 2, Name: "Mouse"}, nil)
}

func TestOrderService_CreateOrder(t *testing.T) {
	t.Parallel()

	t.Run("derives amounts and defaults", func(t *testing.T) {
		t.Parallel()
		svc, m := newOrderService(t)
		expectLookups(m)

		var stored *order.Order
		m.orders.EXPECT().Create(mock.Anything, mock.AnythingOfType("*order.Order")).
			RunAndReturn(func(_ context.Context, o *order.Order) (*order.Order, error) {
				stored = o
				out := *o
				out.ID = 100
				return &out, nil
			})
		m.events.EXPECT().PublishOrderEvent(mock.Anything, mock.MatchedBy(func(e order.Event) bool {
			return e.Type == order.EventCreated && e.OrderID == 100 && e.OccurredAt.Equal(fixedTime)
		})).Return(nil)

		got, err := svc.CreateOrder(context.Background(), newOrderInput())
		if err != nil {
			t.Fatalf("CreateOrder() error = %v", err)
		}
		if got.ID != 100 {
			t.Errorf("ID = %d, want 100", got.ID)
		}
		if stored.OrderNumber != "ORD-GENERATED" {
			t.Errorf("OrderNumber = %q, want generated", stored.OrderNumber)
		}
		if stored.Status != order.StatusPending {
			t.Errorf("Status = %q, want PENDING", stored.Status)
		}
		if !stored.Items[0].Subtotal.Equal(money("10.00")) {
			t.Errorf("Items[0].Subtotal = %s, want 10.00", stored.Items[0].Subtotal)
		}
		if !stored.Items[1].Subtotal.Equal(money("7.50")) {
			t.Errorf("Items[1].Subtotal = %s, want 7.50", stored.Items[1].Subtotal)
		}
		if !stored.TotalAmount.Equal(money("17.50")) {
			t.Errorf("TotalAmount = %s, want 17.50", stored.TotalAmount)
		}
		if stored.Items[0].ProductName != "Keyboard" || stored.Items[1].ProductName != "Mouse" {
			t.Errorf("product names not denormalized: %+v", stored.Items)
		}
	})

	t.Run("keeps client order number", func(t *testing.T) {
		t.Parallel()
		svc, m := newOrderService(t)
		expectLookups(m)

		m.orders.EXPECT().Create(mock.Anything, mock.MatchedBy(func(o *order.Order) bool {
			return o.OrderNumber == "ORD-CLIENT"
		})).RunAndReturn(func(_ context.Context, o *order.Order) (*order.Order, error) { return o, nil })
		m.events.EXPECT().PublishOrderEvent(mock.Anything, mock.Anything).Return(nil)

		in := newOrderInput()
		in.OrderNumber = "ORD-CLIENT"
		if _, err := svc.CreateOrder(context.Background(), in); err != nil {
			t.Fatalf("CreateOrder() error = %v", err)
		}
	})

	t.Run("validation aggregates and skips storage", func(t *testing.T) {
		t.Parallel()
		svc, m := newOrderService(t)

		in := &order.Order{Items: []order.Item{{Quantity: 0, UnitPrice: money("0")}}}
		_, err := svc.CreateOrder(context.Background(), in)
		requireValidationFields(t, err, "userId", "items[0].productId", "items[0].quantity", "items[0].unitPrice")
		m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m.users.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		t.Parallel()
		svc, m := newOrderService(t)

		m.users.EXPECT().Get(mock.Anything, int64(7)).Return(nil, domain.NotFound(user.Resource, 7))

		_, err := svc.CreateOrder(context.Background(), newOrderInput())
		requireErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown product is not found", func(t *testing.T) {
		t.Parallel()
		svc, m := newOrderService(t)

		u := validUser()
		m.users.EXPECT().Get(mock.Anything, int64(7)).Return(&u, nil)
		m.products.EXPECT().Get(mock.Anything, int64(1)).Return(&product.Product{ID: 1, Name: "Keyboard"}, nil)
		m.products.EXPECT().Get(mock.Anything, int64(2)).Return(nil, domain.NotFound(product.Resource, 2))

		_, err := svc.CreateOrder(context.Background(), newOrderInput())
		requireErrorIs(t, err, domain.ErrNotFound)
		var nf *domain.NotFoundError
		if !errors.As(err, &nf) || nf.Resource != product.Resource || nf.Value != int64(2) {
			t.Errorf("NotFoundError = %+v, want product 2", nf)
		}
	})

	t.Run("duplicate order number conflicts", func(t *testing.T) {
		t.Parallel()
		svc, m := newOrderService(t)
		expectLookups(m)

		m.orders.EXPECT().Create(mock.Anything, mock.Anything).
			Return(nil, &domain.ConflictError{Resource: order.Resource, Field: "orderNumber", Value: "ORD-GENERATED"})

		_, err := svc.CreateOrder(context.Background(), newOrderInput())
		requireErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		t.Parallel()
		svc, m := newOrderService(t)
		expectLookups(m)

		m.orders.EXPECT().Create(mock.Anything, mock.Anything).
			RunAndReturn(func(_ context.Context, o *order.Order) (*order.Order, error) { return o, nil })
		m.events.EXPECT().PublishOrderEvent(mock.Anything, mock.Anything).Return(errors.New("broker down"))

		if _, err := svc.CreateOrder(context.Background(), newOrderInput()); err != nil {
			t.Fatalf("CreateOrder() error = %v, want nil", err)
		}
	})
}

func TestOrderService_UpdateOrder(t *testing.T) {
	t.Parallel()

	t.Run("keeps stored number and status when omitted", func(t *testing.T) {
		t.Parallel()
		svc, m := newOrderService(t)
		expectLookups(m)

		existing := &order.Order{ID: 5, OrderNumber: "ORD-5", UserID: 7, Status: order.StatusShipped}
		m.orders.EXPECT().Get(mock.Anything, int64(5)).Return(existing, nil)
		m.orders.EXPECT().Update(mock.Anything, int64(5), mock.MatchedBy(func(o *order.Order) bool {
			return o.OrderNumber == "ORD-5" && o.Status == order.StatusShipped && o.TotalAmount.Equal(money("17.50"))
		})).RunAndReturn(func(_ context.Context, _ int64, o *order.Order) (*order.Order, error) { return o, nil })
		m.events.EXPECT().PublishOrderEvent(mock.Anything, mock.MatchedBy(func(e order.Event) bool {
			return e.Type == order.EventUpdated
		})).Return(nil)

		if _, err := svc.UpdateOrder(context.Background(), 5, newOrderInput()); err != nil {
			t.Fatalf("UpdateOrder() error = %v", err)
		}
	})

	t.Run("missing order", func(t *testing.T) {
		t.Parallel()
		svc, m := newOrderService(t)

		m.orders.EXPECT().Get(mock.Anything, int64(5)).Return(nil, domain.NotFound(order.Resource, 5))

		_, err := svc.UpdateOrder(context.Background(), 5, newOrderInput())
		requireErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestOrderService_UpdateOrderStatus(t *testing.T) {
	t.Parallel()

	t.Run("any transition is accepted", func(t *testing.T) {
		t.Parallel()
		svc, m := newOrderService(t)

		existing := &order.Order{ID: 5, Status: order.StatusDelivered}
		updated := &order.Order{ID: 5, Status: order.StatusPending}
		m.orders.EXPECT().Get(mock.Anything, int64(5)).Return(existing, nil)
		m.orders.EXPECT().UpdateStatus(mock.Anything, int64(5), order.StatusPending).Return(updated, nil)
		m.events.EXPECT().PublishOrderEvent(mock.Anything, mock.MatchedBy(func(e order.Event) bool {
			return e.Type == order.EventStatusChanged &&
				e.PreviousStatus == order.StatusDelivered &&
				e.Status == order.StatusPending
		})).Return(nil)

		got, err := svc.UpdateOrderStatus(context.Background(), 5, order.StatusPending)
		if err != nil || got.Status != order.StatusPending {
			t.Fatalf("UpdateOrderStatus() = %v, %v", got, err)
		}
	})

	t.Run("undefined status", func(t *testing.T) {
		t.Parallel()
		svc, _ := newOrderService(t)

		_, err := svc.UpdateOrderStatus(context.Background(), 5, order.Status("LOST"))
		requireValidationFields(t, err, "status")
	})

	t.Run("missing order", func(t *testing.T) {
		t.Parallel()
		svc, m := newOrderService(t)

		m.orders.EXPECT().Get(mock.Anything, int64(5)).Return(nil, domain.NotFound(order.Resource, 5))

		_, err := svc.UpdateOrderStatus(context.Background(), 5, order.StatusShipped)
		requireErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestOrderService_DeleteOrder(t *testing.T) {
	t.Parallel()

	svc, m := newOrderService(t)

	existing := &order.Order{ID: 5, OrderNumber: "ORD-5"}
	m.orders.EXPECT().Get(mock.Anything, int64(5)).Return(existing, nil)
	m.orders.EXPECT().Delete(mock.Anything, int64(5)).Return(nil)
	m.events.EXPECT().PublishOrderEvent(mock.Anything, mock.MatchedBy(func(e order.Event) bool {
		return e.Type == order.EventDeleted && e.OrderNumber == "ORD-5"
	})).Return(nil)

	if err := svc.DeleteOrder(context.Background(), 5); err != nil {
		t.Fatalf("DeleteOrder() error = %v", err)
	}
}

func TestOrderService_Lookups(t *testing.T) {
	t.Parallel()

	svc, m := newOrderService(t)

	m.orders.EXPECT().GetByNumber(mock.Anything, "XYZ").
		Return(nil, &domain.NotFoundError{Resource: order.Resource, Key: "orderNumber", Value: "XYZ"})
	uid := int64(7)
	filter := order.Filter{UserID: &uid}
	req := domain.DefaultPageRequest(order.DefaultSort)
	m.orders.EXPECT().List(mock.Anything, filter, req).Return(domain.NewPage[order.Order](nil, 0, req), nil)

	_, err := svc.GetOrderByNumber(context.Background(), "XYZ")
	requireErrorIs(t, err, domain.ErrNotFound)

	page, err := svc.ListOrders(context.Background(), filter, req)
	if err != nil || page.Items == nil {
		t.Fatalf("ListOrders() = %+v, %v", page, err)
	}
}

func TestGenerateOrderNumber(t *testing.T) {
	t.Parallel()

	a, b := generateOrderNumber(), generateOrderNumber()
	if !strings.HasPrefix(a, order.NumberPrefix) {
		t.Errorf("generateOrderNumber() = %q, want prefix %q", a, order.NumberPrefix)
	}
	if a == b {
		t.Errorf("generateOrderNumber() returned %q twice", a)
	}
}
