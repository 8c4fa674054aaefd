package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/storefront-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/storefront-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/order"
	"github.com/jsamuelsen11/storefront-service/mocks"
)

func newOrderHandler(t *testing.T) (*handlers.OrderHandler, *mocks.MockOrderService) {
	t.Helper()
	svc := mocks.NewMockOrderService(t)
	return handlers.NewOrderHandler(svc), svc
}

// --- listings ---

func TestListOrders_Success(t *testing.T) {
	t.Parallel()
	h, svc := newOrderHandler(t)

	want := domain.PageRequest{Page: 0, Size: 1, Sort: domain.Sort{Field: "totalAmount", Direction: domain.Asc}}
	svc.EXPECT().ListOrders(mock.Anything, order.Filter{}, want).
		Return(domain.NewPage([]order.Order{validOrder()}, 3, want), nil)

	rec := httptest.NewRecorder()
	h.ListOrders(rec, httptest.NewRequest(http.MethodGet, "/orders?size=1&sort=totalAmount,ASC", nil))

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.PageResponse[dto.OrderResponse]](t, rec)
	if len(resp.Items) != 1 || resp.TotalPages != 3 {
		t.Errorf("page = %+v", resp)
	}
	if resp.Items[0].TotalAmount != "20.00" {
		t.Errorf("TotalAmount = %q, want 20.00", resp.Items[0].TotalAmount)
	}
}

func TestListByUser(t *testing.T) {
	t.Parallel()
	h, svc := newOrderHandler(t)

	svc.EXPECT().ListOrders(mock.Anything, order.Filter{UserID: int64Ptr(7)}, mock.Anything).
		Return(domain.NewPage[order.Order](nil, 0, domain.DefaultPageRequest(order.DefaultSort)), nil)

	rec := httptest.NewRecorder()
	req := withChiParams(httptest.NewRequest(http.MethodGet, "/orders/user/7", nil), map[string]string{"userId": "7"})
	h.ListByUser(rec, req)

	requireStatus(t, rec, http.StatusOK)
}

func TestListByUser_InvalidID(t *testing.T) {
	t.Parallel()
	h, _ := newOrderHandler(t)

	rec := httptest.NewRecorder()
	req := withChiParams(httptest.NewRequest(http.MethodGet, "/orders/user/x", nil), map[string]string{"userId": "x"})
	h.ListByUser(rec, req)

	requireStatus(t, rec, http.StatusBadRequest)
	requireProblemLocations(t, rec, "path.userId")
}

func TestListByUser_PathAndQueryErrorsAggregated(t *testing.T) {
	t.Parallel()
	h, _ := newOrderHandler(t)

	rec := httptest.NewRecorder()
	req := withChiParams(httptest.NewRequest(http.MethodGet, "/orders/user/x?size=0", nil), map[string]string{"userId": "x"})
	h.ListByUser(rec, req)

	requireStatus(t, rec, http.StatusBadRequest)
	requireProblemLocations(t, rec, "path.userId", "query.size")
}

func TestListByStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     string
		want       order.Status
		wantStatus int
	}{
		{name: "upper case", status: "SHIPPED", want: order.StatusShipped, wantStatus: http.StatusOK},
		{name: "lower case", status: "cancelled", want: order.StatusCancelled, wantStatus: http.StatusOK},
		{name: "unknown", status: "LOST", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, svc := newOrderHandler(t)

			if tt.wantStatus == http.StatusOK {
				svc.EXPECT().ListOrders(mock.Anything, order.Filter{Status: tt.want}, mock.Anything).
					Return(domain.NewPage[order.Order](nil, 0, domain.DefaultPageRequest(order.DefaultSort)), nil)
			}

			rec := httptest.NewRecorder()
			req := withChiParams(httptest.NewRequest(http.MethodGet, "/orders/status/"+tt.status, nil),
				map[string]string{"status": tt.status})
			h.ListByStatus(rec, req)

			requireStatus(t, rec, tt.wantStatus)
		})
	}
}

// --- CreateOrder ---

func TestCreateOrder_Success(t *testing.T) {
	t.Parallel()
	h, svc := newOrderHandler(t)

	created := validOrder()
	svc.EXPECT().CreateOrder(mock.Anything, mock.MatchedBy(func(o *order.Order) bool {
		return o.UserID == 1 && len(o.Items) == 1 && o.Items[0].Quantity == 2 && o.OrderNumber == ""
	})).Return(&created, nil)

	body := strings.NewReader(`{"userId":1,"items":[{"productId":1,"quantity":2,"unitPrice":"10.00","subtotal":"1"}]}`)
	rec := httptest.NewRecorder()
	h.CreateOrder(rec, httptest.NewRequest(http.MethodPost, "/orders", body))

	requireStatus(t, rec, http.StatusCreated)
	resp := decodeJSON[dto.OrderResponse](t, rec)
	if resp.Items[0].Subtotal != "20.00" {
		t.Errorf("Subtotal = %q, want 20.00", resp.Items[0].Subtotal)
	}
}

func TestCreateOrder_AggregatesViolations(t *testing.T) {
	t.Parallel()
	h, _ := newOrderHandler(t)

	body := strings.NewReader(`{"items":[{"productId":1,"quantity":0,"unitPrice":"10.00"},{"quantity":1,"unitPrice":"0"}]}`)
	rec := httptest.NewRecorder()
	h.CreateOrder(rec, httptest.NewRequest(http.MethodPost, "/orders", body))

	requireStatus(t, rec, http.StatusBadRequest)
	requireProblemLocations(t, rec,
		"body.userId",
		"body.items[0].quantity",
		"body.items[1].productId",
		"body.items[1].unitPrice",
	)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	t.Parallel()
	h, svc := newOrderHandler(t)

	svc.EXPECT().CreateOrder(mock.Anything, mock.Anything).
		Return(nil, domain.NotFound("product", 42))

	body := strings.NewReader(`{"userId":1,"items":[{"productId":42,"quantity":1,"unitPrice":"1"}]}`)
	rec := httptest.NewRecorder()
	h.CreateOrder(rec, httptest.NewRequest(http.MethodPost, "/orders", body))

	requireStatus(t, rec, http.StatusNotFound)
}

// --- lookups ---

func TestGetOrderByNumber(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		number     string
		err        error
		wantStatus int
	}{
		{name: "found", number: "ORD-1", wantStatus: http.StatusOK},
		{
			name:       "unknown number",
			number:     "XYZ",
			err:        &domain.NotFoundError{Resource: order.Resource, Key: "orderNumber", Value: "XYZ"},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, svc := newOrderHandler(t)

			if tt.err != nil {
				svc.EXPECT().GetOrderByNumber(mock.Anything, tt.number).Return(nil, tt.err)
			} else {
				o := validOrder()
				svc.EXPECT().GetOrderByNumber(mock.Anything, tt.number).Return(&o, nil)
			}

			rec := httptest.NewRecorder()
			req := withChiParams(httptest.NewRequest(http.MethodGet, "/orders/order-number/"+tt.number, nil),
				map[string]string{"orderNumber": tt.number})
			h.GetOrderByNumber(rec, req)

			requireStatus(t, rec, tt.wantStatus)
		})
	}
}

func TestGetOrder_Success(t *testing.T) {
	t.Parallel()
	h, svc := newOrderHandler(t)

	o := validOrder()
	svc.EXPECT().GetOrder(mock.Anything, int64(1)).Return(&o, nil)

	rec := httptest.NewRecorder()
	req := withChiParams(httptest.NewRequest(http.MethodGet, "/orders/1", nil), map[string]string{"id": "1"})
	h.GetOrder(rec, req)

	requireStatus(t, rec, http.StatusOK)
	if resp := decodeJSON[dto.OrderResponse](t, rec); resp.OrderNumber != "ORD-1" {
		t.Errorf("OrderNumber = %q, want ORD-1", resp.OrderNumber)
	}
}

// --- mutations ---

func TestUpdateOrder_Success(t *testing.T) {
	t.Parallel()
	h, svc := newOrderHandler(t)

	updated := validOrder()
	svc.EXPECT().UpdateOrder(mock.Anything, int64(1), mock.AnythingOfType("*order.Order")).
		Return(&updated, nil)

	body := strings.NewReader(`{"userId":1,"items":[{"productId":1,"quantity":2,"unitPrice":"10"}]}`)
	rec := httptest.NewRecorder()
	req := withChiParams(httptest.NewRequest(http.MethodPut, "/orders/1", body), map[string]string{"id": "1"})
	h.UpdateOrder(rec, req)

	requireStatus(t, rec, http.StatusOK)
}

func TestUpdateOrderStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		id         string
		query      string
		setup      func(svc *mocks.MockOrderService)
		wantStatus int
		wantLocs   []string
	}{
		{
			name:  "any status accepted",
			query: "?status=delivered",
			setup: func(svc *mocks.MockOrderService) {
				o := validOrder()
				o.Status = order.StatusDelivered
				svc.EXPECT().UpdateOrderStatus(mock.Anything, int64(1), order.StatusDelivered).Return(&o, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing status",
			query:      "",
			setup:      func(_ *mocks.MockOrderService) {},
			wantStatus: http.StatusBadRequest,
			wantLocs:   []string{"query.status"},
		},
		{
			name:       "unknown status",
			query:      "?status=LOST",
			setup:      func(_ *mocks.MockOrderService) {},
			wantStatus: http.StatusBadRequest,
			wantLocs:   []string{"query.status"},
		},
		{
			name:  "order not found",
			query: "?status=SHIPPED",
			setup: func(svc *mocks.MockOrderService) {
				svc.EXPECT().UpdateOrderStatus(mock.Anything, int64(1), order.StatusShipped).
					Return(nil, domain.NotFound(order.Resource, 1))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "bad id and bad status reported together",
			id:         "abc",
			query:      "?status=bogus",
			setup:      func(_ *mocks.MockOrderService) {},
			wantStatus: http.StatusBadRequest,
			wantLocs:   []string{"path.id", "query.status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, svc := newOrderHandler(t)
			tt.setup(svc)

			id := tt.id
			if id == "" {
				id = "1"
			}
			rec := httptest.NewRecorder()
			req := withChiParams(httptest.NewRequest(http.MethodPut, "/orders/"+id+"/status"+tt.query, nil),
				map[string]string{"id": id})
			h.UpdateOrderStatus(rec, req)

			requireStatus(t, rec, tt.wantStatus)
			if len(tt.wantLocs) > 0 {
				resp := requireProblemLocations(t, rec, tt.wantLocs...)
				if len(resp.Errors) != len(tt.wantLocs) {
					t.Errorf("errors = %+v, want %v", resp.Errors, tt.wantLocs)
				}
			}
		})
	}
}

func TestDeleteOrder_NotFound(t *testing.T) {
	t.Parallel()
	h, svc := newOrderHandler(t)

	svc.EXPECT().DeleteOrder(mock.Anything, int64(5)).Return(domain.NotFound(order.Resource, 5))

	rec := httptest.NewRecorder()
	req := withChiParams(httptest.NewRequest(http.MethodDelete, "/orders/5", nil), map[string]string{"id": "5"})
	h.DeleteOrder(rec, req)

	requireStatus(t, rec, http.StatusNotFound)
}
