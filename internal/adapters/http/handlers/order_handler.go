package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/storefront-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/order"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service ports.OrderService
}

// NewOrderHandler creates a new OrderHandler with the given service port.
func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// ListOrders handles GET /orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, order.Filter{}, nil)
}

// ListByUser handles GET /orders/user/{userId}.
func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(r, "userId")
	h.list(w, r, order.Filter{UserID: &userID}, err)
}

// ListByStatus handles GET /orders/status/{status}. The status is matched
// case-insensitively.
func (h *OrderHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status, err := order.ParseStatus(chi.URLParam(r, "status"), domain.LocationPath, "status")
	h.list(w, r, order.Filter{Status: status}, err)
}

// CreateOrder handles POST /orders. Subtotals and the total are computed by
// the service; an omitted order number is generated.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.OrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.service.CreateOrder(r.Context(), req.ToOrder())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.ToOrderResponse(created))
}

// GetOrder handles GET /orders/{id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	o, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToOrderResponse(o))
}

// GetOrderByNumber handles GET /orders/order-number/{orderNumber}.
func (h *OrderHandler) GetOrderByNumber(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrderByNumber(r.Context(), chi.URLParam(r, "orderNumber"))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToOrderResponse(o))
}

// UpdateOrder handles PUT /orders/{id}.
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.OrderRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.service.UpdateOrder(r.Context(), id, req.ToOrder())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToOrderResponse(updated))
}

// UpdateOrderStatus handles PUT /orders/{id}/status?status=. Any defined
// status overwrites the current one.
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, idErr := parseID(r, "id")
	status, statusErr := order.ParseStatus(strings.TrimSpace(r.URL.Query().Get("status")), domain.LocationQuery, "status")
	if err := domain.MergeValidation(idErr, statusErr); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	updated, err := h.service.UpdateOrderStatus(r.Context(), id, status)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToOrderResponse(updated))
}

// DeleteOrder handles DELETE /orders/{id}.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.service.DeleteOrder(r.Context(), id); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// list serves one page of orders matching filter. pathErr carries a failed
// path parameter and is reported together with any query violations.
func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, filter order.Filter, pathErr error) {
	req, pageErr := parsePageRequest(r, order.DefaultSort, order.SortFields)
	if err := domain.MergeValidation(pathErr, pageErr); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	page, err := h.service.ListOrders(r.Context(), filter, req)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToPageResponse(page, dto.ToOrderResponse))
}
