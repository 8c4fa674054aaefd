// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
//
// Money values are rendered as decimal strings with two fraction digits
// ("19.99") so that clients never see binary floating point.
package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/order"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/domain/user"
)

// PageResponse is the wire form of one page of a listing.
type PageResponse[T any] struct {
	Items         []T   `json:"items"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	PageNumber    int   `json:"pageNumber"`
	PageSize      int   `json:"pageSize"`
}

// ToPageResponse converts a domain page, mapping each item with fn.
func ToPageResponse[T, R any](p domain.Page[T], fn func(*T) R) PageResponse[R] {
	mapped := domain.MapPage(p, fn)
	return PageResponse[R]{
		Items:         mapped.Items,
		TotalElements: mapped.TotalElements,
		TotalPages:    mapped.TotalPages,
		PageNumber:    mapped.PageNumber,
		PageSize:      mapped.PageSize,
	}
}

// ProductResponse represents a single product in HTTP responses.
type ProductResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         string `json:"price"`
	StockQuantity int    `json:"stockQuantity"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// ToProductResponse converts a domain Product to an HTTP response DTO.
func ToProductResponse(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         money(p.Price),
		StockQuantity: p.StockQuantity,
		CreatedAt:     timestamp(p.CreatedAt),
		UpdatedAt:     timestamp(p.UpdatedAt),
	}
}

// ToProductListResponse converts an unpaginated product list.
func ToProductListResponse(products []product.Product) []ProductResponse {
	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i])
	}
	return items
}

// UserResponse represents a single user in HTTP responses.
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ToUserResponse converts a domain User to an HTTP response DTO.
func ToUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: timestamp(u.CreatedAt),
		UpdatedAt: timestamp(u.UpdatedAt),
	}
}

// OrderResponse represents a single order in HTTP responses.
type OrderResponse struct {
	ID          int64               `json:"id"`
	OrderNumber string              `json:"orderNumber"`
	UserID      int64               `json:"userId"`
	Status      string              `json:"status"`
	Items       []OrderItemResponse `json:"items"`
	TotalAmount string              `json:"totalAmount"`
	CreatedAt   string              `json:"createdAt"`
	UpdatedAt   string              `json:"updatedAt"`
}

// OrderItemResponse represents one order line in HTTP responses.
type OrderItemResponse struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Subtotal    string `json:"subtotal"`
}

// ToOrderResponse converts a domain Order to an HTTP response DTO.
func ToOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   money(it.UnitPrice),
			Subtotal:    money(it.Subtotal),
		}
	}

	return OrderResponse{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Status:      o.Status.String(),
		Items:       items,
		TotalAmount: money(o.TotalAmount),
		CreatedAt:   timestamp(o.CreatedAt),
		UpdatedAt:   timestamp(o.UpdatedAt),
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
