package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/order"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/domain/user"
)

// ProductRequest is the JSON body for creating or replacing a product.
// Pointer fields distinguish an absent value from a zero value.
type ProductRequest struct {
	Name          *string          `json:"name"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stockQuantity"`
}

// Validate reports every missing or out-of-range field at once.
func (r *ProductRequest) Validate() error {
	verr := domain.NewValidationError(domain.LocationBody)

	if r.Name == nil {
		verr.Missing("name")
	}
	if r.Price == nil {
		verr.Missing("price")
	}
	if r.StockQuantity == nil {
		verr.Missing("stockQuantity")
	}

	return domain.MergeValidation(verr.Err(), r.ToProduct().Validate())
}

// ToProduct maps the request to a domain Product.
func (r *ProductRequest) ToProduct() *product.Product {
	p := &product.Product{Description: r.Description}
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.StockQuantity != nil {
		p.StockQuantity = *r.StockQuantity
	}
	return p
}

// UserRequest is the JSON body for creating or replacing a user.
type UserRequest struct {
	Username *string `json:"username"`
	Name     *string `json:"name"`
	Email    string  `json:"email"`
}

// Validate reports every missing or malformed field at once.
func (r *UserRequest) Validate() error {
	verr := domain.NewValidationError(domain.LocationBody)

	if r.Username == nil {
		verr.Missing("username")
	}
	if r.Name == nil {
		verr.Missing("name")
	}

	return domain.MergeValidation(verr.Err(), r.ToUser().Validate())
}

// ToUser maps the request to a domain User.
func (r *UserRequest) ToUser() *user.User {
	u := &user.User{Email: strings.TrimSpace(r.Email)}
	if r.Username != nil {
		u.Username = *r.Username
	}
	if r.Name != nil {
		u.Name = *r.Name
	}
	return u
}

// OrderRequest is the JSON body for creating or replacing an order. An empty
// orderNumber is generated on create and kept on update; an empty status
// defaults to PENDING on create and is kept on update. Client-sent subtotal
// and totalAmount are not part of the contract and are ignored.
type OrderRequest struct {
	OrderNumber string             `json:"orderNumber"`
	UserID      *int64             `json:"userId"`
	Status      string             `json:"status"`
	Items       []OrderItemRequest `json:"items"`
}

// OrderItemRequest is one line of an OrderRequest.
type OrderItemRequest struct {
	ProductID *int64           `json:"productId"`
	Quantity  *int             `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

// Validate reports every missing, malformed, or out-of-range field at once,
// including per-item fields as "items[i].field".
func (r *OrderRequest) Validate() error {
	verr := domain.NewValidationError(domain.LocationBody)

	if r.UserID == nil {
		verr.Missing("userId")
	}
	if r.Status != "" {
		if _, err := order.ParseStatus(r.Status, domain.LocationBody, "status"); err != nil {
			verr.Invalid("status", fmt.Sprintf("invalid: %q", r.Status))
		}
	}
	for i, it := range r.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if it.ProductID == nil {
			verr.Missing(prefix + "productId")
		}
		if it.Quantity == nil {
			verr.Missing(prefix + "quantity")
		}
		if it.UnitPrice == nil {
			verr.Missing(prefix + "unitPrice")
		}
	}

	// Server-side defaults are applied later; stand them in so that only
	// client-supplied values are judged here.
	o := r.ToOrder()
	if o.OrderNumber == "" {
		o.OrderNumber = order.NumberPrefix
	}
	if o.Status == "" {
		o.Status = order.StatusPending
	}

	return domain.MergeValidation(verr.Err(), o.Validate())
}

// ToOrder maps the request to a domain Order. Subtotals and the total are
// left zero for the service to compute.
func (r *OrderRequest) ToOrder() *order.Order {
	o := &order.Order{
		OrderNumber: strings.TrimSpace(r.OrderNumber),
		Status:      order.Status(strings.ToUpper(strings.TrimSpace(r.Status))),
		Items:       make([]order.Item, len(r.Items)),
	}
	if r.UserID != nil {
		o.UserID = *r.UserID
	}
	for i, it := range r.Items {
		if it.ProductID != nil {
			o.Items[i].ProductID = *it.ProductID
		}
		if it.Quantity != nil {
			o.Items[i].Quantity = *it.Quantity
		}
		if it.UnitPrice != nil {
			o.Items[i].UnitPrice = *it.UnitPrice
		}
	}
	return o
}
