// Package order holds the Order aggregate, its line items, status lifecycle
// and the derived money fields.
package order

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
)

// Resource is the resource name used in error reports.
const Resource = "order"

// NumberPrefix starts every generated order number.
const NumberPrefix = "ORD-"

// SortFields lists the attributes orders can be ordered by.
var SortFields = domain.SortFields{"id", "orderNumber", "userId", "status", "totalAmount", "createdAt", "updatedAt"}

// DefaultSort orders newest orders first.
var DefaultSort = domain.Sort{Field: domain.DefaultSortBy, Direction: domain.Desc}

// Order is a purchase placed by a user.
type Order struct {
	ID          int64
	OrderNumber string
	UserID      int64
	Status      Status
	Items       []Item
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Item is one line of an order.
type Item struct {
	ID          int64
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// ComputeSubtotal sets Subtotal to Quantity x UnitPrice.
func (it *Item) ComputeSubtotal() {
	it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ComputeTotals recomputes every item subtotal and the order total, discarding
// whatever values were present before.
func (o *Order) ComputeTotals() {
	total := decimal.Zero
	for i := range o.Items {
		o.Items[i].ComputeSubtotal()
		total = total.Add(o.Items[i].Subtotal)
	}
	o.TotalAmount = total
}

// ProductIDs returns the distinct product ids referenced by the items, in
// first-seen order.
func (o *Order) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.Items))
	ids := make([]int64, 0, len(o.Items))
	for _, it := range o.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}

// Validate checks business rules for the Order aggregate including its items.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (o *Order) Validate() error {
	verr := domain.NewValidationError(domain.LocationBody)

	if strings.TrimSpace(o.OrderNumber) == "" {
		verr.Missing("orderNumber")
	}
	if o.UserID <= 0 {
		verr.Missing("userId")
	}
	if !o.Status.IsValid() {
		verr.Invalid("status", fmt.Sprintf("invalid: %q", o.Status))
	}
	if len(o.Items) == 0 {
		verr.Missing("items")
	}
	for i := range o.Items {
		o.Items[i].validate(verr, fmt.Sprintf("items[%d].", i))
	}

	return verr.Err()
}

func (it *Item) validate(verr *domain.ValidationError, prefix string) {
	if it.ProductID <= 0 {
		verr.Missing(prefix + "productId")
	}
	if it.Quantity < 1 {
		verr.OutOfRange(prefix+"quantity", fmt.Sprintf("must be >= 1, got %d", it.Quantity))
	}
	if !it.UnitPrice.IsPositive() {
		verr.OutOfRange(prefix+"unitPrice", domain.MsgMustBePositive)
	}
}

// Compare orders two orders by the named sort field.
func Compare(a, b *Order, field string) int {
	switch field {
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "orderNumber":
		return strings.Compare(a.OrderNumber, b.OrderNumber)
	case "userId":
		return cmp.Compare(a.UserID, b.UserID)
	case "status":
		return strings.Compare(string(a.Status), string(b.Status))
	case "totalAmount":
		return a.TotalAmount.Cmp(b.TotalAmount)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return 0
	}
}

// Filter holds optional filter criteria for listing orders.
type Filter struct {
	UserID *int64
	Status Status
}

// Matches reports whether o satisfies every set criterion.
func (f Filter) Matches(o *Order) bool {
	if f.UserID != nil && o.UserID != *f.UserID {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return true
}
