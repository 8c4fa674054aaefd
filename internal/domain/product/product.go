// Package product holds the Product entity, its validation rules, listing
// filters and sort allow-list.
package product

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
)

// Resource is the resource name used in error reports.
const Resource = "product"

// DefaultLowStockThreshold is the stock level under which a product is
// reported as low on stock when the caller gives no threshold.
const DefaultLowStockThreshold = 10

// SortFields lists the attributes products can be ordered by.
var SortFields = domain.SortFields{"id", "name", "price", "stockQuantity", "createdAt", "updatedAt"}

// DefaultSort orders newest products first.
var DefaultSort = domain.Sort{Field: domain.DefaultSortBy, Direction: domain.Desc}

// PriceRangeSort is the default ordering of price-range queries.
var PriceRangeSort = domain.Sort{Field: "price", Direction: domain.Asc}

// Product is a sellable catalog item.
type Product struct {
	ID            int64
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks business rules for the Product entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (p *Product) Validate() error {
	verr := domain.NewValidationError(domain.LocationBody)

	if strings.TrimSpace(p.Name) == "" {
		verr.Missing("name")
	}
	if !p.Price.IsPositive() {
		verr.OutOfRange("price", domain.MsgMustBePositive)
	}
	if p.StockQuantity < 0 {
		verr.OutOfRange("stockQuantity", fmt.Sprintf("must be >= 0, got %d", p.StockQuantity))
	}

	return verr.Err()
}

// Compare orders two products by the named sort field. Unknown fields compare
// equal; callers validate the field against SortFields first.
func Compare(a, b *Product, field string) int {
	switch field {
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "price":
		return a.Price.Cmp(b.Price)
	case "stockQuantity":
		return cmp.Compare(a.StockQuantity, b.StockQuantity)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return 0
	}
}
