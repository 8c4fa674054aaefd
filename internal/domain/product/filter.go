package product

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
)

// Filter holds optional filter criteria for listing products.
// Zero-value fields mean "no filter" for that dimension.
type Filter struct {
	// NameContains matches products whose name contains the value,
	// ignoring case.
	NameContains string
	// MinPrice and MaxPrice bound the price, both inclusive.
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Validate rejects an inverted price range.
func (f Filter) Validate() error {
	verr := domain.NewValidationError(domain.LocationQuery)

	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		verr.OutOfRange("minPrice", "must be >= 0")
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		verr.OutOfRange("maxPrice", "must be >= 0")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		verr.OutOfRange("minPrice", "must not exceed maxPrice")
	}

	return verr.Err()
}

// Matches reports whether p satisfies every set criterion.
func (f Filter) Matches(p *Product) bool {
	if f.NameContains != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}
