package order

import (
	"fmt"
	"strings"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
)

// Status represents the fulfilment state of an Order.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusShipped   Status = "SHIPPED"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

// Statuses lists every defined status in lifecycle order.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}

// IsValid returns true if the status is one of the defined constants.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// ParseStatus converts a case-insensitive status name. field and location
// name the request part the value came from in the returned ValidationError.
func ParseStatus(raw, location, field string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if s.IsValid() {
		return s, nil
	}

	verr := domain.NewValidationError(location)
	if raw == "" {
		verr.Missing(field)
	} else {
		verr.Invalid(field, fmt.Sprintf("invalid: %q", raw))
	}
	return "", verr
}
