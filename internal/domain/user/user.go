// Package user holds the User entity and its listing rules.
package user

import (
	"cmp"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
)

// Resource is the resource name used in error reports.
const Resource = "user"

// MaxUsernameLength bounds the username in characters.
const MaxUsernameLength = 50

// SortFields lists the attributes users can be ordered by.
var SortFields = domain.SortFields{"id", "username", "name", "createdAt", "updatedAt"}

// DefaultSort orders newest users first.
var DefaultSort = domain.Sort{Field: domain.DefaultSortBy, Direction: domain.Desc}

// User is a storefront customer account.
type User struct {
	ID        int64
	Username  string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks business rules for the User entity.
func (u *User) Validate() error {
	verr := domain.NewValidationError(domain.LocationBody)

	switch {
	case u.Username == "":
		verr.Missing("username")
	case strings.IndexFunc(u.Username, unicode.IsSpace) >= 0:
		verr.Invalid("username", "must not contain whitespace")
	case utf8.RuneCountInString(u.Username) > MaxUsernameLength:
		verr.OutOfRange("username", fmt.Sprintf("must be at most %d characters", MaxUsernameLength))
	}
	if strings.TrimSpace(u.Name) == "" {
		verr.Missing("name")
	}
	if u.Email != "" && !strings.Contains(u.Email, "@") {
		verr.Invalid("email", fmt.Sprintf("invalid: %q", u.Email))
	}

	return verr.Err()
}

// Compare orders two users by the named sort field.
func Compare(a, b *User, field string) int {
	switch field {
	case "id":
		return cmp.Compare(a.ID, b.ID)
	case "username":
		return strings.Compare(a.Username, b.Username)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "createdAt":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updatedAt":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return 0
	}
}

// Filter holds optional filter criteria for listing users.
type Filter struct {
	// NameContains matches users whose name contains the value, ignoring case.
	NameContains string
}

// Matches reports whether u satisfies the filter.
func (f Filter) Matches(u *User) bool {
	if f.NameContains == "" {
		return true
	}
	return strings.Contains(strings.ToLower(u.Name), strings.ToLower(f.NameContains))
}
