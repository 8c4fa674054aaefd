package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Pagination defaults applied when a listing request omits them.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultSortBy   = "createdAt"
)

// Direction is the ordering of a sort.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection parses a case-insensitive direction. The empty string
// yields Asc.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", string(Asc):
		return Asc, true
	case string(Desc):
		return Desc, true
	default:
		return "", false
	}
}

// Sort names the attribute to order by and the direction.
type Sort struct {
	Field     string
	Direction Direction
}

// String renders the sort in its query form, e.g. "createdAt,DESC".
func (s Sort) String() string {
	return s.Field + "," + string(s.Direction)
}

// SortFields is the allow-list of attributes a resource can be sorted by.
type SortFields []string

// Allows reports whether field is in the allow-list.
func (f SortFields) Allows(field string) bool {
	return slices.Contains(f, field)
}

// PageRequest is the canonical pagination and sort parameter object. Page is
// 0-based.
type PageRequest struct {
	Page int
	Size int
	Sort Sort
}

// DefaultPageRequest returns page 0 of DefaultPageSize sorted by the given
// default.
func DefaultPageRequest(sort Sort) PageRequest {
	return PageRequest{Page: 0, Size: DefaultPageSize, Sort: sort}
}

// Offset returns the index of the first record on the requested page. It
// saturates at math.MaxInt instead of overflowing, so a huge page number
// addresses an empty page past the end.
func (p PageRequest) Offset() int {
	if p.Size > 0 && p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

// Validate checks page bounds and that the sort field is allow-listed.
// Returns a *ValidationError located in the query string.
func (p PageRequest) Validate(allowed SortFields) error {
	verr := NewValidationError(LocationQuery)

	if p.Page < 0 {
		verr.OutOfRange("page", fmt.Sprintf("must be >= 0, got %d", p.Page))
	}
	if p.Size < 1 || p.Size > MaxPageSize {
		verr.OutOfRange("size", fmt.Sprintf("must be between 1 and %d, got %d", MaxPageSize, p.Size))
	}
	if !allowed.Allows(p.Sort.Field) {
		verr.Invalid("sort", fmt.Sprintf("unknown sort field %q, allowed: %s", p.Sort.Field, strings.Join(allowed, ", ")))
	}
	if p.Sort.Direction != Asc && p.Sort.Direction != Desc {
		verr.Invalid("sort", fmt.Sprintf("direction must be ASC or DESC, got %q", p.Sort.Direction))
	}

	return verr.Err()
}

// Page is a bounded slice of a larger ordered result set plus total-count
// metadata.
type Page[T any] struct {
	Items         []T
	TotalElements int64
	TotalPages    int
	PageNumber    int
	PageSize      int
}

// NewPage assembles a Page from one page of items and the total match count.
// Items is never nil so that an out-of-range page serializes as an empty list.
func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:         items,
		TotalElements: total,
		TotalPages:    TotalPages(total, req.Size),
		PageNumber:    req.Page,
		PageSize:      req.Size,
	}
}

// TotalPages returns ceil(total / size). A non-positive size yields 0.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	s := int64(size)
	return int((total + s - 1) / s)
}

// SlicePage cuts the requested page out of an already filtered and ordered
// result set. Requests beyond the last page produce an empty page.
func SlicePage[T any](all []T, req PageRequest) Page[T] {
	total := int64(len(all))
	if req.Page < 0 || req.Size <= 0 || req.Page >= TotalPages(total, req.Size) {
		return NewPage([]T{}, total, req)
	}
	start := req.Offset()
	end := min(start+req.Size, len(all))

	items := make([]T, end-start)
	copy(items, all[start:end])
	return NewPage(items, total, req)
}

// MapPage converts the items of a page while preserving its metadata.
func MapPage[T, R any](p Page[T], fn func(*T) R) Page[R] {
	items := make([]R, len(p.Items))
	for i := range p.Items {
		items[i] = fn(&p.Items[i])
	}
	return Page[R]{
		Items:         items,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		PageNumber:    p.PageNumber,
		PageSize:      p.PageSize,
	}
}
