package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen11/storefront-service/internal/domain"
)

// Query parameter names shared by every listing endpoint.
const (
	paramPage = "page"
	paramSize = "size"
	paramSort = "sort"
)

// parsePageRequest reads page, size and sort from the query string, falling
// back to page 0, domain.DefaultPageSize and def. Sort is "field,direction"
// where a bare field means ascending. Parse failures and range violations are
// reported together in one *domain.ValidationError located in the query.
func parsePageRequest(r *http.Request, def domain.Sort, allowed domain.SortFields) (domain.PageRequest, error) {
	q := r.URL.Query()
	verr := domain.NewValidationError(domain.LocationQuery)
	req := domain.DefaultPageRequest(def)

	req.Page = queryInt(q.Get(paramPage), req.Page, paramPage, verr)
	req.Size = queryInt(q.Get(paramSize), req.Size, paramSize, verr)

	if raw := strings.TrimSpace(q.Get(paramSort)); raw != "" {
		field, dir, _ := strings.Cut(raw, ",")
		direction, ok := domain.ParseDirection(dir)
		if !ok {
			verr.Invalid(paramSort, fmt.Sprintf("direction must be ASC or DESC, got %q", dir))
			direction = domain.Asc
		}
		req.Sort = domain.Sort{Field: strings.TrimSpace(field), Direction: direction}
	}

	if err := domain.MergeValidation(verr.Err(), req.Validate(allowed)); err != nil {
		return domain.PageRequest{}, err
	}
	return req, nil
}

// queryInt parses raw as an int, returning def when raw is empty and
// recording an Invalid violation under name when it is malformed.
func queryInt(raw string, def int, name string, verr *domain.ValidationError) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.Invalid(name, fmt.Sprintf("must be an integer, got %q", raw))
		return def
	}
	return n
}

// queryDecimal parses raw as a decimal. An empty value yields nil; a
// malformed one records an Invalid violation under name.
func queryDecimal(raw, name string, verr *domain.ValidationError) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		verr.Invalid(name, fmt.Sprintf("must be a decimal number, got %q", raw))
		return nil
	}
	return &d
}
