package handlers

import (
	"net/http"
	"strings"

	"github.com/jsamuelsen11/storefront-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service ports.ProductService
}

// NewProductHandler creates a new ProductHandler with the given service port.
func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// ListProducts handles GET /products. Optional name, minPrice and maxPrice
// query parameters narrow the listing.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	verr := domain.NewValidationError(domain.LocationQuery)
	q := r.URL.Query()
	filter := product.Filter{
		NameContains: strings.TrimSpace(q.Get("name")),
		MinPrice:     queryDecimal(q.Get("minPrice"), "minPrice", verr),
		MaxPrice:     queryDecimal(q.Get("maxPrice"), "maxPrice", verr),
	}

	h.list(w, r, filter, product.DefaultSort, verr)
}

// SearchProducts handles GET /products/search?name=. The name parameter is
// required and matched as a case-insensitive substring.
func (h *ProductHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	verr := domain.NewValidationError(domain.LocationQuery)
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		verr.Missing("name")
	}

	h.list(w, r, product.Filter{NameContains: name}, product.DefaultSort, verr)
}

// ListByPriceRange handles GET /products/price-range?minPrice=&maxPrice=.
// Both bounds are required and inclusive; results default to price ascending.
func (h *ProductHandler) ListByPriceRange(w http.ResponseWriter, r *http.Request) {
	verr := domain.NewValidationError(domain.LocationQuery)
	q := r.URL.Query()

	filter := product.Filter{
		MinPrice: queryDecimal(q.Get("minPrice"), "minPrice", verr),
		MaxPrice: queryDecimal(q.Get("maxPrice"), "maxPrice", verr),
	}
	if filter.MinPrice == nil && !verr.Has("minPrice") {
		verr.Missing("minPrice")
	}
	if filter.MaxPrice == nil && !verr.Has("maxPrice") {
		verr.Missing("maxPrice")
	}

	h.list(w, r, filter, product.PriceRangeSort, verr)
}

// ListLowStock handles GET /products/low-stock?threshold=. The result is an
// unpaginated list of products whose stock is strictly below threshold.
func (h *ProductHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	verr := domain.NewValidationError(domain.LocationQuery)
	threshold := queryInt(r.URL.Query().Get("threshold"), product.DefaultLowStockThreshold, "threshold", verr)
	if threshold < 0 {
		verr.OutOfRange("threshold", "must be >= 0")
	}
	if err := verr.Err(); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	products, err := h.service.ListLowStock(r.Context(), threshold)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToProductListResponse(products))
}

// CreateProduct handles POST /products.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req dto.ProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.service.CreateProduct(r.Context(), req.ToProduct())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.ToProductResponse(created))
}

// GetProduct handles GET /products/{id}.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	p, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToProductResponse(p))
}

// UpdateProduct handles PUT /products/{id}. The body replaces every field.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.ProductRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.service.UpdateProduct(r.Context(), id, req.ToProduct())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToProductResponse(updated))
}

// DeleteProduct handles DELETE /products/{id}.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// list parses the page request, merges its violations with those already in
// verr and filter.Validate, and writes one page.
func (h *ProductHandler) list(
	w http.ResponseWriter,
	r *http.Request,
	filter product.Filter,
	def domain.Sort,
	verr *domain.ValidationError,
) {
	req, pageErr := parsePageRequest(r, def, product.SortFields)
	if err := domain.MergeValidation(verr.Err(), filter.Validate(), pageErr); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	page, err := h.service.ListProducts(r.Context(), filter, req)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ToPageResponse(page, dto.ToProductResponse))
}
