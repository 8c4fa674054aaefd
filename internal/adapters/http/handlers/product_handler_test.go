package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/storefront-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/storefront-service/internal/adapters/http/handlers"
	"github.com/jsamuelsen11/storefront-service/internal/domain"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/mocks"
)

func newProductHandler(t *testing.T) (*handlers.ProductHandler, *mocks.MockProductService) {
	t.Helper()
	svc := mocks.NewMockProductService(t)
	return handlers.NewProductHandler(svc), svc
}

func productPage(req domain.PageRequest, total int64, items ...product.Product) domain.Page[product.Product] {
	return domain.NewPage(items, total, req)
}

// --- ListProducts ---

func TestListProducts_Defaults(t *testing.T) {
	t.Parallel()
	h, svc := newProductHandler(t)

	want := domain.PageRequest{Page: 0, Size: 10, Sort: domain.Sort{Field: "createdAt", Direction: domain.Desc}}
	svc.EXPECT().ListProducts(mock.Anything, product.Filter{}, want).
		Return(productPage(want, 1, validProduct()), nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	h.ListProducts(rec, req)

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.PageResponse[dto.ProductResponse]](t, rec)
	if resp.TotalElements != 1 || resp.TotalPages != 1 || len(resp.Items) != 1 {
		t.Errorf("page = %+v", resp)
	}
	if resp.Items[0].Price != "19.99" {
		t.Errorf("Price = %q, want 19.99", resp.Items[0].Price)
	}
}

func TestListProducts_ParsesPageSizeAndSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  domain.PageRequest
	}{
		{
			name:  "explicit direction",
			query: "?page=2&size=5&sort=price,desc",
			want:  domain.PageRequest{Page: 2, Size: 5, Sort: domain.Sort{Field: "price", Direction: domain.Desc}},
		},
		{
			name:  "bare field sorts ascending",
			query: "?sort=name",
			want:  domain.PageRequest{Page: 0, Size: 10, Sort: domain.Sort{Field: "name", Direction: domain.Asc}},
		},
		{
			name:  "maximum size accepted",
			query: "?size=100",
			want:  domain.PageRequest{Page: 0, Size: 100, Sort: product.DefaultSort},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, svc := newProductHandler(t)

			svc.EXPECT().ListProducts(mock.Anything, product.Filter{}, tt.want).
				Return(productPage(tt.want, 0), nil)

			rec := httptest.NewRecorder()
			h.ListProducts(rec, httptest.NewRequest(http.MethodGet, "/products"+tt.query, nil))

			requireStatus(t, rec, http.StatusOK)
		})
	}
}

func TestListProducts_InvalidPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     string
		locations []string
	}{
		{name: "negative page", query: "?page=-1", locations: []string{"query.page"}},
		{name: "size too large", query: "?size=101", locations: []string{"query.size"}},
		{name: "size zero", query: "?size=0", locations: []string{"query.size"}},
		{name: "non-numeric page", query: "?page=abc", locations: []string{"query.page"}},
		{name: "unknown sort field", query: "?sort=password", locations: []string{"query.sort"}},
		{name: "bad direction", query: "?sort=name,sideways", locations: []string{"query.sort"}},
		{
			name:      "every violation reported together",
			query:     "?page=-1&size=500&sort=nope",
			locations: []string{"query.page", "query.size", "query.sort"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, _ := newProductHandler(t)

			rec := httptest.NewRecorder()
			h.ListProducts(rec, httptest.NewRequest(http.MethodGet, "/products"+tt.query, nil))

			requireStatus(t, rec, http.StatusBadRequest)
			resp := requireProblemLocations(t, rec, tt.locations...)
			if resp.Code != dto.CodeValidation {
				t.Errorf("code = %q, want %q", resp.Code, dto.CodeValidation)
			}
		})
	}
}

func TestListProducts_ServiceUnavailable(t *testing.T) {
	t.Parallel()
	h, svc := newProductHandler(t)

	svc.EXPECT().ListProducts(mock.Anything, mock.Anything, mock.Anything).
		Return(domain.Page[product.Product]{}, domain.ErrUnavailable)

	rec := httptest.NewRecorder()
	h.ListProducts(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	requireStatus(t, rec, http.StatusServiceUnavailable)
}

// --- SearchProducts ---

func TestSearchProducts_PassesName(t *testing.T) {
	t.Parallel()
	h, svc := newProductHandler(t)

	svc.EXPECT().ListProducts(mock.Anything, product.Filter{NameContains: "widg"}, mock.Anything).
		Return(productPage(domain.DefaultPageRequest(product.DefaultSort), 0), nil)

	rec := httptest.NewRecorder()
	h.SearchProducts(rec, httptest.NewRequest(http.MethodGet, "/products/search?name=widg", nil))

	requireStatus(t, rec, http.StatusOK)
}

func TestSearchProducts_MissingName(t *testing.T) {
	t.Parallel()
	h, _ := newProductHandler(t)

	rec := httptest.NewRecorder()
	h.SearchProducts(rec, httptest.NewRequest(http.MethodGet, "/products/search", nil))

	requireStatus(t, rec, http.StatusBadRequest)
	requireProblemLocations(t, rec, "query.name")
}

// --- ListByPriceRange ---

func TestListByPriceRange_DefaultsToPriceAscending(t *testing.T) {
	t.Parallel()
	h, svc := newProductHandler(t)

	svc.EXPECT().ListProducts(
		mock.Anything,
		mock.MatchedBy(func(f product.Filter) bool {
			return f.MinPrice != nil && f.MinPrice.Equal(decimal.NewFromInt(10)) &&
				f.MaxPrice != nil && f.MaxPrice.Equal(decimal.NewFromInt(20))
		}),
		domain.PageRequest{Page: 0, Size: 10, Sort: product.PriceRangeSort},
	).Return(productPage(domain.DefaultPageRequest(product.PriceRangeSort), 0), nil)

	rec := httptest.NewRecorder()
	h.ListByPriceRange(rec, httptest.NewRequest(http.MethodGet, "/products/price-range?minPrice=10&maxPrice=20", nil))

	requireStatus(t, rec, http.StatusOK)
}

func TestListByPriceRange_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     string
		locations []string
	}{
		{name: "both bounds missing", query: "", locations: []string{"query.minPrice", "query.maxPrice"}},
		{name: "malformed bound", query: "?minPrice=ten&maxPrice=20", locations: []string{"query.minPrice"}},
		{name: "inverted range", query: "?minPrice=30&maxPrice=20", locations: []string{"query.minPrice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, _ := newProductHandler(t)

			rec := httptest.NewRecorder()
			h.ListByPriceRange(rec, httptest.NewRequest(http.MethodGet, "/products/price-range"+tt.query, nil))

			requireStatus(t, rec, http.StatusBadRequest)
			requireProblemLocations(t, rec, tt.locations...)
		})
	}
}

// --- ListLowStock ---

func TestListLowStock(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     string
		threshold int
	}{
		{name: "default threshold", query: "", threshold: product.DefaultLowStockThreshold},
		{name: "explicit threshold", query: "?threshold=3", threshold: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, svc := newProductHandler(t)

			svc.EXPECT().ListLowStock(mock.Anything, tt.threshold).
				Return([]product.Product{validProduct()}, nil)

			rec := httptest.NewRecorder()
			h.ListLowStock(rec, httptest.NewRequest(http.MethodGet, "/products/low-stock"+tt.query, nil))

			requireStatus(t, rec, http.StatusOK)
			resp := decodeJSON[[]dto.ProductResponse](t, rec)
			if len(resp) != 1 {
				t.Errorf("len = %d, want 1", len(resp))
			}
		})
	}
}

func TestListLowStock_InvalidThreshold(t *testing.T) {
	t.Parallel()
	h, _ := newProductHandler(t)

	rec := httptest.NewRecorder()
	h.ListLowStock(rec, httptest.NewRequest(http.MethodGet, "/products/low-stock?threshold=-1", nil))

	requireStatus(t, rec, http.StatusBadRequest)
	requireProblemLocations(t, rec, "query.threshold")
}

// --- CreateProduct ---

func TestCreateProduct_Success(t *testing.T) {
	t.Parallel()
	h, svc := newProductHandler(t)

	created := validProduct()
	svc.EXPECT().CreateProduct(mock.Anything, mock.MatchedBy(func(p *product.Product) bool {
		return p.Name == "Widget" && p.Price.Equal(decimal.RequireFromString("19.99")) && p.StockQuantity == 5
	})).Return(&created, nil)

	body := strings.NewReader(`{"name":"Widget","description":"Blue widget","price":19.99,"stockQuantity":5}`)
	rec := httptest.NewRecorder()
	h.CreateProduct(rec, httptest.NewRequest(http.MethodPost, "/products", body))

	requireStatus(t, rec, http.StatusCreated)
	resp := decodeJSON[dto.ProductResponse](t, rec)
	if resp.ID != 1 {
		t.Errorf("ID = %d, want 1", resp.ID)
	}
}

func TestCreateProduct_ValidationNeverReachesService(t *testing.T) {
	t.Parallel()
	h, _ := newProductHandler(t)

	body := strings.NewReader(`{"price":0,"stockQuantity":-2}`)
	rec := httptest.NewRecorder()
	h.CreateProduct(rec, httptest.NewRequest(http.MethodPost, "/products", body))

	requireStatus(t, rec, http.StatusBadRequest)
	requireProblemLocations(t, rec, "body.name", "body.price", "body.stockQuantity")
}

func TestCreateProduct_InvalidJSON(t *testing.T) {
	t.Parallel()
	h, _ := newProductHandler(t)

	rec := httptest.NewRecorder()
	h.CreateProduct(rec, httptest.NewRequest(http.MethodPost, "/products", strings.NewReader("{")))

	requireStatus(t, rec, http.StatusBadRequest)
	requireProblemLocations(t, rec, "body")
}

// --- GetProduct ---

func TestGetProduct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		id         string
		setup      func(svc *mocks.MockProductService)
		wantStatus int
	}{
		{
			name: "found",
			id:   "1",
			setup: func(svc *mocks.MockProductService) {
				p := validProduct()
				svc.EXPECT().GetProduct(mock.Anything, int64(1)).Return(&p, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "not found",
			id:   "99",
			setup: func(svc *mocks.MockProductService) {
				svc.EXPECT().GetProduct(mock.Anything, int64(99)).Return(nil, domain.NotFound(product.Resource, 99))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "non-numeric id",
			id:         "abc",
			setup:      func(_ *mocks.MockProductService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "zero id",
			id:         "0",
			setup:      func(_ *mocks.MockProductService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, svc := newProductHandler(t)
			tt.setup(svc)

			rec := httptest.NewRecorder()
			req := withChiParams(httptest.NewRequest(http.MethodGet, "/products/"+tt.id, nil), map[string]string{"id": tt.id})
			h.GetProduct(rec, req)

			requireStatus(t, rec, tt.wantStatus)
		})
	}
}

// --- UpdateProduct ---

func TestUpdateProduct_Success(t *testing.T) {
	t.Parallel()
	h, svc := newProductHandler(t)

	updated := validProduct()
	updated.Name = "Gadget"
	svc.EXPECT().UpdateProduct(mock.Anything, int64(1), mock.AnythingOfType("*product.Product")).
		Return(&updated, nil)

	body := jsonBody(t, dto.ProductRequest{
		Name:          stringPtr("Gadget"),
		Price:         decimalPtr("19.99"),
		StockQuantity: intPtr(5),
	})
	rec := httptest.NewRecorder()
	req := withChiParams(httptest.NewRequest(http.MethodPut, "/products/1", body), map[string]string{"id": "1"})
	h.UpdateProduct(rec, req)

	requireStatus(t, rec, http.StatusOK)
	if resp := decodeJSON[dto.ProductResponse](t, rec); resp.Name != "Gadget" {
		t.Errorf("Name = %q, want Gadget", resp.Name)
	}
}

func TestUpdateProduct_NotFound(t *testing.T) {
	t.Parallel()
	h, svc := newProductHandler(t)

	svc.EXPECT().UpdateProduct(mock.Anything, int64(9), mock.Anything).
		Return(nil, domain.NotFound(product.Resource, 9))

	body := jsonBody(t, dto.ProductRequest{Name: stringPtr("x"), Price: decimalPtr("1"), StockQuantity: intPtr(0)})
	rec := httptest.NewRecorder()
	req := withChiParams(httptest.NewRequest(http.MethodPut, "/products/9", body), map[string]string{"id": "9"})
	h.UpdateProduct(rec, req)

	requireStatus(t, rec, http.StatusNotFound)
}

// --- DeleteProduct ---

func TestDeleteProduct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "deleted", err: nil, wantStatus: http.StatusNoContent},
		{name: "not found", err: domain.NotFound(product.Resource, 1), wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, svc := newProductHandler(t)

			svc.EXPECT().DeleteProduct(mock.Anything, int64(1)).Return(tt.err)

			rec := httptest.NewRecorder()
			req := withChiParams(httptest.NewRequest(http.MethodDelete, "/products/1", nil), map[string]string{"id": "1"})
			h.DeleteProduct(rec, req)

			requireStatus(t, rec, tt.wantStatus)
		})
	}
}
