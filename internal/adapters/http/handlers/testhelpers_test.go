package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/jsamuelsen11/storefront-service/internal/adapters/http/dto"
	"github.com/jsamuelsen11/storefront-service/internal/domain/order"
	"github.com/jsamuelsen11/storefront-service/internal/domain/product"
	"github.com/jsamuelsen11/storefront-service/internal/domain/user"
)

var testTime = time.Date(2026, 2, 12, 15, 4, 5, 0, time.UTC)

func stringPtr(s string) *string { return &s }
func intPtr(i int) *int          { return &i }
func int64Ptr(i int64) *int64    { return &i }

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func withChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func validProduct() product.Product {
	return product.Product{
		ID:            1,
		Name:          "Widget",
		Description:   "Blue widget",
		Price:         decimal.RequireFromString("19.99"),
		StockQuantity: 5,
		CreatedAt:     testTime,
		UpdatedAt:     testTime,
	}
}

func validUser() user.User {
	return user.User{
		ID:        1,
		Username:  "ada",
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
}

func validOrder() order.Order {
	o := order.Order{
		ID:          1,
		OrderNumber: "ORD-1",
		UserID:      1,
		Status:      order.StatusPending,
		Items: []order.Item{
			{ID: 1, ProductID: 1, ProductName: "Widget", Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
		},
		CreatedAt: testTime,
		UpdatedAt: testTime,
	}
	o.ComputeTotals()
	return o
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("failed to encode JSON body: %v", err)
	}
	return buf
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var result T
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	return result
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

// requireProblemLocations decodes a problem+json body and asserts that every
// wanted location is reported.
func requireProblemLocations(t *testing.T, rec *httptest.ResponseRecorder, want ...string) dto.ErrorResponse {
	t.Helper()

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/problem+json") {
		t.Errorf("Content-Type = %q, want application/problem+json", ct)
	}

	resp := decodeJSON[dto.ErrorResponse](t, rec)
	got := make(map[string]bool, len(resp.Errors))
	for _, e := range resp.Errors {
		got[e.Location] = true
	}
	for _, loc := range want {
		if !got[loc] {
			t.Errorf("errors missing location %q, got %+v", loc, resp.Errors)
		}
	}
	return resp
}
